package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/slug"
)

// Taxonomies written by the seeder.
const (
	categoryTaxonomy = "product_cat"
	brandTaxonomy    = "product_brand"
)

// schemaSQL creates the subset of the WordPress/WooCommerce tables the
// catalog repository reads. %[1]s is the table prefix.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS %[1]sterms (
	term_id    BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	term_group BIGINT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS %[1]sterm_taxonomy (
	term_taxonomy_id BIGSERIAL PRIMARY KEY,
	term_id          BIGINT NOT NULL REFERENCES %[1]sterms (term_id),
	taxonomy         TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	parent           BIGINT NOT NULL DEFAULT 0,
	count            BIGINT NOT NULL DEFAULT 0,
	UNIQUE (term_id, taxonomy)
);
CREATE TABLE IF NOT EXISTS %[1]stermmeta (
	meta_id    BIGSERIAL PRIMARY KEY,
	term_id    BIGINT NOT NULL,
	meta_key   TEXT NOT NULL,
	meta_value TEXT,
	UNIQUE (term_id, meta_key)
);
CREATE TABLE IF NOT EXISTS %[1]sposts (
	id          BIGSERIAL PRIMARY KEY,
	post_title  TEXT NOT NULL DEFAULT '',
	post_name   TEXT NOT NULL,
	post_type   TEXT NOT NULL,
	post_status TEXT NOT NULL,
	guid        TEXT NOT NULL DEFAULT '',
	UNIQUE (post_type, post_name)
);
CREATE TABLE IF NOT EXISTS %[1]spostmeta (
	meta_id    BIGSERIAL PRIMARY KEY,
	post_id    BIGINT NOT NULL,
	meta_key   TEXT NOT NULL,
	meta_value TEXT,
	UNIQUE (post_id, meta_key)
);
CREATE TABLE IF NOT EXISTS %[1]sterm_relationships (
	object_id        BIGINT NOT NULL,
	term_taxonomy_id BIGINT NOT NULL,
	term_order       INT NOT NULL DEFAULT 0,
	PRIMARY KEY (object_id, term_taxonomy_id)
);`

// seededTerm identifies a term row and its taxonomy row.
type seededTerm struct {
	termID         int64
	termTaxonomyID int64
}

// Seeder writes demo catalog rows. All statements are idempotent upserts, so
// running it twice leaves the same catalog.
type Seeder struct {
	db     database.DBTX
	prefix string
	logger *slog.Logger
}

// NewSeeder creates a seeder writing to tables with the given prefix.
func NewSeeder(db database.DBTX, prefix string, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, prefix: prefix, logger: logger}
}

func (s *Seeder) sql(format string) string {
	return fmt.Sprintf(format, s.prefix)
}

// CreateSchema creates the catalog tables when they do not exist.
func (s *Seeder) CreateSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, s.sql(schemaSQL)); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Term upserts a term in taxonomy under parent (0 for none).
func (s *Seeder) Term(ctx context.Context, taxonomy string, def termDef, parent int64) (seededTerm, error) {
	var t seededTerm

	err := s.db.QueryRow(ctx, s.sql(`
		INSERT INTO %[1]sterms (name, slug) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
		RETURNING term_id`),
		def.name, slug.Generate(def.name),
	).Scan(&t.termID)
	if err != nil {
		return t, fmt.Errorf("upsert term %q: %w", def.name, err)
	}

	err = s.db.QueryRow(ctx, s.sql(`
		INSERT INTO %[1]sterm_taxonomy (term_id, taxonomy, description, parent) VALUES ($1, $2, $3, $4)
		ON CONFLICT (term_id, taxonomy) DO UPDATE SET description = EXCLUDED.description, parent = EXCLUDED.parent
		RETURNING term_taxonomy_id`),
		t.termID, taxonomy, def.description, parent,
	).Scan(&t.termTaxonomyID)
	if err != nil {
		return t, fmt.Errorf("upsert taxonomy of term %q: %w", def.name, err)
	}

	if def.image != "" {
		if err := s.termImage(ctx, t.termID, def); err != nil {
			return t, err
		}
	}
	return t, nil
}

// termImage stores the image as an attachment post referenced by the
// thumbnail_id term meta.
func (s *Seeder) termImage(ctx context.Context, termID int64, def termDef) error {
	attachmentID, err := s.post(ctx, "attachment", "inherit", def.name+" image", def.image)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, s.sql(`
		INSERT INTO %[1]stermmeta (term_id, meta_key, meta_value) VALUES ($1, 'thumbnail_id', $2)
		ON CONFLICT (term_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`),
		termID, strconv.FormatInt(attachmentID, 10),
	)
	if err != nil {
		return fmt.Errorf("set thumbnail of term %q: %w", def.name, err)
	}
	return nil
}

func (s *Seeder) post(ctx context.Context, postType, status, title, guid string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, s.sql(`
		INSERT INTO %[1]sposts (post_title, post_name, post_type, post_status, guid) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (post_type, post_name) DO UPDATE
		SET post_title = EXCLUDED.post_title, post_status = EXCLUDED.post_status, guid = EXCLUDED.guid
		RETURNING id`),
		title, slug.Generate(title), postType, status, guid,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert %s %q: %w", postType, title, err)
	}
	return id, nil
}

// Product upserts a product post, its stock status and its term links.
func (s *Seeder) Product(ctx context.Context, def productDef, terms ...seededTerm) error {
	id, err := s.post(ctx, "product", def.status, def.name, "")
	if err != nil {
		return err
	}

	stock := "outofstock"
	if def.inStock {
		stock = "instock"
	}
	_, err = s.db.Exec(ctx, s.sql(`
		INSERT INTO %[1]spostmeta (post_id, meta_key, meta_value) VALUES ($1, '_stock_status', $2)
		ON CONFLICT (post_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`),
		id, stock,
	)
	if err != nil {
		return fmt.Errorf("set stock status of %q: %w", def.name, err)
	}

	for _, t := range terms {
		_, err := s.db.Exec(ctx, s.sql(`
			INSERT INTO %[1]sterm_relationships (object_id, term_taxonomy_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`),
			id, t.termTaxonomyID,
		)
		if err != nil {
			return fmt.Errorf("link %q to term %d: %w", def.name, t.termID, err)
		}
	}
	return nil
}

// RecountTerms refreshes the cached item count of every term.
func (s *Seeder) RecountTerms(ctx context.Context) error {
	_, err := s.db.Exec(ctx, s.sql(`
		UPDATE %[1]sterm_taxonomy tt
		SET count = (SELECT COUNT(*) FROM %[1]sterm_relationships tr WHERE tr.term_taxonomy_id = tt.term_taxonomy_id)`))
	if err != nil {
		return fmt.Errorf("recount terms: %w", err)
	}
	return nil
}

// Seed writes the whole demo catalog.
func (s *Seeder) Seed(ctx context.Context) error {
	if err := s.CreateSchema(ctx); err != nil {
		return err
	}

	seeded := make(map[string]seededTerm)

	var seedTree func(defs []termDef, parent int64) error
	seedTree = func(defs []termDef, parent int64) error {
		for _, def := range defs {
			t, err := s.Term(ctx, categoryTaxonomy, def, parent)
			if err != nil {
				return err
			}
			seeded[categoryTaxonomy+"/"+def.name] = t
			if err := seedTree(def.children, t.termID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := seedTree(categories, 0); err != nil {
		return err
	}
	s.logger.Info("categories seeded", slog.Int("count", len(seeded)))

	for _, def := range brands {
		t, err := s.Term(ctx, brandTaxonomy, def, 0)
		if err != nil {
			return err
		}
		seeded[brandTaxonomy+"/"+def.name] = t
	}
	s.logger.Info("brands seeded", slog.Int("count", len(brands)))

	for _, def := range products {
		cat, ok := seeded[categoryTaxonomy+"/"+def.category]
		if !ok {
			return fmt.Errorf("product %q: unknown category %q", def.name, def.category)
		}
		brand, ok := seeded[brandTaxonomy+"/"+def.brand]
		if !ok {
			return fmt.Errorf("product %q: unknown brand %q", def.name, def.brand)
		}
		if err := s.Product(ctx, def, cat, brand); err != nil {
			return err
		}
	}
	s.logger.Info("products seeded", slog.Int("count", len(products)))

	return s.RecountTerms(ctx)
}
