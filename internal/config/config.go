package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/slug"
)

// Catalog sources.
const (
	SourcePostgres    = "postgres"
	SourceWooCommerce = "woocommerce"
)

// DevAntiforgerySecret is the development default. It is refused in production.
const DevAntiforgerySecret = "dev-only-storefront-antiforgery-secret-change-me"

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`

	// Catalog
	CatalogSource string `env:"CATALOG_SOURCE" envDefault:"postgres"`

	// PostgreSQL (WordPress schema)
	PostgresHost  string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort  int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser  string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass  string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB    string `env:"CATALOG_DB_NAME" envDefault:"wordpress"`
	PostgresSSL   string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	WPTablePrefix string `env:"WP_TABLE_PREFIX" envDefault:"wp_"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// WooCommerce REST API
	WooCommerceBaseURL        string `env:"WOOCOMMERCE_BASE_URL"`
	WooCommerceConsumerKey    string `env:"WOOCOMMERCE_CONSUMER_KEY"`
	WooCommerceConsumerSecret string `env:"WOOCOMMERCE_CONSUMER_SECRET"`
	WooCommerceTimeoutSecs    int    `env:"WOOCOMMERCE_TIMEOUT_SECONDS" envDefault:"10"`

	// Links
	ShopBaseURL  string `env:"SHOP_BASE_URL" envDefault:"http://localhost:8080"`
	CategoryBase string `env:"CATEGORY_BASE" envDefault:"product-category"`
	BrandBase    string `env:"BRAND_BASE" envDefault:"brand"`

	// Listing rules
	CategoryTaxonomy        string   `env:"CATEGORY_TAXONOMY" envDefault:"product_cat"`
	BrandTaxonomyCandidates []string `env:"BRAND_TAXONOMY_CANDIDATES" envDefault:"product_brand,pwb-brand,brand,product-brand" envSeparator:","`
	ReservedCategorySlugs   []string `env:"RESERVED_CATEGORY_SLUGS" envDefault:"uncategorized,nezaradene" envSeparator:","`
	ListingPageSize         int      `env:"LISTING_PAGE_SIZE" envDefault:"9"`
	ListingMaxLimit         int      `env:"LISTING_MAX_LIMIT" envDefault:"100"`
	DescriptionWordLimit    int      `env:"DESCRIPTION_WORD_LIMIT" envDefault:"20"`

	// Anti-forgery
	AntiforgerySecret     string `env:"ANTIFORGERY_SECRET" envDefault:"dev-only-storefront-antiforgery-secret-change-me"`
	AntiforgeryTTLMinutes int    `env:"ANTIFORGERY_TTL_MINUTES" envDefault:"720"`
	SecureCookies         bool   `env:"SECURE_COOKIES" envDefault:"false"`

	// Rate limiting on load-more
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Redis (optional, shares the rate limit across replicas)
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELInsecure   bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:8080" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Section labels
	Labels Labels `envPrefix:"SECTION_"`
}

// Labels are the user-visible strings of the categories section.
type Labels struct {
	Title      string `env:"TITLE" envDefault:"Objavte podľa kategórie"`
	BrandsTab  string `env:"BRANDS_TAB" envDefault:"Značky"`
	TypesTab   string `env:"TYPES_TAB" envDefault:"Typy produktov"`
	Button     string `env:"BUTTON" envDefault:"K produktom"`
	ReadMore   string `env:"READ_MORE" envDefault:"Viac o značke"`
	ReadLess   string `env:"READ_LESS" envDefault:"Menej"`
	EmptyState string `env:"EMPTY_STATE" envDefault:"Žiadne značky nie sú momentálne k dispozícii."`
	ErrorState string `env:"ERROR_STATE" envDefault:"Kategórie sa momentálne nepodarilo načítať."`
	LoadMore   string `env:"LOAD_MORE" envDefault:"Načítať ďalšie"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads configuration from the given environment map, falling back
// to the process environment when it is empty.
func LoadFrom(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithPrefix(cfg, "", environment); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	switch c.CatalogSource {
	case SourcePostgres:
		if c.PostgresHost == "" {
			return errors.New("POSTGRES_HOST is required")
		}
		if c.PostgresUser == "" {
			return errors.New("POSTGRES_USER is required")
		}
	case SourceWooCommerce:
		if c.WooCommerceBaseURL == "" {
			return errors.New("WOOCOMMERCE_BASE_URL is required when CATALOG_SOURCE=woocommerce")
		}
		if _, err := parseAbsoluteURL(c.WooCommerceBaseURL); err != nil {
			return fmt.Errorf("WOOCOMMERCE_BASE_URL: %w", err)
		}
	default:
		return fmt.Errorf("CATALOG_SOURCE must be %q or %q, got %q", SourcePostgres, SourceWooCommerce, c.CatalogSource)
	}

	if _, err := parseAbsoluteURL(c.ShopBaseURL); err != nil {
		return fmt.Errorf("SHOP_BASE_URL: %w", err)
	}
	if strings.TrimSpace(c.CategoryTaxonomy) == "" {
		return errors.New("CATEGORY_TAXONOMY is required")
	}
	if len(c.BrandCandidates()) == 0 {
		return errors.New("BRAND_TAXONOMY_CANDIDATES must name at least one taxonomy")
	}
	if c.ListingPageSize < 1 {
		return fmt.Errorf("LISTING_PAGE_SIZE must be positive, got %d", c.ListingPageSize)
	}
	if c.ListingMaxLimit < c.ListingPageSize {
		return fmt.Errorf("LISTING_MAX_LIMIT (%d) must not be below LISTING_PAGE_SIZE (%d)", c.ListingMaxLimit, c.ListingPageSize)
	}
	if c.DescriptionWordLimit < 1 {
		return fmt.Errorf("DESCRIPTION_WORD_LIMIT must be positive, got %d", c.DescriptionWordLimit)
	}
	if c.AntiforgeryTTLMinutes < 1 {
		return fmt.Errorf("ANTIFORGERY_TTL_MINUTES must be positive, got %d", c.AntiforgeryTTLMinutes)
	}
	if c.IsProduction() && c.AntiforgerySecret == DevAntiforgerySecret {
		return errors.New("ANTIFORGERY_SECRET must be set in production")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %d", c.RateLimitRPS)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

func parseAbsoluteURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", raw)
	}
	return u, nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// BrandCandidates returns the brand taxonomy names in probe order, trimmed
// and without empty entries.
func (c *Config) BrandCandidates() []string {
	out := make([]string, 0, len(c.BrandTaxonomyCandidates))
	for _, name := range c.BrandTaxonomyCandidates {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// ReservedSlugs returns the normalized set of category slugs that never
// appear in a listing.
func (c *Config) ReservedSlugs() map[string]struct{} {
	return slug.Set(c.ReservedCategorySlugs)
}

// AntiforgeryTTL returns the token lifetime.
func (c *Config) AntiforgeryTTL() time.Duration {
	return time.Duration(c.AntiforgeryTTLMinutes) * time.Minute
}

// Postgres returns the connection pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis returns the Redis configuration. Enabled is false when no address is set.
func (c *Config) Redis() (cfg database.RedisConfig, enabled bool) {
	if c.RedisAddr == "" {
		return database.RedisConfig{}, false
	}
	return database.RedisConfig{
		Addr:        c.RedisAddr,
		Password:    c.RedisPassword,
		DB:          c.RedisDB,
		DialTimeout: 3 * time.Second,
	}, true
}
