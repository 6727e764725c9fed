package listing

import (
	"context"
	"fmt"
)

// ExistsFunc reports whether a taxonomy is registered in the store.
type ExistsFunc func(ctx context.Context, taxonomy string) (bool, error)

// ResolveTaxonomy probes candidates in order and returns the first one that
// exists. It returns "" when none does.
func ResolveTaxonomy(ctx context.Context, candidates []string, exists ExistsFunc) (string, error) {
	for _, name := range candidates {
		if name == "" {
			continue
		}
		ok, err := exists(ctx, name)
		if err != nil {
			return "", fmt.Errorf("probe taxonomy %q: %w", name, err)
		}
		if ok {
			return name, nil
		}
	}
	return "", nil
}
