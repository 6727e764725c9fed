package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Params holds offset/limit pagination parameters.
type Params struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Normalize clamps offset to 0 and limit to at least 1.
func (p Params) Normalize() Params {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	return p
}

// ParamError reports a malformed or out-of-range query parameter.
type ParamError struct {
	Param   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s %s", e.Param, e.Message)
}

// LimitFromRequest reads the limit query parameter. A missing value yields
// defaultLimit; values that are not integers in [1, maxLimit] are rejected.
func LimitFromRequest(r *http.Request, defaultLimit, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || (maxLimit > 0 && v > maxLimit) {
		return 0, &ParamError{Param: "limit", Message: fmt.Sprintf("must be between 1 and %d", maxLimit)}
	}
	return v, nil
}

// Page is a bounded window over an ordered sequence.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	HasMore    bool `json:"has_more"`
	NextOffset int  `json:"next_offset"`
}

// Window returns items[offset:offset+limit] of the full sequence. An offset at
// or beyond the end yields an empty page with HasMore false. NextOffset is the
// offset the caller should request next and always equals offset plus the
// number of items returned.
func Window[T any](items []T, offset, limit int) Page[T] {
	p := Params{Offset: offset, Limit: limit}.Normalize()
	total := len(items)

	// offset+limit may overflow; only compare against what is left.
	start := min(p.Offset, total)
	end := start + min(p.Limit, total-start)

	window := make([]T, end-start)
	copy(window, items[start:end])

	return Page[T]{
		Items:      window,
		Total:      total,
		Offset:     p.Offset,
		Limit:      p.Limit,
		HasMore:    p.Offset < total && p.Limit < total-p.Offset,
		NextOffset: p.Offset + len(window),
	}
}
