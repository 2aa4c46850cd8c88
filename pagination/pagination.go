// Package pagination implements the page/limit/offset arithmetic shared
// by every list endpoint. The item count for a page comes from the page
// query itself; Total is always computed by a separate COUNT over the
// same predicate so it reflects the full matching set.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultPage is used when the client omits the page parameter.
	DefaultPage = 1
	// DefaultLimit is used when the client omits the limit parameter.
	DefaultLimit = 10
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
)

// Params carries the requested page and page size. Both are always
// positive after ParseQuery or Normalize.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps out-of-range values to the defaults.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseQuery reads page and limit from a URL query string, applying
// defaults for absent or unparsable values.
func ParseQuery(qs url.Values) Params {
	return Params{
		Page:  readInt(qs, "page", DefaultPage),
		Limit: readInt(qs, "limit", DefaultLimit),
	}.Normalize()
}

func readInt(qs url.Values, key string, defaultValue int) int {
	s := qs.Get(key)
	if s == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}

// Metadata describes the full result set a page was cut from.
type Metadata struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewMetadata computes pagination metadata for a total row count.
// TotalPages is ceil(total/limit); zero when the set is empty.
func NewMetadata(params Params, total int) Metadata {
	return Metadata{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: (total + params.Limit - 1) / params.Limit,
	}
}
