package pagination

import "gorm.io/gorm"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is embedded in every list filter.
type Params struct {
	Page  int `form:"page" json:"page"`
	Limit int `form:"limit" json:"limit"`
}

// Meta is the pagination block of every list response.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// Normalize clamps page and limit into their accepted ranges.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Scope applies LIMIT/OFFSET to a query.
func (p Params) Scope(db *gorm.DB) *gorm.DB {
	n := p.Normalize()
	return db.Limit(n.Limit).Offset(n.Offset())
}

func (p Params) Meta(total int64) Meta {
	n := p.Normalize()
	limit := int64(n.Limit)
	return Meta{
		Page:  n.Page,
		Limit: n.Limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}
}

// Page is a slice of results plus its pagination block.
type Page[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}
