package pagination

const (
	// DefaultPageSize is the catalog page size when a limit is not provided.
	DefaultPageSize = 12
	// FirstPage is the one-based index of the first page.
	FirstPage = 1
)

// PageParams holds page/limit pagination inputs for offset queries.
type PageParams struct {
	Page  int
	Limit int
}

// Normalize clamps page to at least one and limit into (0, MaxLimit].
func (p PageParams) Normalize() PageParams {
	if p.Page < FirstPage {
		p.Page = FirstPage
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageSize
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p PageParams) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}
