package product

import (
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// ListProductsInput captures the browse filters and page selection.
type ListProductsInput struct {
	Category   string
	Search     string
	Pagination pagination.PageParams
}

type productListQuery struct {
	category string
	search   string
	limit    int
	offset   int
}

func newProductListQuery(input ListProductsInput) productListQuery {
	page := input.Pagination.Normalize()
	return productListQuery{
		category: strings.TrimSpace(input.Category),
		search:   strings.ToLower(strings.TrimSpace(input.Search)),
		limit:    page.Limit,
		offset:   page.Offset(),
	}
}

func likePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}
