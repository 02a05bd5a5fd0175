package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type stubProductService struct {
	listFn   func(ctx context.Context, input product.ListProductsInput) (*product.ProductListResult, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*product.ProductDTO, error)
	createFn func(ctx context.Context, input product.ProductInput) (*product.ProductDTO, error)
	updateFn func(ctx context.Context, id uuid.UUID, input product.ProductInput) (*product.ProductDTO, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
	adminAll []product.ProductDTO
}

func (s stubProductService) ListProducts(ctx context.Context, input product.ListProductsInput) (*product.ProductListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, input)
	}
	return &product.ProductListResult{}, nil
}

func (s stubProductService) GetProduct(ctx context.Context, id uuid.UUID) (*product.ProductDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s stubProductService) AdminListProducts(ctx context.Context) ([]product.ProductDTO, error) {
	return s.adminAll, nil
}

func (s stubProductService) CreateProduct(ctx context.Context, input product.ProductInput) (*product.ProductDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &product.ProductDTO{}, nil
}

func (s stubProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input product.ProductInput) (*product.ProductDTO, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, input)
	}
	return &product.ProductDTO{ID: id}, nil
}

func (s stubProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func TestProductsListParsesFilters(t *testing.T) {
	t.Parallel()

	var got product.ListProductsInput
	svc := stubProductService{
		listFn: func(ctx context.Context, input product.ListProductsInput) (*product.ProductListResult, error) {
			got = input
			return &product.ProductListResult{Total: 1, Page: input.Pagination.Page, Limit: input.Pagination.Limit}, nil
		},
	}

	resp := serve(ProductsList(svc, nil), newRequest(http.MethodGet, "/api/v1/products?category=floral&search=+Rose+&page=2&limit=5", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.Category != "floral" || got.Search != "Rose" {
		t.Fatalf("unexpected filters %+v", got)
	}
	if got.Pagination.Page != 2 || got.Pagination.Limit != 5 {
		t.Fatalf("unexpected pagination %+v", got.Pagination)
	}
}

func TestProductsListDefaults(t *testing.T) {
	t.Parallel()

	var got product.ListProductsInput
	svc := stubProductService{
		listFn: func(ctx context.Context, input product.ListProductsInput) (*product.ProductListResult, error) {
			got = input
			return &product.ProductListResult{}, nil
		},
	}

	serve(ProductsList(svc, nil), newRequest(http.MethodGet, "/api/v1/products", nil))
	if got.Pagination.Page != pagination.FirstPage || got.Pagination.Limit != pagination.DefaultPageSize {
		t.Fatalf("unexpected defaults %+v", got.Pagination)
	}

	if resp := serve(ProductsList(svc, nil), newRequest(http.MethodGet, "/api/v1/products?page=0", nil)); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for page 0 got %d", resp.Code)
	}
}

func TestProductDetail(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	svc := stubProductService{
		getFn: func(ctx context.Context, got uuid.UUID) (*product.ProductDTO, error) {
			return &product.ProductDTO{ID: got, Name: "Rose Garden", Price: decimal.RequireFromString("10.00")}, nil
		},
	}

	resp := serve(ProductDetail(svc, nil), withURLParams(newRequest(http.MethodGet, "/", nil), map[string]string{"productId": id.String()}))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var body product.ProductDTO
	decodeData(t, resp, &body)
	if body.ID != id || body.Name != "Rose Garden" {
		t.Fatalf("unexpected payload %+v", body)
	}

	resp = serve(ProductDetail(stubProductService{}, nil), withURLParams(newRequest(http.MethodGet, "/", nil), map[string]string{"productId": id.String()}))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestAdminProductCreate(t *testing.T) {
	t.Parallel()

	svc := stubProductService{
		createFn: func(ctx context.Context, input product.ProductInput) (*product.ProductDTO, error) {
			if input.Price == nil || input.Stock == nil {
				t.Fatal("expected price and stock")
			}
			return &product.ProductDTO{ID: uuid.New(), Name: input.Name, Price: *input.Price, Stock: *input.Stock}, nil
		},
	}

	resp := serve(AdminProductCreate(svc, nil), newRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Oud","price":"49.50","stock":3}`)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	var body product.ProductDTO
	decodeData(t, resp, &body)
	if body.Name != "Oud" || body.Stock != 3 || !body.Price.Equal(decimal.RequireFromString("49.5")) {
		t.Fatalf("unexpected payload %+v", body)
	}

	resp = serve(AdminProductCreate(svc, nil), newRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Oud"}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing price got %d", resp.Code)
	}
}

func TestAdminProductUpdateAndDelete(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	svc := stubProductService{
		deleteFn: func(ctx context.Context, got uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeConflict, "product is referenced by orders")
		},
	}

	req := withURLParams(newRequest(http.MethodPut, "/", strings.NewReader(`{"name":"Oud","price":"1","stock":0}`)), map[string]string{"productId": id.String()})
	if resp := serve(AdminProductUpdate(svc, nil), req); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	req = withURLParams(newRequest(http.MethodDelete, "/", nil), map[string]string{"productId": id.String()})
	resp := serve(AdminProductDelete(svc, nil), req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if apiErr := decodeError(t, resp); apiErr.Code != string(pkgerrors.CodeConflict) {
		t.Fatalf("unexpected code %s", apiErr.Code)
	}
}

func TestAdminProductsList(t *testing.T) {
	t.Parallel()

	svc := stubProductService{adminAll: []product.ProductDTO{{Name: "A"}, {Name: "B"}}}
	resp := serve(AdminProductsList(svc, nil), newRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var body []product.ProductDTO
	decodeData(t, resp, &body)
	if len(body) != 2 {
		t.Fatalf("expected 2 products got %d", len(body))
	}
}
