package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type memStore struct {
	mu     sync.Mutex
	values map[string]string
	counts map[string]int64
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}, counts: map[string]int64{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = fmt.Sprint(value)
	return nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (m *memStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

type stubProductService struct{}

func (stubProductService) ListProducts(ctx context.Context, input product.ListProductsInput) (*product.ProductListResult, error) {
	return &product.ProductListResult{Products: []product.ProductDTO{}}, nil
}

func (stubProductService) GetProduct(ctx context.Context, id uuid.UUID) (*product.ProductDTO, error) {
	return &product.ProductDTO{ID: id}, nil
}

func (stubProductService) AdminListProducts(ctx context.Context) ([]product.ProductDTO, error) {
	return []product.ProductDTO{}, nil
}

func (stubProductService) CreateProduct(ctx context.Context, input product.ProductInput) (*product.ProductDTO, error) {
	return &product.ProductDTO{}, nil
}

func (stubProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input product.ProductInput) (*product.ProductDTO, error) {
	return &product.ProductDTO{ID: id}, nil
}

func (stubProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubCartService struct{}

func (stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cart.AddItemInput) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (stubCartService) UpdateItem(ctx context.Context, userID uuid.UUID, input cart.UpdateItemInput) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (stubCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type countingCheckoutService struct {
	mu    sync.Mutex
	calls int
}

func (s *countingCheckoutService) Checkout(ctx context.Context, userID uuid.UUID, input checkout.CheckoutInput) (*checkout.CheckoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return &checkout.CheckoutResult{OrderID: uuid.New()}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*orders.OrderDetail, error) {
	return &orders.OrderDetail{ID: orderID}, nil
}

func (stubOrdersService) ListAllOrders(ctx context.Context, params pagination.Params, filters orders.AdminOrderFilters) (*orders.AdminOrderList, error) {
	return &orders.AdminOrderList{}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "storefront",
			ExpirationMinutes: 15,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

type testRouter struct {
	handler  http.Handler
	checkout *countingCheckoutService
}

func newTestRouter(t *testing.T, cfg *config.Config, readiness map[string]controllers.Pinger) testRouter {
	t.Helper()
	reg := prometheus.NewRegistry()
	checkoutSvc := &countingCheckoutService{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	handler := NewRouter(cfg, logg, Dependencies{
		Readiness:      readiness,
		Redis:          newMemStore(),
		Sessions:       stubSessionManager{},
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Products:       stubProductService{},
		Cart:           stubCartService{},
		Checkout:       checkoutSvc,
		Orders:         stubOrdersService{},
	})
	return testRouter{handler: handler, checkout: checkoutSvc}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func do(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	cfg := testConfig()

	router := newTestRouter(t, cfg, map[string]controllers.Pinger{"db": stubPinger{}, "redis": stubPinger{}})
	if resp := do(router.handler, httptest.NewRequest(http.MethodGet, "/health/live", nil)); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live got %d", resp.Code)
	}
	if resp := do(router.handler, httptest.NewRequest(http.MethodGet, "/health/ready", nil)); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready got %d", resp.Code)
	}

	router = newTestRouter(t, cfg, map[string]controllers.Pinger{"db": stubPinger{err: fmt.Errorf("down")}})
	if resp := do(router.handler, httptest.NewRequest(http.MethodGet, "/health/ready", nil)); resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for ready got %d", resp.Code)
	}
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)

	if resp := do(router.handler, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for products got %d", resp.Code)
	}
	if resp := do(router.handler, httptest.NewRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for product detail got %d", resp.Code)
	}
}

func TestShopperRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`)),
		httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil),
	} {
		if resp := do(router.handler, req); resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s %s got %d", req.Method, req.URL.Path, resp.Code)
		}
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, nil)

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/admin/products", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	if resp := do(router.handler, customer); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	if resp := do(router.handler, admin); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestCheckoutReplaysIdempotentRequest(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, nil)
	token := buildToken(t, cfg, enums.UserRoleCustomer)

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "order-1")
		return do(router.handler, req)
	}

	first := send(`{"shipping_address":"1 Main St","phone":"555"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", first.Code)
	}
	second := send(`{"shipping_address":"1 Main St","phone":"555"}`)
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 got %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected identical replay, got %q and %q", first.Body.String(), second.Body.String())
	}
	if router.checkout.calls != 1 {
		t.Fatalf("expected one checkout call got %d", router.checkout.calls)
	}

	reused := send(`{"shipping_address":"2 Other St","phone":"555"}`)
	if reused.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key got %d", reused.Code)
	}
}

func TestMetricsEndpointExposesRouteCounters(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)

	do(router.handler, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	resp := do(router.handler, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `route="/api/v1/products"`) {
		t.Fatalf("expected products route in metrics output:\n%s", resp.Body.String())
	}
}
