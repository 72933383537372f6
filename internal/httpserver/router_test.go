package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/cache"
	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
	"github.com/gin-gonic/gin"
)

type stubCartAPI struct {
	view     cartsvc.View
	summary  cache.Summary
	err      error
	attached [][2]string
	added    []int64
}

func (s *stubCartAPI) Get(_ context.Context, _ domain.Identity) (cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartAPI) Summary(_ context.Context, _ domain.Identity) (cache.Summary, error) {
	return s.summary, s.err
}

func (s *stubCartAPI) AddItem(_ context.Context, _ domain.Identity, _ string, quantity int64) (cartsvc.View, error) {
	s.added = append(s.added, quantity)
	if s.err != nil {
		return cartsvc.View{}, s.err
	}
	if quantity < 1 {
		return cartsvc.View{}, domain.ErrInvalidQuantity
	}
	return s.view, nil
}

func (s *stubCartAPI) UpdateItemQuantity(_ context.Context, _ domain.Identity, _ string, _ int64) (cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartAPI) RemoveItem(_ context.Context, _ domain.Identity, _ string) (cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartAPI) Clear(_ context.Context, _ domain.Identity) error {
	return s.err
}

func (s *stubCartAPI) AttachCustomer(_ context.Context, anonymousID, customerID string) error {
	s.attached = append(s.attached, [2]string{anonymousID, customerID})
	return nil
}

type stubCheckoutAPI struct {
	session domain.CheckoutSession
	order   *domain.Order
	err     error
	calls   int
}

func (s *stubCheckoutAPI) Start(_ context.Context, _ domain.Identity, _ checkoutsvc.StartRequest) (domain.CheckoutSession, error) {
	s.calls++
	return s.session, s.err
}

func (s *stubCheckoutAPI) Complete(_ context.Context, _ domain.Identity, _ string, _ domain.CustomerDetails) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

type stubCustomerAPI struct {
	byToken   map[string]*domain.Customer
	login     *domain.Customer
	customers []domain.Customer
}

func (s *stubCustomerAPI) Signup(_ context.Context, in customersvc.SignupInput) (*domain.Customer, error) {
	return &domain.Customer{ID: "cust-new", Email: in.Email}, nil
}

func (s *stubCustomerAPI) Login(_ context.Context, _, _ string) (*domain.Customer, string, string, error) {
	if s.login == nil {
		return nil, "", "", customersvc.ErrInvalidCredentials
	}
	return s.login, "access-token", "refresh-token", nil
}

func (s *stubCustomerAPI) Logout(_ context.Context, _ string) error { return nil }

func (s *stubCustomerAPI) LookupByToken(_ context.Context, token string) (*domain.Customer, error) {
	if c, ok := s.byToken[token]; ok {
		return c, nil
	}
	return nil, customersvc.ErrInvalidToken
}

func (s *stubCustomerAPI) List(_ context.Context) ([]domain.Customer, error) {
	return s.customers, nil
}

func (s *stubCustomerAPI) AccessTTLSeconds() int { return 3600 }

type stubProductAPI struct{}

func (stubProductAPI) List(_ context.Context, _ string) ([]domain.Product, error)  { return nil, nil }
func (stubProductAPI) ListAll(_ context.Context) ([]domain.Product, error)         { return nil, nil }
func (stubProductAPI) Get(_ context.Context, _ string) (*domain.Product, error)    { return nil, domain.ErrNotFound }
func (stubProductAPI) GetBySlug(_ context.Context, _ string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}
func (stubProductAPI) Save(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, nil
}
func (stubProductAPI) Delete(_ context.Context, _ string) error { return nil }

type stubCategoryAPI struct{}

func (stubCategoryAPI) List(_ context.Context) ([]domain.Category, error) { return nil, nil }
func (stubCategoryAPI) GetBySlug(_ context.Context, _ string) (*domain.Category, error) {
	return nil, domain.ErrNotFound
}
func (stubCategoryAPI) Save(_ context.Context, c domain.Category) (*domain.Category, error) {
	return &c, nil
}
func (stubCategoryAPI) Delete(_ context.Context, _ string) error { return nil }

type stubOrderAPI struct{}

func (stubOrderAPI) GetByID(_ context.Context, _ string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}
func (stubOrderAPI) ListByCustomer(_ context.Context, _ string) ([]domain.Order, error) {
	return nil, nil
}
func (stubOrderAPI) List(_ context.Context) ([]domain.Order, error) { return nil, nil }

func testRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard, "", 0)
	return buildRouter(logger, nil, deps, Options{FrontendOrigin: "http://localhost:3000"})
}

func defaultDeps() Deps {
	return Deps{
		Carts:      &stubCartAPI{view: cartsvc.View{Items: []cartsvc.ItemView{}}},
		Checkout:   &stubCheckoutAPI{session: domain.CheckoutSession{ID: "cs_1", URL: "https://pay.example/cs_1"}},
		Customers:  &stubCustomerAPI{byToken: map[string]*domain.Customer{}},
		Products:   stubProductAPI{},
		Categories: stubCategoryAPI{},
		Orders:     stubOrderAPI{},
	}
}

func TestCartRequestMintsSessionCookie(t *testing.T) {
	router := testRouter(defaultDeps())

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookieName {
			cookie = ck
		}
	}
	if cookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HTTP-only")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("expected SameSite=Lax, got %v", cookie.SameSite)
	}
	if cookie.Path != "/" {
		t.Fatalf("expected path /, got %q", cookie.Path)
	}
	if cookie.MaxAge != sessionCookieMaxAge {
		t.Fatalf("expected max age %d, got %d", sessionCookieMaxAge, cookie.MaxAge)
	}
}

func TestCartRequestReusesExistingCookie(t *testing.T) {
	router := testRouter(defaultDeps())

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "existing-session"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookieName {
			t.Fatalf("existing session must not be replaced, got new cookie %q", ck.Value)
		}
	}
}

func TestAddCartItemRequiresProductID(t *testing.T) {
	router := testRouter(defaultDeps())

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"quantity": 2}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAddCartItemRejectsExplicitZeroQuantity(t *testing.T) {
	deps := defaultDeps()
	carts := deps.Carts.(*stubCartAPI)
	router := testRouter(deps)

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"productId":"p1","quantity":0}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for explicit zero quantity, got %d", rec.Code)
	}
	if len(carts.added) != 1 || carts.added[0] != 0 {
		t.Fatalf("explicit zero must reach the service untouched, got %v", carts.added)
	}
}

func TestAddCartItemDefaultsOmittedQuantityToOne(t *testing.T) {
	deps := defaultDeps()
	carts := deps.Carts.(*stubCartAPI)
	router := testRouter(deps)

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"productId":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(carts.added) != 1 || carts.added[0] != 1 {
		t.Fatalf("omitted quantity must default to 1, got %v", carts.added)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid quantity", domain.ErrInvalidQuantity, http.StatusBadRequest},
		{"empty cart", domain.ErrEmptyCart, http.StatusBadRequest},
		{"currency mismatch", domain.ErrCurrencyMismatch, http.StatusBadRequest},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"conflict", domain.ErrConflict, http.StatusConflict},
		{"gateway", &domain.GatewayError{Err: errors.New("down")}, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		deps := defaultDeps()
		deps.Carts = &stubCartAPI{err: tc.err}
		router := testRouter(deps)

		req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"productId":"p1","quantity":1}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"error"`) {
			t.Fatalf("%s: error responses carry an error field, got %s", tc.name, rec.Body.String())
		}
	}
}

func TestCheckoutReturnsSessionVerbatim(t *testing.T) {
	router := testRouter(defaultDeps())

	body := `{
		"items": [{"id": "p1", "name": "Kopi", "price": 12000, "quantity": 2}],
		"customer": {"name": "Budi", "email": "budi@example.com", "address": "Jl. Melati 1",
		             "city": "Bandung", "postal_code": "40111", "phone": "0811"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := rec.Body.String()
	if !strings.Contains(got, `"id":"cs_1"`) || !strings.Contains(got, `"url":"https://pay.example/cs_1"`) {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestCheckoutRejectsIncompleteCustomer(t *testing.T) {
	deps := defaultDeps()
	checkout := deps.Checkout.(*stubCheckoutAPI)
	router := testRouter(deps)

	body := `{"items": [], "customer": {"name": "Budi"}}`
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if checkout.calls != 0 {
		t.Fatal("invalid payload must not reach the checkout service")
	}
}

func TestCheckoutGatewayFailure(t *testing.T) {
	deps := defaultDeps()
	deps.Checkout = &stubCheckoutAPI{err: &domain.GatewayError{Err: errors.New("stripe down")}}
	router := testRouter(deps)

	body := `{
		"items": [],
		"customer": {"name": "Budi", "email": "budi@example.com", "address": "Jl. Melati 1",
		             "city": "Bandung", "postal_code": "40111", "phone": "0811"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	router := testRouter(defaultDeps())

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminRequiresRole(t *testing.T) {
	deps := defaultDeps()
	customers := deps.Customers.(*stubCustomerAPI)
	customers.byToken["user-token"] = &domain.Customer{ID: "cust-1", Role: domain.RoleUser}
	customers.byToken["admin-token"] = &domain.Customer{ID: "cust-2", Role: domain.RoleAdmin}
	router := testRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestAdminListsCustomers(t *testing.T) {
	deps := defaultDeps()
	customers := deps.Customers.(*stubCustomerAPI)
	customers.byToken["admin-token"] = &domain.Customer{ID: "cust-2", Role: domain.RoleAdmin}
	customers.customers = []domain.Customer{
		{ID: "cust-1", Email: "budi@example.com", PasswordHash: "$2a$10$secret", Role: domain.RoleUser},
	}
	router := testRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/admin/customers", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "budi@example.com") {
		t.Fatalf("expected customer listing, got %s", body)
	}
	if strings.Contains(body, "secret") {
		t.Fatalf("listing must not leak password hashes, got %s", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/customers", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous request must get 401, got %d", rec.Code)
	}
}

func TestLoginClaimsAnonymousCart(t *testing.T) {
	deps := defaultDeps()
	carts := deps.Carts.(*stubCartAPI)
	deps.Customers.(*stubCustomerAPI).login = &domain.Customer{ID: "cust-1", Email: "budi@example.com"}
	router := testRouter(deps)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"budi@example.com","password":"Abcdefg1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-42"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(carts.attached) != 1 || carts.attached[0] != [2]string{"sess-42", "cust-1"} {
		t.Fatalf("expected cart claim for (sess-42, cust-1), got %v", carts.attached)
	}
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"", ""},
		{"Bearer", ""},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			c.Request.Header.Set("Authorization", tc.header)
		}
		if got := bearerToken(c); got != tc.want {
			t.Fatalf("header %q: got %q, want %q", tc.header, got, tc.want)
		}
	}
}
