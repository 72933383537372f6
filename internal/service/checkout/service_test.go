package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

type stubCarts struct {
	cart       *domain.Cart
	merged     [][]cartsvc.MergeItem
	cleared    int
	mergeErr   error
	resolveErr error
}

func (s *stubCarts) MergeItems(_ context.Context, _ domain.Identity, items []cartsvc.MergeItem) (*domain.Cart, error) {
	s.merged = append(s.merged, items)
	if s.mergeErr != nil {
		return nil, s.mergeErr
	}
	return s.cart, nil
}

func (s *stubCarts) Resolve(_ context.Context, _ domain.Identity) (*domain.Cart, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.cart, nil
}

func (s *stubCarts) Clear(_ context.Context, _ domain.Identity) error {
	s.cleared++
	return nil
}

type stubItems struct {
	items []domain.CartItem
}

func (s *stubItems) ListItems(_ context.Context, _ string) ([]domain.CartItem, error) {
	return s.items, nil
}

type stubCatalog struct {
	products map[string]*domain.Product
}

func (s *stubCatalog) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type stubOrders struct {
	created []domain.Order
	err     error
}

func (s *stubOrders) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	o.ID = "order-1"
	s.created = append(s.created, o)
	return &o, nil
}

type stubGateway struct {
	calls      int
	session    domain.CheckoutSession
	err        error
	lastM      domain.CheckoutManifest
	lastC      domain.CustomerDetails
	confirmed  []string
	confirmErr error
}

func (s *stubGateway) CreateSession(_ context.Context, m domain.CheckoutManifest, c domain.CustomerDetails) (domain.CheckoutSession, error) {
	s.calls++
	s.lastM = m
	s.lastC = c
	if s.err != nil {
		return domain.CheckoutSession{}, s.err
	}
	return s.session, nil
}

func (s *stubGateway) ConfirmSession(_ context.Context, sessionID string) error {
	s.confirmed = append(s.confirmed, sessionID)
	return s.confirmErr
}

func fixture() (*Service, *stubCarts, *stubItems, *stubCatalog, *stubOrders, *stubGateway) {
	carts := &stubCarts{cart: &domain.Cart{ID: "cart-1"}}
	items := &stubItems{}
	catalog := &stubCatalog{products: map[string]*domain.Product{
		"p1": {ID: "p1", Name: "Kopi Gayo", PriceCents: 12000, Currency: "idr", IsActive: true},
		"p2": {ID: "p2", Name: "Teh Melati", PriceCents: 8000, Currency: "idr", IsActive: true},
	}}
	orders := &stubOrders{}
	gw := &stubGateway{session: domain.CheckoutSession{ID: "cs_123", URL: "https://pay.example/cs_123"}}
	svc := New(carts, items, catalog, orders, gw, "idr")
	return svc, carts, items, catalog, orders, gw
}

func TestStartEmptyCartNeverReachesGateway(t *testing.T) {
	svc, _, _, _, _, gw := fixture()

	_, err := svc.Start(context.Background(), domain.Identity{AnonymousID: "s"}, StartRequest{})
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatalf("gateway must not be called for an empty cart, got %d calls", gw.calls)
	}
}

func TestStartPricesFromCatalogNotClient(t *testing.T) {
	svc, _, items, _, _, gw := fixture()
	items.items = []domain.CartItem{
		{ID: "i1", CartID: "cart-1", ProductID: "p1", Quantity: 2},
		{ID: "i2", CartID: "cart-1", ProductID: "p2", Quantity: 1},
	}

	session, err := svc.Start(context.Background(), domain.Identity{AnonymousID: "s"}, StartRequest{
		// client-side price is a lie on purpose
		Items: []cartsvc.MergeItem{{ProductID: "p1", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.ID != "cs_123" || session.URL != "https://pay.example/cs_123" {
		t.Fatalf("session must be returned verbatim, got %+v", session)
	}
	if gw.calls != 1 {
		t.Fatalf("expected exactly one gateway call, got %d", gw.calls)
	}
	if got := gw.lastM.TotalCents(); got != 2*12000+8000 {
		t.Fatalf("manifest total %d, want %d", got, 2*12000+8000)
	}
	for _, l := range gw.lastM.Lines {
		if l.ProductID == "p1" && l.UnitPriceCents != 12000 {
			t.Fatalf("manifest must carry the catalog price, got %d", l.UnitPriceCents)
		}
	}
}

func TestStartMergesClientItemsOnce(t *testing.T) {
	svc, carts, items, _, _, _ := fixture()
	items.items = []domain.CartItem{{ID: "i1", CartID: "cart-1", ProductID: "p1", Quantity: 1}}

	req := StartRequest{Items: []cartsvc.MergeItem{{ProductID: "p1", Quantity: 3}}}
	if _, err := svc.Start(context.Background(), domain.Identity{AnonymousID: "s"}, req); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(carts.merged) != 1 {
		t.Fatalf("expected exactly one merge, got %d", len(carts.merged))
	}
}

func TestStartMixedCurrencyCartRejected(t *testing.T) {
	svc, _, items, catalog, _, gw := fixture()
	catalog.products["p2"].Currency = "usd"
	items.items = []domain.CartItem{
		{ID: "i1", CartID: "cart-1", ProductID: "p1", Quantity: 1},
		{ID: "i2", CartID: "cart-1", ProductID: "p2", Quantity: 1},
	}

	_, err := svc.Start(context.Background(), domain.Identity{AnonymousID: "s"}, StartRequest{})
	if !errors.Is(err, domain.ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatal("gateway must not see a mixed-currency manifest")
	}
}

func TestStartGatewayFailureNoRetryNoCartMutation(t *testing.T) {
	svc, carts, items, _, _, gw := fixture()
	items.items = []domain.CartItem{{ID: "i1", CartID: "cart-1", ProductID: "p1", Quantity: 1}}
	gw.err = &domain.GatewayError{Err: errors.New("stripe is down")}

	_, err := svc.Start(context.Background(), domain.Identity{AnonymousID: "s"}, StartRequest{})
	var gerr *domain.GatewayError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gw.calls != 1 {
		t.Fatalf("gateway must be called exactly once, got %d", gw.calls)
	}
	if carts.cleared != 0 {
		t.Fatal("a failed start must leave the cart untouched")
	}
}

func TestStartMissingProductFailsManifest(t *testing.T) {
	svc, _, items, catalog, _, gw := fixture()
	items.items = []domain.CartItem{{ID: "i1", CartID: "cart-1", ProductID: "gone", Quantity: 1}}
	delete(catalog.products, "gone")

	_, err := svc.Start(context.Background(), domain.Identity{AnonymousID: "s"}, StartRequest{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatal("gateway must not be called when the manifest fails")
	}
}

func TestCompleteWritesOrderAndClearsCart(t *testing.T) {
	svc, carts, items, _, orders, gw := fixture()
	items.items = []domain.CartItem{
		{ID: "i1", CartID: "cart-1", ProductID: "p1", Quantity: 2},
	}
	identity := domain.Identity{Customer: &domain.Customer{ID: "cust-1"}}
	details := domain.CustomerDetails{Name: "Budi", Email: "budi@example.com", Address: "Jl. Melati 1", City: "Bandung", PostalCode: "40111", Phone: "0811"}

	order, err := svc.Complete(context.Background(), identity, "cs_123", details)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if order.ID == "" {
		t.Fatal("expected persisted order id")
	}
	if len(orders.created) != 1 {
		t.Fatalf("expected one order, got %d", len(orders.created))
	}
	got := orders.created[0]
	if got.TotalCents != 24000 || got.PaymentStatus != domain.PaymentStatusPaid || got.PaymentSessionID != "cs_123" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got.CustomerID == nil || *got.CustomerID != "cust-1" {
		t.Fatalf("order must carry the customer id, got %v", got.CustomerID)
	}
	if len(got.Items) != 1 || got.Items[0].UnitPriceCents != 12000 {
		t.Fatalf("order items must freeze catalog prices, got %+v", got.Items)
	}
	if got.Contact != details {
		t.Fatalf("order must carry contact details, got %+v", got.Contact)
	}
	if carts.cleared != 1 {
		t.Fatalf("cart must be cleared once, got %d", carts.cleared)
	}
	if len(gw.confirmed) != 1 || gw.confirmed[0] != "cs_123" {
		t.Fatalf("session must be confirmed with the gateway, got %v", gw.confirmed)
	}
}

func TestCompleteUnpaidSessionWritesNothing(t *testing.T) {
	svc, carts, items, _, orders, gw := fixture()
	items.items = []domain.CartItem{{ID: "i1", CartID: "cart-1", ProductID: "p1", Quantity: 1}}
	gw.confirmErr = fmt.Errorf("checkout session cs_123 is unpaid: %w", domain.ErrConflict)

	_, err := svc.Complete(context.Background(), domain.Identity{AnonymousID: "s"}, "cs_123", domain.CustomerDetails{})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for an unpaid session, got %v", err)
	}
	if len(orders.created) != 0 {
		t.Fatal("an unconfirmed session must not produce an order")
	}
	if carts.cleared != 0 {
		t.Fatal("an unconfirmed session must leave the cart intact")
	}
}

func TestCompleteEmptyCart(t *testing.T) {
	svc, carts, _, _, _, _ := fixture()

	_, err := svc.Complete(context.Background(), domain.Identity{AnonymousID: "s"}, "cs_123", domain.CustomerDetails{})
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if carts.cleared != 0 {
		t.Fatal("failed complete must not clear the cart")
	}
}
