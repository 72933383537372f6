package checkout

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

// Gateway creates hosted payment sessions from a priced manifest and
// reports whether a session has actually been paid. Success and cancel
// redirect URLs are the gateway's own configuration.
type Gateway interface {
	CreateSession(ctx context.Context, manifest domain.CheckoutManifest, customer domain.CustomerDetails) (domain.CheckoutSession, error)
	ConfirmSession(ctx context.Context, sessionID string) error
}

type cartService interface {
	MergeItems(ctx context.Context, identity domain.Identity, items []cartsvc.MergeItem) (*domain.Cart, error)
	Resolve(ctx context.Context, identity domain.Identity) (*domain.Cart, error)
	Clear(ctx context.Context, identity domain.Identity) error
}

type cartItems interface {
	ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error)
}

type productCatalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type orderWriter interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
}

// Service assembles checkout attempts: it reconciles the client's cart
// mirror into the server cart, prices the manifest from the catalog and
// hands it to the payment gateway.
type Service struct {
	carts    cartService
	items    cartItems
	products productCatalog
	orders   orderWriter
	gateway  Gateway
	currency string
}

func New(carts cartService, items cartItems, products productCatalog, orders orderWriter, gateway Gateway, currency string) *Service {
	if currency == "" {
		currency = "idr"
	}
	return &Service{
		carts:    carts,
		items:    items,
		products: products,
		orders:   orders,
		gateway:  gateway,
		currency: currency,
	}
}

// StartRequest is the checkout form payload: the client-side cart mirror
// plus contact details. Client prices are carried for display only and are
// never trusted; the manifest re-reads every price from the catalog.
type StartRequest struct {
	Items    []cartsvc.MergeItem
	Customer domain.CustomerDetails
}

// BuildManifest prices the cart's current lines from the catalog. Returns
// domain.ErrEmptyCart when the cart holds no items, domain.ErrNotFound when
// a line references a product that no longer exists or is inactive, and
// domain.ErrCurrencyMismatch when the lines are not all priced in one
// currency.
func (s *Service) BuildManifest(ctx context.Context, cartID string) (domain.CheckoutManifest, error) {
	items, err := s.items.ListItems(ctx, cartID)
	if err != nil {
		return domain.CheckoutManifest{}, err
	}
	if len(items) == 0 {
		return domain.CheckoutManifest{}, domain.ErrEmptyCart
	}

	m := domain.CheckoutManifest{CartID: cartID, Currency: s.currency}
	sawCurrency := false
	for _, it := range items {
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return domain.CheckoutManifest{}, err
		}
		if !p.IsActive {
			return domain.CheckoutManifest{}, domain.ErrNotFound
		}
		if p.Currency != "" {
			if sawCurrency && p.Currency != m.Currency {
				return domain.CheckoutManifest{}, fmt.Errorf("cart %s mixes %s and %s: %w", cartID, m.Currency, p.Currency, domain.ErrCurrencyMismatch)
			}
			m.Currency = p.Currency
			sawCurrency = true
		}
		m.Lines = append(m.Lines, domain.ManifestLine{
			ProductID:      p.ID,
			Name:           p.Name,
			UnitPriceCents: p.PriceCents,
			Quantity:       it.Quantity,
			ImageURL:       p.ImageURL,
		})
	}
	return m, nil
}

// Start runs one checkout attempt: merge the client mirror into the server
// cart exactly once, build a fresh manifest and open a gateway session. The
// gateway is called at most once per attempt; a failed call surfaces as-is
// with the cart untouched, and the client retries by starting over.
func (s *Service) Start(ctx context.Context, identity domain.Identity, req StartRequest) (domain.CheckoutSession, error) {
	cart, err := s.carts.MergeItems(ctx, identity, req.Items)
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	manifest, err := s.BuildManifest(ctx, cart.ID)
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	return s.gateway.CreateSession(ctx, manifest, req.Customer)
}

// Complete records the order once the gateway confirms the session was
// paid: line prices are frozen from a fresh manifest, then the cart is
// emptied. A session id alone proves nothing, so the gateway is asked
// before any state changes.
func (s *Service) Complete(ctx context.Context, identity domain.Identity, sessionID string, details domain.CustomerDetails) (*domain.Order, error) {
	if err := s.gateway.ConfirmSession(ctx, sessionID); err != nil {
		return nil, err
	}
	cart, err := s.carts.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	manifest, err := s.BuildManifest(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	o := domain.Order{
		Status:           domain.OrderStatusCompleted,
		TotalCents:       manifest.TotalCents(),
		Currency:         manifest.Currency,
		PaymentSessionID: sessionID,
		PaymentStatus:    domain.PaymentStatusPaid,
		Contact:          details,
	}
	if identity.Customer != nil {
		id := identity.Customer.ID
		o.CustomerID = &id
	}
	for _, l := range manifest.Lines {
		o.Items = append(o.Items, domain.OrderItem{
			ProductID:      l.ProductID,
			Name:           l.Name,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       l.Quantity,
		})
	}

	created, err := s.orders.Create(ctx, o)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Clear(ctx, identity); err != nil {
		return nil, err
	}
	return created, nil
}
