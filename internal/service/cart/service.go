package cart

import (
	"context"
	"errors"

	"storefront/internal/cache"
	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	productrepo "storefront/internal/repository/product"
)

// Service resolves and mutates server-side carts. All operations take the
// request identity rather than a raw cart id so ownership is never implied
// by the caller.
type Service struct {
	repo      cartrepo.Repository
	products  productRepo
	summaries summaryCache
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type summaryCache interface {
	Fetch(ctx context.Context, cartID string) (cache.Summary, bool, error)
	Store(ctx context.Context, cartID string, sum cache.Summary) error
	Invalidate(ctx context.Context, cartID string) error
}

// New builds the cart service. summaries may be nil, which disables the
// summary cache entirely.
func New(repo cartrepo.Repository, products productrepo.Repository, summaries *cache.SummaryStore) *Service {
	s := &Service{repo: repo, products: products}
	if summaries != nil {
		s.summaries = summaries
	}
	return s
}

// View is the cart as rendered to clients: line items joined with current
// product data plus totals.
type View struct {
	CartID     string     `json:"cartId,omitempty"`
	Items      []ItemView `json:"items"`
	TotalItems int64      `json:"totalItems"`
	TotalCents int64      `json:"totalCents"`
}

type ItemView struct {
	ID             string `json:"id"`
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int64  `json:"quantity"`
	ImageURL       string `json:"imageUrl,omitempty"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

// MergeItem is one line of a client-side cart mirror to reconcile into the
// server cart.
type MergeItem struct {
	ProductID string
	Quantity  int64
}

// Resolve finds or lazily creates the single cart owned by the identity.
// Idempotent under retry: when a concurrent create wins the unique
// constraint race, the lookup is retried instead of failing the request.
func (s *Service) Resolve(ctx context.Context, identity domain.Identity) (*domain.Cart, error) {
	owner, err := ownerFor(identity)
	if err != nil {
		return nil, err
	}
	cart, err := s.repo.GetByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	cart, err = s.repo.Create(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if errors.Is(err, domain.ErrConflict) {
		return s.repo.GetByOwner(ctx, owner)
	}
	return nil, err
}

// Get returns the identity's cart view. A missing cart renders as an empty
// view; reads never create carts.
func (s *Service) Get(ctx context.Context, identity domain.Identity) (View, error) {
	owner, err := ownerFor(identity)
	if err != nil {
		return View{}, err
	}
	cart, err := s.repo.GetByOwner(ctx, owner)
	if errors.Is(err, domain.ErrNotFound) {
		return emptyView(), nil
	}
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, cart.ID)
}

// Summary returns the cached item/price totals for the identity's cart,
// recomputing on a miss.
func (s *Service) Summary(ctx context.Context, identity domain.Identity) (cache.Summary, error) {
	owner, err := ownerFor(identity)
	if err != nil {
		return cache.Summary{}, err
	}
	cart, err := s.repo.GetByOwner(ctx, owner)
	if errors.Is(err, domain.ErrNotFound) {
		return cache.Summary{}, nil
	}
	if err != nil {
		return cache.Summary{}, err
	}
	if s.summaries != nil {
		if sum, ok, err := s.summaries.Fetch(ctx, cart.ID); err == nil && ok {
			return sum, nil
		}
	}
	v, err := s.view(ctx, cart.ID)
	if err != nil {
		return cache.Summary{}, err
	}
	return cache.Summary{TotalItems: v.TotalItems, TotalCents: v.TotalCents}, nil
}

// AddItem accumulates quantity for (cart, product): adding the same product
// twice yields the summed quantity, also under concurrent requests.
func (s *Service) AddItem(ctx context.Context, identity domain.Identity, productID string, quantity int64) (View, error) {
	if quantity < 1 {
		return View{}, domain.ErrInvalidQuantity
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return View{}, err
	}
	if !p.IsActive {
		return View{}, domain.ErrNotFound
	}
	cart, err := s.Resolve(ctx, identity)
	if err != nil {
		return View{}, err
	}
	if _, err := s.repo.UpsertItem(ctx, cart.ID, productID, quantity); err != nil {
		return View{}, err
	}
	s.invalidate(ctx, cart.ID)
	return s.view(ctx, cart.ID)
}

// UpdateItemQuantity replaces the quantity with the exact value given;
// values <= 0 remove the line item, matching removal semantics.
func (s *Service) UpdateItemQuantity(ctx context.Context, identity domain.Identity, itemID string, quantity int64) (View, error) {
	cart, err := s.ownedCart(ctx, identity)
	if err != nil {
		return View{}, err
	}
	if quantity <= 0 {
		if err := s.repo.DeleteItem(ctx, cart.ID, itemID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return View{}, err
		}
	} else {
		if err := s.repo.SetItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
			return View{}, err
		}
	}
	s.invalidate(ctx, cart.ID)
	return s.view(ctx, cart.ID)
}

// RemoveItem deletes a line item. Removing an item that is already gone is
// not an error.
func (s *Service) RemoveItem(ctx context.Context, identity domain.Identity, itemID string) (View, error) {
	cart, err := s.ownedCart(ctx, identity)
	if err != nil {
		return View{}, err
	}
	if err := s.repo.DeleteItem(ctx, cart.ID, itemID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return View{}, err
	}
	s.invalidate(ctx, cart.ID)
	return s.view(ctx, cart.ID)
}

// Clear deletes all line items from the identity's cart. Clearing a missing
// cart is a no-op.
func (s *Service) Clear(ctx context.Context, identity domain.Identity) error {
	owner, err := ownerFor(identity)
	if err != nil {
		return err
	}
	cart, err := s.repo.GetByOwner(ctx, owner)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return err
	}
	s.invalidate(ctx, cart.ID)
	return nil
}

// MergeItems reconciles a client-side cart mirror into the server cart with
// accumulate semantics: overlapping products sum their quantities. Invoked
// exactly once per checkout attempt. Lines referencing unknown or inactive
// products are skipped rather than failing the whole merge.
func (s *Service) MergeItems(ctx context.Context, identity domain.Identity, items []MergeItem) (*domain.Cart, error) {
	cart, err := s.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.Quantity < 1 || it.ProductID == "" {
			continue
		}
		p, err := s.products.GetByID(ctx, it.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			continue
		}
		if _, err := s.repo.UpsertItem(ctx, cart.ID, it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}
	s.invalidate(ctx, cart.ID)
	return cart, nil
}

// AttachCustomer claims the anonymous session's cart for a freshly
// authenticated customer. If the customer already owns a cart, the
// anonymous cart's items are merged into it (quantities summed) and the
// anonymous cart is deleted. Never leaves two carts for one customer.
func (s *Service) AttachCustomer(ctx context.Context, anonymousID, customerID string) error {
	if anonymousID == "" {
		return nil
	}
	sid := anonymousID
	anonCart, err := s.repo.GetByOwner(ctx, cartrepo.Owner{SessionID: &sid})
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	cid := customerID
	custCart, err := s.repo.GetByOwner(ctx, cartrepo.Owner{CustomerID: &cid})
	if errors.Is(err, domain.ErrNotFound) {
		err = s.repo.AssignCustomer(ctx, anonCart.ID, customerID)
		if err == nil {
			s.invalidate(ctx, anonCart.ID)
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		// Lost a race against a concurrent cart create; fall through to the
		// merge path.
		custCart, err = s.repo.GetByOwner(ctx, cartrepo.Owner{CustomerID: &cid})
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	items, err := s.repo.ListItems(ctx, anonCart.ID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if _, err := s.repo.UpsertItem(ctx, custCart.ID, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, anonCart.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	s.invalidate(ctx, anonCart.ID)
	s.invalidate(ctx, custCart.ID)
	return nil
}

func (s *Service) ownedCart(ctx context.Context, identity domain.Identity) (*domain.Cart, error) {
	owner, err := ownerFor(identity)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByOwner(ctx, owner)
}

func (s *Service) view(ctx context.Context, cartID string) (View, error) {
	details, err := s.repo.ListItemDetails(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	v := emptyView()
	v.CartID = cartID
	for _, d := range details {
		if !d.IsActive {
			continue
		}
		line := d.UnitPriceCents * d.Item.Quantity
		v.Items = append(v.Items, ItemView{
			ID:             d.Item.ID,
			ProductID:      d.Item.ProductID,
			Name:           d.Name,
			UnitPriceCents: d.UnitPriceCents,
			Quantity:       d.Item.Quantity,
			ImageURL:       d.ImageURL,
			LineTotalCents: line,
		})
		v.TotalItems += d.Item.Quantity
		v.TotalCents += line
	}
	if s.summaries != nil {
		// Cache writes are advisory; a failed store never fails the read.
		_ = s.summaries.Store(ctx, cartID, cache.Summary{TotalItems: v.TotalItems, TotalCents: v.TotalCents})
	}
	return v, nil
}

func (s *Service) invalidate(ctx context.Context, cartID string) {
	if s.summaries == nil {
		return
	}
	_ = s.summaries.Invalidate(ctx, cartID)
}

func ownerFor(identity domain.Identity) (cartrepo.Owner, error) {
	switch {
	case identity.Customer != nil:
		id := identity.Customer.ID
		return cartrepo.Owner{CustomerID: &id}, nil
	case identity.AnonymousID != "":
		sid := identity.AnonymousID
		return cartrepo.Owner{SessionID: &sid}, nil
	default:
		return cartrepo.Owner{}, errors.New("identity has no owner")
	}
}

func emptyView() View {
	return View{Items: []ItemView{}}
}
