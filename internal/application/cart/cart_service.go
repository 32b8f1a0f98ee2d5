package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
)

// SettingsLoader fills a typed settings struct for a store
type SettingsLoader interface {
	LoadSettings(ctx context.Context, storeID uuid.UUID, settings any) error
}

// AddToCartInput describes one add-to-cart request
type AddToCartInput struct {
	StoreID              uuid.UUID
	Customer             *customer.Customer
	ProductID            uuid.UUID
	CartType             cart.Type
	Quantity             int
	CustomerEnteredPrice decimal.Decimal
}

// Line is a cart item joined with its product
type Line struct {
	Item    cart.Item
	Product *catalog.Product
}

// Subtotal is the undiscounted line amount
func (l Line) Subtotal() decimal.Decimal {
	price := l.Product.Price
	if l.Item.CustomerEnteredPrice.IsPositive() {
		price = l.Item.CustomerEnteredPrice
	}
	return price.Mul(decimal.NewFromInt(int64(l.Item.Quantity)))
}

// CartService manages shopping carts and wishlists
type CartService struct {
	repo      cart.Repository
	products  catalog.ProductRepository
	settings  SettingsLoader
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewCartService creates a new CartService
func NewCartService(
	repo cart.Repository,
	products catalog.ProductRepository,
	settings SettingsLoader,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		repo:      repo,
		products:  products,
		settings:  settings,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *CartService) cartSettings(ctx context.Context, storeID uuid.UUID) (configuration.ShoppingCartSettings, error) {
	cs := configuration.DefaultShoppingCartSettings()
	err := s.settings.LoadSettings(ctx, storeID, &cs)
	return cs, err
}

// GetShoppingCart returns a customer's lines of one type. When carts are
// shared between stores, lines from every store are returned.
func (s *CartService) GetShoppingCart(ctx context.Context, storeID, customerID uuid.UUID, cartType cart.Type) ([]cart.Item, error) {
	tenant, err := s.cartScope(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindForCustomer(ctx, tenant, customerID, cartType)
}

// cartScope is the store filter for cart queries; nil when carts are shared
func (s *CartService) cartScope(ctx context.Context, storeID uuid.UUID) (*uuid.UUID, error) {
	cs, err := s.cartSettings(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if cs.CartsSharedBetweenStores {
		return nil, nil
	}
	return &storeID, nil
}

// GetShoppingCartLines returns the cart joined with current product data
func (s *CartService) GetShoppingCartLines(ctx context.Context, storeID, customerID uuid.UUID, cartType cart.Type) ([]Line, error) {
	items, err := s.GetShoppingCart(ctx, storeID, customerID, cartType)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, items)
}

// join looks each line's product up in the store the line was added in
func (s *CartService) join(ctx context.Context, items []cart.Item) ([]Line, error) {
	if len(items) == 0 {
		return nil, nil
	}
	idsByStore := make(map[uuid.UUID][]uuid.UUID)
	for _, item := range items {
		idsByStore[item.TenantID] = append(idsByStore[item.TenantID], item.ProductID)
	}
	type productKey struct{ store, id uuid.UUID }
	byKey := make(map[productKey]*catalog.Product, len(items))
	for store, ids := range idsByStore {
		products, err := s.products.FindByIDs(ctx, store, ids)
		if err != nil {
			return nil, err
		}
		for i := range products {
			byKey[productKey{store, products[i].ID}] = &products[i]
		}
	}
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		p, ok := byKey[productKey{item.TenantID, item.ProductID}]
		if !ok {
			s.logger.Warn("Cart line references a missing product",
				zap.String("item_id", item.ID.String()),
				zap.String("product_id", item.ProductID.String()))
			continue
		}
		lines = append(lines, Line{Item: item, Product: p})
	}
	return lines, nil
}

// GetStandardWarnings checks a product and quantity against the catalog rules
func (s *CartService) GetStandardWarnings(p *catalog.Product, cartType cart.Type, quantity int) cart.Warnings {
	var w cart.Warnings
	if p.Deleted {
		w.Add("Product is deleted")
		return w
	}
	if !p.Published {
		w.Add("Product is not published")
	}
	if cartType == cart.TypeShoppingCart && p.DisableBuyButton {
		w.Add("Buying is disabled for this product")
	}
	if cartType == cart.TypeWishlist && p.DisableWishlistButton {
		w.Add("Wishlist is disabled for this product")
	}
	if quantity <= 0 {
		w.Add("Quantity should be positive")
		return w
	}
	if quantity < p.OrderMinimumQuantity {
		w.Add(fmt.Sprintf("The minimum quantity allowed for purchase is %d", p.OrderMinimumQuantity))
	}
	if p.OrderMaximumQuantity > 0 && quantity > p.OrderMaximumQuantity {
		w.Add(fmt.Sprintf("The maximum quantity allowed for purchase is %d", p.OrderMaximumQuantity))
	}
	if cartType == cart.TypeShoppingCart {
		if p.ManagesStock() && p.StockQuantity < quantity {
			if p.StockQuantity <= 0 {
				w.Add("Out of stock")
			} else {
				w.Add(fmt.Sprintf("Your quantity exceeds stock on hand. The maximum quantity that can be added is %d", p.StockQuantity))
			}
		}
		if !p.IsAvailableAt(s.now()) {
			w.Add("Product is not available")
		}
	}
	return w
}

// AddToCart adds a product or merges the quantity into an existing line.
// Warnings block the change without being an error.
func (s *CartService) AddToCart(ctx context.Context, in AddToCartInput) (cart.Warnings, error) {
	if in.Customer == nil {
		return nil, shared.NewDomainError("CUSTOMER_REQUIRED", "Customer is required")
	}
	if in.CartType == "" {
		in.CartType = cart.TypeShoppingCart
	}
	if !in.CartType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CART_TYPE", "Unknown shopping cart type")
	}

	product, err := s.products.FindByIDForTenant(ctx, in.StoreID, in.ProductID)
	if errors.Is(err, shared.ErrNotFound) {
		return cart.Warnings{"Product not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	existing, err := s.GetShoppingCart(ctx, in.StoreID, in.Customer.ID, in.CartType)
	if err != nil {
		return nil, err
	}
	var line *cart.Item
	for i := range existing {
		if existing[i].ProductID == in.ProductID {
			line = &existing[i]
			break
		}
	}

	if line != nil {
		quantity := line.Quantity + in.Quantity
		if w := s.GetStandardWarnings(product, in.CartType, quantity); !w.Empty() {
			return w, nil
		}
		if err := line.SetQuantity(quantity); err != nil {
			return nil, err
		}
		return nil, s.save(ctx, line)
	}

	cs, err := s.cartSettings(ctx, in.StoreID)
	if err != nil {
		return nil, err
	}
	w := s.GetStandardWarnings(product, in.CartType, in.Quantity)
	switch in.CartType {
	case cart.TypeShoppingCart:
		if len(existing) >= cs.MaximumShoppingCartItems {
			w.Add(fmt.Sprintf("The maximum number of distinct products allowed in the cart is %d", cs.MaximumShoppingCartItems))
		}
	case cart.TypeWishlist:
		if len(existing) >= cs.MaximumWishlistItems {
			w.Add(fmt.Sprintf("The maximum number of distinct products allowed in the wishlist is %d", cs.MaximumWishlistItems))
		}
	}
	if !w.Empty() {
		return w, nil
	}

	item, err := cart.NewItem(in.StoreID, in.Customer.ID, in.ProductID, in.CartType, in.Quantity)
	if err != nil {
		return nil, err
	}
	if in.CustomerEnteredPrice.IsPositive() {
		item.CustomerEnteredPrice = in.CustomerEnteredPrice
	}
	return nil, s.save(ctx, item)
}

// UpdateShoppingCartItem changes a line's quantity; zero or less removes it
func (s *CartService) UpdateShoppingCartItem(ctx context.Context, storeID, customerID, itemID uuid.UUID, quantity int) (cart.Warnings, error) {
	item, err := s.owned(ctx, storeID, customerID, itemID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, s.delete(ctx, item)
	}
	product, err := s.products.FindByIDForTenant(ctx, item.TenantID, item.ProductID)
	if err != nil {
		return nil, err
	}
	if w := s.GetStandardWarnings(product, item.CartType, quantity); !w.Empty() {
		return w, nil
	}
	if err := item.SetQuantity(quantity); err != nil {
		return nil, err
	}
	return nil, s.save(ctx, item)
}

// DeleteShoppingCartItem removes a line from a customer's cart
func (s *CartService) DeleteShoppingCartItem(ctx context.Context, storeID, customerID, itemID uuid.UUID) error {
	item, err := s.owned(ctx, storeID, customerID, itemID)
	if err != nil {
		return err
	}
	return s.delete(ctx, item)
}

// ClearShoppingCart empties a customer's cart in one store, or in every
// store when carts are shared
func (s *CartService) ClearShoppingCart(ctx context.Context, storeID, customerID uuid.UUID) error {
	tenant, err := s.cartScope(ctx, storeID)
	if err != nil {
		return err
	}
	return s.repo.DeleteForCustomer(ctx, tenant, customerID, cart.TypeShoppingCart)
}

// MoveWishlistToCart moves every wishlist line into the cart
func (s *CartService) MoveWishlistToCart(ctx context.Context, storeID uuid.UUID, c *customer.Customer) (cart.Warnings, error) {
	cs, err := s.cartSettings(ctx, storeID)
	if err != nil {
		return nil, err
	}
	items, err := s.GetShoppingCart(ctx, storeID, c.ID, cart.TypeWishlist)
	if err != nil {
		return nil, err
	}
	var all cart.Warnings
	for i := range items {
		w, err := s.AddToCart(ctx, AddToCartInput{
			StoreID:   storeID,
			Customer:  c,
			ProductID: items[i].ProductID,
			CartType:  cart.TypeShoppingCart,
			Quantity:  items[i].Quantity,
		})
		if err != nil {
			return nil, err
		}
		if !w.Empty() {
			all = append(all, w...)
			continue
		}
		if cs.MoveItemsFromWishlistToCart {
			if err := s.delete(ctx, &items[i]); err != nil {
				return nil, err
			}
		}
	}
	return all, nil
}

// MigrateShoppingCart moves the cart and wishlist of one customer to
// another, usually a guest who just signed in. Lines that would violate
// the cart rules are dropped.
func (s *CartService) MigrateShoppingCart(ctx context.Context, storeID uuid.UUID, from, to *customer.Customer) error {
	if from == nil || to == nil || from.ID == to.ID {
		return nil
	}
	for _, cartType := range []cart.Type{cart.TypeShoppingCart, cart.TypeWishlist} {
		items, err := s.repo.FindForCustomer(ctx, &storeID, from.ID, cartType)
		if err != nil {
			return err
		}
		for i := range items {
			w, err := s.AddToCart(ctx, AddToCartInput{
				StoreID:              storeID,
				Customer:             to,
				ProductID:            items[i].ProductID,
				CartType:             cartType,
				Quantity:             items[i].Quantity,
				CustomerEnteredPrice: items[i].CustomerEnteredPrice,
			})
			if err != nil {
				return err
			}
			if !w.Empty() {
				s.logger.Info("Dropping cart line during migration",
					zap.String("product_id", items[i].ProductID.String()),
					zap.Strings("warnings", w))
			}
			if err := s.delete(ctx, &items[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetShoppingCartWarnings validates a whole cart before checkout
func (s *CartService) GetShoppingCartWarnings(lines []Line) cart.Warnings {
	var w cart.Warnings
	if len(lines) == 0 {
		w.Add("Your shopping cart is empty")
		return w
	}
	for _, l := range lines {
		for _, msg := range s.GetStandardWarnings(l.Product, cart.TypeShoppingCart, l.Item.Quantity) {
			w.Add(l.Product.Name + ": " + msg)
		}
	}
	return w
}

func (s *CartService) owned(ctx context.Context, storeID, customerID, itemID uuid.UUID) (*cart.Item, error) {
	item, err := s.repo.FindByID(ctx, storeID, itemID)
	if err != nil {
		return nil, err
	}
	if item.CustomerID != customerID {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (s *CartService) save(ctx context.Context, item *cart.Item) error {
	if err := s.repo.Save(ctx, item); err != nil {
		return err
	}
	if err := shared.PublishPending(ctx, s.publisher, item); err != nil {
		s.logger.Warn("Failed to publish cart events", zap.Error(err))
	}
	return nil
}

func (s *CartService) delete(ctx context.Context, item *cart.Item) error {
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return err
	}
	item.AddDomainEvent(shared.NewEntityEvent(cart.EntityShoppingCartItem, shared.EntityDeleted, item.ID, item.TenantID).
		WithRef("customer_id", item.CustomerID))
	if err := shared.PublishPending(ctx, s.publisher, item); err != nil {
		s.logger.Warn("Failed to publish cart events", zap.Error(err))
	}
	return nil
}
