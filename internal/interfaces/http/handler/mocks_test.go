package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	cartapp "github.com/storefront/backend/internal/application/cart"
	contentapp "github.com/storefront/backend/internal/application/content"
	customerapp "github.com/storefront/backend/internal/application/customer"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// MockCustomerService implements AccountService and CustomerManager
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, storeID, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) GetCustomerByGUID(ctx context.Context, guid uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, guid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) InsertGuestCustomer(ctx context.Context, storeID uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) RegisterCustomer(ctx context.Context, input customerapp.RegisterInput) (*customer.Customer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) ValidateCustomer(ctx context.Context, input customerapp.LoginInput) (*customerapp.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customerapp.LoginResult), args.Error(1)
}

func (m *MockCustomerService) RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TokenPair), args.Error(1)
}

func (m *MockCustomerService) Logout(ctx context.Context, claims *auth.Claims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockCustomerService) ChangePassword(ctx context.Context, input customerapp.ChangePasswordInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockCustomerService) UpdateAddresses(ctx context.Context, storeID, customerID uuid.UUID, billing, shipping customer.Address) (*customer.Customer, error) {
	args := m.Called(ctx, storeID, customerID, billing, shipping)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (shared.Paginated[customerapp.CustomerInfo], error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).(shared.Paginated[customerapp.CustomerInfo]), args.Error(1)
}

func (m *MockCustomerService) DeleteCustomer(ctx context.Context, storeID, customerID uuid.UUID) error {
	args := m.Called(ctx, storeID, customerID)
	return args.Error(0)
}

func (m *MockCustomerService) GetAllCustomerRoles(ctx context.Context, showHidden bool) ([]customer.CustomerRole, error) {
	args := m.Called(ctx, showHidden)
	return args.Get(0).([]customer.CustomerRole), args.Error(1)
}

// MockCartService implements CartService, CartReader and CartMigrator
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetShoppingCartLines(ctx context.Context, storeID, customerID uuid.UUID, cartType cart.Type) ([]cartapp.Line, error) {
	args := m.Called(ctx, storeID, customerID, cartType)
	return args.Get(0).([]cartapp.Line), args.Error(1)
}

func (m *MockCartService) GetShoppingCartWarnings(lines []cartapp.Line) cart.Warnings {
	args := m.Called(lines)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(cart.Warnings)
}

func (m *MockCartService) AddToCart(ctx context.Context, in cartapp.AddToCartInput) (cart.Warnings, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cart.Warnings), args.Error(1)
}

func (m *MockCartService) UpdateShoppingCartItem(ctx context.Context, storeID, customerID, itemID uuid.UUID, quantity int) (cart.Warnings, error) {
	args := m.Called(ctx, storeID, customerID, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cart.Warnings), args.Error(1)
}

func (m *MockCartService) DeleteShoppingCartItem(ctx context.Context, storeID, customerID, itemID uuid.UUID) error {
	args := m.Called(ctx, storeID, customerID, itemID)
	return args.Error(0)
}

func (m *MockCartService) ClearShoppingCart(ctx context.Context, storeID, customerID uuid.UUID) error {
	args := m.Called(ctx, storeID, customerID)
	return args.Error(0)
}

func (m *MockCartService) MoveWishlistToCart(ctx context.Context, storeID uuid.UUID, c *customer.Customer) (cart.Warnings, error) {
	args := m.Called(ctx, storeID, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cart.Warnings), args.Error(1)
}

func (m *MockCartService) MigrateShoppingCart(ctx context.Context, storeID uuid.UUID, from, to *customer.Customer) error {
	args := m.Called(ctx, storeID, from, to)
	return args.Error(0)
}

// MockOrderService implements OrderPlacer and OrderManager
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, req orderapp.PlaceOrderRequest) (*orderapp.PlaceOrderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.PlaceOrderResult), args.Error(1)
}

func (m *MockOrderService) GetCustomerOrder(ctx context.Context, storeID, customerID, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, storeID, customerID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) SearchOrders(ctx context.Context, storeID uuid.UUID, filter order.SearchFilter) (shared.Paginated[order.Order], error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).(shared.Paginated[order.Order]), args.Error(1)
}

func (m *MockOrderService) ReOrder(ctx context.Context, o *order.Order, c *customer.Customer) (cart.Warnings, error) {
	args := m.Called(ctx, o, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cart.Warnings), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, storeID, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderService) Capture(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderService) MarkAsPaid(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderService) Refund(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderService) PartiallyRefund(ctx context.Context, o *order.Order, amount decimal.Decimal) error {
	args := m.Called(ctx, o, amount)
	return args.Error(0)
}

func (m *MockOrderService) Void(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderService) Ship(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderService) Deliver(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderService) AddOrderNote(ctx context.Context, o *order.Order, note string, displayToCustomer bool) error {
	args := m.Called(ctx, o, note, displayToCustomer)
	return args.Error(0)
}

// MockInvoicePrinter implements InvoicePrinter
type MockInvoicePrinter struct {
	mock.Mock
}

func (m *MockInvoicePrinter) PrintInvoicePDF(ctx context.Context, o *order.Order) ([]byte, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockNewsletter implements NewsletterService and SubscriptionLister
type MockNewsletter struct {
	mock.Mock
}

func (m *MockNewsletter) Subscribe(ctx context.Context, storeID uuid.UUID, email string) (*content.NewsLetterSubscription, error) {
	args := m.Called(ctx, storeID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.NewsLetterSubscription), args.Error(1)
}

func (m *MockNewsletter) Unsubscribe(ctx context.Context, storeID uuid.UUID, email string) error {
	args := m.Called(ctx, storeID, email)
	return args.Error(0)
}

func (m *MockNewsletter) ActivateByGUID(ctx context.Context, guid uuid.UUID, active bool) (*content.NewsLetterSubscription, error) {
	args := m.Called(ctx, guid, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.NewsLetterSubscription), args.Error(1)
}

func (m *MockNewsletter) GetAllSubscriptions(ctx context.Context, storeID uuid.UUID, email string, showHidden bool, filter shared.Filter) (shared.Paginated[content.NewsLetterSubscription], error) {
	args := m.Called(ctx, storeID, email, showHidden, filter)
	return args.Get(0).(shared.Paginated[content.NewsLetterSubscription]), args.Error(1)
}

// MockPolls implements PollReader and PollManager
type MockPolls struct {
	mock.Mock
}

func (m *MockPolls) GetPollByID(ctx context.Context, storeID, id uuid.UUID) (*content.Poll, error) {
	args := m.Called(ctx, storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Poll), args.Error(1)
}

func (m *MockPolls) GetPolls(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, showOnHomePage *bool, systemKeyword string) ([]content.Poll, error) {
	args := m.Called(ctx, storeID, languageID, showOnHomePage, systemKeyword)
	return args.Get(0).([]content.Poll), args.Error(1)
}

func (m *MockPolls) AlreadyVoted(ctx context.Context, pollID, customerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, pollID, customerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPolls) Vote(ctx context.Context, storeID, pollID uuid.UUID, c *customer.Customer, answerID uuid.UUID) (*contentapp.PollResponse, error) {
	args := m.Called(ctx, storeID, pollID, c, answerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contentapp.PollResponse), args.Error(1)
}

func (m *MockPolls) GetAllPolls(ctx context.Context, storeID uuid.UUID) ([]content.Poll, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]content.Poll), args.Error(1)
}

func (m *MockPolls) CreatePoll(ctx context.Context, storeID uuid.UUID, req contentapp.PollRequest) (*content.Poll, error) {
	args := m.Called(ctx, storeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Poll), args.Error(1)
}

func (m *MockPolls) UpdatePoll(ctx context.Context, storeID, id uuid.UUID, req contentapp.PollRequest) (*content.Poll, error) {
	args := m.Called(ctx, storeID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Poll), args.Error(1)
}

func (m *MockPolls) DeletePoll(ctx context.Context, storeID, id uuid.UUID) error {
	args := m.Called(ctx, storeID, id)
	return args.Error(0)
}

// MockBlog implements BlogReader
type MockBlog struct {
	mock.Mock
}

func (m *MockBlog) GetBlogPostByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*content.BlogPost, error) {
	args := m.Called(ctx, storeID, id, showHidden)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.BlogPost), args.Error(1)
}

func (m *MockBlog) GetAllBlogPosts(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, from, to *time.Time, showHidden bool) ([]content.BlogPost, error) {
	args := m.Called(ctx, storeID, languageID, from, to, showHidden)
	return args.Get(0).([]content.BlogPost), args.Error(1)
}

func (m *MockBlog) GetBlogPostsByTag(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, tag string) ([]content.BlogPost, error) {
	args := m.Called(ctx, storeID, languageID, tag)
	return args.Get(0).([]content.BlogPost), args.Error(1)
}

func (m *MockBlog) GetAllBlogPostTags(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID) ([]content.BlogPostTag, error) {
	args := m.Called(ctx, storeID, languageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]content.BlogPostTag), args.Error(1)
}

func (m *MockBlog) AddComment(ctx context.Context, storeID, postID uuid.UUID, c *customer.Customer, req contentapp.CommentRequest) (*content.BlogComment, error) {
	args := m.Called(ctx, storeID, postID, c, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.BlogComment), args.Error(1)
}
