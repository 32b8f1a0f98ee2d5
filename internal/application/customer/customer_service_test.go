package customer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// MockCustomerRepository is a mock implementation of customer.Repository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) one(args mock.Arguments) (*customer.Customer, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*customer.Customer, error) {
	return m.one(m.Called(ctx, tenantID, id))
}

func (m *MockCustomerRepository) FindByGUID(ctx context.Context, guid uuid.UUID) (*customer.Customer, error) {
	return m.one(m.Called(ctx, guid))
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*customer.Customer, error) {
	return m.one(m.Called(ctx, tenantID, email))
}

func (m *MockCustomerRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*customer.Customer, error) {
	return m.one(m.Called(ctx, tenantID, username))
}

func (m *MockCustomerRepository) FindBySystemName(ctx context.Context, systemName string) (*customer.Customer, error) {
	return m.one(m.Called(ctx, systemName))
}

func (m *MockCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]customer.Customer, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) DeleteGuests(ctx context.Context, createdBefore time.Time, onlyWithoutCartItems bool) (int64, error) {
	args := m.Called(ctx, createdBefore, onlyWithoutCartItems)
	return args.Get(0).(int64), args.Error(1)
}

// MockRoleRepository is a mock implementation of customer.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindBySystemName(ctx context.Context, systemName string) (*customer.CustomerRole, error) {
	args := m.Called(ctx, systemName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.CustomerRole), args.Error(1)
}

func (m *MockRoleRepository) FindAll(ctx context.Context, showHidden bool) ([]customer.CustomerRole, error) {
	args := m.Called(ctx, showHidden)
	return args.Get(0).([]customer.CustomerRole), args.Error(1)
}

func (m *MockRoleRepository) Save(ctx context.Context, role *customer.CustomerRole) error {
	return m.Called(ctx, role).Error(0)
}

// fixedSettings serves one CustomerSettings value
type fixedSettings struct {
	customer configuration.CustomerSettings
}

func (f fixedSettings) LoadSettings(_ context.Context, _ uuid.UUID, settings any) error {
	if cs, ok := settings.(*configuration.CustomerSettings); ok {
		*cs = f.customer
	}
	return nil
}

type fixture struct {
	repo      *MockCustomerRepository
	roles     *MockRoleRepository
	blacklist *auth.InMemoryTokenBlacklist
	tokens    *auth.JWTService
	svc       *CustomerService
	storeID   uuid.UUID
}

func newFixture(t *testing.T, cs configuration.CustomerSettings) *fixture {
	t.Helper()
	f := &fixture{
		repo:      new(MockCustomerRepository),
		roles:     new(MockRoleRepository),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		tokens: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			AccessTokenExpiration:  time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "test",
		}),
		storeID: uuid.New(),
	}
	f.roles.On("FindAll", mock.Anything, false).Return([]customer.CustomerRole{
		*customer.NewSystemRole(customer.RoleGuests),
		*customer.NewSystemRole(customer.RoleRegistered),
		*customer.NewSystemRole(customer.RoleAdministrators),
	}, nil)
	f.svc = NewCustomerService(f.repo, f.roles, fixedSettings{customer: cs}, f.tokens, f.blacklist,
		cache.NewMemoryManager(), nil, nil)
	return f
}

func (f *fixture) registered(t *testing.T, email, password string) *customer.Customer {
	t.Helper()
	c := customer.NewGuestCustomer(f.storeID, customer.NewSystemRole(customer.RoleGuests))
	require.NoError(t, c.Register("", email, password, 6, customer.NewSystemRole(customer.RoleRegistered)))
	c.ClearDomainEvents()
	return c
}

func TestCustomerService_InsertGuestCustomer(t *testing.T) {
	f := newFixture(t, configuration.DefaultCustomerSettings())
	f.repo.On("Save", mock.Anything, mock.AnythingOfType("*customer.Customer")).Return(nil)

	c, err := f.svc.InsertGuestCustomer(context.Background(), f.storeID)

	require.NoError(t, err)
	assert.True(t, c.IsGuest())
	assert.Equal(t, f.storeID, c.TenantID)
	assert.NotEqual(t, uuid.Nil, c.CustomerGUID)
	assert.Empty(t, c.GetDomainEvents())
}

func TestCustomerService_RegisterCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("guest becomes registered", func(t *testing.T) {
		f := newFixture(t, configuration.DefaultCustomerSettings())
		guest := customer.NewGuestCustomer(f.storeID, customer.NewSystemRole(customer.RoleGuests))

		f.repo.On("FindByEmail", mock.Anything, f.storeID, "jane@example.com").Return(nil, shared.ErrNotFound)
		f.repo.On("FindByIDForTenant", mock.Anything, f.storeID, guest.ID).Return(guest, nil)
		f.repo.On("Save", mock.Anything, guest).Return(nil)

		c, err := f.svc.RegisterCustomer(ctx, RegisterInput{
			StoreID:    f.storeID,
			CustomerID: guest.ID,
			Email:      " Jane@Example.com ",
			Password:   "secret123",
			IP:         "10.0.0.1",
		})

		require.NoError(t, err)
		assert.Same(t, guest, c)
		assert.True(t, c.IsRegistered())
		assert.False(t, c.IsGuest())
		assert.Equal(t, "jane@example.com", c.Username)
		assert.Equal(t, "10.0.0.1", c.LastIPAddress)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFixture(t, configuration.DefaultCustomerSettings())
		existing := f.registered(t, "jane@example.com", "secret123")
		f.repo.On("FindByEmail", mock.Anything, f.storeID, "jane@example.com").Return(existing, nil)

		_, err := f.svc.RegisterCustomer(ctx, RegisterInput{StoreID: f.storeID, Email: "jane@example.com", Password: "secret123"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMAIL_EXISTS", domainErr.Code)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("password length comes from settings", func(t *testing.T) {
		cs := configuration.DefaultCustomerSettings()
		cs.PasswordMinLength = 12
		f := newFixture(t, cs)
		f.repo.On("FindByEmail", mock.Anything, f.storeID, "jane@example.com").Return(nil, shared.ErrNotFound)

		_, err := f.svc.RegisterCustomer(ctx, RegisterInput{StoreID: f.storeID, Email: "jane@example.com", Password: "secret123"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PASSWORD", domainErr.Code)
	})

	t.Run("usernames enabled requires a unique username", func(t *testing.T) {
		cs := configuration.DefaultCustomerSettings()
		cs.UsernamesEnabled = true
		f := newFixture(t, cs)
		f.repo.On("FindByEmail", mock.Anything, f.storeID, "jane@example.com").Return(nil, shared.ErrNotFound)
		f.repo.On("FindByUsername", mock.Anything, f.storeID, "jane").Return(f.registered(t, "other@example.com", "secret123"), nil)

		_, err := f.svc.RegisterCustomer(ctx, RegisterInput{StoreID: f.storeID, Username: "jane", Email: "jane@example.com", Password: "secret123"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "USERNAME_EXISTS", domainErr.Code)
	})
}

func TestCustomerService_ValidateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials issue tokens", func(t *testing.T) {
		f := newFixture(t, configuration.DefaultCustomerSettings())
		c := f.registered(t, "jane@example.com", "secret123")
		f.repo.On("FindByEmail", mock.Anything, f.storeID, "jane@example.com").Return(c, nil)
		f.repo.On("Save", mock.Anything, c).Return(nil)

		result, err := f.svc.ValidateCustomer(ctx, LoginInput{StoreID: f.storeID, UsernameOrEmail: "Jane@example.com", Password: "secret123"})
		require.NoError(t, err)

		claims, err := f.tokens.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, c.ID.String(), claims.CustomerID)
		assert.Equal(t, f.storeID.String(), claims.StoreID)
		assert.True(t, claims.HasRole(customer.RoleRegistered))
		assert.NotNil(t, c.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t, configuration.DefaultCustomerSettings())
		c := f.registered(t, "jane@example.com", "secret123")
		f.repo.On("FindByEmail", mock.Anything, f.storeID, "jane@example.com").Return(c, nil)

		_, err := f.svc.ValidateCustomer(ctx, LoginInput{StoreID: f.storeID, UsernameOrEmail: "jane@example.com", Password: "nope"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown username", func(t *testing.T) {
		f := newFixture(t, configuration.DefaultCustomerSettings())
		f.repo.On("FindByUsername", mock.Anything, f.storeID, "ghost").Return(nil, shared.ErrNotFound)

		_, err := f.svc.ValidateCustomer(ctx, LoginInput{StoreID: f.storeID, UsernameOrEmail: "ghost", Password: "x"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})

	t.Run("deleted customer", func(t *testing.T) {
		f := newFixture(t, configuration.DefaultCustomerSettings())
		c := f.registered(t, "jane@example.com", "secret123")
		require.NoError(t, c.Delete())
		f.repo.On("FindByEmail", mock.Anything, f.storeID, "jane@example.com").Return(c, nil)

		_, err := f.svc.ValidateCustomer(ctx, LoginInput{StoreID: f.storeID, UsernameOrEmail: "jane@example.com", Password: "secret123"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CUSTOMER_DELETED", domainErr.Code)
	})
}

func TestCustomerService_ChangePasswordRevokesTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, configuration.DefaultCustomerSettings())
	c := f.registered(t, "jane@example.com", "secret123")
	f.repo.On("FindByIDForTenant", mock.Anything, f.storeID, c.ID).Return(c, nil)
	f.repo.On("Save", mock.Anything, c).Return(nil)

	issuedAt := time.Now().Add(-time.Minute)
	err := f.svc.ChangePassword(ctx, ChangePasswordInput{
		StoreID: f.storeID, CustomerID: c.ID, OldPassword: "secret123", NewPassword: "newsecret456",
	})
	require.NoError(t, err)

	assert.True(t, c.VerifyPassword("newsecret456"))
	revoked, err := f.blacklist.IsCustomerTokenRevoked(ctx, c.ID.String(), issuedAt)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestCustomerService_DeleteGuestCustomers(t *testing.T) {
	f := newFixture(t, configuration.DefaultCustomerSettings())
	cutoff := time.Now().Add(-24 * time.Hour)
	f.repo.On("DeleteGuests", mock.Anything, cutoff, true).Return(int64(3), nil)

	n, err := f.svc.DeleteGuestCustomers(context.Background(), cutoff, true)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
