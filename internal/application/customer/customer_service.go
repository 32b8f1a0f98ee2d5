package customer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// SettingsLoader fills a typed settings struct for a store
type SettingsLoader interface {
	LoadSettings(ctx context.Context, storeID uuid.UUID, settings any) error
}

// CustomerService handles guests, registration and authentication
type CustomerService struct {
	repo      customer.Repository
	roles     customer.RoleRepository
	settings  SettingsLoader
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	cache     cache.Manager
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewCustomerService creates a new CustomerService. blacklist may be nil.
func NewCustomerService(
	repo customer.Repository,
	roles customer.RoleRepository,
	settings SettingsLoader,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
	cacheManager cache.Manager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		repo:      repo,
		roles:     roles,
		settings:  settings,
		tokens:    tokens,
		blacklist: blacklist,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
	}
}

// GetAllCustomerRoles returns roles, cached per showHidden
func (s *CustomerService) GetAllCustomerRoles(ctx context.Context, showHidden bool) ([]customer.CustomerRole, error) {
	return cache.Get(ctx, s.cache, cache.CustomerRolesAllKey.Create(showHidden), func() ([]customer.CustomerRole, error) {
		return s.roles.FindAll(ctx, showHidden)
	})
}

// GetCustomerRoleBySystemName returns an active role from the cached list
func (s *CustomerService) GetCustomerRoleBySystemName(ctx context.Context, systemName string) (*customer.CustomerRole, error) {
	roles, err := s.GetAllCustomerRoles(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range roles {
		if strings.EqualFold(roles[i].SystemName, systemName) {
			return &roles[i], nil
		}
	}
	return nil, shared.NewDomainError("ROLE_NOT_FOUND", "'"+systemName+"' role could not be loaded")
}

// GetCustomer returns a store's customer by id
func (s *CustomerService) GetCustomer(ctx context.Context, storeID, id uuid.UUID) (*customer.Customer, error) {
	return s.repo.FindByIDForTenant(ctx, storeID, id)
}

// GetCustomerByGUID returns a customer by its public guid
func (s *CustomerService) GetCustomerByGUID(ctx context.Context, guid uuid.UUID) (*customer.Customer, error) {
	return s.repo.FindByGUID(ctx, guid)
}

// GetCustomerBySystemName returns a system account, e.g. the background task account
func (s *CustomerService) GetCustomerBySystemName(ctx context.Context, systemName string) (*customer.Customer, error) {
	return s.repo.FindBySystemName(ctx, systemName)
}

// ListCustomers returns a page of a store's customers
func (s *CustomerService) ListCustomers(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (shared.Paginated[CustomerInfo], error) {
	rows, err := s.repo.FindAllForTenant(ctx, storeID, filter)
	if err != nil {
		return shared.Paginated[CustomerInfo]{}, err
	}
	total, err := s.repo.CountForTenant(ctx, storeID, filter)
	if err != nil {
		return shared.Paginated[CustomerInfo]{}, err
	}
	items := make([]CustomerInfo, len(rows))
	for i := range rows {
		items[i] = ToCustomerInfo(&rows[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// InsertGuestCustomer creates an anonymous customer in the Guests role
func (s *CustomerService) InsertGuestCustomer(ctx context.Context, storeID uuid.UUID) (*customer.Customer, error) {
	guestRole, err := s.GetCustomerRoleBySystemName(ctx, customer.RoleGuests)
	if err != nil {
		return nil, err
	}
	c := customer.NewGuestCustomer(storeID, guestRole)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RegisterCustomer registers the guest named in the input, or a new customer
func (s *CustomerService) RegisterCustomer(ctx context.Context, input RegisterInput) (*customer.Customer, error) {
	cs := configuration.DefaultCustomerSettings()
	if err := s.settings.LoadSettings(ctx, input.StoreID, &cs); err != nil {
		return nil, err
	}

	email, err := customer.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.FindByEmail(ctx, input.StoreID, email); err == nil && existing != nil {
		return nil, shared.NewDomainError("EMAIL_EXISTS", "The specified email already exists")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	username := email
	if cs.UsernamesEnabled {
		username = strings.TrimSpace(input.Username)
		if username == "" {
			return nil, shared.NewDomainError("INVALID_USERNAME", "Username is required")
		}
		if existing, err := s.repo.FindByUsername(ctx, input.StoreID, username); err == nil && existing != nil {
			return nil, shared.NewDomainError("USERNAME_EXISTS", "The specified username already exists")
		} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	var c *customer.Customer
	if input.CustomerID != uuid.Nil {
		c, err = s.repo.FindByIDForTenant(ctx, input.StoreID, input.CustomerID)
		if err != nil {
			return nil, err
		}
	} else {
		c = customer.NewGuestCustomer(input.StoreID, nil)
	}

	registered, err := s.GetCustomerRoleBySystemName(ctx, customer.RoleRegistered)
	if err != nil {
		return nil, err
	}
	if err := c.Register(username, email, input.Password, cs.PasswordMinLength, registered); err != nil {
		return nil, err
	}
	c.RecordActivity(input.IP)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Customer registered",
		zap.String("store_id", input.StoreID.String()),
		zap.String("customer_id", c.ID.String()))
	return c, nil
}

// ValidateCustomer checks credentials and issues a token pair
func (s *CustomerService) ValidateCustomer(ctx context.Context, input LoginInput) (*LoginResult, error) {
	invalid := shared.NewDomainError("INVALID_CREDENTIALS", "The credentials provided are incorrect")

	login := strings.TrimSpace(input.UsernameOrEmail)
	var c *customer.Customer
	var err error
	if strings.Contains(login, "@") {
		c, err = s.repo.FindByEmail(ctx, input.StoreID, strings.ToLower(login))
	} else {
		c, err = s.repo.FindByUsername(ctx, input.StoreID, login)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown customer", zap.String("login", login))
			return nil, invalid
		}
		return nil, err
	}

	if !c.CanLogin() {
		if c.Deleted {
			return nil, shared.NewDomainError("CUSTOMER_DELETED", "Customer is deleted")
		}
		if !c.Active {
			return nil, shared.NewDomainError("CUSTOMER_NOT_ACTIVE", "Account is not active")
		}
		return nil, shared.NewDomainError("CUSTOMER_NOT_REGISTERED", "Account is not registered")
	}
	if !c.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password", zap.String("customer_id", c.ID.String()))
		return nil, invalid
	}

	pair, err := s.tokens.GenerateTokenPair(auth.GenerateTokenInput{
		StoreID:      c.TenantID,
		CustomerID:   c.ID,
		CustomerGUID: c.CustomerGUID,
		Username:     c.Username,
		Roles:        c.RoleSystemNames(),
	})
	if err != nil {
		return nil, err
	}

	c.RecordLogin(input.IP)
	if err := s.save(ctx, c); err != nil {
		s.logger.Error("Failed to record login", zap.Error(err))
	}

	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		Customer:              ToCustomerInfo(c),
	}, nil
}

// RefreshToken exchanges a refresh token unless its customer was revoked
func (s *CustomerService) RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if s.blacklist != nil {
		if revoked, err := s.blacklist.IsCustomerTokenRevoked(ctx, claims.CustomerID, claims.IssuedAtTime()); err == nil && revoked {
			return nil, auth.ErrTokenBlacklisted
		}
		if listed, err := s.blacklist.IsBlacklisted(ctx, claims.ID); err == nil && listed {
			return nil, auth.ErrTokenBlacklisted
		}
	}
	return s.tokens.RefreshTokenPair(refreshToken)
}

// Logout revokes the access token id for its remaining lifetime
func (s *CustomerService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	return s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL())
}

// ChangePassword verifies the old password, stores the new one and revokes
// previously issued tokens
func (s *CustomerService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	cs := configuration.DefaultCustomerSettings()
	if err := s.settings.LoadSettings(ctx, input.StoreID, &cs); err != nil {
		return err
	}
	c, err := s.repo.FindByIDForTenant(ctx, input.StoreID, input.CustomerID)
	if err != nil {
		return err
	}
	if !c.IsRegistered() {
		return shared.NewDomainError("CUSTOMER_NOT_REGISTERED", "Account is not registered")
	}
	if err := c.ChangePassword(input.OldPassword, input.NewPassword, cs.PasswordMinLength); err != nil {
		return err
	}
	if err := s.save(ctx, c); err != nil {
		return err
	}
	if s.blacklist != nil {
		if err := s.blacklist.RevokeCustomerTokens(ctx, c.ID.String(), s.tokens.RefreshTokenExpiration()); err != nil {
			s.logger.Warn("Failed to revoke customer tokens", zap.Error(err))
		}
	}
	return nil
}

// UpdateAddresses replaces a customer's billing and shipping addresses
func (s *CustomerService) UpdateAddresses(ctx context.Context, storeID, customerID uuid.UUID, billing, shipping customer.Address) (*customer.Customer, error) {
	if err := billing.Validate(); err != nil {
		return nil, err
	}
	if !shipping.IsEmpty() {
		if err := shipping.Validate(); err != nil {
			return nil, err
		}
	}
	c, err := s.repo.FindByIDForTenant(ctx, storeID, customerID)
	if err != nil {
		return nil, err
	}
	c.SetAddresses(billing, shipping)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCustomer soft-deletes a customer
func (s *CustomerService) DeleteCustomer(ctx context.Context, storeID, customerID uuid.UUID) error {
	c, err := s.repo.FindByIDForTenant(ctx, storeID, customerID)
	if err != nil {
		return err
	}
	if err := c.Delete(); err != nil {
		return err
	}
	return s.save(ctx, c)
}

// DeleteGuestCustomers removes guests created before the cutoff
func (s *CustomerService) DeleteGuestCustomers(ctx context.Context, createdBefore time.Time, onlyWithoutCartItems bool) (int64, error) {
	deleted, err := s.repo.DeleteGuests(ctx, createdBefore, onlyWithoutCartItems)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("Guest customers deleted", zap.Int64("count", deleted), zap.Time("created_before", createdBefore))
	}
	return deleted, nil
}

func (s *CustomerService) save(ctx context.Context, c *customer.Customer) error {
	if err := s.repo.Save(ctx, c); err != nil {
		return err
	}
	if err := shared.PublishPending(ctx, s.publisher, c); err != nil {
		s.logger.Warn("Failed to publish customer events", zap.Error(err))
	}
	return nil
}
