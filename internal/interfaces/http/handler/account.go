package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	customerapp "github.com/storefront/backend/internal/application/customer"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// AccountService is the customer service surface used by AccountHandler
type AccountService interface {
	CustomerResolver
	RegisterCustomer(ctx context.Context, input customerapp.RegisterInput) (*customer.Customer, error)
	ValidateCustomer(ctx context.Context, input customerapp.LoginInput) (*customerapp.LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	ChangePassword(ctx context.Context, input customerapp.ChangePasswordInput) error
	UpdateAddresses(ctx context.Context, storeID, customerID uuid.UUID, billing, shipping customer.Address) (*customer.Customer, error)
}

// CartMigrator moves a guest's cart to the customer who just signed in
type CartMigrator interface {
	MigrateShoppingCart(ctx context.Context, storeID uuid.UUID, from, to *customer.Customer) error
}

// AccountHandler handles registration, sign in and the customer's own account
type AccountHandler struct {
	BaseHandler
	customers AccountService
	carts     CartMigrator
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(customers AccountService, carts CartMigrator) *AccountHandler {
	return &AccountHandler{customers: customers, carts: carts}
}

// Register godoc
// @Summary      Register a customer
// @Description  Registers the current guest, keeping its cart, or a new customer when no guest is known
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Customer-GUID header string false "Guest customer guid"
// @Param        request body RegisterRequest true "Registration data"
// @Success      201 {object} dto.Response{data=customerapp.CustomerInfo}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	input := customerapp.RegisterInput{
		StoreID:  storeID(c),
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IP:       c.ClientIP(),
	}
	guest, err := guestFromRequest(c, h.customers)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if guest != nil {
		input.CustomerID = guest.ID
	}

	registered, err := h.customers.RegisterCustomer(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customerapp.ToCustomerInfo(registered))
}

// Login godoc
// @Summary      Sign in
// @Description  Authenticates by username or email. A guest cart sent along is merged into the customer's cart.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Customer-GUID header string false "Guest customer guid"
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	store := storeID(c)

	guest, err := guestFromRequest(c, h.customers)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.customers.ValidateCustomer(ctx, customerapp.LoginInput{
		StoreID:         store,
		UsernameOrEmail: req.UsernameOrEmail,
		Password:        req.Password,
		IP:              c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if guest != nil && guest.ID != result.Customer.ID {
		h.migrateGuestCart(c, store, guest, result.Customer.ID)
	}

	h.Success(c, LoginResponse{
		Token: auth.TokenPair{
			AccessToken:           result.AccessToken,
			RefreshToken:          result.RefreshToken,
			AccessTokenExpiresAt:  result.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: result.RefreshTokenExpiresAt,
			TokenType:             result.TokenType,
		},
		Customer: result.Customer,
	})
}

// migrateGuestCart never fails the sign in; a lost guest cart is logged
func (h *AccountHandler) migrateGuestCart(c *gin.Context, store uuid.UUID, guest *customer.Customer, customerID uuid.UUID) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	to, err := h.customers.GetCustomer(ctx, store, customerID)
	if err == nil {
		err = h.carts.MigrateShoppingCart(ctx, store, guest, to)
	}
	if err != nil {
		log.Warn("Failed to migrate guest cart",
			zap.String("guest_id", guest.ID.String()),
			zap.String("customer_id", customerID.String()),
			zap.Error(err))
	}
}

// RefreshToken godoc
// @Summary      Refresh tokens
// @Description  Exchanges a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=RefreshTokenResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AccountHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.bindJSON(c, &req) {
		return
	}
	pair, err := h.customers.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RefreshTokenResponse{Token: *pair})
}

// Logout godoc
// @Summary      Sign out
// @Description  Revokes the current access token
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=MessageResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AccountHandler) Logout(c *gin.Context) {
	if err := h.customers.Logout(c.Request.Context(), claims(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Logged out"})
}

// Me godoc
// @Summary      Current customer
// @Description  Returns the signed in customer, or the guest identified by the guid header
// @Tags         account
// @Produce      json
// @Param        X-Customer-GUID header string false "Guest customer guid"
// @Success      200 {object} dto.Response{data=customerapp.CustomerInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /account/me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	cust, err := currentCustomer(c, h.customers, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if cust == nil {
		h.NotFound(c, "No customer for this request")
		return
	}
	h.Success(c, customerapp.ToCustomerInfo(cust))
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Changes the password and revokes previously issued tokens
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Passwords"
// @Success      200 {object} dto.Response{data=MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/password [put]
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sid, cid, ok := h.tokenIDs(c)
	if !ok {
		return
	}
	err := h.customers.ChangePassword(c.Request.Context(), customerapp.ChangePasswordInput{
		StoreID:     sid,
		CustomerID:  cid,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Password changed"})
}

// UpdateAddresses godoc
// @Summary      Update addresses
// @Description  Replaces the billing and shipping addresses of the signed in customer
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body AddressesRequest true "Addresses"
// @Success      200 {object} dto.Response{data=customerapp.CustomerInfo}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /account/addresses [put]
func (h *AccountHandler) UpdateAddresses(c *gin.Context) {
	var req AddressesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sid, cid, ok := h.tokenIDs(c)
	if !ok {
		return
	}
	updated, err := h.customers.UpdateAddresses(c.Request.Context(), sid, cid, req.BillingAddress, req.ShippingAddress)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customerapp.ToCustomerInfo(updated))
}
