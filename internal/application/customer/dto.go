package customer

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/customer"
)

// RegisterInput turns a guest into a registered customer
type RegisterInput struct {
	StoreID    uuid.UUID
	CustomerID uuid.UUID // guest being registered; zero creates a new customer
	Username   string
	Email      string
	Password   string
	IP         string
}

// LoginInput authenticates by username or email
type LoginInput struct {
	StoreID         uuid.UUID
	UsernameOrEmail string
	Password        string
	IP              string
}

// LoginResult is a token pair plus the authenticated customer
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	Customer              CustomerInfo
}

// ChangePasswordInput replaces a registered customer's password
type ChangePasswordInput struct {
	StoreID     uuid.UUID
	CustomerID  uuid.UUID
	OldPassword string
	NewPassword string
}

// CustomerInfo is the public view of a customer
type CustomerInfo struct {
	ID              uuid.UUID        `json:"id"`
	StoreID         uuid.UUID        `json:"store_id"`
	CustomerGUID    uuid.UUID        `json:"customer_guid"`
	Username        string           `json:"username,omitempty"`
	Email           string           `json:"email,omitempty"`
	Roles           []string         `json:"roles"`
	Active          bool             `json:"active"`
	LastLoginAt     *time.Time       `json:"last_login_at,omitempty"`
	BillingAddress  customer.Address `json:"billing_address"`
	ShippingAddress customer.Address `json:"shipping_address"`
}

// ToCustomerInfo maps a customer to its public view
func ToCustomerInfo(c *customer.Customer) CustomerInfo {
	return CustomerInfo{
		ID:              c.ID,
		StoreID:         c.TenantID,
		CustomerGUID:    c.CustomerGUID,
		Username:        c.Username,
		Email:           c.Email,
		Roles:           c.RoleSystemNames(),
		Active:          c.Active,
		LastLoginAt:     c.LastLoginAt,
		BillingAddress:  c.BillingAddress,
		ShippingAddress: c.ShippingAddress,
	}
}
