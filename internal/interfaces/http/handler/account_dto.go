package handler

import (
	customerapp "github.com/storefront/backend/internal/application/customer"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username string `json:"username" binding:"omitempty,min=3,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" binding:"required,max=255"`
	Password        string `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest is the body of POST /auth/refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest is the body of PUT /account/password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,max=128"`
}

// AddressesRequest replaces both customer addresses
type AddressesRequest struct {
	BillingAddress  customer.Address `json:"billing_address"`
	ShippingAddress customer.Address `json:"shipping_address"`
}

// LoginResponse carries the token pair and the customer
type LoginResponse struct {
	Token    auth.TokenPair           `json:"token"`
	Customer customerapp.CustomerInfo `json:"customer"`
}

// RefreshTokenResponse carries a rotated token pair
type RefreshTokenResponse struct {
	Token auth.TokenPair `json:"token"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}
