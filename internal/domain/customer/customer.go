package customer

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Entity names used in mutation events
const (
	EntityCustomer     = "customer"
	EntityCustomerRole = "customer_role"
)

// System role names
const (
	RoleAdministrators          = "Administrators"
	RoleForumModerators         = "ForumModerators"
	RoleRegistered              = "Registered"
	RoleGuests                  = "Guests"
	SystemAccountBackgroundTask = "BackgroundTask"
)

// bcrypt cost for customer passwords
const bcryptCost = 12

// CustomerRole groups customers for permissions, tax exemption and free shipping
type CustomerRole struct {
	shared.BaseEntity
	Name         string `gorm:"type:varchar(255);not null"`
	SystemName   string `gorm:"type:varchar(255);uniqueIndex"`
	Active       bool   `gorm:"not null;default:true"`
	FreeShipping bool   `gorm:"not null;default:false"`
	TaxExempt    bool   `gorm:"not null;default:false"`
	IsSystemRole bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CustomerRole) TableName() string {
	return "customer_roles"
}

// NewSystemRole creates one of the built-in roles
func NewSystemRole(systemName string) *CustomerRole {
	return &CustomerRole{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         systemName,
		SystemName:   systemName,
		Active:       true,
		IsSystemRole: true,
	}
}

// Customer is a shopper, registered or guest, or a system account
type Customer struct {
	shared.TenantAggregateRoot
	shared.SoftDeletable
	CustomerGUID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Username        string    `gorm:"type:varchar(255);index"`
	Email           string    `gorm:"type:varchar(255);index"`
	PasswordHash    string    `gorm:"type:varchar(255)" json:"-"`
	Active          bool      `gorm:"not null;default:true"`
	IsSystemAccount bool      `gorm:"not null;default:false"`
	SystemName      string    `gorm:"type:varchar(100)"`
	AdminComment    string    `gorm:"type:text"`
	LastIPAddress   string    `gorm:"type:varchar(64)"`
	LastLoginAt     *time.Time
	LastActivityAt  time.Time      `gorm:"not null"`
	BillingAddress  Address        `gorm:"embedded;embeddedPrefix:billing_"`
	ShippingAddress Address        `gorm:"embedded;embeddedPrefix:shipping_"`
	Roles           []CustomerRole `gorm:"many2many:customer_role_mappings;"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewGuestCustomer creates an anonymous customer for a visitor
func NewGuestCustomer(tenantID uuid.UUID, guestRole *CustomerRole) *Customer {
	c := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerGUID:        uuid.New(),
		Active:              true,
		LastActivityAt:      time.Now(),
	}
	if guestRole != nil {
		c.Roles = append(c.Roles, *guestRole)
	}
	c.AddDomainEvent(shared.NewEntityEvent(EntityCustomer, shared.EntityInserted, c.ID, tenantID))
	return c
}

// Register turns a guest into a registered customer
func (c *Customer) Register(username, email, password string, minPasswordLength int, registeredRole *CustomerRole) error {
	if c.IsRegistered() {
		return shared.NewDomainError("ALREADY_REGISTERED", "Customer is already registered")
	}
	if c.IsSystemAccount {
		return shared.NewDomainError("SYSTEM_ACCOUNT", "System accounts cannot be registered")
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	if err := ValidatePassword(password, minPasswordLength); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	c.Email = normalized
	c.Username = strings.TrimSpace(username)
	if c.Username == "" {
		c.Username = normalized
	}
	c.PasswordHash = hash
	c.removeRole(RoleGuests)
	if registeredRole != nil {
		c.Roles = append(c.Roles, *registeredRole)
	}
	c.touch()
	return nil
}

// ChangePassword replaces the password after verifying the old one
func (c *Customer) ChangePassword(oldPassword, newPassword string, minPasswordLength int) error {
	if !c.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Old password doesn't match")
	}
	if err := ValidatePassword(newPassword, minPasswordLength); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	c.touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (c *Customer) VerifyPassword(password string) bool {
	if c.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
}

// IsInRole reports whether the customer holds an active role with the system name
func (c *Customer) IsInRole(systemName string) bool {
	for _, r := range c.Roles {
		if r.Active && strings.EqualFold(r.SystemName, systemName) {
			return true
		}
	}
	return false
}

// IsGuest reports whether the customer is anonymous
func (c *Customer) IsGuest() bool {
	return c.IsInRole(RoleGuests)
}

// IsRegistered reports whether the customer has registered
func (c *Customer) IsRegistered() bool {
	return c.IsInRole(RoleRegistered)
}

// IsAdmin reports whether the customer is an administrator
func (c *Customer) IsAdmin() bool {
	return c.IsInRole(RoleAdministrators)
}

// IsTaxExempt reports whether any active role exempts the customer from tax
func (c *Customer) IsTaxExempt() bool {
	for _, r := range c.Roles {
		if r.Active && r.TaxExempt {
			return true
		}
	}
	return false
}

// HasFreeShipping reports whether any active role grants free shipping
func (c *Customer) HasFreeShipping() bool {
	for _, r := range c.Roles {
		if r.Active && r.FreeShipping {
			return true
		}
	}
	return false
}

// RoleSystemNames lists the customer's active role names
func (c *Customer) RoleSystemNames() []string {
	names := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		if r.Active {
			names = append(names, r.SystemName)
		}
	}
	return names
}

// AddRole assigns a role unless it is already assigned
func (c *Customer) AddRole(role CustomerRole) {
	if c.IsInRole(role.SystemName) {
		return
	}
	c.Roles = append(c.Roles, role)
	c.touch()
}

func (c *Customer) removeRole(systemName string) {
	roles := c.Roles[:0]
	for _, r := range c.Roles {
		if !strings.EqualFold(r.SystemName, systemName) {
			roles = append(roles, r)
		}
	}
	c.Roles = roles
}

// RecordActivity stores the last activity time and IP address
func (c *Customer) RecordActivity(ip string) {
	c.LastActivityAt = time.Now()
	if ip != "" {
		c.LastIPAddress = ip
	}
}

// RecordLogin stores the login time
func (c *Customer) RecordLogin(ip string) {
	now := time.Now()
	c.LastLoginAt = &now
	c.RecordActivity(ip)
	c.touch()
}

// SetAddresses replaces the billing and shipping addresses
func (c *Customer) SetAddresses(billing, shipping Address) {
	c.BillingAddress = billing
	c.ShippingAddress = shipping
	c.touch()
}

// Deactivate blocks the customer from logging in
func (c *Customer) Deactivate() {
	c.Active = false
	c.touch()
}

// Delete soft-deletes the customer. The email is suffixed so that
// the address can be registered again.
func (c *Customer) Delete() error {
	if c.IsSystemAccount {
		return shared.NewDomainError("SYSTEM_ACCOUNT", "System customer account could not be deleted")
	}
	c.MarkDeleted()
	if c.Email != "" {
		c.Email += "-DELETED"
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(shared.NewEntityEvent(EntityCustomer, shared.EntityDeleted, c.ID, c.TenantID))
	return nil
}

// CanLogin reports whether the customer may authenticate
func (c *Customer) CanLogin() bool {
	return c.Active && !c.Deleted && c.IsRegistered()
}

func (c *Customer) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(shared.NewEntityEvent(EntityCustomer, shared.EntityUpdated, c.ID, c.TenantID))
}

// NormalizeEmail validates and lower-cases an email address
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 255 {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 255 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", shared.NewDomainError("INVALID_EMAIL", "Wrong email")
	}
	return email, nil
}

// ValidatePassword enforces the configured minimum length
func ValidatePassword(password string, minLength int) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password is required")
	}
	if len(password) < minLength {
		return shared.NewDomainError("INVALID_PASSWORD", "Password is too short")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Repository persists customers
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindByGUID(ctx context.Context, guid uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Customer, error)
	FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*Customer, error)
	FindBySystemName(ctx context.Context, systemName string) (*Customer, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, c *Customer) error
	// DeleteGuests hard-deletes guest customers created before the cutoff.
	// When onlyWithoutCartItems is set, guests holding cart items are kept.
	DeleteGuests(ctx context.Context, createdBefore time.Time, onlyWithoutCartItems bool) (int64, error)
}

// RoleRepository persists customer roles
type RoleRepository interface {
	FindBySystemName(ctx context.Context, systemName string) (*CustomerRole, error)
	FindAll(ctx context.Context, showHidden bool) ([]CustomerRole, error)
	Save(ctx context.Context, role *CustomerRole) error
}
