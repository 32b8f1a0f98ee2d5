package customer

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Address is a postal address snapshot. It is embedded in customers and
// copied onto orders so that later edits do not rewrite order history.
type Address struct {
	FirstName       string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName        string     `gorm:"type:varchar(100)" json:"last_name"`
	Email           string     `gorm:"type:varchar(255)" json:"email"`
	Company         string     `gorm:"type:varchar(255)" json:"company,omitempty"`
	CountryID       *uuid.UUID `gorm:"type:uuid" json:"country_id,omitempty"`
	StateProvinceID *uuid.UUID `gorm:"type:uuid" json:"state_province_id,omitempty"`
	City            string     `gorm:"type:varchar(100)" json:"city"`
	Address1        string     `gorm:"type:varchar(255)" json:"address1"`
	Address2        string     `gorm:"type:varchar(255)" json:"address2,omitempty"`
	ZipPostalCode   string     `gorm:"type:varchar(20)" json:"zip_postal_code"`
	PhoneNumber     string     `gorm:"type:varchar(50)" json:"phone_number,omitempty"`
}

// IsEmpty reports whether no address data was provided
func (a Address) IsEmpty() bool {
	return a.FirstName == "" && a.LastName == "" && a.Address1 == "" && a.City == "" && a.CountryID == nil
}

// Validate checks the fields required for billing and shipping
func (a Address) Validate() error {
	if strings.TrimSpace(a.FirstName) == "" || strings.TrimSpace(a.LastName) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "First and last name are required")
	}
	if strings.TrimSpace(a.Address1) == "" || strings.TrimSpace(a.City) == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Street address and city are required")
	}
	if a.CountryID == nil || *a.CountryID == uuid.Nil {
		return shared.NewDomainError("INVALID_ADDRESS", "Country is required")
	}
	return nil
}

// FullName joins first and last name
func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
