package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Manufacturer is a brand products can be filtered by
type Manufacturer struct {
	shared.TenantAggregateRoot
	shared.SoftDeletable
	Name         string     `gorm:"type:varchar(400);not null"`
	Description  string     `gorm:"type:text"`
	PictureID    *uuid.UUID `gorm:"type:uuid"`
	PageSize     int        `gorm:"not null;default:0"`
	Published    bool       `gorm:"not null;default:true"`
	DisplayOrder int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Manufacturer) TableName() string {
	return "manufacturers"
}

// NewManufacturer creates a published manufacturer
func NewManufacturer(tenantID uuid.UUID, name string) (*Manufacturer, error) {
	if err := validateManufacturerName(name); err != nil {
		return nil, err
	}
	m := &Manufacturer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Published:           true,
	}
	m.AddDomainEvent(newManufacturerEvent(m, shared.EntityInserted))
	return m, nil
}

// Update updates the manufacturer's descriptive fields
func (m *Manufacturer) Update(name, description string, pageSize, displayOrder int, published bool) error {
	if err := validateManufacturerName(name); err != nil {
		return err
	}
	m.Name = strings.TrimSpace(name)
	m.Description = description
	m.PageSize = pageSize
	m.DisplayOrder = displayOrder
	m.Published = published
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	m.AddDomainEvent(newManufacturerEvent(m, shared.EntityUpdated))
	return nil
}

// Delete soft-deletes the manufacturer
func (m *Manufacturer) Delete() {
	m.MarkDeleted()
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	m.AddDomainEvent(newManufacturerEvent(m, shared.EntityDeleted))
}

// IsVisible reports whether shoppers may see the manufacturer
func (m *Manufacturer) IsVisible() bool {
	return m.Published && !m.Deleted
}

func validateManufacturerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Manufacturer name cannot be empty")
	}
	if len(name) > 400 {
		return shared.NewDomainError("INVALID_NAME", "Manufacturer name cannot exceed 400 characters")
	}
	return nil
}
