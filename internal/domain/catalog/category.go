package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxCategoryDepth is the maximum nesting of the category tree
const MaxCategoryDepth = 5

// Category groups products into a browsable tree
type Category struct {
	shared.TenantAggregateRoot
	shared.SoftDeletable
	Name           string     `gorm:"type:varchar(400);not null"`
	Description    string     `gorm:"type:text"`
	ParentID       *uuid.UUID `gorm:"type:uuid;index"`
	Path           string     `gorm:"type:varchar(500);not null;index"` // materialized path of ids
	Level          int        `gorm:"not null;default:0"`
	PictureID      *uuid.UUID `gorm:"type:uuid"`
	PageSize       int        `gorm:"not null;default:0"`
	ShowOnHomePage bool       `gorm:"not null;default:false"`
	Published      bool       `gorm:"not null;default:true"`
	DisplayOrder   int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new root category
func NewCategory(tenantID uuid.UUID, name string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Published:           true,
	}
	category.Path = category.ID.String()
	category.AddDomainEvent(newCategoryEvent(category, shared.EntityInserted))
	return category, nil
}

// NewChildCategory creates a category under a parent
func NewChildCategory(tenantID uuid.UUID, name string, parent *Category) (*Category, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent category is required")
	}
	if parent.Level >= MaxCategoryDepth-1 {
		return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED", fmt.Sprintf("Category depth cannot exceed %d levels", MaxCategoryDepth))
	}
	category, err := NewCategory(tenantID, name)
	if err != nil {
		return nil, err
	}
	category.ParentID = &parent.ID
	category.Level = parent.Level + 1
	category.Path = parent.Path + "/" + category.ID.String()
	return category, nil
}

// Update updates the category's descriptive fields
func (c *Category) Update(name, description string, pageSize, displayOrder int, showOnHomePage bool) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	if pageSize < 0 {
		return shared.NewDomainError("INVALID_PAGE_SIZE", "Page size cannot be negative")
	}
	c.Name = strings.TrimSpace(name)
	c.Description = description
	c.PageSize = pageSize
	c.DisplayOrder = displayOrder
	c.ShowOnHomePage = showOnHomePage
	c.changed()
	return nil
}

// SetPublished publishes or hides the category
func (c *Category) SetPublished(published bool) {
	if c.Published == published {
		return
	}
	c.Published = published
	c.changed()
}

// SetPicture assigns the category picture
func (c *Category) SetPicture(pictureID *uuid.UUID) {
	c.PictureID = pictureID
	c.changed()
}

// Delete soft-deletes the category
func (c *Category) Delete() {
	c.MarkDeleted()
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(newCategoryEvent(c, shared.EntityDeleted))
}

// IsVisible reports whether shoppers may see the category
func (c *Category) IsVisible() bool {
	return c.Published && !c.Deleted
}

// IsRoot returns true if this is a root category
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// AncestorIDs returns the ids on the path from the root, excluding the category itself
func (c *Category) AncestorIDs() []uuid.UUID {
	parts := strings.Split(c.Path, "/")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts[:max(len(parts)-1, 0)] {
		if id, err := uuid.Parse(p); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsDescendantOf reports whether the category sits below the given one
func (c *Category) IsDescendantOf(other *Category) bool {
	return other != nil && strings.HasPrefix(c.Path, other.Path+"/")
}

func (c *Category) changed() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(newCategoryEvent(c, shared.EntityUpdated))
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 400 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 400 characters")
	}
	return nil
}
