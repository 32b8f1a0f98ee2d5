package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByIDForTenant finds a category by ID within a store
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Category, error)

	// FindAllForTenant lists non-deleted categories, ordered by level and display order
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, showHidden bool) ([]Category, error)

	// FindChildren finds the direct children of a category
	FindChildren(ctx context.Context, tenantID, parentID uuid.UUID, showHidden bool) ([]Category, error)

	// FindDescendantIDs returns the ids of all categories below the given one
	FindDescendantIDs(ctx context.Context, tenantID, categoryID uuid.UUID) ([]uuid.UUID, error)

	// FindHomePageCategories lists visible categories flagged for the home page
	FindHomePageCategories(ctx context.Context, tenantID uuid.UUID) ([]Category, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// HasChildren checks if a non-deleted category sits below the given one
	HasChildren(ctx context.Context, tenantID, categoryID uuid.UUID) (bool, error)
}

// ManufacturerRepository defines the interface for manufacturer persistence
type ManufacturerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Manufacturer, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, showHidden bool) ([]Manufacturer, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, showHidden bool) (int64, error)
	Save(ctx context.Context, m *Manufacturer) error
}

// PictureRepository defines the interface for picture metadata persistence
type PictureRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Picture, error)
	FindByProductID(ctx context.Context, productID uuid.UUID) ([]Picture, error)
	Save(ctx context.Context, p *Picture) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
