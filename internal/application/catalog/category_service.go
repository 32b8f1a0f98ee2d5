package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	cache        cache.Manager
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	cacheManager cache.Manager,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		cache:        cacheManager,
		publisher:    publisher,
		logger:       logger,
	}
}

// CreateCategory creates a root category, or a child when ParentID is set
func (s *CategoryService) CreateCategory(ctx context.Context, storeID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	var (
		category *catalog.Category
		err      error
	)
	if req.ParentID != nil {
		parent, err := s.categoryRepo.FindByIDForTenant(ctx, storeID, *req.ParentID)
		if err != nil || parent.Deleted {
			if err == nil || errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
			}
			return nil, err
		}
		category, err = catalog.NewChildCategory(storeID, req.Name, parent)
		if err != nil {
			return nil, err
		}
	} else {
		category, err = catalog.NewCategory(storeID, req.Name)
		if err != nil {
			return nil, err
		}
	}

	if err := category.Update(req.Name, req.Description, req.PageSize, req.DisplayOrder, req.ShowOnHomePage); err != nil {
		return nil, err
	}
	if req.PictureID != nil {
		category.SetPicture(req.PictureID)
	}
	if req.Published != nil {
		category.SetPublished(*req.Published)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.changed(ctx, category)

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// UpdateCategory updates a category's descriptive fields. Moving a category
// to another parent is not supported.
func (s *CategoryService) UpdateCategory(ctx context.Context, storeID, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.findForUpdate(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if err := category.Update(req.Name, req.Description, req.PageSize, req.DisplayOrder, req.ShowOnHomePage); err != nil {
		return nil, err
	}
	category.SetPicture(req.PictureID)
	category.SetPublished(req.Published)

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.changed(ctx, category)

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// DeleteCategory soft-deletes a category. Categories with live children
// cannot be deleted.
func (s *CategoryService) DeleteCategory(ctx context.Context, storeID, id uuid.UUID) error {
	category, err := s.findForUpdate(ctx, storeID, id)
	if err != nil {
		return err
	}
	hasChildren, err := s.categoryRepo.HasChildren(ctx, storeID, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.NewDomainError("CATEGORY_HAS_CHILDREN", "Delete or move the subcategories first")
	}

	category.Delete()
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return err
	}
	s.changed(ctx, category)
	return nil
}

// GetCategoryByID returns a category. Hidden and deleted categories are
// reported as not found unless showHidden is set.
func (s *CategoryService) GetCategoryByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*catalog.Category, error) {
	category, err := cache.Get(ctx, s.cache, cache.CategoryByIDKey.Create(id), func() (*catalog.Category, error) {
		return s.categoryRepo.FindByIDForTenant(ctx, storeID, id)
	})
	if err != nil {
		return nil, err
	}
	if category.TenantID != storeID || category.Deleted || (!showHidden && !category.Published) {
		return nil, fmt.Errorf("%w: category %s", shared.ErrNotFound, id)
	}
	return category, nil
}

// GetAllCategories lists the store's categories ordered by level and display order
func (s *CategoryService) GetAllCategories(ctx context.Context, storeID uuid.UUID, showHidden bool) ([]catalog.Category, error) {
	return cache.Get(ctx, s.cache, cache.CategoriesAllKey.Create(storeID, showHidden), func() ([]catalog.Category, error) {
		return s.categoryRepo.FindAllForTenant(ctx, storeID, showHidden)
	})
}

// GetCategoryTree arranges the store's categories as a forest. A category
// whose parent is hidden is left out together with its subtree.
func (s *CategoryService) GetCategoryTree(ctx context.Context, storeID uuid.UUID, showHidden bool) ([]*CategoryTreeNode, error) {
	all, err := s.GetAllCategories(ctx, storeID, showHidden)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*CategoryTreeNode, len(all))
	roots := make([]*CategoryTreeNode, 0)
	// all is ordered by level, so parents are seen before their children
	for i := range all {
		node := &CategoryTreeNode{CategoryResponse: ToCategoryResponse(&all[i]), Children: []*CategoryTreeNode{}}
		if all[i].ParentID == nil {
			nodes[all[i].ID] = node
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*all[i].ParentID]; ok {
			nodes[all[i].ID] = node
			parent.Children = append(parent.Children, node)
		}
	}
	return roots, nil
}

// GetCategoryBreadcrumb returns the path from the root down to the category
func (s *CategoryService) GetCategoryBreadcrumb(ctx context.Context, storeID, id uuid.UUID) ([]CategoryResponse, error) {
	return cache.Get(ctx, s.cache, cache.CategoryBreadcrumbKey.Create(storeID, id), func() ([]CategoryResponse, error) {
		all, err := s.GetAllCategories(ctx, storeID, false)
		if err != nil {
			return nil, err
		}
		byID := make(map[uuid.UUID]*catalog.Category, len(all))
		for i := range all {
			byID[all[i].ID] = &all[i]
		}
		category, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: category %s", shared.ErrNotFound, id)
		}

		crumbs := make([]CategoryResponse, 0, category.Level+1)
		for _, ancestorID := range category.AncestorIDs() {
			ancestor, ok := byID[ancestorID]
			if !ok {
				// an unpublished ancestor hides the whole branch
				return nil, fmt.Errorf("%w: category %s", shared.ErrNotFound, id)
			}
			crumbs = append(crumbs, ToCategoryResponse(ancestor))
		}
		return append(crumbs, ToCategoryResponse(category)), nil
	})
}

// GetHomePageCategories lists visible categories flagged for the home page
func (s *CategoryService) GetHomePageCategories(ctx context.Context, storeID uuid.UUID) ([]catalog.Category, error) {
	return cache.Get(ctx, s.cache, cache.CategoriesHomePageKey.Create(storeID), func() ([]catalog.Category, error) {
		return s.categoryRepo.FindHomePageCategories(ctx, storeID)
	})
}

// GetChildCategoryIDs returns the ids of every category below the given one
func (s *CategoryService) GetChildCategoryIDs(ctx context.Context, storeID, id uuid.UUID) ([]uuid.UUID, error) {
	return s.categoryRepo.FindDescendantIDs(ctx, storeID, id)
}

func (s *CategoryService) findForUpdate(ctx context.Context, storeID, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if category.Deleted {
		return nil, fmt.Errorf("%w: category %s", shared.ErrNotFound, id)
	}
	return category, nil
}

func (s *CategoryService) changed(ctx context.Context, c *catalog.Category) {
	err := shared.PublishPending(ctx, s.publisher, c)
	if err != nil {
		s.logger.Warn("Failed to publish category events", zap.Error(err), zap.String("category_id", c.ID.String()))
	}
	if s.publisher == nil || err != nil {
		_ = s.cache.RemoveByPrefix(ctx, cache.PrefixCategories)
	}
}
