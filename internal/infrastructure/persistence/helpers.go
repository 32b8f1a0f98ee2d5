package persistence

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/shared"
)

// translateError maps gorm's not-found error to the domain sentinel
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// requireAffected turns a zero-row write into ErrNotFound
func requireAffected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// paginate applies filter paging when a page size is set
func paginate(filter shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.PageSize <= 0 {
			return db
		}
		return db.Offset(filter.Offset()).Limit(filter.PageSize)
	}
}

// orderBy applies a whitelisted sort column
func orderBy(filter shared.Filter, allowed map[string]bool, defaultField string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field := ValidateSortField(filter.OrderBy, allowed, defaultField)
		return db.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	}
}

// notDeleted hides soft-deleted rows
func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted = ?", false)
}

// likePattern escapes a user search term for LIKE; queries using it must
// declare ESCAPE '\'
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(term))) + "%"
}
