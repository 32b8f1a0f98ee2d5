package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormCustomerRepository implements customer.Repository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) first(ctx context.Context, query string, args ...any) (*customer.Customer, error) {
	var c customer.Customer
	if err := conn(ctx, r.db).Preload("Roles").Where(query, args...).First(&c).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// FindByIDForTenant finds a customer by ID within a store
func (r *GormCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*customer.Customer, error) {
	return r.first(ctx, "tenant_id = ? AND id = ?", tenantID, id)
}

// FindByGUID finds a customer by the guid carried in the visitor cookie or header
func (r *GormCustomerRepository) FindByGUID(ctx context.Context, guid uuid.UUID) (*customer.Customer, error) {
	return r.first(ctx, "customer_guid = ?", guid)
}

// FindByEmail finds a non-deleted customer by email within a store
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*customer.Customer, error) {
	return r.first(ctx, "tenant_id = ? AND email = ? AND deleted = ?", tenantID, strings.ToLower(strings.TrimSpace(email)), false)
}

// FindByUsername finds a non-deleted customer by username within a store
func (r *GormCustomerRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*customer.Customer, error) {
	return r.first(ctx, "tenant_id = ? AND username = ? AND deleted = ?", tenantID, strings.TrimSpace(username), false)
}

// FindBySystemName finds a system account such as the background task customer
func (r *GormCustomerRepository) FindBySystemName(ctx context.Context, systemName string) (*customer.Customer, error) {
	return r.first(ctx, "system_name = ? AND is_system_account = ?", systemName, true)
}

func (r *GormCustomerRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) *gorm.DB {
	query := conn(ctx, r.db).Model(&customer.Customer{}).
		Where("tenant_id = ? AND deleted = ? AND is_system_account = ?", tenantID, false, false)
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(email) LIKE ? ESCAPE '\\' OR LOWER(username) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	return query
}

// FindAllForTenant lists a page of customers
func (r *GormCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]customer.Customer, error) {
	var customers []customer.Customer
	if err := r.filtered(ctx, tenantID, filter).
		Preload("Roles").
		Scopes(orderBy(filter, CustomerSortFields, "created_at"), paginate(filter)).
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// CountForTenant counts customers matching the filter
func (r *GormCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := r.filtered(ctx, tenantID, filter).Count(&count).Error
	return count, err
}

// Save creates or updates a customer and replaces its role mappings
func (r *GormCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Roles").Save(c).Error; err != nil {
			return err
		}
		return tx.Model(c).Association("Roles").Replace(c.Roles)
	})
}

// guestHistoryTables hold rows that keep pointing at a guest after checkout,
// voting or commenting; such guests are never deleted
var guestHistoryTables = []string{"orders", "poll_voting_records", "news_comments", "blog_comments"}

// DeleteGuests hard-deletes guests created before the cutoff.
// Guests holding cart items are kept when onlyWithoutCartItems is set.
func (r *GormCustomerRepository) DeleteGuests(ctx context.Context, createdBefore time.Time, onlyWithoutCartItems bool) (int64, error) {
	guests := conn(ctx, r.db).
		Table("customers").
		Select("customers.id").
		Joins("JOIN customer_role_mappings crm ON crm.customer_id = customers.id").
		Joins("JOIN customer_roles cr ON cr.id = crm.customer_role_id").
		Where("cr.system_name = ?", customer.RoleGuests).
		Where("customers.created_at < ? AND customers.is_system_account = ?", createdBefore, false).
		Where("customers.email = ''")
	for _, table := range guestHistoryTables {
		guests = guests.Where("NOT EXISTS (?)",
			r.db.Table(table).Select("1").Where(table+".customer_id = customers.id"))
	}
	if onlyWithoutCartItems {
		guests = guests.Where("NOT EXISTS (?)",
			r.db.Model(&cart.Item{}).Select("1").Where("shopping_cart_items.customer_id = customers.id"))
	}

	var ids []uuid.UUID
	if err := guests.Pluck("customers.id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM customer_role_mappings WHERE customer_id IN ?", ids).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id IN ?", ids).Delete(&cart.Item{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&customer.Customer{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}

// GormCustomerRoleRepository implements customer.RoleRepository using GORM
type GormCustomerRoleRepository struct {
	db *gorm.DB
}

// NewGormCustomerRoleRepository creates a new GormCustomerRoleRepository
func NewGormCustomerRoleRepository(db *gorm.DB) *GormCustomerRoleRepository {
	return &GormCustomerRoleRepository{db: db}
}

// FindBySystemName finds a role by system name
func (r *GormCustomerRoleRepository) FindBySystemName(ctx context.Context, systemName string) (*customer.CustomerRole, error) {
	var role customer.CustomerRole
	if err := conn(ctx, r.db).Where("system_name = ?", systemName).First(&role).Error; err != nil {
		return nil, translateError(err)
	}
	return &role, nil
}

// FindAll lists roles; inactive ones only when showHidden is set
func (r *GormCustomerRoleRepository) FindAll(ctx context.Context, showHidden bool) ([]customer.CustomerRole, error) {
	var roles []customer.CustomerRole
	query := conn(ctx, r.db).Model(&customer.CustomerRole{})
	if !showHidden {
		query = query.Where("active = ?", true)
	}
	if err := query.Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Save creates or updates a role
func (r *GormCustomerRoleRepository) Save(ctx context.Context, role *customer.CustomerRole) error {
	return conn(ctx, r.db).Save(role).Error
}

var (
	_ customer.Repository     = (*GormCustomerRepository)(nil)
	_ customer.RoleRepository = (*GormCustomerRoleRepository)(nil)
)
