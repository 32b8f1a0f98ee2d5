package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// EntityStore is the entity name used in mutation events
const EntityStore = "store"

// DefaultStoreID is used when a request carries no store information
var DefaultStoreID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Store is a storefront served by this installation.
// Store ids double as tenant ids on every store-scoped row.
type Store struct {
	shared.BaseAggregateRoot
	Name              string     `gorm:"type:varchar(400);not null"`
	URL               string     `gorm:"type:varchar(400);not null"`
	SslEnabled        bool       `gorm:"not null;default:false"`
	Hosts             string     `gorm:"type:varchar(1000)"` // comma separated
	CompanyName       string     `gorm:"type:varchar(1000)"`
	CompanyAddress    string     `gorm:"type:varchar(1000)"`
	CompanyPhone      string     `gorm:"type:varchar(100)"`
	DefaultLanguageID *uuid.UUID `gorm:"type:uuid"`
	DisplayOrder      int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Store) TableName() string {
	return "stores"
}

// NewStore creates a new store
func NewStore(name, url string) (*Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Store name cannot be empty")
	}
	if len(name) > 400 {
		return nil, shared.NewDomainError("INVALID_NAME", "Store name cannot exceed 400 characters")
	}
	s := &Store{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		URL:               strings.TrimSpace(url),
	}
	s.AddDomainEvent(shared.NewEntityEvent(EntityStore, shared.EntityInserted, s.ID, s.ID))
	return s, nil
}

// HostValues returns the configured host names, lower-cased and trimmed
func (s *Store) HostValues() []string {
	parts := strings.Split(s.Hosts, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			hosts = append(hosts, p)
		}
	}
	return hosts
}

// ContainsHostValue reports whether the host belongs to this store.
// Ports are ignored.
func (s *Store) ContainsHostValue(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	if host == "" {
		return false
	}
	for _, h := range s.HostValues() {
		if h == host {
			return true
		}
	}
	return false
}

// Update changes the store's descriptive fields
func (s *Store) Update(name, url, hosts string, sslEnabled bool, displayOrder int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Store name cannot be empty")
	}
	s.Name = name
	s.URL = strings.TrimSpace(url)
	s.Hosts = hosts
	s.SslEnabled = sslEnabled
	s.DisplayOrder = displayOrder
	s.Touch()
	s.IncrementVersion()
	s.AddDomainEvent(shared.NewEntityEvent(EntityStore, shared.EntityUpdated, s.ID, s.ID))
	return nil
}

// Repository persists stores
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
	FindAll(ctx context.Context) ([]Store, error)
	Save(ctx context.Context, s *Store) error
	Delete(ctx context.Context, id uuid.UUID) error
}
