package content

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
)

var (
	storeID    = uuid.MustParse("3b1e6a2c-8f0d-4c55-9a7e-1d2c3b4a5f60")
	languageID = uuid.MustParse("5c2a9e14-0b7d-4e31-8a6f-7d1e2c3b4a50")
)

// MockPollRepository is a mock implementation of content.PollRepository
type MockPollRepository struct {
	mock.Mock
}

func (m *MockPollRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*content.Poll, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Poll), args.Error(1)
}

func (m *MockPollRepository) FindPolls(ctx context.Context, tenantID uuid.UUID, languageID *uuid.UUID, showOnHomePage *bool, systemKeyword string, showHidden bool) ([]content.Poll, error) {
	args := m.Called(ctx, tenantID, languageID, showOnHomePage, systemKeyword, showHidden)
	return args.Get(0).([]content.Poll), args.Error(1)
}

func (m *MockPollRepository) Save(ctx context.Context, p *content.Poll) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPollRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockPollRepository) AlreadyVoted(ctx context.Context, pollID, customerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, pollID, customerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPollRepository) RecordVote(ctx context.Context, record *content.PollVotingRecord) error {
	return m.Called(ctx, record).Error(0)
}

// MockNewsRepository is a mock implementation of content.NewsRepository
type MockNewsRepository struct {
	mock.Mock
}

func (m *MockNewsRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*content.NewsItem, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.NewsItem), args.Error(1)
}

func (m *MockNewsRepository) FindAll(ctx context.Context, tenantID uuid.UUID, languageID *uuid.UUID, showHidden bool, filter shared.Filter) ([]content.NewsItem, int64, error) {
	args := m.Called(ctx, tenantID, languageID, showHidden, filter)
	return args.Get(0).([]content.NewsItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockNewsRepository) Save(ctx context.Context, n *content.NewsItem) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNewsRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockNewsRepository) SaveComment(ctx context.Context, c *content.NewsComment) error {
	return m.Called(ctx, c).Error(0)
}

// MockBlogRepository is a mock implementation of content.BlogRepository
type MockBlogRepository struct {
	mock.Mock
}

func (m *MockBlogRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*content.BlogPost, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) FindAll(ctx context.Context, tenantID uuid.UUID, languageID *uuid.UUID, from, to *time.Time, showHidden bool) ([]content.BlogPost, error) {
	args := m.Called(ctx, tenantID, languageID, from, to, showHidden)
	return args.Get(0).([]content.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) Save(ctx context.Context, b *content.BlogPost) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBlogRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockBlogRepository) SaveComment(ctx context.Context, c *content.BlogComment) error {
	return m.Called(ctx, c).Error(0)
}

// MockSubscriptionRepository is a mock implementation of content.NewsLetterSubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.NewsLetterSubscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.NewsLetterSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByGUID(ctx context.Context, guid uuid.UUID) (*content.NewsLetterSubscription, error) {
	args := m.Called(ctx, guid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.NewsLetterSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*content.NewsLetterSubscription, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.NewsLetterSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindAll(ctx context.Context, tenantID uuid.UUID, email string, showHidden bool, filter shared.Filter) ([]content.NewsLetterSubscription, int64, error) {
	args := m.Called(ctx, tenantID, email, showHidden, filter)
	return args.Get(0).([]content.NewsLetterSubscription), args.Get(1).(int64), args.Error(2)
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, s *content.NewsLetterSubscription) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// fixedSettings answers LoadSettings with the news and blog settings it holds
type fixedSettings struct {
	news configuration.NewsSettings
	blog configuration.BlogSettings
}

func newFixedSettings() *fixedSettings {
	return &fixedSettings{news: configuration.DefaultNewsSettings(), blog: configuration.DefaultBlogSettings()}
}

func (s *fixedSettings) LoadSettings(_ context.Context, _ uuid.UUID, settings any) error {
	switch v := settings.(type) {
	case *configuration.NewsSettings:
		*v = s.news
	case *configuration.BlogSettings:
		*v = s.blog
	}
	return nil
}

func guestCustomer() *customer.Customer {
	return customer.NewGuestCustomer(storeID, &customer.CustomerRole{
		BaseEntity: shared.NewBaseEntity(),
		SystemName: customer.RoleGuests,
		Active:     true,
	})
}

func registeredCustomer() *customer.Customer {
	c := customer.NewGuestCustomer(storeID, nil)
	c.Roles = append(c.Roles, customer.CustomerRole{
		BaseEntity: shared.NewBaseEntity(),
		SystemName: customer.RoleRegistered,
		Active:     true,
	})
	return c
}
