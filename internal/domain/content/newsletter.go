package content

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	EntityNewsLetterSubscription = "newsletter_subscription"

	EventTypeNewsletterSubscribed   = "newsletter.subscribed"
	EventTypeNewsletterUnsubscribed = "newsletter.unsubscribed"
)

// NewsLetterSubscription is an email address signed up for the newsletter
type NewsLetterSubscription struct {
	shared.TenantAggregateRoot
	NewsLetterSubscriptionGUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Email                      string    `gorm:"type:varchar(255);not null;index"`
	Active                     bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (NewsLetterSubscription) TableName() string {
	return "newsletter_subscriptions"
}

// NewNewsLetterSubscription creates a subscription for a validated email
func NewNewsLetterSubscription(tenantID uuid.UUID, email string, active bool) (*NewsLetterSubscription, error) {
	normalized, err := NormalizeSubscriptionEmail(email)
	if err != nil {
		return nil, err
	}
	return &NewsLetterSubscription{
		TenantAggregateRoot:        shared.NewTenantAggregateRoot(tenantID),
		NewsLetterSubscriptionGUID: uuid.New(),
		Email:                      normalized,
		Active:                     active,
	}, nil
}

// NormalizeSubscriptionEmail trims and lower-cases an address and validates it
func NormalizeSubscriptionEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > 255 {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email is not valid")
	}
	return email, nil
}

// SubscriptionEvent notifies listeners that an address joined or left the list
type SubscriptionEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewSubscribedEvent builds the event published when an address becomes active
func NewSubscribedEvent(tenantID, subscriptionID uuid.UUID, email string) *SubscriptionEvent {
	return &SubscriptionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNewsletterSubscribed, EntityNewsLetterSubscription, subscriptionID, tenantID),
		Email:           email,
	}
}

// NewUnsubscribedEvent builds the event published when an address stops being active
func NewUnsubscribedEvent(tenantID, subscriptionID uuid.UUID, email string) *SubscriptionEvent {
	return &SubscriptionEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNewsletterUnsubscribed, EntityNewsLetterSubscription, subscriptionID, tenantID),
		Email:           email,
	}
}

// SubscriptionChangeEvents returns the events implied by updating a subscription
// from (oldEmail, wasActive) to its current state.
func SubscriptionChangeEvents(s *NewsLetterSubscription, oldEmail string, wasActive bool) []shared.DomainEvent {
	var events []shared.DomainEvent
	emailChanged := !strings.EqualFold(oldEmail, s.Email)
	switch {
	case wasActive && s.Active && emailChanged:
		events = append(events,
			NewUnsubscribedEvent(s.TenantID, s.ID, oldEmail),
			NewSubscribedEvent(s.TenantID, s.ID, s.Email))
	case !wasActive && s.Active:
		events = append(events, NewSubscribedEvent(s.TenantID, s.ID, s.Email))
	case wasActive && !s.Active:
		events = append(events, NewUnsubscribedEvent(s.TenantID, s.ID, oldEmail))
	}
	return events
}

// NewsLetterSubscriptionRepository persists subscriptions
type NewsLetterSubscriptionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*NewsLetterSubscription, error)
	FindByGUID(ctx context.Context, guid uuid.UUID) (*NewsLetterSubscription, error)
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*NewsLetterSubscription, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, email string, showHidden bool, filter shared.Filter) ([]NewsLetterSubscription, int64, error)
	Save(ctx context.Context, s *NewsLetterSubscription) error
	Delete(ctx context.Context, id uuid.UUID) error
}
