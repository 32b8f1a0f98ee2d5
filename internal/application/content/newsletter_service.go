package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/shared"
)

// NewsLetterSubscriptionService manages newsletter subscriptions. Every
// mutation takes a publishSubscriptionEvent flag; when set, the
// subscribed/unsubscribed events implied by the change are published.
type NewsLetterSubscriptionService struct {
	repo      content.NewsLetterSubscriptionRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewNewsLetterSubscriptionService creates a new NewsLetterSubscriptionService
func NewNewsLetterSubscriptionService(repo content.NewsLetterSubscriptionRepository, publisher shared.EventPublisher, logger *zap.Logger) *NewsLetterSubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsLetterSubscriptionService{repo: repo, publisher: publisher, logger: logger}
}

// InsertSubscription stores a new subscription. An active subscription
// publishes newsletter.subscribed.
func (s *NewsLetterSubscriptionService) InsertSubscription(ctx context.Context, sub *content.NewsLetterSubscription, publishSubscriptionEvent bool) error {
	email, err := content.NormalizeSubscriptionEmail(sub.Email)
	if err != nil {
		return err
	}
	sub.Email = email
	if sub.NewsLetterSubscriptionGUID == uuid.Nil {
		sub.NewsLetterSubscriptionGUID = uuid.New()
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		return err
	}
	if publishSubscriptionEvent && sub.Active {
		s.publish(ctx, content.NewSubscribedEvent(sub.TenantID, sub.ID, sub.Email))
	}
	return nil
}

// UpdateSubscription saves changes to a subscription. Events are derived
// from the stored state before the update.
func (s *NewsLetterSubscriptionService) UpdateSubscription(ctx context.Context, sub *content.NewsLetterSubscription, publishSubscriptionEvent bool) error {
	email, err := content.NormalizeSubscriptionEmail(sub.Email)
	if err != nil {
		return err
	}
	before, err := s.repo.FindByID(ctx, sub.ID)
	if err != nil {
		return err
	}
	oldEmail, wasActive := before.Email, before.Active

	sub.Email = email
	if err := s.repo.Save(ctx, sub); err != nil {
		return err
	}
	if publishSubscriptionEvent {
		s.publish(ctx, content.SubscriptionChangeEvents(sub, oldEmail, wasActive)...)
	}
	return nil
}

// DeleteSubscription removes a subscription. Deleting an active one
// publishes newsletter.unsubscribed.
func (s *NewsLetterSubscriptionService) DeleteSubscription(ctx context.Context, sub *content.NewsLetterSubscription, publishSubscriptionEvent bool) error {
	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		return err
	}
	if publishSubscriptionEvent && sub.Active {
		s.publish(ctx, content.NewUnsubscribedEvent(sub.TenantID, sub.ID, sub.Email))
	}
	return nil
}

// Subscribe activates the address for a store, creating the subscription
// when it does not exist yet.
func (s *NewsLetterSubscriptionService) Subscribe(ctx context.Context, storeID uuid.UUID, email string) (*content.NewsLetterSubscription, error) {
	existing, err := s.repo.FindByEmail(ctx, storeID, email)
	switch {
	case err == nil:
		if existing.Active {
			return existing, nil
		}
		existing.Active = true
		return existing, s.UpdateSubscription(ctx, existing, true)
	case errors.Is(err, shared.ErrNotFound):
		sub, err := content.NewNewsLetterSubscription(storeID, email, true)
		if err != nil {
			return nil, err
		}
		return sub, s.InsertSubscription(ctx, sub, true)
	default:
		return nil, err
	}
}

// Unsubscribe deactivates the address for a store. Unknown addresses are
// a no-op.
func (s *NewsLetterSubscriptionService) Unsubscribe(ctx context.Context, storeID uuid.UUID, email string) error {
	existing, err := s.repo.FindByEmail(ctx, storeID, email)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !existing.Active {
		return nil
	}
	existing.Active = false
	return s.UpdateSubscription(ctx, existing, true)
}

// ActivateByGUID toggles a subscription from an emailed link
func (s *NewsLetterSubscriptionService) ActivateByGUID(ctx context.Context, guid uuid.UUID, active bool) (*content.NewsLetterSubscription, error) {
	sub, err := s.repo.FindByGUID(ctx, guid)
	if err != nil {
		return nil, err
	}
	if sub.Active == active {
		return sub, nil
	}
	sub.Active = active
	return sub, s.UpdateSubscription(ctx, sub, true)
}

// GetSubscriptionByEmail returns a store's subscription for an address
func (s *NewsLetterSubscriptionService) GetSubscriptionByEmail(ctx context.Context, storeID uuid.UUID, email string) (*content.NewsLetterSubscription, error) {
	return s.repo.FindByEmail(ctx, storeID, email)
}

// GetAllSubscriptions lists subscriptions for administration
func (s *NewsLetterSubscriptionService) GetAllSubscriptions(ctx context.Context, storeID uuid.UUID, email string, showHidden bool, filter shared.Filter) (shared.Paginated[content.NewsLetterSubscription], error) {
	filter = normalizeFilter(filter, 20)
	subs, total, err := s.repo.FindAll(ctx, storeID, email, showHidden, filter)
	if err != nil {
		return shared.Paginated[content.NewsLetterSubscription]{}, err
	}
	return shared.NewPaginated(subs, total, filter.Page, filter.PageSize), nil
}

func (s *NewsLetterSubscriptionService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish newsletter events", zap.Error(err))
	}
}
