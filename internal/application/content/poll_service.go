package content

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// PollService manages polls and votes
type PollService struct {
	repo      content.PollRepository
	cache     cache.Manager
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewPollService creates a new PollService
func NewPollService(repo content.PollRepository, cacheManager cache.Manager, publisher shared.EventPublisher, logger *zap.Logger) *PollService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PollService{repo: repo, cache: cacheManager, publisher: publisher, logger: logger, now: time.Now}
}

// CreatePoll creates a poll with its answers
func (s *PollService) CreatePoll(ctx context.Context, storeID uuid.UUID, req PollRequest) (*content.Poll, error) {
	poll, err := content.NewPoll(storeID, req.LanguageID, req.Name)
	if err != nil {
		return nil, err
	}
	for i, name := range req.Answers {
		if _, err := poll.AddAnswer(name, i); err != nil {
			return nil, err
		}
	}
	if err := s.apply(poll, req); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, err
	}
	s.changed(ctx, poll)
	return poll, nil
}

// UpdatePoll replaces the poll fields. Answers are only appended; existing
// answers keep their votes.
func (s *PollService) UpdatePoll(ctx context.Context, storeID, id uuid.UUID, req PollRequest) (*content.Poll, error) {
	poll, err := s.repo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(poll.Answers))
	for _, a := range poll.Answers {
		existing[a.Name] = true
	}
	for _, name := range req.Answers {
		if existing[name] {
			continue
		}
		if _, err := poll.AddAnswer(name, len(poll.Answers)); err != nil {
			return nil, err
		}
	}
	poll.LanguageID = req.LanguageID
	if err := s.apply(poll, req); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, err
	}
	s.changed(ctx, poll)
	return poll, nil
}

func (s *PollService) apply(p *content.Poll, req PollRequest) error {
	if err := p.Update(req.Name, req.SystemKeyword, req.Published, req.ShowOnHomePage, req.AllowGuestsToVote, req.DisplayOrder); err != nil {
		return err
	}
	return p.SetPeriod(req.StartDate, req.EndDate)
}

// DeletePoll removes a poll with its answers and votes
func (s *PollService) DeletePoll(ctx context.Context, storeID, id uuid.UUID) error {
	poll, err := s.repo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, storeID, id); err != nil {
		return err
	}
	poll.Delete()
	s.changed(ctx, poll)
	return nil
}

// GetPollByID returns a poll
func (s *PollService) GetPollByID(ctx context.Context, storeID, id uuid.UUID) (*content.Poll, error) {
	return s.repo.FindByIDForTenant(ctx, storeID, id)
}

// GetPolls lists open polls for the storefront, cached. Nil filters match
// everything.
func (s *PollService) GetPolls(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, showOnHomePage *bool, systemKeyword string) ([]content.Poll, error) {
	key := cache.PollsKey.Create(storeID, optionalArg(languageID), optionalArg(showOnHomePage), systemKeyword)
	polls, err := cache.Get(ctx, s.cache, key, func() ([]content.Poll, error) {
		return s.repo.FindPolls(ctx, storeID, languageID, showOnHomePage, systemKeyword, false)
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	open := make([]content.Poll, 0, len(polls))
	for _, p := range polls {
		if p.IsOpenAt(now) {
			open = append(open, p)
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].DisplayOrder < open[j].DisplayOrder })
	return open, nil
}

// GetAllPolls lists every poll for administration
func (s *PollService) GetAllPolls(ctx context.Context, storeID uuid.UUID) ([]content.Poll, error) {
	return s.repo.FindPolls(ctx, storeID, nil, nil, "", true)
}

// AlreadyVoted reports whether a customer voted on a poll
func (s *PollService) AlreadyVoted(ctx context.Context, pollID, customerID uuid.UUID) (bool, error) {
	return s.repo.AlreadyVoted(ctx, pollID, customerID)
}

// Vote records a customer's answer. It fails when the poll is closed,
// guests may not vote, or the customer already voted.
func (s *PollService) Vote(ctx context.Context, storeID, pollID uuid.UUID, c *customer.Customer, answerID uuid.UUID) (*PollResponse, error) {
	poll, err := s.repo.FindByIDForTenant(ctx, storeID, pollID)
	if err != nil {
		return nil, err
	}
	if err := poll.CanVote(c.IsGuest(), s.now()); err != nil {
		return nil, err
	}
	answer := poll.FindAnswer(answerID)
	if answer == nil {
		return nil, fmt.Errorf("%w: poll answer %s", shared.ErrNotFound, answerID)
	}
	voted, err := s.repo.AlreadyVoted(ctx, pollID, c.ID)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, shared.NewDomainError("POLL_ALREADY_VOTED", "You have already voted in this poll")
	}

	record := &content.PollVotingRecord{
		BaseEntity:   shared.NewBaseEntity(),
		PollAnswerID: answerID,
		PollID:       pollID,
		CustomerID:   c.ID,
	}
	if err := s.repo.RecordVote(ctx, record); err != nil {
		return nil, err
	}
	answer.NumberOfVotes++

	event := shared.NewEntityEvent(content.EntityPollAnswer, shared.EntityUpdated, answerID, storeID).WithRef("poll_id", pollID)
	s.publish(ctx, event)

	resp := ToPollResponse(poll)
	resp.AlreadyVoted = true
	return &resp, nil
}

func (s *PollService) changed(ctx context.Context, p *content.Poll) {
	err := shared.PublishPending(ctx, s.publisher, p)
	if err != nil {
		s.logger.Warn("Failed to publish poll events", zap.Error(err))
	}
	if s.publisher == nil || err != nil {
		_ = s.cache.RemoveByPrefix(ctx, cache.PrefixPolls)
	}
}

func (s *PollService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.publisher != nil {
		err := s.publisher.Publish(ctx, event)
		if err == nil {
			return
		}
		s.logger.Warn("Failed to publish poll event", zap.Error(err))
	}
	_ = s.cache.RemoveByPrefix(ctx, cache.PrefixPolls)
}

// optionalArg renders a nil filter as "all" in cache keys
func optionalArg[T any](v *T) any {
	if v == nil {
		return "all"
	}
	return *v
}
