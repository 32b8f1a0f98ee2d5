package content

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	EntityPoll       = "poll"
	EntityPollAnswer = "poll_answer"
)

// Poll is a question shown to storefront visitors
type Poll struct {
	shared.TenantAggregateRoot
	LanguageID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name              string    `gorm:"type:varchar(400);not null"`
	SystemKeyword     string    `gorm:"type:varchar(200);index"`
	Published         bool      `gorm:"not null;default:false"`
	ShowOnHomePage    bool      `gorm:"not null;default:false"`
	AllowGuestsToVote bool      `gorm:"not null;default:false"`
	DisplayOrder      int       `gorm:"not null;default:0"`
	StartDate         *time.Time
	EndDate           *time.Time
	Answers           []PollAnswer `gorm:"foreignKey:PollID"`
}

// TableName returns the table name for GORM
func (Poll) TableName() string {
	return "polls"
}

// PollAnswer is one choice of a poll
type PollAnswer struct {
	shared.BaseEntity
	PollID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"type:varchar(400);not null"`
	NumberOfVotes int       `gorm:"not null;default:0"`
	DisplayOrder  int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PollAnswer) TableName() string {
	return "poll_answers"
}

// PollVotingRecord remembers that a customer voted
type PollVotingRecord struct {
	shared.BaseEntity
	PollAnswerID uuid.UUID `gorm:"type:uuid;not null;index"`
	PollID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_poll_vote_customer"`
	CustomerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_poll_vote_customer"`
}

// TableName returns the table name for GORM
func (PollVotingRecord) TableName() string {
	return "poll_voting_records"
}

// NewPoll creates an unpublished poll
func NewPoll(tenantID, languageID uuid.UUID, name string) (*Poll, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 400 {
		return nil, shared.NewDomainError("INVALID_NAME", "Poll name must be 1-400 characters")
	}
	p := &Poll{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		LanguageID:          languageID,
		Name:                name,
	}
	p.AddDomainEvent(shared.NewEntityEvent(EntityPoll, shared.EntityInserted, p.ID, tenantID))
	return p, nil
}

// AddAnswer appends a choice
func (p *Poll) AddAnswer(name string, displayOrder int) (*PollAnswer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Poll answer cannot be empty")
	}
	a := PollAnswer{
		BaseEntity:   shared.NewBaseEntity(),
		PollID:       p.ID,
		Name:         name,
		DisplayOrder: displayOrder,
	}
	p.Answers = append(p.Answers, a)
	p.changed()
	return &p.Answers[len(p.Answers)-1], nil
}

// Update changes the poll fields
func (p *Poll) Update(name, systemKeyword string, published, showOnHomePage, allowGuests bool, displayOrder int) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 400 {
		return shared.NewDomainError("INVALID_NAME", "Poll name must be 1-400 characters")
	}
	p.Name = name
	p.SystemKeyword = strings.TrimSpace(systemKeyword)
	p.Published = published
	p.ShowOnHomePage = showOnHomePage
	p.AllowGuestsToVote = allowGuests
	p.DisplayOrder = displayOrder
	p.changed()
	return nil
}

// SetPeriod restricts voting to a date window
func (p *Poll) SetPeriod(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewDomainError("INVALID_PERIOD", "End date must be after the start date")
	}
	p.StartDate = start
	p.EndDate = end
	p.changed()
	return nil
}

// IsOpenAt reports whether the poll is published and inside its window
func (p *Poll) IsOpenAt(t time.Time) bool {
	if !p.Published {
		return false
	}
	if p.StartDate != nil && t.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && t.After(*p.EndDate) {
		return false
	}
	return true
}

// FindAnswer returns the answer with the given id
func (p *Poll) FindAnswer(answerID uuid.UUID) *PollAnswer {
	for i := range p.Answers {
		if p.Answers[i].ID == answerID {
			return &p.Answers[i]
		}
	}
	return nil
}

// TotalVotes sums votes over all answers
func (p *Poll) TotalVotes() int {
	total := 0
	for _, a := range p.Answers {
		total += a.NumberOfVotes
	}
	return total
}

// CanVote checks whether a customer may vote now
func (p *Poll) CanVote(isGuest bool, now time.Time) error {
	if !p.IsOpenAt(now) {
		return shared.NewDomainError("POLL_CLOSED", "Poll is not available")
	}
	if isGuest && !p.AllowGuestsToVote {
		return shared.NewDomainError("POLL_GUEST_NOT_ALLOWED", "Only registered users can vote")
	}
	return nil
}

// Delete removes the poll
func (p *Poll) Delete() {
	p.AddDomainEvent(shared.NewEntityEvent(EntityPoll, shared.EntityDeleted, p.ID, p.TenantID))
}

func (p *Poll) changed() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(shared.NewEntityEvent(EntityPoll, shared.EntityUpdated, p.ID, p.TenantID))
}

// PollRepository persists polls with answers and votes
type PollRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Poll, error)
	// FindPolls lists polls; nil filters are ignored
	FindPolls(ctx context.Context, tenantID uuid.UUID, languageID *uuid.UUID, showOnHomePage *bool, systemKeyword string, showHidden bool) ([]Poll, error)
	Save(ctx context.Context, p *Poll) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	AlreadyVoted(ctx context.Context, pollID, customerID uuid.UUID) (bool, error)
	// RecordVote stores the voting record and increments the answer counter atomically
	RecordVote(ctx context.Context, record *PollVotingRecord) error
}
