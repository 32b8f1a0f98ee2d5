package content

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/content"
)

// SettingsLoader fills a typed settings struct for a store
type SettingsLoader interface {
	LoadSettings(ctx context.Context, storeID uuid.UUID, settings any) error
}

// PollRequest creates or replaces a poll
type PollRequest struct {
	LanguageID        uuid.UUID  `json:"language_id" binding:"required"`
	Name              string     `json:"name" binding:"required,min=1,max=400"`
	SystemKeyword     string     `json:"system_keyword" binding:"max=200"`
	Published         bool       `json:"published"`
	ShowOnHomePage    bool       `json:"show_on_home_page"`
	AllowGuestsToVote bool       `json:"allow_guests_to_vote"`
	DisplayOrder      int        `json:"display_order"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	Answers           []string   `json:"answers" binding:"omitempty,dive,min=1,max=400"`
}

// PollAnswerResponse is one answer with its votes
type PollAnswerResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	NumberOfVotes int       `json:"number_of_votes"`
	Percent       float64   `json:"percent"`
}

// PollResponse is a poll with results
type PollResponse struct {
	ID                uuid.UUID            `json:"id"`
	Name              string               `json:"name"`
	SystemKeyword     string               `json:"system_keyword,omitempty"`
	ShowOnHomePage    bool                 `json:"show_on_home_page"`
	AllowGuestsToVote bool                 `json:"allow_guests_to_vote"`
	TotalVotes        int                  `json:"total_votes"`
	AlreadyVoted      bool                 `json:"already_voted"`
	Answers           []PollAnswerResponse `json:"answers"`
}

// ToPollResponse converts a poll and computes vote shares
func ToPollResponse(p *content.Poll) PollResponse {
	total := p.TotalVotes()
	resp := PollResponse{
		ID:                p.ID,
		Name:              p.Name,
		SystemKeyword:     p.SystemKeyword,
		ShowOnHomePage:    p.ShowOnHomePage,
		AllowGuestsToVote: p.AllowGuestsToVote,
		TotalVotes:        total,
		Answers:           make([]PollAnswerResponse, len(p.Answers)),
	}
	for i, a := range p.Answers {
		var pct float64
		if total > 0 {
			pct = float64(a.NumberOfVotes) * 100 / float64(total)
		}
		resp.Answers[i] = PollAnswerResponse{ID: a.ID, Name: a.Name, NumberOfVotes: a.NumberOfVotes, Percent: pct}
	}
	return resp
}

// VoteRequest picks an answer
type VoteRequest struct {
	AnswerID uuid.UUID `json:"answer_id" binding:"required"`
}

// NewsRequest creates or replaces a news item
type NewsRequest struct {
	LanguageID    uuid.UUID  `json:"language_id" binding:"required"`
	Title         string     `json:"title" binding:"required,min=1,max=400"`
	Short         string     `json:"short"`
	Full          string     `json:"full"`
	Published     bool       `json:"published"`
	AllowComments *bool      `json:"allow_comments"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

// BlogPostRequest creates or replaces a blog post
type BlogPostRequest struct {
	LanguageID    uuid.UUID  `json:"language_id" binding:"required"`
	Title         string     `json:"title" binding:"required,min=1,max=400"`
	Body          string     `json:"body"`
	Tags          []string   `json:"tags"`
	AllowComments *bool      `json:"allow_comments"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

// CommentRequest posts a comment on a news item or blog post
type CommentRequest struct {
	Title string `json:"title" binding:"max=400"`
	Text  string `json:"text" binding:"required,min=1,max=4000"`
}

// SubscriptionRequest subscribes or unsubscribes an address
type SubscriptionRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}
