package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/content"
)

// NewsResponse is a news item; Full is left out of list responses
type NewsResponse struct {
	ID            uuid.UUID         `json:"id"`
	LanguageID    uuid.UUID         `json:"language_id"`
	Title         string            `json:"title"`
	Short         string            `json:"short"`
	Full          string            `json:"full,omitempty"`
	Published     bool              `json:"published"`
	AllowComments bool              `json:"allow_comments"`
	StartDate     *time.Time        `json:"start_date,omitempty"`
	EndDate       *time.Time        `json:"end_date,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Comments      []CommentResponse `json:"comments,omitempty"`
}

// BlogPostResponse is a blog post with its parsed tags
type BlogPostResponse struct {
	ID            uuid.UUID         `json:"id"`
	LanguageID    uuid.UUID         `json:"language_id"`
	Title         string            `json:"title"`
	Body          string            `json:"body,omitempty"`
	Tags          []string          `json:"tags"`
	AllowComments bool              `json:"allow_comments"`
	StartDate     *time.Time        `json:"start_date,omitempty"`
	EndDate       *time.Time        `json:"end_date,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Comments      []CommentResponse `json:"comments,omitempty"`
}

// CommentResponse is an approved comment, or any comment for admins
type CommentResponse struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Title      string    `json:"title,omitempty"`
	Text       string    `json:"text"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubscriptionResponse is a newsletter subscription
type SubscriptionResponse struct {
	ID        uuid.UUID `json:"id"`
	GUID      uuid.UUID `json:"guid"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toNewsResponse(n *content.NewsItem, details, admin bool) NewsResponse {
	resp := NewsResponse{
		ID:            n.ID,
		LanguageID:    n.LanguageID,
		Title:         n.Title,
		Short:         n.Short,
		Published:     n.Published,
		AllowComments: n.AllowComments,
		StartDate:     n.StartDate,
		EndDate:       n.EndDate,
		CreatedAt:     n.CreatedAt,
	}
	if details {
		resp.Full = n.Full
		for _, cm := range n.Comments {
			if admin || cm.IsApproved {
				resp.Comments = append(resp.Comments, toNewsCommentResponse(&cm))
			}
		}
	}
	return resp
}

func toNewsResponses(items []content.NewsItem, admin bool) []NewsResponse {
	out := make([]NewsResponse, len(items))
	for i := range items {
		out[i] = toNewsResponse(&items[i], false, admin)
	}
	return out
}

func toNewsCommentResponse(cm *content.NewsComment) CommentResponse {
	return CommentResponse{ID: cm.ID, CustomerID: cm.CustomerID, Title: cm.CommentTitle, Text: cm.CommentText, IsApproved: cm.IsApproved, CreatedAt: cm.CreatedAt}
}

func toBlogPostResponse(b *content.BlogPost, details, admin bool) BlogPostResponse {
	resp := BlogPostResponse{
		ID:            b.ID,
		LanguageID:    b.LanguageID,
		Title:         b.Title,
		Tags:          b.ParseTags(),
		AllowComments: b.AllowComments,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		CreatedAt:     b.CreatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if details {
		resp.Body = b.Body
		for _, cm := range b.Comments {
			if admin || cm.IsApproved {
				resp.Comments = append(resp.Comments, toBlogCommentResponse(&cm))
			}
		}
	}
	return resp
}

func toBlogPostResponses(posts []content.BlogPost, admin bool) []BlogPostResponse {
	out := make([]BlogPostResponse, len(posts))
	for i := range posts {
		out[i] = toBlogPostResponse(&posts[i], false, admin)
	}
	return out
}

func toBlogCommentResponse(cm *content.BlogComment) CommentResponse {
	return CommentResponse{ID: cm.ID, CustomerID: cm.CustomerID, Text: cm.CommentText, IsApproved: cm.IsApproved, CreatedAt: cm.CreatedAt}
}

func toSubscriptionResponse(s *content.NewsLetterSubscription) SubscriptionResponse {
	return SubscriptionResponse{ID: s.ID, GUID: s.NewsLetterSubscriptionGUID, Email: s.Email, Active: s.Active, CreatedAt: s.CreatedAt}
}

// ContentQuery narrows storefront content lists
type ContentQuery struct {
	LanguageID string `form:"language_id" binding:"omitempty,uuid"`
}

func (q ContentQuery) language() *uuid.UUID {
	if q.LanguageID == "" {
		return nil
	}
	id := uuid.MustParse(q.LanguageID)
	return &id
}

// PollQuery filters the storefront poll list
type PollQuery struct {
	ContentQuery
	SystemKeyword string `form:"system_keyword" binding:"max=200"`
	HomePageOnly  bool   `form:"home"`
}

// BlogQuery filters the storefront blog list
type BlogQuery struct {
	ContentQuery
	Tag  string `form:"tag" binding:"max=200"`
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

func (q BlogQuery) period() (from, to *time.Time) {
	if t, err := time.Parse(time.DateOnly, q.From); err == nil {
		from = &t
	}
	if t, err := time.Parse(time.DateOnly, q.To); err == nil {
		end := t.AddDate(0, 0, 1)
		to = &end
	}
	return from, to
}

// ActivateSubscriptionRequest confirms or cancels a subscription by guid
type ActivateSubscriptionRequest struct {
	Active bool `json:"active"`
}
