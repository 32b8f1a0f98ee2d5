package content

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	EntityNews        = "news"
	EntityNewsComment = "news_comment"
)

// NewsItem is a dated announcement
type NewsItem struct {
	shared.TenantAggregateRoot
	LanguageID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title         string    `gorm:"type:varchar(400);not null"`
	Short         string    `gorm:"type:text"`
	Full          string    `gorm:"type:text"`
	Published     bool      `gorm:"not null;default:false"`
	AllowComments bool      `gorm:"not null;default:true"`
	StartDate     *time.Time
	EndDate       *time.Time
	Comments      []NewsComment `gorm:"foreignKey:NewsItemID"`
}

// TableName returns the table name for GORM
func (NewsItem) TableName() string {
	return "news"
}

// NewsComment is a visitor comment on a news item
type NewsComment struct {
	shared.BaseEntity
	NewsItemID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CommentTitle string    `gorm:"type:varchar(400)"`
	CommentText  string    `gorm:"type:text;not null"`
	IsApproved   bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (NewsComment) TableName() string {
	return "news_comments"
}

// NewNewsItem creates an unpublished news item
func NewNewsItem(tenantID, languageID uuid.UUID, title, short, full string) (*NewsItem, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 400 {
		return nil, shared.NewDomainError("INVALID_TITLE", "News title must be 1-400 characters")
	}
	n := &NewsItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		LanguageID:          languageID,
		Title:               title,
		Short:               short,
		Full:                full,
		AllowComments:       true,
	}
	n.AddDomainEvent(shared.NewEntityEvent(EntityNews, shared.EntityInserted, n.ID, tenantID))
	return n, nil
}

// Publish sets the published flag and the visibility window
func (n *NewsItem) Publish(published bool, start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewDomainError("INVALID_PERIOD", "End date must be after the start date")
	}
	n.Published = published
	n.StartDate = start
	n.EndDate = end
	n.changed()
	return nil
}

// IsVisibleAt reports whether the item is published and inside its window
func (n *NewsItem) IsVisibleAt(t time.Time) bool {
	return visibleAt(n.Published, n.StartDate, n.EndDate, t)
}

// AddComment attaches a comment; approved tells whether it is shown immediately
func (n *NewsItem) AddComment(customerID uuid.UUID, title, text string, approved bool) (*NewsComment, error) {
	if !n.AllowComments {
		return nil, shared.NewDomainError("COMMENTS_DISABLED", "Comments are not allowed")
	}
	if strings.TrimSpace(text) == "" {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment text is required")
	}
	c := NewsComment{
		BaseEntity:   shared.NewBaseEntity(),
		NewsItemID:   n.ID,
		CustomerID:   customerID,
		CommentTitle: strings.TrimSpace(title),
		CommentText:  strings.TrimSpace(text),
		IsApproved:   approved,
	}
	n.Comments = append(n.Comments, c)
	n.AddDomainEvent(shared.NewEntityEvent(EntityNewsComment, shared.EntityInserted, c.ID, n.TenantID).
		WithRef("news_id", n.ID))
	return &n.Comments[len(n.Comments)-1], nil
}

// ApprovedComments returns comments visible to the storefront
func (n *NewsItem) ApprovedComments() []NewsComment {
	var out []NewsComment
	for _, c := range n.Comments {
		if c.IsApproved {
			out = append(out, c)
		}
	}
	return out
}

// Delete removes the news item
func (n *NewsItem) Delete() {
	n.AddDomainEvent(shared.NewEntityEvent(EntityNews, shared.EntityDeleted, n.ID, n.TenantID))
}

func (n *NewsItem) changed() {
	n.UpdatedAt = time.Now()
	n.IncrementVersion()
	n.AddDomainEvent(shared.NewEntityEvent(EntityNews, shared.EntityUpdated, n.ID, n.TenantID))
}

func visibleAt(published bool, start, end *time.Time, t time.Time) bool {
	if !published {
		return false
	}
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}

// NewsRepository persists news items and comments
type NewsRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*NewsItem, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, languageID *uuid.UUID, showHidden bool, filter shared.Filter) ([]NewsItem, int64, error)
	Save(ctx context.Context, n *NewsItem) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	SaveComment(ctx context.Context, c *NewsComment) error
}
