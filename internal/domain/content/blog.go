package content

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

const (
	EntityBlog        = "blog"
	EntityBlogComment = "blog_comment"
)

// BlogPost is a blog entry with comma-separated tags
type BlogPost struct {
	shared.TenantAggregateRoot
	LanguageID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title         string    `gorm:"type:varchar(400);not null"`
	Body          string    `gorm:"type:text"`
	AllowComments bool      `gorm:"not null;default:true"`
	Tags          string    `gorm:"type:text"`
	StartDate     *time.Time
	EndDate       *time.Time
	Comments      []BlogComment `gorm:"foreignKey:BlogPostID"`
}

// TableName returns the table name for GORM
func (BlogPost) TableName() string {
	return "blog_posts"
}

// BlogComment is a visitor comment on a post
type BlogComment struct {
	shared.BaseEntity
	BlogPostID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CommentText string    `gorm:"type:text;not null"`
	IsApproved  bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (BlogComment) TableName() string {
	return "blog_comments"
}

// BlogPostTag is a tag with the number of visible posts using it
type BlogPostTag struct {
	Name          string `json:"name"`
	BlogPostCount int    `json:"blog_post_count"`
}

// NewBlogPost creates a blog post
func NewBlogPost(tenantID, languageID uuid.UUID, title, body string) (*BlogPost, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 400 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Blog title must be 1-400 characters")
	}
	b := &BlogPost{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		LanguageID:          languageID,
		Title:               title,
		Body:                body,
		AllowComments:       true,
	}
	b.AddDomainEvent(shared.NewEntityEvent(EntityBlog, shared.EntityInserted, b.ID, tenantID))
	return b, nil
}

// SetTags replaces the tag list; blanks and duplicates are dropped
func (b *BlogPost) SetTags(tags []string) {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	b.Tags = strings.Join(out, ",")
	b.changed()
}

// ParseTags returns the trimmed tag list
func (b *BlogPost) ParseTags() []string {
	var tags []string
	for _, t := range strings.Split(b.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// HasTag reports whether the post carries the tag, ignoring case
func (b *BlogPost) HasTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range b.ParseTags() {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// SetPeriod sets the visibility window
func (b *BlogPost) SetPeriod(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewDomainError("INVALID_PERIOD", "End date must be after the start date")
	}
	b.StartDate = start
	b.EndDate = end
	b.changed()
	return nil
}

// IsVisibleAt reports whether the post is inside its window
func (b *BlogPost) IsVisibleAt(t time.Time) bool {
	return visibleAt(true, b.StartDate, b.EndDate, t)
}

// AddComment attaches a comment
func (b *BlogPost) AddComment(customerID uuid.UUID, text string, approved bool) (*BlogComment, error) {
	if !b.AllowComments {
		return nil, shared.NewDomainError("COMMENTS_DISABLED", "Comments are not allowed")
	}
	if strings.TrimSpace(text) == "" {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment text is required")
	}
	c := BlogComment{
		BaseEntity:  shared.NewBaseEntity(),
		BlogPostID:  b.ID,
		CustomerID:  customerID,
		CommentText: strings.TrimSpace(text),
		IsApproved:  approved,
	}
	b.Comments = append(b.Comments, c)
	b.AddDomainEvent(shared.NewEntityEvent(EntityBlogComment, shared.EntityInserted, c.ID, b.TenantID).
		WithRef("blog_id", b.ID))
	return &b.Comments[len(b.Comments)-1], nil
}

// Delete removes the post
func (b *BlogPost) Delete() {
	b.AddDomainEvent(shared.NewEntityEvent(EntityBlog, shared.EntityDeleted, b.ID, b.TenantID))
}

func (b *BlogPost) changed() {
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	b.AddDomainEvent(shared.NewEntityEvent(EntityBlog, shared.EntityUpdated, b.ID, b.TenantID))
}

// CountTags aggregates tags over posts, matching case-insensitively.
// The first spelling seen wins. Results are sorted by name.
func CountTags(posts []BlogPost) []BlogPostTag {
	index := make(map[string]int)
	var tags []BlogPostTag
	for _, p := range posts {
		for _, t := range p.ParseTags() {
			key := strings.ToLower(t)
			if i, ok := index[key]; ok {
				tags[i].BlogPostCount++
				continue
			}
			index[key] = len(tags)
			tags = append(tags, BlogPostTag{Name: t, BlogPostCount: 1})
		}
	}
	sort.Slice(tags, func(i, j int) bool {
		return strings.ToLower(tags[i].Name) < strings.ToLower(tags[j].Name)
	})
	return tags
}

// BlogRepository persists blog posts and comments
type BlogRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BlogPost, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, languageID *uuid.UUID, from, to *time.Time, showHidden bool) ([]BlogPost, error)
	Save(ctx context.Context, b *BlogPost) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	SaveComment(ctx context.Context, c *BlogComment) error
}
