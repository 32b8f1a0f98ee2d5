package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/shared"
)

// inWindow keeps rows whose optional start/end dates include now
func inWindow(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Where("(start_date IS NULL OR start_date <= ?)", now).
			Where("(end_date IS NULL OR end_date >= ?)", now)
	}
}

// GormPollRepository implements content.PollRepository using GORM
type GormPollRepository struct {
	db *gorm.DB
}

// NewGormPollRepository creates a new GormPollRepository
func NewGormPollRepository(db *gorm.DB) *GormPollRepository {
	return &GormPollRepository{db: db}
}

func withAnswers(db *gorm.DB) *gorm.DB {
	return db.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC, name ASC")
	})
}

// FindByIDForTenant loads a poll with its answers
func (r *GormPollRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*content.Poll, error) {
	var p content.Poll
	if err := conn(ctx, r.db).Scopes(withAnswers).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error; err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

// FindPolls lists polls; hidden ones are unpublished or outside their window
func (r *GormPollRepository) FindPolls(ctx context.Context, tenantID uuid.UUID, languageID *uuid.UUID, showOnHomePage *bool, systemKeyword string, showHidden bool) ([]content.Poll, error) {
	query := conn(ctx, r.db).Scopes(withAnswers).Where("tenant_id = ?", tenantID)
	if !showHidden {
		query = query.Where("published = ?", true).Scopes(inWindow(time.Now()))
	}
	if languageID != nil {
		query = query.Where("language_id = ?", *languageID)
	}
	if showOnHomePage != nil {
		query = query.Where("show_on_home_page = ?", *showOnHomePage)
	}
	if kw := strings.TrimSpace(systemKeyword); kw != "" {
		query = query.Where("system_keyword = ?", kw)
	}

	var polls []content.Poll
	if err := query.Order("display_order ASC, name ASC").Find(&polls).Error; err != nil {
		return nil, err
	}
	return polls, nil
}

// Save writes the poll and its answers
func (r *GormPollRepository) Save(ctx context.Context, p *content.Poll) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Answers").Save(p).Error; err != nil {
			return err
		}
		for i := range p.Answers {
			p.Answers[i].PollID = p.ID
			if err := tx.Save(&p.Answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a poll with its answers and voting records
func (r *GormPollRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", id).Delete(&content.PollVotingRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", id).Delete(&content.PollAnswer{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&content.Poll{}))
	})
}

// AlreadyVoted reports whether the customer voted in the poll
func (r *GormPollRepository) AlreadyVoted(ctx context.Context, pollID, customerID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&content.PollVotingRecord{}).
		Where("poll_id = ? AND customer_id = ?", pollID, customerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordVote stores the voting record and bumps the answer counter in one transaction.
// The unique (poll, customer) index rejects a second vote raced past AlreadyVoted.
func (r *GormPollRepository) RecordVote(ctx context.Context, record *content.PollVotingRecord) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique") {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return requireAffected(tx.Model(&content.PollAnswer{}).
			Where("id = ? AND poll_id = ?", record.PollAnswerID, record.PollID).
			UpdateColumn("number_of_votes", gorm.Expr("number_of_votes + ?", 1)))
	})
}

// GormNewsRepository implements content.NewsRepository using GORM
type GormNewsRepository struct {
	db *gorm.DB
}

// NewGormNewsRepository creates a new GormNewsRepository
func NewGormNewsRepository(db *gorm.DB) *GormNewsRepository {
	return &GormNewsRepository{db: db}
}

// FindByIDForTenant loads a news item with its comments
func (r *GormNewsRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*content.NewsItem, error) {
	var n content.NewsItem
	if err := conn(ctx, r.db).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&n).Error; err != nil {
		return nil, translateError(err)
	}
	return &n, nil
}

// FindAll lists one page of news, newest first, and the total count
func (r *GormNewsRepository) FindAll(ctx context.Context, tenantID uuid.UUID, languageID *uuid.UUID, showHidden bool, filter shared.Filter) ([]content.NewsItem, int64, error) {
	query := conn(ctx, r.db).Model(&content.NewsItem{}).Where("tenant_id = ?", tenantID)
	if !showHidden {
		query = query.Where("published = ?", true).Scopes(inWindow(time.Now()))
	}
	if languageID != nil {
		query = query.Where("language_id = ?", *languageID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE ? ESCAPE '\\'", likePattern(filter.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []content.NewsItem
	if err := query.
		Scopes(orderBy(filter, NewsSortFields, "created_at"), paginate(filter)).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Save creates or updates a news item without touching comments
func (r *GormNewsRepository) Save(ctx context.Context, n *content.NewsItem) error {
	return conn(ctx, r.db).Omit("Comments").Save(n).Error
}

// Delete removes a news item and its comments
func (r *GormNewsRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("news_item_id = ?", id).Delete(&content.NewsComment{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&content.NewsItem{}))
	})
}

// SaveComment creates or updates a news comment
func (r *GormNewsRepository) SaveComment(ctx context.Context, c *content.NewsComment) error {
	return conn(ctx, r.db).Save(c).Error
}

// GormBlogRepository implements content.BlogRepository using GORM
type GormBlogRepository struct {
	db *gorm.DB
}

// NewGormBlogRepository creates a new GormBlogRepository
func NewGormBlogRepository(db *gorm.DB) *GormBlogRepository {
	return &GormBlogRepository{db: db}
}

// FindByIDForTenant loads a blog post with its comments
func (r *GormBlogRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*content.BlogPost, error) {
	var b content.BlogPost
	if err := conn(ctx, r.db).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&b).Error; err != nil {
		return nil, translateError(err)
	}
	return &b, nil
}

// FindAll lists posts newest first, optionally created inside [from, to]
func (r *GormBlogRepository) FindAll(ctx context.Context, tenantID uuid.UUID, languageID *uuid.UUID, from, to *time.Time, showHidden bool) ([]content.BlogPost, error) {
	query := conn(ctx, r.db).Where("tenant_id = ?", tenantID)
	if !showHidden {
		query = query.Scopes(inWindow(time.Now()))
	}
	if languageID != nil {
		query = query.Where("language_id = ?", *languageID)
	}
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var posts []content.BlogPost
	if err := query.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Save creates or updates a blog post without touching comments
func (r *GormBlogRepository) Save(ctx context.Context, b *content.BlogPost) error {
	return conn(ctx, r.db).Omit("Comments").Save(b).Error
}

// Delete removes a blog post and its comments
func (r *GormBlogRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_post_id = ?", id).Delete(&content.BlogComment{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&content.BlogPost{}))
	})
}

// SaveComment creates or updates a blog comment
func (r *GormBlogRepository) SaveComment(ctx context.Context, c *content.BlogComment) error {
	return conn(ctx, r.db).Save(c).Error
}

// GormNewsLetterSubscriptionRepository implements content.NewsLetterSubscriptionRepository using GORM
type GormNewsLetterSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormNewsLetterSubscriptionRepository creates a new GormNewsLetterSubscriptionRepository
func NewGormNewsLetterSubscriptionRepository(db *gorm.DB) *GormNewsLetterSubscriptionRepository {
	return &GormNewsLetterSubscriptionRepository{db: db}
}

// FindByID finds a subscription by ID
func (r *GormNewsLetterSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.NewsLetterSubscription, error) {
	var s content.NewsLetterSubscription
	if err := conn(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &s, nil
}

// FindByGUID finds a subscription by the guid used in (un)subscribe links
func (r *GormNewsLetterSubscriptionRepository) FindByGUID(ctx context.Context, guid uuid.UUID) (*content.NewsLetterSubscription, error) {
	var s content.NewsLetterSubscription
	if err := conn(ctx, r.db).Where("news_letter_subscription_guid = ?", guid).First(&s).Error; err != nil {
		return nil, translateError(err)
	}
	return &s, nil
}

// FindByEmail finds a store's subscription for an email address
func (r *GormNewsLetterSubscriptionRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*content.NewsLetterSubscription, error) {
	var s content.NewsLetterSubscription
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND email = ?", tenantID, strings.ToLower(strings.TrimSpace(email))).
		First(&s).Error; err != nil {
		return nil, translateError(err)
	}
	return &s, nil
}

// FindAll lists one page of subscriptions and the total count
func (r *GormNewsLetterSubscriptionRepository) FindAll(ctx context.Context, tenantID uuid.UUID, email string, showHidden bool, filter shared.Filter) ([]content.NewsLetterSubscription, int64, error) {
	query := conn(ctx, r.db).Model(&content.NewsLetterSubscription{}).Where("tenant_id = ?", tenantID)
	if !showHidden {
		query = query.Where("active = ?", true)
	}
	if email = strings.TrimSpace(email); email != "" {
		query = query.Where("LOWER(email) LIKE ? ESCAPE '\\'", likePattern(email))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []content.NewsLetterSubscription
	if err := query.
		Scopes(orderBy(filter, SubscriptionSortFields, "email"), paginate(filter)).
		Find(&subs).Error; err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// Save creates or updates a subscription
func (r *GormNewsLetterSubscriptionRepository) Save(ctx context.Context, s *content.NewsLetterSubscription) error {
	return conn(ctx, r.db).Save(s).Error
}

// Delete removes a subscription
func (r *GormNewsLetterSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(conn(ctx, r.db).Delete(&content.NewsLetterSubscription{}, "id = ?", id))
}

var (
	_ content.PollRepository                   = (*GormPollRepository)(nil)
	_ content.NewsRepository                   = (*GormNewsRepository)(nil)
	_ content.BlogRepository                   = (*GormBlogRepository)(nil)
	_ content.NewsLetterSubscriptionRepository = (*GormNewsLetterSubscriptionRepository)(nil)
)
