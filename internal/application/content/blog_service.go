package content

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// BlogService manages blog posts, tags and comments
type BlogService struct {
	repo      content.BlogRepository
	settings  SettingsLoader
	cache     cache.Manager
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewBlogService creates a new BlogService
func NewBlogService(repo content.BlogRepository, settings SettingsLoader, cacheManager cache.Manager, publisher shared.EventPublisher, logger *zap.Logger) *BlogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlogService{repo: repo, settings: settings, cache: cacheManager, publisher: publisher, logger: logger, now: time.Now}
}

// CreateBlogPost creates a post
func (s *BlogService) CreateBlogPost(ctx context.Context, storeID uuid.UUID, req BlogPostRequest) (*content.BlogPost, error) {
	post, err := content.NewBlogPost(storeID, req.LanguageID, req.Title, req.Body)
	if err != nil {
		return nil, err
	}
	if err := s.apply(post, req); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, post); err != nil {
		return nil, err
	}
	s.changed(ctx, post)
	return post, nil
}

// UpdateBlogPost replaces the fields of a post
func (s *BlogService) UpdateBlogPost(ctx context.Context, storeID, id uuid.UUID, req BlogPostRequest) (*content.BlogPost, error) {
	post, err := s.repo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	validated, err := content.NewBlogPost(storeID, req.LanguageID, req.Title, req.Body)
	if err != nil {
		return nil, err
	}
	post.LanguageID = req.LanguageID
	post.Title = validated.Title
	post.Body = req.Body
	if err := s.apply(post, req); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, post); err != nil {
		return nil, err
	}
	s.changed(ctx, post)
	return post, nil
}

func (s *BlogService) apply(post *content.BlogPost, req BlogPostRequest) error {
	if req.AllowComments != nil {
		post.AllowComments = *req.AllowComments
	}
	post.SetTags(req.Tags)
	return post.SetPeriod(req.StartDate, req.EndDate)
}

// DeleteBlogPost removes a post with its comments
func (s *BlogService) DeleteBlogPost(ctx context.Context, storeID, id uuid.UUID) error {
	post, err := s.repo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, storeID, id); err != nil {
		return err
	}
	post.Delete()
	s.changed(ctx, post)
	return nil
}

// GetBlogPostByID returns a post. Posts outside their window are reported
// as not found unless showHidden is set.
func (s *BlogService) GetBlogPostByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*content.BlogPost, error) {
	post, err := s.repo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if !showHidden && !post.IsVisibleAt(s.now()) {
		return nil, fmt.Errorf("%w: blog post %s", shared.ErrNotFound, id)
	}
	return post, nil
}

// GetAllBlogPosts lists posts created within [from, to], newest first
func (s *BlogService) GetAllBlogPosts(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, from, to *time.Time, showHidden bool) ([]content.BlogPost, error) {
	posts, err := s.repo.FindAll(ctx, storeID, languageID, from, to, showHidden)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

// GetBlogPostsByTag lists visible posts carrying tag, ignoring case
func (s *BlogService) GetBlogPostsByTag(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, tag string) ([]content.BlogPost, error) {
	posts, err := s.GetAllBlogPosts(ctx, storeID, languageID, nil, nil, false)
	if err != nil {
		return nil, err
	}
	tagged := make([]content.BlogPost, 0, len(posts))
	for _, p := range posts {
		if p.HasTag(tag) {
			tagged = append(tagged, p)
		}
	}
	return tagged, nil
}

// GetAllBlogPostTags counts tags over visible posts, cached per store and
// language. The list is cut to BlogSettings.NumberOfTags by popularity.
func (s *BlogService) GetAllBlogPostTags(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID) ([]content.BlogPostTag, error) {
	bs, err := s.loadSettings(ctx, storeID)
	if err != nil {
		return nil, err
	}
	key := cache.BlogTagsKey.Create(storeID, optionalArg(languageID))
	tags, err := cache.Get(ctx, s.cache, key, func() ([]content.BlogPostTag, error) {
		posts, err := s.repo.FindAll(ctx, storeID, languageID, nil, nil, false)
		if err != nil {
			return nil, err
		}
		return content.CountTags(posts), nil
	})
	if err != nil {
		return nil, err
	}
	if bs.NumberOfTags <= 0 || len(tags) <= bs.NumberOfTags {
		return tags, nil
	}

	top := append([]content.BlogPostTag(nil), tags...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].BlogPostCount > top[j].BlogPostCount })
	top = top[:bs.NumberOfTags]
	sort.SliceStable(top, func(i, j int) bool { return strings.ToLower(top[i].Name) < strings.ToLower(top[j].Name) })
	return top, nil
}

// AddComment posts a comment as the given customer
func (s *BlogService) AddComment(ctx context.Context, storeID, postID uuid.UUID, c *customer.Customer, req CommentRequest) (*content.BlogComment, error) {
	bs, err := s.loadSettings(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !bs.Enabled {
		return nil, shared.NewDomainError("BLOG_DISABLED", "The blog is disabled")
	}
	if c.IsGuest() && !bs.AllowNotRegisteredUsersToLeaveComments {
		return nil, shared.NewDomainError("GUEST_COMMENTS_NOT_ALLOWED", "Only registered customers can leave comments")
	}
	post, err := s.GetBlogPostByID(ctx, storeID, postID, false)
	if err != nil {
		return nil, err
	}
	comment, err := post.AddComment(c.ID, req.Text, !bs.BlogCommentsMustBeApproved)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveComment(ctx, comment); err != nil {
		return nil, err
	}
	s.changed(ctx, post)
	return comment, nil
}

func (s *BlogService) loadSettings(ctx context.Context, storeID uuid.UUID) (configuration.BlogSettings, error) {
	bs := configuration.DefaultBlogSettings()
	if s.settings == nil {
		return bs, nil
	}
	err := s.settings.LoadSettings(ctx, storeID, &bs)
	return bs, err
}

func (s *BlogService) changed(ctx context.Context, post *content.BlogPost) {
	err := shared.PublishPending(ctx, s.publisher, post)
	if err != nil {
		s.logger.Warn("Failed to publish blog events", zap.Error(err))
	}
	if s.publisher == nil || err != nil {
		_ = s.cache.RemoveByPrefix(ctx, cache.PrefixBlog)
	}
}
