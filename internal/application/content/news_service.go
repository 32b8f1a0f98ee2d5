package content

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/configuration"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// NewsService manages news items and their comments
type NewsService struct {
	repo      content.NewsRepository
	settings  SettingsLoader
	cache     cache.Manager
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewNewsService creates a new NewsService
func NewNewsService(repo content.NewsRepository, settings SettingsLoader, cacheManager cache.Manager, publisher shared.EventPublisher, logger *zap.Logger) *NewsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsService{repo: repo, settings: settings, cache: cacheManager, publisher: publisher, logger: logger, now: time.Now}
}

// CreateNews creates a news item
func (s *NewsService) CreateNews(ctx context.Context, storeID uuid.UUID, req NewsRequest) (*content.NewsItem, error) {
	item, err := content.NewNewsItem(storeID, req.LanguageID, req.Title, req.Short, req.Full)
	if err != nil {
		return nil, err
	}
	if req.AllowComments != nil {
		item.AllowComments = *req.AllowComments
	}
	if err := item.Publish(req.Published, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.changed(ctx, item)
	return item, nil
}

// UpdateNews replaces the fields of a news item
func (s *NewsService) UpdateNews(ctx context.Context, storeID, id uuid.UUID, req NewsRequest) (*content.NewsItem, error) {
	item, err := s.repo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	validated, err := content.NewNewsItem(storeID, req.LanguageID, req.Title, req.Short, req.Full)
	if err != nil {
		return nil, err
	}
	item.LanguageID = req.LanguageID
	item.Title = validated.Title
	item.Short = req.Short
	item.Full = req.Full
	if req.AllowComments != nil {
		item.AllowComments = *req.AllowComments
	}
	if err := item.Publish(req.Published, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.changed(ctx, item)
	return item, nil
}

// DeleteNews removes a news item with its comments
func (s *NewsService) DeleteNews(ctx context.Context, storeID, id uuid.UUID) error {
	item, err := s.repo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, storeID, id); err != nil {
		return err
	}
	item.Delete()
	s.changed(ctx, item)
	return nil
}

// GetNewsByID returns a news item. Hidden items are reported as not found
// unless showHidden is set.
func (s *NewsService) GetNewsByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*content.NewsItem, error) {
	item, err := s.repo.FindByIDForTenant(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if !showHidden && !item.IsVisibleAt(s.now()) {
		return nil, fmt.Errorf("%w: news %s", shared.ErrNotFound, id)
	}
	return item, nil
}

// GetAllNews lists news for administration, including hidden items
func (s *NewsService) GetAllNews(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, filter shared.Filter) (shared.Paginated[content.NewsItem], error) {
	filter = normalizeFilter(filter, 20)
	items, total, err := s.repo.FindAll(ctx, storeID, languageID, true, filter)
	if err != nil {
		return shared.Paginated[content.NewsItem]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

type newsPage struct {
	Items []content.NewsItem
	Total int64
}

// GetVisibleNews lists one cached page of visible news for the storefront.
// A zero page size falls back to NewsSettings.NewsArchivePageSize.
func (s *NewsService) GetVisibleNews(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, page, pageSize int) (shared.Paginated[content.NewsItem], error) {
	var empty shared.Paginated[content.NewsItem]
	ns, err := s.loadSettings(ctx, storeID)
	if err != nil {
		return empty, err
	}
	if !ns.Enabled {
		return empty, shared.NewDomainError("NEWS_DISABLED", "News are disabled")
	}
	if pageSize <= 0 {
		pageSize = ns.NewsArchivePageSize
	}
	filter := normalizeFilter(shared.Filter{Page: page, PageSize: pageSize, OrderBy: "start_date", OrderDir: "desc"}, ns.NewsArchivePageSize)

	key := cache.NewsKey.Create(storeID, optionalArg(languageID), filter.Page, filter.PageSize)
	cached, err := cache.Get(ctx, s.cache, key, func() (newsPage, error) {
		items, total, err := s.repo.FindAll(ctx, storeID, languageID, false, filter)
		return newsPage{Items: items, Total: total}, err
	})
	if err != nil {
		return empty, err
	}

	now := s.now()
	visible := make([]content.NewsItem, 0, len(cached.Items))
	for _, item := range cached.Items {
		if item.IsVisibleAt(now) {
			visible = append(visible, item)
		}
	}
	return shared.NewPaginated(visible, cached.Total, filter.Page, filter.PageSize), nil
}

// GetHomePageNews returns the first MainPageNewsCount visible items
func (s *NewsService) GetHomePageNews(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID) ([]content.NewsItem, error) {
	ns, err := s.loadSettings(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !ns.Enabled || ns.MainPageNewsCount <= 0 {
		return nil, nil
	}
	page, err := s.GetVisibleNews(ctx, storeID, languageID, 1, ns.MainPageNewsCount)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// AddComment posts a comment as the given customer. Guests need
// AllowNotRegisteredUsersToLeaveComments; approval follows
// NewsCommentsMustBeApproved.
func (s *NewsService) AddComment(ctx context.Context, storeID, newsID uuid.UUID, c *customer.Customer, req CommentRequest) (*content.NewsComment, error) {
	ns, err := s.loadSettings(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if c.IsGuest() && !ns.AllowNotRegisteredUsersToLeaveComments {
		return nil, shared.NewDomainError("GUEST_COMMENTS_NOT_ALLOWED", "Only registered customers can leave comments")
	}
	item, err := s.GetNewsByID(ctx, storeID, newsID, false)
	if err != nil {
		return nil, err
	}
	comment, err := item.AddComment(c.ID, req.Title, req.Text, !ns.NewsCommentsMustBeApproved)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveComment(ctx, comment); err != nil {
		return nil, err
	}
	s.changed(ctx, item)
	return comment, nil
}

func (s *NewsService) loadSettings(ctx context.Context, storeID uuid.UUID) (configuration.NewsSettings, error) {
	ns := configuration.DefaultNewsSettings()
	if s.settings == nil {
		return ns, nil
	}
	err := s.settings.LoadSettings(ctx, storeID, &ns)
	return ns, err
}

func (s *NewsService) changed(ctx context.Context, item *content.NewsItem) {
	err := shared.PublishPending(ctx, s.publisher, item)
	if err != nil {
		s.logger.Warn("Failed to publish news events", zap.Error(err))
	}
	if s.publisher == nil || err != nil {
		_ = s.cache.RemoveByPrefix(ctx, cache.PrefixNews)
	}
}

func normalizeFilter(f shared.Filter, defaultSize int) shared.Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = defaultSize
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	return f
}
