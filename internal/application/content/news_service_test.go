package content

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

func testNews(t *testing.T, title string, published bool) *content.NewsItem {
	t.Helper()
	n, err := content.NewNewsItem(storeID, languageID, title, "short", "full")
	require.NoError(t, err)
	require.NoError(t, n.Publish(published, nil, nil))
	n.ClearDomainEvents()
	return n
}

func TestNewsService_CreateNews(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNewsRepository)
	pub := &recordingPublisher{}
	svc := NewNewsService(repo, newFixedSettings(), cache.NewMemoryManager(), pub, nil)
	repo.On("Save", ctx, mock.AnythingOfType("*content.NewsItem")).Return(nil)

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err := svc.CreateNews(ctx, storeID, NewsRequest{LanguageID: languageID, Title: "Sale", StartDate: &start, EndDate: &end})
	assertDomainCode(t, err, "INVALID_PERIOD")

	noComments := false
	item, err := svc.CreateNews(ctx, storeID, NewsRequest{LanguageID: languageID, Title: "Sale", Published: true, AllowComments: &noComments})
	require.NoError(t, err)
	assert.False(t, item.AllowComments)
	assert.Contains(t, pub.types(), "news.inserted")
}

func TestNewsService_GetNewsByID_Hidden(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNewsRepository)
	svc := NewNewsService(repo, newFixedSettings(), cache.NewMemoryManager(), nil, nil)
	draft := testNews(t, "Draft", false)
	repo.On("FindByIDForTenant", ctx, storeID, draft.ID).Return(draft, nil)

	_, err := svc.GetNewsByID(ctx, storeID, draft.ID, false)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	got, err := svc.GetNewsByID(ctx, storeID, draft.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Draft", got.Title)
}

func TestNewsService_GetVisibleNews(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNewsRepository)
	settings := newFixedSettings()
	settings.news.NewsArchivePageSize = 2
	svc := NewNewsService(repo, settings, cache.NewMemoryManager(), nil, nil)

	live := testNews(t, "Live", true)
	ended := testNews(t, "Ended", true)
	past := time.Now().Add(-time.Minute)
	ended.EndDate = &past

	expected := shared.Filter{Page: 1, PageSize: 2, OrderBy: "start_date", OrderDir: "desc"}
	repo.On("FindAll", ctx, storeID, &languageID, false, expected).
		Return([]content.NewsItem{*live, *ended}, int64(3), nil).Once()

	page, err := svc.GetVisibleNews(ctx, storeID, &languageID, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, live.ID, page.Items[0].ID)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	_, err = svc.GetVisibleNews(ctx, storeID, &languageID, 1, 2)
	require.NoError(t, err)
	repo.AssertExpectations(t)

	settings.news.Enabled = false
	_, err = svc.GetVisibleNews(ctx, storeID, &languageID, 1, 2)
	assertDomainCode(t, err, "NEWS_DISABLED")
}

func TestNewsService_AddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("guest comments are refused by default", func(t *testing.T) {
		repo := new(MockNewsRepository)
		svc := NewNewsService(repo, newFixedSettings(), cache.NewMemoryManager(), nil, nil)

		_, err := svc.AddComment(ctx, storeID, testNews(t, "x", true).ID, guestCustomer(), CommentRequest{Text: "hi"})

		assertDomainCode(t, err, "GUEST_COMMENTS_NOT_ALLOWED")
		repo.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("approval follows settings", func(t *testing.T) {
		repo := new(MockNewsRepository)
		pub := &recordingPublisher{}
		settings := newFixedSettings()
		settings.news.AllowNotRegisteredUsersToLeaveComments = true
		settings.news.NewsCommentsMustBeApproved = true
		svc := NewNewsService(repo, settings, cache.NewMemoryManager(), pub, nil)
		item := testNews(t, "Launch", true)
		repo.On("FindByIDForTenant", ctx, storeID, item.ID).Return(item, nil)
		repo.On("SaveComment", ctx, mock.AnythingOfType("*content.NewsComment")).Return(nil)

		comment, err := svc.AddComment(ctx, storeID, item.ID, guestCustomer(), CommentRequest{Title: "Nice", Text: " great news "})

		require.NoError(t, err)
		assert.False(t, comment.IsApproved)
		assert.Equal(t, "great news", comment.CommentText)
		assert.Empty(t, item.ApprovedComments())
		assert.Equal(t, []string{"news_comment.inserted"}, pub.types())
	})

	t.Run("comments disabled on item", func(t *testing.T) {
		repo := new(MockNewsRepository)
		svc := NewNewsService(repo, newFixedSettings(), cache.NewMemoryManager(), nil, nil)
		item := testNews(t, "Closed", true)
		item.AllowComments = false
		repo.On("FindByIDForTenant", ctx, storeID, item.ID).Return(item, nil)

		_, err := svc.AddComment(ctx, storeID, item.ID, registeredCustomer(), CommentRequest{Text: "hi"})

		assertDomainCode(t, err, "COMMENTS_DISABLED")
	})
}
