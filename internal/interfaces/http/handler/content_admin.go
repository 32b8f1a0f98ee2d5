package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	contentapp "github.com/storefront/backend/internal/application/content"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/shared"
)

// PollManager manages polls from the back office
type PollManager interface {
	GetPollByID(ctx context.Context, storeID, id uuid.UUID) (*content.Poll, error)
	GetAllPolls(ctx context.Context, storeID uuid.UUID) ([]content.Poll, error)
	CreatePoll(ctx context.Context, storeID uuid.UUID, req contentapp.PollRequest) (*content.Poll, error)
	UpdatePoll(ctx context.Context, storeID, id uuid.UUID, req contentapp.PollRequest) (*content.Poll, error)
	DeletePoll(ctx context.Context, storeID, id uuid.UUID) error
}

// NewsManager manages news items from the back office
type NewsManager interface {
	GetNewsByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*content.NewsItem, error)
	GetAllNews(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, filter shared.Filter) (shared.Paginated[content.NewsItem], error)
	CreateNews(ctx context.Context, storeID uuid.UUID, req contentapp.NewsRequest) (*content.NewsItem, error)
	UpdateNews(ctx context.Context, storeID, id uuid.UUID, req contentapp.NewsRequest) (*content.NewsItem, error)
	DeleteNews(ctx context.Context, storeID, id uuid.UUID) error
}

// BlogManager manages blog posts from the back office
type BlogManager interface {
	GetBlogPostByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*content.BlogPost, error)
	GetAllBlogPosts(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, from, to *time.Time, showHidden bool) ([]content.BlogPost, error)
	CreateBlogPost(ctx context.Context, storeID uuid.UUID, req contentapp.BlogPostRequest) (*content.BlogPost, error)
	UpdateBlogPost(ctx context.Context, storeID, id uuid.UUID, req contentapp.BlogPostRequest) (*content.BlogPost, error)
	DeleteBlogPost(ctx context.Context, storeID, id uuid.UUID) error
}

// SubscriptionLister lists newsletter subscriptions
type SubscriptionLister interface {
	GetAllSubscriptions(ctx context.Context, storeID uuid.UUID, email string, showHidden bool, filter shared.Filter) (shared.Paginated[content.NewsLetterSubscription], error)
}

// ContentAdminHandler manages polls, news, blog posts and subscriptions
type ContentAdminHandler struct {
	BaseHandler
	polls         PollManager
	news          NewsManager
	blog          BlogManager
	subscriptions SubscriptionLister
}

// NewContentAdminHandler creates a new ContentAdminHandler
func NewContentAdminHandler(polls PollManager, news NewsManager, blog BlogManager, subscriptions SubscriptionLister) *ContentAdminHandler {
	return &ContentAdminHandler{polls: polls, news: news, blog: blog, subscriptions: subscriptions}
}

// ListPolls godoc
// @Summary      List all polls
// @Tags         admin-content
// @Produce      json
// @Success      200 {object} dto.Response{data=[]contentapp.PollResponse}
// @Security     BearerAuth
// @Router       /admin/polls [get]
func (h *ContentAdminHandler) ListPolls(c *gin.Context) {
	polls, err := h.polls.GetAllPolls(c.Request.Context(), storeID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]contentapp.PollResponse, len(polls))
	for i := range polls {
		out[i] = contentapp.ToPollResponse(&polls[i])
	}
	h.Success(c, out)
}

// GetPoll godoc
// @Summary      Get a poll
// @Tags         admin-content
// @Produce      json
// @Param        id path string true "Poll ID"
// @Success      200 {object} dto.Response{data=contentapp.PollResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/polls/{id} [get]
func (h *ContentAdminHandler) GetPoll(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	poll, err := h.polls.GetPollByID(c.Request.Context(), storeID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contentapp.ToPollResponse(poll))
}

// CreatePoll godoc
// @Summary      Create a poll
// @Tags         admin-content
// @Accept       json
// @Produce      json
// @Param        request body contentapp.PollRequest true "Poll"
// @Success      201 {object} dto.Response{data=contentapp.PollResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/polls [post]
func (h *ContentAdminHandler) CreatePoll(c *gin.Context) {
	var req contentapp.PollRequest
	if !h.bindJSON(c, &req) {
		return
	}
	poll, err := h.polls.CreatePoll(c.Request.Context(), storeID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contentapp.ToPollResponse(poll))
}

// UpdatePoll godoc
// @Summary      Update a poll
// @Tags         admin-content
// @Accept       json
// @Produce      json
// @Param        id path string true "Poll ID"
// @Param        request body contentapp.PollRequest true "Poll"
// @Success      200 {object} dto.Response{data=contentapp.PollResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/polls/{id} [put]
func (h *ContentAdminHandler) UpdatePoll(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req contentapp.PollRequest
	if !h.bindJSON(c, &req) {
		return
	}
	poll, err := h.polls.UpdatePoll(c.Request.Context(), storeID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contentapp.ToPollResponse(poll))
}

// DeletePoll godoc
// @Summary      Delete a poll
// @Tags         admin-content
// @Param        id path string true "Poll ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/polls/{id} [delete]
func (h *ContentAdminHandler) DeletePoll(c *gin.Context) {
	h.deleteByID(c, h.polls.DeletePoll)
}

// ListNews godoc
// @Summary      List news items
// @Description  Includes unpublished and expired items
// @Tags         admin-content
// @Produce      json
// @Param        language_id query string false "Language ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]NewsResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/news [get]
func (h *ContentAdminHandler) ListNews(c *gin.Context) {
	var q ContentQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.news.GetAllNews(c.Request.Context(), storeID(c), q.language(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, shared.NewPaginated(toNewsResponses(page.Items, true), page.Total, page.Page, page.PageSize))
}

// GetNews godoc
// @Summary      Get a news item with all comments
// @Tags         admin-content
// @Produce      json
// @Param        id path string true "News ID"
// @Success      200 {object} dto.Response{data=NewsResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/news/{id} [get]
func (h *ContentAdminHandler) GetNews(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.news.GetNewsByID(c.Request.Context(), storeID(c), id, true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toNewsResponse(item, true, true))
}

// CreateNews godoc
// @Summary      Create a news item
// @Tags         admin-content
// @Accept       json
// @Produce      json
// @Param        request body contentapp.NewsRequest true "News item"
// @Success      201 {object} dto.Response{data=NewsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/news [post]
func (h *ContentAdminHandler) CreateNews(c *gin.Context) {
	var req contentapp.NewsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.news.CreateNews(c.Request.Context(), storeID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toNewsResponse(item, true, true))
}

// UpdateNews godoc
// @Summary      Update a news item
// @Tags         admin-content
// @Accept       json
// @Produce      json
// @Param        id path string true "News ID"
// @Param        request body contentapp.NewsRequest true "News item"
// @Success      200 {object} dto.Response{data=NewsResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/news/{id} [put]
func (h *ContentAdminHandler) UpdateNews(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req contentapp.NewsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.news.UpdateNews(c.Request.Context(), storeID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toNewsResponse(item, true, true))
}

// DeleteNews godoc
// @Summary      Delete a news item
// @Tags         admin-content
// @Param        id path string true "News ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/news/{id} [delete]
func (h *ContentAdminHandler) DeleteNews(c *gin.Context) {
	h.deleteByID(c, h.news.DeleteNews)
}

// ListBlogPosts godoc
// @Summary      List blog posts
// @Tags         admin-content
// @Produce      json
// @Param        language_id query string false "Language ID"
// @Param        from query string false "Created on or after (YYYY-MM-DD)"
// @Param        to query string false "Created on or before (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]BlogPostResponse}
// @Security     BearerAuth
// @Router       /admin/blog [get]
func (h *ContentAdminHandler) ListBlogPosts(c *gin.Context) {
	var q BlogQuery
	if !h.bindQuery(c, &q) {
		return
	}
	from, to := q.period()
	posts, err := h.blog.GetAllBlogPosts(c.Request.Context(), storeID(c), q.language(), from, to, true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBlogPostResponses(posts, true))
}

// GetBlogPost godoc
// @Summary      Get a blog post with all comments
// @Tags         admin-content
// @Produce      json
// @Param        id path string true "Blog post ID"
// @Success      200 {object} dto.Response{data=BlogPostResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/blog/{id} [get]
func (h *ContentAdminHandler) GetBlogPost(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	post, err := h.blog.GetBlogPostByID(c.Request.Context(), storeID(c), id, true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBlogPostResponse(post, true, true))
}

// CreateBlogPost godoc
// @Summary      Create a blog post
// @Tags         admin-content
// @Accept       json
// @Produce      json
// @Param        request body contentapp.BlogPostRequest true "Blog post"
// @Success      201 {object} dto.Response{data=BlogPostResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/blog [post]
func (h *ContentAdminHandler) CreateBlogPost(c *gin.Context) {
	var req contentapp.BlogPostRequest
	if !h.bindJSON(c, &req) {
		return
	}
	post, err := h.blog.CreateBlogPost(c.Request.Context(), storeID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toBlogPostResponse(post, true, true))
}

// UpdateBlogPost godoc
// @Summary      Update a blog post
// @Tags         admin-content
// @Accept       json
// @Produce      json
// @Param        id path string true "Blog post ID"
// @Param        request body contentapp.BlogPostRequest true "Blog post"
// @Success      200 {object} dto.Response{data=BlogPostResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/blog/{id} [put]
func (h *ContentAdminHandler) UpdateBlogPost(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req contentapp.BlogPostRequest
	if !h.bindJSON(c, &req) {
		return
	}
	post, err := h.blog.UpdateBlogPost(c.Request.Context(), storeID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBlogPostResponse(post, true, true))
}

// DeleteBlogPost godoc
// @Summary      Delete a blog post
// @Tags         admin-content
// @Param        id path string true "Blog post ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/blog/{id} [delete]
func (h *ContentAdminHandler) DeleteBlogPost(c *gin.Context) {
	h.deleteByID(c, h.blog.DeleteBlogPost)
}

// ListSubscriptions godoc
// @Summary      List newsletter subscriptions
// @Tags         admin-content
// @Produce      json
// @Param        email query string false "Email contains"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]SubscriptionResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/newsletter/subscriptions [get]
func (h *ContentAdminHandler) ListSubscriptions(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.subscriptions.GetAllSubscriptions(c.Request.Context(), storeID(c), c.Query("email"), true, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]SubscriptionResponse, len(page.Items))
	for i := range page.Items {
		out[i] = toSubscriptionResponse(&page.Items[i])
	}
	Page(c, shared.NewPaginated(out, page.Total, page.Page, page.PageSize))
}
