package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	contentapp "github.com/storefront/backend/internal/application/content"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
)

// PollReader serves storefront polls and votes
type PollReader interface {
	GetPollByID(ctx context.Context, storeID, id uuid.UUID) (*content.Poll, error)
	GetPolls(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, showOnHomePage *bool, systemKeyword string) ([]content.Poll, error)
	AlreadyVoted(ctx context.Context, pollID, customerID uuid.UUID) (bool, error)
	Vote(ctx context.Context, storeID, pollID uuid.UUID, c *customer.Customer, answerID uuid.UUID) (*contentapp.PollResponse, error)
}

// NewsReader serves storefront news
type NewsReader interface {
	GetNewsByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*content.NewsItem, error)
	GetVisibleNews(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, page, pageSize int) (shared.Paginated[content.NewsItem], error)
	GetHomePageNews(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID) ([]content.NewsItem, error)
	AddComment(ctx context.Context, storeID, newsID uuid.UUID, c *customer.Customer, req contentapp.CommentRequest) (*content.NewsComment, error)
}

// BlogReader serves the storefront blog
type BlogReader interface {
	GetBlogPostByID(ctx context.Context, storeID, id uuid.UUID, showHidden bool) (*content.BlogPost, error)
	GetAllBlogPosts(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, from, to *time.Time, showHidden bool) ([]content.BlogPost, error)
	GetBlogPostsByTag(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID, tag string) ([]content.BlogPost, error)
	GetAllBlogPostTags(ctx context.Context, storeID uuid.UUID, languageID *uuid.UUID) ([]content.BlogPostTag, error)
	AddComment(ctx context.Context, storeID, postID uuid.UUID, c *customer.Customer, req contentapp.CommentRequest) (*content.BlogComment, error)
}

// NewsletterService handles newsletter subscriptions
type NewsletterService interface {
	Subscribe(ctx context.Context, storeID uuid.UUID, email string) (*content.NewsLetterSubscription, error)
	Unsubscribe(ctx context.Context, storeID uuid.UUID, email string) error
	ActivateByGUID(ctx context.Context, guid uuid.UUID, active bool) (*content.NewsLetterSubscription, error)
}

// ContentHandler serves polls, news, the blog and newsletter subscriptions
type ContentHandler struct {
	BaseHandler
	polls      PollReader
	news       NewsReader
	blog       BlogReader
	newsletter NewsletterService
	customers  CustomerResolver
	now        func() time.Time
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(polls PollReader, news NewsReader, blog BlogReader, newsletter NewsletterService, customers CustomerResolver) *ContentHandler {
	return &ContentHandler{polls: polls, news: news, blog: blog, newsletter: newsletter, customers: customers, now: time.Now}
}

// ListPolls godoc
// @Summary      Open polls
// @Tags         content
// @Produce      json
// @Param        language_id query string false "Language ID"
// @Param        system_keyword query string false "System keyword"
// @Param        home query bool false "Home page polls only"
// @Success      200 {object} dto.Response{data=[]contentapp.PollResponse}
// @Router       /polls [get]
func (h *ContentHandler) ListPolls(c *gin.Context) {
	var q PollQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var home *bool
	if q.HomePageOnly {
		home = &q.HomePageOnly
	}
	polls, err := h.polls.GetPolls(c.Request.Context(), storeID(c), q.language(), home, q.SystemKeyword)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	cust, err := currentCustomer(c, h.customers, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]contentapp.PollResponse, len(polls))
	for i := range polls {
		if out[i], err = h.pollResponse(c, &polls[i], cust); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.Success(c, out)
}

// GetPoll godoc
// @Summary      Get a poll with results
// @Tags         content
// @Produce      json
// @Param        id path string true "Poll ID"
// @Success      200 {object} dto.Response{data=contentapp.PollResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /polls/{id} [get]
func (h *ContentHandler) GetPoll(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	poll, err := h.polls.GetPollByID(c.Request.Context(), storeID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !poll.Published {
		h.NotFound(c, "Poll not found")
		return
	}
	cust, err := currentCustomer(c, h.customers, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp, err := h.pollResponse(c, poll, cust)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *ContentHandler) pollResponse(c *gin.Context, poll *content.Poll, cust *customer.Customer) (contentapp.PollResponse, error) {
	resp := contentapp.ToPollResponse(poll)
	if cust == nil {
		return resp, nil
	}
	voted, err := h.polls.AlreadyVoted(c.Request.Context(), poll.ID, cust.ID)
	resp.AlreadyVoted = voted
	return resp, err
}

// Vote godoc
// @Summary      Vote in a poll
// @Description  Records the answer of the current customer. Guests can vote only where the poll allows it.
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        id path string true "Poll ID"
// @Param        request body contentapp.VoteRequest true "Answer"
// @Success      200 {object} dto.Response{data=contentapp.PollResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /polls/{id}/vote [post]
func (h *ContentHandler) Vote(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req contentapp.VoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cust, err := currentCustomer(c, h.customers, true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp, err := h.polls.Vote(c.Request.Context(), storeID(c), id, cust, req.AnswerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListNews godoc
// @Summary      News archive
// @Tags         content
// @Produce      json
// @Param        language_id query string false "Language ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]NewsResponse,meta=dto.Meta}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /news [get]
func (h *ContentHandler) ListNews(c *gin.Context) {
	var q ContentQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	pageSize := 0
	if c.Query("page_size") != "" {
		pageSize = filter.PageSize
	}
	page, err := h.news.GetVisibleNews(c.Request.Context(), storeID(c), q.language(), filter.Page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, shared.NewPaginated(toNewsResponses(page.Items, false), page.Total, page.Page, page.PageSize))
}

// HomePageNews godoc
// @Summary      Home page news
// @Tags         content
// @Produce      json
// @Param        language_id query string false "Language ID"
// @Success      200 {object} dto.Response{data=[]NewsResponse}
// @Router       /home/news [get]
func (h *ContentHandler) HomePageNews(c *gin.Context) {
	var q ContentQuery
	if !h.bindQuery(c, &q) {
		return
	}
	items, err := h.news.GetHomePageNews(c.Request.Context(), storeID(c), q.language())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toNewsResponses(items, false))
}

// GetNews godoc
// @Summary      News item
// @Tags         content
// @Produce      json
// @Param        id path string true "News ID"
// @Success      200 {object} dto.Response{data=NewsResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /news/{id} [get]
func (h *ContentHandler) GetNews(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.news.GetNewsByID(c.Request.Context(), storeID(c), id, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toNewsResponse(item, true, false))
}

// CommentNews godoc
// @Summary      Comment on a news item
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        id path string true "News ID"
// @Param        request body contentapp.CommentRequest true "Comment"
// @Success      201 {object} dto.Response{data=CommentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /news/{id}/comments [post]
func (h *ContentHandler) CommentNews(c *gin.Context) {
	id, req, cust, ok := h.commentInput(c)
	if !ok {
		return
	}
	cm, err := h.news.AddComment(c.Request.Context(), storeID(c), id, cust, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toNewsCommentResponse(cm))
}

// ListBlogPosts godoc
// @Summary      Blog posts
// @Description  Lists visible posts, newest first, optionally by tag or creation date range
// @Tags         content
// @Produce      json
// @Param        language_id query string false "Language ID"
// @Param        tag query string false "Tag"
// @Param        from query string false "Created on or after (YYYY-MM-DD)"
// @Param        to query string false "Created on or before (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]BlogPostResponse}
// @Router       /blog [get]
func (h *ContentHandler) ListBlogPosts(c *gin.Context) {
	var q BlogQuery
	if !h.bindQuery(c, &q) {
		return
	}
	ctx := c.Request.Context()
	var posts []content.BlogPost
	var err error
	if q.Tag != "" {
		posts, err = h.blog.GetBlogPostsByTag(ctx, storeID(c), q.language(), q.Tag)
	} else {
		from, to := q.period()
		posts, err = h.blog.GetAllBlogPosts(ctx, storeID(c), q.language(), from, to, false)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	now := h.now()
	visible := posts[:0]
	for _, p := range posts {
		if p.IsVisibleAt(now) {
			visible = append(visible, p)
		}
	}
	h.Success(c, toBlogPostResponses(visible, false))
}

// BlogTags godoc
// @Summary      Blog tag cloud
// @Tags         content
// @Produce      json
// @Param        language_id query string false "Language ID"
// @Success      200 {object} dto.Response{data=[]content.BlogPostTag}
// @Router       /blog/tags [get]
func (h *ContentHandler) BlogTags(c *gin.Context) {
	var q ContentQuery
	if !h.bindQuery(c, &q) {
		return
	}
	tags, err := h.blog.GetAllBlogPostTags(c.Request.Context(), storeID(c), q.language())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if tags == nil {
		tags = []content.BlogPostTag{}
	}
	h.Success(c, tags)
}

// GetBlogPost godoc
// @Summary      Blog post
// @Tags         content
// @Produce      json
// @Param        id path string true "Blog post ID"
// @Success      200 {object} dto.Response{data=BlogPostResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /blog/posts/{id} [get]
func (h *ContentHandler) GetBlogPost(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	post, err := h.blog.GetBlogPostByID(c.Request.Context(), storeID(c), id, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toBlogPostResponse(post, true, false))
}

// CommentBlogPost godoc
// @Summary      Comment on a blog post
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        id path string true "Blog post ID"
// @Param        request body contentapp.CommentRequest true "Comment"
// @Success      201 {object} dto.Response{data=CommentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /blog/posts/{id}/comments [post]
func (h *ContentHandler) CommentBlogPost(c *gin.Context) {
	id, req, cust, ok := h.commentInput(c)
	if !ok {
		return
	}
	cm, err := h.blog.AddComment(c.Request.Context(), storeID(c), id, cust, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toBlogCommentResponse(cm))
}

func (h *ContentHandler) commentInput(c *gin.Context) (uuid.UUID, contentapp.CommentRequest, *customer.Customer, bool) {
	var req contentapp.CommentRequest
	id, ok := h.pathID(c, "id")
	if !ok || !h.bindJSON(c, &req) {
		return uuid.Nil, req, nil, false
	}
	cust, err := currentCustomer(c, h.customers, true)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, req, nil, false
	}
	return id, req, cust, true
}

// Subscribe godoc
// @Summary      Subscribe to the newsletter
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        request body contentapp.SubscriptionRequest true "Email"
// @Success      200 {object} dto.Response{data=SubscriptionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /newsletter/subscribe [post]
func (h *ContentHandler) Subscribe(c *gin.Context) {
	var req contentapp.SubscriptionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sub, err := h.newsletter.Subscribe(c.Request.Context(), storeID(c), req.Email)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSubscriptionResponse(sub))
}

// Unsubscribe godoc
// @Summary      Unsubscribe from the newsletter
// @Description  Unknown addresses are accepted silently
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        request body contentapp.SubscriptionRequest true "Email"
// @Success      200 {object} dto.Response{data=MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /newsletter/unsubscribe [post]
func (h *ContentHandler) Unsubscribe(c *gin.Context) {
	var req contentapp.SubscriptionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.newsletter.Unsubscribe(c.Request.Context(), storeID(c), req.Email); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Unsubscribed"})
}

// ActivateSubscription godoc
// @Summary      Confirm or cancel a subscription
// @Description  Target of the link sent in subscription emails
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        guid path string true "Subscription guid"
// @Param        request body ActivateSubscriptionRequest true "Activation"
// @Success      200 {object} dto.Response{data=SubscriptionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /newsletter/subscriptions/{guid} [put]
func (h *ContentHandler) ActivateSubscription(c *gin.Context) {
	guid, ok := h.pathID(c, "guid")
	if !ok {
		return
	}
	var req ActivateSubscriptionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sub, err := h.newsletter.ActivateByGUID(c.Request.Context(), guid, req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSubscriptionResponse(sub))
}
