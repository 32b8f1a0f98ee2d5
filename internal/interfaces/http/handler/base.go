package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

// storeID is the store resolved for the request
func storeID(c *gin.Context) uuid.UUID {
	return middleware.GetStoreID(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithWarnings sends data together with non-fatal warnings
func (h *BaseHandler) SuccessWithWarnings(c *gin.Context, data any, warnings []string) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithWarnings(data, warnings))
}

// Page sends one page of a list with pagination meta
func Page[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(page.Items, page.Total, page.Page, page.PageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// UnprocessableEntity sends a 422 with a business rule code
func (h *BaseHandler) UnprocessableEntity(c *gin.Context, code, message string) {
	h.Error(c, http.StatusUnprocessableEntity, code, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps domain, token and context errors to responses. Anything
// else is logged and reported as a 500 without details.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	switch {
	case errors.As(err, &domainErr):
		h.Error(c, dto.StatusForDomainCode(domainErr.Code), domainErr.Code, domainErr.Message)
	case errors.Is(err, auth.ErrExpiredToken):
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeTokenExpired, "Token has expired")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrTokenBlacklisted), errors.Is(err, auth.ErrMaxRefreshExceeded),
		errors.Is(err, auth.ErrTokenNotYetValid), errors.Is(err, auth.ErrInvalidClaims):
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.Error(c, http.StatusGatewayTimeout, dto.ErrCodeInternal, "The request timed out")
	default:
		logger.FromContext(c.Request.Context()).Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		h.InternalError(c, "An unexpected error occurred")
	}
}

// bindJSON binds the body and writes the validation response on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters and writes the validation response on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// pathID parses a UUID path parameter
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// listFilter reads the common paging parameters
func (h *BaseHandler) listFilter(c *gin.Context) (shared.Filter, bool) {
	req := dto.DefaultListRequest()
	if !h.bindQuery(c, &req) {
		return shared.Filter{}, false
	}
	f := shared.DefaultFilter()
	f.Page = req.PageIndex() + 1
	f.PageSize = req.Size()
	f.Search = req.Search
	if req.OrderBy != "" {
		f.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		f.OrderDir = req.OrderDir
	}
	return f, true
}

// claims returns the access token claims, or nil for guests
func claims(c *gin.Context) *auth.Claims {
	return middleware.GetJWTClaims(c)
}

// deleteByID answers 204 after del removes the entity named by the id path parameter
func (h *BaseHandler) deleteByID(c *gin.Context, del func(ctx context.Context, storeID, id uuid.UUID) error) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := del(c.Request.Context(), storeID(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// readUpload reads the multipart "file" field up to limit bytes. The mime
// type is sniffed from the content.
func (h *BaseHandler) readUpload(c *gin.Context, limit int64) ([]byte, string, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A file is required")
		return nil, "", false
	}
	if fh.Size > limit {
		h.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", fmt.Sprintf("File exceeds %d bytes", limit))
		return nil, "", false
	}
	f, err := fh.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read the uploaded file")
		return nil, "", false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil || int64(len(data)) > limit {
		h.BadRequest(c, "Unable to read the uploaded file")
		return nil, "", false
	}
	return data, http.DetectContentType(data), true
}

// isAdmin reports whether the caller holds an Administrators token
func isAdmin(c *gin.Context) bool {
	cl := claims(c)
	return cl != nil && cl.HasRole(middleware.AdministratorsRole)
}

// tokenIDs returns the store and customer ids of the access token, answering
// 401 when the request carries no usable token
func (h *BaseHandler) tokenIDs(c *gin.Context) (storeID, customerID uuid.UUID, ok bool) {
	cl := claims(c)
	if cl == nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	storeID, err := cl.StoreUUID()
	if err == nil {
		customerID, err = cl.CustomerUUID()
	}
	if err != nil {
		h.HandleError(c, auth.ErrInvalidClaims)
		return uuid.Nil, uuid.Nil, false
	}
	return storeID, customerID, true
}
