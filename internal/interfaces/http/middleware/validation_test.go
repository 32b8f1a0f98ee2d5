package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

type validationRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Name    string `json:"name" binding:"required,min=3"`
	SeName  string `json:"se_name" binding:"sename"`
	Country string `json:"country" binding:"omitempty,iso3166_1_alpha2"`
}

func newValidationRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, SetupValidator())
	r := gin.New()
	r.Use(RequestID())
	r.POST("/test", func(c *gin.Context) {
		var req validationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func postJSON(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleValidationError(t *testing.T) {
	r := newValidationRouter(t)

	w := postJSON(r, `{"email":"nope","name":"ab","se_name":"Bad Name","country":"USA"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, w.Header().Get(RequestIDHeader), resp.Error.RequestID)

	fields := map[string]string{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "Invalid email format", fields["email"])
	assert.Equal(t, "Must be at least 3 characters", fields["name"])
	assert.Equal(t, "Use lowercase letters, digits and single hyphens", fields["se_name"])
	assert.Equal(t, "Must be a two-letter country code", fields["country"])
}

func TestHandleValidationError_Valid(t *testing.T) {
	r := newValidationRouter(t)
	w := postJSON(r, `{"email":"jane@example.com","name":"Jane","se_name":"red-shoes-2","country":"US"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Error.Details)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}
