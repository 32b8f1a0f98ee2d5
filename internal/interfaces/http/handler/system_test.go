package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	ok := PingerFunc(func(context.Context) error { return nil })
	down := PingerFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("all checks pass", func(t *testing.T) {
		h := NewSystemHandler("Storefront API", "1.0.0", map[string]Pinger{"database": ok, "redis": ok})
		c, w := newTestContext(http.MethodGet, "/health", nil)
		h.Health(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		decodeData(t, w, &resp)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, resp.Checks)
	})

	t.Run("one failing check", func(t *testing.T) {
		h := NewSystemHandler("Storefront API", "1.0.0", map[string]Pinger{"database": ok, "redis": down})
		c, w := newTestContext(http.MethodGet, "/health", nil)
		h.Health(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp HealthResponse
		envelope := decodeData(t, w, &resp)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "SERVICE_UNAVAILABLE", envelope.Error.Code)
		assert.Equal(t, "unavailable", resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"])
		assert.Equal(t, "ok", resp.Checks["database"])
	})

	t.Run("no checks", func(t *testing.T) {
		h := NewSystemHandler("Storefront API", "1.0.0", nil)
		c, w := newTestContext(http.MethodGet, "/health", nil)
		h.Health(c)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSystemHandler_Info(t *testing.T) {
	h := NewSystemHandler("Storefront API", "1.2.3", nil)
	c, w := newTestContext(http.MethodGet, "/api/v1/system/info", nil)
	h.GetSystemInfo(c)

	var info SystemInfoResponse
	decodeData(t, w, &info)
	assert.Equal(t, "Storefront API", info.Name)
	assert.Equal(t, "1.2.3", info.Version)
	assert.NotEmpty(t, info.GoVersion)

	c, w = newTestContext(http.MethodGet, "/api/v1/system/ping", nil)
	h.Ping(c)
	var pong PingResponse
	decodeData(t, w, &pong)
	assert.Equal(t, "pong", pong.Message)
}
