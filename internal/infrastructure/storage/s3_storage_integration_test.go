//go:build integration

package storage

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func startMinio(t *testing.T) *S3ObjectStorage {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "storefront",
				"MINIO_ROOT_PASSWORD": "storefront-secret",
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.PortEndpoint(ctx, "9000/tcp", "http")
	require.NoError(t, err)

	s, err := NewS3ObjectStorage(ctx, &config.StorageConfig{
		Bucket:          "pictures",
		Endpoint:        endpoint,
		AccessKeyID:     "storefront",
		SecretAccessKey: "storefront-secret",
		UsePathStyle:    true,
	}, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	require.NoError(t, s.EnsureBucket(ctx))
	// idempotent
	require.NoError(t, s.EnsureBucket(ctx))
	return s
}

func TestS3ObjectStorage_Lifecycle(t *testing.T) {
	s := startMinio(t)
	ctx := context.Background()
	key := "store-1/pictures/blue-shirt.png"
	body := []byte("not really a png")

	exists, err := s.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Upload(ctx, key, body, "image/png"))

	exists, err = s.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	url, _, err := s.GenerateDownloadURL(ctx, key, time.Minute)
	require.NoError(t, err)
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	require.NoError(t, s.DeleteObject(ctx, key))
	require.NoError(t, s.DeleteObject(ctx, key))
	exists, err = s.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}
