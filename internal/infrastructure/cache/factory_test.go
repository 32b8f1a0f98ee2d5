package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func TestFactory_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("memory and empty provider", func(t *testing.T) {
		for _, provider := range []string{"", "memory"} {
			m, err := NewFactory(config.CacheConfig{Provider: provider}, config.RedisConfig{}).Create(ctx)
			require.NoError(t, err, provider)
			assert.IsType(t, &MemoryManager{}, m)
			_ = m.Close()
		}
	})

	t.Run("unknown provider is a config error", func(t *testing.T) {
		m, err := NewFactory(config.CacheConfig{Provider: "memcached"}, config.RedisConfig{}).Create(ctx)
		require.Error(t, err)
		assert.Nil(t, m)
		assert.Contains(t, err.Error(), `"memcached"`)
	})
}
