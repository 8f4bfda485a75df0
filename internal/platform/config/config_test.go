package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("FORMVIEW_ADDR", "")
		t.Setenv("KAFKA_BROKERS", "")
		t.Setenv("DISPLAY_CACHE_TTL", "")

		cfg := FromEnv()
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, 10*time.Minute, cfg.DisplayCacheTTL)
		assert.Empty(t, cfg.Kafka.Brokers)
		assert.Equal(t, "formview.audit", cfg.Kafka.AuditTopic)
		assert.NotEmpty(t, cfg.JWTSigningKey)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("FORMVIEW_ADDR", ":9090")
		t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
		t.Setenv("DISPLAY_CACHE_TTL", "30s")
		t.Setenv("REDIS_POOL_SIZE", "25")
		t.Setenv("FORMVIEW_SEED_FILE", "/tmp/seed.json")

		cfg := FromEnv()
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, 30*time.Second, cfg.DisplayCacheTTL)
		assert.Equal(t, 25, cfg.Redis.PoolSize)
		assert.Equal(t, "/tmp/seed.json", cfg.SeedFile)
	})
}
