package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdata/internal/gateway/config"
	"askdata/internal/gateway/repository/archive"
)

func TestNewLLMClientProviders(t *testing.T) {
	ctx := context.Background()

	c, err := NewLLMClient(ctx, config.LLMConfig{Provider: "fake", Retries: 1, CacheSize: 8, CacheTTL: time.Minute}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "FakeClient", c.Name())
	text, err := c.GenerateText(ctx, "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	require.NoError(t, c.Close())

	_, err = NewLLMClient(ctx, config.LLMConfig{Provider: "gemini"}, zerolog.Nop())
	assert.Error(t, err, "gemini without an api key")

	_, err = NewLLMClient(ctx, config.LLMConfig{Provider: "other"}, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown llm provider")
}

func TestNewLLMClientPassesGeminiOptions(t *testing.T) {
	assert.Empty(t, geminiOptions(config.LLMConfig{}))
	assert.Len(t, geminiOptions(config.LLMConfig{Temperature: 0.3}), 1)
	assert.Len(t, geminiOptions(config.LLMConfig{Temperature: 0.3, MaxTokens: 1024}), 2)

	c, err := NewLLMClient(context.Background(), config.LLMConfig{
		Provider:    "gemini",
		APIKey:      "test-key",
		Model:       "gemini-custom",
		Retries:     1,
		Temperature: 0.3,
		MaxTokens:   1024,
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "Gemini:gemini-custom", c.Name())
	require.NoError(t, c.Close())
}

func TestInitStoresDefaultsToMemory(t *testing.T) {
	stores, err := initStores(context.Background(), &config.Config{}, zerolog.Nop())
	require.NoError(t, err)
	cached, ok := stores.archive.(*archive.CachedStore)
	assert.True(t, ok)
	assert.Nil(t, stores.db)
	assert.Same(t, cached, stores.metrics, "cache counters registered")

	assert.ErrorAs(t, prometheus.Register(cached), new(prometheus.AlreadyRegisteredError))
	assert.NoError(t, stores.Close())
	assert.NoError(t, prometheus.Register(cached), "Close unregisters the collector")
	prometheus.Unregister(cached)
}

func TestChooseArchiveStorePrefersS3(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL: "postgres://unused",
		Artifact: config.ArtifactConfig{
			Enabled: true, Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b", Bucket: "runs",
		},
	}
	store, kind, err := chooseArchiveStore(context.Background(), cfg, &gatewayStores{})
	require.NoError(t, err)
	assert.Equal(t, "s3", kind)
	_, ok := store.(*archive.S3Store)
	assert.True(t, ok)
}
