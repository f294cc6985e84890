package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.example.com", cfg.Upstream.ProductsURL)
	assert.Equal(t, "https://api.example.com", cfg.Upstream.UsersURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, uint32(5), cfg.Upstream.BreakerMaxFailures)
	assert.True(t, cfg.Catalog.CurrencyRate.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, int32(2), cfg.Catalog.CurrencyPrecision)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10, cfg.Session.TokenCost)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=feedshop sslmode=disable", cfg.Database.DSN())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("POSTS_API_URL", "https://posts.example.com")
	t.Setenv("CURRENCY_RATE", "25000")
	t.Setenv("CURRENCY_CODE", "VND")
	t.Setenv("CURRENCY_PRECISION", "0")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("CHAT_APP_KEY", "chat-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://posts.example.com", cfg.Upstream.PostsURL)
	assert.Equal(t, "https://api.example.com", cfg.Upstream.ShopsURL)
	assert.True(t, cfg.Catalog.CurrencyRate.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, "VND", cfg.Catalog.CurrencyCode)
	assert.Equal(t, int32(0), cfg.Catalog.CurrencyPrecision)
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "chat-key", cfg.Chat.AppKey)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"UPSTREAM_TIMEOUT":     "soon",
		"CURRENCY_RATE":        "-2",
		"SESSION_TOKEN_COST":   "ten",
		"BREAKER_MAX_FAILURES": "0",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv("API_BASE_URL", "https://api.example.com")
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
