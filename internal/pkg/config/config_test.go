package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Default Values", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "sqlite://file::memory:")
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8000", cfg.AppPort)
		assert.Equal(t, int64(10), cfg.FreeTierLimit)
		assert.Equal(t, int64(500), cfg.ProTierLimit)
		assert.Equal(t, 30*time.Minute, cfg.AccessTokenExpires)
		assert.Equal(t, 10*time.Second, cfg.ScraperTimeout)
		assert.Equal(t, "http://localhost:3000", cfg.CORSOrigins)
		assert.False(t, cfg.BillingEnabled())
		assert.False(t, cfg.CacheEnabled())
	})

	t.Run("Environment Variables", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/ads")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("FREE_TIER_LIMIT", "3")
		t.Setenv("PRO_TIER_LIMIT", "30")
		t.Setenv("SCRAPER_TIMEOUT", "2s")
		t.Setenv("CORS_ORIGINS", `["https://a.example", "https://b.example"]`)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, int64(3), cfg.FreeTierLimit)
		assert.Equal(t, int64(30), cfg.ProTierLimit)
		assert.Equal(t, 2*time.Second, cfg.ScraperTimeout)
		assert.Equal(t, "https://a.example,https://b.example", cfg.CORSOrigins)
	})

	t.Run("Missing database", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET", "secret")

		_, err := Load()
		assert.ErrorIs(t, err, ErrMissingDatabaseURL)
	})

	t.Run("Missing secret", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "sqlite://file::memory:")
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.ErrorIs(t, err, ErrMissingJWTSecret)
	})
}

func TestValidateLimits(t *testing.T) {
	base := Config{DatabaseURL: "x", JWTSecret: "y", AccessTokenExpires: time.Minute}

	cases := []struct {
		name    string
		free    int64
		pro     int64
		wantErr bool
	}{
		{"ok", 10, 500, false},
		{"equal", 10, 10, false},
		{"zero free", 0, 10, true},
		{"pro below free", 10, 5, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			c.FreeTierLimit, c.ProTierLimit = tc.free, tc.pro
			if tc.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}
