package config

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestParseEnv(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := parseEnv(cfg, mapLookup(map[string]string{
		"ACCESS_TOKEN_SECRET":  "env-access",
		"REFRESH_TOKEN_SECRET": "env-refresh",
		"ACCESS_TOKEN_EXPIRY":  "30m",
		"REFRESH_TOKEN_EXPIRY": "10d",
		"STORAGE_BACKEND":      "mongo",
		"REDIS_DB":             "5",
		"PASSWORD_HASH_COST":   "12",
		"PASSWORD_MIN_ENTROPY": "40",
		"S3_BUCKET":            "",
		"LOG_LEVEL":            "warn",
	}))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)

	assert.Equal(t, "env-access", cfg.AccessTokenSecret)
	assert.Equal(t, "env-refresh", cfg.RefreshTokenSecret)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 240*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, StorageMongo, cfg.StorageBackend)
	assert.Equal(t, 5, cfg.RedisDB)
	assert.Equal(t, 12, cfg.PasswordHashCost)
	assert.Equal(t, 40.0, cfg.PasswordMinEntropy)
	assert.Equal(t, "media", cfg.S3Bucket, "empty value keeps default")
}

func TestParseEnv_MalformedValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"ACCESS_TOKEN_EXPIRY", "1.5d"},
		{"REFRESH_TOKEN_EXPIRY", "not-a-duration"},
		{"REDIS_DB", "one"},
		{"PASSWORD_HASH_COST", "abc"},
		{"PASSWORD_MIN_ENTROPY", "high"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := &Config{}
			cfg.LoadDefaults()

			err := parseEnv(cfg, mapLookup(map[string]string{tt.key: tt.value}))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestParseEnv_ReportsFirstMalformedValue(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := parseEnv(cfg, mapLookup(map[string]string{
		"ACCESS_TOKEN_EXPIRY": "1x",
		"PASSWORD_HASH_COST":  "abc",
		"LOG_LEVEL":           "debug",
	}))
	require.ErrorIs(t, err, common.ErrConfiguration)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_EXPIRY")
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
}

func TestParseEnv_FlagsWinOverEnv(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.NoError(t, parseEnv(cfg, mapLookup(map[string]string{"ACCESS_TOKEN_SECRET": "from-env"})))
	parseFlags(cfg, []string{"-access-secret", "from-flag"})

	assert.Equal(t, "from-flag", cfg.AccessTokenSecret)
}
