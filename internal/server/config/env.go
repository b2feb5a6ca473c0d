package config

import (
	"strconv"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/timex"
)

// lookupFunc matches os.LookupEnv so tests can supply a map.
type lookupFunc func(key string) (string, bool)

// parseEnv overlays environment variables. Empty string values keep the
// previous value; a malformed numeric or duration value is a configuration
// error and the first one encountered is returned.
func parseEnv(config *Config, lookup lookupFunc) error {
	var firstErr error
	invalid := func(key, v string, err error) {
		if firstErr == nil {
			firstErr = common.NewError(common.ErrConfiguration, "invalid %s: %q", key, v).WithCause(err)
		}
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := timex.ParseDuration(v)
			if err != nil {
				invalid(key, v, err)
				return
			}
			*dst = d
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				invalid(key, v, err)
				return
			}
			*dst = n
		}
	}

	str("GRPC_ADDR", &config.EndpointAddrGRPC)
	str("METRICS_ADDR", &config.MetricsAddr)
	str("LOG_LEVEL", &config.LogLevel)
	str("STORAGE_BACKEND", &config.StorageBackend)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("MONGO_URI", &config.MongoURI)
	str("MONGO_DATABASE", &config.MongoDatabase)
	str("SESSION_BACKEND", &config.SessionBackend)
	str("REDIS_ADDR", &config.RedisAddr)
	str("REDIS_PASSWORD", &config.RedisPassword)
	str("ACCESS_TOKEN_SECRET", &config.AccessTokenSecret)
	str("REFRESH_TOKEN_SECRET", &config.RefreshTokenSecret)
	str("UPLOAD_DIR", &config.UploadDir)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)

	dur("ACCESS_TOKEN_EXPIRY", &config.AccessTokenValidityDuration)
	dur("REFRESH_TOKEN_EXPIRY", &config.RefreshTokenValidityDuration)

	num("REDIS_DB", &config.RedisDB)
	num("PASSWORD_HASH_COST", &config.PasswordHashCost)

	if v, ok := lookup("PASSWORD_MIN_ENTROPY"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			invalid("PASSWORD_MIN_ENTROPY", v, err)
		} else {
			config.PasswordMinEntropy = f
		}
	}

	return firstErr
}
