package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/vidtube/internal/flagx"
	"github.com/dmitrijs2005/vidtube/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "15m" style strings or integer nanoseconds. Pointer fields
// distinguish "absent" from a zero value so partial files only override
// what they mention.
type JsonConfig struct {
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc"`
	MetricsAddr                  *string         `json:"metrics_addr"`
	LogLevel                     *string         `json:"log_level"`
	StorageBackend               *string         `json:"storage_backend"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	MongoURI                     *string         `json:"mongo_uri"`
	MongoDatabase                *string         `json:"mongo_database"`
	SessionBackend               *string         `json:"session_backend"`
	RedisAddr                    *string         `json:"redis_addr"`
	RedisPassword                *string         `json:"redis_password"`
	RedisDB                      *int            `json:"redis_db"`
	AccessTokenSecret            *string         `json:"access_token_secret"`
	RefreshTokenSecret           *string         `json:"refresh_token_secret"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	PasswordHashCost             *int            `json:"password_hash_cost"`
	PasswordMinEntropy           *float64        `json:"password_min_entropy"`
	UploadDir                    *string         `json:"upload_dir"`
	S3RootUser                   *string         `json:"s3_root_user"`
	S3RootPassword               *string         `json:"s3_root_password"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
}

// parseJson overlays the file named by -c/-config onto config. Without the
// flag nothing happens; an unreadable or invalid file panics, since the
// server cannot start on a config it was explicitly told to use.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.SessionBackend, c.SessionBackend)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.AccessTokenSecret, c.AccessTokenSecret)
	setString(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	setString(&config.UploadDir, c.UploadDir)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.PasswordHashCost != nil {
		config.PasswordHashCost = *c.PasswordHashCost
	}
	if c.PasswordMinEntropy != nil {
		config.PasswordMinEntropy = *c.PasswordMinEntropy
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
