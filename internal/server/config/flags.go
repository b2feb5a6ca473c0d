package config

import (
	"flag"

	"github.com/dmitrijs2005/vidtube/internal/flagx"
)

var flagNames = []string{
	"-a", "-m", "-log-level", "-storage", "-d", "-mongo-uri", "-mongo-db",
	"-session", "-redis-addr", "-redis-password", "-redis-db",
	"-access-secret", "-refresh-secret", "-t", "-r",
	"-hash-cost", "-min-entropy", "-upload-dir",
	"-u", "-p", "-b", "-g", "-e",
}

// parseFlags populates Config from command-line flags.
//
//	-a string              gRPC bind address (e.g., ":50051")
//	-m string              metrics HTTP bind address
//	-log-level string      debug | info | warn | error
//	-storage string        identity storage backend: postgres | mongo | memory
//	-d string              PostgreSQL DSN
//	-mongo-uri string      MongoDB connection URI
//	-mongo-db string       MongoDB database name
//	-session string        session backend: record | redis
//	-redis-addr string     Redis address
//	-redis-password string Redis password
//	-redis-db int          Redis logical database
//	-access-secret string  HMAC secret for access tokens
//	-refresh-secret string HMAC secret for refresh tokens
//	-t duration            access token validity (e.g. "15m")
//	-r duration            refresh token validity (e.g. "240h")
//	-hash-cost int         bcrypt cost
//	-min-entropy float     minimum password entropy in bits, 0 disables
//	-upload-dir string     local staging dir for uploads
//	-u/-p/-b/-g/-e string  S3 user, password, bucket, region, base endpoint
//
// Only the flags above are considered (see flagx.FilterArgs), so flags meant
// for other components do not cause parse errors.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.StorageBackend, "storage", config.StorageBackend, "identity storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "mongo-uri", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "mongo-db", config.MongoDatabase, "MongoDB database")
	fs.StringVar(&config.SessionBackend, "session", config.SessionBackend, "session backend")
	fs.StringVar(&config.RedisAddr, "redis-addr", config.RedisAddr, "Redis address")
	fs.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "Redis password")
	fs.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "Redis database")
	fs.StringVar(&config.AccessTokenSecret, "access-secret", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "refresh-secret", config.RefreshTokenSecret, "refresh token secret")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity")
	fs.DurationVar(&config.RefreshTokenValidityDuration, "r", config.RefreshTokenValidityDuration, "refresh token validity")
	fs.IntVar(&config.PasswordHashCost, "hash-cost", config.PasswordHashCost, "bcrypt cost")
	fs.Float64Var(&config.PasswordMinEntropy, "min-entropy", config.PasswordMinEntropy, "minimum password entropy (bits)")
	fs.StringVar(&config.UploadDir, "upload-dir", config.UploadDir, "upload staging directory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(flagx.FilterArgs(args, flagNames)); err != nil {
		panic(err)
	}
}
