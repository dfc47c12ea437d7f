package config

import (
	"time"

	"github.com/joho/godotenv"

	"github.com/Checker-Finance/battlenet/internal/rate"
)

// Config holds the runtime configuration for the bnet command.
//
// Client credentials are deliberately absent: they are resolved by the client
// itself from CLIENTID/BLSECRET, the secrets file, or AWS Secrets Manager.
type Config struct {
	ServiceName string
	Env         string
	LogLevel    string

	Region      string
	Locale      string
	SecretsFile string

	// AWSSecretName enables the AWS Secrets Manager credential tier when set.
	AWSSecretName string
	AWSRegion     string

	HTTPTimeout        time.Duration
	InsecureSkipVerify bool

	RateRPS   int
	RateBurst int

	// CacheTTL of zero disables the response cache.
	CacheTTL  time.Duration
	RedisAddr string
	RedisDB   int
}

// Load loads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:        GetEnv("SERVICE_NAME", "bnet"),
		Env:                GetEnv("ENV", "dev"),
		LogLevel:           GetEnv("LOG_LEVEL", "info"),
		Region:             GetEnv("BNET_REGION", "us"),
		Locale:             GetEnv("BNET_LOCALE", "en_US"),
		SecretsFile:        GetEnv("BNET_SECRETS_FILE", "~/.bnet_secrets.json"),
		AWSSecretName:      GetEnv("BNET_AWS_SECRET_NAME", ""),
		AWSRegion:          GetEnv("AWS_REGION", "us-east-2"),
		HTTPTimeout:        GetEnvDuration("BNET_HTTP_TIMEOUT", 10*time.Second),
		InsecureSkipVerify: GetEnvBool("BNET_INSECURE_SKIP_VERIFY", false),
		RateRPS:            GetEnvInt("BNET_RATE_RPS", rate.DefaultConfig.RequestsPerSecond),
		RateBurst:          GetEnvInt("BNET_RATE_BURST", rate.DefaultConfig.Burst),
		CacheTTL:           GetEnvDuration("BNET_CACHE_TTL", 0),
		RedisAddr:          GetEnv("REDIS_ADDR", ""),
		RedisDB:            GetEnvInt("REDIS_DB", 0),
	}
}
