package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DatabaseURL        = "DATABASE_URL"
	AutomationBaseURL  = "AUTOMATION_BASE_URL"
	AutomationTimeout  = "AUTOMATION_TIMEOUT"
	WebhookSecret      = "WEBHOOK_SECRET"
	AWSRegion          = "AWS_REGION"
	AWSID              = "AWS_ID"
	AWSSecret          = "AWS_SECRET"
	AWSToken           = "AWS_TOKEN"
	DynamoDBEndpoint   = "DYNAMODB_ENDPOINT"
	WebhookLogTable    = "WEBHOOK_LOG_TABLE"
	RedisURL           = "REDIS_URL"
	RedisPass          = "REDIS_PASS"
	UserSecretKey      = "USER_SECRET"
	AdminEmail         = "ADMIN_EMAIL"
	AdminPasswordHash  = "ADMIN_PASSWORD_HASH"
	CORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	FallbackLanguage   = "FALLBACK_LANGUAGE"
	RateLimitPerMinute = "RATE_LIMIT_PER_MINUTE"
	PublicAddr         = "PUBLIC_ADDR"
	ClientAddr         = "CLIENT_ADDR"
	QueueSize          = "QUEUE_SIZE"
	QueueWorkers       = "QUEUE_WORKERS"
)

// Require reports every key in keys that is unset. Binaries call it before
// wiring anything so a misconfigured deployment fails at startup.
func Require(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("env: required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}

func GetInt(key string, defaultVal int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// GetDuration accepts Go duration strings ("10s") or a bare number of seconds.
func GetDuration(key string, defaultVal time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

// GetList splits a comma separated value, dropping blanks.
func GetList(key string, defaultVal []string) []string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
