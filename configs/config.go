package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

type OAuthApp struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type Scheduler struct {
	MaxRetries        int
	BackoffBase       time.Duration
	BackoffCap        time.Duration
	AttemptTimeout    time.Duration
	ProcessingTimeout time.Duration
	SweepBatchSize    int
	Concurrency       int
}

type Config struct {
	Instagram   OAuthApp
	Facebook    OAuthApp
	Reddit      OAuthApp
	Twitter     OAuthApp
	Whatsapp    OAuthApp
	PostgresURI string
	RedisURI    string
	FrontendURL string
	R2          R2
	Scheduler   Scheduler
	SecretKey   string
	CookieName  string
}

func LoadConfig() *Config {
	return &Config{
		Instagram: OAuthApp{
			ClientID:     getEnv("INSTAGRAM_CLIENT_ID", ""),
			ClientSecret: getEnv("INSTAGRAM_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("INSTAGRAM_REDIRECT_URI", ""),
		},
		Facebook: OAuthApp{
			ClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
			ClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("FACEBOOK_REDIRECT_URI", ""),
		},
		Reddit: OAuthApp{
			ClientID:     getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("REDDIT_REDIRECT_URI", ""),
		},
		Twitter: OAuthApp{
			ClientID:     getEnv("TWITTER_CLIENT_ID", ""),
			ClientSecret: getEnv("TWITTER_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("TWITTER_REDIRECT_URI", ""),
		},
		Whatsapp: OAuthApp{
			ClientID:     getEnv("WHATSAPP_CLIENT_ID", ""),
			ClientSecret: getEnv("WHATSAPP_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("WHATSAPP_REDIRECT_URI", ""),
		},
		PostgresURI: getEnv("POSTGRES_URI", ""),
		RedisURI:    getEnv("REDIS_URI", ""),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
		Scheduler: Scheduler{
			MaxRetries:        getEnvInt("SCHEDULER_MAX_RETRIES", 5),
			BackoffBase:       getEnvDuration("SCHEDULER_BACKOFF_BASE", 30*time.Second),
			BackoffCap:        getEnvDuration("SCHEDULER_BACKOFF_CAP", time.Hour),
			AttemptTimeout:    getEnvDuration("SCHEDULER_ATTEMPT_TIMEOUT", 30*time.Second),
			ProcessingTimeout: getEnvDuration("SCHEDULER_PROCESSING_TIMEOUT", 5*time.Minute),
			SweepBatchSize:    getEnvInt("SCHEDULER_SWEEP_BATCH_SIZE", 100),
			Concurrency:       getEnvInt("SCHEDULER_CONCURRENCY", 10),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
