package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию API дашборда.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	LogFormat   string `envconfig:"APP_LOG_FORMAT" default:"json"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Server struct {
		ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
		RequestTimeout  time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"25s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	} `envconfig:""`

	News struct {
		APIKey    string `envconfig:"NEWS_API_KEY"`
		APIKeyAlt string `envconfig:"NEWSAPI_KEY"`
		BaseURL   string `envconfig:"NEWS_API_BASE_URL" default:"https://newsapi.org"`
	} `envconfig:""`

	TMDB struct {
		APIKey       string `envconfig:"TMDB_API_KEY"`
		APIKeyAlt    string `envconfig:"TMDB_KEY"`
		BaseURL      string `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org"`
		ImageBaseURL string `envconfig:"TMDB_IMAGE_BASE_URL" default:"https://image.tmdb.org/t/p/w500"`
	} `envconfig:""`

	Provider struct {
		Timeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s"`
		Retries int           `envconfig:"PROVIDER_RETRIES" default:"0"`
	} `envconfig:""`

	Feed struct {
		DefaultCategories []string `envconfig:"FEED_DEFAULT_CATEGORIES" default:"technology,business"`
		NewsPerCategory   int      `envconfig:"FEED_NEWS_PER_CATEGORY" default:"5"`
		MovieLimit        int      `envconfig:"FEED_MOVIE_LIMIT" default:"8"`
		Country           string   `envconfig:"FEED_COUNTRY" default:"us"`
		SearchBranchLimit int      `envconfig:"SEARCH_BRANCH_LIMIT" default:"10"`
	} `envconfig:""`

	Preferences struct {
		DefaultCategories []string `envconfig:"PREFERENCES_DEFAULT_CATEGORIES" default:"technology,business,sports"`
	} `envconfig:""`

	Store struct {
		Backend string `envconfig:"STORE_BACKEND" default:"memory"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	Redis struct {
		Addr      string `envconfig:"REDIS_ADDR"`
		Password  string `envconfig:"REDIS_PASSWORD"`
		DB        int    `envconfig:"REDIS_DB" default:"0"`
		KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"dashboard"`
	} `envconfig:""`
}

// NewsAPIKey возвращает ключ NewsAPI с учётом устаревшего имени переменной.
func (c AppConfig) NewsAPIKey() string {
	if c.News.APIKey != "" {
		return c.News.APIKey
	}
	return c.News.APIKeyAlt
}

// TMDBAPIKey возвращает ключ TMDB с учётом устаревшего имени переменной.
func (c AppConfig) TMDBAPIKey() string {
	if c.TMDB.APIKey != "" {
		return c.TMDB.APIKey
	}
	return c.TMDB.APIKeyAlt
}

// Parse читает конфиг из окружения.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Load загружает конфиг из окружения. Файл .env в рабочей директории,
// если он есть, дополняет окружение, но не переопределяет его.
func Load() AppConfig {
	_ = godotenv.Load()
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
