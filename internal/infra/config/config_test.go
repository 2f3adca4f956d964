package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("ожидали порт 8080, получили %d", cfg.Port)
	}
	if len(cfg.Feed.DefaultCategories) != 2 || cfg.Feed.DefaultCategories[0] != "technology" {
		t.Fatalf("неожиданные рубрики по умолчанию: %v", cfg.Feed.DefaultCategories)
	}
	if cfg.Feed.MovieLimit != 8 || cfg.Feed.NewsPerCategory != 5 || cfg.Feed.SearchBranchLimit != 10 {
		t.Fatalf("неожиданные лимиты ленты: %+v", cfg.Feed)
	}
	if cfg.Provider.Timeout != 10*time.Second {
		t.Fatalf("ожидали таймаут 10s, получили %s", cfg.Provider.Timeout)
	}
	if cfg.Store.Backend != "memory" {
		t.Fatalf("ожидали memory, получили %s", cfg.Store.Backend)
	}
}

func TestAPIKeyFallbacks(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "legacy-news")
	t.Setenv("TMDB_API_KEY", "primary-tmdb")
	t.Setenv("TMDB_KEY", "legacy-tmdb")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if cfg.NewsAPIKey() != "legacy-news" {
		t.Fatalf("ожидали ключ из NEWSAPI_KEY, получили %q", cfg.NewsAPIKey())
	}
	if cfg.TMDBAPIKey() != "primary-tmdb" {
		t.Fatalf("основной ключ должен иметь приоритет, получили %q", cfg.TMDBAPIKey())
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("FEED_DEFAULT_CATEGORIES", "science,health")
	t.Setenv("PROVIDER_TIMEOUT", "3s")
	t.Setenv("STORE_BACKEND", "redis")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(cfg.Feed.DefaultCategories) != 2 || cfg.Feed.DefaultCategories[1] != "health" {
		t.Fatalf("неожиданные рубрики: %v", cfg.Feed.DefaultCategories)
	}
	if cfg.Provider.Timeout != 3*time.Second {
		t.Fatalf("ожидали 3s, получили %s", cfg.Provider.Timeout)
	}
	if cfg.Store.Backend != "redis" {
		t.Fatalf("ожидали redis, получили %s", cfg.Store.Backend)
	}
}
