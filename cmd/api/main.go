package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"content-dashboard/internal/adapters/normalizer"
	"content-dashboard/internal/adapters/provider"
	"content-dashboard/internal/adapters/ranker"
	"content-dashboard/internal/adapters/repo"
	"content-dashboard/internal/domain"
	"content-dashboard/internal/httpapi"
	"content-dashboard/internal/infra/config"
	"content-dashboard/internal/infra/db"
	httpinfra "content-dashboard/internal/infra/http"
	infralog "content-dashboard/internal/infra/log"
	"content-dashboard/internal/infra/metrics"
	infraredis "content-dashboard/internal/infra/redis"
	"content-dashboard/internal/usecase/fanout"
	"content-dashboard/internal/usecase/feed"
	"content-dashboard/internal/usecase/preferences"
	"content-dashboard/internal/usecase/search"
)

func main() {
	cfg := config.Load()
	log.Logger = infralog.NewLogger(cfg.AppEnv, cfg.LogFormat)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("api: хранилище недоступно")
	}
	defer store.Close()

	if cfg.NewsAPIKey() == "" {
		log.Warn().Msg("api: NEWS_API_KEY не задан, запросы новостей будут завершаться ошибкой конфигурации")
	}
	if cfg.TMDBAPIKey() == "" {
		log.Warn().Msg("api: TMDB_API_KEY не задан, запросы фильмов будут завершаться ошибкой конфигурации")
	}

	newsClient, err := provider.NewNewsAPI(cfg.NewsAPIKey(), cfg.News.BaseURL, provider.WithTimeout(cfg.Provider.Timeout))
	if err != nil {
		log.Fatal().Err(err).Msg("api: некорректный NEWS_API_BASE_URL")
	}
	tmdbClient, err := provider.NewTMDB(cfg.TMDBAPIKey(), cfg.TMDB.BaseURL, provider.WithTimeout(cfg.Provider.Timeout))
	if err != nil {
		log.Fatal().Err(err).Msg("api: некорректный TMDB_BASE_URL")
	}

	norm := normalizer.New(normalizer.Options{TMDBImageBaseURL: cfg.TMDB.ImageBaseURL})
	gather := fanout.New(fanout.Options{
		Timeout: cfg.Provider.Timeout,
		Retries: cfg.Provider.Retries,
	}, log.With().Str("component", "fanout").Logger())

	feedService := feed.NewService(newsClient, tmdbClient, norm, ranker.NewRandom(), gather, feed.Config{
		DefaultCategories: cfg.Feed.DefaultCategories,
		NewsPerCategory:   cfg.Feed.NewsPerCategory,
		MovieLimit:        cfg.Feed.MovieLimit,
		Country:           cfg.Feed.Country,
	}, log.With().Str("component", "feed").Logger())
	searchService := search.NewService([]search.Branch{
		{Type: domain.ContentTypeNews, Provider: newsClient},
		{Type: domain.ContentTypeMovie, Provider: tmdbClient},
	}, norm, gather, cfg.Feed.SearchBranchLimit, log.With().Str("component", "search").Logger())
	prefsService := preferences.NewService(store, store, cfg.Preferences.DefaultCategories,
		log.With().Str("component", "preferences").Logger())

	api := httpapi.NewServer(feedService, searchService, prefsService,
		httpapi.WithLogger(log.With().Str("component", "httpapi").Logger()))

	srv := httpinfra.NewServer(log.With().Str("component", "http").Logger(), httpinfra.Config{
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	srv.Router.Mount("/", api.Router())

	if cfg.MetricsAddr != "" {
		metrics.StartServer(ctx, log.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)
	}

	go func() {
		if err := srv.Start(":" + strconv.Itoa(cfg.Port)); err != nil {
			log.Error().Err(err).Msg("api: сервер остановлен")
			stop()
		}
	}()
	<-ctx.Done()
	log.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("api: shutdown")
	}
}

func openStore(ctx context.Context, cfg config.AppConfig) (domain.Store, error) {
	logger := log.With().Str("component", "store").Logger()
	switch cfg.Store.Backend {
	case "", "memory":
		logger.Warn().Msg("store: данные хранятся в памяти и пропадут при перезапуске")
		return repo.NewMemory(), nil
	case "redis":
		client, err := infraredis.NewClient(ctx, infraredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		logStore(logger, "redis")
		return repo.NewRedis(client, cfg.Redis.KeyPrefix), nil
	case "postgres":
		pool, err := db.Connect(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		pg := repo.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logStore(logger, "postgres")
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
}

func logStore(logger zerolog.Logger, backend string) {
	logger.Info().Str("backend", backend).Msg("store: подключено")
}
