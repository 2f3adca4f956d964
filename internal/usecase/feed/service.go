package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"content-dashboard/internal/adapters/ranker"
	"content-dashboard/internal/domain"
	"content-dashboard/internal/infra/metrics"
	"content-dashboard/internal/usecase/fanout"
)

const (
	defaultMovieCategory = "popular"
	maxPageSize          = 100
)

// Config задаёт состав ленты.
type Config struct {
	// DefaultCategories используются, когда пользователь не выбрал рубрики.
	DefaultCategories []string
	NewsPerCategory   int
	MovieLimit        int
	MovieCategory     string
	Country           string
}

// Service агрегирует контент провайдеров в единую ленту.
type Service struct {
	news       domain.CategorizedProvider
	movies     domain.CategorizedProvider
	normalizer domain.Normalizer
	shuffle    domain.ShuffleStrategy
	gather     *fanout.Gatherer
	cfg        Config
	log        zerolog.Logger
}

// NewService создаёт сервис ленты.
func NewService(news, movies domain.CategorizedProvider, normalizer domain.Normalizer, shuffle domain.ShuffleStrategy, gather *fanout.Gatherer, cfg Config, logger zerolog.Logger) *Service {
	if shuffle == nil {
		shuffle = ranker.NewRandom()
	}
	if cfg.MovieCategory == "" {
		cfg.MovieCategory = defaultMovieCategory
	}
	if len(cfg.DefaultCategories) == 0 {
		cfg.DefaultCategories = []string{"technology", "business"}
	}
	return &Service{news: news, movies: movies, normalizer: normalizer, shuffle: shuffle, gather: gather, cfg: cfg, log: logger}
}

// WorkingCategories возвращает рубрики, по которым будут запрошены новости:
// значения по умолчанию для пустого ввода, иначе пересечение с рубриками провайдера.
func (s *Service) WorkingCategories(requested []string) []string {
	cleaned := lo.Uniq(lo.FilterMap(requested, func(c string, _ int) (string, bool) {
		c = strings.ToLower(strings.TrimSpace(c))
		return c, c != ""
	}))
	if len(cleaned) == 0 {
		return append([]string(nil), s.cfg.DefaultCategories...)
	}
	known := s.news.Categories()
	return lo.Filter(cleaned, func(c string, _ int) bool { return lo.Contains(known, c) })
}

// Aggregate собирает ленту: по запросу на каждую рубрику плюс подборка фильмов,
// затем нормализация, перемешивание и срез страницы.
func (s *Service) Aggregate(ctx context.Context, categories []string, page, limit int) (domain.FeedPage, error) {
	if page < 1 {
		return domain.FeedPage{}, domain.Invalid("page", "must be a positive integer")
	}
	if limit < 1 || limit > maxPageSize {
		return domain.FeedPage{}, domain.Invalid("limit", "must be between 1 and %d", maxPageSize)
	}
	start := time.Now()
	defer func() { metrics.FeedBuildSeconds.Observe(time.Since(start).Seconds()) }()

	working := s.WorkingCategories(categories)
	calls := make([]fanout.Call, 0, len(working)+1)
	for _, category := range working {
		calls = append(calls, fanout.Call{
			Label:    s.news.Name() + ":" + category,
			Provider: s.news,
			Query:    domain.ProviderQuery{Category: category, Country: s.cfg.Country, PageSize: s.cfg.NewsPerCategory, Page: 1},
		})
	}
	calls = append(calls, fanout.Call{
		Label:    s.movies.Name() + ":" + s.cfg.MovieCategory,
		Provider: s.movies,
		Query:    domain.ProviderQuery{Category: s.cfg.MovieCategory, Page: 1},
	})

	results := s.gather.Gather(ctx, calls)
	if err := fanout.ConfigurationError(results); err != nil {
		return domain.FeedPage{}, err
	}

	var (
		pool     []domain.ContentItem
		failures []string
	)
	for _, res := range results {
		if res.Err != nil {
			failures = append(failures, res.Call.Label)
			continue
		}
		raws := res.Batch.Items
		if res.Call.Provider == s.movies {
			raws = capItems(raws, s.cfg.MovieLimit)
		} else {
			raws = capItems(raws, s.cfg.NewsPerCategory)
		}
		pool = append(pool, s.normalize(res.Call.Provider.Name(), raws)...)
	}
	pool = ranker.DeduplicateByID(pool)
	s.shuffle.Shuffle(pool)

	total := len(pool)
	window, hasMore := pageWindow(pool, page, limit)

	s.log.Debug().
		Strs("categories", working).
		Int("total", total).
		Int("page", page).
		Strs("failures", failures).
		Msg("feed: aggregated")

	return domain.FeedPage{
		Items:        window,
		TotalResults: total,
		Page:         page,
		HasMore:      hasMore,
		Failures:     failures,
	}, nil
}

// News возвращает заголовки одной рубрики без перемешивания.
func (s *Service) News(ctx context.Context, q domain.ProviderQuery) (domain.Listing, error) {
	if q.Category == "" {
		q.Category = "general"
	}
	if !lo.Contains(s.news.Categories(), q.Category) {
		return domain.Listing{}, domain.Invalid("category", "unsupported news category %q", q.Category)
	}
	if q.Country == "" {
		q.Country = s.cfg.Country
	}
	if q.PageSize < 1 || q.PageSize > maxPageSize {
		return domain.Listing{}, domain.Invalid("pageSize", "must be between 1 and %d", maxPageSize)
	}
	if q.Page < 1 {
		return domain.Listing{}, domain.Invalid("page", "must be a positive integer")
	}
	return s.list(ctx, s.news, q)
}

// Movies возвращает подборку фильмов.
func (s *Service) Movies(ctx context.Context, category string, page int) (domain.Listing, error) {
	if category == "" {
		category = s.cfg.MovieCategory
	}
	if !lo.Contains(s.movies.Categories(), category) {
		return domain.Listing{}, domain.Invalid("category", "unsupported movie category %q", category)
	}
	if page < 1 {
		return domain.Listing{}, domain.Invalid("page", "must be a positive integer")
	}
	return s.list(ctx, s.movies, domain.ProviderQuery{Category: category, Page: page})
}

func (s *Service) list(ctx context.Context, p domain.Provider, q domain.ProviderQuery) (domain.Listing, error) {
	results := s.gather.Gather(ctx, []fanout.Call{{Label: p.Name() + ":" + q.Category, Provider: p, Query: q}})
	res := results[0]
	if res.Err != nil {
		var provErr *domain.ProviderError
		if errors.As(res.Err, &provErr) || domain.IsConfigurationError(res.Err) {
			return domain.Listing{}, res.Err
		}
		return domain.Listing{}, fmt.Errorf("%s: %w", p.Name(), res.Err)
	}
	items := ranker.DeduplicateByID(s.normalize(p.Name(), res.Batch.Items))
	return domain.Listing{Items: items, TotalResults: res.Batch.TotalResults}, nil
}

func (s *Service) normalize(provider string, raws []domain.RawItem) []domain.ContentItem {
	items := make([]domain.ContentItem, 0, len(raws))
	for _, raw := range raws {
		if item, ok := s.normalizer.Normalize(provider, raw); ok {
			items = append(items, item)
		}
	}
	metrics.AddDropped(provider, len(raws)-len(items))
	return items
}

// pageWindow вырезает страницу page размером limit. Страница за концом
// списка пуста; произведение (page-1)*limit не вычисляется, пока не ясно,
// что оно меньше len(pool).
func pageWindow(pool []domain.ContentItem, page, limit int) ([]domain.ContentItem, bool) {
	total := len(pool)
	window := []domain.ContentItem{}
	if page-1 > (total-1)/limit || total == 0 {
		return window, false
	}
	offset := (page - 1) * limit
	end := offset + min(limit, total-offset)
	window = append(window, pool[offset:end]...)
	return window, offset < total-limit
}

func capItems(items []domain.RawItem, limit int) []domain.RawItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
