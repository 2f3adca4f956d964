package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/samber/lo"

	"content-dashboard/internal/domain"
)

const (
	// TMDBName: ключ провайдера фильмов в реестре нормализатора.
	TMDBName = "tmdb"

	defaultTMDBURL = "https://api.themoviedb.org"
)

var movieCategories = []string{"popular", "top_rated", "upcoming", "now_playing"}

// TMDB: клиент The Movie Database API v3.
type TMDB struct {
	base   baseClient
	apiKey string
}

var _ domain.CategorizedProvider = (*TMDB)(nil)

type tmdbResponse struct {
	Page          int               `json:"page"`
	Results       []json.RawMessage `json:"results"`
	TotalResults  int               `json:"total_results"`
	Success       *bool             `json:"success"`
	StatusMessage string            `json:"status_message"`
}

// NewTMDB создаёт клиента TMDB.
func NewTMDB(apiKey, baseURL string, opts ...Option) (*TMDB, error) {
	base, err := newBaseClient(TMDBName, baseURL, defaultTMDBURL, opts...)
	if err != nil {
		return nil, err
	}
	return &TMDB{base: base, apiKey: apiKey}, nil
}

// Name возвращает имя провайдера.
func (c *TMDB) Name() string { return TMDBName }

// Categories возвращает подборки, доступные в /3/movie.
func (c *TMDB) Categories() []string { return MovieCategories() }

// MovieCategories возвращает поддерживаемые подборки фильмов.
func MovieCategories() []string {
	return append([]string(nil), movieCategories...)
}

// IsMovieCategory сообщает, существует ли подборка.
func IsMovieCategory(category string) bool {
	return lo.Contains(movieCategories, category)
}

// FetchBatch запрашивает подборку фильмов либо выполняет поиск по Search.
func (c *TMDB) FetchBatch(ctx context.Context, q domain.ProviderQuery) (domain.ProviderBatch, error) {
	if c.apiKey == "" {
		return domain.ProviderBatch{}, &domain.ConfigurationError{Provider: TMDBName, Setting: "TMDB_API_KEY"}
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	var endpoint, operation, target, category string
	if q.Search != "" {
		endpoint, operation, target = "/3/search/movie", "search_movie", "search"
		params.Set("query", q.Search)
	} else {
		category = q.Category
		if category == "" {
			category = "popular"
		}
		if !IsMovieCategory(category) {
			return domain.ProviderBatch{}, c.base.fail(fmt.Errorf("unsupported category %q", category))
		}
		endpoint, operation, target = "/3/movie/"+category, "movie_list", category
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	var resp tmdbResponse
	if err := c.base.getJSON(ctx, operation, endpoint, params, target, &resp); err != nil {
		return domain.ProviderBatch{}, err
	}
	if resp.Success != nil && !*resp.Success {
		msg := resp.StatusMessage
		if msg == "" {
			msg = "provider reported error"
		}
		return domain.ProviderBatch{}, c.base.fail(errors.New(msg))
	}

	return domain.ProviderBatch{
		Provider:     TMDBName,
		Items:        rawItems(TMDBName, category, resp.Results),
		TotalResults: resp.TotalResults,
	}, nil
}
