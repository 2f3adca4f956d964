// Package httpapi публикует ленту, поиск, настройки и избранное по HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"content-dashboard/internal/domain"
	"content-dashboard/internal/usecase/preferences"
	"content-dashboard/internal/usecase/search"
)

const (
	statusSuccess = "success"

	defaultPage     = 1
	defaultLimit    = 20
	defaultPageSize = 20
)

// FeedService: агрегатор ленты и прямые выборки провайдеров.
type FeedService interface {
	Aggregate(ctx context.Context, categories []string, page, limit int) (domain.FeedPage, error)
	News(ctx context.Context, q domain.ProviderQuery) (domain.Listing, error)
	Movies(ctx context.Context, category string, page int) (domain.Listing, error)
}

// SearchService: поиск по провайдерам.
type SearchService interface {
	Search(ctx context.Context, query string, contentType domain.ContentType) (search.Result, error)
}

// PreferencesService: настройки и избранное.
type PreferencesService interface {
	Get(ctx context.Context, userID int64) (domain.Preferences, error)
	Save(ctx context.Context, upd preferences.Update) (domain.Preferences, error)
	ListFavorites(ctx context.Context, userID int64) ([]domain.Favorite, error)
	AddFavorite(ctx context.Context, in preferences.FavoriteInput) (domain.Favorite, error)
	RemoveFavorite(ctx context.Context, userID int64, contentID string) error
}

type Server struct {
	feed   FeedService
	search SearchService
	prefs  PreferencesService
	log    zerolog.Logger
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code"`
}

type contentResponse struct {
	Content      []domain.ContentItem `json:"content"`
	TotalResults int                  `json:"totalResults"`
	Page         int                  `json:"page"`
	HasMore      bool                 `json:"hasMore"`
	Status       string               `json:"status"`
	Failures     []string             `json:"failures,omitempty"`
}

type searchResponse struct {
	Results  []domain.ContentItem `json:"results"`
	Query    string               `json:"query"`
	Status   string               `json:"status"`
	Failures []string             `json:"failures,omitempty"`
}

type newsResponse struct {
	Articles     []domain.ContentItem `json:"articles"`
	TotalResults int                  `json:"totalResults"`
	Status       string               `json:"status"`
}

type moviesResponse struct {
	Movies       []domain.ContentItem `json:"movies"`
	TotalResults int                  `json:"totalResults"`
	Status       string               `json:"status"`
}

type savePreferencesRequest struct {
	UserID     int64     `json:"userId"`
	Categories *[]string `json:"categories"`
	DarkMode   *bool     `json:"darkMode"`
}

type addFavoriteRequest struct {
	UserID      int64              `json:"userId"`
	ContentID   string             `json:"contentId"`
	ContentType domain.ContentType `json:"contentType"`
	ContentData json.RawMessage    `json:"contentData"`
}

func NewServer(feed FeedService, search SearchService, prefs PreferencesService, opts ...Option) *Server {
	srv := &Server{feed: feed, search: search, prefs: prefs, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/content", s.handleContent)
	r.Get("/api/search", s.handleSearch)
	r.Get("/api/news", s.handleNews)
	r.Get("/api/movies", s.handleMovies)

	r.Get("/api/preferences/{userID}", s.handleGetPreferences)
	r.Post("/api/preferences", s.handleSavePreferences)

	r.Get("/api/favorites/{userID}", s.handleListFavorites)
	r.Post("/api/favorites", s.handleAddFavorite)
	// contentId может содержать "/" (id новостей строится из URL статьи).
	r.Delete("/api/favorites/{userID}/*", s.handleRemoveFavorite)

	return r
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q, "page", defaultPage)
	if err != nil {
		s.fail(w, r, "Failed to fetch content", err)
		return
	}
	limit, err := intParam(q, "limit", defaultLimit)
	if err != nil {
		s.fail(w, r, "Failed to fetch content", err)
		return
	}
	var categories []string
	if raw := q.Get("categories"); raw != "" {
		categories = strings.Split(raw, ",")
	}
	feed, err := s.feed.Aggregate(r.Context(), categories, page, limit)
	if err != nil {
		s.fail(w, r, "Failed to fetch content", err)
		return
	}
	writeJSON(w, http.StatusOK, contentResponse{
		Content:      feed.Items,
		TotalResults: feed.TotalResults,
		Page:         feed.Page,
		HasMore:      feed.HasMore,
		Status:       statusSuccess,
		Failures:     feed.Failures,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "Query parameter is required", "")
		return
	}
	contentType := domain.ContentType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
	res, err := s.search.Search(r.Context(), query, contentType)
	if err != nil {
		s.fail(w, r, "Search failed", err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: res.Items, Query: query, Status: statusSuccess, Failures: res.Failures})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageSize, err := intParam(q, "pageSize", defaultPageSize)
	if err != nil {
		s.fail(w, r, "Failed to fetch news", err)
		return
	}
	page, err := intParam(q, "page", defaultPage)
	if err != nil {
		s.fail(w, r, "Failed to fetch news", err)
		return
	}
	listing, err := s.feed.News(r.Context(), domain.ProviderQuery{
		Category: strings.ToLower(strings.TrimSpace(q.Get("category"))),
		Country:  strings.ToLower(strings.TrimSpace(q.Get("country"))),
		PageSize: pageSize,
		Page:     page,
	})
	if err != nil {
		s.fail(w, r, "Failed to fetch news", err)
		return
	}
	writeJSON(w, http.StatusOK, newsResponse{Articles: listing.Items, TotalResults: listing.TotalResults, Status: statusSuccess})
}

func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q, "page", defaultPage)
	if err != nil {
		s.fail(w, r, "Failed to fetch movies", err)
		return
	}
	listing, err := s.feed.Movies(r.Context(), strings.ToLower(strings.TrimSpace(q.Get("category"))), page)
	if err != nil {
		s.fail(w, r, "Failed to fetch movies", err)
		return
	}
	writeJSON(w, http.StatusOK, moviesResponse{Movies: listing.Items, TotalResults: listing.TotalResults, Status: statusSuccess})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		s.fail(w, r, "Failed to get preferences", err)
		return
	}
	prefs, err := s.prefs.Get(r.Context(), userID)
	if err != nil {
		s.fail(w, r, "Failed to get preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var req savePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid preferences data", err.Error())
		return
	}
	prefs, err := s.prefs.Save(r.Context(), preferences.Update{
		UserID:     req.UserID,
		Categories: req.Categories,
		DarkMode:   req.DarkMode,
	})
	if err != nil {
		s.fail(w, r, "Failed to save preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		s.fail(w, r, "Failed to get favorites", err)
		return
	}
	favs, err := s.prefs.ListFavorites(r.Context(), userID)
	if err != nil {
		s.fail(w, r, "Failed to get favorites", err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid favorite data", err.Error())
		return
	}
	fav, err := s.prefs.AddFavorite(r.Context(), preferences.FavoriteInput(req))
	if err != nil {
		s.fail(w, r, "Failed to add favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, fav)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		s.fail(w, r, "Failed to remove favorite", err)
		return
	}
	contentID := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(contentID); err == nil {
			contentID = unescaped
		}
	}
	if err := s.prefs.RemoveFavorite(r.Context(), userID, contentID); err != nil {
		s.fail(w, r, "Failed to remove favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// fail переводит ошибку в HTTP-ответ. message описывает операцию для 5xx.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	var (
		vErr    *domain.ValidationError
		cfgErr  *domain.ConfigurationError
		provErr *domain.ProviderError
	)
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "invalid_request", vErr.Error(), "")
	case errors.Is(err, domain.ErrFavoriteNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Favorite not found", "")
	case errors.As(err, &cfgErr):
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("provider is not configured")
		writeError(w, http.StatusInternalServerError, "configuration_error", message, err.Error())
	case errors.As(err, &provErr):
		s.log.Warn().Err(err).Str("path", r.URL.Path).Str("provider", provErr.Provider).Msg("upstream request failed")
		writeError(w, http.StatusBadGateway, "provider_error", message, err.Error())
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", message, "")
	}
}

func intParam(q url.Values, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid(name, "must be an integer")
	}
	return v, nil
}

func userIDParam(r *http.Request) (int64, error) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, domain.Invalid("userId", "must be a positive integer")
	}
	return userID, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message, detail string) {
	writeJSON(w, status, errorResponse{Message: message, Error: detail, Code: code})
}
