package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-dashboard/internal/domain"
)

func newsServer(t *testing.T, handler http.HandlerFunc) (*NewsAPI, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewNewsAPI("news-secret", srv.URL)
	require.NoError(t, err)
	return client, srv
}

func tmdbServer(t *testing.T, handler http.HandlerFunc) (*TMDB, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewTMDB("tmdb-secret", srv.URL)
	require.NoError(t, err)
	return client, srv
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewsAPI_FetchHeadlines(t *testing.T) {
	client, _ := newsServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/top-headlines", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "news-secret", q.Get("apiKey"))
		assert.Equal(t, "us", q.Get("country"))
		assert.Equal(t, "technology", q.Get("category"))
		assert.Equal(t, "5", q.Get("pageSize"))
		assert.Equal(t, "2", q.Get("page"))
		writeBody(w, http.StatusOK, map[string]any{
			"status":       "ok",
			"totalResults": 37,
			"articles": []map[string]any{
				{"title": "Chips", "url": "https://example.com/chips", "source": map[string]any{"name": "Wire"}},
				{"title": "Cloud", "url": "https://example.com/cloud", "newField": "ignored"},
			},
		})
	})

	batch, err := client.FetchBatch(context.Background(), domain.ProviderQuery{Category: "technology", Country: "us", PageSize: 5, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, NewsAPIName, batch.Provider)
	assert.Equal(t, 37, batch.TotalResults)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, "technology", batch.Items[0].Category)
	assert.Equal(t, NewsAPIName, batch.Items[0].Provider)
	assert.Contains(t, string(batch.Items[1].Payload), "https://example.com/cloud")
}

func TestNewsAPI_SearchUsesEverything(t *testing.T) {
	client, _ := newsServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/everything", r.URL.Path)
		assert.Equal(t, "golang generics", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("pageSize"))
		assert.Empty(t, r.URL.Query().Get("category"))
		writeBody(w, http.StatusOK, map[string]any{"status": "ok", "articles": []any{}})
	})

	batch, err := client.FetchBatch(context.Background(), domain.ProviderQuery{Search: "golang generics", PageSize: 10})
	require.NoError(t, err)
	assert.NotNil(t, batch.Items)
	assert.Empty(t, batch.Items)
}

func TestNewsAPI_MissingKeyIsConfigurationError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()
	client, err := NewNewsAPI("", srv.URL)
	require.NoError(t, err)

	_, err = client.FetchBatch(context.Background(), domain.ProviderQuery{Category: "business"})
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "NEWS_API_KEY", cfgErr.Setting)
	assert.Zero(t, calls.Load(), "request must not be sent without a key")
}

func TestNewsAPI_ErrorStatusIsProviderError(t *testing.T) {
	client, _ := newsServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusUnauthorized, map[string]any{"status": "error", "code": "apiKeyInvalid", "message": "Your API key is invalid"})
	})

	_, err := client.FetchBatch(context.Background(), domain.ProviderQuery{Category: "business"})
	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, NewsAPIName, provErr.Provider)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "apiKeyInvalid")
}

func TestNewsAPI_ErrorFieldOnSuccessStatus(t *testing.T) {
	client, _ := newsServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, map[string]any{"status": "error", "code": "rateLimited", "message": "too many requests"})
	})

	_, err := client.FetchBatch(context.Background(), domain.ProviderQuery{Category: "business"})
	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, err.Error(), "rateLimited")
}

func TestNewsAPI_MalformedBody(t *testing.T) {
	client, _ := newsServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>oops</html>"))
	})

	_, err := client.FetchBatch(context.Background(), domain.ProviderQuery{Category: "business"})
	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, err.Error(), "decode response")
}

func TestNewsAPI_NetworkErrorDoesNotLeakKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	client, err := NewNewsAPI("news-secret", url)
	require.NoError(t, err)

	_, err = client.FetchBatch(context.Background(), domain.ProviderQuery{Category: "business"})
	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.NotContains(t, err.Error(), "news-secret")
}

func TestNewsAPI_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)
	client, err := NewNewsAPI("news-secret", srv.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.FetchBatch(context.Background(), domain.ProviderQuery{Category: "business"})
	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
}

func TestNewsAPI_Categories(t *testing.T) {
	client, err := NewNewsAPI("k", "")
	require.NoError(t, err)
	cats := client.Categories()
	assert.Contains(t, cats, "technology")
	assert.Contains(t, cats, "general")
	cats[0] = "mutated"
	assert.True(t, IsNewsCategory("business"))
	assert.False(t, IsNewsCategory("crypto"))
}

func TestTMDB_FetchPopular(t *testing.T) {
	client, _ := tmdbServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/movie/popular", r.URL.Path)
		assert.Equal(t, "tmdb-secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		writeBody(w, http.StatusOK, map[string]any{
			"page":          1,
			"total_results": 1000,
			"results":       []map[string]any{{"id": 550, "title": "Fight Club"}},
		})
	})

	batch, err := client.FetchBatch(context.Background(), domain.ProviderQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 1000, batch.TotalResults)
	require.Len(t, batch.Items, 1)
	assert.Equal(t, "popular", batch.Items[0].Category)
}

func TestTMDB_Search(t *testing.T) {
	client, _ := tmdbServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/search/movie", r.URL.Path)
		assert.Equal(t, "blade runner", r.URL.Query().Get("query"))
		writeBody(w, http.StatusOK, map[string]any{"results": []map[string]any{{"id": 78, "title": "Blade Runner"}}})
	})

	batch, err := client.FetchBatch(context.Background(), domain.ProviderQuery{Search: "blade runner"})
	require.NoError(t, err)
	require.Len(t, batch.Items, 1)
	assert.Empty(t, batch.Items[0].Category)
}

func TestTMDB_SuccessFalse(t *testing.T) {
	client, _ := tmdbServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusUnauthorized, map[string]any{"success": false, "status_code": 7, "status_message": "Invalid API key: You must be granted a valid key."})
	})

	_, err := client.FetchBatch(context.Background(), domain.ProviderQuery{Category: "popular"})
	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, err.Error(), "Invalid API key")
	assert.NotContains(t, err.Error(), "tmdb-secret")
}

func TestTMDB_UnsupportedCategory(t *testing.T) {
	var calls atomic.Int32
	client, _ := tmdbServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := client.FetchBatch(context.Background(), domain.ProviderQuery{Category: "../account"})
	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Zero(t, calls.Load())
}

func TestTMDB_MissingKey(t *testing.T) {
	client, err := NewTMDB("", "")
	require.NoError(t, err)
	_, err = client.FetchBatch(context.Background(), domain.ProviderQuery{})
	assert.True(t, domain.IsConfigurationError(err))
	assert.False(t, errors.Is(err, context.Canceled))
	assert.True(t, strings.Contains(err.Error(), "TMDB_API_KEY"))
}
