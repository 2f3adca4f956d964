package normalizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-dashboard/internal/adapters/provider"
	"content-dashboard/internal/domain"
)

func raw(t *testing.T, name, category string, v any) domain.RawItem {
	t.Helper()
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	return domain.RawItem{Provider: name, Category: category, Payload: payload}
}

func TestNormalizeNewsArticle(t *testing.T) {
	r := New(Options{})
	item, ok := r.Normalize(provider.NewsAPIName, raw(t, provider.NewsAPIName, "technology", map[string]any{
		"source":      map[string]any{"id": nil, "name": "The Verge"},
		"author":      "Jane Doe",
		"title":       " New chips ",
		"description": "Faster chips",
		"url":         "https://example.com/chips",
		"urlToImage":  "https://example.com/chips.jpg",
		"publishedAt": "2024-05-01T10:00:00Z",
	}))
	require.True(t, ok)
	assert.Equal(t, "news-https://example.com/chips", item.ID)
	assert.Equal(t, domain.ContentTypeNews, item.Type)
	assert.Equal(t, "New chips", item.Title)
	assert.Equal(t, "https://example.com/chips", item.SourceURL)
	assert.Equal(t, "https://example.com/chips.jpg", item.ImageURL)
	assert.Equal(t, "2024-05-01T10:00:00Z", item.PublishedAt)
	assert.Equal(t, map[string]any{"source": "The Verge", "author": "Jane Doe", "category": "technology"}, item.Metadata)
}

func TestNormalizeNewsDropsUnusable(t *testing.T) {
	r := New(Options{})
	cases := map[string]domain.RawItem{
		"no title":   raw(t, provider.NewsAPIName, "", map[string]any{"url": "https://example.com/a"}),
		"no url":     raw(t, provider.NewsAPIName, "", map[string]any{"title": "Headline"}),
		"removed":    raw(t, provider.NewsAPIName, "", map[string]any{"title": "[Removed]", "url": "https://removed.com"}),
		"not object": {Provider: provider.NewsAPIName, Payload: json.RawMessage(`"just a string"`)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := r.Normalize(provider.NewsAPIName, in)
			assert.False(t, ok)
		})
	}
}

func TestNormalizeMovie(t *testing.T) {
	r := New(Options{TMDBImageBaseURL: "https://img.example/w500/"})
	item, ok := r.Normalize(provider.TMDBName, raw(t, provider.TMDBName, "popular", map[string]any{
		"id":                550,
		"title":             "Fight Club",
		"overview":          "An insomniac office worker...",
		"poster_path":       "/poster.jpg",
		"release_date":      "1999-10-15",
		"vote_average":      8.4,
		"vote_count":        26280,
		"genre_ids":         []int{18, 53},
		"adult":             false,
		"original_language": "en",
	}))
	require.True(t, ok)
	assert.Equal(t, "movie-550", item.ID)
	assert.Equal(t, domain.ContentTypeMovie, item.Type)
	assert.Equal(t, "https://img.example/w500/poster.jpg", item.ImageURL)
	assert.Equal(t, "https://www.themoviedb.org/movie/550", item.SourceURL)
	assert.Equal(t, "1999-10-15", item.PublishedAt)
	assert.Equal(t, 8.4, item.Metadata["rating"])
	assert.Equal(t, int64(26280), item.Metadata["voteCount"])
	assert.Equal(t, []int{18, 53}, item.Metadata["genres"])
	assert.Equal(t, false, item.Metadata["adult"])
	assert.Equal(t, "en", item.Metadata["originalLanguage"])
	assert.Equal(t, "popular", item.Metadata["category"])
}

func TestNormalizeMovieWithoutPoster(t *testing.T) {
	r := New(Options{})
	item, ok := r.Normalize(provider.TMDBName, raw(t, provider.TMDBName, "", map[string]any{"id": 7, "title": "Untitled", "poster_path": nil}))
	require.True(t, ok)
	assert.Empty(t, item.ImageURL)
	assert.Equal(t, []int{}, item.Metadata["genres"])
	_, hasCategory := item.Metadata["category"]
	assert.False(t, hasCategory)
}

func TestNormalizeMovieDropsUnusable(t *testing.T) {
	r := New(Options{})
	_, ok := r.Normalize(provider.TMDBName, raw(t, provider.TMDBName, "", map[string]any{"title": "No id"}))
	assert.False(t, ok)
	_, ok = r.Normalize(provider.TMDBName, raw(t, provider.TMDBName, "", map[string]any{"id": 3, "title": "  "}))
	assert.False(t, ok)
	item, ok := r.Normalize(provider.TMDBName, raw(t, provider.TMDBName, "", map[string]any{"id": 3, "original_title": "Amélie"}))
	require.True(t, ok)
	assert.Equal(t, "Amélie", item.Title)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	r := New(Options{})
	inputs := []struct {
		name string
		raw  domain.RawItem
	}{
		{provider.NewsAPIName, raw(t, provider.NewsAPIName, "science", map[string]any{"title": "Mars", "url": "https://example.com/mars", "author": "A"})},
		{provider.TMDBName, raw(t, provider.TMDBName, "popular", map[string]any{"id": 1, "title": "Dune", "genre_ids": []int{878}})},
	}
	for _, in := range inputs {
		first, ok := r.Normalize(in.name, in.raw)
		require.True(t, ok)
		second, ok := r.Normalize(in.name, in.raw)
		require.True(t, ok)
		assert.Equal(t, first, second)
	}
}

func TestNormalizeUnknownProvider(t *testing.T) {
	r := New(Options{})
	_, ok := r.Normalize("spotify", raw(t, "spotify", "", map[string]any{"title": "Song"}))
	assert.False(t, ok)
}

func TestRegisterRejectsInvalidType(t *testing.T) {
	r := New(Options{})
	r.Register("podcasts", func(domain.RawItem) (domain.ContentItem, bool) {
		return domain.ContentItem{ID: "podcast-1", Type: "podcast", Title: "Episode"}, true
	})
	_, ok := r.Normalize("podcasts", domain.RawItem{})
	assert.False(t, ok, "unknown content type must be dropped")

	r.Register("music", func(domain.RawItem) (domain.ContentItem, bool) {
		return domain.ContentItem{ID: "music-1", Type: domain.ContentTypeMusic, Title: "Track"}, true
	})
	item, ok := r.Normalize("music", domain.RawItem{})
	require.True(t, ok)
	assert.NotNil(t, item.Metadata)
}
