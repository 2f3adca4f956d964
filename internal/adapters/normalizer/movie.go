package normalizer

import (
	"encoding/json"
	"strconv"
	"strings"

	"content-dashboard/internal/domain"
)

const tmdbMovieURL = "https://www.themoviedb.org/movie/"

type tmdbMovie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	GenreIDs         []int   `json:"genre_ids"`
	Adult            bool    `json:"adult"`
}

func tmdbNormalizer(imageBase string) Func {
	return func(raw domain.RawItem) (domain.ContentItem, bool) {
		var m tmdbMovie
		if err := json.Unmarshal(raw.Payload, &m); err != nil {
			return domain.ContentItem{}, false
		}
		title := strings.TrimSpace(m.Title)
		if title == "" {
			title = strings.TrimSpace(m.OriginalTitle)
		}
		if m.ID <= 0 || title == "" {
			return domain.ContentItem{}, false
		}

		id := strconv.FormatInt(m.ID, 10)
		var image string
		if m.PosterPath != "" {
			image = imageBase + "/" + strings.TrimLeft(m.PosterPath, "/")
		}
		genres := m.GenreIDs
		if genres == nil {
			genres = []int{}
		}
		meta := map[string]any{
			"rating":     m.VoteAverage,
			"voteCount":  m.VoteCount,
			"genres":     genres,
			"adult":      m.Adult,
			"popularity": m.Popularity,
		}
		setString(meta, "originalLanguage", m.OriginalLanguage)
		setString(meta, "category", raw.Category)

		return domain.ContentItem{
			ID:          "movie-" + id,
			Type:        domain.ContentTypeMovie,
			Title:       title,
			Description: m.Overview,
			ImageURL:    image,
			SourceURL:   tmdbMovieURL + id,
			PublishedAt: m.ReleaseDate,
			Metadata:    meta,
		}, true
	}
}
