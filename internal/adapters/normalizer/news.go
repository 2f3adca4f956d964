package normalizer

import (
	"encoding/json"
	"strings"

	"content-dashboard/internal/domain"
)

// removedTitle: заглушка NewsAPI для удалённых статей.
const removedTitle = "[Removed]"

type newsArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

// NormalizeNewsAPI приводит статью NewsAPI к карточке news-<url>.
func NormalizeNewsAPI(raw domain.RawItem) (domain.ContentItem, bool) {
	var a newsArticle
	if err := json.Unmarshal(raw.Payload, &a); err != nil {
		return domain.ContentItem{}, false
	}
	title := strings.TrimSpace(a.Title)
	link := strings.TrimSpace(a.URL)
	if title == "" || title == removedTitle || link == "" {
		return domain.ContentItem{}, false
	}

	meta := map[string]any{}
	setString(meta, "source", a.Source.Name)
	setString(meta, "sourceId", a.Source.ID)
	setString(meta, "author", a.Author)
	setString(meta, "category", raw.Category)

	return domain.ContentItem{
		ID:          "news-" + link,
		Type:        domain.ContentTypeNews,
		Title:       title,
		Description: a.Description,
		ImageURL:    a.URLToImage,
		SourceURL:   link,
		PublishedAt: a.PublishedAt,
		Metadata:    meta,
	}, true
}

func setString(meta map[string]any, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		meta[key] = value
	}
}
