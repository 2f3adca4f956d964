package domain

import (
	"encoding/json"
	"time"
)

// ContentType перечисляет допустимые типы карточек ленты.
type ContentType string

const (
	ContentTypeNews   ContentType = "news"
	ContentTypeMovie  ContentType = "movie"
	ContentTypeSocial ContentType = "social"
	ContentTypeSports ContentType = "sports"
	ContentTypeMusic  ContentType = "music"
)

// ContentTypes возвращает все известные типы в каноничном порядке.
func ContentTypes() []ContentType {
	return []ContentType{ContentTypeNews, ContentTypeMovie, ContentTypeSocial, ContentTypeSports, ContentTypeMusic}
}

// Valid сообщает, входит ли тип в перечисление.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeNews, ContentTypeMovie, ContentTypeSocial, ContentTypeSports, ContentTypeMusic:
		return true
	}
	return false
}

// ContentItem: единая карточка ленты, в которую приводится ответ любого провайдера.
// PublishedAt хранится строкой провайдера без переформатирования.
type ContentItem struct {
	ID          string         `json:"id"`
	Type        ContentType    `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	SourceURL   string         `json:"sourceUrl,omitempty"`
	PublishedAt string         `json:"publishedAt,omitempty"`
	Metadata    map[string]any `json:"metadata"`
}

// Preferences хранит пользовательские настройки дашборда.
type Preferences struct {
	UserID     int64     `json:"userId"`
	Categories []string  `json:"categories"`
	DarkMode   bool      `json:"darkMode"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Favorite: снимок карточки, сохранённый пользователем.
type Favorite struct {
	ID          string          `json:"id"`
	UserID      int64           `json:"userId"`
	ContentID   string          `json:"contentId"`
	ContentType ContentType     `json:"contentType"`
	ContentData json.RawMessage `json:"contentData"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ProviderQuery описывает один запрос к внешнему провайдеру.
// Непустой Search переключает провайдера в режим полнотекстового поиска.
type ProviderQuery struct {
	Category string
	Country  string
	PageSize int
	Page     int
	Search   string
}

// RawItem: необработанная запись провайдера вместе с контекстом запроса.
type RawItem struct {
	Provider string
	Category string
	Payload  json.RawMessage
}

// ProviderBatch: успешный ответ провайдера до нормализации.
type ProviderBatch struct {
	Provider     string
	Items        []RawItem
	TotalResults int
}

// FeedPage: страница агрегированной ленты.
type FeedPage struct {
	Items        []ContentItem
	TotalResults int
	Page         int
	HasMore      bool
	// Failures перечисляет ветки, не вернувшие данных, в виде "provider:category".
	Failures []string
}

// Listing: ответ прямого запроса к одному провайдеру.
type Listing struct {
	Items        []ContentItem
	TotalResults int
}
