// Package normalizer приводит записи провайдеров к domain.ContentItem.
// Вся привязка к полям конкретных провайдеров живёт здесь.
package normalizer

import (
	"strings"

	"content-dashboard/internal/adapters/provider"
	"content-dashboard/internal/domain"
)

const defaultImageBaseURL = "https://image.tmdb.org/t/p/w500"

// Func нормализует одну запись конкретного провайдера.
type Func func(raw domain.RawItem) (domain.ContentItem, bool)

// Options задаёт параметры встроенных нормализаторов.
type Options struct {
	TMDBImageBaseURL string
}

// Registry: таблица нормализаторов по имени провайдера.
// Заполняется при создании и дальше только читается.
type Registry struct {
	funcs map[string]Func
}

var _ domain.Normalizer = (*Registry)(nil)

// New создаёт реестр с нормализаторами NewsAPI и TMDB.
func New(opts Options) *Registry {
	imageBase := strings.TrimRight(opts.TMDBImageBaseURL, "/")
	if imageBase == "" {
		imageBase = defaultImageBaseURL
	}
	r := &Registry{funcs: make(map[string]Func)}
	r.Register(provider.NewsAPIName, NormalizeNewsAPI)
	r.Register(provider.TMDBName, tmdbNormalizer(imageBase))
	return r
}

// Register добавляет или заменяет нормализатор провайдера.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Normalize приводит запись к ContentItem. Неизвестный провайдер и неполные записи отбрасываются.
func (r *Registry) Normalize(name string, raw domain.RawItem) (domain.ContentItem, bool) {
	fn, ok := r.funcs[name]
	if !ok {
		return domain.ContentItem{}, false
	}
	item, ok := fn(raw)
	if !ok || item.ID == "" || item.Title == "" || !item.Type.Valid() {
		return domain.ContentItem{}, false
	}
	if item.Metadata == nil {
		item.Metadata = map[string]any{}
	}
	return item, true
}
