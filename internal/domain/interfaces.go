package domain

import "context"

// Provider выполняет один запрос к внешнему источнику контента.
// Любой сбой возвращается значением ошибки: *ProviderError или *ConfigurationError.
type Provider interface {
	Name() string
	FetchBatch(ctx context.Context, query ProviderQuery) (ProviderBatch, error)
}

// CategorizedProvider дополнительно знает, какие рубрики поддерживает источник.
type CategorizedProvider interface {
	Provider
	Categories() []string
}

// Normalizer приводит сырую запись провайдера к ContentItem.
// ok=false означает, что запись отброшена.
type Normalizer interface {
	Normalize(provider string, raw RawItem) (item ContentItem, ok bool)
}

// ShuffleStrategy задаёт порядок карточек в ленте.
type ShuffleStrategy interface {
	Shuffle(items []ContentItem)
}

// PreferencesRepo управляет настройками пользователей.
type PreferencesRepo interface {
	GetPreferences(ctx context.Context, userID int64) (Preferences, error)
	// EnsurePreferences атомарно создаёт запись из defaults, если её нет,
	// и возвращает сохранённое значение.
	EnsurePreferences(ctx context.Context, defaults Preferences) (Preferences, error)
	SavePreferences(ctx context.Context, prefs Preferences) (Preferences, error)
}

// FavoritesRepo управляет избранным.
type FavoritesRepo interface {
	ListFavorites(ctx context.Context, userID int64) ([]Favorite, error)
	AddFavorite(ctx context.Context, fav Favorite) (Favorite, error)
	RemoveFavorite(ctx context.Context, userID int64, contentID string) error
}

// Store объединяет хранилища, которыми пользуется API.
type Store interface {
	PreferencesRepo
	FavoritesRepo
	Close() error
}
