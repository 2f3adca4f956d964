package repo

import (
	"context"
	"slices"
	"sync"

	"content-dashboard/internal/domain"
)

// Memory хранит настройки и избранное в памяти процесса.
type Memory struct {
	mu        sync.RWMutex
	prefs     map[int64]domain.Preferences
	favorites map[int64][]domain.Favorite
}

var _ domain.Store = (*Memory)(nil)

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{
		prefs:     make(map[int64]domain.Preferences),
		favorites: make(map[int64][]domain.Favorite),
	}
}

func (m *Memory) GetPreferences(_ context.Context, userID int64) (domain.Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefs, ok := m.prefs[userID]
	if !ok {
		return domain.Preferences{}, domain.ErrPreferencesNotFound
	}
	return clonePreferences(prefs), nil
}

func (m *Memory) EnsurePreferences(_ context.Context, defaults domain.Preferences) (domain.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prefs, ok := m.prefs[defaults.UserID]; ok {
		return clonePreferences(prefs), nil
	}
	m.prefs[defaults.UserID] = clonePreferences(defaults)
	return clonePreferences(defaults), nil
}

func (m *Memory) SavePreferences(_ context.Context, prefs domain.Preferences) (domain.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[prefs.UserID] = clonePreferences(prefs)
	return clonePreferences(prefs), nil
}

func (m *Memory) ListFavorites(_ context.Context, userID int64) ([]domain.Favorite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	favs := slices.Clone(m.favorites[userID])
	sortFavorites(favs)
	return favs, nil
}

// AddFavorite заменяет существующую запись с тем же contentId.
func (m *Memory) AddFavorite(_ context.Context, fav domain.Favorite) (domain.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := slices.DeleteFunc(m.favorites[fav.UserID], func(f domain.Favorite) bool {
		return f.ContentID == fav.ContentID
	})
	m.favorites[fav.UserID] = append(list, fav)
	return fav, nil
}

func (m *Memory) RemoveFavorite(_ context.Context, userID int64, contentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.favorites[userID]
	idx := slices.IndexFunc(list, func(f domain.Favorite) bool { return f.ContentID == contentID })
	if idx < 0 {
		return domain.ErrFavoriteNotFound
	}
	m.favorites[userID] = slices.Delete(list, idx, idx+1)
	return nil
}

// Close ничего не делает.
func (m *Memory) Close() error { return nil }

func clonePreferences(p domain.Preferences) domain.Preferences {
	p.Categories = slices.Clone(p.Categories)
	if p.Categories == nil {
		p.Categories = []string{}
	}
	return p
}
