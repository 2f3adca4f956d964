package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"content-dashboard/internal/domain"
	"content-dashboard/internal/infra/metrics"
)

const defaultKeyPrefix = "dashboard"

// Redis хранит настройки строкой JSON, а избранное хешем contentId -> JSON.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

var _ domain.Store = (*Redis)(nil)

// NewRedis создаёт адаптер поверх готового клиента.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) prefsKey(userID int64) string {
	return r.prefix + ":prefs:" + strconv.FormatInt(userID, 10)
}

func (r *Redis) favoritesKey(userID int64) string {
	return r.prefix + ":favorites:" + strconv.FormatInt(userID, 10)
}

func (r *Redis) GetPreferences(ctx context.Context, userID int64) (domain.Preferences, error) {
	start := time.Now()
	raw, err := r.client.Get(ctx, r.prefsKey(userID)).Bytes()
	metrics.ObserveNetworkRequest("redis", "prefs_get", "preferences", start, ignoreNil(err))
	if errors.Is(err, redis.Nil) {
		return domain.Preferences{}, domain.ErrPreferencesNotFound
	}
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("redis get preferences: %w", err)
	}
	return decodePreferences(raw)
}

// EnsurePreferences использует SETNX, поэтому параллельные вызовы получают одну запись.
func (r *Redis) EnsurePreferences(ctx context.Context, defaults domain.Preferences) (domain.Preferences, error) {
	payload, err := json.Marshal(defaults)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("encode preferences: %w", err)
	}
	start := time.Now()
	_, err = r.client.SetNX(ctx, r.prefsKey(defaults.UserID), payload, 0).Result()
	metrics.ObserveNetworkRequest("redis", "prefs_setnx", "preferences", start, err)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("redis setnx preferences: %w", err)
	}
	return r.GetPreferences(ctx, defaults.UserID)
}

func (r *Redis) SavePreferences(ctx context.Context, prefs domain.Preferences) (domain.Preferences, error) {
	payload, err := json.Marshal(prefs)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("encode preferences: %w", err)
	}
	start := time.Now()
	err = r.client.Set(ctx, r.prefsKey(prefs.UserID), payload, 0).Err()
	metrics.ObserveNetworkRequest("redis", "prefs_set", "preferences", start, err)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("redis set preferences: %w", err)
	}
	return prefs, nil
}

func (r *Redis) ListFavorites(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	start := time.Now()
	values, err := r.client.HGetAll(ctx, r.favoritesKey(userID)).Result()
	metrics.ObserveNetworkRequest("redis", "favorites_list", "favorites", start, err)
	if err != nil {
		return nil, fmt.Errorf("redis list favorites: %w", err)
	}
	favs := make([]domain.Favorite, 0, len(values))
	for contentID, raw := range values {
		var fav domain.Favorite
		if err := json.Unmarshal([]byte(raw), &fav); err != nil {
			return nil, fmt.Errorf("decode favorite %s: %w", contentID, err)
		}
		favs = append(favs, fav)
	}
	sortFavorites(favs)
	return favs, nil
}

func (r *Redis) AddFavorite(ctx context.Context, fav domain.Favorite) (domain.Favorite, error) {
	payload, err := json.Marshal(fav)
	if err != nil {
		return domain.Favorite{}, fmt.Errorf("encode favorite: %w", err)
	}
	start := time.Now()
	err = r.client.HSet(ctx, r.favoritesKey(fav.UserID), fav.ContentID, payload).Err()
	metrics.ObserveNetworkRequest("redis", "favorites_add", "favorites", start, err)
	if err != nil {
		return domain.Favorite{}, fmt.Errorf("redis add favorite: %w", err)
	}
	return fav, nil
}

func (r *Redis) RemoveFavorite(ctx context.Context, userID int64, contentID string) error {
	start := time.Now()
	removed, err := r.client.HDel(ctx, r.favoritesKey(userID), contentID).Result()
	metrics.ObserveNetworkRequest("redis", "favorites_remove", "favorites", start, err)
	if err != nil {
		return fmt.Errorf("redis remove favorite: %w", err)
	}
	if removed == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

// Close закрывает клиент.
func (r *Redis) Close() error { return r.client.Close() }

func decodePreferences(raw []byte) (domain.Preferences, error) {
	var prefs domain.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	if prefs.Categories == nil {
		prefs.Categories = []string{}
	}
	return prefs, nil
}

// sortFavorites упорядочивает избранное по времени добавления.
func sortFavorites(favs []domain.Favorite) {
	slices.SortStableFunc(favs, func(a, b domain.Favorite) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ContentID < b.ContentID {
			return -1
		}
		if a.ContentID > b.ContentID {
			return 1
		}
		return 0
	})
}

func ignoreNil(err error) error {
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
