package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"content-dashboard/internal/domain"
	"content-dashboard/internal/infra/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_preferences (
    user_id    BIGINT PRIMARY KEY,
    categories TEXT[] NOT NULL DEFAULT '{}',
    dark_mode  BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS favorites (
    id           TEXT PRIMARY KEY,
    user_id      BIGINT NOT NULL,
    content_id   TEXT NOT NULL,
    content_type TEXT NOT NULL,
    content_data JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, content_id)
);
`

// querier: подмножество *pgxpool.Pool, которым пользуется адаптер.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

var _ querier = (*pgxpool.Pool)(nil)

// Postgres реализует хранилище на основе pgxpool.
type Postgres struct {
	pool querier
}

var _ domain.Store = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// Migrate создаёт таблицы, если их ещё нет.
func (p *Postgres) Migrate(ctx context.Context) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	start := time.Now()
	_, err := p.pool.Exec(ctx, schema)
	metrics.ObserveNetworkRequest("postgres", "migrate", "schema", start, err)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (p *Postgres) GetPreferences(ctx context.Context, userID int64) (domain.Preferences, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var prefs domain.Preferences
	err := p.pool.QueryRow(ctx, `
SELECT user_id, categories, dark_mode, created_at, updated_at
FROM user_preferences WHERE user_id=$1
`, userID).Scan(&prefs.UserID, &prefs.Categories, &prefs.DarkMode, &prefs.CreatedAt, &prefs.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveNetworkRequest("postgres", "preferences_get", "user_preferences", start, nil)
		return domain.Preferences{}, domain.ErrPreferencesNotFound
	}
	metrics.ObserveNetworkRequest("postgres", "preferences_get", "user_preferences", start, err)
	if err != nil {
		return domain.Preferences{}, err
	}
	if prefs.Categories == nil {
		prefs.Categories = []string{}
	}
	return prefs, nil
}

// EnsurePreferences вставляет умолчания через ON CONFLICT DO NOTHING и читает итоговую запись.
func (p *Postgres) EnsurePreferences(ctx context.Context, defaults domain.Preferences) (domain.Preferences, error) {
	insertCtx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(insertCtx, `
INSERT INTO user_preferences (user_id, categories, dark_mode, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO NOTHING
`, defaults.UserID, nonNil(defaults.Categories), defaults.DarkMode, defaults.CreatedAt, defaults.UpdatedAt)
	metrics.ObserveNetworkRequest("postgres", "preferences_ensure", "user_preferences", start, err)
	if err != nil {
		return domain.Preferences{}, err
	}
	return p.GetPreferences(ctx, defaults.UserID)
}

func (p *Postgres) SavePreferences(ctx context.Context, prefs domain.Preferences) (domain.Preferences, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var saved domain.Preferences
	err := p.pool.QueryRow(ctx, `
INSERT INTO user_preferences (user_id, categories, dark_mode, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE SET categories=EXCLUDED.categories, dark_mode=EXCLUDED.dark_mode, updated_at=EXCLUDED.updated_at
RETURNING user_id, categories, dark_mode, created_at, updated_at
`, prefs.UserID, nonNil(prefs.Categories), prefs.DarkMode, prefs.CreatedAt, prefs.UpdatedAt).
		Scan(&saved.UserID, &saved.Categories, &saved.DarkMode, &saved.CreatedAt, &saved.UpdatedAt)
	metrics.ObserveNetworkRequest("postgres", "preferences_save", "user_preferences", start, err)
	if err != nil {
		return domain.Preferences{}, err
	}
	return saved, nil
}

func (p *Postgres) ListFavorites(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, user_id, content_id, content_type, content_data, created_at
FROM favorites WHERE user_id=$1
ORDER BY created_at, content_id
`, userID)
	metrics.ObserveNetworkRequest("postgres", "favorites_list", "favorites", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	favs := []domain.Favorite{}
	for rows.Next() {
		var fav domain.Favorite
		var contentType string
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.ContentID, &contentType, &fav.ContentData, &fav.CreatedAt); err != nil {
			return nil, err
		}
		fav.ContentType = domain.ContentType(contentType)
		favs = append(favs, fav)
	}
	return favs, rows.Err()
}

// AddFavorite заменяет запись с тем же (user_id, content_id).
func (p *Postgres) AddFavorite(ctx context.Context, fav domain.Favorite) (domain.Favorite, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO favorites (id, user_id, content_id, content_type, content_data, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, content_id) DO UPDATE SET id=EXCLUDED.id, content_type=EXCLUDED.content_type, content_data=EXCLUDED.content_data, created_at=EXCLUDED.created_at
`, fav.ID, fav.UserID, fav.ContentID, string(fav.ContentType), fav.ContentData, fav.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "favorites_add", "favorites", start, err)
	if err != nil {
		return domain.Favorite{}, err
	}
	return fav, nil
}

func (p *Postgres) RemoveFavorite(ctx context.Context, userID int64, contentID string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM favorites WHERE user_id=$1 AND content_id=$2`, userID, contentID)
	metrics.ObserveNetworkRequest("postgres", "favorites_remove", "favorites", start, err)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

// Close закрывает пул соединений.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
