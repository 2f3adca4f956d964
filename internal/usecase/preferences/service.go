package preferences

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"content-dashboard/internal/domain"
)

// Update: частичное изменение настроек. nil-поля не меняются.
type Update struct {
	UserID     int64
	Categories *[]string
	DarkMode   *bool
}

// FavoriteInput: данные для добавления в избранное.
type FavoriteInput struct {
	UserID      int64
	ContentID   string
	ContentType domain.ContentType
	ContentData json.RawMessage
}

// Service управляет настройками и избранным пользователя.
type Service struct {
	prefs             domain.PreferencesRepo
	favorites         domain.FavoritesRepo
	defaultCategories []string
	now               func() time.Time
	newID             func() string
	log               zerolog.Logger
}

// NewService создаёт сервис настроек.
func NewService(prefs domain.PreferencesRepo, favorites domain.FavoritesRepo, defaultCategories []string, logger zerolog.Logger) *Service {
	return &Service{
		prefs:             prefs,
		favorites:         favorites,
		defaultCategories: NormalizeCategories(defaultCategories),
		now:               func() time.Time { return time.Now().UTC() },
		newID:             uuid.NewString,
		log:               logger,
	}
}

// Get возвращает настройки пользователя, создавая их со значениями по умолчанию.
func (s *Service) Get(ctx context.Context, userID int64) (domain.Preferences, error) {
	if err := validateUserID(userID); err != nil {
		return domain.Preferences{}, err
	}
	now := s.now()
	prefs, err := s.prefs.EnsurePreferences(ctx, domain.Preferences{
		UserID:     userID,
		Categories: append([]string(nil), s.defaultCategories...),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("получение настроек: %w", err)
	}
	return prefs, nil
}

// Save применяет частичное изменение к текущим (или умолчательным) настройкам.
func (s *Service) Save(ctx context.Context, upd Update) (domain.Preferences, error) {
	current, err := s.Get(ctx, upd.UserID)
	if err != nil {
		return domain.Preferences{}, err
	}
	if upd.Categories != nil {
		current.Categories = NormalizeCategories(*upd.Categories)
	}
	if upd.DarkMode != nil {
		current.DarkMode = *upd.DarkMode
	}
	current.UpdatedAt = s.now()
	saved, err := s.prefs.SavePreferences(ctx, current)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("сохранение настроек: %w", err)
	}
	s.log.Debug().Int64("user_id", saved.UserID).Strs("categories", saved.Categories).Msg("preferences: saved")
	return saved, nil
}

// ListFavorites возвращает избранное пользователя, старые записи первыми.
func (s *Service) ListFavorites(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	favs, err := s.favorites.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение избранного: %w", err)
	}
	if favs == nil {
		favs = []domain.Favorite{}
	}
	return favs, nil
}

// AddFavorite сохраняет снимок карточки. Повторное добавление заменяет запись.
func (s *Service) AddFavorite(ctx context.Context, in FavoriteInput) (domain.Favorite, error) {
	if err := validateUserID(in.UserID); err != nil {
		return domain.Favorite{}, err
	}
	contentID := strings.TrimSpace(in.ContentID)
	if contentID == "" {
		return domain.Favorite{}, domain.Invalid("contentId", "is required")
	}
	if !in.ContentType.Valid() {
		return domain.Favorite{}, domain.Invalid("contentType", "unsupported content type %q", in.ContentType)
	}
	data := bytes.TrimSpace(in.ContentData)
	if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
		return domain.Favorite{}, domain.Invalid("contentData", "must be a JSON object")
	}
	fav, err := s.favorites.AddFavorite(ctx, domain.Favorite{
		ID:          s.newID(),
		UserID:      in.UserID,
		ContentID:   contentID,
		ContentType: in.ContentType,
		ContentData: append(json.RawMessage(nil), data...),
		CreatedAt:   s.now(),
	})
	if err != nil {
		return domain.Favorite{}, fmt.Errorf("сохранение избранного: %w", err)
	}
	return fav, nil
}

// RemoveFavorite удаляет карточку из избранного.
// Возвращает domain.ErrFavoriteNotFound, если записи не было.
func (s *Service) RemoveFavorite(ctx context.Context, userID int64, contentID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if strings.TrimSpace(contentID) == "" {
		return domain.Invalid("contentId", "is required")
	}
	return s.favorites.RemoveFavorite(ctx, userID, contentID)
}

// NormalizeCategories удаляет пустые и дублирующиеся рубрики, приводя их к нижнему регистру.
func NormalizeCategories(categories []string) []string {
	return lo.Uniq(lo.FilterMap(categories, func(c string, _ int) (string, bool) {
		c = strings.ToLower(strings.TrimSpace(c))
		return c, c != ""
	}))
}

func validateUserID(userID int64) error {
	if userID <= 0 {
		return domain.Invalid("userId", "must be a positive integer")
	}
	return nil
}
