package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPreferencesNotFound возвращается, если у пользователя нет настроек.
	ErrPreferencesNotFound = errors.New("preferences not found")
	// ErrFavoriteNotFound возвращается при удалении отсутствующего избранного.
	ErrFavoriteNotFound = errors.New("favorite not found")
)

// ProviderError описывает неудачный вызов одного провайдера.
type ProviderError struct {
	Provider string
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// ConfigurationError: отсутствует или некорректна настройка провайдера.
type ConfigurationError struct {
	Provider string
	Setting  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s is not configured", e.Provider, e.Setting)
}

// ValidationError: некорректный пользовательский ввод.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Invalid создаёт ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsConfigurationError сообщает, вызвана ли ошибка отсутствующей настройкой.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
