package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestContentTypeValid(t *testing.T) {
	for _, ct := range ContentTypes() {
		if !ct.Valid() {
			t.Fatalf("ожидали, что %s допустим", ct)
		}
	}
	if ContentType("podcast").Valid() {
		t.Fatal("ожидали, что неизвестный тип недопустим")
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("fanout: %w", &ProviderError{Provider: "newsapi", Cause: cause})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatal("ожидали ProviderError в цепочке")
	}
	if !errors.Is(err, cause) {
		t.Fatal("ожидали доступ к исходной причине")
	}
	if provErr.Error() != "newsapi: connection reset" {
		t.Fatalf("неожиданный текст: %s", provErr.Error())
	}
}

func TestIsConfigurationError(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &ConfigurationError{Provider: "tmdb", Setting: "TMDB_API_KEY"})
	if !IsConfigurationError(err) {
		t.Fatal("ожидали ConfigurationError")
	}
	if IsConfigurationError(&ProviderError{Provider: "tmdb", Cause: errors.New("x")}) {
		t.Fatal("ProviderError не должен считаться ошибкой конфигурации")
	}
}
