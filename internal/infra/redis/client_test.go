package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewClientRequiresAddress(t *testing.T) {
	if _, err := NewClient(context.Background(), Options{}); !errors.Is(err, ErrEmptyAddress) {
		t.Fatalf("ожидали ErrEmptyAddress, получили %v", err)
	}
}

func TestNewClientPings(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	client, err := NewClient(context.Background(), Options{Addr: addr})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	defer client.Close()

	srv.Close()
	if _, err := NewClient(context.Background(), Options{Addr: addr}); err == nil {
		t.Fatal("ожидали ошибку при недоступном сервере")
	}
}
