// Package provider содержит клиентов внешних источников контента.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"content-dashboard/internal/domain"
	"content-dashboard/internal/infra/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// Option настраивает клиента провайдера.
type Option func(*baseClient)

// WithHTTPClient подменяет http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *baseClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout ограничивает длительность одного запроса.
func WithTimeout(timeout time.Duration) Option {
	return func(c *baseClient) {
		if timeout <= 0 {
			return
		}
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

type baseClient struct {
	name       string
	baseURL    *url.URL
	httpClient *http.Client
}

func newBaseClient(name, baseURL, fallback string, opts ...Option) (baseClient, error) {
	if baseURL == "" {
		baseURL = fallback
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return baseClient{}, fmt.Errorf("%s: parse base url: %w", name, err)
	}
	if parsed.Scheme == "" {
		parsed.Scheme = "https"
	}
	c := baseClient{
		name:       name,
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}

// apiError объединяет форматы ошибок NewsAPI и TMDB.
type apiError struct {
	Status        string `json:"status"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	StatusMessage string `json:"status_message"`
}

func (e apiError) text() string {
	switch {
	case e.Message != "" && e.Code != "":
		return e.Code + ": " + e.Message
	case e.Message != "":
		return e.Message
	default:
		return e.StatusMessage
	}
}

func (c *baseClient) fail(cause error) error {
	return &domain.ProviderError{Provider: c.name, Cause: cause}
}

// getJSON выполняет GET и декодирует тело в out. Любой сбой приводится к *domain.ProviderError.
func (c *baseClient) getJSON(ctx context.Context, operation, endpoint string, query url.Values, target string, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest(c.name, operation, target, start, err)
	}()

	resolved := *c.baseURL
	resolved.Path = path.Clean(strings.TrimSuffix(c.baseURL.Path, "/") + endpoint)
	resolved.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved.String(), nil)
	if err != nil {
		return c.fail(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		msg := apiErr.text()
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		if msg == "" {
			return c.fail(fmt.Errorf("unexpected status %d", resp.StatusCode))
		}
		return c.fail(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.fail(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// redact убирает URL с ключом API из сетевой ошибки.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("request failed: %w", urlErr.Err)
	}
	return fmt.Errorf("request failed: %w", err)
}

func rawItems(provider, category string, payloads []json.RawMessage) []domain.RawItem {
	items := make([]domain.RawItem, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, domain.RawItem{Provider: provider, Category: category, Payload: p})
	}
	return items
}
