// Package fanout запускает независимые вызовы провайдеров параллельно
// и собирает результат каждого, включая ошибки.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"content-dashboard/internal/domain"
	"content-dashboard/internal/infra/metrics"
)

const defaultRetryInterval = 200 * time.Millisecond

// Call: один вызов провайдера.
type Call struct {
	// Label идентифицирует ветку в логах и ответе, например "newsapi:sports".
	Label    string
	Provider domain.Provider
	Query    domain.ProviderQuery
}

// Result: итог вызова. Ровно одно из Batch/Err значимо.
type Result struct {
	Call  Call
	Batch domain.ProviderBatch
	Err   error
}

// Options настраивает политику вызовов.
type Options struct {
	// Timeout ограничивает каждую попытку. Ноль отключает отдельный таймаут.
	Timeout time.Duration
	// Retries задаёт число повторов после первой неудачной попытки.
	Retries       int
	RetryInterval time.Duration
}

// Gatherer выполняет scatter-gather.
type Gatherer struct {
	opts Options
	log  zerolog.Logger
}

// New создаёт Gatherer.
func New(opts Options, logger zerolog.Logger) *Gatherer {
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Gatherer{opts: opts, log: logger}
}

// Gather запускает все вызовы и возвращает результаты в порядке calls
// только после завершения каждого из них. Сбой одной ветки не отменяет остальные.
func (g *Gatherer) Gather(ctx context.Context, calls []Call) []Result {
	results := make([]Result, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call Call) {
			defer wg.Done()
			results[i] = g.run(ctx, call)
		}(i, call)
	}
	wg.Wait()

	for _, res := range results {
		if res.Err == nil {
			continue
		}
		metrics.IncProviderFailure(res.Call.Provider.Name())
		g.log.Warn().Err(res.Err).
			Str("provider", res.Call.Provider.Name()).
			Str("label", res.Call.Label).
			Msg("fanout: branch failed")
	}
	return results
}

func (g *Gatherer) run(ctx context.Context, call Call) (res Result) {
	res.Call = call
	name := call.Provider.Name()
	defer func() {
		if r := recover(); r != nil {
			res.Batch = domain.ProviderBatch{}
			res.Err = &domain.ProviderError{Provider: name, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	attempt := func() error {
		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if g.opts.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		}
		defer cancel()

		batch, err := call.Provider.FetchBatch(callCtx, call.Query)
		if err != nil {
			if domain.IsConfigurationError(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		res.Batch = batch
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.opts.RetryInterval
	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(g.opts.Retries)), ctx))
	if err == nil {
		return res
	}

	var provErr *domain.ProviderError
	if !domain.IsConfigurationError(err) && !errors.As(err, &provErr) {
		err = &domain.ProviderError{Provider: name, Cause: err}
	}
	res.Err = err
	return res
}

// ConfigurationError возвращает первую ошибку конфигурации среди результатов.
func ConfigurationError(results []Result) error {
	for _, res := range results {
		if domain.IsConfigurationError(res.Err) {
			return res.Err
		}
	}
	return nil
}
