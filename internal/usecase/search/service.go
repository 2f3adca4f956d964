// Package search выполняет полнотекстовый поиск сразу по нескольким провайдерам.
package search

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"content-dashboard/internal/domain"
	"content-dashboard/internal/infra/metrics"
	"content-dashboard/internal/usecase/fanout"
)

const defaultBranchLimit = 10

// Branch связывает тип контента с провайдером, который умеет по нему искать.
type Branch struct {
	Type     domain.ContentType
	Provider domain.Provider
}

// Result: ответ поиска.
type Result struct {
	Items    []domain.ContentItem
	Failures []string
}

// Service ищет по веткам параллельно. Ветки опрашиваются в порядке регистрации.
type Service struct {
	branches    []Branch
	normalizer  domain.Normalizer
	gather      *fanout.Gatherer
	branchLimit int
	log         zerolog.Logger
}

// NewService создаёт сервис поиска.
func NewService(branches []Branch, normalizer domain.Normalizer, gather *fanout.Gatherer, branchLimit int, logger zerolog.Logger) *Service {
	if branchLimit <= 0 {
		branchLimit = defaultBranchLimit
	}
	return &Service{branches: branches, normalizer: normalizer, gather: gather, branchLimit: branchLimit, log: logger}
}

// Search ищет query во всех ветках либо только в ветке contentType.
// Тип, для которого нет провайдера, даёт пустой результат.
func (s *Service) Search(ctx context.Context, query string, contentType domain.ContentType) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, domain.Invalid("q", "search query is required")
	}
	if contentType != "" && !contentType.Valid() {
		return Result{}, domain.Invalid("type", "unsupported content type %q", contentType)
	}

	calls := make([]fanout.Call, 0, len(s.branches))
	for _, b := range s.branches {
		if contentType != "" && b.Type != contentType {
			continue
		}
		calls = append(calls, fanout.Call{
			Label:    b.Provider.Name() + ":search",
			Provider: b.Provider,
			Query:    domain.ProviderQuery{Search: query, PageSize: s.branchLimit, Page: 1},
		})
	}

	results := s.gather.Gather(ctx, calls)
	if err := fanout.ConfigurationError(results); err != nil {
		return Result{}, err
	}

	out := Result{Items: []domain.ContentItem{}}
	for _, res := range results {
		if res.Err != nil {
			out.Failures = append(out.Failures, res.Call.Label)
			continue
		}
		raws := res.Batch.Items
		if len(raws) > s.branchLimit {
			raws = raws[:s.branchLimit]
		}
		name := res.Call.Provider.Name()
		kept := 0
		for _, raw := range raws {
			if item, ok := s.normalizer.Normalize(name, raw); ok {
				out.Items = append(out.Items, item)
				kept++
			}
		}
		metrics.AddDropped(name, len(raws)-kept)
	}
	s.log.Debug().Str("query", query).Int("results", len(out.Items)).Strs("failures", out.Failures).Msg("search: done")
	return out, nil
}
