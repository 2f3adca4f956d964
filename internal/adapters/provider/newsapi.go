package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"

	"github.com/samber/lo"

	"content-dashboard/internal/domain"
)

const (
	// NewsAPIName: ключ провайдера новостей в реестре нормализатора.
	NewsAPIName = "newsapi"

	defaultNewsAPIURL = "https://newsapi.org"
)

var newsCategories = []string{"business", "entertainment", "general", "health", "science", "sports", "technology"}

// NewsAPI: клиент newsapi.org.
type NewsAPI struct {
	base   baseClient
	apiKey string
}

var _ domain.CategorizedProvider = (*NewsAPI)(nil)

type newsAPIResponse struct {
	Status       string            `json:"status"`
	Code         string            `json:"code"`
	Message      string            `json:"message"`
	TotalResults int               `json:"totalResults"`
	Articles     []json.RawMessage `json:"articles"`
}

// NewNewsAPI создаёт клиента. Пустой ключ не мешает созданию:
// ошибка конфигурации возвращается при первом запросе.
func NewNewsAPI(apiKey, baseURL string, opts ...Option) (*NewsAPI, error) {
	base, err := newBaseClient(NewsAPIName, baseURL, defaultNewsAPIURL, opts...)
	if err != nil {
		return nil, err
	}
	return &NewsAPI{base: base, apiKey: apiKey}, nil
}

// Name возвращает имя провайдера.
func (c *NewsAPI) Name() string { return NewsAPIName }

// Categories возвращает рубрики, которые понимает top-headlines.
func (c *NewsAPI) Categories() []string { return NewsCategories() }

// NewsCategories возвращает копию списка рубрик NewsAPI.
func NewsCategories() []string {
	return append([]string(nil), newsCategories...)
}

// IsNewsCategory сообщает, поддерживает ли NewsAPI рубрику.
func IsNewsCategory(category string) bool {
	return lo.Contains(newsCategories, category)
}

// FetchBatch запрашивает заголовки по рубрике либо выполняет поиск по Search.
func (c *NewsAPI) FetchBatch(ctx context.Context, q domain.ProviderQuery) (domain.ProviderBatch, error) {
	if c.apiKey == "" {
		return domain.ProviderBatch{}, &domain.ConfigurationError{Provider: NewsAPIName, Setting: "NEWS_API_KEY"}
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	endpoint, operation, target := "/v2/top-headlines", "top_headlines", q.Category
	if q.Search != "" {
		endpoint, operation, target = "/v2/everything", "everything", "search"
		params.Set("q", q.Search)
	} else {
		if q.Country != "" {
			params.Set("country", q.Country)
		}
		if q.Category != "" {
			params.Set("category", q.Category)
		}
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}

	var resp newsAPIResponse
	if err := c.base.getJSON(ctx, operation, endpoint, params, target, &resp); err != nil {
		return domain.ProviderBatch{}, err
	}
	if resp.Status == "error" {
		msg := resp.Message
		if msg == "" {
			msg = "provider reported error"
		}
		if resp.Code != "" {
			msg = resp.Code + ": " + msg
		}
		return domain.ProviderBatch{}, c.base.fail(errors.New(msg))
	}

	return domain.ProviderBatch{
		Provider:     NewsAPIName,
		Items:        rawItems(NewsAPIName, q.Category, resp.Articles),
		TotalResults: resp.TotalResults,
	}, nil
}
