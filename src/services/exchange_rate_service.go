package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/username/homedash/backend/src/config"
	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/models"
	"golang.org/x/time/rate"
)

// ExchangeRateOptions configures NewExchangeRateService. Zero values pick defaults.
type ExchangeRateOptions struct {
	Provider        string
	BaseURL         string
	CacheTTL        time.Duration
	FallbackEnabled bool
	HTTPClient      *http.Client
	Limiter         *rate.Limiter
	Clock           func() time.Time
}

type exchangeRateServiceImpl struct {
	provider        string
	baseURL         string
	httpClient      *http.Client
	limiter         *rate.Limiter
	cache           *QuoteCache[models.ExchangeRate]
	fallbackEnabled bool
}

func NewExchangeRateService(opts ExchangeRateOptions) ExchangeRateService {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Every(250*time.Millisecond), 4)
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Provider == "" {
		opts.Provider = config.ProviderNone
	}
	return &exchangeRateServiceImpl{
		provider:        opts.Provider,
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		httpClient:      opts.HTTPClient,
		limiter:         opts.Limiter,
		cache:           NewQuoteCache[models.ExchangeRate](opts.CacheTTL, opts.Clock),
		fallbackEnabled: opts.FallbackEnabled,
	}
}

// NewExchangeRateServiceFromConfig builds the FX service described by cfg.
func NewExchangeRateServiceFromConfig(cfg *config.AppConfig) ExchangeRateService {
	return NewExchangeRateService(ExchangeRateOptions{
		Provider:        cfg.FXProvider,
		BaseURL:         cfg.FXProviderURL,
		CacheTTL:        cfg.QuoteCacheTTL,
		FallbackEnabled: cfg.QuoteFallbackEnabled,
	})
}

// GetExchangeRate returns how many units of to one unit of from buys.
func (s *exchangeRateServiceImpl) GetExchangeRate(ctx context.Context, from, to string) (models.ExchangeRate, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return models.ExchangeRate{From: from, To: to, Rate: 1, Source: models.QuoteSourceLive}, nil
	}

	cacheKey := from + "-" + to
	if r, ok := s.cache.Get(cacheKey); ok {
		r.Source = models.QuoteSourceCache
		return r, nil
	}

	if s.provider == config.ProviderNone {
		value, ok := fallbackRate(from, to)
		if !ok {
			return models.ExchangeRate{}, fmt.Errorf("%w: %s/%s", ErrQuoteNotFound, from, to)
		}
		return models.ExchangeRate{From: from, To: to, Rate: value, Source: models.QuoteSourceDemo}, nil
	}

	value, err := s.fetchRate(ctx, from, to)
	if err == nil {
		r := models.ExchangeRate{From: from, To: to, Rate: value, Source: models.QuoteSourceLive}
		s.cache.Set(cacheKey, r)
		return r, nil
	}

	logger.FromContext(ctx).Warn("Live exchange rate fetch failed", "from", from, "to", to, "provider", s.provider, "error", err)
	if s.fallbackEnabled {
		if fr, ok := fallbackRate(from, to); ok {
			return models.ExchangeRate{From: from, To: to, Rate: fr, Source: models.QuoteSourceFallback}, nil
		}
	}
	return models.ExchangeRate{}, fmt.Errorf("%w: %s/%s: %v", ErrProviderUnavailable, from, to, err)
}

func (s *exchangeRateServiceImpl) ClearCache() {
	s.cache.Clear()
}

func (s *exchangeRateServiceImpl) fetchRate(ctx context.Context, from, to string) (float64, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	rateURL := fmt.Sprintf("%s/latest?%s", s.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rateURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call exchange rate API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("exchange rate API returned non-OK status %d", resp.StatusCode)
	}

	var jobj any
	if err := json.NewDecoder(resp.Body).Decode(&jobj); err != nil {
		return 0, fmt.Errorf("failed to decode exchange rate response: %w", err)
	}
	path := "$.rates." + to
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("rate %s not found in response (%s): %w", to, path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	value, ok := jval.(float64)
	if !ok || value <= 0 {
		return 0, fmt.Errorf("rate %s at %s is not a positive number: %v", to, path, jval)
	}
	return value, nil
}
