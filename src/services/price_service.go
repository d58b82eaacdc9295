// backend/src/services/price_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/username/homedash/backend/src/config"
	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/models"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Symbols as entered by the user mapped to their exchange ticker.
var manualTickerOverrides = map[string]string{
	"ZEAL":     "ZEAL.CO",
	"NOVO-B":   "NOVO-B.CO",
	"MAERSK-B": "MAERSK-B.CO",
	"DSV":      "DSV.CO",
	"ORSTED":   "ORSTED.CO",
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// PriceServiceOptions configures NewPriceService. Zero values pick defaults.
type PriceServiceOptions struct {
	Provider        string
	BaseURL         string
	CacheTTL        time.Duration
	FallbackEnabled bool
	HTTPClient      *http.Client
	Limiter         *rate.Limiter
	Clock           func() time.Time
}

type priceServiceImpl struct {
	provider        string
	baseURL         string
	httpClient      *http.Client
	limiter         *rate.Limiter
	cache           *QuoteCache[models.Quote]
	fallbackEnabled bool
	now             func() time.Time
}

func NewPriceService(opts PriceServiceOptions) PriceService {
	if opts.HTTPClient == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			logger.L.Error("Failed to create cookie jar", "error", err)
		}
		opts.HTTPClient = &http.Client{Jar: jar, Timeout: 20 * time.Second}
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Every(250*time.Millisecond), 4)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Provider == "" {
		opts.Provider = config.ProviderNone
	}
	return &priceServiceImpl{
		provider:        opts.Provider,
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		httpClient:      opts.HTTPClient,
		limiter:         opts.Limiter,
		cache:           NewQuoteCache[models.Quote](opts.CacheTTL, opts.Clock),
		fallbackEnabled: opts.FallbackEnabled,
		now:             opts.Clock,
	}
}

// NewPriceServiceFromConfig builds the price service described by cfg.
func NewPriceServiceFromConfig(cfg *config.AppConfig) PriceService {
	return NewPriceService(PriceServiceOptions{
		Provider:        cfg.PriceProvider,
		BaseURL:         cfg.PriceProviderURL,
		CacheTTL:        cfg.QuoteCacheTTL,
		FallbackEnabled: cfg.QuoteFallbackEnabled,
	})
}

func (s *priceServiceImpl) GetStockPrice(ctx context.Context, symbol string) (models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return models.Quote{}, ErrInvalidSymbol
	}

	if q, ok := s.cache.Get(symbol); ok {
		q.Source = models.QuoteSourceCache
		return q, nil
	}

	if s.provider == config.ProviderNone {
		q, ok := fallbackQuote(symbol)
		if !ok {
			return models.Quote{}, fmt.Errorf("%w: %s", ErrQuoteNotFound, symbol)
		}
		q.Source = models.QuoteSourceDemo
		q.FetchedAt = s.now()
		return q, nil
	}

	q, err := s.fetchQuote(ctx, symbol)
	if err == nil {
		s.cache.Set(symbol, q)
		return q, nil
	}

	logger.FromContext(ctx).Warn("Live quote fetch failed", "symbol", symbol, "provider", s.provider, "error", err)
	if s.fallbackEnabled {
		if fq, ok := fallbackQuote(symbol); ok {
			fq.Source = models.QuoteSourceFallback
			fq.FetchedAt = s.now()
			return fq, nil
		}
	}
	return models.Quote{}, fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, symbol, err)
}

func (s *priceServiceImpl) GetStockPrices(ctx context.Context, symbols []string) (map[string]models.Quote, []string) {
	quotes := make(map[string]models.Quote, len(symbols))
	unavailable := []string{}
	seen := make(map[string]bool, len(symbols))
	for _, raw := range symbols {
		symbol := strings.ToUpper(strings.TrimSpace(raw))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true

		q, err := s.GetStockPrice(ctx, symbol)
		if err != nil {
			unavailable = append(unavailable, symbol)
			continue
		}
		quotes[symbol] = q
	}
	return quotes, unavailable
}

func (s *priceServiceImpl) ClearCache() {
	s.cache.Clear()
}

func tickerFor(symbol string) string {
	if ticker, ok := manualTickerOverrides[symbol]; ok {
		return ticker
	}
	return symbol
}

func (s *priceServiceImpl) fetchQuote(ctx context.Context, symbol string) (models.Quote, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return models.Quote{}, err
	}

	ticker := tickerFor(symbol)
	quoteURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", s.baseURL, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, quoteURL, nil)
	if err != nil {
		return models.Quote{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.Quote{}, fmt.Errorf("failed to call Yahoo chart API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Quote{}, fmt.Errorf("yahoo chart API returned non-OK status %d", resp.StatusCode)
	}

	var chartData yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chartData); err != nil {
		return models.Quote{}, fmt.Errorf("failed to decode Yahoo chart response: %w", err)
	}
	if chartData.Chart.Error != nil {
		return models.Quote{}, fmt.Errorf("yahoo chart API returned an error: %v", chartData.Chart.Error)
	}
	if len(chartData.Chart.Result) == 0 || chartData.Chart.Result[0].Meta.RegularMarketPrice == 0 {
		return models.Quote{}, fmt.Errorf("no price data found for %s", ticker)
	}

	meta := chartData.Chart.Result[0].Meta
	prev := meta.ChartPreviousClose
	if prev == 0 {
		prev = meta.PreviousClose
	}
	q := models.Quote{
		Symbol:    symbol,
		Price:     meta.RegularMarketPrice,
		Currency:  strings.ToUpper(meta.Currency),
		Source:    models.QuoteSourceLive,
		FetchedAt: s.now(),
	}
	if prev > 0 {
		q.Change = meta.RegularMarketPrice - prev
		q.ChangePercent = q.Change / prev * 100
	}
	return q, nil
}
