package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/homedash/backend/src/config"
	"github.com/username/homedash/backend/src/models"
	"golang.org/x/time/rate"
)

func newYahooStub(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		ticker := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		switch ticker {
		case "ZEAL.CO":
			fmt.Fprint(w, `{"chart":{"result":[{"meta":{"currency":"DKK","symbol":"ZEAL.CO","regularMarketPrice":800,"chartPreviousClose":780}}],"error":null}}`)
		case "TSLA":
			fmt.Fprint(w, `{"chart":{"result":[{"meta":{"currency":"USD","symbol":"TSLA","regularMarketPrice":250,"chartPreviousClose":0,"previousClose":200}}],"error":null}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestPriceService(baseURL, provider string, fallback bool, clock *fakeClock) PriceService {
	return NewPriceService(PriceServiceOptions{
		Provider:        provider,
		BaseURL:         baseURL,
		CacheTTL:        5 * time.Minute,
		FallbackEnabled: fallback,
		Limiter:         rate.NewLimiter(rate.Inf, 1),
		Clock:           clock.Now,
	})
}

func TestGetStockPriceLiveThenCached(t *testing.T) {
	var calls int32
	srv := newYahooStub(t, &calls)
	clock := &fakeClock{t: time.Now()}
	svc := newTestPriceService(srv.URL, config.ProviderYahoo, true, clock)

	q, err := svc.GetStockPrice(context.Background(), "zeal")
	require.NoError(t, err)
	assert.Equal(t, "ZEAL", q.Symbol)
	assert.Equal(t, 800.0, q.Price)
	assert.Equal(t, "DKK", q.Currency)
	assert.InDelta(t, 20, q.Change, 0.0001)
	assert.InDelta(t, 2.5641, q.ChangePercent, 0.001)
	assert.Equal(t, models.QuoteSourceLive, q.Source)

	q, err = svc.GetStockPrice(context.Background(), "ZEAL")
	require.NoError(t, err)
	assert.Equal(t, models.QuoteSourceCache, q.Source)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	clock.Advance(5 * time.Minute)
	q, err = svc.GetStockPrice(context.Background(), "ZEAL")
	require.NoError(t, err)
	assert.Equal(t, models.QuoteSourceLive, q.Source)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	svc.ClearCache()
	_, err = svc.GetStockPrice(context.Background(), "ZEAL")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetStockPriceUsesPreviousCloseWhenChartCloseMissing(t *testing.T) {
	var calls int32
	srv := newYahooStub(t, &calls)
	svc := newTestPriceService(srv.URL, config.ProviderYahoo, false, &fakeClock{t: time.Now()})

	q, err := svc.GetStockPrice(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.InDelta(t, 50, q.Change, 0.0001)
	assert.InDelta(t, 25, q.ChangePercent, 0.0001)
}

func TestGetStockPricesFallsBackWhenProviderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	svc := newTestPriceService(url, config.ProviderYahoo, true, &fakeClock{t: time.Now()})
	quotes, unavailable := svc.GetStockPrices(context.Background(), []string{"ZEAL", "TSLA", "zeal", "UNKNOWN"})

	require.Len(t, quotes, 2)
	assert.Equal(t, 745.50, quotes["ZEAL"].Price)
	assert.Equal(t, 248.50, quotes["TSLA"].Price)
	assert.Equal(t, models.QuoteSourceFallback, quotes["ZEAL"].Source)
	assert.Equal(t, models.QuoteSourceFallback, quotes["TSLA"].Source)
	assert.Equal(t, []string{"UNKNOWN"}, unavailable)
}

func TestGetStockPriceFailsWhenFallbackDisabled(t *testing.T) {
	var calls int32
	srv := newYahooStub(t, &calls)
	svc := newTestPriceService(srv.URL, config.ProviderYahoo, false, &fakeClock{t: time.Now()})

	_, err := svc.GetStockPrice(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestGetStockPriceWithoutProviderServesDemoQuotes(t *testing.T) {
	svc := newTestPriceService("", config.ProviderNone, false, &fakeClock{t: time.Now()})

	q, err := svc.GetStockPrice(context.Background(), "NOVO-B")
	require.NoError(t, err)
	assert.Equal(t, models.QuoteSourceDemo, q.Source)

	_, err = svc.GetStockPrice(context.Background(), "GME")
	assert.ErrorIs(t, err, ErrQuoteNotFound)

	_, err = svc.GetStockPrice(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidSymbol)
}
