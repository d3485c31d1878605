package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenmap/config"
)

func coingeckoClient(baseURL string) *CoingeckoClient {
	cfg := config.Default()
	cfg.CoingeckoAPIURL = baseURL
	return NewCoingeckoClient(cfg, zerolog.Nop())
}

func TestCoingeckoFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/ethereum/contract/0xabc", r.URL.Path)
		fmt.Fprint(w, `{
			"id": "test-token",
			"market_data": {
				"current_price": {"usd": 1.23456789},
				"market_cap": {"usd": 1000000},
				"total_volume": {"usd": 50000},
				"price_change_percentage_24h": -4.2
			}
		}`)
	}))
	defer srv.Close()

	snapshot := coingeckoClient(srv.URL).Fetch(context.Background(), "0xabc", ETH)

	require.NotNil(t, snapshot.PriceUSD)
	assert.Equal(t, "1.23456789", snapshot.PriceUSD.String())
	require.NotNil(t, snapshot.MarketCapUSD)
	assert.Equal(t, "1000000", snapshot.MarketCapUSD.String())
	require.NotNil(t, snapshot.Volume24hUSD)
	assert.Equal(t, "50000", snapshot.Volume24hUSD.String())
	require.NotNil(t, snapshot.PriceChangePct24h)
	assert.Equal(t, -4.2, *snapshot.PriceChangePct24h)
}

func TestCoingeckoFetchPartiallyNullPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"market_data": {
				"current_price": {"usd": null},
				"market_cap": {},
				"total_volume": {"usd": 50000},
				"price_change_percentage_24h": null
			}
		}`)
	}))
	defer srv.Close()

	snapshot := coingeckoClient(srv.URL).Fetch(context.Background(), "0xabc", ETH)

	assert.Nil(t, snapshot.PriceUSD)
	assert.Nil(t, snapshot.MarketCapUSD)
	assert.Nil(t, snapshot.PriceChangePct24h)
	require.NotNil(t, snapshot.Volume24hUSD, "one null field must not invalidate the others")
	assert.Equal(t, "50000", snapshot.Volume24hUSD.String())
}

func TestCoingeckoFetchUnsupportedChainSkipsNetwork(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer srv.Close()

	snapshot := coingeckoClient(srv.URL).Fetch(context.Background(), "0xabc", Chain("sol"))

	assert.Equal(t, MarketSnapshot{}, snapshot)
	assert.EqualValues(t, 0, atomic.LoadInt64(&calls))
}

func TestCoingeckoFetchErrorReturnsEmptySnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "coin not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	snapshot := coingeckoClient(srv.URL).Fetch(context.Background(), "0xabc", ETH)
	assert.Equal(t, MarketSnapshot{}, snapshot)
}

func TestCoingeckoFetchConnectionErrorReturnsEmptySnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	snapshot := coingeckoClient(baseURL).Fetch(context.Background(), "0xabc", ETH)
	assert.Equal(t, MarketSnapshot{}, snapshot)
}
