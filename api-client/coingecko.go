package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"tokenmap/config"
)

// CoingeckoClient fetches market data for a token contract. It never fails
// the overall request: unsupported chains and upstream errors all collapse to
// an all-fields-absent snapshot.
type CoingeckoClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

func NewCoingeckoClient(cfg config.Config, log zerolog.Logger) *CoingeckoClient {
	return &CoingeckoClient{
		baseURL: cfg.CoingeckoAPIURL,
		http:    &http.Client{Timeout: cfg.FetchTimeout},
		limiter: rate.NewLimiter(rate.Limit(1), 2),
		log:     log.With().Str("client", "coingecko").Logger(),
	}
}

func (c *CoingeckoClient) Fetch(ctx context.Context, address string, chain Chain) MarketSnapshot {
	platform, ok := CoingeckoPlatforms[chain]
	if !ok {
		c.log.Warn().Str("chain", string(chain)).Msg("unsupported chain for market data")
		return MarketSnapshot{}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return MarketSnapshot{}
	}

	url := fmt.Sprintf("%s/coins/%s/contract/%s", c.baseURL, platform, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return MarketSnapshot{}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("address", address).Msg("failure retrieving market data")
		return MarketSnapshot{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error().Int("status", resp.StatusCode).Str("address", address).Msg("coingecko error response")
		return MarketSnapshot{}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return MarketSnapshot{}
	}

	var coinInfo CoingeckoCoinInfo
	if err := json.Unmarshal(body, &coinInfo); err != nil {
		c.log.Error().Err(err).Msg("failure unmarshalling market data")
		return MarketSnapshot{}
	}

	return MarketSnapshot{
		PriceUSD:          coinInfo.MarketData.CurrentPrice.USD,
		MarketCapUSD:      coinInfo.MarketData.MarketCap.USD,
		Volume24hUSD:      coinInfo.MarketData.TotalVolume.USD,
		PriceChangePct24h: coinInfo.MarketData.PriceChange24h,
	}
}
