package apiclient

import (
	"github.com/shopspring/decimal"
)

type CoingeckoCoinInfo struct {
	ID         string                  `json:"id"`
	Symbol     string                  `json:"symbol"`
	MarketData CoingeckoCoinMarketData `json:"market_data"`
}

// Every field below is independently nullable in coingecko's payload.
type CoingeckoCoinMarketData struct {
	CurrentPrice   CoingeckoUSDQuote `json:"current_price"`
	MarketCap      CoingeckoUSDQuote `json:"market_cap"`
	TotalVolume    CoingeckoUSDQuote `json:"total_volume"`
	PriceChange24h *float64          `json:"price_change_percentage_24h"`
}

type CoingeckoUSDQuote struct {
	USD *decimal.Decimal `json:"usd"`
}
