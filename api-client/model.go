package apiclient

import (
	"time"

	"github.com/shopspring/decimal"
)

type Chain string

var (
	ETH  Chain = "eth"
	BSC  Chain = "bsc"
	FTM  Chain = "ftm"
	AVAX Chain = "avax"
	POLY Chain = "poly"
	ARBI Chain = "arbi"
	BASE Chain = "base"
)

var Chains = []Chain{ETH, BSC, FTM, AVAX, POLY, ARBI, BASE}

// CoingeckoPlatforms maps a chain to coingecko's own platform naming.
var CoingeckoPlatforms = map[Chain]string{
	ETH:  "ethereum",
	BSC:  "binance-smart-chain",
	FTM:  "fantom",
	AVAX: "avalanche",
	POLY: "polygon-pos",
	ARBI: "arbitrum-one",
	BASE: "base",
}

func SupportedChain(c Chain) bool {
	for _, chain := range Chains {
		if chain == c {
			return true
		}
	}
	return false
}

// Holder is one node of the distribution graph, in the source's own
// descending-percentage order.
type Holder struct {
	Address    string
	Percentage float64
	Amount     decimal.Decimal
	IsContract bool
	Name       string
}

// DistributionSnapshot is everything the distribution source knows about a
// token at fetch time. Holders is the full identified list; percentages are
// not guaranteed to sum to 100.
type DistributionSnapshot struct {
	Symbol            string
	FullName          string
	IsNFT             bool
	Holders           []Holder
	TotalFlow         decimal.Decimal
	CEXHolderPct      *float64
	ContractHolderPct *float64
	LastUpdate        *time.Time
}

// MarketSnapshot fields are independently optional; a nil field renders as
// unavailable without invalidating the others.
type MarketSnapshot struct {
	PriceUSD          *decimal.Decimal
	MarketCapUSD      *decimal.Decimal
	Volume24hUSD      *decimal.Decimal
	PriceChangePct24h *float64
}
