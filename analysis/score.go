package analysis

import (
	"math"

	apiclient "tokenmap/api-client"
)

// whaleThreshold is the ownership share above which a holder counts as a
// whale, in percent of identified supply.
const whaleThreshold = 1.0

// Scorecard aggregates the derived distribution metrics for one token.
type Scorecard struct {
	Score            int
	HolderCount      int
	WhaleCount       int
	TopConcentration float64
}

// Score computes the 0-100 decentralization score. A higher score means more
// evenly distributed ownership. Three ingredients:
//   - how much the three biggest holders own (less is better, up to 50 points)
//   - how many identified holders exist (more is better, up to 30 points)
//   - how much sits in smart contracts (less is better, up to 20 points)
//
// Holders must be in the source's descending-percentage order; the function
// never re-sorts. contractHolderPct may be nil when the source did not
// identify contract-held supply, which counts as zero.
func Score(holders []apiclient.Holder, contractHolderPct *float64) Scorecard {
	var topConcentration float64
	for i, holder := range holders {
		if i >= 3 {
			break
		}
		topConcentration += holder.Percentage
	}

	var contractPct float64
	if contractHolderPct != nil {
		contractPct = *contractHolderPct
	}

	distributionPoints := math.Max(0, 50-topConcentration/2)
	holderCountPoints := math.Min(30, float64(len(holders))/5)
	contractPoints := math.Max(0, 20-contractPct/5)

	score := int(math.Round(distributionPoints + holderCountPoints + contractPoints))
	if score > 100 {
		score = 100
	}

	whales := 0
	for _, holder := range holders {
		if holder.Percentage > whaleThreshold {
			whales++
		}
	}

	return Scorecard{
		Score:            score,
		HolderCount:      len(holders),
		WhaleCount:       whales,
		TopConcentration: topConcentration,
	}
}
