// Package report turns an analysis result into the user-facing text. Pure
// formatting, no I/O: every optional field renders as a placeholder so the
// report keeps the same shape whichever upstream sources succeeded.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tokenmap/analysis"
)

const notAvailable = "N/A"

// Render produces the full report in its fixed section order: title, market
// block, decentralization block, top holders, reference link, and the image
// notice when no artifact is attached.
func Render(result *analysis.Result) string {
	dist := result.Distribution

	tokenType := "Token"
	if dist.IsNFT {
		tokenType = "NFT Collection"
	}
	name := dist.FullName
	if name == "" {
		name = "Unknown"
	}
	symbol := dist.Symbol
	if symbol == "" {
		symbol = notAvailable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s Analysis for %s (%s)\n\n", tokenType, name, symbol)

	fmt.Fprintf(&b, "💰 Market Cap: %s\n", formatUSD(result.Market.MarketCapUSD, 2))
	fmt.Fprintf(&b, "💵 Price: %s\n", formatUSD(result.Market.PriceUSD, 8))
	fmt.Fprintf(&b, "📈 24h Volume: %s\n", formatUSD(result.Market.Volume24hUSD, 2))
	fmt.Fprintf(&b, "📊 24h Change: %s\n\n", formatChange(result.Market.PriceChangePct24h))

	b.WriteString("🎯 Decentralization Metrics:\n")
	fmt.Fprintf(&b, "└ Score: %d/100\n", result.Score.Score)
	fmt.Fprintf(&b, "└ Total Holders: %s\n", groupThousands(fmt.Sprintf("%d", result.Score.HolderCount)))
	fmt.Fprintf(&b, "└ Whale Holders: %d\n", result.Score.WhaleCount)
	fmt.Fprintf(&b, "└ CEX Holdings: %s\n", formatPercent(dist.CEXHolderPct))
	fmt.Fprintf(&b, "└ Contract Holdings: %s\n", formatPercent(dist.ContractHolderPct))
	fmt.Fprintf(&b, "└ Transaction Flow: %s\n", groupThousands(dist.TotalFlow.Round(0).String()))
	fmt.Fprintf(&b, "└ Last Update: %s\n\n", formatLastUpdate(result))

	fmt.Fprintf(&b, "Top %d Holders:\n", len(result.TopHolders))
	for i, holder := range result.TopHolders {
		marker := "👤"
		if holder.IsContract {
			marker = "📜"
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, marker, holder.Name)
		fmt.Fprintf(&b, "   └ %s\n", truncateAddress(holder.Address))
		fmt.Fprintf(&b, "   └ %.1f%% (%s tokens)\n",
			holder.Percentage, groupThousands(holder.Amount.Round(0).String()))
	}

	fmt.Fprintf(&b, "\n🔗 View on Bubblemaps: %s\n", result.MapURL)

	if result.ArtifactPath == "" {
		b.WriteString("\n⚠️ Bubble map image is unavailable for this request.\n")
	}

	return b.String()
}

func formatUSD(value *decimal.Decimal, places int32) string {
	if value == nil {
		return notAvailable
	}
	return "$" + groupThousands(value.StringFixed(places))
}

func formatPercent(value *float64) string {
	if value == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.1f%%", *value)
}

func formatChange(value *float64) string {
	if value == nil {
		return notAvailable
	}
	return fmt.Sprintf("%+.1f%%", *value)
}

func formatLastUpdate(result *analysis.Result) string {
	if result.Distribution.LastUpdate == nil {
		return "Unknown"
	}
	return result.Distribution.LastUpdate.UTC().Format("2006-01-02 15:04 UTC")
}

// truncateAddress shortens 0x… addresses to their first 8 and last 6 runes.
func truncateAddress(address string) string {
	if len(address) <= 14 {
		return address
	}
	return address[:8] + "..." + address[len(address)-6:]
}

// groupThousands inserts comma separators into the integer part of an
// already-formatted decimal string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}
	return sign + grouped.String() + fracPart
}
