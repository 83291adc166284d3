package report

import (
	"strconv"
	"strings"

	"solana-terminal/internal/domain"
)

// MaxSearchResults caps how many search hits are rendered.
const MaxSearchResults = 5

const searchRule = "   ┌─────────────────────────────────────────────────────────────\n"
const searchRuleEnd = "   └─────────────────────────────────────────────────────────────\n"

// Search renders the first MaxSearchResults hits of a search response.
func Search(s *domain.SearchResponse) string {
	if s == nil || len(s.Data) == 0 {
		return NoSearchResults
	}
	results := s.Data
	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}

	var lowLiquidity, lowBurn, activeAuthority bool
	var b strings.Builder
	b.WriteString("\nSEARCH RESULTS:\n==============\n\n")
	b.WriteString("Found " + strconv.Itoa(s.Total) + " tokens matching your query. Here are the top " +
		strconv.Itoa(len(results)) + " results:\n")

	for i, t := range results {
		liqWarn := t.LiquidityUSD < liquidityCriticalUSD
		burnWarn := t.LPBurn < lpBurnCritical
		authWarn := t.FreezeAuthority != nil || t.MintAuthority != nil
		lowLiquidity = lowLiquidity || liqWarn
		lowBurn = lowBurn || burnWarn
		activeAuthority = activeAuthority || authWarn

		b.WriteString("\n" + strconv.Itoa(i+1) + ". " + orNA(t.Name) + " (" + orNA(t.Symbol) + ")\n")
		b.WriteString(searchRule)
		row(&b, "Mint Address", orNA(t.Mint))
		row(&b, "Current Price", "$"+fixed(t.PriceUSD, 8))
		row(&b, "Market Cap", "$"+grouped(t.MarketCapUSD))
		row(&b, "Liquidity", "$"+grouped(t.LiquidityUSD), warnIf(liqWarn, "LOW LIQUIDITY"))
		row(&b, "Holders", grouped(t.Holders))
		row(&b, "Market", orNA(t.Market))
		row(&b, "LP Burn", plain(t.LPBurn)+"%", warnIf(burnWarn, "LOW LP BURN"))
		row(&b, "Volume 24h", "$"+grouped(t.Volume24h))
		row(&b, "Created", unixSecondsDate(t.CreatedAt))
		security := good + " Good"
		if authWarn {
			security = critical + " Check Authorities"
		}
		row(&b, "Security", security, warnIf(authWarn, "AUTHORITY RISK"))
		b.WriteString(searchRuleEnd)
	}

	heading(&b, "SEARCH SUMMARY:")
	item(&b, "Total Results", strconv.Itoa(s.Total))
	item(&b, "Current Page", strconv.Itoa(s.Page)+"/"+strconv.Itoa(s.Pages))
	item(&b, "Results Shown", strconv.Itoa(len(results)))

	var warnings []string
	if lowLiquidity {
		warnings = append(warnings, "Some tokens have low liquidity (<$5,000)")
	}
	if lowBurn {
		warnings = append(warnings, "Some tokens have low LP burn (<50%)")
	}
	if activeAuthority {
		warnings = append(warnings, "Some tokens have active authorities")
	}
	heading(&b, critical+" SEARCH WARNINGS:")
	flagList(&b, warnings, "No major warnings for displayed tokens "+good)
	return b.String()
}

func row(b *strings.Builder, label, value string, markers ...string) {
	b.WriteString("   │ ")
	item(b, label, value, markers...)
}

func warnIf(cond bool, text string) string {
	if !cond {
		return ""
	}
	return critical + " " + text
}
