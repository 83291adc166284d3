package report

import (
	"math"
	"strconv"
	"strings"

	"solana-terminal/internal/domain"
)

// MaxWalletHistory is how many of the most recent snapshots are listed.
const MaxWalletHistory = 10

const snapshotVolatility = 30.0

// Wallet renders a wallet PnL report. An empty chart yields NoWalletData.
func Wallet(w domain.WalletReport) string {
	points := w.ChartData
	if len(points) == 0 {
		return NoWalletData
	}

	first, last := points[0], points[len(points)-1]
	total, totalOK := ratio(last.Value-first.Value, first.Value)

	high, low := first, first
	for _, p := range points[1:] {
		if p.Value > high.Value {
			high = p
		}
		if p.Value < low.Value {
			low = p
		}
	}

	dayWarn := w.PnL.Day.Percentage < -20
	monthWarn := w.PnL.Month.Percentage < -50
	totalWarn := totalOK && total < -70
	extreme := totalOK && math.Abs(total) > 80

	var b strings.Builder
	b.WriteString("\nWALLET ANALYSIS DATA:\n====================\n")

	heading(&b, "PORTFOLIO OVERVIEW:")
	item(&b, "Current Portfolio Value", "$"+grouped(last.Value))
	item(&b, "Initial Portfolio Value", "$"+grouped(first.Value))
	item(&b, "Total PnL", percentOrNA(total, totalOK), warnIf(totalWarn, "SEVERE PORTFOLIO DECLINE"))
	item(&b, "Data Points", strconv.Itoa(len(points))+" entries")
	item(&b, "Date Range", orNA(first.Date)+" to "+orNA(last.Date))

	heading(&b, "PERFORMANCE METRICS:")
	item(&b, "24h PnL", pnl(w.PnL.Day), warnIf(dayWarn, "SIGNIFICANT 24H LOSS"))
	item(&b, "30d PnL", pnl(w.PnL.Month), warnIf(monthWarn, "MAJOR 30D LOSS"))

	heading(&b, "PORTFOLIO EXTREMES:")
	item(&b, "Highest Value", extremePoint(high))
	item(&b, "Lowest Value", extremePoint(low))
	drawdown := high.Value - low.Value
	dd, ddOK := ratio(drawdown, high.Value)
	item(&b, "Max Drawdown", "$"+grouped(drawdown)+" ("+percentOrNA(dd, ddOK)+")")

	heading(&b, "RECENT PORTFOLIO HISTORY:")
	recent := points
	if len(recent) > MaxWalletHistory {
		recent = recent[len(recent)-MaxWalletHistory:]
	}
	for i, p := range recent {
		b.WriteString("\n" + strconv.Itoa(i+1) + ". " + orNA(p.Date) + ":\n")
		b.WriteString("   ")
		item(&b, "Value", "$"+grouped(p.Value))
		b.WriteString("   ")
		item(&b, "PnL", fixed(p.PnLPercentage, 2)+"%", warnIf(math.Abs(p.PnLPercentage) > snapshotVolatility, "HIGH VOLATILITY"))
		b.WriteString("   ")
		item(&b, "Timestamp", unixMillis(p.Timestamp))
	}

	heading(&b, "RISK ASSESSMENT:")
	volatility := notAvailable
	if totalOK {
		switch abs := math.Abs(total); {
		case abs > 50:
			volatility = critical + " HIGH"
		case abs > 20:
			volatility = moderate + " MODERATE"
		default:
			volatility = good + " LOW"
		}
	}
	item(&b, "Portfolio Volatility", volatility)
	item(&b, "Recent Performance", trend(w.PnL.Day.Percentage, 10, "DECLINING", "GROWING", "STABLE"))
	item(&b, "Long-term Trend", trend(w.PnL.Month.Percentage, 30, "BEARISH", "BULLISH", "SIDEWAYS"))

	var warnings []string
	if dayWarn {
		warnings = append(warnings, "Significant 24h loss (>20%)")
	}
	if monthWarn {
		warnings = append(warnings, "Major 30d loss (>50%)")
	}
	if totalWarn {
		warnings = append(warnings, "Severe portfolio decline (>70%)")
	}
	if extreme {
		warnings = append(warnings, "Extreme portfolio volatility")
	}
	heading(&b, critical+" WALLET WARNINGS:")
	flagList(&b, warnings, "No major wallet warnings detected "+good)
	return b.String()
}

func pnl(d domain.PnLDelta) string {
	return "$" + grouped(d.Value) + " (" + fixed(d.Percentage, 2) + "%)"
}

func extremePoint(p domain.WalletSnapshot) string {
	return "$" + grouped(p.Value) + " on " + orNA(p.Date) + " (" + fixed(p.PnLPercentage, 2) + "%)"
}

func trend(pct, band float64, down, up, flat string) string {
	switch {
	case pct < -band:
		return critical + " " + down
	case pct > band:
		return good + " " + up
	default:
		return moderate + " " + flat
	}
}
