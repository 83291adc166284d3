// Package report renders backend payloads into the fixed-layout text
// reports embedded in LLM prompts. Every function is pure and total: missing
// data and zero denominators render as N/A, never as NaN or Inf.
package report

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	notAvailable = "N/A"

	critical = "🔴"
	moderate = "🟡"
	good     = "✅"

	dateTimeLayout = "1/2/2006, 3:04:05 PM"
	dateLayout     = "1/2/2006"
)

// Messages returned in place of a report when no data is available.
const (
	NoTokenData     = "Unable to fetch token data from API."
	NoWalletData    = "Unable to fetch wallet data from API."
	NoSearchResults = "No tokens found matching the search query."
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// fixed renders v with exactly places decimals.
func fixed(v float64, places int32) string {
	if !finite(v) {
		return notAvailable
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// grouped renders v with thousands separators and at most three decimals.
func grouped(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	d := decimal.NewFromFloat(v).Round(3)
	neg := d.IsNegative()
	d = d.Abs()

	whole := d.Truncate(0)
	out := humanize.Comma(whole.IntPart())
	if frac := strings.TrimRight(strings.TrimPrefix(d.Sub(whole).StringFixed(3), "0"), "0"); frac != "." {
		out += frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// plain renders v in its shortest exact form, as the backend sent it.
func plain(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ratio returns num/den*100, or false when den is not positive.
func ratio(num, den float64) (float64, bool) {
	if den <= 0 || !finite(num) || !finite(den) {
		return 0, false
	}
	r := num / den * 100
	return r, finite(r)
}

// percentOrNA renders a ratio with two decimals, or N/A.
func percentOrNA(v float64, ok bool) string {
	if !ok {
		return notAvailable
	}
	return fixed(v, 2) + "%"
}

func unixSeconds(sec int64) string {
	if sec <= 0 {
		return notAvailable
	}
	return time.Unix(sec, 0).UTC().Format(dateTimeLayout)
}

func unixSecondsDate(sec int64) string {
	if sec <= 0 {
		return notAvailable
	}
	return time.Unix(sec, 0).UTC().Format(dateLayout)
}

func unixMillis(ms int64) string {
	if ms <= 0 {
		return notAvailable
	}
	return time.UnixMilli(ms).UTC().Format(dateTimeLayout)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

// item writes "- label: value" followed by any non-empty markers.
func item(b *strings.Builder, label, value string, markers ...string) {
	b.WriteString("- ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	for _, m := range markers {
		if m != "" {
			b.WriteString(" ")
			b.WriteString(m)
		}
	}
	b.WriteString("\n")
}

// flagList renders the closing summary; it is never empty.
func flagList(b *strings.Builder, flags []string, none string) {
	if len(flags) == 0 {
		b.WriteString("- ")
		b.WriteString(none)
		b.WriteString("\n")
		return
	}
	for _, f := range flags {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteString("\n")
	}
}

func heading(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
}
