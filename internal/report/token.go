package report

import (
	"math"
	"strconv"
	"strings"

	"solana-terminal/internal/domain"
	"solana-terminal/internal/intent"
)

// Token thresholds.
const (
	athDistanceCritical     = 90.0
	liquidityRatioCritical  = 5.0
	top10Critical           = 50.0
	top10Moderate           = 30.0
	riskScoreCritical       = 70.0
	riskScoreModerate       = 40.0
	sniperShareCritical     = 10.0
	insiderShareCritical    = 15.0
	lpBurnCritical          = 50.0
	lpBurnModerate          = 80.0
	liquidityCriticalUSD    = 5000.0
	liquidityGoodUSD        = 10000.0
	volumeRatioCritical     = 1.0
	buySellPressureCritical = 0.5
)

// priceWindows lists the price-change timeframes and the absolute move above
// which each is flagged as volatile.
var priceWindows = []struct {
	label     string
	threshold float64
}{
	{"1m", 20},
	{"5m", 30},
	{"15m", 40},
	{"1h", 50},
	{"6h", 70},
	{"24h", 80},
}

// Token renders a token report. ath is optional; when nil the all-time-high
// section is omitted.
func Token(t *domain.TokenReport, ath *domain.AthReport) string {
	if t == nil {
		return NoTokenData
	}

	var primary domain.Pool
	if len(t.Pools) > 0 {
		primary = t.Pools[0]
	}
	price := usd(primary.Price)
	marketCap := usd(primary.MarketCap)
	liquidity := usd(primary.Liquidity)
	var volume24h float64
	if primary.Txns != nil {
		volume24h = primary.Txns.Volume24h
	}

	var flags []string
	var b strings.Builder
	b.WriteString("\nTOKEN ANALYSIS DATA:\n==================\n")

	heading(&b, "BASIC INFO:")
	item(&b, "Name", orNA(t.Token.Name))
	item(&b, "Symbol", orNA(t.Token.Symbol))
	item(&b, "Mint Address", orNA(t.Token.Mint))
	item(&b, "Address Format", addressFormat(t.Token.Mint))
	item(&b, "Decimals", strconv.Itoa(t.Token.Decimals))
	description := t.Token.Description
	if strings.TrimSpace(description) == "" {
		description = "No description available"
	}
	item(&b, "Description", description)
	item(&b, "Created On", orNA(t.Token.CreatedOn))
	creator, created := notAvailable, notAvailable
	if t.Token.Creation != nil {
		creator = orNA(t.Token.Creation.Creator)
		created = unixSeconds(t.Token.Creation.CreatedTime)
	}
	item(&b, "Creator", creator)
	item(&b, "Created Time", created)

	heading(&b, "SOCIAL LINKS:")
	item(&b, "Website", orNA(t.Token.Website))
	item(&b, "Twitter", orNA(t.Token.Twitter))
	item(&b, "Telegram", orNA(t.Token.Telegram))

	heading(&b, "MARKET DATA:")
	item(&b, "Current Price (USD)", "$"+fixed(price, 8))
	item(&b, "Market Cap (USD)", "$"+grouped(marketCap))
	supply := notAvailable
	if primary.TokenSupply != nil {
		supply = grouped(*primary.TokenSupply)
	}
	item(&b, "Total Supply", supply)
	item(&b, "Holders", grouped(t.Holders))
	liqRatio, liqRatioOK := ratio(liquidity, marketCap)
	var liqRatioMarker string
	if liqRatioOK && liqRatio < liquidityRatioCritical {
		liqRatioMarker = critical + " LOW LIQUIDITY RATIO"
	}
	item(&b, "Liquidity to Market Cap Ratio", percentOrNA(liqRatio, liqRatioOK), liqRatioMarker)

	var athFlag bool
	if ath != nil {
		athFlag = writeATH(&b, ath, price)
	}

	heading(&b, "LIQUIDITY POOLS:")
	if len(t.Pools) == 0 {
		b.WriteString("- No liquidity pools reported\n")
	}
	var lowBurn bool
	for i, p := range t.Pools {
		if p.LPBurn < lpBurnCritical {
			lowBurn = true
		}
		writePool(&b, i, p)
	}

	heading(&b, "PRICE CHANGES:")
	for _, w := range priceWindows {
		change := t.Events[w.label].PriceChangePercentage
		var marker string
		if math.Abs(change) > w.threshold {
			marker = critical + " VOLATILE"
		}
		item(&b, w.label, fixed(change, 2)+"%", marker)
	}

	heading(&b, "SECURITY & RISK ANALYSIS:")
	r := t.Risk
	var riskMarker string
	switch {
	case r.Score > riskScoreCritical:
		riskMarker = critical + " HIGH RISK"
	case r.Score > riskScoreModerate:
		riskMarker = moderate + " MEDIUM RISK"
	}
	item(&b, "Risk Score", plain(r.Score)+"/100", riskBand(r.Score), riskMarker)
	rugged := "NO " + good
	if r.Rugged {
		rugged = "YES " + critical + " RUGGED"
	}
	item(&b, "Rugged", rugged)
	var top10Marker string
	switch {
	case r.Top10 > top10Critical:
		top10Marker = critical + " HIGH CONCENTRATION RISK"
	case r.Top10 > top10Moderate:
		top10Marker = moderate + " MODERATE CONCENTRATION"
	}
	item(&b, "Top 10 Holders", plain(r.Top10)+"% of total supply", top10Marker)
	snipers, sniperShare := walletRisk(r.Snipers)
	var sniperMarker string
	if sniperShare > sniperShareCritical {
		sniperMarker = critical + " HIGH SNIPER ACTIVITY"
	}
	item(&b, "Snipers", snipers, sniperMarker)
	insiders, insiderShare := walletRisk(r.Insiders)
	var insiderMarker string
	if insiderShare > insiderShareCritical {
		insiderMarker = critical + " HIGH INSIDER ACTIVITY"
	}
	item(&b, "Insiders", insiders, insiderMarker)
	var freeze, mint *string
	if primary.Security != nil {
		freeze, mint = primary.Security.FreezeAuthority, primary.Security.MintAuthority
	}
	freezeActive := authorityActive(freeze)
	mintActive := authorityActive(mint)
	item(&b, "Freeze Authority", authority(freeze), activeMarker(freezeActive, "FREEZE"))
	item(&b, "Mint Authority", authority(mint), activeMarker(mintActive, "MINT"))

	heading(&b, "RECENT ACTIVITY:")
	item(&b, "Recent Buys", grouped(t.Buys))
	item(&b, "Recent Sells", grouped(t.Sells))
	item(&b, "Total Recent Transactions", grouped(t.Txns))
	buySell, pressure := notAvailable, ""
	if t.Sells > 0 {
		rate := t.Buys / t.Sells
		buySell = fixed(rate, 2)
		if rate < buySellPressureCritical {
			pressure = critical + " SELL PRESSURE"
		}
	}
	item(&b, "Buy/Sell Ratio", buySell, pressure)

	heading(&b, "TRADING METRICS:")
	volRatio, volRatioOK := ratio(volume24h, marketCap)
	var volMarker string
	if volRatioOK && volRatio < volumeRatioCritical {
		volMarker = critical + " LOW TRADING VOLUME"
	}
	item(&b, "Volume to Market Cap Ratio", percentOrNA(volRatio, volRatioOK), volMarker)
	var health, healthMarker string
	switch {
	case liquidity > liquidityGoodUSD:
		health = "Good " + good
	case liquidity > liquidityCriticalUSD:
		health = "Moderate " + moderate
	default:
		health = "Low " + critical
	}
	if liquidity < liquidityCriticalUSD {
		healthMarker = critical + " LOW LIQUIDITY"
	}
	item(&b, "Liquidity Health", health, healthMarker)

	if athFlag {
		flags = append(flags, "Extreme distance from ATH (>90%)")
	}
	if liqRatioMarker != "" {
		flags = append(flags, "Low liquidity ratio (<5%)")
	}
	if r.Top10 > top10Critical {
		flags = append(flags, "High holder concentration (>50%)")
	}
	if r.Score > riskScoreCritical {
		flags = append(flags, "High risk score (>70)")
	}
	if r.Rugged {
		flags = append(flags, "Token is flagged as rugged")
	}
	if sniperMarker != "" {
		flags = append(flags, "High sniper activity (>10%)")
	}
	if insiderMarker != "" {
		flags = append(flags, "High insider activity (>15%)")
	}
	if freezeActive {
		flags = append(flags, "Freeze authority is active")
	}
	if mintActive {
		flags = append(flags, "Mint authority is active")
	}
	if healthMarker != "" {
		flags = append(flags, "Low liquidity (<$5,000)")
	}
	if volMarker != "" {
		flags = append(flags, "Low trading volume (<1% of market cap)")
	}
	if lowBurn {
		flags = append(flags, "Low LP burn (<50%)")
	}

	heading(&b, critical+" RED FLAGS SUMMARY:")
	flagList(&b, flags, "No major red flags detected "+good)
	return b.String()
}

// writeATH renders the all-time-high section and reports whether the current
// price is critically far below it.
func writeATH(b *strings.Builder, ath *domain.AthReport, price float64) bool {
	heading(b, "ALL-TIME HIGH DATA:")
	item(b, "Highest Price", "$"+fixed(ath.HighestPrice, 8))
	item(b, "Highest Market Cap", "$"+grouped(ath.HighestMarketCap))
	item(b, "ATH Date", unixSeconds(ath.Timestamp))

	distance, ok := ratio(ath.HighestPrice-price, ath.HighestPrice)
	var marker string
	if ok && distance > athDistanceCritical {
		marker = critical + " EXTREME DISTANCE FROM ATH"
	}
	value := notAvailable
	if ok {
		value = fixed(distance, 2) + "% below ATH"
	}
	item(b, "Distance from ATH", value, marker)
	item(b, "Pool ID", orNA(ath.PoolID))
	return marker != ""
}

func writePool(b *strings.Builder, i int, p domain.Pool) {
	b.WriteString("\nPool ")
	b.WriteString(strconv.Itoa(i + 1))
	b.WriteString(" (")
	b.WriteString(orNA(p.Market))
	b.WriteString("):\n")

	item(b, "Pool ID", orNA(p.PoolID))
	liquidity, liqMarker := notAvailable, ""
	if p.Liquidity != nil {
		liquidity = "$" + grouped(p.Liquidity.USD)
		if p.Liquidity.USD > 0 && p.Liquidity.USD < liquidityCriticalUSD {
			liqMarker = critical + " LOW"
		}
	}
	item(b, "Liquidity (USD)", liquidity, liqMarker)

	var burnMarker string
	switch {
	case p.LPBurn < lpBurnCritical:
		burnMarker = critical + " LOW LP BURN"
	case p.LPBurn < lpBurnModerate:
		burnMarker = moderate + " MODERATE LP BURN"
	default:
		burnMarker = good
	}
	item(b, "LP Burn", plain(p.LPBurn)+"%", burnMarker)

	vol24, vol, buys, sells := notAvailable, notAvailable, notAvailable, notAvailable
	if p.Txns != nil {
		vol24 = "$" + grouped(p.Txns.Volume24h)
		vol = "$" + grouped(p.Txns.Volume)
		buys = grouped(p.Txns.Buys)
		sells = grouped(p.Txns.Sells)
	}
	item(b, "Volume 24h", vol24)
	item(b, "Total Volume", vol)
	item(b, "Recent Buys", buys)
	item(b, "Recent Sells", sells)
}

func usd(v *domain.USDValue) float64 {
	if v == nil || !finite(v.USD) {
		return 0
	}
	return v.USD
}

func riskBand(score float64) string {
	switch {
	case score <= 20:
		return "(Low risk " + good + ")"
	case score <= 50:
		return "(Medium risk " + moderate + ")"
	default:
		return "(High risk " + critical + ")"
	}
}

func walletRisk(w *domain.WalletRisk) (string, float64) {
	if w == nil {
		return "0 wallets (0.00%)", 0
	}
	return grouped(w.Count) + " wallets (" + fixed(w.TotalPercentage, 2) + "%)", w.TotalPercentage
}

func authorityActive(a *string) bool {
	return a != nil && strings.TrimSpace(*a) != "" && *a != "None"
}

func authority(a *string) string {
	if !authorityActive(a) {
		return "None " + good
	}
	return *a
}

func activeMarker(active bool, kind string) string {
	if !active {
		return ""
	}
	return critical + " " + kind + " AUTHORITY ACTIVE"
}

func addressFormat(mint string) string {
	switch {
	case strings.TrimSpace(mint) == "":
		return notAvailable
	case intent.IsStandardPublicKey(mint):
		return "Standard public key"
	default:
		return "Extended identifier"
	}
}
