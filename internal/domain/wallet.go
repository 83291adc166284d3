package domain

// WalletReport is the payload of GET /wallet/{address}/chart. ChartData is
// ordered oldest first.
type WalletReport struct {
	ChartData []WalletSnapshot `json:"chartData"`
	PnL       WalletPnL        `json:"pnl"`
}

type WalletSnapshot struct {
	Date          string  `json:"date"`
	Value         float64 `json:"value"`
	Timestamp     int64   `json:"timestamp"`
	PnLPercentage float64 `json:"pnlPercentage"`
}

type WalletPnL struct {
	Day   PnLDelta `json:"24h"`
	Month PnLDelta `json:"30d"`
}

type PnLDelta struct {
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// EmptyWalletReport is the placeholder formatted when the wallet fetch fails.
func EmptyWalletReport() WalletReport {
	return WalletReport{ChartData: []WalletSnapshot{}}
}
