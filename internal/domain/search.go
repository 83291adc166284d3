package domain

// SearchResponse is the payload of GET /search.
type SearchResponse struct {
	Status string         `json:"status"`
	Data   []SearchResult `json:"data"`
	Total  int            `json:"total"`
	Pages  int            `json:"pages"`
	Page   int            `json:"page"`
}

// SearchResult is a lightweight token summary.
type SearchResult struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Symbol            string        `json:"symbol"`
	Mint              string        `json:"mint"`
	Image             string        `json:"image"`
	Decimals          int           `json:"decimals"`
	HasSocials        bool          `json:"hasSocials"`
	PoolAddress       string        `json:"poolAddress"`
	LiquidityUSD      float64       `json:"liquidityUsd"`
	MarketCapUSD      float64       `json:"marketCapUsd"`
	PriceUSD          float64       `json:"priceUsd"`
	LPBurn            float64       `json:"lpBurn"`
	Market            string        `json:"market"`
	QuoteToken        string        `json:"quoteToken"`
	FreezeAuthority   *string       `json:"freezeAuthority"`
	MintAuthority     *string       `json:"mintAuthority"`
	Deployer          string        `json:"deployer"`
	Status            string        `json:"status"`
	CreatedAt         int64         `json:"createdAt"`
	LastUpdated       int64         `json:"lastUpdated"`
	Holders           float64       `json:"holders"`
	Buys              float64       `json:"buys"`
	Sells             float64       `json:"sells"`
	TotalTransactions float64       `json:"totalTransactions"`
	Volume            float64       `json:"volume"`
	Volume5m          float64       `json:"volume_5m"`
	Volume1h          float64       `json:"volume_1h"`
	Volume6h          float64       `json:"volume_6h"`
	Volume24h         float64       `json:"volume_24h"`
	TokenDetails      *TokenDetails `json:"tokenDetails,omitempty"`
}

type TokenDetails struct {
	Creator string `json:"creator"`
	Tx      string `json:"tx"`
	Time    int64  `json:"time"`
}
