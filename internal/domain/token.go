package domain

// USDValue wraps the {"usd": n} objects the backend uses for prices.
type USDValue struct {
	USD float64 `json:"usd"`
}

// TokenReport is the payload of GET /tokens/{mint}.
type TokenReport struct {
	Token   TokenInfo              `json:"token"`
	Pools   []Pool                 `json:"pools"`
	Events  map[string]PriceChange `json:"events"`
	Risk    Risk                   `json:"risk"`
	Holders float64                `json:"holders"`
	Buys    float64                `json:"buys"`
	Sells   float64                `json:"sells"`
	Txns    float64                `json:"txns"`
}

type TokenInfo struct {
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	Mint        string    `json:"mint"`
	Decimals    int       `json:"decimals"`
	Description string    `json:"description"`
	CreatedOn   string    `json:"createdOn"`
	Website     string    `json:"website,omitempty"`
	Twitter     string    `json:"twitter,omitempty"`
	Telegram    string    `json:"telegram,omitempty"`
	Image       string    `json:"image,omitempty"`
	Creation    *Creation `json:"creation,omitempty"`
}

type Creation struct {
	Creator     string `json:"creator"`
	CreatedTime int64  `json:"created_time"`
}

// Pool is a single liquidity pool. Nested objects are optional upstream.
type Pool struct {
	PoolID      string    `json:"poolId"`
	Market      string    `json:"market"`
	Price       *USDValue `json:"price,omitempty"`
	MarketCap   *USDValue `json:"marketCap,omitempty"`
	TokenSupply *float64  `json:"tokenSupply,omitempty"`
	Liquidity   *USDValue `json:"liquidity,omitempty"`
	LPBurn      float64   `json:"lpBurn"`
	Txns        *PoolTxns `json:"txns,omitempty"`
	Security    *Security `json:"security,omitempty"`
}

type PoolTxns struct {
	Volume24h float64  `json:"volume24h"`
	Volume    float64  `json:"volume"`
	Buys      float64  `json:"buys"`
	Sells     float64  `json:"sells"`
	Volume5m  *float64 `json:"volume5m,omitempty"`
	Volume1h  *float64 `json:"volume1h,omitempty"`
	Volume6h  *float64 `json:"volume6h,omitempty"`
}

// Security holds the pool's token authorities; nil means renounced.
type Security struct {
	FreezeAuthority *string `json:"freezeAuthority"`
	MintAuthority   *string `json:"mintAuthority"`
}

type PriceChange struct {
	PriceChangePercentage float64 `json:"priceChangePercentage"`
}

type Risk struct {
	Score    float64     `json:"score"`
	Rugged   bool        `json:"rugged"`
	Top10    float64     `json:"top10"`
	Snipers  *WalletRisk `json:"snipers,omitempty"`
	Insiders *WalletRisk `json:"insiders,omitempty"`
}

type WalletRisk struct {
	Count           float64 `json:"count"`
	TotalPercentage float64 `json:"totalPercentage"`
}

// AthReport is the payload of GET /tokens/{mint}/ath.
type AthReport struct {
	HighestPrice     float64 `json:"highest_price"`
	HighestMarketCap float64 `json:"highest_market_cap"`
	Timestamp        int64   `json:"timestamp"`
	PoolID           string  `json:"pool_id"`
}
