package model

import "github.com/shopspring/decimal"

type Position struct {
	Ticker    string          `json:"ticker"`
	Platform  string          `json:"platform"`
	Currency  string          `json:"currency"`
	Quantity  decimal.Decimal `json:"quantity"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

func (p Position) AvgCost() decimal.Decimal {
	if p.Quantity.IsZero() {
		return decimal.Zero
	}
	return p.TotalCost.Div(p.Quantity)
}

type Category string

const (
	CategoryStock  Category = "Stock"
	CategoryCrypto Category = "Crypto"
	CategoryCash   Category = "Cash"
)

const (
	SectorOthers = "Others"
	SectorCash   = "Cash & Equiv."
	SectorCrypto = "Crypto"
)

// Holding is an open position marked to market in the reporting currency.
// A zero CurrentPrice means the price is unknown, not that the asset is worthless.
type Holding struct {
	Position
	Category      Category        `json:"category"`
	Sector        string          `json:"sector"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	FxRate        decimal.Decimal `json:"fx_rate"`
	MarketValue   decimal.Decimal `json:"market_value"`
	CostBasis     decimal.Decimal `json:"cost_basis"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	PnLPercent    decimal.Decimal `json:"pnl_percent"`
}

func (h Holding) PriceKnown() bool {
	return !h.CurrentPrice.IsZero()
}
