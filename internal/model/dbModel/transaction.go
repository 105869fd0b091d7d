package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID       int64           `db:"id"`
	Date     time.Time       `db:"date"`
	Type     string          `db:"type"`
	Platform string          `db:"platform"`
	Ticker   string          `db:"ticker"`
	Quantity decimal.Decimal `db:"quantity"`
	Price    decimal.Decimal `db:"price"`
	Fee      decimal.Decimal `db:"fee"`
	Currency string          `db:"currency"`
	FxRate   decimal.Decimal `db:"fx_rate"`
	Wht      decimal.Decimal `db:"wht"`
	Notes    string          `db:"notes"`
}
