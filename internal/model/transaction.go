package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TxType string

const (
	Buy      TxType = "BUY"
	Sell     TxType = "SELL"
	Deposit  TxType = "DEPOSIT"
	Withdraw TxType = "WITHDRAW"
	Dividend TxType = "DIVIDEND"
)

func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case Buy, Sell, Deposit, Withdraw, Dividend:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

func (t TxType) IsTrade() bool {
	return t == Buy || t == Sell
}

// Transaction is an immutable ledger entry. It is only ever created through
// NewTransaction and removed as a whole.
type Transaction struct {
	ID       int64           `json:"id"`
	Date     time.Time       `json:"date"`
	Type     TxType          `json:"type"`
	Platform string          `json:"platform"`
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fee      decimal.Decimal `json:"fee"`
	Currency string          `json:"currency"`
	FxRate   decimal.Decimal `json:"fx_rate"`
	Wht      decimal.Decimal `json:"wht"`
	Notes    string          `json:"notes"`
}

// TransactionDraft is the raw user input before validation.
type TransactionDraft struct {
	Date     time.Time
	Type     TxType
	Platform string
	Ticker   string
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Fee      decimal.Decimal
	Currency string
	FxRate   decimal.Decimal
	Wht      decimal.Decimal
	Notes    string
}

// cryptoAliases maps bare coin symbols to the quote pair the market data provider knows.
var cryptoAliases = map[string]string{
	"BTC":  "BTC-USD",
	"ETH":  "ETH-USD",
	"SOL":  "SOL-USD",
	"DOGE": "DOGE-USD",
	"XRP":  "XRP-USD",
	"BNB":  "BNB-USD",
	"ADA":  "ADA-USD",
}

func NormalizeTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if alias, ok := cryptoAliases[t]; ok {
		return alias
	}
	return t
}

// NewTransaction validates a draft and fills the type specific defaults:
// cash legs use the currency as ticker and a unit price of 1, dividends are
// recorded as a single unit paying the net amount.
func NewTransaction(d TransactionDraft) (Transaction, error) {
	if _, err := ParseTxType(string(d.Type)); err != nil {
		return Transaction{}, err
	}
	if d.Date.IsZero() {
		return Transaction{}, ErrDateRequired
	}

	tx := Transaction{
		Date:     DateOf(d.Date),
		Type:     d.Type,
		Platform: strings.TrimSpace(d.Platform),
		Ticker:   NormalizeTicker(d.Ticker),
		Quantity: d.Quantity,
		Price:    d.Price,
		Fee:      d.Fee,
		Currency: strings.ToUpper(strings.TrimSpace(d.Currency)),
		FxRate:   d.FxRate,
		Wht:      d.Wht,
		Notes:    strings.TrimSpace(d.Notes),
	}

	if tx.Currency == "" {
		return Transaction{}, ErrCurrencyRequired
	}

	switch tx.Type {
	case Deposit, Withdraw:
		tx.Ticker = tx.Currency
		tx.Price = decimal.NewFromInt(1)
	case Dividend:
		if tx.Quantity.IsZero() {
			tx.Quantity = decimal.NewFromInt(1)
		}
	}

	if tx.Ticker == "" {
		return Transaction{}, ErrTickerRequired
	}
	if !tx.Quantity.IsPositive() {
		return Transaction{}, ErrInvalidQuantity
	}
	if tx.Price.IsNegative() {
		return Transaction{}, ErrInvalidPrice
	}
	if tx.Fee.IsNegative() {
		return Transaction{}, ErrInvalidFee
	}
	if !tx.FxRate.IsPositive() {
		return Transaction{}, ErrInvalidFxRate
	}
	if tx.Wht.IsNegative() || (!tx.Wht.IsZero() && tx.Type != Dividend) {
		return Transaction{}, ErrInvalidWht
	}

	return tx, nil
}

// SignedQuantity is the position change caused by a trade: positive for BUY,
// negative for SELL and zero for every other type.
func (t Transaction) SignedQuantity() decimal.Decimal {
	switch t.Type {
	case Buy:
		return t.Quantity
	case Sell:
		return t.Quantity.Neg()
	default:
		return decimal.Zero
	}
}

// CashFlow is the external capital a trade moves into (BUY) or out of (SELL)
// the invested portfolio, in native currency.
func (t Transaction) CashFlow() decimal.Decimal {
	gross := t.Quantity.Mul(t.Price)
	switch t.Type {
	case Buy:
		return gross.Add(t.Fee)
	case Sell:
		return gross.Sub(t.Fee).Neg()
	default:
		return decimal.Zero
	}
}
