package accounting

import (
	"testing"
	"time"

	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var d0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return d0.AddDate(0, 0, n)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type ledgerBuilder struct {
	t      *testing.T
	nextID int64
	txs    []model.Transaction
}

func newLedger(t *testing.T) *ledgerBuilder {
	return &ledgerBuilder{t: t, nextID: 1}
}

func (b *ledgerBuilder) add(date time.Time, txType model.TxType, ticker, qty, price, fee, fx string) *ledgerBuilder {
	b.t.Helper()
	tx, err := model.NewTransaction(model.TransactionDraft{
		Date:     date,
		Type:     txType,
		Platform: "Dime",
		Ticker:   ticker,
		Quantity: dec(qty),
		Price:    dec(price),
		Fee:      dec(fee),
		Currency: "USD",
		FxRate:   dec(fx),
	})
	require.NoError(b.t, err)
	tx.ID = b.nextID
	b.nextID++
	b.txs = append(b.txs, tx)
	return b
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}
