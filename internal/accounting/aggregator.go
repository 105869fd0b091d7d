package accounting

import (
	"sort"
	"time"

	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// closedEpsilon is the quantity at or below which a position counts as closed.
var closedEpsilon = decimal.New(1, -6)

type AggregateResult struct {
	Positions   []model.Position
	RealizedPnL decimal.Decimal
}

// SortLedger returns a copy of txs ordered by date, then by id so entries of
// the same day keep their entry order. A sell therefore sees the buys entered
// before it on its own date, not only those of earlier dates.
func SortLedger(txs []model.Transaction) []model.Transaction {
	sorted := make([]model.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// Aggregate replays the ledger with weighted average cost accounting. The
// average cost is recomputed from the whole position on every sell, and each
// realization is converted with the fx rate of its own sell transaction.
// Selling from an empty position leaves the cost basis untouched.
func Aggregate(txs []model.Transaction) AggregateResult {
	positions := make(map[string]*model.Position)
	realized := decimal.Zero

	for _, tx := range SortLedger(txs) {
		if !tx.Type.IsTrade() {
			continue
		}

		pos, ok := positions[tx.Ticker]
		if !ok {
			pos = &model.Position{Ticker: tx.Ticker, Currency: tx.Currency}
			positions[tx.Ticker] = pos
		}

		switch tx.Type {
		case model.Buy:
			pos.Quantity = pos.Quantity.Add(tx.Quantity)
			pos.TotalCost = pos.TotalCost.Add(tx.Quantity.Mul(tx.Price).Add(tx.Fee))
			pos.Platform = tx.Platform
			pos.Currency = tx.Currency
		case model.Sell:
			if !pos.Quantity.IsPositive() {
				continue
			}
			costRemoved := pos.AvgCost().Mul(tx.Quantity)
			proceeds := tx.Quantity.Mul(tx.Price).Sub(tx.Fee)
			realized = realized.Add(proceeds.Sub(costRemoved).Mul(tx.FxRate))

			pos.Quantity = pos.Quantity.Sub(tx.Quantity)
			pos.TotalCost = pos.TotalCost.Sub(costRemoved)
		}
	}

	open := make([]model.Position, 0, len(positions))
	for _, pos := range positions {
		if pos.Quantity.GreaterThan(closedEpsilon) {
			open = append(open, *pos)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Ticker < open[j].Ticker })

	return AggregateResult{Positions: open, RealizedPnL: realized}
}

// UncoveredSell replays the trades of ticker in ledger order and returns the
// first SELL dated on or after from that exceeds the quantity held just before
// it. Earlier uncovered sells are replayed the way Aggregate treats them.
func UncoveredSell(txs []model.Transaction, ticker string, from time.Time) (sell model.Transaction, held decimal.Decimal, found bool) {
	held = decimal.Zero
	for _, tx := range SortLedger(txs) {
		if tx.Ticker != ticker || !tx.Type.IsTrade() {
			continue
		}
		if tx.Type == model.Sell {
			if held.LessThan(tx.Quantity) && !tx.Date.Before(from) {
				return tx, held, true
			}
			if !held.IsPositive() {
				continue
			}
		}
		held = held.Add(tx.SignedQuantity())
	}
	return model.Transaction{}, held, false
}
