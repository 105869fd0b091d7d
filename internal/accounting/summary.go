package accounting

import (
	"sort"

	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// CashFlows sums the deposit, withdrawal and dividend legs converted at each transaction's own fx rate.
func CashFlows(txs []model.Transaction) model.CashSummary {
	var s model.CashSummary
	for _, tx := range txs {
		amount := tx.Quantity.Mul(tx.Price).Mul(tx.FxRate)
		switch tx.Type {
		case model.Deposit:
			s.Deposited = s.Deposited.Add(amount)
		case model.Withdraw:
			s.Withdrawn = s.Withdrawn.Add(amount)
		case model.Dividend:
			s.Dividends = s.Dividends.Add(amount)
			s.WithholdingTax = s.WithholdingTax.Add(tx.Wht.Mul(tx.FxRate))
		}
	}
	return s
}

// Summarize totals valued holdings and splits them by category and sector.
func Summarize(holdings []model.Holding, realized decimal.Decimal, cash model.CashSummary) model.PortfolioSummary {
	s := model.PortfolioSummary{
		Holdings:    holdings,
		RealizedPnL: realized,
		Cash:        cash,
	}

	byCategory := make(map[string]decimal.Decimal)
	bySector := make(map[string]decimal.Decimal)
	for _, h := range holdings {
		s.TotalValue = s.TotalValue.Add(h.MarketValue)
		s.TotalCost = s.TotalCost.Add(h.CostBasis)
		byCategory[string(h.Category)] = byCategory[string(h.Category)].Add(h.MarketValue)
		bySector[h.Sector] = bySector[h.Sector].Add(h.MarketValue)
	}
	s.UnrealizedPnL = s.TotalValue.Sub(s.TotalCost)
	s.AllocationByCategory = allocations(byCategory, s.TotalValue)
	s.AllocationBySector = allocations(bySector, s.TotalValue)

	return s
}

func allocations(values map[string]decimal.Decimal, total decimal.Decimal) []model.Allocation {
	res := make([]model.Allocation, 0, len(values))
	for name, value := range values {
		a := model.Allocation{Name: name, Value: value}
		if !total.IsZero() {
			a.Percent = value.Div(total).Mul(hundred).Round(2)
		}
		res = append(res, a)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Value.Equal(res[j].Value) {
			return res[i].Value.GreaterThan(res[j].Value)
		}
		return res[i].Name < res[j].Name
	})
	return res
}
