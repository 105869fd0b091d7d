package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Allocation struct {
	Name    string          `json:"name"`
	Value   decimal.Decimal `json:"value"`
	Percent decimal.Decimal `json:"percent"`
}

// CashSummary aggregates the non trade legs of the ledger in the reporting currency.
type CashSummary struct {
	Deposited      decimal.Decimal `json:"deposited"`
	Withdrawn      decimal.Decimal `json:"withdrawn"`
	Dividends      decimal.Decimal `json:"dividends"`
	WithholdingTax decimal.Decimal `json:"withholding_tax"`
}

func (c CashSummary) NetDeposit() decimal.Decimal {
	return c.Deposited.Sub(c.Withdrawn)
}

type PortfolioSummary struct {
	Holdings             []Holding       `json:"holdings"`
	TotalValue           decimal.Decimal `json:"total_value"`
	TotalCost            decimal.Decimal `json:"total_cost"`
	UnrealizedPnL        decimal.Decimal `json:"unrealized_pnl"`
	RealizedPnL          decimal.Decimal `json:"realized_pnl"`
	ReportingCurrency    string          `json:"reporting_currency"`
	FxRate               decimal.Decimal `json:"fx_rate"`
	AllocationByCategory []Allocation    `json:"allocation_by_category"`
	AllocationBySector   []Allocation    `json:"allocation_by_sector"`
	Cash                 CashSummary     `json:"cash"`
}

func (s PortfolioSummary) ActiveAssets() int {
	return len(s.Holdings)
}

// PerformanceSeries holds two day aligned index series normalized to 100 on the first day.
type PerformanceSeries struct {
	Benchmark      string      `json:"benchmark"`
	Dates          []time.Time `json:"dates"`
	PortfolioIndex []float64   `json:"portfolio_index"`
	BenchmarkIndex []float64   `json:"benchmark_index"`
}

func (p PerformanceSeries) Empty() bool {
	return len(p.Dates) == 0
}

func (p PerformanceSeries) PortfolioReturn() float64 {
	if p.Empty() {
		return 0
	}
	return p.PortfolioIndex[len(p.PortfolioIndex)-1] - 100
}

func (p PerformanceSeries) BenchmarkReturn() float64 {
	if p.Empty() {
		return 0
	}
	return p.BenchmarkIndex[len(p.BenchmarkIndex)-1] - 100
}

// RelativeReturn is the portfolio total return minus the benchmark total return, in percent points.
func (p PerformanceSeries) RelativeReturn() float64 {
	return p.PortfolioReturn() - p.BenchmarkReturn()
}

// Report is everything the spreadsheet export needs.
type Report struct {
	GeneratedAt  time.Time
	Summary      PortfolioSummary
	Transactions []Transaction
	Performance  PerformanceSeries
}

// ReportFile is a generated report, either uploaded (Link set) or returned as content.
type ReportFile struct {
	Name    string
	Content []byte
	Link    string
}
