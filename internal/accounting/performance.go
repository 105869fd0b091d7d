package accounting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/KotFed0t/wealth_tracker/internal/model/marketModel"
	"github.com/KotFed0t/wealth_tracker/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var ErrInsufficientHistory = errors.New("insufficient history for performance series")

const (
	// seedDays of history fetched before the first ledger day so forward fill has a last close on day one.
	seedDays           = 7
	defaultConcurrency = 4
)

type HistorySource interface {
	History(ctx context.Context, ticker string, from, to time.Time) ([]marketModel.PricePoint, error)
}

type PerformanceBuilder struct {
	history     HistorySource
	benchmark   string
	now         func() time.Time
	concurrency int
}

func NewPerformanceBuilder(history HistorySource, benchmark string, now func() time.Time) *PerformanceBuilder {
	if now == nil {
		now = time.Now
	}
	return &PerformanceBuilder{
		history:     history,
		benchmark:   benchmark,
		now:         now,
		concurrency: defaultConcurrency,
	}
}

// Build produces the daily portfolio and benchmark index series from the
// first ledger day to today inclusive. If any history lookup fails the whole
// series is discarded: an empty result with ErrInsufficientHistory.
func (b *PerformanceBuilder) Build(ctx context.Context, txs []model.Transaction) (model.PerformanceSeries, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PerformanceBuilder.Build"

	if len(txs) == 0 {
		return model.PerformanceSeries{}, fmt.Errorf("%w: empty ledger", ErrInsufficientHistory)
	}

	ledger := SortLedger(txs)
	start := ledger[0].Date
	end := model.DateOf(b.now())
	if end.Before(start) {
		return model.PerformanceSeries{}, fmt.Errorf("%w: ledger starts after today", ErrInsufficientHistory)
	}
	days := model.DaysBetween(start, end) + 1

	quantities, rates, flows := replayDaily(ledger, start, days)

	tickers := make([]string, 0, len(quantities))
	for ticker := range quantities {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	prices, err := b.fetchPrices(ctx, append(tickers, b.benchmark), start, end, days)
	if err != nil {
		slog.Error("performance series aborted", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PerformanceSeries{}, fmt.Errorf("%w: %w", ErrInsufficientHistory, err)
	}

	values := make([]decimal.Decimal, days)
	for _, ticker := range tickers {
		qty, fx, closes := quantities[ticker], rates[ticker], prices[ticker]
		for d := 0; d < days; d++ {
			values[d] = values[d].Add(qty[d].Mul(closes[d]).Mul(fx[d]))
		}
	}

	series := model.PerformanceSeries{
		Benchmark:      b.benchmark,
		Dates:          make([]time.Time, days),
		PortfolioIndex: cashFlowAdjustedIndex(values, flows),
		BenchmarkIndex: priceIndex(prices[b.benchmark]),
	}
	for d := 0; d < days; d++ {
		series.Dates[d] = start.AddDate(0, 0, d)
	}

	return series, nil
}

// replayDaily builds the running quantity step function per ticker, the fx
// rate of the ticker's latest trade per day and the external cash flow per
// day. Values and flows are both in the reporting currency once multiplied by
// those rates, so tickers quoted in different currencies add up.
func replayDaily(ledger []model.Transaction, start time.Time, days int) (quantities, rates map[string][]decimal.Decimal, flows []decimal.Decimal) {
	quantities = make(map[string][]decimal.Decimal)
	rates = make(map[string][]decimal.Decimal)
	flows = make([]decimal.Decimal, days)
	held := make(map[string]decimal.Decimal)

	for _, tx := range ledger {
		if !tx.Type.IsTrade() {
			continue
		}
		d := model.DaysBetween(start, tx.Date)
		if d < 0 || d >= days {
			continue
		}
		// same tolerance as Aggregate: a sell without an open position changes nothing
		if tx.Type == model.Sell && !held[tx.Ticker].IsPositive() {
			continue
		}
		held[tx.Ticker] = held[tx.Ticker].Add(tx.SignedQuantity())
		if _, ok := quantities[tx.Ticker]; !ok {
			quantities[tx.Ticker] = make([]decimal.Decimal, days)
			rates[tx.Ticker] = make([]decimal.Decimal, days)
		}
		quantities[tx.Ticker][d] = quantities[tx.Ticker][d].Add(tx.SignedQuantity())
		rates[tx.Ticker][d] = tx.FxRate
		flows[d] = flows[d].Add(tx.CashFlow().Mul(tx.FxRate))
	}

	for ticker, qty := range quantities {
		fx := rates[ticker]
		for d := 1; d < days; d++ {
			qty[d] = qty[d].Add(qty[d-1])
			if fx[d].IsZero() {
				fx[d] = fx[d-1]
			}
		}
	}

	return quantities, rates, flows
}

func (b *PerformanceBuilder) fetchPrices(ctx context.Context, symbols []string, start, end time.Time, days int) (map[string][]decimal.Decimal, error) {
	results := make([][]decimal.Decimal, len(symbols))
	from := start.AddDate(0, 0, -seedDays)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			points, err := b.history.History(gctx, symbol, from, end)
			if err != nil {
				return fmt.Errorf("history %s: %w", symbol, err)
			}
			results[i] = forwardFill(points, start, days)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prices := make(map[string][]decimal.Decimal, len(symbols))
	for i, symbol := range symbols {
		prices[symbol] = results[i]
	}
	return prices, nil
}

// forwardFill aligns closes to every calendar day, carrying the last known
// close over days without a quote. Days before the first known close are zero.
func forwardFill(points []marketModel.PricePoint, start time.Time, days int) []decimal.Decimal {
	sorted := make([]marketModel.PricePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	closes := make([]decimal.Decimal, days)
	last := decimal.Zero
	next := 0
	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d)
		for next < len(sorted) && !model.DateOf(sorted[next].Date).After(day) {
			last = sorted[next].Close
			next++
		}
		closes[d] = last
	}
	return closes
}

// cashFlowAdjustedIndex compounds r(t) = (V(t) - flow(t)) / V(t-1) - 1 into an
// index starting at 100. Days without prior value contribute a zero return.
func cashFlowAdjustedIndex(values, flows []decimal.Decimal) []float64 {
	index := make([]float64, len(values))
	level := 100.0
	for d := range values {
		if d > 0 && values[d-1].IsPositive() {
			growth := values[d].Sub(flows[d]).Div(values[d-1])
			level *= growth.InexactFloat64()
		}
		index[d] = level
	}
	return index
}

// priceIndex compounds plain period over period returns into an index starting at 100.
func priceIndex(closes []decimal.Decimal) []float64 {
	index := make([]float64, len(closes))
	level := 100.0
	for d := range closes {
		if d > 0 && closes[d-1].IsPositive() && closes[d].IsPositive() {
			level *= closes[d].Div(closes[d-1]).InexactFloat64()
		}
		index[d] = level
	}
	return index
}
