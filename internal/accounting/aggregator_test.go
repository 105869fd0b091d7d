package accounting

import (
	"testing"

	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateAllBuys(t *testing.T) {
	txs := newLedger(t).
		add(day(0), model.Buy, "AAPL", "10", "100", "1", "1").
		add(day(3), model.Buy, "AAPL", "5", "110", "2", "1").
		add(day(1), model.Buy, "MSFT", "2", "300", "0", "1").
		txs

	res := Aggregate(txs)

	require.Len(t, res.Positions, 2)
	assert.Equal(t, "AAPL", res.Positions[0].Ticker)
	assertDecimal(t, "15", res.Positions[0].Quantity)
	assertDecimal(t, "1553", res.Positions[0].TotalCost)
	assert.Equal(t, "MSFT", res.Positions[1].Ticker)
	assertDecimal(t, "600", res.Positions[1].TotalCost)
	assertDecimal(t, "0", res.RealizedPnL)
}

func TestAggregateSellAllClosesPosition(t *testing.T) {
	txs := newLedger(t).
		add(day(0), model.Buy, "XYZ", "10", "100", "1", "1").
		add(day(5), model.Sell, "XYZ", "10", "150", "2", "1").
		txs

	res := Aggregate(txs)

	assert.Empty(t, res.Positions)
	assertDecimal(t, "497", res.RealizedPnL)
}

func TestAggregateRoundTrip(t *testing.T) {
	txs := newLedger(t).
		add(day(0), model.Buy, "XYZ", "4", "25", "0", "1").
		add(day(1), model.Sell, "XYZ", "4", "30", "0", "1").
		txs

	assertDecimal(t, "20", Aggregate(txs).RealizedPnL)
}

func TestAggregateAverageCostOnPartialSell(t *testing.T) {
	txs := newLedger(t).
		add(day(0), model.Buy, "XYZ", "10", "100", "0", "1").
		add(day(1), model.Buy, "XYZ", "10", "200", "0", "1").
		add(day(2), model.Sell, "XYZ", "5", "300", "0", "1").
		txs

	res := Aggregate(txs)

	require.Len(t, res.Positions, 1)
	assertDecimal(t, "15", res.Positions[0].Quantity)
	assertDecimal(t, "2250", res.Positions[0].TotalCost)
	assertDecimal(t, "150", res.Positions[0].AvgCost())
	assertDecimal(t, "750", res.RealizedPnL)
}

func TestAggregateSellIgnoresLaterDatedBuys(t *testing.T) {
	// the second buy is dated after the sell and must not change its average cost
	txs := newLedger(t).
		add(day(0), model.Buy, "XYZ", "10", "100", "0", "1").
		add(day(2), model.Buy, "XYZ", "10", "300", "0", "1").
		add(day(1), model.Sell, "XYZ", "5", "120", "0", "1").
		txs

	res := Aggregate(txs)

	assertDecimal(t, "100", res.RealizedPnL)
	require.Len(t, res.Positions, 1)
	assertDecimal(t, "15", res.Positions[0].Quantity)
	assertDecimal(t, "3500", res.Positions[0].TotalCost)
}

func TestAggregateSameDayBuyEnteredBeforeSellCounts(t *testing.T) {
	// entries of one day are replayed in entry order, so a buy recorded
	// before the sell on the same date is part of its average cost
	txs := newLedger(t).
		add(day(0), model.Buy, "XYZ", "10", "100", "0", "1").
		add(day(1), model.Buy, "XYZ", "10", "200", "0", "1").
		add(day(1), model.Sell, "XYZ", "10", "150", "0", "1").
		add(day(1), model.Buy, "XYZ", "10", "900", "0", "1").
		txs

	res := Aggregate(txs)

	assertDecimal(t, "0", res.RealizedPnL)
	require.Len(t, res.Positions, 1)
	assertDecimal(t, "20", res.Positions[0].Quantity)
	assertDecimal(t, "10500", res.Positions[0].TotalCost)
}

func TestAggregateConvertsEachSellAtItsOwnFx(t *testing.T) {
	txs := newLedger(t).
		add(day(0), model.Buy, "XYZ", "10", "10", "0", "30").
		add(day(1), model.Sell, "XYZ", "5", "12", "0", "35").
		add(day(2), model.Sell, "XYZ", "5", "8", "0", "36").
		txs

	assertDecimal(t, "-10", Aggregate(txs).RealizedPnL)
}

func TestAggregateSellWithoutPositionIsNoop(t *testing.T) {
	txs := newLedger(t).
		add(day(0), model.Sell, "XYZ", "5", "100", "0", "1").
		add(day(1), model.Buy, "XYZ", "2", "50", "0", "1").
		txs

	res := Aggregate(txs)

	assertDecimal(t, "0", res.RealizedPnL)
	require.Len(t, res.Positions, 1)
	assertDecimal(t, "2", res.Positions[0].Quantity)
	assertDecimal(t, "100", res.Positions[0].TotalCost)
}

func TestAggregateSkipsCashLegs(t *testing.T) {
	txs := newLedger(t).
		add(day(0), model.Deposit, "", "1000", "1", "0", "1").
		add(day(1), model.Dividend, "MSFT", "1", "12", "0", "1").
		txs

	res := Aggregate(txs)

	assert.Empty(t, res.Positions)
	assertDecimal(t, "0", res.RealizedPnL)
}

func TestAggregateKeepsLastPlatform(t *testing.T) {
	b := newLedger(t).add(day(0), model.Buy, "XYZ", "1", "10", "0", "1")
	b.add(day(1), model.Buy, "XYZ", "1", "10", "0", "1")
	b.txs[1].Platform = "Streaming"

	res := Aggregate(b.txs)

	require.Len(t, res.Positions, 1)
	assert.Equal(t, "Streaming", res.Positions[0].Platform)
	assert.Equal(t, "USD", res.Positions[0].Currency)
}

func TestUncoveredSellAllCovered(t *testing.T) {
	txs := newLedger(t).
		add(day(0), model.Buy, "XYZ", "10", "100", "0", "1").
		add(day(2), model.Sell, "XYZ", "4", "100", "0", "1").
		add(day(4), model.Buy, "XYZ", "1", "100", "0", "1").
		add(day(5), model.Sell, "XYZ", "7", "100", "0", "1").
		add(day(1), model.Sell, "ABC", "1", "100", "0", "1").
		txs

	_, held, found := UncoveredSell(txs, "XYZ", day(0))
	assert.False(t, found)
	assertDecimal(t, "0", held)
}

func TestUncoveredSellFindsLaterSellLeftShort(t *testing.T) {
	// the sell on day 2 consumes the position the sell on day 5 relied on
	txs := newLedger(t).
		add(day(0), model.Buy, "XYZ", "10", "100", "0", "1").
		add(day(5), model.Sell, "XYZ", "10", "150", "0", "1").
		add(day(2), model.Sell, "XYZ", "10", "120", "0", "1").
		txs

	sell, held, found := UncoveredSell(txs, "XYZ", day(2))
	require.True(t, found)
	assert.True(t, sell.Date.Equal(day(5)))
	assertDecimal(t, "0", held)
}

func TestUncoveredSellSameDayFollowsEntryOrder(t *testing.T) {
	txs := newLedger(t).
		add(day(0), model.Sell, "XYZ", "3", "100", "0", "1").
		add(day(0), model.Buy, "XYZ", "5", "100", "0", "1").
		txs

	sell, _, found := UncoveredSell(txs, "XYZ", day(0))
	require.True(t, found)
	assert.Equal(t, int64(1), sell.ID)
}

func TestUncoveredSellIgnoresEarlierLegacyRows(t *testing.T) {
	txs := newLedger(t).
		add(day(0), model.Sell, "XYZ", "5", "100", "0", "1").
		add(day(1), model.Buy, "XYZ", "2", "50", "0", "1").
		add(day(3), model.Sell, "XYZ", "2", "60", "0", "1").
		txs

	_, _, found := UncoveredSell(txs, "XYZ", day(1))
	assert.False(t, found)

	_, _, found = UncoveredSell(txs, "XYZ", day(0))
	assert.True(t, found)
}
