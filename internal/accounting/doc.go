// Package accounting turns the transaction ledger into portfolio state.
//
// Aggregate replays BUY and SELL entries into weighted average cost positions
// and realized profit. Valuer marks open positions to market through a
// MarketData gateway. PerformanceBuilder rebuilds the daily portfolio value
// and produces a cash flow adjusted index series next to a benchmark.
//
// Every function here is a pure projection of a ledger snapshot plus market
// data; nothing is persisted.
package accounting
