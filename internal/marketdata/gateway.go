package marketdata

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/wealth_tracker/config"
	"github.com/KotFed0t/wealth_tracker/internal/cache"
	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/KotFed0t/wealth_tracker/internal/model/marketModel"
	"github.com/KotFed0t/wealth_tracker/utils"
	"github.com/shopspring/decimal"
)

type MarketApi interface {
	GetQuote(ctx context.Context, ticker string) (decimal.Decimal, error)
	GetHistory(ctx context.Context, ticker string, from, to time.Time) ([]marketModel.PricePoint, error)
	GetSector(ctx context.Context, ticker string) (string, error)
}

// Gateway puts a time bounded cache in front of the market API and turns
// lookup failures into neutral defaults. Only History reports errors, so the
// performance series can refuse to run on partial data.
type Gateway struct {
	api   MarketApi
	store cache.Store
	ttl   config.Cache

	// fx is the rate of one fxBase in fxQuote used when the provider fails.
	fx      decimal.Decimal
	fxBase  string
	fxQuote string
}

func New(cfg *config.Config, api MarketApi, store cache.Store) *Gateway {
	g := &Gateway{
		api:   api,
		store: store,
		ttl:   cfg.Cache,
		fx:    cfg.Portfolio.FxFallback,
	}
	if pair := strings.ToUpper(cfg.Portfolio.FxFallbackPair); len(pair) == 6 {
		g.fxBase, g.fxQuote = pair[:3], pair[3:]
	}
	return g
}

// Quote returns the latest close of ticker or zero when it is unavailable.
func (g *Gateway) Quote(ctx context.Context, ticker string) decimal.Decimal {
	price, err := cache.GetOrLoad(ctx, g.store, cache.Key("Quote", ticker), g.ttl.QuoteExpiration, func(ctx context.Context) (decimal.Decimal, error) {
		return g.api.GetQuote(ctx, ticker)
	})
	if err != nil {
		slog.Warn(
			"quote unavailable, using zero",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("op", "Gateway.Quote"),
			slog.String("ticker", ticker),
			slog.String("err", err.Error()),
		)
		return decimal.Zero
	}
	return price
}

func (g *Gateway) History(ctx context.Context, ticker string, from, to time.Time) ([]marketModel.PricePoint, error) {
	key := cache.Key("History", ticker, model.DateOf(from), model.DateOf(to))
	return cache.GetOrLoad(ctx, g.store, key, g.ttl.HistoryExpiration, func(ctx context.Context) ([]marketModel.PricePoint, error) {
		return g.api.GetHistory(ctx, ticker, from, to)
	})
}

// Sector returns the sector of ticker or "Others" when it is unavailable.
func (g *Gateway) Sector(ctx context.Context, ticker string) string {
	sector, err := cache.GetOrLoad(ctx, g.store, cache.Key("Sector", ticker), g.ttl.SectorExpiration, func(ctx context.Context) (string, error) {
		return g.api.GetSector(ctx, ticker)
	})
	if err != nil {
		slog.Warn(
			"sector unavailable, using fallback",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("op", "Gateway.Sector"),
			slog.String("ticker", ticker),
			slog.String("err", err.Error()),
		)
		return model.SectorOthers
	}
	return sector
}

// FxRate returns how many units of to one unit of from buys. When the provider
// fails, the configured fallback serves its own pair and the reversed one, any
// other pair degrades to zero like an unknown price.
func (g *Gateway) FxRate(ctx context.Context, from, to string) decimal.Decimal {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return decimal.NewFromInt(1)
	}

	pair := FxPair(from, to)
	rate, err := cache.GetOrLoad(ctx, g.store, cache.Key("FxRate", pair), g.ttl.FxExpiration, func(ctx context.Context) (decimal.Decimal, error) {
		return g.api.GetQuote(ctx, pair)
	})
	if err == nil && rate.IsPositive() {
		return rate
	}

	fallback := g.fallback(from, to)
	attrs := []any{
		slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
		slog.String("op", "Gateway.FxRate"),
		slog.String("pair", pair),
		slog.String("fallback", fallback.String()),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	slog.Warn("fx rate unavailable, using fallback", attrs...)
	return fallback
}

func (g *Gateway) fallback(from, to string) decimal.Decimal {
	if !g.fx.IsPositive() {
		return decimal.Zero
	}
	switch {
	case from == g.fxBase && to == g.fxQuote:
		return g.fx
	case from == g.fxQuote && to == g.fxBase:
		return decimal.NewFromInt(1).DivRound(g.fx, 12)
	default:
		return decimal.Zero
	}
}

// FxPair is the provider symbol of a currency pair, e.g. USDTHB=X.
func FxPair(from, to string) string {
	return from + to + "=X"
}
