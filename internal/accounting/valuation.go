package accounting

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/KotFed0t/wealth_tracker/utils"
	"github.com/shopspring/decimal"
)

// MarketData never fails: lookups degrade to 0 price, "Others" sector and the fallback fx rate.
type MarketData interface {
	Quote(ctx context.Context, ticker string) decimal.Decimal
	Sector(ctx context.Context, ticker string) string
	FxRate(ctx context.Context, from, to string) decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

type Valuer struct {
	market     MarketData
	classifier Classifier
}

func NewValuer(market MarketData, classifier Classifier) *Valuer {
	return &Valuer{market: market, classifier: classifier}
}

// Value marks every position to market in the reporting currency using live
// prices and live fx rates. Cash positions are worth one unit of their own currency.
func (v *Valuer) Value(ctx context.Context, positions []model.Position) []model.Holding {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Valuer.Value"

	fxByCurrency := make(map[string]decimal.Decimal)
	holdings := make([]model.Holding, 0, len(positions))

	for _, pos := range positions {
		h := model.Holding{
			Position: pos,
			Category: v.classifier.Category(pos.Platform, pos.Ticker),
		}

		currency := pos.Currency
		if v.classifier.IsCash(pos.Ticker) {
			currency = pos.Ticker
			h.CurrentPrice = decimal.NewFromInt(1)
		} else {
			h.CurrentPrice = v.market.Quote(ctx, pos.Ticker)
			if h.CurrentPrice.IsZero() {
				slog.Warn("price unknown, valued at zero", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", pos.Ticker))
			}
		}

		fx, ok := fxByCurrency[currency]
		if !ok {
			fx = v.FxToReporting(ctx, currency)
			fxByCurrency[currency] = fx
		}
		h.FxRate = fx

		if sector, ok := v.classifier.StaticSector(pos.Ticker); ok {
			h.Sector = sector
		} else {
			h.Sector = v.market.Sector(ctx, pos.Ticker)
		}

		h.MarketValue = pos.Quantity.Mul(h.CurrentPrice).Mul(fx)
		h.CostBasis = pos.TotalCost.Mul(fx)
		h.UnrealizedPnL = h.MarketValue.Sub(h.CostBasis)
		if !h.CostBasis.IsZero() {
			h.PnLPercent = h.UnrealizedPnL.Div(h.CostBasis).Mul(hundred)
		}

		holdings = append(holdings, h)
	}

	return holdings
}

// FxToReporting is the live multiplier from currency to the reporting currency.
func (v *Valuer) FxToReporting(ctx context.Context, currency string) decimal.Decimal {
	if currency == "" || currency == v.classifier.ReportingCurrency() {
		return decimal.NewFromInt(1)
	}
	return v.market.FxRate(ctx, currency, v.classifier.ReportingCurrency())
}
