package yahooApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/KotFed0t/wealth_tracker/config"
	"github.com/KotFed0t/wealth_tracker/internal/externalApi"
	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/KotFed0t/wealth_tracker/internal/model/marketModel"
	"github.com/KotFed0t/wealth_tracker/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	chartUrl        = "/v8/finance/chart/{symbol}"
	quoteSummaryUrl = "/v10/finance/quoteSummary/{symbol}"
)

type YahooApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.MarketApi.Url).
		SetHeader("User-Agent", cfg.API.MarketApi.UserAgent)
	return &YahooApi{client: client}
}

// GetQuote returns the latest daily close of ticker.
func (a *YahooApi) GetQuote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "YahooApi.GetQuote"

	slog.Debug("start request", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	result, err := a.getChart(ctx, ticker, map[string]string{"range": "5d", "interval": "1d"})
	if err != nil {
		return decimal.Zero, err
	}

	points := parsePricePoints(result)
	if len(points) > 0 {
		return points[len(points)-1].Close, nil
	}

	if result.Meta.RegularMarketPrice != nil {
		return decimal.NewFromFloat(*result.Meta.RegularMarketPrice), nil
	}

	return decimal.Zero, fmt.Errorf("%w: no close for %s", externalApi.ErrNotFound, ticker)
}

// GetHistory returns daily closes of ticker between from and to inclusive, oldest first.
func (a *YahooApi) GetHistory(ctx context.Context, ticker string, from, to time.Time) ([]marketModel.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "YahooApi.GetHistory"

	slog.Debug(
		"start request",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.String("ticker", ticker),
		slog.String("from", from.Format(model.DateLayout)),
		slog.String("to", to.Format(model.DateLayout)),
	)

	params := map[string]string{
		"period1":  strconv.FormatInt(model.DateOf(from).Unix(), 10),
		"period2":  strconv.FormatInt(model.DateOf(to).AddDate(0, 0, 1).Unix(), 10),
		"interval": "1d",
	}

	result, err := a.getChart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}

	return parsePricePoints(result), nil
}

// GetSector returns the sector from the asset profile of ticker.
func (a *YahooApi) GetSector(ctx context.Context, ticker string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "YahooApi.GetSector"

	slog.Debug("start request", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetPathParam("symbol", ticker).
		SetQueryParam("modules", "assetProfile").
		Get(quoteSummaryUrl)
	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	if resp.StatusCode() == 404 {
		return "", fmt.Errorf("%w: %s", externalApi.ErrNotFound, ticker)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: status %d", externalApi.ErrBadResponse, resp.StatusCode())
	}

	raw := marketModel.RawQuoteSummary{}
	if err = json.Unmarshal(resp.Body(), &raw); err != nil {
		slog.Error("can't unmarshall response into marketModel.RawQuoteSummary", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", fmt.Errorf("%w: %w", externalApi.ErrBadResponse, err)
	}

	if raw.QuoteSummary.Error != nil || len(raw.QuoteSummary.Result) == 0 {
		return "", fmt.Errorf("%w: %s", externalApi.ErrNotFound, ticker)
	}

	profile := raw.QuoteSummary.Result[0].AssetProfile
	if profile == nil || profile.Sector == "" {
		return "", fmt.Errorf("%w: no sector for %s", externalApi.ErrNotFound, ticker)
	}

	slog.Debug("request complete", slog.String("rqID", rqID), slog.String("op", op))

	return profile.Sector, nil
}

func (a *YahooApi) getChart(ctx context.Context, ticker string, params map[string]string) (marketModel.ChartResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "YahooApi.getChart"

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetPathParam("symbol", ticker).
		SetQueryParams(params).
		Get(chartUrl)
	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return marketModel.ChartResult{}, err
	}

	if resp.StatusCode() == 404 {
		return marketModel.ChartResult{}, fmt.Errorf("%w: %s", externalApi.ErrNotFound, ticker)
	}
	if resp.IsError() {
		return marketModel.ChartResult{}, fmt.Errorf("%w: status %d", externalApi.ErrBadResponse, resp.StatusCode())
	}

	raw := marketModel.RawChart{}
	if err = json.Unmarshal(resp.Body(), &raw); err != nil {
		slog.Error("can't unmarshall response into marketModel.RawChart", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return marketModel.ChartResult{}, fmt.Errorf("%w: %w", externalApi.ErrBadResponse, err)
	}

	if raw.Chart.Error != nil {
		return marketModel.ChartResult{}, fmt.Errorf("%w: %s %s", externalApi.ErrNotFound, ticker, raw.Chart.Error.Description)
	}
	if len(raw.Chart.Result) == 0 {
		return marketModel.ChartResult{}, fmt.Errorf("%w: %s", externalApi.ErrNotFound, ticker)
	}

	return raw.Chart.Result[0], nil
}

// parsePricePoints pairs timestamps with closes, skipping days the provider left empty.
func parsePricePoints(result marketModel.ChartResult) []marketModel.PricePoint {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	closes := result.Indicators.Quote[0].Close

	points := make([]marketModel.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, marketModel.PricePoint{
			Date:  model.DateOf(time.Unix(ts, 0).UTC()),
			Close: decimal.NewFromFloat(*closes[i]),
		})
	}
	return points
}
