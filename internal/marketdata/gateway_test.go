package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/wealth_tracker/config"
	"github.com/KotFed0t/wealth_tracker/internal/cache"
	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/KotFed0t/wealth_tracker/internal/model/marketModel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMarketApi struct {
	mock.Mock
}

func (m *MockMarketApi) GetQuote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMarketApi) GetHistory(ctx context.Context, ticker string, from, to time.Time) ([]marketModel.PricePoint, error) {
	args := m.Called(ctx, ticker, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketModel.PricePoint), args.Error(1)
}

func (m *MockMarketApi) GetSector(ctx context.Context, ticker string) (string, error) {
	args := m.Called(ctx, ticker)
	return args.String(0), args.Error(1)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func newTestGateway(api MarketApi) (*Gateway, *fakeClock) {
	cfg := &config.Config{}
	cfg.Cache.QuoteExpiration = 5 * time.Minute
	cfg.Cache.HistoryExpiration = time.Hour
	cfg.Cache.SectorExpiration = 24 * time.Hour
	cfg.Cache.FxExpiration = 5 * time.Minute
	cfg.Portfolio.FxFallback = decimal.NewFromInt(34)
	cfg.Portfolio.FxFallbackPair = "USDTHB"

	clock := &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	return New(cfg, api, cache.NewMemory(clock)), clock
}

var errDown = errors.New("provider down")

func TestQuoteCachedWithinTtl(t *testing.T) {
	ctx := context.Background()
	api := new(MockMarketApi)
	api.On("GetQuote", mock.Anything, "AAPL").Return(decimal.NewFromInt(190), nil).Twice()
	g, clock := newTestGateway(api)

	assert.True(t, decimal.NewFromInt(190).Equal(g.Quote(ctx, "AAPL")))
	assert.True(t, decimal.NewFromInt(190).Equal(g.Quote(ctx, "AAPL")))
	api.AssertNumberOfCalls(t, "GetQuote", 1)

	clock.now = clock.now.Add(5 * time.Minute)
	g.Quote(ctx, "AAPL")
	api.AssertNumberOfCalls(t, "GetQuote", 2)
}

func TestQuoteDegradesToZero(t *testing.T) {
	ctx := context.Background()
	api := new(MockMarketApi)
	api.On("GetQuote", mock.Anything, "GONE").Return(decimal.Zero, errDown)
	g, _ := newTestGateway(api)

	assert.True(t, g.Quote(ctx, "GONE").IsZero())
	// failures are not cached
	g.Quote(ctx, "GONE")
	api.AssertNumberOfCalls(t, "GetQuote", 2)
}

func TestSectorFallback(t *testing.T) {
	ctx := context.Background()
	api := new(MockMarketApi)
	api.On("GetSector", mock.Anything, "MSFT").Return("Technology", nil).Once()
	api.On("GetSector", mock.Anything, "ETF").Return("", errDown)
	g, clock := newTestGateway(api)

	assert.Equal(t, "Technology", g.Sector(ctx, "MSFT"))
	clock.now = clock.now.Add(23 * time.Hour)
	assert.Equal(t, "Technology", g.Sector(ctx, "MSFT"))
	assert.Equal(t, model.SectorOthers, g.Sector(ctx, "ETF"))
	api.AssertExpectations(t)
}

func TestFxRate(t *testing.T) {
	ctx := context.Background()
	api := new(MockMarketApi)
	api.On("GetQuote", mock.Anything, "USDTHB=X").Return(decimal.RequireFromString("35.5"), nil).Once()
	g, _ := newTestGateway(api)

	assert.True(t, decimal.RequireFromString("35.5").Equal(g.FxRate(ctx, "usd", "THB")))
	assert.True(t, decimal.RequireFromString("35.5").Equal(g.FxRate(ctx, "USD", "THB")))
	assert.True(t, decimal.NewFromInt(1).Equal(g.FxRate(ctx, "THB", "THB")))
	api.AssertExpectations(t)
}

func TestFxRateFallback(t *testing.T) {
	ctx := context.Background()
	api := new(MockMarketApi)
	api.On("GetQuote", mock.Anything, "USDTHB=X").Return(decimal.Zero, errDown)
	g, _ := newTestGateway(api)

	assert.True(t, decimal.NewFromInt(34).Equal(g.FxRate(ctx, "USD", "THB")))
}

func TestFxRateFallbackOnlyForConfiguredPair(t *testing.T) {
	ctx := context.Background()
	api := new(MockMarketApi)
	api.On("GetQuote", mock.Anything, "THBUSD=X").Return(decimal.Zero, errDown)
	api.On("GetQuote", mock.Anything, "EURTHB=X").Return(decimal.Zero, errDown)
	g, _ := newTestGateway(api)

	inverse := g.FxRate(ctx, "THB", "USD")
	assert.True(t, decimal.NewFromInt(1).DivRound(decimal.NewFromInt(34), 12).Equal(inverse), inverse.String())
	assert.True(t, inverse.LessThan(decimal.NewFromInt(1)))

	assert.True(t, g.FxRate(ctx, "EUR", "THB").IsZero())
}

func TestHistoryPropagatesErrors(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	points := []marketModel.PricePoint{{Date: from, Close: decimal.NewFromInt(10)}}

	api := new(MockMarketApi)
	api.On("GetHistory", mock.Anything, "AAPL", from, to).Return(points, nil).Once()
	api.On("GetHistory", mock.Anything, "GONE", from, to).Return(nil, errDown)
	g, _ := newTestGateway(api)

	got, err := g.History(ctx, "AAPL", from, to)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = g.History(ctx, "AAPL", from, to)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(got[0].Close))
	assert.True(t, from.Equal(got[0].Date))

	_, err = g.History(ctx, "GONE", from, to)
	assert.ErrorIs(t, err, errDown)
	api.AssertExpectations(t)
}
