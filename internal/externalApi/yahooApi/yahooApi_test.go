package yahooApi

import (
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/wealth_tracker/config"
	"github.com/KotFed0t/wealth_tracker/internal/externalApi"
	"github.com/jarcoal/httpmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseUrl = "https://market.test"

func newTestApi(t *testing.T) *YahooApi {
	t.Helper()
	cfg := &config.Config{}
	cfg.API.Timeout = time.Second
	cfg.API.MarketApi.Url = baseUrl

	api := New(cfg)
	httpmock.ActivateNonDefault(api.client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return api
}

// 2024-01-02, 2024-01-03, 2024-01-04 at 14:30 UTC
const chartBody = `{"chart":{"result":[{"meta":{"currency":"USD","symbol":"AAPL","regularMarketPrice":186.5},
"timestamp":[1704205800,1704292200,1704378600],
"indicators":{"quote":[{"close":[185.64,null,181.91]}]}}],"error":null}}`

func TestGetHistory(t *testing.T) {
	api := newTestApi(t)
	httpmock.RegisterResponder("GET", baseUrl+"/v8/finance/chart/AAPL",
		httpmock.NewStringResponder(200, chartBody))

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points, err := api.GetHistory(context.Background(), "AAPL", from, from.AddDate(0, 0, 5))
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.True(t, decimal.RequireFromString("185.64").Equal(points[0].Close))
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), points[1].Date)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestGetQuoteUsesLastClose(t *testing.T) {
	api := newTestApi(t)
	httpmock.RegisterResponder("GET", baseUrl+"/v8/finance/chart/AAPL",
		httpmock.NewStringResponder(200, chartBody))

	price, err := api.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("181.91").Equal(price))
}

func TestGetQuoteFallsBackToMarketPrice(t *testing.T) {
	api := newTestApi(t)
	httpmock.RegisterResponder("GET", baseUrl+"/v8/finance/chart/USDTHB=X",
		httpmock.NewStringResponder(200, `{"chart":{"result":[{"meta":{"regularMarketPrice":35.2},"timestamp":[],"indicators":{"quote":[{"close":[]}]}}],"error":null}}`))

	price, err := api.GetQuote(context.Background(), "USDTHB=X")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("35.2").Equal(price))
}

func TestGetQuoteNotFound(t *testing.T) {
	api := newTestApi(t)
	httpmock.RegisterResponder("GET", baseUrl+"/v8/finance/chart/NOPE",
		httpmock.NewStringResponder(404, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))

	_, err := api.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetQuoteChartError(t *testing.T) {
	api := newTestApi(t)
	httpmock.RegisterResponder("GET", baseUrl+"/v8/finance/chart/NOPE",
		httpmock.NewStringResponder(200, `{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`))

	_, err := api.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetQuoteServerError(t *testing.T) {
	api := newTestApi(t)
	httpmock.RegisterResponder("GET", baseUrl+"/v8/finance/chart/AAPL",
		httpmock.NewStringResponder(500, `oops`))

	_, err := api.GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, externalApi.ErrBadResponse)
}

func TestGetSector(t *testing.T) {
	api := newTestApi(t)
	httpmock.RegisterResponder("GET", baseUrl+"/v10/finance/quoteSummary/MSFT",
		httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{"assetProfile":{"sector":"Technology","industry":"Software"}}],"error":null}}`))

	sector, err := api.GetSector(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "Technology", sector)
}

func TestGetSectorMissingProfile(t *testing.T) {
	api := newTestApi(t)
	httpmock.RegisterResponder("GET", baseUrl+"/v10/finance/quoteSummary/SPY",
		httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{}],"error":null}}`))

	_, err := api.GetSector(context.Background(), "SPY")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)
}
