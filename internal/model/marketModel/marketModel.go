package marketModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

type RawChart struct {
	Chart ChartBody `json:"chart"`
}

type ChartBody struct {
	Result []ChartResult `json:"result"`
	Error  *ApiError     `json:"error"`
}

type ChartResult struct {
	Meta       ChartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators Indicators `json:"indicators"`
}

type ChartMeta struct {
	Currency           string   `json:"currency"`
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
}

type Indicators struct {
	Quote []QuoteIndicator `json:"quote"`
}

type QuoteIndicator struct {
	Close []*float64 `json:"close"`
}

type RawQuoteSummary struct {
	QuoteSummary QuoteSummaryBody `json:"quoteSummary"`
}

type QuoteSummaryBody struct {
	Result []QuoteSummaryResult `json:"result"`
	Error  *ApiError            `json:"error"`
}

type QuoteSummaryResult struct {
	AssetProfile *AssetProfile `json:"assetProfile"`
}

type AssetProfile struct {
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
}

type ApiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
