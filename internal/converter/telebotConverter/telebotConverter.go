package telebotConverter

import (
	"fmt"
	"html"
	"strings"

	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

var (
	BtnPortfolio   = tele.Btn{Unique: "portfolio", Text: "💼 Portfolio"}
	BtnPerformance = tele.Btn{Unique: "performance", Text: "📈 Performance"}
	BtnReport      = tele.Btn{Unique: "report", Text: "📄 Report"}
)

const HelpText = `<b>Wealth tracker</b>

/add TYPE DATE PLATFORM TICKER QTY PRICE [FEE] [CURRENCY] [FX] [WHT] [NOTES...]
  TYPE: BUY, SELL, DEPOSIT, WITHDRAW, DIVIDEND
  DATE: YYYY-MM-DD or today, "-" skips an optional field
  e.g. <code>/add BUY today Dime AAPL 2 190.5 0.5 USD 35.4</code>
  e.g. <code>/add DEPOSIT 2024-01-02 Dime THB 50000 1</code>
/history - latest transactions
/delete ID - remove a transaction
/portfolio - holdings and P/L
/performance - return against the benchmark
/report - spreadsheet export`

func navigation() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(BtnPortfolio, BtnPerformance, BtnReport))
	return markup
}

func TransactionText(tx model.Transaction) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("#%d %s <b>%s</b> %s", tx.ID, tx.Date.Format(model.DateLayout), tx.Type, html.EscapeString(tx.Ticker)))
	if tx.Platform != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", html.EscapeString(tx.Platform)))
	}
	sb.WriteString(fmt.Sprintf("\n   %s × %s %s", tx.Quantity.String(), tx.Price.String(), tx.Currency))
	if !tx.Fee.IsZero() {
		sb.WriteString(fmt.Sprintf(", fee %s", tx.Fee.String()))
	}
	if !tx.FxRate.Equal(decimal.NewFromInt(1)) {
		sb.WriteString(fmt.Sprintf(", fx %s", tx.FxRate.String()))
	}
	if !tx.Wht.IsZero() {
		sb.WriteString(fmt.Sprintf(", wht %s", tx.Wht.String()))
	}
	if tx.Notes != "" {
		sb.WriteString(fmt.Sprintf("\n   <i>%s</i>", html.EscapeString(tx.Notes)))
	}
	return sb.String()
}

// HistoryText lists the latest limit transactions, newest first.
func HistoryText(txs []model.Transaction, limit int) string {
	if len(txs) == 0 {
		return "The ledger is empty. Add a transaction with /add."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧾 <b>Transactions</b> (%d total)\n\n", len(txs)))
	shown := 0
	for i := len(txs) - 1; i >= 0 && shown < limit; i-- {
		sb.WriteString(TransactionText(txs[i]))
		sb.WriteString("\n")
		shown++
	}
	if shown < len(txs) {
		sb.WriteString(fmt.Sprintf("\n… %d older, see /report", len(txs)-shown))
	}
	return sb.String()
}

func PortfolioResponse(s model.PortfolioSummary) (text string, markup *tele.ReplyMarkup) {
	var sb strings.Builder
	cur := s.ReportingCurrency

	sb.WriteString(fmt.Sprintf("💼 <b>Portfolio</b> (%s)\n", cur))
	sb.WriteString(fmt.Sprintf("💰 Value: <b>%s</b>\n", money(s.TotalValue)))
	sb.WriteString(fmt.Sprintf("   Cost: %s\n", money(s.TotalCost)))
	sb.WriteString(fmt.Sprintf("   Unrealized P/L: %s (%s)\n", signed(s.UnrealizedPnL), percent(s.UnrealizedPnL, s.TotalCost)))
	sb.WriteString(fmt.Sprintf("   Realized P/L: %s\n", signed(s.RealizedPnL)))
	sb.WriteString(fmt.Sprintf("   Active assets: %d, USD/%s %s\n\n", s.ActiveAssets(), cur, s.FxRate.StringFixed(2)))

	if len(s.Holdings) == 0 {
		sb.WriteString("No open positions.\n")
	} else {
		sb.WriteString("📋 <b>Holdings</b>\n")
		for _, h := range s.Holdings {
			sb.WriteString(fmt.Sprintf("\n<b>%s</b> · %s · %s", html.EscapeString(h.Ticker), h.Category, html.EscapeString(h.Sector)))
			if h.Platform != "" {
				sb.WriteString(fmt.Sprintf(" · %s", html.EscapeString(h.Platform)))
			}
			price := "n/a"
			if h.PriceKnown() {
				price = h.CurrentPrice.StringFixed(2)
			}
			sb.WriteString(fmt.Sprintf("\n   ▸ %s @ %s %s (avg %s)", h.Quantity.String(), price, h.Currency, h.AvgCost().StringFixed(2)))
			sb.WriteString(fmt.Sprintf("\n   ▸ Value %s, P/L %s (%s%%)\n", money(h.MarketValue), signed(h.UnrealizedPnL), h.PnLPercent.StringFixed(2)))
		}
	}

	writeAllocation(&sb, "By category", s.AllocationByCategory)
	writeAllocation(&sb, "By sector", s.AllocationBySector)

	c := s.Cash
	sb.WriteString("\n🏦 <b>Cash flows</b>\n")
	sb.WriteString(fmt.Sprintf("   Deposited %s, withdrawn %s, net %s\n", money(c.Deposited), money(c.Withdrawn), money(c.NetDeposit())))
	sb.WriteString(fmt.Sprintf("   Dividends %s, withholding tax %s", money(c.Dividends), money(c.WithholdingTax)))

	return sb.String(), navigation()
}

func writeAllocation(sb *strings.Builder, title string, allocations []model.Allocation) {
	if len(allocations) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n📊 <b>%s</b>\n", title))
	for _, a := range allocations {
		sb.WriteString(fmt.Sprintf("   %s: %s%% (%s)\n", html.EscapeString(a.Name), a.Percent.StringFixed(2), money(a.Value)))
	}
}

func PerformanceResponse(p model.PerformanceSeries) (text string, markup *tele.ReplyMarkup) {
	if p.Empty() {
		return "Not enough data to build the performance series yet.", navigation()
	}

	first, last := p.Dates[0], p.Dates[len(p.Dates)-1]

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📈 <b>Performance</b> %s … %s\n\n", first.Format(model.DateLayout), last.Format(model.DateLayout)))
	sb.WriteString(fmt.Sprintf("   Portfolio: <b>%+.2f%%</b>\n", p.PortfolioReturn()))
	sb.WriteString(fmt.Sprintf("   %s: %+.2f%%\n", html.EscapeString(p.Benchmark), p.BenchmarkReturn()))

	verdict := "🟢 ahead of"
	if p.RelativeReturn() < 0 {
		verdict = "🔴 behind"
	}
	sb.WriteString(fmt.Sprintf("   %s the benchmark by %.2f pts", verdict, abs(p.RelativeReturn())))

	return sb.String(), navigation()
}

func ReportLinkText(file model.ReportFile) string {
	return fmt.Sprintf("📄 Report %s is ready: %s", html.EscapeString(file.Name), file.Link)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return d.StringFixed(2)
	}
	return "+" + d.StringFixed(2)
}

func percent(part, whole decimal.Decimal) string {
	if whole.IsZero() {
		return "0.00%"
	}
	p := part.Div(whole).Mul(decimal.NewFromInt(100))
	return signed(p) + "%"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
