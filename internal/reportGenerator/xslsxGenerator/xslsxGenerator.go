package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/KotFed0t/wealth_tracker/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	holdingsSheet     = "Holdings"
	transactionsSheet = "Transactions"
	performanceSheet  = "Performance"
)

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, report model.Report) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	fillers := []struct {
		sheet string
		fill  func(f *excelize.File, report model.Report) error
	}{
		{holdingsSheet, g.fillHoldings},
		{transactionsSheet, g.fillTransactions},
		{performanceSheet, g.fillPerformance},
	}

	for _, filler := range fillers {
		if _, err := f.NewSheet(filler.sheet); err != nil {
			slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("sheet", filler.sheet), slog.String("err", err.Error()))
			return nil, "", err
		}
		if err := filler.fill(f, report); err != nil {
			slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("sheet", filler.sheet), slog.String("err", err.Error()))
			return nil, "", err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillHoldings(f *excelize.File, report model.Report) error {
	s := report.Summary
	title := fmt.Sprintf("Portfolio on %s (%s)", report.GeneratedAt.Format("2006-01-02 15:04"), s.ReportingCurrency)
	if err := writeTitle(f, holdingsSheet, "A1", "M1", title, "#cfe2f3"); err != nil {
		return err
	}

	header := []any{"ticker", "platform", "category", "sector", "quantity", "avg cost", "price", "currency", "fx", "market value", "cost basis", "unrealized p/l", "p/l %"}
	if err := f.SetSheetRow(holdingsSheet, "A2", &header); err != nil {
		return err
	}

	row := 3
	for _, h := range s.Holdings {
		price := any(h.CurrentPrice.InexactFloat64())
		if !h.PriceKnown() {
			price = "n/a"
		}
		values := []any{
			h.Ticker,
			h.Platform,
			string(h.Category),
			h.Sector,
			h.Quantity.InexactFloat64(),
			h.AvgCost().InexactFloat64(),
			price,
			h.Currency,
			h.FxRate.InexactFloat64(),
			money(h.MarketValue),
			money(h.CostBasis),
			money(h.UnrealizedPnL),
			money(h.PnLPercent),
		}
		if err := f.SetSheetRow(holdingsSheet, cell(1, row), &values); err != nil {
			return err
		}
		row++
	}

	row += 2
	if err := writeTitle(f, holdingsSheet, cell(1, row), cell(2, row), "Totals", "#d9ead3"); err != nil {
		return err
	}
	totals := []struct {
		name  string
		value decimal.Decimal
	}{
		{"total value", s.TotalValue},
		{"total cost", s.TotalCost},
		{"unrealized p/l", s.UnrealizedPnL},
		{"realized p/l", s.RealizedPnL},
		{"deposited", s.Cash.Deposited},
		{"withdrawn", s.Cash.Withdrawn},
		{"net deposit", s.Cash.NetDeposit()},
		{"dividends", s.Cash.Dividends},
		{"withholding tax", s.Cash.WithholdingTax},
	}
	for _, t := range totals {
		row++
		values := []any{t.name, money(t.value)}
		if err := f.SetSheetRow(holdingsSheet, cell(1, row), &values); err != nil {
			return err
		}
	}

	return nil
}

func (g *XSLSXGenerator) fillTransactions(f *excelize.File, report model.Report) error {
	if err := writeTitle(f, transactionsSheet, "A1", "L1", "Ledger", "#cccccc"); err != nil {
		return err
	}

	header := []any{"id", "date", "type", "platform", "ticker", "quantity", "price", "fee", "currency", "fx rate", "wht", "notes"}
	if err := f.SetSheetRow(transactionsSheet, "A2", &header); err != nil {
		return err
	}

	for i, tx := range report.Transactions {
		values := []any{
			tx.ID,
			tx.Date.Format(model.DateLayout),
			string(tx.Type),
			tx.Platform,
			tx.Ticker,
			tx.Quantity.InexactFloat64(),
			tx.Price.InexactFloat64(),
			tx.Fee.InexactFloat64(),
			tx.Currency,
			tx.FxRate.InexactFloat64(),
			tx.Wht.InexactFloat64(),
			tx.Notes,
		}
		if err := f.SetSheetRow(transactionsSheet, cell(1, i+3), &values); err != nil {
			return err
		}
	}

	return nil
}

func (g *XSLSXGenerator) fillPerformance(f *excelize.File, report model.Report) error {
	p := report.Performance
	if err := writeTitle(f, performanceSheet, "A1", "C1", "Performance (start = 100)", "#f9cb9c"); err != nil {
		return err
	}

	if p.Empty() {
		return f.SetCellStr(performanceSheet, "A2", "not enough data")
	}

	header := []any{"date", "portfolio", p.Benchmark}
	if err := f.SetSheetRow(performanceSheet, "A2", &header); err != nil {
		return err
	}

	for i, date := range p.Dates {
		values := []any{date.Format(model.DateLayout), round2(p.PortfolioIndex[i]), round2(p.BenchmarkIndex[i])}
		if err := f.SetSheetRow(performanceSheet, cell(1, i+3), &values); err != nil {
			return err
		}
	}

	return nil
}

func writeTitle(f *excelize.File, sheet, from, to, title, color string) error {
	if err := f.MergeCell(sheet, from, to); err != nil {
		return err
	}
	if err := f.SetCellStr(sheet, from, title); err != nil {
		return err
	}

	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, from, from, styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
