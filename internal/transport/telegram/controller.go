package telegram

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/KotFed0t/wealth_tracker/config"
	"github.com/KotFed0t/wealth_tracker/internal/converter/telebotConverter"
	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/KotFed0t/wealth_tracker/internal/service"
	"github.com/KotFed0t/wealth_tracker/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg = "something went wrong, try again later"
	historyLimit   = 20
)

// userErrors are shown to the operator as is.
var userErrors = []error{
	model.ErrUnknownType,
	model.ErrInvalidQuantity,
	model.ErrInvalidPrice,
	model.ErrInvalidFee,
	model.ErrInvalidFxRate,
	model.ErrInvalidWht,
	model.ErrTickerRequired,
	model.ErrCurrencyRequired,
	model.ErrDateRequired,
	service.ErrInsufficientPosition,
}

type PortfolioService interface {
	AddTransaction(ctx context.Context, draft model.TransactionDraft) (model.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) (model.Transaction, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	GetPortfolio(ctx context.Context) (model.PortfolioSummary, error)
	GetPerformance(ctx context.Context) (model.PerformanceSeries, error)
	ExportReport(ctx context.Context) (model.ReportFile, error)
}

type Controller struct {
	portfolioService  PortfolioService
	reportingCurrency string
	now               func() time.Time
}

func NewController(cfg *config.Config, portfolioService PortfolioService) *Controller {
	return &Controller{
		portfolioService:  portfolioService,
		reportingCurrency: cfg.Portfolio.ReportingCurrency,
		now:               time.Now,
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	return c.Send(telebotConverter.HelpText, tele.ModeHTML)
}

func (ctrl *Controller) Add(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	draft, err := ParseAddArgs(c.Args(), ctrl.reportingCurrency, ctrl.now())
	if err != nil {
		slog.Info("invalid /add arguments", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send("❌ " + err.Error())
	}

	tx, err := ctrl.portfolioService.AddTransaction(ctx, draft)
	if err != nil {
		if isUserError(err) {
			return c.Send("❌ " + err.Error())
		}
		slog.Error("got error from portfolioService.AddTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send("✅ Added\n"+telebotConverter.TransactionText(tx), tele.ModeHTML)
}

func (ctrl *Controller) History(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	txs, err := ctrl.portfolioService.ListTransactions(ctx)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.HistoryText(txs, historyLimit), tele.ModeHTML)
}

func (ctrl *Controller) Delete(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	args := c.Args()
	if len(args) != 1 {
		return c.Send("usage: /delete ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return c.Send("❌ invalid transaction id " + strconv.Quote(args[0]))
	}

	tx, err := ctrl.portfolioService.DeleteTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Send("❌ transaction #" + args[0] + " not found")
		}
		if isUserError(err) {
			return c.Send("❌ " + err.Error())
		}
		slog.Error("got error from portfolioService.DeleteTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send("🗑 Deleted\n"+telebotConverter.TransactionText(tx), tele.ModeHTML)
}

func (ctrl *Controller) Portfolio(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	respond(c)

	summary, err := ctrl.portfolioService.GetPortfolio(ctx)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	text, markup := telebotConverter.PortfolioResponse(summary)
	return c.Send(text, markup, tele.ModeHTML)
}

func (ctrl *Controller) Performance(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	respond(c)

	series, err := ctrl.portfolioService.GetPerformance(ctx)
	if err != nil && !errors.Is(err, service.ErrNotEnoughData) {
		return c.Send(internalErrMsg)
	}

	text, markup := telebotConverter.PerformanceResponse(series)
	return c.Send(text, markup, tele.ModeHTML)
}

func (ctrl *Controller) Report(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	respond(c)

	file, err := ctrl.portfolioService.ExportReport(ctx)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	if file.Link != "" {
		return c.Send(telebotConverter.ReportLinkText(file), tele.ModeHTML)
	}

	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(file.Content)),
		FileName: file.Name,
		Caption:  "📄 Portfolio report",
	}
	return c.Send(doc)
}

// respond acknowledges an inline button press so the client stops its spinner.
func respond(c tele.Context) {
	if c.Callback() != nil {
		_ = c.Respond()
	}
}

func isUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
