package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/KotFed0t/wealth_tracker/config"
	"github.com/KotFed0t/wealth_tracker/data/repository"
	"github.com/KotFed0t/wealth_tracker/internal/accounting"
	"github.com/KotFed0t/wealth_tracker/internal/cache"
	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/KotFed0t/wealth_tracker/internal/model/marketModel"
	"github.com/KotFed0t/wealth_tracker/internal/service"
	"github.com/KotFed0t/wealth_tracker/utils"
	"github.com/shopspring/decimal"
)

const (
	performanceCacheFn = "PortfolioService.GetPerformance"
	// dashboardFxBase is the currency whose live rate the dashboard shows next to the totals.
	dashboardFxBase = "USD"
)

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
	AppendTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (model.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

type MarketData interface {
	Quote(ctx context.Context, ticker string) decimal.Decimal
	Sector(ctx context.Context, ticker string) string
	FxRate(ctx context.Context, from, to string) decimal.Decimal
	History(ctx context.Context, ticker string, from, to time.Time) ([]marketModel.PricePoint, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.Report) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

type PortfolioService struct {
	repo        Repository
	market      MarketData
	cache       cache.Store
	generator   ReportGenerator
	storage     CloudStorage
	classifier  accounting.Classifier
	valuer      *accounting.Valuer
	performance *accounting.PerformanceBuilder
	perfTTL     time.Duration
	benchmark   string
	now         func() time.Time

	// writeMu serializes ledger mutations.
	writeMu sync.Mutex
}

// New wires the service. storage may be nil, reports are then returned as file content.
func New(
	cfg *config.Config,
	repo Repository,
	market MarketData,
	store cache.Store,
	generator ReportGenerator,
	storage CloudStorage,
	now func() time.Time,
) *PortfolioService {
	if now == nil {
		now = time.Now
	}
	classifier := accounting.NewClassifier(cfg.Portfolio)
	return &PortfolioService{
		repo:        repo,
		market:      market,
		cache:       store,
		generator:   generator,
		storage:     storage,
		classifier:  classifier,
		valuer:      accounting.NewValuer(market, classifier),
		performance: accounting.NewPerformanceBuilder(market, cfg.Portfolio.BenchmarkSymbol, now),
		perfTTL:     cfg.Cache.PerformanceExpiration,
		benchmark:   cfg.Portfolio.BenchmarkSymbol,
		now:         now,
	}
}

// AddTransaction validates the draft and appends it to the ledger. A SELL is
// rejected when it, or any later SELL of the same ticker, would exceed the
// quantity held at that point of the ledger.
func (s *PortfolioService) AddTransaction(ctx context.Context, draft model.TransactionDraft) (saved model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddTransaction"

	tx, err := model.NewTransaction(draft)
	if err != nil {
		slog.Info("transaction rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if tx.Type == model.Sell {
			ledger, err := s.repo.ListTransactions(ctx)
			if err != nil {
				return err
			}
			// the store assigns the next id, so the entry goes last on its date
			candidate := tx
			candidate.ID = math.MaxInt64
			if err := checkCovered(append(ledger, candidate), tx.Ticker, tx.Date); err != nil {
				return err
			}
		}

		saved, err = s.repo.AppendTransaction(ctx, tx)
		return err
	})
	if err != nil {
		if !errors.Is(err, service.ErrInsufficientPosition) {
			slog.Error("got error while appending transaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return model.Transaction{}, err
	}

	s.flushPerformance(ctx)
	slog.Info("transaction added", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("id", saved.ID), slog.String("type", string(saved.Type)), slog.String("ticker", saved.Ticker))

	return saved, nil
}

// DeleteTransaction removes a ledger entry and returns it. Deleting a BUY that
// later SELLs depend on is rejected.
func (s *PortfolioService) DeleteTransaction(ctx context.Context, id int64) (deleted model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeleteTransaction"

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		deleted, err = s.repo.GetTransaction(ctx, id)
		if err != nil {
			return err
		}

		if deleted.Type == model.Buy {
			ledger, err := s.repo.ListTransactions(ctx)
			if err != nil {
				return err
			}
			rest := make([]model.Transaction, 0, len(ledger))
			for _, tx := range ledger {
				if tx.ID != id {
					rest = append(rest, tx)
				}
			}
			if err := checkCovered(rest, deleted.Ticker, deleted.Date); err != nil {
				return err
			}
		}

		return s.repo.DeleteTransaction(ctx, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Transaction{}, service.ErrNotFound
		}
		if !errors.Is(err, service.ErrInsufficientPosition) {
			slog.Error("got error while deleting transaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return model.Transaction{}, err
	}

	s.flushPerformance(ctx)
	slog.Info("transaction deleted", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("id", id))

	return deleted, nil
}

func checkCovered(ledger []model.Transaction, ticker string, from time.Time) error {
	sell, held, found := accounting.UncoveredSell(ledger, ticker, from)
	if !found {
		return nil
	}
	return fmt.Errorf(
		"%w: %s on %s sells %s, held %s",
		service.ErrInsufficientPosition, ticker, sell.Date.Format(time.DateOnly), sell.Quantity, held,
	)
}

func (s *PortfolioService) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		slog.Error(
			"got error from repo.ListTransactions",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("op", "PortfolioService.ListTransactions"),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	return txs, nil
}

// GetPortfolio replays the ledger and marks the open positions to market.
func (s *PortfolioService) GetPortfolio(ctx context.Context) (model.PortfolioSummary, error) {
	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	return s.summarize(ctx, txs), nil
}

func (s *PortfolioService) summarize(ctx context.Context, txs []model.Transaction) model.PortfolioSummary {
	agg := accounting.Aggregate(txs)
	holdings := s.valuer.Value(ctx, agg.Positions)

	summary := accounting.Summarize(holdings, agg.RealizedPnL, accounting.CashFlows(txs))
	summary.ReportingCurrency = s.classifier.ReportingCurrency()
	summary.FxRate = s.valuer.FxToReporting(ctx, dashboardFxBase)
	return summary
}

// GetPerformance returns the cash flow adjusted portfolio index against the
// benchmark. Results are cached until the ledger changes or the day rolls over.
func (s *PortfolioService) GetPerformance(ctx context.Context) (model.PerformanceSeries, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPerformance"

	key := cache.Key(performanceCacheFn, s.benchmark, model.DateOf(s.now()))
	series, err := cache.GetOrLoad(ctx, s.cache, key, s.perfTTL, func(ctx context.Context) (model.PerformanceSeries, error) {
		txs, err := s.repo.ListTransactions(ctx)
		if err != nil {
			return model.PerformanceSeries{}, err
		}
		return s.performance.Build(ctx, txs)
	})
	if err != nil {
		if errors.Is(err, accounting.ErrInsufficientHistory) {
			slog.Info("performance series unavailable", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.PerformanceSeries{}, fmt.Errorf("%w: %w", service.ErrNotEnoughData, err)
		}
		slog.Error("got error while building performance", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PerformanceSeries{}, err
	}

	return series, nil
}

func (s *PortfolioService) flushPerformance(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, performanceCacheFn); err != nil {
		slog.Warn(
			"can't flush performance cache",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("op", "PortfolioService.flushPerformance"),
			slog.String("err", err.Error()),
		)
	}
}

// WarmMarketCache prefetches quotes, sectors and fx rates of the open positions.
func (s *PortfolioService) WarmMarketCache(ctx context.Context) error {
	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return err
	}

	holdings := s.valuer.Value(ctx, accounting.Aggregate(txs).Positions)
	s.valuer.FxToReporting(ctx, dashboardFxBase)
	s.market.Quote(ctx, s.benchmark)

	slog.Info(
		"market cache warmed",
		slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
		slog.String("op", "PortfolioService.WarmMarketCache"),
		slog.Int("positions", len(holdings)),
	)
	return nil
}

// ExportReport builds the spreadsheet report. It is uploaded to cloud storage
// when one is configured; on upload failure the file content is returned instead.
func (s *PortfolioService) ExportReport(ctx context.Context) (model.ReportFile, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportReport"

	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return model.ReportFile{}, err
	}

	report := model.Report{
		GeneratedAt:  s.now(),
		Summary:      s.summarize(ctx, txs),
		Transactions: txs,
	}

	report.Performance, err = s.GetPerformance(ctx)
	if err != nil && !errors.Is(err, service.ErrNotEnoughData) {
		return model.ReportFile{}, err
	}

	content, ext, err := s.generator.Generate(ctx, report)
	if err != nil {
		slog.Error("got error from generator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.ReportFile{}, err
	}

	file := model.ReportFile{
		Name:    "portfolio_" + report.GeneratedAt.Format("2006-01-02_150405") + ext,
		Content: content,
	}

	if s.storage == nil {
		return file, nil
	}

	link, err := s.storage.UploadFile(ctx, bytes.NewReader(content), file.Name)
	if err != nil {
		slog.Warn("report upload failed, sending file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return file, nil
	}
	file.Link = link

	return file, nil
}

func (s *PortfolioService) CleanupReports(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	return s.storage.DeleteOldFiles(ctx)
}
