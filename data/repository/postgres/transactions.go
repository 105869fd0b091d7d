package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/KotFed0t/wealth_tracker/data/repository"
	"github.com/KotFed0t/wealth_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/KotFed0t/wealth_tracker/internal/model/dbModel"
	"github.com/KotFed0t/wealth_tracker/utils"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

const transactionColumns = `id, date, type, platform, ticker, quantity, price, fee, currency, fx_rate, wht, notes`

func (r *Postgres) AppendTransaction(ctx context.Context, tx model.Transaction) (saved model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.AppendTransaction"
	query := `
		INSERT INTO transactions (date, type, platform, ticker, quantity, price, fee, currency, fx_rate, wht, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	slog.Debug("AppendTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("transaction", tx))
	defer func() {
		if err != nil {
			slog.Error("AppendTransaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("AppendTransaction completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("id", saved.ID))
		}
	}()

	row := dbConverter.ToDbTransaction(tx)
	err = r.txOrDb(ctx).QueryRowxContext(
		ctx,
		query,
		row.Date,
		row.Type,
		row.Platform,
		row.Ticker,
		row.Quantity,
		row.Price,
		row.Fee,
		row.Currency,
		row.FxRate,
		row.Wht,
		row.Notes,
	).Scan(&row.ID)
	if err != nil {
		return model.Transaction{}, err
	}

	return dbConverter.ConvertTransaction(row), nil
}

// ListTransactions returns the whole ledger ordered by date, then by insertion.
func (r *Postgres) ListTransactions(ctx context.Context) (txs []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.ListTransactions"
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY date, id`

	slog.Debug("ListTransactions start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		if err != nil {
			slog.Error("ListTransactions failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListTransactions completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(txs)))
		}
	}()

	var rows []dbModel.Transaction
	if err = r.txOrDb(ctx).SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	return dbConverter.ConvertTransactions(rows), nil
}

func (r *Postgres) GetTransaction(ctx context.Context, id int64) (tx model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetTransaction"
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	slog.Debug("GetTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("id", id))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetTransaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	var row dbModel.Transaction
	err = r.txOrDb(ctx).GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, repository.ErrNotFound
		}
		return model.Transaction{}, err
	}

	return dbConverter.ConvertTransaction(row), nil
}

func (r *Postgres) DeleteTransaction(ctx context.Context, id int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteTransaction"
	query := `DELETE FROM transactions WHERE id = $1`

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("id", id))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("DeleteTransaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else if err == nil {
			slog.Debug("DeleteTransaction completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
