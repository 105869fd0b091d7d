package dbConverter

import (
	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/KotFed0t/wealth_tracker/internal/model/dbModel"
)

func ConvertTransaction(dbTx dbModel.Transaction) model.Transaction {
	return model.Transaction{
		ID:       dbTx.ID,
		Date:     model.DateOf(dbTx.Date),
		Type:     model.TxType(dbTx.Type),
		Platform: dbTx.Platform,
		Ticker:   dbTx.Ticker,
		Quantity: dbTx.Quantity,
		Price:    dbTx.Price,
		Fee:      dbTx.Fee,
		Currency: dbTx.Currency,
		FxRate:   dbTx.FxRate,
		Wht:      dbTx.Wht,
		Notes:    dbTx.Notes,
	}
}

func ConvertTransactions(dbTxs []dbModel.Transaction) []model.Transaction {
	txs := make([]model.Transaction, 0, len(dbTxs))
	for _, dbTx := range dbTxs {
		txs = append(txs, ConvertTransaction(dbTx))
	}
	return txs
}

func ToDbTransaction(tx model.Transaction) dbModel.Transaction {
	return dbModel.Transaction{
		ID:       tx.ID,
		Date:     model.DateOf(tx.Date),
		Type:     string(tx.Type),
		Platform: tx.Platform,
		Ticker:   tx.Ticker,
		Quantity: tx.Quantity,
		Price:    tx.Price,
		Fee:      tx.Fee,
		Currency: tx.Currency,
		FxRate:   tx.FxRate,
		Wht:      tx.Wht,
		Notes:    tx.Notes,
	}
}
