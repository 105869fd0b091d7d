package dbConverter

import (
	"testing"
	"time"

	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/KotFed0t/wealth_tracker/internal/model/dbModel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConvertTransactionTruncatesDate(t *testing.T) {
	dbTx := dbModel.Transaction{
		ID:       7,
		Date:     time.Date(2024, 3, 5, 0, 0, 0, 0, time.FixedZone("ICT", 7*3600)),
		Type:     "BUY",
		Platform: "Dime",
		Ticker:   "AAPL",
		Quantity: decimal.NewFromInt(2),
		Price:    decimal.NewFromInt(150),
		Currency: "USD",
		FxRate:   decimal.NewFromInt(35),
	}

	tx := ConvertTransaction(dbTx)

	assert.Equal(t, int64(7), tx.ID)
	assert.Equal(t, model.Buy, tx.Type)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), tx.Date)

	back := ToDbTransaction(tx)
	assert.Equal(t, tx.Date, back.Date)
	back.Date = dbTx.Date
	assert.Equal(t, dbTx, back)
}
