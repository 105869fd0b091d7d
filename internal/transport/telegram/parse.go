package telegram

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KotFed0t/wealth_tracker/internal/model"
	"github.com/shopspring/decimal"
)

var (
	ErrUsage          = errors.New("usage: /add TYPE DATE PLATFORM TICKER QTY PRICE [FEE] [CURRENCY] [FX] [WHT] [NOTES...]")
	ErrFxRateRequired = errors.New("fx rate is required for a foreign currency")
)

const minAddArgs = 6

// ParseAddArgs turns the /add arguments into a draft. DATE accepts
// YYYY-MM-DD or "today". A "-" keeps the default of an optional field.
// CURRENCY defaults to the reporting currency, or to TICKER for DEPOSIT and
// WITHDRAW. FX defaults to 1 only for the reporting currency.
func ParseAddArgs(args []string, reportingCurrency string, today time.Time) (model.TransactionDraft, error) {
	if len(args) < minAddArgs {
		return model.TransactionDraft{}, ErrUsage
	}

	txType, err := model.ParseTxType(args[0])
	if err != nil {
		return model.TransactionDraft{}, err
	}

	date, err := parseDate(args[1], today)
	if err != nil {
		return model.TransactionDraft{}, err
	}

	draft := model.TransactionDraft{
		Date:     date,
		Type:     txType,
		Platform: args[2],
		Ticker:   args[3],
		Currency: reportingCurrency,
	}
	// a cash leg names its currency in the ticker column
	if txType == model.Deposit || txType == model.Withdraw {
		draft.Currency = strings.ToUpper(args[3])
	}

	if draft.Quantity, err = parseDecimal("quantity", args[4]); err != nil {
		return model.TransactionDraft{}, err
	}
	if draft.Price, err = parseDecimal("price", args[5]); err != nil {
		return model.TransactionDraft{}, err
	}

	optional := args[minAddArgs:]
	get := func(i int) (string, bool) {
		if i >= len(optional) || optional[i] == "-" {
			return "", false
		}
		return optional[i], true
	}

	if v, ok := get(0); ok {
		if draft.Fee, err = parseDecimal("fee", v); err != nil {
			return model.TransactionDraft{}, err
		}
	}
	if v, ok := get(1); ok {
		draft.Currency = strings.ToUpper(v)
	}
	if v, ok := get(2); ok {
		if draft.FxRate, err = parseDecimal("fx rate", v); err != nil {
			return model.TransactionDraft{}, err
		}
	} else if strings.EqualFold(draft.Currency, reportingCurrency) {
		draft.FxRate = decimal.NewFromInt(1)
	} else {
		return model.TransactionDraft{}, ErrFxRateRequired
	}
	if v, ok := get(3); ok {
		if draft.Wht, err = parseDecimal("wht", v); err != nil {
			return model.TransactionDraft{}, err
		}
	}
	if len(optional) > 4 {
		draft.Notes = strings.Join(optional[4:], " ")
	}

	return draft, nil
}

func parseDate(s string, today time.Time) (time.Time, error) {
	if strings.EqualFold(s, "today") {
		return model.DateOf(today), nil
	}
	date, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s", s, model.DateLayout)
	}
	return date, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, s)
	}
	return d, nil
}
