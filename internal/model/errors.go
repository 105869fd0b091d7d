package model

import "errors"

var (
	ErrUnknownType      = errors.New("unknown transaction type")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrInvalidFee       = errors.New("fee must not be negative")
	ErrInvalidFxRate    = errors.New("fx rate must be positive")
	ErrInvalidWht       = errors.New("withholding tax is allowed only on non-negative DIVIDEND amounts")
	ErrTickerRequired   = errors.New("ticker is required")
	ErrCurrencyRequired = errors.New("currency is required")
	ErrDateRequired     = errors.New("date is required")
)
