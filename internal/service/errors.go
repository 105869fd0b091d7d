package service

import "errors"

var (
	ErrNotFound             = errors.New("error not found")
	ErrInsufficientPosition = errors.New("error sell exceeds held quantity")
	ErrNotEnoughData        = errors.New("error not enough data")
)
