package repository

import "errors"

var (
	ErrStrategyNotFound = errors.New("strategy not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrTradeNotFound    = errors.New("trade not found")

	// Deletion is refused while trades still reference the row.
	ErrStrategyInUse = errors.New("strategy has trades and cannot be deleted")
	ErrAccountInUse  = errors.New("account has trades and cannot be deleted")
)
