package models

import "errors"

// Custom errors
var (
	ErrZeroPrice      = errors.New("american odds price cannot be zero")
	ErrNonFinitePrice = errors.New("american odds price must be finite")
	ErrMissingLine    = errors.New("quote is missing a usable line value")
	ErrMissingPlayer  = errors.New("prop quote is missing a player name")
)
