package service

import "errors"

var (
	ErrInvalidTransaction = errors.New("error invalid transaction")
	ErrEmptyPortfolio     = errors.New("error portfolio is empty")
)
