package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

func init() {
	// Суммы отдаются в JSON числами, а не строками.
	decimal.MarshalJSONWithoutQuotes = true
}

// Amount is the decimal type used for money on input.
type Amount = decimal.Decimal

var ErrInvalidAmount = errors.New("amount must be a non-negative number")

// ParseAmount parses a non-negative decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
