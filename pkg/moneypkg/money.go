// Package moneypkg provides common money related functionality for apps.
package moneypkg

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Tag is the validation tag the ValidAmount validator is registered under.
const Tag = "money"

// IsValidAmount returns true if the amount is a non-negative decimal number.
func IsValidAmount(amount string) bool {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return false
	}

	return !d.IsNegative()
}

// ValidAmount validates whether the field holds a non-negative decimal amount.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	if amount, ok := fl.Field().Interface().(string); ok {
		return IsValidAmount(amount)
	}

	return false
}
