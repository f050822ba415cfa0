// Package money validates currency codes and amounts for bill operations.
// Grounded on original_source/crates/bcr-ebill-core/src/util/currency.rs.
package money

import (
	"errors"
	"regexp"
)

// ErrInvalidCurrency is returned by ValidateCurrency for unrecognized codes.
var ErrInvalidCurrency = errors.New("money: invalid currency code")

// ErrInvalidSum is returned by ValidateSum for a non-positive amount.
var ErrInvalidSum = errors.New("money: sum must be greater than zero")

// knownCurrencies is a small fixed allow-list beyond ISO-4217-shaped codes:
// satoshis and whole bitcoin are first-class units for an e-bill chain whose
// settlement rail is Bitcoin.
var knownCurrencies = map[string]bool{
	"sat": true,
	"BTC": true,
}

var iso4217Shape = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateCurrency reports whether code is acceptable: a known non-fiat unit
// or a 3-uppercase-letter ISO-4217-shaped code. It does not consult a live
// currency registry.
func ValidateCurrency(code string) error {
	if knownCurrencies[code] || iso4217Shape.MatchString(code) {
		return nil
	}
	return ErrInvalidCurrency
}

// ValidateSum reports whether sum is a usable bill amount.
func ValidateSum(sum uint64) error {
	if sum == 0 {
		return ErrInvalidSum
	}
	return nil
}
