package units

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// BaseUnitsPerDisplay is the number of MIST in one SUI.
	BaseUnitsPerDisplay = 1_000_000_000
	// DisplayDecimals is the fixed number of fractional digits shown to users.
	DisplayDecimals = 4

	baseExponent = 9
)

var maxBase = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// ToBaseUnits converts a display amount to base units, truncating toward zero.
// Callers are expected to run ValidateAmount first; an error is only returned
// when the value cannot be represented as a u64.
func ToBaseUnits(display string) (uint64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(display))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", display, err)
	}
	base := d.Shift(baseExponent).Truncate(0)
	if base.IsNegative() || base.GreaterThan(maxBase) {
		return 0, fmt.Errorf("amount %q out of range", display)
	}
	return base.BigInt().Uint64(), nil
}

// ToDisplayUnits formats a base-unit integer string as a display amount with
// DisplayDecimals fractional digits. Malformed input yields "NaN".
func ToDisplayUnits(base string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(base))
	if err != nil {
		return "NaN"
	}
	return d.Shift(-baseExponent).StringFixed(DisplayDecimals)
}

// FormatBase is ToDisplayUnits for a native integer.
func FormatBase(base uint64) string {
	return ToDisplayUnits(strconv.FormatUint(base, 10))
}

// ValidateAmount reports whether a user-entered amount is a positive number.
// Only decimal notation (with optional exponent) is accepted; hex literals
// and Infinity are rejected.
func ValidateAmount(amount string) bool {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return false
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return false
	}
	return d.IsPositive()
}
