// Package amount converts fee rates between the three forms the platform uses:
// the operator-entered percentage (0-100, at most 2 fractional digits), the
// fraction the backend stores (0-1, arbitrary precision) and the fixed-point
// quantity/accuracy pair some resources return.
//
// All arithmetic is exact decimal arithmetic. Nothing on this path touches
// float64.
package amount

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/SscSPs/routing_console/internal/apperrors"
	"github.com/SscSPs/routing_console/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	// PercentageScale is the number of fractional digits a percentage may carry.
	PercentageScale = 2
	// WorkingPrecision bounds the fractional digits FromFixedPoint may produce.
	WorkingPrecision = 28
)

var (
	hundred       = decimal.NewFromInt(100)
	one           = decimal.NewFromInt(1)
	decimalSyntax = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
)

func precisionErr(op, input, reason string) error {
	return &apperrors.PrecisionError{Op: op, Input: input, Reason: reason}
}

// parseDecimal accepts plain decimal notation only. Exponents, NaN/Inf and
// half-typed values such as "1." or "-" are rejected.
func parseDecimal(op, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if !decimalSyntax.MatchString(s) {
		return decimal.Zero, precisionErr(op, raw, "not a finite decimal number")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, precisionErr(op, raw, err.Error())
	}
	return d, nil
}

// ValidatePercentage checks range [0, 100] and at most PercentageScale
// significant fractional digits ("0.500" is accepted, "0.505" is not).
func ValidatePercentage(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return precisionErr("ValidatePercentage", p.String(), "percentage must be between 0 and 100")
	}
	if !p.Truncate(PercentageScale).Equal(p) {
		return precisionErr("ValidatePercentage", p.String(), "percentage allows at most 2 fractional digits")
	}
	return nil
}

// ValidateFraction checks that f lies in [0, 1].
func ValidateFraction(f decimal.Decimal) error {
	if f.IsNegative() || f.GreaterThan(one) {
		return precisionErr("ValidateFraction", f.String(), "fraction must be between 0 and 1")
	}
	return nil
}

// ParsePercentage parses and validates operator input.
func ParsePercentage(raw string) (decimal.Decimal, error) {
	p, err := parseDecimal("ParsePercentage", raw)
	if err != nil {
		return decimal.Zero, err
	}
	if err := ValidatePercentage(p); err != nil {
		return decimal.Zero, err
	}
	return p, nil
}

// ParseFraction parses and validates a backend fraction string.
func ParseFraction(raw string) (decimal.Decimal, error) {
	f, err := parseDecimal("ParseFraction", raw)
	if err != nil {
		return decimal.Zero, err
	}
	if err := ValidateFraction(f); err != nil {
		return decimal.Zero, err
	}
	return f, nil
}

// ToFraction divides a validated percentage by 100.
// Example: 0.50 -> 0.005
func ToFraction(percentage decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidatePercentage(percentage); err != nil {
		return decimal.Zero, err
	}
	return percentage.Shift(-2), nil
}

// ToPercentage multiplies a fraction by 100.
// Example: 0.1234 -> 12.34
func ToPercentage(fraction decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateFraction(fraction); err != nil {
		return decimal.Zero, err
	}
	return fraction.Shift(2), nil
}

// FromFixedPoint computes quantity/accuracy exactly. Accuracy is usually a
// power of ten but that is not assumed: any denominator whose reduced form
// only has prime factors 2 and 5 yields a finite decimal. Anything else, or a
// result needing more than WorkingPrecision fractional digits, is an error
// rather than a rounded value.
func FromFixedPoint(quantity, accuracy int64) (decimal.Decimal, error) {
	input := fmt.Sprintf("%d/%d", quantity, accuracy)
	if accuracy <= 0 {
		return decimal.Zero, precisionErr("FromFixedPoint", input, "accuracy must be positive")
	}

	num := big.NewInt(quantity)
	den := big.NewInt(accuracy)
	if gcd := new(big.Int).GCD(nil, nil, new(big.Int).Abs(num), den); gcd.Sign() > 0 {
		num.Quo(num, gcd)
		den.Quo(den, gcd)
	}

	rest := new(big.Int).Set(den)
	two, five := big.NewInt(2), big.NewInt(5)
	twos := stripFactor(rest, two)
	fives := stripFactor(rest, five)
	if rest.Cmp(big.NewInt(1)) != 0 {
		return decimal.Zero, precisionErr("FromFixedPoint", input, "quotient has no finite decimal expansion")
	}

	scale := max(twos, fives)
	if scale > WorkingPrecision {
		return decimal.Zero, precisionErr("FromFixedPoint", input, "quotient exceeds working precision")
	}

	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
	mult := pow.Quo(pow, den)
	return decimal.NewFromBigInt(num.Mul(num, mult), -int32(scale)), nil
}

func stripFactor(n, factor *big.Int) int {
	count := 0
	q, r := new(big.Int), new(big.Int)
	for {
		q.QuoRem(n, factor, r)
		if r.Sign() != 0 {
			return count
		}
		n.Set(q)
		count++
	}
}

// DecodeFeeValue turns either backend encoding of a fee value into the
// canonical fraction. fixed wins when both are present.
func DecodeFeeValue(fraction string, fixed *domain.FixedPointAmount) (decimal.Decimal, error) {
	if fixed != nil {
		f, err := FromFixedPoint(fixed.Quantity, fixed.Accuracy)
		if err != nil {
			return decimal.Zero, err
		}
		if err := ValidateFraction(f); err != nil {
			return decimal.Zero, err
		}
		return f, nil
	}
	return ParseFraction(fraction)
}

// FormatPercentage renders a percentage for display: exactly 2 fractional
// digits when that is lossless, the full exact value otherwise.
func FormatPercentage(p decimal.Decimal) string {
	if p.Truncate(PercentageScale).Equal(p) {
		return p.StringFixed(PercentageScale)
	}
	return p.String()
}

// SmallFeeThreshold is the percentage below which the console asks the
// operator to confirm a fee before it is submitted.
var SmallFeeThreshold = decimal.NewFromInt(1)

// IsSmallFee reports whether percentage p needs explicit confirmation.
// Zero is a small fee; 1.00 and above never are.
func IsSmallFee(p decimal.Decimal) bool {
	return p.LessThan(SmallFeeThreshold)
}
