package amount_test

import (
	"errors"
	"testing"

	"github.com/SscSPs/routing_console/internal/apperrors"
	"github.com/SscSPs/routing_console/internal/core/amount"
	"github.com/SscSPs/routing_console/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_AllTwoDigitPercentages(t *testing.T) {
	for i := int64(0); i <= 10000; i++ {
		p := decimal.New(i, -amount.PercentageScale)

		f, err := amount.ToFraction(p)
		require.NoError(t, err, "percentage %s", p)

		back, err := amount.ToPercentage(f)
		require.NoError(t, err, "fraction %s", f)

		if !back.Equal(p) {
			t.Fatalf("round trip of %s gave %s", p, back)
		}
		if got := amount.FormatPercentage(back); got != p.StringFixed(2) {
			t.Fatalf("format of %s gave %s", p, got)
		}
	}
}

func TestToFraction_HalfPercent(t *testing.T) {
	p, err := amount.ParsePercentage("0.50")
	require.NoError(t, err)

	f, err := amount.ToFraction(p)
	require.NoError(t, err)
	assert.Equal(t, "0.005", f.String())

	back, err := amount.ParseFraction("0.005")
	require.NoError(t, err)
	pct, err := amount.ToPercentage(back)
	require.NoError(t, err)
	assert.Equal(t, "0.50", amount.FormatPercentage(pct))
}

func TestParsePercentage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "zero", input: "0", want: "0"},
		{name: "hundred", input: "100", want: "100"},
		{name: "two digits", input: "12.34", want: "12.34"},
		{name: "trailing zero beyond scale", input: "0.500", want: "0.5"},
		{name: "surrounding spaces", input: " 7.5 ", want: "7.5"},
		{name: "three digits", input: "0.505", wantErr: "at most 2 fractional digits"},
		{name: "above range", input: "100.01", wantErr: "between 0 and 100"},
		{name: "negative", input: "-1", wantErr: "between 0 and 100"},
		{name: "empty", input: "", wantErr: "not a finite decimal"},
		{name: "dangling point", input: "1.", wantErr: "not a finite decimal"},
		{name: "lone minus", input: "-", wantErr: "not a finite decimal"},
		{name: "nan", input: "NaN", wantErr: "not a finite decimal"},
		{name: "infinity", input: "Inf", wantErr: "not a finite decimal"},
		{name: "exponent", input: "1e2", wantErr: "not a finite decimal"},
		{name: "comma separator", input: "1,5", wantErr: "not a finite decimal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := amount.ParsePercentage(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				var precErr *apperrors.PrecisionError
				assert.True(t, errors.As(err, &precErr))
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestToFraction_RejectsInvalidPercentage(t *testing.T) {
	_, err := amount.ToFraction(decimal.RequireFromString("12.345"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = amount.ToFraction(decimal.NewFromInt(101))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestToPercentage_RejectsOutOfRangeFraction(t *testing.T) {
	_, err := amount.ToPercentage(decimal.RequireFromString("1.01"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = amount.ToPercentage(decimal.RequireFromString("-0.01"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestToPercentage_KeepsFullPrecision(t *testing.T) {
	p, err := amount.ToPercentage(decimal.RequireFromString("0.123456"))
	require.NoError(t, err)
	assert.Equal(t, "12.3456", amount.FormatPercentage(p))
}

func TestFromFixedPoint(t *testing.T) {
	tests := []struct {
		name     string
		quantity int64
		accuracy int64
		want     string
		wantErr  string
	}{
		{name: "power of ten", quantity: 1234, accuracy: 10000, want: "0.1234"},
		{name: "two and a half percent", quantity: 250, accuracy: 10000, want: "0.025"},
		{name: "power of two", quantity: 1, accuracy: 8, want: "0.125"},
		{name: "mixed factors", quantity: 3, accuracy: 40, want: "0.075"},
		{name: "zero quantity", quantity: 0, accuracy: 100, want: "0"},
		{name: "negative quantity", quantity: -5, accuracy: 10, want: "-0.5"},
		{name: "reducible repeating", quantity: 3, accuracy: 6, want: "0.5"},
		{name: "repeating decimal", quantity: 1, accuracy: 3, wantErr: "no finite decimal expansion"},
		{name: "zero accuracy", quantity: 1, accuracy: 0, wantErr: "accuracy must be positive"},
		{name: "negative accuracy", quantity: 1, accuracy: -10, wantErr: "accuracy must be positive"},
		{name: "beyond working precision", quantity: 1, accuracy: 1 << 29, wantErr: "exceeds working precision"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := amount.FromFixedPoint(tt.quantity, tt.accuracy)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFixedPointToDisplayPercentage(t *testing.T) {
	f, err := amount.FromFixedPoint(1234, 10000)
	require.NoError(t, err)
	p, err := amount.ToPercentage(f)
	require.NoError(t, err)
	assert.Equal(t, "12.34", amount.FormatPercentage(p))

	f, err = amount.FromFixedPoint(250, 10000)
	require.NoError(t, err)
	p, err = amount.ToPercentage(f)
	require.NoError(t, err)
	assert.Equal(t, "2.50", amount.FormatPercentage(p))
}

func TestDecodeFeeValue(t *testing.T) {
	f, err := amount.DecodeFeeValue("0.015", nil)
	require.NoError(t, err)
	assert.Equal(t, "0.015", f.String())

	f, err = amount.DecodeFeeValue("", &domain.FixedPointAmount{Quantity: 15, Accuracy: 1000})
	require.NoError(t, err)
	assert.Equal(t, "0.015", f.String())

	_, err = amount.DecodeFeeValue("", &domain.FixedPointAmount{Quantity: 2, Accuracy: 1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = amount.DecodeFeeValue("abc", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestIsSmallFee(t *testing.T) {
	tests := []struct {
		percentage string
		want       bool
	}{
		{"0", true},
		{"0.50", true},
		{"0.99", true},
		{"1.00", false},
		{"1", false},
		{"2.50", false},
		{"100", false},
	}
	for _, tt := range tests {
		t.Run(tt.percentage, func(t *testing.T) {
			p, err := amount.ParsePercentage(tt.percentage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, amount.IsSmallFee(p))
		})
	}
}
