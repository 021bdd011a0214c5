package domain

import "github.com/shopspring/decimal"

// FeeType is the backend's fee classification. Only percent fees carry a rate;
// the console reads and writes nothing else.
type FeeType string

const (
	FeeTypePercent FeeType = "percent"
	FeeTypeFixed   FeeType = "fixed"
)

// FeeDirection says which leg of a payment a fee applies to.
type FeeDirection string

const (
	FeeDirectionIn  FeeDirection = "in"
	FeeDirectionOut FeeDirection = "out"
)

// FixedPointAmount represents Quantity/Accuracy. Some fee-bearing resources
// return their rate in this form.
type FixedPointAmount struct {
	Quantity int64 `json:"quantity"`
	Accuracy int64 `json:"accuracy"`
}

// Fee is a fee attached to a parent. Value is always the canonical fraction in
// [0, 1]; fixed-point values are converted on read.
type Fee struct {
	AccountRef  string          `json:"accountRef"`
	Type        FeeType         `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Currency    string          `json:"currency,omitempty"`
	Direction   FeeDirection    `json:"direction"`
	Description string          `json:"description,omitempty"`
}

// FeeDraft is what createFee submits. Value must be produced by the amount
// codec, never the raw percentage.
type FeeDraft struct {
	Type        FeeType
	Value       decimal.Decimal
	Currency    string
	Direction   FeeDirection
	Description string
}

// FeeIssue is a fee on the entity that is not shown as a rate, either because
// it is not a percent fee or because its value could not be decoded. The fee
// is left untouched on the backend.
type FeeIssue struct {
	Index      int
	AccountRef string
	Type       FeeType
	RawValue   string
	Err        error
}
