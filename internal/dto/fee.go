package dto

import "github.com/SscSPs/routing_console/internal/core/domain"

// CreateFeeRequest defines the data needed to attach a fee to a parent.
// Percentage is what the operator typed; it is converted to a fraction before
// it reaches the backend.
type CreateFeeRequest struct {
	Type            string `json:"type" binding:"required,oneof=percent"`
	Percentage      string `json:"percentage" binding:"required,percentage"`
	Currency        string `json:"currency" binding:"omitempty,uppercase,len=3"`
	Direction       string `json:"direction" binding:"required,oneof=in out"`
	Description     string `json:"description" binding:"max=255"`
	ConfirmSmallFee bool   `json:"confirmSmallFee"`
}

// CreateFeeResponse echoes what was submitted to the backend.
type CreateFeeResponse struct {
	Type        string `json:"type"`
	Percentage  string `json:"percentage"`
	Fraction    string `json:"fraction"`
	Currency    string `json:"currency,omitempty"`
	Direction   string `json:"direction"`
	Description string `json:"description,omitempty"`
}

// ToCreateFeeResponse converts a submitted draft and its display percentage.
func ToCreateFeeResponse(draft *domain.FeeDraft, percentage string) CreateFeeResponse {
	return CreateFeeResponse{
		Type:        string(draft.Type),
		Percentage:  percentage,
		Fraction:    draft.Value.String(),
		Currency:    draft.Currency,
		Direction:   string(draft.Direction),
		Description: draft.Description,
	}
}

// FeeURI binds a single fee route.
type FeeURI struct {
	ParentURI
	FeeRef string `uri:"feeRef" binding:"required"`
}

// FixedPointDTO is the wire form of a quantity/accuracy pair.
type FixedPointDTO struct {
	Quantity int64 `json:"quantity"`
	Accuracy int64 `json:"accuracy" binding:"gt=0"`
}

// ConvertAmountRequest asks for a stateless conversion. Exactly one source
// field must be set.
type ConvertAmountRequest struct {
	Percentage *string        `json:"percentage" binding:"omitempty,percentage"`
	Fraction   *string        `json:"fraction"`
	FixedPoint *FixedPointDTO `json:"fixedPoint"`
}

// ConvertAmountResponse carries both representations of the rate.
type ConvertAmountResponse struct {
	Fraction   string `json:"fraction"`
	Percentage string `json:"percentage"`
	// RequiresSmallFeeConfirmation is true for percentages below 1.
	RequiresSmallFeeConfirmation bool `json:"requiresSmallFeeConfirmation"`
}
