package domain

import "github.com/shopspring/decimal"

// AssociationOutcome is the result of reconciling one association kind during
// a submit.
type AssociationOutcome struct {
	Kind     AssociationKind
	State    ReconcileState
	ToRemove []string
	ToAdd    []string
	Outcomes []CodeOutcome
	ReportID string
	Err      error
}

// FeeOutcome is the result of creating one fee during a submit.
type FeeOutcome struct {
	Index      int
	Percentage decimal.Decimal
	Fraction   decimal.Decimal
	Err        error
}

// SubmitOutcome aggregates everything a single editor submit did. Scalar and
// association results are independent: one failing never prevents the other
// from being attempted.
type SubmitOutcome struct {
	Parent          ParentRef
	ScalarAttempted bool
	ScalarErr       error
	Associations    []AssociationOutcome
	Fees            []FeeOutcome
}

// Succeeded reports whether every attempted operation succeeded.
func (o *SubmitOutcome) Succeeded() bool {
	if o.ScalarErr != nil {
		return false
	}
	for _, a := range o.Associations {
		if a.Err != nil {
			return false
		}
	}
	for _, f := range o.Fees {
		if f.Err != nil {
			return false
		}
	}
	return true
}
