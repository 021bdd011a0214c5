package dto

import (
	"github.com/SscSPs/routing_console/internal/core/amount"
	"github.com/SscSPs/routing_console/internal/core/domain"
)

// ParentURI binds the parent addressed by a route.
type ParentURI struct {
	ParentType string `uri:"parentType" binding:"required,parenttype"`
	ID         string `uri:"id" binding:"required"`
}

// Ref converts the bound URI into a domain.ParentRef. Binding has already
// validated the type.
func (p ParentURI) Ref() domain.ParentRef {
	pt, _ := domain.ParseParentType(p.ParentType)
	return domain.ParentRef{Type: pt, ID: p.ID}
}

// AssociationSelection is the form's state for one association kind.
type AssociationSelection struct {
	// Desired is the set the operator selected. An explicit [] clears the
	// association; omitting it is rejected.
	Desired []string `json:"desired" binding:"required"`
	// Baseline is the set the form was seeded with on load. When omitted the
	// gateway re-fetches the parent right before reconciling.
	Baseline *[]string `json:"baseline,omitempty"`
}

// SubmitEntityRequest is one editor submission.
type SubmitEntityRequest struct {
	Scalar       map[string]any                  `json:"scalar" binding:"required"`
	Associations map[string]AssociationSelection `json:"associations" binding:"omitempty,dive,keys,assockind,endkeys"`
	Fees         []CreateFeeRequest              `json:"fees" binding:"omitempty,dive"`
}

// FeeResponse is a fee as shown in an editor.
type FeeResponse struct {
	AccountRef  string `json:"accountRef"`
	Type        string `json:"type"`
	Fraction    string `json:"fraction"`
	Percentage  string `json:"percentage"`
	Currency    string `json:"currency,omitempty"`
	Direction   string `json:"direction"`
	Description string `json:"description,omitempty"`
}

// EditorResponse seeds an editor form.
type EditorResponse struct {
	Parent       domain.ParentRef    `json:"parent"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Associations map[string][]string `json:"associations"`
	Fees         []FeeResponse       `json:"fees"`
	FeeIssues    []FeeIssueResponse  `json:"feeIssues"`
}

// FeeIssueResponse is a stored fee the editor cannot show as a percentage.
type FeeIssueResponse struct {
	Index      int    `json:"index"`
	AccountRef string `json:"accountRef,omitempty"`
	Type       string `json:"type"`
	Value      string `json:"value"`
	Error      string `json:"error"`
}

// ToFeeResponse renders a fee's fraction as a display percentage.
func ToFeeResponse(f domain.Fee) (FeeResponse, error) {
	pct, err := amount.ToPercentage(f.Value)
	if err != nil {
		return FeeResponse{}, err
	}
	return FeeResponse{
		AccountRef:  f.AccountRef,
		Type:        string(f.Type),
		Fraction:    f.Value.String(),
		Percentage:  amount.FormatPercentage(pct),
		Currency:    f.Currency,
		Direction:   string(f.Direction),
		Description: f.Description,
	}, nil
}

// ToEditorResponse converts a loaded parent into the editor payload.
func ToEditorResponse(e *domain.ParentEntity) (EditorResponse, error) {
	res := EditorResponse{
		Parent:       e.Ref,
		Name:         e.Name,
		Description:  e.Description,
		Associations: make(map[string][]string, len(domain.AssociationKinds)),
		Fees:         make([]FeeResponse, 0, len(e.Fees)),
		FeeIssues:    make([]FeeIssueResponse, 0, len(e.FeeIssues)),
	}
	for _, kind := range domain.AssociationKinds {
		codes := e.Codes(kind)
		if codes == nil {
			codes = []string{}
		}
		res.Associations[string(kind)] = codes
	}
	for _, f := range e.Fees {
		fr, err := ToFeeResponse(f)
		if err != nil {
			return EditorResponse{}, err
		}
		res.Fees = append(res.Fees, fr)
	}
	for _, issue := range e.FeeIssues {
		res.FeeIssues = append(res.FeeIssues, FeeIssueResponse{
			Index:      issue.Index,
			AccountRef: issue.AccountRef,
			Type:       string(issue.Type),
			Value:      issue.RawValue,
			Error:      issue.Err.Error(),
		})
	}
	return res, nil
}

// CodeOutcomeResponse is one code's result.
type CodeOutcomeResponse struct {
	Code      string `json:"code"`
	Operation string `json:"operation"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// AssociationOutcomeResponse is one association kind's reconcile result.
type AssociationOutcomeResponse struct {
	State    string                `json:"state"`
	ToRemove []string              `json:"toRemove"`
	ToAdd    []string              `json:"toAdd"`
	Outcomes []CodeOutcomeResponse `json:"outcomes"`
	ReportID string                `json:"reportID,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// ScalarOutcomeResponse is the result of the core field update.
type ScalarOutcomeResponse struct {
	Attempted bool   `json:"attempted"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error,omitempty"`
}

// FeeOutcomeResponse is the result of one fee created during a submit.
type FeeOutcomeResponse struct {
	Index      int    `json:"index"`
	Percentage string `json:"percentage"`
	Fraction   string `json:"fraction"`
	Succeeded  bool   `json:"succeeded"`
	Error      string `json:"error,omitempty"`
}

// SubmitEntityResponse reports per-operation outcomes of a submit.
type SubmitEntityResponse struct {
	Parent       domain.ParentRef                      `json:"parent"`
	Succeeded    bool                                  `json:"succeeded"`
	Scalar       ScalarOutcomeResponse                 `json:"scalar"`
	Associations map[string]AssociationOutcomeResponse `json:"associations"`
	Fees         []FeeOutcomeResponse                  `json:"fees"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ToCodeOutcomeResponses converts domain outcomes.
func ToCodeOutcomeResponses(outcomes []domain.CodeOutcome) []CodeOutcomeResponse {
	res := make([]CodeOutcomeResponse, len(outcomes))
	for i, o := range outcomes {
		res[i] = CodeOutcomeResponse{
			Code:      o.Code,
			Operation: string(o.Operation),
			Succeeded: o.Succeeded,
			Error:     o.Error,
		}
	}
	return res
}

// ToSubmitEntityResponse converts a submit outcome into its response DTO.
func ToSubmitEntityResponse(o *domain.SubmitOutcome) SubmitEntityResponse {
	res := SubmitEntityResponse{
		Parent:    o.Parent,
		Succeeded: o.Succeeded(),
		Scalar: ScalarOutcomeResponse{
			Attempted: o.ScalarAttempted,
			Succeeded: o.ScalarAttempted && o.ScalarErr == nil,
			Error:     errString(o.ScalarErr),
		},
		Associations: make(map[string]AssociationOutcomeResponse, len(o.Associations)),
		Fees:         make([]FeeOutcomeResponse, len(o.Fees)),
	}
	for _, a := range o.Associations {
		res.Associations[string(a.Kind)] = AssociationOutcomeResponse{
			State:    string(a.State),
			ToRemove: a.ToRemove,
			ToAdd:    a.ToAdd,
			Outcomes: ToCodeOutcomeResponses(a.Outcomes),
			ReportID: a.ReportID,
			Error:    errString(a.Err),
		}
	}
	for i, f := range o.Fees {
		res.Fees[i] = FeeOutcomeResponse{
			Index:      f.Index,
			Percentage: amount.FormatPercentage(f.Percentage),
			Fraction:   f.Fraction.String(),
			Succeeded:  f.Err == nil,
			Error:      errString(f.Err),
		}
	}
	return res
}
