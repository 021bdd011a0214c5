package dto

import (
	"time"

	"github.com/SscSPs/routing_console/internal/core/domain"
)

// ListReconcileReportsParams defines query parameters for listing reports.
type ListReconcileReportsParams struct {
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// ReconcileReportResponse defines the data returned for a reconcile report.
type ReconcileReportResponse struct {
	ReportID   string                `json:"reportID"`
	Parent     domain.ParentRef      `json:"parent"`
	Kind       string                `json:"kind"`
	ServerSet  []string              `json:"serverSet"`
	DesiredSet []string              `json:"desiredSet"`
	State      string                `json:"state"`
	Outcomes   []CodeOutcomeResponse `json:"outcomes"`
	FailedCode []string              `json:"failedCodes"`
	CreatedAt  time.Time             `json:"createdAt"`
	CreatedBy  string                `json:"createdBy"`
}

// ListReconcileReportsResponse wraps a page of reports.
type ListReconcileReportsResponse struct {
	Reports   []ReconcileReportResponse `json:"reports"`
	NextToken *string                   `json:"nextToken,omitempty"`
}

// ToReconcileReportResponse converts a domain report to its DTO.
func ToReconcileReportResponse(r *domain.ReconcileReport) ReconcileReportResponse {
	failed := r.FailedCodes()
	if failed == nil {
		failed = []string{}
	}
	return ReconcileReportResponse{
		ReportID:   r.ReportID,
		Parent:     r.Parent,
		Kind:       string(r.Kind),
		ServerSet:  r.ServerSet,
		DesiredSet: r.DesiredSet,
		State:      string(r.State),
		Outcomes:   ToCodeOutcomeResponses(r.Outcomes),
		FailedCode: failed,
		CreatedAt:  r.CreatedAt,
		CreatedBy:  r.CreatedBy,
	}
}

// ToReconcileReportResponses converts a slice of reports.
func ToReconcileReportResponses(reports []domain.ReconcileReport) []ReconcileReportResponse {
	res := make([]ReconcileReportResponse, len(reports))
	for i := range reports {
		res[i] = ToReconcileReportResponse(&reports[i])
	}
	return res
}
