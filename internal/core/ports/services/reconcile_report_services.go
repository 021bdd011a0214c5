package services

import (
	"context"

	"github.com/SscSPs/routing_console/internal/core/domain"
	"github.com/SscSPs/routing_console/internal/dto"
)

// ReconcileReportSvc exposes recorded reconcile passes
type ReconcileReportSvc interface {
	GetReport(ctx context.Context, reportID string) (*domain.ReconcileReport, error)
	ListReports(ctx context.Context, ref domain.ParentRef, params dto.ListReconcileReportsParams) (*dto.ListReconcileReportsResponse, error)
}
