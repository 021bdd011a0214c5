package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/routing_console/internal/apperrors"
	"github.com/SscSPs/routing_console/internal/core/domain"
	portsrepo "github.com/SscSPs/routing_console/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/routing_console/internal/core/ports/services"
	"github.com/SscSPs/routing_console/internal/dto"
	"github.com/SscSPs/routing_console/internal/utils/pagination"
)

const defaultReportPageSize = 20

type reconcileReportService struct {
	BaseService
	repo portsrepo.ReconcileReportReader
}

// NewReconcileReportService creates the report read service. A nil repo means
// persistence is disabled: lookups report not found and listings are empty.
func NewReconcileReportService(repo portsrepo.ReconcileReportReader) portssvc.ReconcileReportSvc {
	return &reconcileReportService{repo: repo}
}

func (s *reconcileReportService) GetReport(ctx context.Context, reportID string) (*domain.ReconcileReport, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("report %s: %w", reportID, apperrors.ErrNotFound)
	}
	report, err := s.repo.FindReportByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", reportID, err)
	}
	return report, nil
}

func (s *reconcileReportService) ListReports(ctx context.Context, ref domain.ParentRef, params dto.ListReconcileReportsParams) (*dto.ListReconcileReportsResponse, error) {
	res := &dto.ListReconcileReportsResponse{Reports: []dto.ReconcileReportResponse{}}
	if s.repo == nil {
		return res, nil
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultReportPageSize
	}

	var cursor *portsrepo.ReportCursor
	if params.NextToken != "" {
		createdAt, reportID, err := pagination.DecodeReportToken(params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		cursor = &portsrepo.ReportCursor{CreatedAt: createdAt, ReportID: reportID}
	}

	// one extra row tells us whether another page exists
	reports, err := s.repo.ListReportsByParent(ctx, ref, limit+1, cursor)
	if err != nil {
		s.LogError(ctx, err, "Failed to list reconcile reports", slog.String("parent", ref.String()))
		return nil, fmt.Errorf("failed to list reports for %s: %w", ref, err)
	}

	if len(reports) > limit {
		reports = reports[:limit]
		last := reports[limit-1]
		token := pagination.EncodeReportToken(last.CreatedAt, last.ReportID)
		res.NextToken = &token
	}
	res.Reports = dto.ToReconcileReportResponses(reports)
	return res, nil
}
