package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/routing_console/internal/core/domain"
)

// ReportCursor positions a listing after the given report.
type ReportCursor struct {
	CreatedAt time.Time
	ReportID  string
}

// ReconcileReportReader defines read operations for reconcile reports
type ReconcileReportReader interface {
	// FindReportByID retrieves a report with its per-code outcomes.
	FindReportByID(ctx context.Context, reportID string) (*domain.ReconcileReport, error)

	// ListReportsByParent retrieves reports for a parent, newest first,
	// starting after cursor when it is non-nil.
	ListReportsByParent(ctx context.Context, parent domain.ParentRef, limit int, cursor *ReportCursor) ([]domain.ReconcileReport, error)
}

// ReconcileReportWriter defines write operations for reconcile reports
type ReconcileReportWriter interface {
	// SaveReport persists a report and its outcomes atomically.
	SaveReport(ctx context.Context, report domain.ReconcileReport) error
}

// ReconcileReportRepositoryFacade combines all report repository interfaces
type ReconcileReportRepositoryFacade interface {
	ReconcileReportReader
	ReconcileReportWriter
}

// ReconcileReportRepositoryWithTx extends the facade with transaction capabilities
type ReconcileReportRepositoryWithTx interface {
	ReconcileReportRepositoryFacade
	TransactionManager
}
