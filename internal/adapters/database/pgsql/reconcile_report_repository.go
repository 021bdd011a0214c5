package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/routing_console/internal/apperrors"
	"github.com/SscSPs/routing_console/internal/core/domain"
	portsrepo "github.com/SscSPs/routing_console/internal/core/ports/repositories"
	"github.com/SscSPs/routing_console/internal/models"
	"github.com/SscSPs/routing_console/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

type PgxReconcileReportRepository struct {
	BaseRepository
}

// NewPgxReconcileReportRepository creates a new repository for reconcile reports.
// db is normally a *pgxpool.Pool.
func NewPgxReconcileReportRepository(db DBTX) portsrepo.ReconcileReportRepositoryWithTx {
	return &PgxReconcileReportRepository{BaseRepository: BaseRepository{Pool: db}}
}

// SaveReport saves a report and its outcomes within a DB transaction.
func (r *PgxReconcileReportRepository) SaveReport(ctx context.Context, report domain.ReconcileReport) error {
	row, outcomes := mapping.ToModelReconcileReport(report)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	if err := insertReport(ctx, tx, row, outcomes); err != nil {
		_ = r.Rollback(ctx, tx)
		return err
	}
	return r.Commit(ctx, tx)
}

func insertReport(ctx context.Context, tx pgx.Tx, row models.ReconcileReport, outcomes []models.ReconcileOutcome) error {
	reportQuery := `
		INSERT INTO reconcile_reports (report_id, parent_type, parent_id, kind, server_set, desired_set, state, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, reportQuery,
		row.ReportID,
		row.ParentType,
		row.ParentID,
		row.Kind,
		row.ServerSet,
		row.DesiredSet,
		row.State,
		row.CreatedAt,
		row.CreatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("report %s: %w", row.ReportID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert report %s: %w", row.ReportID, err)
	}

	if len(outcomes) == 0 {
		return nil
	}
	positions := make([]int, len(outcomes))
	codes := make([]string, len(outcomes))
	operations := make([]string, len(outcomes))
	succeeded := make([]bool, len(outcomes))
	errs := make([]string, len(outcomes))
	for i, o := range outcomes {
		positions[i] = o.Position
		codes[i] = o.Code
		operations[i] = o.Operation
		succeeded[i] = o.Succeeded
		errs[i] = o.Error
	}
	outcomeQuery := `
		INSERT INTO reconcile_report_outcomes (report_id, position, code, operation, succeeded, error)
		SELECT $1, o.position, o.code, o.operation, o.succeeded, o.error
		FROM unnest($2::integer[], $3::text[], $4::text[], $5::boolean[], $6::text[])
			AS o(position, code, operation, succeeded, error);
	`
	if _, err := tx.Exec(ctx, outcomeQuery, row.ReportID, positions, codes, operations, succeeded, errs); err != nil {
		return fmt.Errorf("failed to insert outcomes for report %s: %w", row.ReportID, err)
	}
	return nil
}

// FindReportByID retrieves a report with its outcomes.
func (r *PgxReconcileReportRepository) FindReportByID(ctx context.Context, reportID string) (*domain.ReconcileReport, error) {
	query := `
		SELECT report_id, parent_type, parent_id, kind, server_set, desired_set, state, created_at, created_by
		FROM reconcile_reports
		WHERE report_id = $1;
	`
	row, err := scanReport(r.Pool.QueryRow(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find report by ID %s: %w", reportID, err)
	}

	outcomes, err := r.findOutcomes(ctx, []string{reportID})
	if err != nil {
		return nil, err
	}
	report := mapping.ToDomainReconcileReport(row, outcomes[reportID])
	return &report, nil
}

// ListReportsByParent retrieves reports for a parent, newest first.
func (r *PgxReconcileReportRepository) ListReportsByParent(ctx context.Context, parent domain.ParentRef, limit int, cursor *portsrepo.ReportCursor) ([]domain.ReconcileReport, error) {
	query := `
		SELECT report_id, parent_type, parent_id, kind, server_set, desired_set, state, created_at, created_by
		FROM reconcile_reports
		WHERE parent_type = $1 AND parent_id = $2
	`
	args := []any{string(parent.Type), parent.ID}
	if cursor != nil {
		query += ` AND (created_at, report_id) < ($3, $4)`
		args = append(args, cursor.CreatedAt, cursor.ReportID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, report_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports for %s: %w", parent, err)
	}
	defer rows.Close()

	var reportRows []models.ReconcileReport
	ids := []string{}
	for rows.Next() {
		row, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row for %s: %w", parent, err)
		}
		reportRows = append(reportRows, row)
		ids = append(ids, row.ReportID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows for %s: %w", parent, err)
	}

	reports := []domain.ReconcileReport{}
	if len(reportRows) == 0 {
		return reports, nil
	}
	outcomes, err := r.findOutcomes(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, row := range reportRows {
		reports = append(reports, mapping.ToDomainReconcileReport(row, outcomes[row.ReportID]))
	}
	return reports, nil
}

func (r *PgxReconcileReportRepository) findOutcomes(ctx context.Context, reportIDs []string) (map[string][]models.ReconcileOutcome, error) {
	query := `
		SELECT report_id, position, code, operation, succeeded, error
		FROM reconcile_report_outcomes
		WHERE report_id = ANY($1)
		ORDER BY report_id, position;
	`
	rows, err := r.Pool.Query(ctx, query, reportIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query report outcomes: %w", err)
	}
	defer rows.Close()

	byReport := make(map[string][]models.ReconcileOutcome, len(reportIDs))
	for rows.Next() {
		var o models.ReconcileOutcome
		if err := rows.Scan(&o.ReportID, &o.Position, &o.Code, &o.Operation, &o.Succeeded, &o.Error); err != nil {
			return nil, fmt.Errorf("failed to scan report outcome: %w", err)
		}
		byReport[o.ReportID] = append(byReport[o.ReportID], o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report outcomes: %w", err)
	}
	return byReport, nil
}

func scanReport(row pgx.Row) (models.ReconcileReport, error) {
	var m models.ReconcileReport
	err := row.Scan(
		&m.ReportID,
		&m.ParentType,
		&m.ParentID,
		&m.Kind,
		&m.ServerSet,
		&m.DesiredSet,
		&m.State,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	return m, err
}
