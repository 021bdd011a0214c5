package pgsql_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/SscSPs/routing_console/internal/adapters/database/pgsql"
	"github.com/SscSPs/routing_console/internal/apperrors"
	"github.com/SscSPs/routing_console/internal/core/domain"
	portsrepo "github.com/SscSPs/routing_console/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	reportColumns  = []string{"report_id", "parent_type", "parent_id", "kind", "server_set", "desired_set", "state", "created_at", "created_by"}
	outcomeColumns = []string{"report_id", "position", "code", "operation", "succeeded", "error"}
	createdAt      = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	merchant       = domain.ParentRef{Type: domain.Merchant, ID: "m-1"}
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, portsrepo.ReconcileReportRepositoryWithTx) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, pgsql.NewPgxReconcileReportRepository(mock)
}

func partialReport() domain.ReconcileReport {
	return domain.ReconcileReport{
		ReportID:   "r-1",
		Parent:     merchant,
		Kind:       domain.PaymentTypes,
		ServerSet:  []string{"card", "sbp"},
		DesiredSet: []string{"card", "upi"},
		State:      domain.StatePartiallyFailed,
		Outcomes: []domain.CodeOutcome{
			{Code: "sbp", Operation: domain.OperationRemove, Succeeded: false, Error: "connection reset"},
			{Code: "card", Operation: domain.OperationAdd, Succeeded: true},
			{Code: "upi", Operation: domain.OperationAdd, Succeeded: true},
		},
		AuditFields: domain.AuditFields{CreatedAt: createdAt, CreatedBy: "user-1"},
	}
}

func TestSaveReport_WritesReportAndOutcomesInOneTx(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reconcile_reports").
		WithArgs("r-1", "merchant", "m-1", "payment_types",
			[]string{"card", "sbp"}, []string{"card", "upi"},
			"PARTIALLY_FAILED", createdAt, "user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO reconcile_report_outcomes").
		WithArgs("r-1",
			[]int{0, 1, 2},
			[]string{"sbp", "card", "upi"},
			[]string{"REMOVE", "ADD", "ADD"},
			[]bool{false, true, true},
			[]string{"connection reset", "", ""}).
		WillReturnResult(pgxmock.NewResult("INSERT", 3))
	mock.ExpectCommit()

	err := repo.SaveReport(context.Background(), partialReport())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReport_NoOutcomesSkipsOutcomeInsert(t *testing.T) {
	mock, repo := newMockRepo(t)
	report := partialReport()
	report.State = domain.StateSettled
	report.Outcomes = nil

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reconcile_reports").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), "SETTLED", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveReport(context.Background(), report))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReport_DuplicateRollsBack(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reconcile_reports").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := repo.SaveReport(context.Background(), partialReport())

	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReport_OutcomeFailureRollsBack(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reconcile_reports").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO reconcile_report_outcomes").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23514", Message: "check violation"})
	mock.ExpectRollback()

	err := repo.SaveReport(context.Background(), partialReport())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert outcomes for report r-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindReportByID(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("FROM reconcile_reports").
		WithArgs("r-1").
		WillReturnRows(pgxmock.NewRows(reportColumns).
			AddRow("r-1", "merchant", "m-1", "payment_types", []string{"card", "sbp"}, []string{"card", "upi"}, "PARTIALLY_FAILED", createdAt, "user-1"))
	mock.ExpectQuery("FROM reconcile_report_outcomes").
		WithArgs([]string{"r-1"}).
		WillReturnRows(pgxmock.NewRows(outcomeColumns).
			AddRow("r-1", 0, "sbp", "REMOVE", false, "connection reset").
			AddRow("r-1", 1, "upi", "ADD", true, ""))

	report, err := repo.FindReportByID(context.Background(), "r-1")

	require.NoError(t, err)
	assert.Equal(t, merchant, report.Parent)
	assert.Equal(t, domain.StatePartiallyFailed, report.State)
	assert.Equal(t, []string{"sbp"}, report.FailedCodes())
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, domain.OperationAdd, report.Outcomes[1].Operation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindReportByID_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("FROM reconcile_reports").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindReportByID(context.Background(), "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReportsByParent_FirstPage(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, report_id DESC LIMIT $3;")).
		WithArgs("merchant", "m-1", 2).
		WillReturnRows(pgxmock.NewRows(reportColumns).
			AddRow("r-2", "merchant", "m-1", "currencies", []string{}, []string{"USD"}, "SETTLED", createdAt.Add(time.Minute), "user-1").
			AddRow("r-1", "merchant", "m-1", "payment_types", []string{"card"}, []string{}, "SETTLED", createdAt, "user-1"))
	mock.ExpectQuery("FROM reconcile_report_outcomes").
		WithArgs([]string{"r-2", "r-1"}).
		WillReturnRows(pgxmock.NewRows(outcomeColumns).
			AddRow("r-1", 0, "card", "REMOVE", true, "").
			AddRow("r-2", 0, "USD", "ADD", true, ""))

	reports, err := repo.ListReportsByParent(context.Background(), merchant, 2, nil)

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "r-2", reports[0].ReportID)
	assert.Equal(t, "USD", reports[0].Outcomes[0].Code)
	assert.Equal(t, "card", reports[1].Outcomes[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReportsByParent_AfterCursor(t *testing.T) {
	mock, repo := newMockRepo(t)
	cursor := &portsrepo.ReportCursor{CreatedAt: createdAt, ReportID: "r-1"}

	mock.ExpectQuery(regexp.QuoteMeta("AND (created_at, report_id) < ($3, $4) ORDER BY created_at DESC, report_id DESC LIMIT $5;")).
		WithArgs("merchant", "m-1", createdAt, "r-1", 10).
		WillReturnRows(pgxmock.NewRows(reportColumns))

	reports, err := repo.ListReportsByParent(context.Background(), merchant, 10, cursor)

	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.NotNil(t, reports)
	assert.NoError(t, mock.ExpectationsWereMet())
}
