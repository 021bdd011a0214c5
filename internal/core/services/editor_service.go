package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/routing_console/internal/apperrors"
	"github.com/SscSPs/routing_console/internal/core/domain"
	"github.com/SscSPs/routing_console/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/routing_console/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/routing_console/internal/core/ports/services"
	"github.com/SscSPs/routing_console/internal/core/reconcile"
	"github.com/SscSPs/routing_console/internal/dto"
	"github.com/SscSPs/routing_console/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// EditorServiceOption configures the editor service.
type EditorServiceOption func(*editorService)

// WithReconciler replaces the default reconciler.
func WithReconciler(r *reconcile.Reconciler) EditorServiceOption {
	return func(s *editorService) {
		s.reconciler = r
	}
}

// WithReportWriter enables persisting one report per reconcile pass.
func WithReportWriter(repo portsrepo.ReconcileReportWriter) EditorServiceOption {
	return func(s *editorService) {
		s.reports = repo
	}
}

// WithClock sets the time source used for report audit fields.
func WithClock(now func() time.Time) EditorServiceOption {
	return func(s *editorService) {
		s.now = now
	}
}

type editorService struct {
	BaseService
	backend    gateways.BackendFacade
	reconciler *reconcile.Reconciler
	reports    portsrepo.ReconcileReportWriter
	now        func() time.Time
}

// NewEditorService creates the service behind every resource editor.
func NewEditorService(backend gateways.BackendFacade, opts ...EditorServiceOption) portssvc.EditorSvcFacade {
	s := &editorService{
		backend:    backend,
		reconciler: reconcile.NewReconciler(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *editorService) LoadEditor(ctx context.Context, ref domain.ParentRef) (*domain.ParentEntity, error) {
	entity, err := s.backend.GetOne(ctx, ref)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load parent", slog.String("parent", ref.String()))
		}
		return nil, fmt.Errorf("failed to load %s: %w", ref, err)
	}
	for _, issue := range entity.FeeIssues {
		s.LogWarn(ctx, "Stored fee cannot be edited",
			slog.String("parent", ref.String()),
			slog.Int("index", issue.Index),
			slog.String("type", string(issue.Type)),
			slog.String("error", issue.Err.Error()))
	}
	return entity, nil
}

// Submit runs one editor submission. Local validation happens first and
// aborts the submit before any backend call. After that the scalar update,
// each association kind and each fee are independent: a failure in one is
// recorded and the rest still run.
func (s *editorService) Submit(ctx context.Context, ref domain.ParentRef, req dto.SubmitEntityRequest, userID string) (*domain.SubmitOutcome, error) {
	fees := make([]*preparedFee, len(req.Fees))
	for i, f := range req.Fees {
		prepared, err := prepareFee(f)
		if err != nil {
			return nil, fmt.Errorf("fees[%d]: %w", i, err)
		}
		fees[i] = prepared
	}

	selections := make(map[domain.AssociationKind]dto.AssociationSelection, len(req.Associations))
	for raw, sel := range req.Associations {
		kind, err := domain.ParseAssociationKind(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		// a missing desired set would empty the parent; only an explicit [] may do that
		if sel.Desired == nil {
			return nil, fmt.Errorf("%s: desired set is required: %w", kind, apperrors.ErrValidation)
		}
		selections[kind] = sel
	}

	logger := s.GetLogger(ctx).With(slog.String("parent", ref.String()))
	outcome := &domain.SubmitOutcome{Parent: ref}
	var result *multierror.Error

	outcome.ScalarAttempted = true
	if err := s.backend.Update(ctx, ref, domain.ScalarFields(req.Scalar)); err != nil {
		outcome.ScalarErr = &apperrors.ScalarUpdateError{ParentID: ref.String(), Err: err}
		result = multierror.Append(result, outcome.ScalarErr)
		logger.Error("Scalar update failed", slog.String("error", err.Error()))
	}

	var current *domain.ParentEntity
	for _, kind := range domain.AssociationKinds {
		sel, ok := selections[kind]
		if !ok {
			continue
		}

		var server []string
		if sel.Baseline != nil {
			server = *sel.Baseline
		} else {
			if current == nil {
				entity, err := s.backend.GetOne(ctx, ref)
				if err != nil {
					ao := domain.AssociationOutcome{
						Kind:  kind,
						State: domain.StateIdle,
						Err:   fmt.Errorf("failed to fetch %s baseline: %w", kind, err),
					}
					outcome.Associations = append(outcome.Associations, ao)
					result = multierror.Append(result, ao.Err)
					logger.Error("Baseline fetch failed", slog.String("kind", string(kind)), slog.String("error", err.Error()))
					continue
				}
				current = entity
			}
			server = current.Codes(kind)
		}

		ao := s.reconcileKind(ctx, ref, kind, server, sel.Desired, userID)
		if ao.Err != nil {
			result = multierror.Append(result, ao.Err)
			logger.Warn("Association reconcile incomplete",
				slog.String("kind", string(kind)),
				slog.String("state", string(ao.State)),
				slog.String("error", ao.Err.Error()))
		}
		outcome.Associations = append(outcome.Associations, ao)
	}

	for i, fee := range fees {
		fo := domain.FeeOutcome{Index: i, Percentage: fee.Percentage, Fraction: fee.Draft.Value}
		if err := s.backend.CreateFee(ctx, ref, fee.Draft); err != nil {
			fo.Err = fmt.Errorf("fees[%d]: %w", i, err)
			result = multierror.Append(result, fo.Err)
			logger.Error("Fee creation failed", slog.Int("index", i), slog.String("error", err.Error()))
		}
		outcome.Fees = append(outcome.Fees, fo)
	}

	if outcome.Succeeded() {
		logger.Info("Submit settled",
			slog.Int("associations", len(outcome.Associations)),
			slog.Int("fees", len(outcome.Fees)))
	}
	return outcome, result.ErrorOrNil()
}

func (s *editorService) reconcileKind(
	ctx context.Context,
	ref domain.ParentRef,
	kind domain.AssociationKind,
	server, desired []string,
	userID string,
) domain.AssociationOutcome {
	removeOne := func(ctx context.Context, _ string, code string) error {
		err := s.backend.RemoveAssociation(ctx, ref, kind, code)
		metrics.RecordAssociationCall(string(apperrors.OpRemoveOne), err == nil)
		return err
	}
	addMany := func(ctx context.Context, _ string, codes []string) error {
		err := s.backend.AddAssociation(ctx, ref, kind, codes)
		metrics.RecordAssociationCall(string(apperrors.OpAddMany), err == nil)
		return err
	}

	res, err := s.reconciler.Reconcile(ctx, ref.ID, server, desired, removeOne, addMany)
	var partial *apperrors.PartialReconcileFailure
	if errors.As(err, &partial) {
		partial.Kind = string(kind)
	}
	metrics.RecordReconcilePass(string(ref.Type), string(kind), string(res.State))

	ao := domain.AssociationOutcome{
		Kind:     kind,
		State:    res.State,
		ToRemove: res.Plan.ToRemove,
		ToAdd:    res.Plan.ToAdd,
		Outcomes: res.CodeOutcomes(),
		Err:      err,
	}
	ao.ReportID = s.saveReport(ctx, ref, kind, server, desired, &ao, userID)
	return ao
}

// saveReport records the pass. A failed write is logged and does not change
// the submit outcome; the backend calls already happened.
func (s *editorService) saveReport(
	ctx context.Context,
	ref domain.ParentRef,
	kind domain.AssociationKind,
	server, desired []string,
	ao *domain.AssociationOutcome,
	userID string,
) string {
	if s.reports == nil {
		return ""
	}
	report := domain.ReconcileReport{
		ReportID:   uuid.NewString(),
		Parent:     ref,
		Kind:       kind,
		ServerSet:  reconcile.NewCodeSet(server...).Sorted(),
		DesiredSet: reconcile.NewCodeSet(desired...).Sorted(),
		State:      ao.State,
		Outcomes:   ao.Outcomes,
		AuditFields: domain.AuditFields{
			CreatedAt: s.now().UTC(),
			CreatedBy: userID,
		},
	}
	if err := s.reports.SaveReport(ctx, report); err != nil {
		s.LogError(ctx, err, "Failed to save reconcile report",
			slog.String("parent", ref.String()),
			slog.String("kind", string(kind)))
		return ""
	}
	return report.ReportID
}
