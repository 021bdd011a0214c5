// Package reconcile synchronizes a parent's linked-code set with a REST backend
// that only offers "add many" and "remove one" primitives.
//
// A pass removes every code in server − desired concurrently, waits for all of
// those calls to resolve, then issues a single addMany. There is no
// transaction across calls: a failed pass leaves the backend in whatever state
// the completed calls produced, and the caller must re-fetch to learn it.
// Concurrent passes against the same parent are last-write-wins.
package reconcile

import (
	"context"

	"github.com/SscSPs/routing_console/internal/apperrors"
	"github.com/SscSPs/routing_console/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// RemoveOneFunc removes a single code from a parent. Removing an absent code
// must succeed.
type RemoveOneFunc func(ctx context.Context, parentID, code string) error

// AddManyFunc union-inserts codes into a parent's set.
type AddManyFunc func(ctx context.Context, parentID string, codes []string) error

// StateObserver is notified of every state a pass enters, in order.
type StateObserver func(parentID string, state domain.ReconcileState)

// Outcome is the result of one backend call.
type Outcome struct {
	Op    apperrors.AssociationOperation `json:"op"`
	Codes []string                       `json:"codes"`
	Err   error                          `json:"-"`
}

func (o Outcome) Succeeded() bool { return o.Err == nil }

// Result describes a finished pass.
type Result struct {
	ParentID string
	Plan     Plan
	State    domain.ReconcileState
	// Removals follow Plan.ToRemove order.
	Removals []Outcome
	// Add is nil when there was nothing to add.
	Add *Outcome
}

// Failures returns one error per failed call.
func (r *Result) Failures() []*apperrors.AssociationOperationError {
	var failures []*apperrors.AssociationOperationError
	collect := func(o Outcome) {
		if o.Err != nil {
			failures = append(failures, &apperrors.AssociationOperationError{
				Op:       o.Op,
				ParentID: r.ParentID,
				Codes:    o.Codes,
				Err:      o.Err,
			})
		}
	}
	for _, o := range r.Removals {
		collect(o)
	}
	if r.Add != nil {
		collect(*r.Add)
	}
	return failures
}

// CodeOutcomes flattens the pass into one entry per code and operation.
func (r *Result) CodeOutcomes() []domain.CodeOutcome {
	var out []domain.CodeOutcome
	appendAll := func(o Outcome, op domain.OperationKind) {
		for _, code := range o.Codes {
			co := domain.CodeOutcome{Code: code, Operation: op, Succeeded: o.Err == nil}
			if o.Err != nil {
				co.Error = o.Err.Error()
			}
			out = append(out, co)
		}
	}
	for _, o := range r.Removals {
		appendAll(o, domain.OperationRemove)
	}
	if r.Add != nil {
		appendAll(*r.Add, domain.OperationAdd)
	}
	return out
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithMaxConcurrency bounds the number of in-flight removeOne calls.
// Zero or less means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(r *Reconciler) { r.maxConcurrency = n }
}

// WithAddPolicy selects what the addMany call carries.
func WithAddPolicy(p AddPolicy) Option {
	return func(r *Reconciler) { r.policy = p }
}

// WithStateObserver registers fn to receive state transitions.
func WithStateObserver(fn StateObserver) Option {
	return func(r *Reconciler) { r.observe = fn }
}

// Reconciler runs reconcile passes. It is safe for concurrent use; it holds
// no per-pass state.
type Reconciler struct {
	maxConcurrency int
	policy         AddPolicy
	observe        StateObserver
}

// NewReconciler creates a Reconciler. Defaults: unbounded removals, AddFullDesired.
func NewReconciler(opts ...Option) *Reconciler {
	r := &Reconciler{policy: AddFullDesired}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the add policy in use.
func (r *Reconciler) Policy() AddPolicy { return r.policy }

// Reconcile moves parentID's set from server to desired. The returned Result is
// never nil. The error is a *apperrors.PartialReconcileFailure when any call
// failed, including calls skipped because ctx was done.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	parentID string,
	server, desired []string,
	removeOne RemoveOneFunc,
	addMany AddManyFunc,
) (*Result, error) {
	res := &Result{ParentID: parentID}
	r.enter(res, domain.StateIdle)

	r.enter(res, domain.StateDiffing)
	res.Plan = Diff(NewCodeSet(server...), NewCodeSet(desired...), r.policy)

	r.enter(res, domain.StateRemovingInFlight)
	res.Removals = r.removeAll(ctx, parentID, res.Plan.ToRemove, removeOne)

	// every removal has resolved at this point
	r.enter(res, domain.StateAddingInFlight)
	if len(res.Plan.ToAdd) > 0 {
		add := Outcome{Op: apperrors.OpAddMany, Codes: res.Plan.ToAdd}
		if err := ctx.Err(); err != nil {
			add.Err = err
		} else {
			add.Err = addMany(ctx, parentID, res.Plan.ToAdd)
		}
		res.Add = &add
	}

	if failures := res.Failures(); len(failures) > 0 {
		r.enter(res, domain.StatePartiallyFailed)
		return res, &apperrors.PartialReconcileFailure{ParentID: parentID, Failures: failures}
	}
	r.enter(res, domain.StateSettled)
	return res, nil
}

func (r *Reconciler) removeAll(ctx context.Context, parentID string, codes []string, removeOne RemoveOneFunc) []Outcome {
	outcomes := make([]Outcome, len(codes))
	var g errgroup.Group
	if r.maxConcurrency > 0 {
		g.SetLimit(r.maxConcurrency)
	}
	for i, code := range codes {
		outcomes[i] = Outcome{Op: apperrors.OpRemoveOne, Codes: []string{code}}
		if err := ctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}
		// g.Go blocks while the limit is reached, so ctx may be done by the
		// time this runs. Never return the error: one failed removal must not
		// stop the others.
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].Err = removeOne(ctx, parentID, code)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (r *Reconciler) enter(res *Result, state domain.ReconcileState) {
	res.State = state
	if r.observe != nil {
		r.observe(res.ParentID, state)
	}
}
