package reconcile_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/routing_console/internal/apperrors"
	"github.com/SscSPs/routing_console/internal/core/domain"
	"github.com/SscSPs/routing_console/internal/core/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNetwork = errors.New("connection reset by peer")

// memBackend mimics the association endpoints: union-insert on add, no-op
// removal of absent codes.
type memBackend struct {
	mu         sync.Mutex
	sets       map[string]reconcile.CodeSet
	calls      []string
	failRemove map[string]error
	failAdd    error
	removeHook func(code string)
}

func newMemBackend(parentID string, codes ...string) *memBackend {
	return &memBackend{
		sets:       map[string]reconcile.CodeSet{parentID: reconcile.NewCodeSet(codes...)},
		failRemove: map[string]error{},
	}
}

func (b *memBackend) removeOne(ctx context.Context, parentID, code string) error {
	if b.removeHook != nil {
		b.removeHook(code)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "remove:"+code)
	if err := b.failRemove[code]; err != nil {
		return err
	}
	set, ok := b.sets[parentID]
	if !ok {
		return apperrors.ErrNotFound
	}
	delete(set, code)
	return nil
}

func (b *memBackend) addMany(ctx context.Context, parentID string, codes []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	call := "add:"
	for i, c := range codes {
		if i > 0 {
			call += ","
		}
		call += c
	}
	b.calls = append(b.calls, call)
	if b.failAdd != nil {
		return b.failAdd
	}
	set, ok := b.sets[parentID]
	if !ok {
		return apperrors.ErrNotFound
	}
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return nil
}

func (b *memBackend) codes(parentID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sets[parentID].Sorted()
}

func (b *memBackend) recordedCalls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func TestReconcile_SwapPaymentType(t *testing.T) {
	backend := newMemBackend("m-1", "card", "sbp")
	var states []domain.ReconcileState
	r := reconcile.NewReconciler(reconcile.WithStateObserver(func(_ string, s domain.ReconcileState) {
		states = append(states, s)
	}))

	res, err := r.Reconcile(context.Background(), "m-1",
		[]string{"card", "sbp"}, []string{"card", "upi"},
		backend.removeOne, backend.addMany)

	require.NoError(t, err)
	assert.Equal(t, domain.StateSettled, res.State)
	assert.Equal(t, []string{"remove:sbp", "add:card,upi"}, backend.recordedCalls())
	assert.Equal(t, []string{"card", "upi"}, backend.codes("m-1"))
	assert.Equal(t, []domain.ReconcileState{
		domain.StateIdle,
		domain.StateDiffing,
		domain.StateRemovingInFlight,
		domain.StateAddingInFlight,
		domain.StateSettled,
	}, states)
}

func TestReconcile_PartialFailureKeepsFailedCode(t *testing.T) {
	backend := newMemBackend("m-1", "card", "qr", "sbp")
	backend.failRemove["sbp"] = errNetwork
	r := reconcile.NewReconciler()

	res, err := r.Reconcile(context.Background(), "m-1",
		[]string{"card", "qr", "sbp"}, []string{"card", "upi"},
		backend.removeOne, backend.addMany)

	require.Error(t, err)
	var partial *apperrors.PartialReconcileFailure
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, []string{"sbp"}, partial.FailedCodes())
	assert.ErrorIs(t, err, errNetwork)
	assert.Equal(t, domain.StatePartiallyFailed, res.State)

	// the add was still issued after the failed removal resolved
	require.NotNil(t, res.Add)
	assert.True(t, res.Add.Succeeded())

	// re-fetch: failed removal still present, added codes present
	assert.Equal(t, []string{"card", "sbp", "upi"}, backend.codes("m-1"))

	outcomes := res.CodeOutcomes()
	require.Len(t, outcomes, 4)
	assert.Equal(t, domain.CodeOutcome{Code: "qr", Operation: domain.OperationRemove, Succeeded: true}, outcomes[0])
	assert.Equal(t, "sbp", outcomes[1].Code)
	assert.False(t, outcomes[1].Succeeded)
	assert.Contains(t, outcomes[1].Error, "connection reset")
}

func TestReconcile_AddFailureAfterRemovals(t *testing.T) {
	backend := newMemBackend("m-1", "card", "sbp")
	backend.failAdd = errNetwork
	r := reconcile.NewReconciler()

	res, err := r.Reconcile(context.Background(), "m-1",
		[]string{"card", "sbp"}, []string{"upi"},
		backend.removeOne, backend.addMany)

	var partial *apperrors.PartialReconcileFailure
	require.ErrorAs(t, err, &partial)
	require.Len(t, partial.Failures, 1)
	assert.Equal(t, apperrors.OpAddMany, partial.Failures[0].Op)
	assert.Equal(t, domain.StatePartiallyFailed, res.State)
	// removals went through, desired set not established
	assert.Empty(t, backend.codes("m-1"))
}

func TestReconcile_OneFailureDoesNotAbortOtherRemovals(t *testing.T) {
	backend := newMemBackend("m-1", "a", "b", "c", "d")
	backend.failRemove["a"] = errNetwork
	r := reconcile.NewReconciler(reconcile.WithMaxConcurrency(1))

	_, err := r.Reconcile(context.Background(), "m-1",
		[]string{"a", "b", "c", "d"}, nil,
		backend.removeOne, backend.addMany)

	require.Error(t, err)
	assert.ElementsMatch(t, []string{"remove:a", "remove:b", "remove:c", "remove:d"}, backend.recordedCalls())
	assert.Equal(t, []string{"a"}, backend.codes("m-1"))
}

func TestReconcile_AddWaitsForEveryRemoval(t *testing.T) {
	backend := newMemBackend("m-1", "a", "b", "c")
	var resolved atomic.Int32
	backend.removeHook = func(code string) {
		if code == "b" {
			time.Sleep(30 * time.Millisecond)
		}
		resolved.Add(1)
	}
	var resolvedAtAdd int32
	add := func(ctx context.Context, parentID string, codes []string) error {
		resolvedAtAdd = resolved.Load()
		return backend.addMany(ctx, parentID, codes)
	}

	_, err := reconcile.NewReconciler().Reconcile(context.Background(), "m-1",
		[]string{"a", "b", "c"}, []string{"z"},
		backend.removeOne, add)

	require.NoError(t, err)
	assert.Equal(t, int32(3), resolvedAtAdd)
}

func TestReconcile_RemovalsRunConcurrently(t *testing.T) {
	backend := newMemBackend("m-1", "a", "b")
	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	backend.removeHook = func(string) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		if n == 2 {
			close(release)
		}
		select {
		case <-release:
		case <-time.After(time.Second):
		}
		inFlight.Add(-1)
	}

	_, err := reconcile.NewReconciler().Reconcile(context.Background(), "m-1",
		[]string{"a", "b"}, nil, backend.removeOne, backend.addMany)

	require.NoError(t, err)
	assert.Equal(t, int32(2), peak.Load())
}

func TestReconcile_MaxConcurrencyBoundsInFlight(t *testing.T) {
	backend := newMemBackend("m-1", "a", "b", "c", "d", "e")
	var inFlight, peak atomic.Int32
	backend.removeHook = func(string) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
	}

	_, err := reconcile.NewReconciler(reconcile.WithMaxConcurrency(2)).Reconcile(context.Background(), "m-1",
		[]string{"a", "b", "c", "d", "e"}, nil, backend.removeOne, backend.addMany)

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Empty(t, backend.codes("m-1"))
}

func TestReconcile_SecondPassIsSafe(t *testing.T) {
	backend := newMemBackend("m-1", "card", "sbp")
	r := reconcile.NewReconciler()

	_, err := r.Reconcile(context.Background(), "m-1",
		[]string{"card", "sbp"}, []string{"card"}, backend.removeOne, backend.addMany)
	require.NoError(t, err)

	// retry with the stale server set: removing an already-absent code is a no-op
	res, err := r.Reconcile(context.Background(), "m-1",
		[]string{"card", "sbp"}, []string{"card"}, backend.removeOne, backend.addMany)
	require.NoError(t, err)
	assert.Equal(t, domain.StateSettled, res.State)
	assert.Equal(t, []string{"card"}, backend.codes("m-1"))
}

func TestReconcile_DeltaPolicySkipsEmptyAdd(t *testing.T) {
	backend := newMemBackend("m-1", "card", "sbp")
	r := reconcile.NewReconciler(reconcile.WithAddPolicy(reconcile.AddDelta))

	res, err := r.Reconcile(context.Background(), "m-1",
		[]string{"card", "sbp"}, []string{"card"}, backend.removeOne, backend.addMany)

	require.NoError(t, err)
	assert.Nil(t, res.Add)
	assert.Equal(t, []string{"remove:sbp"}, backend.recordedCalls())
}

func TestReconcile_CancelledContextDispatchesNothing(t *testing.T) {
	backend := newMemBackend("m-1", "card", "sbp")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := reconcile.NewReconciler().Reconcile(ctx, "m-1",
		[]string{"card", "sbp"}, []string{"upi"}, backend.removeOne, backend.addMany)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.StatePartiallyFailed, res.State)
	assert.Empty(t, backend.recordedCalls())
	assert.Equal(t, []string{"card", "sbp"}, backend.codes("m-1"))
}

func TestReconcile_CancelWhileWaitingForSlotSkipsQueuedRemovals(t *testing.T) {
	backend := newMemBackend("m-1", "a", "b", "c")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// the first removal holds the only slot and cancels before releasing it
	backend.removeHook = func(code string) {
		if code == "a" {
			cancel()
		}
	}

	res, err := reconcile.NewReconciler(reconcile.WithMaxConcurrency(1)).Reconcile(ctx, "m-1",
		[]string{"a", "b", "c"}, []string{"z"}, backend.removeOne, backend.addMany)

	var partial *apperrors.PartialReconcileFailure
	require.ErrorAs(t, err, &partial)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"remove:a"}, backend.recordedCalls())
	assert.Equal(t, []string{"b", "c"}, backend.codes("m-1"))
	require.Len(t, res.Removals, 3)
	assert.NoError(t, res.Removals[0].Err)
	assert.ErrorIs(t, res.Removals[1].Err, context.Canceled)
	assert.ErrorIs(t, res.Removals[2].Err, context.Canceled)
	require.NotNil(t, res.Add)
	assert.ErrorIs(t, res.Add.Err, context.Canceled)
}

func TestReconcile_MissingParent(t *testing.T) {
	backend := newMemBackend("m-1")

	_, err := reconcile.NewReconciler().Reconcile(context.Background(), "m-404",
		[]string{"card"}, []string{"upi"}, backend.removeOne, backend.addMany)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
