package gateways

import (
	"context"

	"github.com/SscSPs/routing_console/internal/core/domain"
)

// EntityReader loads parents from the platform backend.
type EntityReader interface {
	// GetOne returns the parent including its linked-code collections and fees.
	// A missing parent is reported as apperrors.ErrNotFound.
	GetOne(ctx context.Context, ref domain.ParentRef) (*domain.ParentEntity, error)
}

// EntityWriter replaces a parent's non-association fields.
type EntityWriter interface {
	// Update must not touch associations.
	Update(ctx context.Context, ref domain.ParentRef, fields domain.ScalarFields) error
}

// AssociationWriter exposes the two association primitives. There is no batch
// "set" endpoint.
type AssociationWriter interface {
	// AddAssociation union-inserts codes; codes already present are no-ops.
	AddAssociation(ctx context.Context, ref domain.ParentRef, kind domain.AssociationKind, codes []string) error

	// RemoveAssociation removes exactly one code. An absent code is a no-op;
	// a missing parent is apperrors.ErrNotFound.
	RemoveAssociation(ctx context.Context, ref domain.ParentRef, kind domain.AssociationKind, code string) error
}

// FeeWriter manages fees attached to a parent.
type FeeWriter interface {
	// CreateFee submits draft; draft.Value is a fraction, not a percentage.
	CreateFee(ctx context.Context, ref domain.ParentRef, draft domain.FeeDraft) error

	// RemoveFee deletes a fee by its account reference.
	RemoveFee(ctx context.Context, ref domain.ParentRef, feeAccountRef string) error
}

// BackendFacade combines every backend operation the console gateway uses.
type BackendFacade interface {
	EntityReader
	EntityWriter
	AssociationWriter
	FeeWriter
}
