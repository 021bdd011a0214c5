package services

import (
	"context"

	"github.com/SscSPs/routing_console/internal/core/domain"
	"github.com/SscSPs/routing_console/internal/dto"
)

// EditorReaderSvc defines read operations backing a resource editor
type EditorReaderSvc interface {
	// LoadEditor fetches the parent the editor form is seeded from.
	LoadEditor(ctx context.Context, ref domain.ParentRef) (*domain.ParentEntity, error)
}

// EditorWriterSvc defines the editor submit flow
type EditorWriterSvc interface {
	// Submit validates fee fields, updates scalar fields, reconciles every
	// association in req and creates any new fees. The outcome is returned
	// even when err is non-nil; err aggregates every failure.
	Submit(ctx context.Context, ref domain.ParentRef, req dto.SubmitEntityRequest, userID string) (*domain.SubmitOutcome, error)
}

// EditorSvcFacade combines all editor service interfaces
type EditorSvcFacade interface {
	EditorReaderSvc
	EditorWriterSvc
}
