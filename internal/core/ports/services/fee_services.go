package services

import (
	"context"

	"github.com/SscSPs/routing_console/internal/core/domain"
	"github.com/SscSPs/routing_console/internal/dto"
)

// FeeWriterSvc defines fee mutations
type FeeWriterSvc interface {
	// CreateFee converts the percentage to a fraction and submits it.
	CreateFee(ctx context.Context, ref domain.ParentRef, req dto.CreateFeeRequest) (*domain.FeeDraft, error)

	// RemoveFee deletes a fee by its account reference.
	RemoveFee(ctx context.Context, ref domain.ParentRef, feeAccountRef string) error
}

// AmountConverterSvc exposes the amount codec to the console
type AmountConverterSvc interface {
	Convert(ctx context.Context, req dto.ConvertAmountRequest) (*dto.ConvertAmountResponse, error)
}

// FeeSvcFacade combines all fee service interfaces
type FeeSvcFacade interface {
	FeeWriterSvc
	AmountConverterSvc
}
