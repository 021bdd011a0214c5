package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/routing_console/internal/apperrors"
	"github.com/SscSPs/routing_console/internal/core/amount"
	"github.com/SscSPs/routing_console/internal/core/domain"
	"github.com/SscSPs/routing_console/internal/core/ports/gateways"
	portssvc "github.com/SscSPs/routing_console/internal/core/ports/services"
	"github.com/SscSPs/routing_console/internal/dto"
	"github.com/shopspring/decimal"
)

type feeService struct {
	BaseService
	fees gateways.FeeWriter
}

// NewFeeService creates a new fee service backed by the platform fee endpoints.
func NewFeeService(fees gateways.FeeWriter) portssvc.FeeSvcFacade {
	return &feeService{fees: fees}
}

// preparedFee is a fee request that passed every local check and is ready to
// be submitted.
type preparedFee struct {
	Percentage decimal.Decimal
	Draft      domain.FeeDraft
}

// prepareFee parses the operator's percentage, applies the small fee gate and
// converts the value to the fraction the backend stores. It never touches the
// network.
func prepareFee(req dto.CreateFeeRequest) (*preparedFee, error) {
	feeType := domain.FeeType(strings.ToLower(req.Type))
	if feeType != domain.FeeTypePercent {
		return nil, fmt.Errorf("fee type %q has no rate value: %w", req.Type, apperrors.ErrValidation)
	}
	pct, err := amount.ParsePercentage(req.Percentage)
	if err != nil {
		return nil, err
	}
	if amount.IsSmallFee(pct) && !req.ConfirmSmallFee {
		return nil, fmt.Errorf("fee of %s%%: %w", amount.FormatPercentage(pct), apperrors.ErrSmallFeeNotConfirmed)
	}
	fraction, err := amount.ToFraction(pct)
	if err != nil {
		return nil, err
	}
	direction := domain.FeeDirection(strings.ToLower(req.Direction))
	if direction != domain.FeeDirectionIn && direction != domain.FeeDirectionOut {
		return nil, fmt.Errorf("unknown fee direction %q: %w", req.Direction, apperrors.ErrValidation)
	}

	return &preparedFee{
		Percentage: pct,
		Draft: domain.FeeDraft{
			Type:        feeType,
			Value:       fraction,
			Currency:    strings.ToUpper(req.Currency),
			Direction:   direction,
			Description: req.Description,
		},
	}, nil
}

func (s *feeService) CreateFee(ctx context.Context, ref domain.ParentRef, req dto.CreateFeeRequest) (*domain.FeeDraft, error) {
	fee, err := prepareFee(req)
	if err != nil {
		return nil, err
	}

	if err := s.fees.CreateFee(ctx, ref, fee.Draft); err != nil {
		s.LogError(ctx, err, "Failed to create fee",
			slog.String("parent", ref.String()),
			slog.String("fraction", fee.Draft.Value.String()))
		return nil, fmt.Errorf("failed to create fee for %s: %w", ref, err)
	}

	s.LogInfo(ctx, "Fee created",
		slog.String("parent", ref.String()),
		slog.String("percentage", amount.FormatPercentage(fee.Percentage)),
		slog.String("fraction", fee.Draft.Value.String()))
	return &fee.Draft, nil
}

func (s *feeService) RemoveFee(ctx context.Context, ref domain.ParentRef, feeAccountRef string) error {
	if strings.TrimSpace(feeAccountRef) == "" {
		return fmt.Errorf("fee reference is required: %w", apperrors.ErrValidation)
	}
	if err := s.fees.RemoveFee(ctx, ref, feeAccountRef); err != nil {
		s.LogError(ctx, err, "Failed to remove fee",
			slog.String("parent", ref.String()),
			slog.String("fee_ref", feeAccountRef))
		return fmt.Errorf("failed to remove fee %s from %s: %w", feeAccountRef, ref, err)
	}
	return nil
}

// Convert runs exactly one codec conversion. It is stateless and never calls
// the backend.
func (s *feeService) Convert(ctx context.Context, req dto.ConvertAmountRequest) (*dto.ConvertAmountResponse, error) {
	set := 0
	for _, present := range []bool{req.Percentage != nil, req.Fraction != nil, req.FixedPoint != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of percentage, fraction or fixedPoint must be set: %w", apperrors.ErrValidation)
	}

	var (
		fraction, pct decimal.Decimal
		err           error
	)
	switch {
	case req.Percentage != nil:
		if pct, err = amount.ParsePercentage(*req.Percentage); err != nil {
			return nil, err
		}
		fraction, err = amount.ToFraction(pct)
	case req.Fraction != nil:
		if fraction, err = amount.ParseFraction(*req.Fraction); err != nil {
			return nil, err
		}
		pct, err = amount.ToPercentage(fraction)
	default:
		if fraction, err = amount.DecodeFeeValue("", &domain.FixedPointAmount{
			Quantity: req.FixedPoint.Quantity,
			Accuracy: req.FixedPoint.Accuracy,
		}); err != nil {
			return nil, err
		}
		pct, err = amount.ToPercentage(fraction)
	}
	if err != nil {
		return nil, err
	}

	return &dto.ConvertAmountResponse{
		Fraction:                     fraction.String(),
		Percentage:                   amount.FormatPercentage(pct),
		RequiresSmallFeeConfirmation: amount.IsSmallFee(pct),
	}, nil
}
