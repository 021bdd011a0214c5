package dto

import (
	"github.com/SscSPs/routing_console/internal/core/amount"
	"github.com/SscSPs/routing_console/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the console's custom binding tags:
//
//	percentage  string parses as a 0-100 percentage with at most 2 fractional digits
//	parenttype  string names a known parent type
//	assockind   string names a known association kind
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("percentage", func(fl validator.FieldLevel) bool {
		_, err := amount.ParsePercentage(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("parenttype", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseParentType(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("assockind", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseAssociationKind(fl.Field().String())
		return err == nil
	})
}
