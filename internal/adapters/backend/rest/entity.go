package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/SscSPs/routing_console/internal/apperrors"
	"github.com/SscSPs/routing_console/internal/core/amount"
	"github.com/SscSPs/routing_console/internal/core/domain"
	"github.com/tidwall/gjson"
)

// GetOne loads a parent with its association codes and fees.
func (c *Client) GetOne(ctx context.Context, ref domain.ParentRef) (*domain.ParentEntity, error) {
	path, err := c.parentPath(ref)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeEntity(ref, body)
}

// Update replaces the parent's scalar fields.
func (c *Client) Update(ctx context.Context, ref domain.ParentRef, fields domain.ScalarFields) error {
	path, err := c.parentPath(ref)
	if err != nil {
		return err
	}
	payload := make(map[string]any, len(fields))
	for k, v := range fields {
		// associations only change through their own endpoints
		if _, isKind := associationPaths[domain.AssociationKind(k)]; isKind {
			continue
		}
		payload[k] = v
	}
	_, err = c.do(ctx, http.MethodPut, path, payload)
	return err
}

// decodeEntity reads a getOne payload. Resources differ in shape: some wrap
// the entity in "data", linked collections hold {code, ...} objects or bare
// codes, and fee values come as a fraction string or a {quantity, accuracy}
// pair.
func decodeEntity(ref domain.ParentRef, body []byte) (*domain.ParentEntity, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode %s: invalid JSON: %w", ref, apperrors.ErrBackendUnavailable)
	}
	root := gjson.ParseBytes(body)
	if data := root.Get("data"); data.IsObject() {
		root = data
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("decode %s: expected an object: %w", ref, apperrors.ErrBackendUnavailable)
	}

	entity := &domain.ParentEntity{
		Ref:          ref,
		Name:         root.Get("name").String(),
		Description:  root.Get("description").String(),
		Associations: make(map[domain.AssociationKind][]string, len(domain.AssociationKinds)),
	}
	if raw, ok := root.Value().(map[string]any); ok {
		entity.Raw = raw
	}

	for _, kind := range domain.AssociationKinds {
		entity.Associations[kind] = decodeCodes(root.Get(string(kind)))
	}

	// a fee the console cannot read is reported on its own and never hides
	// the codes decoded above
	fees := root.Get("fees")
	if fees.IsArray() {
		for i, f := range fees.Array() {
			fee, err := decodeFee(f)
			if err != nil {
				entity.FeeIssues = append(entity.FeeIssues, domain.FeeIssue{
					Index:      i,
					AccountRef: feeAccountRef(f),
					Type:       feeType(f),
					RawValue:   f.Get("value").Raw,
					Err:        fmt.Errorf("decode %s fees[%d]: %w", ref, i, err),
				})
				continue
			}
			entity.Fees = append(entity.Fees, fee)
		}
	}
	return entity, nil
}

func decodeCodes(list gjson.Result) []string {
	codes := []string{}
	if !list.IsArray() {
		return codes
	}
	for _, item := range list.Array() {
		code := item.String()
		if item.IsObject() {
			code = item.Get("code").String()
		}
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// feeType reads the fee type. Resources that only carry percent fees omit it.
func feeType(f gjson.Result) domain.FeeType {
	t := domain.FeeType(strings.ToLower(strings.TrimSpace(f.Get("type").String())))
	if t == "" {
		return domain.FeeTypePercent
	}
	return t
}

func feeAccountRef(f gjson.Result) string {
	accountRef := f.Get("account_ref")
	if !accountRef.Exists() {
		accountRef = f.Get("account")
	}
	return accountRef.String()
}

func decodeFee(f gjson.Result) (domain.Fee, error) {
	t := feeType(f)
	if t != domain.FeeTypePercent {
		return domain.Fee{}, fmt.Errorf("fee type %q has no rate value: %w", t, apperrors.ErrValidation)
	}

	var fixed *domain.FixedPointAmount
	value := f.Get("value")
	if value.IsObject() {
		quantity, err := fixedPointField(value, "quantity")
		if err != nil {
			return domain.Fee{}, err
		}
		accuracy, err := fixedPointField(value, "accuracy")
		if err != nil {
			return domain.Fee{}, err
		}
		fixed = &domain.FixedPointAmount{Quantity: quantity, Accuracy: accuracy}
	}
	// numbers are read from their raw text so no float64 is involved
	raw := value.Str
	if value.Type == gjson.Number {
		raw = value.Raw
	}
	fraction, err := amount.DecodeFeeValue(raw, fixed)
	if err != nil {
		return domain.Fee{}, err
	}

	currency := f.Get("currency")
	if currency.IsObject() {
		currency = currency.Get("code")
	}

	return domain.Fee{
		AccountRef:  feeAccountRef(f),
		Type:        t,
		Value:       fraction,
		Currency:    currency.String(),
		Direction:   domain.FeeDirection(strings.ToLower(f.Get("direction").String())),
		Description: f.Get("description").String(),
	}, nil
}

// fixedPointField reads one half of a {quantity, accuracy} pair. Only a JSON
// integer literal is accepted: gjson's Int() would truncate 1.5 and turn
// "abc" or a missing field into 0.
func fixedPointField(value gjson.Result, name string) (int64, error) {
	field := value.Get(name)
	if field.Type != gjson.Number {
		return 0, &apperrors.PrecisionError{Op: "DecodeFeeValue", Input: value.Raw, Reason: name + " must be an integer"}
	}
	n, err := strconv.ParseInt(field.Raw, 10, 64)
	if err != nil {
		return 0, &apperrors.PrecisionError{Op: "DecodeFeeValue", Input: value.Raw, Reason: name + " must be an integer"}
	}
	return n, nil
}
