package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/SscSPs/routing_console/internal/core/domain"
)

type createFeeRequest struct {
	Type        string `json:"type"`
	Value       string `json:"value"`
	Currency    string `json:"currency,omitempty"`
	Direction   string `json:"direction"`
	Description string `json:"description,omitempty"`
}

// CreateFee submits a fee. The value is sent as a decimal string.
func (c *Client) CreateFee(ctx context.Context, ref domain.ParentRef, draft domain.FeeDraft) error {
	path, err := c.parentPath(ref)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, path+"/fee", createFeeRequest{
		Type:        string(draft.Type),
		Value:       draft.Value.String(),
		Currency:    draft.Currency,
		Direction:   string(draft.Direction),
		Description: draft.Description,
	})
	return err
}

// RemoveFee deletes a fee by its account reference.
func (c *Client) RemoveFee(ctx context.Context, ref domain.ParentRef, feeAccountRef string) error {
	path, err := c.parentPath(ref)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, path+"/fee/"+url.PathEscape(feeAccountRef), nil)
	return err
}
