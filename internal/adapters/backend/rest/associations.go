package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/SscSPs/routing_console/internal/core/domain"
)

type addAssociationRequest struct {
	Codes []string `json:"codes"`
}

// AddAssociation union-inserts codes into the parent's set.
func (c *Client) AddAssociation(ctx context.Context, ref domain.ParentRef, kind domain.AssociationKind, codes []string) error {
	path, err := c.associationPath(ref, kind)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, path, addAssociationRequest{Codes: codes})
	return err
}

// RemoveAssociation removes one code. The backend answers 2xx for a code that
// is not linked and 404 only when the parent itself is missing.
func (c *Client) RemoveAssociation(ctx context.Context, ref domain.ParentRef, kind domain.AssociationKind, code string) error {
	path, err := c.associationPath(ref, kind)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, path+"/"+url.PathEscape(code), nil)
	return err
}
