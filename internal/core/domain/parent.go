package domain

import (
	"fmt"
	"strings"
)

// ParentType identifies a kind of entity that owns associations.
type ParentType string

const (
	Merchant             ParentType = "merchant"
	Direction            ParentType = "direction"
	Terminal             ParentType = "terminal"
	Cascade              ParentType = "cascade"
	FinancialInstitution ParentType = "financial_institution"
)

// ParentTypes lists every parent type the console edits.
var ParentTypes = []ParentType{Merchant, Direction, Terminal, Cascade, FinancialInstitution}

// ParseParentType validates a raw parent type as found in routes and config.
func ParseParentType(raw string) (ParentType, error) {
	pt := ParentType(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range ParentTypes {
		if pt == known {
			return pt, nil
		}
	}
	return "", fmt.Errorf("unknown parent type %q", raw)
}

// AssociationKind names a many-to-many collection owned by a parent.
type AssociationKind string

const (
	PaymentTypes AssociationKind = "payment_types"
	Currencies   AssociationKind = "currencies"
)

// AssociationKinds lists the kinds in the order a submit reconciles them.
var AssociationKinds = []AssociationKind{PaymentTypes, Currencies}

// ParseAssociationKind validates a raw association kind.
func ParseAssociationKind(raw string) (AssociationKind, error) {
	k := AssociationKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range AssociationKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown association kind %q", raw)
}

// ParentRef addresses a single parent entity on the backend.
type ParentRef struct {
	Type ParentType `json:"type"`
	ID   string     `json:"id"`
}

func (r ParentRef) String() string {
	return string(r.Type) + "/" + r.ID
}

// AssociationLink is one edge between a parent and a referenced code. It has no
// identity beyond the pair.
type AssociationLink struct {
	ParentID string `json:"parentID"`
	Code     string `json:"code"`
}

// ScalarFields are the non-association fields of a parent (name, description, ...).
// They are sent to the backend verbatim.
type ScalarFields map[string]any

// ParentEntity is the backend's view of a parent as returned by getOne.
type ParentEntity struct {
	Ref          ParentRef                    `json:"ref"`
	Name         string                       `json:"name"`
	Description  string                       `json:"description"`
	Associations map[AssociationKind][]string `json:"associations"`
	Fees         []Fee                        `json:"fees"`
	FeeIssues    []FeeIssue                   `json:"-"`
	Raw          map[string]any               `json:"-"`
}

// Codes returns the server set for kind; nil when the parent has none.
func (e *ParentEntity) Codes(kind AssociationKind) []string {
	if e == nil || e.Associations == nil {
		return nil
	}
	return e.Associations[kind]
}
