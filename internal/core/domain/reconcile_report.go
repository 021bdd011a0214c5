package domain

// ReconcileState is the state of a single reconcile pass.
type ReconcileState string

const (
	StateIdle             ReconcileState = "IDLE"
	StateDiffing          ReconcileState = "DIFFING"
	StateRemovingInFlight ReconcileState = "REMOVING_IN_FLIGHT"
	StateAddingInFlight   ReconcileState = "ADDING_IN_FLIGHT"
	StateSettled          ReconcileState = "SETTLED"
	StatePartiallyFailed  ReconcileState = "PARTIALLY_FAILED"
)

// IsTerminal reports whether no further transition can happen.
func (s ReconcileState) IsTerminal() bool {
	return s == StateSettled || s == StatePartiallyFailed
}

// OperationKind is the REST primitive a CodeOutcome belongs to.
type OperationKind string

const (
	OperationRemove OperationKind = "REMOVE"
	OperationAdd    OperationKind = "ADD"
)

// CodeOutcome is the result of one code within one operation of a pass.
type CodeOutcome struct {
	Code      string        `json:"code"`
	Operation OperationKind `json:"operation"`
	Succeeded bool          `json:"succeeded"`
	Error     string        `json:"error,omitempty"`
}

// ReconcileReport is the persisted record of a reconcile pass.
type ReconcileReport struct {
	ReportID   string          `json:"reportID"`
	Parent     ParentRef       `json:"parent"`
	Kind       AssociationKind `json:"kind"`
	ServerSet  []string        `json:"serverSet"`
	DesiredSet []string        `json:"desiredSet"`
	State      ReconcileState  `json:"state"`
	Outcomes   []CodeOutcome   `json:"outcomes"`
	AuditFields
}

// FailedCodes lists codes whose operation did not succeed.
func (r ReconcileReport) FailedCodes() []string {
	var codes []string
	for _, o := range r.Outcomes {
		if !o.Succeeded {
			codes = append(codes, o.Code)
		}
	}
	return codes
}
