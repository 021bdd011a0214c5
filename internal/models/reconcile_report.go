package models

// ReconcileReport is a row of reconcile_reports.
type ReconcileReport struct {
	ReportID   string   `db:"report_id"`
	ParentType string   `db:"parent_type"`
	ParentID   string   `db:"parent_id"`
	Kind       string   `db:"kind"`
	ServerSet  []string `db:"server_set"`
	DesiredSet []string `db:"desired_set"`
	State      string   `db:"state"`
	AuditFields
}

// ReconcileOutcome is a row of reconcile_report_outcomes. Position keeps the
// order the outcomes were produced in.
type ReconcileOutcome struct {
	ReportID  string `db:"report_id"`
	Position  int    `db:"position"`
	Code      string `db:"code"`
	Operation string `db:"operation"`
	Succeeded bool   `db:"succeeded"`
	Error     string `db:"error"`
}
