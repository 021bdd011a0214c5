package mapping

import (
	"github.com/SscSPs/routing_console/internal/core/domain"
	"github.com/SscSPs/routing_console/internal/models"
)

// ToModelReconcileReport converts a domain report into its row and outcome rows
func ToModelReconcileReport(d domain.ReconcileReport) (models.ReconcileReport, []models.ReconcileOutcome) {
	report := models.ReconcileReport{
		ReportID:    d.ReportID,
		ParentType:  string(d.Parent.Type),
		ParentID:    d.Parent.ID,
		Kind:        string(d.Kind),
		ServerSet:   nonNil(d.ServerSet),
		DesiredSet:  nonNil(d.DesiredSet),
		State:       string(d.State),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	outcomes := make([]models.ReconcileOutcome, len(d.Outcomes))
	for i, o := range d.Outcomes {
		outcomes[i] = models.ReconcileOutcome{
			ReportID:  d.ReportID,
			Position:  i,
			Code:      o.Code,
			Operation: string(o.Operation),
			Succeeded: o.Succeeded,
			Error:     o.Error,
		}
	}
	return report, outcomes
}

// ToDomainReconcileReport converts a report row and its outcome rows, ordered
// by position, into a domain report
func ToDomainReconcileReport(m models.ReconcileReport, outcomes []models.ReconcileOutcome) domain.ReconcileReport {
	d := domain.ReconcileReport{
		ReportID:    m.ReportID,
		Parent:      domain.ParentRef{Type: domain.ParentType(m.ParentType), ID: m.ParentID},
		Kind:        domain.AssociationKind(m.Kind),
		ServerSet:   nonNil(m.ServerSet),
		DesiredSet:  nonNil(m.DesiredSet),
		State:       domain.ReconcileState(m.State),
		Outcomes:    make([]domain.CodeOutcome, len(outcomes)),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	for i, o := range outcomes {
		d.Outcomes[i] = domain.CodeOutcome{
			Code:      o.Code,
			Operation: domain.OperationKind(o.Operation),
			Succeeded: o.Succeeded,
			Error:     o.Error,
		}
	}
	return d
}

func nonNil(codes []string) []string {
	if codes == nil {
		return []string{}
	}
	return codes
}
