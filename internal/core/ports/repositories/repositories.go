package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// ReconcileReportRepo is nil when no database is configured.
type RepositoryProvider struct {
	ReconcileReportRepo ReconcileReportRepositoryFacade
}
