package services

import (
	"github.com/SscSPs/routing_console/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/routing_console/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/routing_console/internal/core/ports/services"
	"github.com/SscSPs/routing_console/internal/core/reconcile"
	"github.com/SscSPs/routing_console/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, backend gateways.BackendFacade, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	reconciler := reconcile.NewReconciler(
		reconcile.WithMaxConcurrency(cfg.ReconcileMaxConcurrency),
		reconcile.WithAddPolicy(cfg.ReconcileAddPolicy),
	)

	editorOpts := []EditorServiceOption{WithReconciler(reconciler)}
	var reportReader portsrepo.ReconcileReportReader
	if repos.ReconcileReportRepo != nil {
		editorOpts = append(editorOpts, WithReportWriter(repos.ReconcileReportRepo))
		reportReader = repos.ReconcileReportRepo
	}

	return &portssvc.ServiceContainer{
		Editor: NewEditorService(backend, editorOpts...),
		Fee:    NewFeeService(backend),
		Report: NewReconcileReportService(reportReader),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.EditorSvcFacade    = (*editorService)(nil)
	_ portssvc.FeeSvcFacade       = (*feeService)(nil)
	_ portssvc.ReconcileReportSvc = (*reconcileReportService)(nil)
)
