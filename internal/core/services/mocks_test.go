package services_test

import (
	"context"

	"github.com/SscSPs/routing_console/internal/core/domain"
	portsrepo "github.com/SscSPs/routing_console/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock BackendFacade ---
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) GetOne(ctx context.Context, ref domain.ParentRef) (*domain.ParentEntity, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParentEntity), args.Error(1)
}

func (m *MockBackend) Update(ctx context.Context, ref domain.ParentRef, fields domain.ScalarFields) error {
	args := m.Called(ctx, ref, fields)
	return args.Error(0)
}

func (m *MockBackend) AddAssociation(ctx context.Context, ref domain.ParentRef, kind domain.AssociationKind, codes []string) error {
	args := m.Called(ctx, ref, kind, codes)
	return args.Error(0)
}

func (m *MockBackend) RemoveAssociation(ctx context.Context, ref domain.ParentRef, kind domain.AssociationKind, code string) error {
	args := m.Called(ctx, ref, kind, code)
	return args.Error(0)
}

func (m *MockBackend) CreateFee(ctx context.Context, ref domain.ParentRef, draft domain.FeeDraft) error {
	args := m.Called(ctx, ref, draft)
	return args.Error(0)
}

func (m *MockBackend) RemoveFee(ctx context.Context, ref domain.ParentRef, feeAccountRef string) error {
	args := m.Called(ctx, ref, feeAccountRef)
	return args.Error(0)
}

// --- Mock ReconcileReportRepository ---
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) FindReportByID(ctx context.Context, reportID string) (*domain.ReconcileReport, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconcileReport), args.Error(1)
}

func (m *MockReportRepository) ListReportsByParent(ctx context.Context, parent domain.ParentRef, limit int, cursor *portsrepo.ReportCursor) ([]domain.ReconcileReport, error) {
	args := m.Called(ctx, parent, limit, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconcileReport), args.Error(1)
}

func (m *MockReportRepository) SaveReport(ctx context.Context, report domain.ReconcileReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
