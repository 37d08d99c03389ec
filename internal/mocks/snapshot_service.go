package mocks

import (
	"context"

	"github.com/371050/study-pwa/internal/service/snapshot"
)

// MockSnapshotService mocks *snapshot.Service.
type MockSnapshotService struct {
	ExportFn              func(ctx context.Context) (*snapshot.Snapshot, error)
	ImportOverwriteFn     func(ctx context.Context, raw []byte) error
	ClearAllFn            func(ctx context.Context) error
	SeedDefaultSubjectsFn func(ctx context.Context) (int, error)
	WipeFn                func(ctx context.Context) error

	FileName string
	Err      error
}

// Export mocks (*snapshot.Service).Export
func (m *MockSnapshotService) Export(ctx context.Context) (*snapshot.Snapshot, error) {
	if m.ExportFn != nil {
		return m.ExportFn(ctx)
	}
	return nil, m.Err
}

// ImportOverwrite mocks (*snapshot.Service).ImportOverwrite
func (m *MockSnapshotService) ImportOverwrite(ctx context.Context, raw []byte) error {
	if m.ImportOverwriteFn != nil {
		return m.ImportOverwriteFn(ctx, raw)
	}
	return m.Err
}

// ClearAll mocks (*snapshot.Service).ClearAll
func (m *MockSnapshotService) ClearAll(ctx context.Context) error {
	if m.ClearAllFn != nil {
		return m.ClearAllFn(ctx)
	}
	return m.Err
}

// SeedDefaultSubjects mocks (*snapshot.Service).SeedDefaultSubjects
func (m *MockSnapshotService) SeedDefaultSubjects(ctx context.Context) (int, error) {
	if m.SeedDefaultSubjectsFn != nil {
		return m.SeedDefaultSubjectsFn(ctx)
	}
	return 0, m.Err
}

// Wipe mocks (*snapshot.Service).Wipe
func (m *MockSnapshotService) Wipe(ctx context.Context) error {
	if m.WipeFn != nil {
		return m.WipeFn(ctx)
	}
	return m.Err
}

// ExportFileName mocks (*snapshot.Service).ExportFileName
func (m *MockSnapshotService) ExportFileName() string {
	if m.FileName == "" {
		return "study-sync.json"
	}
	return m.FileName
}
