package mocks

import (
	"context"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/service/ingest"
)

// MockEntryService mocks the bulk and explicit entry paths of *ingest.Service.
type MockEntryService struct {
	ApplyFn  func(ctx context.Context, subjectID int64, text string, overwrite bool) (*ingest.Result, error)
	RecordFn func(ctx context.Context, req ingest.RecordRequest) (*domain.Review, error)

	Err error
}

// Apply mocks (*ingest.Service).Apply
func (m *MockEntryService) Apply(ctx context.Context, subjectID int64, text string, overwrite bool) (*ingest.Result, error) {
	if m.ApplyFn != nil {
		return m.ApplyFn(ctx, subjectID, text, overwrite)
	}
	return nil, m.Err
}

// Record mocks (*ingest.Service).Record
func (m *MockEntryService) Record(ctx context.Context, req ingest.RecordRequest) (*domain.Review, error) {
	if m.RecordFn != nil {
		return m.RecordFn(ctx, req)
	}
	return nil, m.Err
}
