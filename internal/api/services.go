package api

import (
	"context"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/service/ingest"
	"github.com/371050/study-pwa/internal/service/snapshot"
)

// EntryService records study entries. *ingest.Service implements it.
type EntryService interface {
	Apply(ctx context.Context, subjectID int64, text string, overwrite bool) (*ingest.Result, error)
	Record(ctx context.Context, req ingest.RecordRequest) (*domain.Review, error)
}

// SnapshotService exports, replaces and resets the ledger.
// *snapshot.Service implements it.
type SnapshotService interface {
	Export(ctx context.Context) (*snapshot.Snapshot, error)
	ImportOverwrite(ctx context.Context, raw []byte) error
	ClearAll(ctx context.Context) error
	SeedDefaultSubjects(ctx context.Context) (int, error)
	Wipe(ctx context.Context) error
	ExportFileName() string
}

var (
	_ EntryService    = (*ingest.Service)(nil)
	_ SnapshotService = (*snapshot.Service)(nil)
)
