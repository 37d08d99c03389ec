package snapshot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/events"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/service"
	"github.com/371050/study-pwa/internal/store"
)

// Service exports, imports and resets the ledger.
type Service struct {
	store  store.Store
	opts   service.Options
	logger *slog.Logger
}

// NewService creates a snapshot Service.
// It returns an error if the store is nil.
func NewService(st store.Store, logger *slog.Logger, opts ...service.Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("snapshot service: store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		opts:   service.NewOptions(opts...),
		logger: logger.With(slog.String("component", "snapshot_service")),
	}, nil
}

// ExportFileName returns the conventional file name for today's export,
// study-sync-YYYY-MM-DD.json.
func (s *Service) ExportFileName() string {
	return "study-sync-" + s.opts.Today() + ".json"
}

// Export reads every record in one transaction.
func (s *Service) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		SchemaVersion: SchemaVersion,
		ExportedAt:    Time{domain.Timestamp(s.opts.Now())},
		Subjects:      []Subject{},
		Units:         []Unit{},
		Reviews:       []Review{},
	}

	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		subjects, err := tx.Subjects().GetAll(ctx)
		if err != nil {
			return err
		}
		units, err := tx.Units().GetAll(ctx)
		if err != nil {
			return err
		}
		reviews, err := tx.Reviews().GetAll(ctx)
		if err != nil {
			return err
		}

		for _, v := range subjects {
			snap.Subjects = append(snap.Subjects, fromSubject(v))
		}
		for _, v := range units {
			snap.Units = append(snap.Units, fromUnit(v))
		}
		for _, v := range reviews {
			snap.Reviews = append(snap.Reviews, fromReview(v))
		}
		return nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to export snapshot",
			slog.String("error", err.Error()))
		return nil, service.NewServiceError("snapshot", "export", "failed to read ledger", err)
	}
	return snap, nil
}

// ImportOverwrite replaces the whole ledger with the snapshot in raw.
// A malformed document fails with domain.ErrFormat. Records keep their ids;
// a snapshot that breaks uniqueness or references fails with the store
// error. Either way the ledger is left as it was.
func (s *Service) ImportOverwrite(ctx context.Context, raw []byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	snap, err := Decode(raw)
	if err != nil {
		log.Warn("rejected snapshot", slog.String("error", err.Error()))
		return service.NewServiceError("snapshot", "import", "invalid snapshot", err)
	}

	now := s.opts.Now()
	err = s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := clearAll(ctx, tx); err != nil {
			return err
		}
		for _, v := range snap.Subjects {
			if err := tx.Subjects().Put(ctx, v.toDomain(now)); err != nil {
				return err
			}
		}
		for _, v := range snap.Units {
			if err := tx.Units().Put(ctx, v.toDomain(now)); err != nil {
				return err
			}
		}
		for _, v := range snap.Reviews {
			if err := tx.Reviews().Put(ctx, v.toDomain(now)); err != nil {
				return err
			}
		}
		return tx.ResetSequences(ctx)
	})
	if err != nil {
		log.Error("failed to import snapshot", slog.String("error", err.Error()))
		return service.NewServiceError("snapshot", "import", "failed to replace ledger", err)
	}

	log.Info("snapshot imported",
		slog.Int("subjects", len(snap.Subjects)),
		slog.Int("units", len(snap.Units)),
		slog.Int("reviews", len(snap.Reviews)))
	s.emit(ctx, events.SnapshotImported, map[string]int{
		"subjects": len(snap.Subjects),
		"units":    len(snap.Units),
		"reviews":  len(snap.Reviews),
	})
	return nil
}

// ClearAll removes every review, unit and subject.
func (s *Service) ClearAll(ctx context.Context) error {
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		return clearAll(ctx, tx)
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to clear ledger",
			slog.String("error", err.Error()))
		return service.NewServiceError("snapshot", "clear", "failed to clear ledger", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("ledger cleared")
	s.emit(ctx, events.SnapshotCleared, map[string]bool{"reseeded": false})
	return nil
}

// SeedDefaultSubjects inserts domain.DefaultSubjects when the ledger has no
// subjects and does nothing otherwise. It returns the number inserted.
func (s *Service) SeedDefaultSubjects(ctx context.Context) (int, error) {
	var seeded int
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		seeded, err = seedDefaults(ctx, tx, s.opts)
		return err
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to seed subjects",
			slog.String("error", err.Error()))
		return 0, service.NewServiceError("snapshot", "seed", "failed to seed default subjects", err)
	}
	if seeded > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Info("default subjects seeded", slog.Int("count", seeded))
		s.emit(ctx, events.SubjectsSeeded, map[string]int{"count": seeded})
	}
	return seeded, nil
}

// Wipe clears the ledger and seeds the default subjects in one transaction.
func (s *Service) Wipe(ctx context.Context) error {
	var seeded int
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := clearAll(ctx, tx); err != nil {
			return err
		}
		var err error
		seeded, err = seedDefaults(ctx, tx, s.opts)
		return err
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to wipe ledger",
			slog.String("error", err.Error()))
		return service.NewServiceError("snapshot", "wipe", "failed to wipe ledger", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("ledger wiped", slog.Int("seeded", seeded))
	s.emit(ctx, events.SnapshotCleared, map[string]bool{"reseeded": true})
	s.emit(ctx, events.SubjectsSeeded, map[string]int{"count": seeded})
	return nil
}

func clearAll(ctx context.Context, tx store.Tx) error {
	if err := tx.Reviews().Clear(ctx); err != nil {
		return err
	}
	if err := tx.Units().Clear(ctx); err != nil {
		return err
	}
	return tx.Subjects().Clear(ctx)
}

func seedDefaults(ctx context.Context, tx store.Tx, opts service.Options) (int, error) {
	existing, err := tx.Subjects().GetAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	now := opts.Now()
	for i, name := range domain.DefaultSubjects {
		subject, err := domain.NewSubject(name, i, now)
		if err != nil {
			return 0, err
		}
		if err := tx.Subjects().Insert(ctx, subject); err != nil {
			return 0, err
		}
	}
	return len(domain.DefaultSubjects), nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload any) {
	service.EmitEvent(ctx, s.opts.Emitter, logger.FromContextOrDefault(ctx, s.logger), eventType, payload)
}
