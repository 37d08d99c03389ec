package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/events"
	"github.com/371050/study-pwa/internal/platform/logger"
	"github.com/371050/study-pwa/internal/service"
	"github.com/371050/study-pwa/internal/store"
)

// Outcome is what happened to one applied entry.
type Outcome string

const (
	// OutcomeRecorded means a review was inserted.
	OutcomeRecorded Outcome = "recorded"
	// OutcomeSkipped means the unit already had a review with the chosen
	// number or date, so nothing was inserted.
	OutcomeSkipped Outcome = "skipped"
)

// EntryResult reports the effect of one valid entry.
type EntryResult struct {
	Code     string  `json:"code"`
	UnitID   int64   `json:"unitId"`
	Created  bool    `json:"created"`
	Retitled bool    `json:"retitled"`
	Outcome  Outcome `json:"outcome"`
	ReviewID int64   `json:"reviewId,omitempty"`
	ReviewNo int     `json:"reviewNo,omitempty"`
}

// Result summarizes a bulk apply.
type Result struct {
	SubjectID int64         `json:"subjectId"`
	DoneDate  string        `json:"doneDate"`
	Entries   []EntryResult `json:"entries"`
	Invalid   []string      `json:"invalid"`
}

// Recorded returns the number of entries that produced a review.
func (r *Result) Recorded() int {
	return r.count(OutcomeRecorded)
}

// Skipped returns the number of entries whose insert hit a conflict.
func (r *Result) Skipped() int {
	return r.count(OutcomeSkipped)
}

func (r *Result) count(o Outcome) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == o {
			n++
		}
	}
	return n
}

// RecordRequest is one explicit review entry.
type RecordRequest struct {
	SubjectID int64
	UnitCode  string
	Title     string
	// ReviewNo is the number to record. Nil picks the next free number.
	ReviewNo  *int
	DoneDate  string
	Overwrite bool
}

// Service applies parsed entries to the ledger.
type Service struct {
	store  store.Store
	opts   service.Options
	logger *slog.Logger
}

// NewService creates an ingest Service.
// It returns an error if the store is nil.
func NewService(st store.Store, logger *slog.Logger, opts ...service.Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("ingest service: store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		opts:   service.NewOptions(opts...),
		logger: logger.With(slog.String("component", "ingest_service")),
	}, nil
}

// Apply parses text and, for every entry with a valid code, gets or creates
// the unit, applies the title policy and records a review dated today with
// the next number. Invalid codes are listed in Result.Invalid. A review
// already present for the number or date is reported as skipped; any other
// failure aborts the remaining entries.
func (s *Service) Apply(ctx context.Context, subjectID int64, text string, overwrite bool) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if subjectID <= 0 {
		return nil, service.NewServiceError("ingest", "apply", "invalid subject id", domain.ErrIDInvalid)
	}

	result := &Result{
		SubjectID: subjectID,
		DoneDate:  s.opts.Today(),
		Entries:   []EntryResult{},
		Invalid:   []string{},
	}

	for _, entry := range ParseEntries(text) {
		if !domain.ValidUnitCode(entry.Code) {
			result.Invalid = append(result.Invalid, entry.Code)
			continue
		}

		er, unit, err := s.prepareUnit(ctx, subjectID, entry, overwrite)
		if err != nil {
			log.Warn("failed to apply entry",
				slog.String("error", err.Error()),
				slog.Int64("subject_id", subjectID),
				slog.String("unit_code", entry.Code))
			return result, service.NewServiceError("ingest", "apply", "failed to prepare unit", err)
		}
		if er.Created {
			s.emit(ctx, events.UnitCreated, unit)
		}
		if er.Retitled {
			s.emit(ctx, events.UnitRetitled, unit)
		}

		review, err := s.insertNext(ctx, unit.ID, result.DoneDate)
		switch {
		case errors.Is(err, store.ErrDuplicate):
			er.Outcome = OutcomeSkipped
			log.Debug("entry already recorded",
				slog.Int64("unit_id", unit.ID),
				slog.String("done_date", result.DoneDate))
		case err != nil:
			log.Warn("failed to record entry",
				slog.String("error", err.Error()),
				slog.Int64("unit_id", unit.ID))
			return result, service.NewServiceError("ingest", "apply", "failed to record review", err)
		default:
			er.Outcome = OutcomeRecorded
			er.ReviewID = review.ID
			er.ReviewNo = review.ReviewNo
			s.emit(ctx, events.ReviewRecorded, review)
		}
		result.Entries = append(result.Entries, er)
	}

	log.Info("entries applied",
		slog.Int64("subject_id", subjectID),
		slog.Int("recorded", result.Recorded()),
		slog.Int("skipped", result.Skipped()),
		slog.Int("invalid", len(result.Invalid)))
	s.emit(ctx, events.EntriesApplied, map[string]any{
		"subjectId": subjectID,
		"doneDate":  result.DoneDate,
		"recorded":  result.Recorded(),
		"skipped":   result.Skipped(),
		"invalid":   len(result.Invalid),
	})
	return result, nil
}

// prepareUnit runs get-or-create and the title policy in one transaction,
// retrying once when another writer created the unit first.
func (s *Service) prepareUnit(
	ctx context.Context,
	subjectID int64,
	entry Entry,
	overwrite bool,
) (EntryResult, *domain.Unit, error) {
	er := EntryResult{Code: entry.Code}
	title := ""
	if entry.Title != nil {
		title = *entry.Title
	}

	var unit *domain.Unit
	attempt := func() error {
		return s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
			var err error
			unit, er.Created, err = service.GetOrCreateUnitTx(ctx, tx, subjectID, entry.Code, s.opts.Now())
			if err != nil {
				return err
			}
			er.Retitled, err = service.ApplyTitle(ctx, tx.Units(), unit, title, overwrite)
			return err
		})
	}

	err := attempt()
	if errors.Is(err, store.ErrUnitCodeExists) {
		err = attempt()
	}
	if err != nil {
		return er, nil, err
	}
	er.UnitID = unit.ID
	return er, unit, nil
}

// insertNext records a review with the unit's next number in its own
// transaction, so a conflict leaves earlier entries committed.
func (s *Service) insertNext(ctx context.Context, unitID int64, date string) (*domain.Review, error) {
	var review *domain.Review
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		no, err := service.NextReviewNo(ctx, tx.Reviews(), unitID)
		if err != nil {
			return err
		}
		review, err = domain.NewReview(unitID, no, date, s.opts.Now())
		if err != nil {
			return err
		}
		return tx.Reviews().Insert(ctx, review)
	})
	return review, err
}

// Record stores one explicit entry: it gets or creates the unit, applies
// the title policy and inserts a review. When req.ReviewNo is set it must
// be positive and unused, otherwise store.ErrReviewNoExists is returned.
// The whole entry commits or nothing does.
func (s *Service) Record(ctx context.Context, req RecordRequest) (*domain.Review, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	code := foldCode(strings.TrimSpace(req.UnitCode))
	title := norm.NFC.String(strings.TrimSpace(req.Title))

	switch {
	case req.SubjectID <= 0:
		return nil, service.NewServiceError("ingest", "record", "invalid subject id", domain.ErrIDInvalid)
	case !domain.ValidUnitCode(code):
		return nil, service.NewServiceError("ingest", "record", "invalid unit code", domain.ErrUnitCodeInvalid)
	case req.ReviewNo != nil && *req.ReviewNo <= 0:
		return nil, service.NewServiceError("ingest", "record", "invalid review number", domain.ErrReviewNoInvalid)
	}
	if _, err := domain.ParseDate(req.DoneDate); err != nil {
		return nil, service.NewServiceError("ingest", "record", "invalid done date", err)
	}

	var (
		unit     *domain.Unit
		review   *domain.Review
		created  bool
		retitled bool
	)
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		unit, created, err = service.GetOrCreateUnitTx(ctx, tx, req.SubjectID, code, s.opts.Now())
		if err != nil {
			return err
		}
		if retitled, err = service.ApplyTitle(ctx, tx.Units(), unit, title, req.Overwrite); err != nil {
			return err
		}

		var no int
		if req.ReviewNo != nil {
			no = *req.ReviewNo
			existing, err := tx.Reviews().ListByUnit(ctx, unit.ID)
			if err != nil {
				return err
			}
			for _, r := range existing {
				if r.ReviewNo == no {
					return store.ErrReviewNoExists
				}
			}
		} else if no, err = service.NextReviewNo(ctx, tx.Reviews(), unit.ID); err != nil {
			return err
		}

		review, err = domain.NewReview(unit.ID, no, req.DoneDate, s.opts.Now())
		if err != nil {
			return err
		}
		return tx.Reviews().Insert(ctx, review)
	})
	if err != nil {
		log.Warn("failed to record entry",
			slog.String("error", err.Error()),
			slog.Int64("subject_id", req.SubjectID),
			slog.String("unit_code", code),
			slog.String("done_date", req.DoneDate))
		return nil, service.NewServiceError("ingest", "record", "failed to record review", err)
	}

	log.Info("review recorded",
		slog.Int64("review_id", review.ID),
		slog.Int64("unit_id", unit.ID),
		slog.Int("review_no", review.ReviewNo))
	if created {
		s.emit(ctx, events.UnitCreated, unit)
	}
	if retitled {
		s.emit(ctx, events.UnitRetitled, unit)
	}
	s.emit(ctx, events.ReviewRecorded, review)
	return review, nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload any) {
	service.EmitEvent(ctx, s.opts.Emitter, logger.FromContextOrDefault(ctx, s.logger), eventType, payload)
}
