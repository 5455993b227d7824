package services

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/db"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
)

// txRunner runs a function inside one database transaction
type txRunner interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// ledgerStore is the transactional storage surface the ledger mutates
// through. Implemented by repositories.AssignmentRepository.
type ledgerStore interface {
	LockCourseVacancies(ctx context.Context, tx pgx.Tx, courseID int64) (int, error)
	HasActiveAssignment(ctx context.Context, tx pgx.Tx, studentID int64) (bool, error)
	Insert(ctx context.Context, tx pgx.Tx, assignment *models.Assignment) error
	AdjustVacancies(ctx context.Context, tx pgx.Tx, courseID int64, delta int) error
	SetVacancies(ctx context.Context, tx pgx.Tx, courseID int64, vacancies int) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*models.Assignment, error)
	Delete(ctx context.Context, tx pgx.Tx, id int64) error
}

// assignmentLedger is the commit/remove surface other services depend on
type assignmentLedger interface {
	Commit(ctx context.Context, studentID, courseID int64, status models.AssignmentStatus) (*models.Assignment, error)
	Remove(ctx context.Context, assignmentID int64) (*models.Assignment, error)
}

// LedgerService is the single authority over assignment creation and
// removal, and the only writer of course vacancy counts. Every mutation
// runs under a process-wide mutex and a database transaction that locks
// the course row, so capacity checks, capacity edits and the
// one-assignment-per-student rule cannot race. Batch runs and manual
// commits go through the same path.
type LedgerService struct {
	mu     sync.Mutex
	db     txRunner
	store  ledgerStore
	logger zerolog.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(db txRunner, store ledgerStore, logger zerolog.Logger) *LedgerService {
	return &LedgerService{
		db:     db,
		store:  store,
		logger: logger,
	}
}

// Commit records a student-course assignment and decrements the course's
// remaining vacancies as one atomic unit. It fails with
// apperrors.ErrCapacityExceeded when the course is full and
// apperrors.ErrAlreadyAssigned when the student already holds an
// assignment; in both cases nothing is written.
func (s *LedgerService) Commit(ctx context.Context, studentID, courseID int64, status models.AssignmentStatus) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignment := &models.Assignment{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    status,
	}

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		vacancies, err := s.store.LockCourseVacancies(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if vacancies <= 0 {
			return apperrors.ErrCapacityExceeded
		}

		assigned, err := s.store.HasActiveAssignment(ctx, tx, studentID)
		if err != nil {
			return err
		}
		if assigned {
			return apperrors.ErrAlreadyAssigned
		}

		if err := s.store.Insert(ctx, tx, assignment); err != nil {
			return err
		}

		return s.store.AdjustVacancies(ctx, tx, courseID, -1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("assignmentId", assignment.ID).
		Int64("studentId", studentID).
		Int64("courseId", courseID).
		Str("status", string(status)).
		Msg("Assignment committed")

	return assignment, nil
}

// SetCapacity writes an absolute vacancy count for a course. Admin
// capacity edits come through here so they serialize with commits and
// removals instead of overwriting their adjustments.
func (s *LedgerService) SetCapacity(ctx context.Context, courseID int64, vacancies int) error {
	if vacancies < 0 {
		return apperrors.NewBadRequestError("vacancies cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.store.LockCourseVacancies(ctx, tx, courseID); err != nil {
			return err
		}
		return s.store.SetVacancies(ctx, tx, courseID, vacancies)
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Int64("courseId", courseID).
		Int("vacancies", vacancies).
		Msg("Course capacity set")

	return nil
}

// Remove deletes an assignment and restores the course's vacancy in the
// same transaction. Returns the removed assignment.
func (s *LedgerService) Remove(ctx context.Context, assignmentID int64) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed *models.Assignment
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		assignment, err := s.store.GetForUpdate(ctx, tx, assignmentID)
		if err != nil {
			return err
		}

		// Lock the course row before touching its vacancy count
		if _, err := s.store.LockCourseVacancies(ctx, tx, assignment.CourseID); err != nil {
			return err
		}

		if err := s.store.Delete(ctx, tx, assignmentID); err != nil {
			return err
		}

		if err := s.store.AdjustVacancies(ctx, tx, assignment.CourseID, 1); err != nil {
			return err
		}

		removed = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("assignmentId", removed.ID).
		Int64("studentId", removed.StudentID).
		Int64("courseId", removed.CourseID).
		Msg("Assignment removed, vacancy restored")

	return removed, nil
}
