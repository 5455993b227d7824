package services

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/db"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
)

// fakeTxRunner executes the transaction function directly. Mutations are
// buffered by fakeLedgerStore and applied only when the function succeeds,
// mirroring commit/rollback behavior.
type fakeTxRunner struct {
	store *fakeLedgerStore
}

func (r *fakeTxRunner) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	r.store.begin()
	if err := fn(ctx, nil); err != nil {
		r.store.rollback()
		return err
	}
	r.store.commit()
	return nil
}

// fakeLedgerStore is an in-memory ledger storage backend
type fakeLedgerStore struct {
	mu          sync.Mutex
	vacancies   map[int64]int
	assignments map[int64]*models.Assignment
	nextID      int64

	pendingVacancies   map[int64]int
	pendingAssignments map[int64]*models.Assignment
}

func newFakeLedgerStore(vacancies map[int64]int) *fakeLedgerStore {
	return &fakeLedgerStore{
		vacancies:   vacancies,
		assignments: make(map[int64]*models.Assignment),
		nextID:      1,
	}
}

func (f *fakeLedgerStore) begin() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingVacancies = make(map[int64]int, len(f.vacancies))
	for k, v := range f.vacancies {
		f.pendingVacancies[k] = v
	}
	f.pendingAssignments = make(map[int64]*models.Assignment, len(f.assignments))
	for k, v := range f.assignments {
		copied := *v
		f.pendingAssignments[k] = &copied
	}
}

func (f *fakeLedgerStore) commit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vacancies = f.pendingVacancies
	f.assignments = f.pendingAssignments
}

func (f *fakeLedgerStore) rollback() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingVacancies = nil
	f.pendingAssignments = nil
}

func (f *fakeLedgerStore) LockCourseVacancies(_ context.Context, _ pgx.Tx, courseID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.pendingVacancies[courseID]
	if !ok {
		return 0, apperrors.ErrCourseNotFound
	}
	return v, nil
}

func (f *fakeLedgerStore) HasActiveAssignment(_ context.Context, _ pgx.Tx, studentID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.pendingAssignments {
		if a.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedgerStore) Insert(_ context.Context, _ pgx.Tx, assignment *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment.ID = f.nextID
	f.nextID++
	copied := *assignment
	f.pendingAssignments[assignment.ID] = &copied
	return nil
}

func (f *fakeLedgerStore) AdjustVacancies(_ context.Context, _ pgx.Tx, courseID int64, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pendingVacancies[courseID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	f.pendingVacancies[courseID] += delta
	return nil
}

func (f *fakeLedgerStore) SetVacancies(_ context.Context, _ pgx.Tx, courseID int64, vacancies int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pendingVacancies[courseID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	f.pendingVacancies[courseID] = vacancies
	return nil
}

func (f *fakeLedgerStore) GetForUpdate(_ context.Context, _ pgx.Tx, id int64) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.pendingAssignments[id]
	if !ok {
		return nil, apperrors.ErrAssignmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeLedgerStore) Delete(_ context.Context, _ pgx.Tx, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pendingAssignments[id]; !ok {
		return apperrors.ErrAssignmentNotFound
	}
	delete(f.pendingAssignments, id)
	return nil
}

func (f *fakeLedgerStore) courseVacancies(courseID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vacancies[courseID]
}

func (f *fakeLedgerStore) assignmentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.assignments)
}

func newTestLedger(vacancies map[int64]int) (*LedgerService, *fakeLedgerStore) {
	store := newFakeLedgerStore(vacancies)
	runner := &fakeTxRunner{store: store}
	return NewLedgerService(runner, store, zerolog.Nop()), store
}

func TestLedgerCommitDecrementsVacancies(t *testing.T) {
	ledger, store := newTestLedger(map[int64]int{10: 2})

	assignment, err := ledger.Commit(context.Background(), 1, 10, models.AssignmentConfirmed)
	require.NoError(t, err)
	assert.NotZero(t, assignment.ID)
	assert.Equal(t, int64(1), assignment.StudentID)
	assert.Equal(t, 1, store.courseVacancies(10))
}

func TestLedgerCommitRejectsFullCourse(t *testing.T) {
	ledger, store := newTestLedger(map[int64]int{10: 1})

	_, err := ledger.Commit(context.Background(), 1, 10, models.AssignmentConfirmed)
	require.NoError(t, err)

	_, err = ledger.Commit(context.Background(), 2, 10, models.AssignmentConfirmed)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
	assert.Equal(t, 0, store.courseVacancies(10))
	assert.Equal(t, 1, store.assignmentCount())
}

func TestLedgerCommitRejectsSecondAssignment(t *testing.T) {
	ledger, store := newTestLedger(map[int64]int{10: 5, 20: 5})

	_, err := ledger.Commit(context.Background(), 1, 10, models.AssignmentConfirmed)
	require.NoError(t, err)

	_, err = ledger.Commit(context.Background(), 1, 20, models.AssignmentConfirmed)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyAssigned)

	// The rejected commit must leave the second course untouched
	assert.Equal(t, 5, store.courseVacancies(20))
	assert.Equal(t, 1, store.assignmentCount())
}

func TestLedgerCommitUnknownCourse(t *testing.T) {
	ledger, store := newTestLedger(map[int64]int{})

	_, err := ledger.Commit(context.Background(), 1, 99, models.AssignmentConfirmed)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	assert.Equal(t, 0, store.assignmentCount())
}

func TestLedgerRemoveRestoresVacancy(t *testing.T) {
	ledger, store := newTestLedger(map[int64]int{10: 1})

	assignment, err := ledger.Commit(context.Background(), 1, 10, models.AssignmentConfirmed)
	require.NoError(t, err)
	require.Equal(t, 0, store.courseVacancies(10))

	removed, err := ledger.Remove(context.Background(), assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, assignment.ID, removed.ID)
	assert.Equal(t, 1, store.courseVacancies(10))
	assert.Equal(t, 0, store.assignmentCount())

	// The freed seat can be taken again
	_, err = ledger.Commit(context.Background(), 2, 10, models.AssignmentConfirmed)
	assert.NoError(t, err)
}

func TestLedgerRemoveUnknownAssignment(t *testing.T) {
	ledger, _ := newTestLedger(map[int64]int{10: 1})

	_, err := ledger.Remove(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrAssignmentNotFound)
}

func TestLedgerSetCapacity(t *testing.T) {
	ledger, store := newTestLedger(map[int64]int{10: 2})

	require.NoError(t, ledger.SetCapacity(context.Background(), 10, 5))
	assert.Equal(t, 5, store.courseVacancies(10))
}

func TestLedgerSetCapacityRejectsNegative(t *testing.T) {
	ledger, store := newTestLedger(map[int64]int{10: 2})

	err := ledger.SetCapacity(context.Background(), 10, -1)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, 2, store.courseVacancies(10))
}

func TestLedgerSetCapacityUnknownCourse(t *testing.T) {
	ledger, _ := newTestLedger(map[int64]int{})

	err := ledger.SetCapacity(context.Background(), 99, 3)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestLedgerSetCapacityDoesNotLoseConcurrentCommits(t *testing.T) {
	// An edit racing a commit must not overwrite the commit's decrement:
	// both serialize on the ledger, so the final count reflects both.
	ledger, store := newTestLedger(map[int64]int{10: 2})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := ledger.Commit(context.Background(), 1, 10, models.AssignmentConfirmed)
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, ledger.SetCapacity(context.Background(), 10, 10))
	}()
	wg.Wait()

	// Either order leaves the commit accounted for: edit first gives
	// 10-1=9, commit first gives the absolute 10.
	final := store.courseVacancies(10)
	assert.Contains(t, []int{9, 10}, final)
	assert.Equal(t, 1, store.assignmentCount())
}

func TestLedgerConcurrentCommitsNeverOversell(t *testing.T) {
	const seats = 3
	const contenders = 20

	ledger, store := newTestLedger(map[int64]int{10: seats})

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Commit(context.Background(), int64(i+1), 10, models.AssignmentConfirmed)
		}(i)
	}
	wg.Wait()

	committed := 0
	for _, err := range errs {
		if err == nil {
			committed++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
		}
	}

	assert.Equal(t, seats, committed)
	assert.Equal(t, 0, store.courseVacancies(10))
	assert.Equal(t, seats, store.assignmentCount())
}
