package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkaradag/tamatch/internal/app/models"
	"github.com/dkaradag/tamatch/internal/pkg/apperrors"
)

// AssignmentRepository handles database operations for assignments. The
// check-then-mutate methods take a pgx.Tx because they only make sense
// inside one ledger transaction; plain reads go through the pool.
type AssignmentRepository struct {
	db *pgxpool.Pool
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{
		db: db,
	}
}

// LockCourseVacancies reads a course's remaining vacancies under FOR UPDATE,
// blocking concurrent ledger transactions on the same course row.
func (r *AssignmentRepository) LockCourseVacancies(ctx context.Context, tx pgx.Tx, courseID int64) (int, error) {
	var vacancies int
	err := tx.QueryRow(ctx,
		`SELECT vacancies FROM courses WHERE id = $1 FOR UPDATE`, courseID).Scan(&vacancies)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrCourseNotFound
		}
		return 0, fmt.Errorf("error locking course: %w", err)
	}
	return vacancies, nil
}

// HasActiveAssignment reports whether a student already holds an assignment
func (r *AssignmentRepository) HasActiveAssignment(ctx context.Context, tx pgx.Tx, studentID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM assignments WHERE student_id = $1)`, studentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking existing assignment: %w", err)
	}
	return exists, nil
}

// Insert creates an assignment row inside the ledger transaction
func (r *AssignmentRepository) Insert(ctx context.Context, tx pgx.Tx, assignment *models.Assignment) error {
	query := `
		INSERT INTO assignments (student_id, course_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		assignment.StudentID, assignment.CourseID, assignment.Status,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting assignment: %w", err)
	}

	return nil
}

// AdjustVacancies shifts a course's remaining vacancies by delta
func (r *AssignmentRepository) AdjustVacancies(ctx context.Context, tx pgx.Tx, courseID int64, delta int) error {
	cmdTag, err := tx.Exec(ctx,
		`UPDATE courses SET vacancies = vacancies + $1, updated_at = NOW() WHERE id = $2`, delta, courseID)
	if err != nil {
		return fmt.Errorf("error adjusting vacancies: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// SetVacancies writes an absolute vacancy count inside the ledger
// transaction. Used for admin capacity edits.
func (r *AssignmentRepository) SetVacancies(ctx context.Context, tx pgx.Tx, courseID int64, vacancies int) error {
	cmdTag, err := tx.Exec(ctx,
		`UPDATE courses SET vacancies = $1, updated_at = NOW() WHERE id = $2`, vacancies, courseID)
	if err != nil {
		return fmt.Errorf("error setting vacancies: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// GetForUpdate retrieves an assignment inside the ledger transaction,
// locking the row.
func (r *AssignmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*models.Assignment, error) {
	var assignment models.Assignment
	err := tx.QueryRow(ctx,
		`SELECT id, student_id, course_id, status, created_at, updated_at
		 FROM assignments WHERE id = $1 FOR UPDATE`, id).Scan(
		&assignment.ID,
		&assignment.StudentID,
		&assignment.CourseID,
		&assignment.Status,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("error retrieving assignment: %w", err)
	}
	return &assignment, nil
}

// Delete removes an assignment row inside the ledger transaction
func (r *AssignmentRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting assignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}

// AssignedStudentIDs lists students currently holding an assignment. The
// allocator excludes them from candidate building.
func (r *AssignmentRepository) AssignedStudentIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT student_id FROM assignments ORDER BY student_id`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving assigned students: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.QueryRow(ctx,
		`SELECT id, student_id, course_id, status, created_at, updated_at
		 FROM assignments WHERE id = $1`, id).Scan(
		&assignment.ID,
		&assignment.StudentID,
		&assignment.CourseID,
		&assignment.Status,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("error retrieving assignment: %w", err)
	}
	return &assignment, nil
}

// GetAllDetailed retrieves all assignments with student, user and course
// details attached.
func (r *AssignmentRepository) GetAllDetailed(ctx context.Context) ([]*models.Assignment, error) {
	query := `
		SELECT a.id, a.student_id, a.course_id, a.status, a.created_at, a.updated_at,
			sp.id, sp.user_id, sp.full_name,
			u.id, u.email, u.uni,
			c.id, c.code, c.title, c.instructor, c.instructor_email, c.vacancies
		FROM assignments a
		JOIN student_profiles sp ON sp.id = a.student_id
		JOIN users u ON u.id = sp.user_id
		JOIN courses c ON c.id = a.course_id
		ORDER BY a.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*models.Assignment
	for rows.Next() {
		var a models.Assignment
		var student models.Student
		var user models.User
		var course models.Course
		err := rows.Scan(
			&a.ID, &a.StudentID, &a.CourseID, &a.Status, &a.CreatedAt, &a.UpdatedAt,
			&student.ID, &student.UserID, &student.FullName,
			&user.ID, &user.Email, &user.UNI,
			&course.ID, &course.Code, &course.Title, &course.Instructor, &course.InstructorEmail, &course.Vacancies,
		)
		if err != nil {
			return nil, err
		}
		student.User = &user
		a.Student = &student
		a.Course = &course
		assignments = append(assignments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// GetByCourse retrieves all assignments for one course with student details
func (r *AssignmentRepository) GetByCourse(ctx context.Context, courseID int64) ([]*models.Assignment, error) {
	query := `
		SELECT a.id, a.student_id, a.course_id, a.status, a.created_at, a.updated_at,
			sp.id, sp.user_id, sp.full_name,
			u.id, u.email, u.uni
		FROM assignments a
		JOIN student_profiles sp ON sp.id = a.student_id
		JOIN users u ON u.id = sp.user_id
		WHERE a.course_id = $1
		ORDER BY a.id
	`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*models.Assignment
	for rows.Next() {
		var a models.Assignment
		var student models.Student
		var user models.User
		err := rows.Scan(
			&a.ID, &a.StudentID, &a.CourseID, &a.Status, &a.CreatedAt, &a.UpdatedAt,
			&student.ID, &student.UserID, &student.FullName,
			&user.ID, &user.Email, &user.UNI,
		)
		if err != nil {
			return nil, err
		}
		student.User = &user
		a.Student = &student
		assignments = append(assignments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}
