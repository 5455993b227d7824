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

// StudentRepository handles database operations for student profiles
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
	}
}

const studentColumns = `id, user_id, full_name, degree_program, level_of_study, interests,
	resume_path, transcript_path, photo_url, created_at, updated_at`

func scanStudent(row pgx.Row) (*models.Student, error) {
	var student models.Student
	var interests []string
	err := row.Scan(
		&student.ID,
		&student.UserID,
		&student.FullName,
		&student.DegreeProgram,
		&student.LevelOfStudy,
		&interests,
		&student.ResumePath,
		&student.TranscriptPath,
		&student.PhotoURL,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	student.Interests = make([]models.Track, 0, len(interests))
	for _, i := range interests {
		student.Interests = append(student.Interests, models.Track(i))
	}
	return &student, nil
}

func interestsToStrings(interests []models.Track) []string {
	out := make([]string, 0, len(interests))
	for _, t := range interests {
		out = append(out, string(t))
	}
	return out
}

// Upsert creates the profile for a user or updates it if it already exists
func (r *StudentRepository) Upsert(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO student_profiles
			(user_id, full_name, degree_program, level_of_study, interests, resume_path, transcript_path, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			degree_program = EXCLUDED.degree_program,
			level_of_study = EXCLUDED.level_of_study,
			interests = EXCLUDED.interests,
			resume_path = EXCLUDED.resume_path,
			transcript_path = EXCLUDED.transcript_path,
			photo_url = EXCLUDED.photo_url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		student.UserID,
		student.FullName,
		student.DegreeProgram,
		student.LevelOfStudy,
		interestsToStrings(student.Interests),
		student.ResumePath,
		student.TranscriptPath,
		student.PhotoURL,
	).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting student profile: %w", err)
	}

	return nil
}

// GetByUserID retrieves the profile belonging to a user account
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM student_profiles WHERE user_id = $1`

	student, err := scanStudent(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("error retrieving student profile: %w", err)
	}
	return student, nil
}

// GetByID retrieves a student profile by its own ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM student_profiles WHERE id = $1`

	student, err := scanStudent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student profile: %w", err)
	}
	return student, nil
}

// GetAllActive retrieves profiles of all active student accounts with the
// owning user attached. This is the student side of a match snapshot.
func (r *StudentRepository) GetAllActive(ctx context.Context) ([]*models.Student, error) {
	query := `
		SELECT sp.id, sp.user_id, sp.full_name, sp.degree_program, sp.level_of_study, sp.interests,
			sp.resume_path, sp.transcript_path, sp.photo_url, sp.created_at, sp.updated_at,
			u.id, u.email, u.uni
		FROM student_profiles sp
		JOIN users u ON u.id = sp.user_id
		WHERE u.is_active
		ORDER BY sp.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student profiles: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		var student models.Student
		var user models.User
		var interests []string
		err := rows.Scan(
			&student.ID, &student.UserID, &student.FullName, &student.DegreeProgram,
			&student.LevelOfStudy, &interests, &student.ResumePath, &student.TranscriptPath,
			&student.PhotoURL, &student.CreatedAt, &student.UpdatedAt,
			&user.ID, &user.Email, &user.UNI,
		)
		if err != nil {
			return nil, err
		}
		student.Interests = make([]models.Track, 0, len(interests))
		for _, i := range interests {
			student.Interests = append(student.Interests, models.Track(i))
		}
		student.User = &user
		students = append(students, &student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

// Search finds active students whose UNI or email contains the query,
// case-insensitively. Results are capped so typeahead lookups stay cheap.
func (r *StudentRepository) Search(ctx context.Context, query string) ([]*models.Student, error) {
	const sql = `
		SELECT sp.id, sp.user_id, sp.full_name,
			u.id, u.email, u.uni
		FROM student_profiles sp
		JOIN users u ON u.id = sp.user_id
		WHERE u.is_active
			AND u.role_type = 'STUDENT'
			AND (u.uni ILIKE '%' || $1 || '%' OR u.email ILIKE '%' || $1 || '%')
		ORDER BY u.uni
		LIMIT 20
	`

	rows, err := r.db.Query(ctx, sql, query)
	if err != nil {
		return nil, fmt.Errorf("error searching students: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		var student models.Student
		var user models.User
		err := rows.Scan(
			&student.ID, &student.UserID, &student.FullName,
			&user.ID, &user.Email, &user.UNI,
		)
		if err != nil {
			return nil, err
		}
		student.User = &user
		students = append(students, &student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

// GetDetails retrieves a student with the owning user attached
func (r *StudentRepository) GetDetails(ctx context.Context, id int64) (*models.Student, error) {
	student, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = r.db.QueryRow(ctx,
		`SELECT id, email, uni, role_type, is_active FROM users WHERE id = $1`,
		student.UserID,
	).Scan(&user.ID, &user.Email, &user.UNI, &user.RoleType, &user.IsActive)
	if err == nil {
		student.User = &user
	}

	return student, nil
}
