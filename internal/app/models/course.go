package models

import "time"

// Course represents a course offering assistant positions.
// Vacancies is the number of remaining open slots; it is decremented on
// each confirmed assignment and incremented when an assignment is removed.
// Only the assignment ledger may mutate it.
type Course struct {
	ID              int64     `json:"id" db:"id"`
	Code            string    `json:"code" db:"code" example:"IEOR4004"`
	Title           string    `json:"title" db:"title" example:"Optimization Models and Methods"`
	Instructor      *string   `json:"instructor,omitempty" db:"instructor"`
	InstructorEmail *string   `json:"instructorEmail,omitempty" db:"instructor_email"`
	ProfessorID     *int64    `json:"professorId,omitempty" db:"professor_id"` // Owning professor account (nullable)
	Track           *Track    `json:"track,omitempty" db:"track"`
	Vacancies       int       `json:"vacancies" db:"vacancies"`
	GradeThreshold  *string   `json:"gradeThreshold,omitempty" db:"grade_threshold"`
	SimilarCourses  *string   `json:"similarCourses,omitempty" db:"similar_courses"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}
