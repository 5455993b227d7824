package models

import "time"

// Preference represents a student's ranked interest in one course.
// Ranks are positive, 1 is most preferred, and must be pairwise distinct
// among a student's active preferences (not necessarily contiguous).
// The highlighted flag is set by professors/administrators, never by the
// student, and is consumed only by the conflict detector.
type Preference struct {
	ID          int64     `json:"id" db:"id"`
	StudentID   int64     `json:"studentId" db:"student_id"`
	CourseID    int64     `json:"courseId" db:"course_id"`
	Rank        int       `json:"rank" db:"rank" example:"1"`
	Track       *Track    `json:"track,omitempty" db:"track"` // Optional declared track for this preference
	Highlighted bool      `json:"highlighted" db:"highlighted"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Course *Course `json:"course,omitempty"`
}
