package models

import "time"

// Feedback is an instructor's review of one completed assignment. Each
// assignment carries at most one feedback row; resubmitting replaces the
// earlier rating and comments.
type Feedback struct {
	ID           int64     `json:"id" db:"id"`
	AssignmentID int64     `json:"assignmentId" db:"assignment_id"`
	StudentID    int64     `json:"studentId" db:"student_id"`
	CourseID     int64     `json:"courseId" db:"course_id"`
	Rating       int       `json:"rating" db:"rating" example:"4"` // 1 (poor) to 5 (excellent)
	Comments     *string   `json:"comments,omitempty" db:"comments"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
