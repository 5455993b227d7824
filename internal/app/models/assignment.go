package models

import "time"

// AssignmentStatus is the lifecycle status of an assignment. Batch runs
// commit pending assignments; manual commits by an admin or course owner
// are confirmed outright. Both consume a vacancy.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentConfirmed AssignmentStatus = "confirmed"
)

// Assignment binds one student to one course. At most one active assignment
// may exist per student, and an assignment may only be created while the
// course has remaining vacancies; both invariants are enforced by the
// assignment ledger at commit time.
type Assignment struct {
	ID        int64            `json:"id" db:"id"`
	StudentID int64            `json:"studentId" db:"student_id"`
	CourseID  int64            `json:"courseId" db:"course_id"`
	Status    AssignmentStatus `json:"status" db:"status" example:"confirmed"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time        `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Student *Student `json:"student,omitempty"`
	Course  *Course  `json:"course,omitempty"`
}
