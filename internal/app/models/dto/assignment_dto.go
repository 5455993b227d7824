package dto

import "time"

// AssignmentRequest is the admin payload for manually proposing or
// committing one student-course pairing
type AssignmentRequest struct {
	StudentID int64 `json:"studentId" binding:"required"`
	CourseID  int64 `json:"courseId" binding:"required"`
}

// ConflictItem is one other highlighted preference of the same student.
// The list is advisory; it never blocks a commit.
type ConflictItem struct {
	PreferenceID int64  `json:"preferenceId"`
	CourseID     int64  `json:"courseId"`
	CourseCode   string `json:"courseCode"`
	CourseTitle  string `json:"courseTitle"`
	Rank         int    `json:"rank"`
}

// ProposalResponse is returned by the manual assignment proposal endpoint
type ProposalResponse struct {
	StudentID int64          `json:"studentId"`
	CourseID  int64          `json:"courseId"`
	Conflicts []ConflictItem `json:"conflicts"`
}

// AssignmentDetails is one committed assignment with student and course
// context, as listed on the admin assignments page
type AssignmentDetails struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"studentId"`
	StudentUNI  string    `json:"studentUni"`
	StudentName *string   `json:"studentName,omitempty"`
	CourseID    int64     `json:"courseId"`
	CourseCode  string    `json:"courseCode"`
	CourseTitle string    `json:"courseTitle"`
	Instructor  string    `json:"instructor"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
