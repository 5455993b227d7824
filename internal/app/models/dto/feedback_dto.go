package dto

// SubmitFeedbackRequest is the instructor's review of one assignment.
// Resubmitting for the same assignment replaces the earlier review.
type SubmitFeedbackRequest struct {
	AssignmentID int64   `json:"assignmentId" binding:"required"`
	StudentID    int64   `json:"studentId" binding:"required"`
	CourseID     int64   `json:"courseId" binding:"required"`
	Rating       int     `json:"rating" binding:"required,min=1,max=5"`
	Comments     *string `json:"comments,omitempty"`
}

// FeedbackSummary aggregates the reviews of one course. AverageRating and
// NormalizedScore are omitted while the course has no reviews.
type FeedbackSummary struct {
	CourseID        int64    `json:"courseId"`
	AverageRating   *float64 `json:"averageRating,omitempty"`
	NormalizedScore *float64 `json:"normalizedScore,omitempty"` // 0-100 scale
	ReviewCount     int      `json:"reviewCount"`
	Comments        []string `json:"comments"`
}
