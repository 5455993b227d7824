package dto

// MatchRequest optionally overrides the configured scoring weights for a
// single run. Omitted weights fall back to configuration.
type MatchRequest struct {
	RankWeight    *float64 `json:"rankWeight" binding:"omitempty,gt=0"`
	TrackWeight   *float64 `json:"trackWeight" binding:"omitempty,gt=0"`
	ProfileWeight *float64 `json:"profileWeight" binding:"omitempty,gt=0"`
}

// MatchAssignment is one pairing committed during a batch run
type MatchAssignment struct {
	AssignmentID int64   `json:"assignmentId"`
	StudentID    int64   `json:"studentId"`
	StudentUNI   string  `json:"studentUni"`
	CourseID     int64   `json:"courseId"`
	CourseCode   string  `json:"courseCode"`
	Rank         int     `json:"rank"`
	Score        float64 `json:"score"`
}

// MatchIssue is one malformed snapshot record the run skipped over
type MatchIssue struct {
	PreferenceID int64  `json:"preferenceId,omitempty"`
	StudentID    int64  `json:"studentId,omitempty"`
	CourseID     int64  `json:"courseId,omitempty"`
	Reason       string `json:"reason"`
}

// MatchResult summarizes one batch matching run
type MatchResult struct {
	RunID       string            `json:"runId"`
	Assignments []MatchAssignment `json:"assignments"`
	Skipped     []int64           `json:"skippedStudentIds"`
	Issues      []MatchIssue      `json:"issues,omitempty"`
}

// EmailRecipient is one addressee of a notification draft
type EmailRecipient struct {
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
}

// EmailPayload is a composed notification for one committed assignment.
// Delivery is out of scope; callers hand the payload to whatever mailer
// the deployment uses.
type EmailPayload struct {
	To      []EmailRecipient `json:"to"`
	Cc      []EmailRecipient `json:"cc,omitempty"`
	Subject string           `json:"subject"`
	Body    string           `json:"body"`
}
