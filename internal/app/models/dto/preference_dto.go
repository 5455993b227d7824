package dto

// CreatePreferenceRequest is the payload for adding one course preference
type CreatePreferenceRequest struct {
	CourseID int64   `json:"courseId" binding:"required"`
	Rank     int     `json:"rank" binding:"required,min=1"`
	Track    *string `json:"track"`
	Notes    *string `json:"notes"`
}

// ReorderPreferencesRequest renumbers a student's preferences: the listed
// preference IDs receive ranks 1..n in order. Every active preference of
// the student must appear exactly once.
type ReorderPreferencesRequest struct {
	OrderedIDs []int64 `json:"orderedIds" binding:"required,min=1"`
}

// PreferenceResponse is one preference with its course attached
type PreferenceResponse struct {
	ID          int64   `json:"id"`
	CourseID    int64   `json:"courseId"`
	CourseCode  string  `json:"courseCode"`
	CourseTitle string  `json:"courseTitle"`
	Rank        int     `json:"rank"`
	Track       *string `json:"track,omitempty"`
	Highlighted bool    `json:"highlighted"`
	Notes       *string `json:"notes,omitempty"`
}

// CourseApplication is one application row on the professor's view of a course
type CourseApplication struct {
	PreferenceID int64   `json:"preferenceId"`
	StudentID    int64   `json:"studentId"`
	StudentUNI   string  `json:"studentUni"`
	StudentEmail string  `json:"studentEmail"`
	StudentName  *string `json:"studentName,omitempty"`
	Rank         int     `json:"rank"`
	Highlighted  bool    `json:"highlighted"`
	Notes        *string `json:"notes,omitempty"`
	IsAssigned   bool    `json:"isAssigned"`
}
