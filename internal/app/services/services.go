package services

// Services defined in this package:
// - AuthService: registration, login and token lifecycle
// - StudentService: student profile operations
// - CourseService: catalog CRUD and CSV import
// - PreferenceService: ranked preferences, reordering, highlights
// - LedgerService: serialized assignment commits and removals
// - MatchingService: batch matching runs
// - AssignmentService: manual assignment path and notifications
// - FeedbackService: instructor reviews of completed assignments
