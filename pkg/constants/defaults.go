package constants

// Revision retention and scheduler tuning
const (
	// RevisionRetentionCap is the maximum number of revisions kept per document.
	// Creating a newer revision deletes the oldest beyond this cap, always by
	// lowest version number.
	RevisionRetentionCap = 10

	// ScheduleCheckInterval is the scheduler polling interval in seconds
	ScheduleCheckInterval = 60

	// SessionDurationHours is how long a login session stays valid
	SessionDurationHours = 24
)
