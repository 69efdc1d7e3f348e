package constants

const (
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusInProgress = "in_progress"
	StatusOK         = "ok"
	StatusCancelled  = "cancelled"
	StatusQueued     = "queued"
	StatusPartial    = "partial"
)
