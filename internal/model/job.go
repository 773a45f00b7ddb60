package model

// Job statuses. A job is born pending, is claimed into processing, and ends
// either completed or failed. A retryable failure moves it back to pending
// with a later ScheduledAt.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Pipeline passes.
const (
	PassDraft   = 1
	PassImprove = 2
	PassVerify  = 3
)

// DefaultMaxRetries bounds how often a job is rescheduled before it is
// parked as failed for operator inspection.
const DefaultMaxRetries = 3

// RetryDelayMillis is how far into the future a retryable failure is pushed.
const RetryDelayMillis = 60 * 1000

// TranslationJob is one (entity, pass) unit of queued work.
type TranslationJob struct {
	ID          string
	Variant     Variant
	EntityID    string
	Pass        int
	Priority    int
	Status      string
	ScheduledAt int64
	StartAt     int64
	CompleteAt  int64
	Retries     int
	MaxRetries  int
	Error       string
	CreateAt    int64
}

// NewTranslationJob builds a pending job for the given entity and pass,
// scheduled at the supplied time. Priority follows the variant descriptor.
func NewTranslationJob(variant Variant, entityID string, pass int, scheduledAt int64) *TranslationJob {
	priority := PriorityDefault
	if d, err := Descriptor(variant); err == nil {
		priority = d.Priority
	}
	return &TranslationJob{
		ID:          NewID(),
		Variant:     variant,
		EntityID:    entityID,
		Pass:        pass,
		Priority:    priority,
		Status:      JobStatusPending,
		ScheduledAt: scheduledAt,
		MaxRetries:  DefaultMaxRetries,
		CreateAt:    Timestamp(),
	}
}

// RetriesExhausted reports whether another failure should park the job.
func (j *TranslationJob) RetriesExhausted() bool {
	return j.Retries >= j.MaxRetries
}

// JobStatusCount is one row of the queue summary, grouped by (pass, status).
type JobStatusCount struct {
	Pass   int
	Status string
	Count  int64
}

// VariantCoverage reports translation coverage for one content type.
type VariantCoverage struct {
	Variant  Variant
	Entities int64
	Records  int64
	Expected int64
	Quality  map[string]int64
}

// CoveragePercent is Records over Expected, or zero with no entities.
func (c *VariantCoverage) CoveragePercent() float64 {
	if c.Expected == 0 {
		return 0
	}
	return float64(c.Records) / float64(c.Expected) * 100
}

// StatusReport is the full operator-facing status snapshot.
type StatusReport struct {
	Variants []*VariantCoverage
	Jobs     []*JobStatusCount
}
