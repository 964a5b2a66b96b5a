package sfm

import "time"

// Pass statuses.
const (
	PassSuccess = "success" // every file copied or already present
	PassPartial = "partial" // some files failed
	PassFailed  = "failed"  // the pass itself failed
)

// Pass triggers.
const (
	TriggerManual  = "manual"
	TriggerStartup = "startup"
	TriggerWatch   = "watch"
)

// PassRecord is the persisted summary of one backup pass.
type PassRecord struct {
	ID         string
	BasePath   string
	BackupRoot string
	Trigger    string
	StartedAt  time.Time
	FinishedAt time.Time
	Copied     int
	Skipped    int
	Failed     int
	Status     string
	Message    string
}

// PassHistory stores backup pass records.
type PassHistory interface {
	// RecordPass persists a finished pass.
	RecordPass(rec *PassRecord) error

	// ListPasses returns up to limit passes, newest first.
	ListPasses(limit int) ([]*PassRecord, error)
}

// newPassRecord summarizes a pass result. result may be nil when the pass
// failed before walking.
func newPassRecord(id, basePath, trigger string, result *BackupResult, passErr error, now time.Time) *PassRecord {
	rec := &PassRecord{
		ID:         id,
		BasePath:   basePath,
		Trigger:    trigger,
		StartedAt:  now,
		FinishedAt: now,
		Status:     PassSuccess,
	}
	if result != nil {
		rec.BasePath = result.BasePath
		rec.BackupRoot = result.Root
		rec.StartedAt = result.StartedAt
		rec.FinishedAt = result.FinishedAt
		rec.Copied = len(result.Copied)
		rec.Skipped = result.Skipped
		rec.Failed = len(result.Failed)
		if rec.Failed > 0 {
			rec.Status = PassPartial
		}
	}
	if passErr != nil {
		rec.Status = PassFailed
		rec.Message = passErr.Error()
	}
	return rec
}
