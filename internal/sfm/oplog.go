package sfm

// Operation kinds written to the operation log.
const (
	OpCreated       = "created"
	OpFolderDeleted = "folder_deleted"
	OpDeleteByDate  = "delete_by_date"
	opHashPrefix    = "hash_generated:"
)

// HashOperation returns the operation kind recorded for a computed hash.
func HashOperation(hexDigest string) string {
	return opHashPrefix + hexDigest
}

// LogEntry is one record of the operation log.
type LogEntry struct {
	File      string `json:"file"`
	Operation string `json:"operation"`
	Timestamp string `json:"timestamp"`
}

// OperationLog persists a record of user-visible operations.
type OperationLog interface {
	// Record appends an entry for subject with the current time.
	Record(subject, operation string) error

	// Entries returns every recorded entry in append order.
	Entries() ([]LogEntry, error)
}
