package sfm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a named folder or file does not exist
	// under the managed base path.
	ErrNotFound = errors.New("not found")

	// ErrBaseMissing is returned by a backup pass whose base path is missing
	// or is not a directory. No walk is attempted.
	ErrBaseMissing = errors.New("base path does not exist")

	// ErrInvalidDate is returned when a date argument is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")

	// ErrInvalidName is returned when a file name is empty or would place
	// the file outside its folder.
	ErrInvalidName = errors.New("invalid file name")
)

// Failure records one item of a bulk operation that could not be
// processed. Bulk operations collect failures and keep going.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}
