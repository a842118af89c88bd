package vault

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyName           = errors.New("please enter folder name")
	ErrAlreadyExists       = errors.New("folder already exists")
	ErrSourceMissing       = errors.New("source file does not exist")
	ErrDestinationConflict = errors.New("no free name in destination")
	ErrIO                  = errors.New("i/o error")
	ErrNotDirectory        = errors.New("destination is not a directory")
	ErrJobStarted          = errors.New("move job already started")
	ErrNoExportDir         = errors.New("export directory not configured")
)

// MoveError reports the file a batch stopped at
type MoveError struct {
	Source      string
	Destination string
	Err         error
}

func (e *MoveError) Error() string {
	if e.Destination == "" {
		return fmt.Sprintf("failed to move %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("failed to move %s to %s: %v", e.Source, e.Destination, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// PartialFailureError reports a delete that stopped part way
type PartialFailureError struct {
	Deleted int
	Path    string
	Err     error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("deleted %d entries, failed at %s: %v", e.Deleted, e.Path, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

func ioError(err error) error {
	return fmt.Errorf("%w: %w", ErrIO, err)
}
