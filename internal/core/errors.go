package core

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrEmptySheet     = errors.New("sheet has no header row")
	ErrMissingSheet   = errors.New("sheet not found in workbook")
)

// Processing stages reported by ProcessingError.
const (
	StageRead      = "read"
	StageNormalize = "normalize"
	StageBuild     = "build"
	StageEncode    = "encode"
	StageWrite     = "write"
	StageImport    = "import"
)

// SourceNotFoundError reports an input dataset that does not resolve.
type SourceNotFoundError struct {
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source %q not found: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("source %q not found", e.Path)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }

// ProcessingError wraps any other failure of the transform.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing failed at %s: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// IsSourceNotFound reports whether err carries a SourceNotFoundError.
func IsSourceNotFound(err error) bool {
	var nf *SourceNotFoundError
	return errors.As(err, &nf)
}
