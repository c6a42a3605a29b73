package recognition

import (
	"errors"
	"fmt"
)

var errNoModel = errors.New("loader returned no model")

// ShapeMismatchError reports a tensor whose shape does not match what the
// classifier expects (stage "input") or produces (stage "output").
type ShapeMismatchError struct {
	Stage string
	Want  []int
	Got   []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s shape mismatch: want %v, got %v", e.Stage, e.Want, e.Got)
}

// LoadErrorKind classifies model load failures.
type LoadErrorKind string

const (
	KindFetch   LoadErrorKind = "fetch"   // transport or file access failure
	KindTimeout LoadErrorKind = "timeout" // fetch deadline exceeded
	KindStatus  LoadErrorKind = "status"  // non-200 HTTP response
	KindParse   LoadErrorKind = "parse"   // document could not be decoded or validated
)

// ModelLoadError is returned when a recognition model cannot be loaded.
type ModelLoadError struct {
	URI  string
	Kind LoadErrorKind
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model %s: %s: %v", e.URI, e.Kind, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// LoadKind extracts the failure kind from err, or "" when err is not a
// ModelLoadError.
func LoadKind(err error) LoadErrorKind {
	var le *ModelLoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
