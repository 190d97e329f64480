package kernel

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResult marks a boolean operation whose result contains no
// geometry, such as intersecting two disjoint solids. It is always
// wrapped in an *OpError.
var ErrEmptyResult = errors.New("empty result")

// ErrUnsupported marks an operation a backend cannot represent, such
// as filleting the result of a boolean in the reference backend.
var ErrUnsupported = errors.New("unsupported operation")

// OpError is a failed kernel operation. It carries the operation name
// and a description of each offending input so callers can report
// which shape broke.
type OpError struct {
	Op     string
	Inputs []string
	Err    error
}

func (e *OpError) Error() string {
	if len(e.Inputs) == 0 {
		return fmt.Sprintf("kernel %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("kernel %s(%s): %v", e.Op, strings.Join(e.Inputs, ", "), e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// opErr builds an *OpError, describing each input handle by kind.
func opErr(op string, err error, inputs ...Handle) *OpError {
	descr := make([]string, len(inputs))
	for i, h := range inputs {
		if h == nil {
			descr[i] = "<nil>"
			continue
		}
		descr[i] = h.Kind().String()
	}
	return &OpError{Op: op, Inputs: descr, Err: err}
}

// Errorf builds an *OpError with a formatted cause. Backends use it
// for failures that have no sentinel.
func Errorf(op string, inputs []Handle, format string, args ...any) *OpError {
	return opErr(op, fmt.Errorf(format, args...), inputs...)
}

// Wrap builds an *OpError around a sentinel or backend error.
func Wrap(op string, err error, inputs ...Handle) *OpError {
	return opErr(op, err, inputs...)
}
