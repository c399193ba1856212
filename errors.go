package jsc

import (
    "errors"
    "fmt"
)

// InvariantViolation is returned (wrapped with context) whenever a
// precondition fails: a null argument, an out-of-range sampling factor, a
// pass mode other than PASS_THRU, a missing quantization table, or a
// request for an unsupported feature such as
// context-row upsampling. It is always fatal: no operation in this package
// retries internally after raising it.
var InvariantViolation = errors.New("jsc: invariant violation")

// OutputBufferFull is the sentinel surfaced only by Compress's
// top level, when a caller-supplied write_scanlines equivalent reports
// fewer bytes written than requested. It is not raised as an error deep in
// the pipeline; suspension is how that is modeled (see Progress).
var OutputBufferFull = errors.New("jsc: output buffer full")

// invariant wraps InvariantViolation with a caller-supplied prefix and
// detail, matching the teacher's fmt.Errorf("%s: %v", prefix, err) idiom.
func invariant(where, format string, a ...interface{}) error {
    return fmt.Errorf("%s: %w (%s)", where, InvariantViolation, fmt.Sprintf(format, a...))
}

func forwardError(prefix string, err error) error {
    if err == nil {
        return nil
    }
    return fmt.Errorf("%s: %w", prefix, err)
}
