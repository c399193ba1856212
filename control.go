package jsc

import (
    "fmt"
    "io"
)

// Progress replaces the source's boolean suspension return with an
// explicit two-valued result (spec.md S9 redesign note), so call sites
// handle it exhaustively instead of having to remember that false means
// "come back later, not an error".
type Progress int

const (
    Done Progress = iota
    Suspended
)

// PassMode mirrors the source's single shared pass-mode state machine
// (spec.md S4.7): PassThru is the only mode this profile supports, and
// both entry points reject anything else at start-of-pass.
type PassMode int

const PassThru PassMode = 0

// Control threads verbosity and the one documented behavioral knob (the
// restart-interval formula, spec.md S9) through Compress/Decompress,
// the way the teacher threads its own control struct through Desc (see
// _examples/jrm-1535-jpeg/analyse.go's Control and jpeg.go's control).
type Control struct {
    // Mode must be PassThru (the zero value); any other mode fails
    // start-of-pass with InvariantViolation.
    Mode PassMode

    // Trace receives human-readable progress diagnostics, or nil for
    // silence. The teacher prints straight to stdout with fmt.Printf; here
    // that's parameterized as an io.Writer so tests and the CLI can both
    // point it somewhere sensible.
    Trace io.Writer

    // Verbose additionally appends a companion diagnostics comment to the
    // compressed stream (written by markers.go's writeSOI, deflated by its
    // deflateComment via klauspost/compress/zlib).
    Verbose bool

    // EncodeBufferSize caps the entropy encoder's working buffer in bytes.
    // Zero means the generous default in compress.go; small values force
    // the suspension path, which is how the resumability tests exercise
    // it.
    EncodeBufferSize int

    // CorrectedRestartFormula switches MCU_rows_in_scan (spec.md S6's
    // restart-interval derivation) from the source's image_width-based
    // formula (default, preserved for bitstream compatibility) to the
    // image_height-based formula spec.md S9 flags as likely the intended
    // one.
    CorrectedRestartFormula bool
}

func (c *Control) trace(format string, a ...interface{}) {
    if c == nil || c.Trace == nil {
        return
    }
    // Errors writing trace output are deliberately ignored: diagnostics
    // are best-effort and must never perturb the pipeline's control flow.
    _, _ = fmt.Fprintf(c.Trace, format, a...)
}
