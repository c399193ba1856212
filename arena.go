package jsc

import "fmt"

// Arena is a bump allocator standing in for the source's get_mem/get_sarray
// pool API (spec.md S6/S9). Each GetXxx call hands out a freshly made,
// typed Go slice and charges its size to the arena; there is no free list
// and no per-block deallocation. A memory-safe target replaces the opaque
// pointers the original returns with typed handles into typed sub-arenas --
// here that is just "return the already-typed Go slice", since Go slices
// already carry length and element type. The arena does not check when it
// is called; Used() is the total charged so far.
type Arena struct {
    name     string
    used     int
    reserved int
}

// NewArena creates a pool that tracks up to reserved bytes of logical
// allocation (sample arrays, block arrays, divisor tables). It does not
// itself hold a byte slice -- each GetXxx call below allocates a normal Go
// slice of the right element type and counts its size against the budget,
// which is what the original's "one pool per image" contract models. A
// reserved of 0 means no limit is enforced.
func NewArena(name string, reserved int) *Arena {
    return &Arena{name: name, reserved: reserved}
}

func (a *Arena) charge(where string, n int) error {
    if a.reserved > 0 && a.used+n > a.reserved {
        return invariant(where, "arena %q exhausted: used %d + %d > reserved %d",
            a.name, a.used, n, a.reserved)
    }
    a.used += n
    return nil
}

// Used reports the logical high-water mark, for callers that want to size
// a real pool ahead of time (spec.md S6's "working memory usage" inspection
// on OutputBufferFull).
func (a *Arena) Used() int { return a.used }

// GetSamples returns a SampleArray of the given width and height, charged
// against the arena. This replaces get_sarray's JSAMPARRAY: instead of a
// pointer to an array of row pointers, callers get a (base, stride, rows)
// triple (spec.md S9 redesign note).
func (a *Arena) GetSamples(width, height int) (SampleArray, error) {
    if width <= 0 || height <= 0 {
        return SampleArray{}, invariant("Arena.GetSamples", "bad dimensions %dx%d", width, height)
    }
    if err := a.charge("Arena.GetSamples", width*height); err != nil {
        return SampleArray{}, err
    }
    return SampleArray{base: make([]byte, width*height), stride: width, rows: height}, nil
}

// GetBlocks returns n zeroed 8x8 coefficient blocks, charged against the
// arena. This replaces get_mem for the MCU buffer and per-component block
// rows.
func (a *Arena) GetBlocks(n int) ([]Block, error) {
    if n < 0 {
        return nil, invariant("Arena.GetBlocks", "negative count %d", n)
    }
    if err := a.charge("Arena.GetBlocks", n*64*2); err != nil {
        return nil, err
    }
    return make([]Block, n), nil
}

// GetFloats returns a zeroed float32 table of n entries (divisor and
// multiplier tables are always 64 entries, one per component).
func (a *Arena) GetFloats(n int) ([]float32, error) {
    if err := a.charge("Arena.GetFloats", n*4); err != nil {
        return nil, err
    }
    return make([]float32, n), nil
}

func (a *Arena) String() string {
    return fmt.Sprintf("Arena(%s): %d/%d bytes", a.name, a.used, a.reserved)
}

// SampleArray is a (base, stride, rows) triple standing in for JSAMPARRAY.
// Row r, column c is base[r*stride+c]. Ownership is the Arena's for the
// lifetime of the pass; SampleArray itself is a thin, copyable view.
type SampleArray struct {
    base   []byte
    stride int
    rows   int
}

func (s SampleArray) Row(r int) []byte {
    return s.base[r*s.stride : (r+1)*s.stride]
}

func (s SampleArray) Rows() int   { return s.rows }
func (s SampleArray) Stride() int { return s.stride }
