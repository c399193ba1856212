package jsc

import (
    "errors"
    "testing"
)

func TestArenaTracksUsage(t *testing.T) {
    a := NewArena("img", 0)
    if _, err := a.GetSamples(16, 4); err != nil {
        t.Fatal(err)
    }
    if _, err := a.GetBlocks(6); err != nil {
        t.Fatal(err)
    }
    if _, err := a.GetFloats(64); err != nil {
        t.Fatal(err)
    }
    want := 16*4 + 6*64*2 + 64*4
    if a.Used() != want {
        t.Errorf("Used = %d, want %d", a.Used(), want)
    }
}

func TestArenaExhaustion(t *testing.T) {
    a := NewArena("tight", 100)
    if _, err := a.GetSamples(10, 10); err != nil {
        t.Fatal(err)
    }
    _, err := a.GetSamples(1, 1)
    if !errors.Is(err, InvariantViolation) {
        t.Errorf("got %v, want InvariantViolation on exhausted pool", err)
    }
}

func TestSampleArrayRows(t *testing.T) {
    a := NewArena("rows", 0)
    sa, err := a.GetSamples(8, 3)
    if err != nil {
        t.Fatal(err)
    }
    sa.Row(1)[7] = 0xAB
    if sa.Row(1)[7] != 0xAB || sa.Row(0)[7] != 0 || sa.Row(2)[7] != 0 {
        t.Error("row views overlap or do not alias the backing store")
    }
    if sa.Rows() != 3 || sa.Stride() != 8 {
        t.Errorf("geometry (%d,%d), want (3,8)", sa.Rows(), sa.Stride())
    }
}
