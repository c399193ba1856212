package jsc

import (
    "bytes"
    "testing"
)

func TestHeaderParseRoundTrip(t *testing.T) {
    comps := DefaultComponents(YCbCr, 2, 2)
    quant := StandardQuantTables(80)
    sel := []int{0, 1, 1}

    var buf bytes.Buffer
    if err := writeSOI(&buf, &Control{}, ""); err != nil {
        t.Fatal(err)
    }
    if err := writeAPP0(&buf); err != nil {
        t.Fatal(err)
    }
    if err := writeDQT(&buf, comps, quant); err != nil {
        t.Fatal(err)
    }
    if err := writeSOF0(&buf, 100, 60, YCbCr, comps); err != nil {
        t.Fatal(err)
    }
    if err := writeDHT(&buf, false); err != nil {
        t.Fatal(err)
    }
    if err := writeDRI(&buf, 21); err != nil {
        t.Fatal(err)
    }
    if err := writeSOSHeader(&buf, comps, sel); err != nil {
        t.Fatal(err)
    }
    // Scan payload with a stuffed 0xFF and one restart marker.
    buf.Write([]byte{0x12, 0xFF, 0x00, 0x34})
    putMarker(&buf, mRST0)
    buf.Write([]byte{0x56})
    putMarker(&buf, mEOI)

    fh, restarts, err := Parse(buf.Bytes())
    if err != nil {
        t.Fatal(err)
    }

    if !fh.SawJSCComment {
        t.Error("JSC comment not recognized")
    }
    if fh.Width != 100 || fh.Height != 60 {
        t.Errorf("frame %dx%d, want 100x60", fh.Width, fh.Height)
    }
    if fh.ColorSpace != YCbCr {
        t.Errorf("color space %v, want YCbCr", fh.ColorSpace)
    }
    if fh.RestartInterval != 21 {
        t.Errorf("restart interval %d, want 21", fh.RestartInterval)
    }
    if len(fh.Components) != 3 {
        t.Fatalf("parsed %d components", len(fh.Components))
    }
    for i, c := range fh.Components {
        if c.H != comps[i].H || c.V != comps[i].V || c.QuantTableSlot != comps[i].QuantTableSlot {
            t.Errorf("component %d = %+v, want %+v", i, c, comps[i])
        }
        if !c.Needed {
            t.Errorf("component %d not marked needed on decode", i)
        }
    }
    for slot := 0; slot < 2; slot++ {
        if fh.QuantTables[slot] == nil {
            t.Fatalf("quant table %d missing", slot)
        }
        if *fh.QuantTables[slot] != *quant[slot] {
            t.Errorf("quant table %d does not round-trip", slot)
        }
    }
    if want := []byte{0x12, 0xFF, 0x34, 0x56}; !bytes.Equal(fh.ScanData, want) {
        t.Errorf("scan data %x, want %x", fh.ScanData, want)
    }
    if len(restarts) != 1 || restarts[0] != 3 {
        t.Errorf("restart offsets %v, want [3]", restarts)
    }
    if got, want := fh.ScanBlockSel, sel; len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 1 {
        t.Errorf("scan table selectors %v, want %v", got, want)
    }
}

func TestSOF0RGBComponentIDs(t *testing.T) {
    comps := DefaultComponents(RGB, 1, 1)
    var buf bytes.Buffer
    putMarker(&buf, mSOI)
    if err := writeSOF0(&buf, 8, 8, RGB, comps); err != nil {
        t.Fatal(err)
    }
    putMarker(&buf, mEOI)

    fh, _, err := Parse(buf.Bytes())
    if err != nil {
        t.Fatal(err)
    }
    if fh.ColorSpace != RGB {
        t.Errorf("color space %v, want RGB (ids R,G,B)", fh.ColorSpace)
    }
}

func TestParseRejectsGarbage(t *testing.T) {
    tests := []struct {
        name string
        data []byte
    }{
        {"empty", nil},
        {"no SOI", []byte{0x00, 0x01, 0x02, 0x03}},
        {"truncated segment", []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x10, 0x00}},
        {"no EOI", []byte{0xFF, 0xD8, 0xFF, 0xFE, 0x00, 0x03, 0x41}},
    }
    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            if _, _, err := Parse(tc.data); err == nil {
                t.Error("expected parse error")
            }
        })
    }
}

// The restart-interval derivation keeps the source's width-based formula
// by default and switches to the height-based one when corrected.
func TestRestartInRowsFormula(t *testing.T) {
    // 128 wide, 256 tall, maxV 1: 256/64 = 4 restart sections.
    if got := RestartInRows(128, 256, 1, false); got != 4 {
        t.Errorf("width-based = %d, want ceil(16/4) = 4", got)
    }
    if got := RestartInRows(128, 256, 1, true); got != 8 {
        t.Errorf("height-based = %d, want ceil(32/4) = 8", got)
    }
    // Images under 64 rows have no restart sections at all.
    if got := RestartInRows(512, 48, 1, false); got != 0 {
        t.Errorf("short image = %d, want 0", got)
    }
}

func TestDeflateCommentRoundTrip(t *testing.T) {
    s := "jsc compress: YCbCr image, 640x480"
    blob, err := deflateComment(s)
    if err != nil {
        t.Fatal(err)
    }
    back, err := inflateComment(blob)
    if err != nil {
        t.Fatal(err)
    }
    if back != s {
        t.Errorf("round trip %q, want %q", back, s)
    }
}
