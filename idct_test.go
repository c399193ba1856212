package jsc

import (
    "errors"
    "testing"
)

func TestMultiplierTable(t *testing.T) {
    quant := StandardQuantTables(75)
    comps := []Component{{Index: 0, H: 1, V: 1, QuantTableSlot: 0, Needed: true}}
    m, err := NewInverseDCTManager(NewArena("test", 0), comps, quant)
    if err != nil {
        t.Fatal(err)
    }

    if !m.HasTable(0) {
        t.Fatal("component 0 should have a multiplier table")
    }
    qt := quant[0]
    for k := 0; k < 64; k++ {
        row, col := k/8, k%8
        want := float32(qt[k]) * aan[row] * aan[col] * 0.125
        if m.multiplier[0][k] != want {
            t.Errorf("multiplier[%d] = %v, want %v", k, m.multiplier[0][k], want)
        }
    }
}

// A component without a saved quantization table decodes to neutral gray,
// whatever the coefficients say.
func TestInverseDCTNeutralGrayFallback(t *testing.T) {
    var quant [NumQuantTables]*QuantTable // slot 3 never filled
    comps := []Component{{Index: 0, H: 1, V: 1, QuantTableSlot: 3, Needed: true}}
    m, err := NewInverseDCTManager(NewArena("test", 0), comps, quant)
    if err != nil {
        t.Fatal(err)
    }

    if m.HasTable(0) {
        t.Fatal("component 0 should have no table")
    }
    blk := Block{0: 999, 5: -123}
    var out [8][8]uint8
    m.InverseDCT(0, &blk, &out)
    for y := range out {
        for x := range out[y] {
            if out[y][x] != 128 {
                t.Fatalf("pixel (%d,%d) = %d, want neutral 128", y, x, out[y][x])
            }
        }
    }
}

// Quantize-dequantize through the two managers: the reconstruction of a
// block stays within half a quantization step per coefficient, seen here
// as a tight pixel error at quality 100.
func TestFDCTIDCTManagersRoundTrip(t *testing.T) {
    quant := StandardQuantTables(100)
    comps := []Component{{Index: 0, H: 1, V: 1, QuantTableSlot: 0}}
    g, err := NewFrameGeometry(8, 8, comps)
    if err != nil {
        t.Fatal(err)
    }
    arena := NewArena("test", 0)
    fdct, err := NewForwardDCTManager(arena, g, comps, quant)
    if err != nil {
        t.Fatal(err)
    }
    decodeComps := []Component{{Index: 0, H: 1, V: 1, QuantTableSlot: 0, Needed: true}}
    idct, err := NewInverseDCTManager(arena, decodeComps, quant)
    if err != nil {
        t.Fatal(err)
    }

    sa, err := arena.GetSamples(8, 8)
    if err != nil {
        t.Fatal(err)
    }
    for r := 0; r < 8; r++ {
        row := sa.Row(r)
        for x := range row {
            row[x] = byte(30 + 20*r + x)
        }
    }

    blocks := make([]Block, 1)
    fdct.ForwardDCT(0, sa, 0, 0, 1, blocks)

    var out [8][8]uint8
    idct.InverseDCT(0, &blocks[0], &out)

    for y := 0; y < 8; y++ {
        for x := 0; x < 8; x++ {
            d := int(out[y][x]) - int(sa.Row(y)[x])
            if d < -1 || d > 1 {
                t.Errorf("pixel (%d,%d): got %d, want %d within 1", y, x, out[y][x], sa.Row(y)[x])
            }
        }
    }
}

func TestUpsamplerRejectsContextRows(t *testing.T) {
    comps := DefaultComponents(YCbCr, 2, 2)
    g, err := NewFrameGeometry(32, 32, comps)
    if err != nil {
        t.Fatal(err)
    }
    if _, err := NewUpsampler(g, comps, true); !errors.Is(err, InvariantViolation) {
        t.Errorf("got %v, want InvariantViolation for context rows", err)
    }
}
