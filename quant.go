package jsc

// stdLuminanceQT and stdChrominanceQT are the baseline quality-50 tables
// from the JPEG standard's informative annex, in natural (row-major)
// order. spec.md S1 calls quality->quantization-table derivation an
// external collaborator ("standard AA&N tables"); this file is that
// collaborator, grounded on the textbook IJG scaling formula rather than
// any pack repo (none of the examples carry a quality scaler).
var stdLuminanceQT = QuantTable{
    16, 11, 10, 16, 24, 40, 51, 61,
    12, 12, 14, 19, 26, 58, 60, 55,
    14, 13, 16, 24, 40, 57, 69, 56,
    14, 17, 22, 29, 51, 87, 80, 62,
    18, 22, 37, 56, 68, 109, 103, 77,
    24, 35, 55, 64, 81, 104, 113, 92,
    49, 64, 78, 87, 103, 121, 120, 101,
    72, 92, 95, 98, 112, 100, 103, 99,
}

var stdChrominanceQT = QuantTable{
    17, 18, 24, 47, 99, 99, 99, 99,
    18, 21, 26, 66, 99, 99, 99, 99,
    24, 26, 56, 99, 99, 99, 99, 99,
    47, 66, 99, 99, 99, 99, 99, 99,
    99, 99, 99, 99, 99, 99, 99, 99,
    99, 99, 99, 99, 99, 99, 99, 99,
    99, 99, 99, 99, 99, 99, 99, 99,
    99, 99, 99, 99, 99, 99, 99, 99,
}

// scaleQuantTable applies the standard IJG quality scaling to base,
// clamped quality in [1,100]: scale = quality<50 ? 5000/quality :
// 200-2*quality, entry = clamp((base*scale+50)/100, 1, 255).
func scaleQuantTable(base *QuantTable, quality int) *QuantTable {
    if quality < 1 {
        quality = 1
    } else if quality > 100 {
        quality = 100
    }
    scale := 5000 / quality
    if quality >= 50 {
        scale = 200 - 2*quality
    }

    out := &QuantTable{}
    for i := 0; i < 64; i++ {
        v := (int(base[i])*scale + 50) / 100
        if v < 1 {
            v = 1
        } else if v > 255 {
            v = 255
        }
        out[i] = uint16(v)
    }
    return out
}

// StandardQuantTables returns the luminance (slot 0) and chrominance
// (slot 1) quantization tables for the given quality level (1..100),
// matching the layout this package's markers.go writes into DQT and the
// component->table-slot assignment DefaultComponents uses.
func StandardQuantTables(quality int) [NumQuantTables]*QuantTable {
    var tabs [NumQuantTables]*QuantTable
    tabs[0] = scaleQuantTable(&stdLuminanceQT, quality)
    tabs[1] = scaleQuantTable(&stdChrominanceQT, quality)
    return tabs
}

// DefaultComponents builds the Component slice Compress's callers typically
// want for a given color space and chroma subsampling, so cmd/jsc and tests
// don't have to hand-build sampling factors. hSub/vSub apply only to a
// YCbCr image's luma component (Cb/Cr are always 1x1, spec.md's glossary
// example of 4:2:0 being Y=(2,2), Cb=Cr=(1,1)); Grayscale and RGB ignore
// them since every component is full resolution.
//
// Needed is left false on the encode side: it is the decode-side "this
// component must be reconstructed" flag (the SOF0 parser sets it), and on
// the forward path it selects the divisor formula's S=16 branch, which
// deliberately halves the coefficient amplitude with no decode-side
// compensation. Callers that want that asymmetric-fidelity knob set it
// explicitly.
func DefaultComponents(cs ColorSpace, hSub, vSub int) []Component {
    switch cs {
    case Grayscale:
        return []Component{
            {Index: 0, H: 1, V: 1, QuantTableSlot: 0},
        }
    case RGB:
        return []Component{
            {Index: 0, H: 1, V: 1, QuantTableSlot: 0},
            {Index: 1, H: 1, V: 1, QuantTableSlot: 0},
            {Index: 2, H: 1, V: 1, QuantTableSlot: 0},
        }
    default: // YCbCr
        return []Component{
            {Index: 0, H: hSub, V: vSub, QuantTableSlot: 0},
            {Index: 1, H: 1, V: 1, QuantTableSlot: 1},
            {Index: 2, H: 1, V: 1, QuantTableSlot: 1},
        }
    }
}
