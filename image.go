package jsc

// ColorSpace names the encoded color space of a stream. Grayscale images
// carry single-channel samples; RGB and YCbCr images both carry
// interleaved RGB samples -- YCbCr converts them on the way in and out,
// RGB stores the three planes verbatim.
type ColorSpace uint8

const (
    Grayscale ColorSpace = iota
    YCbCr
    RGB
)

// C_MAX_BLOCKS_IN_MCU bounds Sigma hi*vi across all components (spec.md S3).
const C_MAX_BLOCKS_IN_MCU = 10

// blockSize is fixed at 8 throughout this narrow profile (spec.md S3).
const blockSize = 8

// Image is the caller-owned pixel buffer plus its geometry: W*H*Nc bytes,
// row-major, components interleaved. jsc never copies this buffer; it only
// reads from it (compress) or writes into it (decompress).
type Image struct {
    Width, Height int
    ColorSpace    ColorSpace
    Components    []Component
    Samples       []byte // len == Width*Height*len(Components)
}

// Component carries the per-channel metadata spec.md S3 requires:
// horizontal/vertical sampling factors, which quantization table slot this
// component quantizes against, and whether it is a "needed" component (see
// fdct.go's divisor formula and DESIGN.md's note on the asymmetric S=16
// branch).
type Component struct {
    Index          int
    H, V           int // sampling factors, 1..4
    QuantTableSlot  int
    Needed          bool
}

// FrameGeometry holds every dimension spec.md S3 derives once per image,
// computed by NewFrameGeometry. All controllers read from this; none of them recompute it.
type FrameGeometry struct {
    MaxH, MaxV      int
    MCUsPerRow      int
    TotalIMCURows   int
    WidthInBlocks   []int // per component
    LastColWidth    []int // per component, real blocks in right-edge MCU
    LastRowHeight   []int // per component, real blocks in bottom-edge MCU
    MCUWidth        []int // == component H
    MCUHeight       []int // == component V
    BlocksInMCU     int
}

func ceilDiv(a, b int) int {
    return (a + b - 1) / b
}

// NewFrameGeometry computes the derived dimensions of spec.md S3 for an
// image with the given component set. It validates sampling factors per
// spec.md S4.2: every hi must divide maxH and every vi must divide maxV.
func NewFrameGeometry(width, height int, comps []Component) (*FrameGeometry, error) {
    if width <= 0 || height <= 0 {
        return nil, invariant("NewFrameGeometry", "bad image size %dx%d", width, height)
    }
    if len(comps) == 0 || len(comps) > 10 {
        return nil, invariant("NewFrameGeometry", "bad component count %d", len(comps))
    }

    maxH, maxV := 0, 0
    for _, c := range comps {
        if c.H < 1 || c.H > 4 || c.V < 1 || c.V > 4 {
            return nil, invariant("NewFrameGeometry", "component %d: sampling factors out of range (%d,%d)",
                c.Index, c.H, c.V)
        }
        if c.H > maxH {
            maxH = c.H
        }
        if c.V > maxV {
            maxV = c.V
        }
    }

    g := &FrameGeometry{
        MaxH: maxH, MaxV: maxV,
        MCUsPerRow:    ceilDiv(width, maxH*blockSize),
        TotalIMCURows: ceilDiv(height, maxV*blockSize),
        WidthInBlocks: make([]int, len(comps)),
        LastColWidth:  make([]int, len(comps)),
        LastRowHeight: make([]int, len(comps)),
        MCUWidth:      make([]int, len(comps)),
        MCUHeight:     make([]int, len(comps)),
    }

    for i, c := range comps {
        if maxH%c.H != 0 || maxV%c.V != 0 {
            return nil, invariant("NewFrameGeometry",
                "InvalidSamplingFactors: component %d has (h=%d,v=%d) not dividing (maxH=%d,maxV=%d)",
                c.Index, c.H, c.V, maxH, maxV)
        }

        g.WidthInBlocks[i] = ceilDiv(width*c.H, maxH*blockSize)
        g.MCUWidth[i] = c.H
        g.MCUHeight[i] = c.V
        g.BlocksInMCU += c.H * c.V

        // last_col_width: how many real blocks in the right-edge MCU,
        // counted in this component's own sample resolution.
        compWidth := ceilDiv(width*c.H, maxH)
        lastMCUCols := compWidth - (g.MCUsPerRow-1)*c.H*blockSize
        lcw := ceilDiv(lastMCUCols, blockSize)
        if lcw < 1 {
            lcw = 1
        }
        if lcw > c.H {
            lcw = c.H
        }
        g.LastColWidth[i] = lcw

        compHeight := ceilDiv(height*c.V, maxV)
        lastMCURows := compHeight - (g.TotalIMCURows-1)*c.V*blockSize
        lrh := ceilDiv(lastMCURows, blockSize)
        if lrh < 1 {
            lrh = 1
        }
        if lrh > c.V {
            lrh = c.V
        }
        g.LastRowHeight[i] = lrh
    }

    if g.BlocksInMCU > C_MAX_BLOCKS_IN_MCU {
        return nil, invariant("NewFrameGeometry", "blocks_in_MCU %d exceeds C_MAX_BLOCKS_IN_MCU", g.BlocksInMCU)
    }
    return g, nil
}

// Block is one 8x8 coefficient block, natural (row-major) order. Zig-zag
// reordering belongs to the entropy coder, not here (spec.md S3).
type Block [64]int16

// DC returns the block's DC coefficient, block[0][0] in spec.md's notation.
func (b *Block) DC() int16     { return b[0] }
func (b *Block) SetDC(v int16) { b[0] = v }

// ZeroAC clears every AC coefficient, leaving DC untouched -- used when
// building dummy edge blocks (spec.md S4.4).
func (b *Block) ZeroAC() {
    for i := 1; i < 64; i++ {
        b[i] = 0
    }
}
