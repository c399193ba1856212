package jsc

// downsampleMethod selects one of the four kernels spec.md S4.2 names,
// replacing the source's per-component method function pointer with an
// explicit, exhaustively-switchable sum type (spec.md S9 redesign note).
type downsampleMethod int

const (
    methodFullsize downsampleMethod = iota
    methodH2V1
    methodH2V2
    methodIntegral
)

// Downsampler selects and runs the per-component chroma subsampling kernel.
// Sampling-factor validation already happened in NewFrameGeometry; this
// type only picks the method and runs it.
type Downsampler struct {
    geometry   *FrameGeometry
    imageWidth int
    method     []downsampleMethod
    hx, vx     []int // maxH/hi, maxV/vi per component
}

// NewDownsampler selects a method for every component from the
// (maxH/hi, maxV/vi) ratio pair (spec.md S4.2).
func NewDownsampler(geometry *FrameGeometry, comps []Component, imageWidth int) *Downsampler {
    d := &Downsampler{
        geometry:   geometry,
        imageWidth: imageWidth,
        method:     make([]downsampleMethod, len(comps)),
        hx:         make([]int, len(comps)),
        vx:         make([]int, len(comps)),
    }
    for i, c := range comps {
        hx := geometry.MaxH / c.H
        vx := geometry.MaxV / c.V
        d.hx[i], d.vx[i] = hx, vx
        switch {
        case hx == 1 && vx == 1:
            d.method[i] = methodFullsize
        case hx == 2 && vx == 1:
            d.method[i] = methodH2V1
        case hx == 2 && vx == 2:
            d.method[i] = methodH2V2
        default:
            d.method[i] = methodIntegral
        }
    }
    return d
}

// expandEdge replicates the last real sample of each of the first rows
// rows of input rightward to the buffer's full stride, per spec.md S4.2:
// "before any averaging kernel runs, extend each input row from W to
// width_in_blocks*8*hx". Vertical padding is prep.go's responsibility, not
// this function's.
func (d *Downsampler) expandEdge(input SampleArray, rows int) {
    w := d.imageWidth
    stride := input.Stride()
    if w >= stride {
        return
    }
    for r := 0; r < rows; r++ {
        row := input.Row(r)
        last := row[w-1]
        for x := w; x < stride; x++ {
            row[x] = last
        }
    }
}

// Downsample runs one row group (geometry.MaxV input rows, already
// color-converted into input) through component compIndex's method,
// writing the result into output starting at outputRow. It returns the
// number of output rows produced (== component V for every method except
// the degenerate vx>1 integral case, where it is MaxV/vx).
func (d *Downsampler) Downsample(compIndex int, input SampleArray, output SampleArray, outputRow int) int {
    d.expandEdge(input, d.geometry.MaxV)

    switch d.method[compIndex] {
    case methodFullsize:
        return d.fullsize(input, output, outputRow)
    case methodH2V1:
        return d.h2v1(input, output, outputRow)
    case methodH2V2:
        return d.h2v2(input, output, outputRow)
    default:
        return d.integral(compIndex, input, output, outputRow)
    }
}

func (d *Downsampler) fullsize(input, output SampleArray, outputRow int) int {
    rows := d.geometry.MaxV
    for r := 0; r < rows; r++ {
        copy(output.Row(outputRow+r), input.Row(r)[:output.Stride()])
    }
    return rows
}

// h2v1 averages 2 horizontal samples into 1, with a bias that alternates
// 0/1 every output column, reset at the start of each row (spec.md S9: the
// dither state is per-row, not per-component, or a systematic brightness
// drift appears as a vertical stripe).
func (d *Downsampler) h2v1(input, output SampleArray, outputRow int) int {
    rows := d.geometry.MaxV
    outWidth := output.Stride()
    for r := 0; r < rows; r++ {
        in := input.Row(r)
        out := output.Row(outputRow + r)
        bias := byte(0)
        for k := 0; k < outWidth; k++ {
            out[k] = byte((int(in[2*k]) + int(in[2*k+1]) + int(bias)) >> 1)
            bias ^= 1
        }
    }
    return rows
}

// h2v2 averages a 2x2 box into 1 sample, with a bias alternating 1/2 (XOR
// 3) every output column, reset at the start of each output row.
func (d *Downsampler) h2v2(input, output SampleArray, outputRow int) int {
    outRows := d.geometry.MaxV / 2
    outWidth := output.Stride()
    for r := 0; r < outRows; r++ {
        in0 := input.Row(2 * r)
        in1 := input.Row(2*r + 1)
        out := output.Row(outputRow + r)
        bias := byte(1)
        for k := 0; k < outWidth; k++ {
            sum := int(in0[2*k]) + int(in0[2*k+1]) + int(in1[2*k]) + int(in1[2*k+1])
            out[k] = byte((sum + int(bias)) >> 2)
            bias ^= 3
        }
    }
    return outRows
}

// integral implements the general case: sum hx*vx neighbors, divide with
// round-to-nearest. Requires hx and vx to divide the sampling factors
// exactly, already guaranteed by NewFrameGeometry's validation.
func (d *Downsampler) integral(compIndex int, input, output SampleArray, outputRow int) int {
    hx, vx := d.hx[compIndex], d.vx[compIndex]
    outRows := d.geometry.MaxV / vx
    outWidth := output.Stride()
    area := hx * vx
    half := area / 2
    for r := 0; r < outRows; r++ {
        out := output.Row(outputRow + r)
        for k := 0; k < outWidth; k++ {
            sum := 0
            for dy := 0; dy < vx; dy++ {
                in := input.Row(r*vx + dy)
                for dx := 0; dx < hx; dx++ {
                    sum += int(in[k*hx+dx])
                }
            }
            out[k] = byte((sum + half) / area)
        }
    }
    return outRows
}
