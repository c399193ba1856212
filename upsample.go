package jsc

// Upsampler is the decompression mirror of Downsampler: it expands each
// component's own-resolution samples back to full image resolution by
// simple pixel replication (spec.md S4.7/S9 -- no context-row path exists
// in this profile, enforced once at construction rather than re-checked
// every call).
type Upsampler struct {
    geometry *FrameGeometry
    hx, vx   []int
    scratch  [][]byte // per-component row expansion buffer, sized once
}

// NewUpsampler rejects needContextRows outright: spec.md S9 names
// context-row decompression as explicitly unsupported, so a caller asking
// for it gets InvariantViolation at start-of-pass rather than a silently
// degraded upsample.
func NewUpsampler(geometry *FrameGeometry, comps []Component, needContextRows bool) (*Upsampler, error) {
    if needContextRows {
        return nil, invariant("NewUpsampler", "context-row decompression is not supported by this profile")
    }
    u := &Upsampler{
        geometry: geometry,
        hx:       make([]int, len(comps)),
        vx:       make([]int, len(comps)),
        scratch:  make([][]byte, len(comps)),
    }
    for i, c := range comps {
        u.hx[i] = geometry.MaxH / c.H
        u.vx[i] = geometry.MaxV / c.V
        if u.hx[i] > 1 {
            u.scratch[i] = make([]byte, geometry.WidthInBlocks[i]*8*u.hx[i])
        }
    }
    return u, nil
}

// Upsample expands whichever input row groups are available into full
// image resolution, writing into output starting at *outRowCtr, and
// advances both counters by however much it produced. In this profile
// inGroupsAvail is always 1 (spec.md S4.6): one call always consumes
// exactly one full iMCU row of input and produces geometry.MaxV*8 output
// rows per component. Each component's own-resolution input buffer is
// MCUHeight[i]*8 rows tall (a full block row, not just MCUHeight[i] rows
// -- block height is fixed at 8), so the vertical replication factor vx
// is applied per own-resolution pixel row, not per block.
func (u *Upsampler) Upsample(input []SampleArray, inGroupCtr *int, inGroupsAvail int,
    output []SampleArray, outRowCtr *int, outRowsAvail int) {

    for *inGroupCtr < inGroupsAvail && *outRowCtr < outRowsAvail {
        for i := range input {
            rowsInBuf := u.geometry.MCUHeight[i] * 8
            inBase := *inGroupCtr * rowsInBuf
            u.expandComponent(i, input[i], inBase, rowsInBuf, output[i], *outRowCtr)
        }
        *inGroupCtr++
        *outRowCtr += u.geometry.MaxV * 8
    }
}

// expandComponent replicates ownRows own-resolution input rows, each
// hx wide-expanded, into ownRows*vx output rows starting at outRow.
func (u *Upsampler) expandComponent(i int, input SampleArray, inBase, ownRows int, output SampleArray, outRow int) {
    hx, vx := u.hx[i], u.vx[i]
    outWidth := output.Stride()

    for r := 0; r < ownRows; r++ {
        in := input.Row(inBase + r)
        var expanded []byte
        if hx == 1 {
            expanded = in[:outWidth]
        } else {
            expanded = u.scratch[i][:outWidth]
            for k := 0; k < outWidth/hx; k++ {
                v := in[k]
                for x := 0; x < hx; x++ {
                    expanded[k*hx+x] = v
                }
            }
        }
        for y := 0; y < vx; y++ {
            copy(output.Row(outRow+r*vx+y), expanded)
        }
    }
}
