package jsc

// PrepController is the preprocessing controller of spec.md S4.3: it
// buffers MaxV input rows, color-converts them into a per-component
// scratch buffer, and once the buffer is full invokes the downsampler for
// one row group. It also owns both flavors of edge padding: vertical
// (replicating the last real row when the image runs out of source rows
// before the scratch buffer is full) and the final row-group padding
// (replicating the last produced row group when the image runs out before
// an iMCU row's output is full).
type PrepController struct {
    geometry    *FrameGeometry
    comps       []Component
    converter   ColorConverter
    downsampler *Downsampler

    scratch    []SampleArray // one per component, width_in_blocks[i]*8*maxH/hi wide, MaxV tall
    nextBufRow int
    rowsToGo   int
}

// NewPrepController allocates the scratch buffers from the arena and
// starts rowsToGo at the image's total height, per spec.md S4.3.
func NewPrepController(arena *Arena, geometry *FrameGeometry, img *Image, converter ColorConverter, downsampler *Downsampler) (*PrepController, error) {
    p := &PrepController{
        geometry:    geometry,
        comps:       img.Components,
        converter:   converter,
        downsampler: downsampler,
        scratch:     make([]SampleArray, len(img.Components)),
        rowsToGo:    img.Height,
    }
    for i, c := range img.Components {
        width := geometry.WidthInBlocks[i] * 8 * geometry.MaxH / c.H
        sa, err := arena.GetSamples(width, geometry.MaxV)
        if err != nil {
            return nil, forwardError("NewPrepController", err)
        }
        p.scratch[i] = sa
    }
    return p, nil
}

// PreProcessData implements spec.md S4.3's pre_process_data. output must
// have one SampleArray per component, each with at least outRowGroupsAvail
// * geometry.MCUHeight[i] rows of room, matching one iMCU row's worth of
// downsampled output.
func (p *PrepController) PreProcessData(input *Image, inRowCtr *int, inRowsAvail int,
    output []SampleArray, outRowGroupCtr *int, outRowGroupsAvail int) {

    for *inRowCtr < inRowsAvail && *outRowGroupCtr < outRowGroupsAvail {
        numrows := p.geometry.MaxV - p.nextBufRow
        if avail := inRowsAvail - *inRowCtr; avail < numrows {
            numrows = avail
        }
        if numrows > 0 {
            p.converter.Convert(input, *inRowCtr, p.scratch, p.nextBufRow, numrows)
            *inRowCtr += numrows
            p.nextBufRow += numrows
            p.rowsToGo -= numrows
        }

        if p.rowsToGo <= 0 && p.nextBufRow < p.geometry.MaxV {
            p.padScratchVertically()
            p.nextBufRow = p.geometry.MaxV
        }

        if p.nextBufRow == p.geometry.MaxV {
            for i := range p.comps {
                vi := p.geometry.MCUHeight[i]
                p.downsampler.Downsample(i, p.scratch[i], output[i], (*outRowGroupCtr)*vi)
            }
            p.nextBufRow = 0
            *outRowGroupCtr++
        }

        if p.rowsToGo <= 0 && *outRowGroupCtr < outRowGroupsAvail {
            p.padOutputRowGroups(output, *outRowGroupCtr, outRowGroupsAvail)
            *outRowGroupCtr = outRowGroupsAvail
            break
        }
    }
}

// padScratchVertically replicates the last real row of the scratch buffer
// downward until it is full (spec.md S4.3 step 2). When the image height
// is an exact multiple of MaxV*8, rowsToGo reaches 0 exactly as nextBufRow
// reaches MaxV, so this never runs -- spec.md S8's "vertical padding
// idempotence" invariant.
func (p *PrepController) padScratchVertically() {
    for i := range p.comps {
        if p.nextBufRow == 0 {
            continue // nothing real was ever written this group; leave zeroed
        }
        last := p.scratch[i].Row(p.nextBufRow - 1)
        for r := p.nextBufRow; r < p.geometry.MaxV; r++ {
            copy(p.scratch[i].Row(r), last)
        }
    }
}

// padOutputRowGroups replicates the most recently produced row group
// downward to fill the remaining row groups of this iMCU row (spec.md S4.3
// step 4), used only on the image's final, short iMCU row.
func (p *PrepController) padOutputRowGroups(output []SampleArray, produced, avail int) {
    if produced == 0 {
        return // nothing produced yet this call; nothing to replicate from
    }
    for i := range p.comps {
        vi := p.geometry.MCUHeight[i]
        lastGroupStart := (produced - 1) * vi
        for g := produced; g < avail; g++ {
            for r := 0; r < vi; r++ {
                copy(output[i].Row(g*vi+r), output[i].Row(lastGroupStart+r))
            }
        }
    }
}
