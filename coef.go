package jsc

// CoefController is the coefficient controller -- the compressor's spine
// (spec.md S4.4). It iterates iMCU rows, assembles one MCU's block list at
// a time (padding with dummy blocks at the right and bottom image edges),
// runs the forward DCT manager over every real block, and hands the
// finished MCU to the entropy encoder, persisting its cursor across
// suspension.
type CoefController struct {
    geometry *FrameGeometry
    comps    []Component
    fdct     *ForwardDCTManager
    entropy  EntropyEncoder
    control  *Control

    interleaved         bool
    effectiveMCUsPerRow int

    iMCURowNum        int
    mcuVertOffset     int
    mcuCtr            int
    mcuRowsPerIMCURow int

    mcuBuffer []Block
    mcuPtrs   []*Block
}

// NewCoefController allocates the reusable MCU buffer from the arena
// (spec.md S3: "allocated once from the arena at init; lifetime equals
// image pass") and sets up start-of-pass state.
func NewCoefController(arena *Arena, geometry *FrameGeometry, comps []Component, fdct *ForwardDCTManager, entropy EntropyEncoder, control *Control) (*CoefController, error) {
    c := &CoefController{
        geometry:    geometry,
        comps:       comps,
        fdct:        fdct,
        entropy:     entropy,
        control:     control,
        interleaved: len(comps) > 1,
    }

    blocksInMCU := 1
    if c.interleaved {
        blocksInMCU = geometry.BlocksInMCU
    }
    blocks, err := arena.GetBlocks(blocksInMCU)
    if err != nil {
        return nil, forwardError("NewCoefController", err)
    }
    c.mcuBuffer = blocks
    c.mcuPtrs = make([]*Block, blocksInMCU)

    if c.interleaved {
        c.effectiveMCUsPerRow = geometry.MCUsPerRow
        c.mcuRowsPerIMCURow = 1
    } else {
        c.effectiveMCUsPerRow = geometry.WidthInBlocks[0]
        c.mcuRowsPerIMCURow = c.rowsPerIMCURowFor(0)
    }
    return c, nil
}

func (c *CoefController) lastIMCURow() int { return c.geometry.TotalIMCURows - 1 }

// rowsPerIMCURowFor returns v_samp_factor for the non-interleaved single
// component scan, or last_row_height on the final iMCU row (spec.md S4.4).
func (c *CoefController) rowsPerIMCURowFor(row int) int {
    if row == c.lastIMCURow() {
        return c.geometry.LastRowHeight[0]
    }
    return c.geometry.MCUHeight[0]
}

// CompressData processes up to one complete iMCU row per call (spec.md
// S4.4). input has one SampleArray per component, holding one iMCU row's
// worth of downsampled samples.
func (c *CoefController) CompressData(input []SampleArray) (Progress, error) {
    for yoffset := c.mcuVertOffset; yoffset < c.mcuRowsPerIMCURow; yoffset++ {
        for mcuCol := c.mcuCtr; mcuCol < c.effectiveMCUsPerRow; mcuCol++ {
            c.assembleMCU(input, yoffset, mcuCol)

            progress, err := c.entropy.EncodeMCU(c.mcuPtrs)
            if err != nil {
                return Done, forwardError("CoefController.CompressData", err)
            }
            if progress == Suspended {
                // The MCU's FDCT work is re-done on retry -- spec.md S4.4
                // deliberately keeps this simple rather than caching it.
                c.mcuVertOffset = yoffset
                c.mcuCtr = mcuCol
                return Suspended, nil
            }
        }
        c.mcuCtr = 0
    }

    c.mcuVertOffset = 0
    c.iMCURowNum++
    if c.interleaved {
        c.mcuRowsPerIMCURow = 1
    } else {
        c.mcuRowsPerIMCURow = c.rowsPerIMCURowFor(c.iMCURowNum)
    }
    return Done, nil
}

// assembleMCU fills mcuBuffer/mcuPtrs for one MCU: component 0's blocks
// first, then component 1's, etc., each in raster (row-major) order,
// inserting dummy blocks at the right and bottom edges (spec.md S4.4).
func (c *CoefController) assembleMCU(input []SampleArray, yoffset, mcuCol int) {
    blkn := 0
    for ci := range c.comps {
        // In a non-interleaved scan the MCU is a single block regardless
        // of the component's sampling factors.
        hi, rowCount := 1, 1
        if c.interleaved {
            hi = c.geometry.MCUWidth[ci]
            rowCount = c.geometry.MCUHeight[ci]
        }

        for yindex := 0; yindex < rowCount; yindex++ {
            blockRow := yoffset + yindex

            if c.iMCURowNum == c.lastIMCURow() && blockRow >= c.geometry.LastRowHeight[ci] {
                c.fillDummyRow(&blkn, hi)
                continue
            }

            blockcnt := hi
            if c.interleaved && mcuCol == c.effectiveMCUsPerRow-1 {
                blockcnt = c.geometry.LastColWidth[ci]
            }

            startRow := blockRow * 8
            startCol := mcuCol * hi * 8
            c.fdct.ForwardDCT(ci, input[ci], startRow, startCol, blockcnt, c.mcuBuffer[blkn:blkn+blockcnt])
            for x := 0; x < blockcnt; x++ {
                c.mcuPtrs[blkn] = &c.mcuBuffer[blkn]
                blkn++
            }

            if blockcnt < hi {
                c.fillDummyRow(&blkn, hi-blockcnt)
            }
        }
    }
}

// fillDummyRow zeros n blocks and sets each one's DC coefficient equal to
// the preceding block's DC, per spec.md S4.4's "minimum-entropy output
// with no DC step" contract for both right-edge and bottom-edge dummy
// blocks.
func (c *CoefController) fillDummyRow(blkn *int, n int) {
    for x := 0; x < n; x++ {
        blk := &c.mcuBuffer[*blkn]
        blk.ZeroAC()
        if *blkn == 0 {
            blk.SetDC(0)
        } else {
            blk.SetDC(c.mcuBuffer[*blkn-1].DC())
        }
        c.mcuPtrs[*blkn] = blk
        *blkn++
    }
}
