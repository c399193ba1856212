package jsc

// DMainController is the decompression main controller of spec.md S4.6: it
// pulls one iMCU row of coefficient blocks from the entropy decoder, runs
// the inverse DCT manager over every block, and doles the resulting
// own-resolution sample rows to the post controller one row group at a
// time. rowgroups_avail is always 1 in this profile (DCT size 8 == scaled
// size 8), so in practice one call to ProcessDataSimpleMain consumes
// exactly one iMCU row and hands it to post whole -- the row-group
// machinery is kept because spec.md S4.6 keeps it parametric.
type DMainController struct {
    geometry *FrameGeometry
    comps    []Component
    entropy  EntropyDecoder
    idct     *InverseDCTManager
    post     *DPostController

    coefBuffer [][]Block      // one iMCU row of blocks per component
    buffer     []SampleArray  // post-IDCT samples, one iMCU row per component

    rowgroupCtr   int
    rowgroupsAvail int
}

// NewDMainController allocates the coefficient and sample buffers from the
// arena once, at start-of-pass.
func NewDMainController(arena *Arena, geometry *FrameGeometry, comps []Component, entropy EntropyDecoder, idct *InverseDCTManager, post *DPostController) (*DMainController, error) {
    d := &DMainController{
        geometry:       geometry,
        comps:          comps,
        entropy:        entropy,
        idct:           idct,
        post:           post,
        coefBuffer:     make([][]Block, len(comps)),
        buffer:         make([]SampleArray, len(comps)),
        rowgroupsAvail: 1,
        rowgroupCtr:    1, // start "empty" so the first call pulls an iMCU row
    }
    for i := range comps {
        blocksPerRow := geometry.WidthInBlocks[i] * geometry.MCUHeight[i]
        blocks, err := arena.GetBlocks(blocksPerRow)
        if err != nil {
            return nil, forwardError("NewDMainController", err)
        }
        d.coefBuffer[i] = blocks

        sa, err := arena.GetSamples(geometry.WidthInBlocks[i]*8, geometry.MCUHeight[i]*8)
        if err != nil {
            return nil, forwardError("NewDMainController", err)
        }
        d.buffer[i] = sa
    }
    return d, nil
}

// ProcessDataSimpleMain implements spec.md S4.6's process_data_simple_main.
func (d *DMainController) ProcessDataSimpleMain(outputBuf []SampleArray, outRowCtr *int, outRowsAvail int) (Progress, error) {
    if d.rowgroupCtr >= d.rowgroupsAvail {
        progress, err := d.entropy.DecompressData(d.coefBuffer)
        if err != nil {
            return Done, forwardError("DMainController.ProcessDataSimpleMain", err)
        }
        if progress == Suspended {
            return Suspended, nil
        }
        d.runIDCT()
        d.rowgroupCtr = 0
    }

    d.post.PostProcessData(d.buffer, &d.rowgroupCtr, d.rowgroupsAvail, outputBuf, outRowCtr, outRowsAvail)
    return Done, nil
}

// runIDCT converts one freshly decoded iMCU row of coefficient blocks into
// own-resolution sample rows (spec.md S4.5/S4.6).
func (d *DMainController) runIDCT() {
    var out8x8 [8][8]uint8
    for i := range d.comps {
        widthInBlocks := d.geometry.WidthInBlocks[i]
        vi := d.geometry.MCUHeight[i]
        for br := 0; br < vi; br++ {
            for bc := 0; bc < widthInBlocks; bc++ {
                blk := &d.coefBuffer[i][br*widthInBlocks+bc]
                d.idct.InverseDCT(i, blk, &out8x8)
                for y := 0; y < 8; y++ {
                    copy(d.buffer[i].Row(br*8+y)[bc*8:bc*8+8], out8x8[y][:])
                }
            }
        }
    }
}
