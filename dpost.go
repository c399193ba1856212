package jsc

// DPostController is the decompression post controller of spec.md S4.7:
// stripped of color quantization, it is a thin pass-through straight to
// the upsampler -- there is no strip buffer, the upsampler writes directly
// into the caller's output buffer.
type DPostController struct {
    upsampler *Upsampler
}

func NewDPostController(upsampler *Upsampler) *DPostController {
    return &DPostController{upsampler: upsampler}
}

// PostProcessData aliases directly to Upsampler.Upsample (spec.md S4.7).
// There is no suspension here -- the only suspension point in the whole
// pipeline is entropy.encode_mcu/decompress_data (spec.md S5) -- so this
// simply stops once either side of the buffer pair runs dry, exactly like
// the upsampler it wraps.
func (p *DPostController) PostProcessData(input []SampleArray, inRowCtr *int, inRowsAvail int,
    output []SampleArray, outRowCtr *int, outRowsAvail int) {

    p.upsampler.Upsample(input, inRowCtr, inRowsAvail, output, outRowCtr, outRowsAvail)
}
