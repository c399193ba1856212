package jsc

// EntropyEncoder is the entropy_encoder collaborator named in spec.md S6.
// encode_mcu's suspension contract becomes an explicit Progress return:
// Suspended means the output sink is full and the coefficient controller
// must persist its cursor and retry with the identical MCU on the next
// call (spec.md S4.4/S5).
type EntropyEncoder interface {
    EncodeMCU(mcu []*Block) (Progress, error)
}

// EntropyDecoder is the symmetric decompress_data collaborator.
type EntropyDecoder interface {
    // DecompressData fills buffer, one row of blocks per component, for
    // one iMCU row. buffer[i] has geometry.MCUHeight[i] rows of
    // geometry.WidthInBlocks[i] blocks each (minus any edge blocks already
    // resolved by the encoder's dummy-block contract).
    DecompressData(buffer [][]Block) (Progress, error)
}

// The upsample collaborator (spec.md S6) is the concrete Upsampler in
// upsample.go: with need_context_rows permanently rejected at
// construction, this profile has exactly one upsampling variant, so no
// interface indirection is warranted the way it is for the entropy coder
// (which tests replace with fakes).
