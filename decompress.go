package jsc

// Decompress is the symmetric entry point to Compress: it parses a
// baseline JFIF/JPEG bytestream this package understands (SOI .. EOI,
// single scan) and reconstructs the raw interleaved pixel buffer,
// returning it as an Image whose ColorSpace matches what the stream's
// SOF0 component ids declare. The pipeline underneath is the spec's
// decompression spine: entropy decode one iMCU row at a time, inverse
// DCT, dole row groups through the post controller to the upsampler,
// then interleave through the output color converter.
func Decompress(data []byte, control *Control) (*Image, error) {
    if control == nil {
        control = &Control{}
    }
    if control.Mode != PassThru {
        return nil, invariant("Decompress", "unsupported pass mode %d", control.Mode)
    }

    fh, _, err := Parse(data)
    if err != nil {
        return nil, err
    }
    if fh.Width == 0 || fh.Height == 0 || len(fh.Components) == 0 {
        return nil, invariant("Decompress", "stream carries no SOF0 frame header")
    }
    if len(fh.ScanData) == 0 {
        return nil, invariant("Decompress", "stream carries no scan data")
    }

    geometry, err := NewFrameGeometry(fh.Width, fh.Height, fh.Components)
    if err != nil {
        return nil, err
    }
    control.trace("decompress: %dx%d %s, %d iMCU rows\n",
        fh.Width, fh.Height, fh.ColorSpace, geometry.TotalIMCURows)

    arena := NewArena("decompress", 0)

    entropy := NewHuffmanDecoder(geometry, fh.Components, fh.ScanBlockSel,
        fh.ScanData, restartRowsFromInterval(fh.RestartInterval, geometry, len(fh.Components)))
    idct, err := NewInverseDCTManager(arena, fh.Components, fh.QuantTables)
    if err != nil {
        return nil, err
    }

    upsampler, err := NewUpsampler(geometry, fh.Components, false)
    if err != nil {
        return nil, err
    }
    post := NewDPostController(upsampler)

    dmain, err := NewDMainController(arena, geometry, fh.Components, entropy, idct, post)
    if err != nil {
        return nil, err
    }

    // Full-resolution output planes for one iMCU row. Each component's
    // plane is its own-resolution width times hx, which always covers the
    // image width; rows past the image height are simply never read back.
    planes := make([]SampleArray, len(fh.Components))
    for i, c := range fh.Components {
        hx := geometry.MaxH / c.H
        sa, err := arena.GetSamples(geometry.WidthInBlocks[i]*8*hx, geometry.MaxV*8)
        if err != nil {
            return nil, err
        }
        planes[i] = sa
    }

    img := &Image{
        Width:      fh.Width,
        Height:     fh.Height,
        ColorSpace: fh.ColorSpace,
        Components: fh.Components,
        Samples:    make([]byte, fh.Width*fh.Height*len(fh.Components)),
    }
    converter := outputConverterFor(fh.ColorSpace)

    rowsPerIMCURow := geometry.MaxV * 8
    for row := 0; row < geometry.TotalIMCURows; row++ {
        outRowCtr := 0
        for outRowCtr < rowsPerIMCURow {
            progress, err := dmain.ProcessDataSimpleMain(planes, &outRowCtr, rowsPerIMCURow)
            if err != nil {
                return nil, err
            }
            if progress == Suspended {
                // The decoder works over a fully-buffered scan, so a
                // suspension here means the stream ended early.
                return nil, invariant("Decompress", "scan data exhausted at iMCU row %d", row)
            }
        }

        base := row * rowsPerIMCURow
        for r := 0; r < rowsPerIMCURow && base+r < fh.Height; r++ {
            converter.Convert(planes, r, img, base+r)
        }
    }

    return img, nil
}

// restartRowsFromInterval converts a DRI interval (in MCUs) back to the
// pipeline's iMCU-row cadence. Streams written by this package always use
// whole MCU rows between restart markers, so the division is exact for
// them; anything else rounds down and is treated as "restart every row" at
// minimum when an interval is present at all.
func restartRowsFromInterval(interval int, geometry *FrameGeometry, numComps int) int {
    if interval <= 0 {
        return 0
    }
    perRow := geometry.MCUsPerRow
    if numComps == 1 {
        perRow = geometry.WidthInBlocks[0] * geometry.MCUHeight[0]
    }
    rows := interval / perRow
    if rows < 1 {
        rows = 1
    }
    return rows
}
