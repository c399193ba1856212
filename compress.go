package jsc

import (
    "fmt"
    "io"
)

// Compress drives the whole compression pipeline spec.md describes (S1's
// thin public "jsc_compress" shell, built here as a real entry point rather
// than a named-only collaborator -- SPEC_FULL.md S1): it wires the
// preprocessing controller, downsampler, forward DCT manager, coefficient
// controller and the entropy/marker collaborators together, and streams a
// complete JFIF/JPEG bytestream to w.
//
// It returns 0 on success. It returns -1, alongside the error that caused
// it, if any write to w fails -- spec.md S6's "jsc_compress returns 0 on
// success, -1 if any write_scanlines call reports fewer rows written than
// requested (output buffer full)". Every byte already accepted by w before
// the failure remains exactly what a subsequent Compress call with a
// larger-capacity sink would also produce as its prefix (Compress is a
// pure function of img/quality/control), satisfying spec.md S8's
// suspension-resumability property at the top level.
func Compress(w io.Writer, img *Image, quality int, control *Control) (int, error) {
    sess, err := newCompressSession(img, quality, control)
    if err != nil {
        return -1, err
    }
    return sess.run(w)
}

type compressSession struct {
    img      *Image
    geometry *FrameGeometry
    control  *Control

    converter   ColorConverter
    downsampler *Downsampler
    prep        *PrepController
    fdct        *ForwardDCTManager
    huff        *HuffmanEncoder
    coef        *CoefController
    dest        *EncodeDest

    quant         [NumQuantTables]*QuantTable
    blockTableSel []int // per component, for SOS/DHT selection
    restartInRows int
}

// encodeBufferDefault is the HuffmanEncoder's working-buffer size when
// Control doesn't request a smaller one: generous enough that ordinary
// images never suspend mid-iMCU-row, matching the teacher's preference for
// a large default over a tunable the typical caller has to think about.
const encodeBufferDefault = 32 * 1024

func newCompressSession(img *Image, quality int, control *Control) (*compressSession, error) {
    if img == nil {
        return nil, invariant("newCompressSession", "nil image")
    }
    if control == nil {
        control = &Control{}
    }
    if control.Mode != PassThru {
        return nil, invariant("newCompressSession", "unsupported pass mode %d", control.Mode)
    }

    geometry, err := NewFrameGeometry(img.Width, img.Height, img.Components)
    if err != nil {
        return nil, err
    }

    quant := StandardQuantTables(quality)
    arena := NewArena("compress", 0)

    fdct, err := NewForwardDCTManager(arena, geometry, img.Components, quant)
    if err != nil {
        return nil, err
    }

    converter := colorConverterFor(img.ColorSpace)
    downsampler := NewDownsampler(geometry, img.Components, img.Width)

    prep, err := NewPrepController(arena, geometry, img, converter, downsampler)
    if err != nil {
        return nil, err
    }

    bufSize := encodeBufferDefault
    if control.EncodeBufferSize > 0 {
        bufSize = control.EncodeBufferSize
    }
    dest := NewEncodeDest(bufSize)

    interleaved := len(img.Components) > 1
    blockTableSel := make([]int, len(img.Components))
    var encTableSel, encDCIndex []int
    for ci, c := range img.Components {
        sel := componentTableSel(c)
        blockTableSel[ci] = sel
        count := 1
        if interleaved {
            count = c.H * c.V
        }
        for n := 0; n < count; n++ {
            encTableSel = append(encTableSel, sel)
            encDCIndex = append(encDCIndex, ci)
        }
    }
    huff := NewHuffmanEncoder(dest, encTableSel, encDCIndex, len(img.Components))

    coef, err := NewCoefController(arena, geometry, img.Components, fdct, huff, control)
    if err != nil {
        return nil, err
    }

    restartInRows := RestartInRows(img.Width, img.Height, geometry.MaxV, control.CorrectedRestartFormula)

    return &compressSession{
        img: img, geometry: geometry, control: control,
        converter: converter, downsampler: downsampler, prep: prep,
        fdct: fdct, huff: huff, coef: coef, dest: dest,
        quant: quant, blockTableSel: blockTableSel, restartInRows: restartInRows,
    }, nil
}

// componentTableSel picks the Huffman table destination this encoder
// always uses: component 0 (conventionally luma) gets destination 0,
// every other component gets destination 1 (chroma), matching writeDHT's
// fixed two-table layout.
func componentTableSel(c Component) int {
    if c.Index == 0 {
        return 0
    }
    return 1
}

func (s *compressSession) run(w io.Writer) (int, error) {
    grayscale := len(s.img.Components) == 1
    s.control.trace("compress: %dx%d %s, %d iMCU rows, restart every %d rows\n",
        s.img.Width, s.img.Height, s.img.ColorSpace,
        s.geometry.TotalIMCURows, s.restartInRows)

    diagnostics := ""
    if s.control.Verbose {
        diagnostics = s.diagnosticsSummary()
    }
    if err := s.write(w, func(w io.Writer) error { return writeSOI(w, s.control, diagnostics) }); err != nil {
        return -1, err
    }
    if err := s.write(w, writeAPP0); err != nil {
        return -1, err
    }
    if err := s.write(w, func(w io.Writer) error { return writeDQT(w, s.img.Components, s.quant) }); err != nil {
        return -1, err
    }
    if err := s.write(w, func(w io.Writer) error {
        return writeSOF0(w, s.img.Width, s.img.Height, s.img.ColorSpace, s.img.Components)
    }); err != nil {
        return -1, err
    }
    if err := s.write(w, func(w io.Writer) error { return writeDHT(w, grayscale) }); err != nil {
        return -1, err
    }
    if s.restartInRows > 0 {
        // The DRI segment carries the interval in MCUs, the unit the JPEG
        // standard defines, while the pipeline's cadence is counted in
        // iMCU rows.
        interval := s.restartInRows * s.scanMCUsPerRow()
        if err := s.write(w, func(w io.Writer) error { return writeDRI(w, interval) }); err != nil {
            return -1, err
        }
    }
    if err := s.write(w, func(w io.Writer) error {
        return writeSOSHeader(w, s.img.Components, s.blockTableSel)
    }); err != nil {
        return -1, err
    }

    buffers := make([]SampleArray, len(s.img.Components))
    arena := NewArena("compress-row", 0)
    for i, c := range s.img.Components {
        sa, err := arena.GetSamples(s.geometry.WidthInBlocks[i]*8, c.V*8)
        if err != nil {
            return -1, err
        }
        buffers[i] = sa
    }

    inRowCtr := 0
    restartCycle := 0
    restartIndex := 0
    for row := 0; row < s.geometry.TotalIMCURows; row++ {
        outRowGroupCtr := 0
        s.prep.PreProcessData(s.img, &inRowCtr, s.img.Height, buffers, &outRowGroupCtr, 8)

        for {
            progress, err := s.coef.CompressData(buffers)
            if err != nil {
                return -1, err
            }
            if err := s.drain(w); err != nil {
                return -1, err
            }
            if progress == Done {
                break
            }
        }

        if s.restartInRows > 0 && row != s.geometry.TotalIMCURows-1 {
            restartCycle++
            if restartCycle >= s.restartInRows {
                if err := s.write(w, func(w io.Writer) error {
                    s.huff.FlushToByteBoundary()
                    return nil
                }); err != nil {
                    return -1, err
                }
                if err := s.drain(w); err != nil {
                    return -1, err
                }
                marker := uint16(mRST0) + uint16(restartIndex)
                if err := s.write(w, func(w io.Writer) error { return putMarker(w, marker) }); err != nil {
                    return -1, err
                }
                s.huff.ResetRestart()
                restartCycle = 0
                restartIndex = (restartIndex + 1) % 8
            }
        }
    }

    if err := s.write(w, func(w io.Writer) error {
        s.huff.FlushToByteBoundary()
        return nil
    }); err != nil {
        return -1, err
    }
    if err := s.drain(w); err != nil {
        return -1, err
    }
    if err := s.write(w, func(w io.Writer) error { return putMarker(w, mEOI) }); err != nil {
        return -1, err
    }

    return 0, nil
}

// scanMCUsPerRow is the number of entropy-coded MCUs per iMCU row: the
// frame's MCUs_per_row when interleaved, or the component's full block
// count per iMCU row in a single-component scan (where the MCU is one
// block and an iMCU row holds V block rows).
func (s *compressSession) scanMCUsPerRow() int {
    if len(s.img.Components) > 1 {
        return s.geometry.MCUsPerRow
    }
    return s.geometry.WidthInBlocks[0] * s.geometry.MCUHeight[0]
}

func (s *compressSession) write(w io.Writer, f func(io.Writer) error) error {
    return sinkError(f(w))
}

func (s *compressSession) drain(w io.Writer) error {
    b := s.dest.Drain()
    if len(b) == 0 {
        return nil
    }
    _, err := w.Write(b)
    return sinkError(err)
}

// sinkError maps a failed write to the OutputBufferFull sentinel: the one
// way this pipeline fails mid-stream is the caller's output running out of
// room, reported as -1 from Compress rather than a panic.
func sinkError(err error) error {
    if err == nil {
        return nil
    }
    return fmt.Errorf("Compress: %w (%v)", OutputBufferFull, err)
}

func (s *compressSession) diagnosticsSummary() string {
    return fmt.Sprintf("jsc compress: %s image, %dx%d",
        s.img.ColorSpace, s.img.Width, s.img.Height)
}

// String gives ColorSpace a human-readable name for diagnostics.
func (cs ColorSpace) String() string {
    switch cs {
    case Grayscale:
        return "grayscale"
    case YCbCr:
        return "YCbCr"
    case RGB:
        return "RGB"
    default:
        return "unknown"
    }
}
