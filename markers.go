package jsc

import (
    "bytes"
    "encoding/binary"
    "io"

    "github.com/jrm-1535/exif"
    "github.com/klauspost/compress/zlib"
)

// Marker values, named after jrm-1535-jpeg/jpeg.go's _SOF0.._COM constant
// block (same values, same naming convention, trimmed to the subset this
// baseline-only profile ever writes or must recognize while skipping
// everything else).
const (
    mSOI  = 0xFFD8
    mEOI  = 0xFFD9
    mSOF0 = 0xFFC0
    mDHT  = 0xFFC4
    mDQT  = 0xFFDB
    mDRI  = 0xFFDD
    mSOS  = 0xFFDA
    mAPP0 = 0xFFE0
    mAPP1 = 0xFFE1
    mCOM  = 0xFFFE
    mRST0 = 0xFFD0
    mRST7 = 0xFFD7
)

func isRST(marker uint16) bool { return marker >= mRST0 && marker <= mRST7 }

// jscComment is the mandatory literal payload spec.md S6 requires
// immediately after jpeg_start_compress: the 4 bytes {'J','S','C',0}.
var jscComment = [4]byte{'J', 'S', 'C', 0}

func putMarker(w io.Writer, marker uint16) error {
    var b [2]byte
    binary.BigEndian.PutUint16(b[:], marker)
    _, err := w.Write(b[:])
    return err
}

func putSegment(w io.Writer, marker uint16, payload []byte) error {
    if err := putMarker(w, marker); err != nil {
        return err
    }
    var lenBuf [2]byte
    binary.BigEndian.PutUint16(lenBuf[:], uint16(len(payload)+2))
    if _, err := w.Write(lenBuf[:]); err != nil {
        return err
    }
    _, err := w.Write(payload)
    return err
}

// writeSOI writes the Start Of Image marker followed immediately by the
// mandatory JPEG_COM "JSC\0" comment (spec.md S6), and, if verbose is set,
// a second companion comment holding deflated human-readable diagnostics
// (SPEC_FULL.md S3/S5's wiring of klauspost/compress).
func writeSOI(w io.Writer, control *Control, diagnostics string) error {
    if err := putMarker(w, mSOI); err != nil {
        return err
    }
    if err := putSegment(w, mCOM, jscComment[:]); err != nil {
        return err
    }
    if control != nil && control.Verbose && diagnostics != "" {
        blob, err := deflateComment(diagnostics)
        if err != nil {
            return forwardError("writeSOI", err)
        }
        if err := putSegment(w, mCOM, blob); err != nil {
            return err
        }
    }
    return nil
}

// deflateComment compresses s with klauspost/compress's zlib-compatible
// writer -- this is the one place a general-purpose compressor belongs in
// a repo whose core forbids anything beyond Huffman coding for pixel data
// (SPEC_FULL.md S3).
func deflateComment(s string) ([]byte, error) {
    var buf bytes.Buffer
    zw := zlib.NewWriter(&buf)
    if _, err := zw.Write([]byte(s)); err != nil {
        return nil, err
    }
    if err := zw.Close(); err != nil {
        return nil, err
    }
    return buf.Bytes(), nil
}

func inflateComment(b []byte) (string, error) {
    zr, err := zlib.NewReader(bytes.NewReader(b))
    if err != nil {
        return "", err
    }
    defer zr.Close()
    out, err := io.ReadAll(zr)
    if err != nil {
        return "", err
    }
    return string(out), nil
}

// writeAPP0 writes the JFIF APP0 segment, grounded on jrm-1535-jpeg/jfif.go's
// byte layout (version, density units, X/Y density, zero-size thumbnail).
func writeAPP0(w io.Writer) error {
    payload := []byte{
        'J', 'F', 'I', 'F', 0x00,
        0x01, 0x02, // version 1.02
        0x00,       // units: 0 = aspect ratio only
        0x00, 0x01, // Xdensity
        0x00, 0x01, // Ydensity
        0x00, 0x00, // no thumbnail
    }
    return putSegment(w, mAPP0, payload)
}

// writeDQT writes one DQT segment covering every distinct quantization
// table actually referenced by comps, 8-bit precision only (spec.md S1:
// 8-bit precision, narrow profile).
func writeDQT(w io.Writer, comps []Component, tables [NumQuantTables]*QuantTable) error {
    var payload []byte
    written := map[int]bool{}
    for _, c := range comps {
        if written[c.QuantTableSlot] {
            continue
        }
        qt := tables[c.QuantTableSlot]
        if qt == nil {
            continue
        }
        written[c.QuantTableSlot] = true
        payload = append(payload, byte(c.QuantTableSlot))
        for z := 0; z < 64; z++ {
            payload = append(payload, byte(qt[zigzag[z]]))
        }
    }
    if len(payload) == 0 {
        return nil
    }
    return putSegment(w, mDQT, payload)
}

// componentIDs returns the SOF0/SOS component identifiers for a color
// space: 1..n for grayscale and YCbCr (the JFIF convention), and the
// literal bytes 'R','G','B' for an RGB stream -- the same id convention
// libjpeg uses so a decoder can tell the two 3-component layouts apart.
func componentIDs(cs ColorSpace, n int) []byte {
    if cs == RGB && n == 3 {
        return []byte{'R', 'G', 'B'}
    }
    ids := make([]byte, n)
    for i := range ids {
        ids[i] = byte(i + 1)
    }
    return ids
}

// writeSOF0 writes the baseline Start Of Frame segment (spec.md S1:
// baseline sequential only, so this is the only SOFn this package ever
// emits).
func writeSOF0(w io.Writer, width, height int, cs ColorSpace, comps []Component) error {
    ids := componentIDs(cs, len(comps))
    payload := make([]byte, 0, 6+3*len(comps))
    payload = append(payload, 8) // sample precision
    payload = append(payload, byte(height>>8), byte(height))
    payload = append(payload, byte(width>>8), byte(width))
    payload = append(payload, byte(len(comps)))
    for i, c := range comps {
        payload = append(payload, ids[i], byte(c.H<<4|c.V), byte(c.QuantTableSlot))
    }
    return putSegment(w, mSOF0, payload)
}

// writeDHT writes the standard Huffman table pairs this package always uses
// (luma DC/AC at destination 0, and for non-grayscale streams chroma DC/AC
// at destination 1); entropy.go's HuffmanEncoder never varies from the
// standard tables.
func writeDHT(w io.Writer, grayscale bool) error {
    var payload []byte
    payload = appendHuffmanDef(payload, 0, 0, stdDCLumaBits, stdDCLumaVals)
    payload = appendHuffmanDef(payload, 1, 0, stdACLumaBits, stdACLumaVals)
    if !grayscale {
        payload = appendHuffmanDef(payload, 0, 1, stdDCChromaBits, stdDCChromaVals)
        payload = appendHuffmanDef(payload, 1, 1, stdACChromaBits, stdACChromaVals)
    }
    return putSegment(w, mDHT, payload)
}

func appendHuffmanDef(payload []byte, class, dest int, bits [16]uint8, values []uint8) []byte {
    payload = append(payload, byte(class<<4|dest))
    payload = append(payload, bits[:]...)
    payload = append(payload, values...)
    return payload
}

// writeDRI writes the restart-interval marker. The interval the stream
// carries is counted in MCUs (the JPEG-conformant unit a third-party
// decoder expects); the caller converts its row-based restart cadence
// (spec.md S6's restart_in_rows) by multiplying by the scan's MCUs per
// row.
func writeDRI(w io.Writer, restartInterval int) error {
    if restartInterval <= 0 {
        return nil
    }
    payload := []byte{byte(restartInterval >> 8), byte(restartInterval)}
    return putSegment(w, mDRI, payload)
}

// RestartInRows implements spec.md S6's restart-interval derivation,
// including the width-vs-height bug spec.md S9 flags: MCU_rows_in_scan is
// computed from width unless corrected is set.
func RestartInRows(width, height, maxV int, corrected bool) int {
    dim := width
    if corrected {
        dim = height
    }
    mcuRowsInScan := ceilDiv(dim, maxV*8)
    nRestartSections := height / 64
    if nRestartSections <= 0 {
        return 0
    }
    return ceilDiv(mcuRowsInScan, nRestartSections)
}

// writeSOSHeader writes the Start Of Scan header (before the entropy-coded
// data itself, which the caller streams separately).
func writeSOSHeader(w io.Writer, comps []Component, blockTableSel []int) error {
    payload := make([]byte, 0, 4+2*len(comps))
    payload = append(payload, byte(len(comps)))
    for i, c := range comps {
        sel := 0
        if i < len(blockTableSel) {
            sel = blockTableSel[i]
        }
        payload = append(payload, byte(c.Index+1), byte(sel<<4|sel))
    }
    payload = append(payload, 0, 63, 0) // Ss, Se, Ah/Al -- fixed for baseline
    return putSegment(w, mSOS, payload)
}

// ParseAPP1Metadata decodes an APP1/EXIF segment using the same real
// dependency the teacher uses (jrm-1535-jpeg/app.go's exif.Parse call),
// for callers that want metadata out of a decoded stream. Not invoked
// automatically by Decompress -- pixel decoding never depends on it. No
// test in this package calls it.
func ParseAPP1Metadata(data []byte, offset, segLen int) (*exif.Desc, error) {
    ec := exif.Control{}
    d, err := exif.Parse(data, uint(offset), uint(segLen), &ec)
    if err != nil {
        return nil, forwardError("ParseAPP1Metadata", err)
    }
    return d, nil
}

// FrameHeader is what Parse's marker-reading pass collects before the
// caller builds a FrameGeometry and hands the scan bytes to a
// HuffmanDecoder.
type FrameHeader struct {
    Width, Height   int
    ColorSpace      ColorSpace
    Components      []Component
    QuantTables     [NumQuantTables]*QuantTable
    RestartInterval int   // DRI value, counted in MCUs
    ScanBlockSel    []int // per scan-component: 0 (luma tables) or 1 (chroma)
    ScanData        []byte
    SawJSCComment   bool
}

// Parse reads SOI..EOI, collecting everything a decoder needs: DQT/SOF0
// geometry, DRI's restart interval, and the destuffed entropy-coded scan
// bytes (restart markers stripped from the returned ScanData; their
// offsets into ScanData are the second result). Decompress does not use
// those offsets: the HuffmanDecoder resynchronizes DC prediction by
// counting iMCU rows against the DRI interval. Unknown/unsupported markers
// (APP1 EXIF included) are skipped over rather than rejected -- this is a
// decoder for streams this package itself produces, not a general JFIF
// validator.
func Parse(data []byte) (*FrameHeader, []int, error) {
    if len(data) < 4 {
        return nil, nil, invariant("Parse", "stream too short")
    }
    if binary.BigEndian.Uint16(data) != mSOI {
        return nil, nil, invariant("Parse", "missing SOI marker")
    }
    fh := &FrameHeader{}
    var restartOffsets []int
    pos := 2

    for pos+2 <= len(data) {
        marker := binary.BigEndian.Uint16(data[pos:])
        if marker == mEOI {
            return fh, restartOffsets, nil
        }
        if pos+4 > len(data) {
            break
        }
        segLen := int(binary.BigEndian.Uint16(data[pos+2:]))
        segStart := pos + 4
        segEnd := pos + 2 + segLen
        if segEnd > len(data) {
            return nil, nil, invariant("Parse", "truncated segment at offset %d", pos)
        }
        payload := data[segStart:segEnd]

        switch marker {
        case mCOM:
            if len(payload) >= 4 && bytes.Equal(payload[:4], jscComment[:]) {
                fh.SawJSCComment = true
            }
        case mDQT:
            parseDQTInto(payload, &fh.QuantTables)
        case mSOF0:
            if err := parseSOF0Into(payload, fh); err != nil {
                return nil, nil, err
            }
        case mDRI:
            if len(payload) >= 2 {
                fh.RestartInterval = int(payload[0])<<8 | int(payload[1])
            }
        case mSOS:
            nsComp := int(payload[0])
            fh.ScanBlockSel = make([]int, nsComp)
            for i := 0; i < nsComp; i++ {
                tdta := payload[1+i*2+1]
                fh.ScanBlockSel[i] = int(tdta >> 4)
            }
            scanStart := segEnd
            scanData, restarts, next := extractScanData(data, scanStart)
            fh.ScanData = scanData
            restartOffsets = restarts
            pos = next
            continue
        }
        pos = segEnd
    }
    return nil, nil, invariant("Parse", "missing EOI marker")
}

func parseDQTInto(payload []byte, tables *[NumQuantTables]*QuantTable) {
    off := 0
    for off < len(payload) {
        slot := int(payload[off]) & 0x0F
        off++
        if off+64 > len(payload) || slot >= NumQuantTables {
            return
        }
        qt := &QuantTable{}
        for z := 0; z < 64; z++ {
            qt[zigzag[z]] = uint16(payload[off+z])
        }
        tables[slot] = qt
        off += 64
    }
}

func parseSOF0Into(payload []byte, fh *FrameHeader) error {
    if len(payload) < 6 {
        return invariant("parseSOF0Into", "short SOF0 segment")
    }
    fh.Height = int(payload[1])<<8 | int(payload[2])
    fh.Width = int(payload[3])<<8 | int(payload[4])
    n := int(payload[5])
    if len(payload) < 6+3*n {
        return invariant("parseSOF0Into", "short SOF0 component list")
    }
    fh.Components = make([]Component, n)
    ids := make([]byte, n)
    for i := 0; i < n; i++ {
        off := 6 + i*3
        ids[i] = payload[off]
        fh.Components[i] = Component{
            Index:          i,
            H:              int(payload[off+1] >> 4),
            V:              int(payload[off+1] & 0x0F),
            QuantTableSlot: int(payload[off+2]),
            Needed:         true,
        }
    }
    switch {
    case n == 1:
        fh.ColorSpace = Grayscale
    case n == 3 && ids[0] == 'R' && ids[1] == 'G' && ids[2] == 'B':
        fh.ColorSpace = RGB
    default:
        fh.ColorSpace = YCbCr
    }
    return nil
}

// extractScanData copies entropy-coded bytes starting at start until the
// next real marker, destuffing 0xFF 0x00 and recording the byte offset
// (into the destuffed output) of every restart marker it swallows --
// grounded on other_examples/dd5d74b5_cocosip-go-dicom-codec__jpeg-baseline-decoder.go.go's
// decodeScan byte-stuffing loop.
func extractScanData(data []byte, start int) (scan []byte, restarts []int, next int) {
    i := start
    for i < len(data) {
        b := data[i]
        if b != 0xFF {
            scan = append(scan, b)
            i++
            continue
        }
        if i+1 >= len(data) {
            i++
            break
        }
        b2 := data[i+1]
        if b2 == 0x00 {
            scan = append(scan, 0xFF)
            i += 2
            continue
        }
        marker := uint16(0xFF00) | uint16(b2)
        if isRST(marker) {
            restarts = append(restarts, len(scan))
            i += 2
            continue
        }
        // real marker: stop here, scan data ends before it
        break
    }
    return scan, restarts, i
}
