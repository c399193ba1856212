package jsc

import (
    "bytes"
    "errors"
    "fmt"
    "math"
    "testing"
)

func compressToBytes(t *testing.T, img *Image, quality int, control *Control) []byte {
    t.Helper()
    var buf bytes.Buffer
    rc, err := Compress(&buf, img, quality, control)
    if rc != 0 {
        t.Fatalf("Compress = %d: %v", rc, err)
    }
    return buf.Bytes()
}

func rgbImage(width, height int, cs ColorSpace, hSub, vSub int, f func(x, y int) (byte, byte, byte)) *Image {
    img := &Image{
        Width:      width,
        Height:     height,
        ColorSpace: cs,
        Components: DefaultComponents(cs, hSub, vSub),
        Samples:    make([]byte, width*height*3),
    }
    for y := 0; y < height; y++ {
        for x := 0; x < width; x++ {
            r, g, b := f(x, y)
            img.Samples[(y*width+x)*3+0] = r
            img.Samples[(y*width+x)*3+1] = g
            img.Samples[(y*width+x)*3+2] = b
        }
    }
    return img
}

// 8x8 solid gray 128: the level shift cancels, every coefficient
// quantizes to zero, and the stream decodes back to uniform 128.
func TestRoundTripSolidGray(t *testing.T) {
    img := grayImage(8, 8, func(x, y int) byte { return 128 })
    jpeg := compressToBytes(t, img, 75, nil)

    fh, _, err := Parse(jpeg)
    if err != nil {
        t.Fatal(err)
    }
    if !fh.SawJSCComment {
        t.Error("missing JSC comment")
    }

    got, err := Decompress(jpeg, nil)
    if err != nil {
        t.Fatal(err)
    }
    for i, v := range got.Samples {
        if v != 128 {
            t.Fatalf("pixel %d = %d, want 128", i, v)
        }
    }
}

// Grayscale at quality 100 keeps a smooth ramp within tight error: the
// all-ones quantization table leaves only DCT rounding.
func TestRoundTripGrayQuality100(t *testing.T) {
    img := grayImage(16, 16, func(x, y int) byte { return byte(x*16 + y) })
    jpeg := compressToBytes(t, img, 100, nil)

    got, err := Decompress(jpeg, nil)
    if err != nil {
        t.Fatal(err)
    }

    var sumSq float64
    for i := range img.Samples {
        d := float64(got.Samples[i]) - float64(img.Samples[i])
        sumSq += d * d
    }
    rmse := math.Sqrt(sumSq / float64(len(img.Samples)))
    if rmse > 2.0 {
        t.Errorf("RMSE = %.3f, want <= 2.0", rmse)
    }
}

// 16x16 RGB gradient, 4:4:4, quality 90: small scan, small error.
func TestRoundTripRGBGradient(t *testing.T) {
    img := rgbImage(16, 16, YCbCr, 1, 1, func(x, y int) (byte, byte, byte) {
        return byte(x * 16), byte(y * 16), byte((x + y) * 8)
    })
    jpeg := compressToBytes(t, img, 90, nil)

    fh, _, err := Parse(jpeg)
    if err != nil {
        t.Fatal(err)
    }
    if len(fh.ScanData) > 512 {
        t.Errorf("scan is %d bytes, want <= 512", len(fh.ScanData))
    }

    got, err := Decompress(jpeg, nil)
    if err != nil {
        t.Fatal(err)
    }
    for i := range img.Samples {
        d := int(got.Samples[i]) - int(img.Samples[i])
        if d < -8 || d > 8 {
            t.Fatalf("sample %d: error %d exceeds 8", i, d)
        }
    }
}

// 9x9 RGB at 4:2:0 is exactly one MCU; the decoded top-left 9x9 region
// stays within +-3 of the flat input.
func TestRoundTripOddSizeSubsampled(t *testing.T) {
    img := rgbImage(9, 9, YCbCr, 2, 2, func(x, y int) (byte, byte, byte) {
        return 180, 100, 60
    })
    g, err := NewFrameGeometry(img.Width, img.Height, img.Components)
    if err != nil {
        t.Fatal(err)
    }
    if g.MCUsPerRow != 1 || g.TotalIMCURows != 1 {
        t.Fatalf("geometry %dx%d MCUs, want a single MCU", g.MCUsPerRow, g.TotalIMCURows)
    }

    jpeg := compressToBytes(t, img, 95, nil)
    got, err := Decompress(jpeg, nil)
    if err != nil {
        t.Fatal(err)
    }
    if got.Width != 9 || got.Height != 9 {
        t.Fatalf("decoded %dx%d, want 9x9", got.Width, got.Height)
    }
    for i := range img.Samples {
        d := int(got.Samples[i]) - int(img.Samples[i])
        if d < -3 || d > 3 {
            t.Fatalf("sample %d: got %d, want %d within 3", i, got.Samples[i], img.Samples[i])
        }
    }
}

// limitedWriter accepts up to cap bytes, then fails, modeling a fixed
// output buffer that fills up.
type limitedWriter struct {
    buf bytes.Buffer
    cap int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
    room := w.cap - w.buf.Len()
    if room >= len(p) {
        return w.buf.Write(p)
    }
    if room > 0 {
        w.buf.Write(p[:room])
    }
    return room, fmt.Errorf("output buffer full after %d bytes", w.cap)
}

// An undersized output buffer makes Compress return -1; a rerun with room
// produces a stream whose prefix equals everything the first attempt
// managed to write.
func TestCompressOutputBufferFull(t *testing.T) {
    img := grayImage(256, 256, func(x, y int) byte { return byte(x*7 + y*13) })

    lw := &limitedWriter{cap: 1024}
    rc, err := Compress(lw, img, 75, nil)
    if rc != -1 || !errors.Is(err, OutputBufferFull) {
        t.Fatalf("Compress = (%d, %v), want (-1, OutputBufferFull)", rc, err)
    }

    full := compressToBytes(t, img, 75, nil)
    if !bytes.HasPrefix(full, lw.buf.Bytes()) {
        t.Error("truncated output is not a prefix of the complete stream")
    }
}

// Invalid sampling factors fail during init with InvariantViolation and
// produce no output at all.
func TestCompressInvalidSamplingFactors(t *testing.T) {
    img := &Image{
        Width: 64, Height: 64,
        ColorSpace: YCbCr,
        Components: []Component{
            {Index: 0, H: 3, V: 1, QuantTableSlot: 0},
            {Index: 1, H: 2, V: 1, QuantTableSlot: 1},
            {Index: 2, H: 2, V: 1, QuantTableSlot: 1},
        },
        Samples: make([]byte, 64*64*3),
    }
    var buf bytes.Buffer
    rc, err := Compress(&buf, img, 75, nil)
    if rc != -1 || !errors.Is(err, InvariantViolation) {
        t.Fatalf("Compress = (%d, %v), want (-1, InvariantViolation)", rc, err)
    }
    if buf.Len() != 0 {
        t.Errorf("wrote %d bytes before failing validation", buf.Len())
    }
}

// A flat RGB stream at quality 100 with 4:4:4 survives bit-for-bit, and
// the JSC comment sits immediately after SOI.
func TestRoundTripLosslessFlatRGB(t *testing.T) {
    img := rgbImage(24, 24, RGB, 1, 1, func(x, y int) (byte, byte, byte) {
        return 10, 200, 60
    })
    jpeg := compressToBytes(t, img, 100, nil)

    want := []byte{0xFF, 0xD8, 0xFF, 0xFE, 0x00, 0x06, 'J', 'S', 'C', 0}
    if !bytes.HasPrefix(jpeg, want) {
        t.Fatalf("stream does not start with SOI + JSC comment: % x", jpeg[:12])
    }

    got, err := Decompress(jpeg, nil)
    if err != nil {
        t.Fatal(err)
    }
    if got.ColorSpace != RGB {
        t.Errorf("decoded color space %v, want RGB", got.ColorSpace)
    }
    if !bytes.Equal(got.Samples, img.Samples) {
        t.Error("flat RGB at quality 100 did not round-trip bit-for-bit")
    }
}

// Suspension resumability end to end: a tiny entropy buffer forces the
// suspension path constantly, and the emitted stream must be identical.
func TestCompressSuspensionProducesIdenticalStream(t *testing.T) {
    img := grayImage(32, 32, func(x, y int) byte { return byte(x*11 + y*5) })

    smooth := compressToBytes(t, img, 85, nil)
    tight := compressToBytes(t, img, 85, &Control{EncodeBufferSize: 64})

    if !bytes.Equal(smooth, tight) {
        t.Error("stream differs when the entropy buffer forces suspensions")
    }
}

// Restart markers: a tall grayscale image gets DRI plus RST markers and
// still decodes correctly.
func TestRoundTripWithRestarts(t *testing.T) {
    img := grayImage(256, 256, func(x, y int) byte { return byte(64 + x/4 + y/4) })
    jpeg := compressToBytes(t, img, 90, nil)

    fh, restarts, err := Parse(jpeg)
    if err != nil {
        t.Fatal(err)
    }
    if fh.RestartInterval == 0 {
        t.Error("expected a DRI restart interval on a 256-row image")
    }
    if len(restarts) == 0 {
        t.Error("expected RST markers in the scan")
    }

    got, err := Decompress(jpeg, nil)
    if err != nil {
        t.Fatal(err)
    }
    for i := range img.Samples {
        d := int(got.Samples[i]) - int(img.Samples[i])
        if d < -10 || d > 10 {
            t.Fatalf("sample %d: error %d exceeds 10", i, d)
        }
    }
}

// 4:2:0 on a luma-only ramp: chroma stays flat so subsampling loses
// nothing structural, and the decode tracks the ramp closely.
func TestRoundTripSubsampledRamp(t *testing.T) {
    img := rgbImage(32, 32, YCbCr, 2, 2, func(x, y int) (byte, byte, byte) {
        v := byte(32 + x*4)
        return v, v, v
    })
    jpeg := compressToBytes(t, img, 90, nil)

    got, err := Decompress(jpeg, nil)
    if err != nil {
        t.Fatal(err)
    }
    for i := range img.Samples {
        d := int(got.Samples[i]) - int(img.Samples[i])
        if d < -8 || d > 8 {
            t.Fatalf("sample %d: error %d exceeds 8", i, d)
        }
    }
}

// Any pass mode other than PassThru is rejected at start-of-pass by both
// entry points.
func TestRejectsUnsupportedPassMode(t *testing.T) {
    img := grayImage(8, 8, func(x, y int) byte { return 128 })
    good := compressToBytes(t, img, 75, nil)

    bad := &Control{Mode: PassMode(2)}
    var buf bytes.Buffer
    if rc, err := Compress(&buf, img, 75, bad); rc != -1 || !errors.Is(err, InvariantViolation) {
        t.Errorf("Compress = (%d, %v), want (-1, InvariantViolation)", rc, err)
    }
    if _, err := Decompress(good, bad); !errors.Is(err, InvariantViolation) {
        t.Errorf("Decompress err = %v, want InvariantViolation", err)
    }
}

// The corrected restart formula changes the DRI cadence on a non-square
// image while both variants still decode.
func TestCorrectedRestartFormula(t *testing.T) {
    img := grayImage(128, 256, func(x, y int) byte { return byte(x + y) })

    legacy := compressToBytes(t, img, 85, nil)
    corrected := compressToBytes(t, img, 85, &Control{CorrectedRestartFormula: true})

    fhL, _, err := Parse(legacy)
    if err != nil {
        t.Fatal(err)
    }
    fhC, _, err := Parse(corrected)
    if err != nil {
        t.Fatal(err)
    }
    if fhL.RestartInterval == fhC.RestartInterval {
        t.Errorf("restart interval %d unchanged by the corrected formula", fhL.RestartInterval)
    }

    for _, jpeg := range [][]byte{legacy, corrected} {
        if _, err := Decompress(jpeg, nil); err != nil {
            t.Fatal(err)
        }
    }
}
