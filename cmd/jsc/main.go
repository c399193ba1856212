// Command jsc compresses raw interleaved pixel data to baseline JPEG and
// decompresses such streams back to raw pixels, using the bounded-memory
// pipeline in the jsc package. Compression input is a flat binary file of
// width*height*components bytes; decompression output is the same layout.
package main

import (
    "flag"
    "fmt"
    "log"
    "os"
    "strings"

    "gopkg.in/natefinch/lumberjack.v2"

    "github.com/abcouwer/jsc"
)

func main() {
    var in, out, logfile, space, sub string
    var quality int
    var decompress, verbose, correctedRestart bool
    var width, height int

    flag.StringVar(&in, "i", "", "Input file path")
    flag.StringVar(&out, "o", "", "Output file path")
    flag.BoolVar(&decompress, "d", false, "Decompress a JPEG stream instead of compressing")
    flag.IntVar(&quality, "q", 75, "JPEG quality, 1..100")
    flag.IntVar(&width, "width", 0, "Raw input width in pixels (compress only)")
    flag.IntVar(&height, "height", 0, "Raw input height in pixels (compress only)")
    flag.StringVar(&space, "colorspace", "ycbcr", "Encoding color space: gray, ycbcr or rgb (compress only)")
    flag.StringVar(&sub, "sub", "2x2", "Luma sampling factors for ycbcr, e.g. 1x1 (4:4:4) or 2x2 (4:2:0)")
    flag.BoolVar(&verbose, "v", false, "Trace pipeline progress and embed a diagnostics comment")
    flag.BoolVar(&correctedRestart, "corrected-restart", false, "Use the height-based restart interval formula")
    flag.StringVar(&logfile, "logfile", "", "Append diagnostics to a rotating log file instead of stderr")
    flag.Parse()

    if in == "" || out == "" {
        fmt.Fprintf(os.Stderr, "Input and output file paths must be specified\n")
        os.Exit(1)
    }

    log.SetPrefix("jsc: ")
    if logfile != "" {
        log.SetOutput(&lumberjack.Logger{
            Filename:   logfile,
            MaxSize:    10, // megabytes
            MaxBackups: 3,
        })
    }

    control := &jsc.Control{
        Verbose:                 verbose,
        CorrectedRestartFormula: correctedRestart,
    }
    if verbose {
        control.Trace = log.Writer()
    }

    data, err := os.ReadFile(in)
    if err != nil {
        fmt.Fprintf(os.Stderr, "cant read input %s: %s\n", in, err)
        os.Exit(1)
    }

    if decompress {
        runDecompress(data, out, control)
        return
    }
    runCompress(data, out, width, height, quality, space, sub, control)
}

func runCompress(data []byte, out string, width, height, quality int, space, sub string, control *jsc.Control) {
    if width <= 0 || height <= 0 {
        fmt.Fprintf(os.Stderr, "-width and -height are required to compress raw input\n")
        os.Exit(1)
    }

    var cs jsc.ColorSpace
    switch strings.ToLower(space) {
    case "gray", "grayscale":
        cs = jsc.Grayscale
    case "rgb":
        cs = jsc.RGB
    case "ycbcr":
        cs = jsc.YCbCr
    default:
        fmt.Fprintf(os.Stderr, "unknown color space %q\n", space)
        os.Exit(1)
    }

    hSub, vSub, err := parseSub(sub)
    if err != nil {
        fmt.Fprintf(os.Stderr, "%s\n", err)
        os.Exit(1)
    }

    comps := jsc.DefaultComponents(cs, hSub, vSub)
    want := width * height * len(comps)
    if len(data) != want {
        fmt.Fprintf(os.Stderr, "input is %d bytes, want %d for %dx%dx%d\n",
            len(data), want, width, height, len(comps))
        os.Exit(1)
    }

    img := &jsc.Image{
        Width:      width,
        Height:     height,
        ColorSpace: cs,
        Components: comps,
        Samples:    data,
    }

    output, err := os.Create(out)
    if err != nil {
        fmt.Fprintf(os.Stderr, "cant open output %s: %s\n", out, err)
        os.Exit(1)
    }
    defer output.Close()

    rc, err := jsc.Compress(output, img, quality, control)
    if rc != 0 {
        fmt.Fprintf(os.Stderr, "compress failed (%d): %s\n", rc, err)
        os.Exit(1)
    }
    log.Printf("compressed %dx%d %s image at quality %d to %s", width, height, space, quality, out)
}

func runDecompress(data []byte, out string, control *jsc.Control) {
    img, err := jsc.Decompress(data, control)
    if err != nil {
        fmt.Fprintf(os.Stderr, "decompress failed: %s\n", err)
        os.Exit(1)
    }
    if err := os.WriteFile(out, img.Samples, 0644); err != nil {
        fmt.Fprintf(os.Stderr, "cant write output %s: %s\n", out, err)
        os.Exit(1)
    }
    log.Printf("decompressed %dx%dx%d raw pixels to %s",
        img.Width, img.Height, len(img.Components), out)
}

func parseSub(s string) (int, int, error) {
    var h, v int
    if _, err := fmt.Sscanf(s, "%dx%d", &h, &v); err != nil {
        return 0, 0, fmt.Errorf("bad -sub %q, want like 2x2", s)
    }
    if h < 1 || h > 4 || v < 1 || v > 4 {
        return 0, 0, fmt.Errorf("bad -sub %q, factors must be 1..4", s)
    }
    return h, v, nil
}
