package jsc

import "math"

// aan is the fixed Arai-Agui-Nakajima scale vector from spec.md S3. Both
// the divisor table (fdct.go) and the multiplier table (idct.go) fold these
// into the quantization step so the inner DCT loop never has to touch a
// per-coefficient division.
var aan = [8]float32{
    1.0, 1.387039845, 1.306562965, 1.175875602,
    1.0, 0.785694958, 0.541196100, 0.275899379,
}

// dctC(k) is the standard DCT-II/III orthonormal weight: 1/sqrt(2) at k==0,
// 1 otherwise.
func dctC(k int) float64 {
    if k == 0 {
        return 1.0 / math.Sqrt2
    }
    return 1.0
}

// fwdProd and invRatio are precomputed once: fwdProd(k) = aan(k)*C(k), used
// by ForwardDCT8x8; invRatio(k) = C(k)/aan(k), its algebraic inverse, used
// by InverseDCT8x8. See DESIGN.md's "Forward/inverse DCT scaling note" for
// the derivation: this choice of kernel makes forward_DCT's raw output
// collapse to round(trueDCT/qtbl) under the spec's divisor formula when
// S==8, exactly the textbook JPEG quantization step, while staying the
// precise algebraic inverse of the multiplier table on the decode side.
var fwdProd [8]float64
var invRatio [8]float64

// cosTable[x][u] = cos((2x+1)*u*pi/16), shared by both kernels so neither
// calls math.Cos in its inner loop.
var cosTable [8][8]float64

func init() {
    for k := 0; k < 8; k++ {
        c := dctC(k)
        fwdProd[k] = float64(aan[k]) * c
        invRatio[k] = c / float64(aan[k])
    }
    for x := 0; x < 8; x++ {
        for u := 0; u < 8; u++ {
            cosTable[x][u] = math.Cos(math.Pi * float64(2*x+1) * float64(u) / 16.0)
        }
    }
}

// ForwardDCT8x8 runs a direct-formula float forward DCT, scaled to the AA&N
// convention, over an 8x8 block of samples (already level-shifted by the caller is NOT required: this
// function performs the level shift itself, subtracting 128 from every
// input sample, per spec.md S4.1). block[y][x] is the input in row-major
// order; out[u][v] (flattened row-major, u is the row/vertical frequency)
// is the raw, unscaled-by-quantization output that fdct.go's forward_DCT
// multiplies by the divisor table.
func ForwardDCT8x8(block [8][8]uint8, out *[64]float64) {
    var shifted [8][8]float64
    for y := 0; y < 8; y++ {
        for x := 0; x < 8; x++ {
            shifted[y][x] = float64(block[y][x]) - 128.0
        }
    }

    for u := 0; u < 8; u++ {
        for v := 0; v < 8; v++ {
            var sum float64
            for y := 0; y < 8; y++ {
                for x := 0; x < 8; x++ {
                    sum += shifted[y][x] * cosTable[y][u] * cosTable[x][v]
                }
            }
            out[u*8+v] = 2.0 * fwdProd[u] * fwdProd[v] * sum
        }
    }
}

// InverseDCT8x8 is the algebraic inverse of ForwardDCT8x8 under the
// multiplier-table convention in idct.go: in[u][v] (flattened row-major) is
// the dequantized-and-scaled coefficient (coefficient * multiplier[u][v]);
// out[y][x] is the reconstructed, level-shifted-back, clamped 8-bit sample.
func InverseDCT8x8(in *[64]float64, out *[8][8]uint8) {
    for y := 0; y < 8; y++ {
        for x := 0; x < 8; x++ {
            var sum float64
            for u := 0; u < 8; u++ {
                for v := 0; v < 8; v++ {
                    sum += invRatio[u] * invRatio[v] * in[u*8+v] * cosTable[y][u] * cosTable[x][v]
                }
            }
            val := int(math.Round(2.0*sum)) + 128
            if val < 0 {
                val = 0
            } else if val > 255 {
                val = 255
            }
            out[y][x] = uint8(val)
        }
    }
}
