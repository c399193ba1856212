package jsc

// QuantTable is a 64-entry quantization table in natural (row-major) order,
// indexed by the component's QuantTableSlot.
type QuantTable [64]uint16

const NumQuantTables = 4

// ForwardDCTManager prepares per-component divisor tables at start-of-pass
// and drives the float AA&N kernel plus quantization for forward_DCT
// (spec.md S4.1).
type ForwardDCTManager struct {
    geometry *FrameGeometry
    divisor  [][]float32 // one 64-entry table per component, arena-owned
}

// NewForwardDCTManager validates every component's quantization table slot
// and fills the divisor tables, allocated from the arena like every other
// pass-lifetime buffer. An out-of-range slot or a missing table is an
// InvariantViolation per spec.md S4.1/S7, not something to degrade
// gracefully from. The DCT size is fixed at 8 (Component has no DCT size
// field), so there is no size to check.
func NewForwardDCTManager(arena *Arena, geometry *FrameGeometry, comps []Component, quant [NumQuantTables]*QuantTable) (*ForwardDCTManager, error) {
    m := &ForwardDCTManager{geometry: geometry, divisor: make([][]float32, len(comps))}
    for i, c := range comps {
        if c.QuantTableSlot < 0 || c.QuantTableSlot >= NumQuantTables {
            return nil, invariant("NewForwardDCTManager", "component %d: quant table slot %d out of range",
                c.Index, c.QuantTableSlot)
        }
        qt := quant[c.QuantTableSlot]
        if qt == nil {
            return nil, invariant("NewForwardDCTManager", "component %d: quant table %d not present",
                c.Index, c.QuantTableSlot)
        }

        tbl, err := arena.GetFloats(64)
        if err != nil {
            return nil, forwardError("NewForwardDCTManager", err)
        }

        s := float32(8.0)
        if c.Needed {
            s = 16.0
        }
        for row := 0; row < 8; row++ {
            for col := 0; col < 8; col++ {
                k := row*8 + col
                tbl[k] = 1.0 / (float32(qt[k]) * aan[row] * aan[col] * s)
            }
        }
        m.divisor[i] = tbl
    }
    return m, nil
}

// Divisor returns the 64-entry divisor table for component i, mostly for
// tests that check spec.md S8's "Divisor correctness" invariant.
func (m *ForwardDCTManager) Divisor(i int) []float32 { return m.divisor[i] }

// roundBias implements spec.md S4.1's biased rounding: trunc(temp+16384.5)
// - 16384. Adding and subtracting 16384 before truncating towards zero
// makes truncation behave as round-half-up consistently for both signs,
// since |coefficient| for 8-bit input data stays far below 16384.
func roundBias(temp float64) int32 {
    return int32(temp+16384.5) - 16384
}

// ForwardDCT runs forward_DCT over num_blocks horizontal 8x8 blocks
// starting at (start_row, start_col) in sample_data, advancing start_col by
// 8 each step, and stores the quantized result into coefBlocks[0:num_blocks]
// (spec.md S4.1).
func (m *ForwardDCTManager) ForwardDCT(compIndex int, sampleData SampleArray, startRow, startCol, numBlocks int, coefBlocks []Block) {
    divisor := m.divisor[compIndex]
    var in [8][8]uint8
    var raw [64]float64

    for bi := 0; bi < numBlocks; bi++ {
        for y := 0; y < 8; y++ {
            row := sampleData.Row(startRow + y)
            copy(in[y][:], row[startCol:startCol+8])
        }

        ForwardDCT8x8(in, &raw)

        blk := &coefBlocks[bi]
        for k := 0; k < 64; k++ {
            blk[k] = int16(roundBias(raw[k] * float64(divisor[k])))
        }

        startCol += 8
    }
}
