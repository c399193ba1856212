package jsc

// InverseDCTManager builds per-component multiplier tables at start-of-pass
// and dispatches the float IDCT kernel per component (spec.md S4.5),
// symmetric to ForwardDCTManager.
type InverseDCTManager struct {
    multiplier [][]float32 // one 64-entry table per component, arena-owned
    hasTable   []bool
}

// NewInverseDCTManager builds a multiplier table for every component that
// is Needed and has qtbl[slot] present, allocated from the arena like the
// encoder's divisor tables. Components without a saved quantization table
// yet keep their zero-initialized multiplier table: spec.md S3 defines "a
// still-zero entry" as meaning "no data yet for this component -- decode
// as neutral gray", so HasTable(i)==false components decode their blocks
// to a flat mid-gray rather than erroring.
func NewInverseDCTManager(arena *Arena, comps []Component, quant [NumQuantTables]*QuantTable) (*InverseDCTManager, error) {
    m := &InverseDCTManager{
        multiplier: make([][]float32, len(comps)),
        hasTable:   make([]bool, len(comps)),
    }
    for i := range comps {
        tbl, err := arena.GetFloats(64)
        if err != nil {
            return nil, forwardError("NewInverseDCTManager", err)
        }
        m.multiplier[i] = tbl
    }
    for i, c := range comps {
        if !c.Needed {
            continue
        }
        if c.QuantTableSlot < 0 || c.QuantTableSlot >= NumQuantTables {
            continue
        }
        qt := quant[c.QuantTableSlot]
        if qt == nil {
            continue
        }
        for row := 0; row < 8; row++ {
            for col := 0; col < 8; col++ {
                k := row*8 + col
                m.multiplier[i][k] = float32(qt[k]) * aan[row] * aan[col] * 0.125
            }
        }
        m.hasTable[i] = true
    }
    return m, nil
}

// HasTable reports whether component i decodes against a real multiplier
// table, or falls back to neutral gray.
func (m *InverseDCTManager) HasTable(i int) bool { return m.hasTable[i] }

// InverseDCT dequantizes one coefficient block for component i and runs
// the float IDCT kernel, writing 64 reconstructed samples into out
// (row-major, 8x8). If the component has no multiplier table yet, out is
// filled with flat 128 (neutral gray) regardless of coef's contents.
func (m *InverseDCTManager) InverseDCT(compIndex int, coef *Block, out *[8][8]uint8) {
    if !m.hasTable[compIndex] {
        for y := 0; y < 8; y++ {
            for x := 0; x < 8; x++ {
                out[y][x] = 128
            }
        }
        return
    }

    mult := m.multiplier[compIndex]
    var scaled [64]float64
    for k := 0; k < 64; k++ {
        scaled[k] = float64(coef[k]) * float64(mult[k])
    }
    InverseDCT8x8(&scaled, out)
}
