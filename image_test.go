package jsc

import (
    "errors"
    "testing"
)

func TestFrameGeometry(t *testing.T) {
    tests := []struct {
        name          string
        width, height int
        comps         []Component
        mcusPerRow    int
        totalIMCURows int
        widthInBlocks []int
        lastColWidth  []int
        lastRowHeight []int
        blocksInMCU   int
    }{
        {
            name:  "16x16 4:4:4",
            width: 16, height: 16,
            comps:         DefaultComponents(YCbCr, 1, 1),
            mcusPerRow:    2,
            totalIMCURows: 2,
            widthInBlocks: []int{2, 2, 2},
            lastColWidth:  []int{1, 1, 1},
            lastRowHeight: []int{1, 1, 1},
            blocksInMCU:   3,
        },
        {
            name:  "9x9 4:2:0",
            width: 9, height: 9,
            comps:         DefaultComponents(YCbCr, 2, 2),
            mcusPerRow:    1,
            totalIMCURows: 1,
            widthInBlocks: []int{2, 1, 1},
            lastColWidth:  []int{2, 1, 1},
            lastRowHeight: []int{2, 1, 1},
            blocksInMCU:   6,
        },
        {
            name:  "17x17 4:2:0",
            width: 17, height: 17,
            comps:         DefaultComponents(YCbCr, 2, 2),
            mcusPerRow:    2,
            totalIMCURows: 2,
            widthInBlocks: []int{3, 2, 2},
            lastColWidth:  []int{1, 1, 1},
            lastRowHeight: []int{1, 1, 1},
            blocksInMCU:   6,
        },
        {
            name:  "33x8 horizontal 4:2 factors",
            width: 33, height: 8,
            comps: []Component{
                {Index: 0, H: 4, V: 1, QuantTableSlot: 0},
                {Index: 1, H: 2, V: 1, QuantTableSlot: 1},
            },
            mcusPerRow:    2,
            totalIMCURows: 1,
            widthInBlocks: []int{5, 3},
            lastColWidth:  []int{1, 1},
            lastRowHeight: []int{1, 1},
            blocksInMCU:   6,
        },
        {
            name:  "8x8 grayscale",
            width: 8, height: 8,
            comps:         DefaultComponents(Grayscale, 1, 1),
            mcusPerRow:    1,
            totalIMCURows: 1,
            widthInBlocks: []int{1},
            lastColWidth:  []int{1},
            lastRowHeight: []int{1},
            blocksInMCU:   1,
        },
    }

    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            g, err := NewFrameGeometry(tc.width, tc.height, tc.comps)
            if err != nil {
                t.Fatalf("NewFrameGeometry: %v", err)
            }
            if g.MCUsPerRow != tc.mcusPerRow {
                t.Errorf("MCUsPerRow = %d, want %d", g.MCUsPerRow, tc.mcusPerRow)
            }
            if g.TotalIMCURows != tc.totalIMCURows {
                t.Errorf("TotalIMCURows = %d, want %d", g.TotalIMCURows, tc.totalIMCURows)
            }
            if g.BlocksInMCU != tc.blocksInMCU {
                t.Errorf("BlocksInMCU = %d, want %d", g.BlocksInMCU, tc.blocksInMCU)
            }
            for i := range tc.comps {
                if g.WidthInBlocks[i] != tc.widthInBlocks[i] {
                    t.Errorf("WidthInBlocks[%d] = %d, want %d", i, g.WidthInBlocks[i], tc.widthInBlocks[i])
                }
                if g.LastColWidth[i] != tc.lastColWidth[i] {
                    t.Errorf("LastColWidth[%d] = %d, want %d", i, g.LastColWidth[i], tc.lastColWidth[i])
                }
                if g.LastRowHeight[i] != tc.lastRowHeight[i] {
                    t.Errorf("LastRowHeight[%d] = %d, want %d", i, g.LastRowHeight[i], tc.lastRowHeight[i])
                }
            }
        })
    }
}

func TestFrameGeometryInvalidSamplingFactors(t *testing.T) {
    // maxH becomes 3 and the 2x1 component does not divide it.
    comps := []Component{
        {Index: 0, H: 3, V: 1, QuantTableSlot: 0},
        {Index: 1, H: 2, V: 1, QuantTableSlot: 1},
    }
    _, err := NewFrameGeometry(64, 64, comps)
    if err == nil {
        t.Fatal("expected InvalidSamplingFactors, got nil")
    }
    if !errors.Is(err, InvariantViolation) {
        t.Errorf("error %v is not an InvariantViolation", err)
    }
}

func TestFrameGeometryRejectsBadInput(t *testing.T) {
    tests := []struct {
        name          string
        width, height int
        comps         []Component
    }{
        {"zero width", 0, 8, DefaultComponents(Grayscale, 1, 1)},
        {"no components", 8, 8, nil},
        {"sampling factor 5", 8, 8, []Component{{H: 5, V: 1}}},
        {"too many blocks per MCU", 8, 8, []Component{
            {Index: 0, H: 4, V: 2, QuantTableSlot: 0},
            {Index: 1, H: 2, V: 2, QuantTableSlot: 1},
        }},
    }
    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            if _, err := NewFrameGeometry(tc.width, tc.height, tc.comps); !errors.Is(err, InvariantViolation) {
                t.Errorf("got %v, want InvariantViolation", err)
            }
        })
    }
}
