package atu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdTranslatorLayout(t *testing.T) {
	layers := []ThresholdLayer{
		{PE: 2, NF: 2, NumTH: 3, TA: 16}, // 12 2-byte thresholds
		{PE: 1, NF: 4, NumTH: 1, TA: 24}, // 4 3-byte thresholds
	}

	tt, err := NewThresholdTranslator(8, layers, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, tt.ElementSize(0))
	assert.Equal(t, 4, tt.BlockElements(0))
	assert.Equal(t, 0, tt.StartBlock(0))
	assert.Equal(t, 3, tt.BlockCount(0))

	assert.Equal(t, 3, tt.ElementSize(1))
	assert.Equal(t, 2, tt.BlockElements(1))
	assert.Equal(t, 3, tt.StartBlock(1))
	assert.Equal(t, 2, tt.BlockCount(1))

	assert.Equal(t, 5, tt.EndBlock())
}

func TestThresholdTranslatorRowMajor(t *testing.T) {
	tt, err := NewThresholdTranslator(64, []ThresholdLayer{
		{PE: 2, NF: 2, NumTH: 2, TA: 8},
	}, 0)
	require.NoError(t, err)

	// pe slowest, then nf, then th.
	var got []int
	for pe := 0; pe < 2; pe++ {
		for nf := 0; nf < 2; nf++ {
			for th := 0; th < 2; th++ {
				_, offset, err := tt.IndexToBlock(0, pe, nf, th)
				require.NoError(t, err)
				got = append(got, offset)
			}
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, got)
}

func TestThresholdTranslatorCoverage(t *testing.T) {
	layers := []ThresholdLayer{
		{PE: 2, NF: 2, NumTH: 3, TA: 16},
		{PE: 1, NF: 4, NumTH: 1, TA: 24},
	}

	tt, err := NewThresholdTranslator(8, layers, 0)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for layer, l := range layers {
		start := tt.StartBlock(layer)
		end := start + tt.BlockCount(layer)
		for pe := 0; pe < l.PE; pe++ {
			for nf := 0; nf < l.NF; nf++ {
				for th := 0; th < l.NumTH; th++ {
					block, offset, err := tt.IndexToBlock(layer, pe, nf, th)
					require.NoError(t, err)

					assert.GreaterOrEqual(t, block, start)
					assert.Less(t, block, end)
					assert.LessOrEqual(t, offset+tt.ElementSize(layer), 8)

					loc := fmt.Sprintf("%d:%d", block, offset)
					assert.False(t, seen[loc], "location %s mapped twice", loc)
					seen[loc] = true
				}
			}
		}
	}
}

func TestThresholdTranslatorBounds(t *testing.T) {
	tt, err := NewThresholdTranslator(16, []ThresholdLayer{
		{PE: 2, NF: 3, NumTH: 2, TA: 8},
	}, 0)
	require.NoError(t, err)

	for _, tc := range []struct {
		name               string
		layer, pe, nf, th int
	}{
		{"layer high", 1, 0, 0, 0},
		{"pe high", 0, 2, 0, 0},
		{"nf high", 0, 0, 3, 0},
		{"th high", 0, 0, 0, 2},
		{"th negative", 0, 0, 0, -1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := tt.IndexToBlock(tc.layer, tc.pe, tc.nf, tc.th)
			assert.ErrorIs(t, err, ErrIndexOutOfRange)
		})
	}
}
