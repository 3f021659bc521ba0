package represent

import (
	"errors"
	"math"
	"testing"

	"github.com/sentencelab/simcl/encoder"
)

func TestParsePoolerTypeAcceptsClosedSet(t *testing.T) {
	for name, want := range map[string]PoolerType{
		"cls":               PoolerCLS,
		"cls_before_pooler": PoolerCLSBeforeProjection,
		"avg":               PoolerAvg,
		"avg_top2":          PoolerAvgTop2,
		"avg_first_last":    PoolerAvgFirstLast,
	} {
		got, err := ParsePoolerType(name)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
		}
		if got != want {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
}

func TestParsePoolerTypeRejectsUnknown(t *testing.T) {
	if _, err := ParsePoolerType("max"); !errors.Is(err, ErrUnknownPooler) {
		t.Errorf("expected ErrUnknownPooler, got %v", err)
	}
}

func handcraftedOutput() *encoder.Output {
	// Two examples, three positions, two dimensions. The second position of
	// example 1 is padding.
	first := [][][]float64{
		{{1, 0}, {0, 1}, {1, 1}},
		{{2, 2}, {9, 9}, {0, 2}},
	}
	last := [][][]float64{
		{{3, 0}, {0, 3}, {3, 3}},
		{{4, 4}, {7, 7}, {0, 4}},
	}
	return &encoder.Output{
		LastHiddenState: last,
		HiddenStates:    [][][][]float64{first, last},
	}
}

var handcraftedMask = [][]int64{
	{1, 1, 1},
	{1, 0, 1},
}

func TestPoolCLSTakesFirstPosition(t *testing.T) {
	vecs, err := poolCLS(handcraftedMask, handcraftedOutput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if vecs[0][0] != 3 || vecs[0][1] != 0 {
		t.Errorf("expected first-position vector {3,0}, got %v", vecs[0])
	}
	if vecs[1][0] != 4 || vecs[1][1] != 4 {
		t.Errorf("expected first-position vector {4,4}, got %v", vecs[1])
	}
}

func TestPoolAvgIgnoresMaskedPositions(t *testing.T) {
	vecs, err := poolAvg(handcraftedMask, handcraftedOutput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Example 0: mean of {3,0},{0,3},{3,3} = {2,2}.
	if math.Abs(vecs[0][0]-2) > 1e-12 || math.Abs(vecs[0][1]-2) > 1e-12 {
		t.Errorf("expected {2,2}, got %v", vecs[0])
	}
	// Example 1: padded middle position excluded, mean of {4,4},{0,4} = {2,4}.
	if math.Abs(vecs[1][0]-2) > 1e-12 || math.Abs(vecs[1][1]-4) > 1e-12 {
		t.Errorf("expected {2,4}, got %v", vecs[1])
	}
}

func TestPoolAvgFirstLastAveragesLayers(t *testing.T) {
	pool, err := resolvePooler(PoolerAvgFirstLast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vecs, err := pool(handcraftedMask, handcraftedOutput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Example 0 layer average per position: {2,0},{0,2},{2,2}; mean {4/3, 4/3}.
	want := 4.0 / 3.0
	if math.Abs(vecs[0][0]-want) > 1e-12 || math.Abs(vecs[0][1]-want) > 1e-12 {
		t.Errorf("expected {%g,%g}, got %v", want, want, vecs[0])
	}
}

func TestPoolAvgTop2RequiresHiddenStates(t *testing.T) {
	pool, err := resolvePooler(PoolerAvgTop2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := &encoder.Output{LastHiddenState: handcraftedOutput().LastHiddenState}
	if _, err := pool(handcraftedMask, out); !errors.Is(err, ErrMissingHiddenStates) {
		t.Errorf("expected ErrMissingHiddenStates, got %v", err)
	}
}

func TestMaskedMeanRejectsAllZeroMask(t *testing.T) {
	out := handcraftedOutput()
	mask := [][]int64{{1, 1, 1}, {0, 0, 0}}

	if _, err := poolAvg(mask, out); err == nil {
		t.Error("expected error for all-zero attention mask")
	}
}
