package represent

import (
	"math"
	"testing"
)

func TestProjectionHeadOutputBounded(t *testing.T) {
	head, err := NewProjectionHead(8, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := head.Apply([]float64{1, -2, 3, -4, 5, -6, 7, -8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 8 {
		t.Fatalf("expected dimension 8, got %d", len(out))
	}
	for i, v := range out {
		if math.Abs(v) >= 1 {
			t.Errorf("dimension %d: tanh output %g out of (-1, 1)", i, v)
		}
	}
}

func TestProjectionHeadDeterministicForSeed(t *testing.T) {
	a, _ := NewProjectionHead(4, 11)
	b, _ := NewProjectionHead(4, 11)

	vec := []float64{0.5, -0.5, 1, -1}
	outA, _ := a.Apply(vec)
	outB, _ := b.Apply(vec)

	for i := range outA {
		if outA[i] != outB[i] {
			t.Fatalf("same-seed heads disagree at dimension %d", i)
		}
	}
}

func TestProjectionHeadDimensionMismatch(t *testing.T) {
	head, _ := NewProjectionHead(4, 1)
	if _, err := head.Apply([]float64{1, 2}); err == nil {
		t.Error("expected error for wrong input dimension")
	}
}

func TestNewProjectionHeadValidation(t *testing.T) {
	if _, err := NewProjectionHead(0, 1); err == nil {
		t.Error("expected error for non-positive hidden size")
	}
}
