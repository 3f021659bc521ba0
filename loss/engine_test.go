package loss

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/sentencelab/simcl/distributed"
)

func sentenceOnlyEngine(t *testing.T, temp float64) *Engine {
	t.Helper()
	e, err := NewEngine(Config{Temperature: temp, SentenceEnabled: true}, nil)
	if err != nil {
		t.Fatalf("cannot build engine: %v", err)
	}
	return e
}

func tokenOnlyEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(Config{Temperature: 0.05, TokenEnabled: true, TokenCoeff: 0.1}, nil)
	if err != nil {
		t.Fatalf("cannot build engine: %v", err)
	}
	return e
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid sentence", Config{Temperature: 0.05, SentenceEnabled: true}, true},
		{"valid both", Config{Temperature: 0.05, SentenceEnabled: true, TokenEnabled: true, TokenCoeff: 0.1}, true},
		{"zero temperature", Config{Temperature: 0, SentenceEnabled: true}, false},
		{"negative temperature", Config{Temperature: -1, SentenceEnabled: true}, false},
		{"no objective", Config{Temperature: 0.05}, false},
		{"negative coefficient", Config{Temperature: 0.05, TokenEnabled: true, TokenCoeff: -0.1}, false},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestSentenceLossUniformEmbeddingsIsLogN(t *testing.T) {
	e := sentenceOnlyEngine(t, 0.05)

	same := [][]float64{{1, 0}, {1, 0}, {1, 0}, {1, 0}}
	got, err := e.SentenceLoss(same, same)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, math.Log(4), 1e-12) {
		t.Errorf("expected log(4)=%g, got %g", math.Log(4), got)
	}
}

func TestSentenceLossRewardsSeparation(t *testing.T) {
	e := sentenceOnlyEngine(t, 0.05)

	anchors := [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	variants := [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	separated, err := e.SentenceLoss(anchors, variants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	collapsed, err := e.SentenceLoss(anchors, [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if separated >= collapsed {
		t.Errorf("aligned pairs must score lower loss: %g >= %g", separated, collapsed)
	}
}

func TestSentenceLossPermutationInvariant(t *testing.T) {
	e := sentenceOnlyEngine(t, 0.1)

	anchors := [][]float64{{1, 0.2}, {0.3, 1}, {-0.5, 0.4}}
	variants := [][]float64{{0.9, 0.1}, {0.2, 1.1}, {-0.4, 0.5}}

	base, err := e.SentenceLoss(anchors, variants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	perm := []int{2, 0, 1}
	permAnchors := make([][]float64, len(perm))
	permVariants := make([][]float64, len(perm))
	for i, p := range perm {
		permAnchors[i] = anchors[p]
		permVariants[i] = variants[p]
	}

	permuted, err := e.SentenceLoss(permAnchors, permVariants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(base, permuted, 1e-12) {
		t.Errorf("loss must be invariant to example order: %g vs %g", base, permuted)
	}
}

func TestSentenceLossRejectsMismatchedViews(t *testing.T) {
	e := sentenceOnlyEngine(t, 0.05)

	if _, err := e.SentenceLoss([][]float64{{1}}, [][]float64{{1}, {2}}); err == nil {
		t.Error("expected error for mismatched view sizes")
	}
	if _, err := e.SentenceLoss(nil, nil); err == nil {
		t.Error("expected error for empty views")
	}
}

func TestSentenceLossGathersAcrossWorkers(t *testing.T) {
	const worldSize = 2
	workers, err := distributed.NewGroup(worldSize)
	if err != nil {
		t.Fatalf("cannot build group: %v", err)
	}

	locals := [][][][]float64{
		{{{1, 0}, {0.6, 0.8}}, {{0.9, 0.1}, {0.5, 0.9}}},
		{{{0, 1}, {0.8, -0.6}}, {{0.1, 1.1}, {0.7, -0.7}}},
	}

	results := make([]float64, worldSize)
	var eg errgroup.Group
	for rank := range workers {
		eg.Go(func() error {
			engine, err := NewEngine(Config{Temperature: 0.05, SentenceEnabled: true}, workers[rank])
			if err != nil {
				return err
			}
			results[rank], err = engine.SentenceLoss(locals[rank][0], locals[rank][1])
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A single worker holding all four pairs must agree with every rank.
	global := sentenceOnlyEngine(t, 0.05)
	allAnchors := append(append([][]float64{}, locals[0][0]...), locals[1][0]...)
	allVariants := append(append([][]float64{}, locals[0][1]...), locals[1][1]...)
	want, err := global.SentenceLoss(allAnchors, allVariants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for rank, got := range results {
		if !almostEqual(got, want, 1e-12) {
			t.Errorf("rank %d: expected %g, got %g", rank, want, got)
		}
	}
}

func tokenFixture() (anchorIDs, variantIDs [][]int64, anchorTokens, variantTokens [][][]float64, positions [][][2]int) {
	// Two examples. Token id 4 appears in both, id 5 only in the first,
	// id 42 is above the cutoff and must be ignored.
	anchorIDs = [][]int64{
		{4, 5, 42},
		{4, 7, 1},
	}
	variantIDs = [][]int64{
		{4, 5, 42},
		{4, 7, 1},
	}
	anchorTokens = [][][]float64{
		{{1, 0}, {0, 1}, {1, 1}},
		{{0.6, 0.8}, {0.8, 0.6}, {0, 0}},
	}
	variantTokens = [][][]float64{
		{{1, 0.1}, {0.1, 1}, {1, 1}},
		{{0.5, 0.9}, {0.9, 0.5}, {0, 0}},
	}
	positions = [][][2]int{
		{{0, 0}, {1, 1}, {2, 2}},
		{{0, 0}, {1, 1}},
	}
	return anchorIDs, variantIDs, anchorTokens, variantTokens, positions
}

func TestTokenLossGroupsByTokenID(t *testing.T) {
	e := tokenOnlyEngine(t)
	anchorIDs, variantIDs, anchorTokens, variantTokens, positions := tokenFixture()

	got, err := e.TokenLoss(anchorIDs, variantIDs, anchorTokens, variantTokens, positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got < 0 {
		t.Errorf("cross-entropy loss cannot be negative, got %g", got)
	}

	// Id 4 has two occurrences whose anchors prefer their own variants, so
	// its group loss is strictly positive; ids 5 and 7 form singleton groups
	// with zero loss. The mean over three groups is strictly positive but
	// below the id-4 group loss alone.
	if got == 0 {
		t.Error("expected a positive loss from the multi-occurrence group")
	}
}

func TestTokenLossIgnoresIDsAboveCutoff(t *testing.T) {
	e := tokenOnlyEngine(t)

	anchorIDs := [][]int64{{42, 99}}
	variantIDs := [][]int64{{42, 99}}
	hidden := [][][]float64{{{1, 0}, {0, 1}}}
	positions := [][][2]int{{{0, 0}, {1, 1}}}

	got, err := e.TokenLoss(anchorIDs, variantIDs, hidden, hidden, positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("all ids above cutoff must yield zero loss, got %g", got)
	}
}

func TestTokenLossRequiresPositions(t *testing.T) {
	e := tokenOnlyEngine(t)

	if _, err := e.TokenLoss(nil, nil, nil, nil, nil); !errors.Is(err, ErrNoPairs) {
		t.Errorf("expected ErrNoPairs, got %v", err)
	}

	empty := [][][2]int{nil, nil}
	if _, err := e.TokenLoss([][]int64{{1}, {1}}, [][]int64{{1}, {1}}, nil, nil, empty); !errors.Is(err, ErrNoPairs) {
		t.Errorf("expected ErrNoPairs for all-nil mappings, got %v", err)
	}
}

func TestTokenLossDetectsMismatchedTokens(t *testing.T) {
	e := tokenOnlyEngine(t)

	anchorIDs := [][]int64{{4}}
	variantIDs := [][]int64{{5}}
	hidden := [][][]float64{{{1, 0}}}
	positions := [][][2]int{{{0, 0}}}

	if _, err := e.TokenLoss(anchorIDs, variantIDs, hidden, hidden, positions); !errors.Is(err, ErrTokenMismatch) {
		t.Errorf("expected ErrTokenMismatch, got %v", err)
	}
}

func TestComputeCombinesObjectives(t *testing.T) {
	e, err := NewEngine(Config{
		Temperature:     0.05,
		SentenceEnabled: true,
		TokenEnabled:    true,
		TokenCoeff:      0.1,
	}, nil)
	if err != nil {
		t.Fatalf("cannot build engine: %v", err)
	}

	anchorIDs, variantIDs, anchorTokens, variantTokens, positions := tokenFixture()
	anchorEmb := [][]float64{{1, 0}, {0, 1}}
	variantEmb := [][]float64{{0.9, 0.1}, {0.1, 0.9}}

	res, err := e.Compute(anchorIDs, variantIDs, anchorEmb, variantEmb, anchorTokens, variantTokens, positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := res.Sentence + 0.1*res.Token
	if !almostEqual(res.Total, want, 1e-12) {
		t.Errorf("expected total %g, got %g", want, res.Total)
	}
	if res.Sentence <= 0 || res.Token <= 0 {
		t.Errorf("both objectives should be positive on this fixture: %+v", res)
	}
}

func TestComputeSentenceOnlySkipsTokenObjective(t *testing.T) {
	e := sentenceOnlyEngine(t, 0.05)

	emb := [][]float64{{1, 0}, {0, 1}}
	res, err := e.Compute(nil, nil, emb, emb, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token != 0 {
		t.Errorf("disabled token objective must stay zero, got %g", res.Token)
	}
	if !almostEqual(res.Total, res.Sentence, 1e-15) {
		t.Errorf("total must equal sentence loss, got %g vs %g", res.Total, res.Sentence)
	}
}
