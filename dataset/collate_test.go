package dataset

import (
	"errors"
	"testing"
)

func TestCollateStacksPairs(t *testing.T) {
	ds, err := NewPlainDataset(testSentences, testTokenizer(t), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pairs := make([]Pair, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		p, err := ds.Get(i)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pairs = append(pairs, p)
	}

	batch, err := Collate(pairs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if batch.Size() != 3 {
		t.Errorf("expected batch size 3, got %d", batch.Size())
	}
	if batch.SeqLen() != 10 {
		t.Errorf("expected sequence length 10, got %d", batch.SeqLen())
	}
	for i := range pairs {
		if len(batch.InputIDs[i]) != 2 {
			t.Fatalf("example %d: expected 2 views, got %d", i, len(batch.InputIDs[i]))
		}
		for v := 0; v < 2; v++ {
			if len(batch.InputIDs[i][v]) != 10 || len(batch.AttentionMask[i][v]) != 10 {
				t.Errorf("example %d view %d has wrong length", i, v)
			}
		}
	}
}

func TestCollateRejectsEmptyInput(t *testing.T) {
	if _, err := Collate(nil); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestCollateRejectsMixedLengths(t *testing.T) {
	tok := testTokenizer(t)

	short, _ := NewPlainDataset(testSentences, tok, 8)
	long, _ := NewPlainDataset(testSentences, tok, 12)

	a, _ := short.Get(0)
	b, _ := long.Get(1)

	if _, err := Collate([]Pair{a, b}); err == nil {
		t.Error("expected error for mixed sequence lengths")
	}
}

func TestViewsSplitAnchorsAndVariants(t *testing.T) {
	ds, _ := NewPlainDataset(testSentences, testTokenizer(t), 10)

	a, _ := ds.Get(0)
	b, _ := ds.Get(1)
	batch, err := Collate([]Pair{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	anchorIDs, variantIDs, anchorMask, variantMask := batch.Views()
	if len(anchorIDs) != 2 || len(variantIDs) != 2 {
		t.Fatalf("expected 2 rows per view")
	}
	for i := 0; i < 2; i++ {
		if &anchorIDs[i][0] != &batch.InputIDs[i][0][0] {
			t.Error("anchor view must alias the batch storage")
		}
		if &variantMask[i][0] != &batch.AttentionMask[i][1][0] {
			t.Error("variant mask must alias the batch storage")
		}
		_ = anchorMask
	}
}
