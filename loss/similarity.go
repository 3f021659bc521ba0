package loss

import (
	"fmt"
	"math"
)

// cosineEps guards the denominator against zero vectors.
const cosineEps = 1e-8

// CosineSimilarityMatrix computes sim[i][j] = cos(a[i], b[j]) for two (N, H)
// matrices sharing one dimensionality.
func CosineSimilarityMatrix(a, b [][]float64) ([][]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("loss: similarity over empty matrices")
	}
	dim := len(a[0])
	for _, rows := range [][][]float64{a, b} {
		for i, row := range rows {
			if len(row) != dim {
				return nil, fmt.Errorf("loss: row %d has dimension %d, expected %d", i, len(row), dim)
			}
		}
	}

	normsA := rowNorms(a)
	normsB := rowNorms(b)

	sim := make([][]float64, len(a))
	for i := range a {
		row := make([]float64, len(b))
		for j := range b {
			dot := 0.0
			for k := 0; k < dim; k++ {
				dot += a[i][k] * b[j][k]
			}
			row[j] = dot / (math.Max(normsA[i], cosineEps) * math.Max(normsB[j], cosineEps))
		}
		sim[i] = row
	}
	return sim, nil
}

func rowNorms(m [][]float64) []float64 {
	norms := make([]float64, len(m))
	for i, row := range m {
		sum := 0.0
		for _, v := range row {
			sum += v * v
		}
		norms[i] = math.Sqrt(sum)
	}
	return norms
}

// crossEntropyDiagonal scores a square similarity matrix against diagonal
// labels: row i's positive is column i, every other column is a negative.
// Logits are similarities divided by the temperature. The log-sum-exp is
// computed against the row maximum so large inverse temperatures cannot
// overflow.
func crossEntropyDiagonal(sim [][]float64, temperature float64) (float64, error) {
	n := len(sim)
	total := 0.0
	for i, row := range sim {
		if len(row) != n {
			return 0, fmt.Errorf("loss: similarity matrix is %dx%d, expected square", n, len(row))
		}

		maxLogit := math.Inf(-1)
		for _, s := range row {
			if logit := s / temperature; logit > maxLogit {
				maxLogit = logit
			}
		}

		sumExp := 0.0
		for _, s := range row {
			sumExp += math.Exp(s/temperature - maxLogit)
		}

		total += math.Log(sumExp) + maxLogit - sim[i][i]/temperature
	}
	return total / float64(n), nil
}
