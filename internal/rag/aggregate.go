package rag

import "fmt"

// Aggregate returns the element-wise mean of vectors. All vectors must share
// the first vector's length.
func Aggregate(vectors []Vector) (Vector, error) {
	if len(vectors) == 0 {
		return nil, ErrNoEmbeddings
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d values, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		for j, x := range v {
			sum[j] += float64(x)
		}
	}

	n := float64(len(vectors))
	mean := make(Vector, dim)
	for j := range sum {
		mean[j] = float32(sum[j] / n)
	}
	return mean, nil
}

// ContentPreview returns the first PreviewLength runes of text.
func ContentPreview(text string) string {
	return truncateRunes(text, PreviewLength)
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
