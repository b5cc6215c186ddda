// Package vectormath provides the dense-vector primitives used by semantic
// ranking and the PCA projection. All functions are pure.
package vectormath

import "math"

// Dot returns the sum of elementwise products. Callers guarantee equal
// length; Dot itself does not validate.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the Euclidean norm of v.
func Norm(v []float64) float64 {
	return math.Sqrt(Dot(v, v))
}

// Normalize returns a unit-length copy of v. A zero vector comes back as a
// zero-filled copy rather than NaNs.
func Normalize(v []float64) []float64 {
	norm := Norm(v)
	if norm == 0 {
		norm = 1
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// Cosine returns the cosine similarity of a and b. Mismatched lengths, empty
// vectors and zero-norm vectors all score 0: the value marks the pair as
// non-comparable, not as orthogonal.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Center subtracts the per-dimension mean across all vectors and returns new
// vectors, leaving the input unmodified. An empty set is returned as is.
func Center(vectors [][]float64) [][]float64 {
	if len(vectors) == 0 {
		return vectors
	}

	dims := len(vectors[0])
	mean := make([]float64, dims)
	for _, v := range vectors {
		for i, x := range v {
			mean[i] += x
		}
	}
	for i := range mean {
		mean[i] /= float64(len(vectors))
	}

	out := make([][]float64, len(vectors))
	for j, v := range vectors {
		c := make([]float64, dims)
		for i, x := range v {
			c[i] = x - mean[i]
		}
		out[j] = c
	}
	return out
}

// MatVec returns m·v, one dot product per row.
func MatVec(m [][]float64, v []float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = Dot(row, v)
	}
	return out
}

// MatTVec returns transpose(m)·v, where v has one entry per row of m.
func MatTVec(m [][]float64, v []float64) []float64 {
	if len(m) == 0 {
		return nil
	}
	out := make([]float64, len(m[0]))
	for i, row := range m {
		for j, x := range row {
			out[j] += v[i] * x
		}
	}
	return out
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
