package projection

import (
	"github.com/seedscope/ycatlas/internal/domain/company"
	"github.com/seedscope/ycatlas/internal/vectormath"
)

const (
	// powerIterations bounds the project-then-back-project loop. The
	// dominant eigengap of embedding covariance matrices makes 14 rounds
	// plenty for a stable two-component layout.
	powerIterations = 14
	// minVectorLen rejects degenerate vectors that cannot span two
	// components.
	minVectorLen  = 2
	coordDecimals = 6
)

// project computes a two-component PCA layout of the embedded rows. Rows
// with too-short vectors, or vectors whose length disagrees with the rest of
// the corpus, are skipped. The result is deterministic: the power iteration
// starts from a fixed seed, never from randomness.
func project(rows []company.Embedded) []company.Point {
	var (
		kept []company.Embedded
		dim  int
	)
	for _, r := range rows {
		if len(r.Vector) < minVectorLen {
			continue
		}
		if dim == 0 {
			dim = len(r.Vector)
		}
		if len(r.Vector) != dim {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return nil
	}

	matrix := make([][]float64, len(kept))
	for i, r := range kept {
		matrix[i] = r.Vector
	}
	centered := vectormath.Center(matrix)

	pc1 := principalComponent(centered, nil)
	pc2 := principalComponent(centered, pc1)

	points := make([]company.Point, len(kept))
	for i, r := range kept {
		points[i] = company.Point{
			ID:   r.Company.ID,
			Name: r.Company.Name,
			X:    vectormath.Round(vectormath.Dot(centered[i], pc1), coordDecimals),
			Y:    vectormath.Round(vectormath.Dot(centered[i], pc2), coordDecimals),
		}
	}
	return points
}

// principalComponent runs power iteration over the centered matrix. Each
// round projects onto the row space and back (v ← Mᵀ(Mv)) and renormalizes.
// When deflate is set, the running vector first has its component along that
// direction removed, which keeps the second component orthogonal to the
// first.
func principalComponent(m [][]float64, deflate []float64) []float64 {
	dim := len(m[0])
	v := make([]float64, dim)
	for i := range v {
		if i%3 == 0 {
			v[i] = 1
		} else {
			v[i] = 0.5
		}
	}

	for iter := 0; iter < powerIterations; iter++ {
		w := vectormath.MatTVec(m, vectormath.MatVec(m, v))
		if deflate != nil {
			proj := vectormath.Dot(w, deflate)
			for i := range w {
				w[i] -= proj * deflate[i]
			}
		}
		v = vectormath.Normalize(w)
	}
	return v
}
