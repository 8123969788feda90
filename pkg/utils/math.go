package utils

import "math"

// NormalizeL2 normalizes the slice in place to unit L2 norm. A zero vector is
// left unchanged. All embeddings are normalized on the way in so that inner
// product equals cosine similarity at query time.
func NormalizeL2(x []float32) {
	var sum float32
	for _, v := range x {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range x {
		x[i] *= norm
	}
}

// Dot returns the inner product of two equal-length vectors as float64.
// Mismatched lengths return 0.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
