package fountain

import "math"

// robustSoliton implements the Robust Soliton degree distribution used to
// pick how many source symbols a given LT-coded repair symbol combines.
// c and delta are the standard tuning parameters: delta bounds the decode
// failure probability, c scales the "spike" near K/R that makes decoding
// converge in practice where the plain Ideal Soliton distribution
// theoretically works but is too fragile against any symbol loss.
type robustSoliton struct {
	k          int
	cumulative []float64 // cumulative[d] = P(degree <= d), 1-indexed by degree
}

func newRobustSoliton(k int, c, delta float64) *robustSoliton {
	if k < 1 {
		k = 1
	}
	rho := make([]float64, k+1)
	rho[1] = 1.0 / float64(k)
	for i := 2; i <= k; i++ {
		rho[i] = 1.0 / (float64(i) * float64(i-1))
	}

	r := c * math.Log(float64(k)/delta) * math.Sqrt(float64(k))
	tau := make([]float64, k+1)
	limit := int(float64(k) / r)
	for i := 1; i < limit && i <= k; i++ {
		tau[i] = r / (float64(i) * float64(k))
	}
	if limit >= 1 && limit <= k {
		tau[limit] = r * math.Log(r/delta) / float64(k)
	}

	mu := make([]float64, k+1)
	var z float64
	for i := 1; i <= k; i++ {
		mu[i] = rho[i] + tau[i]
		z += mu[i]
	}

	cumulative := make([]float64, k+1)
	var acc float64
	for i := 1; i <= k; i++ {
		acc += mu[i] / z
		cumulative[i] = acc
	}
	return &robustSoliton{k: k, cumulative: cumulative}
}

// sample maps a uniform draw r in [0,1) to a degree in [1,k].
func (d *robustSoliton) sample(r float64) int {
	for i := 1; i <= d.k; i++ {
		if r <= d.cumulative[i] {
			return i
		}
	}
	return d.k
}
