// Package thermal models building thermal mass as a first-order lag between
// outdoor temperature and the effective internal (BAIT) temperature.
package thermal

import (
	"math"
	"sync"

	"cooling_demand/internal/model"
)

// Filter converts an outdoor temperature series into the internal temperature
// series:
//
//	internal[0] = outdoor[0]
//	internal[i] = internal[i-1] + inertia*(outdoor[i]-internal[i-1])
//
// inertia=1 tracks outdoor instantly; inertia→0 freezes at outdoor[0]. The
// state starts from the series' own first sample on every call.
func Filter(outdoor model.Series, inertia float64) (model.Series, error) {
	if err := validate(outdoor, inertia); err != nil {
		return model.Series{}, err
	}

	in := outdoor.Values
	out := make([]float64, len(in))
	out[0] = in[0]
	for i := 1; i < len(in); i++ {
		out[i] = out[i-1] + inertia*(in[i]-out[i-1])
	}
	return outdoor.Derive(out), nil
}

// ClosedForm evaluates internal[i] from the unrolled recurrence:
//
//	(1-γ)^i·outdoor[0] + γ·Σ_{k=1..i} (1-γ)^(i-k)·outdoor[k]
//
// It is O(i) per call and intended for verification.
func ClosedForm(outdoor []float64, inertia float64, i int) float64 {
	decay := 1 - inertia
	v := math.Pow(decay, float64(i)) * outdoor[0]
	var sum float64
	for k := 1; k <= i; k++ {
		sum += math.Pow(decay, float64(i-k)) * outdoor[k]
	}
	return v + inertia*sum
}

// affine is the step map x ↦ a·x + b.
type affine struct {
	a, b float64
}

var identity = affine{a: 1}

// then returns the map applying f first and g second.
func (f affine) then(g affine) affine {
	return affine{a: g.a * f.a, b: g.a*f.b + g.b}
}

func (f affine) apply(x float64) float64 {
	return f.a*x + f.b
}

// FilterParallel computes the same series as Filter using a blocked prefix
// scan over the affine step maps. The steps 1..n-1 are split into chunks;
// each chunk's composed map is built concurrently, a sequential scan over the
// chunk maps yields every chunk's entry state, and the chunks are then
// expanded concurrently. For a fixed chunk count the result is deterministic;
// it matches Filter to floating-point tolerance, not bit for bit.
func FilterParallel(outdoor model.Series, inertia float64, chunks int) (model.Series, error) {
	if err := validate(outdoor, inertia); err != nil {
		return model.Series{}, err
	}

	in := outdoor.Values
	n := len(in)
	steps := n - 1
	if chunks < 1 {
		chunks = 1
	}
	if chunks > steps {
		chunks = max(steps, 1)
	}

	decay := 1 - inertia
	step := func(i int) affine {
		return affine{a: decay, b: inertia * in[i]}
	}

	// Chunk c covers step indices [bounds[c], bounds[c+1]).
	bounds := make([]int, chunks+1)
	for c := range bounds {
		bounds[c] = 1 + c*steps/chunks
	}

	composed := make([]affine, chunks)
	var wg sync.WaitGroup
	for c := 0; c < chunks; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			m := identity
			for i := bounds[c]; i < bounds[c+1]; i++ {
				m = m.then(step(i))
			}
			composed[c] = m
		}(c)
	}
	wg.Wait()

	entry := make([]float64, chunks)
	state := in[0]
	for c := 0; c < chunks; c++ {
		entry[c] = state
		state = composed[c].apply(state)
	}

	out := make([]float64, n)
	out[0] = in[0]
	for c := 0; c < chunks; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			x := entry[c]
			for i := bounds[c]; i < bounds[c+1]; i++ {
				x = x + inertia*(in[i]-x)
				out[i] = x
			}
		}(c)
	}
	wg.Wait()

	return outdoor.Derive(out), nil
}

func validate(outdoor model.Series, inertia float64) error {
	if math.IsNaN(inertia) || inertia <= 0 || inertia > 1 {
		return &model.ConfigError{Field: "thermal_inertia", Value: inertia, Reason: "must be in (0,1]"}
	}
	if outdoor.Len() == 0 {
		return &model.EmptySeriesError{}
	}
	return nil
}
