package thermal

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cooling_demand/internal/model"
)

var t0 = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func series(values ...float64) model.Series {
	idx := make([]time.Time, len(values))
	for i := range idx {
		idx[i] = t0.Add(time.Duration(i) * time.Hour)
	}
	return model.MustSeries(idx, values)
}

// syntheticDay generates n hours of a diurnal cycle with noise.
func syntheticDay(n int, seed uint64) model.Series {
	rng := rand.New(rand.NewSource(int64(seed)))
	values := make([]float64, n)
	for i := range values {
		values[i] = 24 + 6*math.Sin(2*math.Pi*float64(i%24)/24) + rng.NormFloat64()
	}
	return series(values...)
}

func TestFilter_ConcreteScenario(t *testing.T) {
	out, err := Filter(series(20, 22, 26, 30, 26, 22, 20), 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 21, 23.5, 26.75, 26.375, 24.1875, 22.09375}, out.Values)
}

func TestFilter_FirstSampleExact(t *testing.T) {
	in := syntheticDay(48, 1)
	for _, g := range []float64{0.01, 0.3, 0.5, 0.99} {
		out, err := Filter(in, g)
		require.NoError(t, err)
		assert.Equal(t, in.Values[0], out.Values[0])
	}
}

func TestFilter_Recurrence(t *testing.T) {
	in := syntheticDay(200, 2)
	const g = 0.37
	out, err := Filter(in, g)
	require.NoError(t, err)

	for i := 1; i < out.Len(); i++ {
		want := out.Values[i-1] + g*(in.Values[i]-out.Values[i-1])
		assert.InDelta(t, want, out.Values[i], 1e-12, "i=%d", i)
	}
}

func TestFilter_MatchesClosedForm(t *testing.T) {
	in := syntheticDay(72, 3)
	const g = 0.5
	out, err := Filter(in, g)
	require.NoError(t, err)

	for i := 0; i < out.Len(); i++ {
		assert.InDelta(t, ClosedForm(in.Values, g, i), out.Values[i], 1e-9, "i=%d", i)
	}
}

func TestFilter_InertiaOneIsIdentity(t *testing.T) {
	in := syntheticDay(48, 4)
	out, err := Filter(in, 1)
	require.NoError(t, err)
	assert.Equal(t, in.Values, out.Values)
}

func TestFilter_InertiaNearZeroFreezes(t *testing.T) {
	in := syntheticDay(48, 5)
	out, err := Filter(in, 1e-12)
	require.NoError(t, err)
	for _, v := range out.Values {
		assert.InDelta(t, in.Values[0], v, 1e-9)
	}
}

func TestFilter_MonotoneConvergence(t *testing.T) {
	values := make([]float64, 30)
	values[0] = 20
	for i := 1; i < len(values); i++ {
		values[i] = 30
	}
	out, err := Filter(series(values...), 0.3)
	require.NoError(t, err)

	for i := 1; i < out.Len(); i++ {
		assert.GreaterOrEqual(t, out.Values[i], out.Values[i-1])
		assert.LessOrEqual(t, out.Values[i], 30.0)
	}
	assert.InDelta(t, 30, out.Values[out.Len()-1], 0.01)
}

func TestFilter_SingleSample(t *testing.T) {
	in := series(27.3)
	out, err := Filter(in, 0.5)
	require.NoError(t, err)
	assert.Equal(t, in.Values, out.Values)
}

func TestFilter_PreservesIndex(t *testing.T) {
	in := syntheticDay(10, 6)
	out, err := Filter(in, 0.5)
	require.NoError(t, err)
	assert.True(t, in.SameIndex(out))
	assert.Equal(t, in.Len(), out.Len())
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	in := series(20, 22, 26)
	_, err := Filter(in, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 22, 26}, in.Values)
}

func TestFilter_Errors(t *testing.T) {
	for _, g := range []float64{0, 1.5, -0.2, math.NaN()} {
		_, err := Filter(series(20, 21), g)
		var cfgErr *model.ConfigError
		assert.True(t, errors.As(err, &cfgErr), "inertia %v", g)
	}

	_, err := Filter(model.Series{}, 0.5)
	var emptyErr *model.EmptySeriesError
	assert.True(t, errors.As(err, &emptyErr))
}

func TestFilter_Deterministic(t *testing.T) {
	in := syntheticDay(500, 7)
	a, err := Filter(in, 0.42)
	require.NoError(t, err)
	b, err := Filter(in, 0.42)
	require.NoError(t, err)
	assert.Equal(t, a.Values, b.Values)
}

func TestFilterParallel_MatchesSequential(t *testing.T) {
	in := syntheticDay(24*366, 8)
	const g = 0.5
	want, err := Filter(in, g)
	require.NoError(t, err)

	for _, chunks := range []int{1, 2, 3, 7, 16, 64} {
		got, err := FilterParallel(in, g, chunks)
		require.NoError(t, err)
		require.Equal(t, want.Len(), got.Len())
		assert.Equal(t, want.Values[0], got.Values[0])
		for i := range want.Values {
			if math.Abs(want.Values[i]-got.Values[i]) > 1e-9 {
				t.Fatalf("chunks=%d: mismatch at %d: %v vs %v", chunks, i, want.Values[i], got.Values[i])
			}
		}
	}
}

func TestFilterParallel_OneChunkIsBitIdentical(t *testing.T) {
	in := syntheticDay(100, 9)
	want, err := Filter(in, 0.3)
	require.NoError(t, err)
	got, err := FilterParallel(in, 0.3, 1)
	require.NoError(t, err)
	assert.Equal(t, want.Values, got.Values)
}

func TestFilterParallel_ConcurrentCallsAgree(t *testing.T) {
	in := syntheticDay(24*40, 11)
	want, err := FilterParallel(in, 0.35, 16)
	require.NoError(t, err)

	got := make([]model.Series, 8)
	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = FilterParallel(in, 0.35, 16)
		}(i)
	}
	wg.Wait()

	for i := range got {
		assert.Equal(t, want.Values, got[i].Values, "call %d", i)
	}
}

func TestFilterParallel_SmallInputs(t *testing.T) {
	got, err := FilterParallel(series(25), 0.5, 8)
	require.NoError(t, err)
	assert.Equal(t, []float64{25}, got.Values)

	got, err = FilterParallel(series(20, 22, 26, 30, 26, 22, 20), 0.5, 100)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{20, 21, 23.5, 26.75, 26.375, 24.1875, 22.09375}, got.Values, 1e-12)
}

func TestFilterParallel_Errors(t *testing.T) {
	_, err := FilterParallel(model.Series{}, 0.5, 4)
	var emptyErr *model.EmptySeriesError
	assert.True(t, errors.As(err, &emptyErr))

	_, err = FilterParallel(series(1, 2), 0, 4)
	var cfgErr *model.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestAffineCompose(t *testing.T) {
	f := affine{a: 0.5, b: 10}
	g := affine{a: 0.25, b: 2}
	x := 7.0
	assert.InDelta(t, g.apply(f.apply(x)), f.then(g).apply(x), 1e-12)
	assert.Equal(t, f, identity.then(f))
}
