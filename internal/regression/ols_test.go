package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit_KnownLine(t *testing.T) {
	// y = 2 + 3x with a small symmetric perturbation on two points so the
	// residual variance is nonzero but the slope and intercept are exact.
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{5.0, 8.1, 11.0, 14.0, 16.9, 20.0}

	m, err := Fit(y, [][]float64{x}, []string{"x"})
	require.NoError(t, err)

	require.Len(t, m.Terms, 2)
	assert.Equal(t, "(Intercept)", m.Terms[0].Name)
	assert.Equal(t, "x", m.Terms[1].Name)
	assert.InDelta(t, 2.0, m.Terms[0].Coefficient, 0.15)
	assert.InDelta(t, 3.0, m.Terms[1].Coefficient, 0.05)
	assert.Equal(t, 6, m.N)
	assert.Equal(t, 4, m.DF)
	assert.Greater(t, m.RSquared, 0.999)

	// A slope this strong against this little noise is significant.
	assert.Less(t, m.Terms[1].PValue, 0.001)
	assert.Greater(t, m.Terms[1].StdErr, 0.0)
}

func TestFit_TwoPredictors(t *testing.T) {
	// y = 1 + 2a + 0.5b, exact.
	a := []float64{1, 2, 3, 4, 5, 6, 7}
	b := []float64{2, 1, 4, 3, 6, 5, 8}
	y := make([]float64, len(a))
	for i := range a {
		y[i] = 1 + 2*a[i] + 0.5*b[i]
	}

	m, err := Fit(y, [][]float64{a, b}, []string{"a", "b"})
	require.NoError(t, err)

	require.Len(t, m.Terms, 3)
	assert.InDelta(t, 1.0, m.Terms[0].Coefficient, 1e-8)
	assert.InDelta(t, 2.0, m.Terms[1].Coefficient, 1e-8)
	assert.InDelta(t, 0.5, m.Terms[2].Coefficient, 1e-8)
}

func TestFit_Deterministic(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{2.1, 3.9, 6.2, 8.1, 9.8, 12.2, 13.9, 16.1}

	first, err := Fit(y, [][]float64{x}, []string{"x"})
	require.NoError(t, err)
	second, err := Fit(y, [][]float64{x}, []string{"x"})
	require.NoError(t, err)

	// No random component anywhere: repeated fits agree exactly.
	for i := range first.Terms {
		assert.Equal(t, first.Terms[i].Coefficient, second.Terms[i].Coefficient)
		assert.Equal(t, first.Terms[i].StdErr, second.Terms[i].StdErr)
		assert.Equal(t, first.Terms[i].PValue, second.Terms[i].PValue)
	}
	assert.Equal(t, first.RSquared, second.RSquared)
}

func TestFit_DropsMissingRows(t *testing.T) {
	x := []float64{1, 2, math.NaN(), 4, 5, 6}
	y := []float64{3, 5, 7, math.NaN(), 11, 13}

	m, err := Fit(y, [][]float64{x}, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, 4, m.N)
}

func TestFit_Errors(t *testing.T) {
	t.Run("too few rows", func(t *testing.T) {
		_, err := Fit([]float64{1, 2}, [][]float64{{1, 2}}, []string{"x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usable rows")
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := Fit([]float64{1, 2, 3}, [][]float64{{1, 2}}, []string{"x"})
		require.Error(t, err)
	})

	t.Run("name count mismatch", func(t *testing.T) {
		_, err := Fit([]float64{1, 2, 3}, [][]float64{{1, 2, 3}}, []string{"x", "y"})
		require.Error(t, err)
	})

	t.Run("collinear predictors", func(t *testing.T) {
		x := []float64{1, 2, 3, 4, 5}
		x2 := []float64{2, 4, 6, 8, 10} // exactly 2x
		y := []float64{1, 2, 3, 4, 5}
		_, err := Fit(y, [][]float64{x, x2}, []string{"x", "x2"})
		require.Error(t, err)
	})
}
