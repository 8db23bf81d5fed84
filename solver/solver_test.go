package solver_test

import (
	"math"
	"testing"

	"github.com/meenmo/dualstrip/solver"
	"github.com/stretchr/testify/require"
)

func TestBroydenSolve_Linear2x2(t *testing.T) {
	t.Parallel()

	// 2x + y = 5, x - y = 1  =>  x = 2, y = 1.
	f := func(x []float64) ([]float64, error) {
		return []float64{2*x[0] + x[1] - 5, x[0] - x[1] - 1}, nil
	}

	res, err := solver.BroydenSolve(f, []float64{0, 0}, 100, 1e-5, 1e-9)
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.InDelta(t, 2.0, res.X[0], 1e-6)
	require.InDelta(t, 1.0, res.X[1], 1e-6)
}

func TestBroydenSolve_NonlinearConverges(t *testing.T) {
	t.Parallel()

	// x^2 - 4 = 0, y^2 - 9 = 0, positive root expected from a positive guess.
	f := func(x []float64) ([]float64, error) {
		return []float64{x[0]*x[0] - 4, x[1]*x[1] - 9}, nil
	}

	res, err := solver.BroydenSolve(f, []float64{1, 1}, 100, 1e-5, 1e-9)
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.InDelta(t, 2.0, res.X[0], 1e-5)
	require.InDelta(t, 3.0, res.X[1], 1e-5)
}

func TestBrentSolve_Linear(t *testing.T) {
	t.Parallel()

	f := func(u float64) (float64, error) { return u - 42.0, nil }

	res, err := solver.BrentSolve(f, 0.0, 1e-9, 25)
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.InDelta(t, 42.0, res.X, 1e-6)
}

func TestBrentSolve_ExpandsBracket(t *testing.T) {
	t.Parallel()

	// Root far from the seed forces the bracket-expansion loop to run.
	f := func(u float64) (float64, error) { return u - 1000.0, nil }

	res, err := solver.BrentSolve(f, 0.0, 1e-9, 25)
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.InDelta(t, 1000.0, res.X, 1e-6)
}

func TestSOSAdapter_SumsSquares(t *testing.T) {
	t.Parallel()

	adapter := solver.SOSAdapter{F: func(x []float64) ([]float64, error) {
		return []float64{x[0], x[1]}, nil
	}}

	val, err := adapter.At([]float64{3, 4})
	require.NoError(t, err)
	require.InDelta(t, 25.0, val, 1e-12)
}

func TestPowellMinimize_FindsMinimum(t *testing.T) {
	t.Parallel()

	adapter := solver.SOSAdapter{F: func(x []float64) ([]float64, error) {
		return []float64{x[0] - 2, x[1] + 3}, nil
	}}

	res, err := solver.PowellMinimize(adapter, []float64{0, 0}, 50, 1e-6)
	require.NoError(t, err)
	require.InDelta(t, 2.0, res.X[0], 1e-3)
	require.InDelta(t, -3.0, res.X[1], 1e-3)
}

func TestBrentMinimize1D_FindsQuadraticMinimum(t *testing.T) {
	t.Parallel()

	f := func(t float64) (float64, error) { return (t - 5) * (t - 5), nil }

	x, fx, err := solver.BrentMinimize1D(f, 0, 1, 1e-8, 200)
	require.NoError(t, err)
	require.InDelta(t, 5.0, x, 1e-3)
	require.True(t, math.Abs(fx) < 1e-4)
}
