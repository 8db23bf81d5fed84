// Package solver provides the root-finding primitives consumed by the
// stripper: a multidimensional Broyden quasi-Newton solver for the staged
// pair solves, a 1-D Brent-style solver for trailing leftovers, and an
// optional sum-of-squares adapter feeding a Powell fallback.
package solver

import (
	"errors"
	"fmt"
	"math"
)

// VectorFunc is a residual function F: R^n -> R^n.
type VectorFunc func(x []float64) ([]float64, error)

// ScalarFunc is a 1-D residual function g: R -> R.
type ScalarFunc func(x float64) (float64, error)

// MultiResult is the outcome of a multidimensional solve.
type MultiResult struct {
	X          []float64
	Converged  bool
	Iterations int
}

// Result1D is the outcome of a 1-D solve.
type Result1D struct {
	X          float64
	Converged  bool
	Iterations int
}

// ErrSingularJacobian is returned when the initial finite-difference
// Jacobian cannot be inverted.
var ErrSingularJacobian = errors.New("solver: singular initial jacobian")

// ErrBracketNotFound is returned when bracket expansion fails to find a
// sign change within the given iteration budget.
var ErrBracketNotFound = errors.New("solver: could not bracket a root")

// BroydenSolve finds x such that F(x) is within tol (uniform, componentwise)
// of zero, using Broyden's "good" method: a finite-difference Jacobian seeds
// the first step, then rank-one updates approximate the Jacobian inverse on
// each subsequent iteration. step is the finite-difference perturbation used
// to build that seed Jacobian.
func BroydenSolve(f VectorFunc, x0 []float64, maxIter int, step, tol float64) (MultiResult, error) {
	x := append([]float64(nil), x0...)

	fx, err := f(x)
	if err != nil {
		return MultiResult{}, err
	}
	if uniformBelow(fx, tol) {
		return MultiResult{X: x, Converged: true}, nil
	}

	jac, err := finiteDifferenceJacobian(f, x, fx, step)
	if err != nil {
		return MultiResult{}, err
	}
	jinv, err := invert(jac)
	if err != nil {
		return MultiResult{}, fmt.Errorf("%w: %v", ErrSingularJacobian, err)
	}

	for iter := 0; iter < maxIter; iter++ {
		dx := matVec(jinv, negate(fx))
		xNew := addVec(x, dx)

		fxNew, err := f(xNew)
		if err != nil {
			return MultiResult{}, err
		}
		if uniformBelow(fxNew, tol) {
			return MultiResult{X: xNew, Converged: true, Iterations: iter + 1}, nil
		}

		dfx := subVec(fxNew, fx)
		jinv = broydenInverseUpdate(jinv, dx, dfx)
		x, fx = xNew, fxNew
	}

	return MultiResult{X: x, Converged: false, Iterations: maxIter}, nil
}

func uniformBelow(v []float64, tol float64) bool {
	for _, c := range v {
		if math.Abs(c) > tol {
			return false
		}
	}
	return true
}

// finiteDifferenceJacobian builds a forward-difference Jacobian of f at x,
// reusing the already-evaluated fx as the base point.
func finiteDifferenceJacobian(f VectorFunc, x, fx []float64, step float64) ([][]float64, error) {
	n := len(x)
	jac := make([][]float64, n)
	for j := 0; j < n; j++ {
		xp := append([]float64(nil), x...)
		h := step
		if xp[j] != 0 {
			h = step * math.Max(1.0, math.Abs(xp[j]))
		}
		xp[j] += h
		fp, err := f(xp)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			if jac[i] == nil {
				jac[i] = make([]float64, n)
			}
			jac[i][j] = (fp[i] - fx[i]) / h
		}
	}
	return jac, nil
}

// broydenInverseUpdate applies the Sherman-Morrison rank-one update to the
// approximate Jacobian inverse given a step dx = x_new - x_old and the
// resulting residual change dfx = F(x_new) - F(x_old).
func broydenInverseUpdate(jinv [][]float64, dx, dfx []float64) [][]float64 {
	n := len(dx)
	jinvDfx := matVec(jinv, dfx)
	denom := dot(dx, jinvDfx)
	if denom == 0 {
		return jinv
	}
	num := subVec(dx, jinvDfx)
	dxTJinv := vecMat(dx, jinv)

	updated := make([][]float64, n)
	for i := 0; i < n; i++ {
		updated[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			updated[i][j] = jinv[i][j] + num[i]*dxTJinv[j]/denom
		}
	}
	return updated
}

// BrentSolve finds u such that f(u) == 0 near guess, expanding a bracket
// around guess geometrically until a sign change is found (or the iteration
// budget is exhausted), then refining with Brent's method (bisection,
// secant, and inverse quadratic interpolation). maxIter bounds the bracket
// expansion steps and, separately, the Brent refinement iterations.
func BrentSolve(f ScalarFunc, guess, tol float64, maxIter int) (Result1D, error) {
	lo, hi, flo, fhi, _, err := bracket(f, guess, maxIter)
	if err != nil {
		return Result1D{}, err
	}
	return brent(f, lo, hi, flo, fhi, tol, maxIter)
}

// bracket expands an interval around guess until f changes sign across it.
func bracket(f ScalarFunc, guess float64, maxIter int) (lo, hi, flo, fhi float64, iterUsed int, err error) {
	step := 0.01 * math.Max(1.0, math.Abs(guess))
	lo, hi = guess-step, guess+step

	flo, err = f(lo)
	if err != nil {
		return 0, 0, 0, 0, 0, err
	}
	fhi, err = f(hi)
	if err != nil {
		return 0, 0, 0, 0, 0, err
	}
	iterUsed = 2

	for i := 0; i < maxIter && sameSign(flo, fhi); i++ {
		step *= 1.6
		lo -= step
		hi += step
		flo, err = f(lo)
		if err != nil {
			return 0, 0, 0, 0, 0, err
		}
		fhi, err = f(hi)
		if err != nil {
			return 0, 0, 0, 0, 0, err
		}
		iterUsed += 2
	}

	if sameSign(flo, fhi) {
		return 0, 0, 0, 0, iterUsed, ErrBracketNotFound
	}
	return lo, hi, flo, fhi, iterUsed, nil
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

// brent implements Brent's root-finding method on [a, b] with f(a)=fa,
// f(b)=fb of opposite sign.
func brent(f ScalarFunc, a, b, fa, fb, tol float64, maxIter int) (Result1D, error) {
	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}
	c, fc := a, fa
	mflag := true
	var d float64

	for iter := 0; iter < maxIter; iter++ {
		if fb == 0 || math.Abs(b-a) < tol {
			return Result1D{X: b, Converged: true, Iterations: iter}, nil
		}

		var s float64
		if fa != fc && fb != fc {
			// Inverse quadratic interpolation.
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// Secant method.
			s = b - fb*(b-a)/(fb-fa)
		}

		lo, hi := math.Min((3*a+b)/4, b), math.Max((3*a+b)/4, b)
		useBisection := s < lo || s > hi ||
			(mflag && math.Abs(s-b) >= math.Abs(b-c)/2) ||
			(!mflag && math.Abs(s-b) >= math.Abs(c-d)/2) ||
			(mflag && math.Abs(b-c) < tol) ||
			(!mflag && math.Abs(c-d) < tol)

		if useBisection {
			s = (a + b) / 2
			mflag = true
		} else {
			mflag = false
		}

		fs, err := f(s)
		if err != nil {
			return Result1D{}, err
		}

		d = c
		c, fc = b, fb

		if sameSign(fa, fs) {
			a, fa = s, fs
		} else {
			b, fb = s, fs
		}

		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}

	return Result1D{X: b, Converged: math.Abs(fb) <= tol, Iterations: maxIter}, nil
}

// --- small matrix/vector helpers (dimensions are always small: a pair plus
// at most a handful of preceding unpaired instruments) ---

func matVec(m [][]float64, v []float64) []float64 {
	n := len(v)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += m[i][j] * v[j]
		}
		out[i] = sum
	}
	return out
}

func vecMat(v []float64, m [][]float64) []float64 {
	n := len(v)
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += v[i] * m[i][j]
		}
		out[j] = sum
	}
	return out
}

func addVec(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

func subVec(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func negate(a []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = -a[i]
	}
	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// invert computes the inverse of a square matrix via Gauss-Jordan
// elimination with partial pivoting.
func invert(m [][]float64) ([][]float64, error) {
	n := len(m)
	aug := make([][]float64, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-18 {
			return nil, fmt.Errorf("matrix is singular at column %d", col)
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		pv := aug[col][col]
		for k := 0; k < 2*n; k++ {
			aug[col][k] /= pv
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			for k := 0; k < 2*n; k++ {
				aug[r][k] -= factor * aug[col][k]
			}
		}
	}

	inv := make([][]float64, n)
	for i := 0; i < n; i++ {
		inv[i] = append([]float64(nil), aug[i][n:]...)
	}
	return inv, nil
}
