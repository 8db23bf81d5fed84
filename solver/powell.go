package solver

import "math"

// SOSAdapter wraps a multidimensional residual function as a scalar
// sum-of-squares objective, the explicit adapter used in place of a
// reinterpret-cast between unrelated solver-objective interfaces.
type SOSAdapter struct {
	F VectorFunc
}

// At evaluates the sum of squared residual components at x.
func (a SOSAdapter) At(x []float64) (float64, error) {
	y, err := a.F(x)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range y {
		sum += v * v
	}
	return sum, nil
}

// PowellMinimize performs a derivative-free Powell-style coordinate search:
// each iteration line-minimizes along every axis direction in turn using
// BrentMinimize1D, then along the net direction moved over the full sweep,
// replacing the direction that contributed the largest decrease. It is the
// fallback for a multidimensional solve that failed to converge via Broyden.
func PowellMinimize(obj SOSAdapter, x0 []float64, maxIter int, stepTol float64) (MultiResult, error) {
	n := len(x0)
	x := append([]float64(nil), x0...)

	dirs := make([][]float64, n)
	for i := range dirs {
		dirs[i] = make([]float64, n)
		dirs[i][i] = 1
	}

	fx, err := obj.At(x)
	if err != nil {
		return MultiResult{}, err
	}

	for iter := 0; iter < maxIter; iter++ {
		x0Iter := append([]float64(nil), x...)
		fStart := fx
		biggestDecrease := 0.0
		biggestDir := 0

		for i, d := range dirs {
			before := fx
			newX, newF, err := lineMinimize(obj, x, d)
			if err != nil {
				return MultiResult{}, err
			}
			x, fx = newX, newF
			if decrease := before - fx; decrease > biggestDecrease {
				biggestDecrease = decrease
				biggestDir = i
			}
		}

		moveDelta := 0.0
		for i := range x {
			moveDelta += (x[i] - x0Iter[i]) * (x[i] - x0Iter[i])
		}
		if math.Sqrt(moveDelta) < stepTol {
			return MultiResult{X: x, Converged: true, Iterations: iter + 1}, nil
		}

		netDir := make([]float64, n)
		for i := range netDir {
			netDir[i] = x[i] - x0Iter[i]
		}
		extrapolated := make([]float64, n)
		for i := range extrapolated {
			extrapolated[i] = 2*x[i] - x0Iter[i]
		}
		fExtrap, err := obj.At(extrapolated)
		if err == nil && fExtrap < fStart {
			newX, newF, err := lineMinimize(obj, x0Iter, netDir)
			if err == nil && newF < fx {
				x, fx = newX, newF
				dirs[biggestDir] = netDir
			}
		}
	}

	return MultiResult{X: x, Converged: false, Iterations: maxIter}, nil
}

// lineMinimize minimizes obj along x + t*dir using BrentMinimize1D over t,
// bracketing t around 0.
func lineMinimize(obj SOSAdapter, x, dir []float64) ([]float64, float64, error) {
	along := func(t float64) (float64, error) {
		pt := make([]float64, len(x))
		for i := range pt {
			pt[i] = x[i] + t*dir[i]
		}
		return obj.At(pt)
	}

	tStar, fStar, err := BrentMinimize1D(along, 0.0, 1.0, 1e-8, 100)
	if err != nil {
		return nil, 0, err
	}

	out := make([]float64, len(x))
	for i := range out {
		out[i] = x[i] + tStar*dir[i]
	}
	return out, fStar, nil
}

// BrentMinimize1D finds a t minimizing f, starting from [a, b] widened by
// its own length on each side and growing that bracket downhill until its
// midpoint is no higher than either end, so a minimum outside [a, b] is
// still reached. It then uses golden-section search as Brent's
// bracketing/parabolic steps would, simplified since the line-search
// objective here is a smooth sum of squares with a single minimum along
// each search direction in practice.
func BrentMinimize1D(f func(float64) (float64, error), a, b, tol float64, maxIter int) (float64, float64, error) {
	const gold = 0.6180339887498949
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	// Ensure the bracket is wide enough to contain a minimum away from 0.
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span
	hi += span
	for k := 0; k < maxIter; k++ {
		fl, errL := f(lo)
		fm, errM := f((lo + hi) / 2)
		fh, errH := f(hi)
		if errL != nil || errM != nil || errH != nil || (fm <= fl && fm <= fh) {
			break
		}
		if w := hi - lo; fl < fh {
			lo -= w
		} else {
			hi += w
		}
	}

	x1 := hi - gold*(hi-lo)
	x2 := lo + gold*(hi-lo)
	f1, err := f(x1)
	if err != nil {
		return 0, 0, err
	}
	f2, err := f(x2)
	if err != nil {
		return 0, 0, err
	}

	for iter := 0; iter < maxIter && hi-lo > tol; iter++ {
		if f1 < f2 {
			hi = x2
			x2, f2 = x1, f1
			x1 = hi - gold*(hi-lo)
			f1, err = f(x1)
		} else {
			lo = x1
			x1, f1 = x2, f2
			x2 = lo + gold*(hi-lo)
			f2, err = f(x2)
		}
		if err != nil {
			return 0, 0, err
		}
	}

	if f1 < f2 {
		return x1, f1, nil
	}
	return x2, f2, nil
}
