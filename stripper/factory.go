package stripper

import (
	"time"

	"github.com/meenmo/dualstrip/calendar"
	"github.com/meenmo/dualstrip/swap"
	"github.com/meenmo/dualstrip/swap/curve"
)

// CurveFactory produces a discounting/index curve pair from aligned
// (dates, abscissa) vectors and supplies the solver's initial-guess
// abscissa values. Implementations are immutable.
type CurveFactory interface {
	NewCurves(discDates []time.Time, discAbs []float64, idxDates []time.Time, idxAbs []float64) (swap.DiscountCurve, swap.ProjectionCurve, error)
	DiscInitGuess() float64
	IdxInitGuess() float64
}

// dualCurveFactory adapts curve.DualCurveFactory (which returns concrete
// *curve.Curve values, to avoid an import cycle through the swap package)
// to the CurveFactory interface expressed in terms of swap's curve
// interfaces.
type dualCurveFactory struct {
	inner *curve.DualCurveFactory
}

// NewCurveFactory returns a CurveFactory anchored at settlement under cal,
// backed by curve.NewCurveFromDFs with no interpolation grid beyond the
// supplied pillars.
func NewCurveFactory(settlement time.Time, cal calendar.CalendarID) CurveFactory {
	return &dualCurveFactory{inner: curve.NewDualCurveFactory(settlement, cal)}
}

func (f *dualCurveFactory) NewCurves(discDates []time.Time, discAbs []float64, idxDates []time.Time, idxAbs []float64) (swap.DiscountCurve, swap.ProjectionCurve, error) {
	disc, idx, err := f.inner.NewCurves(discDates, discAbs, idxDates, idxAbs)
	if err != nil {
		return nil, nil, err
	}
	return disc, idx, nil
}

func (f *dualCurveFactory) DiscInitGuess() float64 { return f.inner.DiscInitGuess() }
func (f *dualCurveFactory) IdxInitGuess() float64  { return f.inner.IdxInitGuess() }
