package curve

import (
	"fmt"
	"time"

	"github.com/meenmo/dualstrip/calendar"
)

// FactoryRejectedError reports that a DualCurveFactory refused a
// (dates, abscissa) combination, e.g. mismatched lengths or non-monotone
// dates.
type FactoryRejectedError struct {
	Side   string // "discounting" or "index"
	Reason string
}

func (e *FactoryRejectedError) Error() string {
	return fmt.Sprintf("curve factory rejected %s side: %s", e.Side, e.Reason)
}

// DualCurveFactory builds curves directly from pillar dates and discount
// factors via NewCurveFromDFs with freqMonths <= 0, so no interpolation grid
// is introduced beyond the supplied pillars. It returns concrete *Curve
// values rather than the swap package's curve interfaces to avoid an import
// cycle (swap already imports swap/curve); callers assign the result to
// swap.DiscountCurve/swap.ProjectionCurve, which *Curve already satisfies.
type DualCurveFactory struct {
	Settlement time.Time
	Calendar   calendar.CalendarID
}

// NewDualCurveFactory returns a factory anchored at settlement under cal.
func NewDualCurveFactory(settlement time.Time, cal calendar.CalendarID) *DualCurveFactory {
	return &DualCurveFactory{Settlement: settlement, Calendar: cal}
}

// NewCurves builds the discounting and index curves from aligned pillar
// vectors. len(discDates) must equal len(discAbs), likewise for the index
// side; dates on each side must be non-decreasing.
func (f *DualCurveFactory) NewCurves(discDates []time.Time, discAbs []float64, idxDates []time.Time, idxAbs []float64) (*Curve, *Curve, error) {
	discCurve, err := f.buildOne("discounting", discDates, discAbs)
	if err != nil {
		return nil, nil, err
	}
	idxCurve, err := f.buildOne("index", idxDates, idxAbs)
	if err != nil {
		return nil, nil, err
	}
	return discCurve, idxCurve, nil
}

func (f *DualCurveFactory) buildOne(side string, dates []time.Time, abs []float64) (*Curve, error) {
	if len(dates) != len(abs) {
		return nil, &FactoryRejectedError{Side: side, Reason: fmt.Sprintf("len(dates)=%d != len(abs)=%d", len(dates), len(abs))}
	}
	if len(dates) == 0 {
		return nil, &FactoryRejectedError{Side: side, Reason: "no pillars supplied"}
	}

	dfs := make(map[time.Time]float64, len(dates)+1)
	dfs[f.Settlement] = 1.0
	prev := f.Settlement
	for i, d := range dates {
		if d.Before(prev) {
			return nil, &FactoryRejectedError{Side: side, Reason: fmt.Sprintf("dates not monotone at index %d", i)}
		}
		dfs[d] = abs[i]
		prev = d
	}

	return NewCurveFromDFs(f.Settlement, dfs, f.Calendar, 0), nil
}

// DiscInitGuess is the initial guess supplied to the solver for a new
// discounting abscissa: a discount factor close to par (1.0).
func (f *DualCurveFactory) DiscInitGuess() float64 { return 1.0 }

// IdxInitGuess is the initial guess for a new index abscissa.
func (f *DualCurveFactory) IdxInitGuess() float64 { return 1.0 }
