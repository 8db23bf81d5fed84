package stripper

import (
	"time"

	"github.com/meenmo/dualstrip/pairing"
	"github.com/meenmo/dualstrip/swap"
	"github.com/meenmo/dualstrip/swap/market"
)

// Instrument is a calibration instrument: it matures on End() and, given a
// candidate discounting/index curve pair, reports how far it is from zero
// mark-to-market. It embeds pairing.Instrument so a slice of Instrument can
// be handed directly to pairing.Plan.
type Instrument interface {
	pairing.Instrument
	Residual(disc swap.DiscountCurve, idx swap.ProjectionCurve) (float64, error)
}

// SwapInstrument adapts a market.SwapSpec into an Instrument by pricing it
// with the existing swap.NPV pricing kernel: the residual is simply the
// swap's NPV under the candidate curves, which a correctly-calibrated
// pillar drives to zero.
//
// FloatAgainstDisc distinguishes the two roles a swap instrument can play in
// a strip: an overnight-index instrument calibrates the discounting curve
// itself and so projects its floating leg(s) off disc, while an IBOR
// instrument calibrates the index curve and projects off idx.
type SwapInstrument struct {
	Spec             market.SwapSpec
	ProjPay          swap.ProjectionCurve
	ProjRec          swap.ProjectionCurve
	ValuationDate    time.Time
	FloatAgainstDisc bool
}

// NewSwapInstrument builds an index-calibrating SwapInstrument: floating
// legs project off the candidate index curve. projPay/projRec may be nil
// when the corresponding leg is fixed (swap.NPV ignores the projection
// curve for a fixed leg).
func NewSwapInstrument(spec market.SwapSpec, projPay, projRec swap.ProjectionCurve, valuationDate time.Time) *SwapInstrument {
	return &SwapInstrument{Spec: spec, ProjPay: projPay, ProjRec: projRec, ValuationDate: valuationDate}
}

// NewOISInstrument builds a discounting-calibrating SwapInstrument: its
// floating (overnight) leg projects off the same candidate discounting
// curve it is discounted with, rather than the index curve.
func NewOISInstrument(spec market.SwapSpec, valuationDate time.Time) *SwapInstrument {
	return &SwapInstrument{Spec: spec, ValuationDate: valuationDate, FloatAgainstDisc: true}
}

// End returns the swap's maturity date.
func (s *SwapInstrument) End() time.Time {
	return s.Spec.MaturityDate
}

// Residual prices the swap under the candidate curves and returns its NPV.
func (s *SwapInstrument) Residual(disc swap.DiscountCurve, idx swap.ProjectionCurve) (float64, error) {
	floatCurve := idx
	if s.FloatAgainstDisc {
		floatCurve = disc
	}
	projPay, projRec := s.ProjPay, s.ProjRec
	if s.Spec.PayLeg.LegType == market.LegFloating {
		projPay = floatCurve
	}
	if s.Spec.RecLeg.LegType == market.LegFloating {
		projRec = floatCurve
	}
	return swap.NPV(s.Spec, projPay, projRec, disc, s.ValuationDate)
}
