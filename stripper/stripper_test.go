package stripper_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/meenmo/dualstrip/stripper"
	"github.com/meenmo/dualstrip/swap"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func day(serial int) time.Time { return epoch.AddDate(0, 0, serial) }

// fakeCurve is a direct date -> discount-factor lookup, standing in for a
// real curve so these tests can check the staged solver's algebra without
// pulling in the full swap pricing kernel.
type fakeCurve struct {
	dfs map[time.Time]float64
}

func (c *fakeCurve) DF(t time.Time) float64         { return c.dfs[t] }
func (c *fakeCurve) ZeroRateAt(t time.Time) float64 { return -math.Log(c.dfs[t]) }

var _ swap.DiscountCurve = (*fakeCurve)(nil)
var _ swap.ProjectionCurve = (*fakeCurve)(nil)

// fakeFactory builds fakeCurves directly from the supplied pillars, so a
// trial abscissa at a given date is recoverable by looking that date up on
// the resulting curve.
type fakeFactory struct{}

func (fakeFactory) NewCurves(discDates []time.Time, discAbs []float64, idxDates []time.Time, idxAbs []float64) (swap.DiscountCurve, swap.ProjectionCurve, error) {
	if len(discDates) != len(discAbs) || len(idxDates) != len(idxAbs) {
		return nil, nil, errors.New("fakeFactory: mismatched lengths")
	}
	discMap := make(map[time.Time]float64, len(discDates))
	for i, d := range discDates {
		discMap[d] = discAbs[i]
	}
	idxMap := make(map[time.Time]float64, len(idxDates))
	for i, d := range idxDates {
		idxMap[d] = idxAbs[i]
	}
	return &fakeCurve{dfs: discMap}, &fakeCurve{dfs: idxMap}, nil
}

func (fakeFactory) DiscInitGuess() float64 { return 1.0 }
func (fakeFactory) IdxInitGuess() float64  { return 1.0 }

// targetInstrument matures at "end" (used for pairing/sorting) and probes
// the discounting or index curve at "probe" (the pillar date its residual
// actually depends on). For the later element of a pair, and for any
// preceding/trailing leftover, probe equals end: its own maturity becomes a
// pillar directly. For the earlier element of a pair, probe is that pair's
// paired date (the later element's end), since only the paired date -- not
// the earlier instrument's own maturity -- is added as a pillar.
type targetInstrument struct {
	end    time.Time
	probe  time.Time
	side   string // "disc" or "idx"
	target float64
}

func (t *targetInstrument) End() time.Time { return t.end }

func (t *targetInstrument) Residual(disc swap.DiscountCurve, idx swap.ProjectionCurve) (float64, error) {
	if t.side == "disc" {
		return disc.DF(t.probe) - t.target, nil
	}
	return idx.DF(t.probe) - t.target, nil
}

var _ stripper.Instrument = (*targetInstrument)(nil)

// pairedInsts builds the two instruments for one pair: the earlier-maturity
// discounting-side instrument (probing the paired date) and the
// later-maturity, paired-date index-side instrument.
func pairedInsts(aSerial, bSerial int, aTarget, bTarget float64) (a, b *targetInstrument) {
	paired := day(bSerial)
	a = &targetInstrument{end: day(aSerial), probe: paired, side: "disc", target: aTarget}
	b = &targetInstrument{end: paired, probe: paired, side: "idx", target: bTarget}
	return a, b
}

// leftoverInst builds a preceding- or trailing-leftover instrument, whose
// own maturity is always added as a pillar directly.
func leftoverInst(serial int, target float64) *targetInstrument {
	d := day(serial)
	return &targetInstrument{end: d, probe: d, side: "idx", target: target}
}

func TestStrip_TwoInstrumentsOnePair(t *testing.T) {
	t.Parallel()

	a, b := pairedInsts(100, 105, 0.99, 0.98)
	insts := []stripper.Instrument{a, b}
	s, err := stripper.New(fakeFactory{}, insts, day(0), 7)
	require.NoError(t, err)

	res, err := s.Strip(context.Background())
	require.NoError(t, err)
	require.Len(t, res.DiscDates, 1)
	require.Len(t, res.IdxDates, 1)
	require.Equal(t, day(105), res.DiscDates[0])
	require.Equal(t, day(105), res.IdxDates[0])
	require.InDelta(t, 0.99, res.DiscAbs[0], 1e-8)
	require.InDelta(t, 0.98, res.IdxAbs[0], 1e-8)

	for _, inst := range insts {
		r, err := inst.(*targetInstrument).Residual(res.DiscCurve, res.IdxCurve)
		require.NoError(t, err)
		require.Less(t, math.Abs(r), 1e-9)
	}
}

func TestStrip_PrecedingLeftover(t *testing.T) {
	t.Parallel()

	preceding := leftoverInst(100, 0.999)
	a, b := pairedInsts(200, 205, 0.97, 0.96)
	insts := []stripper.Instrument{preceding, a, b}
	s, err := stripper.New(fakeFactory{}, insts, day(0), 10)
	require.NoError(t, err)

	res, err := s.Strip(context.Background())
	require.NoError(t, err)
	require.Equal(t, []time.Time{day(205)}, res.DiscDates)
	require.Equal(t, []time.Time{day(100), day(205)}, res.IdxDates)
	require.InDelta(t, 0.999, res.IdxAbs[0], 1e-8)
	require.InDelta(t, 0.96, res.IdxAbs[1], 1e-8)
}

func TestStrip_TwoPairsNoLeftovers(t *testing.T) {
	t.Parallel()

	a1, b1 := pairedInsts(100, 105, 0.999, 0.998)
	a2, b2 := pairedInsts(200, 205, 0.99, 0.98)
	insts := []stripper.Instrument{a1, b1, a2, b2}
	s, err := stripper.New(fakeFactory{}, insts, day(0), 10)
	require.NoError(t, err)

	res, err := s.Strip(context.Background())
	require.NoError(t, err)
	require.Equal(t, []time.Time{day(105), day(205)}, res.DiscDates)
	require.Equal(t, []time.Time{day(105), day(205)}, res.IdxDates)
}

func TestStrip_InsufficientPairs(t *testing.T) {
	t.Parallel()

	insts := []stripper.Instrument{leftoverInst(100, 0.9), leftoverInst(200, 0.8), leftoverInst(400, 0.7)}
	_, err := stripper.New(fakeFactory{}, insts, day(0), 10)
	require.ErrorIs(t, err, stripper.ErrInsufficientPairs)
}

func TestStrip_TwoPairsOnePrecedingLeftover(t *testing.T) {
	t.Parallel()

	a1, b1 := pairedInsts(100, 105, 0.999, 0.998)
	preceding := leftoverInst(300, 0.99)
	a2, b2 := pairedInsts(600, 605, 0.9, 0.89)
	insts := []stripper.Instrument{a1, b1, preceding, a2, b2}
	s, err := stripper.New(fakeFactory{}, insts, day(0), 10)
	require.NoError(t, err)

	res, err := s.Strip(context.Background())
	require.NoError(t, err)
	require.Equal(t, []time.Time{day(105), day(605)}, res.DiscDates)
	require.Equal(t, []time.Time{day(105), day(300), day(605)}, res.IdxDates)
}

func TestStrip_OnePairOneTrailingLeftover(t *testing.T) {
	t.Parallel()

	a, b := pairedInsts(100, 105, 0.999, 0.998)
	trailing := leftoverInst(400, 0.95)
	insts := []stripper.Instrument{a, b, trailing}
	s, err := stripper.New(fakeFactory{}, insts, day(0), 10)
	require.NoError(t, err)

	res, err := s.Strip(context.Background())
	require.NoError(t, err)
	require.Equal(t, []time.Time{day(105)}, res.DiscDates)
	require.Equal(t, []time.Time{day(105), day(400)}, res.IdxDates)
	require.InDelta(t, 0.95, res.IdxAbs[1], 1e-6)
}

func TestStrip_VectorLengthInvariantProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("disc/idx vector lengths match pairs and leftovers", prop.ForAll(
		func(n int) bool {
			// Build n well-separated pairs (guarantees n pairs, 0 leftovers).
			insts := make([]stripper.Instrument, 0, 2*n)
			for i := 0; i < n; i++ {
				base := 1000 * (i + 1)
				a, b := pairedInsts(base, base+1, 0.9, 0.89)
				insts = append(insts, a, b)
			}

			s, err := stripper.New(fakeFactory{}, insts, day(0), 5)
			if err != nil {
				return false
			}
			res, err := s.Strip(context.Background())
			if err != nil {
				return false
			}
			if len(res.DiscDates) != n || len(res.DiscAbs) != n {
				return false
			}
			if len(res.IdxDates) != n || len(res.IdxAbs) != n {
				return false
			}
			for i := 1; i < len(res.DiscDates); i++ {
				if res.DiscDates[i].Before(res.DiscDates[i-1]) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t)
}
