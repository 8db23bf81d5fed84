package pairing_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/meenmo/dualstrip/pairing"
	"github.com/stretchr/testify/require"
)

// fakeInstrument is the minimal pairing.Instrument used across these tests:
// a maturity expressed as a serial day offset from an arbitrary epoch.
type fakeInstrument struct {
	serial int
}

var epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func inst(serial int) *fakeInstrument { return &fakeInstrument{serial: serial} }

func (f *fakeInstrument) End() time.Time { return epoch.AddDate(0, 0, f.serial) }

func datesToSerials(t *testing.T, dates []time.Time) []int {
	t.Helper()
	out := make([]int, len(dates))
	for i, d := range dates {
		out[i] = int(d.Sub(epoch).Hours() / 24)
	}
	return out
}

func TestPlan_TwoInstrumentsWithinDistance(t *testing.T) {
	t.Parallel()

	pairs, leftovers, err := pairing.Plan([]pairing.Instrument{inst(100), inst(105)}, 7)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Empty(t, leftovers)
	require.Equal(t, 105, int(pairs[0].PairedDate().Sub(epoch).Hours()/24))
}

func TestPlan_PrecedingLeftover(t *testing.T) {
	t.Parallel()

	pairs, leftovers, err := pairing.Plan([]pairing.Instrument{inst(100), inst(200), inst(205)}, 10)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Empty(t, leftovers)
	require.Equal(t, 1, len(pairs[0].Preceding))
	require.Equal(t, []int{100}, datesToSerials(t, pairs[0].UnpairedDates()))
	require.Equal(t, 205, int(pairs[0].PairedDate().Sub(epoch).Hours()/24))
}

func TestPlan_TwoPairsNoLeftovers(t *testing.T) {
	t.Parallel()

	pairs, leftovers, err := pairing.Plan([]pairing.Instrument{inst(100), inst(105), inst(200), inst(205)}, 10)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Empty(t, leftovers)
	require.Equal(t, 105, int(pairs[0].PairedDate().Sub(epoch).Hours()/24))
	require.Equal(t, 205, int(pairs[1].PairedDate().Sub(epoch).Hours()/24))
}

func TestPlan_NoPairsFormed(t *testing.T) {
	t.Parallel()

	pairs, leftovers, err := pairing.Plan([]pairing.Instrument{inst(100), inst(200), inst(400)}, 10)
	require.NoError(t, err)
	require.Empty(t, pairs)
	require.Len(t, leftovers, 3)
}

func TestPlan_TwoPairsWithOnePrecedingLeftover(t *testing.T) {
	t.Parallel()

	pairs, leftovers, err := pairing.Plan([]pairing.Instrument{
		inst(100), inst(105), inst(300), inst(600), inst(605),
	}, 10)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Empty(t, leftovers)

	require.Equal(t, 105, int(pairs[0].PairedDate().Sub(epoch).Hours()/24))
	require.Empty(t, pairs[0].Preceding)

	require.Equal(t, 605, int(pairs[1].PairedDate().Sub(epoch).Hours()/24))
	require.Equal(t, []int{300}, datesToSerials(t, pairs[1].UnpairedDates()))
}

func TestPlan_OnePairOneTrailingLeftover(t *testing.T) {
	t.Parallel()

	pairs, leftovers, err := pairing.Plan([]pairing.Instrument{inst(100), inst(105), inst(400)}, 10)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Len(t, leftovers, 1)
	require.Equal(t, 105, int(pairs[0].PairedDate().Sub(epoch).Hours()/24))
	require.Equal(t, 400, int(leftovers[0].End().Sub(epoch).Hours()/24))
}

func TestPlan_InsufficientInstruments(t *testing.T) {
	t.Parallel()

	_, _, err := pairing.Plan([]pairing.Instrument{inst(100)}, 10)
	require.ErrorIs(t, err, pairing.ErrInsufficientInstruments)

	_, _, err = pairing.Plan(nil, 10)
	require.ErrorIs(t, err, pairing.ErrInsufficientInstruments)
}

func TestPlan_OrderInvarianceUnderShuffling(t *testing.T) {
	t.Parallel()

	base := []pairing.Instrument{inst(100), inst(105), inst(300), inst(600), inst(605)}
	want, _, err := pairing.Plan(base, 10)
	require.NoError(t, err)

	shuffled := append([]pairing.Instrument(nil), base...)
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	got, _, err := pairing.Plan(shuffled, 10)
	require.NoError(t, err)

	require.Equal(t, len(want), len(got))
	for i := range want {
		require.Equal(t, want[i].PairedDate(), got[i].PairedDate())
		require.Equal(t, want[i].UnpairedDates(), got[i].UnpairedDates())
	}
}

func TestRecord_NumInsts(t *testing.T) {
	t.Parallel()

	rec := pairing.Record{A: inst(100), B: inst(105), Preceding: []pairing.Instrument{inst(90)}}
	require.Equal(t, 3, rec.NumInsts())
}
