// Package pairing implements the maturity-proximity pairing planner: given a
// set of calibration instruments, it decides which are close enough in
// maturity to be joint-solved at a single discounting pillar, and which are
// left to be solved individually once every pair has been processed.
package pairing

import (
	"errors"
	"sort"
	"time"
)

// ErrInsufficientInstruments is returned when fewer than two instruments are
// supplied to Plan.
var ErrInsufficientInstruments = errors.New("pairing: need at least two instruments")

// Instrument is anything with a maturity date that the planner can order and
// pair by proximity. The stripper's Instrument interface embeds this.
type Instrument interface {
	End() time.Time
}

// Record pairs two instruments (A, B) whose maturities fall within the
// configured pairing distance, along with every instrument that was seen
// since the previous pair and could not be paired (Preceding).
//
// Invariant: A.End() <= B.End(); every element of Preceding has
// End() < A.End().
type Record struct {
	A, B      Instrument
	Preceding []Instrument
}

// PairedDate is the later of the two paired instruments' end dates.
func (r Record) PairedDate() time.Time {
	if r.A.End().After(r.B.End()) {
		return r.A.End()
	}
	return r.B.End()
}

// NumInsts is the dimensionality of the joint residual for this record: the
// pair itself plus one degree of freedom per preceding unpaired instrument.
func (r Record) NumInsts() int {
	return 2 + len(r.Preceding)
}

// UnpairedDates returns the end dates of the preceding unpaired instruments,
// in order.
func (r Record) UnpairedDates() []time.Time {
	out := make([]time.Time, len(r.Preceding))
	for i, inst := range r.Preceding {
		out[i] = inst.End()
	}
	return out
}

// Plan sorts instruments by End() (stable) and partitions them into pairs
// and trailing leftovers.
//
// Algorithm: walk the sorted list with a pending buffer of so-far-unpaired
// instruments. If the current and next instrument's end dates are within
// pairingDistance days, emit a Record pairing them (carrying along whatever
// had accumulated in pending) and clear the buffer; otherwise push the
// current instrument into pending and advance by one. The final instrument,
// if left unpaired, and anything still in pending at the end, become the
// returned leftovers slice.
func Plan(instruments []Instrument, pairingDistance int) (pairs []Record, leftovers []Instrument, err error) {
	if len(instruments) < 2 {
		return nil, nil, ErrInsufficientInstruments
	}

	sorted := make([]Instrument, len(instruments))
	copy(sorted, instruments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].End().Before(sorted[j].End())
	})

	var pending []Instrument
	i := 0
	for i < len(sorted) {
		if i == len(sorted)-1 {
			pending = append(pending, sorted[i])
			i++
			continue
		}

		a, b := sorted[i], sorted[i+1]
		if gapDays(a.End(), b.End()) <= pairingDistance {
			pairs = append(pairs, Record{A: a, B: b, Preceding: pending})
			pending = nil
			i += 2
		} else {
			pending = append(pending, a)
			i++
		}
	}

	return pairs, pending, nil
}

// gapDays returns the absolute distance, in whole days, between two dates.
// Instruments are pre-sorted so b is never before a; abs() is defensive.
func gapDays(a, b time.Time) int {
	d := int(b.Sub(a).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d
}
