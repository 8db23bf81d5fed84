// Package stripper implements the dual-yield-curve staged solver: it takes
// a heterogeneous set of calibration instruments, pairs them by maturity
// proximity, and solves a sequence of coupled nonlinear systems so that,
// pillar by pillar, both a discounting curve and an index curve reprice
// their instruments to zero.
package stripper

import (
	"context"
	"fmt"
	"time"

	"github.com/meenmo/dualstrip/pairing"
	"github.com/meenmo/dualstrip/solver"
	"github.com/meenmo/dualstrip/swap"
	"github.com/meenmo/dualstrip/swap/config"
	"github.com/rs/zerolog"
)

// Stripper holds everything needed to run one strip.
type Stripper struct {
	factory         CurveFactory
	pairs           []pairing.Record
	leftovers       []Instrument
	nowDate         time.Time
	cfg             config.Config
	log             zerolog.Logger
	recorder        Recorder
	enablePowell    bool
	broydenStep     float64
	broydenTol      float64
	broydenMaxIter  int
	leftoverTol     float64
	leftoverMaxIter int
}

// Option configures a Stripper beyond its required constructor arguments.
type Option func(*Stripper)

// WithLogger attaches a structured logger. Calls are made at Warn level
// when a pair's Broyden solve does not converge, when the Powell fallback
// converges, and when persisting the result fails; pairing decisions are
// not logged and nothing is logged at Debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Stripper) { s.log = l }
}

// WithRecorder attaches a Recorder that persists the completed Result after
// a successful strip. A Save error is logged, not returned from Strip.
func WithRecorder(r Recorder) Option {
	return func(s *Stripper) { s.recorder = r }
}

// WithConfig overrides the package-level default configuration for this
// Stripper instance only.
func WithConfig(c config.Config) Option {
	return func(s *Stripper) {
		s.cfg = c
		s.broydenStep = c.BroydenStepSize
		s.broydenTol = c.BroydenTolerance
		s.broydenMaxIter = c.BroydenMaxIterations
		s.leftoverTol = c.LeftoverTolerance
		s.leftoverMaxIter = c.LeftoverMaxIterations
	}
}

// WithPowellFallback enables the optional SOS/Powell fallback for pair
// solves that fail to converge via Broyden. Disabled by default.
func WithPowellFallback(enabled bool) Option {
	return func(s *Stripper) { s.enablePowell = enabled }
}

// New plans the pairing of instruments and constructs a Stripper ready to
// Strip. It returns pairing.ErrInsufficientInstruments if fewer than two
// instruments are supplied, and ErrInsufficientPairs if every adjacent gap
// exceeded pairingDistance.
func New(factory CurveFactory, instruments []Instrument, nowDate time.Time, pairingDistance int, opts ...Option) (*Stripper, error) {
	planInsts := make([]pairing.Instrument, len(instruments))
	for i, inst := range instruments {
		planInsts[i] = inst
	}

	records, leftoverInsts, err := pairing.Plan(planInsts, pairingDistance)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrInsufficientPairs
	}

	leftovers := make([]Instrument, len(leftoverInsts))
	for i, inst := range leftoverInsts {
		leftovers[i] = inst.(Instrument)
	}

	cfg := config.GetConfig()
	s := &Stripper{
		factory:         factory,
		pairs:           records,
		leftovers:       leftovers,
		nowDate:         nowDate,
		cfg:             cfg,
		log:             zerolog.Nop(),
		broydenStep:     cfg.BroydenStepSize,
		broydenTol:      cfg.BroydenTolerance,
		broydenMaxIter:  cfg.BroydenMaxIterations,
		leftoverTol:     cfg.LeftoverTolerance,
		leftoverMaxIter: cfg.LeftoverMaxIterations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Strip runs the staged solve and returns the stripped curve pair and
// pillar schedules. ctx is threaded only to the optional Recorder; the
// numerical core is synchronous and never selects on it.
func (s *Stripper) Strip(ctx context.Context) (*Result, error) {
	var discDates, idxDates []time.Time
	var discAbs, idxAbs []float64

	for pairIdx, rec := range s.pairs {
		pairedDate := rec.PairedDate()
		discDates = append(discDates, pairedDate)
		for _, d := range rec.UnpairedDates() {
			idxDates = append(idxDates, d)
		}
		idxDates = append(idxDates, pairedDate)

		n := rec.NumInsts()
		fixedDiscAbs := append([]float64(nil), discAbs...)
		fixedIdxAbs := append([]float64(nil), idxAbs...)
		frozenDiscDates := append([]time.Time(nil), discDates...)
		frozenIdxDates := append([]time.Time(nil), idxDates...)

		residual := func(x []float64) ([]float64, error) {
			trialDiscAbs := append(append([]float64(nil), fixedDiscAbs...), x[0])
			trialIdxAbs := append(append([]float64(nil), fixedIdxAbs...), x[1:]...)

			disc, idx, err := s.factory.NewCurves(frozenDiscDates, trialDiscAbs, frozenIdxDates, trialIdxAbs)
			if err != nil {
				return nil, err
			}
			return evaluate(rec, disc, idx)
		}

		x0 := make([]float64, n)
		x0[0] = s.factory.DiscInitGuess()
		for j := 1; j < n; j++ {
			x0[j] = s.factory.IdxInitGuess()
		}

		res, err := solver.BroydenSolve(residual, x0, s.broydenMaxIter, s.broydenStep, s.broydenTol)
		if err != nil {
			return nil, fmt.Errorf("stripper: pair %d: %w", pairIdx, err)
		}
		if !res.Converged {
			s.log.Warn().Int("pair_index", pairIdx).Msg("broyden solve did not converge")
			if s.enablePowell {
				adapter := solver.SOSAdapter{F: residual}
				powellRes, powellErr := solver.PowellMinimize(adapter, x0, s.cfg.BroydenMaxIterations*2, s.broydenTol)
				if powellErr == nil && powellRes.Converged {
					s.log.Warn().Int("pair_index", pairIdx).Msg("broyden failed, powell fallback converged")
					res = powellRes
				} else {
					return nil, &SolverDidNotConvergeError{PairIndex: pairIdx, LastIterate: res.X}
				}
			} else {
				return nil, &SolverDidNotConvergeError{PairIndex: pairIdx, LastIterate: res.X}
			}
		}

		discAbs = append(discAbs, res.X[0])
		idxAbs = append(idxAbs, res.X[1:]...)
	}

	for _, inst := range s.leftovers {
		idxDates = append(idxDates, inst.End())

		frozenDiscDates := append([]time.Time(nil), discDates...)
		frozenDiscAbs := append([]float64(nil), discAbs...)
		frozenIdxDates := append([]time.Time(nil), idxDates...)
		fixedIdxAbs := append([]float64(nil), idxAbs...)

		g := func(u float64) (float64, error) {
			trialIdxAbs := append(append([]float64(nil), fixedIdxAbs...), u)
			disc, idx, err := s.factory.NewCurves(frozenDiscDates, frozenDiscAbs, frozenIdxDates, trialIdxAbs)
			if err != nil {
				return 0, err
			}
			return inst.Residual(disc, idx)
		}

		seed := 1.0
		if len(idxAbs) > 0 {
			seed = idxAbs[len(idxAbs)-1]
		}

		res1D, err := solver.BrentSolve(g, seed, s.leftoverTol, s.leftoverMaxIter)
		if err != nil || !res1D.Converged {
			return nil, &LeftoverSolveFailedError{Instrument: inst, Cause: err}
		}
		idxAbs = append(idxAbs, res1D.X)
	}

	discCurve, idxCurve, err := s.factory.NewCurves(discDates, discAbs, idxDates, idxAbs)
	if err != nil {
		return nil, fmt.Errorf("stripper: final curve assembly: %w", err)
	}

	result := &Result{
		DiscCurve: discCurve,
		IdxCurve:  idxCurve,
		DiscDates: discDates,
		DiscAbs:   discAbs,
		IdxDates:  idxDates,
		IdxAbs:    idxAbs,
		NowDate:   s.nowDate,
	}

	if s.recorder != nil {
		runID, err := s.recorder.Save(ctx, result)
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to persist strip result")
		} else {
			result.RunID = runID
			result.GeneratedAt = time.Now()
		}
	}

	return result, nil
}

// evaluate fills the residual vector for a pairing record in the fixed
// order [A, B, Preceding[0], ...].
func evaluate(r pairing.Record, disc swap.DiscountCurve, idx swap.ProjectionCurve) ([]float64, error) {
	out := make([]float64, r.NumInsts())

	a, ok := r.A.(Instrument)
	if !ok {
		return nil, fmt.Errorf("stripper: pairing.Record.A does not implement Instrument")
	}
	va, err := a.Residual(disc, idx)
	if err != nil {
		return nil, err
	}
	out[0] = va

	b, ok := r.B.(Instrument)
	if !ok {
		return nil, fmt.Errorf("stripper: pairing.Record.B does not implement Instrument")
	}
	vb, err := b.Residual(disc, idx)
	if err != nil {
		return nil, err
	}
	out[1] = vb

	for j, p := range r.Preceding {
		inst, ok := p.(Instrument)
		if !ok {
			return nil, fmt.Errorf("stripper: pairing.Record.Preceding[%d] does not implement Instrument", j)
		}
		v, err := inst.Residual(disc, idx)
		if err != nil {
			return nil, err
		}
		out[2+j] = v
	}

	return out, nil
}
