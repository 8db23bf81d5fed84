package stripper

import (
	"context"
	"time"

	"github.com/meenmo/dualstrip/swap"
)

// Result is the outcome of a successful strip: the final curve pair plus
// the pillar schedules that produced it.
type Result struct {
	DiscCurve swap.DiscountCurve
	IdxCurve  swap.ProjectionCurve

	DiscDates []time.Time
	DiscAbs   []float64
	IdxDates  []time.Time
	IdxAbs    []float64

	NowDate time.Time

	// RunID and GeneratedAt are populated when the result is persisted via
	// a Recorder; zero-valued otherwise.
	RunID       string
	GeneratedAt time.Time
}

// Recorder persists a completed strip for audit purposes. Persistence
// failures are logged by the caller, not surfaced as a strip failure.
type Recorder interface {
	Save(ctx context.Context, result *Result) (runID string, err error)
}
