package config

// Config holds solver and curve construction parameters.
// DefaultPairingDistance is read by cmd/strip and the Broyden and leftover
// fields by the stripper. The bootstrap and par-spread fields are not read
// by the curve or swap code, which use their own fixed values.
type Config struct {
	// ConvergenceTolerance is the NPV tolerance for Newton-Raphson convergence.
	ConvergenceTolerance float64

	// MaxBootstrapIterations is the maximum iterations for curve bootstrap.
	MaxBootstrapIterations int

	// MaxSpreadIterations is the maximum iterations for par spread solving.
	MaxSpreadIterations int

	// DampingFactor limits Newton step size to prevent overshooting.
	// Delta is clamped to DampingFactor * currentGuess.
	DampingFactor float64

	// MaxPaymentDates is the maximum number of payment dates to generate.
	// 600 supports up to 50Y with monthly frequency.
	MaxPaymentDates int

	// MinDiscountFactor is the floor for discount factors to prevent
	// numerical instability (division by near-zero).
	MinDiscountFactor float64

	// DerivativeThreshold is the minimum derivative magnitude.
	// Below this, Newton iteration stops to avoid division by near-zero.
	DerivativeThreshold float64

	// PVToleranceMultiplier scales the notional to compute PV tolerance.
	// PV tolerance = PVToleranceMultiplier * max(1.0, abs(notional))
	PVToleranceMultiplier float64

	// DefaultPairingDistance is the maximum gap, in days, between two
	// adjacent instruments' end dates for the pairing planner to join
	// them into a single joint-solve stage.
	DefaultPairingDistance int

	// BroydenMaxIterations bounds the multidimensional solver used for
	// each paired stage.
	BroydenMaxIterations int

	// BroydenTolerance is the uniform termination tolerance applied to
	// every residual component of the multidimensional solver.
	BroydenTolerance float64

	// BroydenStepSize is the finite-difference step used to seed the
	// solver's initial Jacobian approximation.
	BroydenStepSize float64

	// LeftoverMaxIterations bounds the 1-D solver used for trailing
	// unpaired instruments once every pair has been stripped.
	LeftoverMaxIterations int

	// LeftoverTolerance is the residual tolerance for the 1-D solver.
	LeftoverTolerance float64
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	ConvergenceTolerance:   1e-12,
	MaxBootstrapIterations: 100,
	MaxSpreadIterations:    10,
	DampingFactor:          0.5,
	MaxPaymentDates:        600,
	MinDiscountFactor:      1e-9,
	DerivativeThreshold:    1e-15,
	PVToleranceMultiplier:  1e-10,

	DefaultPairingDistance: 7,
	BroydenMaxIterations:   100,
	BroydenTolerance:       1e-9,
	BroydenStepSize:        1e-5,
	LeftoverMaxIterations:  25,
	LeftoverTolerance:      1e-9,
}

// cfg is the active configuration. Defaults to DefaultConfig.
var cfg = DefaultConfig

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	return cfg
}
