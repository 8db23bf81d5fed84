// Command strip reads a discounting/index swap quote set as JSON and prints
// the stripped dual-curve pillar schedule.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/meenmo/dualstrip/calendar"
	"github.com/meenmo/dualstrip/stripper"
	"github.com/meenmo/dualstrip/swap"
	"github.com/meenmo/dualstrip/swap/config"
	"github.com/meenmo/dualstrip/swap/market"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Quote is one calibration instrument's tenor and par rate (percent).
type Quote struct {
	TenorYears int     `json:"tenor_years"`
	RatePct    float64 `json:"rate_pct"`
}

// Input is the JSON schema this command reads.
//
// OISQuotes calibrate the discounting curve via fixed-vs-overnight swaps;
// IndexQuotes calibrate the index/projection curve via fixed-vs-IBOR swaps
// discounted off the already-being-stripped discounting curve.
type Input struct {
	CurveDate       string  `json:"curve_date"`
	Calendar        string  `json:"calendar"`    // TARGET, JPN, FD, GT, KOR; default TARGET
	IndexName       string  `json:"index"`        // EURIBOR3M, EURIBOR6M, TIBOR3M, TIBOR6M, SOFR, TONAR, CD91D
	Notional        float64 `json:"notional"`
	PairingDistance int     `json:"pairing_distance"` // days; 0 uses the package default
	OISQuotes       []Quote `json:"ois_quotes"`
	IndexQuotes     []Quote `json:"index_quotes"`
}

type pillarOutput struct {
	Date string  `json:"date"`
	DF   float64 `json:"df"`
}

type Output struct {
	DiscPillars []pillarOutput `json:"disc_pillars"`
	IdxPillars  []pillarOutput `json:"idx_pillars"`
	Error       string         `json:"error,omitempty"`
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("strip", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "", "JSON input path (optional; if set, ignores stdin)")
	help := fs.Bool("h", false, "Show help")
	fs.BoolVar(help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		usage(stderr)
		return 0
	}

	inputBytes, err := readInput(stdin, strings.TrimSpace(*inputPath))
	if err != nil {
		return writeError(stdout, fmt.Sprintf("failed to read input: %v", err))
	}

	var input Input
	if err := json.Unmarshal(inputBytes, &input); err != nil {
		return writeError(stdout, fmt.Sprintf("failed to parse JSON input: %v", err))
	}

	fmt.Fprintf(stderr, "stripping %s OIS quotes, %s index quotes (notional %s)\n",
		humanize.Comma(int64(len(input.OISQuotes))),
		humanize.Comma(int64(len(input.IndexQuotes))),
		humanizeNotional(input.Notional))

	output, err := stripFromInput(input)
	if err != nil {
		return writeError(stdout, err.Error())
	}

	outputBytes, _ := json.MarshalIndent(output, "", "  ")
	fmt.Fprintln(stdout, string(outputBytes))
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  strip < input.json")
	fmt.Fprintln(w, "  strip -input /path/to/input.json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Read a discounting/index quote set as JSON, strip the dual curve pair,")
	fmt.Fprintln(w, "and print the resulting pillar schedule as JSON.")
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(stdin)
}

func writeError(stdout io.Writer, msg string) int {
	outputBytes, _ := json.MarshalIndent(Output{Error: msg}, "", "  ")
	fmt.Fprintln(stdout, string(outputBytes))
	return 1
}

func stripFromInput(input Input) (Output, error) {
	curveDate, err := time.Parse("2006-01-02", input.CurveDate)
	if err != nil {
		return Output{}, fmt.Errorf("strip: invalid curve_date: %w", err)
	}
	cal := resolveCalendar(input.Calendar)
	idxRef := resolveIndex(input.IndexName, cal)

	notional := input.Notional
	if notional == 0 {
		notional = 10_000_000
	}
	pairingDistance := input.PairingDistance
	if pairingDistance == 0 {
		pairingDistance = config.GetConfig().DefaultPairingDistance
	}

	settlement := calendar.AddBusinessDays(cal, curveDate, 2)
	dcc := swap.GetDayCountConvention(cal)

	instruments := make([]stripper.Instrument, 0, len(input.OISQuotes)+len(input.IndexQuotes))
	for _, q := range input.OISQuotes {
		spec := buildOISSpec(settlement, q, notional, cal, dcc)
		instruments = append(instruments, stripper.NewOISInstrument(spec, settlement))
	}
	for _, q := range input.IndexQuotes {
		spec := buildIndexSpec(settlement, q, notional, cal, idxRef, dcc)
		instruments = append(instruments, stripper.NewSwapInstrument(spec, nil, nil, settlement))
	}

	factory := stripper.NewCurveFactory(settlement, cal)
	s, err := stripper.New(factory, instruments, settlement, pairingDistance)
	if err != nil {
		return Output{}, fmt.Errorf("strip: %w", err)
	}

	result, err := s.Strip(context.Background())
	if err != nil {
		return Output{}, fmt.Errorf("strip: %w", err)
	}

	return Output{
		DiscPillars: toPillars(result.DiscDates, result.DiscAbs),
		IdxPillars:  toPillars(result.IdxDates, result.IdxAbs),
	}, nil
}

func toPillars(dates []time.Time, abs []float64) []pillarOutput {
	out := make([]pillarOutput, len(dates))
	for i := range dates {
		out[i] = pillarOutput{Date: dates[i].Format("2006-01-02"), DF: abs[i]}
	}
	return out
}

func resolveCalendar(s string) calendar.CalendarID {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "JPN", "JP":
		return calendar.JP
	case "FD":
		return calendar.FD
	case "GT":
		return calendar.GT
	case "KOR", "KR":
		return calendar.KR
	default:
		return calendar.TARGET
	}
}

func resolveIndex(s string, cal calendar.CalendarID) market.ReferenceIndex {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EURIBOR3M":
		return market.EURIBOR3M
	case "EURIBOR6M":
		return market.EURIBOR6M
	case "TIBOR3M":
		return market.TIBOR3M
	case "TIBOR6M":
		return market.TIBOR6M
	case "SOFR":
		return market.SOFR
	case "TONAR":
		return market.TONAR
	case "CD91D":
		return market.CD91D
	default:
		if cal == calendar.JP {
			return market.TIBOR6M
		}
		return market.EURIBOR6M
	}
}

func overnightIndexFor(cal calendar.CalendarID) market.ReferenceIndex {
	switch cal {
	case calendar.JP:
		return market.TONAR
	case calendar.FD, calendar.GT:
		return market.SOFR
	default:
		return market.ESTR
	}
}

func buildOISSpec(settlement time.Time, q Quote, notional float64, cal calendar.CalendarID, dcc swap.DayCountConvention) market.SwapSpec {
	maturity := calendar.AddYearsWithRoll(cal, settlement, q.TenorYears)
	fixedLeg := market.LegConvention{
		LegType:               market.LegFixed,
		DayCount:              market.DayCount(dcc.OIS),
		PayFrequency:          market.FreqAnnual,
		BusinessDayAdjustment: market.ModifiedFollowing,
		RollConvention:        market.BackwardEOM,
		Calendar:              cal,
	}
	floatLeg := market.LegConvention{
		LegType:               market.LegFloating,
		ReferenceIndex:        overnightIndexFor(cal),
		DayCount:              market.DayCount(dcc.OIS),
		ResetFrequency:        market.FreqAnnual,
		PayFrequency:          market.FreqAnnual,
		BusinessDayAdjustment: market.ModifiedFollowing,
		RollConvention:        market.BackwardEOM,
		Calendar:              cal,
		ResetPosition:         market.ResetInArrears,
	}
	return market.SwapSpec{
		Notional:       notional,
		EffectiveDate:  settlement,
		MaturityDate:   maturity,
		PayLeg:         fixedLeg,
		RecLeg:         floatLeg,
		DiscountingOIS: floatLeg,
		PayLegSpreadBP: q.RatePct * 100,
	}
}

func buildIndexSpec(settlement time.Time, q Quote, notional float64, cal calendar.CalendarID, idx market.ReferenceIndex, dcc swap.DayCountConvention) market.SwapSpec {
	maturity := calendar.AddYearsWithRoll(cal, settlement, q.TenorYears)
	freq := market.FreqSemi
	if idx == market.EURIBOR3M || idx == market.TIBOR3M || idx == market.CD91D {
		freq = market.FreqQuarterly
	}
	fixedLeg := market.LegConvention{
		LegType:               market.LegFixed,
		DayCount:              market.DayCount(dcc.FixedIBOR),
		PayFrequency:          market.Frequency(dcc.FixedFreqMonths),
		BusinessDayAdjustment: market.ModifiedFollowing,
		RollConvention:        market.BackwardEOM,
		Calendar:              cal,
	}
	floatLeg := market.LegConvention{
		LegType:               market.LegFloating,
		ReferenceIndex:        idx,
		DayCount:              market.DayCount(dcc.FloatIBOR),
		ResetFrequency:        freq,
		PayFrequency:          freq,
		BusinessDayAdjustment: market.ModifiedFollowing,
		RollConvention:        market.BackwardEOM,
		Calendar:              cal,
		ResetPosition:         market.ResetInAdvance,
	}
	return market.SwapSpec{
		Notional:       notional,
		EffectiveDate:  settlement,
		MaturityDate:   maturity,
		PayLeg:         fixedLeg,
		RecLeg:         floatLeg,
		PayLegSpreadBP: q.RatePct * 100,
	}
}

// humanizeNotional renders a notional amount for the stderr status line;
// kept separate from the JSON output, which stays machine-readable.
func humanizeNotional(n float64) string {
	if n == 0 {
		n = 10_000_000
	}
	return humanize.CommafWithDigits(n, 2)
}
