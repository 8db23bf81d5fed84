package main

import (
	"context"
	"fmt"
	"time"

	"github.com/meenmo/dualstrip/calendar"
	"github.com/meenmo/dualstrip/stripper"
	"github.com/meenmo/dualstrip/swap"
	"github.com/meenmo/dualstrip/swap/market"
)

// fixedFloatSpec builds a plain fixed-vs-floating swap spec over the given
// tenor, used below to demonstrate a dual-curve strip.
func fixedFloatSpec(settlement time.Time, years int, ratePct float64, floatRef market.ReferenceIndex, dcc swap.DayCountConvention, notional float64, overnight bool) market.SwapSpec {
	maturity := calendar.AddYearsWithRoll(calendar.TARGET, settlement, years)

	fixedDC, fixedFreq := dcc.FixedIBOR, market.Frequency(dcc.FixedFreqMonths)
	floatDC, floatFreq := dcc.FloatIBOR, market.FreqSemi
	if overnight {
		fixedDC, floatDC = dcc.OIS, dcc.OIS
		fixedFreq, floatFreq = market.FreqAnnual, market.FreqAnnual
	}

	fixedLeg := market.LegConvention{
		LegType:               market.LegFixed,
		DayCount:              market.DayCount(fixedDC),
		PayFrequency:          fixedFreq,
		BusinessDayAdjustment: market.ModifiedFollowing,
		RollConvention:        market.BackwardEOM,
		Calendar:              calendar.TARGET,
	}
	floatLeg := market.LegConvention{
		LegType:               market.LegFloating,
		ReferenceIndex:        floatRef,
		DayCount:              market.DayCount(floatDC),
		ResetFrequency:        floatFreq,
		PayFrequency:          floatFreq,
		BusinessDayAdjustment: market.ModifiedFollowing,
		RollConvention:        market.BackwardEOM,
		Calendar:              calendar.TARGET,
		ResetPosition:         market.ResetInAdvance,
	}
	if overnight {
		floatLeg.ResetPosition = market.ResetInArrears
	}

	spec := market.SwapSpec{
		Notional:       notional,
		EffectiveDate:  settlement,
		MaturityDate:   maturity,
		PayLeg:         fixedLeg,
		RecLeg:         floatLeg,
		PayLegSpreadBP: ratePct * 100,
	}
	if overnight {
		spec.DiscountingOIS = floatLeg
	}
	return spec
}

func main() {
	curveDate := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)
	settlement := calendar.AddBusinessDays(calendar.TARGET, curveDate, 2)
	dcc := swap.GetDayCountConvention(calendar.TARGET)
	notional := 10_000_000.0

	oisQuotes := map[int]float64{1: 2.50, 2: 2.58, 3: 2.64, 5: 2.71, 7: 2.78, 10: 2.84}
	euriborQuotes := map[int]float64{1: 2.68, 2: 2.76, 3: 2.82, 5: 2.90, 7: 2.97, 10: 3.02}

	var instruments []stripper.Instrument
	for _, years := range []int{1, 2, 3, 5, 7, 10} {
		oisSpec := fixedFloatSpec(settlement, years, oisQuotes[years], market.ESTR, dcc, notional, true)
		instruments = append(instruments, stripper.NewOISInstrument(oisSpec, settlement))

		euriborSpec := fixedFloatSpec(settlement, years, euriborQuotes[years], market.EURIBOR6M, dcc, notional, false)
		instruments = append(instruments, stripper.NewSwapInstrument(euriborSpec, nil, nil, settlement))
	}

	factory := stripper.NewCurveFactory(settlement, calendar.TARGET)
	s, err := stripper.New(factory, instruments, settlement, 7)
	if err != nil {
		fmt.Println("strip setup failed:", err)
		return
	}

	result, err := s.Strip(context.Background())
	if err != nil {
		fmt.Println("strip failed:", err)
		return
	}

	fmt.Println("Discounting curve (ESTR OIS):")
	for i, d := range result.DiscDates {
		fmt.Printf("  %s  DF=%.8f\n", d.Format("2006-01-02"), result.DiscAbs[i])
	}

	fmt.Println("Index curve (EURIBOR 6M):")
	for i, d := range result.IdxDates {
		fmt.Printf("  %s  DF=%.8f\n", d.Format("2006-01-02"), result.IdxAbs[i])
	}

	demoOffMarketTrade(curveDate)
}

// demoOffMarketTrade prices a standalone off-market swap against a
// single-curve bootstrap, independent of the dual-curve strip above: not
// every pricing task needs the paired solve, so the simpler single-curve
// builder stays available for ad hoc trades quoted against one curve family.
func demoOffMarketTrade(curveDate time.Time) {
	trade, err := swap.InterestRateSwap(swap.InterestRateSwapParams{
		ClearingHouse:     swap.ClearingHouseOTC,
		CurveDate:         curveDate,
		TradeDate:         curveDate,
		ForwardTenorYears: 0,
		SwapTenorYears:    5,
		Notional:          10_000_000,
		PayLeg: market.LegConvention{
			LegType:               market.LegFixed,
			DayCount:              market.Act360,
			PayFrequency:          market.FreqAnnual,
			BusinessDayAdjustment: market.ModifiedFollowing,
			RollConvention:        market.BackwardEOM,
			Calendar:              calendar.TARGET,
		},
		RecLeg: market.LegConvention{
			LegType:               market.LegFloating,
			ReferenceIndex:        market.ESTR,
			DayCount:              market.Act360,
			ResetFrequency:        market.FreqAnnual,
			PayFrequency:          market.FreqAnnual,
			BusinessDayAdjustment: market.ModifiedFollowing,
			RollConvention:        market.BackwardEOM,
			Calendar:              calendar.TARGET,
			ResetPosition:         market.ResetInArrears,
		},
		DiscountingOIS: market.LegConvention{
			LegType:  market.LegFloating,
			Calendar: calendar.TARGET,
		},
		OISQuotes:      map[string]float64{"1Y": 2.50, "2Y": 2.58, "3Y": 2.64, "5Y": 2.71, "7Y": 2.78, "10Y": 2.84},
		PayLegSpreadBP: 270,
	})
	if err != nil {
		fmt.Println("off-market trade setup failed:", err)
		return
	}

	spreadBP, pv, err := trade.SolveParSpread(swap.SpreadTargetRecLeg)
	if err != nil {
		fmt.Println("par spread solve failed:", err)
		return
	}

	fmt.Println("Off-market 5Y ESTR swap, single-curve bootstrap:")
	fmt.Printf("  par floating spread: %.2f bp, pay PV=%.2f rec PV=%.2f net=%.2f\n", spreadBP, pv.PayLegPV, pv.RecLegPV, pv.TotalPV)
}
