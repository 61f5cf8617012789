package engine

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/usa-sim/internal/polity"
)

// Chances of the optional monthly steps and the approval anchors.
const (
	eventChance           = 0.35
	partyStrategyChance   = 0.5
	presidentApprovalMean = 50.0
	congressApprovalMean  = 40.0
	approvalReversion     = 0.05
	nationalMaxInflation  = 10.0
)

// AdvanceTurn runs months ticks. Each tick applies, in order: macro drift,
// state economies and finances, the national AI proposal, every state's AI
// turn, pending and random events with reactions, elections, approval
// reversion, party drift, federal revenue and the calendar step. The order
// fixes the draw sequence and therefore the trajectory.
func (us *UnitedStates) AdvanceTurn(months int) {
	for i := 0; i < months; i++ {
		us.tick()
	}
}

func (us *UnitedStates) tick() {
	us.driftMacro()

	for _, st := range us.States {
		st.AdvanceEconomy(us.Growth, us.Inflation, us.rng)
		st.UpdateFinances(us.rng)
	}

	if p := us.aiConsiderPolicy(); p != nil {
		us.AttemptPassPolicy(*p)
	}
	for _, st := range us.States {
		us.aiStateTurn(st)
	}

	us.firePendingEvents()
	if us.rng.Float() < eventChance {
		us.TriggerEvent()
		us.aiReactToEvents()
	}

	us.maybeRunElections()

	us.Opinion.ApprovalPresident = polity.ClampPercent(us.Opinion.ApprovalPresident + approvalReversion*(presidentApprovalMean-us.Opinion.ApprovalPresident))
	us.Opinion.ApprovalCongress = polity.ClampPercent(us.Opinion.ApprovalCongress + approvalReversion*(congressApprovalMean-us.Opinion.ApprovalCongress))

	if us.rng.Float() < partyStrategyChance {
		us.aiPartyNationalStrategy()
	}

	us.Budget.Revenue = us.Budget.TaxRate * us.TotalGDP()
	// Policies and events clamp inflation to the state ceiling; the national
	// rate leaves every month within its own tighter band.
	us.Inflation = polity.Clamp(us.Inflation, polity.MinInflation, nationalMaxInflation)

	us.Month++
	if us.Month > 12 {
		us.Month = 1
		us.Year++
		us.annualReport()
	}

	if us.Hooks.OnTurn != nil {
		us.Hooks.OnTurn(us)
	}
}

// driftMacro adds independent noise to each macro indicator, then clamps.
func (us *UnitedStates) driftMacro() {
	us.Growth += us.rng.Uniform(-0.002, 0.002)
	us.Inflation += us.rng.Uniform(-0.05, 0.05)
	us.Unemployment += us.rng.Uniform(-0.05, 0.05)

	us.Growth = polity.Clamp(us.Growth, -0.05, 0.06)
	us.Inflation = polity.Clamp(us.Inflation, polity.MinInflation, nationalMaxInflation)
	us.Unemployment = polity.ClampUnemployment(us.Unemployment)
}

func (us *UnitedStates) annualReport() {
	slog.Info("annual report",
		"year", us.Year-1,
		"gdp", "$"+humanize.CommafWithDigits(us.TotalGDP(), 1)+"B",
		"growth", fmt.Sprintf("%.4f", us.Growth),
		"unemployment", fmt.Sprintf("%.2f", us.Unemployment),
		"inflation", fmt.Sprintf("%.2f", us.Inflation),
		"deficit", "$"+humanize.CommafWithDigits(us.Budget.Deficit(), 1)+"B",
		"president", us.President.Party,
		"house", us.Congress.HouseControl,
		"senate", us.Congress.SenateControl,
	)
}

// CalendarLabel formats a year and month as YYYY-MM.
func CalendarLabel(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}
