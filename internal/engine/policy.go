// Policy engine: passage probability and all-or-nothing application.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/usa-sim/internal/polity"
)

// federalPassProbability combines popularity, partisan alignment, the
// presidential bonus and court risk, clamped to [0.05, 0.95].
func (us *UnitedStates) federalPassProbability(p polity.Policy) float64 {
	support := (p.Popularity - 50) / 100
	alignment := -0.05
	if us.Congress.Controls(p.SponsorParty) {
		alignment = 0.15
	}
	presidentBonus := 0.0
	if p.SponsorParty == us.President.Party {
		presidentBonus = 0.10
	}
	courtRisk := 0.0
	if p.EffectInflation > 0.7 && us.Court.Lean != p.SponsorParty {
		courtRisk = -0.05
	}
	return polity.Clamp(0.5+support+alignment+presidentBonus+courtRisk, 0.05, 0.95)
}

// AttemptPassPolicy puts a policy before Congress. On passage every effect
// applies and the policy's consequences run; on failure only a log line is
// written. Rejection is a normal
// outcome, not an error.
func (us *UnitedStates) AttemptPassPolicy(p polity.Policy) bool {
	prob := us.federalPassProbability(p)
	passed := us.rng.Float() < prob
	if passed {
		us.Growth += p.EffectGrowth
		us.Unemployment = polity.ClampUnemployment(us.Unemployment + p.EffectUnemployment)
		us.Inflation = polity.ClampInflation(us.Inflation + p.EffectInflation)
		us.Budget.ApplyCost(p.Cost)
		us.Opinion.UpdateIssue(p, us.rng.Uniform(-5, 5))
		if p.SponsorParty == us.President.Party {
			us.Opinion.AdjustPresident(1.0)
		}
		us.logEvent(fmt.Sprintf("Policy passed: %s", p.Title))
		us.runPolicyConsequences(p)
	} else {
		us.logEvent(fmt.Sprintf("Policy failed: %s", p.Title))
	}
	slog.Debug("federal policy", "title", p.Title, "prob", prob, "passed", passed)
	us.notifyPolicy(polity.LevelFederal, p, passed)
	return passed
}

func statePassProbability(st *polity.State, p polity.Policy) float64 {
	support := (p.Popularity - 50) / 120
	alignment := -0.06
	if st.Legislature.Controls(p.SponsorParty) {
		alignment = 0.12
	}
	governorBonus := 0.0
	if p.SponsorParty == st.GovernorParty {
		governorBonus = 0.08
	}
	opinionPush := (st.ApprovalGovernor - 50) / 200
	return polity.Clamp(0.5+support+alignment+governorBonus+opinionPush, 0.05, 0.95)
}

// AttemptPassStatePolicy puts a policy before a state legislature. Effects
// land on the state's economy, budget and approvals, and national issue
// support moves on passage.
func (us *UnitedStates) AttemptPassStatePolicy(st *polity.State, p polity.Policy) bool {
	prob := statePassProbability(st, p)
	passed := us.rng.Float() < prob
	if passed {
		st.GDP *= 1 + p.EffectGrowth
		st.Unemployment = polity.ClampUnemployment(st.Unemployment + p.EffectUnemployment)
		st.Inflation = polity.ClampInflation(st.Inflation + p.EffectInflation)
		st.ApplyCost(p.Cost)
		if p.SponsorParty == st.GovernorParty {
			st.AdjustGovernor(0.8)
		}
		st.AdjustLegislature(0.4)
		us.Opinion.UpdateIssue(p, us.rng.Uniform(-2, 2))
		us.logEvent(fmt.Sprintf("%s policy passed: %s", st.Name, p.Title))
		us.runPolicyConsequences(p)
	} else {
		us.logEvent(fmt.Sprintf("%s policy failed: %s", st.Name, p.Title))
	}
	slog.Debug("state policy", "state", st.Name, "title", p.Title, "prob", prob, "passed", passed)
	us.notifyPolicy(polity.LevelState, p, passed)
	return passed
}

// runPolicyConsequences runs a passed policy's consequences as if the policy
// were an event keyed by its title.
func (us *UnitedStates) runPolicyConsequences(p polity.Policy) {
	if len(p.Consequences) == 0 {
		return
	}
	us.Events.ProcessConsequences(polity.Event{Key: p.Title, Consequences: p.Consequences}, us)
}

func (us *UnitedStates) notifyPolicy(level polity.Level, p polity.Policy, passed bool) {
	if us.Hooks.OnPolicy != nil {
		us.Hooks.OnPolicy(level, p, passed)
	}
}
