// AI layer: national and state policy heuristics, campaigning, party drift
// and reactions to recent events.
package engine

import "github.com/talgya/usa-sim/internal/polity"

const (
	nationalProposalChance = 0.6
	stateInfraChance       = 0.35
	campaignChance         = 0.30
)

// aiConsiderPolicy proposes at most one national policy, chosen from the
// macro picture: stimulus in a contraction, austerity under high inflation,
// infrastructure otherwise.
func (us *UnitedStates) aiConsiderPolicy() *polity.Policy {
	if us.rng.Float() >= nationalProposalChance {
		return nil
	}
	switch {
	case us.Growth < 0:
		return &polity.Policy{
			Title:              "Stimulus",
			Description:        "Counter-cyclical fiscal stimulus",
			Cost:               300,
			EffectGrowth:       0.01,
			EffectUnemployment: -0.3,
			Popularity:         60,
			SponsorParty:       us.President.Party,
		}
	case us.Inflation > 4.0:
		return &polity.Policy{
			Title:           "Austerity",
			Description:     "Spending restraint to curb inflation",
			Cost:            -100,
			EffectGrowth:    -0.005,
			EffectInflation: -0.8,
			Popularity:      45,
			SponsorParty:    us.Congress.HouseControl,
		}
	default:
		return &polity.Policy{
			Title:              "Infrastructure",
			Description:        "Invest in infrastructure",
			Cost:               200,
			EffectGrowth:       0.005,
			EffectUnemployment: -0.2,
			Popularity:         65,
			SponsorParty:       us.President.Party,
		}
	}
}

// aiStatePolicy picks at most one policy for a state from its conditions.
func (us *UnitedStates) aiStatePolicy(st *polity.State) *polity.Policy {
	switch {
	case st.Unemployment > 6.5:
		return &polity.Policy{
			Title:              "State Jobs Program",
			Description:        "Hire for public works and small biz grants",
			Cost:               10,
			EffectGrowth:       0.003,
			EffectUnemployment: -0.2,
			Popularity:         62,
			SponsorParty:       st.GovernorParty,
		}
	case st.Inflation > 5.0:
		return &polity.Policy{
			Title:           "State Spending Freeze",
			Description:     "Temporary restraint on non-essential spending",
			Cost:            -5,
			EffectGrowth:    -0.001,
			EffectInflation: -0.2,
			Popularity:      52,
			SponsorParty:    st.Legislature.House,
		}
	case st.Deficit() > 5.0:
		return &polity.Policy{
			Title:              "Budget Balance Act",
			Description:        "Raise fees and cut waste to close gap",
			Cost:               -8,
			EffectGrowth:       -0.0005,
			EffectUnemployment: 0.05,
			Popularity:         49,
			SponsorParty:       st.Legislature.Senate,
		}
	}
	if us.rng.Float() < stateInfraChance {
		return &polity.Policy{
			Title:              "State Infrastructure",
			Description:        "Fix roads and bridges",
			Cost:               12,
			EffectGrowth:       0.002,
			EffectUnemployment: -0.1,
			Popularity:         64,
			SponsorParty:       st.GovernorParty,
		}
	}
	return nil
}

// aiStateTurn runs one state's month: a possible policy attempt, then a
// possible campaign push for the governor's party.
func (us *UnitedStates) aiStateTurn(st *polity.State) {
	if p := us.aiStatePolicy(st); p != nil {
		us.AttemptPassStatePolicy(st, *p)
	}

	if us.rng.Float() < campaignChance {
		adj := -0.004
		if st.GovernorParty == polity.Democrat {
			adj = 0.004
		}
		for i := range st.HouseDistricts {
			d := &st.HouseDistricts[i]
			swing := adj + us.rng.Uniform(-0.002, 0.002)
			turnout := us.rng.Uniform(-0.002, 0.002)
			d.Nudge(swing, turnout)
		}
		st.AdjustGovernor(0.2)
		st.AdjustLegislature(0.1)
	}
}

// aiPartyNationalStrategy drifts party approval with the economy: Democrats
// gain with growth, Republicans with inflation and deficit concerns.
func (us *UnitedStates) aiPartyNationalStrategy() {
	deficitRatio := us.Budget.Deficit() / max(1.0, us.Budget.Revenue)
	econ := us.economySignal()
	us.adjustParty(polity.Democrat, 0.2*econ)
	us.adjustParty(polity.Republican, 0.5*(0.02-econ)+0.5*deficitRatio)
}

// aiReactToEvents responds to the most recent event only.
func (us *UnitedStates) aiReactToEvents() {
	if len(us.RecentEvents) == 0 {
		return
	}
	switch us.RecentEvents[len(us.RecentEvents)-1] {
	case "hurricane":
		us.AttemptPassPolicy(polity.Policy{
			Title:              "Disaster Relief",
			Description:        "Emergency aid to impacted regions",
			Cost:               50,
			EffectGrowth:       0.001,
			EffectUnemployment: -0.05,
			Popularity:         70,
			SponsorParty:       us.President.Party,
		})
		for _, name := range []string{"Texas", "Florida"} {
			if st, ok := us.State(name); ok {
				us.aiStateTurn(st)
			}
		}
	case "scandal":
		us.adjustParty(us.President.Party.Opponent(), 1.0)
	}
}
