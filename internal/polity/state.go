// States, their electorates and their House districts.
package polity

import (
	"fmt"
	"math"

	"github.com/talgya/usa-sim/internal/entropy"
)

// DistrictsPerState is how many House districts lazy initialization creates.
const DistrictsPerState = 6

// VoterCohort is a slice of an electorate with a partisan lean.
type VoterCohort struct {
	Name    string  `json:"name"`
	Share   float64 `json:"share"` // 0..1 of the electorate
	Lean    PartyID `json:"lean"`
	Turnout float64 `json:"turnout"` // 0..1
}

// DefaultCohorts returns the standard three-cohort electorate.
func DefaultCohorts() []VoterCohort {
	return []VoterCohort{
		{Name: "Urban Dem", Share: 0.42, Lean: Democrat, Turnout: 0.62},
		{Name: "Suburban Rep", Share: 0.40, Lean: Republican, Turnout: 0.61},
		{Name: "Independent", Share: 0.18, Lean: Independent, Turnout: 0.48},
	}
}

// PartisanScore sums share × turnout × lean sign. Positive favors Democrats.
func PartisanScore(cohorts []VoterCohort) float64 {
	score := 0.0
	for _, c := range cohorts {
		score += c.Share * c.Turnout * c.Lean.Sign()
	}
	return score
}

// NormalizeShares rescales cohort shares to sum to 1. A zero total is left
// untouched.
func NormalizeShares(cohorts []VoterCohort) {
	total := 0.0
	for _, c := range cohorts {
		total += c.Share
	}
	if total <= 0 {
		return
	}
	for i := range cohorts {
		cohorts[i].Share /= total
	}
}

// District is one House seat.
type District struct {
	ID          string        `json:"id"`
	Cohorts     []VoterCohort `json:"cohorts"`
	Incumbent   PartyID       `json:"incumbent"`
	TurnoutBias float64       `json:"turnout_bias"` // -0.1..0.1
	Swing       float64       `json:"swing"`        // -0.2..0.2, positive favors Democrats
}

// Nudge shifts swing and turnout bias, keeping both in range.
func (d *District) Nudge(swing, turnout float64) {
	d.Swing = Clamp(d.Swing+swing, -0.2, 0.2)
	d.TurnoutBias = Clamp(d.TurnoutBias+turnout, -0.1, 0.1)
}

// State is one member state. It owns its districts exclusively.
type State struct {
	Name                string             `json:"name"`
	Population          int64              `json:"population"`
	GDP                 float64            `json:"gdp"` // billions
	Unemployment        float64            `json:"unemployment"`
	Inflation           float64            `json:"inflation"`
	GovernorParty       PartyID            `json:"governor_party"`
	Legislature         LegislatureControl `json:"legislature"`
	ApprovalGovernor    float64            `json:"approval_governor"`
	ApprovalLegislature float64            `json:"approval_legislature"`
	BudgetRevenue       float64            `json:"budget_revenue"`
	BudgetSpending      float64            `json:"budget_spending"`
	TaxRate             float64            `json:"tax_rate"`
	GDPSectors          map[string]float64 `json:"gdp_sectors"`
	VoterCohorts        []VoterCohort      `json:"voter_cohorts"`
	HouseDistricts      []District         `json:"house_districts"`
	SenateSeats         []PartyID          `json:"senate_seats"`
	SenateClasses       []int              `json:"senate_classes"` // year mod 6 when each seat is up
}

// NewState creates a state with default finances, sectors and an
// uncontested pair of Independent Senate seats in classes 0 and 3.
func NewState(name string, population int64, gdp, unemployment, inflation float64, governor PartyID, legislature LegislatureControl) *State {
	return &State{
		Name:                name,
		Population:          population,
		GDP:                 gdp,
		Unemployment:        unemployment,
		Inflation:           inflation,
		GovernorParty:       governor,
		Legislature:         legislature,
		ApprovalGovernor:    50,
		ApprovalLegislature: 40,
		BudgetRevenue:       100,
		BudgetSpending:      100,
		TaxRate:             0.06,
		GDPSectors: map[string]float64{
			"services":    0.65,
			"industry":    0.27,
			"agriculture": 0.08,
		},
		SenateSeats:   []PartyID{Independent, Independent},
		SenateClasses: []int{0, 3},
	}
}

// Deficit is spending minus revenue in billions.
func (st *State) Deficit() float64 {
	return st.BudgetSpending - st.BudgetRevenue
}

// AdjustGovernor shifts governor approval within [0, 100].
func (st *State) AdjustGovernor(delta float64) {
	st.ApprovalGovernor = ClampPercent(st.ApprovalGovernor + delta)
}

// AdjustLegislature shifts legislature approval within [0, 100].
func (st *State) AdjustLegislature(delta float64) {
	st.ApprovalLegislature = ClampPercent(st.ApprovalLegislature + delta)
}

// AdvanceEconomy runs one month of the state economy: noisy GDP growth,
// unemployment reverting toward a growth-sensitive target and inflation
// partially tracking the national rate. Draws three values from rng.
func (st *State) AdvanceEconomy(growth, nationalInflation float64, rng entropy.Source) {
	gdpGrowth := Clamp(growth+rng.Uniform(-0.01, 0.01), -0.1, 0.1)
	st.GDP *= 1 + gdpGrowth

	target := 5.5 - 0.5*growth
	st.Unemployment += 0.2*(target-st.Unemployment) + rng.Uniform(-0.1, 0.1)
	st.Unemployment = ClampUnemployment(st.Unemployment)

	st.Inflation = ClampInflation(0.6*nationalInflation + rng.Uniform(-0.2, 0.2))
}

// UpdateFinances recomputes revenue from the tax base and pulls spending
// toward it with noise. Draws one value from rng.
func (st *State) UpdateFinances(rng entropy.Source) {
	st.BudgetRevenue = st.TaxRate * st.GDP
	st.BudgetSpending += 0.2*(st.BudgetRevenue-st.BudgetSpending) + rng.Uniform(-1, 1)
}

// ApplyCost books a policy cost against the state budget.
func (st *State) ApplyCost(cost float64) {
	if cost >= 0 {
		st.BudgetSpending += cost
	} else {
		st.BudgetRevenue += -cost
	}
}

// EnsureElections synthesizes any missing election structure: the default
// electorate, six districts with perturbed cohorts, two Senate seats held by
// the legislature's Senate party and two random Senate classes. It is a
// no-op for a fully populated state and draws nothing in that case.
func (st *State) EnsureElections(rng entropy.Source) {
	if len(st.VoterCohorts) == 0 {
		st.VoterCohorts = DefaultCohorts()
	}
	if len(st.HouseDistricts) == 0 {
		st.HouseDistricts = make([]District, 0, DistrictsPerState)
		for i := 0; i < DistrictsPerState; i++ {
			swing := rng.Uniform(-0.04, 0.04)
			bias := rng.Uniform(-0.03, 0.03)
			cohorts := make([]VoterCohort, 0, len(st.VoterCohorts))
			for _, c := range st.VoterCohorts {
				c.Share = Clamp(c.Share+rng.Uniform(-0.05, 0.05), 0.05, 0.9)
				cohorts = append(cohorts, c)
			}
			NormalizeShares(cohorts)
			st.HouseDistricts = append(st.HouseDistricts, District{
				ID:          fmt.Sprintf("%s-%d", st.Name, i+1),
				Cohorts:     cohorts,
				Incumbent:   Independent,
				TurnoutBias: bias,
				Swing:       swing,
			})
		}
	}
	if len(st.SenateSeats) != 2 {
		holder := st.Legislature.Senate
		if holder == "" {
			holder = Independent
		}
		st.SenateSeats = []PartyID{holder, holder}
	}
	if len(st.SenateClasses) != 2 {
		st.SenateClasses = []int{rng.IntN(6), rng.IntN(6)}
	}
}

// shareTolerance bounds how far cohort shares may drift from summing to 1.
const shareTolerance = 1e-6

// Validate checks the structural invariants a restored state must satisfy.
func (st *State) Validate() error {
	if st.Name == "" {
		return fmt.Errorf("state missing name")
	}
	if !st.GovernorParty.Valid() {
		return fmt.Errorf("state %s: missing governor party", st.Name)
	}
	if !st.Legislature.House.Valid() || !st.Legislature.Senate.Valid() {
		return fmt.Errorf("state %s: legislature control incomplete", st.Name)
	}
	if err := checkShares(st.VoterCohorts); err != nil {
		return fmt.Errorf("state %s: %w", st.Name, err)
	}
	for _, d := range st.HouseDistricts {
		if err := checkShares(d.Cohorts); err != nil {
			return fmt.Errorf("district %s: %w", d.ID, err)
		}
	}
	if len(st.SenateSeats) != 0 && len(st.SenateSeats) != 2 {
		return fmt.Errorf("state %s: %d senate seats", st.Name, len(st.SenateSeats))
	}
	for _, c := range st.SenateClasses {
		if c < 0 || c > 5 {
			return fmt.Errorf("state %s: senate class %d out of range", st.Name, c)
		}
	}
	return nil
}

// checkShares accepts an empty electorate, which lazy initialization fills.
func checkShares(cohorts []VoterCohort) error {
	if len(cohorts) == 0 {
		return nil
	}
	total := 0.0
	for _, c := range cohorts {
		total += c.Share
	}
	if math.Abs(total-1) > shareTolerance {
		return fmt.Errorf("cohort shares sum to %.4f", total)
	}
	return nil
}
