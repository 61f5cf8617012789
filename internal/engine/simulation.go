// UnitedStates ties together the federal apparatus, the states, the event
// catalog and the random stream, and advances them one month at a time.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/usa-sim/internal/entropy"
	"github.com/talgya/usa-sim/internal/polity"
)

// recentEventsCap bounds the recent-event history consulted by the AI.
const recentEventsCap = 12

// Hooks are optional observers invoked as outcomes happen. They must not
// mutate the simulation and are never persisted.
type Hooks struct {
	OnTurn     func(us *UnitedStates)                                 // after each completed month
	OnPolicy   func(level polity.Level, p polity.Policy, passed bool) // after each passage attempt
	OnEvent    func(ev polity.Event)                                  // after an event is applied
	OnElection func(r ElectionResult)                                 // after each contested office
}

// UnitedStates is the aggregate root of the simulation. It is not safe for
// concurrent use; wrap it in a Session when shared.
type UnitedStates struct {
	Year  int
	Month int

	President polity.President
	Congress  polity.Congress
	Court     polity.SupremeCourt
	Parties   map[polity.PartyID]*polity.PoliticalParty
	Budget    polity.FederalBudget
	Opinion   polity.PublicOpinion
	Events    *EventManager

	// States in registration order; the order drives every per-state loop.
	States     []*polity.State
	stateIndex map[string]*polity.State

	// Macro indicators, running values rather than strict annual rates.
	Growth       float64
	Unemployment float64
	Inflation    float64

	Log          []string // append-only, prefixed with [YYYY-MM]
	RecentEvents []string // last recentEventsCap event keys, oldest first

	Hooks Hooks

	rng entropy.StatefulSource
}

// New creates an empty simulation at the given calendar position drawing
// from rng. Most callers want NewDefault.
func New(year, month int, rng entropy.StatefulSource) *UnitedStates {
	us := &UnitedStates{
		Year:         year,
		Month:        month,
		Parties:      make(map[polity.PartyID]*polity.PoliticalParty),
		stateIndex:   make(map[string]*polity.State),
		Events:       NewEventManager(rng),
		Growth:       0.02,
		Unemployment: 5.5,
		Inflation:    2.5,
		Opinion: polity.PublicOpinion{
			ApprovalPresident: 50,
			ApprovalCongress:  30,
			IssueSupport:      make(map[string]float64),
		},
		rng: rng,
	}
	return us
}

// NewDefault builds the standard starting position: January 2025, four
// states, a Democratic incumbent and the base event catalog.
func NewDefault(seed int64) *UnitedStates {
	us := New(2025, 1, entropy.New(seed))

	us.Parties[polity.Democrat] = &polity.PoliticalParty{Name: polity.Democrat, NationalApproval: 52}
	us.Parties[polity.Republican] = &polity.PoliticalParty{Name: polity.Republican, NationalApproval: 48}
	us.Parties[polity.Independent] = &polity.PoliticalParty{Name: polity.Independent, NationalApproval: 35}

	dem := polity.LegislatureControl{House: polity.Democrat, Senate: polity.Democrat}
	rep := polity.LegislatureControl{House: polity.Republican, Senate: polity.Republican}
	states := []*polity.State{
		polity.NewState("California", 39_000_000, 3200, 4.8, 2.8, polity.Democrat, dem),
		polity.NewState("Texas", 30_000_000, 2000, 4.0, 2.5, polity.Republican, rep),
		polity.NewState("Florida", 22_000_000, 1100, 3.5, 2.6, polity.Republican, rep),
		polity.NewState("New York", 19_500_000, 1800, 4.2, 2.7, polity.Democrat, dem),
	}
	// Districts come from a side stream so the main stream starts untouched.
	districts := entropy.New(seed + 1)
	for _, st := range states {
		st.EnsureElections(districts)
		us.AddState(st)
	}

	us.Budget = polity.FederalBudget{Revenue: 4500, Spending: 5200, TaxRate: 0.18}
	us.President = polity.President{Name: "Incumbent", Party: polity.Democrat}
	us.Congress = polity.Congress{HouseControl: polity.Democrat, SenateControl: polity.Democrat}
	us.Court = polity.SupremeCourt{Lean: polity.Republican}
	us.Opinion.ApprovalPresident = 51
	us.Opinion.ApprovalCongress = 38

	for _, entry := range DefaultCatalog() {
		us.Events.Register(entry.Event, entry.Weight)
	}
	return us
}

// NewDefaultUnseeded is NewDefault with a seed drawn from crypto/rand.
func NewDefaultUnseeded() *UnitedStates {
	seed := entropy.CryptoSeed()
	slog.Info("unseeded simulation", "seed", seed)
	return NewDefault(seed)
}

// DefaultCatalog is the built-in event catalog.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{Event: polity.Event{Key: "hurricane", Description: "Major hurricane hits Gulf Coast", ImpactGrowth: -0.003, ImpactUnemployment: 0.2, ImpactInflation: 0.1}, Weight: 1},
		{Event: polity.Event{Key: "tech_boom", Description: "Tech productivity boom", ImpactGrowth: 0.004, ImpactUnemployment: -0.15}, Weight: 0.6},
		{Event: polity.Event{Key: "scandal", Description: "Political scandal", ImpactApprovalPresident: -2.5, PartyBenefit: polity.Republican}, Weight: 1},
		{Event: polity.Event{Key: "bipartisan", Description: "Bipartisan breakthrough", ImpactApprovalCongress: 2}, Weight: 1},
	}
}

// AddState registers a state, replacing any state with the same name in
// place.
func (us *UnitedStates) AddState(st *polity.State) {
	if _, ok := us.stateIndex[st.Name]; ok {
		for i, existing := range us.States {
			if existing.Name == st.Name {
				us.States[i] = st
			}
		}
	} else {
		us.States = append(us.States, st)
	}
	us.stateIndex[st.Name] = st
}

// State looks up a state by name.
func (us *UnitedStates) State(name string) (*polity.State, bool) {
	st, ok := us.stateIndex[name]
	return st, ok
}

// StateNames lists state names in registration order.
func (us *UnitedStates) StateNames() []string {
	names := make([]string, 0, len(us.States))
	for _, st := range us.States {
		names = append(names, st.Name)
	}
	return names
}

// TotalGDP sums state GDP in billions.
func (us *UnitedStates) TotalGDP() float64 {
	total := 0.0
	for _, st := range us.States {
		total += st.GDP
	}
	return total
}

// Source exposes the random stream, mainly so callers can persist it.
func (us *UnitedStates) Source() entropy.StatefulSource {
	return us.rng
}

// setSource swaps the stream for both the root and its event manager.
func (us *UnitedStates) setSource(rng entropy.StatefulSource) {
	us.rng = rng
	us.Events.rng = rng
}

// logEvent appends a line to the in-game log.
func (us *UnitedStates) logEvent(msg string) {
	us.Log = append(us.Log, fmt.Sprintf("[%s] %s", CalendarLabel(us.Year, us.Month), msg))
}

// adjustParty shifts a party's approval if the party exists.
func (us *UnitedStates) adjustParty(p polity.PartyID, delta float64) {
	if party, ok := us.Parties[p]; ok {
		party.AdjustApproval(delta)
	}
}

// monthIndex counts months since year zero; used to time pending events.
func (us *UnitedStates) monthIndex() int {
	return us.Year*12 + us.Month - 1
}

// Conditions captures what event triggers and policy requirements inspect.
func (us *UnitedStates) Conditions() polity.Conditions {
	return polity.Conditions{
		Growth:            us.Growth,
		Unemployment:      us.Unemployment,
		Inflation:         us.Inflation,
		ApprovalPresident: us.Opinion.ApprovalPresident,
		Month:             us.Month,
		PresidentParty:    us.President.Party,
	}
}
