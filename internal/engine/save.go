package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/talgya/usa-sim/internal/entropy"
	"github.com/talgya/usa-sim/internal/polity"
)

// saveVersion is bumped whenever the persisted shape changes incompatibly.
const saveVersion = 1

// ErrInvalidSave reports a saved simulation that cannot be restored.
var ErrInvalidSave = errors.New("invalid save")

// savedState is the lossless persisted form. Every field needed to continue
// a run draw-for-draw is here; Hooks are not.
type savedState struct {
	Version      int                     `json:"version"`
	Year         int                     `json:"year"`
	Month        int                     `json:"month"`
	President    polity.President        `json:"president"`
	Congress     polity.Congress         `json:"congress"`
	Court        polity.SupremeCourt     `json:"court"`
	Parties      []polity.PoliticalParty `json:"parties"`
	Budget       polity.FederalBudget    `json:"budget"`
	Opinion      polity.PublicOpinion    `json:"opinion"`
	States       []*polity.State         `json:"states"`
	Growth       float64                 `json:"growth"`
	Unemployment float64                 `json:"unemployment"`
	Inflation    float64                 `json:"inflation"`
	Log          []string                `json:"log"`
	RecentEvents []string                `json:"recent_events"`
	Catalog      []CatalogEntry          `json:"catalog"`
	Pending      []PendingEvent          `json:"pending_events"`
	RNG          []byte                  `json:"rng"`
}

// Marshal serializes the complete simulation, including the random stream
// state, the catalog and the full log.
func (us *UnitedStates) Marshal() ([]byte, error) {
	rngState, err := us.rng.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal rng: %w", err)
	}
	s := savedState{
		Version:      saveVersion,
		Year:         us.Year,
		Month:        us.Month,
		President:    us.President,
		Congress:     us.Congress,
		Court:        us.Court,
		Budget:       us.Budget,
		Opinion:      us.Opinion,
		States:       us.States,
		Growth:       us.Growth,
		Unemployment: us.Unemployment,
		Inflation:    us.Inflation,
		Log:          us.Log,
		RecentEvents: us.RecentEvents,
		Catalog:      us.Events.entries,
		Pending:      us.Events.pending,
		RNG:          rngState,
	}
	for _, id := range polity.AllParties {
		if p, ok := us.Parties[id]; ok {
			s.Parties = append(s.Parties, *p)
		}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal simulation: %w", err)
	}
	return data, nil
}

// Unmarshal restores a simulation written by Marshal. It either returns a
// fully restored simulation or an error wrapping ErrInvalidSave; nothing is
// partially restored.
func Unmarshal(data []byte) (*UnitedStates, error) {
	if err := checkRequired(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	var s savedState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	rng, err := entropy.Restore(s.RNG)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}

	us := New(s.Year, s.Month, rng)
	us.President = s.President
	us.Congress = s.Congress
	us.Court = s.Court
	us.Budget = s.Budget
	us.Opinion = s.Opinion
	if us.Opinion.IssueSupport == nil {
		us.Opinion.IssueSupport = make(map[string]float64)
	}
	for _, p := range s.Parties {
		party := p
		us.Parties[p.Name] = &party
	}
	for _, st := range s.States {
		us.AddState(st)
	}
	us.Growth = s.Growth
	us.Unemployment = s.Unemployment
	us.Inflation = s.Inflation
	us.Log = s.Log
	us.RecentEvents = s.RecentEvents
	for _, e := range s.Catalog {
		us.Events.Register(e.Event, e.Weight)
	}
	us.Events.pending = s.Pending
	return us, nil
}

func (s *savedState) validate() error {
	if s.Version != saveVersion {
		return fmt.Errorf("unsupported version %d", s.Version)
	}
	if s.Month < 1 || s.Month > 12 {
		return fmt.Errorf("month %d out of range", s.Month)
	}
	if len(s.RNG) == 0 {
		return errors.New("missing rng state")
	}
	if len(s.States) == 0 {
		return errors.New("no states")
	}
	parties := []struct {
		field string
		id    polity.PartyID
	}{
		{"president party", s.President.Party},
		{"house control", s.Congress.HouseControl},
		{"senate control", s.Congress.SenateControl},
		{"court lean", s.Court.Lean},
	}
	for _, p := range parties {
		if !p.id.Valid() {
			return fmt.Errorf("missing %s", p.field)
		}
	}
	if len(s.Parties) == 0 {
		return errors.New("no parties")
	}
	for _, p := range s.Parties {
		if !p.Name.Valid() {
			return errors.New("party without name")
		}
	}
	seen := make(map[string]bool, len(s.States))
	for i, st := range s.States {
		if st == nil {
			return fmt.Errorf("state %d is null", i)
		}
		if err := st.Validate(); err != nil {
			return err
		}
		if seen[st.Name] {
			return fmt.Errorf("duplicate state %s", st.Name)
		}
		seen[st.Name] = true
	}
	for _, e := range s.Catalog {
		if e.Event.Key == "" {
			return errors.New("catalog event without key")
		}
		if e.Weight < 0 {
			return fmt.Errorf("event %s: negative weight", e.Event.Key)
		}
		for _, c := range e.Event.Consequences {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("event %s: %w", e.Event.Key, err)
			}
		}
	}
	for _, p := range s.Pending {
		if p.DelayMonths < 0 {
			return fmt.Errorf("pending %s: negative delay", p.EventKey)
		}
	}
	return nil
}

// requiredKeys are the top-level fields every save must carry.
var requiredKeys = []string{
	"version", "year", "month", "president", "congress", "court", "parties",
	"budget", "opinion", "states", "growth", "unemployment", "inflation", "rng",
}

// requiredNested lists the fields each required object must carry.
var requiredNested = []struct {
	key    string
	fields []string
}{
	{"president", []string{"name", "party"}},
	{"congress", []string{"house_control", "senate_control"}},
	{"court", []string{"lean"}},
	{"budget", []string{"revenue", "spending", "tax_rate"}},
	{"opinion", []string{"approval_president", "approval_congress"}},
}

// requiredStateKeys excludes the electorate, districts and Senate seats,
// which lazy initialization synthesizes.
var requiredStateKeys = []string{
	"name", "population", "gdp", "unemployment", "inflation",
	"governor_party", "legislature", "approval_governor", "approval_legislature",
	"budget_revenue", "budget_spending", "tax_rate",
}

// checkRequired rejects saves with absent or null required fields, which
// would otherwise decode as zero values.
func checkRequired(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	if err := requireKeys("save", top, requiredKeys); err != nil {
		return err
	}
	for _, n := range requiredNested {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(top[n.key], &obj); err != nil {
			return fmt.Errorf("%s: %w", n.key, err)
		}
		if err := requireKeys(n.key, obj, n.fields); err != nil {
			return err
		}
	}
	var states []map[string]json.RawMessage
	if err := json.Unmarshal(top["states"], &states); err != nil {
		return fmt.Errorf("states: %w", err)
	}
	for i, st := range states {
		if err := requireKeys(fmt.Sprintf("state %d", i), st, requiredStateKeys); err != nil {
			return err
		}
	}
	return nil
}

func requireKeys(where string, obj map[string]json.RawMessage, keys []string) error {
	for _, k := range keys {
		if v, ok := obj[k]; !ok || string(v) == "null" {
			return fmt.Errorf("%s: missing %s", where, k)
		}
	}
	return nil
}
