// Package catalog loads event and policy definitions from YAML (or JSON)
// files and turns them into engine values.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/usa-sim/internal/polity"
)

var (
	// ErrUnknownConsequence reports a consequence type outside the closed set.
	ErrUnknownConsequence = errors.New("unknown consequence type")
	// ErrUnknownPolicy reports a policy_proposal naming a missing policy.
	ErrUnknownPolicy = errors.New("unknown policy")
	// ErrDuplicateKey reports two definitions sharing a key.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNestedProposal reports a policy whose consequences propose another
	// policy.
	ErrNestedProposal = errors.New("policy consequences cannot propose policies")
)

// File is the on-disk layout.
type File struct {
	Events   []EventConfig  `yaml:"events"`
	Policies []PolicyConfig `yaml:"policies"`
}

// EventConfig defines one catalog event.
type EventConfig struct {
	Key          string              `yaml:"key"`
	Name         string              `yaml:"name"`
	Description  string              `yaml:"description"`
	Weight       *float64            `yaml:"weight"` // defaults to 1
	Triggers     TriggerConfig       `yaml:"triggers"`
	Effects      EffectsConfig       `yaml:"effects"`
	PartyBenefit string              `yaml:"party_benefit"`
	Consequences []ConsequenceConfig `yaml:"consequences"`
}

// PolicyConfig defines one policy that events, the API or a caller may put
// forward.
type PolicyConfig struct {
	Key          string              `yaml:"key"`
	Title        string              `yaml:"title"`
	Description  string              `yaml:"description"`
	Cost         float64             `yaml:"cost"`
	Effects      EffectsConfig       `yaml:"effects"`
	Popularity   *float64            `yaml:"popularity"` // defaults to 50
	Level        polity.Level        `yaml:"level"`      // defaults to federal
	SponsorParty string              `yaml:"sponsor_party"`
	Requirements TriggerConfig       `yaml:"requirements"`
	Consequences []ConsequenceConfig `yaml:"consequences"` // run on passage
}

// TriggerConfig bounds the conditions under which an event may fire or a
// policy may be proposed.
type TriggerConfig struct {
	MinGrowth            *float64 `yaml:"min_growth"`
	MaxGrowth            *float64 `yaml:"max_growth"`
	MinUnemployment      *float64 `yaml:"min_unemployment"`
	MaxUnemployment      *float64 `yaml:"max_unemployment"`
	MinInflation         *float64 `yaml:"min_inflation"`
	MaxInflation         *float64 `yaml:"max_inflation"`
	MinApprovalPresident *float64 `yaml:"min_approval_president"`
	MaxApprovalPresident *float64 `yaml:"max_approval_president"`
	Months               []int    `yaml:"months"`
	PresidentParty       string   `yaml:"president_party"`
}

// EffectsConfig holds impact magnitudes.
type EffectsConfig struct {
	Growth            float64 `yaml:"growth"`
	Unemployment      float64 `yaml:"unemployment"`
	Inflation         float64 `yaml:"inflation"`
	ApprovalPresident float64 `yaml:"approval_president"`
	ApprovalCongress  float64 `yaml:"approval_congress"`
}

// ConsequenceConfig is the flat descriptor of one consequence. Which fields
// matter depends on Type.
type ConsequenceConfig struct {
	Type        string   `yaml:"type"`
	EventKey    string   `yaml:"event_key"`
	DelayMonths int      `yaml:"delay_months"`
	Policy      string   `yaml:"policy"`
	Probability *float64 `yaml:"probability"` // defaults to 1
	Party       string   `yaml:"party"`
	Target      string   `yaml:"target"`
	Delta       float64  `yaml:"delta"`
}

// Catalog is a loaded, validated set of definitions. Order follows the file.
type Catalog struct {
	events   []EventConfig
	policies []PolicyConfig
	eventIx  map[string]int
	policyIx map[string]int
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	slog.Info("catalog loaded", "path", path, "events", len(c.events), "policies", len(c.policies))
	return c, nil
}

// Parse decodes catalog bytes. JSON input is accepted since it parses as
// YAML.
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f)
}

// New validates f and indexes it.
func New(f File) (*Catalog, error) {
	c := &Catalog{
		eventIx:  make(map[string]int),
		policyIx: make(map[string]int),
	}
	for _, p := range f.Policies {
		if p.Key == "" {
			return nil, errors.New("policy without key")
		}
		if _, dup := c.policyIx[p.Key]; dup {
			return nil, fmt.Errorf("policy %s: %w", p.Key, ErrDuplicateKey)
		}
		switch p.Level {
		case "":
			p.Level = polity.LevelFederal
		case polity.LevelFederal, polity.LevelState:
		default:
			return nil, fmt.Errorf("policy %s: unknown level %q", p.Key, p.Level)
		}
		c.policyIx[p.Key] = len(c.policies)
		c.policies = append(c.policies, p)
	}
	for _, e := range f.Events {
		if e.Key == "" {
			return nil, errors.New("event without key")
		}
		if _, dup := c.eventIx[e.Key]; dup {
			return nil, fmt.Errorf("event %s: %w", e.Key, ErrDuplicateKey)
		}
		c.eventIx[e.Key] = len(c.events)
		c.events = append(c.events, e)
	}
	// Convert everything once so bad references fail at load time.
	for _, e := range c.events {
		if _, err := c.ToEvent(e); err != nil {
			return nil, err
		}
	}
	for _, p := range c.policies {
		if _, err := c.ToPolicy(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Event looks up an event definition.
func (c *Catalog) Event(key string) (EventConfig, bool) {
	i, ok := c.eventIx[key]
	if !ok {
		return EventConfig{}, false
	}
	return c.events[i], true
}

// Policy looks up a policy definition.
func (c *Catalog) Policy(key string) (PolicyConfig, bool) {
	i, ok := c.policyIx[key]
	if !ok {
		return PolicyConfig{}, false
	}
	return c.policies[i], true
}

// Events lists event definitions in file order.
func (c *Catalog) Events() []EventConfig {
	return append([]EventConfig(nil), c.events...)
}

// Policies lists policy definitions in file order.
func (c *Catalog) Policies() []PolicyConfig {
	return append([]PolicyConfig(nil), c.policies...)
}

// ByLevel lists the policies targeting one level of government.
func (c *Catalog) ByLevel(level polity.Level) []PolicyConfig {
	var out []PolicyConfig
	for _, p := range c.policies {
		if p.Level == level {
			out = append(out, p)
		}
	}
	return out
}

// Registrar accepts catalog events. *engine.EventManager satisfies it.
type Registrar interface {
	Register(ev polity.Event, weight float64)
}

// RegisterAll converts every event and registers it in file order.
func (c *Catalog) RegisterAll(r Registrar) error {
	for _, cfg := range c.events {
		ev, err := c.ToEvent(cfg)
		if err != nil {
			return err
		}
		r.Register(ev, weightOf(cfg))
	}
	return nil
}

func weightOf(cfg EventConfig) float64 {
	if cfg.Weight == nil {
		return 1
	}
	return *cfg.Weight
}
