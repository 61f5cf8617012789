package catalog

import (
	"fmt"

	"github.com/talgya/usa-sim/internal/polity"
)

// ToEvent converts a definition into an engine event. policy_proposal
// consequences are resolved against this catalog's policies.
func (c *Catalog) ToEvent(cfg EventConfig) (polity.Event, error) {
	ev := polity.Event{
		Key:                     cfg.Key,
		Description:             cfg.Description,
		ImpactApprovalPresident: cfg.Effects.ApprovalPresident,
		ImpactApprovalCongress:  cfg.Effects.ApprovalCongress,
		ImpactGrowth:            cfg.Effects.Growth,
		ImpactUnemployment:      cfg.Effects.Unemployment,
		ImpactInflation:         cfg.Effects.Inflation,
	}
	if ev.Description == "" {
		ev.Description = cfg.Name
	}
	if weightOf(cfg) < 0 {
		return polity.Event{}, fmt.Errorf("event %s: negative weight", cfg.Key)
	}
	if cfg.PartyBenefit != "" {
		p, err := polity.ParsePartyID(cfg.PartyBenefit)
		if err != nil {
			return polity.Event{}, fmt.Errorf("event %s: %w", cfg.Key, err)
		}
		ev.PartyBenefit = p
	}
	trig, err := toTrigger(cfg.Triggers)
	if err != nil {
		return polity.Event{}, fmt.Errorf("event %s: %w", cfg.Key, err)
	}
	ev.Trigger = trig

	for i, cc := range cfg.Consequences {
		cons, err := c.toConsequence(cc)
		if err != nil {
			return polity.Event{}, fmt.Errorf("event %s consequence %d: %w", cfg.Key, i, err)
		}
		ev.Consequences = append(ev.Consequences, cons)
	}
	return ev, nil
}

// ToPolicy converts a definition into a policy. An empty sponsor_party
// leaves the policy Independent-sponsored; callers may override it.
// Consequences may not propose further policies.
func (c *Catalog) ToPolicy(cfg PolicyConfig) (polity.Policy, error) {
	p := polity.Policy{
		Title:              cfg.Title,
		Description:        cfg.Description,
		Cost:               cfg.Cost,
		EffectGrowth:       cfg.Effects.Growth,
		EffectUnemployment: cfg.Effects.Unemployment,
		EffectInflation:    cfg.Effects.Inflation,
		Popularity:         50,
		SponsorParty:       polity.Independent,
	}
	if p.Title == "" {
		p.Title = cfg.Key
	}
	if cfg.Popularity != nil {
		p.Popularity = polity.ClampPercent(*cfg.Popularity)
	}
	if cfg.SponsorParty != "" {
		sponsor, err := polity.ParsePartyID(cfg.SponsorParty)
		if err != nil {
			return polity.Policy{}, fmt.Errorf("policy %s: %w", cfg.Key, err)
		}
		p.SponsorParty = sponsor
	}
	if _, err := toTrigger(cfg.Requirements); err != nil {
		return polity.Policy{}, fmt.Errorf("policy %s: %w", cfg.Key, err)
	}
	for i, cc := range cfg.Consequences {
		if polity.ConsequenceKind(cc.Type) == polity.ConsequencePolicyProposal {
			return polity.Policy{}, fmt.Errorf("policy %s consequence %d: %w", cfg.Key, i, ErrNestedProposal)
		}
		cons, err := c.toConsequence(cc)
		if err != nil {
			return polity.Policy{}, fmt.Errorf("policy %s consequence %d: %w", cfg.Key, i, err)
		}
		p.Consequences = append(p.Consequences, cons)
	}
	return p, nil
}

// Eligible reports whether a policy's requirements hold under cond.
// Unknown keys are never eligible.
func (c *Catalog) Eligible(key string, cond polity.Conditions) bool {
	cfg, ok := c.Policy(key)
	if !ok {
		return false
	}
	trig, err := toTrigger(cfg.Requirements)
	if err != nil {
		return false
	}
	return trig.Holds(cond)
}

func (c *Catalog) toConsequence(cc ConsequenceConfig) (polity.Consequence, error) {
	prob := 1.0
	if cc.Probability != nil {
		prob = polity.Clamp(*cc.Probability, 0, 1)
	}

	var cons polity.Consequence
	switch polity.ConsequenceKind(cc.Type) {
	case polity.ConsequenceChainEvent:
		cons = polity.ChainTo(cc.EventKey, cc.DelayMonths, prob)
	case polity.ConsequencePolicyProposal:
		cfg, ok := c.Policy(cc.Policy)
		if !ok {
			return cons, fmt.Errorf("%w %q", ErrUnknownPolicy, cc.Policy)
		}
		p, err := c.ToPolicy(cfg)
		if err != nil {
			return cons, err
		}
		cons = polity.Consequence{
			Kind:     polity.ConsequencePolicyProposal,
			Proposal: &polity.PolicyProposal{Policy: p, Probability: prob},
		}
	case polity.ConsequencePartyApproval:
		party, err := polity.ParsePartyID(cc.Party)
		if err != nil {
			return cons, err
		}
		cons = polity.Consequence{
			Kind:          polity.ConsequencePartyApproval,
			PartyApproval: &polity.PartyShift{Party: party, Delta: cc.Delta},
		}
	case polity.ConsequenceApprovalBoost:
		cons = polity.Consequence{
			Kind:          polity.ConsequenceApprovalBoost,
			ApprovalBoost: &polity.ApprovalBoost{Target: polity.ApprovalTarget(cc.Target), Delta: cc.Delta},
		}
	default:
		return cons, fmt.Errorf("%w %q", ErrUnknownConsequence, cc.Type)
	}
	return cons, cons.Validate()
}

// toTrigger returns nil for an empty config so the event is always eligible.
func toTrigger(tc TriggerConfig) (*polity.Trigger, error) {
	t := &polity.Trigger{
		MinGrowth:            tc.MinGrowth,
		MaxGrowth:            tc.MaxGrowth,
		MinUnemployment:      tc.MinUnemployment,
		MaxUnemployment:      tc.MaxUnemployment,
		MinInflation:         tc.MinInflation,
		MaxInflation:         tc.MaxInflation,
		MinApprovalPresident: tc.MinApprovalPresident,
		MaxApprovalPresident: tc.MaxApprovalPresident,
		Months:               tc.Months,
	}
	for _, m := range tc.Months {
		if m < 1 || m > 12 {
			return nil, fmt.Errorf("trigger month %d out of range", m)
		}
	}
	if tc.PresidentParty != "" {
		p, err := polity.ParsePartyID(tc.PresidentParty)
		if err != nil {
			return nil, err
		}
		t.PresidentParty = p
	}
	if t.MinGrowth == nil && t.MaxGrowth == nil &&
		t.MinUnemployment == nil && t.MaxUnemployment == nil &&
		t.MinInflation == nil && t.MaxInflation == nil &&
		t.MinApprovalPresident == nil && t.MaxApprovalPresident == nil &&
		len(t.Months) == 0 && t.PresidentParty == "" {
		return nil, nil
	}
	return t, nil
}
