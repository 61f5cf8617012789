package catalog

import (
	"errors"
	"testing"

	"github.com/talgya/usa-sim/internal/engine"
	"github.com/talgya/usa-sim/internal/polity"
)

func TestLoadTestdata(t *testing.T) {
	c, err := Load("testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := len(c.Events()); got != 3 {
		t.Errorf("events = %d, want 3", got)
	}
	if got := len(c.ByLevel(polity.LevelFederal)); got != 1 {
		t.Errorf("federal policies = %d, want 1", got)
	}
	if got := len(c.ByLevel(polity.LevelState)); got != 1 {
		t.Errorf("state policies = %d, want 1", got)
	}

	cfg, ok := c.Event("recession")
	if !ok {
		t.Fatal("recession missing")
	}
	ev, err := c.ToEvent(cfg)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if ev.PartyBenefit != polity.Republican || ev.Trigger == nil || *ev.Trigger.MaxGrowth != 0.01 {
		t.Errorf("recession = %+v", ev)
	}
	if len(ev.Consequences) != 3 {
		t.Fatalf("consequences = %d", len(ev.Consequences))
	}
	chain := ev.Consequences[0].Chain
	if chain == nil || chain.EventKey != "recovery" || chain.DelayMonths != 6 || chain.Probability != 0.6 {
		t.Errorf("chain = %+v", chain)
	}
	prop := ev.Consequences[1].Proposal
	if prop == nil || prop.Policy.Title != "Emergency Stimulus" || prop.Policy.SponsorParty != polity.Democrat {
		t.Errorf("proposal = %+v", prop)
	}
	if prop != nil && len(prop.Policy.Consequences) != 2 {
		t.Errorf("proposed policy consequences = %d, want 2", len(prop.Policy.Consequences))
	}

	pcfg, _ := c.Policy("emergency_stimulus")
	p, err := c.ToPolicy(pcfg)
	if err != nil {
		t.Fatalf("convert policy: %v", err)
	}
	if len(p.Consequences) != 2 {
		t.Fatalf("policy consequences = %d, want 2", len(p.Consequences))
	}
	if boost := p.Consequences[0].ApprovalBoost; boost == nil || boost.Target != polity.TargetPresident || boost.Delta != 1.5 {
		t.Errorf("boost = %+v", boost)
	}
	if chain := p.Consequences[1].Chain; chain == nil || chain.EventKey != "recovery" || chain.Probability != 1 {
		t.Errorf("chain = %+v", chain)
	}
}

func TestDefaults(t *testing.T) {
	c, err := Parse([]byte(`
events:
  - key: quiet
    description: Nothing happens
policies:
  - key: plain
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p, _ := c.Policy("plain")
	if p.Level != polity.LevelFederal {
		t.Errorf("level = %q", p.Level)
	}
	pol, err := c.ToPolicy(p)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if pol.Popularity != 50 || pol.Title != "plain" || pol.SponsorParty != polity.Independent {
		t.Errorf("policy = %+v", pol)
	}
	ev, _ := c.Event("quiet")
	converted, _ := c.ToEvent(ev)
	if converted.Trigger != nil {
		t.Error("empty triggers should not gate")
	}
}

func TestParseJSON(t *testing.T) {
	c, err := Parse([]byte(`{"events":[{"key":"a","description":"A","weight":2}],"policies":[]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if e, ok := c.Event("a"); !ok || *e.Weight != 2 {
		t.Errorf("event = %+v", e)
	}
}

func TestRejects(t *testing.T) {
	cases := map[string]struct {
		data string
		want error
	}{
		"unknown consequence": {
			data: "events:\n  - key: a\n    consequences:\n      - type: teleport\n",
			want: ErrUnknownConsequence,
		},
		"missing policy": {
			data: "events:\n  - key: a\n    consequences:\n      - type: policy_proposal\n        policy: ghost\n",
			want: ErrUnknownPolicy,
		},
		"duplicate event": {
			data: "events:\n  - key: a\n  - key: a\n",
			want: ErrDuplicateKey,
		},
		"policy proposes policy": {
			data: "policies:\n  - key: a\n    consequences:\n      - type: policy_proposal\n        policy: a\n",
			want: ErrNestedProposal,
		},
		"unknown policy consequence": {
			data: "policies:\n  - key: a\n    consequences:\n      - type: teleport\n",
			want: ErrUnknownConsequence,
		},
		"bad boost target": {
			data: "events:\n  - key: a\n    consequences:\n      - type: approval_boost\n        target: court\n",
			want: polity.ErrMalformedConsequence,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRejectsBadParty(t *testing.T) {
	if _, err := Parse([]byte("events:\n  - key: a\n    party_benefit: Whig\n")); err == nil {
		t.Error("accepted unknown party")
	}
}

func TestRegisterAllIntoSimulation(t *testing.T) {
	c, err := Load("testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	us := engine.NewDefault(1)
	base := len(us.Events.Catalog())
	if err := c.RegisterAll(us.Events); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := len(us.Events.Catalog()); got != base+3 {
		t.Errorf("catalog = %d, want %d", got, base+3)
	}
	if _, ok := us.Events.Lookup("recovery"); !ok {
		t.Error("recovery not registered")
	}

	// Registered catalogs survive a save.
	data, err := us.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := engine.Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ev, ok := restored.Events.Lookup("recession")
	if !ok || len(ev.Consequences) != 3 || ev.Consequences[1].Proposal == nil {
		t.Errorf("recession after restore = %+v", ev)
	}
}

func TestEligible(t *testing.T) {
	c, err := Load("testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Eligible("emergency_stimulus", polity.Conditions{Growth: 0.02}) {
		t.Error("eligible in expansion")
	}
	if !c.Eligible("emergency_stimulus", polity.Conditions{Growth: -0.01}) {
		t.Error("not eligible in contraction")
	}
	if c.Eligible("ghost", polity.Conditions{}) {
		t.Error("unknown policy eligible")
	}
}
