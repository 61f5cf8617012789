package steward

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/talgya/usa-sim/internal/api"
	"github.com/talgya/usa-sim/internal/catalog"
	"github.com/talgya/usa-sim/internal/engine"
	"github.com/talgya/usa-sim/internal/polity"
)

func startAPI(t *testing.T) (*httptest.Server, *engine.Session) {
	t.Helper()
	data, err := os.ReadFile("../catalog/testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	cat, err := catalog.Parse(data)
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	session := engine.NewSession(engine.NewDefault(11))
	srv := httptest.NewServer((&api.Server{
		Session:  session,
		Catalog:  cat,
		AdminKey: "k",
	}).Handler())
	t.Cleanup(srv.Close)
	return srv, session
}

func TestTriage(t *testing.T) {
	tests := []struct {
		name    string
		macro   engine.MacroView
		level   string
		problem Problem
	}{
		{"healthy", engine.MacroView{Growth: 0.02, Unemployment: 5, Inflation: 2}, LevelHealthy, ProblemNone},
		{"mass unemployment", engine.MacroView{Growth: 0.01, Unemployment: 9.5, Inflation: 2}, LevelCritical, ProblemJobs},
		{"deep contraction", engine.MacroView{Growth: -0.03, Unemployment: 6, Inflation: 2}, LevelCritical, ProblemContraction},
		{"inflation", engine.MacroView{Growth: 0.01, Unemployment: 5, Inflation: 7}, LevelWarning, ProblemInflation},
		{"mild contraction", engine.MacroView{Growth: -0.001, Unemployment: 5, Inflation: 2}, LevelWarning, ProblemContraction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &Observation{}
			obs.Snapshot.Macro = tt.macro
			obs.Snapshot.Federal.Budget = engine.BudgetView{Revenue: 4500, Spending: 4600, Deficit: 100}
			obs.Snapshot.Federal.Opinion.ApprovalPresident = 50
			h := Triage(obs)
			if h.CrisisLevel != tt.level || h.Problem != tt.problem {
				t.Errorf("got %s/%s, want %s/%s", h.CrisisLevel, h.Problem, tt.level, tt.problem)
			}
		})
	}
}

func TestTriageDeficit(t *testing.T) {
	obs := &Observation{}
	obs.Snapshot.Macro = engine.MacroView{Growth: 0.02, Unemployment: 5, Inflation: 2}
	obs.Snapshot.Federal.Budget = engine.BudgetView{Revenue: 1000, Spending: 1400, Deficit: 400}
	obs.Snapshot.Federal.Opinion.ApprovalPresident = 50
	if h := Triage(obs); h.Problem != ProblemDeficit || h.DeficitRatio != 0.4 {
		t.Errorf("health = %+v", h)
	}
}

func TestDecidePicksBestEligible(t *testing.T) {
	obs := &Observation{Policies: []PolicyInfo{
		{Key: "small", Level: polity.LevelFederal, Eligible: true, Policy: polity.Policy{Title: "Small", EffectUnemployment: -0.1}},
		{Key: "big", Level: polity.LevelFederal, Eligible: true, Policy: polity.Policy{Title: "Big", EffectUnemployment: -0.5}},
		{Key: "blocked", Level: polity.LevelFederal, Eligible: false, Policy: polity.Policy{Title: "Blocked", EffectUnemployment: -2}},
		{Key: "state", Level: polity.LevelState, Eligible: true, Policy: polity.Policy{Title: "State", EffectUnemployment: -3}},
		{Key: "harmful", Level: polity.LevelFederal, Eligible: true, Policy: polity.Policy{Title: "Harmful", EffectUnemployment: 0.4}},
	}}
	h := &Health{CrisisLevel: LevelCritical, Problem: ProblemJobs}

	d := Decide(obs, h, nil)
	if d.Action != ActionPolicy || d.PolicyKey != "big" {
		t.Fatalf("decision = %+v", d)
	}

	mem := &CycleMemory{}
	mem.Record(CycleRecord{Action: ActionPolicy, PolicyKey: "big"})
	if d := Decide(obs, h, mem); d.PolicyKey != "small" {
		t.Errorf("cooldown ignored: %+v", d)
	}

	if d := Decide(obs, &Health{CrisisLevel: LevelHealthy}, nil); d.Action != ActionNone {
		t.Errorf("healthy decision = %+v", d)
	}
}

func TestMemoryCooldownAndPersistence(t *testing.T) {
	mem := &CycleMemory{}
	mem.Record(CycleRecord{PolicyKey: "a"})
	for range cooldown {
		mem.Record(CycleRecord{Action: ActionNone})
	}
	if mem.RecentlyProposed("a") {
		t.Error("cooldown should have expired")
	}
	for range maxRecords + 5 {
		mem.Record(CycleRecord{Action: ActionNone})
	}
	if len(mem.Records) != maxRecords {
		t.Errorf("records = %d", len(mem.Records))
	}

	path := filepath.Join(t.TempDir(), "steward.json")
	mem.Save(path)
	if got := LoadMemory(path); len(got.Records) != maxRecords {
		t.Errorf("loaded %d records", len(got.Records))
	}
	if got := LoadMemory(filepath.Join(t.TempDir(), "missing.json")); len(got.Records) != 0 {
		t.Error("missing file should give empty memory")
	}
}

func TestRunCycleAgainstAPI(t *testing.T) {
	srv, session := startAPI(t)
	session.Update(func(us *engine.UnitedStates) {
		us.Growth = -0.01
	})

	ctx := context.Background()
	s := &Steward{
		Observer: NewObserver(srv.URL),
		Actor:    NewActor(srv.URL, "k"),
		Memory:   &CycleMemory{},
	}
	if !s.Observer.Ready(ctx) {
		t.Fatal("API not ready")
	}

	d, err := s.RunCycle(ctx)
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if d.Action != ActionPolicy || d.PolicyKey != "emergency_stimulus" {
		t.Fatalf("decision = %+v", d)
	}
	if len(s.Memory.Records) != 1 || s.Memory.Records[0].Problem != ProblemContraction {
		t.Errorf("memory = %+v", s.Memory.Records)
	}

	// Cooldown blocks the only eligible policy on the next pass.
	d, err = s.RunCycle(ctx)
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if d.Action != ActionNone {
		t.Errorf("second decision = %+v", d)
	}
}

func TestActorRejectsBadKey(t *testing.T) {
	srv, _ := startAPI(t)
	if _, err := NewActor(srv.URL, "wrong").Propose(context.Background(), "emergency_stimulus", ""); err == nil {
		t.Error("expected auth failure")
	}
}
