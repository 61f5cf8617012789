package engine

import (
	"math"
	"testing"

	"github.com/talgya/usa-sim/internal/polity"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestStatePolicyApplication(t *testing.T) {
	us := NewDefault(1)
	us.setSource(&scriptedSource{floats: []float64{0}})
	ca, _ := us.State("California")
	federal := us.Budget

	transit := polity.Policy{
		Title: "Transit", Cost: 10, EffectGrowth: 0.01, EffectUnemployment: -0.2,
		EffectInflation: 0.1, Popularity: 60, SponsorParty: polity.Democrat,
	}
	if !us.AttemptPassStatePolicy(ca, transit) {
		t.Fatal("transit failed")
	}
	if !near(ca.GDP, 3200*1.01) {
		t.Errorf("gdp = %.4f, want %.4f", ca.GDP, 3200*1.01)
	}
	if !near(ca.Unemployment, 4.6) || !near(ca.Inflation, 2.9) {
		t.Errorf("unemployment/inflation = %.2f/%.2f", ca.Unemployment, ca.Inflation)
	}
	if ca.BudgetSpending != 110 || ca.BudgetRevenue != 100 {
		t.Errorf("budget = %.1f/%.1f, want cost booked as spending", ca.BudgetRevenue, ca.BudgetSpending)
	}
	if !near(ca.ApprovalGovernor, 50.8) || !near(ca.ApprovalLegislature, 40.4) {
		t.Errorf("approvals = %.2f/%.2f", ca.ApprovalGovernor, ca.ApprovalLegislature)
	}
	if us.Opinion.IssueSupport["Transit"] != 60 {
		t.Errorf("issue support = %.1f", us.Opinion.IssueSupport["Transit"])
	}

	// Savings land as revenue; the governor only gains from their own party.
	fees := polity.Policy{Title: "Fees", Cost: -5, Popularity: 50, SponsorParty: polity.Republican}
	if !us.AttemptPassStatePolicy(ca, fees) {
		t.Fatal("fees failed")
	}
	if ca.BudgetRevenue != 105 || ca.BudgetSpending != 110 {
		t.Errorf("budget = %.1f/%.1f, want savings booked as revenue", ca.BudgetRevenue, ca.BudgetSpending)
	}
	if !near(ca.ApprovalGovernor, 50.8) || !near(ca.ApprovalLegislature, 40.8) {
		t.Errorf("approvals = %.2f/%.2f", ca.ApprovalGovernor, ca.ApprovalLegislature)
	}

	if us.Budget != federal {
		t.Errorf("federal budget moved to %+v", us.Budget)
	}

	us.setSource(&scriptedSource{floats: []float64{0.99}})
	gdp := ca.GDP
	if us.AttemptPassStatePolicy(ca, transit) {
		t.Fatal("transit passed on a 0.99 draw")
	}
	if ca.GDP != gdp || ca.BudgetSpending != 110 || !near(ca.ApprovalGovernor, 50.8) {
		t.Error("failed state policy had effects")
	}
}

func TestPassedPolicyRunsConsequences(t *testing.T) {
	us := NewDefault(3)
	us.setSource(&scriptedSource{floats: []float64{0}})
	congress := us.Opinion.ApprovalCongress

	p := polity.Policy{
		Title: "Chips Act", Popularity: 60, SponsorParty: polity.Democrat,
		Consequences: []polity.Consequence{
			{Kind: polity.ConsequenceApprovalBoost, ApprovalBoost: &polity.ApprovalBoost{Target: polity.TargetCongress, Delta: 2}},
			polity.ChainTo("tech_boom", 2, 1),
		},
	}
	if !us.AttemptPassPolicy(p) {
		t.Fatal("policy failed")
	}
	if got := us.Opinion.ApprovalCongress - congress; got != 2 {
		t.Errorf("congress approval moved %+.1f, want +2", got)
	}
	pending := us.Events.Pending()
	if len(pending) != 1 || pending[0].EventKey != "tech_boom" || pending[0].DelayMonths != 2 {
		t.Fatalf("pending = %+v", pending)
	}

	us.setSource(&scriptedSource{floats: []float64{0.99}})
	congress = us.Opinion.ApprovalCongress
	if us.AttemptPassPolicy(p) {
		t.Fatal("policy passed on a 0.99 draw")
	}
	if us.Opinion.ApprovalCongress != congress || len(us.Events.Pending()) != 1 {
		t.Error("failed policy ran its consequences")
	}

	us.setSource(&scriptedSource{floats: []float64{0}})
	tx, _ := us.State("Texas")
	if !us.AttemptPassStatePolicy(tx, p) {
		t.Fatal("state policy failed")
	}
	if len(us.Events.Pending()) != 2 {
		t.Errorf("state passage did not run consequences: %+v", us.Events.Pending())
	}
}
