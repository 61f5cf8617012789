package steward

import (
	"fmt"

	"github.com/talgya/usa-sim/internal/polity"
)

// Actions a decision can take.
const (
	ActionNone   = "none"
	ActionPolicy = "policy"
)

// Decision is the steward's plan for one cycle.
type Decision struct {
	Action    string `json:"action"`
	Rationale string `json:"rationale"`
	PolicyKey string `json:"policy_key,omitempty"`
}

// Decide picks at most one eligible federal policy that addresses the
// triaged problem. Policies proposed within the memory's cooldown are
// skipped.
func Decide(obs *Observation, h *Health, mem *CycleMemory) *Decision {
	if h.Problem == ProblemNone {
		return &Decision{Action: ActionNone, Rationale: "economy healthy"}
	}

	var best *PolicyInfo
	bestScore := 0.0
	for i := range obs.Policies {
		p := &obs.Policies[i]
		if !p.Eligible || p.Level != polity.LevelFederal {
			continue
		}
		if mem != nil && mem.RecentlyProposed(p.Key) {
			continue
		}
		if s := score(h.Problem, p.Policy); s > bestScore {
			best, bestScore = p, s
		}
	}
	if best == nil {
		return &Decision{
			Action:    ActionNone,
			Rationale: fmt.Sprintf("%s %s but no eligible policy helps", h.CrisisLevel, h.Problem),
		}
	}
	return &Decision{
		Action:    ActionPolicy,
		Rationale: fmt.Sprintf("%s %s: %s scores %.3f", h.CrisisLevel, h.Problem, best.Policy.Title, bestScore),
		PolicyKey: best.Key,
	}
}

// score rates how much a policy helps with a problem. Non-positive scores
// never win.
func score(problem Problem, p polity.Policy) float64 {
	switch problem {
	case ProblemJobs:
		return -p.EffectUnemployment
	case ProblemContraction:
		return p.EffectGrowth * 100
	case ProblemInflation:
		return -p.EffectInflation
	case ProblemDeficit:
		return -p.Cost
	case ProblemUnpopularity:
		return p.Popularity - 50
	}
	return 0
}
