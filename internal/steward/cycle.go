package steward

import (
	"context"
	"fmt"
	"log/slog"
)

// Steward ties one observe, decide and act pass together.
type Steward struct {
	Observer *Observer
	Actor    *Actor
	Memory   *CycleMemory
}

// RunCycle executes one observe → decide → act cycle and records it.
func (s *Steward) RunCycle(ctx context.Context) (*Decision, error) {
	obs, err := s.Observer.Observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	h := Triage(obs)
	slog.Info("observation complete",
		"date", obs.Snapshot.Time.Label,
		"crisis", h.CrisisLevel,
		"growth", fmt.Sprintf("%.4f", h.Growth),
		"unemployment", fmt.Sprintf("%.2f", h.Unemployment),
		"inflation", fmt.Sprintf("%.2f", h.Inflation),
	)

	d := Decide(obs, h, s.Memory)
	rec := CycleRecord{
		Date:        obs.Snapshot.Time.Label,
		Action:      d.Action,
		CrisisLevel: h.CrisisLevel,
		Problem:     h.Problem,
		PolicyKey:   d.PolicyKey,
		Rationale:   d.Rationale,
	}
	slog.Info("decision made", "action", d.Action, "rationale", d.Rationale)

	if d.Action == ActionPolicy {
		res, err := s.Actor.Propose(ctx, d.PolicyKey, "")
		if err != nil {
			return d, fmt.Errorf("propose %s: %w", d.PolicyKey, err)
		}
		rec.Passed = res.Passed
		slog.Info("policy proposed", "key", d.PolicyKey, "passed", res.Passed)
	}
	if s.Memory != nil {
		s.Memory.Record(rec)
	}
	return d, nil
}
