// Event engine: weighted catalog draws, event application, consequences
// and delayed follow-up events.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/usa-sim/internal/entropy"
	"github.com/talgya/usa-sim/internal/polity"
)

// CatalogEntry is a registered event and its draw weight.
type CatalogEntry struct {
	Event  polity.Event `json:"event"`
	Weight float64      `json:"weight"`
}

// PendingEvent is a scheduled follow-up. The record keeps the key and delay
// exactly as scheduled; ScheduledAt anchors the delay to a calendar month.
type PendingEvent struct {
	EventKey    string `json:"event_key"`
	DelayMonths int    `json:"delay_months"`
	ScheduledAt int    `json:"scheduled_at"` // year*12 + month - 1
}

// due reports whether the follow-up should fire at month index now.
func (p PendingEvent) due(now int) bool {
	return now >= p.ScheduledAt+p.DelayMonths
}

// EventManager owns the event catalog and the pending-event schedule.
type EventManager struct {
	entries []CatalogEntry // registration order
	index   map[string]int
	pending []PendingEvent
	rng     entropy.Source
}

// NewEventManager creates an empty catalog drawing from rng.
func NewEventManager(rng entropy.Source) *EventManager {
	return &EventManager{
		index: make(map[string]int),
		rng:   rng,
	}
}

// Register adds an event. Re-registering a key replaces the entry but keeps
// its original position in the draw order.
func (em *EventManager) Register(ev polity.Event, weight float64) {
	if i, ok := em.index[ev.Key]; ok {
		em.entries[i] = CatalogEntry{Event: ev, Weight: weight}
		return
	}
	em.index[ev.Key] = len(em.entries)
	em.entries = append(em.entries, CatalogEntry{Event: ev, Weight: weight})
}

// Lookup returns a copy of the event registered under key.
func (em *EventManager) Lookup(key string) (polity.Event, bool) {
	i, ok := em.index[key]
	if !ok {
		return polity.Event{}, false
	}
	return em.entries[i].Event, true
}

// Catalog returns a copy of the catalog in registration order.
func (em *EventManager) Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(em.entries))
	copy(out, em.entries)
	return out
}

// Pending returns a copy of the pending-event schedule.
func (em *EventManager) Pending() []PendingEvent {
	out := make([]PendingEvent, len(em.pending))
	copy(out, em.pending)
	return out
}

// RandomEvent draws one event among those whose trigger holds under c,
// weighted by catalog weight. Returns nil without drawing when nothing is
// eligible.
func (em *EventManager) RandomEvent(c polity.Conditions) *polity.Event {
	var eligible []CatalogEntry
	total := 0.0
	for _, e := range em.entries {
		if e.Event.Trigger.Holds(c) {
			eligible = append(eligible, e)
			total += e.Weight
		}
	}
	if len(eligible) == 0 || total <= 0 {
		return nil
	}
	pick := em.rng.Uniform(0, total)
	acc := 0.0
	for _, e := range eligible {
		acc += e.Weight
		if acc >= pick {
			ev := e.Event
			return &ev
		}
	}
	ev := eligible[len(eligible)-1].Event
	return &ev
}

// ProcessConsequences runs an event's consequence list against us.
// Chained events naming a key missing from the catalog are skipped without
// a draw.
func (em *EventManager) ProcessConsequences(ev polity.Event, us *UnitedStates) {
	for _, c := range ev.Consequences {
		switch c.Kind {
		case polity.ConsequenceChainEvent:
			if c.Chain == nil {
				continue
			}
			if _, ok := em.index[c.Chain.EventKey]; !ok {
				slog.Warn("chained event not in catalog", "from", ev.Key, "to", c.Chain.EventKey)
				continue
			}
			if em.rng.Float() < c.Chain.Probability {
				em.pending = append(em.pending, PendingEvent{
					EventKey:    c.Chain.EventKey,
					DelayMonths: c.Chain.DelayMonths,
					ScheduledAt: us.monthIndex(),
				})
			}
		case polity.ConsequencePolicyProposal:
			if c.Proposal == nil {
				continue
			}
			if em.rng.Float() < c.Proposal.Probability {
				us.AttemptPassPolicy(c.Proposal.Policy)
			}
		case polity.ConsequencePartyApproval:
			if c.PartyApproval == nil {
				continue
			}
			us.adjustParty(c.PartyApproval.Party, c.PartyApproval.Delta)
			us.logEvent(fmt.Sprintf("%s approval shifts %+.1f after %s", c.PartyApproval.Party, c.PartyApproval.Delta, ev.Key))
		case polity.ConsequenceApprovalBoost:
			if c.ApprovalBoost == nil {
				continue
			}
			switch c.ApprovalBoost.Target {
			case polity.TargetPresident:
				us.Opinion.AdjustPresident(c.ApprovalBoost.Delta)
			case polity.TargetCongress:
				us.Opinion.AdjustCongress(c.ApprovalBoost.Delta)
			}
			us.logEvent(fmt.Sprintf("%s approval shifts %+.1f after %s", c.ApprovalBoost.Target, c.ApprovalBoost.Delta, ev.Key))
		}
	}
}

// takeDue removes and returns the pending events due at month index now,
// keeping the rest in order.
func (em *EventManager) takeDue(now int) []PendingEvent {
	var due []PendingEvent
	kept := em.pending[:0]
	for _, p := range em.pending {
		if p.due(now) {
			due = append(due, p)
		} else {
			kept = append(kept, p)
		}
	}
	em.pending = kept
	return due
}

// TriggerEvent draws one eligible event and applies it. Returns nil when
// nothing was drawn.
func (us *UnitedStates) TriggerEvent() *polity.Event {
	ev := us.Events.RandomEvent(us.Conditions())
	if ev == nil {
		return nil
	}
	us.applyEvent(*ev)
	return ev
}

// applyEvent applies an event's impacts, records it and runs its
// consequences.
func (us *UnitedStates) applyEvent(ev polity.Event) {
	us.Growth += ev.ImpactGrowth
	us.Unemployment = polity.ClampUnemployment(us.Unemployment + ev.ImpactUnemployment)
	us.Inflation = polity.ClampInflation(us.Inflation + ev.ImpactInflation)
	us.Opinion.AdjustPresident(ev.ImpactApprovalPresident)
	us.Opinion.AdjustCongress(ev.ImpactApprovalCongress)
	if ev.PartyBenefit != "" {
		us.adjustParty(ev.PartyBenefit, 1.0)
	}
	us.logEvent(fmt.Sprintf("Event: %s", ev.Description))

	us.RecentEvents = append(us.RecentEvents, ev.Key)
	if len(us.RecentEvents) > recentEventsCap {
		us.RecentEvents = us.RecentEvents[len(us.RecentEvents)-recentEventsCap:]
	}
	slog.Debug("event", "key", ev.Key, "year", us.Year, "month", us.Month)
	if us.Hooks.OnEvent != nil {
		us.Hooks.OnEvent(ev)
	}

	us.Events.ProcessConsequences(ev, us)
}

// firePendingEvents applies every follow-up that has come due. Keys no
// longer in the catalog fire nothing.
func (us *UnitedStates) firePendingEvents() {
	for _, p := range us.Events.takeDue(us.monthIndex()) {
		ev, ok := us.Events.Lookup(p.EventKey)
		if !ok {
			slog.Warn("pending event dropped", "key", p.EventKey)
			continue
		}
		us.applyEvent(ev)
	}
}
