// Events, their trigger conditions and their follow-on consequences.
package polity

import (
	"errors"
	"fmt"
)

// Event is a catalog entry. Firing an event never removes it from the
// catalog.
type Event struct {
	Key                     string        `json:"key"`
	Description             string        `json:"description"`
	ImpactApprovalPresident float64       `json:"impact_approval_president"`
	ImpactApprovalCongress  float64       `json:"impact_approval_congress"`
	ImpactGrowth            float64       `json:"impact_growth"`
	ImpactUnemployment      float64       `json:"impact_unemployment"`
	ImpactInflation         float64       `json:"impact_inflation"`
	PartyBenefit            PartyID       `json:"party_benefit,omitempty"` // empty means none
	Trigger                 *Trigger      `json:"trigger,omitempty"`
	Consequences            []Consequence `json:"consequences,omitempty"`
}

// Conditions is the slice of simulation state a Trigger inspects.
type Conditions struct {
	Growth            float64
	Unemployment      float64
	Inflation         float64
	ApprovalPresident float64
	Month             int
	PresidentParty    PartyID
}

// Trigger gates whether an event is eligible to fire. Nil bounds are
// ignored; an empty Months list allows every month.
type Trigger struct {
	MinGrowth            *float64 `json:"min_growth,omitempty"`
	MaxGrowth            *float64 `json:"max_growth,omitempty"`
	MinUnemployment      *float64 `json:"min_unemployment,omitempty"`
	MaxUnemployment      *float64 `json:"max_unemployment,omitempty"`
	MinInflation         *float64 `json:"min_inflation,omitempty"`
	MaxInflation         *float64 `json:"max_inflation,omitempty"`
	MaxApprovalPresident *float64 `json:"max_approval_president,omitempty"`
	MinApprovalPresident *float64 `json:"min_approval_president,omitempty"`
	Months               []int    `json:"months,omitempty"`
	PresidentParty       PartyID  `json:"president_party,omitempty"`
}

// Holds reports whether c satisfies every bound in the trigger. A nil
// trigger always holds.
func (t *Trigger) Holds(c Conditions) bool {
	if t == nil {
		return true
	}
	if !within(c.Growth, t.MinGrowth, t.MaxGrowth) ||
		!within(c.Unemployment, t.MinUnemployment, t.MaxUnemployment) ||
		!within(c.Inflation, t.MinInflation, t.MaxInflation) ||
		!within(c.ApprovalPresident, t.MinApprovalPresident, t.MaxApprovalPresident) {
		return false
	}
	if t.PresidentParty != "" && t.PresidentParty != c.PresidentParty {
		return false
	}
	if len(t.Months) == 0 {
		return true
	}
	for _, m := range t.Months {
		if m == c.Month {
			return true
		}
	}
	return false
}

func within(v float64, lo, hi *float64) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

// ConsequenceKind enumerates what a consequence does.
type ConsequenceKind string

const (
	ConsequenceChainEvent     ConsequenceKind = "chain_event"
	ConsequencePolicyProposal ConsequenceKind = "policy_proposal"
	ConsequencePartyApproval  ConsequenceKind = "party_approval"
	ConsequenceApprovalBoost  ConsequenceKind = "approval_boost"
)

// ApprovalTarget names the national approval figure an approval boost moves.
type ApprovalTarget string

const (
	TargetPresident ApprovalTarget = "president"
	TargetCongress  ApprovalTarget = "congress"
)

// ErrMalformedConsequence reports a consequence whose payload does not match
// its kind.
var ErrMalformedConsequence = errors.New("malformed consequence")

// Consequence is a tagged variant: Kind selects which payload is set.
type Consequence struct {
	Kind          ConsequenceKind `json:"type"`
	Chain         *ChainEvent     `json:"chain,omitempty"`
	Proposal      *PolicyProposal `json:"proposal,omitempty"`
	PartyApproval *PartyShift     `json:"party_approval,omitempty"`
	ApprovalBoost *ApprovalBoost  `json:"approval_boost,omitempty"`
}

// ChainEvent schedules another catalog event after a delay.
type ChainEvent struct {
	EventKey    string  `json:"event_key"`
	DelayMonths int     `json:"delay_months"`
	Probability float64 `json:"probability"`
}

// PolicyProposal sends a policy through the national policy engine.
type PolicyProposal struct {
	Policy      Policy  `json:"policy"`
	Probability float64 `json:"probability"`
}

// PartyShift moves one party's national approval.
type PartyShift struct {
	Party PartyID `json:"party"`
	Delta float64 `json:"delta"`
}

// ApprovalBoost moves presidential or congressional approval.
type ApprovalBoost struct {
	Target ApprovalTarget `json:"target"`
	Delta  float64        `json:"delta"`
}

// ChainTo builds a chain_event consequence.
func ChainTo(eventKey string, delayMonths int, probability float64) Consequence {
	return Consequence{
		Kind:  ConsequenceChainEvent,
		Chain: &ChainEvent{EventKey: eventKey, DelayMonths: delayMonths, Probability: probability},
	}
}

// Validate checks that the payload for Kind is present and sane.
func (c Consequence) Validate() error {
	switch c.Kind {
	case ConsequenceChainEvent:
		if c.Chain == nil || c.Chain.EventKey == "" {
			return fmt.Errorf("%w: chain_event needs an event key", ErrMalformedConsequence)
		}
		if c.Chain.DelayMonths < 0 {
			return fmt.Errorf("%w: negative delay %d", ErrMalformedConsequence, c.Chain.DelayMonths)
		}
	case ConsequencePolicyProposal:
		if c.Proposal == nil || c.Proposal.Policy.Title == "" {
			return fmt.Errorf("%w: policy_proposal needs a titled policy", ErrMalformedConsequence)
		}
		for _, nested := range c.Proposal.Policy.Consequences {
			if err := nested.Validate(); err != nil {
				return err
			}
		}
	case ConsequencePartyApproval:
		if c.PartyApproval == nil || c.PartyApproval.Party == "" {
			return fmt.Errorf("%w: party_approval needs a party", ErrMalformedConsequence)
		}
	case ConsequenceApprovalBoost:
		if c.ApprovalBoost == nil {
			return fmt.Errorf("%w: approval_boost needs a target", ErrMalformedConsequence)
		}
		switch c.ApprovalBoost.Target {
		case TargetPresident, TargetCongress:
		default:
			return fmt.Errorf("%w: approval_boost target %q", ErrMalformedConsequence, c.ApprovalBoost.Target)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedConsequence, c.Kind)
	}
	return nil
}
