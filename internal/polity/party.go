// Parties, presidency, Congress and the Court.
package polity

import "fmt"

// PartyID identifies a political party. It doubles as a map key and as the
// lean of a voter cohort.
type PartyID string

const (
	Democrat    PartyID = "Democrat"
	Republican  PartyID = "Republican"
	Independent PartyID = "Independent"
)

// AllParties lists every party in canonical order.
var AllParties = []PartyID{Democrat, Republican, Independent}

// ParsePartyID converts a name into a PartyID.
func ParsePartyID(s string) (PartyID, error) {
	switch p := PartyID(s); p {
	case Democrat, Republican, Independent:
		return p, nil
	}
	return "", fmt.Errorf("unknown party %q", s)
}

// UnmarshalText rejects names outside the closed enumeration.
func (p *PartyID) UnmarshalText(text []byte) error {
	parsed, err := ParsePartyID(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Valid reports whether p is one of the enumerated parties. The zero value
// is not.
func (p PartyID) Valid() bool {
	switch p {
	case Democrat, Republican, Independent:
		return true
	}
	return false
}

// Sign is +1 for Democrat, -1 for Republican and 0 otherwise. Positive
// values favor Democrats throughout the election model.
func (p PartyID) Sign() float64 {
	switch p {
	case Democrat:
		return 1
	case Republican:
		return -1
	}
	return 0
}

// Opponent returns the other major party. Independents are opposed by
// Democrats.
func (p PartyID) Opponent() PartyID {
	if p == Democrat {
		return Republican
	}
	return Democrat
}

// PoliticalParty tracks a party's national standing.
type PoliticalParty struct {
	Name             PartyID `json:"name"`
	NationalApproval float64 `json:"national_approval"`
}

// AdjustApproval shifts national approval, staying within [0, 100].
func (p *PoliticalParty) AdjustApproval(delta float64) {
	p.NationalApproval = ClampPercent(p.NationalApproval + delta)
}

// LegislatureControl records which party holds each chamber of a state
// legislature.
type LegislatureControl struct {
	House  PartyID `json:"house"`
	Senate PartyID `json:"senate"`
}

// Controls reports whether p holds either chamber.
func (l LegislatureControl) Controls(p PartyID) bool {
	return l.House == p || l.Senate == p
}

// Congress holds aggregate chamber control. Per-seat results live on the
// states.
type Congress struct {
	HouseControl  PartyID `json:"house_control"`
	SenateControl PartyID `json:"senate_control"`
}

// Controls reports whether p holds either chamber.
func (c Congress) Controls(p PartyID) bool {
	return c.HouseControl == p || c.SenateControl == p
}

// President is the sitting executive.
type President struct {
	Name  string  `json:"name"`
	Party PartyID `json:"party"`
}

// SupremeCourt carries a coarse ideological lean.
type SupremeCourt struct {
	Lean PartyID `json:"lean"`
}

// FederalBudget holds national revenue and spending in billions.
type FederalBudget struct {
	Revenue  float64 `json:"revenue"`
	Spending float64 `json:"spending"`
	TaxRate  float64 `json:"tax_rate"`
}

// Deficit is spending minus revenue. It is never stored.
func (b FederalBudget) Deficit() float64 {
	return b.Spending - b.Revenue
}

// ApplyCost books a policy cost: positive costs add spending, negative
// costs are savings booked as revenue.
func (b *FederalBudget) ApplyCost(cost float64) {
	if cost >= 0 {
		b.Spending += cost
	} else {
		b.Revenue += -cost
	}
}
