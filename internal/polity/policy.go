package polity

// Level says which government a policy targets.
type Level string

const (
	LevelFederal Level = "federal"
	LevelState   Level = "state"
)

// Policy is a proposal handed to the policy engine. Policies are transient:
// only their issue-support history is kept.
type Policy struct {
	Title              string  `json:"title" yaml:"title"`
	Description        string  `json:"description" yaml:"description"`
	Cost               float64 `json:"cost" yaml:"cost"` // billions; negative is savings
	EffectGrowth       float64 `json:"effect_growth" yaml:"effect_growth"`
	EffectUnemployment float64 `json:"effect_unemployment" yaml:"effect_unemployment"`
	EffectInflation    float64 `json:"effect_inflation" yaml:"effect_inflation"`
	Popularity         float64 `json:"popularity" yaml:"popularity"`
	SponsorParty       PartyID `json:"sponsor_party" yaml:"sponsor_party"`

	// Consequences run only if the policy passes.
	Consequences []Consequence `json:"consequences,omitempty" yaml:"-"`
}

// PublicOpinion holds national approval figures and per-issue support.
// Issue support is keyed by policy title, so policies sharing a title share
// a history.
type PublicOpinion struct {
	ApprovalPresident float64            `json:"approval_president"`
	ApprovalCongress  float64            `json:"approval_congress"`
	IssueSupport      map[string]float64 `json:"issue_support"`
}

// UpdateIssue nudges support for the policy's title. A title seen for the
// first time starts from the policy's popularity.
func (o *PublicOpinion) UpdateIssue(p Policy, delta float64) {
	if o.IssueSupport == nil {
		o.IssueSupport = make(map[string]float64)
	}
	base, ok := o.IssueSupport[p.Title]
	if !ok {
		base = p.Popularity
	}
	o.IssueSupport[p.Title] = ClampPercent(base + delta)
}

// AdjustPresident shifts presidential approval within [0, 100].
func (o *PublicOpinion) AdjustPresident(delta float64) {
	o.ApprovalPresident = ClampPercent(o.ApprovalPresident + delta)
}

// AdjustCongress shifts congressional approval within [0, 100].
func (o *PublicOpinion) AdjustCongress(delta float64) {
	o.ApprovalCongress = ClampPercent(o.ApprovalCongress + delta)
}
