package engine

import "github.com/talgya/usa-sim/internal/polity"

// DefaultSnapshotLogs is how many log lines a snapshot carries by default.
const DefaultSnapshotLogs = 20

// Snapshot is a display-oriented view of the simulation. It drops districts,
// cohorts, the catalog and the random stream and cannot be restored from.
type Snapshot struct {
	Time    TimeView       `json:"time"`
	Macro   MacroView      `json:"macro"`
	Federal FederalView    `json:"federal"`
	States  []StateView    `json:"states"`
	Parties []PartyView    `json:"parties"`
	Pending []PendingEvent `json:"pending_events,omitempty"`
	Recent  []string       `json:"recent_events,omitempty"`
	LogTail []string       `json:"log_tail"`
}

// TimeView is the calendar position.
type TimeView struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
}

// MacroView holds the national indicators and summed state GDP.
type MacroView struct {
	Growth       float64 `json:"growth"`
	Unemployment float64 `json:"unemployment"`
	Inflation    float64 `json:"inflation"`
	TotalGDP     float64 `json:"total_gdp"`
}

// FederalView groups the federal offices, budget and opinion.
type FederalView struct {
	President polity.President    `json:"president"`
	Congress  polity.Congress     `json:"congress"`
	Court     polity.SupremeCourt `json:"court"`
	Budget    BudgetView          `json:"budget"`
	Opinion   OpinionView         `json:"opinion"`
}

// BudgetView is the federal budget with its derived deficit.
type BudgetView struct {
	Revenue  float64 `json:"revenue"`
	Spending float64 `json:"spending"`
	Deficit  float64 `json:"deficit"`
	TaxRate  float64 `json:"tax_rate"`
}

// OpinionView copies national approval and issue support.
type OpinionView struct {
	ApprovalPresident float64            `json:"approval_president"`
	ApprovalCongress  float64            `json:"approval_congress"`
	IssueSupport      map[string]float64 `json:"issue_support"`
}

// StateView summarizes one state. House seats are counted from district
// incumbents; districts and cohorts themselves are left out.
type StateView struct {
	Name                string                    `json:"name"`
	Population          int64                     `json:"population"`
	GDP                 float64                   `json:"gdp"`
	Unemployment        float64                   `json:"unemployment"`
	Inflation           float64                   `json:"inflation"`
	GovernorParty       polity.PartyID            `json:"governor_party"`
	Legislature         polity.LegislatureControl `json:"legislature"`
	ApprovalGovernor    float64                   `json:"approval_governor"`
	ApprovalLegislature float64                   `json:"approval_legislature"`
	Revenue             float64                   `json:"rev"`
	Spending            float64                   `json:"spend"`
	TaxRate             float64                   `json:"tax_rate"`
	Deficit             float64                   `json:"deficit"`
	DemSeats            int                       `json:"dem_house_seats"`
	RepSeats            int                       `json:"rep_house_seats"`
	SenateSeats         []polity.PartyID          `json:"senate_seats"`
}

// PartyView is one party's national standing.
type PartyView struct {
	Name             polity.PartyID `json:"name"`
	NationalApproval float64        `json:"national_approval"`
}

// Snapshot projects the current state. lastLogs bounds the log tail; a
// negative value means DefaultSnapshotLogs.
func (us *UnitedStates) Snapshot(lastLogs int) Snapshot {
	if lastLogs < 0 {
		lastLogs = DefaultSnapshotLogs
	}
	snap := Snapshot{
		Time: TimeView{Year: us.Year, Month: us.Month, Label: CalendarLabel(us.Year, us.Month)},
		Macro: MacroView{
			Growth:       us.Growth,
			Unemployment: us.Unemployment,
			Inflation:    us.Inflation,
			TotalGDP:     us.TotalGDP(),
		},
		Federal: FederalView{
			President: us.President,
			Congress:  us.Congress,
			Court:     us.Court,
			Budget: BudgetView{
				Revenue:  us.Budget.Revenue,
				Spending: us.Budget.Spending,
				Deficit:  us.Budget.Deficit(),
				TaxRate:  us.Budget.TaxRate,
			},
			Opinion: OpinionView{
				ApprovalPresident: us.Opinion.ApprovalPresident,
				ApprovalCongress:  us.Opinion.ApprovalCongress,
				IssueSupport:      make(map[string]float64, len(us.Opinion.IssueSupport)),
			},
		},
		Pending: us.Events.Pending(),
		Recent:  append([]string(nil), us.RecentEvents...),
	}
	for k, v := range us.Opinion.IssueSupport {
		snap.Federal.Opinion.IssueSupport[k] = v
	}

	for _, st := range us.States {
		view := StateView{
			Name:                st.Name,
			Population:          st.Population,
			GDP:                 st.GDP,
			Unemployment:        st.Unemployment,
			Inflation:           st.Inflation,
			GovernorParty:       st.GovernorParty,
			Legislature:         st.Legislature,
			ApprovalGovernor:    st.ApprovalGovernor,
			ApprovalLegislature: st.ApprovalLegislature,
			Revenue:             st.BudgetRevenue,
			Spending:            st.BudgetSpending,
			TaxRate:             st.TaxRate,
			Deficit:             st.Deficit(),
			SenateSeats:         append([]polity.PartyID(nil), st.SenateSeats...),
		}
		for _, d := range st.HouseDistricts {
			switch d.Incumbent {
			case polity.Democrat:
				view.DemSeats++
			case polity.Republican:
				view.RepSeats++
			}
		}
		snap.States = append(snap.States, view)
	}

	for _, id := range polity.AllParties {
		if p, ok := us.Parties[id]; ok {
			snap.Parties = append(snap.Parties, PartyView{Name: p.Name, NationalApproval: p.NationalApproval})
		}
	}

	start := max(0, len(us.Log)-lastLogs)
	snap.LogTail = append([]string{}, us.Log[start:]...)
	return snap
}
