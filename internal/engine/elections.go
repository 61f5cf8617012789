// Election model: district and statewide win probabilities, seat
// resolution and chamber control.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/usa-sim/internal/polity"
)

// ElectionMonth is the only month in which elections run.
const ElectionMonth = 11

// Office names used in election results.
const (
	OfficePresident = "President"
	OfficeHouse     = "House"
	OfficeSenate    = "Senate"
	OfficeCongress  = "Congress"
)

// ElectionResult records the outcome of one contest or one chamber.
type ElectionResult struct {
	Office         string         `json:"office"`
	Year           int            `json:"year"`
	Winner         polity.PartyID `json:"winner"`
	ProbDem        float64        `json:"prob_dem,omitempty"`
	EconomySignal  float64        `json:"economy_signal,omitempty"`
	ApprovalSignal float64        `json:"approval_signal,omitempty"`
	DemSeats       int            `json:"dem_seats,omitempty"`
	RepSeats       int            `json:"rep_seats,omitempty"`
}

// economySignal is positive in a healthy economy and strongly negative
// otherwise; only its movement matters.
func (us *UnitedStates) economySignal() float64 {
	return us.Growth - 0.2*us.Inflation - 0.3*us.Unemployment
}

func (us *UnitedStates) nationalSignalDem() float64 {
	approval := us.Opinion.ApprovalPresident - 50
	return 0.02*us.economySignal() + 0.01*approval
}

// stateSignalDem turns governor and legislature approval deviations into a
// Democratic lean, signed by which party holds each office.
func (us *UnitedStates) stateSignalDem(st *polity.State) float64 {
	gov := (st.ApprovalGovernor - 50) / 200
	leg := (st.ApprovalLegislature - 40) / 200
	return gov*partySign(st.GovernorParty) + leg*partySign(st.Legislature.House)
}

// partySign is +1 for Democrats and -1 for anyone else.
func partySign(p polity.PartyID) float64 {
	if p == polity.Democrat {
		return 1
	}
	return -1
}

func incumbencyEdge(p polity.PartyID) float64 {
	switch p {
	case polity.Democrat:
		return 0.02
	case polity.Republican:
		return -0.02
	}
	return 0
}

// districtDemProbability is the chance a Democrat takes the district. Draws
// one noise value.
func (us *UnitedStates) districtDemProbability(st *polity.State, d *polity.District) float64 {
	p := 0.5 + 0.15*polity.PartisanScore(d.Cohorts) + d.Swing + d.TurnoutBias
	p += incumbencyEdge(d.Incumbent)
	p += us.nationalSignalDem()
	p += 0.5 * us.stateSignalDem(st)
	p += us.rng.Uniform(-0.03, 0.03)
	return polity.Clamp(p, 0.05, 0.95)
}

// statewideDemProbability is the chance a Democrat takes a Senate seat.
// Unlike the district model it uses a 0.12 cohort weight and no district
// terms. Draws one noise value.
func (us *UnitedStates) statewideDemProbability(st *polity.State, incumbent polity.PartyID) float64 {
	p := 0.5 + 0.12*polity.PartisanScore(st.VoterCohorts) + 0.5*us.stateSignalDem(st) + us.nationalSignalDem()
	p += incumbencyEdge(incumbent)
	p += us.rng.Uniform(-0.03, 0.03)
	return polity.Clamp(p, 0.05, 0.95)
}

// resolveSeat draws the winner of a two-way contest. Independents never win.
func (us *UnitedStates) resolveSeat(probDem float64) polity.PartyID {
	if us.rng.Float() < probDem {
		return polity.Democrat
	}
	return polity.Republican
}

// majority applies the tie-break: Democrats take the chamber on equal seats.
func majority(dem, rep int) polity.PartyID {
	if dem >= rep {
		return polity.Democrat
	}
	return polity.Republican
}

// runNationalElection resolves a single national race from the economy and
// the approval of the office being contested.
func (us *UnitedStates) runNationalElection(office string) ElectionResult {
	economy := us.economySignal()
	approval := us.Opinion.ApprovalCongress - 30
	if office == OfficePresident {
		approval = us.Opinion.ApprovalPresident - 50
	}
	base := polity.Clamp(0.5+0.02*economy+0.01*approval, 0.05, 0.95)
	prob := polity.Clamp(base+us.rng.Uniform(-0.05, 0.05), 0.05, 0.95)
	return ElectionResult{
		Office:         office,
		Year:           us.Year,
		Winner:         us.resolveSeat(prob),
		ProbDem:        prob,
		EconomySignal:  economy,
		ApprovalSignal: approval,
	}
}

// maybeRunElections runs the November contests: every House seat in even
// years, Senate seats whose class equals year mod 6, and the presidency when
// year mod 4 is zero.
func (us *UnitedStates) maybeRunElections() {
	if us.Month != ElectionMonth {
		return
	}
	prevHouse := us.Congress.HouseControl
	prevSenate := us.Congress.SenateControl

	for _, st := range us.States {
		st.EnsureElections(us.rng)
	}

	if us.Year%2 == 0 {
		us.runHouseElections()
	}
	us.runSenateElections()
	if us.Year%4 == 0 {
		result := us.runNationalElection(OfficePresident)
		us.President.Party = result.Winner
		us.logEvent(fmt.Sprintf("Presidential election: %s", result.Winner))
		slog.Info("presidential election", "year", us.Year, "winner", result.Winner, "prob_dem", fmt.Sprintf("%.3f", result.ProbDem))
		us.notifyElection(result)
	}

	us.updateApprovalsAfterCongressResults(prevHouse, prevSenate)
}

func (us *UnitedStates) runHouseElections() {
	dem, rep := 0, 0
	for _, st := range us.States {
		for i := range st.HouseDistricts {
			d := &st.HouseDistricts[i]
			d.Incumbent = us.resolveSeat(us.districtDemProbability(st, d))
			if d.Incumbent == polity.Democrat {
				dem++
			} else {
				rep++
			}
		}
	}
	us.Congress.HouseControl = majority(dem, rep)
	us.logEvent(fmt.Sprintf("House elections (granular): D %d - R %d", dem, rep))
	slog.Info("house elections", "year", us.Year, "dem", dem, "rep", rep, "control", us.Congress.HouseControl)
	us.notifyElection(ElectionResult{Office: OfficeHouse, Year: us.Year, Winner: us.Congress.HouseControl, DemSeats: dem, RepSeats: rep})
}

func (us *UnitedStates) runSenateElections() {
	cycle := us.Year % 6
	dem, rep := 0, 0
	for _, st := range us.States {
		for i := range st.SenateSeats {
			if st.SenateClasses[i] == cycle {
				st.SenateSeats[i] = us.resolveSeat(us.statewideDemProbability(st, st.SenateSeats[i]))
			}
		}
		for _, seat := range st.SenateSeats {
			switch seat {
			case polity.Democrat:
				dem++
			case polity.Republican:
				rep++
			}
		}
	}
	// Independent-held seats count for nobody; with no major-party seats
	// the chamber keeps its previous control.
	if dem == 0 && rep == 0 {
		return
	}
	us.Congress.SenateControl = majority(dem, rep)
	us.logEvent(fmt.Sprintf("Senate elections (staggered): D %d - R %d", dem, rep))
	slog.Info("senate elections", "year", us.Year, "dem", dem, "rep", rep, "control", us.Congress.SenateControl)
	us.notifyElection(ElectionResult{Office: OfficeSenate, Year: us.Year, Winner: us.Congress.SenateControl, DemSeats: dem, RepSeats: rep})
}

// updateApprovalsAfterCongressResults rewards the president when a chamber
// flips to the president's party and penalizes a flip away.
func (us *UnitedStates) updateApprovalsAfterCongressResults(prevHouse, prevSenate polity.PartyID) {
	if us.Congress.HouseControl != prevHouse {
		if us.Congress.HouseControl == us.President.Party {
			us.Opinion.AdjustPresident(1.0)
			us.Opinion.AdjustCongress(0.5)
		} else {
			us.Opinion.AdjustPresident(-1.0)
			us.Opinion.AdjustCongress(-0.5)
		}
	}
	if us.Congress.SenateControl != prevSenate {
		if us.Congress.SenateControl == us.President.Party {
			us.Opinion.AdjustPresident(0.5)
		} else {
			us.Opinion.AdjustPresident(-0.5)
		}
	}
}

func (us *UnitedStates) notifyElection(r ElectionResult) {
	if us.Hooks.OnElection != nil {
		us.Hooks.OnElection(r)
	}
}
