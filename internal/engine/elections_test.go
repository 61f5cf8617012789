package engine

import (
	"testing"

	"github.com/talgya/usa-sim/internal/polity"
)

func TestSenateContestsOnlyTheCurrentClass(t *testing.T) {
	rng := &scriptedSource{floats: []float64{0.01}}
	us := New(2027, ElectionMonth, rng)
	us.President = polity.President{Name: "Incumbent", Party: polity.Republican}
	us.Congress = polity.Congress{HouseControl: polity.Republican, SenateControl: polity.Republican}
	st := polity.NewState("Ohio", 11_800_000, 800, 4.5, 2.6, polity.Republican,
		polity.LegislatureControl{House: polity.Republican, Senate: polity.Republican})
	st.SenateSeats = []polity.PartyID{polity.Republican, polity.Republican}
	st.SenateClasses = []int{2027 % 6, (2027%6 + 3) % 6}
	us.AddState(st)

	var offices []string
	us.Hooks.OnElection = func(r ElectionResult) { offices = append(offices, r.Office) }

	us.maybeRunElections()

	if st.SenateSeats[0] != polity.Democrat || st.SenateSeats[1] != polity.Republican {
		t.Fatalf("seats = %v, want only the class %d seat contested", st.SenateSeats, 2027%6)
	}
	if us.Congress.SenateControl != polity.Democrat {
		t.Errorf("senate control = %s, want Democrat on a 1-1 split", us.Congress.SenateControl)
	}
	if len(offices) != 1 || offices[0] != OfficeSenate {
		t.Errorf("offices contested = %v, want only Senate in an odd non-presidential year", offices)
	}
	for _, d := range st.HouseDistricts {
		if d.Incumbent != polity.Independent {
			t.Fatalf("district %s contested in an odd year", d.ID)
		}
	}

	// Neither class is up in 2029; no seat is drawn.
	us.Year = 2029
	draws := rng.next
	us.maybeRunElections()
	if rng.next != draws {
		t.Errorf("drew %d seats with no class up", rng.next-draws)
	}
	if st.SenateSeats[0] != polity.Democrat || st.SenateSeats[1] != polity.Republican {
		t.Errorf("uncontested seats changed to %v", st.SenateSeats)
	}
}

func TestPresidencyContestedEveryFourYears(t *testing.T) {
	us := New(2028, ElectionMonth, &scriptedSource{floats: []float64{0.99}})
	us.President = polity.President{Name: "Incumbent", Party: polity.Democrat}
	presidential := 0
	us.Hooks.OnElection = func(r ElectionResult) {
		if r.Office == OfficePresident {
			presidential++
		}
	}

	us.maybeRunElections()
	if us.President.Party != polity.Republican || presidential != 1 {
		t.Fatalf("2028: president %s after %d contests", us.President.Party, presidential)
	}

	for _, year := range []int{2029, 2030, 2031} {
		us.Year = year
		us.President.Party = polity.Democrat
		us.maybeRunElections()
		if us.President.Party != polity.Democrat {
			t.Errorf("%d: presidency changed hands", year)
		}
	}
	if presidential != 1 {
		t.Errorf("presidential contests = %d, want 1", presidential)
	}

	us.Year = 2032
	us.maybeRunElections()
	if presidential != 2 {
		t.Errorf("2032 not contested")
	}
}

func TestApprovalsFollowChamberFlips(t *testing.T) {
	d, r := polity.Democrat, polity.Republican
	tests := []struct {
		name                 string
		prevHouse, prevSen   polity.PartyID
		house, senate        polity.PartyID
		wantPres, wantCongrs float64
	}{
		{"house to president", r, r, d, r, 1.0, 0.5},
		{"house away", d, d, r, d, -1.0, -0.5},
		{"senate to president", r, r, r, d, 0.5, 0},
		{"senate away", d, d, d, r, -0.5, 0},
		{"both to president", r, r, d, d, 1.5, 0.5},
		{"no change", d, r, d, r, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			us := New(2026, ElectionMonth, &scriptedSource{})
			us.President.Party = polity.Democrat
			us.Opinion.ApprovalPresident = 50
			us.Opinion.ApprovalCongress = 30
			us.Congress = polity.Congress{HouseControl: tt.house, SenateControl: tt.senate}

			us.updateApprovalsAfterCongressResults(tt.prevHouse, tt.prevSen)

			if got := us.Opinion.ApprovalPresident - 50; got != tt.wantPres {
				t.Errorf("president moved %+.1f, want %+.1f", got, tt.wantPres)
			}
			if got := us.Opinion.ApprovalCongress - 30; got != tt.wantCongrs {
				t.Errorf("congress moved %+.1f, want %+.1f", got, tt.wantCongrs)
			}
		})
	}
}
