package steward

// Crisis levels, most severe first.
const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
	LevelWatch    = "WATCH"
	LevelHealthy  = "HEALTHY"
)

// Health holds derived diagnostic signals computed from an Observation.
type Health struct {
	Growth            float64
	Unemployment      float64
	Inflation         float64
	DeficitRatio      float64 // deficit / revenue
	ApprovalPresident float64
	CrisisLevel       string
	Problem           Problem
}

// Problem names the signal that set the crisis level.
type Problem string

const (
	ProblemNone         Problem = ""
	ProblemJobs         Problem = "jobs"
	ProblemContraction  Problem = "contraction"
	ProblemInflation    Problem = "inflation"
	ProblemDeficit      Problem = "deficit"
	ProblemUnpopularity Problem = "unpopularity"
)

// Triage computes Health from the observation's snapshot.
func Triage(obs *Observation) *Health {
	snap := obs.Snapshot
	h := &Health{
		Growth:            snap.Macro.Growth,
		Unemployment:      snap.Macro.Unemployment,
		Inflation:         snap.Macro.Inflation,
		ApprovalPresident: snap.Federal.Opinion.ApprovalPresident,
		CrisisLevel:       LevelHealthy,
	}
	if rev := snap.Federal.Budget.Revenue; rev > 0 {
		h.DeficitRatio = snap.Federal.Budget.Deficit / rev
	}

	switch {
	case h.Unemployment > 9:
		h.CrisisLevel, h.Problem = LevelCritical, ProblemJobs
	case h.Growth < -0.02:
		h.CrisisLevel, h.Problem = LevelCritical, ProblemContraction
	case h.Inflation > 6:
		h.CrisisLevel, h.Problem = LevelWarning, ProblemInflation
	case h.Unemployment > 7:
		h.CrisisLevel, h.Problem = LevelWarning, ProblemJobs
	case h.Growth < 0:
		h.CrisisLevel, h.Problem = LevelWarning, ProblemContraction
	case h.DeficitRatio > 0.3:
		h.CrisisLevel, h.Problem = LevelWatch, ProblemDeficit
	case h.ApprovalPresident < 35:
		h.CrisisLevel, h.Problem = LevelWatch, ProblemUnpopularity
	}
	return h
}
