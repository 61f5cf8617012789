// Package metrics exposes simulation outcomes as Prometheus series.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/usa-sim/internal/engine"
	"github.com/talgya/usa-sim/internal/polity"
)

// Collector owns a private registry so tests and multiple simulations never
// collide on the global one.
type Collector struct {
	reg *prometheus.Registry

	months    prometheus.Counter
	macro     *prometheus.GaugeVec
	approval  *prometheus.GaugeVec
	party     *prometheus.GaugeVec
	deficit   prometheus.Gauge
	policies  *prometheus.CounterVec
	events    *prometheus.CounterVec
	elections *prometheus.CounterVec
}

// New creates and registers every series.
func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		months: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ussim", Name: "months_total",
			Help: "Simulated months advanced.",
		}),
		macro: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ussim", Name: "macro",
			Help: "National macro indicators.",
		}, []string{"indicator"}),
		approval: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ussim", Name: "approval",
			Help: "Presidential and congressional approval.",
		}, []string{"office"}),
		party: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ussim", Name: "party_approval",
			Help: "National party approval.",
		}, []string{"party"}),
		deficit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ussim", Name: "federal_deficit_billions",
			Help: "Federal spending minus revenue.",
		}),
		policies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ussim", Name: "policy_attempts_total",
			Help: "Policy passage attempts by level and outcome.",
		}, []string{"level", "outcome"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ussim", Name: "events_total",
			Help: "Events applied by key.",
		}, []string{"key"}),
		elections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ussim", Name: "election_wins_total",
			Help: "Contests won by office and party.",
		}, []string{"office", "party"}),
	}
	c.reg.MustRegister(c.months, c.macro, c.approval, c.party, c.deficit, c.policies, c.events, c.elections)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Hooks returns engine observers that feed this collector.
func (c *Collector) Hooks() engine.Hooks {
	return engine.Hooks{
		OnTurn:     c.observeTurn,
		OnPolicy:   c.observePolicy,
		OnEvent:    c.observeEvent,
		OnElection: c.observeElection,
	}
}

func (c *Collector) observeTurn(us *engine.UnitedStates) {
	c.months.Inc()
	c.macro.WithLabelValues("growth").Set(us.Growth)
	c.macro.WithLabelValues("unemployment").Set(us.Unemployment)
	c.macro.WithLabelValues("inflation").Set(us.Inflation)
	c.macro.WithLabelValues("gdp").Set(us.TotalGDP())
	c.approval.WithLabelValues("president").Set(us.Opinion.ApprovalPresident)
	c.approval.WithLabelValues("congress").Set(us.Opinion.ApprovalCongress)
	for _, id := range polity.AllParties {
		if p, ok := us.Parties[id]; ok {
			c.party.WithLabelValues(string(id)).Set(p.NationalApproval)
		}
	}
	c.deficit.Set(us.Budget.Deficit())
}

func (c *Collector) observePolicy(level polity.Level, _ polity.Policy, passed bool) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	c.policies.WithLabelValues(string(level), outcome).Inc()
}

func (c *Collector) observeEvent(ev polity.Event) {
	c.events.WithLabelValues(ev.Key).Inc()
}

func (c *Collector) observeElection(r engine.ElectionResult) {
	c.elections.WithLabelValues(r.Office, string(r.Winner)).Inc()
}
