// Package api provides the HTTP control plane for a running simulation.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/usa-sim/internal/catalog"
	"github.com/talgya/usa-sim/internal/engine"
	"github.com/talgya/usa-sim/internal/persistence"
	"github.com/talgya/usa-sim/internal/polity"
)

const (
	maxAdvanceMonths = 600
	maxSpeed         = 1000
)

// Server serves the simulation over HTTP.
type Server struct {
	Session  *engine.Session
	Eng      *engine.Engine    // optional; enables /speed
	Store    persistence.Store // optional; enables save/load
	Catalog  *catalog.Catalog  // optional; enables policy keys
	Metrics  http.Handler      // optional; served at /metrics
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
	Origins  []string
	Limiter  *RateLimiter // optional; applied to POST endpoints

	srv *http.Server
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("GET /api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/v1/log", s.handleLog)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/policies", s.handlePolicies)
	mux.HandleFunc("GET /api/v1/saves", s.handleSaves)
	mux.HandleFunc("GET /api/v1/speed", s.handleSpeed)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics)
	}

	// Admin endpoints.
	mux.HandleFunc("POST /api/v1/advance", s.admin(s.handleAdvance))
	mux.HandleFunc("POST /api/v1/event", s.admin(s.handleTriggerEvent))
	mux.HandleFunc("POST /api/v1/policy", s.admin(s.handlePolicy))
	mux.HandleFunc("POST /api/v1/save", s.admin(s.handleSave))
	mux.HandleFunc("POST /api/v1/load", s.admin(s.handleLoad))
	mux.HandleFunc("POST /api/v1/speed", s.admin(s.handleSpeed))

	return corsMiddleware(s.Origins, mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "store", s.Store != nil)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins. Localhost
// dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// admin wraps a handler with bearer auth and, when configured, rate limiting.
func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	h := func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no USSIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
	if s.Limiter != nil {
		return RateLimitMiddleware(s.Limiter, h)
	}
	return h
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "logs", engine.DefaultSnapshotLogs)
	if err != nil || n < 0 {
		http.Error(w, "logs must be a non-negative integer", http.StatusBadRequest)
		return
	}
	writeJSON(w, s.Session.Snapshot(n))
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	offset, err := intParam(r, "offset", 0)
	if err != nil || offset < 0 {
		http.Error(w, "offset must be a non-negative integer", http.StatusBadRequest)
		return
	}
	limit, err := intParam(r, "limit", 100)
	if err != nil || limit < 1 || limit > 1000 {
		http.Error(w, "limit must be 1-1000", http.StatusBadRequest)
		return
	}

	lines := s.Session.Log()
	total := len(lines)
	start := min(offset, total)
	end := min(start+limit, total)
	writeJSON(w, map[string]any{
		"total":  total,
		"offset": start,
		"lines":  lines[start:end],
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	type eventInfo struct {
		engine.CatalogEntry
		Pending int `json:"pending"`
	}
	var pending []engine.PendingEvent
	var entries []engine.CatalogEntry
	s.Session.View(func(us *engine.UnitedStates) {
		entries = us.Events.Catalog()
		pending = us.Events.Pending()
	})

	counts := make(map[string]int)
	for _, p := range pending {
		counts[p.EventKey]++
	}
	out := make([]eventInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, eventInfo{CatalogEntry: e, Pending: counts[e.Event.Key]})
	}
	writeJSON(w, map[string]any{"events": out, "pending": pending})
}

func (s *Server) handlePolicies(w http.ResponseWriter, r *http.Request) {
	if s.Catalog == nil {
		writeJSON(w, map[string]any{"policies": []any{}})
		return
	}
	var cond polity.Conditions
	s.Session.View(func(us *engine.UnitedStates) {
		cond = us.Conditions()
	})

	type policyInfo struct {
		Key      string        `json:"key"`
		Level    polity.Level  `json:"level"`
		Eligible bool          `json:"eligible"`
		Policy   polity.Policy `json:"policy"`
	}
	var out []policyInfo
	for _, cfg := range s.Catalog.Policies() {
		if lvl := r.URL.Query().Get("level"); lvl != "" && polity.Level(lvl) != cfg.Level {
			continue
		}
		p, err := s.Catalog.ToPolicy(cfg)
		if err != nil {
			continue
		}
		out = append(out, policyInfo{Key: cfg.Key, Level: cfg.Level, Eligible: s.Catalog.Eligible(cfg.Key, cond), Policy: p})
	}
	writeJSON(w, map[string]any{"policies": out})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Months int  `json:"months"`
		Logs   *int `json:"logs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Months < 1 || req.Months > maxAdvanceMonths {
		http.Error(w, fmt.Sprintf("months must be 1-%d", maxAdvanceMonths), http.StatusBadRequest)
		return
	}
	logs := engine.DefaultSnapshotLogs
	if req.Logs != nil && *req.Logs >= 0 {
		logs = *req.Logs
	}
	snap := s.Session.Advance(req.Months, logs)
	slog.Info("advanced", "months", req.Months, "now", snap.Time.Label)
	writeJSON(w, snap)
}

func (s *Server) handleTriggerEvent(w http.ResponseWriter, r *http.Request) {
	ev := s.Session.TriggerEvent()
	writeJSON(w, map[string]any{"fired": ev != nil, "event": ev})
}

type policyRequest struct {
	Key          string         `json:"key"`
	Policy       *polity.Policy `json:"policy"`
	State        string         `json:"state"`
	SponsorParty string         `json:"sponsor_party"`
}

func (s *Server) handlePolicy(w http.ResponseWriter, r *http.Request) {
	var req policyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	p, status, err := s.resolvePolicy(req)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	passed, ok := s.Session.AttemptPolicy(p, req.State)
	if !ok {
		http.Error(w, "unknown state", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"passed": passed, "policy": p, "state": req.State})
}

// resolvePolicy turns a request into a policy, returning an HTTP status on
// failure.
func (s *Server) resolvePolicy(req policyRequest) (polity.Policy, int, error) {
	var p polity.Policy
	switch {
	case req.Policy != nil && req.Key != "":
		return p, http.StatusBadRequest, errors.New("send either key or policy, not both")
	case req.Policy != nil:
		p = *req.Policy
		if p.Title == "" {
			return p, http.StatusBadRequest, errors.New("policy title required")
		}
		for _, c := range p.Consequences {
			if err := c.Validate(); err != nil {
				return p, http.StatusBadRequest, err
			}
		}
	case req.Key != "":
		if s.Catalog == nil {
			return p, http.StatusNotFound, errors.New("no policy catalog loaded")
		}
		cfg, ok := s.Catalog.Policy(req.Key)
		if !ok {
			return p, http.StatusNotFound, fmt.Errorf("unknown policy %q", req.Key)
		}
		if cfg.Level == polity.LevelState && req.State == "" {
			return p, http.StatusBadRequest, errors.New("state policy needs a state")
		}
		if cfg.Level == polity.LevelFederal && req.State != "" {
			return p, http.StatusBadRequest, errors.New("federal policy cannot target a state")
		}
		var err error
		if p, err = s.Catalog.ToPolicy(cfg); err != nil {
			return p, http.StatusUnprocessableEntity, err
		}
		var cond polity.Conditions
		s.Session.View(func(us *engine.UnitedStates) {
			cond = us.Conditions()
		})
		if !s.Catalog.Eligible(req.Key, cond) {
			return p, http.StatusConflict, fmt.Errorf("policy %q requirements not met", req.Key)
		}
	default:
		return p, http.StatusBadRequest, errors.New("key or policy required")
	}

	if req.SponsorParty != "" {
		sponsor, err := polity.ParsePartyID(req.SponsorParty)
		if err != nil {
			return p, http.StatusBadRequest, err
		}
		p.SponsorParty = sponsor
	}
	if p.SponsorParty == "" {
		p.SponsorParty = polity.Independent
	}
	return p, 0, nil
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "no save store configured", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	rec, err := SessionRecord(s.Session, req.Name)
	if err != nil {
		slog.Error("marshal failed", "error", err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	info, err := s.Store.Save(r.Context(), rec)
	if err != nil {
		slog.Error("save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, info)
}

// SessionRecord captures the session as a save record. An empty name
// defaults to the calendar label.
func SessionRecord(session *engine.Session, name string) (persistence.Record, error) {
	var rec persistence.Record
	err := session.Do(func(us *engine.UnitedStates) error {
		data, err := us.Marshal()
		if err != nil {
			return err
		}
		rec = persistence.Record{Name: name, Year: us.Year, Month: us.Month, Data: data}
		return nil
	})
	if rec.Name == "" {
		rec.Name = engine.CalendarLabel(rec.Year, rec.Month)
	}
	return rec, err
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "no save store configured", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	data, info, err := s.Store.Load(r.Context(), req.ID)
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, "save not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("load failed", "id", req.ID, "error", err)
		http.Error(w, "load failed", http.StatusInternalServerError)
		return
	}
	us, err := engine.Unmarshal(data)
	if err != nil {
		// The running simulation is left untouched.
		slog.Warn("rejected save", "id", req.ID, "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.Session.Replace(us)
	slog.Info("simulation loaded", "id", info.ID, "name", info.Name)
	writeJSON(w, map[string]any{"loaded": info, "snapshot": s.Session.Snapshot(engine.DefaultSnapshotLogs)})
}

func (s *Server) handleSaves(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeJSON(w, map[string]any{"saves": []any{}})
		return
	}
	saves, err := s.Store.List(r.Context())
	if err != nil {
		slog.Error("list saves failed", "error", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"saves": saves})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "no real-time driver", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > maxSpeed {
			http.Error(w, fmt.Sprintf("speed must be 0-%d", maxSpeed), http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
	}

	writeJSON(w, map[string]any{"speed": s.Eng.Speed(), "months": s.Eng.Months()})
}

func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
