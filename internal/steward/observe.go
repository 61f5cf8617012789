// Package steward implements an external policy steward for a running
// simulation. It observes state via the public API, triages the economy,
// picks at most one catalog policy per cycle and proposes it via the admin
// policy endpoint.
package steward

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/usa-sim/internal/engine"
	"github.com/talgya/usa-sim/internal/polity"
)

// Observation holds all data collected during one cycle.
type Observation struct {
	Snapshot engine.Snapshot
	Policies []PolicyInfo
}

// PolicyInfo mirrors items from GET /api/v1/policies.
type PolicyInfo struct {
	Key      string        `json:"key"`
	Level    polity.Level  `json:"level"`
	Eligible bool          `json:"eligible"`
	Policy   polity.Policy `json:"policy"`
}

// Observer fetches simulation state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches the snapshot and the federal policy catalog.
func (o *Observer) Observe(ctx context.Context) (*Observation, error) {
	obs := &Observation{}
	if err := o.fetchJSON(ctx, "/api/v1/snapshot?logs=0", &obs.Snapshot); err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	var policies struct {
		Policies []PolicyInfo `json:"policies"`
	}
	if err := o.fetchJSON(ctx, "/api/v1/policies?level=federal", &policies); err != nil {
		return nil, fmt.Errorf("fetch policies: %w", err)
	}
	obs.Policies = policies.Policies
	return obs, nil
}

// Ready reports whether the API answers the snapshot endpoint.
func (o *Observer) Ready(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+"/api/v1/snapshot?logs=0", nil)
	if err != nil {
		return false
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
