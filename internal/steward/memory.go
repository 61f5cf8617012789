package steward

import (
	"encoding/json"
	"log/slog"
	"os"
)

const (
	maxRecords = 10
	cooldown   = 3 // cycles before a policy may be proposed again
)

// CycleRecord captures what happened in a single steward cycle.
type CycleRecord struct {
	Date        string  `json:"date"`
	Action      string  `json:"action"`
	CrisisLevel string  `json:"crisis_level"`
	Problem     Problem `json:"problem,omitempty"`
	PolicyKey   string  `json:"policy_key,omitempty"`
	Passed      bool    `json:"passed,omitempty"`
	Rationale   string  `json:"rationale,omitempty"`
}

// CycleMemory manages a ring of recent steward cycle records.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`
}

// LoadMemory reads the memory file from disk. Returns empty memory if not found.
func LoadMemory(path string) *CycleMemory {
	data, err := os.ReadFile(path)
	if err != nil {
		return &CycleMemory{}
	}
	var mem CycleMemory
	if err := json.Unmarshal(data, &mem); err != nil {
		slog.Warn("steward memory corrupted, starting fresh", "error", err)
		return &CycleMemory{}
	}
	return &mem
}

// Save writes the memory to disk.
func (m *CycleMemory) Save(path string) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal steward memory", "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		slog.Error("failed to write steward memory", "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// RecentlyProposed reports whether key was proposed in the last few cycles.
func (m *CycleMemory) RecentlyProposed(key string) bool {
	start := max(len(m.Records)-cooldown, 0)
	for _, r := range m.Records[start:] {
		if r.PolicyKey == key {
			return true
		}
	}
	return false
}
