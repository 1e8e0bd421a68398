// Package policy manages the risk policy override document. A missing or
// unreadable override is never an error: scoring falls back to a fresh copy
// of the built-in default. Persistence is best-effort because the policy
// directory may live on read-only storage; callers get a plain success
// signal and can fall back to Export.
package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/cardrisk/internal/model"
)

// FileName is the well-known override document name inside the policy dir.
const FileName = "risk_policy.json"

// Store loads and persists the risk policy.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir (typically ~/.cardrisk).
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the full path of the override document.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Load returns the override policy if one exists and parses, else a deep
// copy of the built-in default. It never fails.
func (s *Store) Load() *model.Policy {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return model.DefaultPolicy()
	}

	var p model.Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return model.DefaultPolicy()
	}
	if p.Weights == nil {
		p.Weights = map[string]int{}
	}
	// Weights are non-negative by contract; clamp hand-edited documents.
	for k, w := range p.Weights {
		if w < 0 {
			p.Weights[k] = 0
		}
	}
	return &p
}

// Save writes the policy back to the override document. Failure is
// non-fatal by contract; the caller should offer Export instead.
func (s *Store) Save(p *model.Policy) error {
	data, err := Export(p)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create policy dir: %w", err)
	}
	if err := os.WriteFile(s.Path(), data, 0644); err != nil {
		return fmt.Errorf("write policy: %w", err)
	}
	return nil
}

// Export serializes the policy for manual download or inspection.
func Export(p *model.Policy) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal policy: %w", err)
	}
	return append(data, '\n'), nil
}
