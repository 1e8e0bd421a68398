package policy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ppiankov/cardrisk/internal/model"
)

func TestStore_LoadMissingFileReturnsDefault(t *testing.T) {
	store := NewStore(t.TempDir())

	p := store.Load()
	if !reflect.DeepEqual(p, model.DefaultPolicy()) {
		t.Error("Expected default policy when no override exists")
	}
}

func TestStore_LoadCorruptFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	store := NewStore(dir)
	p := store.Load()
	if !reflect.DeepEqual(p, model.DefaultPolicy()) {
		t.Error("Expected default policy for corrupt override")
	}
}

func TestStore_DefaultIsIsolatedCopy(t *testing.T) {
	store := NewStore(t.TempDir())

	first := store.Load()
	first.Weights["license"] = 99
	first.License.Allow[0] = "mutated"

	second := store.Load()
	if second.Weights["license"] == 99 {
		t.Error("Weight edit leaked into a later load")
	}
	if second.License.Allow[0] == "mutated" {
		t.Error("List edit leaked into a later load")
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	p := model.DefaultPolicy()
	p.Weights["license"] = 5
	p.License.Deny = append(p.License.Deny, "wtfpl")
	p.TechnicalFeasibility.MaxParamsB = 13

	if err := store.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := store.Load()
	if loaded.Weights["license"] != 5 {
		t.Errorf("Expected weight 5, got %d", loaded.Weights["license"])
	}
	if loaded.TechnicalFeasibility.MaxParamsB != 13 {
		t.Errorf("Expected max params 13, got %g", loaded.TechnicalFeasibility.MaxParamsB)
	}
	found := false
	for _, lic := range loaded.License.Deny {
		if lic == "wtfpl" {
			found = true
		}
	}
	if !found {
		t.Error("Added deny entry did not survive the round trip")
	}
}

func TestStore_SaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "policy")
	store := NewStore(dir)

	if err := store.Save(model.DefaultPolicy()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(store.Path()); err != nil {
		t.Errorf("Expected policy file at %s: %v", store.Path(), err)
	}
}

func TestStore_LoadClampsNegativeWeights(t *testing.T) {
	dir := t.TempDir()
	doc := `{"weights": {"license": -3, "maturity_support": 1}}`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(doc), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	p := NewStore(dir).Load()
	if p.Weights["license"] != 0 {
		t.Errorf("Expected negative weight clamped to 0, got %d", p.Weights["license"])
	}
	if p.Weights["maturity_support"] != 1 {
		t.Errorf("Expected weight 1 preserved, got %d", p.Weights["maturity_support"])
	}
}

func TestStore_LoadNilWeights(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{}`), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	p := NewStore(dir).Load()
	if p.Weights == nil {
		t.Fatal("Expected empty weights map, got nil")
	}
	// Dimensions missing from the map fall back to weight 1
	if w := p.Weight("license"); w != 1 {
		t.Errorf("Expected default weight 1, got %d", w)
	}
}

func TestExport_ShapeMatchesOverrideDocument(t *testing.T) {
	data, err := Export(model.DefaultPolicy())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if data[len(data)-1] != '\n' {
		t.Error("Expected trailing newline")
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Exported document is not valid JSON: %v", err)
	}
	for _, key := range []string{"weights", "license", "data_transparency", "security_provenance", "compliance_alignment", "technical_feasibility"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("Expected top-level key %q in exported document", key)
		}
	}
}
