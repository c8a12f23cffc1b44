package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Default()
	if d.Budget(0) != 8 {
		t.Errorf("Budget(0) = %d, want 8", d.Budget(0))
	}
	if d.Budget(3) != 32 {
		t.Errorf("Budget(3) = %d, want 32", d.Budget(3))
	}
	if d.MaxSpeed(0) != 4 || d.MaxSpeed(3) != 16 {
		t.Errorf("MaxSpeed = %d/%d, want 4/16", d.MaxSpeed(0), d.MaxSpeed(3))
	}
	if d.InterruptBudget != 16 {
		t.Errorf("InterruptBudget = %d, want 16", d.InterruptBudget)
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "budget_base: 4\ninterrupt_budget: 32\n")
	tun, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if tun.BudgetBase != 4 || tun.InterruptBudget != 32 {
		t.Errorf("Overrides not applied: %+v", tun)
	}
	// Anything the file omits keeps its default.
	if tun.BudgetStep != 8 || tun.MaxCallDepth != 64 {
		t.Errorf("Defaults lost: %+v", tun)
	}
}

func TestLoadRejectsZeroStatementCost(t *testing.T) {
	path := writeFile(t, "statement_cost: 0\n")
	if _, err := Load(path); err == nil {
		t.Error("Load accepted statement_cost 0")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load succeeded on a missing file")
	}
}
