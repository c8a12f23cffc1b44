package program

import (
	"strings"
	"testing"
)

func mustLoad(t *testing.T, src string) *Program {
	t.Helper()
	p, err := Load(src)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return p
}

func wantLoadError(t *testing.T, src, fragment string) {
	t.Helper()
	_, err := Load(src)
	if err == nil {
		t.Fatalf("Load succeeded, want error containing %q", fragment)
	}
	if _, ok := err.(*LoadError); !ok {
		t.Fatalf("Expected *LoadError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), fragment) {
		t.Errorf("Error %q does not contain %q", err.Error(), fragment)
	}
}

func TestAttributeBudget(t *testing.T) {
	// Exactly at the budget loads fine.
	p := mustLoad(t, `
CPU_SPEED 2
ARMOR 2
FIRE_RATE 1
CLOAKING 1

Main:
    goto Main
`)
	if p.Attributes.Total() != 6 {
		t.Errorf("Total = %d, want 6", p.Attributes.Total())
	}
	if p.Attributes.Get(AttrCPUSpeed) != 2 || p.Attributes.Get(AttrCloaking) != 1 {
		t.Errorf("Unexpected attribute values: %v", p.Attributes)
	}

	// Over budget must fail, never clamp.
	wantLoadError(t, `
CPU_SPEED 3
ARMOR 3
FIRE_RATE 1

Main:
    goto Main
`, "exceeds budget")
}

func TestAttributeValidation(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		fragment string
	}{
		{"unknown", "WHEELS 2\n\nMain:\n goto Main\n", "unknown attribute"},
		{"out-of-range", "CPU_SPEED 4\n\nMain:\n goto Main\n", "out of range"},
		{"cloaking-range", "CLOAKING 2\n\nMain:\n goto Main\n", "out of range"},
		{"duplicate", "ARMOR 1\nARMOR 1\n\nMain:\n goto Main\n", "declared twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantLoadError(t, tt.src, tt.fragment)
		})
	}
}

func TestNameClashes(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		fragment string
	}{
		{"constant-redefined", "define A 1\ndefine A 2\n\nMain:\n goto Main\n", "redefined"},
		{"constant-boundary", "define radar 1\n\nMain:\n goto Main\n", "boundary"},
		{"variable-twice", "allocate a, a\n\nMain:\n goto Main\n", "allocated twice"},
		{"variable-constant", "define a 1\nallocate a\n\nMain:\n goto Main\n", "shadows a constant"},
		{"variable-boundary", "allocate shot\n\nMain:\n goto Main\n", "boundary"},
		{"variable-register", "allocate time_int_mask\n\nMain:\n goto Main\n", "interrupt register"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantLoadError(t, tt.src, tt.fragment)
		})
	}
}

func TestStaticErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		fragment string
	}{
		{"duplicate-label", "Main:\n goto Main\nMain:\n goto Main\n", "duplicate label"},
		{"unknown-identifier", "Main:\n bogus + 1 to bogus2\n", "unknown identifier"},
		{"unknown-target", "Main:\n 1 to bogus\n", "unknown assignment target"},
		{"unknown-goto", "Main:\n goto Nowhere\n", "unknown label"},
		{"unknown-gosub", "Main:\n gosub Nowhere\n", "unknown label"},
		{"assign-maxspeed", "Main:\n 5 to maxspeed\n", "read-only"},
		{"assign-damage", "Main:\n 0 to damage\n", "read-only"},
		{"assign-fuel", "Main:\n 0 to fuel\n", "read-only"},
		{"assign-constant", "define K 1\n\nMain:\n 2 to K\n", "constant"},
		{"vector-expression", "Main:\n 1 + 2 to time_int_xfer\n", "label name"},
		{"vector-unknown", "Main:\n Nowhere to time_int_xfer\n", "unknown label"},
		{"vector-chained", "Main:\n Main to time_int_xfer to a\n", "chained"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantLoadError(t, tt.src, tt.fragment)
		})
	}
}

func TestEntryResolution(t *testing.T) {
	p := mustLoad(t, "Start:\n goto Start\nMain:\n goto Main\n")
	if p.EntryLabel != "Main" {
		t.Errorf("EntryLabel = %q, want Main", p.EntryLabel)
	}
	if p.Entry != p.Labels["Main"] {
		t.Errorf("Entry = %d, want %d", p.Entry, p.Labels["Main"])
	}

	p = mustLoad(t, "Start:\n goto Start\nLoop:\n goto Loop\n")
	if p.EntryLabel != "Start" || p.Entry != p.Labels["Start"] {
		t.Errorf("Entry = %s/%d, want first block Start", p.EntryLabel, p.Entry)
	}
}

func TestVectorResolution(t *testing.T) {
	p := mustLoad(t, `
Main:
    Sweep to time_int_xfer
    1 to time_int_mask
    goto Main

Sweep:
    endint
`)
	var vec *Instr
	for i := range p.Code {
		if p.Code[i].Op == OpSetVector {
			vec = &p.Code[i]
		}
	}
	if vec == nil {
		t.Fatal("No OpSetVector emitted")
	}
	if vec.Targets[0].Label != p.Labels["Sweep"] {
		t.Errorf("Vector label = %d, want %d", vec.Targets[0].Label, p.Labels["Sweep"])
	}
}

func TestConstantSubstitution(t *testing.T) {
	p := mustLoad(t, "define STEP 10\ndefine BACK -90\n\nMain:\n STEP to aim\n BACK to direction\n goto Main\n")
	if p.Constants["STEP"] != 10 || p.Constants["BACK"] != -90 {
		t.Errorf("Constants = %v", p.Constants)
	}
	// Constants appear as literals in compiled code.
	in := p.Code[p.Entry]
	if in.Op != OpAssign || in.Expr.First.Kind != OperandLit || in.Expr.First.Lit != 10 {
		t.Errorf("Expected literal 10, got %+v", in.Expr.First)
	}
}

func TestControlFlowCompilation(t *testing.T) {
	p := mustLoad(t, `
allocate a

Main:
    while a < 3 do
        a + 1 to a
    end
    goto Main
`)
	// while compiles to branch-false over the body plus a back jump.
	if p.Code[0].Op != OpBranchFalse {
		t.Fatalf("Code[0] = %s, want bfalse", p.Code[0].Op)
	}
	if p.Code[2].Op != OpJump || p.Code[2].To != 0 {
		t.Errorf("Code[2] = %s to=%d, want jump back to 0", p.Code[2].Op, p.Code[2].To)
	}
	if p.Code[0].To != 3 {
		t.Errorf("bfalse exit = %d, want 3", p.Code[0].To)
	}
	// The program ends in an explicit stop.
	if p.Code[len(p.Code)-1].Op != OpStop {
		t.Errorf("Last instruction = %s, want stop", p.Code[len(p.Code)-1].Op)
	}
}
