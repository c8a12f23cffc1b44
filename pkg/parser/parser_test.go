package parser

import "testing"

const seekerSource = `
; attribute block
CPU_SPEED 2
ARMOR 1
FIRE_RATE 1

define STEP 10

allocate found, count

Main:
    Sweep to time_int_xfer
    1 to time_int_mask
Idle:
    goto Idle

Sweep:
    aim + STEP to aim to radar
    if radar > 0 then
        if shot > 0 then
            radar / STEP + radar to shot
        end
    end
    endint
`

func TestParseProgram(t *testing.T) {
	f, err := Parse(seekerSource)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(f.Attributes) != 3 {
		t.Errorf("Expected 3 attribute declarations, got %d", len(f.Attributes))
	}
	if len(f.Defines) != 1 || f.Defines[0].Name != "STEP" || f.Defines[0].Value != 10 {
		t.Errorf("Unexpected defines: %+v", f.Defines)
	}
	if len(f.Allocates) != 1 || len(f.Allocates[0].Names) != 2 {
		t.Errorf("Unexpected allocates: %+v", f.Allocates)
	}
	if len(f.Blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(f.Blocks))
	}
	if f.Blocks[0].Label != "Main" || f.Blocks[2].Label != "Sweep" {
		t.Errorf("Unexpected block labels: %q, %q", f.Blocks[0].Label, f.Blocks[2].Label)
	}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"assign", "Main:\n 5 to a\n"},
		{"chain", "Main:\n 5 + 5 to a to b to c\n"},
		{"if", "Main:\n if a > 0 then 1 to b end\n"},
		{"if-else", "Main:\n if a > 0 then 1 to b else 2 to b end\n"},
		{"while", "Main:\n while a < 10 do a + 1 to a end\n"},
		{"repeat", "Main:\n repeat a + 1 to a until a >= 10\n"},
		{"goto", "Main:\n goto Main\n"},
		{"gosub-return", "Main:\n gosub Sub\nSub:\n return\n"},
		{"endint", "Main:\n endint\n"},
		{"parens", "Main:\n 2 + (3 * 4) to a\n"},
		{"negative", "Main:\n -5 to a\n"},
		{"comparators", "Main:\n a = 1 to b\n a <> 1 to b\n a <= 1 to b\n a >= 1 to b\n"},
		{"comment", "Main: ; entry\n 1 to a ; store\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.code); err != nil {
				t.Errorf("Parse(%q) failed: %v", tt.code, err)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"no-blocks", "CPU_SPEED 2\n"},
		{"bare-expression", "Main:\n 5 + 5\n"},
		{"assign-no-target", "Main:\n 5 to\n"},
		{"if-without-end", "Main:\n if a > 0 then 1 to b\n"},
		{"while-without-do", "Main:\n while a < 10 a + 1 to a end\n"},
		{"repeat-without-until", "Main:\n repeat a + 1 to a\n"},
		{"goto-without-label", "Main:\n goto\n"},
		{"unclosed-paren", "Main:\n (1 + 2 to a\n"},
		{"keyword-as-target", "Main:\n 1 to end\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.code); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.code)
			}
		})
	}
}

func TestChainTargets(t *testing.T) {
	f, err := Parse("Main:\n aim + 10 to aim to radar\n")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	st := f.Blocks[0].Body[0]
	if st.Assign == nil {
		t.Fatalf("Expected assignment, got %+v", st)
	}
	if len(st.Assign.Targets) != 2 || st.Assign.Targets[0] != "aim" || st.Assign.Targets[1] != "radar" {
		t.Errorf("Unexpected targets: %v", st.Assign.Targets)
	}
}

func TestFlatExprChain(t *testing.T) {
	f, err := Parse("Main:\n 2 + 3 * 4 to a\n")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	e := f.Blocks[0].Body[0].Assign.Expr
	if len(e.Rest) != 2 {
		t.Fatalf("Expected flat chain of 2 steps, got %d", len(e.Rest))
	}
	if e.Rest[0].Op != "+" || e.Rest[1].Op != "*" {
		t.Errorf("Unexpected operators: %q, %q", e.Rest[0].Op, e.Rest[1].Op)
	}
}
