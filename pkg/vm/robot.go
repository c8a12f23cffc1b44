// Package vm executes loaded robot programs tick by tick: a per-robot
// statement machine with an instruction budget, a left-to-right expression
// evaluator, and a cooperative time-interrupt controller. All Arena-visible
// side effects happen synchronously inside the statement that caused them.
package vm

import (
	"fmt"

	"github.com/warriorLang/warrior/pkg/program"
)

// Context tags which instruction stream is executing.
type Context int

const (
	CtxMain Context = iota
	CtxInterrupt
)

func (c Context) String() string {
	if c == CtxInterrupt {
		return "interrupt"
	}
	return "main"
}

// HaltReason says why a robot stopped being scheduled.
type HaltReason int

const (
	HaltNone HaltReason = iota
	HaltFault
	HaltDestroyed
	HaltFinished
)

var haltNames = map[HaltReason]string{
	HaltNone: "running", HaltFault: "fault",
	HaltDestroyed: "destroyed", HaltFinished: "finished",
}

func (h HaltReason) String() string { return haltNames[h] }

// FaultKind classifies a runtime fault.
type FaultKind int

const (
	// FaultArithmetic is division by zero. It aborts the rest of the
	// robot's tick but is not fatal.
	FaultArithmetic FaultKind = iota
	// FaultStack is return with an empty call stack or call-stack overflow.
	// Fatal.
	FaultStack
	// FaultInterruptOverrun is an interrupt routine exceeding its budget
	// (or running off the end of the program). Fatal.
	FaultInterruptOverrun
)

var faultNames = map[FaultKind]string{
	FaultArithmetic:       "arithmetic",
	FaultStack:            "stack",
	FaultInterruptOverrun: "interrupt overrun",
}

func (k FaultKind) String() string { return faultNames[k] }

// FaultRecord is the structured record every fault produces. Records stay
// attached to the robot and are surfaced through TickOutcome.
type FaultRecord struct {
	Robot int
	Tick  int
	Kind  FaultKind
	PC    int
	Line  int
}

func (f FaultRecord) String() string {
	return fmt.Sprintf("robot %d tick %d: %s fault at pc %d (line %d)",
		f.Robot, f.Tick, f.Kind, f.PC, f.Line)
}

// Robot is the mutable per-robot runtime state. It is owned by the machine
// that spawned it and never shared between robots.
type Robot struct {
	ID      int
	Program *program.Program
	Arena   Arena

	// Program counter and gosub call stack. Exclusively owned by the
	// interpreter core.
	PC    int
	Calls []int

	// Local variable store, indexed by allocation order. All start at 0.
	Vars []int

	// Boundary-variable mirrors. Aim and radar are pure VM state; heading,
	// speed and cloak echo the last accepted write (position and damage
	// are always read fresh from the Arena).
	Aim      int
	Radar    int
	Heading  int
	Speed    int
	Cloak    int
	MaxSpeed int

	// Interrupt runtime state.
	Context    Context
	Vector     int // code index of the interrupt routine, -1 when unset
	Armed      bool
	savedPC    int
	savedCalls []int

	Tick   int
	Halted bool
	Reason HaltReason
	Faults []FaultRecord
}

// Var returns the value of a declared variable by name.
func (r *Robot) Var(name string) (int, bool) {
	slot, ok := r.Program.VarSlot(name)
	if !ok {
		return 0, false
	}
	return r.Vars[slot], true
}

// CallDepth returns the current gosub nesting depth.
func (r *Robot) CallDepth() int { return len(r.Calls) }
