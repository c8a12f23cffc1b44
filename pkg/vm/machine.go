package vm

import (
	"fmt"
	"io"

	"github.com/warriorLang/warrior/pkg/program"
	"github.com/warriorLang/warrior/pkg/tuning"
)

// TickOutcome is what one AdvanceTick call reports back to the host.
type TickOutcome struct {
	Halted bool
	Reason HaltReason
	// Faults recorded during this tick, in order.
	Faults []FaultRecord
}

// Machine drives robots tick by tick against their Arena. One machine can
// drive any number of robots; robots share nothing, so a host may also use
// one machine per goroutine.
type Machine struct {
	Tuning tuning.Tuning
	Output io.Writer // trace sink for fault lines, default discard

	nextID int
}

// New creates a machine with default tuning.
func New() *Machine {
	return &Machine{
		Tuning: tuning.Default(),
		Output: io.Discard,
		nextID: 1,
	}
}

// Spawn creates a fresh robot for a loaded program, bound to its arena.
// Execution begins at the program's entry label on the first tick.
func (m *Machine) Spawn(p *program.Program, a Arena) *Robot {
	r := &Robot{
		ID:       m.nextID,
		Program:  p,
		Arena:    a,
		PC:       p.Entry,
		Vars:     make([]int, len(p.Variables)),
		Vector:   -1,
		MaxSpeed: m.Tuning.MaxSpeed(p.Attributes.Get(program.AttrEngineSize)),
	}
	m.nextID++
	return r
}

// Destroy halts a robot immediately; it is never scheduled again.
func (m *Machine) Destroy(r *Robot) {
	if r.Halted {
		return
	}
	r.Halted = true
	r.Reason = HaltDestroyed
}

// AdvanceTick drives one robot through one unit of simulated time:
// interrupt invocation first (when armed), then the main slice under the
// CPU_SPEED-derived budget. Exactly one tick per call; the return to the
// caller is the sole cooperative-suspension boundary.
func (m *Machine) AdvanceTick(r *Robot) TickOutcome {
	if r.Halted {
		return TickOutcome{Halted: true, Reason: r.Reason}
	}
	r.Tick++
	mark := len(r.Faults)

	// Interrupt preempts before the main budget slice is consumed.
	if r.Armed && r.Vector >= 0 && r.Context == CtxMain {
		m.runInterrupt(r)
	}

	if !r.Halted {
		budget := m.Tuning.Budget(r.Program.Attributes.Get(program.AttrCPUSpeed))
		m.runMain(r, budget)
	}

	return TickOutcome{Halted: r.Halted, Reason: r.Reason, Faults: r.Faults[mark:]}
}

// Step executes exactly one statement in the main context, outside any
// budget accounting. It exists for the debugger; match execution goes
// through AdvanceTick.
func (m *Machine) Step(r *Robot) TickOutcome {
	if r.Halted {
		return TickOutcome{Halted: true, Reason: r.Reason}
	}
	mark := len(r.Faults)
	switch m.step(r) {
	case sigStop:
		r.Halted = true
		r.Reason = HaltFinished
	}
	return TickOutcome{Halted: r.Halted, Reason: r.Reason, Faults: r.Faults[mark:]}
}

// stepSignal is the interpreter-internal result of executing one statement.
type stepSignal int

const (
	sigOK stepSignal = iota
	sigAbortTick // arithmetic fault: drop the rest of this context's slice
	sigEndInt    // endint executed inside the interrupt routine
	sigStop      // ran off the end of the program
	sigFatal     // robot halted by a fatal fault
)

// runMain resumes or starts the main instruction stream under the given
// budget. Suspension preserves PC and call stack exactly.
func (m *Machine) runMain(r *Robot, budget int) {
	for budget > 0 && !r.Halted {
		budget -= m.Tuning.StatementCost
		switch m.step(r) {
		case sigAbortTick, sigFatal:
			return
		case sigStop:
			r.Halted = true
			r.Reason = HaltFinished
			return
		}
	}
	// Budget exhausted: suspended until the next tick.
}

// runInterrupt saves the main context, runs the interrupt routine under its
// own fixed budget, and restores the main context exactly. The routine must
// reach endint within budget; exhaustion is an InterruptOverrun fault.
func (m *Machine) runInterrupt(r *Robot) {
	r.savedPC, r.savedCalls = r.PC, r.Calls
	r.Context = CtxInterrupt
	r.PC = r.Vector
	r.Calls = nil

	budget := m.Tuning.InterruptBudget
	for {
		if budget <= 0 {
			m.fatal(r, FaultInterruptOverrun)
			return
		}
		budget -= m.Tuning.StatementCost
		switch m.step(r) {
		case sigEndInt:
			m.restoreMain(r)
			return
		case sigAbortTick:
			// Arithmetic fault ends the routine; the main context is
			// restored untouched and runs normally this tick.
			m.restoreMain(r)
			return
		case sigStop:
			// Running off the program end inside the routine never
			// reaches endint.
			m.fatal(r, FaultInterruptOverrun)
			return
		case sigFatal:
			return
		}
	}
}

func (m *Machine) restoreMain(r *Robot) {
	r.PC, r.Calls = r.savedPC, r.savedCalls
	r.Context = CtxMain
	r.savedCalls = nil
}

// step executes the statement at PC.
func (m *Machine) step(r *Robot) stepSignal {
	in := &r.Program.Code[r.PC]
	switch in.Op {
	case program.OpAssign:
		v, ok := r.eval(in.Expr)
		if !ok {
			// Resume next tick at the next statement boundary; nothing
			// was assigned.
			m.fault(r, FaultArithmetic, in)
			r.PC++
			return sigAbortTick
		}
		r.PC++
		for i := range in.Targets {
			m.assign(r, &in.Targets[i], v)
		}

	case program.OpSetVector:
		r.Vector = in.Targets[0].Label
		r.PC++

	case program.OpBranchFalse:
		v, ok := r.eval(in.Expr)
		if !ok {
			// A faulting condition skips the branch.
			m.fault(r, FaultArithmetic, in)
			r.PC = in.To
			return sigAbortTick
		}
		if v == 0 {
			r.PC = in.To
		} else {
			r.PC++
		}

	case program.OpJump:
		r.PC = in.To

	case program.OpGosub:
		if len(r.Calls) >= m.Tuning.MaxCallDepth {
			m.fault(r, FaultStack, in)
			r.Halted = true
			r.Reason = HaltFault
			return sigFatal
		}
		r.Calls = append(r.Calls, r.PC+1)
		r.PC = in.To

	case program.OpReturn:
		if len(r.Calls) == 0 {
			m.fault(r, FaultStack, in)
			r.Halted = true
			r.Reason = HaltFault
			return sigFatal
		}
		r.PC = r.Calls[len(r.Calls)-1]
		r.Calls = r.Calls[:len(r.Calls)-1]

	case program.OpEndInt:
		if r.Context == CtxInterrupt {
			return sigEndInt
		}
		// endint outside the interrupt routine is a no-op.
		r.PC++

	case program.OpStop:
		return sigStop
	}
	return sigOK
}

func (m *Machine) assign(r *Robot, t *program.Target, v int) {
	switch t.Kind {
	case program.TargetVar:
		r.Vars[t.Slot] = v
	case program.TargetBoundary:
		r.writeBoundary(t.Bound, v)
	case program.TargetIntMask:
		// Disarming never cancels an in-flight invocation; the mask is
		// only consulted at the top of a tick.
		r.Armed = v != 0
	}
}

func (m *Machine) fault(r *Robot, kind FaultKind, in *program.Instr) {
	rec := FaultRecord{Robot: r.ID, Tick: r.Tick, Kind: kind, PC: r.PC, Line: in.Line}
	r.Faults = append(r.Faults, rec)
	fmt.Fprintln(m.Output, rec)
}

func (m *Machine) fatal(r *Robot, kind FaultKind) {
	line := 0
	if r.PC >= 0 && r.PC < len(r.Program.Code) {
		line = r.Program.Code[r.PC].Line
	}
	rec := FaultRecord{Robot: r.ID, Tick: r.Tick, Kind: kind, PC: r.PC, Line: line}
	r.Faults = append(r.Faults, rec)
	fmt.Fprintln(m.Output, rec)
	r.Halted = true
	r.Reason = HaltFault
}
