package program

import (
	"github.com/alecthomas/participle/v2"

	"github.com/warriorLang/warrior/pkg/parser"
)

// Load parses and compiles robot-program source into an executable Program.
// Any parse or static-semantics failure is returned as a *LoadError.
func Load(source string) (*Program, error) {
	return LoadNamed("", source)
}

// LoadNamed is Load with a program name used in errors and results.
func LoadNamed(name, source string) (*Program, error) {
	file, err := parser.ParseNamed(name, source)
	if err != nil {
		if perr, ok := err.(participle.Error); ok {
			return nil, loadErrf(perr.Position().Line, "%s", perr.Message())
		}
		return nil, &LoadError{Msg: err.Error()}
	}

	c := &compiler{
		prog: &Program{
			Name:      name,
			Constants: make(map[string]int),
			Labels:    make(map[string]int),
		},
	}
	if err := c.compile(file); err != nil {
		return nil, err
	}
	return c.prog, nil
}

type fixupKind int

const (
	fixJump   fixupKind = iota // patch Instr.To
	fixVector                  // patch Targets[0].Label
)

type fixup struct {
	instr int
	label string
	line  int
	kind  fixupKind
}

type compiler struct {
	prog   *Program
	varIdx map[string]int
	fixups []fixup
}

func (c *compiler) emit(i Instr) int {
	c.prog.Code = append(c.prog.Code, i)
	return len(c.prog.Code) - 1
}

func (c *compiler) compile(file *parser.File) error {
	if err := c.attributes(file.Attributes); err != nil {
		return err
	}
	if err := c.defines(file.Defines); err != nil {
		return err
	}
	if err := c.allocates(file.Allocates); err != nil {
		return err
	}
	if err := c.blocks(file.Blocks); err != nil {
		return err
	}
	return c.resolve()
}

func (c *compiler) attributes(decls []*parser.AttrDecl) error {
	seen := make(map[Attr]bool)
	for _, d := range decls {
		a, ok := attrNames[d.Name]
		if !ok {
			return loadErrf(d.Pos.Line, "unknown attribute %q", d.Name)
		}
		if seen[a] {
			return loadErrf(d.Pos.Line, "attribute %s declared twice", d.Name)
		}
		seen[a] = true
		max := 3
		if a == AttrCloaking {
			max = 1
		}
		if d.Value < 0 || d.Value > max {
			return loadErrf(d.Pos.Line, "attribute %s value %d out of range 0..%d", d.Name, d.Value, max)
		}
		c.prog.Attributes[a] = d.Value
	}
	if t := c.prog.Attributes.Total(); t > MaxAttrPoints {
		return loadErrf(0, "attribute total %d exceeds budget of %d points", t, MaxAttrPoints)
	}
	return nil
}

func (c *compiler) defines(defs []*parser.Define) error {
	for _, d := range defs {
		if _, dup := c.prog.Constants[d.Name]; dup {
			return loadErrf(d.Pos.Line, "constant %q redefined", d.Name)
		}
		if _, clash := boundaryNames[d.Name]; clash {
			return loadErrf(d.Pos.Line, "constant %q shadows a boundary variable", d.Name)
		}
		v := d.Value
		if d.Neg {
			v = -v
		}
		c.prog.Constants[d.Name] = v
	}
	return nil
}

func (c *compiler) allocates(allocs []*parser.Allocate) error {
	c.varIdx = make(map[string]int)
	for _, a := range allocs {
		for _, name := range a.Names {
			if _, dup := c.varIdx[name]; dup {
				return loadErrf(a.Pos.Line, "variable %q allocated twice", name)
			}
			if _, clash := c.prog.Constants[name]; clash {
				return loadErrf(a.Pos.Line, "variable %q shadows a constant", name)
			}
			if _, clash := boundaryNames[name]; clash {
				return loadErrf(a.Pos.Line, "variable %q shadows a boundary variable", name)
			}
			if name == NameIntXfer || name == NameIntMask {
				return loadErrf(a.Pos.Line, "variable %q shadows an interrupt register", name)
			}
			c.varIdx[name] = len(c.prog.Variables)
			c.prog.Variables = append(c.prog.Variables, name)
		}
	}
	return nil
}

func (c *compiler) blocks(blocks []*parser.Block) error {
	for _, b := range blocks {
		if _, dup := c.prog.Labels[b.Label]; dup {
			return loadErrf(b.Pos.Line, "duplicate label %q", b.Label)
		}
		c.prog.Labels[b.Label] = len(c.prog.Code)
		if err := c.stmts(b.Body); err != nil {
			return err
		}
	}
	// Running off the end of the last block stops the robot.
	c.emit(Instr{Op: OpStop, Line: 0})

	// Entry point: the block labeled Main when present, else the first block.
	if pc, ok := c.prog.Labels["Main"]; ok {
		c.prog.Entry = pc
		c.prog.EntryLabel = "Main"
	} else {
		c.prog.Entry = c.prog.Labels[blocks[0].Label]
		c.prog.EntryLabel = blocks[0].Label
	}
	return nil
}

func (c *compiler) stmts(list []*parser.Statement) error {
	for _, s := range list {
		if err := c.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) stmt(s *parser.Statement) error {
	line := s.Pos.Line
	switch {
	case s.If != nil:
		cond, err := c.expr(s.If.Cond, line)
		if err != nil {
			return err
		}
		bf := c.emit(Instr{Op: OpBranchFalse, Expr: cond, Line: line})
		if err := c.stmts(s.If.Then); err != nil {
			return err
		}
		if len(s.If.Else) > 0 {
			j := c.emit(Instr{Op: OpJump, Line: line})
			c.prog.Code[bf].To = len(c.prog.Code)
			if err := c.stmts(s.If.Else); err != nil {
				return err
			}
			c.prog.Code[j].To = len(c.prog.Code)
		} else {
			c.prog.Code[bf].To = len(c.prog.Code)
		}

	case s.While != nil:
		top := len(c.prog.Code)
		cond, err := c.expr(s.While.Cond, line)
		if err != nil {
			return err
		}
		bf := c.emit(Instr{Op: OpBranchFalse, Expr: cond, Line: line})
		if err := c.stmts(s.While.Body); err != nil {
			return err
		}
		c.emit(Instr{Op: OpJump, To: top, Line: line})
		c.prog.Code[bf].To = len(c.prog.Code)

	case s.Repeat != nil:
		top := len(c.prog.Code)
		if err := c.stmts(s.Repeat.Body); err != nil {
			return err
		}
		cond, err := c.expr(s.Repeat.Cond, line)
		if err != nil {
			return err
		}
		// Loop back while the until-condition is false.
		c.emit(Instr{Op: OpBranchFalse, Expr: cond, To: top, Line: line})

	case s.Goto != nil:
		i := c.emit(Instr{Op: OpJump, Line: line})
		c.fixups = append(c.fixups, fixup{instr: i, label: s.Goto.Label, line: line, kind: fixJump})

	case s.Gosub != nil:
		i := c.emit(Instr{Op: OpGosub, Line: line})
		c.fixups = append(c.fixups, fixup{instr: i, label: s.Gosub.Label, line: line, kind: fixJump})

	case s.Return:
		c.emit(Instr{Op: OpReturn, Line: line})

	case s.EndInt:
		c.emit(Instr{Op: OpEndInt, Line: line})

	case s.Assign != nil:
		return c.assign(s.Assign, line)
	}
	return nil
}

// assign compiles a chained assignment. A time_int_xfer target is special:
// the value side must be a bare label name, resolved at load time.
func (c *compiler) assign(a *parser.AssignStmt, line int) error {
	for _, name := range a.Targets {
		if name == NameIntXfer {
			if len(a.Targets) != 1 {
				return loadErrf(line, "%s cannot be part of a chained assignment", NameIntXfer)
			}
			label, ok := bareIdent(a.Expr)
			if !ok {
				return loadErrf(line, "%s requires a label name, not an expression", NameIntXfer)
			}
			i := c.emit(Instr{
				Op:      OpSetVector,
				Targets: []Target{{Kind: TargetIntXfer, Name: label}},
				Line:    line,
			})
			c.fixups = append(c.fixups, fixup{instr: i, label: label, line: line, kind: fixVector})
			return nil
		}
	}

	expr, err := c.expr(a.Expr, line)
	if err != nil {
		return err
	}
	targets := make([]Target, 0, len(a.Targets))
	for _, name := range a.Targets {
		t, err := c.target(name, line)
		if err != nil {
			return err
		}
		targets = append(targets, t)
	}
	c.emit(Instr{Op: OpAssign, Expr: expr, Targets: targets, Line: line})
	return nil
}

func (c *compiler) target(name string, line int) (Target, error) {
	if name == NameIntMask {
		return Target{Kind: TargetIntMask, Name: name}, nil
	}
	if slot, ok := c.varIdx[name]; ok {
		return Target{Kind: TargetVar, Slot: slot, Name: name}, nil
	}
	if b, ok := boundaryNames[name]; ok {
		if b.readOnly() {
			return Target{}, loadErrf(line, "%s is read-only", name)
		}
		return Target{Kind: TargetBoundary, Bound: b, Name: name}, nil
	}
	if _, ok := c.prog.Constants[name]; ok {
		return Target{}, loadErrf(line, "cannot assign to constant %q", name)
	}
	return Target{}, loadErrf(line, "unknown assignment target %q", name)
}

func (c *compiler) expr(e *parser.Expr, line int) (*Expr, error) {
	first, err := c.operand(e.First, line)
	if err != nil {
		return nil, err
	}
	out := &Expr{First: first}
	for _, ot := range e.Rest {
		op, ok := binOps[ot.Op]
		if !ok {
			return nil, loadErrf(line, "unknown operator %q", ot.Op)
		}
		o, err := c.operand(ot.Term, line)
		if err != nil {
			return nil, err
		}
		out.Rest = append(out.Rest, Step{Op: op, Operand: o})
	}
	return out, nil
}

func (c *compiler) operand(t *parser.Term, line int) (Operand, error) {
	if t.Pos.Line > 0 {
		line = t.Pos.Line
	}
	switch {
	case t.Number != nil:
		v := *t.Number
		if t.Neg {
			v = -v
		}
		return Operand{Kind: OperandLit, Lit: v}, nil

	case t.Ident != nil:
		name := *t.Ident
		if v, ok := c.prog.Constants[name]; ok {
			// Constants are substituted at load time.
			if t.Neg {
				v = -v
			}
			return Operand{Kind: OperandLit, Lit: v}, nil
		}
		if slot, ok := c.varIdx[name]; ok {
			return Operand{Kind: OperandVar, Neg: t.Neg, Slot: slot}, nil
		}
		if b, ok := boundaryNames[name]; ok {
			return Operand{Kind: OperandBoundary, Neg: t.Neg, Bound: b}, nil
		}
		return Operand{}, loadErrf(line, "unknown identifier %q", name)

	case t.Paren != nil:
		sub, err := c.expr(t.Paren, line)
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandParen, Neg: t.Neg, Sub: sub}, nil
	}
	return Operand{}, loadErrf(line, "empty operand")
}

func bareIdent(e *parser.Expr) (string, bool) {
	if e == nil || len(e.Rest) > 0 || e.First == nil {
		return "", false
	}
	if e.First.Ident == nil || e.First.Neg {
		return "", false
	}
	return *e.First.Ident, true
}

func (c *compiler) resolve() error {
	for _, f := range c.fixups {
		pc, ok := c.prog.Labels[f.label]
		if !ok {
			return loadErrf(f.line, "unknown label %q", f.label)
		}
		switch f.kind {
		case fixJump:
			c.prog.Code[f.instr].To = pc
		case fixVector:
			c.prog.Code[f.instr].Targets[0].Label = pc
		}
	}
	return nil
}
