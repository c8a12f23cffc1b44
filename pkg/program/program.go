// Package program defines the executable representation of a robot program:
// hardware attributes, named constants, declared variables, and a flat
// instruction form with resolved jump targets. A Program is immutable after
// Load and shared by every robot spawned from it.
package program

import "fmt"

// Attr identifies one of the seven hardware attributes.
type Attr int

const (
	AttrCPUSpeed Attr = iota
	AttrArmor
	AttrFireRate
	AttrEngineSize
	AttrRadarRange
	AttrCloaking
	AttrFuelCapacity

	AttrCount
)

// MaxAttrPoints is the total hardware point budget. Programs declaring more
// fail to load.
const MaxAttrPoints = 6

var attrNames = map[string]Attr{
	"CPU_SPEED":     AttrCPUSpeed,
	"ARMOR":         AttrArmor,
	"FIRE_RATE":     AttrFireRate,
	"ENGINE_SIZE":   AttrEngineSize,
	"RADAR_RANGE":   AttrRadarRange,
	"CLOAKING":      AttrCloaking,
	"FUEL_CAPACITY": AttrFuelCapacity,
}

func (a Attr) String() string {
	for name, attr := range attrNames {
		if attr == a {
			return name
		}
	}
	return fmt.Sprintf("attr(%d)", int(a))
}

// Attributes holds the declared value for each hardware attribute.
// Undeclared attributes are zero.
type Attributes [AttrCount]int

// Get returns the declared value of an attribute.
func (as Attributes) Get(a Attr) int { return as[a] }

// Total returns the declared point total.
func (as Attributes) Total() int {
	t := 0
	for _, v := range as {
		t += v
	}
	return t
}

// Boundary identifies a boundary variable: an identifier whose reads and
// writes are forwarded to the Arena rather than being pure local storage.
type Boundary int

const (
	BoundX Boundary = iota
	BoundY
	BoundDirection
	BoundSpeed
	BoundMaxSpeed
	BoundAim
	BoundRadar
	BoundShot
	BoundDamage
	BoundFuel
	BoundCloak
)

var boundaryNames = map[string]Boundary{
	"x":         BoundX,
	"y":         BoundY,
	"direction": BoundDirection,
	"speed":     BoundSpeed,
	"maxspeed":  BoundMaxSpeed,
	"aim":       BoundAim,
	"radar":     BoundRadar,
	"shot":      BoundShot,
	"damage":    BoundDamage,
	"fuel":      BoundFuel,
	"cloak":     BoundCloak,
}

var boundaryStrings = map[Boundary]string{
	BoundX: "x", BoundY: "y", BoundDirection: "direction",
	BoundSpeed: "speed", BoundMaxSpeed: "maxspeed", BoundAim: "aim",
	BoundRadar: "radar", BoundShot: "shot", BoundDamage: "damage",
	BoundFuel: "fuel", BoundCloak: "cloak",
}

func (b Boundary) String() string { return boundaryStrings[b] }

// readOnly reports whether a boundary variable rejects assignment at load
// time. The runtime has no defined Arena request for writing these.
func (b Boundary) readOnly() bool {
	return b == BoundMaxSpeed || b == BoundDamage || b == BoundFuel
}

// Interrupt controller register names. They are assignment targets only.
const (
	NameIntXfer = "time_int_xfer"
	NameIntMask = "time_int_mask"
)

// Op is an instruction opcode.
type Op int

const (
	// OpAssign evaluates Expr once and stores into Targets left to right.
	OpAssign Op = iota
	// OpSetVector installs Targets[0].Label as the interrupt vector.
	OpSetVector
	// OpBranchFalse evaluates Expr and jumps to To when it is zero.
	OpBranchFalse
	// OpJump jumps to To unconditionally.
	OpJump
	// OpGosub pushes the successor address and jumps to To.
	OpGosub
	// OpReturn pops the call stack and jumps there.
	OpReturn
	// OpEndInt ends the interrupt routine, restoring the main context.
	OpEndInt
	// OpStop ends the program (running off the end of the last block).
	OpStop
)

var opNames = map[Op]string{
	OpAssign: "assign", OpSetVector: "setvec", OpBranchFalse: "bfalse",
	OpJump: "jump", OpGosub: "gosub", OpReturn: "return",
	OpEndInt: "endint", OpStop: "stop",
}

func (o Op) String() string { return opNames[o] }

// Instr is one executed statement. Each executed instruction costs one
// budget unit under the default cost policy.
type Instr struct {
	Op      Op
	Expr    *Expr
	Targets []Target
	To      int // resolved code index for branch/jump/gosub
	Line    int // source line, for fault records and the debugger
}

// TargetKind classifies an assignment target.
type TargetKind int

const (
	TargetVar TargetKind = iota
	TargetBoundary
	TargetIntMask
	TargetIntXfer
)

// Target is one resolved assignment destination.
type Target struct {
	Kind  TargetKind
	Slot  int      // variable slot for TargetVar
	Bound Boundary // boundary id for TargetBoundary
	Label int      // code index for TargetIntXfer
	Name  string
}

// BinOp is a binary operator in an expression chain.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var binOps = map[string]BinOp{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv,
	"=": OpEq, "<>": OpNe, "<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe,
}

// OperandKind classifies an expression operand.
type OperandKind int

const (
	OperandLit OperandKind = iota
	OperandVar
	OperandBoundary
	OperandParen
)

// Operand is one resolved value source. Constants are substituted at load
// time and appear as OperandLit.
type Operand struct {
	Kind  OperandKind
	Neg   bool
	Lit   int
	Slot  int
	Bound Boundary
	Sub   *Expr
}

// Step is one operator application in a left-to-right chain.
type Step struct {
	Op      BinOp
	Operand Operand
}

// Expr is a compiled expression: a first operand and a chain of operator
// steps applied strictly left to right.
type Expr struct {
	First Operand
	Rest  []Step
}

// Program is the immutable result of loading robot-program source.
type Program struct {
	Name       string
	Attributes Attributes
	Constants  map[string]int
	Variables  []string // declared variables in allocation order
	Code       []Instr
	Labels     map[string]int // label -> code index
	Entry      int            // code index of the entry block
	EntryLabel string
}

// VarSlot returns the slot index for a declared variable name.
func (p *Program) VarSlot(name string) (int, bool) {
	for i, v := range p.Variables {
		if v == name {
			return i, true
		}
	}
	return 0, false
}

// LoadError is a parse or static-semantics failure. No robot spawns from a
// program that fails to load; there is no partial recovery.
type LoadError struct {
	Line int
	Msg  string
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load error: line %d: %s", e.Line, e.Msg)
	}
	return "load error: " + e.Msg
}

func loadErrf(line int, format string, args ...interface{}) *LoadError {
	return &LoadError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
