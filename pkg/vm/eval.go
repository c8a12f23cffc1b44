package vm

import "github.com/warriorLang/warrior/pkg/program"

// eval computes an expression strictly left to right. The bool result is
// false on an arithmetic fault (division by zero); no targets are written
// in that case.
func (r *Robot) eval(e *program.Expr) (int, bool) {
	v, ok := r.operand(&e.First)
	if !ok {
		return 0, false
	}
	for i := range e.Rest {
		o, ok := r.operand(&e.Rest[i].Operand)
		if !ok {
			return 0, false
		}
		v, ok = apply(v, e.Rest[i].Op, o)
		if !ok {
			return 0, false
		}
	}
	return v, true
}

func (r *Robot) operand(o *program.Operand) (int, bool) {
	var v int
	switch o.Kind {
	case program.OperandLit:
		// Literal sign is folded at load time.
		return o.Lit, true
	case program.OperandVar:
		v = r.Vars[o.Slot]
	case program.OperandBoundary:
		v = r.readBoundary(o.Bound)
	case program.OperandParen:
		sub, ok := r.eval(o.Sub)
		if !ok {
			return 0, false
		}
		v = sub
	}
	if o.Neg {
		v = -v
	}
	return v, true
}

func apply(a int, op program.BinOp, b int) (int, bool) {
	switch op {
	case program.OpAdd:
		return a + b, true
	case program.OpSub:
		return a - b, true
	case program.OpMul:
		return a * b, true
	case program.OpDiv:
		if b == 0 {
			return 0, false
		}
		// Go division truncates toward zero, as required.
		return a / b, true
	case program.OpEq:
		return boolInt(a == b), true
	case program.OpNe:
		return boolInt(a != b), true
	case program.OpLt:
		return boolInt(a < b), true
	case program.OpLe:
		return boolInt(a <= b), true
	case program.OpGt:
		return boolInt(a > b), true
	case program.OpGe:
		return boolInt(a >= b), true
	}
	return 0, true
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// readBoundary performs exactly one read of a boundary variable. Reads
// never re-trigger write-side effects: scanning is triggered by writing
// radar, firing by writing shot.
func (r *Robot) readBoundary(b program.Boundary) int {
	switch b {
	case program.BoundX:
		x, _ := r.Arena.Position()
		return x
	case program.BoundY:
		_, y := r.Arena.Position()
		return y
	case program.BoundDirection:
		return r.Heading
	case program.BoundSpeed:
		return r.Speed
	case program.BoundMaxSpeed:
		return r.MaxSpeed
	case program.BoundAim:
		return r.Aim
	case program.BoundRadar:
		return r.Radar
	case program.BoundShot:
		// Positive while the gun is ready.
		if r.Arena.FireReady() {
			return 1
		}
		return 0
	case program.BoundDamage:
		return r.Arena.CurrentDamage()
	case program.BoundFuel:
		return r.Arena.CloakFuelRemaining()
	case program.BoundCloak:
		return r.Cloak
	}
	return 0
}

// writeBoundary forwards a boundary-variable write to the Arena. The write
// is the triggering event for scan and fire requests; it is never buffered
// past the statement that performed it.
func (r *Robot) writeBoundary(b program.Boundary, v int) {
	switch b {
	case program.BoundX:
		_, y := r.Arena.Position()
		r.Arena.MoveTo(v, y)
	case program.BoundY:
		x, _ := r.Arena.Position()
		r.Arena.MoveTo(x, v)
	case program.BoundDirection:
		r.Heading = wrap360(v)
		r.Arena.SetHeading(r.Heading)
	case program.BoundSpeed:
		if v < 0 {
			v = 0
		}
		if v > r.MaxSpeed {
			v = r.MaxSpeed
		}
		r.Speed = v
		r.Arena.SetSpeed(v, r.MaxSpeed)
	case program.BoundAim:
		r.Aim = wrap360(v)
	case program.BoundRadar:
		// Scan-request event: forward the aim in effect right now and
		// store the reply synchronously.
		r.Radar = r.Arena.Scan(r.Aim)
	case program.BoundShot:
		// Fire-request event, gated on gun-ready at the time of the write.
		if r.Arena.FireReady() {
			r.Arena.Fire(r.Aim, v)
		}
	case program.BoundCloak:
		if r.Arena.RequestCloak(v) {
			r.Cloak = v
		} else {
			r.Cloak = 0
		}
	}
}

func wrap360(v int) int {
	v %= 360
	if v < 0 {
		v += 360
	}
	return v
}
