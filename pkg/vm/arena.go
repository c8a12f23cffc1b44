package vm

// Arena is the external collaborator owning physics, combat resolution and
// multi-robot orchestration. Every call is synchronous within a tick and
// must return in bounded time. The runtime forwards boundary-variable
// traffic here and never blocks on anything else.
type Arena interface {
	// Scan looks along the given aim angle and returns the distance to a
	// target inside the scan cone, or 0 when nothing is found.
	Scan(aim int) int

	// FireReady reports whether the gun is out of cooldown. It provides the
	// read value of the shot boundary variable.
	FireReady() bool

	// Fire requests a shot at the given aim angle and power. The gun-ready
	// precondition is enforced by the VM before calling.
	Fire(aim, power int) bool

	// SetHeading requests a new heading in degrees.
	SetHeading(deg int)

	// SetSpeed requests a new speed, already clamped by the VM to
	// [0, maxSpeed].
	SetSpeed(v, maxSpeed int)

	// MoveTo requests a position change from the physics integrator.
	MoveTo(x, y int)

	// Position returns the last-known position.
	Position() (x, y int)

	// CloakFuelRemaining returns the remaining cloaking fuel.
	CloakFuelRemaining() int

	// RequestCloak asks to cloak for the given number of ticks.
	RequestCloak(ticks int) bool

	// CurrentDamage returns accumulated damage.
	CurrentDamage() int
}
