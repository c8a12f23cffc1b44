// Package arena is the reference collaborator the runtime is exercised
// against: a square field with per-robot physics integration, a radar cone,
// gun cooldowns and cloaking fuel. It exists so robot programs can be run
// end to end; it makes no claim to combat balance.
package arena

import (
	"math"
	"math/rand"

	"github.com/warriorLang/warrior/pkg/program"
	"github.com/warriorLang/warrior/pkg/tuning"
	"github.com/warriorLang/warrior/pkg/vm"
)

// Combat constants. Reference values only; balance is out of scope.
const (
	MaxDamage      = 100 // destruction threshold
	scanConeHalf   = 10  // degrees either side of aim
	fireConeHalf   = 8
	fireSlack      = 20  // how far off the power/distance lead may be
	wallDamage     = 2
	scanRangeStep  = 80 // scan range per RADAR_RANGE level
	cloakFuelStep  = 64 // cloak fuel per FUEL_CAPACITY level
	baseCooldown   = 12 // gun cooldown at FIRE_RATE 0
	cooldownPerFR  = 3
	minCooldown    = 2
	baseShotDamage = 6
	damagePerFR    = 4
	armorSoak      = 2
	minShotDamage  = 2
)

// Fighter is one robot on the field: physical state plus its VM state.
type Fighter struct {
	ID      int
	Name    string
	Program *program.Program
	State   *vm.Robot

	X, Y    float64
	Heading int
	Speed   int
	Damage  int

	GunCool    int
	CloakFuel  int
	CloakTicks int

	// MoveTo requests steer toward a waypoint until reached.
	wayX, wayY float64
	hasWay     bool
}

// Alive reports whether the fighter is still in the match.
func (f *Fighter) Alive() bool {
	return f.State != nil && !f.State.Halted
}

// Cloaked reports whether the fighter is currently hidden from radar.
func (f *Fighter) Cloaked() bool { return f.CloakTicks > 0 }

// Field is the battle arena. Coordinates run 0..Size in both axes; heading
// 0 points along +x and grows counterclockwise.
type Field struct {
	Size    int
	Tick    int
	Machine *vm.Machine
	Rng     *rand.Rand

	Fighters []*Fighter
}

// New creates an empty field.
func New(size int, tun tuning.Tuning, rng *rand.Rand) *Field {
	m := vm.New()
	m.Tuning = tun
	return &Field{Size: size, Machine: m, Rng: rng}
}

// Spawn places a robot at a random position and binds its VM state to this
// field through a per-fighter port.
func (f *Field) Spawn(name string, p *program.Program) *Fighter {
	ftr := &Fighter{
		Name:      name,
		Program:   p,
		X:         f.Rng.Float64() * float64(f.Size),
		Y:         f.Rng.Float64() * float64(f.Size),
		Heading:   f.Rng.Intn(360),
		CloakFuel: cloakFuelStep * p.Attributes.Get(program.AttrFuelCapacity),
	}
	ftr.State = f.Machine.Spawn(p, &port{field: f, ftr: ftr})
	ftr.ID = ftr.State.ID
	f.Fighters = append(f.Fighters, ftr)
	return ftr
}

// Step advances the whole field one tick: physics first, then each living
// robot's program.
func (f *Field) Step() {
	f.Tick++
	for _, ftr := range f.Fighters {
		if !ftr.Alive() {
			continue
		}
		f.integrate(ftr)
	}
	for _, ftr := range f.Fighters {
		if !ftr.Alive() {
			continue
		}
		f.Machine.AdvanceTick(ftr.State)
		if ftr.Damage >= MaxDamage {
			f.Machine.Destroy(ftr.State)
		}
	}
}

// AliveCount returns the number of fighters still in the match.
func (f *Field) AliveCount() int {
	n := 0
	for _, ftr := range f.Fighters {
		if ftr.Alive() {
			n++
		}
	}
	return n
}

// integrate applies one tick of movement, cooldown and cloak decay.
func (f *Field) integrate(ftr *Fighter) {
	if ftr.GunCool > 0 {
		ftr.GunCool--
	}
	if ftr.CloakTicks > 0 {
		ftr.CloakTicks--
	}
	if ftr.hasWay {
		dx, dy := ftr.wayX-ftr.X, ftr.wayY-ftr.Y
		if math.Hypot(dx, dy) < 1 {
			ftr.hasWay = false
		} else {
			ftr.Heading = wrapDeg(int(math.Atan2(dy, dx) * 180 / math.Pi))
		}
	}
	if ftr.Speed > 0 {
		rad := float64(ftr.Heading) * math.Pi / 180
		ftr.X += float64(ftr.Speed) * math.Cos(rad)
		ftr.Y += float64(ftr.Speed) * math.Sin(rad)
		hit := false
		if ftr.X < 0 {
			ftr.X, hit = 0, true
		}
		if ftr.Y < 0 {
			ftr.Y, hit = 0, true
		}
		if max := float64(f.Size); ftr.X > max {
			ftr.X, hit = max, true
		}
		if max := float64(f.Size); ftr.Y > max {
			ftr.Y, hit = max, true
		}
		if hit {
			ftr.Damage += wallDamage
			ftr.Speed = 0
		}
	}
}

// nearestInCone returns the nearest other living, uncloaked fighter within
// the cone around angle deg and within maxRange, or nil.
func (f *Field) nearestInCone(from *Fighter, deg, halfCone int, maxRange float64) (*Fighter, float64) {
	var best *Fighter
	bestDist := maxRange
	for _, other := range f.Fighters {
		if other == from || !other.Alive() || other.Cloaked() {
			continue
		}
		dx, dy := other.X-from.X, other.Y-from.Y
		dist := math.Hypot(dx, dy)
		if dist > bestDist {
			continue
		}
		bearing := int(math.Atan2(dy, dx) * 180 / math.Pi)
		if angleDiff(bearing, deg) > halfCone {
			continue
		}
		best = other
		bestDist = dist
	}
	return best, bestDist
}

func angleDiff(a, b int) int {
	d := wrapDeg(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func wrapDeg(d int) int {
	d %= 360
	if d < 0 {
		d += 360
	}
	return d
}

// port binds one fighter to the field as the VM's Arena collaborator.
// Every call is synchronous and bounded.
type port struct {
	field *Field
	ftr   *Fighter
}

func (p *port) Scan(aim int) int {
	rangeMax := float64(scanRangeStep * (p.ftr.Program.Attributes.Get(program.AttrRadarRange) + 1))
	target, dist := p.field.nearestInCone(p.ftr, aim, scanConeHalf, rangeMax)
	if target == nil {
		return 0
	}
	// Zero means nothing found, so a point-blank contact reads as range 1.
	if d := int(dist + 0.5); d > 0 {
		return d
	}
	return 1
}

func (p *port) FireReady() bool { return p.ftr.GunCool <= 0 }

func (p *port) Fire(aim, power int) bool {
	fr := p.ftr.Program.Attributes.Get(program.AttrFireRate)
	cool := baseCooldown - cooldownPerFR*fr
	if cool < minCooldown {
		cool = minCooldown
	}
	p.ftr.GunCool = cool

	// Power encodes the expected target distance (target-leading): the
	// shot lands at that range along the aim line.
	rangeMax := float64(scanRangeStep * (p.ftr.Program.Attributes.Get(program.AttrRadarRange) + 1))
	target, dist := p.field.nearestInCone(p.ftr, aim, fireConeHalf, rangeMax)
	if target != nil && math.Abs(dist-float64(power)) <= fireSlack {
		dmg := baseShotDamage + damagePerFR*fr - armorSoak*target.Program.Attributes.Get(program.AttrArmor)
		if dmg < minShotDamage {
			dmg = minShotDamage
		}
		target.Damage += dmg
	}
	return true
}

func (p *port) SetHeading(deg int) {
	p.ftr.Heading = wrapDeg(deg)
	p.ftr.hasWay = false
}

func (p *port) SetSpeed(v, maxSpeed int) {
	if v < 0 {
		v = 0
	}
	if v > maxSpeed {
		v = maxSpeed
	}
	p.ftr.Speed = v
}

func (p *port) MoveTo(x, y int) {
	p.ftr.wayX, p.ftr.wayY = float64(x), float64(y)
	p.ftr.hasWay = true
}

func (p *port) Position() (int, int) {
	return int(p.ftr.X + 0.5), int(p.ftr.Y + 0.5)
}

func (p *port) CloakFuelRemaining() int { return p.ftr.CloakFuel }

func (p *port) RequestCloak(ticks int) bool {
	if p.ftr.Program.Attributes.Get(program.AttrCloaking) == 0 {
		return false
	}
	if ticks <= 0 || p.ftr.CloakFuel < ticks {
		return false
	}
	p.ftr.CloakFuel -= ticks
	p.ftr.CloakTicks += ticks
	return true
}

func (p *port) CurrentDamage() int { return p.ftr.Damage }
