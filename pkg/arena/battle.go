package arena

import (
	"math/rand"

	"github.com/warriorLang/warrior/pkg/program"
	"github.com/warriorLang/warrior/pkg/tuning"
)

// Outcome summarizes one finished battle.
type Outcome struct {
	Winner int // index into the program list, -1 for a draw
	Ticks  int
}

// RunBattle spawns one fighter per program on a fresh field and runs until
// at most one survives or the tick limit is reached. The tick limit keeps
// pacifist matchups from running forever; hitting it is a draw.
func RunBattle(names []string, progs []*program.Program, tun tuning.Tuning, seed int64) Outcome {
	size := 64 * len(progs)
	f := New(size, tun, rand.New(rand.NewSource(seed)))
	for i, p := range progs {
		f.Spawn(names[i], p)
	}

	maxTicks := tun.MaxTicks
	for tick := 0; maxTicks == 0 || tick < maxTicks; tick++ {
		f.Step()
		if f.AliveCount() <= 1 {
			break
		}
	}

	if f.AliveCount() != 1 {
		return Outcome{Winner: -1, Ticks: f.Tick}
	}
	for i, ftr := range f.Fighters {
		if ftr.Alive() {
			return Outcome{Winner: i, Ticks: f.Tick}
		}
	}
	return Outcome{Winner: -1, Ticks: f.Tick}
}
