// robotwar - batch battle driver
// Reads a battles.json manifest, runs each matchup, writes a results
// summary suitable for ranking tooling.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"

	"github.com/warriorLang/warrior/pkg/arena"
	"github.com/warriorLang/warrior/pkg/manifest"
	"github.com/warriorLang/warrior/pkg/program"
	"github.com/warriorLang/warrior/pkg/tuning"
)

var (
	flagBattles = flag.String("battles", "battles.json", "Battle manifest")
	flagRobots  = flag.String("robots", "robots", "Directory robot paths are resolved against")
	flagOut     = flag.String("out", "results.json", "Results output file")
	flagTuning  = flag.String("tuning", "", "Optional tuning yaml")
	flagSeed    = flag.Int64("seed", 1, "Base RNG seed")
	flagQuiet   = flag.Bool("quiet", false, "Suppress per-battle output")
)

func main() {
	flag.Parse()

	tun := tuning.Default()
	if *flagTuning != "" {
		var err error
		tun, err = tuning.Load(*flagTuning)
		if err != nil {
			fail(err)
		}
	}

	man, err := manifest.Load(*flagBattles)
	if err != nil {
		fail(err)
	}

	var results []manifest.Result
	for bi, battle := range man.Battles {
		names := make([]string, len(battle.Robots))
		progs := make([]*program.Program, len(battle.Robots))
		for i, rp := range battle.Robots {
			names[i] = filepath.Base(rp)
			p, err := loadRobot(*flagRobots, rp)
			if err != nil {
				fail(err)
			}
			progs[i] = p
		}

		wins := make([]int, len(progs))
		draws := 0
		for n := 0; n < battle.NumBattles; n++ {
			seed := *flagSeed + int64(bi*10000+n)
			out := arena.RunBattle(names, progs, tun, seed)
			if out.Winner >= 0 {
				wins[out.Winner]++
			} else {
				draws++
			}
			if !*flagQuiet {
				if out.Winner >= 0 {
					pterm.Info.Printf("%s: %s wins in %d ticks\n",
						strings.Join(names, " vs "), names[out.Winner], out.Ticks)
				} else {
					pterm.Info.Printf("%s: draw after %d ticks\n",
						strings.Join(names, " vs "), out.Ticks)
				}
			}
		}

		results = append(results, manifest.Result{
			Robots:     battle.Robots,
			NumBattles: battle.NumBattles,
			Values:     manifest.ResultValues{GamesWon: wins},
		})
		if !*flagQuiet {
			pterm.Success.Printf("%s: %v wins, %d draws over %d battles\n",
				strings.Join(names, " vs "), wins, draws, battle.NumBattles)
		}
	}

	if err := manifest.WriteResults(*flagOut, results); err != nil {
		fail(err)
	}
	if !*flagQuiet {
		pterm.Success.Printf("wrote %s (%d matchups)\n", *flagOut, len(results))
	}
}

// loadRobot resolves a manifest robot path against the robots directory,
// trying the path as given and with the .rw extension.
func loadRobot(dir, path string) (*program.Program, error) {
	candidates := []string{
		filepath.Join(dir, path),
		filepath.Join(dir, path+".rw"),
	}
	var lastErr error
	for _, c := range candidates {
		src, err := os.ReadFile(c)
		if err != nil {
			lastErr = err
			continue
		}
		p, err := program.LoadNamed(filepath.Base(path), string(src))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
		return p, nil
	}
	return nil, lastErr
}

func fail(err error) {
	pterm.Error.Println(err.Error())
	os.Exit(1)
}
