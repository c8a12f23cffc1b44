// rwdbg - interactive robot-program debugger
// Loads a program against a scripted arena stub, then lets you step
// statements, advance ticks and inspect VM state.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/warriorLang/warrior/pkg/program"
	"github.com/warriorLang/warrior/pkg/tuning"
	"github.com/warriorLang/warrior/pkg/vm"
)

var flagTuning = flag.String("tuning", "", "Optional tuning yaml")

// scriptArena is a deterministic stand-in for a real arena: scan replies
// come from a queue you fill with the scan command, everything else is
// recorded and echoed.
type scriptArena struct {
	scans   []int
	x, y    int
	heading int
	speed   int
	damage  int
	fuel    int
	ready   bool
	fired   []string
}

func newScriptArena() *scriptArena {
	return &scriptArena{ready: true, fuel: 100}
}

func (a *scriptArena) Scan(aim int) int {
	if len(a.scans) == 0 {
		return 0
	}
	v := a.scans[0]
	a.scans = a.scans[1:]
	return v
}

func (a *scriptArena) FireReady() bool { return a.ready }

func (a *scriptArena) Fire(aim, power int) bool {
	a.fired = append(a.fired, fmt.Sprintf("fire(%d, %d)", aim, power))
	return true
}

func (a *scriptArena) SetHeading(deg int)      { a.heading = deg }
func (a *scriptArena) SetSpeed(v, max int)     { a.speed = v }
func (a *scriptArena) MoveTo(x, y int)         { a.x, a.y = x, y }
func (a *scriptArena) Position() (int, int)    { return a.x, a.y }
func (a *scriptArena) CloakFuelRemaining() int { return a.fuel }
func (a *scriptArena) RequestCloak(t int) bool { return t > 0 && t <= a.fuel }
func (a *scriptArena) CurrentDamage() int      { return a.damage }

type session struct {
	machine *vm.Machine
	arena   *scriptArena
	prog    *program.Program
	robot   *vm.Robot
}

func main() {
	flag.Parse()

	m := vm.New()
	if *flagTuning != "" {
		tun, err := tuning.Load(*flagTuning)
		if err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(1)
		}
		m.Tuning = tun
	}
	m.Output = os.Stdout

	s := &session{machine: m}
	if flag.NArg() > 0 {
		s.load(flag.Arg(0))
	}

	rl, err := readline.New("rwdbg> ")
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	defer rl.Close()

	pterm.Info.Println("robot-program debugger - type help for commands")
	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		if !s.command(strings.Fields(strings.TrimSpace(line))) {
			break
		}
	}
}

func (s *session) command(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "quit", "exit":
		return false
	case "help":
		s.help()
	case "load":
		if len(args) < 2 {
			pterm.Error.Println("usage: load <file>")
			break
		}
		s.load(args[1])
	case "tick":
		n := 1
		if len(args) > 1 {
			n, _ = strconv.Atoi(args[1])
		}
		s.tick(n)
	case "step":
		s.stepOne()
	case "state":
		s.state()
	case "vars":
		s.vars()
	case "code":
		s.code()
	case "scan":
		if s.arena == nil {
			pterm.Error.Println("no program loaded")
			break
		}
		for _, a := range args[1:] {
			if v, err := strconv.Atoi(a); err == nil {
				s.arena.scans = append(s.arena.scans, v)
			}
		}
		pterm.Info.Printf("scan queue: %v\n", s.arena.scans)
	case "fired":
		if s.arena != nil {
			for _, f := range s.arena.fired {
				pterm.Println(f)
			}
		}
	default:
		pterm.Error.Printf("unknown command %q\n", args[0])
	}
	return true
}

func (s *session) help() {
	pterm.Println(`load <file>   load a robot program and spawn a fresh robot
tick [n]      advance n ticks (default 1)
step          execute a single statement
state         show PC, context, interrupt and halt state
vars          show declared variables and boundary mirrors
code          disassemble the compiled program
scan v...     queue scripted scan replies
fired         show recorded fire requests
quit          leave`)
}

func (s *session) load(path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	p, err := program.LoadNamed(path, string(src))
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	s.prog = p
	s.arena = newScriptArena()
	s.robot = s.machine.Spawn(p, s.arena)
	pterm.Success.Printf("loaded %s: %d instructions, entry %s, attributes total %d\n",
		path, len(p.Code), p.EntryLabel, p.Attributes.Total())
}

func (s *session) loaded() bool {
	if s.robot == nil {
		pterm.Error.Println("no program loaded")
		return false
	}
	return true
}

func (s *session) tick(n int) {
	if !s.loaded() {
		return
	}
	for i := 0; i < n; i++ {
		out := s.machine.AdvanceTick(s.robot)
		if out.Halted {
			pterm.Warning.Printf("halted: %s\n", out.Reason)
			return
		}
	}
	s.state()
}

func (s *session) stepOne() {
	if !s.loaded() {
		return
	}
	out := s.machine.Step(s.robot)
	if out.Halted {
		pterm.Warning.Printf("halted: %s\n", out.Reason)
		return
	}
	s.state()
}

func (s *session) state() {
	if !s.loaded() {
		return
	}
	r := s.robot
	pterm.Printf("tick %d  pc %d (line %d)  context %s  calls %d\n",
		r.Tick, r.PC, s.lineAt(r.PC), r.Context, r.CallDepth())
	armed := "disarmed"
	if r.Armed {
		armed = "armed"
	}
	if r.Vector >= 0 {
		pterm.Printf("interrupt: vector pc %d, %s\n", r.Vector, armed)
	} else {
		pterm.Printf("interrupt: no vector, %s\n", armed)
	}
	pterm.Printf("aim %d  radar %d  heading %d  speed %d/%d  cloak %d\n",
		r.Aim, r.Radar, r.Heading, r.Speed, r.MaxSpeed, r.Cloak)
	if len(r.Faults) > 0 {
		pterm.Warning.Printf("faults: %d (last: %s)\n", len(r.Faults), r.Faults[len(r.Faults)-1])
	}
}

func (s *session) lineAt(pc int) int {
	if pc >= 0 && pc < len(s.prog.Code) {
		return s.prog.Code[pc].Line
	}
	return 0
}

func (s *session) vars() {
	if !s.loaded() {
		return
	}
	for i, name := range s.prog.Variables {
		pterm.Printf("%-16s %d\n", name, s.robot.Vars[i])
	}
}

func (s *session) code() {
	if !s.loaded() {
		return
	}
	labels := make(map[int][]string)
	for name, pc := range s.prog.Labels {
		labels[pc] = append(labels[pc], name)
	}
	for pc, in := range s.prog.Code {
		for _, l := range labels[pc] {
			pterm.Printf("%s:\n", l)
		}
		marker := "  "
		if pc == s.robot.PC {
			marker = "=>"
		}
		pterm.Printf("%s %4d  %-7s to=%d line=%d\n", marker, pc, in.Op, in.To, in.Line)
	}
}
