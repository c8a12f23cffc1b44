// Package tuning holds the execution-policy knobs of the runtime: how
// CPU_SPEED maps to an instruction budget, what a statement costs, and the
// fixed limits on interrupts and gosub nesting. The manual documents no
// cost table, so the policy is declared configuration, loadable from yaml,
// not a hardcoded constant.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	// Main budget per tick: BudgetBase + BudgetStep*CPU_SPEED.
	BudgetBase int `yaml:"budget_base"`
	BudgetStep int `yaml:"budget_step"`

	// Fixed budget for one interrupt-routine invocation. Exhaustion is an
	// InterruptOverrun fault; routines must stay short.
	InterruptBudget int `yaml:"interrupt_budget"`

	// Cost charged per executed statement.
	StatementCost int `yaml:"statement_cost"`

	// Gosub nesting limit; exceeding it is a StackFault.
	MaxCallDepth int `yaml:"max_call_depth"`

	// Top speed per ENGINE_SIZE level: MaxSpeedStep*(ENGINE_SIZE+1).
	MaxSpeedStep int `yaml:"max_speed_step"`

	// Battle tick limit for the driver; 0 disables the limit.
	MaxTicks int `yaml:"max_ticks"`
}

// Default returns the documented defaults: budget = 8*(CPU_SPEED+1),
// uniform statement cost of 1.
func Default() Tuning {
	return Tuning{
		BudgetBase:      8,
		BudgetStep:      8,
		InterruptBudget: 16,
		StatementCost:   1,
		MaxCallDepth:    64,
		MaxSpeedStep:    4,
		MaxTicks:        2000,
	}
}

// Load overlays a yaml tuning file onto the defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if t.StatementCost < 1 {
		return t, fmt.Errorf("%s: statement_cost must be at least 1", path)
	}
	return t, nil
}

// Budget returns the main instruction budget for one tick at the given
// CPU_SPEED level.
func (t Tuning) Budget(cpuSpeed int) int {
	return t.BudgetBase + t.BudgetStep*cpuSpeed
}

// MaxSpeed returns the speed cap for the given ENGINE_SIZE level.
func (t Tuning) MaxSpeed(engineSize int) int {
	return t.MaxSpeedStep * (engineSize + 1)
}
