package sat

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/go-air/gini/z"
	"github.com/golang/glog"
)

type Outcome int

const (
	Unknown    Outcome = iota // Budget exhausted before any solution was found
	Infeasible                // Proven that no solution exists
	Feasible                  // Budget exhausted with a solution whose optimality is not proven
	Optimal                   // Proven optimal solution
)

func (outcome Outcome) String() string {
	switch outcome {
	case Infeasible:
		return "infeasible"
	case Feasible:
		return "feasible"
	case Optimal:
		return "optimal"
	}
	return "unknown"
}

func (outcome Outcome) MarshalText() ([]byte, error) {
	return []byte(outcome.String()), nil
}

// Objective is a non-negative integer function of a model whose upper bounds can be stated as literals
type Objective interface {
	Evaluate(model Model) int
	// Returns a circuit literal equivalent to "objective <= bound"
	AtMost(bound int) z.Lit
}

type MinimizeOptions struct {
	Seed     uint64 // Seeds the permutation applied before every solver call
	Workers  int    // Solver instances racing on each step (at least one)
	MaxSteps int    // Maximum number of solver calls; 0 means unbounded
	RunID    string // Only used to tag log lines
}

type Incumbent struct {
	Solution  SATSolution
	Objective int
	Steps     int
}

// Minimize runs a branch-and-bound over solver calls: every solution found tightens the bound
// "objective <= best - 1" until the instance becomes unsatisfiable (the incumbent is optimal)
// or the budget runs out (the incumbent is merely feasible).
// A nil objective stops at the first solution.
func Minimize(ctx context.Context, solver SATSolver, instance SAT, objective Objective, options MinimizeOptions) (Incumbent, Outcome, error) {
	rng := rand.New(rand.NewPCG(options.Seed, options.Seed^0x9e3779b97f4a7c15))
	workers := max(options.Workers, 1)

	var best *Incumbent
	current := instance
	for step := 1; ; step++ {
		solution, err := race(ctx, solver, current, workers, rng)

		if errors.Is(err, ErrInterrupted) {
			if best == nil {
				glog.V(1).Infof("[%v] budget exhausted after %d steps without a solution", options.RunID, step)
				return Incumbent{Steps: step}, Unknown, nil
			}
			glog.V(1).Infof("[%v] budget exhausted after %d steps, keeping objective %d", options.RunID, step, best.Objective)
			best.Steps = step
			return *best, Feasible, nil
		} else if err != nil {
			return Incumbent{}, Unknown, err
		} else if solution == nil {
			if best == nil {
				glog.V(1).Infof("[%v] instance is unsatisfiable", options.RunID)
				return Incumbent{Steps: step}, Infeasible, nil
			}
			glog.V(1).Infof("[%v] objective %d proven optimal after %d steps", options.RunID, best.Objective, step)
			best.Steps = step
			return *best, Optimal, nil
		}

		if objective == nil {
			return Incumbent{Solution: solution, Steps: step}, Optimal, nil
		}

		value := objective.Evaluate(solution.Model())
		if best != nil && value >= best.Objective {
			glog.Warningf("[%v] solver returned objective %d which does not improve on %d", options.RunID, value, best.Objective)
		}
		best = &Incumbent{Solution: solution, Objective: value, Steps: step}
		glog.V(1).Infof("[%v] step %d found objective %d", options.RunID, step, value)

		if value == 0 {
			return *best, Optimal, nil
		} else if options.MaxSteps > 0 && step >= options.MaxSteps {
			return *best, Feasible, nil
		}

		bound := objective.AtMost(value - 1)
		current = current.With([]int64{int64(bound.Dimacs())})
	}
}

// race hands a differently permuted copy of the instance to each worker and returns the first verdict
func race(ctx context.Context, solver SATSolver, instance SAT, workers int, rng *rand.Rand) (SATSolution, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type answer struct {
		solution SATSolution
		err      error
	}
	answers := make(chan answer, workers) // Buffered so that losing workers never block

	for range workers {
		permuted, restore := instance.Permute(rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64())))
		go func() {
			solution, err := solver.Solve(ctx, permuted)
			answers <- answer{solution: restore(solution), err: err}
		}()
	}

	err := ErrInterrupted
	for range workers {
		answer := <-answers
		if answer.err == nil {
			return answer.solution, nil
		}
		if !errors.Is(answer.err, ErrInterrupted) {
			err = answer.err
		}
	}
	return nil, err
}
