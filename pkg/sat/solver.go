package sat

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// ErrInterrupted is returned when a solver runs out of budget before deciding the instance
var ErrInterrupted = errors.New("solver interrupted before reaching a verdict")

type SATSolver interface {
	// Returns a solution of the SAT instance if satisfiable, else returns nil (these are valid outputs where error shall be nil).
	// Returns ErrInterrupted if the context expires first.
	Solve(ctx context.Context, instance SAT) (SATSolution, error)
}

var solvers = map[string]func() SATSolver{
	"gini":          NewGiniSolver,
	"kissat":        NewKissatSolver,
	"cadical":       NewCadicalSolver,
	"minisat":       NewMinisatSolver,
	"cryptominisat": NewCryptominisatSolver,
	"glucosesimp":   NewGlucoseSimpSolver,
	"glucosesyrup":  NewGlucoseSyrupSolver,
	"slime":         NewSlimeSolver,
	"ortoolsat":     NewOrtoolsatSolver,
}

// SolverNames lists every registered backend in a stable order
func SolverNames() []string {
	names := lo.Keys(solvers)
	slices.Sort(names)
	return names
}

func NewSolver(name string) (SATSolver, error) {
	constructor, ok := solvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver \"%v\": allowed values are %v", name, SolverNames())
	}
	return constructor(), nil
}
