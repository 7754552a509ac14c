package sat

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/golang/glog"
)

const giniPollInterval = 10 * time.Millisecond

// giniSolver searches in-process with gini's CDCL engine
type giniSolver struct{}

func NewGiniSolver() SATSolver {
	return &giniSolver{}
}

func (solver *giniSolver) Solve(ctx context.Context, instance SAT) (SATSolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrInterrupted
	}

	g := gini.New()
	for _, clause := range instance.Clauses {
		for _, literal := range clause {
			g.Add(z.Dimacs2Lit(int(literal)))
		}
		g.Add(z.LitNull)
	}

	// gini only learns about cancellation through Stop, so the running solve is polled
	solve := g.GoSolve()
	ticker := time.NewTicker(giniPollInterval)
	defer ticker.Stop()

	result, done := solve.Test()
	for !done {
		select {
		case <-ctx.Done():
			result, done = solve.Stop(), true
		case <-ticker.C:
			result, done = solve.Test()
		}
	}

	switch result {
	case 1:
	case -1:
		return nil, nil
	default:
		glog.V(2).Infof("gini stopped without a verdict on %d variables and %d clauses", instance.Variables, len(instance.Clauses))
		return nil, ErrInterrupted
	}

	maxVar := uint64(g.MaxVar())
	solution := make(SATSolution, 0, instance.Variables)
	for variable := uint64(1); variable <= instance.Variables; variable++ {
		if variable > maxVar {
			solution = append(solution, -int64(variable)) // Never mentioned in a clause, any value satisfies
			continue
		}
		if g.Value(z.Var(variable).Pos()) {
			solution = append(solution, int64(variable))
		} else {
			solution = append(solution, -int64(variable))
		}
	}
	return solution, nil
}
