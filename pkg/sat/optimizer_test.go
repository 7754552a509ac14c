package sat

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-air/gini/z"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countObjective struct {
	ms      []z.Lit
	counter *Counter
}

func (objective countObjective) Evaluate(model Model) int {
	return lo.CountBy(objective.ms, model.Value)
}

func (objective countObjective) AtMost(bound int) z.Lit {
	return objective.counter.AtMost(bound)
}

func newCountFormula(variables, atLeast int) (*Formula, countObjective) {
	formula := NewFormula()
	ms := lo.Times(variables, func(_ int) z.Lit { return formula.Lit() })
	counter := formula.Counter(ms)
	formula.Assert(counter.AtLeast(atLeast))
	return formula, countObjective{ms: ms, counter: counter}
}

// firstAnswerSolver answers its first call with gini and then waits for the budget to run out
type firstAnswerSolver struct {
	calls atomic.Int32
}

func (solver *firstAnswerSolver) Solve(ctx context.Context, instance SAT) (SATSolution, error) {
	if solver.calls.Add(1) == 1 {
		return NewGiniSolver().Solve(context.WithoutCancel(ctx), instance)
	}
	<-ctx.Done()
	return nil, ErrInterrupted
}

func TestMinimize(t *testing.T) {
	t.Run("Optimal", func(t *testing.T) {
		for workers := 1; workers <= 3; workers++ {
			//** Arrange
			formula, objective := newCountFormula(8, 3)

			//** Act
			incumbent, outcome, err := Minimize(context.Background(), NewGiniSolver(), formula.SAT(), objective, MinimizeOptions{Seed: uint64(workers), Workers: workers})

			//** Assert
			require.Nil(t, err)
			assert.Equal(t, Optimal, outcome)
			assert.Equal(t, 3, incumbent.Objective)
			assert.Equal(t, 3, objective.Evaluate(incumbent.Solution.Model()))
		}
	})

	t.Run("Infeasible", func(t *testing.T) {
		formula, objective := newCountFormula(4, 5)

		_, outcome, err := Minimize(context.Background(), NewGiniSolver(), formula.SAT(), objective, MinimizeOptions{})

		require.Nil(t, err)
		assert.Equal(t, Infeasible, outcome)
	})

	t.Run("Step limit keeps incumbent", func(t *testing.T) {
		formula, objective := newCountFormula(8, 1)

		incumbent, outcome, err := Minimize(context.Background(), NewGiniSolver(), formula.SAT(), objective, MinimizeOptions{MaxSteps: 1})

		require.Nil(t, err)
		assert.Equal(t, Feasible, outcome)
		assert.NotNil(t, incumbent.Solution)
		assert.Equal(t, 1, incumbent.Steps)
	})

	t.Run("Expired budget", func(t *testing.T) {
		formula, objective := newCountFormula(8, 3)
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		incumbent, outcome, err := Minimize(ctx, NewGiniSolver(), formula.SAT(), objective, MinimizeOptions{})

		require.Nil(t, err)
		assert.Equal(t, Unknown, outcome)
		assert.Nil(t, incumbent.Solution)
	})

	t.Run("Expired budget keeps incumbent", func(t *testing.T) {
		//** Arrange
		formula, objective := newCountFormula(8, 3)
		solver := &firstAnswerSolver{}
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		//** Act
		incumbent, outcome, err := Minimize(ctx, solver, formula.SAT(), objective, MinimizeOptions{Seed: 5})

		//** Assert
		require.Nil(t, err)
		assert.Equal(t, Feasible, outcome)
		require.NotNil(t, incumbent.Solution)
		assert.GreaterOrEqual(t, incumbent.Objective, 3)
		assert.Equal(t, incumbent.Objective, objective.Evaluate(incumbent.Solution.Model()))
		assert.Equal(t, 2, incumbent.Steps)
		assert.Equal(t, int32(2), solver.calls.Load())
	})

	t.Run("Cancellation stops every worker", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		time.AfterFunc(100*time.Millisecond, cancel)
		start := time.Now()

		incumbent, outcome, err := Minimize(ctx, NewGiniSolver(), pigeonholeInstance(12, 11), nil, MinimizeOptions{Seed: 6, Workers: 3})

		require.Nil(t, err)
		assert.Equal(t, Unknown, outcome)
		assert.Nil(t, incumbent.Solution)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("Without objective", func(t *testing.T) {
		formula, _ := newCountFormula(4, 2)

		incumbent, outcome, err := Minimize(context.Background(), NewGiniSolver(), formula.SAT(), nil, MinimizeOptions{})

		require.Nil(t, err)
		assert.Equal(t, Optimal, outcome)
		assert.NotNil(t, incumbent.Solution)
	})
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "optimal", Optimal.String())
	assert.Equal(t, "feasible", Feasible.String())
	assert.Equal(t, "infeasible", Infeasible.String())
	assert.Equal(t, "unknown", Unknown.String())
}
