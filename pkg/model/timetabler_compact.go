package model

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/limaJavier/weekly-timetabling/internal/calendar"
	"github.com/limaJavier/weekly-timetabling/pkg/sat"
)

type compactTimetabler struct {
	solver  sat.SATSolver
	options Options
}

func NewCompactTimetabler(solver sat.SATSolver, options Options) Timetabler {
	return &compactTimetabler{
		solver:  solver,
		options: options,
	}
}

func (timetabler *compactTimetabler) Build(ctx context.Context, modelInput ModelInput) (Timetable, Statistics, error) {
	start := time.Now()
	statistics := Statistics{
		RunID: uuid.NewString(),
		Seed:  timetabler.options.Seed,
	}
	if statistics.Seed == 0 {
		statistics.Seed = rand.Uint64()
	}

	if timetabler.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timetabler.options.Timeout)
		defer cancel()
	}

	//** Initialize dependencies
	formula := sat.NewFormula()
	evaluator := newPredicateEvaluator(modelInput)
	indexer := newIndexer(uint64(len(modelInput.Sections)), calendar.TotalDays(), calendar.TotalIntervals())
	variables := newVariables(formula, modelInput, evaluator, indexer)

	state := &encoderState{
		formula:   formula,
		variables: variables,
		evaluator: evaluator,
		input:     modelInput,
		options:   timetabler.options,
	}

	//** Build SAT instance
	for _, stage := range constraintStages {
		stage(state)
	}
	var objective sat.Objective
	if timetabler.options.Compactness {
		objective = newCompactness(state)
	}

	satInstance := formula.SAT()
	statistics.Variables, statistics.Clauses = satInstance.Variables, uint64(len(satInstance.Clauses))
	glog.V(1).Infof("[%v] encoded %d sections into %d variables and %d clauses", statistics.RunID, len(modelInput.Sections), statistics.Variables, statistics.Clauses)

	//** Solve SAT instance
	incumbent, outcome, err := sat.Minimize(ctx, timetabler.solver, satInstance, objective, sat.MinimizeOptions{
		Seed:     statistics.Seed,
		Workers:  timetabler.options.Workers,
		MaxSteps: timetabler.options.MaxSteps,
		RunID:    statistics.RunID,
	})
	statistics.Outcome, statistics.Steps = outcome, incumbent.Steps
	statistics.Duration = time.Since(start)
	if err != nil {
		return nil, statistics, err
	} else if incumbent.Solution == nil { // Return nil if no timetable was found within the budget
		return nil, statistics, nil
	}

	//** Decode timetable
	timetable := materialize(incumbent.Solution.Model(), variables, modelInput)
	if err := assignRooms(timetable, modelInput); err != nil {
		return nil, statistics, err
	}
	statistics.Penalty = Compactness(timetable)
	if objective != nil && statistics.Penalty != incumbent.Objective {
		glog.Warningf("[%v] decoded penalty %d differs from the solver's objective %d", statistics.RunID, statistics.Penalty, incumbent.Objective)
	}
	statistics.Duration = time.Since(start)

	return timetable, statistics, nil
}

func (timetabler *compactTimetabler) Verify(timetable Timetable, modelInput ModelInput) error {
	return verify(timetable, modelInput, timetabler.options)
}
