package model

import (
	"github.com/go-air/gini/z"
	"github.com/limaJavier/weekly-timetabling/internal/calendar"
	"github.com/limaJavier/weekly-timetabling/pkg/sat"
	"github.com/samber/lo"
)

type squareEntry struct {
	Value  int
	Square int
}

// squareTable maps every possible number of idle intervals in a day to its penalty
func squareTable(maxValue int) []squareEntry {
	return lo.Times(maxValue+1, func(value int) squareEntry {
		return squareEntry{Value: value, Square: value * value}
	})
}

// compactness is the sum over section/days of the squared number of internal idle intervals.
// Each section/day contributes a unary penalty (bit k holds iff the day's square is at least k),
// and a single sorting network over all bits turns "penalty <= bound" into one literal.
type compactness struct {
	bits    []z.Lit
	counter *sat.Counter
}

func newCompactness(state *encoderState) *compactness {
	objective := &compactness{bits: make([]z.Lit, 0)}

	for _, section := range state.input.Sections {
		for day := range calendar.TotalDays() {
			objective.bits = append(objective.bits, dailyPenalty(state, section.Id, day)...)
		}
	}

	objective.counter = state.formula.Counter(objective.bits)
	return objective
}

func dailyPenalty(state *encoderState, section, day uint64) []z.Lit {
	occupied := lo.Map(lo.Range(int(calendar.TotalIntervals())), func(interval int, _ int) z.Lit {
		return state.variables.Occupied(section, day, uint64(interval))
	})

	// First and last intervals can never be internal
	idle := make([]z.Lit, 0, len(occupied))
	for interval := 1; interval < len(occupied)-1; interval++ {
		idle = append(idle, state.formula.And(
			occupied[interval].Not(),
			state.formula.Or(occupied[:interval]...),
			state.formula.Or(occupied[interval+1:]...),
		))
	}

	counter := state.formula.Counter(idle)
	table := squareTable(len(idle))
	selected := lo.Map(table, func(entry squareEntry, _ int) z.Lit {
		return counter.Equals(entry.Value)
	})

	maxSquare := table[len(table)-1].Square
	return lo.Times(maxSquare, func(k int) z.Lit {
		rows := lo.Filter(lo.Range(len(table)), func(row int, _ int) bool {
			return table[row].Square >= k+1
		})
		return state.formula.Or(lo.Map(rows, func(row int, _ int) z.Lit { return selected[row] })...)
	})
}

func (objective *compactness) Evaluate(model sat.Model) int {
	return lo.CountBy(objective.bits, model.Value)
}

func (objective *compactness) AtMost(bound int) z.Lit {
	return objective.counter.AtMost(bound)
}
