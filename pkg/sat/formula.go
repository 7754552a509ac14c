package sat

import (
	"log"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/samber/lo"
)

// Formula accumulates a propositional model as a logic circuit plus hard clauses.
// Gates are exact (Tseitin) equivalences, so a literal returned by And/Or is true
// if and only if its inputs make it so.
type Formula struct {
	circuit *logic.C
	clauses [][]z.Lit
	maxVar  z.Var // Highest variable handed out, inputs never mentioned by a clause included
}

func NewFormula() *Formula {
	return &Formula{
		circuit: logic.NewC(),
		clauses: make([][]z.Lit, 0),
	}
}

// Lit returns a fresh free variable
func (formula *Formula) Lit() z.Lit {
	return formula.track(formula.circuit.Lit())
}

func (formula *Formula) True() z.Lit {
	return formula.circuit.T
}

func (formula *Formula) False() z.Lit {
	return formula.circuit.F
}

// And returns a gate equivalent to the conjunction of ms (true when ms is empty)
func (formula *Formula) And(ms ...z.Lit) z.Lit {
	return formula.track(formula.circuit.Ands(ms...))
}

// Or returns a gate equivalent to the disjunction of ms (false when ms is empty)
func (formula *Formula) Or(ms ...z.Lit) z.Lit {
	return formula.track(formula.circuit.Ors(ms...))
}

// Clause adds the hard constraint "at least one of ms holds"
func (formula *Formula) Clause(ms ...z.Lit) {
	if len(ms) == 0 {
		log.Panicf("an empty clause makes the formula trivially unsatisfiable")
	}
	formula.clauses = append(formula.clauses, ms)
}

// Assert forces every literal in ms to hold
func (formula *Formula) Assert(ms ...z.Lit) {
	for _, m := range ms {
		formula.Clause(m)
	}
}

// Implies adds the hard constraint m -> n
func (formula *Formula) Implies(m, n z.Lit) {
	formula.Clause(m.Not(), n)
}

// AtMostOne adds pairwise exclusion clauses between every two literals of ms
func (formula *Formula) AtMostOne(ms ...z.Lit) {
	for i := range len(ms) {
		for j := i + 1; j < len(ms); j++ {
			formula.Clause(ms[i].Not(), ms[j].Not())
		}
	}
}

// AtMost forces at most k of ms to hold
func (formula *Formula) AtMost(ms []z.Lit, k int) {
	switch {
	case k >= len(ms):
		return
	case k == 0:
		formula.Assert(lo.Map(ms, func(m z.Lit, _ int) z.Lit { return m.Not() })...)
	case k == 1:
		formula.AtMostOne(ms...)
	default:
		formula.Assert(formula.Counter(ms).AtMost(k))
	}
}

// Exactly forces exactly k of ms to hold
func (formula *Formula) Exactly(ms []z.Lit, k int) {
	if k > len(ms) {
		formula.Assert(formula.False())
		return
	} else if k == 0 {
		formula.AtMost(ms, 0)
		return
	}
	counter := formula.Counter(ms)
	formula.Assert(counter.AtLeast(k), counter.AtMost(k))
}

// Counter builds a cardinality sorting network over ms
func (formula *Formula) Counter(ms []z.Lit) *Counter {
	counter := &Counter{formula: formula, size: len(ms)}
	if len(ms) > 0 {
		counter.network = logic.NewCardSort(ms, formula.circuit)
	}
	return counter
}

// SAT lowers the circuit and the hard clauses into a CNF instance
func (formula *Formula) SAT() SAT {
	collector := &clauseCollector{clauses: make([][]int64, 0), current: make([]int64, 0)}
	formula.circuit.ToCnf(collector)

	// Constants are pinned explicitly, the circuit only relates them to gates
	collector.clause(formula.circuit.T)
	for _, clause := range formula.clauses {
		collector.clause(clause...)
	}

	return SAT{
		Variables: max(collector.variables, uint64(formula.maxVar)),
		Clauses:   collector.clauses,
	}
}

func (formula *Formula) track(m z.Lit) z.Lit {
	if m.Var() > formula.maxVar {
		formula.maxVar = m.Var()
	}
	return m
}

// Counter exposes the sorted outputs of a cardinality network as comparison literals
type Counter struct {
	formula *Formula
	network *logic.CardSort
	size    int
}

func (counter *Counter) Size() int {
	return counter.size
}

// AtMost returns a literal equivalent to "at most k inputs hold"
func (counter *Counter) AtMost(k int) z.Lit {
	switch {
	case k < 0:
		return counter.formula.False()
	case k >= counter.size:
		return counter.formula.True()
	}
	return counter.formula.track(counter.network.Leq(k))
}

// AtLeast returns a literal equivalent to "at least k inputs hold"
func (counter *Counter) AtLeast(k int) z.Lit {
	switch {
	case k <= 0:
		return counter.formula.True()
	case k > counter.size:
		return counter.formula.False()
	}
	return counter.formula.track(counter.network.Geq(k))
}

// Equals returns a literal equivalent to "exactly k inputs hold"
func (counter *Counter) Equals(k int) z.Lit {
	return counter.formula.And(counter.AtLeast(k), counter.AtMost(k))
}

// clauseCollector receives clauses literal by literal, terminated by z.LitNull, as gini adders do
type clauseCollector struct {
	clauses   [][]int64
	current   []int64
	variables uint64
}

func (collector *clauseCollector) Add(m z.Lit) {
	if m == z.LitNull {
		collector.clauses = append(collector.clauses, collector.current)
		collector.current = make([]int64, 0)
		return
	}
	if variable := uint64(m.Var()); variable > collector.variables {
		collector.variables = variable
	}
	collector.current = append(collector.current, int64(m.Dimacs()))
}

func (collector *clauseCollector) clause(ms ...z.Lit) {
	for _, m := range ms {
		collector.Add(m)
	}
	collector.Add(z.LitNull)
}
