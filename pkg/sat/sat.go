package sat

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/go-air/gini/z"
	"github.com/samber/lo"
)

// SATSolution holds one signed DIMACS literal per assigned variable
type SATSolution []int64

type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// With returns a copy of the instance extended by the given clauses; the receiver is left untouched
func (s SAT) With(clauses ...[]int64) SAT {
	extended := SAT{
		Variables: s.Variables,
		Clauses:   make([][]int64, 0, len(s.Clauses)+len(clauses)),
	}
	extended.Clauses = append(extended.Clauses, s.Clauses...)
	extended.Clauses = append(extended.Clauses, clauses...)
	return extended
}

// Permute renames every variable with a random permutation and shuffles the clauses and their literals.
// Solvers break ties on variable order, so a permuted instance is searched in a different order.
// The returned function maps a solution of the permuted instance back to the original variables.
func (s SAT) Permute(rng *rand.Rand) (SAT, func(SATSolution) SATSolution) {
	renaming := make([]int64, s.Variables+1) // renaming[original] = permuted
	original := make([]int64, s.Variables+1) // original[permuted] = original
	for i, variable := range rng.Perm(int(s.Variables)) {
		renaming[i+1] = int64(variable) + 1
		original[variable+1] = int64(i) + 1
	}

	rename := func(literal int64, table []int64) int64 {
		if literal < 0 {
			return -table[-literal]
		}
		return table[literal]
	}

	permuted := SAT{
		Variables: s.Variables,
		Clauses: lo.Map(s.Clauses, func(clause []int64, _ int) []int64 {
			renamed := lo.Map(clause, func(literal int64, _ int) int64 { return rename(literal, renaming) })
			rng.Shuffle(len(renamed), func(i, j int) { renamed[i], renamed[j] = renamed[j], renamed[i] })
			return renamed
		}),
	}
	rng.Shuffle(len(permuted.Clauses), func(i, j int) {
		permuted.Clauses[i], permuted.Clauses[j] = permuted.Clauses[j], permuted.Clauses[i]
	})

	restore := func(solution SATSolution) SATSolution {
		if solution == nil {
			return nil
		}
		return lo.Map(solution, func(literal int64, _ int) int64 { return rename(literal, original) })
	}
	return permuted, restore
}

// Model is a lookup-friendly view of a solution
type Model map[int64]bool

func (solution SATSolution) Model() Model {
	model := make(Model, len(solution))
	for _, literal := range solution {
		if literal > 0 {
			model[literal] = true
		} else if literal < 0 {
			model[-literal] = false
		}
	}
	return model
}

// Value returns the truth value of a circuit literal; unassigned variables read as false
func (model Model) Value(m z.Lit) bool {
	value := model[int64(m.Var())]
	if !m.IsPos() {
		return !value
	}
	return value
}
