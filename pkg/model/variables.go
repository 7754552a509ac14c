package model

import (
	"log"

	"github.com/go-air/gini/z"
	"github.com/limaJavier/weekly-timetabling/internal/calendar"
	"github.com/limaJavier/weekly-timetabling/pkg/sat"
	"github.com/samber/lo"
)

const vacancy uint64 = 0

// variables owns the decision literals of a model: one per (cell, occupant), one-hot per cell,
// plus the derived lab-block flags and the gates built on top of them
type variables struct {
	formula   *sat.Formula
	indexer   indexer
	evaluator predicateEvaluator
	input     ModelInput

	cells       [][]z.Lit           // cells[index][occupant]
	flags       map[[4]uint64]z.Lit // (section, occupant, day, pair) -> lab block is active
	labCells    map[uint64]z.Lit    // cell index -> the cell belongs to an active lab block
	theoryCells map[[2]uint64]z.Lit // (cell index, occupant) -> occupant sits there outside its lab block
}

func newVariables(formula *sat.Formula, input ModelInput, evaluator predicateEvaluator, indexer indexer) *variables {
	variables := &variables{
		formula:     formula,
		indexer:     indexer,
		evaluator:   evaluator,
		input:       input,
		cells:       make([][]z.Lit, indexer.Cells()),
		flags:       make(map[[4]uint64]z.Lit),
		labCells:    make(map[uint64]z.Lit),
		theoryCells: make(map[[2]uint64]z.Lit),
	}

	for index := range indexer.Cells() {
		section, _, _ := indexer.Attributes(index)
		occupants := len(input.Sections[section].Occupants)
		variables.cells[index] = lo.Times(occupants, func(_ int) z.Lit { return formula.Lit() })

		// Every cell holds exactly one occupant
		formula.Clause(variables.cells[index]...)
		formula.AtMostOne(variables.cells[index]...)
	}

	for _, section := range input.Sections {
		for occupant := range uint64(len(section.Occupants)) {
			if !evaluator.RunsLab(section.Id, occupant) {
				continue
			}
			for day := range calendar.TotalDays() {
				for pair, intervals := range calendar.LabPairs {
					key := [4]uint64{section.Id, occupant, day, uint64(pair)}
					variables.flags[key] = formula.And(
						variables.Cell(section.Id, day, intervals[0], occupant),
						variables.Cell(section.Id, day, intervals[1], occupant),
					)
				}
			}
		}
	}

	return variables
}

// Cell returns the literal "the cell holds the occupant"
func (variables *variables) Cell(section, day, interval, occupant uint64) z.Lit {
	domain := variables.cells[variables.indexer.Index(section, day, interval)]
	if occupant >= uint64(len(domain)) {
		log.Panicf("occupant %d is outside the domain of section \"%v\"", occupant, variables.input.Sections[section].Name)
	}
	return domain[occupant]
}

func (variables *variables) Occupied(section, day, interval uint64) z.Lit {
	return variables.Cell(section, day, interval, vacancy).Not()
}

// Flag returns the activation gate of the occupant's lab block on (day, pair)
func (variables *variables) Flag(section, occupant, day, pair uint64) (z.Lit, bool) {
	flag, ok := variables.flags[[4]uint64{section, occupant, day, pair}]
	return flag, ok
}

// Flags returns every activation gate of the occupant's lab blocks during the week
func (variables *variables) Flags(section, occupant uint64) []z.Lit {
	flags := make([]z.Lit, 0)
	for day := range calendar.TotalDays() {
		for pair := range calendar.TotalPairs() {
			if flag, ok := variables.Flag(section, occupant, day, pair); ok {
				flags = append(flags, flag)
			}
		}
	}
	return flags
}

// LabCell returns a gate that holds when the cell is part of any active lab block of its section
func (variables *variables) LabCell(section, day, interval uint64) z.Lit {
	index := variables.indexer.Index(section, day, interval)
	if labCell, ok := variables.labCells[index]; ok {
		return labCell
	}

	pair, ok := calendar.PairOf(interval)
	if !ok {
		return variables.formula.False()
	}
	flags := make([]z.Lit, 0)
	for occupant := range uint64(len(variables.input.Sections[section].Occupants)) {
		if flag, ok := variables.Flag(section, occupant, day, pair); ok {
			flags = append(flags, flag)
		}
	}
	labCell := variables.formula.Or(flags...)
	variables.labCells[index] = labCell
	return labCell
}

// TheoryCell returns a gate that holds when the occupant sits in the cell outside of its own lab block
func (variables *variables) TheoryCell(section, day, interval, occupant uint64) z.Lit {
	cell := variables.Cell(section, day, interval, occupant)
	if !variables.evaluator.RunsLab(section, occupant) {
		return cell
	}

	key := [2]uint64{variables.indexer.Index(section, day, interval), occupant}
	if theoryCell, ok := variables.theoryCells[key]; ok {
		return theoryCell
	}

	theoryCell := cell
	if pair, ok := calendar.PairOf(interval); ok {
		flag, _ := variables.Flag(section, occupant, day, pair)
		theoryCell = variables.formula.And(cell, flag.Not())
	}
	variables.theoryCells[key] = theoryCell
	return theoryCell
}
