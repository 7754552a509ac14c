package model

import (
	"github.com/go-air/gini/z"
	"github.com/limaJavier/weekly-timetabling/internal/calendar"
	"github.com/limaJavier/weekly-timetabling/pkg/sat"
)

type encoderState struct {
	formula   *sat.Formula
	variables *variables
	evaluator predicateEvaluator
	input     ModelInput
	options   Options
}

type constraintStage func(state *encoderState)

// constraintStages lists every hard rule of a timetable; their order does not matter
var constraintStages = []constraintStage{
	quotaConstraints,
	occupancyConstraints,
	teacherConstraints,
	bufferConstraints,
	dailyConstraints,
	labConstraints,
	roomConstraints,
	cutoffConstraints,
}

// Every occupant teaches exactly its weekly theory sessions outside of its lab blocks and runs exactly its weekly lab blocks
func quotaConstraints(state *encoderState) {
	for _, section := range state.input.Sections {
		for occupant := uint64(1); occupant < uint64(len(section.Occupants)); occupant++ {
			theoryCells := make([]z.Lit, 0, calendar.TotalDays()*calendar.TotalIntervals())
			for day := range calendar.TotalDays() {
				for interval := range calendar.TotalIntervals() {
					theoryCells = append(theoryCells, state.variables.TheoryCell(section.Id, day, interval, occupant))
				}
			}
			state.formula.Exactly(theoryCells, int(state.evaluator.TheorySessions(section.Id, occupant)))

			if state.evaluator.RunsLab(section.Id, occupant) {
				state.formula.Exactly(state.variables.Flags(section.Id, occupant), int(state.evaluator.LabSessions(section.Id, occupant)))
			}
		}
	}
}

// A section occupies exactly as many cells as its sessions need
func occupancyConstraints(state *encoderState) {
	for _, section := range state.input.Sections {
		occupied := make([]z.Lit, 0, calendar.TotalDays()*calendar.TotalIntervals())
		for day := range calendar.TotalDays() {
			for interval := range calendar.TotalIntervals() {
				occupied = append(occupied, state.variables.Occupied(section.Id, day, interval))
			}
		}
		state.formula.Exactly(occupied, int(state.evaluator.RequiredCells(section.Id)))
	}
}

// A teacher is in at most one section per (day, interval)
func teacherConstraints(state *encoderState) {
	for _, teacher := range state.input.Teachers {
		sections := state.evaluator.SectionsOf(teacher.Id)
		if len(sections) < 2 {
			continue
		}
		for day := range calendar.TotalDays() {
			for interval := range calendar.TotalIntervals() {
				cells := make([]z.Lit, 0, len(sections))
				for _, section := range sections {
					occupant, _ := state.evaluator.OccupantOf(section, teacher.Id)
					cells = append(cells, state.variables.Cell(section, day, interval, occupant))
				}
				state.formula.AtMostOne(cells...)
			}
		}
	}
}

// Two sessions of a teacher on the same day keep the buffer between them, the two halves of one lab block aside
func bufferConstraints(state *encoderState) {
	conflictingPairs := calendar.ConflictingPairs()
	for _, teacher := range state.input.Teachers {
		sections := state.evaluator.SectionsOf(teacher.Id)
		for day := range calendar.TotalDays() {
			for _, intervals := range conflictingPairs {
				first, second := intervals[0], intervals[1]
				for _, section1 := range sections {
					occupant1, _ := state.evaluator.OccupantOf(section1, teacher.Id)
					for _, section2 := range sections {
						occupant2, _ := state.evaluator.OccupantOf(section2, teacher.Id)

						clause := []z.Lit{
							state.variables.Cell(section1, day, first, occupant1).Not(),
							state.variables.Cell(section2, day, second, occupant2).Not(),
						}
						if section1 == section2 {
							if pair, ok := calendar.IsLabPair(first, second); ok {
								if flag, ok := state.variables.Flag(section1, occupant1, day, pair); ok {
									clause = append(clause, flag)
								}
							}
						}
						state.formula.Clause(clause...)
					}
				}
			}
		}
	}
}

// A teacher gives at most one theory session per section per day
func dailyConstraints(state *encoderState) {
	for _, section := range state.input.Sections {
		for occupant := uint64(1); occupant < uint64(len(section.Occupants)); occupant++ {
			if !state.evaluator.Staffed(section.Id, occupant) || state.evaluator.TheorySessions(section.Id, occupant) == 0 {
				continue
			}
			for day := range calendar.TotalDays() {
				theoryCells := make([]z.Lit, 0, calendar.TotalIntervals())
				for interval := range calendar.TotalIntervals() {
					theoryCells = append(theoryCells, state.variables.TheoryCell(section.Id, day, interval, occupant))
				}
				state.formula.AtMostOne(theoryCells...)
			}
		}
	}
}

// An active lab block keeps its occupant away from every other interval of the section that day and,
// unless the exclusivity is section scoped, away from every interval of the teacher's other sections
func labConstraints(state *encoderState) {
	for _, section := range state.input.Sections {
		for occupant := uint64(1); occupant < uint64(len(section.Occupants)); occupant++ {
			if !state.evaluator.RunsLab(section.Id, occupant) {
				continue
			}
			for day := range calendar.TotalDays() {
				for pair, intervals := range calendar.LabPairs {
					flag, _ := state.variables.Flag(section.Id, occupant, day, uint64(pair))

					for interval := range calendar.TotalIntervals() {
						if interval == intervals[0] || interval == intervals[1] {
							continue
						}
						state.formula.Implies(flag, state.variables.Cell(section.Id, day, interval, occupant).Not())
					}

					if state.options.LabExclusivity != DayExclusive || !state.evaluator.Staffed(section.Id, occupant) {
						continue
					}
					teacher := section.Occupants[occupant].Teacher
					for _, other := range state.evaluator.SectionsOf(teacher) {
						if other == section.Id {
							continue
						}
						otherOccupant, _ := state.evaluator.OccupantOf(other, teacher)
						for interval := range calendar.TotalIntervals() {
							state.formula.Implies(flag, state.variables.Cell(other, day, interval, otherOccupant).Not())
						}
					}
				}
			}
		}
	}
}

// General cells never outnumber the classrooms and lab blocks never outnumber the lab rooms
func roomConstraints(state *encoderState) {
	for day := range calendar.TotalDays() {
		for interval := range calendar.TotalIntervals() {
			if calendar.Disabled(day, interval) {
				continue
			}
			general := make([]z.Lit, 0, len(state.input.Sections))
			for _, section := range state.input.Sections {
				general = append(general, state.formula.And(
					state.variables.Occupied(section.Id, day, interval),
					state.variables.LabCell(section.Id, day, interval).Not(),
				))
			}
			state.formula.AtMost(general, int(state.input.Classrooms))
		}

		for pair := range calendar.TotalPairs() {
			if calendar.PairDisabled(day, pair) {
				continue
			}
			blocks := make([]z.Lit, 0)
			for _, section := range state.input.Sections {
				for occupant := range uint64(len(section.Occupants)) {
					if flag, ok := state.variables.Flag(section.Id, occupant, day, pair); ok {
						blocks = append(blocks, flag)
					}
				}
			}
			state.formula.AtMost(blocks, int(state.input.LabRooms))
		}
	}
}

// Disabled intervals stay vacant
func cutoffConstraints(state *encoderState) {
	for _, section := range state.input.Sections {
		for day := range calendar.TotalDays() {
			for interval := range calendar.TotalIntervals() {
				if calendar.Disabled(day, interval) {
					state.formula.Assert(state.variables.Cell(section.Id, day, interval, vacancy))
				}
			}
		}
	}
}
