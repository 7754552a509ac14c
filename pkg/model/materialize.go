package model

import (
	"log"

	"github.com/limaJavier/weekly-timetabling/internal/calendar"
	"github.com/limaJavier/weekly-timetabling/pkg/sat"
	"github.com/samber/lo"
)

// Cell is what a section does during one (day, interval)
type Cell struct {
	Vacant  bool
	Course  uint64
	Staffed bool
	Teacher uint64 // Meaningful only when Staffed
	Lab     bool   // Part of a lab block
	Room    string
}

// Timetable is indexed by section, day and interval
type Timetable [][][]Cell

func NewTimetable(sections int) Timetable {
	return lo.Times(sections, func(_ int) [][]Cell {
		return lo.Times(int(calendar.TotalDays()), func(_ int) []Cell {
			return lo.Times(int(calendar.TotalIntervals()), func(_ int) Cell { return Cell{Vacant: true} })
		})
	})
}

func materialize(model sat.Model, variables *variables, modelInput ModelInput) Timetable {
	timetable := NewTimetable(len(modelInput.Sections))

	for _, section := range modelInput.Sections {
		for day := range calendar.TotalDays() {
			for interval := range calendar.TotalIntervals() {
				occupant, ok := lo.Find(lo.Range(len(section.Occupants)), func(occupant int) bool {
					return model.Value(variables.Cell(section.Id, day, interval, uint64(occupant)))
				})
				if !ok {
					log.Panicf("cell (%v, %v, %v) holds no occupant", section.Name, calendar.Days[day], calendar.Intervals[interval].Label)
				} else if uint64(occupant) == vacancy {
					continue
				}

				value := section.Occupants[occupant]
				cell := Cell{Staffed: value.Staffed, Teacher: value.Teacher}
				pair, _ := calendar.PairOf(interval)
				if flag, ok := variables.Flag(section.Id, uint64(occupant), day, pair); ok && model.Value(flag) {
					cell.Course, cell.Lab = value.Lab, true
				} else if value.HasTheory {
					cell.Course = value.Theory
				} else {
					log.Panicf("lab occupant of section \"%v\" sits outside a lab block", section.Name)
				}
				timetable[section.Id][day][interval] = cell
			}
		}
	}

	return timetable
}
