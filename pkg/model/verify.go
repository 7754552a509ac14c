package model

import (
	"fmt"

	"github.com/limaJavier/weekly-timetabling/internal/calendar"
	"github.com/samber/lo"
)

type violationError struct {
	rule   string
	detail string
}

func (err violationError) Error() string {
	return fmt.Sprintf("%v violated: %v", err.rule, err.detail)
}

func violation(rule, format string, args ...any) error {
	return violationError{rule: rule, detail: fmt.Sprintf(format, args...)}
}

// session is a non-vacant cell seen from its teacher's perspective
type session struct {
	section  uint64
	interval uint64
	lab      bool
}

// verify checks every hard rule on a materialized timetable without looking at the encoding
func verify(timetable Timetable, modelInput ModelInput, options Options) error {
	if len(timetable) != len(modelInput.Sections) {
		return violation("shape", "%d sections expected, %d found", len(modelInput.Sections), len(timetable))
	}

	//** Initialize teacher-assistance: teacher -> day -> sessions
	teacherAssistance := make(map[uint64][][]session)
	for _, teacher := range modelInput.Teachers {
		teacherAssistance[teacher.Id] = make([][]session, calendar.TotalDays())
	}

	for _, section := range modelInput.Sections {
		days := timetable[section.Id]
		if uint64(len(days)) != calendar.TotalDays() || lo.SomeBy(days, func(intervals []Cell) bool { return uint64(len(intervals)) != calendar.TotalIntervals() }) {
			return violation("shape", "section \"%v\" is not a full week", section.Name)
		}

		theorySessions := make(map[uint64]uint64)
		labSessions := make(map[uint64]uint64)
		occupied := uint64(0)

		for day := range calendar.TotalDays() {
			dailyTheory := make(map[uint64]uint64)

			for interval := range calendar.TotalIntervals() {
				cell := days[day][interval]
				where := fmt.Sprintf("section \"%v\" on %v %v", section.Name, calendar.Days[day], calendar.Intervals[interval].Label)
				if cell.Vacant {
					continue
				}
				occupied++

				if calendar.Disabled(day, interval) {
					return violation("cutoff", "%v is occupied", where)
				}

				occupant, ok := occupantOf(section, cell)
				if !ok {
					return violation("binding", "%v holds a course and teacher the section does not bind", where)
				}

				if cell.Lab {
					pair, _ := calendar.PairOf(interval)
					intervals := calendar.LabPairs[pair]
					other := days[day][intervals[0]]
					if interval == intervals[0] {
						other = days[day][intervals[1]]
					}
					if !other.Lab || other.Course != cell.Course || other.Teacher != cell.Teacher {
						return violation("lab block", "%v is half of a lab block", where)
					}
					if interval == intervals[0] {
						labSessions[cell.Course]++
						if err := verifyLabExclusivity(timetable, modelInput, section, occupant, day, intervals, options); err != nil {
							return err
						}
					}
				} else {
					theorySessions[cell.Course]++
					if occupant.Staffed {
						dailyTheory[occupant.Teacher]++
						if dailyTheory[occupant.Teacher] > 1 {
							return violation("daily limit", "teacher \"%v\" gives more than one theory session to section \"%v\" on %v", modelInput.Teachers[occupant.Teacher].Name, section.Name, calendar.Days[day])
						}
					}
				}

				if occupant.Staffed {
					teacherAssistance[occupant.Teacher][day] = append(teacherAssistance[occupant.Teacher][day], session{section: section.Id, interval: interval, lab: cell.Lab})
				}
			}
		}

		//** Check quotas
		required := uint64(0)
		for _, occupant := range section.Occupants {
			if occupant.HasTheory {
				course := modelInput.Courses[occupant.Theory]
				required += course.Sessions
				if theorySessions[course.Id] != course.Sessions {
					return violation("quota", "section \"%v\" has %d sessions of \"%v\", %d required", section.Name, theorySessions[course.Id], course.Name, course.Sessions)
				}
			}
			if occupant.HasLab {
				course := modelInput.Courses[occupant.Lab]
				required += 2 * course.Sessions
				if labSessions[course.Id] != course.Sessions {
					return violation("quota", "section \"%v\" has %d lab blocks of \"%v\", %d required", section.Name, labSessions[course.Id], course.Name, course.Sessions)
				}
			}
		}
		if occupied != required {
			return violation("occupancy", "section \"%v\" occupies %d cells, %d required", section.Name, occupied, required)
		}
	}

	//** Check teachers
	conflictingPairs := calendar.ConflictingPairs()
	for teacher, days := range teacherAssistance {
		name := modelInput.Teachers[teacher].Name
		for day, sessions := range days {
			for i := range sessions {
				for j := i + 1; j < len(sessions); j++ {
					first, second := sessions[i], sessions[j]
					if first.interval == second.interval {
						return violation("teacher", "teacher \"%v\" is in two sections on %v %v", name, calendar.Days[day], calendar.Intervals[first.interval].Label)
					}

					low, high := min(first.interval, second.interval), max(first.interval, second.interval)
					if !lo.Contains(conflictingPairs, [2]uint64{low, high}) {
						continue
					}
					_, labPair := calendar.IsLabPair(low, high)
					if first.section == second.section && first.lab && second.lab && labPair {
						continue
					}
					return violation("buffer", "teacher \"%v\" has sessions at %v and %v on %v", name, calendar.Intervals[low].Label, calendar.Intervals[high].Label, calendar.Days[day])
				}
			}
		}
	}

	//** Check rooms
	for day := range calendar.TotalDays() {
		for interval := range calendar.TotalIntervals() {
			general := lo.Filter(timetable, func(days [][]Cell, _ int) bool {
				return !days[day][interval].Vacant && !days[day][interval].Lab
			})
			if uint64(len(general)) > modelInput.Classrooms {
				return violation("classrooms", "%d general sessions on %v %v for %d classrooms", len(general), calendar.Days[day], calendar.Intervals[interval].Label, modelInput.Classrooms)
			}
			if err := verifyRoomLabels(general, day, interval); err != nil {
				return err
			}
		}
		for _, intervals := range calendar.LabPairs {
			blocks := lo.Filter(timetable, func(days [][]Cell, _ int) bool {
				return days[day][intervals[0]].Lab && days[day][intervals[1]].Lab
			})
			if uint64(len(blocks)) > modelInput.LabRooms {
				return violation("lab rooms", "%d lab blocks on %v %v for %d lab rooms", len(blocks), calendar.Days[day], calendar.Intervals[intervals[0]].Label, modelInput.LabRooms)
			}
			if err := verifyRoomLabels(blocks, day, intervals[0]); err != nil {
				return err
			}
		}
	}

	return nil
}

// occupantOf finds the occupant of the section that can account for the cell
func occupantOf(section Section, cell Cell) (Occupant, bool) {
	return lo.Find(section.Occupants, func(occupant Occupant) bool {
		if occupant.Vacant || occupant.Staffed != cell.Staffed || (cell.Staffed && occupant.Teacher != cell.Teacher) {
			return false
		}
		if cell.Lab {
			return occupant.HasLab && occupant.Lab == cell.Course
		}
		return occupant.HasTheory && occupant.Theory == cell.Course
	})
}

func verifyLabExclusivity(timetable Timetable, modelInput ModelInput, section Section, occupant Occupant, day uint64, intervals [2]uint64, options Options) error {
	for interval := range calendar.TotalIntervals() {
		if interval == intervals[0] || interval == intervals[1] {
			continue
		}
		cell := timetable[section.Id][day][interval]
		if cell.Vacant || cell.Staffed != occupant.Staffed {
			continue
		}
		if (occupant.Staffed && cell.Teacher == occupant.Teacher) || (!occupant.Staffed && cell.Course == occupant.Lab) {
			return violation("lab exclusivity", "section \"%v\" has another session of its lab occupant on %v", section.Name, calendar.Days[day])
		}
	}

	if options.LabExclusivity != DayExclusive || !occupant.Staffed {
		return nil
	}
	for _, other := range modelInput.Sections {
		if other.Id == section.Id {
			continue
		}
		if lo.SomeBy(timetable[other.Id][day], func(cell Cell) bool {
			return !cell.Vacant && cell.Staffed && cell.Teacher == occupant.Teacher
		}) {
			return violation("lab exclusivity", "teacher \"%v\" runs a lab block in section \"%v\" and teaches section \"%v\" on %v", modelInput.Teachers[occupant.Teacher].Name, section.Name, other.Name, calendar.Days[day])
		}
	}
	return nil
}

// verifyRoomLabels checks that labelled cells sharing a time do not share a room
func verifyRoomLabels(sections [][][]Cell, day, interval uint64) error {
	rooms := lo.FilterMap(sections, func(days [][]Cell, _ int) (string, bool) {
		room := days[day][interval].Room
		return room, room != ""
	})
	if duplicates := lo.FindDuplicates(rooms); len(duplicates) > 0 {
		return violation("rooms", "room \"%v\" hosts two sections on %v %v", duplicates[0], calendar.Days[day], calendar.Intervals[interval].Label)
	}
	return nil
}

// Compactness returns the sum over section/days of the squared number of internal idle intervals
func Compactness(timetable Timetable) int {
	penalty := 0
	for _, days := range timetable {
		for _, cells := range days {
			first := lo.IndexOf(lo.Map(cells, func(cell Cell, _ int) bool { return cell.Vacant }), false)
			last := lo.LastIndexOf(lo.Map(cells, func(cell Cell, _ int) bool { return cell.Vacant }), false)
			if first < 0 {
				continue
			}
			idle := lo.CountBy(cells[first:last+1], func(cell Cell) bool { return cell.Vacant })
			penalty += idle * idle
		}
	}
	return penalty
}
