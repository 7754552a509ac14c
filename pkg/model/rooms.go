package model

import (
	"github.com/limaJavier/weekly-timetabling/internal/calendar"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type unassignableError struct {
	day      string
	interval string
}

func (err unassignableError) Error() string {
	return "not all sessions can be assigned a room on " + err.day + " " + err.interval
}

// assignRooms labels every general cell with a classroom and every lab block with a lab room
func assignRooms(timetable Timetable, modelInput ModelInput) error {
	for day := range calendar.TotalDays() {
		for interval := range calendar.TotalIntervals() {
			sections := lo.Filter(lo.Range(len(timetable)), func(section int, _ int) bool {
				cell := timetable[section][day][interval]
				return !cell.Vacant && !cell.Lab
			})

			rooms, err := matchRooms(sections, modelInput.RoomNames)
			if err != nil {
				return unassignableError{day: calendar.Days[day], interval: calendar.Intervals[interval].Label}
			}
			for section, room := range rooms {
				timetable[section][day][interval].Room = room
			}
		}

		for _, intervals := range calendar.LabPairs {
			sections := lo.Filter(lo.Range(len(timetable)), func(section int, _ int) bool {
				first, second := timetable[section][day][intervals[0]], timetable[section][day][intervals[1]]
				return first.Lab && second.Lab
			})

			rooms, err := matchRooms(sections, modelInput.LabRoomNames)
			if err != nil {
				return unassignableError{day: calendar.Days[day], interval: calendar.Intervals[intervals[0]].Label}
			}
			for section, room := range rooms {
				timetable[section][day][intervals[0]].Room = room
				timetable[section][day][intervals[1]].Room = room
			}
		}
	}

	return nil
}

// matchRooms finds a maximum matching between sections and rooms, failing unless every section gets one
func matchRooms(sections []int, rooms []string) (map[int]string, error) {
	if len(sections) == 0 {
		return map[int]string{}, nil
	}

	// Every room can host every section; room/section compatibility would narrow this predicate
	neighbors := func(_ any, _ any) (bool, error) {
		return true, nil
	}

	sectionsAny, roomsAny := lo.Map(sections, func(section int, _ int) any { return section }), lo.Map(rooms, func(room string, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(sectionsAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching is a maximum one
	if len(matching) < len(sections) {
		return nil, unassignableError{}
	}

	assignments := make(map[int]string, len(sections))
	for _, edge := range matching {
		section, room := sections[edge.Node1], rooms[edge.Node2-len(sections)]
		assignments[section] = room
	}
	return assignments, nil
}
