package model

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	monday uint64 = iota
	tuesday
	wednesday
	thursday
	friday
	saturday
)

// Courses: Chem Lab (0, lab), History (1), Math (2). Teachers: Ada (0), Cy (1).
func verifyInput(t *testing.T) ModelInput {
	input, err := ProcessRawRequest(RawRequest{
		Sections: []string{"S1", "S2"},
		SectionCourseTeacher: map[string]map[string]*string{
			"S1": {"Math": lo.ToPtr("Ada"), "Chem Lab": lo.ToPtr("Cy")},
			"S2": {"Math": lo.ToPtr("Ada"), "History": lo.ToPtr("Cy")},
		},
		CourseSessionsPerWeek:    map[string]uint64{"Math": 2, "History": 1},
		LabCourseSessionsPerWeek: map[string]uint64{"Chem Lab": 1},
		NumOfRooms:               1,
		NumOfLabRooms:            1,
	})
	require.Nil(t, err)
	return input
}

func staffedCell(course, teacher uint64) Cell {
	return Cell{Course: course, Staffed: true, Teacher: teacher}
}

func verifyTimetable() Timetable {
	timetable := NewTimetable(2)

	timetable[0][monday][0] = staffedCell(2, 0)
	timetable[0][tuesday][0] = staffedCell(2, 0)
	timetable[0][wednesday][2] = Cell{Course: 0, Staffed: true, Teacher: 1, Lab: true}
	timetable[0][wednesday][3] = Cell{Course: 0, Staffed: true, Teacher: 1, Lab: true}

	timetable[1][monday][1] = staffedCell(1, 1)
	timetable[1][thursday][0] = staffedCell(2, 0)
	timetable[1][friday][0] = staffedCell(2, 0)

	return timetable
}

func TestVerify(t *testing.T) {
	input := verifyInput(t)

	t.Run("Valid timetable", func(t *testing.T) {
		assert.Nil(t, verify(verifyTimetable(), input, DefaultOptions()))
	})

	scenarios := []struct {
		name   string
		mutate func(timetable Timetable)
		rule   string
	}{
		{
			name:   "Missing session",
			mutate: func(timetable Timetable) { timetable[0][tuesday][0] = Cell{Vacant: true} },
			rule:   "quota",
		},
		{
			name: "Teacher in two sections",
			mutate: func(timetable Timetable) {
				timetable[1][thursday][0] = Cell{Vacant: true}
				timetable[1][monday][0] = staffedCell(2, 0)
			},
			rule: "teacher",
		},
		{
			name: "Buffer",
			mutate: func(timetable Timetable) {
				timetable[1][thursday][0] = Cell{Vacant: true}
				timetable[1][monday][2] = staffedCell(2, 0)
			},
			rule: "buffer",
		},
		{
			name: "Two theory sessions a day",
			mutate: func(timetable Timetable) {
				timetable[0][tuesday][0] = Cell{Vacant: true}
				timetable[0][monday][4] = staffedCell(2, 0)
			},
			rule: "daily limit",
		},
		{
			name: "Saturday afternoon",
			mutate: func(timetable Timetable) {
				timetable[1][friday][0] = Cell{Vacant: true}
				timetable[1][saturday][4] = staffedCell(2, 0)
			},
			rule: "cutoff",
		},
		{
			name:   "Half a lab block",
			mutate: func(timetable Timetable) { timetable[0][wednesday][3] = Cell{Vacant: true} },
			rule:   "lab block",
		},
		{
			name:   "Unbound course",
			mutate: func(timetable Timetable) { timetable[1][monday][1] = staffedCell(0, 1) },
			rule:   "binding",
		},
		{
			name: "Classrooms",
			mutate: func(timetable Timetable) {
				timetable[1][monday][1] = Cell{Vacant: true}
				timetable[1][monday][0] = staffedCell(1, 1)
			},
			rule: "classrooms",
		},
		{
			name: "Lab teacher elsewhere that day",
			mutate: func(timetable Timetable) {
				timetable[1][monday][1] = Cell{Vacant: true}
				timetable[1][wednesday][5] = staffedCell(1, 1)
			},
			rule: "lab exclusivity",
		},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			//** Arrange
			timetable := verifyTimetable()
			scenario.mutate(timetable)

			//** Act
			err := verify(timetable, input, DefaultOptions())

			//** Assert
			require.Error(t, err)
			assert.Contains(t, err.Error(), scenario.rule+" violated")
		})
	}

	t.Run("Section scoped lab exclusivity", func(t *testing.T) {
		timetable := verifyTimetable()
		timetable[1][monday][1] = Cell{Vacant: true}
		timetable[1][wednesday][5] = staffedCell(1, 1)
		options := DefaultOptions()
		options.LabExclusivity = SectionScoped

		assert.Nil(t, verify(timetable, input, options))
	})

	t.Run("Shared room label", func(t *testing.T) {
		wide := input
		wide.Classrooms = 2
		timetable := verifyTimetable()
		timetable[1][monday][1] = Cell{Vacant: true}
		timetable[1][monday][0] = staffedCell(1, 1)
		timetable[0][monday][0].Room = "Room 1"
		timetable[1][monday][0].Room = "Room 1"

		err := verify(timetable, wide, DefaultOptions())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rooms violated")
	})
}

func TestCompactness(t *testing.T) {
	scenarios := []struct {
		occupied []uint64 // Occupied intervals on monday
		penalty  int
	}{
		{occupied: []uint64{}, penalty: 0},
		{occupied: []uint64{3}, penalty: 0},
		{occupied: []uint64{0, 1, 2}, penalty: 0},
		{occupied: []uint64{0, 2}, penalty: 1},
		{occupied: []uint64{0, 3, 5}, penalty: 9},
		{occupied: []uint64{0, 5}, penalty: 16},
	}

	for _, scenario := range scenarios {
		//** Arrange
		timetable := NewTimetable(1)
		for _, interval := range scenario.occupied {
			timetable[0][monday][interval] = staffedCell(0, 0)
		}

		//** Act
		penalty := Compactness(timetable)

		//** Assert
		assert.Equal(t, scenario.penalty, penalty, "occupied %v", scenario.occupied)
	}

	// Days add up
	timetable := NewTimetable(2)
	timetable[0][monday][0], timetable[0][monday][2] = staffedCell(0, 0), staffedCell(0, 0)
	timetable[1][friday][1], timetable[1][friday][4] = staffedCell(0, 0), staffedCell(0, 0)
	assert.Equal(t, 1+4, Compactness(timetable))
}
