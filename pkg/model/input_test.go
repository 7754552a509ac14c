package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRequest() RawRequest {
	return RawRequest{
		Sections: []string{"S1", "S2"},
		SectionCourseTeacher: map[string]map[string]*string{
			"S1": {"Math": lo.ToPtr("Ada"), "Lab": lo.ToPtr("Ada"), "Art": nil, VacancyCourse: nil},
			"S2": {"Math": lo.ToPtr("Ada"), "History": lo.ToPtr("Bea")},
		},
		CourseSessionsPerWeek:    map[string]uint64{"Math": 2, "Art": 1, "History": 3},
		LabCourseSessionsPerWeek: map[string]uint64{"Lab": 1},
		NumOfRooms:               2,
		NumOfLabRooms:            1,
	}
}

func TestProcessRawRequest(t *testing.T) {
	//** Arrange
	request := baseRequest()

	//** Act
	input, err := ProcessRawRequest(request)

	//** Assert
	require.Nil(t, err)

	expectedCourses := []Course{
		{Id: 0, Name: "Art", Kind: Theory, Sessions: 1},
		{Id: 1, Name: "History", Kind: Theory, Sessions: 3},
		{Id: 2, Name: "Lab", Kind: Lab, Sessions: 1},
		{Id: 3, Name: "Math", Kind: Theory, Sessions: 2},
	}
	if diff := cmp.Diff(expectedCourses, input.Courses); diff != "" {
		t.Errorf("courses mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []Teacher{{Id: 0, Name: "Ada"}, {Id: 1, Name: "Bea"}}, input.Teachers)

	// Vacancy, then Ada teaching both Math and Lab, then the unstaffed Art course
	expectedS1 := Section{
		Id:   0,
		Name: "S1",
		Occupants: []Occupant{
			{Vacant: true},
			{Staffed: true, Teacher: 0, Theory: 3, HasTheory: true, Lab: 2, HasLab: true},
			{Theory: 0, HasTheory: true},
		},
		Teachers: map[uint64]uint64{0: 1},
	}
	if diff := cmp.Diff(expectedS1, input.Sections[0]); diff != "" {
		t.Errorf("section mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[uint64]uint64{0: 1, 1: 2}, input.Sections[1].Teachers)

	assert.Equal(t, []string{"Room 1", "Room 2"}, input.RoomNames)
	assert.Equal(t, []string{"Lab 1"}, input.LabRoomNames)
}

func TestProcessRawRequestAssignments(t *testing.T) {
	request := baseRequest()
	request.Sections = append(request.Sections, "S3")
	request.Assignments = []RawAssignment{
		{Section: "S3", Course: "History", Teacher: lo.ToPtr("Bea")},
		{Section: "S2", Course: "Math", Teacher: lo.ToPtr("Ada")}, // Repeats the map, which is allowed
	}

	input, err := ProcessRawRequest(request)

	require.Nil(t, err)
	require.Len(t, input.Sections, 3)
	assert.Equal(t, "S3", input.Sections[2].Name)
	assert.Equal(t, map[uint64]uint64{1: 1}, input.Sections[2].Teachers)
}

func TestProcessRawRequestValidation(t *testing.T) {
	scenarios := []struct {
		name   string
		mutate func(request *RawRequest)
		field  string
	}{
		{
			name:   "No sections",
			mutate: func(request *RawRequest) { request.Sections = nil },
			field:  "sections",
		},
		{
			name:   "Duplicate sections",
			mutate: func(request *RawRequest) { request.Sections = []string{"S1", "S1"} },
			field:  "sections",
		},
		{
			name:   "Empty section name",
			mutate: func(request *RawRequest) { request.Sections = []string{"S1", ""} },
			field:  "sections[1]",
		},
		{
			name:   "Missing requirement",
			mutate: func(request *RawRequest) { delete(request.CourseSessionsPerWeek, "History") },
			field:  "section_course_teacher.S2.History",
		},
		{
			name:   "Theory and lab at once",
			mutate: func(request *RawRequest) { request.CourseSessionsPerWeek["Lab"] = 2 },
			field:  "lab_course_sessions_per_week.Lab",
		},
		{
			name: "Contradictory binding",
			mutate: func(request *RawRequest) {
				request.Assignments = []RawAssignment{{Section: "S2", Course: "History", Teacher: lo.ToPtr("Cid")}}
			},
			field: "assignments[0]",
		},
		{
			name: "Unknown section",
			mutate: func(request *RawRequest) {
				request.SectionCourseTeacher["S9"] = map[string]*string{"Math": lo.ToPtr("Ada")}
			},
			field: "section_course_teacher.S9",
		},
		{
			name:   "Section without courses",
			mutate: func(request *RawRequest) { delete(request.SectionCourseTeacher, "S2") },
			field:  "section_course_teacher.S2",
		},
		{
			name: "Ambiguous teacher",
			mutate: func(request *RawRequest) {
				request.SectionCourseTeacher["S2"]["History"] = lo.ToPtr("Ada")
			},
			field: "section_course_teacher.S2",
		},
		{
			name:   "Room names mismatch",
			mutate: func(request *RawRequest) { request.RoomNames = []string{"A"} },
			field:  "room_names",
		},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			//** Arrange
			request := baseRequest()
			scenario.mutate(&request)

			//** Act
			_, err := ProcessRawRequest(request)

			//** Assert
			var validationError *ValidationError
			require.True(t, errors.As(err, &validationError), "expected a validation error, got %v", err)
			assert.Equal(t, scenario.field, validationError.Field)
		})
	}
}

func TestRequestFromJson(t *testing.T) {
	//** Act
	request, err := RequestFromJson("testdata/feasible/two_sections.json")

	//** Assert
	require.Nil(t, err)
	assert.Equal(t, []string{"CS-1A", "CS-1B"}, request.Sections)
	assert.Nil(t, request.SectionCourseTeacher["CS-1B"]["Chemistry"])
	assert.Equal(t, "Carol", *request.SectionCourseTeacher["CS-1A"]["Programming Lab"])
	assert.Equal(t, uint64(3), request.CourseSessionsPerWeek["Calculus"])
	assert.Equal(t, uint64(1), request.NumOfLabRooms)
	assert.Equal(t, []string{"Lab-1"}, request.LabRoomNames)

	_, err = RequestFromJson("testdata/missing.json")
	assert.Error(t, err)

	_, err = RequestFromBytes([]byte(`{"sections": "not a list"}`))
	assert.Error(t, err)
}
