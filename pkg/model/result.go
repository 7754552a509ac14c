package model

import (
	"context"

	"github.com/limaJavier/weekly-timetabling/internal/calendar"
	"github.com/limaJavier/weekly-timetabling/pkg/sat"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	InfeasibleMessage = "No feasible timetable found."
	TimeoutMessage    = "No feasible timetable found within the time limit."
)

type ResultCell struct {
	Course  string `json:"course"`
	Teacher string `json:"teacher"`
	Room    string `json:"room,omitempty"`
}

type Result struct {
	Status     string                                      `json:"status"`
	Message    string                                      `json:"message,omitempty"`
	Timetable  map[string]map[string]map[string]ResultCell `json:"timetable,omitempty"`
	Statistics *Statistics                                 `json:"statistics,omitempty"`
}

// ResultRow is one cell of a result in tabular form
type ResultRow struct {
	Section  string `csv:"section"`
	Day      string `csv:"day"`
	Interval string `csv:"interval"`
	Course   string `csv:"course"`
	Teacher  string `csv:"teacher"`
	Room     string `csv:"room"`
	Lab      bool   `csv:"lab"`
}

// Schedule validates the request, solves it and renders the outcome. Only malformed requests and
// solver failures are returned as errors; an unschedulable request yields a failed result.
func Schedule(ctx context.Context, rawRequest RawRequest, solver sat.SATSolver, options Options) (Result, error) {
	modelInput, err := ProcessRawRequest(rawRequest)
	if err != nil {
		return Result{}, err
	}

	timetabler := NewCompactTimetabler(solver, options)
	timetable, statistics, err := timetabler.Build(ctx, modelInput)
	if err != nil {
		return Result{}, err
	} else if timetable == nil {
		message := InfeasibleMessage
		if statistics.Outcome == sat.Unknown {
			message = TimeoutMessage
		}
		return Result{Status: StatusFailed, Message: message, Statistics: &statistics}, nil
	}

	result := ToResult(timetable, modelInput)
	result.Statistics = &statistics
	return result, nil
}

// ToResult renders a timetable as section -> day -> interval -> cell, vacant cells included
func ToResult(timetable Timetable, modelInput ModelInput) Result {
	result := Result{
		Status:    StatusSuccess,
		Timetable: make(map[string]map[string]map[string]ResultCell),
	}

	for _, section := range modelInput.Sections {
		result.Timetable[section.Name] = make(map[string]map[string]ResultCell)
		for day := range calendar.TotalDays() {
			intervals := make(map[string]ResultCell)
			for interval := range calendar.TotalIntervals() {
				intervals[calendar.Intervals[interval].Label] = renderCell(timetable[section.Id][day][interval], modelInput)
			}
			result.Timetable[section.Name][calendar.Days[day]] = intervals
		}
	}

	return result
}

// ToRows flattens a timetable in section, day and interval order
func ToRows(timetable Timetable, modelInput ModelInput) []ResultRow {
	rows := make([]ResultRow, 0, len(modelInput.Sections)*int(calendar.TotalDays()*calendar.TotalIntervals()))
	for _, section := range modelInput.Sections {
		for day := range calendar.TotalDays() {
			for interval := range calendar.TotalIntervals() {
				cell := timetable[section.Id][day][interval]
				rendered := renderCell(cell, modelInput)
				rows = append(rows, ResultRow{
					Section:  section.Name,
					Day:      calendar.Days[day],
					Interval: calendar.Intervals[interval].Label,
					Course:   rendered.Course,
					Teacher:  rendered.Teacher,
					Room:     rendered.Room,
					Lab:      cell.Lab,
				})
			}
		}
	}
	return rows
}

func renderCell(cell Cell, modelInput ModelInput) ResultCell {
	if cell.Vacant {
		return ResultCell{Course: VacancyCourse}
	}
	rendered := ResultCell{Course: modelInput.Courses[cell.Course].Name, Room: cell.Room}
	if cell.Staffed {
		rendered.Teacher = modelInput.Teachers[cell.Teacher].Name
	}
	return rendered
}
