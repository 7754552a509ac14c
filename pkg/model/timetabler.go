package model

import (
	"context"
	"time"

	"github.com/limaJavier/weekly-timetabling/pkg/sat"
)

type Timetabler interface {
	// Build returns a nil timetable (and a nil error) when no timetable was found; statistics.Outcome tells why
	Build(
		ctx context.Context,
		modelInput ModelInput,
	) (timetable Timetable, statistics Statistics, err error)

	Verify(
		timetable Timetable,
		modelInput ModelInput,
	) error
}

// LabExclusivity decides how far an active lab block keeps its teacher away from other sessions that day
type LabExclusivity int

const (
	DayExclusive  LabExclusivity = iota // Every section of the teacher
	SectionScoped                       // Only the section running the lab
)

func (exclusivity LabExclusivity) String() string {
	if exclusivity == SectionScoped {
		return "section"
	}
	return "day"
}

type Options struct {
	Timeout        time.Duration // 0 means no time limit
	Workers        int
	Seed           uint64 // 0 draws a random seed
	MaxSteps       int    // Branch-and-bound solver calls; 0 means unbounded
	LabExclusivity LabExclusivity
	Compactness    bool // Minimize idle gaps; otherwise stop at the first timetable
}

func DefaultOptions() Options {
	return Options{
		Timeout:        30 * time.Second,
		Workers:        1,
		LabExclusivity: DayExclusive,
		Compactness:    true,
	}
}

type Statistics struct {
	RunID     string        `json:"run_id" csv:"run_id"`
	Seed      uint64        `json:"seed" csv:"seed"`
	Variables uint64        `json:"variables" csv:"variables"`
	Clauses   uint64        `json:"clauses" csv:"clauses"`
	Outcome   sat.Outcome   `json:"outcome" csv:"outcome"`
	Steps     int           `json:"steps" csv:"steps"`
	Penalty   int           `json:"penalty" csv:"penalty"`
	Duration  time.Duration `json:"duration" csv:"-"`
}
