package model

type predicateEvaluator interface {
	// Checks whether the occupant is a teacher (as opposed to the vacancy or an unstaffed course)
	Staffed(section, occupant uint64) bool

	// Returns the occupant through which the teacher is bound to the section, if any
	OccupantOf(section, teacher uint64) (uint64, bool)

	// Checks whether the occupant teaches a lab course to the section
	RunsLab(section, occupant uint64) bool

	// Weekly theory sessions the occupant owes the section
	TheorySessions(section, occupant uint64) uint64

	// Weekly lab sessions (each one a lab pair) the occupant owes the section
	LabSessions(section, occupant uint64) uint64

	// Sections the teacher is bound to, in ascending order
	SectionsOf(teacher uint64) []uint64

	// Number of cells the section occupies during the week
	RequiredCells(section uint64) uint64
}
