package model

import (
	"log"

	"github.com/samber/lo"
)

type predicateEvaluatorStandard struct {
	modelInput ModelInput
	sectionsOf map[uint64][]uint64 // Sections per teacher
}

func newPredicateEvaluator(modelInput ModelInput) predicateEvaluator {
	evaluator := predicateEvaluatorStandard{
		modelInput: modelInput,
		sectionsOf: make(map[uint64][]uint64),
	}

	// Sections are visited in ascending order so every list comes out sorted
	for _, section := range modelInput.Sections {
		for teacher := range section.Teachers {
			evaluator.sectionsOf[teacher] = append(evaluator.sectionsOf[teacher], section.Id)
		}
	}

	return &evaluator
}

func (evaluator *predicateEvaluatorStandard) occupant(section, occupant uint64) Occupant {
	occupants := evaluator.modelInput.Sections[section].Occupants
	if occupant >= uint64(len(occupants)) {
		log.Panicf("occupant %d is outside the domain of section \"%v\"", occupant, evaluator.modelInput.Sections[section].Name)
	}
	return occupants[occupant]
}

func (evaluator *predicateEvaluatorStandard) Staffed(section, occupant uint64) bool {
	return evaluator.occupant(section, occupant).Staffed
}

func (evaluator *predicateEvaluatorStandard) OccupantOf(section, teacher uint64) (uint64, bool) {
	occupant, ok := evaluator.modelInput.Sections[section].Teachers[teacher]
	return occupant, ok
}

func (evaluator *predicateEvaluatorStandard) RunsLab(section, occupant uint64) bool {
	return evaluator.occupant(section, occupant).HasLab
}

func (evaluator *predicateEvaluatorStandard) TheorySessions(section, occupant uint64) uint64 {
	value := evaluator.occupant(section, occupant)
	if !value.HasTheory {
		return 0
	}
	return evaluator.modelInput.Courses[value.Theory].Sessions
}

func (evaluator *predicateEvaluatorStandard) LabSessions(section, occupant uint64) uint64 {
	value := evaluator.occupant(section, occupant)
	if !value.HasLab {
		return 0
	}
	return evaluator.modelInput.Courses[value.Lab].Sessions
}

func (evaluator *predicateEvaluatorStandard) SectionsOf(teacher uint64) []uint64 {
	return evaluator.sectionsOf[teacher]
}

func (evaluator *predicateEvaluatorStandard) RequiredCells(section uint64) uint64 {
	occupants := evaluator.modelInput.Sections[section].Occupants
	return lo.SumBy(lo.Range(len(occupants)), func(occupant int) uint64 {
		return evaluator.TheorySessions(section, uint64(occupant)) + 2*evaluator.LabSessions(section, uint64(occupant))
	})
}
