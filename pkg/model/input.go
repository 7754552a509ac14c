package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// VacancyCourse is the course key the request format reserves for an empty cell
const VacancyCourse = "None"

type RawAssignment struct {
	Section string  `mapstructure:"section" json:"section" validate:"required"`
	Course  string  `mapstructure:"course" json:"course" validate:"required"`
	Teacher *string `mapstructure:"teacher" json:"teacher"`
}

type RawRequest struct {
	Sections                 []string                      `mapstructure:"sections" json:"sections" validate:"required,min=1,unique,dive,required"`
	SectionCourseTeacher     map[string]map[string]*string `mapstructure:"section_course_teacher" json:"section_course_teacher"`
	Assignments              []RawAssignment               `mapstructure:"assignments" json:"assignments,omitempty" validate:"dive"`
	CourseSessionsPerWeek    map[string]uint64             `mapstructure:"course_sessions_per_week" json:"course_sessions_per_week" validate:"dive,keys,required,endkeys,max=34"`
	LabCourseSessionsPerWeek map[string]uint64             `mapstructure:"lab_course_sessions_per_week" json:"lab_course_sessions_per_week" validate:"dive,keys,required,endkeys,max=17"`
	NumOfRooms               uint64                        `mapstructure:"num_of_rooms" json:"num_of_rooms"`
	NumOfLabRooms            uint64                        `mapstructure:"num_of_lab_rooms" json:"num_of_lab_rooms"`
	RoomNames                []string                      `mapstructure:"room_names" json:"room_names,omitempty" validate:"unique,dive,required"`
	LabRoomNames             []string                      `mapstructure:"lab_room_names" json:"lab_room_names,omitempty" validate:"unique,dive,required"`
}

type CourseKind int

const (
	Theory CourseKind = iota
	Lab
)

func (kind CourseKind) String() string {
	if kind == Lab {
		return "lab"
	}
	return "theory"
}

type Course struct {
	Id       uint64
	Name     string
	Kind     CourseKind
	Sessions uint64
}

type Teacher struct {
	Id   uint64
	Name string
}

// Occupant is one value of a cell's domain: the vacancy, a teacher with the courses it is bound to
// in the section, or a course nobody teaches
type Occupant struct {
	Vacant    bool
	Staffed   bool
	Teacher   uint64
	Theory    uint64
	HasTheory bool
	Lab       uint64
	HasLab    bool
}

type Section struct {
	Id        uint64
	Name      string
	Occupants []Occupant        // Occupants[0] is always the vacancy
	Teachers  map[uint64]uint64 // Teacher id -> occupant index
}

type ModelInput struct {
	Sections     []Section
	Courses      []Course
	Teachers     []Teacher
	Classrooms   uint64
	LabRooms     uint64
	RoomNames    []string
	LabRoomNames []string
}

type ValidationError struct {
	Field  string
	Reason string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %v: %v", err.Field, err.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func RequestFromJson(file string) (RawRequest, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return RawRequest{}, err
	}
	return RequestFromBytes(bytes)
}

func RequestFromBytes(bytes []byte) (RawRequest, error) {
	var requestJson map[string]any
	if err := json.Unmarshal(bytes, &requestJson); err != nil {
		return RawRequest{}, err
	}

	var rawRequest RawRequest
	if err := mapstructure.Decode(requestJson, &rawRequest); err != nil {
		return RawRequest{}, fmt.Errorf("cannot decode request: %v", err)
	}
	return rawRequest, nil
}

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their request key rather than by their Go name
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func ProcessRawRequest(rawRequest RawRequest) (ModelInput, error) {
	if err := requestValidator.Struct(rawRequest); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			fieldError := fieldErrors[0]
			field := strings.TrimPrefix(fieldError.Namespace(), "RawRequest.")
			return ModelInput{}, invalid(field, "failed on the \"%v\" rule", fieldError.Tag())
		}
		return ModelInput{}, err
	}

	input := ModelInput{
		Classrooms: rawRequest.NumOfRooms,
		LabRooms:   rawRequest.NumOfLabRooms,
	}

	//** Manage rooms
	var err error
	if input.RoomNames, err = roomNames("room_names", rawRequest.RoomNames, rawRequest.NumOfRooms, "Room"); err != nil {
		return ModelInput{}, err
	}
	if input.LabRoomNames, err = roomNames("lab_room_names", rawRequest.LabRoomNames, rawRequest.NumOfLabRooms, "Lab"); err != nil {
		return ModelInput{}, err
	}

	//** Manage courses
	for name := range rawRequest.LabCourseSessionsPerWeek {
		if _, ok := rawRequest.CourseSessionsPerWeek[name]; ok {
			return ModelInput{}, invalid("lab_course_sessions_per_week."+name, "course is also declared as a theory course")
		}
	}
	courseNames := append(lo.Keys(rawRequest.CourseSessionsPerWeek), lo.Keys(rawRequest.LabCourseSessionsPerWeek)...)
	courseNames = lo.Without(courseNames, VacancyCourse)
	slices.Sort(courseNames)
	courseIds := make(map[string]uint64)
	for id, name := range courseNames {
		course := Course{Id: uint64(id), Name: name, Kind: Theory, Sessions: rawRequest.CourseSessionsPerWeek[name]}
		if sessions, ok := rawRequest.LabCourseSessionsPerWeek[name]; ok {
			course.Kind, course.Sessions = Lab, sessions
		}
		input.Courses = append(input.Courses, course)
		courseIds[name] = course.Id
	}

	//** Manage bindings
	bindings, err := collectBindings(rawRequest)
	if err != nil {
		return ModelInput{}, err
	}
	for _, section := range rawRequest.Sections {
		for course := range bindings[section] {
			if _, ok := courseIds[course]; !ok {
				return ModelInput{}, invalid(fmt.Sprintf("section_course_teacher.%v.%v", section, course), "course has no weekly session requirement")
			}
		}
	}

	//** Manage teachers
	teacherNames := lo.Uniq(lo.FlatMap(lo.Values(bindings), func(courses map[string]string, _ int) []string {
		return lo.Without(lo.Values(courses), "")
	}))
	slices.Sort(teacherNames)
	teacherIds := make(map[string]uint64)
	for id, name := range teacherNames {
		input.Teachers = append(input.Teachers, Teacher{Id: uint64(id), Name: name})
		teacherIds[name] = uint64(id)
	}

	//** Manage sections
	for id, name := range rawRequest.Sections {
		section, err := buildSection(uint64(id), name, bindings[name], input.Courses, courseIds, teacherIds)
		if err != nil {
			return ModelInput{}, err
		}
		input.Sections = append(input.Sections, section)
	}

	return input, nil
}

// collectBindings merges the section map with the assignment list into section -> course -> teacher ("" when unstaffed)
func collectBindings(rawRequest RawRequest) (map[string]map[string]string, error) {
	bindings := make(map[string]map[string]string)
	for _, section := range rawRequest.Sections {
		if _, ok := rawRequest.SectionCourseTeacher[section]; !ok && !lo.ContainsBy(rawRequest.Assignments, func(assignment RawAssignment) bool {
			return assignment.Section == section
		}) {
			return nil, invalid("section_course_teacher."+section, "section has no course map")
		}
		bindings[section] = make(map[string]string)
	}

	bind := func(field, section, course string, teacher *string) error {
		if course == VacancyCourse {
			return nil
		}
		if _, ok := bindings[section]; !ok {
			return invalid(field, "unknown section \"%v\"", section)
		}
		name := lo.FromPtr(teacher)
		if previous, ok := bindings[section][course]; ok && previous != name {
			return invalid(field, "course \"%v\" is bound to both \"%v\" and \"%v\"", course, previous, name)
		}
		bindings[section][course] = name
		return nil
	}

	// Map iteration order is random, sort keys so that errors are deterministic
	sections := lo.Keys(rawRequest.SectionCourseTeacher)
	slices.Sort(sections)
	for _, section := range sections {
		courses := rawRequest.SectionCourseTeacher[section]
		courseNames := lo.Keys(courses)
		slices.Sort(courseNames)
		for _, course := range courseNames {
			if err := bind("section_course_teacher."+section, section, course, courses[course]); err != nil {
				return nil, err
			}
		}
	}
	for i, assignment := range rawRequest.Assignments {
		if err := bind(fmt.Sprintf("assignments[%d]", i), assignment.Section, assignment.Course, assignment.Teacher); err != nil {
			return nil, err
		}
	}

	return bindings, nil
}

func buildSection(id uint64, name string, courses map[string]string, allCourses []Course, courseIds, teacherIds map[string]uint64) (Section, error) {
	section := Section{
		Id:        id,
		Name:      name,
		Occupants: []Occupant{{Vacant: true}},
		Teachers:  make(map[uint64]uint64),
	}

	staffed := make(map[uint64]*Occupant)
	unstaffed := make([]Occupant, 0)

	courseNames := lo.Keys(courses)
	slices.Sort(courseNames)
	for _, courseName := range courseNames {
		course := allCourses[courseIds[courseName]]
		teacherName := courses[courseName]

		if teacherName == "" {
			if course.Sessions == 0 {
				continue
			}
			occupant := Occupant{}
			if course.Kind == Lab {
				occupant.Lab, occupant.HasLab = course.Id, true
			} else {
				occupant.Theory, occupant.HasTheory = course.Id, true
			}
			unstaffed = append(unstaffed, occupant)
			continue
		}

		teacher := teacherIds[teacherName]
		occupant, ok := staffed[teacher]
		if !ok {
			occupant = &Occupant{Staffed: true, Teacher: teacher}
			staffed[teacher] = occupant
		}

		field := "section_course_teacher." + name
		switch {
		case course.Kind == Lab && occupant.HasLab:
			return Section{}, invalid(field, "teacher \"%v\" is bound to more than one lab course", teacherName)
		case course.Kind == Theory && occupant.HasTheory:
			return Section{}, invalid(field, "teacher \"%v\" is bound to more than one theory course", teacherName)
		case course.Kind == Lab:
			occupant.Lab, occupant.HasLab = course.Id, true
		default:
			occupant.Theory, occupant.HasTheory = course.Id, true
		}
	}

	// Teacher ids follow name order, so this keeps occupants sorted by teacher name
	teachers := lo.Keys(staffed)
	slices.Sort(teachers)
	for _, teacher := range teachers {
		section.Teachers[teacher] = uint64(len(section.Occupants))
		section.Occupants = append(section.Occupants, *staffed[teacher])
	}
	section.Occupants = append(section.Occupants, unstaffed...)

	return section, nil
}

func roomNames(field string, names []string, count uint64, prefix string) ([]string, error) {
	if len(names) == 0 {
		return lo.Times(int(count), func(i int) string { return fmt.Sprintf("%v %d", prefix, i+1) }), nil
	}
	if uint64(len(names)) != count {
		return nil, invalid(field, "%d names given for %d rooms", len(names), count)
	}
	return slices.Clone(names), nil
}
