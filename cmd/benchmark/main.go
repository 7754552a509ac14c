package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/weekly-timetabling/pkg/model"
	"github.com/limaJavier/weekly-timetabling/pkg/sat"
	"github.com/samber/lo"
)

const (
	executablePath          = "../../bin/timetable"
	feasibleTestDirectory   = "../../pkg/model/testdata/feasible/"
	infeasibleTestDirectory = "../../pkg/model/testdata/infeasible/"
	resultsFile             = "benchmark_results.csv"
	timeout                 = "5m"
)

type ResultType int

const (
	solved ResultType = iota
	unsolved
)

var resultTypes = map[ResultType]string{
	solved:   "solved",
	unsolved: "unsolved",
}

type TestMetadata struct {
	Name       string `csv:"test"`
	Feasible   bool   `csv:"feasible"`
	Sections   int    `csv:"sections"`
	Courses    int    `csv:"courses"`
	LabCourses int    `csv:"lab_courses"`
	Teachers   int    `csv:"teachers"`
	Classrooms uint64 `csv:"classrooms"`
	LabRooms   uint64 `csv:"lab_rooms"`
}

type TimetablerMetadata struct {
	LabExclusivity string `csv:"lab_exclusivity"`
	Compactness    bool   `csv:"compactness"`
}

type BenchmarkResult struct {
	Solver string `csv:"solver"`
	TimetablerMetadata
	Test          TestMetadata `csv:"-"`
	Duration      int64        `csv:"duration_ms"`
	Memory        float32      `csv:"memory_mb"`
	CpuPercentage int64        `csv:"cpu_percentage"`
	Result        string       `csv:"result"`
	Outcome       string       `csv:"outcome"`
	Penalty       string       `csv:"penalty"`
}

// benchmarkRow flattens a result for the CSV report
type benchmarkRow struct {
	BenchmarkResult
	TestMetadata
}

func main() {
	tests := getTests()
	timetablers := getTimetablers()
	solvers := getSolvers()
	results := make([]BenchmarkResult, 0, len(tests)*len(timetablers)*len(solvers))

	for _, test := range tests {
		for _, timetabler := range timetablers {
			for _, solver := range solvers {
				fmt.Printf("Benchmarking test \"%v\" with solver \"%v\", lab exclusivity \"%v\" and compactness \"%v\"\n", test.Name, solver, timetabler.LabExclusivity, timetabler.Compactness)

				result := measure(timetabler, solver, test.Name)
				result.Test = test
				results = append(results, result)
			}
		}
	}

	toCsv(results)
}

func getTests() []TestMetadata {
	tests := make([]TestMetadata, 0)
	for _, tuple := range lo.Zip2([]string{feasibleTestDirectory, infeasibleTestDirectory}, []bool{true, false}) {
		directory, feasible := tuple.A, tuple.B
		testFiles, err := os.ReadDir(directory)
		if err != nil {
			log.Fatalf("cannot read directory: %v", err)
		}

		for _, file := range testFiles {
			filename := directory + file.Name()
			request, err := model.RequestFromJson(filename)
			if err != nil {
				log.Fatalf("cannot parse input file: %v", err)
			}
			input, err := model.ProcessRawRequest(request)
			if err != nil {
				log.Fatalf("invalid input file \"%v\": %v", filename, err)
			}

			tests = append(tests, TestMetadata{
				Name:       filename,
				Feasible:   feasible,
				Sections:   len(input.Sections),
				Courses:    len(input.Courses),
				LabCourses: lo.CountBy(input.Courses, func(course model.Course) bool { return course.Kind == model.Lab }),
				Teachers:   len(input.Teachers),
				Classrooms: input.Classrooms,
				LabRooms:   input.LabRooms,
			})
		}
	}

	return tests
}

// getSolvers returns every backend runnable on this machine
func getSolvers() []string {
	return lo.Filter(sat.SolverNames(), func(name string, _ int) bool {
		return sat.Installed(name)
	})
}

func getTimetablers() []TimetablerMetadata {
	return []TimetablerMetadata{
		{
			LabExclusivity: "day",
			Compactness:    true,
		},

		{
			LabExclusivity: "section",
			Compactness:    true,
		},

		{
			LabExclusivity: "day",
			Compactness:    false,
		},
	}
}

func measure(timetabler TimetablerMetadata, solver string, testFile string) BenchmarkResult {
	args := []string{"-v", executablePath, "-solver", solver, "-lab-exclusivity", timetabler.LabExclusivity, "-timeout", timeout, "-file", testFile, "-out", os.DevNull}
	if !timetabler.Compactness {
		args = append(args, "-no-compactness")
	}
	cmd := exec.Command("/usr/bin/time", args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	result := BenchmarkResult{Solver: solver, TimetablerMetadata: timetabler}

	cmd.Run()
	if cmd.ProcessState.ExitCode() != 10 && cmd.ProcessState.ExitCode() != 20 {
		log.Fatalf("an error occurred during the execution \"timetable\" at test \"%v\" using solver \"%v\", lab exclusivity \"%v\": %v\n", testFile, solver, timetabler.LabExclusivity, stdErr.String())
	} else if cmd.ProcessState.ExitCode() == 20 {
		result.Result = resultTypes[unsolved]
	} else {
		result.Result = resultTypes[solved]
	}
	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	result.Duration = parseDurationLine(getLine("wall clock"))
	result.Memory = parseMemoryLine(getLine("maximum resident set size"))
	result.CpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))
	result.Outcome = parseStatisticLine(getLine("outcome:"))
	result.Penalty = parseStatisticLine(getLine("penalty:"))

	return result
}

func toCsv(results []BenchmarkResult) {
	file, err := os.Create(resultsFile)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	rows := lo.Map(results, func(result BenchmarkResult, _ int) benchmarkRow {
		return benchmarkRow{BenchmarkResult: result, TestMetadata: result.Test}
	})
	if err := gocsv.MarshalFile(&rows, file); err != nil {
		log.Panicf("cannot write CSV records: %v", err)
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / 1024
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}

// parseStatisticLine reads the value of a "Name: value" line printed by the timetable executable
func parseStatisticLine(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}
