package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/golang/glog"
	"github.com/limaJavier/weekly-timetabling/pkg/model"
	"github.com/limaJavier/weekly-timetabling/pkg/sat"
	"github.com/samber/lo"
)

// Exit codes follow the SAT competition convention so scripts can tell outcomes apart
const (
	exitSolved       = 10
	exitUnsolved     = 20
	exitInconsistent = 15
)

var (
	validFormats     = []string{"json", "csv"}
	labExclusivities = map[string]model.LabExclusivity{
		"day":     model.DayExclusive,
		"section": model.SectionScoped,
	}
)

func main() {
	setConfigPath()
	defaults := model.DefaultOptions()

	// Define arguments
	solverPtr := flag.String("solver", "gini", fmt.Sprintf("SAT-Solver to use. Allowed values are: %v, where \"gini\" (in-process) is the default", sat.SolverNames()))
	filePathPtr := flag.String("file", "", "Path to the request file")
	outFilePathPtr := flag.String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	formatPtr := flag.String("format", "json", "Output format. Allowed values are: \"json\" (the schedule result) and \"csv\" (one row per cell), where \"json\" is the default")
	timeoutPtr := flag.Duration("timeout", defaults.Timeout, "Time budget of the search; the best timetable found so far is kept when it runs out")
	workersPtr := flag.Int("workers", defaults.Workers, "Solver instances racing on every step of the search")
	seedPtr := flag.Uint64("seed", 0, "Seed of the search order; 0 draws a random one")
	maxStepsPtr := flag.Int("max-steps", 0, "Maximum number of solver calls; 0 means unbounded")
	exclusivityPtr := flag.String("lab-exclusivity", "day", "How far a lab block keeps its teacher away from other sessions that day. Allowed values are: \"day\" (every section) and \"section\" (only the lab's section)")
	noCompactnessPtr := flag.Bool("no-compactness", false, "Stop at the first valid timetable instead of minimizing idle gaps")
	flag.Parse()

	solverStr := strings.ToLower(*solverPtr)
	format := strings.ToLower(*formatPtr)
	filePath := *filePathPtr
	outFile := *outFilePathPtr
	exclusivity, validExclusivity := labExclusivities[strings.ToLower(*exclusivityPtr)]

	// Validate arguments
	if !slices.Contains(sat.SolverNames(), solverStr) {
		log.Fatalf("%v is not a valid solver", solverStr)
	} else if !slices.Contains(validFormats, format) {
		log.Fatalf("%v is not a valid format", format)
	} else if !validExclusivity {
		log.Fatalf("%v is not a valid lab exclusivity", *exclusivityPtr)
	} else if filePath == "" {
		log.Fatal("an input file must be specified")
	} else if *workersPtr < 1 {
		log.Fatalf("at least one worker is required: %v", *workersPtr)
	}

	options := model.Options{
		Timeout:        *timeoutPtr,
		Workers:        *workersPtr,
		Seed:           *seedPtr,
		MaxSteps:       *maxStepsPtr,
		LabExclusivity: exclusivity,
		Compactness:    !*noCompactnessPtr,
	}

	// Extract input
	request, err := model.RequestFromJson(filePath)
	if err != nil {
		log.Fatalf("cannot parse input file: %v", err)
	}
	input, err := model.ProcessRawRequest(request)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// Initialize engines
	solver := lo.Must(sat.NewSolver(solverStr))
	timetabler := model.NewCompactTimetabler(solver, options)

	// Build timetable
	timetable, statistics, err := timetabler.Build(context.Background(), input)
	if err != nil {
		log.Fatalf("an error occurred during timetable construction: %v", err)
	}
	printStatistics(statistics)

	if timetable == nil {
		message := model.InfeasibleMessage
		if statistics.Outcome == sat.Unknown {
			message = model.TimeoutMessage
		}
		write(outFile, lo.Must(json.MarshalIndent(model.Result{Status: model.StatusFailed, Message: message}, "", "  ")))
		exit(exitUnsolved)
	}

	// Verify timetable correctness
	if err := timetabler.Verify(timetable, input); err != nil {
		log.Printf("inconsistent timetable: %v", err)
		exit(exitInconsistent)
	}

	// Build output from timetable
	var output []byte
	switch format {
	case "csv":
		output, err = gocsv.MarshalBytes(model.ToRows(timetable, input))
	default:
		result := model.ToResult(timetable, input)
		result.Statistics = &statistics
		output, err = json.MarshalIndent(result, "", "  ")
	}
	if err != nil {
		log.Fatalf("an error occurred while building the output: %v", err)
	}

	write(outFile, output)
	exit(exitSolved)
}

// exit flushes pending solver logs, deferred calls do not run on os.Exit
func exit(code int) {
	glog.Flush()
	os.Exit(code)
}

// write sends the output to the file, or to the Standard Output when no file is given
func write(outFile string, output []byte) {
	if outFile == "" {
		fmt.Println(string(output))
		return
	}
	if err := os.WriteFile(outFile, output, 0666); err != nil {
		log.Fatalf("an error occurred while writing to the output file: %v", err)
	}
}

// Statistics go to the Standard Error so they never mix with the output
func printStatistics(statistics model.Statistics) {
	fmt.Fprintf(os.Stderr, "Run: %v\n", statistics.RunID)
	fmt.Fprintf(os.Stderr, "Seed: %v\n", statistics.Seed)
	fmt.Fprintf(os.Stderr, "Variables: %v\n", statistics.Variables)
	fmt.Fprintf(os.Stderr, "Clauses: %v\n", statistics.Clauses)
	fmt.Fprintf(os.Stderr, "Outcome: %v\n", statistics.Outcome)
	fmt.Fprintf(os.Stderr, "Steps: %v\n", statistics.Steps)
	fmt.Fprintf(os.Stderr, "Penalty: %v\n", statistics.Penalty)
	fmt.Fprintf(os.Stderr, "Duration: %v\n", statistics.Duration.Round(time.Millisecond))
}

// setConfigPath points the solver adapters to the config.json next to the executable, if any;
// otherwise external solvers are looked up in the PATH
func setConfigPath() {
	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("cannot determine executable path: %v", err)
	}
	execPath = path.Dir(execPath)

	files, err := os.ReadDir(execPath)
	if err != nil {
		log.Fatalf("cannot read executable's directory: %v", err)
	}
	fileNames := lo.Map(files, func(file os.DirEntry, _ int) string { return file.Name() })

	if slices.Contains(fileNames, "config.json") {
		sat.ConfigPath = execPath + "/config.json"
	}
}
