package sat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

type inputMode int

const (
	standardInput inputMode = iota // DIMACS is piped into the solver
	inputFile                      // DIMACS is written into a temporary file passed as first argument
)

type outputMode int

const (
	standardOutput outputMode = iota // Competition format "v ..." lines on the standard output
	outputFile                       // Model written into a temporary file passed after the input file
)

// externalSolver drives a SAT-solver binary that follows the competition exit-codes:
// 10 stands for satisfiable and 20 stands for unsatisfiable
type externalSolver struct {
	name   string // Also the executable name used when no config entry exists
	args   []string
	input  inputMode
	output outputMode
}

func NewKissatSolver() SATSolver {
	return &externalSolver{name: "kissat", args: []string{"-q", "--relaxed"}}
}

func NewCadicalSolver() SATSolver {
	return &externalSolver{name: "cadical", args: []string{"-q"}}
}

func NewCryptominisatSolver() SATSolver {
	return &externalSolver{name: "cryptominisat", args: []string{"--verb", "0"}}
}

func NewMinisatSolver() SATSolver {
	return &externalSolver{name: "minisat", args: []string{"-verb=0"}, input: inputFile, output: outputFile}
}

func NewGlucoseSimpSolver() SATSolver {
	return &externalSolver{name: "glucose-simp", args: []string{"-verb=0"}, input: inputFile, output: outputFile}
}

func NewGlucoseSyrupSolver() SATSolver {
	return &externalSolver{name: "glucose-syrup", args: []string{"-verb=0"}, input: inputFile, output: outputFile}
}

func NewSlimeSolver() SATSolver {
	return &externalSolver{name: "slime", input: inputFile}
}

func NewOrtoolsatSolver() SATSolver {
	return &externalSolver{name: "ortoolsat", input: inputFile}
}

func (solver *externalSolver) Solve(ctx context.Context, instance SAT) (SATSolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrInterrupted
	}

	executable, err := getExecutablePath(solver.name)
	if err != nil {
		return nil, err
	}
	dimacs := instance.ToDIMACS() // Transform SAT into DIMACS-CNF string format

	cmd := exec.CommandContext(ctx, executable, solver.args...)

	if solver.input == inputFile {
		inputTempFile, err := writeTempFile("dimacs-*.cnf", dimacs)
		if err != nil {
			return nil, err
		}
		defer os.Remove(inputTempFile) // Ensure the file is removed after execution
		cmd.Args = append(cmd.Args, inputTempFile)
	} else {
		cmd.Stdin = strings.NewReader(dimacs) // Feed dimacs into the solver's standard input
	}

	var outputTempFile string
	if solver.output == outputFile {
		if outputTempFile, err = writeTempFile(solver.name+"_output-*.txt", ""); err != nil {
			return nil, err
		}
		defer os.Remove(outputTempFile)
		cmd.Args = append(cmd.Args, outputTempFile)
	}

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctx.Err() != nil {
		return nil, ErrInterrupted
	} else if err != nil && cmd.ProcessState == nil {
		return nil, fmt.Errorf("cannot start %v: %v", solver.name, err)
	} else if exitCode := cmd.ProcessState.ExitCode(); exitCode == 20 {
		return nil, nil
	} else if exitCode != 10 {
		return nil, fmt.Errorf("an error occurred during %v execution: %v : %v", solver.name, err, stderr.String())
	}

	if solver.output == standardOutput {
		return parseSolution(stdOut.String())
	}

	file, err := os.Open(outputTempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %v", err)
	}
	defer file.Close()
	output, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %v", err)
	}
	return parseSolutionFile(string(output))
}

func writeTempFile(pattern, content string) (string, error) {
	file, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %v", err)
	}
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to write temporary file: %v", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to close temporary file: %v", err)
	}
	return file.Name(), nil
}
