package sat

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// ConfigPath points to a JSON object mapping solver names to executable paths, e.g. {"kissat": "/opt/bin/kissat"}
var ConfigPath = "config.json"

// parseSolution extracts the model from competition-format "v" lines
func parseSolution(solverOutput string) (SATSolution, error) {
	fields := lo.FlatMap(
		lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
			return len(line) > 0 && line[0] == 'v'
		}),
		func(line string, _ int) []string {
			return strings.Fields(line[1:])
		},
	)
	return parseLiterals(fields)
}

// parseSolutionFile extracts the model from a minisat-style result file ("SAT" header followed by literals)
func parseSolutionFile(solverOutput string) (SATSolution, error) {
	fields := lo.Filter(strings.Fields(solverOutput), func(field string, _ int) bool {
		return field != "SAT" && field != "SATISFIABLE"
	})
	return parseLiterals(fields)
}

func parseLiterals(fields []string) (SATSolution, error) {
	solution := make(SATSolution, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal in solver output: %v", err)
		}
		if value != 0 {
			solution = append(solution, value)
		}
	}
	return solution, nil
}

// getExecutablePath resolves a solver binary from the config file, falling back to the PATH
func getExecutablePath(solver string) (string, error) {
	config, err := readConfig()
	if err != nil {
		return "", err
	}
	if path, ok := config[solver]; ok && path != "" {
		return path, nil
	}

	path, err := exec.LookPath(solver)
	if err != nil {
		return "", fmt.Errorf("solver \"%v\" is neither present in config nor in PATH: %v", solver, err)
	}
	return path, nil
}

func readConfig() (map[string]string, error) {
	bytes, err := os.ReadFile(ConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("cannot read config file: %v", err)
	}

	var configJson map[string]any
	if err := json.Unmarshal(bytes, &configJson); err != nil {
		return nil, fmt.Errorf("cannot parse config file: %v", err)
	}

	var config map[string]string
	if err := mapstructure.Decode(configJson, &config); err != nil {
		return nil, fmt.Errorf("invalid config file: %v", err)
	}
	return config, nil
}

// Installed reports whether the named solver can be executed on this machine
func Installed(name string) bool {
	solver, ok := solvers[name]
	if !ok {
		return false
	}
	external, ok := solver().(*externalSolver)
	if !ok {
		return true // In-process
	}
	_, err := getExecutablePath(external.name)
	return err == nil
}
