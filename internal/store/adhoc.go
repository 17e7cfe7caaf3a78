package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var readOnlyPrefixes = []string{"select", "with", "explain"}

// CheckReadOnly rejects ad hoc queries that could mutate state behind the
// services' backs. It is a guard for the CLI, not a sandbox.
func CheckReadOnly(query string) error {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if trimmed == "" {
		return fmt.Errorf("query is required")
	}
	if strings.Contains(strings.TrimSuffix(trimmed, ";"), ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}
	for _, prefix := range readOnlyPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return nil
		}
	}
	return fmt.Errorf("only read-only queries are allowed")
}

// PositionalArgs orders params keyed "1".."n" into driver arguments. Keys
// must be consecutive from 1 so a typo never shifts the remaining values.
func PositionalArgs(params map[string]any) ([]any, error) {
	positions := make([]int, 0, len(params))
	for key := range params {
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid parameter %q: keys are positions starting at 1", key)
		}
		positions = append(positions, n)
	}
	sort.Ints(positions)

	args := make([]any, 0, len(positions))
	for i, n := range positions {
		if n != i+1 {
			return nil, fmt.Errorf("missing parameter %d", i+1)
		}
		args = append(args, params[strconv.Itoa(n)])
	}
	return args, nil
}
