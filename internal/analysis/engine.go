package analysis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrEmptyRegistry marks a reference-data collaborator that is empty or
// unreachable. Runs abort before writing any output when they hit it:
// partial output against a broken reference set is worse than no output.
var ErrEmptyRegistry = errors.New("reference registry unavailable")

// Runner is the interface all batch engine jobs implement
type Runner interface {
	// Run executes the job against an existing analysis run row.
	// Implementations must mark the run completed or failed before returning.
	Run(ctx context.Context, runID int64) error

	// Kind returns the run kind this job produces
	Kind() string
}

// RunnerFactory builds a job from its stored parameter JSON
type RunnerFactory func(db *sql.DB, paramsJSON string) (Runner, error)

// runnerRegistry maps run kinds to factories
var runnerRegistry = make(map[string]RunnerFactory)

// RegisterRunner registers a factory for a run kind
func RegisterRunner(kind string, factory RunnerFactory) {
	runnerRegistry[kind] = factory
}

// NewRunner builds a job for a run kind
func NewRunner(kind string, db *sql.DB, paramsJSON string) (Runner, error) {
	factory, ok := runnerRegistry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown run kind %q", kind)
	}
	return factory(db, paramsJSON)
}

// Kinds returns the registered run kinds
func Kinds() []string {
	kinds := make([]string, 0, len(runnerRegistry))
	for k := range runnerRegistry {
		kinds = append(kinds, k)
	}
	return kinds
}
