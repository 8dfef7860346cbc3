package executor

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the executable cannot be resolved.
var ErrNotFound = errors.New("executable not found")

// Executor runs external commands and returns their stdout.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	LookPath(name string) (string, error)
}
