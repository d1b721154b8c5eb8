package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
)

// ExternalError wraps a failed or timed out call to a collaborator.
type ExternalError struct {
	Op  string
	Err error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call ran out of time.
func (e *ExternalError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// external runs fn with the engine's call timeout. Errors other than
// tournament.ErrNotFound come back as *ExternalError.
func (e *Engine) external(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, tournament.ErrNotFound) {
		return err
	}
	return &ExternalError{Op: op, Err: err}
}

// errorKind classifies an error for the reply shown to the user.
type errorKind int

const (
	errorKindExternal errorKind = iota
	errorKindInput
	errorKindNotFound
)

func classify(err error) errorKind {
	switch {
	case tournament.IsInputError(err):
		return errorKindInput
	case errors.Is(err, tournament.ErrNotFound):
		return errorKindNotFound
	default:
		return errorKindExternal
	}
}
