package app

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/ember/internal/domain"
)

type ErrorKind string

const (
	// KindInput: missing user, invalid metrics, bad rating, illegal transition.
	KindInput ErrorKind = "INPUT"
	// KindDependency: LLM or embedding service unavailable or timed out.
	KindDependency ErrorKind = "DEPENDENCY"
	// KindGeneration: LLM output could not be parsed after the retry.
	KindGeneration ErrorKind = "GENERATION"
	// KindConsistency: a concurrent writer changed the row under us.
	KindConsistency ErrorKind = "CONSISTENCY"
)

// Error is the typed error returned across the use-case boundary.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error

	// Strategies is set on GENERATION errors so callers can fall back to
	// showing the retrieved evidence directly.
	Strategies []domain.StrategyDocument
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": "
	if e.Op != "" {
		msg += e.Op + ": "
	}
	msg += e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func InputError(op, format string, args ...any) error {
	return &Error{Kind: KindInput, Op: op, Message: fmt.Sprintf(format, args...)}
}

func DependencyError(op string, err error) error {
	return &Error{Kind: KindDependency, Op: op, Message: "dependency unavailable", Err: err}
}

func GenerationError(op string, err error, strategies []domain.StrategyDocument) error {
	return &Error{Kind: KindGeneration, Op: op, Message: "could not parse model output", Err: err, Strategies: strategies}
}

func ConsistencyError(op string, err error) error {
	return &Error{Kind: KindConsistency, Op: op, Message: "concurrent update detected", Err: err}
}

// IsKind reports whether err is an *Error of the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
