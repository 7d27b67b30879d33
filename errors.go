package userload

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when an operation needs a live connection
	ErrNotConnected = errors.New("not connected")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// Kind classifies a failure of the database bootstrap and load path.
type Kind int

const (
	KindUnknown Kind = iota
	KindConnection
	KindDatabaseCreation
	KindTableCreation
	KindInsertion
	KindCatalogQuery
	KindConfigLoad
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindDatabaseCreation:
		return "database creation"
	case KindTableCreation:
		return "table creation"
	case KindInsertion:
		return "insertion"
	case KindCatalogQuery:
		return "catalog query"
	case KindConfigLoad:
		return "config load"
	default:
		return "unknown"
	}
}

// Error is a failure tagged with its Kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError tags err with kind. op names the failing operation.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
