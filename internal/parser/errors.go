package parser

import (
	"errors"
	"fmt"
)

var (
	ErrUnterminatedBlock  = errors.New("unterminated block")
	ErrMalformedField     = errors.New("malformed field")
	ErrMalformedRPC       = errors.New("malformed rpc")
	ErrMalformedEnumValue = errors.New("malformed enum value")
	ErrMalformedChannel   = errors.New("malformed channel")
)

// SyntaxError is a structural error that aborts the whole parse. Err is one
// of the sentinel errors above.
type SyntaxError struct {
	Line   int
	Text   string
	Err    error
	Detail string
}

var _ error = (*SyntaxError)(nil)

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("line %d: %v", e.Line, e.Err)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("%s (in %q)", msg, e.Text)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
