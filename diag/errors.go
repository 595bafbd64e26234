// Package diag holds the error kinds and logging setup shared by every
// stage of the compiler.
//
// All errors are terminal for the call that produced them. Each carries the
// offending fragment of source so a CLI or editor can show what went wrong:
//
//	err := diag.Malformed("if(a){1", "unterminated block")
//	errors.Is(err, diag.ErrMalformedBlock) // true
package diag

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Error kinds. Match with errors.Is.
var (
	ErrMalformedBlock        = errors.New("malformed block")
	ErrMissingAlternative    = errors.New("every conditional requires a paired alternative branch")
	ErrUnresolvableReference = errors.New("cycle found in function references")
	ErrAmbiguousSplit        = errors.New("ambiguous operator split")
)

// maxFragment bounds the fragment quoted in error messages.
const maxFragment = 80

// Error is a compile or decompile failure tied to a piece of source text.
type Error struct {
	Kind     error  // one of the Err* sentinels
	Fragment string // offending substring
	Detail   string // optional extra context
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Fragment != "" {
		msg += fmt.Sprintf(" (at %q)", clip(e.Fragment))
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

// Malformed reports residual braces, unbalanced brackets or quotes.
func Malformed(fragment, detail string) error {
	return &Error{Kind: ErrMalformedBlock, Fragment: fragment, Detail: detail}
}

// MissingAlternative reports a conditional without a false branch.
func MissingAlternative(fragment string) error {
	return &Error{Kind: ErrMissingAlternative, Fragment: fragment}
}

// Unresolvable reports a cycle in a helper call graph. path lists the
// functions on the cycle in call order.
func Unresolvable(path string) error {
	return &Error{Kind: ErrUnresolvableReference, Detail: path}
}

// AmbiguousSplit reports operators that cannot be separated into operands.
func AmbiguousSplit(fragment, detail string) error {
	return &Error{Kind: ErrAmbiguousSplit, Fragment: fragment, Detail: detail}
}

// clip shortens s to at most maxFragment bytes without splitting a rune.
func clip(s string) string {
	if len(s) <= maxFragment {
		return s
	}
	end := maxFragment
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end] + "..."
}
