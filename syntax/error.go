package syntax

import "strconv"

// ErrorCode describes a class of syntax error.
// Codes are comparable, so errors.Is(err, ErrInvalidEscape) works on any
// error returned by Parse.
type ErrorCode string

// Error implements the error interface.
func (c ErrorCode) Error() string {
	return string(c)
}

// Syntax error codes.
const (
	ErrInvalidCharClass      ErrorCode = "invalid character class"
	ErrInvalidCharRange      ErrorCode = "invalid character class range"
	ErrInvalidEscape         ErrorCode = "invalid escape sequence"
	ErrInvalidNamedCapture   ErrorCode = "invalid named capture"
	ErrInvalidPerlOp         ErrorCode = "invalid or unsupported Perl syntax"
	ErrInvalidRepeatOp       ErrorCode = "invalid nested repetition operator"
	ErrInvalidRepeatSize     ErrorCode = "invalid repeat count"
	ErrMissingBracket        ErrorCode = "missing closing ]"
	ErrMissingParen          ErrorCode = "missing closing )"
	ErrMissingRepeatArgument ErrorCode = "missing argument to repetition operator"
	ErrTrailingBackslash     ErrorCode = "trailing backslash at end of expression"
	ErrUnexpectedParen       ErrorCode = "unexpected )"
	ErrNestingDepth          ErrorCode = "expression nests too deeply"
)

// Error is a syntax error in a pattern.
type Error struct {
	Code ErrorCode
	// Pos is the byte offset of the offending token in the pattern.
	Pos int
	// Expr is the offending fragment of the pattern.
	Expr string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "error parsing regexp: " + string(e.Code) + " at byte " + strconv.Itoa(e.Pos) + ": `" + e.Expr + "`"
}

// Unwrap returns the error code.
func (e *Error) Unwrap() error {
	return e.Code
}
