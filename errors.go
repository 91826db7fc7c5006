package rematch

import (
	"strconv"
	"strings"

	"github.com/coregx/rematch/nfa"
)

// ErrResourceLimit is returned, wrapped in a *nfa.CompileError, when a
// compiled program would exceed Config.MaxProgramSize states.
//
//	_, err := rematch.Compile(`((a{1,50000}){1,50000})`)
//	errors.Is(err, rematch.ErrResourceLimit) // true
var ErrResourceLimit = nfa.ErrTooComplex

// BindErrorKind classifies a binding failure.
type BindErrorKind uint8

const (
	// GroupNotParticipating means the group did not take part in the match
	// and the slot is not Optional.
	GroupNotParticipating BindErrorKind = iota + 1
	// NumericParseFailure means the captured text is not a valid number or
	// boolean, or overflows the destination type.
	NumericParseFailure
	// UnmarshalFailure means an encoding.TextUnmarshaler rejected the text.
	UnmarshalFailure
	// UnknownGroup means a slot names a group the pattern does not have.
	UnknownGroup
	// UnsupportedType means a destination has no conversion.
	UnsupportedType
	// NoMatch means Bind was called on a failed match.
	NoMatch
)

var bindErrorKindNames = [...]string{
	GroupNotParticipating: "group did not participate",
	NumericParseFailure:   "numeric parse failure",
	UnmarshalFailure:      "unmarshal failure",
	UnknownGroup:          "unknown group",
	UnsupportedType:       "unsupported destination type",
	NoMatch:               "no match",
}

func (k BindErrorKind) String() string {
	if int(k) < len(bindErrorKindNames) && bindErrorKindNames[k] != "" {
		return bindErrorKindNames[k]
	}
	return "BindErrorKind(" + strconv.Itoa(int(k)) + ")"
}

// BindError reports why a capture could not be bound to a destination.
type BindError struct {
	Kind BindErrorKind
	// Group is the group index, or -1 when no group applies.
	Group int
	// Name is the group name the slot asked for, if any.
	Name string
	// Text is the captured text for conversion failures.
	Text string
	// Err is the underlying conversion error, if any.
	Err error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	var b strings.Builder
	b.WriteString("rematch: bind")
	if e.Group >= 0 {
		b.WriteString(" group ")
		b.WriteString(strconv.Itoa(e.Group))
	}
	if e.Name != "" {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(e.Name))
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Kind == NumericParseFailure || e.Kind == UnmarshalFailure {
		b.WriteString(" of ")
		b.WriteString(strconv.Quote(e.Text))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying conversion error.
func (e *BindError) Unwrap() error {
	return e.Err
}
