package nfa

import (
	"fmt"
	"iter"
)

// StateID indexes a state in its program.
type StateID uint32

// InvalidState is the StateID of no state. Accessors return it for
// transitions a state does not have.
const InvalidState StateID = 0xFFFFFFFF

// StateKind selects which fields of a State are meaningful.
type StateKind uint8

const (
	// StateMatch accepts.
	StateMatch StateKind = iota
	// StateByteRange consumes one byte in [lo, hi].
	StateByteRange
	// StateSparse consumes one byte through a sorted list of disjoint
	// ranges, each with its own target.
	StateSparse
	// StateSplit forks into two epsilon transitions; left has priority.
	StateSplit
	// StateEpsilon moves to next without consuming input.
	StateEpsilon
	// StateCapture records the current offset in a capture slot.
	StateCapture
	// StateLook continues only where its assertion holds.
	StateLook
	// StateFail has no transitions.
	StateFail
)

var stateKindNames = [...]string{
	StateMatch:     "Match",
	StateByteRange: "ByteRange",
	StateSparse:    "Sparse",
	StateSplit:     "Split",
	StateEpsilon:   "Epsilon",
	StateCapture:   "Capture",
	StateLook:      "Look",
	StateFail:      "Fail",
}

func (k StateKind) String() string {
	if int(k) < len(stateKindNames) {
		return stateKindNames[k]
	}
	return fmt.Sprintf("StateKind(%d)", k)
}

// Look is a zero-width assertion.
type Look uint8

const (
	// LookStartText holds at offset 0: \A, or ^ without (?m).
	LookStartText Look = iota
	// LookEndText holds at the end of input: \z, or $ without (?m).
	LookEndText
	// LookStartLine holds at offset 0 and after '\n': (?m)^.
	LookStartLine
	// LookEndLine holds at the end of input and before '\n': (?m)$.
	LookEndLine
	// LookWordBoundary is \b over ASCII word bytes.
	LookWordBoundary
	// LookNoWordBoundary is \B.
	LookNoWordBoundary
)

var lookNames = [...]string{
	LookStartText:      `\A`,
	LookEndText:        `\z`,
	LookStartLine:      `(?m:^)`,
	LookEndLine:        `(?m:$)`,
	LookWordBoundary:   `\b`,
	LookNoWordBoundary: `\B`,
}

func (l Look) String() string {
	if int(l) < len(lookNames) {
		return lookNames[l]
	}
	return fmt.Sprintf("Look(%d)", l)
}

// Reversed returns the assertion that holds at the mirrored position of
// the reversed input. Word boundaries are symmetric.
func (l Look) Reversed() Look {
	switch l {
	case LookStartText:
		return LookEndText
	case LookEndText:
		return LookStartText
	case LookStartLine:
		return LookEndLine
	case LookEndLine:
		return LookStartLine
	}
	return l
}

// State is one program instruction. Only the fields of its kind are set.
type State struct {
	kind StateKind

	lo, hi byte    // ByteRange
	next   StateID // ByteRange, Epsilon, Capture, Look

	transitions []Transition // Sparse, sorted by Lo

	left, right StateID // Split

	slot uint32 // Capture: 2*group opens, 2*group+1 closes
	look Look   // Look
}

// Transition is one arm of a Sparse state. Lo and Hi are inclusive.
type Transition struct {
	Lo, Hi byte
	Next   StateID
}

// Kind returns the state's kind.
func (s *State) Kind() StateKind { return s.kind }

// IsMatch reports whether s accepts.
func (s *State) IsMatch() bool { return s.kind == StateMatch }

// ByteRange returns the range and target of a ByteRange state.
func (s *State) ByteRange() (lo, hi byte, next StateID) {
	if s.kind != StateByteRange {
		return 0, 0, InvalidState
	}
	return s.lo, s.hi, s.next
}

// Split returns both targets of a Split state, preferred first.
func (s *State) Split() (left, right StateID) {
	if s.kind != StateSplit {
		return InvalidState, InvalidState
	}
	return s.left, s.right
}

// Epsilon returns the target of an Epsilon state.
func (s *State) Epsilon() StateID {
	if s.kind != StateEpsilon {
		return InvalidState
	}
	return s.next
}

// Transitions returns the arms of a Sparse state. The slice must not be
// modified.
func (s *State) Transitions() []Transition {
	if s.kind != StateSparse {
		return nil
	}
	return s.transitions
}

// Capture returns the slot and target of a Capture state.
func (s *State) Capture() (slot uint32, next StateID) {
	if s.kind != StateCapture {
		return 0, InvalidState
	}
	return s.slot, s.next
}

// Look returns the assertion and target of a Look state.
func (s *State) Look() (look Look, next StateID) {
	if s.kind != StateLook {
		return 0, InvalidState
	}
	return s.look, s.next
}

// step returns the target for byte b, or InvalidState.
func (s *State) step(b byte) StateID {
	switch s.kind {
	case StateByteRange:
		if s.lo <= b && b <= s.hi {
			return s.next
		}
	case StateSparse:
		for _, t := range s.transitions {
			if b < t.Lo {
				break
			}
			if b <= t.Hi {
				return t.Next
			}
		}
	}
	return InvalidState
}

func (s *State) String() string {
	switch s.kind {
	case StateByteRange:
		if s.lo == s.hi {
			return fmt.Sprintf("%#02x -> %d", s.lo, s.next)
		}
		return fmt.Sprintf("[%#02x-%#02x] -> %d", s.lo, s.hi, s.next)
	case StateSparse:
		return fmt.Sprintf("sparse(%d)", len(s.transitions))
	case StateSplit:
		return fmt.Sprintf("split -> %d, %d", s.left, s.right)
	case StateEpsilon:
		return fmt.Sprintf("-> %d", s.next)
	case StateCapture:
		return fmt.Sprintf("capture(%d) -> %d", s.slot, s.next)
	case StateLook:
		return fmt.Sprintf("%s -> %d", s.look, s.next)
	}
	return s.kind.String()
}

// NFA is a compiled program: an arena of states with one anchored start.
// It is never modified after Build and may be shared between goroutines.
type NFA struct {
	states []State
	start  StateID
	// reverse programs read the input from its last byte to its first.
	reverse bool
	// captureCount includes group 0.
	captureCount int
	captureNames []string
}

// Start returns the anchored start state.
func (n *NFA) Start() StateID {
	return n.start
}

// State returns the state with the given ID, or nil.
func (n *NFA) State(id StateID) *State {
	if int(id) >= len(n.states) {
		return nil
	}
	return &n.states[id]
}

// IsMatch reports whether id is a match state.
func (n *NFA) IsMatch(id StateID) bool {
	s := n.State(id)
	return s != nil && s.IsMatch()
}

// Size returns the number of states.
func (n *NFA) Size() int {
	return len(n.states)
}

// IsReverse reports whether the program runs over reversed input.
func (n *NFA) IsReverse() bool {
	return n.reverse
}

// CaptureCount returns the number of groups including group 0, so `(a)(b)`
// has 3.
func (n *NFA) CaptureCount() int {
	return n.captureCount
}

// SubexpNames returns a copy of the group names by index. Entry 0 and
// unnamed groups are "".
func (n *NFA) SubexpNames() []string {
	names := make([]string, n.captureCount)
	copy(names, n.captureNames)
	return names
}

// States iterates over the program's states in ID order.
func (n *NFA) States() iter.Seq2[StateID, *State] {
	return func(yield func(StateID, *State) bool) {
		for i := range n.states {
			if !yield(StateID(i), &n.states[i]) {
				return
			}
		}
	}
}

func (n *NFA) String() string {
	return fmt.Sprintf("nfa{states: %d, start: %d, reverse: %v, groups: %d}",
		len(n.states), n.start, n.reverse, n.captureCount)
}
