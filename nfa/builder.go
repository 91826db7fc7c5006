package nfa

import (
	"fmt"
	"sort"
)

// Builder constructs NFAs incrementally using a low-level API.
// States are appended to an arena and referenced by StateID.
type Builder struct {
	states []State
	start  StateID

	// limit caps the number of states; 0 means unlimited
	limit    int
	overflow bool
}

// NewBuilder creates a new NFA builder with default capacity
func NewBuilder() *Builder {
	return NewBuilderWithCapacity(16)
}

// NewBuilderWithCapacity creates a new NFA builder with specified initial capacity
func NewBuilderWithCapacity(capacity int) *Builder {
	return &Builder{
		states: make([]State, 0, capacity),
		start:  InvalidState,
	}
}

// SetLimit makes the builder refuse to grow past n states. Refused adds
// return InvalidState and Err reports ErrTooComplex.
func (b *Builder) SetLimit(n int) {
	b.limit = n
}

// Err returns ErrTooComplex once an add has been refused.
func (b *Builder) Err() error {
	if b.overflow {
		return ErrTooComplex
	}
	return nil
}

func (b *Builder) add(s State) StateID {
	if b.limit > 0 && len(b.states) >= b.limit {
		b.overflow = true
		return InvalidState
	}
	id := StateID(len(b.states))
	b.states = append(b.states, s)
	return id
}

// AddMatch adds a match (accepting) state
func (b *Builder) AddMatch() StateID {
	return b.add(State{kind: StateMatch})
}

// AddByteRange adds a state that transitions on a single byte or byte range [lo, hi]
func (b *Builder) AddByteRange(lo, hi byte, next StateID) StateID {
	return b.add(State{kind: StateByteRange, lo: lo, hi: hi, next: next})
}

// AddSparse adds a state with multiple byte range transitions.
// The transitions are sorted by Lo and must not overlap.
func (b *Builder) AddSparse(transitions []Transition) StateID {
	trans := make([]Transition, len(transitions))
	copy(trans, transitions)
	sort.Slice(trans, func(i, j int) bool { return trans[i].Lo < trans[j].Lo })
	return b.add(State{kind: StateSparse, transitions: trans})
}

// AddSplit adds a state with epsilon transitions to two states. Left is preferred.
func (b *Builder) AddSplit(left, right StateID) StateID {
	return b.add(State{kind: StateSplit, left: left, right: right})
}

// AddEpsilon adds a state with a single epsilon transition
func (b *Builder) AddEpsilon(next StateID) StateID {
	return b.add(State{kind: StateEpsilon, next: next})
}

// AddFail adds a dead state with no transitions
func (b *Builder) AddFail() StateID {
	return b.add(State{kind: StateFail})
}

// AddCapture adds a state that records the current position in slot.
func (b *Builder) AddCapture(slot uint32, next StateID) StateID {
	return b.add(State{kind: StateCapture, slot: slot, next: next})
}

// AddLook adds a zero-width assertion state.
func (b *Builder) AddLook(look Look, next StateID) StateID {
	return b.add(State{kind: StateLook, look: look, next: next})
}

// Patch updates a state's target. This is used during compilation to handle
// forward references (e.g., loops, alternations).
// This only works for states with a single 'next' target.
func (b *Builder) Patch(stateID, target StateID) error {
	if int(stateID) >= len(b.states) {
		return &BuildError{
			Message: "state ID out of bounds",
			StateID: stateID,
		}
	}

	s := &b.states[stateID]
	switch s.kind {
	case StateByteRange, StateEpsilon, StateCapture, StateLook:
		s.next = target
		return nil
	default:
		return &BuildError{
			Message: fmt.Sprintf("cannot patch state of kind %s", s.kind),
			StateID: stateID,
		}
	}
}

// PatchSplit updates the left and right targets of a Split state
func (b *Builder) PatchSplit(stateID StateID, left, right StateID) error {
	if int(stateID) >= len(b.states) {
		return &BuildError{
			Message: "state ID out of bounds",
			StateID: stateID,
		}
	}

	s := &b.states[stateID]
	if s.kind != StateSplit {
		return &BuildError{
			Message: fmt.Sprintf("expected Split state, got %s", s.kind),
			StateID: stateID,
		}
	}

	s.left = left
	s.right = right
	return nil
}

// SetStart sets the starting state for the NFA
func (b *Builder) SetStart(start StateID) {
	b.start = start
}

// States returns the current number of states
func (b *Builder) States() int {
	return len(b.states)
}

// Validate checks that the start state and every state reference point
// to existing states.
func (b *Builder) Validate() error {
	if b.start == InvalidState {
		return &BuildError{Message: "start state not set", StateID: InvalidState}
	}
	if int(b.start) >= len(b.states) {
		return &BuildError{Message: "start state out of bounds", StateID: b.start}
	}

	valid := func(id StateID) bool { return int(id) < len(b.states) }
	for i := range b.states {
		s := &b.states[i]
		id := StateID(i)
		switch s.kind {
		case StateByteRange, StateEpsilon, StateCapture, StateLook:
			if !valid(s.next) {
				return &BuildError{Message: fmt.Sprintf("%s state has dangling target", s.kind), StateID: id}
			}
		case StateSplit:
			if !valid(s.left) || !valid(s.right) {
				return &BuildError{Message: "split state has dangling target", StateID: id}
			}
		case StateSparse:
			for _, t := range s.transitions {
				if !valid(t.Next) {
					return &BuildError{Message: "sparse state has dangling target", StateID: id}
				}
			}
		}
	}
	return nil
}

// Build finalizes and returns the NFA
func (b *Builder) Build(opts ...BuildOption) (*NFA, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	nfa := &NFA{
		states:       b.states,
		start:        b.start,
		captureCount: 1,
	}
	for _, opt := range opts {
		opt(nfa)
	}
	return nfa, nil
}

// BuildOption is a functional option for configuring the built NFA
type BuildOption func(*NFA)

// WithReverse marks the NFA as compiled for reversed input
func WithReverse(reverse bool) BuildOption {
	return func(n *NFA) {
		n.reverse = reverse
	}
}

// WithCaptureCount sets the number of capture groups, group 0 included
func WithCaptureCount(count int) BuildOption {
	return func(n *NFA) {
		n.captureCount = count
	}
}

// WithCaptureNames sets the capture group names
func WithCaptureNames(names []string) BuildOption {
	return func(n *NFA) {
		n.captureNames = append([]string(nil), names...)
	}
}
