package nfa

import "unicode/utf8"

// PikeVM implements the Pike VM algorithm for NFA execution.
// It advances every live thread in lockstep, one input byte at a time, so
// a search takes O(len(input) * NFA.Size()) time however much the NFA
// branches.
//
// Threads are kept in priority order: the order in which a backtracking
// matcher would try them. Split states prefer their left target, and when
// two threads reach the same state in one step the first keeps it. This
// yields leftmost-first (Perl) semantics: earlier alternatives win, greedy
// repetitions prefer more iterations, lazy ones fewer.
//
// Thread safety: a PikeVM holds mutable scratch space and must not be used
// from multiple goroutines at once. The NFA it runs is never modified, so
// any number of PikeVMs may share one NFA.
type PikeVM struct {
	nfa *NFA

	clist, nlist *threadList
	stack        []frame
	scratch      []int
	bounds       []bool
}

// frame is a pending unit of work in the epsilon closure: either a state
// to explore or a capture slot to restore once a branch is done.
type frame struct {
	id      StateID
	restore bool
	slot    int
	value   int
}

// NewPikeVM creates a new PikeVM for the given NFA
func NewPikeVM(nfa *NFA) *PikeVM {
	slots := nfa.CaptureCount() * 2
	return &PikeVM{
		nfa:     nfa,
		clist:   newThreadList(nfa.Size(), slots),
		nlist:   newThreadList(nfa.Size(), slots),
		stack:   make([]frame, 0, 16),
		scratch: make([]int, slots),
	}
}

// NFA returns the program this PikeVM runs.
func (p *PikeVM) NFA() *NFA {
	return p.nfa
}

// SlotCount returns the number of capture slots, two per group.
func (p *PikeVM) SlotCount() int {
	return p.nfa.CaptureCount() * 2
}

// haystack is a view of the input, possibly reversed. Positions are
// indices into the view; offset maps them back to the original input.
type haystack struct {
	data    []byte
	reverse bool
}

func (h haystack) len() int {
	return len(h.data)
}

func (h haystack) at(i int) byte {
	if h.reverse {
		return h.data[len(h.data)-1-i]
	}
	return h.data[i]
}

func (h haystack) offset(i int) int {
	if h.reverse {
		return len(h.data) - i
	}
	return i
}

// FullMatch reports whether the whole input matches, anchored at both
// ends. On success the first len(slots) capture slots are filled with
// offsets (-1 for groups that did not participate). The accepting path is
// the first in priority order among those that end at len(input).
func (p *PikeVM) FullMatch(input []byte, slots []int) bool {
	h := haystack{data: input}
	p.setActiveSlots(len(slots))
	p.clist.clear()
	p.addThread(p.clist, p.nfa.start, h, 0, p.initScratch())

	for pos := 0; ; pos++ {
		if pos == h.len() {
			for _, v := range p.clist.set.Values() {
				id := StateID(v)
				if p.nfa.states[id].kind == StateMatch {
					copy(slots, p.clist.slots.row(id))
					return true
				}
			}
			return false
		}
		if p.clist.set.IsEmpty() {
			return false
		}
		p.step(h, pos)
	}
}

// IsFullMatch reports whether the whole input matches, without tracking
// captures.
func (p *PikeVM) IsFullMatch(input []byte) bool {
	return p.FullMatch(input, nil)
}

// SearchAt runs an anchored search starting at offset at and returns
// whether some prefix of input[at:] matches. The match chosen is the
// leftmost-first one; its captures are written to slots.
func (p *PikeVM) SearchAt(input []byte, at int, slots []int) bool {
	h := haystack{data: input}
	p.setActiveSlots(len(slots))
	p.clist.clear()
	p.addThread(p.clist, p.nfa.start, h, at, p.initScratch())

	matched := false
	for pos := at; pos <= h.len() && !p.clist.set.IsEmpty(); pos++ {
		p.nlist.clear()
		for _, v := range p.clist.set.Values() {
			id := StateID(v)
			s := &p.nfa.states[id]
			if s.kind == StateMatch {
				// Lower priority threads can no longer win.
				matched = true
				copy(slots, p.clist.slots.row(id))
				break
			}
			p.stepThread(h, pos, id, s)
		}
		p.clist, p.nlist = p.nlist, p.clist
	}
	return matched
}

// LeftmostStart runs a reverse program over input from the end backwards,
// starting a new thread at every character boundary, and returns the
// smallest offset at which some match of the forward language starts, or
// -1. Offsets inside a UTF-8 sequence are never reported, so an empty match
// cannot split a character.
func (p *PikeVM) LeftmostStart(input []byte) int {
	h := haystack{data: input, reverse: true}
	p.setActiveSlots(0)
	p.clist.clear()
	p.bounds = charBoundaries(input, p.bounds)

	best := -1
	for pos := 0; pos <= h.len(); pos++ {
		if p.bounds[h.offset(pos)] {
			p.addThread(p.clist, p.nfa.start, h, pos, nil)
		}
		p.nlist.clear()
		for _, v := range p.clist.set.Values() {
			id := StateID(v)
			s := &p.nfa.states[id]
			if s.kind == StateMatch {
				best = pos
				continue
			}
			p.stepThread(h, pos, id, s)
		}
		p.clist, p.nlist = p.nlist, p.clist
	}
	if best < 0 {
		return -1
	}
	return h.offset(best)
}

// charBoundaries marks the offsets of input at which a character starts,
// plus len(input). Invalid bytes count as one-byte characters.
func charBoundaries(input []byte, dst []bool) []bool {
	if cap(dst) < len(input)+1 {
		dst = make([]bool, len(input)+1)
	}
	dst = dst[:len(input)+1]
	clear(dst)
	for i := 0; i < len(input); {
		dst[i] = true
		_, n := utf8.DecodeRune(input[i:])
		i += n
	}
	dst[len(input)] = true
	return dst
}

// step advances every thread in clist over the byte at pos into nlist,
// then swaps the lists.
func (p *PikeVM) step(h haystack, pos int) {
	p.nlist.clear()
	for _, v := range p.clist.set.Values() {
		id := StateID(v)
		p.stepThread(h, pos, id, &p.nfa.states[id])
	}
	p.clist, p.nlist = p.nlist, p.clist
}

func (p *PikeVM) stepThread(h haystack, pos int, id StateID, s *State) {
	if pos >= h.len() {
		return
	}
	switch s.kind {
	case StateByteRange, StateSparse:
		if next := s.step(h.at(pos)); next != InvalidState {
			copy(p.scratch, p.clist.slots.row(id))
			p.addThread(p.nlist, next, h, pos+1, p.scratch[:p.clist.slots.activeSlots])
		}
	}
}

func (p *PikeVM) setActiveSlots(n int) {
	if limit := p.SlotCount(); n > limit {
		n = limit
	}
	p.clist.slots.activeSlots = n
	p.nlist.slots.activeSlots = n
}

func (p *PikeVM) initScratch() []int {
	s := p.scratch[:p.clist.slots.activeSlots]
	for i := range s {
		s[i] = -1
	}
	return s
}

// addThread follows epsilon transitions from id at position pos and adds
// every reached state to list in priority order. slots holds the captures
// of the path so far; capture states update it in place and push a frame
// that restores the old value once the branch has been explored.
func (p *PikeVM) addThread(list *threadList, id StateID, h haystack, pos int, slots []int) {
	p.stack = append(p.stack[:0], frame{id: id})
	for len(p.stack) > 0 {
		f := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		if f.restore {
			slots[f.slot] = f.value
			continue
		}

		for id := f.id; id != InvalidState; {
			if !list.set.Insert(uint32(id)) {
				break
			}
			s := &p.nfa.states[id]
			switch s.kind {
			case StateEpsilon:
				id = s.next
			case StateSplit:
				p.stack = append(p.stack, frame{id: s.right})
				id = s.left
			case StateCapture:
				if slot := int(s.slot); slot < len(slots) {
					p.stack = append(p.stack, frame{restore: true, slot: slot, value: slots[slot]})
					slots[slot] = h.offset(pos)
				}
				id = s.next
			case StateLook:
				if !lookMatches(s.look, h, pos) {
					id = InvalidState
					break
				}
				id = s.next
			case StateByteRange, StateSparse, StateMatch:
				copy(list.slots.row(id), slots)
				id = InvalidState
			default:
				id = InvalidState
			}
		}
	}
}

// lookMatches evaluates an assertion at pos of the view.
func lookMatches(look Look, h haystack, pos int) bool {
	switch look {
	case LookStartText:
		return pos == 0
	case LookEndText:
		return pos == h.len()
	case LookStartLine:
		return pos == 0 || h.at(pos-1) == '\n'
	case LookEndLine:
		return pos == h.len() || h.at(pos) == '\n'
	case LookWordBoundary:
		return isWordBefore(h, pos) != isWordAfter(h, pos)
	case LookNoWordBoundary:
		return isWordBefore(h, pos) == isWordAfter(h, pos)
	}
	return false
}

func isWordBefore(h haystack, pos int) bool {
	return pos > 0 && isWordByte(h.at(pos-1))
}

func isWordAfter(h haystack, pos int) bool {
	return pos < h.len() && isWordByte(h.at(pos))
}

// isWordByte reports whether b is an ASCII word character [0-9A-Za-z_].
func isWordByte(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b == '_'
}
