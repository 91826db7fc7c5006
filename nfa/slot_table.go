package nfa

import (
	"github.com/coregx/rematch/internal/conv"
	"github.com/coregx/rematch/internal/sparse"
)

// slotTable stores one row of capture slots per NFA state.
//
// A thread's captures live in the row of the state it waits in, so two
// threads never share a row and copy-on-write bookkeeping is unnecessary:
// the epsilon closure mutates one scratch row and copies it out only when
// a thread settles on a consuming or match state.
//
// Memory layout: table[stateID * slotsPerState + slotIndex]
type slotTable struct {
	table         []int
	slotsPerState int

	// activeSlots is the number of slots tracked by the current search:
	// 0 when only acceptance matters, slotsPerState when capturing.
	activeSlots int
}

func newSlotTable(numStates, slotsPerState int) slotTable {
	return slotTable{
		table:         make([]int, numStates*slotsPerState),
		slotsPerState: slotsPerState,
		activeSlots:   slotsPerState,
	}
}

// row returns the active slots of state id.
func (t *slotTable) row(id StateID) []int {
	i := int(id) * t.slotsPerState
	return t.table[i : i+t.activeSlots]
}

// threadList is the set of threads alive at one input position, in
// priority order.
type threadList struct {
	set   *sparse.SparseSet
	slots slotTable
}

func newThreadList(numStates, slotsPerState int) *threadList {
	return &threadList{
		set:   sparse.NewSparseSet(conv.IntToUint32(numStates)),
		slots: newSlotTable(numStates, slotsPerState),
	}
}

func (l *threadList) clear() {
	l.set.Clear()
}
