package rematch

import (
	"sync"

	"github.com/coregx/rematch/nfa"
)

// searchState holds the per-call scratch space of a match.
//
// A Pattern's programs are never written during a match: all mutable
// state lives here, and each goroutine borrows its own searchState from
// the Pattern's pool.
type searchState struct {
	forward *nfa.PikeVM
	reverse *nfa.PikeVM // created on first use by Find
}

// searchStatePool hands out searchStates for one Pattern.
type searchStatePool struct {
	pool    sync.Pool
	forward *nfa.NFA
	reverse *nfa.NFA
}

func newSearchStatePool(forward, reverse *nfa.NFA) *searchStatePool {
	p := &searchStatePool{forward: forward, reverse: reverse}
	p.pool = sync.Pool{
		New: func() any {
			return &searchState{forward: nfa.NewPikeVM(p.forward)}
		},
	}
	return p
}

func (p *searchStatePool) get() *searchState {
	return p.pool.Get().(*searchState)
}

func (p *searchStatePool) put(s *searchState) {
	p.pool.Put(s)
}

// reverseVM returns the state's reverse PikeVM, creating it if needed.
func (p *searchStatePool) reverseVM(s *searchState) *nfa.PikeVM {
	if s.reverse == nil {
		s.reverse = nfa.NewPikeVM(p.reverse)
	}
	return s.reverse
}
