package rematch

// Match is the result of matching a Pattern against an input.
//
// Group ranges are half-open byte offsets into the input. A group that did
// not take part in the match is unset and reports -1 offsets. A Match keeps
// a reference to the input, which must not be modified while the Match is
// in use. Match has no mutating methods.
type Match struct {
	pattern *Pattern
	input   []byte
	slots   []int
	matched bool
}

func newMatch(p *Pattern, input []byte) *Match {
	slots := make([]int, 2*len(p.groups))
	for i := range slots {
		slots[i] = -1
	}
	return &Match{pattern: p, input: input, slots: slots}
}

// Matched reports whether the match succeeded.
func (m *Match) Matched() bool {
	return m.matched
}

// NumGroups returns the number of groups, including group 0.
func (m *Match) NumGroups() int {
	return len(m.slots) / 2
}

// Start returns the start offset of group i, or -1 if it is unset or out
// of range.
func (m *Match) Start(i int) int {
	start, _, _ := m.Range(i)
	return start
}

// End returns the end offset of group i, or -1 if it is unset or out of
// range.
func (m *Match) End(i int) int {
	_, end, _ := m.Range(i)
	return end
}

// Range returns the offsets of group i and whether the group is set.
func (m *Match) Range(i int) (start, end int, ok bool) {
	if !m.matched || i < 0 || i >= m.NumGroups() || m.slots[2*i] < 0 {
		return -1, -1, false
	}
	return m.slots[2*i], m.slots[2*i+1], true
}

// IsSet reports whether group i took part in the match.
func (m *Match) IsSet(i int) bool {
	_, _, ok := m.Range(i)
	return ok
}

// GroupBytes returns the text of group i, or nil if it is unset. The slice
// aliases the input.
func (m *Match) GroupBytes(i int) []byte {
	start, end, ok := m.Range(i)
	if !ok {
		return nil
	}
	return m.input[start:end:end]
}

// GroupString returns the text of group i, or "" if it is unset.
func (m *Match) GroupString(i int) string {
	return string(m.GroupBytes(i))
}

// NamedString returns the text of the named group and whether it is set.
func (m *Match) NamedString(name string) (string, bool) {
	i := m.pattern.SubexpIndex(name)
	if !m.IsSet(i) {
		return "", false
	}
	return m.GroupString(i), true
}

// Indices returns a copy of the offsets in the layout of the standard
// library's FindSubmatchIndex: start and end of group i at 2*i and 2*i+1.
// It returns nil for a failed match.
func (m *Match) Indices() []int {
	if !m.matched {
		return nil
	}
	return append([]int(nil), m.slots...)
}
