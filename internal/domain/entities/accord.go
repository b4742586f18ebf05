package entities

// AccordSet is a deduplicated collection of accord names.
// Iteration follows first-insertion order so file creation is deterministic.
type AccordSet struct {
	order []string
	seen  map[string]struct{}
}

// NewAccordSet creates an empty set.
func NewAccordSet() *AccordSet {
	return &AccordSet{
		seen: make(map[string]struct{}),
	}
}

// Add inserts an accord and reports whether it was new.
func (s *AccordSet) Add(accord string) bool {
	if _, ok := s.seen[accord]; ok {
		return false
	}
	s.seen[accord] = struct{}{}
	s.order = append(s.order, accord)
	return true
}

// Len returns the number of distinct accords.
func (s *AccordSet) Len() int {
	return len(s.order)
}

// Values returns the accords in insertion order.
func (s *AccordSet) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
