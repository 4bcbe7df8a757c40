package document

import "slices"

// selection is an ordered set of top-level object IDs.
type selection struct {
	ids []string
}

func (s *selection) has(id string) bool {
	return slices.Contains(s.ids, id)
}

// set replaces the selection, reporting whether it changed.
func (s *selection) set(ids []string) bool {
	next := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	if slices.Equal(s.ids, next) {
		return false
	}
	s.ids = next
	return true
}

func (s *selection) clear() bool {
	if len(s.ids) == 0 {
		return false
	}
	s.ids = nil
	return true
}

// prune drops IDs no longer present in c, reporting whether any were dropped.
func (s *selection) prune(c *Canvas) bool {
	kept := s.ids[:0]
	for _, id := range s.ids {
		if i := c.index(id); i >= 0 && c.Objects[i].IsSelectable() {
			kept = append(kept, id)
		}
	}
	changed := len(kept) != len(s.ids)
	s.ids = kept
	return changed
}

func (s *selection) list() []string {
	return slices.Clone(s.ids)
}
