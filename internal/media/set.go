package media

import "sort"

// Set is an immutable set of image references.
type Set struct {
	refs map[string]struct{}
}

// NewSet builds a set from refs, ignoring blanks and duplicates.
func NewSet(refs []string) *Set {
	s := &Set{refs: make(map[string]struct{}, len(refs))}
	for _, ref := range refs {
		if ref != "" {
			s.refs[ref] = struct{}{}
		}
	}
	return s
}

// Contains checks if ref is a preset image.
func (s *Set) Contains(ref string) bool {
	if s == nil {
		return false
	}
	_, exists := s.refs[ref]
	return exists
}

// Len returns the number of images in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.refs)
}

// Refs returns the references in lexical order.
func (s *Set) Refs() []string {
	if s == nil {
		return []string{}
	}
	refs := make([]string, 0, len(s.refs))
	for ref := range s.refs {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
