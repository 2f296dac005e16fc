package snapshot

import "sort"

// Set is an unordered collection of follower usernames
type Set map[string]struct{}

// NewSet builds a set; duplicates collapse
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

func (s Set) Len() int {
	return len(s)
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexicographic order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Minus returns the members of s that are not in other
func (s Set) Minus(other Set) Set {
	out := make(Set)
	for name := range s {
		if !other.Has(name) {
			out[name] = struct{}{}
		}
	}
	return out
}
