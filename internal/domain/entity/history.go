package entity

import "slices"

// LogoHistory is an ordered list of logo paths, most recently used first.
type LogoHistory []string

// Contains reports whether path is present in the history.
func (h LogoHistory) Contains(path string) bool {
	return slices.Contains(h, path)
}

// Clone returns a copy that can be handed out without exposing the backing array.
func (h LogoHistory) Clone() LogoHistory {
	if h == nil {
		return LogoHistory{}
	}
	return slices.Clone(h)
}

// Touch moves path to the front, removing any previous occurrence.
func (h LogoHistory) Touch(path string) LogoHistory {
	if path == "" {
		return h
	}
	out := make(LogoHistory, 0, len(h)+1)
	out = append(out, path)
	for _, p := range h {
		if p != path {
			out = append(out, p)
		}
	}
	return out
}
