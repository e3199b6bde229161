package catalog

import "strings"

// TitleSet holds the romanization/script variants of a work's title as
// delivered by AniList. Any of the three fields may be empty; matching is
// meaningless only when all of them are.
type TitleSet struct {
	Romaji  string `json:"romaji,omitempty"`
	English string `json:"english,omitempty"`
	Native  string `json:"native,omitempty"`
}

// IsEmpty reports whether no title variant carries usable text.
func (t TitleSet) IsEmpty() bool {
	return strings.TrimSpace(t.Romaji) == "" &&
		strings.TrimSpace(t.English) == "" &&
		strings.TrimSpace(t.Native) == ""
}

// NormalizedTitleSet carries the comparison forms of a TitleSet. A key whose
// source title was empty, or normalized to nothing, stays empty here and is
// omitted from the JSON encoding.
type NormalizedTitleSet struct {
	Romaji  string `json:"romaji,omitempty"`
	English string `json:"english,omitempty"`
	Native  string `json:"native,omitempty"`
}

// IsEmpty reports whether the set contains no normalized titles at all.
func (n NormalizedTitleSet) IsEmpty() bool {
	return n == NormalizedTitleSet{}
}
