package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"anidex/internal/catalog"
)

// stopwords are filler tokens that carry no identity: articles, season and
// release-format markers. Dropped exact-token after lowercasing, no stemming.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {},
	"season": {}, "seasons": {},
	"part": {}, "parts": {},
	"cour":    {},
	"episode": {}, "episodes": {},
	"tv": {}, "series": {},
	"movie": {}, "film": {},
	"ova": {}, "ona": {}, "special": {}, "specials": {},
	"anime": {},
}

// symbolPattern matches everything that is not a letter, digit, underscore,
// or whitespace. \p{L} covers Hiragana, Katakana, and CJK ideographs, so
// Japanese titles keep their script while punctuation becomes spaces.
var symbolPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Title normalizes a display title for comparison. The result is a
// lowercased, accent-folded, stopword-free token string; empty output means
// the title carries no usable text. Normalization is idempotent.
func Title(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}

	text := strings.ToLower(title)
	text = foldAccents(text)
	text = symbolPattern.ReplaceAllString(text, " ")

	words := strings.Fields(text)
	kept := words[:0]
	for _, word := range words {
		if _, skip := stopwords[word]; !skip {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}

// Set normalizes each title variant independently. Variants whose source is
// empty, or whose normalized form collapses to nothing, stay empty.
func Set(titles catalog.TitleSet) catalog.NormalizedTitleSet {
	return catalog.NormalizedTitleSet{
		Romaji:  Title(titles.Romaji),
		English: Title(titles.English),
		Native:  Title(titles.Native),
	}
}

// foldAccents decomposes accented Latin characters and strips the combining
// marks. CJK has no canonical decomposition, so it passes through unchanged.
func foldAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}
