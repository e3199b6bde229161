package catalog

import "strings"

// TMDBInfo is the language-neutral slice of a TMDB record kept on enriched
// items.
type TMDBInfo struct {
	ID               int64     `json:"id"`
	MediaType        MediaType `json:"media_type"`
	OriginalLanguage string    `json:"original_language,omitempty"`
	OriginalName     string    `json:"original_name,omitempty"`
	Year             int       `json:"year,omitempty"`
	VoteAverage      float64   `json:"vote_average,omitempty"`
	VoteCount        int64     `json:"vote_count,omitempty"`
	Popularity       float64   `json:"popularity,omitempty"`
	Status           string    `json:"status,omitempty"`
	Genres           []string  `json:"genres,omitempty"`
	Trailer          string    `json:"trailer,omitempty"`
}

// LocalizedInfo holds the display fields of a TMDB record for one language.
type LocalizedInfo struct {
	Language string `json:"language"`
	Title    string `json:"title,omitempty"`
	Overview string `json:"overview,omitempty"`
	Poster   string `json:"poster,omitempty"`
	Backdrop string `json:"backdrop,omitempty"`
}

// Enrichment bundles the three TMDB views attached to a matched item.
type Enrichment struct {
	TMDB      *TMDBInfo      `json:"tmdb"`
	Localized *LocalizedInfo `json:"tmdb_localized"`
	Fallback  *LocalizedInfo `json:"tmdb_fallback"`
}

// Anime is one catalog item as it moves through the pipeline. The Normalized
// set is transient working data: the normalize stage fills it and the export
// stage strips it before writing final datasets.
type Anime struct {
	AnilistID    int64              `json:"anilist_id"`
	Titles       TitleSet           `json:"titles"`
	Format       string             `json:"format,omitempty"`
	Status       string             `json:"status,omitempty"`
	Episodes     int                `json:"episodes,omitempty"`
	Year         int                `json:"year,omitempty"`
	Genres       []string           `json:"genres,omitempty"`
	AnilistScore float64            `json:"anilist_score,omitempty"`
	Popularity   int64              `json:"popularity,omitempty"`
	Normalized   NormalizedTitleSet `json:"_normalized,omitzero"`
	Match        Match              `json:"match"`

	// Denormalized from Match for downstream convenience.
	TMDBID    int64     `json:"tmdb_id,omitempty"`
	MediaType MediaType `json:"media_type,omitempty"`

	// Filled by the enrichment stage; explicit nulls for unmatched items.
	TMDB      *TMDBInfo      `json:"tmdb"`
	Localized *LocalizedInfo `json:"tmdb_localized"`
	Fallback  *LocalizedInfo `json:"tmdb_fallback"`
}

// DisplayTitle returns the best human-readable title for log lines.
func (a *Anime) DisplayTitle() string {
	for _, title := range []string{a.Titles.English, a.Titles.Romaji, a.Titles.Native} {
		if s := strings.TrimSpace(title); s != "" {
			return s
		}
	}
	return "(untitled)"
}

// ApplyMatch records the decision and mirrors the TMDB pointer fields for
// accepted matches.
func (a *Anime) ApplyMatch(m Match) {
	a.Match = m
	if m.Status == StatusMatched {
		a.TMDBID = m.TMDBID
		a.MediaType = m.MediaType
	}
}

// ApplyEnrichment attaches the enrichment payload; a nil payload records
// explicit nulls so exported datasets distinguish "enrichment failed" from
// "not attempted".
func (a *Anime) ApplyEnrichment(e *Enrichment) {
	if e == nil {
		a.TMDB = nil
		a.Localized = nil
		a.Fallback = nil
		return
	}
	a.TMDB = e.TMDB
	a.Localized = e.Localized
	a.Fallback = e.Fallback
}
