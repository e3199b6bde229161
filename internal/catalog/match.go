package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MediaType identifies the TMDB media kind a match points at.
type MediaType string

const (
	MediaTypeTV    MediaType = "tv"
	MediaTypeMovie MediaType = "movie"
)

// IsValid reports whether the media type is one the pipeline accepts.
func (m MediaType) IsValid() bool {
	return m == MediaTypeTV || m == MediaTypeMovie
}

// MatchStatus enumerates the possible outcomes of one match attempt.
type MatchStatus int

const (
	// StatusNotProcessed marks an item the matcher has not seen yet.
	StatusNotProcessed MatchStatus = iota
	// StatusNotFound means no candidates were retrieved at all.
	StatusNotFound
	// StatusNotMatched means candidates existed but none cleared the
	// acceptance threshold.
	StatusNotMatched
	// StatusMatched means an acceptable candidate was found.
	StatusMatched
)

// Match method values recorded on accepted and rejected decisions.
const (
	MethodTitleSimilarity     = "title_similarity"
	MethodTitleSimilarityFast = "title_similarity_fast"
)

func (s MatchStatus) String() string {
	switch s {
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusNotMatched:
		return "NOT_MATCHED"
	case StatusMatched:
		return "MATCHED"
	default:
		return "NOT_PROCESSED"
	}
}

func parseMatchStatus(value string) (MatchStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "NOT_PROCESSED", "":
		return StatusNotProcessed, nil
	case "NOT_FOUND":
		return StatusNotFound, nil
	case "NOT_MATCHED":
		return StatusNotMatched, nil
	case "MATCHED":
		return StatusMatched, nil
	default:
		return StatusNotProcessed, fmt.Errorf("unknown match status %q", value)
	}
}

// Match is the decision recorded for one catalog item. Which fields are
// meaningful depends on Status: NotFound carries nothing, NotMatched carries
// Method and Score, Matched additionally carries TMDBID and MediaType.
type Match struct {
	Status    MatchStatus
	TMDBID    int64
	MediaType MediaType
	Method    string
	Score     float64
}

// NotFound builds the decision for an item with no retrieved candidates.
func NotFound() Match {
	return Match{Status: StatusNotFound}
}

// NotMatched builds the decision for an item whose best candidate fell short
// of the acceptance threshold.
func NotMatched(method string, score float64) Match {
	return Match{Status: StatusNotMatched, Method: method, Score: score}
}

// Matched builds an accepted decision pointing at a TMDB entry.
func Matched(tmdbID int64, mediaType MediaType, method string, score float64) Match {
	return Match{
		Status:    StatusMatched,
		TMDBID:    tmdbID,
		MediaType: mediaType,
		Method:    method,
		Score:     score,
	}
}

// matchJSON is the wire shape shared by all statuses.
type matchJSON struct {
	Status    string    `json:"status"`
	TMDBID    int64     `json:"tmdb_id,omitempty"`
	MediaType MediaType `json:"media_type,omitempty"`
	Method    string    `json:"method,omitempty"`
	Score     *float64  `json:"score,omitempty"`
}

// MarshalJSON emits only the fields meaningful for the match status, keeping
// the on-disk shape identical across pipeline stages.
func (m Match) MarshalJSON() ([]byte, error) {
	payload := matchJSON{Status: m.Status.String()}
	switch m.Status {
	case StatusMatched:
		payload.TMDBID = m.TMDBID
		payload.MediaType = m.MediaType
		payload.Method = m.Method
		payload.Score = &m.Score
	case StatusNotMatched:
		payload.Method = m.Method
		payload.Score = &m.Score
	}
	return json.Marshal(payload)
}

func (m *Match) UnmarshalJSON(data []byte) error {
	var payload matchJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	status, err := parseMatchStatus(payload.Status)
	if err != nil {
		return err
	}
	*m = Match{Status: status}
	switch status {
	case StatusMatched:
		m.TMDBID = payload.TMDBID
		m.MediaType = payload.MediaType
		m.Method = payload.Method
	case StatusNotMatched:
		m.Method = payload.Method
	}
	if payload.Score != nil && (status == StatusMatched || status == StatusNotMatched) {
		m.Score = *payload.Score
	}
	return nil
}
