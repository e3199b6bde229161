package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"anidex/internal/catalog"
	"anidex/internal/logging"
)

// Image size segments appended to the configured image base URL.
const (
	posterSize   = "w500"
	backdropSize = "w780"
)

type detailsResponse struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Title            string  `json:"title"`
	OriginalName     string  `json:"original_name"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	FirstAirDate     string  `json:"first_air_date"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	Status           string  `json:"status"`
	Genres           []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

type videosResponse struct {
	Results []struct {
		Site     string `json:"site"`
		Type     string `json:"type"`
		Key      string `json:"key"`
		Official bool   `json:"official"`
	} `json:"results"`
}

func (d detailsResponse) displayTitle() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Title
}

func (d detailsResponse) originalTitle() string {
	if d.OriginalName != "" {
		return d.OriginalName
	}
	return d.OriginalTitle
}

func (d detailsResponse) year() int {
	date := d.FirstAirDate
	if date == "" {
		date = d.ReleaseDate
	}
	if len(date) < 4 {
		return 0
	}
	var year int
	if _, err := fmt.Sscanf(date[:4], "%d", &year); err != nil {
		return 0
	}
	return year
}

// Details fetches a single TV show or movie record in the given language.
func (c *Client) details(ctx context.Context, mediaType catalog.MediaType, id int64, language string) (*detailsResponse, error) {
	params := url.Values{}
	if language != "" {
		params.Set("language", language)
	}
	var decoded detailsResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", mediaPath(mediaType), id), params, &decoded); err != nil {
		return nil, err
	}
	return &decoded, nil
}

// trailer returns the key of the best official YouTube trailer, preferring
// official uploads, or an empty string when none exists.
func (c *Client) trailer(ctx context.Context, mediaType catalog.MediaType, id int64) (string, error) {
	var decoded videosResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/videos", mediaPath(mediaType), id), url.Values{}, &decoded); err != nil {
		return "", err
	}

	var fallback string
	for _, video := range decoded.Results {
		if !strings.EqualFold(video.Site, "YouTube") || !strings.EqualFold(video.Type, "Trailer") {
			continue
		}
		if video.Official {
			return video.Key, nil
		}
		if fallback == "" {
			fallback = video.Key
		}
	}
	return fallback, nil
}

// Enrich fetches the localized, fallback, and neutral views of a matched
// record. localizedLang is attached only when TMDB actually has an overview
// in that language; the fallback view is always attached.
func (c *Client) Enrich(ctx context.Context, mediaType catalog.MediaType, id int64, localizedLang, fallbackLang string) (*catalog.Enrichment, error) {
	fallback, err := c.details(ctx, mediaType, id, fallbackLang)
	if err != nil {
		return nil, fmt.Errorf("details %s/%d: %w", mediaType, id, err)
	}

	trailerKey, err := c.trailer(ctx, mediaType, id)
	if err != nil {
		// Videos are decoration; a failed lookup must not sink the item.
		c.logger.Warn("trailer lookup failed",
			logging.String("media_type", string(mediaType)),
			logging.Int64("tmdb_id", id))
		trailerKey = ""
	}

	genres := make([]string, 0, len(fallback.Genres))
	for _, genre := range fallback.Genres {
		genres = append(genres, genre.Name)
	}

	enrichment := &catalog.Enrichment{
		TMDB: &catalog.TMDBInfo{
			ID:               fallback.ID,
			MediaType:        mediaType,
			OriginalLanguage: fallback.OriginalLanguage,
			OriginalName:     fallback.originalTitle(),
			Year:             fallback.year(),
			VoteAverage:      fallback.VoteAverage,
			VoteCount:        fallback.VoteCount,
			Popularity:       fallback.Popularity,
			Status:           fallback.Status,
			Genres:           genres,
			Trailer:          youtubeURL(trailerKey),
		},
		Fallback: c.localizedInfo(fallback, fallbackLang),
	}

	if localizedLang != "" && !strings.EqualFold(localizedLang, fallbackLang) {
		localized, err := c.details(ctx, mediaType, id, localizedLang)
		if err != nil {
			return nil, fmt.Errorf("localized details %s/%d: %w", mediaType, id, err)
		}
		if strings.TrimSpace(localized.Overview) != "" {
			enrichment.Localized = c.localizedInfo(localized, localizedLang)
		}
	}

	return enrichment, nil
}

func (c *Client) localizedInfo(d *detailsResponse, language string) *catalog.LocalizedInfo {
	return &catalog.LocalizedInfo{
		Language: language,
		Title:    d.displayTitle(),
		Overview: strings.TrimSpace(d.Overview),
		Poster:   c.imageURL(d.PosterPath, posterSize),
		Backdrop: c.imageURL(d.BackdropPath, backdropSize),
	}
}

func (c *Client) imageURL(path, size string) string {
	if path == "" || c.imageBaseURL == "" {
		return ""
	}
	return strings.TrimRight(c.imageBaseURL, "/") + "/" + size + path
}

func youtubeURL(key string) string {
	if key == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + key
}

func mediaPath(mediaType catalog.MediaType) string {
	if mediaType == catalog.MediaTypeMovie {
		return "movie"
	}
	return "tv"
}
