// Package tmdb wraps the subset of The Movie Database API the pipeline
// needs: multi search for candidate discovery and detail/video lookups for
// enrichment. Requests rotate through the configured bearer tokens so a
// large run spreads its rate-limit budget across all of them.
package tmdb
