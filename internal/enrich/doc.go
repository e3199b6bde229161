// Package enrich attaches TMDB detail payloads to matched catalog items.
// Lookups go through a two-level cache (in-memory LRU over a SQLite store)
// keyed by media type and TMDB id, so re-runs and items matched to the same
// record never hit the API twice.
package enrich
