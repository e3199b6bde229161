// Package catalog defines the anime records that flow through the pipeline:
// title sets pulled from AniList, match decisions against TMDB, and the
// enrichment payloads attached to matched entries. It also owns the JSON
// dataset files the stages hand to each other.
//
// The field names and JSON shapes in this package are the stable contract
// between stages and with downstream consumers of the exported datasets.
package catalog
