// Command anidex builds a cross-referenced anime catalog: it fetches titles
// from AniList, matches them against TMDB, enriches the matches with TMDB
// detail data, and exports validated datasets.
package main
