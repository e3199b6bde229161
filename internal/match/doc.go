// Package match decides whether an AniList catalog item and a TMDB search
// result name the same work. It derives prioritized search titles, queries a
// search provider, scores candidates with the similarity composite, and
// folds everything into one match decision per item.
//
// The matcher is total: provider failures and malformed candidates degrade
// to "no candidates", never into an error that would abort a batch.
package match
