// Package similarity scores how likely two normalized titles name the same
// work. The composite blends a subsequence edit ratio with word-set overlap
// and a substring bonus, bounded to [0, 1].
package similarity
