// Package pipeline orchestrates the five catalog stages: fetch, normalize,
// match, enrich, and export. Every stage reads the dataset the previous
// stage wrote and writes its own, so a run can resume from any point. A
// data-directory lock keeps concurrent runs from clobbering each other.
package pipeline
