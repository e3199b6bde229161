// Package export turns the enriched working dataset into the published
// artifacts: partitioned datasets by match outcome, schema-validated
// enriched records, and id-to-index lookup tables.
package export
