// Package section defines the data model shared by the portal client,
// the aggregation pipeline and the caches: section identity, sub-resource
// results, the merged detail record and term listing records.
package section
