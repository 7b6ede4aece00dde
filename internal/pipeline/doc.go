// Package pipeline drives the per-title processing loop.
//
// Runner walks the input titles strictly in order with one shared browsing
// session. Each title is resolved to a record, its attributes are extracted,
// and exactly one outcome is appended to the result store. Failures and panics
// while processing a title become an error row for that title and never stop
// the loop; only a store failure or a cancelled context ends a run early.
package pipeline
