// Package checkpoint persists resumable search session state.
//
// A checkpoint remembers the query, the continuation cursor of the last
// fetched page, and the deviations already seen, so an interrupted
// session can pick up where it stopped instead of rewalking the result
// set. Saves are atomic: the file is written to a temp path and renamed
// into place, so a crash mid-save leaves the previous checkpoint intact.
package checkpoint
