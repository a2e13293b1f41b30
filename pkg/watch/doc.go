// Package watch re-runs validation when input files change.
//
// The watcher observes the parent directories of the input files rather
// than the files themselves, so editors that save by writing a temporary
// file and renaming it over the original are still seen. Bursts of events
// are coalesced by a Debouncer and delivered as one callback listing every
// changed file.
package watch
