// Package watcher implements the engine that manages one independent
// polling task per watched root, the subsumption rules that keep
// overlapping watches from duplicating work, and the fan-in of all
// per-root change events into a single consumer stream.
package watcher
