// Package metacache persists parsed header tags between runs.
//
// Entries are keyed by path plus file size and modification time, so a
// changed file always re-parses. The cache never stores the path index
// itself; classification rebuilds the index from the filesystem on every
// invocation and only the per-file tag extraction is skipped on a hit.
package metacache
