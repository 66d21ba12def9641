// Package classify walks a source tree of per-case series directories and
// builds the nested case -> category -> path index.
//
// The walk applies the candidate filter to each file, inspects at most one
// representative file per directory (see ScanPolicy), evaluates every
// configured rule category against that file's metadata, and records matches
// into the Index. Completeness checking over the finished index lives here
// too, since it is defined purely in terms of the index and the rule set.
package classify
