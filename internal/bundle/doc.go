// Package bundle turns a classified index into on-disk artifacts. Each
// matched case/category pair is packed into a gzip-compressed tar archive
// under the output directory, one subdirectory per case. A flock guard
// keeps concurrent runs from writing to the same destination, and an
// optional JSON manifest records what a run produced.
package bundle
