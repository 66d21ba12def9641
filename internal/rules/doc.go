// Package rules loads and evaluates the declarative tag-matching rule set.
//
// A rule set maps category names (modalities) to metadata tag constraints.
// Each tag carries an ordered list of value groups; a group is a list of
// alternative substrings. A category matches a file when every declared group
// is satisfied by the file's metadata: AND across groups, OR within a group.
// A required tag that is absent from the metadata is a configuration error,
// never a silent non-match.
package rules
