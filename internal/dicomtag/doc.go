// Package dicomtag extracts string-valued header tags from DICOM files.
//
// Parsing is delegated to github.com/suyashkumar/dicom with pixel data
// skipped; this package only narrows the parsed dataset down to the tags in
// its keyword dictionary and renders their values as trimmed strings.
package dicomtag
