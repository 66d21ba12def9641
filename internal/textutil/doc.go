// Package textutil provides text processing utilities for case and category
// naming.
//
// Case identities come straight from patient-name metadata and may contain
// DICOM caret separators, diacritics, and filesystem-unsafe characters; the
// helpers here fold them into stable tokens usable as directory names and
// into readable labels for report output.
package textutil
