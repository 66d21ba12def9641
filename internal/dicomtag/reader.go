package dicomtag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"

	"cohort/internal/errs"
)

// Metadata is the key->value view of one file's header tags. Keys are DICOM
// keywords from the dictionary; values are trimmed strings.
type Metadata map[string]string

// Get returns the value for a tag keyword.
func (m Metadata) Get(key string) (string, bool) {
	value, ok := m[key]
	return value, ok
}

// Reader extracts metadata from a single file.
type Reader interface {
	Read(path string) (Metadata, error)
}

// FileReader parses DICOM headers from disk.
type FileReader struct{}

// NewReader returns the default file-backed metadata reader.
func NewReader() *FileReader {
	return &FileReader{}
}

// Read parses path as a DICOM file and extracts the dictionary tags from its
// header. Pixel data is skipped, so large series files stay cheap to read.
func (r *FileReader) Read(path string) (Metadata, error) {
	dataset, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return nil, errs.Wrap(errs.ErrIO, "dicomtag", "read", fmt.Sprintf("parse %s", path), err)
	}
	return extract(dataset), nil
}

// extract pulls the dictionary keywords out of a parsed dataset. Absent and
// empty elements are left out of the map.
func extract(dataset dicom.Dataset) Metadata {
	meta := make(Metadata)
	for _, entry := range dictionary {
		element, err := dataset.FindElementByTag(entry.tag)
		if err != nil || element.Value == nil {
			continue
		}
		if text := stringify(element.Value.GetValue()); text != "" {
			meta[entry.keyword] = text
		}
	}
	return meta
}

// stringify renders an element value the way it appears on the wire: multiple
// values rejoined with backslashes, even-length padding trimmed.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimRight(v, " \x00")
	case []string:
		parts := make([]string, 0, len(v))
		for _, s := range v {
			if s = strings.TrimRight(s, " \x00"); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, `\`)
	case []int:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, `\`)
	case []float64:
		parts := make([]string, len(v))
		for i, f := range v {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, `\`)
	}
	return ""
}
