package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

type element struct {
	group   uint16
	elem    uint16
	vr      string
	padding byte
}

// fixtureTags covers the keywords the classifier reads, with realistic VRs.
var fixtureTags = map[string]element{
	"ImageType":         {0x0008, 0x0008, "CS", ' '},
	"Modality":          {0x0008, 0x0060, "CS", ' '},
	"StudyDescription":  {0x0008, 0x1030, "LO", ' '},
	"SeriesDescription": {0x0008, 0x103E, "LO", ' '},
	"PatientName":       {0x0010, 0x0010, "PN", ' '},
	"PatientID":         {0x0010, 0x0020, "LO", ' '},
	"MRAcquisitionType": {0x0018, 0x0023, "CS", ' '},
	"SequenceName":      {0x0018, 0x0024, "SH", ' '},
	"ProtocolName":      {0x0018, 0x1030, "LO", ' '},
	"SeriesInstanceUID": {0x0020, 0x000E, "UI", 0},
	"SeriesNumber":      {0x0020, 0x0011, "IS", ' '},
}

const (
	tsExplicitLE = "1.2.840.10008.1.2.1"
	tsImplicitLE = "1.2.840.10008.1.2"

	mrImageStorage = "1.2.840.10008.5.1.4.1.1.4"
)

// DicomOption adjusts the synthesized file layout.
type DicomOption func(*dicomLayout)

type dicomLayout struct {
	implicit bool
}

// ImplicitVR encodes the dataset with implicit VR little-endian headers and
// advertises that transfer syntax in the file meta group.
func ImplicitVR() DicomOption {
	return func(l *dicomLayout) { l.implicit = true }
}

// EncodeDicom builds a minimal but well-formed DICOM Part 10 stream: 128-byte
// preamble, DICM marker, file meta group, then the given dataset tags.
// Unknown keywords panic so typos surface in the test, not the assertion.
func EncodeDicom(tags map[string]string, opts ...DicomOption) []byte {
	var layout dicomLayout
	for _, opt := range opts {
		opt(&layout)
	}

	var buf bytes.Buffer
	buf.Write(make([]byte, 128))
	buf.WriteString("DICM")
	writeFileMeta(&buf, layout.implicit)

	ordered := make([]string, 0, len(tags))
	for keyword := range tags {
		ordered = append(ordered, keyword)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, okA := fixtureTags[ordered[i]]
		b, okB := fixtureTags[ordered[j]]
		if !okA || !okB {
			panic("testsupport: unknown DICOM keyword " + ordered[i] + "/" + ordered[j])
		}
		if a.group != b.group {
			return a.group < b.group
		}
		return a.elem < b.elem
	})

	for _, keyword := range ordered {
		el := fixtureTags[keyword]
		value := []byte(tags[keyword])
		if len(value)%2 == 1 {
			value = append(value, el.padding)
		}

		binary.Write(&buf, binary.LittleEndian, el.group)
		binary.Write(&buf, binary.LittleEndian, el.elem)
		if layout.implicit {
			binary.Write(&buf, binary.LittleEndian, uint32(len(value)))
		} else {
			buf.WriteString(el.vr)
			binary.Write(&buf, binary.LittleEndian, uint16(len(value)))
		}
		buf.Write(value)
	}
	return buf.Bytes()
}

// writeFileMeta emits the explicit-VR group 0002 elements: group length, meta
// version, SOP identifiers, and the dataset transfer syntax.
func writeFileMeta(buf *bytes.Buffer, implicit bool) {
	syntax := tsExplicitLE
	if implicit {
		syntax = tsImplicitLE
	}

	var meta bytes.Buffer
	writeMetaElement(&meta, 0x0001, "OB", []byte{0x00, 0x01})
	writeMetaElement(&meta, 0x0002, "UI", []byte(mrImageStorage))
	writeMetaElement(&meta, 0x0003, "UI", []byte("1.2.826.0.1.3680043.2.1125.1"))
	writeMetaElement(&meta, 0x0010, "UI", []byte(syntax))

	// The group length element counts every meta byte that follows it.
	binary.Write(buf, binary.LittleEndian, uint16(0x0002))
	binary.Write(buf, binary.LittleEndian, uint16(0x0000))
	buf.WriteString("UL")
	binary.Write(buf, binary.LittleEndian, uint16(4))
	binary.Write(buf, binary.LittleEndian, uint32(meta.Len()))
	buf.Write(meta.Bytes())
}

func writeMetaElement(buf *bytes.Buffer, elem uint16, vr string, value []byte) {
	if len(value)%2 == 1 {
		value = append(value, 0x00)
	}
	binary.Write(buf, binary.LittleEndian, uint16(0x0002))
	binary.Write(buf, binary.LittleEndian, elem)
	buf.WriteString(vr)
	if vr == "OB" {
		buf.Write([]byte{0x00, 0x00})
		binary.Write(buf, binary.LittleEndian, uint32(len(value)))
	} else {
		binary.Write(buf, binary.LittleEndian, uint16(len(value)))
	}
	buf.Write(value)
}

// WriteDicom writes one synthesized DICOM file.
func WriteDicom(t testing.TB, path string, tags map[string]string, opts ...DicomOption) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, EncodeDicom(tags, opts...), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSeries fills dir with count identical-metadata DICOM files named
// IM-0001 style, the way scanner exports lay out one series per directory.
func WriteSeries(t testing.TB, dir string, count int, tags map[string]string, opts ...DicomOption) {
	t.Helper()
	if count < 1 {
		count = 1
	}
	for i := 1; i <= count; i++ {
		name := filepath.Join(dir, formatInstance(i))
		WriteDicom(t, name, tags, opts...)
	}
}

func formatInstance(i int) string {
	digits := []byte{'0', '0', '0', '0'}
	for pos := 3; pos >= 0 && i > 0; pos-- {
		digits[pos] = byte('0' + i%10)
		i /= 10
	}
	return "IM-" + string(digits)
}
