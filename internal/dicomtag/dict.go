package dicomtag

import "github.com/suyashkumar/dicom/pkg/tag"

// dictionary lists the data elements the classifier cares about, in tag
// order. Everything else in the header is skipped unread.
var dictionary = []struct {
	keyword string
	tag     tag.Tag
}{
	{"ImageType", tag.ImageType},
	{"SOPClassUID", tag.SOPClassUID},
	{"StudyDate", tag.StudyDate},
	{"Modality", tag.Modality},
	{"StudyDescription", tag.StudyDescription},
	{"SeriesDescription", tag.SeriesDescription},
	{"PatientName", tag.PatientName},
	{"PatientID", tag.PatientID},
	{"MRAcquisitionType", tag.MRAcquisitionType},
	{"SequenceName", tag.SequenceName},
	{"ProtocolName", tag.ProtocolName},
	{"StudyInstanceUID", tag.StudyInstanceUID},
	{"SeriesInstanceUID", tag.SeriesInstanceUID},
	{"SeriesNumber", tag.SeriesNumber},
	{"InstanceNumber", tag.InstanceNumber},
}

// Keywords returns every tag keyword the reader can extract, sorted by tag.
func Keywords() []string {
	names := make([]string, len(dictionary))
	for i, entry := range dictionary {
		names[i] = entry.keyword
	}
	return names
}
