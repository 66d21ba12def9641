package classify

// ScanPolicy controls how many files per directory the classifier inspects.
type ScanPolicy int

const (
	// FirstCandidatePerDir stops inspecting a directory at its first accepted
	// candidate, treating that file as representative for the whole series.
	// This assumes all files in one leaf directory share the same series
	// metadata, which the input layout must guarantee.
	FirstCandidatePerDir ScanPolicy = iota
	// EveryCandidate inspects every accepted candidate. Slower, but tolerant
	// of directories mixing several series.
	EveryCandidate
)

func (p ScanPolicy) String() string {
	switch p {
	case FirstCandidatePerDir:
		return "first-candidate-per-dir"
	case EveryCandidate:
		return "every-candidate"
	default:
		return "unknown"
	}
}
