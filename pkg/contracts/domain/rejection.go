package domain

// RejectReason classifies why a raw token could not be normalized
type RejectReason string

const (
	// RejectMalformedShape covers tokens that do not form the three
	// logical segments course / term / grade, whatever the delimiters.
	RejectMalformedShape RejectReason = "MALFORMED_SHAPE"
	// RejectInvalidCourse covers a first segment that is not letters
	// followed by digits.
	RejectInvalidCourse RejectReason = "INVALID_COURSE"
	// RejectInvalidSemester covers an unrecognized term keyword.
	RejectInvalidSemester RejectReason = "INVALID_SEMESTER"
	// RejectInvalidYear covers a year that is non-numeric, not four
	// digits, or outside the configured bounds.
	RejectInvalidYear RejectReason = "INVALID_YEAR"
	// RejectInvalidGrade covers a grade outside the lexicon and its
	// documented aliases.
	RejectInvalidGrade RejectReason = "INVALID_GRADE"
)

// RejectReasons lists the full taxonomy in severity-neutral display order
func RejectReasons() []RejectReason {
	return []RejectReason{
		RejectMalformedShape,
		RejectInvalidCourse,
		RejectInvalidSemester,
		RejectInvalidYear,
		RejectInvalidGrade,
	}
}

// Rejection represents one raw value that failed normalization, with enough
// source context to locate it in the original export.
type Rejection struct {
	StudentID string       `json:"student_id,omitempty"`
	RowIndex  int          `json:"row_index"`
	Column    string       `json:"column,omitempty"`
	Raw       string       `json:"raw"`
	Reason    RejectReason `json:"reason"`
	Detail    string       `json:"detail,omitempty"`
	Source    string       `json:"source,omitempty"`
}
