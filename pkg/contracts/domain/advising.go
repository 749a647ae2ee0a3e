package domain

// AdvisingStatus is the normalized advising decision for one course row.
// Source sheets spell these many ways; anything that is not a clear yes or
// optional counts as not advised.
type AdvisingStatus string

const (
	AdvisingYes        AdvisingStatus = "Yes"
	AdvisingOptional   AdvisingStatus = "Optional"
	AdvisingNotAdvised AdvisingStatus = "Not Advised"
)

// Rank orders statuses by strength so duplicates within one student sheet
// can keep the strongest reading: Yes > Optional > Not Advised.
func (s AdvisingStatus) Rank() int {
	switch s {
	case AdvisingYes:
		return 2
	case AdvisingOptional:
		return 1
	default:
		return 0
	}
}

// AdvisingEntry is one course row read from a student's advising sheet.
// CourseKey is the uppercase, space-stripped form used for grouping, so
// "ARAB 201" and "ARAB201" land in the same bucket.
type AdvisingEntry struct {
	Course    string         `json:"course"`
	CourseKey string         `json:"course_key"`
	Status    AdvisingStatus `json:"status"`
}

// StudentAdvising holds the entries extracted from one student's workbook.
// Student is the file stem; the sheets carry no usable identity cell.
type StudentAdvising struct {
	Student string          `json:"student"`
	Entries []AdvisingEntry `json:"entries"`
}

// AdvisingSummaryRow carries per-course status counts across all students
type AdvisingSummaryRow struct {
	CourseCode      string `json:"course_code"`
	YesCount        int    `json:"yes_count"`
	OptionalCount   int    `json:"optional_count"`
	NotAdvisedCount int    `json:"not_advised_count"`
}

// CourseGroup is one conflict-free group: the students who were advised
// exactly this set of courses.
type CourseGroup struct {
	Students []string `json:"students"`
	Courses  []string `json:"courses"`
}
