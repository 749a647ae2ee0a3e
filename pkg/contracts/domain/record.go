package domain

// Semester represents an academic term
type Semester string

const (
	SemesterFall   Semester = "FALL"
	SemesterSpring Semester = "SPRING"
	SemesterSummer Semester = "SUMMER"
	SemesterWinter Semester = "WINTER"
)

// Semesters lists every recognized term in canonical order
func Semesters() []Semester {
	return []Semester{SemesterFall, SemesterSpring, SemesterSummer, SemesterWinter}
}

// GradeValue represents a canonical grade from the closed grade lexicon
type GradeValue string

const (
	GradeAPlus      GradeValue = "A+"
	GradeA          GradeValue = "A"
	GradeAMinus     GradeValue = "A-"
	GradeBPlus      GradeValue = "B+"
	GradeB          GradeValue = "B"
	GradeBMinus     GradeValue = "B-"
	GradeCPlus      GradeValue = "C+"
	GradeC          GradeValue = "C"
	GradeCMinus     GradeValue = "C-"
	GradeDPlus      GradeValue = "D+"
	GradeD          GradeValue = "D"
	GradeDMinus     GradeValue = "D-"
	GradeFPlus      GradeValue = "F+"
	GradeF          GradeValue = "F"
	GradeFMinus     GradeValue = "F-"
	GradePass       GradeValue = "P"
	GradeRepeat     GradeValue = "R"
	GradeIncomplete GradeValue = "INCOMPLETE"
)

// CourseRecord represents one normalized student-course observation
type CourseRecord struct {
	StudentID string     `json:"student_id" validate:"required"`
	Course    string     `json:"course" validate:"required"`
	Semester  Semester   `json:"semester" validate:"required,oneof=FALL SPRING SUMMER WINTER"`
	Year      int        `json:"year" validate:"required,min=1900,max=2100"`
	Grade     GradeValue `json:"grade" validate:"required"`
	Program   Program    `json:"program,omitempty"`
}

// Program represents a degree program bucket. ProgramSPTH marks speech
// therapy rows whose cohort year could not be read from the student ID and
// which therefore belong to neither the old nor the new plan bucket.
type Program string

const (
	ProgramPBHL    Program = "PBHL"
	ProgramSPTH    Program = "SPTH"
	ProgramSPTHOld Program = "SPTH_OLD"
	ProgramSPTHNew Program = "SPTH_NEW"
	ProgramNURS    Program = "NURS"
	ProgramMAJRLS  Program = "MAJRLS"
	ProgramUnknown Program = "UNKNOWN"
)
