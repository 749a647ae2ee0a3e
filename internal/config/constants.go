package config

// Application constants - fixed values shared across the acadcli commands
const (
	// Application Info
	AppName    = "acadcli"
	AppVersion = "1.2.0"

	// File Paths (relative to the working directory)
	DefaultOutputDir = "out"
	DefaultLogsDir   = "logs"

	// Well-known output files
	TidyRecordsCSV       = "tidy_records.csv"
	TidyRecordsXLSX      = "tidy_records.xlsx"
	RejectionsCSV        = "rejections.csv"
	RunSummaryJSON       = "run_summary.json"
	AdvisingReportXLSX   = "advising_report.xlsx"
	InternshipReportXLSX = "internship_report.xlsx"

	// Workbook sheet names recognized during extraction and used in reports
	AdvisingSheetName      = "Current Semester Advising"
	AdvisingSummarySheet   = "Advising_Summary"
	CourseGroupsSheet      = "Course_Groups"
	InternshipSheetName    = "Consolidated_Report"
	InternshipSkippedSheet = "Skipped_Files"
	TidyRecordsSheet       = "Tidy_Records"
	SummarySheet           = "Summary"
	RecordsSheet           = "Records"
	DefaultSheetName       = "Sheet1"

	// Parser Defaults
	DefaultIdentityColumn = "StudentID"
	DefaultDelimiters     = "-_/"
	DefaultMinYear        = 1900
	DefaultMaxYear        = 2100

	// Batch Settings
	DefaultMaxParallel   = 4
	MaxArchiveMembers    = 10000
	MaxMemberSizeBytes   = 64 << 20 // 64 MiB per archive member
	SupportedSpreadsheet = ".xlsx"
	SupportedArchive     = ".zip"
	SupportedCSV         = ".csv"
)
