package dto

import (
	"sort"

	"uiet-connect/backend/internal/model"
)

// JSON names follow the frontend's camelCase payloads.

// ── requests ──

// AttendanceEntryRequest one student's status inside a batch
type AttendanceEntryRequest struct {
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
}

// MarkAttendanceRequest POST /attendance/mark
//
// Field presence is checked by the service so that every missing field
// yields the same validation error regardless of transport.
type MarkAttendanceRequest struct {
	SubjectID      string                   `json:"subjectId"`
	Date           string                   `json:"date"`
	AttendanceData []AttendanceEntryRequest `json:"attendanceData"`
}

// ── recorder ──

// Entry outcomes reported by MarkAttendanceResponse
const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
)

// MarkAttendanceEntryResult outcome of one entry
type MarkAttendanceEntryResult struct {
	StudentID string                 `json:"studentId"`
	Status    model.AttendanceStatus `json:"status"`
	Outcome   string                 `json:"outcome"`
}

// MarkAttendanceResponse batch outcome, entries in request order
type MarkAttendanceResponse struct {
	SubjectID string                      `json:"subjectId"`
	Date      string                      `json:"date"`
	Created   int                         `json:"created"`
	Updated   int                         `json:"updated"`
	Entries   []MarkAttendanceEntryResult `json:"entries"`
}

// ── aggregator ──

// StudentAttendanceItem one row of a student's history
type StudentAttendanceItem struct {
	SubjectID     string                 `json:"subjectId"`
	SubjectName   string                 `json:"subjectName"`
	SemesterLabel model.SemesterLabel    `json:"semesterLabel"`
	Status        model.AttendanceStatus `json:"status"`
	Date          string                 `json:"date"`
}

// SubjectAttendanceItem one student's status on a subject/date
type SubjectAttendanceItem struct {
	StudentID   string                 `json:"studentId"`
	StudentName string                 `json:"studentName"`
	Status      model.AttendanceStatus `json:"status"`
	Date        string                 `json:"date"`
}

// SubjectAttendanceResponse roster of one subject on one date
type SubjectAttendanceResponse struct {
	SubjectID       string                  `json:"subjectId"`
	SubjectName     string                  `json:"subjectName"`
	SubjectCodename string                  `json:"subjectCodename"`
	SemesterLabel   model.SemesterLabel     `json:"semesterLabel"`
	Date            string                  `json:"date"`
	Present         int                     `json:"present"`
	Absent          int                     `json:"absent"`
	Records         []SubjectAttendanceItem `json:"records"`
}

// SemesterAttendanceItem one record in the semester view
type SemesterAttendanceItem struct {
	StudentName string                 `json:"studentName"`
	Status      model.AttendanceStatus `json:"status"`
	Date        string                 `json:"date"`
}

// SemesterAttendanceResponse records of every subject in a semester, keyed by
// subject name. Subjects without records map to an empty list.
type SemesterAttendanceResponse struct {
	SemesterID   string                              `json:"semesterId"`
	SemesterText string                              `json:"semesterText"`
	Subjects     map[string][]SemesterAttendanceItem `json:"subjects"`
}

// SubjectNames sorted keys of Subjects
func (r *SemesterAttendanceResponse) SubjectNames() []string {
	names := make([]string, 0, len(r.Subjects))
	for name := range r.Subjects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AttendanceCheckResponse GET /attendance/check/:semesterId
type AttendanceCheckResponse struct {
	AttendanceToken bool   `json:"attendanceToken"`
	Message         string `json:"message"`
	Date            string `json:"date"`
}

// AttendanceSubmissionItem one recorded (subject, date) batch with its export link
type AttendanceSubmissionItem struct {
	SubjectID    string              `json:"subjectId"`
	SubjectName  string              `json:"subjectName"`
	SemesterID   string              `json:"semesterId,omitempty"`
	Semester     model.SemesterLabel `json:"semester"`
	Date         string              `json:"date"`
	RecordCount  int64               `json:"recordCount"`
	PDFAvailable bool                `json:"pdfAvailable"`
	PDFURL       string              `json:"pdfUrl"`
}
