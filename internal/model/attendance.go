package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DateLayout wire and storage format of attendance dates
const DateLayout = "2006-01-02"

// UnknownSemesterLabel rendered for subjects whose class reference is unresolved
const UnknownSemesterLabel = "Unknown Semester"

// ── AttendanceStatus ──

// AttendanceStatus recorded presence of a student
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
)

var ErrInvalidAttendanceStatus = errors.New("attendance status must be Present or Absent")

// ParseAttendanceStatus accepts any casing and returns the canonical value.
func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present":
		return AttendancePresent, nil
	case "absent":
		return AttendanceAbsent, nil
	default:
		return "", ErrInvalidAttendanceStatus
	}
}

// Valid reports whether s is one of the canonical values.
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// ── AttendanceRecord ──

// AttendanceRecord one student's status for a subject on a day (attendance_records)
//
// (student_id, subject_id, attendance_date) is unique; see migration 000002.
type AttendanceRecord struct {
	AttendanceID   string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	DepartmentID   string           `gorm:"type:uuid;not null"                             json:"department_id"`
	StudentID      string           `gorm:"type:uuid;not null"                             json:"student_id"`
	SubjectID      string           `gorm:"type:uuid;not null"                             json:"subject_id"`
	AttendanceDate time.Time        `gorm:"type:date;not null"                             json:"attendance_date"`
	Status         AttendanceStatus `gorm:"type:varchar(10);not null"                      json:"status"`
	BaseModel

	// associations
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
}

// TableName maps to attendance_records
func (AttendanceRecord) TableName() string { return "attendance_records" }

// ── dates ──

// NormalizeDate drops the time of day, keeping the calendar date of t in its own zone.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseAttendanceDate accepts "2006-01-02" or RFC 3339 and returns the calendar day.
func ParseAttendanceDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}

// ── SemesterLabel ──

// SemesterLabel is either Resolved(label) or Unresolved. The zero value is Unresolved.
type SemesterLabel struct {
	label    string
	resolved bool
}

// ResolvedSemester builds a resolved label.
func ResolvedSemester(label string) SemesterLabel {
	return SemesterLabel{label: label, resolved: true}
}

// UnresolvedSemester builds the unresolved variant.
func UnresolvedSemester() SemesterLabel {
	return SemesterLabel{}
}

// Get returns the label and whether it was resolved.
func (l SemesterLabel) Get() (string, bool) {
	return l.label, l.resolved
}

// String renders the label, or UnknownSemesterLabel when unresolved.
func (l SemesterLabel) String() string {
	if !l.resolved {
		return UnknownSemesterLabel
	}
	return l.label
}

// MarshalJSON renders the label as a plain string.
func (l SemesterLabel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}
