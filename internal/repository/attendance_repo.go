package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"uiet-connect/backend/internal/model"
)

// UpsertResult outcome of writing one attendance entry
type UpsertResult struct {
	AttendanceID string
	StudentID    string
	Created      bool
}

// SemesterAttendanceRow one row of the semester join. Attendance columns are
// nil for subjects that have no records yet.
type SemesterAttendanceRow struct {
	SubjectID      string
	SubjectName    string
	StudentID      *string
	StudentName    *string
	Status         *string
	AttendanceDate *time.Time
}

// SubmissionRow one recorded (subject, date) batch
type SubmissionRow struct {
	SubjectID      string
	SubjectName    string
	SemesterID     *string
	SemesterText   *string
	AttendanceDate time.Time
	RecordCount    int64
}

// AttendanceRepository attendance record data access
type AttendanceRepository interface {
	// UpsertBatch writes every record in one transaction. A record whose
	// (student, subject, date) already exists has its status overwritten.
	UpsertBatch(ctx context.Context, records []model.AttendanceRecord) ([]UpsertResult, error)
	ListByStudent(ctx context.Context, departmentID, studentID string) ([]model.AttendanceRecord, error)
	ListBySubjectAndDate(ctx context.Context, departmentID, subjectID string, date time.Time) ([]model.AttendanceRecord, error)
	// ListSemesterRows joins subjects, records and students for one semester
	ListSemesterRows(ctx context.Context, departmentID, semesterID string) ([]SemesterAttendanceRow, error)
	ExistsForSemesterOnDate(ctx context.Context, departmentID, semesterID string, date time.Time) (bool, error)
	ListSubmissions(ctx context.Context, departmentID string, offset, limit int) ([]SubmissionRow, int64, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo creates an AttendanceRepository
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// xmax is zero only on rows this statement inserted
const upsertAttendanceSQL = `
INSERT INTO attendance_records
	(department_id, student_id, subject_id, attendance_date, status, created_by, updated_by)
VALUES (?, ?, ?, ?::date, ?, ?, ?)
ON CONFLICT (student_id, subject_id, attendance_date)
DO UPDATE SET status = EXCLUDED.status, updated_at = NOW(), updated_by = EXCLUDED.updated_by
RETURNING attendance_id, (xmax = 0) AS inserted`

func (r *attendanceRepo) UpsertBatch(ctx context.Context, records []model.AttendanceRecord) ([]UpsertResult, error) {
	results := make([]UpsertResult, 0, len(records))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range records {
			rec := &records[i]
			var row struct {
				AttendanceID string
				Inserted     bool
			}
			err := tx.Raw(upsertAttendanceSQL,
				rec.DepartmentID,
				rec.StudentID,
				rec.SubjectID,
				rec.AttendanceDate.Format(model.DateLayout),
				string(rec.Status),
				rec.CreatedBy,
				rec.UpdatedBy,
			).Scan(&row).Error
			if err != nil {
				return err
			}
			results = append(results, UpsertResult{
				AttendanceID: row.AttendanceID,
				StudentID:    rec.StudentID,
				Created:      row.Inserted,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attendanceRepo) ListByStudent(ctx context.Context, departmentID, studentID string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Subject.Semester").
		Where("department_id = ? AND student_id = ?", departmentID, studentID).
		Order("attendance_date DESC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListBySubjectAndDate(ctx context.Context, departmentID, subjectID string, date time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("department_id = ? AND subject_id = ? AND attendance_date = ?::date",
			departmentID, subjectID, date.Format(model.DateLayout)).
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListSemesterRows(ctx context.Context, departmentID, semesterID string) ([]SemesterAttendanceRow, error) {
	var rows []SemesterAttendanceRow
	err := r.db.WithContext(ctx).
		Table("subjects AS s").
		Select(`s.subject_id, s.subject_name,
			a.student_id, st.name AS student_name, a.status, a.attendance_date`).
		Joins("LEFT JOIN attendance_records AS a ON a.subject_id = s.subject_id AND a.department_id = s.department_id").
		Joins("LEFT JOIN students AS st ON st.student_id = a.student_id").
		Where("s.department_id = ? AND s.semester_id = ?", departmentID, semesterID).
		Order("s.subject_name ASC, a.attendance_date DESC, st.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *attendanceRepo) ExistsForSemesterOnDate(ctx context.Context, departmentID, semesterID string, date time.Time) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).Raw(`
		SELECT EXISTS (
			SELECT 1 FROM attendance_records AS a
			JOIN subjects AS s ON s.subject_id = a.subject_id
			WHERE a.department_id = ? AND s.semester_id = ? AND a.attendance_date = ?::date
		)`, departmentID, semesterID, date.Format(model.DateLayout)).
		Scan(&exists).Error
	return exists, err
}

func (r *attendanceRepo) ListSubmissions(ctx context.Context, departmentID string, offset, limit int) ([]SubmissionRow, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM (
			SELECT DISTINCT subject_id, attendance_date
			FROM attendance_records WHERE department_id = ?
		) AS batches`, departmentID).
		Scan(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var rows []SubmissionRow
	err = r.db.WithContext(ctx).
		Table("attendance_records AS a").
		Select(`a.subject_id, s.subject_name, s.semester_id, sem.semester_text,
			a.attendance_date, COUNT(*) AS record_count`).
		Joins("JOIN subjects AS s ON s.subject_id = a.subject_id").
		Joins("LEFT JOIN semesters AS sem ON sem.semester_id = s.semester_id").
		Where("a.department_id = ?", departmentID).
		Group("a.subject_id, s.subject_name, s.semester_id, sem.semester_text, a.attendance_date").
		Order("a.attendance_date DESC, s.subject_name ASC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
