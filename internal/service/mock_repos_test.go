package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"uiet-connect/backend/internal/model"
	"uiet-connect/backend/internal/repository"
)

var errMockStorage = errors.New("mock storage failure")

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	depts map[string]*model.Department
	err   error
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{depts: make(map[string]*model.Department)}
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if m.err != nil {
		return nil, m.err
	}
	if d, ok := m.depts[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock SemesterRepository ──

type mockSemesterRepo struct {
	semesters map[string]*model.Semester
}

func newMockSemesterRepo() *mockSemesterRepo {
	return &mockSemesterRepo{semesters: make(map[string]*model.Semester)}
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id string) (*model.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	subjects  map[string]*model.Subject
	semesters *mockSemesterRepo
}

func newMockSubjectRepo(semesters *mockSemesterRepo) *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject), semesters: semesters}
}

// GetByID preloads the semester like the GORM implementation does
func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	s, ok := m.subjects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *s
	out.Semester = nil
	if s.SemesterID != nil {
		out.Semester = m.semesters.semesters[*s.SemesterID]
	}
	return &out, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ListByIDs(_ context.Context, departmentID string, ids []string) ([]model.Student, error) {
	var result []model.Student
	for _, id := range ids {
		if s, ok := m.students[id]; ok && s.DepartmentID == departmentID {
			result = append(result, *s)
		}
	}
	return result, nil
}

// ── Mock AttendanceRepository ──

type attendanceKey struct {
	studentID, subjectID, date string
}

// mockAttendanceRepo keeps one record per (student, subject, date), the same
// guarantee the unique index gives the real table
type mockAttendanceRepo struct {
	records  map[attendanceKey]*model.AttendanceRecord
	subjects *mockSubjectRepo
	students *mockStudentRepo

	upsertCalls int
	upsertErr   error
	// semesterDelay blocks ListSemesterRows until it elapses or ctx ends
	semesterDelay time.Duration
	nextID        int
}

func newMockAttendanceRepo(subjects *mockSubjectRepo, students *mockStudentRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{
		records:  make(map[attendanceKey]*model.AttendanceRecord),
		subjects: subjects,
		students: students,
	}
}

func (m *mockAttendanceRepo) UpsertBatch(_ context.Context, records []model.AttendanceRecord) ([]repository.UpsertResult, error) {
	m.upsertCalls++
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	results := make([]repository.UpsertResult, 0, len(records))
	for _, rec := range records {
		key := attendanceKey{rec.StudentID, rec.SubjectID, rec.AttendanceDate.Format(model.DateLayout)}
		if existing, ok := m.records[key]; ok {
			existing.Status = rec.Status
			existing.UpdatedBy = rec.UpdatedBy
			results = append(results, repository.UpsertResult{AttendanceID: existing.AttendanceID, StudentID: rec.StudentID})
			continue
		}
		m.nextID++
		stored := rec
		stored.AttendanceID = fmt.Sprintf("att-%d", m.nextID)
		m.records[key] = &stored
		results = append(results, repository.UpsertResult{AttendanceID: stored.AttendanceID, StudentID: rec.StudentID, Created: true})
	}
	return results, nil
}

// put stores a record directly, bypassing UpsertBatch bookkeeping
func (m *mockAttendanceRepo) put(rec model.AttendanceRecord) {
	key := attendanceKey{rec.StudentID, rec.SubjectID, rec.AttendanceDate.Format(model.DateLayout)}
	m.records[key] = &rec
}

func (m *mockAttendanceRepo) count() int {
	return len(m.records)
}

func (m *mockAttendanceRepo) get(studentID, subjectID, date string) *model.AttendanceRecord {
	return m.records[attendanceKey{studentID, subjectID, date}]
}

func (m *mockAttendanceRepo) ListByStudent(ctx context.Context, departmentID, studentID string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.DepartmentID != departmentID || r.StudentID != studentID {
			continue
		}
		rec := *r
		rec.Subject, _ = m.subjects.GetByID(ctx, r.SubjectID)
		result = append(result, rec)
	}
	// map order is random; the service must not rely on it
	return result, nil
}

func (m *mockAttendanceRepo) ListBySubjectAndDate(ctx context.Context, departmentID, subjectID string, date time.Time) ([]model.AttendanceRecord, error) {
	day := date.Format(model.DateLayout)
	var result []model.AttendanceRecord
	for key, r := range m.records {
		if r.DepartmentID != departmentID || key.subjectID != subjectID || key.date != day {
			continue
		}
		rec := *r
		rec.Student, _ = m.students.GetByID(ctx, r.StudentID)
		result = append(result, rec)
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListSemesterRows(ctx context.Context, departmentID, semesterID string) ([]repository.SemesterAttendanceRow, error) {
	if m.semesterDelay > 0 {
		select {
		case <-time.After(m.semesterDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var rows []repository.SemesterAttendanceRow
	for _, subj := range m.subjects.subjects {
		if subj.DepartmentID != departmentID || subj.SemesterID == nil || *subj.SemesterID != semesterID {
			continue
		}
		matched := false
		for _, r := range m.records {
			if r.SubjectID != subj.SubjectID || r.DepartmentID != departmentID {
				continue
			}
			matched = true
			row := repository.SemesterAttendanceRow{SubjectID: subj.SubjectID, SubjectName: subj.SubjectName}
			studentID, status, date := r.StudentID, string(r.Status), r.AttendanceDate
			row.StudentID, row.Status, row.AttendanceDate = &studentID, &status, &date
			if st, ok := m.students.students[r.StudentID]; ok {
				name := st.Name
				row.StudentName = &name
			}
			rows = append(rows, row)
		}
		if !matched {
			rows = append(rows, repository.SemesterAttendanceRow{SubjectID: subj.SubjectID, SubjectName: subj.SubjectName})
		}
	}
	return rows, nil
}

func (m *mockAttendanceRepo) ExistsForSemesterOnDate(_ context.Context, departmentID, semesterID string, date time.Time) (bool, error) {
	day := date.Format(model.DateLayout)
	for key, r := range m.records {
		if r.DepartmentID != departmentID || key.date != day {
			continue
		}
		subj, ok := m.subjects.subjects[r.SubjectID]
		if ok && subj.SemesterID != nil && *subj.SemesterID == semesterID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAttendanceRepo) ListSubmissions(_ context.Context, departmentID string, offset, limit int) ([]repository.SubmissionRow, int64, error) {
	type batchKey struct{ subjectID, date string }
	counts := make(map[batchKey]int64)
	dates := make(map[batchKey]time.Time)
	for key, r := range m.records {
		if r.DepartmentID != departmentID {
			continue
		}
		bk := batchKey{key.subjectID, key.date}
		counts[bk]++
		dates[bk] = r.AttendanceDate
	}

	var rows []repository.SubmissionRow
	for bk, n := range counts {
		row := repository.SubmissionRow{SubjectID: bk.subjectID, AttendanceDate: dates[bk], RecordCount: n}
		if subj, ok := m.subjects.subjects[bk.subjectID]; ok {
			row.SubjectName = subj.SubjectName
			row.SemesterID = subj.SemesterID
			if subj.SemesterID != nil {
				if sem, ok := m.subjects.semesters.semesters[*subj.SemesterID]; ok {
					text := sem.SemesterText
					row.SemesterText = &text
				}
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].AttendanceDate.Equal(rows[j].AttendanceDate) {
			return rows[i].AttendanceDate.After(rows[j].AttendanceDate)
		}
		return rows[i].SubjectName < rows[j].SubjectName
	})

	total := int64(len(rows))
	if offset >= len(rows) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], total, nil
}
