package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"uiet-connect/backend/config"
	"uiet-connect/backend/internal/dto"
	"uiet-connect/backend/internal/model"
	"uiet-connect/backend/internal/repository"
	"uiet-connect/backend/pkg/metrics"

	pkgerrors "uiet-connect/backend/pkg/errors"
)

// ── attendance errors ──

var (
	ErrAttendanceSubjectRequired  = fmt.Errorf("%w: subjectId is required", pkgerrors.ErrValidation)
	ErrAttendanceDateRequired     = fmt.Errorf("%w: date is required", pkgerrors.ErrValidation)
	ErrAttendanceDateInvalid      = fmt.Errorf("%w: date must be YYYY-MM-DD or RFC 3339", pkgerrors.ErrValidation)
	ErrAttendanceEntriesEmpty     = fmt.Errorf("%w: attendanceData must not be empty", pkgerrors.ErrValidation)
	ErrAttendanceEntryIncomplete  = fmt.Errorf("%w: every entry needs studentId and status", pkgerrors.ErrValidation)
	ErrAttendanceStatusInvalid    = fmt.Errorf("%w: status must be Present or Absent", pkgerrors.ErrValidation)
	ErrAttendanceDuplicateStudent = fmt.Errorf("%w: student listed twice in one batch", pkgerrors.ErrValidation)
	ErrAttendanceBatchTooLarge    = fmt.Errorf("%w: too many entries in one batch", pkgerrors.ErrValidation)

	ErrAttendanceSubjectNotFound  = fmt.Errorf("%w: subject", pkgerrors.ErrNotFound)
	ErrAttendanceStudentNotFound  = fmt.Errorf("%w: student", pkgerrors.ErrNotFound)
	ErrAttendanceSemesterNotFound = fmt.Errorf("%w: semester", pkgerrors.ErrNotFound)

	ErrAttendanceNoPermission = fmt.Errorf("%w: students may only read their own attendance", pkgerrors.ErrForbidden)

	ErrAttendanceAggregationTimeout = errors.New("semester aggregation exceeded its time budget")
)

// AttendanceService records attendance batches and serves the read views
type AttendanceService interface {
	// Mark upserts a batch for one subject and date. Nothing is written unless
	// every entry validates and resolves inside the caller's department.
	Mark(ctx context.Context, scope Scope, req *dto.MarkAttendanceRequest) (*dto.MarkAttendanceResponse, error)
	// ListByStudent newest first
	ListByStudent(ctx context.Context, scope Scope, studentID string) ([]dto.StudentAttendanceItem, error)
	ListBySubjectAndDate(ctx context.Context, scope Scope, subjectID, date string) (*dto.SubjectAttendanceResponse, error)
	// ListBySemester fails as a whole when it runs past the aggregation timeout
	ListBySemester(ctx context.Context, scope Scope, semesterID string) (*dto.SemesterAttendanceResponse, error)
	// Check reports whether any subject of the semester has records dated today
	Check(ctx context.Context, scope Scope, semesterID string) (*dto.AttendanceCheckResponse, error)
	ListSubmissions(ctx context.Context, scope Scope, page *dto.PaginationRequest) ([]dto.AttendanceSubmissionItem, int64, error)
}

type attendanceService struct {
	repo    *repository.Repository
	cfg     *config.AttendanceConfig
	baseURL string
	metrics *metrics.Metrics
	now     Clock
	logger  *zap.Logger
}

// NewAttendanceService creates an AttendanceService. now drives the day
// boundary of Check.
func NewAttendanceService(cfg *config.Config, repo *repository.Repository, m *metrics.Metrics, now Clock, logger *zap.Logger) AttendanceService {
	if now == nil {
		now = time.Now
	}
	return &attendanceService{
		repo:    repo,
		cfg:     &cfg.Attendance,
		baseURL: strings.TrimRight(cfg.Server.BaseURL, "/"),
		metrics: m,
		now:     now,
		logger:  logger,
	}
}

// ────────────────────── Mark ──────────────────────

type validatedEntry struct {
	studentID string
	status    model.AttendanceStatus
}

func (s *attendanceService) Mark(ctx context.Context, scope Scope, req *dto.MarkAttendanceRequest) (*dto.MarkAttendanceResponse, error) {
	// 1. validate the whole request before touching storage
	subjectID := strings.TrimSpace(req.SubjectID)
	if subjectID == "" {
		return nil, ErrAttendanceSubjectRequired
	}
	if strings.TrimSpace(req.Date) == "" {
		return nil, ErrAttendanceDateRequired
	}
	day, err := model.ParseAttendanceDate(req.Date)
	if err != nil {
		return nil, ErrAttendanceDateInvalid
	}
	if len(req.AttendanceData) == 0 {
		return nil, ErrAttendanceEntriesEmpty
	}
	if s.cfg.MaxBatchSize > 0 && len(req.AttendanceData) > s.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w (limit %d)", ErrAttendanceBatchTooLarge, s.cfg.MaxBatchSize)
	}

	entries := make([]validatedEntry, 0, len(req.AttendanceData))
	seen := make(map[string]bool, len(req.AttendanceData))
	for i, e := range req.AttendanceData {
		studentID := strings.TrimSpace(e.StudentID)
		if studentID == "" || strings.TrimSpace(e.Status) == "" {
			return nil, fmt.Errorf("%w (entry %d)", ErrAttendanceEntryIncomplete, i)
		}
		status, err := model.ParseAttendanceStatus(e.Status)
		if err != nil {
			return nil, fmt.Errorf("%w (entry %d)", ErrAttendanceStatusInvalid, i)
		}
		if seen[studentID] {
			return nil, fmt.Errorf("%w (entry %d)", ErrAttendanceDuplicateStudent, i)
		}
		seen[studentID] = true
		entries = append(entries, validatedEntry{studentID: studentID, status: status})
	}

	// 2. resolve subject and students inside the department
	if _, err := s.scopedSubject(ctx, scope, subjectID); err != nil {
		return nil, err
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.studentID
	}
	students, err := s.repo.Student.ListByIDs(ctx, scope.DepartmentID, ids)
	if err != nil {
		s.logger.Error("failed to resolve students", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	if len(students) != len(ids) {
		found := make(map[string]bool, len(students))
		for _, st := range students {
			found[st.StudentID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, fmt.Errorf("%w: %s", ErrAttendanceStudentNotFound, id)
			}
		}
	}

	// 3. write the batch atomically
	var actor *string
	if scope.UserID != "" {
		actor = &scope.UserID
	}
	records := make([]model.AttendanceRecord, len(entries))
	for i, e := range entries {
		records[i] = model.AttendanceRecord{
			DepartmentID:   scope.DepartmentID,
			StudentID:      e.studentID,
			SubjectID:      subjectID,
			AttendanceDate: day,
			Status:         e.status,
		}
		records[i].CreatedBy = actor
		records[i].UpdatedBy = actor
	}

	results, err := s.repo.Attendance.UpsertBatch(ctx, records)
	if err != nil {
		s.logger.Error("failed to write attendance batch",
			zap.String("subject_id", subjectID),
			zap.String("date", day.Format(model.DateLayout)),
			zap.Int("entries", len(records)),
			zap.Error(err),
		)
		return nil, pkgerrors.Storage(err)
	}

	created := make(map[string]bool, len(results))
	for _, r := range results {
		created[r.StudentID] = r.Created
	}

	resp := &dto.MarkAttendanceResponse{
		SubjectID: subjectID,
		Date:      day.Format(model.DateLayout),
		Entries:   make([]dto.MarkAttendanceEntryResult, 0, len(entries)),
	}
	for _, e := range entries {
		outcome := dto.OutcomeUpdated
		if created[e.studentID] {
			outcome = dto.OutcomeCreated
			resp.Created++
		} else {
			resp.Updated++
		}
		s.metrics.ObserveMark(outcome)
		resp.Entries = append(resp.Entries, dto.MarkAttendanceEntryResult{
			StudentID: e.studentID,
			Status:    e.status,
			Outcome:   outcome,
		})
	}

	s.logger.Info("attendance recorded",
		zap.String("subject_id", subjectID),
		zap.String("date", resp.Date),
		zap.Int("created", resp.Created),
		zap.Int("updated", resp.Updated),
	)
	return resp, nil
}

// ────────────────────── ListByStudent ──────────────────────

func (s *attendanceService) ListByStudent(ctx context.Context, scope Scope, studentID string) ([]dto.StudentAttendanceItem, error) {
	if scope.IsStudent() && scope.UserID != studentID {
		return nil, ErrAttendanceNoPermission
	}

	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceStudentNotFound
		}
		s.logger.Error("failed to load student", zap.String("student_id", studentID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	if student.DepartmentID != scope.DepartmentID {
		return nil, ErrAttendanceStudentNotFound
	}

	records, err := s.repo.Attendance.ListByStudent(ctx, scope.DepartmentID, studentID)
	if err != nil {
		s.logger.Error("failed to list student attendance", zap.String("student_id", studentID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	items := make([]dto.StudentAttendanceItem, 0, len(records))
	for i := range records {
		rec := &records[i]
		item := dto.StudentAttendanceItem{
			SubjectID:     rec.SubjectID,
			SemesterLabel: rec.Subject.SemesterLabel(),
			Status:        rec.Status,
			Date:          rec.AttendanceDate.Format(model.DateLayout),
		}
		if rec.Subject != nil {
			item.SubjectName = rec.Subject.SubjectName
		}
		items = append(items, item)
	}

	// dates share one layout, so string order is date order
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date > items[j].Date
		}
		return items[i].SubjectName < items[j].SubjectName
	})
	return items, nil
}

// ────────────────────── ListBySubjectAndDate ──────────────────────

func (s *attendanceService) ListBySubjectAndDate(ctx context.Context, scope Scope, subjectID, date string) (*dto.SubjectAttendanceResponse, error) {
	if strings.TrimSpace(date) == "" {
		return nil, ErrAttendanceDateRequired
	}
	day, err := model.ParseAttendanceDate(date)
	if err != nil {
		return nil, ErrAttendanceDateInvalid
	}

	subject, err := s.scopedSubject(ctx, scope, subjectID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.ListBySubjectAndDate(ctx, scope.DepartmentID, subjectID, day)
	if err != nil {
		s.logger.Error("failed to list subject attendance",
			zap.String("subject_id", subjectID), zap.String("date", date), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	resp := &dto.SubjectAttendanceResponse{
		SubjectID:       subject.SubjectID,
		SubjectName:     subject.SubjectName,
		SubjectCodename: subject.SubjectCodename,
		SemesterLabel:   subject.SemesterLabel(),
		Date:            day.Format(model.DateLayout),
		Records:         make([]dto.SubjectAttendanceItem, 0, len(records)),
	}
	for i := range records {
		rec := &records[i]
		name := rec.StudentID
		if rec.Student != nil && rec.Student.Name != "" {
			name = rec.Student.Name
		}
		switch rec.Status {
		case model.AttendancePresent:
			resp.Present++
		case model.AttendanceAbsent:
			resp.Absent++
		}
		resp.Records = append(resp.Records, dto.SubjectAttendanceItem{
			StudentID:   rec.StudentID,
			StudentName: name,
			Status:      rec.Status,
			Date:        resp.Date,
		})
	}
	sort.SliceStable(resp.Records, func(i, j int) bool {
		return resp.Records[i].StudentName < resp.Records[j].StudentName
	})
	return resp, nil
}

// ────────────────────── ListBySemester ──────────────────────

func (s *attendanceService) ListBySemester(ctx context.Context, scope Scope, semesterID string) (*dto.SemesterAttendanceResponse, error) {
	semester, err := s.scopedSemester(ctx, scope, semesterID)
	if err != nil {
		return nil, err
	}

	if s.cfg.AggregationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.AggregationTimeout)
		defer cancel()
	}

	rows, err := s.repo.Attendance.ListSemesterRows(ctx, scope.DepartmentID, semesterID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("semester aggregation timed out",
				zap.String("semester_id", semesterID),
				zap.Duration("budget", s.cfg.AggregationTimeout),
			)
			return nil, ErrAttendanceAggregationTimeout
		}
		s.logger.Error("failed to aggregate semester attendance", zap.String("semester_id", semesterID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	resp := &dto.SemesterAttendanceResponse{
		SemesterID:   semester.SemesterID,
		SemesterText: semester.SemesterText,
		Subjects:     make(map[string][]dto.SemesterAttendanceItem),
	}
	for _, row := range rows {
		list, ok := resp.Subjects[row.SubjectName]
		if !ok {
			list = []dto.SemesterAttendanceItem{}
		}
		if row.StudentID != nil && row.Status != nil && row.AttendanceDate != nil {
			name := *row.StudentID
			if row.StudentName != nil && *row.StudentName != "" {
				name = *row.StudentName
			}
			list = append(list, dto.SemesterAttendanceItem{
				StudentName: name,
				Status:      model.AttendanceStatus(*row.Status),
				Date:        row.AttendanceDate.Format(model.DateLayout),
			})
		}
		resp.Subjects[row.SubjectName] = list
	}
	return resp, nil
}

// ────────────────────── Check ──────────────────────

func (s *attendanceService) Check(ctx context.Context, scope Scope, semesterID string) (*dto.AttendanceCheckResponse, error) {
	if _, err := s.scopedSemester(ctx, scope, semesterID); err != nil {
		return nil, err
	}

	loc, err := s.departmentLocation(ctx, scope.DepartmentID)
	if err != nil {
		return nil, err
	}
	today := model.NormalizeDate(s.now().In(loc))

	exists, err := s.repo.Attendance.ExistsForSemesterOnDate(ctx, scope.DepartmentID, semesterID, today)
	if err != nil {
		s.logger.Error("failed to check attendance", zap.String("semester_id", semesterID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	resp := &dto.AttendanceCheckResponse{
		AttendanceToken: exists,
		Message:         "Attendance not yet recorded for today",
		Date:            today.Format(model.DateLayout),
	}
	if exists {
		resp.Message = "Attendance already recorded for today"
	}
	return resp, nil
}

// departmentLocation day boundary of the department, falling back to the
// configured default zone
func (s *attendanceService) departmentLocation(ctx context.Context, departmentID string) (*time.Location, error) {
	dept, err := s.repo.Department.GetByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.cfg.Location(), nil
		}
		s.logger.Error("failed to load department", zap.String("department_id", departmentID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	if dept.Timezone == "" {
		return s.cfg.Location(), nil
	}
	loc, err := time.LoadLocation(dept.Timezone)
	if err != nil {
		s.logger.Warn("unknown department timezone, using default",
			zap.String("department_id", departmentID),
			zap.String("timezone", dept.Timezone),
		)
		return s.cfg.Location(), nil
	}
	return loc, nil
}

// ────────────────────── ListSubmissions ──────────────────────

func (s *attendanceService) ListSubmissions(ctx context.Context, scope Scope, page *dto.PaginationRequest) ([]dto.AttendanceSubmissionItem, int64, error) {
	rows, total, err := s.repo.Attendance.ListSubmissions(ctx, scope.DepartmentID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("failed to list attendance submissions", zap.Error(err))
		return nil, 0, pkgerrors.Storage(err)
	}

	items := make([]dto.AttendanceSubmissionItem, 0, len(rows))
	for _, row := range rows {
		date := row.AttendanceDate.Format(model.DateLayout)
		item := dto.AttendanceSubmissionItem{
			SubjectID:    row.SubjectID,
			SubjectName:  row.SubjectName,
			Semester:     model.UnresolvedSemester(),
			Date:         date,
			RecordCount:  row.RecordCount,
			PDFAvailable: row.RecordCount > 0,
		}
		if row.SemesterID != nil {
			item.SemesterID = *row.SemesterID
		}
		if row.SemesterText != nil && *row.SemesterText != "" {
			item.Semester = model.ResolvedSemester(*row.SemesterText)
		}
		if item.PDFAvailable {
			item.PDFURL = fmt.Sprintf("%s/api/v1/attendance/generateAttendancePDF/%s/%s", s.baseURL, row.SubjectID, date)
		}
		items = append(items, item)
	}
	return items, total, nil
}

// ── scope helpers ──

// scopedSubject loads a subject owned by the caller's department. Subjects of
// other departments are reported as missing.
func (s *attendanceService) scopedSubject(ctx context.Context, scope Scope, subjectID string) (*model.Subject, error) {
	subject, err := s.repo.Subject.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceSubjectNotFound
		}
		s.logger.Error("failed to load subject", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	if subject.DepartmentID != scope.DepartmentID {
		return nil, ErrAttendanceSubjectNotFound
	}
	return subject, nil
}

func (s *attendanceService) scopedSemester(ctx context.Context, scope Scope, semesterID string) (*model.Semester, error) {
	semester, err := s.repo.Semester.GetByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceSemesterNotFound
		}
		s.logger.Error("failed to load semester", zap.String("semester_id", semesterID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	if semester.DepartmentID != scope.DepartmentID {
		return nil, ErrAttendanceSemesterNotFound
	}
	return semester, nil
}
