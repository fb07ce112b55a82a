package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"uiet-connect/backend/internal/model"
	"uiet-connect/backend/pkg/metrics"

	pkgerrors "uiet-connect/backend/pkg/errors"
)

// ── export errors ──

var (
	ErrExportNoSubjects   = fmt.Errorf("%w: semester has no subjects", pkgerrors.ErrNotFound)
	ErrExportGenerateFail = errors.New("failed to build Excel workbook")
)

// ExportService spreadsheet exports
//
// The workbook is returned as a bytes.Buffer; the handler sets the download
// headers and writes it out.
type ExportService interface {
	// ExportSemester exports every subject's attendance in a semester
	ExportSemester(ctx context.Context, scope Scope, semesterID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	attendance AttendanceService
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewExportService creates an ExportService on top of the aggregator
func NewExportService(attendance AttendanceService, m *metrics.Metrics, logger *zap.Logger) ExportService {
	return &exportService{attendance: attendance, metrics: m, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportSemester
// ═══════════════════════════════════════════════════════════
//
// Sheets:
//   - "Attendance": title row, header row, then one block per subject
//     (subject name in column A on the block's first row)
//   - "Summary": Subject | Present | Absent | Total

const (
	sheetAttendance = "Attendance"
	sheetSummary    = "Summary"
)

func (s *exportService) ExportSemester(ctx context.Context, scope Scope, semesterID string) (*bytes.Buffer, string, error) {
	view, err := s.attendance.ListBySemester(ctx, scope, semesterID)
	if err != nil {
		return nil, "", err
	}
	if len(view.Subjects) == 0 {
		return nil, "", ErrExportNoSubjects
	}
	subjects := view.SubjectNames()

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetAttendance)
	if err != nil {
		return nil, "", s.generateFailed(err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, "", s.generateFailed(err)
	}
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	subjectStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})

	// ── Attendance sheet ──
	f.SetColWidth(sheetAttendance, "A", "A", 28)
	f.SetColWidth(sheetAttendance, "B", "B", 28)
	f.SetColWidth(sheetAttendance, "C", "D", 14)

	f.SetCellValue(sheetAttendance, "A1", fmt.Sprintf("%s attendance", view.SemesterText))
	f.MergeCell(sheetAttendance, "A1", "D1")
	f.SetCellStyle(sheetAttendance, "A1", "A1", titleStyle)

	for i, h := range []string{"Subject", "Student", "Status", "Date"} {
		f.SetCellValue(sheetAttendance, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetAttendance, "A2", "D2", headerStyle)

	type totals struct{ present, absent int }
	summary := make(map[string]totals, len(subjects))

	row := 3
	for _, name := range subjects {
		records := view.Subjects[name]
		f.SetCellValue(sheetAttendance, cell("A", row), name)
		f.SetCellStyle(sheetAttendance, cell("A", row), cell("A", row), subjectStyle)
		if len(records) == 0 {
			f.SetCellValue(sheetAttendance, cell("B", row), "-")
			row++
			continue
		}

		var t totals
		for _, rec := range records {
			f.SetCellValue(sheetAttendance, cell("B", row), rec.StudentName)
			f.SetCellValue(sheetAttendance, cell("C", row), string(rec.Status))
			f.SetCellValue(sheetAttendance, cell("D", row), rec.Date)
			if rec.Status == model.AttendancePresent {
				t.present++
			} else {
				t.absent++
			}
			row++
		}
		summary[name] = t
	}

	// ── Summary sheet ──
	f.SetColWidth(sheetSummary, "A", "A", 28)
	for i, h := range []string{"Subject", "Present", "Absent", "Total"} {
		f.SetCellValue(sheetSummary, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetSummary, "A1", "D1", headerStyle)
	for i, name := range subjects {
		t := summary[name]
		r := i + 2
		f.SetCellValue(sheetSummary, cell("A", r), name)
		f.SetCellValue(sheetSummary, cell("B", r), t.present)
		f.SetCellValue(sheetSummary, cell("C", r), t.absent)
		f.SetCellFormula(sheetSummary, cell("D", r), fmt.Sprintf("B%d+C%d", r, r))
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", s.generateFailed(err)
	}

	s.metrics.ObserveExport("xlsx")
	filename := fmt.Sprintf("attendance_%s.xlsx", fileSafe(view.SemesterText))
	return buf, filename, nil
}

func (s *exportService) generateFailed(err error) error {
	s.logger.Error("failed to build Excel workbook", zap.Error(err))
	return ErrExportGenerateFail
}

// ── helpers ──

// colName zero-based column index to letters
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
