package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"uiet-connect/backend/config"
	"uiet-connect/backend/internal/dto"
	"uiet-connect/backend/pkg/metrics"
)

var ErrReportGenerateFail = errors.New("failed to render attendance PDF")

// ReportService renders attendance documents
type ReportService interface {
	// GenerateAttendancePDF renders the roster of one subject on one date.
	// Returns the document and a suggested file name.
	GenerateAttendancePDF(ctx context.Context, scope Scope, subjectID, date string) (*bytes.Buffer, string, error)
}

type reportService struct {
	attendance  AttendanceService
	rowsPerPage int
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewReportService creates a ReportService on top of the aggregator
func NewReportService(attendance AttendanceService, cfg *config.AttendanceConfig, m *metrics.Metrics, logger *zap.Logger) ReportService {
	rows := cfg.PDFRowsPerPage
	if fit := rowsPerPageFit(); rows <= 0 || rows > fit {
		if rows > fit {
			logger.Warn("pdf_rows_per_page exceeds what fits on A4, clamping",
				zap.Int("configured", rows), zap.Int("max", fit))
		}
		rows = fit
	}
	return &reportService{attendance: attendance, rowsPerPage: rows, metrics: m, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// GenerateAttendancePDF
// ═══════════════════════════════════════════════════════════
//
// Layout (A4 portrait):
//   - heading: subject, semester, date, present/absent totals
//   - table: Student Name | Status | Date, rowsPerPage rows per page
//   - footer: "Page n/N"

const (
	pdfColName   = 100.0
	pdfColStatus = 40.0
	pdfColDate   = 40.0
	pdfRowHeight = 7.0

	pdfPageHeight    = 297.0
	pdfMargin        = 15.0
	pdfHeadingHeight = 10 + 4*6 + 4 // title, four detail lines, gap; see writeHeading
	pdfFooterHeight  = 15.0
)

// rowsPerPageFit table rows that fit between the table header and the footer.
// Page breaks are manual, so rowsPerPage must never exceed it.
func rowsPerPageFit() int {
	usable := pdfPageHeight - pdfMargin - pdfHeadingHeight - pdfRowHeight - pdfFooterHeight
	return int(usable / pdfRowHeight)
}

func (s *reportService) GenerateAttendancePDF(ctx context.Context, scope Scope, subjectID, date string) (*bytes.Buffer, string, error) {
	view, err := s.attendance.ListBySubjectAndDate(ctx, scope, subjectID, date)
	if err != nil {
		return nil, "", err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Attendance %s %s", view.SubjectName, view.Date), true)
	pdf.SetCreator("uiet-connect", true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfFooterHeight)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pages := paginate(len(view.Records), s.rowsPerPage)
	for _, pg := range pages {
		pdf.AddPage()
		s.writeHeading(pdf, tr, view)
		writeTableHeader(pdf)

		pdf.SetFont("Helvetica", "", 10)
		if pg.start == pg.end {
			pdf.CellFormat(pdfColName+pdfColStatus+pdfColDate, pdfRowHeight,
				"No attendance recorded", "1", 1, "C", false, 0, "")
			continue
		}
		for i, rec := range view.Records[pg.start:pg.end] {
			fill := i%2 == 1
			pdf.CellFormat(pdfColName, pdfRowHeight, tr(rec.StudentName), "1", 0, "L", fill, 0, "")
			pdf.CellFormat(pdfColStatus, pdfRowHeight, string(rec.Status), "1", 0, "C", fill, 0, "")
			pdf.CellFormat(pdfColDate, pdfRowHeight, rec.Date, "1", 1, "C", fill, 0, "")
		}
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		s.logger.Error("failed to render PDF", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, "", ErrReportGenerateFail
	}

	s.metrics.ObserveExport("pdf")
	filename := fmt.Sprintf("attendance_%s_%s.pdf", fileSafe(view.SubjectName), view.Date)
	return buf, filename, nil
}

func (s *reportService) writeHeading(pdf *fpdf.Fpdf, tr func(string) string, view *dto.SubjectAttendanceResponse) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Attendance Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	subject := view.SubjectName
	if view.SubjectCodename != "" {
		subject = fmt.Sprintf("%s (%s)", view.SubjectName, view.SubjectCodename)
	}
	pdf.CellFormat(0, 6, tr("Subject: "+subject), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Semester: "+view.SemesterLabel.String()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+view.Date, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Present: %d   Absent: %d", view.Present, view.Absent), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func writeTableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(pdfColName, pdfRowHeight, "Student Name", "1", 0, "C", true, 0, "")
	pdf.CellFormat(pdfColStatus, pdfRowHeight, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(pdfColDate, pdfRowHeight, "Date", "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(235, 241, 250)
}

// ── helpers ──

// pageRange half-open slice bounds of one page
type pageRange struct {
	start, end int
}

// paginate splits n rows into pages of perPage. An empty table still gets one
// (empty) page.
func paginate(n, perPage int) []pageRange {
	if perPage <= 0 {
		perPage = n
	}
	if n == 0 {
		return []pageRange{{0, 0}}
	}
	pages := make([]pageRange, 0, (n+perPage-1)/perPage)
	for start := 0; start < n; start += perPage {
		end := start + perPage
		if end > n {
			end = n
		}
		pages = append(pages, pageRange{start, end})
	}
	return pages
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// fileSafe collapses anything outside [A-Za-z0-9._-] into underscores
func fileSafe(s string) string {
	out := unsafeFileChars.ReplaceAllString(s, "_")
	if out == "" || out == "_" {
		return "subject"
	}
	return out
}
