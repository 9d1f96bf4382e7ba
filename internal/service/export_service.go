package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-student-portal/internal/models"
	appErrors "github.com/noah-isme/sma-student-portal/pkg/errors"
	"github.com/noah-isme/sma-student-portal/pkg/export"
)

// Export formats for the roster download.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered roster download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the roster as a downloadable table.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers use the defaults.
func NewExportService(logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

var rosterHeaders = []string{"Roll No", "First Name", "Last Name", "Email", "Domain", "CGPA", "Total Credits", "Graduation Year"}

// Render produces the roster in format, defaulting to CSV.
func (s *ExportService) Render(roster models.Roster, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}

	dataset := BuildRosterDataset(roster)
	stamp := s.now().UTC().Format("20060102_150405")

	var (
		body        []byte
		err         error
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		body, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		body, err = s.pdf.Render(dataset, "Student Roster")
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("failed to render roster export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("students_%s.%s", stamp, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// BuildRosterDataset flattens the roster into export rows, labelling domains
// the same way the table does.
func BuildRosterDataset(roster models.Roster) export.Dataset {
	rows := make([]map[string]string, 0, len(roster.Students))
	for _, st := range roster.Students {
		rows = append(rows, map[string]string{
			"Roll No":         st.RollNo,
			"First Name":      st.FirstName,
			"Last Name":       st.LastName,
			"Email":           st.Email,
			"Domain":          roster.DomainLabelFor(st),
			"CGPA":            formatFloat(st.CGPA),
			"Total Credits":   formatInt(st.TotalCredits),
			"Graduation Year": formatInt(st.GraduationYear),
		})
	}
	return export.Dataset{Headers: rosterHeaders, Rows: rows}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
