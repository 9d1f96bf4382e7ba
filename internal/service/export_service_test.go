package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-student-portal/internal/models"
	appErrors "github.com/noah-isme/sma-student-portal/pkg/errors"
	"github.com/noah-isme/sma-student-portal/pkg/export"
)

type failingCSV struct{}

func (failingCSV) Render(export.Dataset) ([]byte, error) {
	return nil, errors.New("disk full")
}

func rosterForTest(t *testing.T) models.Roster {
	t.Helper()
	var roster models.Roster
	require.NoError(t, json.Unmarshal([]byte(studentsJSON), &roster.Students))
	require.NoError(t, json.Unmarshal([]byte(domainsJSON), &roster.Domains))
	return roster
}

func newExportServiceForTest() *ExportService {
	svc := NewExportService(zap.NewNop(), nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestExportServiceRenderCSV(t *testing.T) {
	file, err := newExportServiceForTest().Render(rosterForTest(t), "")
	require.NoError(t, err)

	assert.Equal(t, "students_20240501_093000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Roll No,First Name,Last Name,Email,Domain,CGPA,Total Credits,Graduation Year", lines[0])
	assert.Equal(t, "R7,Asha,Rao,asha@example.com,M.Tech (2023),3.4,120,2025", lines[1])
	assert.Equal(t, "R8,Ben,,ben@example.com,-,,,", lines[2])
}

func TestExportServiceRenderPDF(t *testing.T) {
	file, err := newExportServiceForTest().Render(rosterForTest(t), "PDF")
	require.NoError(t, err)

	assert.Equal(t, "students_20240501_093000.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	_, err := newExportServiceForTest().Render(models.Roster{}, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportServiceRenderFailure(t *testing.T) {
	svc := NewExportService(zap.NewNop(), failingCSV{}, nil)
	_, err := svc.Render(models.Roster{}, "csv")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
