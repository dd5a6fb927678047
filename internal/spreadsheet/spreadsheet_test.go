package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"proposal-client/internal/domain"
	apperrors "proposal-client/pkg/errors"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "sku"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "qty"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "A-1"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 3))
	_, err := f.NewSheet("Prices")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Prices", "A1", "total"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestClassify_AcceptsWorkbooks(t *testing.T) {
	c := NewClassifier(0)
	tests := []struct {
		name string
		file string
		mime string
		want domain.FileKind
	}{
		{"xlsx by extension", "report.xlsx", "", domain.FileKindXLSX},
		{"xls by extension", "REPORT.XLS", "", domain.FileKindXLS},
		{"xlsx by mime", "upload", domain.MIMETypeXLSX, domain.FileKindXLSX},
		{"excel mime", "upload.bin", "application/excel", domain.FileKindXLS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := c.Classify(tt.file, tt.mime, []byte("rows"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Kind)
			assert.NotEmpty(t, f.MIME)
		})
	}
}

func TestClassify_RealWorkbook(t *testing.T) {
	f, err := NewClassifier(0).Classify("report.xlsx", "", buildWorkbook(t))
	require.NoError(t, err)
	assert.Equal(t, domain.FileKindXLSX, f.Kind)
	assert.Equal(t, domain.MIMETypeXLSX, f.MIME)
}

func TestClassify_Rejects(t *testing.T) {
	c := NewClassifier(8)
	tests := []struct {
		name    string
		file    string
		mime    string
		content []byte
	}{
		{"csv", "report.csv", "text/csv", []byte("a,b")},
		{"pdf name", "report.pdf", "application/pdf", []byte("%PDF")},
		{"png renamed", "report.xlsx", "", []byte("\x89PNG\r\n\x1a\n")},
		{"empty", "report.xlsx", "", nil},
		{"too large", "report.xlsx", "", []byte("0123456789")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := c.Classify(tt.file, tt.mime, tt.content)
			assert.Nil(t, f)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidFileType), "got %v", err)
		})
	}
}

func TestInspect(t *testing.T) {
	wb, err := Inspect(buildWorkbook(t), 1)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "Sheet1", wb.Sheets[0].Name)
	assert.Equal(t, 2, wb.Sheets[0].Rows)
	assert.Equal(t, [][]string{{"sku", "qty"}}, wb.Sheets[0].Head)
	assert.Equal(t, "Prices", wb.Sheets[1].Name)
}

func TestInspect_NotAWorkbook(t *testing.T) {
	_, err := Inspect([]byte("plain text"), 3)
	assert.Error(t, err)
}
