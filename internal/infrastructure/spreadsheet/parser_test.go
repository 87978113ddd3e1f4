package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/emgea/siscalculo/internal/domain/shared"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func buildWorkbook(t *testing.T, property, condominium string, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "B1", property))
	require.NoError(t, f.SetCellValue(sheet, "B2", condominium))
	require.NoError(t, f.SetCellValue(sheet, "A3", "DATA VENCIMENTO"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "VALOR COTA"))
	require.NoError(t, f.SetCellValue(sheet, "C3", "TIPO DA PARCELA"))
	for i, row := range rows {
		for j, v := range row {
			cellName, err := excelize.CoordinatesToCellName(j+1, i+4)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellName, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseAcceptsWellFormedRows(t *testing.T) {
	buf := buildWorkbook(t, "148100015830", "COND. ED. SOLAR DAS ACACIAS", [][]any{
		{"10/06/2023", "350,00", "1"},
		{"10-07-2023", "1.234,56", "2"},
		{"2023-08-10", "99.90", ""},
	})

	doc, err := NewParser().Parse(buf)
	require.NoError(t, err)

	assert.Equal(t, "148100015830", doc.Property)
	assert.Equal(t, "COND. ED. SOLAR DAS ACACIAS", doc.CondominiumName)
	require.Len(t, doc.Rows, 3)
	assert.Empty(t, doc.Rejected)

	assert.Equal(t, time.Date(2023, time.June, 10, 0, 0, 0, 0, time.UTC), doc.Rows[0].DueDate)
	assert.True(t, doc.Rows[0].Value.Equal(mustDecimal(t, "350.00")))
	assert.Equal(t, 1, doc.Rows[0].Kind)

	assert.Equal(t, time.Date(2023, time.July, 10, 0, 0, 0, 0, time.UTC), doc.Rows[1].DueDate)
	assert.True(t, doc.Rows[1].Value.Equal(mustDecimal(t, "1234.56")))
	assert.Equal(t, 2, doc.Rows[1].Kind)

	assert.Equal(t, time.Date(2023, time.August, 10, 0, 0, 0, 0, time.UTC), doc.Rows[2].DueDate)
	assert.True(t, doc.Rows[2].Value.Equal(mustDecimal(t, "99.90")))
	assert.Equal(t, 1, doc.Rows[2].Kind, "missing kind defaults to 1")
}

func TestParseExcelSerialDate(t *testing.T) {
	// 45453 days after 1899-12-30 is 2024-06-10
	buf := buildWorkbook(t, "777", "COND", [][]any{
		{"45453", "10,00", "1"},
	})

	doc, err := NewParser().Parse(buf)
	require.NoError(t, err)
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC), doc.Rows[0].DueDate)
}

func TestParseRejectsBadRows(t *testing.T) {
	buf := buildWorkbook(t, "148100015830", "COND", [][]any{
		{"10/06/2023", "350,00", "1"},
		{"not-a-date", "10,00", "1"},
		{"10/06/1985", "10,00", "1"},
		{"10/06/2023", "0,00", "1"},
		{"10/06/2023", "-5,00", "1"},
		{"10/06/2023", "abc", "1"},
	})

	doc, err := NewParser().Parse(buf)
	require.NoError(t, err)
	assert.Len(t, doc.Rows, 1)
	require.Len(t, doc.Rejected, 5)
	assert.Equal(t, ErrCodeInvalidDate, doc.Rejected[0].Code)
	assert.Equal(t, ErrCodeYearOutOfRange, doc.Rejected[1].Code)
	assert.Equal(t, ErrCodeInvalidValue, doc.Rejected[2].Code)
	assert.Equal(t, ErrCodeInvalidValue, doc.Rejected[3].Code)
	assert.Equal(t, ErrCodeInvalidValue, doc.Rejected[4].Code)
}

func TestParseCoercesKind(t *testing.T) {
	buf := buildWorkbook(t, "42", "COND", [][]any{
		{"10/06/2023", "10,00", "7"},
		{"11/06/2023", "10,00", "banana"},
		{"12/06/2023", "10,00", "5"},
	})

	doc, err := NewParser().Parse(buf)
	require.NoError(t, err)
	require.Len(t, doc.Rows, 3)
	assert.Equal(t, 1, doc.Rows[0].Kind)
	assert.Equal(t, 1, doc.Rows[1].Kind)
	assert.Equal(t, 5, doc.Rows[2].Kind)
}

func TestParseNumericPropertyCell(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "B1", "148100015830.0"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "COND"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "DATA VENCIMENTO"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "VALOR COTA"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	doc, err := NewParser().Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, "148100015830", doc.Property)
}

func TestParseMissingPropertyFails(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A3", "DATA VENCIMENTO"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "VALOR COTA"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = NewParser().Parse(buf)
	assert.ErrorIs(t, err, shared.ErrInputShape)
}

func TestParseMissingHeadersFails(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "B1", "42"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "DATA VENCIMENTO"))
	require.NoError(t, f.SetCellValue(sheet, "A4", "10/06/2023"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = NewParser().Parse(buf)
	assert.ErrorIs(t, err, shared.ErrInputShape)
}

func TestParseGarbageFails(t *testing.T) {
	_, err := NewParser().Parse(bytes.NewReader([]byte("this is not a workbook")))
	assert.ErrorIs(t, err, shared.ErrInputShape)
}
