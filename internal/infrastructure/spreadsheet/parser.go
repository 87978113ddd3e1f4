package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/emgea/siscalculo/internal/domain/shared"
)

const (
	headerRowIndex = 3
	colDueDate     = "DATA VENCIMENTO"
	colValue       = "VALOR COTA"
	colKind        = "TIPO DA PARCELA"
)

// excelEpoch is the zero of Excel's serial date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Row is one accepted worksheet row.
type Row struct {
	Number  int
	DueDate time.Time
	Value   decimal.Decimal
	Kind    int
}

// Document is the parsed worksheet: the property header cells plus the
// accepted rows and the rejects.
type Document struct {
	Property        string
	CondominiumName string
	Rows            []Row
	Rejected        []RowError
}

// Parser reads the installment worksheet layout: B1 property id, B2
// condominium name, header on row 3, data from row 4 on. Only the first
// sheet is read.
type Parser struct {
	now func() time.Time
}

func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// Parse reads the workbook. Structural problems (missing property cell,
// missing required headers) fail the whole call; per-row problems are
// collected in Document.Rejected.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", shared.ErrInputShape)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets: %w", shared.ErrInputShape)
	}

	property, err := f.GetCellValue(sheet, "B1")
	if err != nil {
		return nil, fmt.Errorf("read property cell: %w", err)
	}
	property = cleanIdentifier(property)
	if property == "" {
		return nil, fmt.Errorf("cell B1 has no property id: %w", shared.ErrInputShape)
	}
	condominium, err := f.GetCellValue(sheet, "B2")
	if err != nil {
		return nil, fmt.Errorf("read condominium cell: %w", err)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < headerRowIndex {
		return nil, fmt.Errorf("sheet has no header row: %w", shared.ErrInputShape)
	}

	dateCol, valueCol, kindCol, err := locateColumns(rows[headerRowIndex-1])
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Property:        property,
		CondominiumName: strings.TrimSpace(condominium),
	}
	for i := headerRowIndex; i < len(rows); i++ {
		rowNum := i + 1
		row := rows[i]
		if isBlank(row) {
			continue
		}

		due, err := p.parseDate(cell(row, dateCol))
		if err != nil {
			doc.Rejected = append(doc.Rejected, newRowError(rowNum, colDueDate, ErrCodeInvalidDate,
				"unrecognised due date", cell(row, dateCol)))
			continue
		}
		if due.Year() < 1990 || due.Year() > p.now().Year()+2 {
			doc.Rejected = append(doc.Rejected, newRowError(rowNum, colDueDate, ErrCodeYearOutOfRange,
				fmt.Sprintf("year %d outside the plausible range", due.Year()), cell(row, dateCol)))
			continue
		}

		value, err := parseValue(cell(row, valueCol))
		if err != nil || !value.IsPositive() {
			doc.Rejected = append(doc.Rejected, newRowError(rowNum, colValue, ErrCodeInvalidValue,
				"cota must be a positive amount", cell(row, valueCol)))
			continue
		}

		doc.Rows = append(doc.Rows, Row{
			Number:  rowNum,
			DueDate: due,
			Value:   value.Round(shared.MoneyScale),
			Kind:    parseKind(cell(row, kindCol)),
		})
	}
	return doc, nil
}

func locateColumns(header []string) (dateCol, valueCol, kindCol int, err error) {
	dateCol, valueCol, kindCol = -1, -1, -1
	for i, h := range header {
		switch strings.ToUpper(strings.TrimSpace(h)) {
		case colDueDate:
			dateCol = i
		case colValue:
			valueCol = i
		case colKind:
			kindCol = i
		}
	}
	if dateCol < 0 || valueCol < 0 {
		return 0, 0, 0, fmt.Errorf("header row must carry %q and %q: %w",
			colDueDate, colValue, shared.ErrInputShape)
	}
	return dateCol, valueCol, kindCol, nil
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cleanIdentifier strips the trailing ".0" excel appends to numeric cells.
func cleanIdentifier(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	return s
}

var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
	"01/02/2006",
}

// parseDate tries the accepted textual layouts in precedence order, then an
// Excel serial number, then a native timestamp.
func (p *Parser) parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		return excelEpoch.AddDate(0, 0, int(serial)), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Truncate(24 * time.Hour), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// parseValue accepts both decimal-comma and decimal-point amounts, with
// thousands separators and an optional currency prefix.
func parseValue(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty value cell")
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma > lastDot:
		// decimal comma; dots are thousands separators
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastDot > lastComma:
		// decimal point; commas are thousands separators
		s = strings.ReplaceAll(s, ",", "")
	}
	return decimal.NewFromString(s)
}

// parseKind coerces the installment kind to {1..5}, defaulting to 1.
func parseKind(raw string) int {
	raw = cleanIdentifier(raw)
	if raw == "" {
		return 1
	}
	kind, err := strconv.Atoi(raw)
	if err != nil || kind < 1 || kind > 5 {
		return 1
	}
	return kind
}
