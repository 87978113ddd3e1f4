package spreadsheet

import "fmt"

// Worksheet error codes
const (
	ErrCodeInvalidDate    = "ERR_SHEET_INVALID_DATE"
	ErrCodeYearOutOfRange = "ERR_SHEET_YEAR_OUT_OF_RANGE"
	ErrCodeInvalidValue   = "ERR_SHEET_INVALID_VALUE"
	ErrCodeEmptyRow       = "ERR_SHEET_EMPTY_ROW"
)

// RowError records why a worksheet row was rejected. Rejected rows never
// abort the run; they are counted and reported back to the caller.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

func newRowError(row int, column, code, message, value string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message, Value: value}
}
