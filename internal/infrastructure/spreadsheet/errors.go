package spreadsheet

import (
	"errors"
	"fmt"
	"strings"
)

// Row error codes
const (
	ErrCodeRequired      = "ERR_SHEET_REQUIRED"
	ErrCodeInvalidType   = "ERR_SHEET_INVALID_TYPE"
	ErrCodeInvalidLength = "ERR_SHEET_INVALID_LENGTH"
	ErrCodeInvalidRange  = "ERR_SHEET_INVALID_RANGE"
	ErrCodeDuplicate     = "ERR_SHEET_DUPLICATE"
	ErrCodeReference     = "ERR_SHEET_REFERENCE_NOT_FOUND"
	ErrCodeRejected      = "ERR_SHEET_ROW_REJECTED"
)

var (
	// ErrEmptyWorkbook is returned when the workbook holds no worksheet or no rows
	ErrEmptyWorkbook = errors.New("workbook is empty")

	// ErrMissingColumns is returned when required header columns are absent
	ErrMissingColumns = errors.New("workbook is missing required columns")

	// ErrTooManyRows is returned when a sheet exceeds the row limit
	ErrTooManyRows = errors.New("worksheet exceeds the maximum number of rows")
)

// RowError describes a problem with one cell or row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Message)
}

// ErrorCollection accumulates row errors up to a limit and keeps counting past it
type ErrorCollection struct {
	items []RowError
	limit int
	total int
}

// NewErrorCollection creates a collection keeping at most limit errors
func NewErrorCollection(limit int) *ErrorCollection {
	if limit <= 0 {
		limit = 100
	}
	return &ErrorCollection{limit: limit}
}

// Add records an error
func (c *ErrorCollection) Add(e RowError) {
	c.total++
	if len(c.items) < c.limit {
		c.items = append(c.items, e)
	}
}

// Reject records a row-level error, e.g. one returned by the domain
func (c *ErrorCollection) Reject(row int, err error) {
	c.Add(RowError{Row: row, Code: ErrCodeRejected, Message: err.Error()})
}

// Errors returns the kept errors
func (c *ErrorCollection) Errors() []RowError {
	return c.items
}

// Total returns how many errors were added, kept or not
func (c *ErrorCollection) Total() int {
	return c.total
}

// HasErrors reports whether any error was added
func (c *ErrorCollection) HasErrors() bool {
	return c.total > 0
}

// IsTruncated reports whether errors were dropped at the limit
func (c *ErrorCollection) IsTruncated() bool {
	return c.total > len(c.items)
}

func (c *ErrorCollection) String() string {
	if c.total == 0 {
		return "no errors"
	}
	var sb strings.Builder
	for _, e := range c.items {
		sb.WriteString(e.Error())
		sb.WriteByte('\n')
	}
	if c.IsTruncated() {
		fmt.Fprintf(&sb, "... and %d more", c.total-len(c.items))
	}
	return strings.TrimRight(sb.String(), "\n")
}
