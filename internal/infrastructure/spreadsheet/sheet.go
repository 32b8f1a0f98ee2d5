// Package spreadsheet reads and writes single-sheet XLSX workbooks as
// header-keyed rows.
package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultMaxRows bounds how many data rows ReadXLSX accepts
const DefaultMaxRows = 50000

// Row is one data row keyed by header name
type Row struct {
	Number int // 1-based worksheet row, header is row 1
	Values map[string]string
}

// Get returns the trimmed cell under header, or "" when absent
func (r *Row) Get(header string) string {
	return r.Values[header]
}

// IsEmpty reports whether every cell is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// Sheet is the parsed content of a worksheet
type Sheet struct {
	Name    string
	Headers []string
	Rows    []*Row
}

// HasColumn reports whether the header row contains name
func (s *Sheet) HasColumn(name string) bool {
	for _, h := range s.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the required headers not present in the sheet
func (s *Sheet) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if !s.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ReadXLSX parses the first worksheet of a workbook. The first row is the
// header; blank rows are skipped.
func ReadXLSX(r io.Reader, maxRows int) (*Sheet, error) {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrEmptyWorkbook
	}
	raw, err := f.GetRows(names[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %s: %w", names[0], err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyWorkbook
	}
	if len(raw)-1 > maxRows {
		return nil, ErrTooManyRows
	}

	sheet := &Sheet{Name: names[0], Headers: make([]string, len(raw[0]))}
	for i, h := range raw[0] {
		sheet.Headers[i] = strings.TrimSpace(h)
	}
	for i, cells := range raw[1:] {
		row := &Row{Number: i + 2, Values: make(map[string]string, len(sheet.Headers))}
		for col, h := range sheet.Headers {
			if h == "" {
				continue
			}
			if col < len(cells) {
				row.Values[h] = strings.TrimSpace(cells[col])
			} else {
				row.Values[h] = ""
			}
		}
		if row.IsEmpty() {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// Writer builds a workbook with one worksheet
type Writer struct {
	file  *excelize.File
	sheet string
	next  int
}

// NewWriter creates a workbook whose only worksheet is named sheet
func NewWriter(sheet string) (*Writer, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("name worksheet: %w", err)
	}
	return &Writer{file: f, sheet: sheet, next: 1}, nil
}

// WriteHeader writes a bold header row and freezes it
func (w *Writer) WriteHeader(headers []string) error {
	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	if err := w.WriteRow(cells); err != nil {
		return err
	}
	if err := w.file.SetRowStyle(w.sheet, 1, 1, style); err != nil {
		return err
	}
	return w.file.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// WriteRow appends a row of cell values
func (w *Writer) WriteRow(cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", w.next, err)
	}
	w.next++
	return nil
}

// WriteTo serializes the workbook
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	return w.file.WriteTo(out)
}

// Close releases the workbook
func (w *Writer) Close() error {
	return w.file.Close()
}
