// Package breakdown turns allocation CSV data into colored, per-fund chart series
package breakdown

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/bobmcallan/fundmix/internal/models"
)

// Required header columns.
const (
	ColumnFund      = "Fund"
	ColumnChartType = "ChartType"
	ColumnCategory  = "Category"
	ColumnValue     = "Value"
)

var requiredColumns = []string{ColumnFund, ColumnChartType, ColumnCategory, ColumnValue}

// ErrIngestionFormat matches every FormatError via errors.Is.
var ErrIngestionFormat = errors.New("ingestion format error")

// FormatError reports input that cannot be read as an allocation table.
type FormatError struct {
	Line   int // 0 when the failure is not tied to a line
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := "ingestion format error"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIngestionFormat) true for any FormatError.
func (e *FormatError) Is(target error) bool { return target == ErrIngestionFormat }

// ParseRows reads allocation CSV text into rows, one per data record, in file order.
// Fields are matched by header name. A missing or empty Value is kept as "".
func ParseRows(r io.Reader) ([]models.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &FormatError{Reason: "unreadable input", Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &FormatError{Reason: "input is not valid UTF-8"}
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &FormatError{Reason: "missing header row"}
	}
	if err != nil {
		return nil, csvFormatError(err)
	}

	columns, err := headerColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []models.Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvFormatError(err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, models.Row{
			Line:      line,
			Fund:      field(record, columns[ColumnFund]),
			ChartType: field(record, columns[ColumnChartType]),
			Category:  field(record, columns[ColumnCategory]),
			Value:     field(record, columns[ColumnValue]),
		})
	}
	return rows, nil
}

// headerColumns maps each required column name to its position.
func headerColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := columns[name]; dup {
			continue
		}
		columns[name] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &FormatError{
			Line:   1,
			Reason: fmt.Sprintf("header missing column(s) %s", strings.Join(missing, ", ")),
		}
	}
	return columns, nil
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

func csvFormatError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &FormatError{Line: pe.StartLine, Reason: "malformed CSV", Err: err}
	}
	return &FormatError{Reason: "malformed CSV", Err: err}
}
