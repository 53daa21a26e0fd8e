package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than csv, tsv and xlsx
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrColumnNotFound is returned when a named column is missing from the header
	ErrColumnNotFound = errors.New("column not found")

	// ErrExtraCells is returned for a row with more cells than the header
	ErrExtraCells = errors.New("row has more cells than the header")
)

// Format identifies how a sheet is stored on disk
type Format int

const (
	CSV Format = iota
	TSV
	XLSX
)

func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case TSV:
		return "tsv"
	case XLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// Delimiter returns the field separator for the delimited formats
func (f Format) Delimiter() rune {
	if f == TSV {
		return '\t'
	}
	return ','
}

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".tsv":
		return TSV, nil
	case ".xlsx":
		return XLSX, nil
	default:
		return 0, fmt.Errorf("%w: %s (expected .csv, .tsv or .xlsx)", ErrUnsupportedFormat, path)
	}
}

// Sheet is a header plus rows of string cells. Every row has exactly as
// many cells as the header.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// New creates a sheet from a header and rows. Short rows are padded with
// empty cells; a row wider than the header is an error naming the row.
func New(header []string, rows [][]string) (*Sheet, error) {
	s := &Sheet{Header: header}
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d",
				ErrExtraCells, i+1, len(row), len(header))
		}
		aligned := make([]string, len(header))
		copy(aligned, row)
		s.Rows = append(s.Rows, aligned)
	}
	return s, nil
}

// Len returns the number of data rows
func (s *Sheet) Len() int {
	return len(s.Rows)
}

// ColumnIndex returns the position of the named column or -1
func (s *Sheet) ColumnIndex(name string) int {
	for i, h := range s.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of every cell in the named column
func (s *Sheet) Column(name string) ([]string, error) {
	idx := s.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}

	values := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// SetColumn overwrites the named column, appending it when absent
func (s *Sheet) SetColumn(name string, values []string) error {
	if len(values) != len(s.Rows) {
		return fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(s.Rows))
	}

	idx := s.ColumnIndex(name)
	if idx < 0 {
		s.Header = append(s.Header, name)
		for i := range s.Rows {
			s.Rows[i] = append(s.Rows[i], "")
		}
		idx = len(s.Header) - 1
	}

	for i, v := range values {
		s.Rows[i][idx] = v
	}
	return nil
}
