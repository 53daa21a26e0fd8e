package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// normalizeNewlines turns CRLF and lone CR line breaks into LF.
// encoding/csv drops the CR of CRLF inside quoted fields, so cells are
// stored with LF only in every format.
func normalizeNewlines(cell string) string {
	if !strings.Contains(cell, "\r") {
		return cell
	}
	cell = strings.ReplaceAll(cell, "\r\n", "\n")
	return strings.ReplaceAll(cell, "\r", "\n")
}

func normalizeRow(row []string) []string {
	normalized := make([]string, len(row))
	for i, cell := range row {
		normalized[i] = normalizeNewlines(cell)
	}
	return normalized
}

// Read loads a sheet, choosing the format from the extension
func Read(path string) (*Sheet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	if format == XLSX {
		return readWorkbook(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open questions file: %w", err)
	}
	defer file.Close()

	return ReadDelimited(file, format)
}

// ReadDelimited parses CSV or TSV content. The first record is the header.
func ReadDelimited(r io.Reader, format Format) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.Comma = format.Delimiter()
	reader.FieldsPerRecord = -1
	if format == TSV {
		reader.LazyQuotes = true
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", format, err)
	}

	return fromRecords(records)
}

func fromRecords(records [][]string) (*Sheet, error) {
	if len(records) == 0 {
		return New(nil, nil)
	}

	header := normalizeRow(records[0])
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, normalizeRow(record))
	}
	return New(header, rows)
}

// Write stores a sheet, choosing the format from the extension
func Write(path string, s *Sheet) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if format == XLSX {
		return writeWorkbook(path, s)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := WriteDelimited(file, format, s); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteDelimited writes the header and all rows as CSV or TSV
func WriteDelimited(w io.Writer, format Format, s *Sheet) error {
	writer := csv.NewWriter(w)
	writer.Comma = format.Delimiter()

	if err := writer.Write(normalizeRow(s.Header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range s.Rows {
		if err := writer.Write(normalizeRow(row)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func readWorkbook(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return New(nil, nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return fromRecords(rows)
}

func writeWorkbook(path string, s *Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	name := f.GetSheetName(0)

	if err := writeWorkbookRow(f, name, 1, s.Header); err != nil {
		return err
	}
	for i, row := range s.Rows {
		if err := writeWorkbookRow(f, name, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeWorkbookRow(f *excelize.File, sheetName string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}

	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = normalizeNewlines(v)
	}

	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}
