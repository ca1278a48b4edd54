// Package sheet parses uploaded catalog files into catalog records.
//
// Spreadsheets (.xlsx, .xlsm) are read with excelize; the first worksheet's
// first row names the columns. CSV files follow the same header convention.
// Empty cells are left out of the row so the catalog builder sees them as
// absent, mirroring how spreadsheet-to-JSON converters behave. Numeric and
// boolean cells become float64 and bool; everything else stays a string.
//
// JSON catalogs are an array of row objects, decoded with protojson so
// values keep their JSON types.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/concierge/catalog"
)

// ErrUnsupportedFormat is wrapped when the file extension is not recognised.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Parse decodes a catalog file. The format is chosen from name's extension.
func Parse(name string, data []byte) ([]catalog.Record, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".xlsx", ".xlsm":
		return parseWorkbook(data)
	case ".csv":
		return parseCSV(data)
	case ".json":
		return parseJSON(data)
	default:
		return nil, &catalog.InvalidInputError{
			Row:    -1,
			Reason: fmt.Sprintf("%q", name),
			Err:    ErrUnsupportedFormat,
		}
	}
}

// ParseText returns a notes file as a trimmed supplement. Invalid UTF-8
// sequences are replaced rather than rejected.
func ParseText(data []byte) string {
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	return strings.TrimSpace(text)
}

func parseWorkbook(data []byte) ([]catalog.Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &catalog.InvalidInputError{Row: -1, Reason: "open workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &catalog.InvalidInputError{Row: -1, Reason: "workbook has no sheets"}
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &catalog.InvalidInputError{Row: -1, Reason: "read sheet " + name, Err: err}
	}

	// GetRows keeps row positions, so rows[i] is sheet row i+1.
	typed := make([][]any, len(rows))
	for ri, cells := range rows {
		typed[ri] = make([]any, len(cells))
		for ci, raw := range cells {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return nil, &catalog.InvalidInputError{Row: ri, Reason: "cell reference", Err: err}
			}
			typ, err := f.GetCellType(name, ref)
			if err != nil {
				return nil, &catalog.InvalidInputError{Row: ri, Reason: "cell type " + ref, Err: err}
			}
			typed[ri][ci] = workbookValue(typ, raw)
		}
	}
	return toRecords(typed), nil
}

// workbookValue converts a raw cell value by its stored type. Cells without
// an explicit type are numbers in the file format.
func workbookValue(typ excelize.CellType, raw string) any {
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	}
	return raw
}

func parseCSV(data []byte) ([]catalog.Record, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1

	var rows [][]any
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &catalog.InvalidInputError{Row: len(rows), Reason: "read csv", Err: err}
		}
		row := make([]any, len(rec))
		for i, cell := range rec {
			if cell = strings.TrimSpace(cell); cell != "" {
				row[i] = textValue(cell, len(rows) > 0)
			}
		}
		rows = append(rows, row)
	}
	return toRecords(rows), nil
}

// textValue reads numbers and TRUE/FALSE out of a CSV cell. Header cells
// are always names.
func textValue(cell string, typed bool) any {
	if !typed {
		return cell
	}
	if looksNumeric(cell) {
		if n, err := strconv.ParseFloat(cell, 64); err == nil {
			return n
		}
	}
	switch strings.ToUpper(cell) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return cell
}

// looksNumeric rejects the spellings ParseFloat accepts that a menu cell
// never means as a number: inf, nan, hex and underscores.
func looksNumeric(s string) bool {
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case strings.ContainsRune("+-.eE", r):
		default:
			return false
		}
	}
	return digits
}

func parseJSON(data []byte) ([]catalog.Record, error) {
	var list structpb.ListValue
	if err := protojson.Unmarshal(data, &list); err != nil {
		return nil, &catalog.InvalidInputError{Row: -1, Reason: "decode json catalog", Err: err}
	}

	records := make([]catalog.Record, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, &catalog.InvalidInputError{Row: i, Reason: "row is not an object"}
		}
		records = append(records, catalog.StructRecord{Struct: s})
	}
	return records, nil
}

// toRecords maps every row after the header onto the header names. Blank
// rows are skipped; cells beyond the header are dropped. A nil cell is
// empty.
func toRecords(rows [][]any) []catalog.Record {
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		if h != nil {
			header[i] = strings.TrimSpace(fmt.Sprint(h))
		}
	}

	records := make([]catalog.Record, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := catalog.Row{}
		for i, cell := range cells {
			if cell == nil || i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = cell
		}
		if len(row) == 0 {
			continue
		}
		records = append(records, row)
	}
	return records
}
