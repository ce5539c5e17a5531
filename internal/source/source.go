// Package source reads the world cities worksheet.
//
// The worksheet has one header row followed by data rows. Columns, 1-based:
//
//	1 city   2 city_ascii   3 lat   4 lng   5 country   6 iso2   7 iso3
//
// Any further columns are ignored.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alexivanou/worldcities/internal/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrSourceUnavailable means the file is missing or cannot be opened.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSourceMalformed means the file does not have the expected layout.
	ErrSourceMalformed = errors.New("source malformed")
)

const (
	colCityName = iota
	colCityNameASCII
	colLat
	colLon
	colCountryName
	colISO2
	colISO3

	columnCount
)

// Row is one data row of the worksheet.
type Row struct {
	// Line is the 1-based row number in the worksheet.
	Line          int
	CityName      string
	CityNameASCII string
	Lat           decimal.Decimal
	Lon           decimal.Decimal
	CountryName   string
	ISO2          string
	ISO3          string
}

// File is an xlsx workbook on disk.
type File struct {
	Path string
	// Sheet names the worksheet to read; empty selects the first one.
	Sheet string
}

// NewFile returns a reader for the workbook at path.
func NewFile(path, sheet string) *File {
	return &File{Path: path, Sheet: sheet}
}

// ReadRows opens the workbook, validates its layout and returns every data
// row in worksheet order. The workbook is closed before returning.
func (f *File) ReadRows(ctx context.Context) ([]Row, error) {
	if _, err := os.Stat(f.Path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, f.Path, err)
	}

	wb, err := excelize.OpenFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, f.Path, err)
	}
	defer wb.Close()

	sheet, err := f.resolveSheet(wb)
	if err != nil {
		return nil, err
	}

	cells, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrSourceMalformed, sheet, err)
	}

	return parseRows(ctx, cells)
}

func (f *File) resolveSheet(wb *excelize.File) (string, error) {
	if f.Sheet == "" {
		name := wb.GetSheetName(0)
		if name == "" {
			return "", fmt.Errorf("%w: workbook has no worksheets", ErrSourceMalformed)
		}
		return name, nil
	}
	if idx, err := wb.GetSheetIndex(f.Sheet); err != nil || idx < 0 {
		return "", fmt.Errorf("%w: worksheet %q not found", ErrSourceMalformed, f.Sheet)
	}
	return f.Sheet, nil
}

// parseRows validates the header and converts data rows. cells is indexed
// from zero, so cells[0] is worksheet row 1.
func parseRows(ctx context.Context, cells [][]string) ([]Row, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: header row is missing", ErrSourceMalformed)
	}
	if err := validateHeader(cells[0]); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(cells)-1)
	for i := 1; i < len(cells); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(cells[i]) {
			continue
		}
		row, err := parseRow(i+1, cells[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func validateHeader(header []string) error {
	if len(header) < columnCount {
		return fmt.Errorf("%w: header has %d columns, want at least %d",
			ErrSourceMalformed, len(header), columnCount)
	}
	for i := 0; i < columnCount; i++ {
		if strings.TrimSpace(header[i]) == "" {
			return fmt.Errorf("%w: header column %d is empty", ErrSourceMalformed, i+1)
		}
	}
	return nil
}

func parseRow(line int, cells []string) (Row, error) {
	row := Row{
		Line:          line,
		CityName:      cell(cells, colCityName),
		CityNameASCII: cell(cells, colCityNameASCII),
		CountryName:   cell(cells, colCountryName),
		ISO2:          cell(cells, colISO2),
		ISO3:          cell(cells, colISO3),
	}

	if row.CountryName == "" {
		return Row{}, fmt.Errorf("%w: row %d: country name is empty", ErrSourceMalformed, line)
	}

	var err error
	if row.Lat, err = parseCoordinate(cell(cells, colLat), -90, 90); err != nil {
		return Row{}, fmt.Errorf("%w: row %d: lat: %v", ErrSourceMalformed, line, err)
	}
	if row.Lon, err = parseCoordinate(cell(cells, colLon), -180, 180); err != nil {
		return Row{}, fmt.Errorf("%w: row %d: lng: %v", ErrSourceMalformed, line, err)
	}

	return row, nil
}

// parseCoordinate parses a decimal value and rounds it to the stored scale.
func parseCoordinate(s string, lo, hi int64) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, errors.New("value is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.LessThan(decimal.NewFromInt(lo)) || d.GreaterThan(decimal.NewFromInt(hi)) {
		return decimal.Decimal{}, fmt.Errorf("%s out of range [%d, %d]", s, lo, hi)
	}
	return model.NormalizeCoordinate(d), nil
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
