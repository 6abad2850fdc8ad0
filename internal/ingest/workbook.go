package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet the record table is loaded from.
const DefaultSheet = "Base"

// Sheet is the raw content of one worksheet. Cells are the stored values,
// so dates come back as Excel serial numbers.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReadWorkbook reads sheet from an xlsx stream. When the workbook has no
// sheet of that name the first sheet is used.
func ReadWorkbook(r io.Reader, sheet string) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	name, err := pickSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", name, err)
	}
	defer rows.Close()

	out := &Sheet{Name: name}
	for rows.Next() {
		record, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read row from sheet %s: %w", name, err)
		}
		if out.Header == nil {
			out.Header = headerNames(record)
			continue
		}
		if blank(record) {
			continue
		}
		out.Rows = append(out.Rows, pad(record, len(out.Header)))
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in sheet %s: %w", name, err)
	}
	if len(out.Header) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", name)
	}

	return out, nil
}

func pickSheet(f *excelize.File, sheet string) (string, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	if idx, err := f.GetSheetIndex(sheet); err == nil && idx >= 0 {
		return sheet, nil
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("xlsx file has no sheets")
	}
	log.Warn().Str("wanted", sheet).Str("using", sheets[0]).Msg("sheet not found, reading first sheet")
	return sheets[0], nil
}

// headerNames trims the header row, names empty cells by position and
// suffixes repeated names with .1, .2 and so on.
func headerNames(record []string) []string {
	names := make([]string, len(record))
	seen := make(map[string]int, len(record))
	for i, raw := range record {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// pad restores the trailing empty cells excelize omits and drops cells
// beyond the header.
func pad(record []string, width int) []string {
	if len(record) >= width {
		return record[:width]
	}
	out := make([]string, width)
	copy(out, record)
	return out
}
