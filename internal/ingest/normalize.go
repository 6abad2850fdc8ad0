package ingest

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/chiesa2k/testeagent/internal/domain"
	"github.com/chiesa2k/testeagent/internal/repository"
)

const dateLayout = "2006-01-02"

// textDateLayouts are tried in order for dates typed as text. Day-first
// layouts are the local convention.
var textDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
}

// Normalize types every column and converts each cell to the value stored
// in the record table. Empty or unparseable cells become NULL.
func Normalize(sheet *Sheet) ([]repository.Column, [][]interface{}) {
	columns := make([]repository.Column, len(sheet.Header))
	for i, name := range sheet.Header {
		columns[i] = repository.Column{Name: name, Kind: inferKind(name, sheet.Rows, i)}
	}

	rows := make([][]interface{}, len(sheet.Rows))
	for r, record := range sheet.Rows {
		row := make([]interface{}, len(columns))
		for i, col := range columns {
			row[i] = convert(col.Kind, record[i])
		}
		rows[r] = row
	}
	return columns, rows
}

// NormalizeDate renders raw as YYYY-MM-DD. raw may be an Excel serial
// number or one of the text layouts.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial <= 0 {
			return "", false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return "", false
		}
		return t.Format(dateLayout), true
	}
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayout), true
		}
	}
	return "", false
}

func inferKind(name string, rows [][]string, idx int) repository.ColumnKind {
	switch {
	case slices.Contains(domain.DateColumns, name):
		return repository.KindDate
	case slices.Contains(domain.ValueColumns, name):
		return repository.KindNumber
	}

	numeric := false
	for _, row := range rows {
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return repository.KindText
		}
		numeric = true
	}
	if numeric {
		return repository.KindNumber
	}
	return repository.KindText
}

func convert(kind repository.ColumnKind, raw string) interface{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	switch kind {
	case repository.KindDate:
		if d, ok := NormalizeDate(raw); ok {
			return d
		}
		return nil
	case repository.KindNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		return v
	default:
		return raw
	}
}
