package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DateLayout is the textual form used for every date bound sent to the row store.
const DateLayout = "2006-01-02"

var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrInvalidMonth  = errors.New("invalid month")
)

const (
	minYear = 1
	maxYear = 9998
)

// Range is a half-open date interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) StartParam() string { return r.Start.Format(DateLayout) }
func (r Range) EndParam() string   { return r.End.Format(DateLayout) }

// Month is a calendar month number, 1..12.
type Month int

// Lexicon order matters: the first spelling of a month is its display name.
var monthLexicon = []struct {
	name  string
	month Month
}{
	{"janeiro", 1},
	{"fevereiro", 2},
	{"março", 3},
	{"marco", 3},
	{"abril", 4},
	{"maio", 5},
	{"junho", 6},
	{"julho", 7},
	{"agosto", 8},
	{"setembro", 9},
	{"outubro", 10},
	{"novembro", 11},
	{"dezembro", 12},
}

var monthAbbrevs = [12]string{"JAN", "FEV", "MAR", "ABR", "MAI", "JUN", "JUL", "AGO", "SET", "OUT", "NOV", "DEZ"}

var (
	monthCodes        = make(map[string]Month, len(monthLexicon))
	monthDisplayNames [12]string
)

func init() {
	title := cases.Title(language.BrazilianPortuguese)
	for _, entry := range monthLexicon {
		monthCodes[entry.name] = entry.month
		if monthDisplayNames[entry.month-1] == "" {
			monthDisplayNames[entry.month-1] = title.String(entry.name)
		}
	}
}

// Valid reports whether m is within 1..12.
func (m Month) Valid() bool { return m >= 1 && m <= 12 }

// DisplayName is the capitalized Portuguese month name ("Março").
func (m Month) DisplayName() string {
	if !m.Valid() {
		return strconv.Itoa(int(m))
	}
	return monthDisplayNames[m-1]
}

// Abbrev is the three-letter upper-case abbreviation ("MAR").
func (m Month) Abbrev() string {
	if !m.Valid() {
		return ""
	}
	return monthAbbrevs[m-1]
}

// Key is the lower-case abbreviation used in report field names ("mar").
func (m Month) Key() string {
	return strings.ToLower(m.Abbrev())
}

// ParseMonth accepts a Portuguese month name (accented or not for March) or
// a numeric string whose value is 1..12.
func ParseMonth(input string) (Month, error) {
	normalized := cases.Lower(language.BrazilianPortuguese).String(norm.NFC.String(strings.TrimSpace(input)))
	if normalized == "" {
		return 0, ErrInvalidMonth
	}

	if month, ok := monthCodes[normalized]; ok {
		return month, nil
	}

	if !isDigits(normalized) {
		return 0, ErrInvalidMonth
	}
	n, err := strconv.Atoi(normalized)
	if err != nil || !Month(n).Valid() {
		return 0, ErrInvalidMonth
	}

	return Month(n), nil
}

// ParseYear coerces loosely typed year input ("2024", " 2024 ").
func ParseYear(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidPeriod
	}
	if year < minYear || year > maxYear {
		return 0, ErrInvalidPeriod
	}
	return year, nil
}

// YearRange returns [Jan 1 year, Jan 1 year+1).
func YearRange(year int) (Range, error) {
	if year < minYear || year > maxYear {
		return Range{}, ErrInvalidPeriod
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	return Range{Start: start, End: start.AddDate(1, 0, 0)}, nil
}

// MonthRange resolves a month input within year into [month-01, next month-01).
func MonthRange(monthInput string, year int) (Range, Month, error) {
	month, err := ParseMonth(monthInput)
	if err != nil {
		return Range{}, 0, err
	}
	if year < minYear || year > maxYear {
		return Range{}, month, ErrInvalidPeriod
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	nextYear, nextMonth := year, month+1
	if nextMonth > 12 {
		nextMonth = 1
		nextYear++
	}
	end := time.Date(nextYear, time.Month(nextMonth), 1, 0, 0, 0, 0, time.UTC)

	return Range{Start: start, End: end}, month, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
