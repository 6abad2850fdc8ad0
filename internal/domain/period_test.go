package domain

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthRangeNamesMatchNumbers(t *testing.T) {
	names := []string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}
	for i, name := range names {
		byName, monthByName, err := MonthRange(name, 2023)
		require.NoError(t, err, name)

		byNumber, monthByNumber, err := MonthRange(strconv.Itoa(i+1), 2023)
		require.NoError(t, err, name)

		assert.Equal(t, byNumber, byName, name)
		assert.Equal(t, monthByNumber, monthByName, name)
	}
}

func TestMonthRangeMarchSpellings(t *testing.T) {
	accented, m1, err := MonthRange("março", 2024)
	require.NoError(t, err)
	plain, m2, err := MonthRange("marco", 2024)
	require.NoError(t, err)
	upper, _, err := MonthRange("  MARÇO ", 2024)
	require.NoError(t, err)
	// "c" followed by a combining cedilla
	decomposed, _, err := MonthRange("março", 2024)
	require.NoError(t, err)

	assert.Equal(t, accented, plain)
	assert.Equal(t, accented, upper)
	assert.Equal(t, accented, decomposed)
	assert.Equal(t, m1, m2)
	assert.Equal(t, "Março", m1.DisplayName())
	assert.Equal(t, date(2024, time.March, 1), accented.Start)
	assert.Equal(t, date(2024, time.April, 1), accented.End)
}

func TestMonthRangeDecemberRollsOver(t *testing.T) {
	r, month, err := MonthRange("dezembro", 2024)
	require.NoError(t, err)

	assert.Equal(t, Month(12), month)
	assert.Equal(t, "2024-12-01", r.StartParam())
	assert.Equal(t, "2025-01-01", r.EndParam())
}

func TestMonthRangeNumericForms(t *testing.T) {
	for _, input := range []string{"3", "03", " 3 "} {
		r, month, err := MonthRange(input, 2022)
		require.NoError(t, err, input)
		assert.Equal(t, Month(3), month)
		assert.Equal(t, "2022-03-01", r.StartParam())
	}
}

func TestMonthRangeRejectsInvalidMonths(t *testing.T) {
	for _, input := range []string{"", "13", "0", "-1", "+3", "3.0", "march", "jan"} {
		_, _, err := MonthRange(input, 2024)
		assert.ErrorIs(t, err, ErrInvalidMonth, input)
	}
}

func TestMonthRangeRejectsInvalidYear(t *testing.T) {
	_, month, err := MonthRange("maio", 0)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.Equal(t, Month(5), month)
}

func TestYearRange(t *testing.T) {
	r, err := YearRange(2024)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 1), r.Start)
	assert.Equal(t, date(2025, time.January, 1), r.End)

	_, err = YearRange(0)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = YearRange(10000)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestParseYear(t *testing.T) {
	year, err := ParseYear(" 2023 ")
	require.NoError(t, err)
	assert.Equal(t, 2023, year)

	for _, raw := range []string{"", "dois mil", "2023.5", "0"} {
		_, err := ParseYear(raw)
		assert.ErrorIs(t, err, ErrInvalidPeriod, raw)
	}
}

func TestMonthLabels(t *testing.T) {
	assert.Equal(t, "JAN", Month(1).Abbrev())
	assert.Equal(t, "dez", Month(12).Key())
	assert.Equal(t, "Fevereiro", Month(2).DisplayName())
	assert.Equal(t, "", Month(13).Abbrev())
}

func TestParseRegime(t *testing.T) {
	regime, ok := ParseRegime("  offshore ")
	assert.True(t, ok)
	assert.Equal(t, RegimeOffshore, regime)
	assert.Equal(t, "Offshore ", regime.Label())

	regime, ok = ParseRegime("NAVAL")
	assert.True(t, ok)
	assert.Equal(t, RegimeNaval, regime)

	_, ok = ParseRegime("invalid")
	assert.False(t, ok)
	assert.Equal(t, "", Regime("").Label())
}
