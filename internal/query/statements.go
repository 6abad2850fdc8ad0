package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/chiesa2k/testeagent/internal/domain"
)

// Statement is a fully rendered query ready for the row store.
type Statement struct {
	SQL  string
	Args []interface{}
}

// Dialect captures the SQL differences between the supported row stores.
type Dialect struct {
	Name        string
	placeholder sq.PlaceholderFormat
	yearMonth   func(column string) string
	monthNumber func(column string) string
}

var (
	SQLite = Dialect{
		Name:        "sqlite3",
		placeholder: sq.Question,
		yearMonth:   func(c string) string { return fmt.Sprintf("strftime('%%Y-%%m', %s)", c) },
		monthNumber: func(c string) string { return fmt.Sprintf("strftime('%%m', %s)", c) },
	}

	Postgres = Dialect{
		Name:        "postgres",
		placeholder: sq.Dollar,
		yearMonth:   func(c string) string { return fmt.Sprintf("to_char(%s, 'YYYY-MM')", c) },
		monthNumber: func(c string) string { return fmt.Sprintf("to_char(%s, 'MM')", c) },
	}
)

// DialectFor maps a database/sql driver name to its dialect. Unknown drivers
// fall back to SQLite, the default store.
func DialectFor(driver string) Dialect {
	switch strings.ToLower(driver) {
	case "postgres", "pgx":
		return Postgres
	default:
		return SQLite
	}
}

// StatementBuilder is a squirrel builder using the dialect's placeholders.
func (d Dialect) StatementBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.placeholder)
}

// Builder renders metric statements against RecordTable.
type Builder struct {
	dialect Dialect
	sb      sq.StatementBuilderType
}

func NewBuilder(d Dialect) *Builder {
	return &Builder{
		dialect: d,
		sb:      d.StatementBuilder(),
	}
}

// Dialect returns the dialect the builder renders for.
func (b *Builder) Dialect() Dialect { return b.dialect }

// Aggregate is the family's scalar (SUM or COUNT) over filter.
func (b *Builder) Aggregate(f Family, filter Filter) (Statement, error) {
	return b.render(b.sb.Select(aggregateExpr(f)).From(domain.RecordTable), filter)
}

// Sum is COALESCE(SUM(column),0) over filter, independent of the family's
// own aggregate. The report uses it for pending-item values.
func (b *Builder) Sum(column string, filter Filter) (Statement, error) {
	return b.render(b.sb.Select(sumExpr(column)).From(domain.RecordTable), filter)
}

// ByYearMonth groups the family aggregate by "YYYY-MM" of its date column.
func (b *Builder) ByYearMonth(f Family, filter Filter) (Statement, error) {
	return b.grouped(f, b.dialect.yearMonth(f.DateColumn), filter)
}

// ByMonthNumber groups the family aggregate by month number ("01".."12").
func (b *Builder) ByMonthNumber(f Family, filter Filter) (Statement, error) {
	return b.grouped(f, b.dialect.monthNumber(f.DateColumn), filter)
}

// SearchDescriptions returns the most frequent distinct descriptions that
// contain every term, case-insensitively.
func (b *Builder) SearchDescriptions(terms []string, limit uint64) (Statement, error) {
	col := domain.ColServiceDescription
	predicates := []sq.Sqlizer{isNotNull(col)}
	for _, term := range terms {
		predicates = append(predicates, sq.Like{"LOWER(" + col + ")": "%" + strings.ToLower(term) + "%"})
	}

	q := b.sb.
		Select(col+" AS description", "COUNT(*) AS occurrences").
		From(domain.RecordTable).
		GroupBy(col).
		OrderBy("occurrences DESC", col).
		Limit(limit)

	return b.render(q, Filter{predicates: predicates})
}

func (b *Builder) grouped(f Family, labelExpr string, filter Filter) (Statement, error) {
	q := b.sb.
		Select(labelExpr+" AS label", aggregateExpr(f)+" AS value").
		From(domain.RecordTable).
		GroupBy("label").
		OrderBy("label")

	return b.render(q, filter)
}

func (b *Builder) render(q sq.SelectBuilder, filter Filter) (Statement, error) {
	if filter.Len() > 0 {
		q = q.Where(filter)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("render statement: %w", err)
	}
	return Statement{SQL: sql, Args: args}, nil
}

func aggregateExpr(f Family) string {
	if f.Aggregate == Count {
		return "COUNT(*)"
	}
	return sumExpr(f.ValueColumn)
}

func sumExpr(column string) string {
	return "COALESCE(SUM(" + column + "), 0)"
}
