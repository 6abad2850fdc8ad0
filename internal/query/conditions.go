package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/chiesa2k/testeagent/internal/domain"
)

// Filter is an ordered conjunction of predicates plus the resolved regime and
// the label used when rendering messages. Its zero value matches every row.
type Filter struct {
	predicates []sq.Sqlizer
	Regime     domain.Regime
	Label      string
}

// BuildFilter copies base and, when regime normalizes to a known value,
// appends the regime predicate. Unknown regimes are ignored.
func BuildFilter(base []sq.Sqlizer, regime string) Filter {
	predicates := make([]sq.Sqlizer, 0, len(base)+1)
	predicates = append(predicates, base...)

	filter := Filter{}
	if r, ok := domain.ParseRegime(regime); ok {
		predicates = append(predicates, sq.Eq{domain.ColRegime: string(r)})
		filter.Regime = r
		filter.Label = r.Label()
	}
	filter.predicates = predicates

	return filter
}

// Len is the number of predicates in the filter.
func (f Filter) Len() int { return len(f.predicates) }

// ToSql joins the predicates with AND and no WHERE keyword, so a Filter can
// be handed to squirrel's Where.
func (f Filter) ToSql() (string, []interface{}, error) {
	parts := make([]string, 0, len(f.predicates))
	var args []interface{}
	for _, p := range f.predicates {
		sql, predArgs, err := p.ToSql()
		if err != nil {
			return "", nil, fmt.Errorf("build predicate: %w", err)
		}
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		args = append(args, predArgs...)
	}
	return strings.Join(parts, " AND "), args, nil
}

// Clause renders the filter as a WHERE clause with "?" placeholders, or ""
// when there is nothing to filter on.
func (f Filter) Clause() (string, []interface{}, error) {
	sql, args, err := f.ToSql()
	if err != nil || sql == "" {
		return "", nil, err
	}
	return "WHERE " + sql, args, nil
}

func isNull(column string) sq.Sqlizer    { return sq.Eq{column: nil} }
func isNotNull(column string) sq.Sqlizer { return sq.NotEq{column: nil} }
