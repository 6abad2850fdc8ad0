package query

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/chiesa2k/testeagent/internal/domain"
)

// Aggregate is how a family reduces its matching rows.
type Aggregate int

const (
	Sum Aggregate = iota
	Count
)

// Family pins down what a metric counts: which rows qualify (base
// predicates), which column is summed, and which date column drives period
// filtering and month grouping.
type Family struct {
	Name        string
	Aggregate   Aggregate
	ValueColumn string
	DateColumn  string

	base func() []sq.Sqlizer
	// datedNeedsNotNull adds "date IS NOT NULL" to date-restricted queries
	// when the base predicates do not already imply it.
	datedNeedsNotNull bool
}

var (
	Sales = Family{
		Name:        "vendas",
		Aggregate:   Sum,
		ValueColumn: domain.ColSalesValue,
		DateColumn:  domain.ColSalesDate,
		base: func() []sq.Sqlizer {
			return []sq.Sqlizer{isNotNull(domain.ColSalesDate)}
		},
	}

	PendingBMs = Family{
		Name:        "bm_pendente",
		Aggregate:   Count,
		ValueColumn: domain.ColSalesValue,
		DateColumn:  domain.ColReportSent,
		base: func() []sq.Sqlizer {
			return []sq.Sqlizer{isNull(domain.ColBMRelease), isNotNull(domain.ColReportSent)}
		},
	}

	PendingReports = Family{
		Name:        "relatorios_pendentes",
		Aggregate:   Count,
		ValueColumn: domain.ColSalesValue,
		DateColumn:  domain.ColReportDue,
		base: func() []sq.Sqlizer {
			return []sq.Sqlizer{isNull(domain.ColReportSent)}
		},
		datedNeedsNotNull: true,
	}

	GrossRevenue = Family{
		Name:        "faturamento",
		Aggregate:   Sum,
		ValueColumn: domain.ColGrossValue,
		DateColumn:  domain.ColBillingDate,
		base:        revenueBase,
	}

	NetRevenue = Family{
		Name:        "faturamento_liquido",
		Aggregate:   Sum,
		ValueColumn: domain.ColNetValue,
		DateColumn:  domain.ColBillingDate,
		base:        revenueBase,
	}
)

func revenueBase() []sq.Sqlizer {
	statuses := make([]string, len(domain.BillableStatuses))
	copy(statuses, domain.BillableStatuses)
	return []sq.Sqlizer{
		isNotNull(domain.ColBillingDate),
		sq.Eq{domain.ColBillingStatus: statuses},
	}
}

// Base returns a fresh copy of the family's qualifying predicates.
func (f Family) Base() []sq.Sqlizer {
	if f.base == nil {
		return nil
	}
	return f.base()
}

// Dated is Base plus whatever date-restricted and grouped queries need.
func (f Family) Dated() []sq.Sqlizer {
	predicates := f.Base()
	if f.datedNeedsNotNull {
		predicates = append(predicates, isNotNull(f.DateColumn))
	}
	return predicates
}

// Between restricts Dated to the half-open range [r.Start, r.End).
func (f Family) Between(r domain.Range) []sq.Sqlizer {
	return append(f.Dated(),
		sq.GtOrEq{f.DateColumn: r.StartParam()},
		sq.Lt{f.DateColumn: r.EndParam()},
	)
}

// Since restricts Dated to dates on or after from, and on or before through
// when through is non-zero. Both bounds are inclusive.
func (f Family) Since(from, through time.Time) []sq.Sqlizer {
	predicates := append(f.Dated(), sq.GtOrEq{f.DateColumn: from.Format(domain.DateLayout)})
	if !through.IsZero() {
		predicates = append(predicates, sq.LtOrEq{f.DateColumn: through.Format(domain.DateLayout)})
	}
	return predicates
}
