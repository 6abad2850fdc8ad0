// Package report assembles the year-to-date management dashboard.
package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/chiesa2k/testeagent/internal/chart"
	"github.com/chiesa2k/testeagent/internal/domain"
	"github.com/chiesa2k/testeagent/internal/query"
	"github.com/chiesa2k/testeagent/internal/repository"
)

const (
	apologyMessage = "Desculpe, ocorreu um erro inesperado ao gerar o relatório: %v"

	revenueChartTitle = "Faturamento Mensal YTD"
	salesChartTitle   = "Vendas Mensais YTD"

	// SalesChartColor is the bar color of the sales chart.
	SalesChartColor = "rgba(22, 163, 74, 0.8)"
)

// Charts holds one renderer per dashboard chart.
type Charts struct {
	Revenue chart.Renderer
	Sales   chart.Renderer
}

// NoCharts disables both charts.
var NoCharts = Charts{Revenue: chart.Unavailable{}, Sales: chart.Unavailable{}}

type Assembler struct {
	repo         repository.RecordsRepository
	builder      *query.Builder
	tmpl         *Template
	charts       Charts
	programStart time.Time
}

// NewAssembler wires the dashboard. repo should be the raw row store; the
// report never reads through the cache.
func NewAssembler(repo repository.RecordsRepository, builder *query.Builder, tmpl *Template, charts Charts, programStart time.Time) *Assembler {
	if charts.Revenue == nil {
		charts.Revenue = chart.Unavailable{}
	}
	if charts.Sales == nil {
		charts.Sales = chart.Unavailable{}
	}
	return &Assembler{repo: repo, builder: builder, tmpl: tmpl, charts: charts, programStart: programStart}
}

// Build renders the dashboard for Jan 1 of today's year through today. It
// always returns a document or an apology, never an error.
func (a *Assembler) Build(ctx context.Context, today time.Time) (out string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("report generation panicked")
			out = fmt.Sprintf(apologyMessage, r)
		}
	}()

	rec := a.Collect(ctx, today)
	a.drawCharts(ctx, &rec, today)

	html, err := a.tmpl.Render(rec)
	if err != nil {
		log.Error().Err(err).Msg("report render failed")
		return fmt.Sprintf(apologyMessage, err)
	}

	log.Info().Int("year", rec.Year).Str("through", rec.Through.Format(domain.DateLayout)).Msg("report generated")
	return html
}

// Collect runs every sub-query of the dashboard. A failing sub-query is
// logged and leaves its slot at zero.
func (a *Assembler) Collect(ctx context.Context, today time.Time) Record {
	year := today.Year()
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	through := time.Date(year, today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	rec := Record{Year: year, Through: through, HistorySince: a.programStart}

	revenue := a.window(query.GrossRevenue, from, through)
	rec.RevenueTotal = a.amount(ctx, "faturamento_total", query.GrossRevenue.ValueColumn, revenue)
	a.monthlyAmounts(ctx, "faturamento_mensal", query.GrossRevenue, revenue, &rec.Revenue)

	sales := a.window(query.Sales, from, through)
	rec.SalesTotal = a.amount(ctx, "vendas_total", query.Sales.ValueColumn, sales)
	a.monthlyAmounts(ctx, "vendas_mensal", query.Sales, sales, &rec.Sales)

	bms := a.window(query.PendingBMs, from, through)
	rec.PendingBMItems = a.count(ctx, "bm_pendente_itens", query.PendingBMs, bms)
	rec.PendingBMValue = a.amount(ctx, "bm_pendente_valor", query.PendingBMs.ValueColumn, bms)
	a.monthlyCounts(ctx, "bm_pendente_mensal", query.PendingBMs, bms, &rec.PendingBMs)
	rec.PendingBMHistory = a.amount(ctx, "bm_pendente_historico", query.PendingBMs.ValueColumn, a.window(query.PendingBMs, a.programStart, time.Time{}))

	reports := a.window(query.PendingReports, from, through)
	rec.PendingReportItems = a.count(ctx, "relatorios_pendentes_itens", query.PendingReports, reports)
	rec.PendingReportValue = a.amount(ctx, "relatorios_pendentes_valor", query.PendingReports.ValueColumn, reports)
	a.monthlyCounts(ctx, "relatorios_pendentes_mensal", query.PendingReports, reports, &rec.PendingReports)
	rec.PendingReportHistory = a.amount(ctx, "relatorios_pendentes_historico", query.PendingReports.ValueColumn, a.window(query.PendingReports, a.programStart, time.Time{}))

	return rec
}

func (a *Assembler) window(f query.Family, from, through time.Time) query.Filter {
	return query.BuildFilter(f.Since(from, through), "")
}

func (a *Assembler) amount(ctx context.Context, name, column string, filter query.Filter) decimal.Decimal {
	stmt, err := a.builder.Sum(column, filter)
	if err != nil {
		return a.skip(name, err)
	}
	value, err := a.repo.Scalar(ctx, stmt)
	if err != nil {
		return a.skip(name, err)
	}
	return value
}

func (a *Assembler) count(ctx context.Context, name string, f query.Family, filter query.Filter) int64 {
	stmt, err := a.builder.Aggregate(f, filter)
	if err != nil {
		return a.skip(name, err).IntPart()
	}
	value, err := a.repo.Scalar(ctx, stmt)
	if err != nil {
		return a.skip(name, err).IntPart()
	}
	return value.IntPart()
}

func (a *Assembler) monthlyAmounts(ctx context.Context, name string, f query.Family, filter query.Filter, dest *[12]decimal.Decimal) {
	a.eachMonth(ctx, name, f, filter, func(i int, v decimal.Decimal) { dest[i] = v })
}

func (a *Assembler) monthlyCounts(ctx context.Context, name string, f query.Family, filter query.Filter, dest *[12]int64) {
	a.eachMonth(ctx, name, f, filter, func(i int, v decimal.Decimal) { dest[i] = v.IntPart() })
}

// eachMonth groups by month number and calls set with the zero-based slot.
// Labels that are not a month number are ignored.
func (a *Assembler) eachMonth(ctx context.Context, name string, f query.Family, filter query.Filter, set func(i int, v decimal.Decimal)) {
	stmt, err := a.builder.ByMonthNumber(f, filter)
	if err != nil {
		a.skip(name, err)
		return
	}
	points, err := a.repo.Series(ctx, stmt)
	if err != nil {
		a.skip(name, err)
		return
	}

	for _, p := range points {
		n, err := strconv.Atoi(p.Label)
		if err != nil || !domain.Month(n).Valid() {
			log.Debug().Str("query", name).Str("label", p.Label).Msg("ignoring month label")
			continue
		}
		set(n-1, p.Value)
	}
}

func (a *Assembler) skip(name string, err error) decimal.Decimal {
	log.Error().Err(err).Str("query", name).Msg("report sub-query failed")
	return decimal.Zero
}

func (a *Assembler) drawCharts(ctx context.Context, rec *Record, today time.Time) {
	months := int(today.Month())
	labels := make([]string, months)
	for i := range labels {
		labels[i] = domain.Month(i + 1).Abbrev()
	}

	rec.RevenueChart = a.draw(ctx, a.charts.Revenue, labels, rec.Revenue[:months], revenueChartTitle)
	rec.SalesChart = a.draw(ctx, a.charts.Sales, labels, rec.Sales[:months], salesChartTitle)
}

// draw returns the zero Image when there is nothing positive to plot, the
// renderer is unavailable, or it fails.
func (a *Assembler) draw(ctx context.Context, r chart.Renderer, labels []string, monthly []decimal.Decimal, title string) chart.Image {
	if !r.Available() {
		return chart.Image{}
	}

	values := make([]float64, len(monthly))
	sum := decimal.Zero
	for i, v := range monthly {
		values[i] = v.InexactFloat64()
		sum = sum.Add(v)
	}
	if !sum.IsPositive() {
		log.Debug().Str("chart", title).Msg("no data to plot")
		return chart.Image{}
	}

	img, err := r.BarChart(ctx, labels, values, title)
	if err != nil {
		log.Warn().Err(err).Str("chart", title).Msg("chart rendering failed")
		return chart.Image{}
	}
	return img
}
