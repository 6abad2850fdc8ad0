package report

import (
	"html/template"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chiesa2k/testeagent/internal/chart"
	"github.com/chiesa2k/testeagent/internal/domain"
	"github.com/chiesa2k/testeagent/internal/format"
)

// Record is everything the YTD dashboard shows. Monthly slots are indexed by
// month number minus one; slots after the current month stay zero.
type Record struct {
	Year         int
	Through      time.Time
	HistorySince time.Time

	Revenue        [12]decimal.Decimal
	Sales          [12]decimal.Decimal
	PendingBMs     [12]int64
	PendingReports [12]int64

	RevenueTotal decimal.Decimal
	SalesTotal   decimal.Decimal

	PendingBMItems   int64
	PendingBMValue   decimal.Decimal
	PendingBMHistory decimal.Decimal

	PendingReportItems   int64
	PendingReportValue   decimal.Decimal
	PendingReportHistory decimal.Decimal

	RevenueChart chart.Image
	SalesChart   chart.Image
}

// Chart names accepted by the template.
const (
	RevenueChartName = "faturamento"
	SalesChartName   = "vendas"
)

// Fields renders the record into the template's closed key set. Amounts are
// currency, item counts are plain integers.
func (r Record) Fields() map[string]string {
	fields := make(map[string]string, 64)

	for i := 0; i < 12; i++ {
		key := domain.Month(i + 1).Key()
		fields["faturamento_"+key+"_str"] = format.BRLDecimal(r.Revenue[i])
		fields["vendas_"+key+"_str"] = format.BRLDecimal(r.Sales[i])
		fields["bm_pendente_"+key+"_str"] = format.Count(r.PendingBMs[i])
		fields["relatorios_pendentes_"+key+"_str"] = format.Count(r.PendingReports[i])
	}

	fields["faturamento_total_periodo_str"] = format.BRLDecimal(r.RevenueTotal)
	fields["vendas_total_periodo_str"] = format.BRLDecimal(r.SalesTotal)

	fields["bm_pendente_itens_total_periodo_str"] = format.Count(r.PendingBMItems)
	fields["bm_pendente_valor_total_periodo_str"] = format.BRLDecimal(r.PendingBMValue)
	fields["bm_pendente_valor_total_historico_str"] = format.BRLDecimal(r.PendingBMHistory)

	fields["relatorios_pendentes_itens_total_periodo_str"] = format.Count(r.PendingReportItems)
	fields["relatorios_pendentes_valor_total_periodo_str"] = format.BRLDecimal(r.PendingReportValue)
	fields["relatorios_pendentes_valor_total_historico_str"] = format.BRLDecimal(r.PendingReportHistory)

	fields["data_atualizacao_str"] = r.Through.Format("02/01/2006")
	fields["current_year"] = strconv.Itoa(r.Year)
	fields["historico_desde_str"] = strconv.Itoa(r.HistorySince.Year())

	return fields
}

// Charts returns the embedded chart images by name; a missing chart is "".
func (r Record) Charts() map[string]template.URL {
	return map[string]template.URL{
		RevenueChartName: r.RevenueChart.DataURI(),
		SalesChartName:   r.SalesChart.DataURI(),
	}
}
