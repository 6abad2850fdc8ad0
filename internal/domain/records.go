package domain

import "github.com/shopspring/decimal"

// RecordTable is the single flat table every query reads.
const RecordTable = "minha_tabela_principal"

// Columns of RecordTable referenced by the query layer.
const (
	ColRegime             = "servico_regime"
	ColSalesValue         = "valor_venda_total"
	ColSalesDate          = "data_recebimento_po"
	ColBMRelease          = "data_liberacao_bm"
	ColReportSent         = "data_envio_relatorios"
	ColReportDue          = "data_final_atendimento"
	ColBillingDate        = "data_faturamento"
	ColBillingStatus      = "atendimento_andamento"
	ColGrossValue         = "valor_venda_total"
	ColNetValue           = "valor_venda_servico_desc"
	ColServiceDescription = "servico_descricao"
)

// BillableStatuses are the billing statuses that count as valid revenue.
var BillableStatuses = []string{"Falta Recebimento", "Finalizado Com Faturamento"}

// DateColumns are stored as YYYY-MM-DD.
var DateColumns = []string{ColSalesDate, ColBMRelease, ColReportSent, ColReportDue, ColBillingDate}

// ValueColumns are stored as numbers.
var ValueColumns = []string{ColSalesValue, ColNetValue}

// SeriesPoint is one bucket of a grouped aggregation.
type SeriesPoint struct {
	Label string          `db:"label" json:"label"`
	Value decimal.Decimal `db:"value" json:"value"`
}

// Table is a generic read result with every cell rendered as text.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	// Truncated is set when more rows were available than were read.
	Truncated bool `json:"truncated"`
}

// SearchHit is one match from the description text search.
type SearchHit struct {
	Description string `db:"description" json:"description"`
	Occurrences int64  `db:"occurrences" json:"occurrences"`
}
