package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/chiesa2k/testeagent/internal/domain"
	"github.com/chiesa2k/testeagent/internal/format"
	"github.com/chiesa2k/testeagent/internal/query"
	"github.com/chiesa2k/testeagent/internal/repository"
)

// Metric selects one of the five aggregations the tools expose.
type Metric int

const (
	Sales Metric = iota
	PendingBMs
	PendingReports
	GrossRevenue
	NetRevenue
)

// Metrics lists every metric in catalogue order.
var Metrics = []Metric{Sales, PendingBMs, PendingReports, GrossRevenue, NetRevenue}

const (
	invalidMonthMessage = "Mês inválido fornecido: '%s'."
	invalidYearMessage  = "Ano inválido fornecido: %v."
	internalErrMessage  = "Desculpe, ocorreu um erro interno (%T) ao processar '%s'. Verifique os logs."
)

// InvalidYearMessage is the reply for a year that cannot be used, in
// whatever form it was given.
func InvalidYearMessage(raw interface{}) string {
	return fmt.Sprintf(invalidYearMessage, raw)
}

// phrases holds the reply templates of one metric. The regime label is
// always the first argument and already carries its trailing space.
type phrases struct {
	total, totalErr string
	year, yearErr   string
	month, monthErr string
	table, empty    string
	tableErr        string
	column          string
	// noun and title name the metric in internal error replies
	noun, title string
}

type metricDef struct {
	family  query.Family
	phrases phrases
}

var metricDefs = map[Metric]metricDef{
	Sales: {
		family: query.Sales,
		phrases: phrases{
			total:    "O total geral de vendas %s(baseado na data de recebimento da PO) é %s",
			totalErr: "Erro ao calcular total geral de vendas %s: %v",
			year:     "O total de vendas %spara %d foi %s",
			yearErr:  "Erro ao calcular vendas %spara %d: %v",
			month:    "O total de vendas %spara %s de %d foi %s",
			monthErr: "Erro ao calcular vendas %spara %s/%d: %v",
			table:    "Aqui está o resumo das vendas %spor mês:\n%s",
			empty:    "Não encontrei dados de vendas %spara agrupar por mês.",
			tableErr: "Erro ao buscar vendas %spor mês: %v",
			column:   "Vendas_no_Mês",
			noun:     "vendas",
			title:    "Vendas",
		},
	},
	PendingBMs: {
		family: query.PendingBMs,
		phrases: phrases{
			total:    "O número total de BMs pendentes %sé: %s",
			totalErr: "Não foi possível calcular o total de BMs pendentes %s. Erro: %v",
			year:     "O número de BMs pendentes %spara o ano %d é: %s",
			yearErr:  "Não foi possível calcular BMs pendentes %spara %d. Erro: %v",
			month:    "O número de BMs pendentes %spara %s de %d é: %s",
			monthErr: "Não foi possível calcular BMs pendentes %spara %s/%d. Erro: %v",
			table:    "Aqui está o resumo de BMs pendentes %spor mês:\n%s",
			empty:    "Não encontrei dados de BMs pendentes %spara agrupar por mês.",
			tableErr: "Erro ao buscar BMs pendentes %spor mês: %v",
			column:   "Qtd_Pendentes",
			noun:     "BMs pendentes",
			title:    "BMs pendentes",
		},
	},
	PendingReports: {
		family: query.PendingReports,
		phrases: phrases{
			total:    "O número total de relatórios pendentes %sde envio é: %s",
			totalErr: "Não foi possível calcular o total de relatórios pendentes %s. Erro: %v",
			year:     "O número de relatórios pendentes %spara o ano %d é: %s",
			yearErr:  "Não foi possível calcular relatórios pendentes %spara %d. Erro: %v",
			month:    "O número de relatórios pendentes %spara %s de %d é: %s",
			monthErr: "Não foi possível calcular relatórios pendentes %spara %s/%d. Erro: %v",
			table:    "Aqui está o resumo de relatórios pendentes %spor mês:\n%s",
			empty:    "Não encontrei dados de relatórios pendentes %spara agrupar por mês.",
			tableErr: "Erro ao buscar relatórios pendentes %spor mês: %v",
			column:   "Qtd_Pendentes",
			noun:     "relatórios pendentes",
			title:    "Relatórios pendentes",
		},
	},
	GrossRevenue: {
		family: query.GrossRevenue,
		phrases: phrases{
			total:    "O faturamento bruto total %sé %s",
			totalErr: "Erro ao calcular faturamento bruto total %s: %v",
			year:     "O faturamento bruto %spara %d foi %s",
			yearErr:  "Erro ao calcular faturamento bruto %spara %d: %v",
			month:    "O faturamento bruto %spara %s de %d foi %s",
			monthErr: "Erro ao calcular faturamento bruto %spara %s/%d: %v",
			table:    "Aqui está o resumo do faturamento bruto %spor mês:\n%s",
			empty:    "Não encontrei dados de faturamento bruto %spara agrupar por mês.",
			tableErr: "Erro ao buscar faturamento bruto %spor mês: %v",
			column:   "Faturamento_Bruto",
			noun:     "faturamento bruto",
			title:    "Faturamento bruto",
		},
	},
	NetRevenue: {
		family: query.NetRevenue,
		phrases: phrases{
			total:    "O faturamento líquido total %sé %s",
			totalErr: "Erro ao calcular faturamento líquido total %s: %v",
			year:     "O faturamento líquido %spara %d foi %s",
			yearErr:  "Erro ao calcular faturamento líquido %spara %d: %v",
			month:    "O faturamento líquido %spara %s de %d foi %s",
			monthErr: "Erro ao calcular faturamento líquido %spara %s/%d: %v",
			table:    "Aqui está o resumo do faturamento líquido %spor mês:\n%s",
			empty:    "Não encontrei dados de faturamento líquido %spara agrupar por mês.",
			tableErr: "Erro ao buscar faturamento líquido %spor mês: %v",
			column:   "Faturamento_Liquido",
			noun:     "faturamento líquido",
			title:    "Faturamento líquido",
		},
	},
}

// MetricService answers the metric tools. Every method returns a reply
// string; data errors and panics are rendered, never returned.
type MetricService struct {
	repo    repository.RecordsRepository
	builder *query.Builder
}

func NewMetricService(repo repository.RecordsRepository, builder *query.Builder) *MetricService {
	return &MetricService{repo: repo, builder: builder}
}

// Total is the aggregate over every qualifying row.
func (s *MetricService) Total(ctx context.Context, m Metric, regime string) (reply string) {
	def, ok := metricDefs[m]
	if !ok {
		return unknownMetric(m)
	}
	defer s.recoverReply(&reply, def.phrases.subject(regimeLabel(regime), ""))

	filter := query.BuildFilter(def.family.Base(), regime)
	value, err := s.scalar(ctx, def.family, filter)
	if err != nil {
		log.Error().Err(err).Str("metric", def.family.Name).Str("regime", string(filter.Regime)).Msg("total failed")
		return fmt.Sprintf(def.phrases.totalErr, filter.Label, err)
	}

	return fmt.Sprintf(def.phrases.total, filter.Label, render(def.family, value))
}

// ForYear restricts the aggregate to the calendar year.
func (s *MetricService) ForYear(ctx context.Context, m Metric, year int, regime string) (reply string) {
	def, ok := metricDefs[m]
	if !ok {
		return unknownMetric(m)
	}
	defer s.recoverReply(&reply, def.phrases.subject(regimeLabel(regime), fmt.Sprintf("para %d", year)))

	r, err := domain.YearRange(year)
	if err != nil {
		return InvalidYearMessage(year)
	}

	filter := query.BuildFilter(def.family.Between(r), regime)
	value, err := s.scalar(ctx, def.family, filter)
	if err != nil {
		log.Error().Err(err).Str("metric", def.family.Name).Str("regime", string(filter.Regime)).Int("year", year).Msg("year total failed")
		return fmt.Sprintf(def.phrases.yearErr, filter.Label, year, err)
	}

	return fmt.Sprintf(def.phrases.year, filter.Label, year, render(def.family, value))
}

// ForMonth restricts the aggregate to one month of year.
func (s *MetricService) ForMonth(ctx context.Context, m Metric, monthInput string, year int, regime string) (reply string) {
	def, ok := metricDefs[m]
	if !ok {
		return unknownMetric(m)
	}
	defer s.recoverReply(&reply, def.phrases.subject(regimeLabel(regime), fmt.Sprintf("para %s/%d", monthInput, year)))

	r, month, err := domain.MonthRange(monthInput, year)
	switch {
	case errors.Is(err, domain.ErrInvalidMonth):
		return fmt.Sprintf(invalidMonthMessage, monthInput)
	case err != nil:
		return InvalidYearMessage(year)
	}

	filter := query.BuildFilter(def.family.Between(r), regime)
	name := month.DisplayName()
	value, err := s.scalar(ctx, def.family, filter)
	if err != nil {
		log.Error().Err(err).
			Str("metric", def.family.Name).
			Str("regime", string(filter.Regime)).
			Str("month", name).
			Int("year", year).
			Msg("month total failed")
		return fmt.Sprintf(def.phrases.monthErr, filter.Label, name, year, err)
	}

	return fmt.Sprintf(def.phrases.month, filter.Label, name, year, render(def.family, value))
}

// PerMonth is the aggregate grouped by year-month, as a markdown table.
func (s *MetricService) PerMonth(ctx context.Context, m Metric, regime string) (reply string) {
	def, ok := metricDefs[m]
	if !ok {
		return unknownMetric(m)
	}
	defer s.recoverReply(&reply, def.phrases.title+" "+regimeLabel(regime)+"por mês")

	filter := query.BuildFilter(def.family.Dated(), regime)
	points, err := s.series(ctx, def.family, filter)
	if err != nil {
		log.Error().Err(err).Str("metric", def.family.Name).Str("regime", string(filter.Regime)).Msg("per month failed")
		return fmt.Sprintf(def.phrases.tableErr, filter.Label, err)
	}
	if len(points) == 0 {
		return fmt.Sprintf(def.phrases.empty, filter.Label)
	}

	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{p.Label, render(def.family, p.Value)}
	}

	return fmt.Sprintf(def.phrases.table, filter.Label, MarkdownTable([]string{"Mes", def.phrases.column}, rows))
}

func (s *MetricService) scalar(ctx context.Context, f query.Family, filter query.Filter) (decimal.Decimal, error) {
	stmt, err := s.builder.Aggregate(f, filter)
	if err != nil {
		return decimal.Zero, err
	}
	return s.repo.Scalar(ctx, stmt)
}

func (s *MetricService) series(ctx context.Context, f query.Family, filter query.Filter) ([]domain.SeriesPoint, error) {
	stmt, err := s.builder.ByYearMonth(f, filter)
	if err != nil {
		return nil, err
	}
	return s.repo.Series(ctx, stmt)
}

func (s *MetricService) recoverReply(reply *string, subject string) {
	if r := recover(); r != nil {
		log.Error().Interface("panic", r).Str("subject", subject).Msg("metric operation panicked")
		*reply = fmt.Sprintf(internalErrMessage, r, subject)
	}
}

func (p phrases) subject(label, suffix string) string {
	return strings.TrimSpace(p.noun + " " + label + suffix)
}

func regimeLabel(regime string) string {
	r, _ := domain.ParseRegime(regime)
	return r.Label()
}

func unknownMetric(m Metric) string {
	return fmt.Sprintf("Métrica desconhecida: %d.", int(m))
}

func render(f query.Family, value decimal.Decimal) string {
	if f.Aggregate == query.Count {
		return format.Count(value.IntPart())
	}
	return format.BRLDecimal(value)
}
