// Package tools is the catalogue of named operations the assistant can call.
package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chiesa2k/testeagent/internal/domain"
	"github.com/chiesa2k/testeagent/internal/search"
	"github.com/chiesa2k/testeagent/internal/service"
)

var ErrUnknownTool = errors.New("unknown tool")

const (
	CapabilitiesTool = "get_agent_capabilities"
	ReportTool       = "generate_daily_management_report"
	SQLTool          = "sql_database_query_tool"
	SearchTool       = "busca_documentos_supply_marine"

	ReportUnavailableMessage = "O relatório gerencial está indisponível."

	missingParamMessage = "Parâmetro obrigatório ausente: '%s'."
	toolPanicMessage    = "Desculpe, ocorreu um erro interno (%T) ao processar a ferramenta '%s'. Verifique os logs."
)

// ReportBuilder renders the YTD dashboard.
type ReportBuilder interface {
	Build(ctx context.Context, today time.Time) string
}

// Deps are the collaborators behind the catalogue. Nil capabilities are
// replaced by their unavailable variants.
type Deps struct {
	Metrics *service.MetricService
	SQL     service.SQLRunner
	Search  search.Searcher
	Report  ReportBuilder
	Clock   func() time.Time
	Observe *Metrics
}

// Tool is one catalogue entry. HTML marks tools whose output is a full
// document.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
	HTML        bool    `json:"html"`
	Available   bool    `json:"available"`

	invoke func(ctx context.Context, args Args) string
}

type Registry struct {
	tools   []Tool
	byName  map[string]int
	metrics *Metrics
}

type metricTool struct {
	metric                       service.Metric
	total, year, month, perMonth string
	subject                      string
	groupedSubject               string
}

var metricTools = []metricTool{
	{service.Sales, "get_total_sales_overall", "get_total_sales_for_year", "get_total_sales_for_month_year", "get_sales_per_month_dataframe",
		"o valor total de vendas", "o total de vendas AGRUPADO"},
	{service.PendingBMs, "get_pending_bms_total", "get_pending_bms_for_year", "get_pending_bms_for_month_year", "get_pending_bms_per_month",
		"a quantidade de BMs 'pendentes'", "a quantidade de BMs 'pendentes' AGRUPADOS"},
	{service.PendingReports, "get_pending_reports_total", "get_pending_reports_for_year", "get_pending_reports_for_month_year", "get_pending_reports_per_month",
		"a quantidade de relatórios 'pendentes de envio'", "a quantidade de relatórios 'pendentes de envio' AGRUPADOS"},
	{service.GrossRevenue, "get_gross_revenue_total", "get_gross_revenue_for_year", "get_gross_revenue_for_month_year", "get_gross_revenue_per_month",
		"o Faturamento BRUTO", "o Faturamento BRUTO AGRUPADO"},
	{service.NetRevenue, "get_net_revenue_total", "get_net_revenue_for_year", "get_net_revenue_for_month_year", "get_net_revenue_per_month",
		"o Faturamento LÍQUIDO", "o Faturamento LÍQUIDO AGRUPADO"},
}

const regimeHint = ", opcionalmente filtrado por regime (Naval/Offshore)."

func NewRegistry(deps Deps) *Registry {
	if deps.SQL == nil {
		deps.SQL = service.DisabledSQL{}
	}
	if deps.Search == nil {
		deps.Search = search.Unavailable{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	r := &Registry{byName: make(map[string]int), metrics: deps.Observe}

	r.add(Tool{
		Name:        CapabilitiesTool,
		Description: "Responde perguntas sobre o que a assistente Marina sabe fazer e quais ferramentas possui.",
		Available:   true,
		invoke:      func(context.Context, Args) string { return service.Capabilities },
	})

	for _, mt := range metricTools {
		r.addMetric(deps.Metrics, mt)
	}

	report := deps.Report
	r.add(Tool{
		Name:        ReportTool,
		Description: "Gera um relatório gerencial consolidado com os principais indicadores do ano corrente até a data atual (YTD).",
		HTML:        report != nil,
		Available:   report != nil,
		invoke: func(ctx context.Context, _ Args) string {
			if report == nil {
				return ReportUnavailableMessage
			}
			return report.Build(ctx, deps.Clock())
		},
	})

	sql := deps.SQL
	r.add(Tool{
		Name:        SQLTool,
		Description: "Executa uma única consulta SELECT de leitura na tabela principal e retorna o resultado como tabela markdown.",
		Params:      []Param{ParamQuery},
		Available:   sql.Available(),
		invoke: func(ctx context.Context, args Args) string {
			return sql.Run(ctx, args.Query)
		},
	})

	searcher := deps.Search
	r.add(Tool{
		Name:        SearchTool,
		Description: "Busca descrições de serviços da Supply Marine que contenham os termos informados.",
		Params:      []Param{ParamQuery},
		Available:   searcher.Available(),
		invoke: func(ctx context.Context, args Args) string {
			return searcher.Search(ctx, args.Query)
		},
	})

	return r
}

func (r *Registry) add(t Tool) {
	r.byName[t.Name] = len(r.tools)
	r.tools = append(r.tools, t)
}

func (r *Registry) addMetric(svc *service.MetricService, mt metricTool) {
	m := mt.metric
	r.add(Tool{
		Name:        mt.total,
		Description: "Calcula " + mt.subject + " TOTAL GERAL" + regimeHint,
		Params:      []Param{ParamRegime},
		Available:   true,
		invoke: func(ctx context.Context, args Args) string {
			return svc.Total(ctx, m, args.Regime)
		},
	})
	r.add(Tool{
		Name:        mt.year,
		Description: "Calcula " + mt.subject + " para um ANO específico" + regimeHint,
		Params:      []Param{ParamYear, ParamRegime},
		Available:   true,
		invoke: func(ctx context.Context, args Args) string {
			year, reply, ok := yearArg(args)
			if !ok {
				return reply
			}
			return svc.ForYear(ctx, m, year, args.Regime)
		},
	})
	r.add(Tool{
		Name:        mt.month,
		Description: "Calcula " + mt.subject + " para um MÊS e ANO específicos" + regimeHint + " O mês pode ser nome ou número.",
		Params:      []Param{ParamMonth, ParamYear, ParamRegime},
		Available:   true,
		invoke: func(ctx context.Context, args Args) string {
			if args.MonthInput.String() == "" {
				return fmt.Sprintf(missingParamMessage, ParamMonth)
			}
			year, reply, ok := yearArg(args)
			if !ok {
				return reply
			}
			return svc.ForMonth(ctx, m, args.MonthInput.String(), year, args.Regime)
		},
	})
	r.add(Tool{
		Name:        mt.perMonth,
		Description: "Busca " + mt.groupedSubject + " POR MÊS" + regimeHint + " Retorna tabela markdown.",
		Params:      []Param{ParamRegime},
		Available:   true,
		invoke: func(ctx context.Context, args Args) string {
			return svc.PerMonth(ctx, m, args.Regime)
		},
	})
}

// yearArg coerces the loosely typed year. On failure reply is the message to
// return to the caller.
func yearArg(args Args) (year int, reply string, ok bool) {
	raw := args.Year.String()
	if raw == "" {
		return 0, fmt.Sprintf(missingParamMessage, ParamYear), false
	}
	year, err := domain.ParseYear(raw)
	if err != nil {
		return 0, service.InvalidYearMessage(raw), false
	}
	return year, "", true
}

// List returns the catalogue in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}

// Invoke runs the named tool. The only error is ErrUnknownTool; everything
// else is part of the reply.
func (r *Registry) Invoke(ctx context.Context, name string, args Args) (reply string, err error) {
	tool, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	start := time.Now()
	outcome := "ok"
	if !tool.Available {
		outcome = "unavailable"
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("tool", name).Msg("tool panicked")
			reply = fmt.Sprintf(toolPanicMessage, p, name)
			outcome = "panic"
		}
		r.metrics.observe(name, outcome, start)
	}()

	log.Debug().Str("tool", name).Msg("tool called")
	return tool.invoke(ctx, args), nil
}
