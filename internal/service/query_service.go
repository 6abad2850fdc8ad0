package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/chiesa2k/testeagent/internal/query"
	"github.com/chiesa2k/testeagent/internal/repository"
)

const (
	SQLToolDisabledMessage = "A ferramenta de consulta SQL está desabilitada."
	defaultSQLRowLimit     = 50
)

var (
	errEmptyQuery    = errors.New("empty query")
	errNotReadOnly   = errors.New("only SELECT or WITH statements are allowed")
	errMultipleQuery = errors.New("only one statement is allowed")

	leadingKeyword = regexp.MustCompile(`(?i)^\s*(select|with)\b`)
	writeKeyword   = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|replace|truncate|attach|detach|pragma|vacuum|reindex|grant|revoke|merge|copy)\b`)
)

// SQLRunner answers the free-form SQL tool.
type SQLRunner interface {
	Run(ctx context.Context, raw string) string
	Available() bool
}

// QueryService runs read-only statements and renders them as a table.
type QueryService struct {
	repo     repository.RecordsRepository
	rowLimit int
}

// DisabledSQL is the runner used when the SQL tool is switched off.
type DisabledSQL struct{}

func (DisabledSQL) Run(ctx context.Context, raw string) string { return SQLToolDisabledMessage }
func (DisabledSQL) Available() bool                            { return false }

func NewQueryService(repo repository.RecordsRepository, rowLimit int) *QueryService {
	if rowLimit <= 0 {
		rowLimit = defaultSQLRowLimit
	}
	return &QueryService{repo: repo, rowLimit: rowLimit}
}

func (s *QueryService) Available() bool { return true }

func (s *QueryService) Run(ctx context.Context, raw string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("sql tool panicked")
			reply = fmt.Sprintf(internalErrMessage, r, "consulta SQL")
		}
	}()

	sql, err := ReadOnlyStatement(raw)
	switch {
	case errors.Is(err, errEmptyQuery):
		return "Nenhuma consulta SQL fornecida."
	case err != nil:
		return fmt.Sprintf("Consulta recusada: apenas uma instrução SELECT de leitura é permitida (%v).", err)
	}

	table, err := s.repo.Table(ctx, query.Statement{SQL: sql}, s.rowLimit)
	if err != nil {
		log.Error().Err(err).Str("sql", sql).Msg("sql tool query failed")
		return fmt.Sprintf("Erro ao executar a consulta SQL: %v", err)
	}
	if len(table.Rows) == 0 {
		return "A consulta não retornou resultados."
	}

	out := "Resultado da consulta:\n" + MarkdownTable(table.Columns, table.Rows)
	if table.Truncated {
		out += fmt.Sprintf("\n(exibindo apenas as primeiras %d linhas)", s.rowLimit)
	}
	return out
}

// ReadOnlyStatement trims raw and checks that it is a single SELECT or WITH
// statement without data-changing keywords.
func ReadOnlyStatement(raw string) (string, error) {
	sql := strings.TrimSpace(raw)
	sql = strings.TrimSpace(strings.TrimRight(sql, "; \t\n"))
	if sql == "" {
		return "", errEmptyQuery
	}
	if strings.Contains(sql, ";") {
		return "", errMultipleQuery
	}
	if !leadingKeyword.MatchString(sql) {
		return "", errNotReadOnly
	}
	if kw := writeKeyword.FindString(sql); kw != "" {
		return "", fmt.Errorf("%w: found %s", errNotReadOnly, strings.ToUpper(kw))
	}
	return sql, nil
}
