// Package search answers the document search tool with a keyword match over
// service descriptions.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/chiesa2k/testeagent/internal/query"
	"github.com/chiesa2k/testeagent/internal/repository"
)

const (
	DisabledMessage = "A busca em documentos está desabilitada."
	defaultLimit    = 3
	minTermLength   = 3
)

// Searcher is the capability behind the document search tool.
type Searcher interface {
	Search(ctx context.Context, text string) string
	Available() bool
}

// Unavailable is used when search is switched off.
type Unavailable struct{}

func (Unavailable) Search(ctx context.Context, text string) string { return DisabledMessage }
func (Unavailable) Available() bool                                { return false }

type KeywordSearch struct {
	repo    repository.DescriptionSearcher
	builder *query.Builder
	limit   uint64
}

func NewKeywordSearch(repo repository.DescriptionSearcher, builder *query.Builder) *KeywordSearch {
	return &KeywordSearch{repo: repo, builder: builder, limit: defaultLimit}
}

func (s *KeywordSearch) Available() bool { return true }

// Search returns the most frequent descriptions containing every term of
// text, separated by blank lines.
func (s *KeywordSearch) Search(ctx context.Context, text string) string {
	terms := Terms(text)
	if len(terms) == 0 {
		return "Nenhum termo de busca fornecido."
	}

	stmt, err := s.builder.SearchDescriptions(terms, s.limit)
	if err != nil {
		return fmt.Sprintf("Erro ao buscar documentos: %v", err)
	}

	hits, err := s.repo.SearchHits(ctx, stmt)
	if err != nil {
		log.Error().Err(err).Strs("terms", terms).Msg("description search failed")
		return fmt.Sprintf("Erro ao buscar documentos: %v", err)
	}
	if len(hits) == 0 {
		return fmt.Sprintf("Nenhum documento relevante encontrado para '%s'.", strings.TrimSpace(text))
	}

	docs := make([]string, len(hits))
	for i, hit := range hits {
		docs[i] = hit.Description
	}
	return strings.Join(docs, "\n\n")
}

// Terms splits text on whitespace and punctuation, dropping words shorter
// than three letters and repeats.
func Terms(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r == '-' || r == '_' || isWordRune(r))
	})

	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minTermLength {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r > 0x7f
}
