package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiesa2k/testeagent/internal/domain"
	"github.com/chiesa2k/testeagent/internal/query"
)

type fakeSearcher struct {
	hits []domain.SearchHit
	err  error
	got  []query.Statement
}

func (f *fakeSearcher) SearchHits(ctx context.Context, stmt query.Statement) ([]domain.SearchHit, error) {
	f.got = append(f.got, stmt)
	return f.hits, f.err
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"inspeção", "casco", "2024"}, Terms("  Inspeção de casco, casco 2024! a "))
	assert.Empty(t, Terms(" ?! "))
}

func TestKeywordSearch(t *testing.T) {
	repo := &fakeSearcher{hits: []domain.SearchHit{
		{Description: "Inspeção de casco", Occurrences: 4},
		{Description: "Reparo de casco", Occurrences: 1},
	}}
	s := NewKeywordSearch(repo, query.NewBuilder(query.SQLite))

	out := s.Search(context.Background(), "casco")

	assert.Equal(t, "Inspeção de casco\n\nReparo de casco", out)
	require.Len(t, repo.got, 1)
	assert.Equal(t, []interface{}{"%casco%"}, repo.got[0].Args)
	assert.Contains(t, repo.got[0].SQL, "LIMIT 3")
	assert.True(t, s.Available())
}

func TestKeywordSearchReplies(t *testing.T) {
	repo := &fakeSearcher{}
	s := NewKeywordSearch(repo, query.NewBuilder(query.SQLite))
	ctx := context.Background()

	assert.Equal(t, "Nenhum termo de busca fornecido.", s.Search(ctx, "   "))
	assert.Empty(t, repo.got)
	assert.Equal(t, "Nenhum documento relevante encontrado para 'hélice'.", s.Search(ctx, " hélice "))

	repo.err = errors.New("no such table")
	assert.Equal(t, "Erro ao buscar documentos: no such table", s.Search(ctx, "hélice"))
}

func TestUnavailable(t *testing.T) {
	var s Searcher = Unavailable{}

	assert.False(t, s.Available())
	assert.Equal(t, DisabledMessage, s.Search(context.Background(), "casco"))
}
