// Package ingest loads the operational spreadsheet into the record table.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chiesa2k/testeagent/internal/domain"
	"github.com/chiesa2k/testeagent/internal/repository"
)

// Invalidator drops cached aggregates once the table has been replaced.
type Invalidator interface {
	InvalidateAll(ctx context.Context) error
}

// ProgressFunc is called with the row total before the load starts and
// returns the per-row callback handed to the repository.
type ProgressFunc func(total int) func(n int)

// Result summarizes one load.
type Result struct {
	Source   string
	Sheet    string
	Rows     int
	Columns  []repository.Column
	Duration time.Duration
}

type Loader struct {
	repo     repository.IngestRepository
	cache    Invalidator
	sheet    string
	progress ProgressFunc
}

type Option func(*Loader)

// WithSheet reads a sheet other than DefaultSheet.
func WithSheet(name string) Option {
	return func(l *Loader) { l.sheet = name }
}

func WithProgress(p ProgressFunc) Option {
	return func(l *Loader) { l.progress = p }
}

// NewLoader builds a loader; cache may be nil.
func NewLoader(repo repository.IngestRepository, cache Invalidator, opts ...Option) *Loader {
	l := &Loader{repo: repo, cache: cache, sheet: DefaultSheet}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the record table with the content of one source.
func (l *Loader) Load(ctx context.Context, src Source) (*Result, error) {
	start := time.Now()

	r, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer r.Close()

	sheet, err := ReadWorkbook(r, l.sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name(), err)
	}

	columns, rows := Normalize(sheet)
	log.Info().
		Str("source", src.Name()).
		Str("sheet", sheet.Name).
		Int("rows", len(rows)).
		Int("columns", len(columns)).
		Msg("spreadsheet parsed")

	var progress func(n int)
	if l.progress != nil {
		progress = l.progress(len(rows))
	}
	if err := l.repo.ReplaceTable(ctx, domain.RecordTable, columns, rows, progress); err != nil {
		return nil, fmt.Errorf("load %s: %w", domain.RecordTable, err)
	}

	if l.cache != nil {
		if err := l.cache.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Msg("cache invalidation after ingest failed")
		}
	}

	res := &Result{
		Source:   src.Name(),
		Sheet:    sheet.Name,
		Rows:     len(rows),
		Columns:  columns,
		Duration: time.Since(start),
	}
	log.Info().Str("source", res.Source).Int("rows", res.Rows).Dur("took", res.Duration).Msg("record table replaced")
	return res, nil
}
