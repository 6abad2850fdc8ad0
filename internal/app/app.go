// Package app wires the configured stores, capabilities and tool catalogue
// shared by the HTTP server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/chiesa2k/testeagent/internal/cache"
	"github.com/chiesa2k/testeagent/internal/chart"
	"github.com/chiesa2k/testeagent/internal/config"
	"github.com/chiesa2k/testeagent/internal/drive"
	"github.com/chiesa2k/testeagent/internal/ingest"
	"github.com/chiesa2k/testeagent/internal/query"
	"github.com/chiesa2k/testeagent/internal/report"
	"github.com/chiesa2k/testeagent/internal/repository"
	"github.com/chiesa2k/testeagent/internal/repository/sqlstore"
	"github.com/chiesa2k/testeagent/internal/search"
	"github.com/chiesa2k/testeagent/internal/service"
	"github.com/chiesa2k/testeagent/internal/storage"
	"github.com/chiesa2k/testeagent/internal/tools"
)

type App struct {
	Config  *config.Config
	DB      *sqlstore.DB
	Cache   cache.RecordsCache
	Tools   *tools.Registry
	Report  *report.Assembler
	Metrics *prometheus.Registry
	// Storage is nil when no endpoint is configured.
	Storage storage.ObjectStorage
}

// New opens the database and builds every component from cfg.
func New(cfg *config.Config) (*App, error) {
	db, err := sqlstore.NewDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a, err := Assemble(cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// Assemble builds the components on top of an open pool.
func Assemble(cfg *config.Config, db *sqlstore.DB) (*App, error) {
	raw := sqlstore.NewRecordsRepository(db)
	records, err := cache.NewRecordsCache(cfg.Cache, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	builder := query.NewBuilder(db.Dialect())

	tmpl, err := report.DefaultTemplate()
	if err != nil {
		return nil, err
	}
	assembler := report.NewAssembler(raw, builder, tmpl, reportCharts(cfg.Report), cfg.Report.ProgramStart)

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := tools.Deps{
		Metrics: service.NewMetricService(records, builder),
		Report:  assembler,
		Observe: tools.NewMetrics(metrics),
	}
	if cfg.App.SQLToolEnabled {
		deps.SQL = service.NewQueryService(raw, cfg.App.SQLRowLimit)
	}
	if cfg.App.SearchEnabled {
		deps.Search = search.NewKeywordSearch(raw, builder)
	}

	objects, err := openStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:  cfg,
		DB:      db,
		Cache:   records,
		Tools:   tools.NewRegistry(deps),
		Report:  assembler,
		Metrics: metrics,
		Storage: objects,
	}, nil
}

// Loader replaces the record table and clears the aggregate cache.
func (a *App) Loader(opts ...ingest.Option) *ingest.Loader {
	return ingest.NewLoader(a.IngestRepository(), a.Cache, opts...)
}

func (a *App) IngestRepository() repository.IngestRepository {
	return sqlstore.NewIngestRepository(a.DB)
}

// Drive opens the Drive client from the configured credentials file.
func (a *App) Drive(ctx context.Context) (*drive.Service, error) {
	return drive.NewServiceFromFile(ctx, a.Config.Drive.CredentialsFile)
}

// ArchiveReport uploads a rendered report under its dated key.
func (a *App) ArchiveReport(ctx context.Context, day time.Time, html string) (string, error) {
	if a.Storage == nil {
		return "", storage.ErrDisabled
	}
	key := storage.ArchiveKey(a.Config.Report.ArchivePrefix, day)
	if err := a.Storage.UploadObject(ctx, key, []byte(html)); err != nil {
		return "", err
	}
	return key, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

func reportCharts(cfg config.ReportConfig) report.Charts {
	if !cfg.ChartsEnabled {
		return report.NoCharts
	}
	renderer := chart.NewSVGRenderer(chart.SVGOpts{})
	return report.Charts{Revenue: renderer, Sales: renderer.WithColor(report.SalesChartColor)}
}

func openStorage(cfg config.StorageConfig) (storage.ObjectStorage, error) {
	client, err := storage.NewMinioClient(cfg)
	switch {
	case errors.Is(err, storage.ErrDisabled):
		log.Debug().Msg("object storage not configured")
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	return client, nil
}
