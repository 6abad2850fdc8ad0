package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	setDefaults()
	viper.AutomaticEnv()
	t.Cleanup(viper.Reset)
}

func TestFromViperDefaults(t *testing.T) {
	resetViper(t)

	cfg := fromViper()

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "meus_dados.db", cfg.Database.DSN())
	assert.Equal(t, time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.Report.ProgramStart)
	assert.False(t, cfg.Cache.Enabled)
	assert.True(t, cfg.App.SQLToolEnabled)
	assert.Equal(t, 50, cfg.App.SQLRowLimit)
	assert.Equal(t, int64(10), cfg.Database.MaxConcurrent)
}

func TestFromViperEnvironmentOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "reports")
	t.Setenv("REPORT_PROGRAM_START", "2020-03-01")
	t.Setenv("CACHE_ENABLED", "true")

	cfg := fromViper()

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db.internal port=5432 user=postgres password=postgres dbname=reports sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC), cfg.Report.ProgramStart)
	assert.True(t, cfg.Cache.Enabled)
}

func TestFromViperInvalidProgramStartFallsBack(t *testing.T) {
	resetViper(t)
	t.Setenv("REPORT_PROGRAM_START", "ontem")

	cfg := fromViper()

	assert.Equal(t, 2019, cfg.Report.ProgramStart.Year())
}

func TestDSNPrefersURL(t *testing.T) {
	cfg := DatabaseConfig{Driver: "pgx", URL: "postgres://u:p@h/db", Host: "ignored"}
	assert.Equal(t, "postgres://u:p@h/db", cfg.DSN())

	sqlite := DatabaseConfig{Driver: "sqlite3", URL: "file::memory:?cache=shared", SQLitePath: "x.db"}
	assert.Equal(t, "file::memory:?cache=shared", sqlite.DSN())
}
