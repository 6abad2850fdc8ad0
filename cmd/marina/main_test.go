package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiesa2k/testeagent/internal/tools"
)

func TestWriteCatalogue(t *testing.T) {
	var buf bytes.Buffer
	err := writeCatalogue(&buf, []tools.Tool{
		{Name: "sql_database_query_tool", Params: []tools.Param{tools.ParamQuery}, Available: false},
		{Name: "get_total_sales_for_year", Params: []tools.Param{tools.ParamYear, tools.ParamRegime}, Available: true},
	})
	require.NoError(t, err)

	want := "NAME                      PARAMS       AVAILABLE\n" +
		"get_total_sales_for_year  year,regime  yes\n" +
		"sql_database_query_tool   query        no\n"
	assert.Equal(t, want, buf.String())
}

func TestSourceFlagsValidate(t *testing.T) {
	assert.ErrorIs(t, sourceFlags{}.validate(), errOneSource)
	assert.ErrorIs(t, sourceFlags{file: "a.xlsx", objectKey: "b.xlsx"}.validate(), errOneSource)
	assert.NoError(t, sourceFlags{file: "a.xlsx"}.validate())
	assert.NoError(t, sourceFlags{driveFileID: "abc"}.validate())
}

func TestNewAppCommands(t *testing.T) {
	names := make([]string, 0, 4)
	for _, cmd := range newApp().Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"tools", "run", "report", "ingest"}, names)
}
