package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/chiesa2k/testeagent/internal/app"
	"github.com/chiesa2k/testeagent/internal/config"
	"github.com/chiesa2k/testeagent/internal/tools"
	"github.com/chiesa2k/testeagent/pkg/logger"
)

type ctxKey struct{}

func initApp(c *cli.Context) error {
	cfg := config.Load()
	logger.Setup(cfg.Server.Mode, c.String("log-level"))

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	c.Context = context.WithValue(c.Context, ctxKey{}, a)
	return nil
}

func closeApp(c *cli.Context) error {
	if a, ok := c.Context.Value(ctxKey{}).(*app.App); ok && a != nil {
		return a.Close()
	}
	return nil
}

func appFrom(c *cli.Context) *app.App {
	return c.Context.Value(ctxKey{}).(*app.App)
}

func newLogLevelFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level (debug, info, warn, error)",
		Value:   "warn",
		EnvVars: []string{"LOG_LEVEL"},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "marina",
		Usage: "Query the Supply Marine operational data from the command line",
		Flags: []cli.Flag{
			newLogLevelFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:   "tools",
				Usage:  "List the tool catalogue",
				Before: initApp,
				After:  closeApp,
				Action: func(c *cli.Context) error {
					return writeCatalogue(c.App.Writer, appFrom(c).Tools.List())
				},
			},
			{
				Name:      "run",
				Usage:     "Invoke one tool and print its reply",
				ArgsUsage: "<tool>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "regime", Usage: "Naval or Offshore"},
					&cli.StringFlag{Name: "year", Usage: "Calendar year, e.g. 2024"},
					&cli.StringFlag{Name: "month", Usage: "Month name or number"},
					&cli.StringFlag{Name: "query", Usage: "SQL statement or search text"},
				},
				Before: initApp,
				After:  closeApp,
				Action: runTool,
			},
			{
				Name:  "report",
				Usage: "Render the YTD management report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the report to this file instead of stdout"},
					&cli.BoolFlag{Name: "archive", Usage: "Upload the report to object storage"},
				},
				Before: initApp,
				After:  closeApp,
				Action: runReport,
			},
			{
				Name:  "ingest",
				Usage: "Replace the record table with a spreadsheet",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "Local xlsx file"},
					&cli.StringFlag{Name: "object-key", Usage: "Object key of an xlsx file in the storage bucket"},
					&cli.StringFlag{Name: "drive-file-id", Usage: "Google Drive file id"},
					&cli.StringFlag{Name: "sheet", Usage: "Sheet to read", Value: "Base"},
					&cli.StringFlag{
						Name:    "download-dir",
						Usage:   "Directory for downloaded objects",
						Value:   "./data/tmp",
						EnvVars: []string{"INGEST_DOWNLOAD_DIR"},
					},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Hide the progress bar"},
				},
				Before: initApp,
				After:  closeApp,
				Action: runIngest,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("marina failed")
	}
}

func runTool(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("missing tool name; see `marina tools`", 2)
	}

	args := tools.Args{
		Regime:     c.String("regime"),
		Year:       tools.Value(c.String("year")),
		MonthInput: tools.Value(c.String("month")),
		Query:      c.String("query"),
	}
	out, err := appFrom(c).Tools.Invoke(c.Context, name, args)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	_, err = fmt.Fprintln(c.App.Writer, out)
	return err
}

// writeCatalogue prints one line per tool, sorted by name.
func writeCatalogue(w io.Writer, list []tools.Tool) error {
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPARAMS\tAVAILABLE")
	for _, t := range list {
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = string(p)
		}
		available := "yes"
		if !t.Available {
			available = "no"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, strings.Join(params, ","), available)
	}
	return tw.Flush()
}
