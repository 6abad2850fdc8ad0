package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func runReport(c *cli.Context) error {
	a := appFrom(c)
	today := time.Now()
	html := a.Report.Build(c.Context, today)

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
			return fmt.Errorf("failed writing %s: %w", out, err)
		}
		log.Info().Str("path", out).Msg("report written")
	} else if _, err := fmt.Fprintln(c.App.Writer, html); err != nil {
		return err
	}

	if c.Bool("archive") {
		key, err := a.ArchiveReport(c.Context, today, html)
		if err != nil {
			return fmt.Errorf("failed to archive report: %w", err)
		}
		fmt.Fprintf(c.App.ErrWriter, "report archived as %s\n", key)
	}
	return nil
}
