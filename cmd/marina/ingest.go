package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/chiesa2k/testeagent/internal/app"
	"github.com/chiesa2k/testeagent/internal/ingest"
	"github.com/chiesa2k/testeagent/internal/storage"
)

var errOneSource = errors.New("exactly one of --file, --object-key or --drive-file-id is required")

type sourceFlags struct {
	file        string
	objectKey   string
	driveFileID string
	downloadDir string
}

func runIngest(c *cli.Context) error {
	a := appFrom(c)
	flags := sourceFlags{
		file:        c.String("file"),
		objectKey:   c.String("object-key"),
		driveFileID: c.String("drive-file-id"),
		downloadDir: c.String("download-dir"),
	}

	src, err := sourceFor(c, a, flags)
	if err != nil {
		return err
	}

	opts := []ingest.Option{ingest.WithSheet(c.String("sheet"))}
	if !c.Bool("quiet") {
		opts = append(opts, ingest.WithProgress(ingest.Bar(c.App.ErrWriter)))
	}

	res, err := a.Loader(opts...).Load(c.Context, src)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%d linhas carregadas de %s (aba %s) em %s\n", res.Rows, res.Source, res.Sheet, res.Duration.Round(time.Millisecond))
	return nil
}

func sourceFor(c *cli.Context, a *app.App, flags sourceFlags) (ingest.Source, error) {
	if err := flags.validate(); err != nil {
		return nil, err
	}

	switch {
	case flags.file != "":
		return ingest.FileSource{Path: flags.file}, nil
	case flags.objectKey != "":
		if a.Storage == nil {
			return nil, storage.ErrDisabled
		}
		return ingest.ObjectSource{Storage: a.Storage, Key: flags.objectKey, Dir: flags.downloadDir}, nil
	default:
		svc, err := a.Drive(c.Context)
		if err != nil {
			return nil, err
		}
		return ingest.DriveSource{Drive: svc, FileID: flags.driveFileID}, nil
	}
}

func (f sourceFlags) validate() error {
	set := 0
	for _, v := range []string{f.file, f.objectKey, f.driveFileID} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return errOneSource
	}
	return nil
}
