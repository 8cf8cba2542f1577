// Package cli is the one-shot uploader application: it takes a collection id
// and file paths, runs the upload pipeline against the broker, journals the
// outcome locally and prints a human-readable report.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ameledin/studiovault/internal/broker"
	"github.com/ameledin/studiovault/internal/client/config"
	"github.com/ameledin/studiovault/internal/logging"
	"github.com/ameledin/studiovault/internal/uploader"
	"github.com/ameledin/studiovault/internal/uploader/journal"
)

// JournalFile is the default journal location, relative to the working
// directory.
const JournalFile = "studiovault.db"

type App struct {
	config *config.Config
	log    logging.Logger
	out    io.Writer
}

func NewApp(c *config.Config, out io.Writer) (*App, error) {
	if c.CollectionID == "" {
		return nil, errors.New("collection id is required (-l)")
	}
	return &App{
		config: c,
		log:    logging.NewDefault(),
		out:    out,
	}, nil
}

// Run uploads the given paths as one batch. The returned bool reports
// whether every file was durably stored.
func (app *App) Run(ctx context.Context, paths []string) (bool, error) {
	if len(paths) == 0 {
		return false, errors.New("no files given")
	}

	files := make([]uploader.File, 0, len(paths))
	for _, path := range paths {
		f, err := uploader.NewLocalFile(path)
		if err != nil {
			return false, err
		}
		files = append(files, f)
	}

	client := broker.NewClient(app.config.ServerEndpointAddr, http.DefaultClient)

	pipe := uploader.New(client, uploader.Options{
		Parallel:          app.config.Parallel,
		MaxRetries:        app.config.MaxRetries,
		PerAttemptTimeout: app.config.PerAttemptTimeout,
		Logger:            app.log,
		Callbacks: uploader.Callbacks{
			OnProgress: func(filename string, percent int, loaded, total int64) {
				if percent == 100 {
					fmt.Fprintf(app.out, "  %s: transferred\n", filename)
				}
			},
			OnFileComplete: func(filename, key string, success bool, err error) {
				if success {
					fmt.Fprintf(app.out, "  %s: done\n", filename)
				} else {
					fmt.Fprintf(app.out, "  %s: FAILED (%v)\n", filename, err)
				}
			},
			OnError: func(subject, msg string) {
				fmt.Fprintf(app.out, "  [%s] %s\n", subject, msg)
			},
		},
	})

	fmt.Fprintf(app.out, "uploading %d file(s) to collection %q\n", len(files), app.config.CollectionID)

	result, err := pipe.UploadFiles(ctx, files, app.config.CollectionID)

	if jerr := app.writeJournal(ctx, result); jerr != nil {
		app.log.Warn(ctx, "journal write failed", "error", jerr)
	}

	fmt.Fprintf(app.out, "stored %d of %d, failed %d\n",
		len(result.Completed), result.Total, len(result.Failed))
	if err != nil {
		fmt.Fprintf(app.out, "batch error: %v\n", err)
	}

	return result.Success, nil
}

func (app *App) writeJournal(ctx context.Context, result *uploader.Result) error {
	j, err := journal.Open(ctx, JournalFile)
	if err != nil {
		return err
	}
	defer j.Close()
	return j.RecordResult(ctx, app.config.CollectionID, result)
}
