// Package batch drives extraction over a directory of saved pages,
// writing one JSON record per line. A single bad page never aborts the
// run: pages with no embedded data are skipped quietly, unexpected page
// shapes are reported with the page reference and the failing field.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"moscowrests/lib/reststore"
	"moscowrests/lib/scrapers/tripadvisor"

	"github.com/jedib0t/go-pretty/v6/progress"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("moscowrests/lib/batch")

type Options struct {
	// PagesDir holds the saved detail pages (*.html).
	PagesDir string
	// OutputPath receives line-delimited JSON records.
	OutputPath string
	// Store, when non-nil, also archives every record.
	Store *reststore.Store
	// Progress renders a terminal progress bar.
	Progress bool
}

// Summary reports how each page of a run fared.
type Summary struct {
	Parsed     int
	Skipped    int
	Failed     int
	TotalPages int
	OutputPath string
}

// Run extracts every page in the directory. Only I/O-level failures
// (unreadable directory, unwritable output) abort the run; per-page
// outcomes land in the Summary.
func Run(ctx context.Context, opts Options) (Summary, error) {
	ctx, span := tracer.Start(ctx, "batch.Run")
	defer span.End()

	files, err := filepath.Glob(filepath.Join(opts.PagesDir, "*.html"))
	if err != nil {
		return Summary{}, err
	}
	sort.Strings(files)

	out, err := os.Create(opts.OutputPath)
	if err != nil {
		return Summary{}, err
	}
	defer out.Close()
	writer := bufio.NewWriter(out)

	encoder := json.NewEncoder(writer)
	// keep cyrillic readable in the output file
	encoder.SetEscapeHTML(false)

	var trackerDone func()
	var tick func()
	if opts.Progress {
		trackerDone, tick = startProgress(int64(len(files)))
		defer trackerDone()
	}

	summary := Summary{TotalPages: len(files), OutputPath: opts.OutputPath}
	var nextID int64
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if tick != nil {
			tick()
		}

		html, err := os.ReadFile(file)
		if err != nil {
			summary.Failed++
			slog.ErrorContext(ctx, "cannot read saved page", "page", file, "err", err)
			continue
		}

		rec, err := tripadvisor.ParsePage(ctx, string(html))
		switch {
		case errors.Is(err, tripadvisor.ErrInsufficientData):
			summary.Skipped++
			slog.InfoContext(ctx, "page has insufficient data, skipping", "page", file)
			continue
		case err != nil:
			// unexpected page shape: surface it loudly, keep going
			summary.Failed++
			slog.ErrorContext(ctx, "unexpected page shape", "page", file, "err", err)
			continue
		}

		nextID++
		rec.ID = nextID
		if err := encoder.Encode(rec); err != nil {
			return summary, fmt.Errorf("batch: write record for %s: %w", file, err)
		}
		if opts.Store != nil {
			if err := opts.Store.Put(ctx, rec); err != nil {
				return summary, fmt.Errorf("batch: archive record for %s: %w", file, err)
			}
		}
		summary.Parsed++
	}

	if err := writer.Flush(); err != nil {
		return summary, err
	}
	slog.InfoContext(ctx, "batch finished",
		"parsed", summary.Parsed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

func startProgress(total int64) (done func(), tick func()) {
	pw := progress.NewWriter()
	pw.SetTrackerLength(25)
	pw.SetUpdateFrequency(time.Millisecond * 250)
	go pw.Render()

	t := &progress.Tracker{Message: "extracting pages", Total: total}
	pw.AppendTracker(t)

	return func() {
			t.MarkAsDone()
			pw.Stop()
		}, func() {
			t.Increment(1)
		}
}
