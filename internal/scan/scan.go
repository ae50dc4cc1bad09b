// Package scan implements §5's concurrency and resource model: one worker
// per file, capped concurrency, cooperative cancellation, and per-file
// ordering guarantees, driving the httpdlog compiler's recognizer and row
// materializer over a set of log files.
package scan

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/basekick-labs/httpdlog/internal/httpdlog"
	"github.com/basekick-labs/httpdlog/internal/logger"
)

// RowWriterCloser is the per-file output batch handle (§5's "own output
// batch handles"): a RowWriter the scan can flush and release when a
// file's lines are exhausted or cancellation is observed.
type RowWriterCloser interface {
	httpdlog.RowWriter
	Close() error
}

// WriterFactory builds a fresh, file-scoped writer for one worker. Workers
// never share a writer.
type WriterFactory func(path string) (RowWriterCloser, error)

// Config bounds worker concurrency (§5: "N workers ≤ min(file count,
// budget)"). MaxWorkers <= 0 means unbounded (one worker per file).
type Config struct {
	MaxWorkers int
}

// Files scans every path in paths concurrently, materializing rows
// through newWriter's per-file writer. Cancelling ctx stops workers
// between lines — already-written rows in each worker's batch remain
// valid; scanning simply stops early, file handles are released via the
// deferred Close of both the file and the writer.
func Files(ctx context.Context, cfg Config, paths []string, format *httpdlog.CompiledFormat, rawMode bool, projection httpdlog.Projection, newWriter WriterFactory) error {
	if len(paths) == 0 {
		return nil
	}
	workers := cfg.MaxWorkers
	if workers <= 0 || workers > len(paths) {
		workers = len(paths)
	}

	scanID := uuid.New().String()
	log := logger.Get("scan").With().Str("scan_id", scanID).Logger()
	log.Info().Int("files", len(paths)).Int("workers", workers).Msg("scan started")
	sem := make(chan struct{}, workers)
	var g errgroup.Group

	for _, p := range paths {
		path := p
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			writer, err := newWriter(path)
			if err != nil {
				return fmt.Errorf("opening writer for %s: %w", path, err)
			}
			defer writer.Close()

			if err := scanFile(ctx, path, format, rawMode, projection, writer); err != nil {
				log.Error().Err(err).Str("file", path).Msg("scan failed")
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// scanFile implements the per-worker loop: open, read lines in order,
// recognize and materialize each one, stop cooperatively on cancellation.
// An I/O error here is fatal for this file only (§7): the other workers
// keep scanning their files, and Files returns the first such error once
// every worker has finished.
func scanFile(ctx context.Context, path string, format *httpdlog.CompiledFormat, rawMode bool, projection httpdlog.Projection, writer httpdlog.RowWriter) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	var lineNumber int64
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		lineNumber++
		line := scanner.Text()

		captures, ok := httpdlog.Recognize(format, line)
		if !ok {
			if !rawMode {
				continue
			}
			httpdlog.MaterializeRow(format, writer, projection, nil, path, lineNumber, line, true)
			continue
		}
		httpdlog.MaterializeRow(format, writer, projection, captures, path, lineNumber, line, false)
	}
	return scanner.Err()
}
