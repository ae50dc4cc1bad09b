package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/basekick-labs/httpdlog/internal/arrowbatch"
	"github.com/basekick-labs/httpdlog/internal/config"
	"github.com/basekick-labs/httpdlog/internal/confparse"
	"github.com/basekick-labs/httpdlog/internal/httpdlog"
	"github.com/basekick-labs/httpdlog/internal/logger"
	"github.com/basekick-labs/httpdlog/internal/scan"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/rs/zerolog/log"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "read-log":
		runReadLog(os.Args[2:])
	case "read-conf":
		runReadConf(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: httpdlog read-log <path> [flags]")
	fmt.Fprintln(os.Stderr, "       httpdlog read-conf <path>")
}

// runReadLog implements §6 Function 1, read_httpd_log.
func runReadLog(args []string) {
	fs := flag.NewFlagSet("read-log", flag.ExitOnError)
	formatType := fs.String("format_type", "", "built-in shortcut (common, combined) or a conf nickname")
	formatStr := fs.String("format_str", "", "explicit LogFormat string; overrides format_type")
	confPath := fs.String("conf", "", "path to an Apache config file, used for nickname lookup")
	raw := fs.Bool("raw", false, "emit line_number, parse_error, raw_line and *_raw columns; include rows that failed to parse")
	outDir := fs.String("out", "", "write each input file's batch to a Parquet file in this directory instead of only reporting a summary")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to parse flags: %v\n", err)
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "error: path is required")
		os.Exit(1)
	}
	pathPattern := fs.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", Version).Msg("httpdlog read-log")

	files, err := filepath.Glob(pathPattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid glob %q: %v\n", pathPattern, err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "error: no files match %q\n", pathPattern)
		os.Exit(1)
	}

	effectiveFormatType := *formatType
	if effectiveFormatType == "" && *formatStr == "" && *confPath == "" {
		effectiveFormatType = cfg.Registry.DefaultFormatType
	}

	samples := sampleLines(files[0], cfg.Scan.AutodetectSample)
	sel, err := httpdlog.SelectFormat(httpdlog.SelectOptions{
		FormatStr:  *formatStr,
		FormatType: effectiveFormatType,
		ConfPath:   *confPath,
		Samples:    samples,
	}, *raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("format_type", sel.FormatTypeLabel).Int("columns", len(sel.Format.Columns)).Msg("resolved format")

	spillDir := *outDir
	if spillDir == "" && cfg.Output.SpillToParquet {
		spillDir = cfg.Output.SpillDirectory
	}
	var flush arrowbatch.FlushFunc
	if spillDir != "" {
		if err := os.MkdirAll(spillDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "error: creating %s: %v\n", spillDir, err)
			os.Exit(1)
		}
		flush = parquetSpillFlush(spillDir)
	}
	newWriter := func(path string) (scan.RowWriterCloser, error) {
		return arrowbatch.NewWriter(path, sel.Format.Columns, nil, flush), nil
	}

	ctx := context.Background()
	scanCfg := scan.Config{MaxWorkers: cfg.Scan.MaxWorkers}
	if err := scan.Files(ctx, scanCfg, files, sel.Format, *raw, nil, newWriter); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	log.Info().Int("files", len(files)).Msg("scan complete")
}

func parquetSpillFlush(dir string) arrowbatch.FlushFunc {
	return func(path string, record arrow.Record) error {
		data, err := arrowbatch.SpillToParquet(record)
		if err != nil {
			return err
		}
		name := filepath.Base(path) + ".parquet"
		return os.WriteFile(filepath.Join(dir, name), data, 0o644)
	}
}

// sampleLines reads up to n non-empty lines from path for format
// autodetection / conf-candidate validation (§4.6, §6).
func sampleLines(path string, n int) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for len(lines) < n && scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// runReadConf implements §6 Function 2, read_httpd_conf: emit one JSON
// object per recognized directive to stdout.
func runReadConf(args []string) {
	fs := flag.NewFlagSet("read-conf", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to parse flags: %v\n", err)
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "error: path is required")
		os.Exit(1)
	}
	pathPattern := fs.Arg(0)

	files, err := filepath.Glob(pathPattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid glob %q: %v\n", pathPattern, err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, f := range files {
		entries, err := confparse.Parse(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: reading %s: %v\n", f, err)
			continue
		}
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				fmt.Fprintf(os.Stderr, "error: encoding entry: %v\n", err)
			}
		}
	}
}
