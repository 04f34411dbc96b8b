package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/internal/cache"
	"github.com/superdango/construction-carbon/internal/demo"
	"github.com/superdango/construction-carbon/internal/source"
	"github.com/superdango/construction-carbon/model"
	"github.com/superdango/construction-carbon/model/factors"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])

		flag.PrintDefaults()

		fmt.Fprint(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprint(os.Stderr, "  AWS_REGION, AWS_PROFILE, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY\n")
		fmt.Fprint(os.Stderr, "        aws credentials chain used to read s3:// snapshots\n")
		fmt.Fprint(os.Stderr, "  GOOGLE_APPLICATION_CREDENTIALS\n")
		fmt.Fprint(os.Stderr, "        google application default credentials used to read gs:// snapshots\n")
	}

	flagSnapshots := ""
	flagDemoEnabled := ""
	flagFactors := ""
	flagOutput := ""
	flagListen := ""
	flagCacheTTL := time.Duration(0)
	flagFloorArea := 0.0
	flagS3Endpoint := ""
	flagGCSEndpoint := ""
	flagLogLevel := ""
	flagLogFormat := ""

	flag.StringVar(&flagSnapshots, "snapshot", "", "comma separated snapshot documents (path, s3://bucket/key, gs://bucket/object)")
	flag.StringVar(&flagDemoEnabled, "demo.enabled", "false", "evaluate fictive demo sites")
	flag.StringVar(&flagFactors, "factors", "", "csv file replacing the bundled emission factors")
	flag.StringVar(&flagOutput, "output", "text", "report format (text, json, openmetrics)")
	flag.StringVar(&flagListen, "listen", "", "addr to serve /metrics and /reports on instead of printing reports")
	flag.DurationVar(&flagCacheTTL, "cache.ttl", 5*time.Minute, "how long snapshots and reports are kept in memory")
	flag.Float64Var(&flagFloorArea, "floor.area", 0, "floor area in m² for snapshots that do not declare one")
	flag.StringVar(&flagS3Endpoint, "s3.endpoint", "", "s3 compatible endpoint")
	flag.StringVar(&flagGCSEndpoint, "gcs.endpoint", "", "cloud storage emulator endpoint")
	flag.StringVar(&flagLogLevel, "log.level", "info", "log severity (debug, info, warn, error)")
	flag.StringVar(&flagLogFormat, "log.format", "text", "log format (text, json)")

	flag.Parse()

	initLogging(flagLogLevel, flagLogFormat)

	registry, err := loadRegistry(flagFactors)
	if err != nil {
		slog.Error("failed to load emission factors", "factors", flagFactors, "err", err)
		os.Exit(1)
	}

	memory := cache.NewMemory(ctx, flagCacheTTL)
	engine := model.NewEngine(model.WithRegistry(registry), model.WithFloorArea(flagFloorArea))

	opts, closers, err := setupCollectorOptions(map[string]string{
		"snapshot":     flagSnapshots,
		"demo.enabled": flagDemoEnabled,
		"s3.endpoint":  flagS3Endpoint,
		"gcs.endpoint": flagGCSEndpoint,
	}, memory, flagCacheTTL)
	if err != nil {
		slog.Error("invalid snapshot sources", "err", err)
		flag.PrintDefaults()
		os.Exit(1)
	}
	defer func() {
		for _, closer := range closers {
			closer.Close()
		}
	}()

	collector := constructioncarbon.NewCollector(append(opts,
		constructioncarbon.WithEvaluator(engine),
		constructioncarbon.WithReportCache(memory),
	)...)

	if flagListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", constructioncarbon.NewOpenMetricsHandler(collector))
		mux.Handle("/reports", newReportsHandler(collector))

		server := &http.Server{Addr: flagListen, Handler: mux}
		go func() {
			<-ctx.Done()
			server.Shutdown(context.Background())
		}()

		slog.Info("starting construction carbon engine", "listen", flagListen, "factors", registry.Len())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start construction carbon engine", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, collector, flagOutput, os.Stdout); err != nil {
		slog.Error("evaluation failed", "err", err)
		os.Exit(1)
	}
}

func initLogging(logLevel string, logFormat string) {
	switch logFormat {
	case "text":
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:   slogLevel(logLevel),
			NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
		})))
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slogLevel(logLevel),
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				switch a.Key {
				case slog.LevelKey:
					a.Key = "severity"
					return a
				case slog.MessageKey:
					a.Key = "message"
					return a
				default:
					return a
				}
			},
		})))
	}
}

func loadRegistry(path string) (*factors.Registry, error) {
	if path == "" {
		return factors.Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tables, err := factors.ParseCSV(f)
	if err != nil {
		return nil, err
	}

	return factors.New(tables...)
}

func setupCollectorOptions(params map[string]string, memory *cache.Memory, ttl time.Duration) ([]constructioncarbon.CollectorOptions, []io.Closer, error) {
	opts := make([]constructioncarbon.CollectorOptions, 0)
	closers := make([]io.Closer, 0)

	if params["demo.enabled"] == "true" {
		demoSource := demo.NewSource()
		opts = append(opts, constructioncarbon.WithSource(demoSource))
		closers = append(closers, demoSource)
	}

	if params["snapshot"] != "" {
		locations := make([]string, 0)
		for _, location := range strings.Split(params["snapshot"], ",") {
			if location = strings.TrimSpace(location); location != "" {
				locations = append(locations, location)
			}
		}

		snapshotSource, err := source.New(locations,
			source.WithS3Config(source.S3Config{Endpoint: params["s3.endpoint"]}),
			source.WithGCSEndpoint(params["gcs.endpoint"]),
			source.WithCache(memory, ttl),
		)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, constructioncarbon.WithSource(snapshotSource))
		closers = append(closers, snapshotSource)
	}

	if len(opts) == 0 {
		return nil, nil, fmt.Errorf("no snapshot source: set -snapshot or -demo.enabled")
	}

	return opts, closers, nil
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}
