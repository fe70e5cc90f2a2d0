package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sheetload/internal/config"
	"sheetload/internal/dataset"
	"sheetload/internal/importer"
	"sheetload/internal/metrics"
	"sheetload/internal/metrics/datadog"
	"sheetload/internal/sanitize"
	"sheetload/internal/source/csv"
	"sheetload/internal/source/htmltable"
	"sheetload/internal/source/xlsx"
	"sheetload/internal/storage"

	// register all backends with the storage factory.
	_ "sheetload/internal/storage/all"
)

// main is the entry point for the sheetload binary. It decodes one input
// file, runs the import pipeline against the configured storage backend, and
// prints the run summary.
func main() {
	var (
		filePath   string
		sheet      string
		table      string
		kindFlg    string
		dsnFlg     string
		metricsFlg string
		listSheets bool
		preview    int
	)

	flag.StringVar(&filePath, "file", "", "input file (.xlsx, .csv, .html)")
	flag.StringVar(&sheet, "sheet", "", "worksheet name for xlsx input (default: first sheet)")
	flag.StringVar(&table, "table", "", "target table name (default: derived from the file name)")
	flag.StringVar(&kindFlg, "backend", "", "storage backend (overrides env STORAGE_KIND)")
	flag.StringVar(&dsnFlg, "dsn", "", "connection string (overrides env DATABASE_URL)")
	flag.StringVar(&metricsFlg, "metrics-backend", "", "metrics backend (datadog, none; overrides env METRICS_BACKEND)")
	flag.BoolVar(&listSheets, "list-sheets", false, "list the workbook's sheet names and exit")
	flag.IntVar(&preview, "preview", 0, "print up to N rows of the loaded table after import")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	if filePath == "" {
		fatalf("usage: sheetload -file data.xlsx [-sheet name] [-table name]")
	}

	// Local development reads the same variable names from a .env file.
	if err := godotenv.Load(); err != nil && *verbose {
		log.Printf("no .env loaded: %v", err)
	}

	if listSheets {
		f, err := os.Open(filePath)
		if err != nil {
			fatalf("open %s: %v", filePath, err)
		}
		defer f.Close()
		names, err := xlsx.Sheets(f)
		if err != nil {
			fatalf("%v", err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("%v", err)
	}
	if kindFlg != "" {
		cfg.StorageKind = kindFlg
	}
	if dsnFlg != "" {
		cfg.DSN = dsnFlg
	}
	if metricsFlg != "" {
		cfg.MetricsBackend = metricsFlg
	}

	switch cfg.MetricsBackend {
	case "datadog":
		// The backend buffers metrics, submits periodically, and submits one
		// final time at shutdown (Close()).
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: "sheetload",
			Tags:    datadog.ParseTagsCSV(cfg.MetricsTags),
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			if *verbose {
				log.Printf("metrics: backend=datadog tags=%v", cfg.MetricsTags)
			}
			metrics.SetBackend(b)
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}
	case "", "none":
		// metrics disabled; nop backend remains
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", cfg.MetricsBackend)
	}

	d, err := readFile(filePath, sheet)
	if err != nil {
		fatalf("%v", err)
	}

	if table == "" {
		table = sanitize.Name(strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath)))
	}
	if table == "" {
		fatalf("cannot derive a table name from %q; pass -table", filePath)
	}

	ctx := context.Background()
	repo, err := storage.New(ctx, storage.Config{Kind: cfg.StorageKind, DSN: cfg.DSN})
	if err != nil {
		fatalf("open storage: %v", err)
	}
	defer repo.Close()

	var logger importer.Logger
	if *verbose {
		logger = log.Default()
	}

	start := time.Now()
	sum, err := importer.New(repo, logger).Run(ctx, table, d)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Print(sum.String())
	if sum.Degraded() {
		fmt.Fprintf(os.Stderr, "warning: %d of %d rows were dropped\n",
			sum.Outcome.DroppedRows(), sum.Outcome.Attempted)
	}
	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}

	if preview > 0 {
		pv, err := repo.Preview(ctx, table, preview)
		if err != nil {
			fatalf("preview: %v", err)
		}
		printPreview(pv)
	}
}

// readFile decodes the input into a Dataset based on its extension.
func readFile(path, sheet string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsx.Read(f, sheet)
	case ".csv":
		return csv.Read(f)
	case ".html", ".htm":
		return htmltable.Read(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .xlsx, .csv or .html)", filepath.Ext(path))
	}
}

func printPreview(pv storage.PreviewResult) {
	fmt.Println(strings.Join(pv.Columns, "\t"))
	for _, row := range pv.Rows {
		fmt.Println(strings.Join(row, "\t"))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
