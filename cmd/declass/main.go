// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"iter"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/declass"
	"github.com/poiesic/declass/catalog"
	"github.com/poiesic/declass/config"
	"github.com/poiesic/declass/core"
	"github.com/poiesic/declass/objectstore"
	"github.com/poiesic/declass/pipeline"
	"github.com/poiesic/declass/rag"
)

const previewCount = 5

func main() {
	app := &cli.App{
		Name:  "declass",
		Usage: "Mirror declassified archive documents and ask questions about them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to YAML settings file",
				Required: true,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "scrape",
				Usage:  "List the catalog and write catalog files",
				Action: scrapeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out-dir",
						Usage: "Directory for catalog files",
						Value: ".",
					},
					&cli.StringFlag{
						Name:  "formats",
						Usage: "Comma-separated catalog formats (csv, json, txt)",
						Value: "csv,json,txt",
					},
				},
			},
			{
				Name:   "mirror",
				Usage:  "Download every catalog document and upload it to object storage",
				Action: mirrorCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "Mirror from a stored catalog file instead of a fresh listing",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent download+upload workers",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "outcomes",
						Usage: "Path for the catalog-with-outcomes CSV (default: timestamped name)",
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Write an HTML page linking every mirrored object",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Path for the HTML index page",
						Value: "index.html",
					},
					&cli.StringFlag{
						Name:  "base-url",
						Usage: "Public URL prefix for object links (default: the bucket's public URL)",
					},
					&cli.StringFlag{
						Name:  "dataset",
						Usage: "URL of a processed dataset to link at the top of the page",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from the indexed documents",
				Action:    askCommand,
				ArgsUsage: "\"question\"",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "How many index elements to retrieve",
						Value: 8,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func scrapeCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	archive, err := declass.Open(cfg)
	if err != nil {
		return err
	}
	defer archive.Close()

	records, errs := archive.Lister().ListAll(context.Background())
	for _, listErr := range errs {
		slog.Warn("catalog page failed", "err", listErr)
	}

	for i, record := range records {
		if i >= previewCount {
			break
		}
		fmt.Printf("%s  %s  %s\n", record.Identifier, record.ReleaseDate, record.URL)
	}
	if len(records) > previewCount {
		fmt.Printf("... and %d more\n", len(records)-previewCount)
	}

	now := time.Now()
	outDir := c.String("out-dir")
	for _, format := range strings.Split(c.String("formats"), ",") {
		format = strings.TrimSpace(format)
		if format == "" {
			continue
		}
		name, err := writeCatalog(outDir, format, records, now)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", name)
	}

	fmt.Printf("listed %d records, %d failed pages\n", len(records), len(errs))
	return nil
}

// writeCatalog writes one catalog file and returns its path.
func writeCatalog(dir, format string, records []core.Record, now time.Time) (string, error) {
	name := filepath.Join(dir, catalog.TimestampedName("mlk_records", format, now))
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	switch format {
	case "csv":
		err = catalog.WriteCSV(f, records)
	case "json":
		err = catalog.WriteJSON(f, records)
	case "txt":
		err = catalog.WriteURLList(f, records)
	default:
		return "", fmt.Errorf("unsupported catalog format %q", format)
	}
	if err != nil {
		return "", err
	}
	return name, f.Close()
}

func mirrorCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	archive, err := declass.OpenMirror(ctx, cfg)
	if err != nil {
		return err
	}
	defer archive.Close()

	var records iter.Seq2[core.Record, error]
	if path := c.String("catalog"); path != "" {
		loaded, err := readCatalogFile(path)
		if err != nil {
			return err
		}
		records = func(yield func(core.Record, error) bool) {
			for _, r := range loaded {
				if !yield(r, nil) {
					return
				}
			}
		}
	} else {
		records = archive.Lister().Records(ctx)
	}

	p, err := archive.NewPipeline(pipeline.WithWorkers(c.Int("workers")))
	if err != nil {
		return err
	}
	defer p.Release()

	summary, err := p.Run(ctx, records)
	if err != nil {
		return err
	}

	path := c.String("outcomes")
	if path == "" {
		path = catalog.TimestampedName("mlk_outcomes", "csv", time.Now())
	}
	if err := writeOutcomes(ctx, archive, path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)

	fmt.Printf("listed %d  uploaded %d  skipped %d  failed %d  bytes %d\n",
		summary.Listed, summary.Uploaded, summary.Skipped, summary.Failed, summary.Bytes)
	return nil
}

func readCatalogFile(path string) ([]core.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return catalog.ReadFile(f, path)
}

func writeOutcomes(ctx context.Context, archive *declass.Archive, path string) error {
	entries, err := archive.Ledger().Entries(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := catalog.WriteOutcomes(f, entries); err != nil {
		return err
	}
	return f.Close()
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	archive, err := declass.OpenMirror(ctx, cfg)
	if err != nil {
		return err
	}
	defer archive.Close()

	keys, err := archive.Store().List(ctx, cfg.ObjectStore.Prefix)
	if err != nil {
		return err
	}

	baseURL := c.String("base-url")
	if baseURL == "" {
		baseURL = publicBaseURL(cfg.ObjectStore)
	}

	out := c.String("out")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	page := objectstore.IndexPage{
		BaseURL:    baseURL,
		DatasetURL: c.String("dataset"),
	}
	if err := objectstore.WriteHTMLIndex(f, page, keys); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("wrote %s linking %d objects\n", out, len(keys))
	return nil
}

// publicBaseURL guesses where mirrored objects are served from when the
// settings file and flags do not say.
func publicBaseURL(cfg config.ObjectStoreConfig) string {
	if cfg.Backend == "minio" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	retrieval, err := declass.NewRetrieval(cfg, rag.WithTopK(c.Int("top-k")))
	if err != nil {
		return err
	}
	defer retrieval.Close()

	answer, err := retrieval.Ask(context.Background(), question)
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if len(answer.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, cite := range answer.Citations {
			fmt.Printf("  %s  %s\n", cite.Filename, cite.SourceURL)
		}
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
