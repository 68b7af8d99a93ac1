package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"codsync/internal/assemble"
	"codsync/internal/config"
	"codsync/internal/hdx"
	"codsync/internal/registry"
	"codsync/internal/version"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	envPath := flag.String("env", "", "path to .env file with HDX_API_KEY (default: .env if present)")
	filterTitles := flag.Bool("filter-titles", false, "restrict the run to titles listed at registry.titles_url")
	dryRun := flag.Bool("dry-run", false, "assemble and validate without submitting")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *envPath != "" {
		if err := godotenv.Load(*envPath); err != nil {
			log.Fatalf("Failed to load env file %s: %v", *envPath, err)
		}
	} else {
		// A local .env is optional
		godotenv.Load()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	apiKey := os.Getenv("HDX_API_KEY")
	if apiKey == "" && !*dryRun {
		log.Fatal("HDX_API_KEY is required unless running with -dry-run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	if err := run(ctx, cfg, apiKey, *filterTitles, *dryRun); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}

// run executes one full sync: fetch the feed, assemble every record,
// submit the accepted ones, and report the accumulated validation
// errors. A non-empty error log makes the process exit non-zero so
// operators notice rejected records.
func run(ctx context.Context, cfg *config.Config, apiKey string, filterTitles, dryRun bool) error {
	platform := hdx.NewClient(cfg.Platform.SiteURL, apiKey,
		cfg.HTTP.TimeoutSec, cfg.HTTP.MaxRetries, cfg.HTTP.BackoffMs, cfg.HTTP.BackoffMaxMs)
	if err := platform.LoadLocations(ctx); err != nil {
		return err
	}
	if err := platform.LoadVocabulary(ctx); err != nil {
		return err
	}

	feed := registry.NewClient(cfg.HTTP.TimeoutSec, cfg.HTTP.MaxRetries, cfg.HTTP.BackoffMs, cfg.HTTP.BackoffMaxMs)

	var titles []string
	if filterTitles {
		var err error
		titles, err = feed.FetchDatasetTitles(ctx, cfg.Registry.TitlesURL)
		if err != nil {
			return err
		}
		log.Printf("Restricting run to %d titles", len(titles))
	}

	records, err := feed.FetchRecordsFiltered(ctx, cfg.Registry.FeedURL, titles)
	if err != nil {
		return err
	}
	log.Printf("Number of datasets to upload: %d", len(records))

	assembler := assemble.New(platform, platform, platform, assemble.Config{
		MaintainerID: cfg.Platform.MaintainerID,
		MandatoryTag: cfg.Tags.Mandatory,
		ExcludedTags: cfg.Tags.Excluded,
	})

	stats := NewRunStats()
	stats.SetFetched(int64(len(records)))

	for i := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		assembleStart := time.Now()
		outcome := assembler.Assemble(ctx, &records[i])
		stats.ObserveAssemble(time.Since(assembleStart), outcome.Accepted())

		if !outcome.Accepted() {
			continue
		}
		if dryRun {
			log.Printf("Dry run: would upload dataset %s", outcome.Submission.Name)
			continue
		}

		// A failed upload does not stop the run; the remaining datasets
		// are still worth submitting.
		submitStart := time.Now()
		err := platform.CreateOrUpdate(ctx, outcome.Submission, outcome.Batch)
		stats.ObserveSubmit(time.Since(submitStart), err == nil)
		if err != nil {
			log.Printf("Could not upload dataset %s: %v", outcome.Submission.Name, err)
		}
	}

	log.Printf("Run finished: %s", stats)

	if entries := assembler.Errors().Entries(); len(entries) > 0 {
		for _, entry := range entries {
			fmt.Fprintln(os.Stderr, entry)
		}
		return fmt.Errorf("%d validation errors", len(entries))
	}
	return nil
}
