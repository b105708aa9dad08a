package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tendersight/tender-cli/internal/config"
	"github.com/tendersight/tender-cli/internal/ingest"
	"github.com/tendersight/tender-cli/internal/pipeline"
	"github.com/tendersight/tender-cli/internal/ratelimit"
	"github.com/tendersight/tender-cli/internal/store"
	"github.com/tendersight/tender-cli/pkg/anthropic"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tender-cli",
	Short: "Tender document summarization pipeline",
	Long:  "Ingests tender notices (GeM, CPPP, generic portals), classifies them, and extracts a structured summary via rate-budgeted Claude calls.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens and migrates the run-history database.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// initLoader wires PDF extraction and external reference fetching per
// config.
func initLoader() (*ingest.Loader, error) {
	extractor, err := ingest.NewExtractor(cfg.Ingest)
	if err != nil {
		return nil, err
	}
	var fetcher *ingest.RefFetcher
	if cfg.Ingest.FetchExternal {
		fetcher = ingest.NewRefFetcher(extractor, fetchTimeout())
	}
	return ingest.NewLoader(extractor, fetcher), nil
}

func fetchTimeout() time.Duration {
	return time.Duration(cfg.Ingest.FetchTimeoutSecs) * time.Second
}

// initPipeline builds the summarization pipeline with its shared rate
// budget.
func initPipeline() *pipeline.Pipeline {
	budget := ratelimit.NewBudget(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.TokensPerMinute)
	aiClient := anthropic.NewClient(cfg.Anthropic.Key)
	return pipeline.New(cfg, aiClient, budget)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
