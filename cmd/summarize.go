package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tendersight/tender-cli/internal/model"
)

var (
	summarizeOut    string
	summarizeNoSave bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file> [file...]",
	Short: "Summarize one tender's documents into structured JSON",
	Long:  "Loads the given tender files (PDF or text), classifies the portal, extracts a structured summary, and prints the result envelope as JSON.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("summarize"); err != nil {
			return err
		}

		loader, err := initLoader()
		if err != nil {
			return err
		}
		docs, err := loader.Load(ctx, args)
		if err != nil {
			return err
		}

		env, err := initPipeline().Run(ctx, docs)
		if err != nil {
			return err
		}

		if !summarizeNoSave {
			if err := saveRun(cmd, env.Metadata, env.ToMap()); err != nil {
				// History is a convenience; losing it must not fail the run.
				zap.L().Warn("summarize: failed to save run", zap.Error(err))
			}
		}

		out := os.Stdout
		if summarizeOut != "" {
			f, err := os.Create(summarizeOut)
			if err != nil {
				return eris.Wrapf(err, "summarize: create %s", summarizeOut)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(env.ToMap()), "summarize: encode result")
	},
}

func saveRun(cmd *cobra.Command, meta model.RunMetadata, envelope map[string]any) error {
	ctx := cmd.Context()
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	run, err := st.SaveRun(ctx, meta, envelope)
	if err != nil {
		return err
	}
	zap.L().Info("summarize: run saved", zap.String("run_id", run.ID))
	return nil
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeOut, "out", "o", "", "write the result JSON to a file instead of stdout")
	summarizeCmd.Flags().BoolVar(&summarizeNoSave, "no-save", false, "skip recording the run in history")
	rootCmd.AddCommand(summarizeCmd)
}
