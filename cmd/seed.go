package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/assessment-advisor/internal/model"
	"github.com/sells-group/assessment-advisor/internal/store"
	"github.com/sells-group/assessment-advisor/internal/tips"
)

var (
	seedFiles      []string
	seedSkipRows   int
	seedStartIndex int
	seedTruncate   bool
	seedDryRun     bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load baseline advice from tips sheets into the advice store",
	Long:  "Reads one or more tips sheets (CSV or XLSX) in order, numbering questions continuously across files, and inserts one advice document per non-empty cell.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		opts := tips.Options{SkipRows: seedSkipRows, StartIndex: seedStartIndex}

		docs, err := readTips(ctx, seedFiles, opts)
		if err != nil {
			return err
		}
		if seedDryRun {
			return writeJSONL(cmd.OutOrStdout(), docs)
		}

		if err := cfg.Validate("seed"); err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := seedStore(ctx, st, docs, seedTruncate)
		if err != nil {
			return err
		}
		zap.L().Info("seed complete", zap.Int64("inserted", n), zap.Int("files", len(seedFiles)))
		return nil
	},
}

// readTips parses each file in order, continuing question numbering from
// the previous file.
func readTips(ctx context.Context, files []string, opts tips.Options) ([]model.AdviceDoc, error) {
	var docs []model.AdviceDoc
	for _, f := range files {
		res, err := tips.ReadFile(ctx, f, opts)
		if err != nil {
			return nil, err
		}
		zap.L().Info("parsed tips sheet",
			zap.String("file", f),
			zap.Int("questions", res.Questions),
			zap.Int("docs", len(res.Docs)),
		)
		docs = append(docs, res.Docs...)
		opts.StartIndex = res.NextIndex(opts)
	}
	return docs, nil
}

func seedStore(ctx context.Context, st store.AdviceStore, docs []model.AdviceDoc, truncate bool) (int64, error) {
	if err := st.Migrate(ctx); err != nil {
		return 0, eris.Wrap(err, "migrate store")
	}
	if truncate {
		return st.Replace(ctx, docs)
	}
	return st.Insert(ctx, docs)
}

func writeJSONL(w io.Writer, docs []model.AdviceDoc) error {
	enc := json.NewEncoder(w)
	for _, d := range docs {
		if err := enc.Encode(d); err != nil {
			return eris.Wrap(err, "write jsonl")
		}
	}
	return nil
}

func init() {
	seedCmd.Flags().StringSliceVar(&seedFiles, "file", nil, "tips sheet (.csv or .xlsx); repeat for multiple sheets")
	seedCmd.Flags().IntVar(&seedSkipRows, "skip-rows", 1, "rows to drop before the header row")
	seedCmd.Flags().IntVar(&seedStartIndex, "start-index", 0, "question number of the first data row")
	seedCmd.Flags().BoolVar(&seedTruncate, "truncate", false, "remove existing advice before inserting")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "print documents as JSON lines instead of inserting")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}
