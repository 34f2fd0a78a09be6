package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/assessment-advisor/internal/model"
	"github.com/sells-group/assessment-advisor/internal/pipeline"
	"github.com/sells-group/assessment-advisor/internal/profile"
	"github.com/sells-group/assessment-advisor/internal/rules"
)

var scorePayload string

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a saved assessment without generating advice",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("score"); err != nil {
			return err
		}
		return runScore(cmd.Context(), cmd.OutOrStdout(), scorePayload, cfg.Rules.Path)
	},
}

type scoreOutput struct {
	Profile   model.BusinessProfile  `json:"profile"`
	Questions []model.ScoredQuestion `json:"questions"`
}

func runScore(ctx context.Context, w io.Writer, payloadPath, rulesPath string) error {
	a, err := readPayload(payloadPath)
	if err != nil {
		return err
	}
	tbl, err := rules.LoadFile(ctx, rulesPath)
	if err != nil {
		return eris.Wrap(err, "load rules")
	}

	out := scoreOutput{
		Profile:   profile.Extract(a.ServiceOffering),
		Questions: pipeline.Prepare(a, tbl),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(out), "write scores")
}

func init() {
	scoreCmd.Flags().StringVar(&scorePayload, "payload", "", "path to a saved request or assessment JSON file")
	_ = scoreCmd.MarkFlagRequired("payload")
	rootCmd.AddCommand(scoreCmd)
}
