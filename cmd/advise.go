package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/assessment-advisor/internal/rules"
)

var (
	advisePayload string
	adviseOffline bool
)

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Run the full advice pipeline on a saved assessment and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("advise"); err != nil {
			return err
		}
		return runAdvise(cmd.Context(), cmd.OutOrStdout(), advisePayload, adviseOffline)
	},
}

func runAdvise(ctx context.Context, w io.Writer, payloadPath string, offline bool) error {
	a, err := readPayload(payloadPath)
	if err != nil {
		return err
	}
	tbl, err := rules.LoadFile(ctx, cfg.Rules.Path)
	if err != nil {
		return eris.Wrap(err, "load rules")
	}

	env, err := initEnv(ctx, initCompleter(offline))
	if err != nil {
		return err
	}
	defer env.Close()

	report, err := env.Pipeline.Run(ctx, a, tbl)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, report)
	return eris.Wrap(err, "write report")
}

func init() {
	adviseCmd.Flags().StringVar(&advisePayload, "payload", "", "path to a saved request or assessment JSON file")
	adviseCmd.Flags().BoolVar(&adviseOffline, "offline", false, "skip the generation service and echo baseline advice")
	_ = adviseCmd.MarkFlagRequired("payload")
	rootCmd.AddCommand(adviseCmd)
}
