package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gatherhall/address-engine/pkg/address"
)

var (
	resolveList   bool
	resolveSelect int
	resolveOutput string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <query>",
	Short: "Resolve a free-text address query",
	Long:  "Fetches autocomplete predictions for the query and resolves one of them into a canonical address record. Use --list to inspect the predictions, --select to pick one by its listed number.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		query := args[0]

		if err := cfg.Validate("resolve"); err != nil {
			return err
		}

		provider, cleanup, err := buildProvider(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		predictions, err := provider.PlacePredictions(ctx, query)
		if err != nil {
			return eris.Wrap(err, "fetch predictions")
		}
		if len(predictions) == 0 {
			return writePredictions(os.Stdout, resolveOutput, nil)
		}

		if resolveList {
			return writePredictions(os.Stdout, resolveOutput, predictions)
		}

		if resolveSelect < 1 || resolveSelect > len(predictions) {
			return eris.Errorf("--select %d out of range: query returned %d predictions", resolveSelect, len(predictions))
		}
		picked := predictions[resolveSelect-1]

		zap.L().Debug("resolving selection",
			zap.String("place_id", picked.PlaceID),
			zap.String("description", picked.Description),
		)

		resolved, err := address.NewResolver(provider).ResolveFromSelection(ctx, picked)
		if err != nil {
			return eris.Wrap(err, "resolve selection")
		}
		return writeResolved(os.Stdout, resolveOutput, resolved)
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveList, "list", false, "list predictions instead of resolving")
	resolveCmd.Flags().IntVar(&resolveSelect, "select", 1, "prediction number to resolve (1-based)")
	resolveCmd.Flags().StringVar(&resolveOutput, "output", "text", "output format: json, yaml, or text")
	rootCmd.AddCommand(resolveCmd)
}
