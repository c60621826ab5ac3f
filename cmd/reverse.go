package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gatherhall/address-engine/pkg/address"
)

var (
	reverseLat    float64
	reverseLng    float64
	reverseOutput string
)

var reverseCmd = &cobra.Command{
	Use:   "reverse",
	Short: "Resolve an address from coordinates",
	Long:  "Reverse-geocodes a latitude/longitude pair into a canonical address record. The record keeps the input coordinates; the provider only supplies the address text.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("resolve"); err != nil {
			return err
		}

		provider, cleanup, err := buildProvider(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		resolved, err := address.NewResolver(provider).ResolveFromCoordinates(ctx, address.LatLng{
			Lat: reverseLat,
			Lng: reverseLng,
		})
		if err != nil {
			return eris.Wrap(err, "resolve coordinates")
		}
		return writeResolved(os.Stdout, reverseOutput, resolved)
	},
}

func init() {
	reverseCmd.Flags().Float64Var(&reverseLat, "lat", 0, "latitude (required)")
	reverseCmd.Flags().Float64Var(&reverseLng, "lng", 0, "longitude (required)")
	reverseCmd.Flags().StringVar(&reverseOutput, "output", "text", "output format: json, yaml, or text")
	_ = reverseCmd.MarkFlagRequired("lat")
	_ = reverseCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(reverseCmd)
}
