package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/gatherhall/address-engine/pkg/address"
)

// writeResolved renders a resolution result in the requested format. The
// text form is for terminals; json and yaml feed scripts and the console's
// import tooling.
func writeResolved(w io.Writer, format string, res address.Resolved) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(res), "encode result")

	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close() //nolint:errcheck
		return eris.Wrap(enc.Encode(resolvedYAML(res)), "encode result")

	case "text":
		if res.IsZero() {
			_, err := fmt.Fprintln(w, "No address found")
			return err
		}
		fmt.Fprintf(w, "Street:      %s\n", orDash(res.StreetAddress))
		fmt.Fprintf(w, "City:        %s\n", orDash(res.City))
		fmt.Fprintf(w, "State:       %s\n", orDash(res.State))
		fmt.Fprintf(w, "Postal code: %s\n", orDash(res.PostalCode))
		if res.Location != nil {
			fmt.Fprintf(w, "Location:    %s\n", res.Location)
		}
		return nil

	default:
		return eris.Errorf("unknown output format %q (want json, yaml, or text)", format)
	}
}

// writePredictions renders an autocomplete prediction list, one numbered row
// per prediction so --select indices are visible.
func writePredictions(w io.Writer, format string, preds []address.Prediction) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(preds), "encode predictions")

	case "yaml":
		rows := make([]map[string]string, 0, len(preds))
		for _, p := range preds {
			rows = append(rows, map[string]string{
				"place_id":    p.PlaceID,
				"description": p.Description,
			})
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close() //nolint:errcheck
		return eris.Wrap(enc.Encode(rows), "encode predictions")

	case "text":
		if len(preds) == 0 {
			_, err := fmt.Fprintln(w, "No predictions")
			return err
		}
		for i, p := range preds {
			fmt.Fprintf(w, "%2d. %s\n", i+1, p.Description)
		}
		return nil

	default:
		return eris.Errorf("unknown output format %q (want json, yaml, or text)", format)
	}
}

// resolvedYAML flattens Resolved for YAML output; the struct's own tags are
// JSON-only and yaml.v3 would otherwise emit field names verbatim.
func resolvedYAML(res address.Resolved) map[string]any {
	out := map[string]any{
		"street_address": res.StreetAddress,
		"city":           res.City,
		"state":          res.State,
		"postal_code":    res.PostalCode,
	}
	if res.Location != nil {
		out["location"] = map[string]float64{
			"lat": res.Location.Lat,
			"lng": res.Location.Lng,
		}
	}
	if res.Viewport != nil {
		out["viewport"] = map[string]map[string]float64{
			"southwest": {"lat": res.Viewport.Southwest.Lat, "lng": res.Viewport.Southwest.Lng},
			"northeast": {"lat": res.Viewport.Northeast.Lat, "lng": res.Viewport.Northeast.Lng},
		}
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
