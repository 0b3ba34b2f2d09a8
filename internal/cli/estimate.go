// Package cli implements the impactctl command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/meteor-impact-service/internal/domain"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type estimateOutput struct {
	RadiusKm          float64         `json:"radius_km" yaml:"radius_km"`
	VelocityKmPerS    float64         `json:"velocity_km_per_s" yaml:"velocity_km_per_s"`
	DensityKgPerM3    float64         `json:"density_kg_per_m3" yaml:"density_kg_per_m3"`
	EnergyMegatonsTNT float64         `json:"energy_megatons_tnt" yaml:"energy_megatons_tnt"`
	AffectedRadiusKm  float64         `json:"affected_radius_km" yaml:"affected_radius_km"`
	Severity          domain.Severity `json:"severity" yaml:"severity"`
}

// NewRootCommand builds the impactctl command writing results to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "impactctl",
		Short:         "meteor impact estimation tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newEstimateCommand())
	return root
}

func newEstimateCommand() *cobra.Command {
	var (
		req    domain.ImpactRequest
		format string
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "estimate impact energy, affected radius and severity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			est, err := domain.Estimate(req)
			if err != nil {
				return err
			}
			r := est.Rounded()
			return render(cmd.OutOrStdout(), format, estimateOutput{
				RadiusKm:          req.RadiusKm,
				VelocityKmPerS:    req.VelocityKmPerS,
				DensityKgPerM3:    req.DensityKgPerM3,
				EnergyMegatonsTNT: r.EnergyMegatonsTNT,
				AffectedRadiusKm:  r.AffectedRadiusKm,
				Severity:          r.Severity,
			})
		},
	}

	cmd.Flags().Float64Var(&req.RadiusKm, "radius", 0, "impactor radius in km")
	cmd.Flags().Float64Var(&req.VelocityKmPerS, "velocity", 0, "impact velocity in km/s")
	cmd.Flags().Float64Var(&req.DensityKgPerM3, "density", domain.DefaultDensityKgPerM3, "impactor density in kg/m³")
	cmd.Flags().StringVarP(&format, "output", "o", formatText, "output format: text, json or yaml")
	_ = cmd.MarkFlagRequired("radius")
	_ = cmd.MarkFlagRequired("velocity")

	return cmd
}

func render(w io.Writer, format string, v estimateOutput) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	case formatText:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "energy\t%.2f Mt TNT\n", v.EnergyMegatonsTNT)
		fmt.Fprintf(tw, "affected radius\t%.2f km\n", v.AffectedRadiusKm)
		fmt.Fprintf(tw, "severity\t%s\n", v.Severity)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
