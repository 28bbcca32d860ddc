package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mrjoshuak/go-chancat/imageio"
	"github.com/mrjoshuak/go-chancat/raster"
)

const componentsFlag = "components"

func newInfoCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file> [<file> ...]",
		Short: "Print image metadata and per-component statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				img, err := imageio.Load(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, describe(img))
				if v.GetBool(componentsFlag) {
					if err := writeComponentStats(cmd.OutOrStdout(), img); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool(componentsFlag, true, "print per-component statistics")
	return cmd
}

// ComponentStats summarizes one component over every pixel of an image.
type ComponentStats struct {
	Mean, StdDev, Min, Max float64
}

// componentStats computes statistics for each component of img.
func componentStats(img *raster.Image) []ComponentStats {
	nc := img.Components()
	n := img.Extent().NumPixels()
	values := make([]float64, n)
	out := make([]ComponentStats, nc)
	for c := 0; c < nc; c++ {
		for i := 0; i < n; i++ {
			values[i] = img.Float64(i*nc + c)
		}
		mean, std := stat.MeanStdDev(values, nil)
		out[c] = ComponentStats{Mean: mean, StdDev: std, Min: floats.Min(values), Max: floats.Max(values)}
	}
	return out
}

func writeComponentStats(w io.Writer, img *raster.Image) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  component\tmean\tstddev\tmin\tmax")
	for c, s := range componentStats(img) {
		fmt.Fprintf(tw, "  %d\t%.6g\t%.6g\t%.6g\t%.6g\n", c, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return tw.Flush()
}
