package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mrjoshuak/go-chancat/concat"
	"github.com/mrjoshuak/go-chancat/imageio"
	"github.com/mrjoshuak/go-chancat/internal/logger"
	"github.com/mrjoshuak/go-chancat/metrics"
	"github.com/mrjoshuak/go-chancat/pipeline"
	"github.com/mrjoshuak/go-chancat/raster"
)

const (
	outputFlag      = "output"
	workersFlag     = "workers"
	tilesFlag       = "tiles"
	compressionFlag = "compression"
	levelFlag       = "level"
	strictFlag      = "strict"
	statsFlag       = "stats"

	emptyInput = "_"
)

var errInputsFailed = errors.New("one or more inputs were not copied")

func newConcatCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "concat -o <outfile> <infile> [<infile> ...]",
		Short: "Concatenate the components of the input images",
		Long: `Concatenate the components of the input images into one output image.

Inputs must share extent and element type. Output components appear in input
order; "_" leaves a connection empty. Inputs whose element type differs from
the first input's are reported and left out, and the output keeps zeros in
their component range.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConcat(cmd, v, args)
		},
	}

	flags := cmd.Flags()
	flags.StringP(outputFlag, "o", "", "output file (.rst, .png or .j2k)")
	flags.Int(workersFlag, 0, "number of worker goroutines (0 = all CPUs)")
	flags.Int(tilesFlag, 0, "number of tiles the output is split into (0 = one per worker)")
	flags.String(compressionFlag, "zlib", "raster file compression: none or zlib")
	flags.Int(levelFlag, -1, "zlib compression level (-2 to 9)")
	flags.Bool(strictFlag, false, "exit with an error when any input could not be copied")
	flags.Bool(statsFlag, false, "log pipeline metrics when done")

	return cmd
}

func runConcat(cmd *cobra.Command, v *viper.Viper, args []string) error {
	log, err := newLogger(v)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	output := v.GetString(outputFlag)
	if output == "" {
		return fmt.Errorf("missing output file (-o)")
	}
	opts, err := encodeOptions(v)
	if err != nil {
		return err
	}

	f := concat.New()
	for i, name := range args {
		if name == emptyInput {
			f.SetInput(i, nil)
			continue
		}
		img, err := imageio.Load(name)
		if err != nil {
			return err
		}
		log.Info("loaded input",
			zap.Int("input", i),
			zap.String("file", name),
			zap.Stringer("type", img.Type()),
			zap.Int("components", img.Components()),
			zap.Stringer("extent", img.Extent()))
		f.SetInput(i, img)
	}

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return err
	}

	p := pipeline.New(
		pipeline.WithConfig(pipeline.Config{
			Workers: v.GetInt(workersFlag),
			Tiles:   v.GetInt(tilesFlag),
		}),
		pipeline.WithLogger(log),
		pipeline.WithProgress(collector),
		pipeline.WithReporter(pipeline.MultiReporter(pipeline.NewLogReporter(log), collector)),
	)

	start := time.Now()
	res, err := p.Update(cmd.Context(), f)
	if err != nil {
		return err
	}
	collector.ObserveCycle(time.Since(start))

	if err := imageio.Save(output, res.Output, opts); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s from %d input(s)\n", output, describe(res.Output), len(res.Plan.Inputs))

	if v.GetBool(statsFlag) {
		if err := logMetrics(log, reg); err != nil {
			return err
		}
	}

	if !res.OK() {
		for _, e := range res.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", e)
		}
		if v.GetBool(strictFlag) {
			return errInputsFailed
		}
	}
	return nil
}

func encodeOptions(v *viper.Viper) (imageio.EncodeOptions, error) {
	opts := imageio.EncodeOptions{Level: v.GetInt(levelFlag)}
	switch c := v.GetString(compressionFlag); c {
	case "zlib":
		opts.Compression = imageio.CompressionZlib
	case "none":
		opts.Compression = imageio.CompressionNone
	default:
		return opts, fmt.Errorf("unknown compression: %s", c)
	}
	return opts, nil
}

// logMetrics writes every gathered sample to log at info level.
func logMetrics(log logger.Logger, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				fields = append(fields,
					zap.Uint64("count", m.GetHistogram().GetSampleCount()),
					zap.Float64("sum", m.GetHistogram().GetSampleSum()))
			}
			log.Info("metric", fields...)
		}
	}
	return nil
}

func describe(img *raster.Image) string {
	m := img.Metadata()
	return fmt.Sprintf("%s x%d over %s", m.Type, m.Components, m.Extent)
}
