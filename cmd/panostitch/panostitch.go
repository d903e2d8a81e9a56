package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/abworrall/pano-stitch/pkg/features"
	"github.com/abworrall/pano-stitch/pkg/stitch"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	verbosity int
}

func (f rootFlags) logger() golog.Logger {
	if f.verbosity > 0 {
		return golog.NewDebugLogger("panostitch")
	}
	return golog.NewDevelopmentLogger("panostitch")
}

// NewRootCmd creates the root Cobra command
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "panostitch",
		Short: "panostitch aligns two overlapping photos and stitches them into one",
		Long: `panostitch finds corners in both images, matches them, fits a homography
with RANSAC, and composites the second image onto the first one's canvas.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().IntVarP(&flags.verbosity, "verbose", "v", 0, "how verbose to get; >0 also writes debug renders")

	rootCmd.AddCommand(newStitchCmd(flags))
	rootCmd.AddCommand(newFeaturesCmd(flags))
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newStitchCmd(flags *rootFlags) *cobra.Command {
	var (
		output     string
		hdrOutput  string
		preview    string
		tonemapper string
		seed       int64
		iterations int
		threshold  float64
		window     int
	)

	cmd := &cobra.Command{
		Use:   "stitch <imageA> <imageB> [config.yaml]",
		Short: "Stitch image B onto image A",
		Long: `Loads two images (or a directory holding them), plus an optional YAML config,
and writes the panorama. Flags override the config file.`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := flags.logger()

			in := stitch.NewInputs()
			if err := in.LoadFilesAndDirs(logger, args...); err != nil {
				return err
			}
			if len(in.Layers) != 2 {
				return errors.Wrapf(stitch.ErrInvalidInput, "need exactly two images, found %d", len(in.Layers))
			}

			cfg := in.Config
			if cmd.Flags().Changed("verbose") {
				cfg.Verbosity = flags.verbosity
			}
			if cmd.Flags().Changed("output") {
				cfg.Output.Filename = output
			}
			if cmd.Flags().Changed("hdr") {
				cfg.Output.HDRFilename = hdrOutput
			}
			if cmd.Flags().Changed("preview") {
				cfg.Output.PreviewFilename = preview
			}
			if cmd.Flags().Changed("tonemapper") {
				cfg.Output.Tonemapper = tonemapper
			}
			if cmd.Flags().Changed("seed") {
				cfg.Ransac.Seed = seed
			}
			if cmd.Flags().Changed("iterations") {
				cfg.Ransac.Iterations = iterations
			}
			if cmd.Flags().Changed("threshold") {
				cfg.Ransac.InlierThreshold = threshold
			}
			if cmd.Flags().Changed("window") {
				cfg.Detect.SuppressionWindow = window
			}

			if cfg.Verbosity > 0 {
				str, err := cfg.AsYaml()
				if err != nil {
					return err
				}
				logger.Infof("Final configuration:-\n\n%s\n", str)
			}

			s, err := stitch.NewStitcher(cfg, logger)
			if err != nil {
				return err
			}

			r, err := s.Stitch(&in.Layers[0], &in.Layers[1])
			if err != nil {
				return err
			}
			return s.WriteOutputs(r)
		},
	}

	d := stitch.NewConfig()
	cmd.Flags().StringVarP(&output, "output", "o", d.Output.Filename, "PNG file for the panorama")
	cmd.Flags().StringVar(&hdrOutput, "hdr", "", "also write a Radiance .hdr file")
	cmd.Flags().StringVar(&preview, "preview", "", "also write a downscaled PNG preview")
	cmd.Flags().StringVar(&tonemapper, "tonemapper", "", "also write tonemapped PNGs: all, or one of "+stitch.ListTonemappers())
	cmd.Flags().Int64Var(&seed, "seed", d.Ransac.Seed, "RANSAC random seed")
	cmd.Flags().IntVar(&iterations, "iterations", d.Ransac.Iterations, "RANSAC iterations")
	cmd.Flags().Float64Var(&threshold, "threshold", d.Ransac.InlierThreshold, "RANSAC inlier distance, in pixels")
	cmd.Flags().IntVar(&window, "window", d.Detect.SuppressionWindow, "non-maximum suppression tile size (odd)")

	return cmd
}

func newFeaturesCmd(flags *rootFlags) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "features <image>...",
		Short: "Detect keypoints and render them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := flags.logger()

			in := stitch.NewInputs()
			if err := in.LoadFilesAndDirs(logger, args...); err != nil {
				return err
			}

			s, err := stitch.NewStitcher(in.Config, logger)
			if err != nil {
				return err
			}

			for i := range in.Layers {
				l := &in.Layers[i]
				if err := s.DetectFeatures(l); err != nil {
					return err
				}
				out := filepath.Join(outDir, fmt.Sprintf("%s-keypoints.png", l.Filename()))
				if err := features.PlotKeypoints(l.Image, l.Keypoints, out); err != nil {
					return err
				}
				logger.Infof("%s: wrote %s", l, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", ".", "where to write the renders")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the default configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			str, err := stitch.NewConfig().AsYaml()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), str)
			return nil
		},
	}
}
