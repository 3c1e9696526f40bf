// SPDX-License-Identifier: MIT
package cmd

import (
	"ddm/internal/config"
	"ddm/pkg/build"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagValues holds command line values until the configuration file has
// been loaded; only flags the user set are layered on top of it.
type flagValues struct {
	configPath  string
	capacity    int
	stride      int
	ringWidth   int
	frameBuffer int
	outputDir   string
	backend     string
	window      string
	cameraIndex int
	csv         bool
	verbose     bool
}

// ParseArgs builds the configuration from config.yaml, ENV_* variables and
// args, in increasing precedence. It returns nil and no error when cobra
// handled the invocation itself, e.g. --help or --version. An invocation
// that names no runnable analysis yields a config with an empty Command.
func ParseArgs(args []string) (*config.Config, error) {
	buildInfo := build.GetBuildFlags()
	var (
		flags   flagValues
		options *config.Config
	)

	load := func(cmd *cobra.Command, command, input string) error {
		cfg, err := config.LoadConfig(flags.configPath)
		if err != nil {
			return err
		}
		flags.apply(cmd.Flags(), cfg)
		cfg.Command = command
		cfg.Input = input
		if err := cfg.Validate(); err != nil {
			return err
		}
		options = cfg
		return nil
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.String(),
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd, config.DefaultCommand, "")
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Video file analysis
	videoCmd := &cobra.Command{
		Use:   "video <path>",
		Short: "Analyse a recorded video file",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return load(cmd, config.DefaultCommand, "")
			}
			return load(cmd, config.CommandVideo, args[0])
		},
	}
	rootCmd.AddCommand(videoCmd)

	// Live camera analysis
	cameraCmd := &cobra.Command{
		Use:   "camera",
		Short: "Analyse a live camera until interrupted",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return load(cmd, config.DefaultCommand, "")
			}
			return load(cmd, config.CommandCamera, "")
		},
	}
	rootCmd.AddCommand(cameraCmd)

	// Configuration
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "C", "",
		"Path to a YAML configuration file (default: ./config.yaml when present)")

	// Analysis
	rootCmd.PersistentFlags().IntVarP(&flags.capacity, "capacity", "n", config.DefaultCapacity,
		"Sliding window length in frames (0 = rounded frame rate)")
	rootCmd.PersistentFlags().IntVarP(&flags.stride, "stride", "s", config.DefaultStride,
		"New frames between accumulation passes (0 = capacity)")
	rootCmd.PersistentFlags().IntVarP(&flags.ringWidth, "ring-width", "w", config.DefaultRingWidth,
		"Radial bin width in frequency pixels")
	rootCmd.PersistentFlags().IntVar(&flags.frameBuffer, "frame-buffer", config.DefaultFrameBuffer,
		"Transformed frames queued between capture and accumulation")
	rootCmd.PersistentFlags().StringVar(&flags.window, "window", config.DefaultWindow,
		"Window function applied before the FFT (none, hann, hamming, blackman, ...)")
	rootCmd.PersistentFlags().StringVarP(&flags.backend, "backend", "b", config.DefaultBackend,
		"Numeric backend: auto, cuda, opencl or cpu")

	// Capture
	rootCmd.PersistentFlags().IntVarP(&flags.cameraIndex, "camera-index", "i", config.DefaultCameraIndex,
		"Camera device index for the camera command")

	// Output
	rootCmd.PersistentFlags().StringVarP(&flags.outputDir, "output-dir", "o", config.DefaultOutputDir,
		"Directory receiving the plots")
	rootCmd.PersistentFlags().BoolVar(&flags.csv, "csv", false,
		"Also write plotted values as CSV")

	// Debug Configuration
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", config.DefaultVerbosity,
		"Show verbose output")

	// Execute the CLI
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}

// apply copies every flag the user set into cfg.
func (f *flagValues) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("capacity") {
		cfg.Analysis.Capacity = f.capacity
	}
	if fs.Changed("stride") {
		cfg.Analysis.Stride = f.stride
	}
	if fs.Changed("ring-width") {
		cfg.Analysis.RingWidth = f.ringWidth
	}
	if fs.Changed("frame-buffer") {
		cfg.Analysis.FrameBuffer = f.frameBuffer
	}
	if fs.Changed("window") {
		cfg.Analysis.Window = f.window
	}
	if fs.Changed("backend") {
		cfg.Analysis.Backend = f.backend
	}
	if fs.Changed("camera-index") {
		cfg.Capture.CameraIndex = f.cameraIndex
	}
	if fs.Changed("output-dir") {
		cfg.Output.Dir = f.outputDir
	}
	if fs.Changed("csv") {
		cfg.Output.CSV = f.csv
	}
	cfg.Verbose = f.verbose
}
