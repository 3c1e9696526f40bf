// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	applog "ddm/internal/log"
	"ddm/internal/numeric"

	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`             // Force debug logging.
	LogLevel  string          `yaml:"log_level"`         // Logging level (e.g., "debug", "info", "warn", "error").
	Verbose   bool            `yaml:"-"`                 // Set by --verbose only.
	Command   string          `yaml:"command,omitempty"` // "video" or "camera"; empty runs nothing.
	Input     string          `yaml:"input,omitempty"`   // Video file for the video command.
	Analysis  AnalysisConfig  `yaml:"analysis"`          // DDM pipeline settings.
	Capture   CaptureConfig   `yaml:"capture"`           // Camera settings.
	Output    OutputConfig    `yaml:"output"`            // Where plots go.
	Transport TransportConfig `yaml:"transport"`         // Progress publishing.
}

// AnalysisConfig holds settings for the window, the transform and the bins.
type AnalysisConfig struct {
	Capacity        int     `yaml:"capacity"`          // Window length in frames; 0 uses the rounded frame rate.
	Stride          int     `yaml:"stride"`            // New frames between passes; 0 uses capacity.
	RingWidth       int     `yaml:"ring_width"`        // Radial bin width in frequency pixels.
	FrameBuffer     int     `yaml:"frame_buffer"`      // Capacity of the worker to driver queue.
	FFTScale        float64 `yaml:"fft_scale"`         // Multiplier applied to every spectrum.
	ShiftRowDivisor int     `yaml:"shift_row_divisor"` // Centring shift of N/divisor rows.
	ShiftColDivisor int     `yaml:"shift_col_divisor"` // Centring shift of N/divisor columns.
	Window          string  `yaml:"window"`            // Window function applied before the FFT.
	Backend         string  `yaml:"backend"`           // cuda, opencl, cpu or auto.
	Workers         int     `yaml:"workers"`           // Goroutines per numeric operation; 0 uses GOMAXPROCS.
}

// CaptureConfig holds camera settings.
type CaptureConfig struct {
	CameraIndex int    `yaml:"camera_index"` // OpenCV device index.
	CameraName  string `yaml:"camera_name"`  // Stream name used for camera plots.
}

// OutputConfig holds plot persistence settings.
type OutputConfig struct {
	Dir        string  `yaml:"dir"`         // Directory receiving <name>.png and <name>_vs_tau.png.
	PlotWidth  float64 `yaml:"plot_width"`  // Inches.
	PlotHeight float64 `yaml:"plot_height"` // Inches.
	CSV        bool    `yaml:"csv"`         // Also write the plotted values as CSV.
}

// TransportConfig holds settings related to publishing pass events.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`  // Serve pass events on ws://<addr>/passes.
	WebSocketAddr    string `yaml:"websocket_addr"`     // Listen address for the WebSocket server.
	UDPEnabled       bool   `yaml:"udp_enabled"`        // Send pass packets over UDP.
	UDPTargetAddress string `yaml:"udp_target_address"` // Target address and port for UDP packets (e.g., "127.0.0.1:9090").
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Command:  DefaultCommand,
		Verbose:  DefaultVerbosity,
		Analysis: AnalysisConfig{
			Capacity:        DefaultCapacity,
			Stride:          DefaultStride,
			RingWidth:       DefaultRingWidth,
			FrameBuffer:     DefaultFrameBuffer,
			FFTScale:        DefaultFFTScale,
			ShiftRowDivisor: DefaultShiftDivisor,
			ShiftColDivisor: DefaultShiftDivisor,
			Window:          DefaultWindow,
			Backend:         DefaultBackend,
			Workers:         DefaultWorkers,
		},
		Capture: CaptureConfig{
			CameraIndex: DefaultCameraIndex,
			CameraName:  DefaultCameraName,
		},
		Output: OutputConfig{
			Dir:        DefaultOutputDir,
			PlotWidth:  DefaultPlotWidth,
			PlotHeight: DefaultPlotHeight,
		},
		Transport: TransportConfig{
			WebSocketAddr:    DefaultWebSocketAddr,
			UDPTargetAddress: DefaultUDPTarget,
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		for _, candidate := range []string{DefaultConfigCandidate} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and names. It is run after every override layer.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	a := c.Analysis
	switch {
	case a.Capacity < 0:
		return fmt.Errorf("analysis.capacity must not be negative, got %d", a.Capacity)
	case a.Stride < 0:
		return fmt.Errorf("analysis.stride must not be negative, got %d", a.Stride)
	case a.RingWidth < MinRingWidth:
		return fmt.Errorf("analysis.ring_width must be at least %d, got %d", MinRingWidth, a.RingWidth)
	case a.FrameBuffer < 0 || a.FrameBuffer > MaxFrameBuffer:
		return fmt.Errorf("analysis.frame_buffer must be within [0, %d], got %d", MaxFrameBuffer, a.FrameBuffer)
	case a.FFTScale == 0:
		return fmt.Errorf("analysis.fft_scale must not be zero")
	case a.ShiftRowDivisor < 1 || a.ShiftColDivisor < 1:
		return fmt.Errorf("analysis shift divisors must be positive, got %d and %d", a.ShiftRowDivisor, a.ShiftColDivisor)
	case a.Workers < 0:
		return fmt.Errorf("analysis.workers must not be negative, got %d", a.Workers)
	}
	if _, err := numeric.ParseWindowFunc(a.Window); err != nil {
		return fmt.Errorf("analysis.window: %w", err)
	}
	if _, err := numeric.ParseBackend(a.Backend); err != nil {
		return fmt.Errorf("analysis.backend: %w", err)
	}

	if c.Capture.CameraIndex < 0 {
		return fmt.Errorf("capture.camera_index must not be negative, got %d", c.Capture.CameraIndex)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must be set")
	}

	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddr == "" {
		return fmt.Errorf("transport.websocket_addr must be set when the WebSocket transport is enabled")
	}
	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
		}
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			return fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress)
		}
	}

	switch c.Command {
	case DefaultCommand, CommandCamera:
	case CommandVideo:
		if c.Input == "" {
			return fmt.Errorf("the video command needs an input file")
		}
	default:
		return fmt.Errorf("unknown command %q", c.Command)
	}
	return nil
}

// applyEnvOverrides layers ENV_* variables over the file configuration.
// Unparseable values are ignored.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			applog.Infof("configuration: Overriding debug from env: %v", bVal)
		}
	}

	// ENV_DDM_{...}
	// These are specific to the analysis.

	// ENV_DDM_CAPACITY
	if val, ok := os.LookupEnv("ENV_DDM_CAPACITY"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Analysis.Capacity = iVal
			applog.Infof("configuration: Overriding analysis.capacity from env: %d", iVal)
		}
	}
	// ENV_DDM_RING_WIDTH
	if val, ok := os.LookupEnv("ENV_DDM_RING_WIDTH"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Analysis.RingWidth = iVal
			applog.Infof("configuration: Overriding analysis.ring_width from env: %d", iVal)
		}
	}
	// ENV_DDM_OUTPUT_DIR
	if val, ok := os.LookupEnv("ENV_DDM_OUTPUT_DIR"); ok {
		cfg.Output.Dir = val
		applog.Infof("configuration: Overriding output.dir from env: %s", val)
	}

	// ENV_WS_{...} and ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WebSocketEnabled = bVal
			applog.Infof("configuration: Overriding transport.websocket_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
			applog.Infof("configuration: Overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
		applog.Infof("configuration: Overriding transport.udp_target_address from env: %s", val)
	}
}
