// SPDX-License-Identifier: MIT
package config

// Defaults and limits for the analysis. Values can be overridden by
// config.yaml, ENV_* variables and command line flags, in that order.
const (
	DefaultLogLevel        = "info"
	DefaultCapacity        = 0      // Derive the window from the frame rate
	DefaultStride          = 0      // One pass per window of new frames
	DefaultRingWidth       = 20     // Frequency pixels per radial bin
	DefaultFrameBuffer     = 16     // Spectra queued between worker and driver
	DefaultFFTScale        = 1.0    // Spectra are not rescaled
	DefaultShiftDivisor    = 2      // Symmetric centring shift
	DefaultWindow          = "none" // No apodisation before the FFT
	DefaultBackend         = "auto" // Best available numeric backend
	DefaultWorkers         = 0      // GOMAXPROCS
	DefaultCameraIndex     = 0
	DefaultCameraName      = "camera"
	DefaultOutputDir       = "."
	DefaultPlotWidth       = 14.0 // Inches
	DefaultPlotHeight      = 6.0  // Inches
	DefaultWebSocketAddr   = "127.0.0.1:8765"
	DefaultUDPTarget       = "127.0.0.1:9090"
	DefaultVerbosity       = false
	DefaultCommand         = ""
	MaxFrameBuffer         = 4096
	MinRingWidth           = 1
	CommandVideo           = "video"
	CommandCamera          = "camera"
	DefaultConfigCandidate = "config.yaml"
)
