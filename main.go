// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"ddm/cmd"
	"ddm/internal/capture"
	"ddm/internal/capture/cv"
	"ddm/internal/config"
	"ddm/internal/ddm"
	applog "ddm/internal/log"
	"ddm/internal/numeric"
	"ddm/internal/plot"
	"ddm/internal/transport"
	"ddm/internal/transport/udp"
	"ddm/pkg/build"
)

// main is the entry point for the DDM analyser.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse configuration, environment and command line arguments
//   - Resolve the numeric backend
//   - Open the frame source, plot output and progress transports
//
// 2. Concurrent Phase (Hot Path):
//   - Capture worker transforms frames
//   - Driver accumulates sliding windows until the stream ends or a
//     termination signal arrives
//
// 3. Shutdown Phase (Cold Path):
//   - Save plots when at least one pass completed
//   - Join the worker and release the source and transports
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if !build.InitializeOrDevelopment() {
		applog.Debugf("Build: no ldflags, using development build information")
	}

	cfg, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if cfg == nil {
		// Help or version output only.
		return
	}

	if err := applog.Configure(cfg.LogLevel, cfg.Verbose || cfg.Debug); err != nil {
		applog.Warnf("%v", err)
	}

	if cfg.Command == config.DefaultCommand {
		fmt.Println("No arguments supplied!")
		return
	}

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	if err := run(ctx, cfg); err != nil {
		stop()
		applog.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	preferred, err := numeric.ParseBackend(cfg.Analysis.Backend)
	if err != nil {
		return err
	}
	backend := numeric.SelectBackend(preferred, numeric.Available())
	if preferred != numeric.Auto && backend != preferred {
		applog.Warnf("Backend %s unavailable, falling back to %s", preferred, backend)
	}
	rt, err := numeric.NewRuntime(backend, cfg.Analysis.Workers)
	if err != nil {
		return err
	}
	applog.Infof("Numeric backend: %s (%d workers)", rt.Backend(), rt.Workers())

	window, err := numeric.ParseWindowFunc(cfg.Analysis.Window)
	if err != nil {
		return err
	}

	saver, err := plot.NewPlotSaver(cfg.Output.Dir, cfg.Output.PlotWidth, cfg.Output.PlotHeight, cfg.Output.CSV)
	if err != nil {
		return err
	}

	tr, err := newTransport(cfg.Transport)
	if err != nil {
		return err
	}

	source, name, err := openSource(cfg)
	if err != nil {
		tr.Close()
		return err
	}

	opts := ddm.Options{
		Name:            name,
		Capacity:        cfg.Analysis.Capacity,
		Stride:          cfg.Analysis.Stride,
		RingWidth:       cfg.Analysis.RingWidth,
		FrameBuffer:     cfg.Analysis.FrameBuffer,
		FFTScale:        cfg.Analysis.FFTScale,
		ShiftRowDivisor: cfg.Analysis.ShiftRowDivisor,
		ShiftColDivisor: cfg.Analysis.ShiftColDivisor,
		Window:          window,
	}
	pipeline, err := ddm.New(source, rt, saver, tr, opts)
	if err != nil {
		source.Close()
		tr.Close()
		return err
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================
	// Run returns only after the worker is joined and everything is closed.

	res, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("analysis of %s: %w", name, err)
	}
	if res.Passes > 0 {
		applog.Infof("Plots written to %s", cfg.Output.Dir)
	}
	return nil
}

// openSource returns the configured source and the stream name used for
// its plots: the file name without extension, or the camera name.
func openSource(cfg *config.Config) (capture.Source, string, error) {
	switch cfg.Command {
	case config.CommandVideo:
		src, err := cv.OpenVideo(cfg.Input)
		if err != nil {
			return nil, "", err
		}
		base := filepath.Base(cfg.Input)
		return src, strings.TrimSuffix(base, filepath.Ext(base)), nil
	case config.CommandCamera:
		src, err := cv.OpenCamera(cfg.Capture.CameraIndex)
		if err != nil {
			return nil, "", err
		}
		return src, cfg.Capture.CameraName, nil
	default:
		return nil, "", fmt.Errorf("no source for command %q", cfg.Command)
	}
}

// newTransport always logs pass events and adds the network transports
// that are enabled.
func newTransport(cfg config.TransportConfig) (transport.Transport, error) {
	fan := transport.Fanout{transport.NewLoggingTransport()}

	if cfg.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.WebSocketAddr)
		if err != nil {
			fan.Close()
			return nil, err
		}
		fan = append(fan, ws)
	}

	if cfg.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.UDPTargetAddress)
		if err != nil {
			fan.Close()
			return nil, err
		}
		pub, err := udp.NewPassPublisher(sender)
		if err != nil {
			sender.Close()
			fan.Close()
			return nil, err
		}
		fan = append(fan, pub)
	}
	return fan, nil
}
