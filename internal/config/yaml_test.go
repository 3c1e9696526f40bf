// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Errorf("default config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: debug
analysis:
  capacity: 25
  ring_width: 10
  window: hann
output:
  dir: /tmp/plots
  csv: true
transport:
  udp_enabled: true
  udp_target_address: 10.0.0.2:7000
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	want := Defaults()
	want.LogLevel = "debug"
	want.Analysis.Capacity = 25
	want.Analysis.RingWidth = 10
	want.Analysis.Window = "hann"
	want.Output.Dir = "/tmp/plots"
	want.Output.CSV = true
	want.Transport.UDPEnabled = true
	want.Transport.UDPTargetAddress = "10.0.0.2:7000"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_DEBUG", "true")
	t.Setenv("ENV_DDM_CAPACITY", "12")
	t.Setenv("ENV_DDM_RING_WIDTH", "5")
	t.Setenv("ENV_DDM_OUTPUT_DIR", "out")
	t.Setenv("ENV_WS_ENABLED", "1")
	t.Setenv("ENV_UDP_ENABLED", "not-a-bool")
	t.Setenv("ENV_UDP_TARGET_ADDRESS", "192.168.1.9:9999")

	path := writeTempConfig(t, "analysis:\n  capacity: 30\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !cfg.Debug {
		t.Error("ENV_DEBUG not applied")
	}
	if cfg.Analysis.Capacity != 12 {
		t.Errorf("capacity = %d, want env value 12 over file value 30", cfg.Analysis.Capacity)
	}
	if cfg.Analysis.RingWidth != 5 {
		t.Errorf("ring width = %d, want 5", cfg.Analysis.RingWidth)
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("output dir = %q, want out", cfg.Output.Dir)
	}
	if !cfg.Transport.WebSocketEnabled {
		t.Error("ENV_WS_ENABLED not applied")
	}
	if cfg.Transport.UDPEnabled {
		t.Error("unparseable ENV_UDP_ENABLED must be ignored")
	}
	if cfg.Transport.UDPTargetAddress != "192.168.1.9:9999" {
		t.Errorf("udp target = %q", cfg.Transport.UDPTargetAddress)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Defaults", func(*Config) {}, ""},
		{"Camera", func(c *Config) { c.Command = CommandCamera }, ""},
		{"Video", func(c *Config) { c.Command = CommandVideo; c.Input = "beads.avi" }, ""},
		{"Video without input", func(c *Config) { c.Command = CommandVideo }, "input file"},
		{"Unknown command", func(c *Config) { c.Command = "list" }, "unknown command"},
		{"Bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"Negative capacity", func(c *Config) { c.Analysis.Capacity = -1 }, "capacity"},
		{"Negative stride", func(c *Config) { c.Analysis.Stride = -3 }, "stride"},
		{"Zero ring width", func(c *Config) { c.Analysis.RingWidth = 0 }, "ring_width"},
		{"Huge frame buffer", func(c *Config) { c.Analysis.FrameBuffer = MaxFrameBuffer + 1 }, "frame_buffer"},
		{"Zero scale", func(c *Config) { c.Analysis.FFTScale = 0 }, "fft_scale"},
		{"Zero divisor", func(c *Config) { c.Analysis.ShiftColDivisor = 0 }, "divisors"},
		{"Unknown window", func(c *Config) { c.Analysis.Window = "triangle" }, "analysis.window"},
		{"Unknown backend", func(c *Config) { c.Analysis.Backend = "tpu" }, "analysis.backend"},
		{"Negative camera", func(c *Config) { c.Capture.CameraIndex = -1 }, "camera_index"},
		{"Empty output dir", func(c *Config) { c.Output.Dir = "" }, "output.dir"},
		{"WebSocket without address", func(c *Config) {
			c.Transport.WebSocketEnabled = true
			c.Transport.WebSocketAddr = ""
		}, "websocket_addr"},
		{"UDP without port", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPTargetAddress = "localhost"
		}, "missing port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
