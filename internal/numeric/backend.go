// SPDX-License-Identifier: MIT
package numeric

import (
	"fmt"
	"strings"
)

// Backend names a compute device family for the numeric runtime.
type Backend string

const (
	CUDA   Backend = "cuda"
	OpenCL Backend = "opencl"
	CPU    Backend = "cpu"

	// Auto lets SelectBackend pick the most capable available backend.
	Auto Backend = "auto"
)

// preference is the fallback order: accelerated hardware first, general
// purpose compute last.
var preference = []Backend{CUDA, OpenCL, CPU}

// Available returns the backends this build has kernels for.
func Available() []Backend {
	return []Backend{CPU}
}

// ParseBackend converts a string name (case-insensitive) to a Backend.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Auto, nil
	case "cuda":
		return CUDA, nil
	case "opencl":
		return OpenCL, nil
	case "cpu":
		return CPU, nil
	default:
		return Auto, fmt.Errorf("unknown backend name: '%s'", name)
	}
}

// SelectBackend resolves the backend to use once at startup. A preferred
// backend is honoured when available; otherwise the fallback order applies.
// CPU is returned when nothing else matches.
func SelectBackend(preferred Backend, available []Backend) Backend {
	has := func(b Backend) bool {
		for _, a := range available {
			if a == b {
				return true
			}
		}
		return false
	}

	if preferred != Auto && has(preferred) {
		return preferred
	}
	for _, b := range preference {
		if has(b) {
			return b
		}
	}
	return CPU
}
