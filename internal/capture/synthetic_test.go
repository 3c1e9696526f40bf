// SPDX-License-Identifier: MIT
package capture

import (
	"errors"
	"io"
	"testing"

	"ddm/internal/numeric"
)

func TestSyntheticYieldsFramesOnce(t *testing.T) {
	a := numeric.NewFrame(2, 2)
	b := numeric.NewFrame(2, 2)
	b.Data[0] = 7
	src := NewSynthetic(30, a, b)

	if src.FrameRate() != 30 || src.FrameCount() != 2 {
		t.Fatalf("FrameRate/FrameCount = %v/%d, want 30/2", src.FrameRate(), src.FrameCount())
	}

	for i := range 2 {
		f, err := src.Next()
		if err != nil {
			t.Fatalf("Next() #%d error: %v", i, err)
		}
		f.Data[0] = -1 // Must not leak into the source
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after end = %v, want io.EOF", err)
	}
	if b.Data[0] != 7 {
		t.Error("Next() returned a shared slice instead of a copy")
	}
	if src.Delivered() != 2 {
		t.Errorf("Delivered() = %d, want 2", src.Delivered())
	}
}

func TestSyntheticLoop(t *testing.T) {
	src := NewSynthetic(10, numeric.NewFrame(1, 1)).Loop()
	if src.FrameCount() != 0 {
		t.Errorf("looping FrameCount() = %d, want 0", src.FrameCount())
	}
	for i := range 5 {
		if _, err := src.Next(); err != nil {
			t.Fatalf("Next() #%d error: %v", i, err)
		}
	}
}

func TestSyntheticEmpty(t *testing.T) {
	src := NewSynthetic(10).Loop()
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("empty Next() = %v, want io.EOF", err)
	}
	_ = src.Close()
	_ = src.Close()
	if src.Closes() != 2 {
		t.Errorf("Closes() = %d, want 2", src.Closes())
	}
}
