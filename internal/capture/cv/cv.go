// SPDX-License-Identifier: MIT
/*
Package cv reads frames from video files and cameras through OpenCV.

Frames are converted to 8-bit grayscale and widened to float64. The two
Mats used for decoding are allocated once per source and reused for every
frame, so Next only allocates the returned numeric.Frame.
*/
package cv

import (
	"fmt"
	"io"

	"ddm/internal/capture"
	applog "ddm/internal/log"
	"ddm/internal/numeric"

	"gocv.io/x/gocv"
)

// VideoSource wraps an OpenCV capture handle.
type VideoSource struct {
	capture *gocv.VideoCapture
	raw     gocv.Mat // Decoded frame as delivered by the backend
	gray    gocv.Mat // Single channel conversion target
	live    bool
	name    string
}

// Compile-time check for interface implementation.
var _ capture.Source = (*VideoSource)(nil)

// OpenVideo opens a video file.
func OpenVideo(path string) (*VideoSource, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video '%s': %w", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("failed to open video '%s'", path)
	}
	return newVideoSource(vc, path, false), nil
}

// OpenCamera opens the camera with the given device index.
func OpenCamera(index int) (*VideoSource, error) {
	vc, err := gocv.VideoCaptureDevice(index)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", index, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("failed to open camera %d", index)
	}
	return newVideoSource(vc, fmt.Sprintf("camera %d", index), true), nil
}

func newVideoSource(vc *gocv.VideoCapture, name string, live bool) *VideoSource {
	applog.Debugf("Capture: Opened %s", name)
	return &VideoSource{
		capture: vc,
		raw:     gocv.NewMat(),
		gray:    gocv.NewMat(),
		live:    live,
		name:    name,
	}
}

func (v *VideoSource) FrameRate() float64 {
	return v.capture.Get(gocv.VideoCaptureFPS)
}

// FrameCount is 0 for cameras, which have no fixed length.
func (v *VideoSource) FrameCount() int {
	if v.live {
		return 0
	}
	return int(v.capture.Get(gocv.VideoCaptureFrameCount))
}

// Next decodes the next frame. A failed read or empty frame ends the stream.
func (v *VideoSource) Next() (*numeric.Frame, error) {
	if ok := v.capture.Read(&v.raw); !ok || v.raw.Empty() {
		return nil, io.EOF
	}

	src := v.raw
	if v.raw.Channels() > 1 {
		gocv.CvtColor(v.raw, &v.gray, gocv.ColorBGRToGray)
		src = v.gray
	}

	rows, cols := src.Rows(), src.Cols()
	pixels := src.ToBytes()
	if len(pixels) != rows*cols {
		return nil, fmt.Errorf("unsupported pixel format from %s: %d bytes for %dx%d", v.name, len(pixels), rows, cols)
	}

	f := numeric.NewFrame(rows, cols)
	for i, p := range pixels {
		f.Data[i] = float64(p)
	}
	return f, nil
}

// Close releases the Mats and the capture handle.
func (v *VideoSource) Close() error {
	v.raw.Close()
	v.gray.Close()
	if err := v.capture.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", v.name, err)
	}
	applog.Debugf("Capture: Closed %s", v.name)
	return nil
}
