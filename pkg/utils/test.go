// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"sync"

	"ddm/internal/numeric"
	"ddm/internal/plot"
	"ddm/internal/transport"
)

// MockTransport implements the Transport interface for testing.
type MockTransport struct {
	mu     sync.Mutex
	Events []transport.PassEvent
	Closed int
	Err    error  // Returned from Send when set
	OnSend func() // Called after every pass event, outside the lock
}

// Send stores pass events for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	ev, ok := data.(transport.PassEvent)
	m.mu.Lock()
	if ok {
		m.Events = append(m.Events, ev)
	}
	err, hook := m.Err, m.OnSend
	m.mu.Unlock()

	if ok && hook != nil {
		hook()
	}
	return err
}

// Close counts calls.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed++
	return nil
}

// Passes returns the pass numbers received so far.
func (m *MockTransport) Passes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.Events))
	for i, ev := range m.Events {
		out[i] = ev.Pass
	}
	return out
}

// SaveCall records one MockSaver.Save invocation.
type SaveCall struct {
	Name   string
	Series [][]float64
	Axis   plot.Axis
}

// MockSaver implements plot.Saver by recording its arguments.
type MockSaver struct {
	mu    sync.Mutex
	Calls []SaveCall
	Err   error
}

// Save stores a deep copy of series.
func (m *MockSaver) Save(name string, series [][]float64, axis plot.Axis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([][]float64, len(series))
	for i, s := range series {
		cp[i] = append([]float64(nil), s...)
	}
	m.Calls = append(m.Calls, SaveCall{Name: name, Series: cp, Axis: axis})
	return m.Err
}

// Names returns the saved names in call order.
func (m *MockSaver) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		out[i] = c.Name
	}
	return out
}

// UniformFrames returns n rows x cols frames filled with value.
func UniformFrames(n, rows, cols int, value float64) []*numeric.Frame {
	frames := make([]*numeric.Frame, n)
	for i := range frames {
		f := numeric.NewFrame(rows, cols)
		for j := range f.Data {
			f.Data[j] = value
		}
		frames[i] = f
	}
	return frames
}

// DriftingFrames returns n frames holding a horizontal cosine grating with
// the given period in pixels, shifted by drift pixels per frame.
func DriftingFrames(n, rows, cols int, period, drift float64) []*numeric.Frame {
	frames := make([]*numeric.Frame, n)
	for i := range frames {
		f := numeric.NewFrame(rows, cols)
		offset := drift * float64(i)
		for r := range rows {
			for c := range cols {
				f.Set(r, c, 1+math.Cos(2*math.Pi*(float64(c)-offset)/period))
			}
		}
		frames[i] = f
	}
	return frames
}

// FindPeakBin returns the index of the largest value in [startBin, endBin].
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}
