// SPDX-License-Identifier: MIT
package transport

import (
	applog "ddm/internal/log"
)

// LoggingTransport implements the Transport interface by logging events.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data at debug level. It never fails.
func (lt *LoggingTransport) Send(data any) error {
	switch ev := data.(type) {
	case PassEvent:
		applog.Debugf("LOG_TRANSPORT: %s pass %d (%d frames, %d lags)", ev.Stream, ev.Pass, ev.Frames, ev.Lags)
	default:
		applog.Debugf("LOG_TRANSPORT: Received (%T): %+v", data, data)
	}
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("LOG_TRANSPORT: Close called.")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
