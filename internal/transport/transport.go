// SPDX-License-Identifier: MIT
/*
Package transport publishes analysis progress to observers outside the
process. Delivery is best effort: a failing observer is logged and the
analysis carries on.
*/
package transport

import (
	"errors"
	"time"
)

// Transport defines a generic interface for sending progress events.
// Implementations must be safe for concurrent use.
type Transport interface {
	Send(data any) error
	Close() error
}

// PassEvent reports one completed accumulation pass.
type PassEvent struct {
	Stream string    `json:"stream"`
	Pass   int       `json:"pass"`
	Frames int       `json:"frames"` // Frames received when the pass ran
	Lags   int       `json:"lags"`
	Time   time.Time `json:"time"`
}

// Fanout forwards every event to all of its transports.
type Fanout []Transport

// Send delivers data to every transport and joins their errors.
func (f Fanout) Send(data any) error {
	var errs []error
	for _, t := range f {
		if err := t.Send(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport, even after a failure.
func (f Fanout) Close() error {
	var errs []error
	for _, t := range f {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = Fanout(nil)
