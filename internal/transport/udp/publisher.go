// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	applog "ddm/internal/log"
	"ddm/internal/transport"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Pass              | uint32         | 4            | Completed pass number   |
| Frames            | uint32         | 4            | Frames received so far  |
+-----------------------------------------------------------------------------+

|<---- 4 Bytes ---->|<------ 8 Bytes ------>|<-- 4 Bytes -->|<-- 4 Bytes -->|
+-------------------+-----------------------+---------------+---------------+
|  Sequence Number  |       Timestamp       |     Pass      |    Frames     |
+-------------------+-----------------------+---------------+---------------+
*/

// PacketSize is the encoded length of a pass packet.
const PacketSize = 4 + 8 + 4 + 4

// Packet is the decoded form of a pass packet.
type Packet struct {
	Sequence  uint32
	Timestamp int64
	Pass      uint32
	Frames    uint32
}

// PassPublisher packs pass events into fixed-size packets and sends them
// with a UDPSender. Other payloads are ignored.
type PassPublisher struct {
	sender *UDPSender

	mu           sync.Mutex // Protects sequenceNum and packetBuffer
	sequenceNum  uint32
	packetBuffer *bytes.Buffer
}

// NewPassPublisher wraps sender. The publisher owns it from here on.
func NewPassPublisher(sender *UDPSender) (*PassPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("PassPublisher: UDP sender cannot be nil")
	}
	return &PassPublisher{
		sender:       sender,
		packetBuffer: bytes.NewBuffer(make([]byte, 0, PacketSize)),
	}, nil
}

// Send implements transport.Transport.
func (p *PassPublisher) Send(data any) error {
	ev, ok := data.(transport.PassEvent)
	if !ok {
		applog.Debugf("PassPublisher: Ignoring %T", data)
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.sequenceNum++
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	pkt := Packet{
		Sequence:  p.sequenceNum,
		Timestamp: ts.UnixNano(),
		Pass:      uint32(ev.Pass),
		Frames:    uint32(ev.Frames),
	}

	p.packetBuffer.Reset()
	if err := binary.Write(p.packetBuffer, binary.BigEndian, pkt); err != nil {
		return fmt.Errorf("PassPublisher: packing packet %d: %w", pkt.Sequence, err)
	}
	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		return err
	}
	applog.Debugf("PassPublisher: Sent packet %d (pass %d)", pkt.Sequence, pkt.Pass)
	return nil
}

// Close closes the underlying sender.
func (p *PassPublisher) Close() error {
	return p.sender.Close()
}

// DecodePacket parses a pass packet.
func DecodePacket(b []byte) (Packet, error) {
	var pkt Packet
	if len(b) != PacketSize {
		return pkt, fmt.Errorf("pass packet is %d bytes, want %d", len(b), PacketSize)
	}
	err := binary.Read(bytes.NewReader(b), binary.BigEndian, &pkt)
	return pkt, err
}

var _ transport.Transport = (*PassPublisher)(nil)
