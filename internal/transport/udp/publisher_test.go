// SPDX-License-Identifier: MIT
package udp

import (
	"net"
	"testing"
	"time"

	"ddm/internal/transport"
)

func listen(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPassPublisherRoundTrip(t *testing.T) {
	listener := listen(t)
	sender, err := NewUDPSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSender: %v", err)
	}
	pub, err := NewPassPublisher(sender)
	if err != nil {
		t.Fatalf("NewPassPublisher: %v", err)
	}
	defer pub.Close()

	when := time.Unix(1700000000, 42)
	for pass := 1; pass <= 2; pass++ {
		ev := transport.PassEvent{Pass: pass, Frames: pass * 4, Time: when}
		if err := pub.Send(ev); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	buf := make([]byte, 64)
	for want := uint32(1); want <= 2; want++ {
		listener.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, _, err := listener.ReadFromUDP(buf)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		pkt, err := DecodePacket(buf[:n])
		if err != nil {
			t.Fatalf("DecodePacket: %v", err)
		}
		wantPkt := Packet{Sequence: want, Timestamp: when.UnixNano(), Pass: want, Frames: want * 4}
		if pkt != wantPkt {
			t.Errorf("packet = %+v, want %+v", pkt, wantPkt)
		}
	}
}

func TestPassPublisherIgnoresOtherPayloads(t *testing.T) {
	listener := listen(t)
	sender, err := NewUDPSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSender: %v", err)
	}
	pub, _ := NewPassPublisher(sender)
	defer pub.Close()

	if err := pub.Send([]float64{1, 2}); err != nil {
		t.Errorf("Send(non-event) error = %v", err)
	}
	if pub.sequenceNum != 0 {
		t.Errorf("sequence advanced to %d for an ignored payload", pub.sequenceNum)
	}
}

func TestUDPSenderClosed(t *testing.T) {
	listener := listen(t)
	sender, err := NewUDPSender(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSender: %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sender.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := sender.Send([]byte{1}); err != ErrSenderClosed {
		t.Errorf("Send after Close = %v, want ErrSenderClosed", err)
	}
}

func TestDecodePacketRejectsShortInput(t *testing.T) {
	if _, err := DecodePacket(make([]byte, PacketSize-1)); err == nil {
		t.Error("expected error")
	}
}

func TestNewPassPublisherNilSender(t *testing.T) {
	if _, err := NewPassPublisher(nil); err == nil {
		t.Error("expected error")
	}
}
