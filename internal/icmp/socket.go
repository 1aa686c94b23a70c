package icmp

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/net/ipv4"
)

// ProtocolICMP is the IANA protocol number for ICMPv4.
const ProtocolICMP = 1

const (
	// DefaultTTL is the TTL written into outgoing IPv4 headers.
	DefaultTTL = 64

	maxDatagram = 65535
)

// Envelope is an inbound IPv4 datagram carrying an ICMP message.
type Envelope struct {
	Data      []byte // IPv4 header followed by the ICMP message
	HeaderLen int
	TotalLen  int // total length declared by the IPv4 header
	TTL       int
}

// Len returns the number of bytes received.
func (e *Envelope) Len() int {
	return len(e.Data)
}

// Payload returns the ICMP message bytes following the IPv4 header.
func (e *Envelope) Payload() []byte {
	if e.HeaderLen > len(e.Data) {
		return nil
	}
	return e.Data[e.HeaderLen:]
}

// Socket is a raw IPv4 socket bound to the ICMP protocol.
// Outgoing datagrams carry a header built here; the kernel fills in the
// source address and header checksum.
type Socket struct {
	raw         *ipv4.RawConn
	ttl         int
	readTimeout time.Duration
}

// NewSocket opens the raw socket. A ttl of 0 selects DefaultTTL.
func NewSocket(ttl int) (*Socket, error) {
	conn, err := net.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return nil, setupError(err)
	}

	raw, err := ipv4.NewRawConn(conn)
	if err != nil {
		conn.Close()
		return nil, setupError(err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Socket{
		raw: raw,
		ttl: ttl,
	}, nil
}

func setupError(err error) error {
	if !privileged() {
		return fmt.Errorf("%w: %v (raw ICMP sockets need root or CAP_NET_RAW)", ErrSocketSetup, err)
	}
	return fmt.Errorf("%w: %v", ErrSocketSetup, err)
}

// SetReadTimeout bounds each Receive call. Zero blocks until a datagram arrives.
func (s *Socket) SetReadTimeout(d time.Duration) {
	s.readTimeout = d
}

// Send wraps b in an IPv4 header addressed to dst and writes it.
func (s *Socket) Send(b []byte, dst net.IP) error {
	ip4 := dst.To4()
	if ip4 == nil {
		return fmt.Errorf("send ICMP: %v is not an IPv4 address", dst)
	}

	h := &ipv4.Header{
		Version:  ipv4.Version,
		Len:      ipv4.HeaderLen,
		TotalLen: ipv4.HeaderLen + len(b),
		TTL:      s.ttl,
		Protocol: ProtocolICMP,
		Dst:      ip4,
	}

	if err := s.raw.WriteTo(h, b, nil); err != nil {
		return fmt.Errorf("send ICMP: %w", err)
	}
	return nil
}

// Receive blocks for the next inbound datagram and returns it with its source.
func (s *Socket) Receive() (*Envelope, net.IP, error) {
	var deadline time.Time
	if s.readTimeout > 0 {
		deadline = time.Now().Add(s.readTimeout)
	}
	if err := s.raw.SetReadDeadline(deadline); err != nil {
		return nil, nil, fmt.Errorf("set read deadline: %w", err)
	}

	buf := make([]byte, maxDatagram)
	h, p, _, err := s.raw.ReadFrom(buf)
	if err != nil {
		return nil, nil, fmt.Errorf("receive ICMP: %w", err)
	}

	n := h.Len + len(p)
	return &Envelope{
		Data:      buf[:n:n],
		HeaderLen: h.Len,
		TotalLen:  h.TotalLen,
		TTL:       h.TTL,
	}, h.Src, nil
}

// Close releases the socket. A Receive blocked in another goroutine returns an error.
func (s *Socket) Close() error {
	return s.raw.Close()
}
