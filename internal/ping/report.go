package ping

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/postalsys/muti-ping/internal/icmp"
)

// ResultKind classifies the outcome of one receive.
type ResultKind int

const (
	// ResultReply is an echo reply.
	ResultReply ResultKind = iota
	// ResultOther is a well-formed ICMP message that is not an echo reply.
	ResultOther
	// ResultMalformed is a datagram that did not decode.
	ResultMalformed
	// ResultReceiveError is a failed socket read.
	ResultReceiveError
)

// String returns a human-readable name for the kind.
func (k ResultKind) String() string {
	switch k {
	case ResultReply:
		return "reply"
	case ResultOther:
		return "other"
	case ResultMalformed:
		return "malformed"
	case ResultReceiveError:
		return "receive_error"
	default:
		return "unknown"
	}
}

// Result is what the session observed for one request.
type Result struct {
	Kind ResultKind
	Len  int              // datagram length including the IPv4 header
	Src  net.IP           // sender
	Seq  uint16           // decoded sequence number
	TTL  int              // TTL of the received datagram
	RTT  time.Duration    // send-to-receive time
	Type icmp.MessageType // decoded message type
	Err  error            // ResultMalformed and ResultReceiveError only
}

// Reporter receives user-facing ping results.
type Reporter interface {
	Start(host string, ip net.IP, size int)
	Report(r Result)
}

// Milliseconds converts d to fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// TextReporter writes classic ping output lines.
// Replies and informational lines go to out, notices go to errOut.
type TextReporter struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer

	addr   func(string) string
	rtt    func(string) string
	notice func(string) string
}

// NewTextReporter creates a TextReporter. With color set, addresses and
// round-trip times are styled with ANSI escapes regardless of the writer.
func NewTextReporter(out, errOut io.Writer, color bool) *TextReporter {
	plain := func(s string) string { return s }
	r := &TextReporter{
		out:    out,
		errOut: errOut,
		addr:   plain,
		rtt:    plain,
		notice: plain,
	}

	if color {
		renderer := lipgloss.NewRenderer(out)
		renderer.SetColorProfile(termenv.ANSI256)
		addrStyle := renderer.NewStyle().Bold(true)
		rttStyle := renderer.NewStyle().Foreground(lipgloss.Color("42"))
		noticeStyle := renderer.NewStyle().Foreground(lipgloss.Color("214"))

		r.addr = func(s string) string { return addrStyle.Render(s) }
		r.rtt = func(s string) string { return rttStyle.Render(s) }
		r.notice = func(s string) string { return noticeStyle.Render(s) }
	}

	return r
}

// Start writes the banner line.
func (r *TextReporter) Start(host string, ip net.IP, size int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "PING %s (%s): %d data bytes\n", host, r.addr(ip.String()), size)
}

// Report writes the line for one result.
func (r *TextReporter) Report(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch res.Kind {
	case ResultReply:
		fmt.Fprintf(r.out, "%d bytes from %s: icmp_seq=%d ttl=%d time=%s ms\n",
			res.Len, r.addr(res.Src.String()), res.Seq, res.TTL,
			r.rtt(fmt.Sprintf("%.3f", Milliseconds(res.RTT))))
	case ResultOther:
		fmt.Fprintf(r.out, "%s from %s\n", res.Type, r.addr(res.Src.String()))
	case ResultMalformed:
		fmt.Fprintf(r.errOut, "%s\n", r.notice(fmt.Sprintf("invalid packet from %s: %v", res.Src, res.Err)))
	case ResultReceiveError:
		fmt.Fprintf(r.errOut, "%s\n", r.notice(fmt.Sprintf("receive failed: %v", res.Err)))
	}
}
