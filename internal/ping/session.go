// Package ping implements the echo session: it sends ICMP Echo Requests to a
// single IPv4 target once per interval and reports whatever comes back.
package ping

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/postalsys/muti-ping/internal/icmp"
	"github.com/postalsys/muti-ping/internal/logging"
	"github.com/postalsys/muti-ping/internal/metrics"
)

// SessionState represents the lifecycle of a Session.
type SessionState int

const (
	// StateIdle means Run has not been called yet.
	StateIdle SessionState = iota
	// StateRunning means the session is exchanging packets.
	StateRunning
	// StateStopped means Run has returned.
	StateStopped
)

// String returns a human-readable name for the state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is a point-in-time copy of the session's counters.
type Snapshot struct {
	Target     string    `json:"target"`
	Identifier uint16    `json:"identifier"`
	Sequence   uint16    `json:"sequence"`
	State      string    `json:"state"`
	Sent       uint64    `json:"sent"`
	Replies    uint64    `json:"replies"`
	LastRTT    float64   `json:"last_rtt_ms"`
	LastReply  time.Time `json:"last_reply,omitzero"`
	StartedAt  time.Time `json:"started_at,omitzero"`
}

// Session pings one target. Step and Run must not be called concurrently;
// State and Snapshot may be called from any goroutine.
type Session struct {
	cfg       Config
	target    net.IP
	transport Transport
	reporter  Reporter
	logger    *slog.Logger
	metrics   *metrics.Metrics

	sentAt time.Time

	mu        sync.RWMutex
	seq       uint16
	state     SessionState
	sent      uint64
	replies   uint64
	lastRTT   time.Duration
	lastReply time.Time
	startedAt time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSession creates a session for target. The sequence starts at 0.
func NewSession(target net.IP, transport Transport, reporter Reporter, cfg Config) *Session {
	if cfg.Payload == nil {
		cfg.Payload = []byte{}
	}

	return &Session{
		cfg:       cfg,
		target:    target,
		transport: transport,
		reporter:  reporter,
		logger:    logging.Nop(),
		state:     StateIdle,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// SetLogger sets the diagnostic logger.
func (s *Session) SetLogger(logger *slog.Logger) {
	s.logger = logging.Component(logger, "ping").With(
		logging.KeyTarget, s.target.String(),
		logging.KeyIdentifier, s.cfg.Identifier,
	)
}

// SetMetrics enables Prometheus instrumentation.
func (s *Session) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// State returns the lifecycle state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsRunning reports whether Run is in progress.
func (s *Session) IsRunning() bool {
	return s.State() == StateRunning
}

// Sequence returns the sequence number the next request will carry.
func (s *Session) Sequence() uint16 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Snapshot returns a copy of the session's counters.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Target:     s.target.String(),
		Identifier: s.cfg.Identifier,
		Sequence:   s.seq,
		State:      s.state.String(),
		Sent:       s.sent,
		Replies:    s.replies,
		LastRTT:    Milliseconds(s.lastRTT),
		LastReply:  s.lastReply,
		StartedAt:  s.startedAt,
	}
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	if state == StateRunning {
		s.startedAt = s.now()
	}
}

// Run exchanges echo requests until ctx is cancelled or Count requests have
// been sent. It returns nil on cancellation and a wrapped ErrSendFailure when
// a request cannot be written.
func (s *Session) Run(ctx context.Context) error {
	s.setState(StateRunning)
	defer s.setState(StateStopped)

	s.logger.Info("session started",
		"interval", s.cfg.Interval,
		"count", s.cfg.Count,
		"match_replies", s.cfg.MatchReplies)

	for n := 0; s.cfg.Count == 0 || n < s.cfg.Count; n++ {
		if n > 0 {
			if err := s.sleep(ctx, s.cfg.Interval); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}

		if err := s.Step(ctx); err != nil {
			if ctx.Err() != nil {
				// Socket closed underneath us during shutdown.
				break
			}
			s.logger.Error("session aborted", logging.KeyError, err)
			return err
		}
	}

	snap := s.Snapshot()
	s.logger.Info("session finished", "sent", snap.Sent, "replies", snap.Replies)
	return nil
}

// Step performs one exchange: send a request, wait for one datagram and
// report it, then advance the sequence number.
func (s *Session) Step(ctx context.Context) error {
	seq := s.Sequence()

	req := icmp.NewEchoRequest(s.cfg.Identifier, seq, s.cfg.Payload)
	buf := req.Encode()

	s.sentAt = s.now()
	if err := s.transport.Send(buf, s.target); err != nil {
		if s.metrics != nil {
			s.metrics.RecordSendError()
		}
		return fmt.Errorf("%w: icmp_seq=%d: %w", ErrSendFailure, seq, err)
	}

	s.mu.Lock()
	s.sent++
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordSent(seq)
	}
	s.logger.Debug("echo request sent", logging.KeySequence, seq, logging.KeyBytes, len(buf))

	s.receive(ctx, seq)

	s.mu.Lock()
	s.seq++
	s.mu.Unlock()

	return nil
}

// receive reads until it has something to report for seq.
func (s *Session) receive(ctx context.Context, seq uint16) {
	for {
		env, src, err := s.transport.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.record(metrics.OutcomeError)
			s.reporter.Report(Result{Kind: ResultReceiveError, Err: err})
			return
		}

		data := env.Payload()
		msg, err := icmp.Decode(data)
		if err != nil {
			s.record(metrics.OutcomeMalformed)
			s.logger.Debug("malformed datagram",
				logging.KeyAddress, src.String(),
				logging.KeyBytes, env.Len(),
				logging.KeyError, err)
			s.reporter.Report(Result{Kind: ResultMalformed, Src: src, Len: env.Len(), Err: err})
			return
		}

		if !icmp.VerifyChecksum(data) {
			s.logger.Debug("checksum mismatch",
				logging.KeyAddress, src.String(),
				logging.KeyType, msg.Type().String(),
				"checksum", msg.Checksum())
		}
		if s.metrics != nil {
			s.metrics.RecordMessage(msg.Type().String())
		}

		if s.cfg.MatchReplies && !s.isReply(msg, seq) {
			s.record(metrics.OutcomeSkipped)
			s.logger.Debug("skipping unrelated datagram",
				logging.KeyAddress, src.String(),
				logging.KeyType, msg.Type().String(),
				logging.KeySequence, msg.Sequence())
			continue
		}

		if msg.Type() != icmp.EchoResponse {
			s.record(metrics.OutcomeOther)
			s.reporter.Report(Result{Kind: ResultOther, Src: src, Len: env.Len(), TTL: env.TTL, Type: msg.Type()})
			return
		}

		rtt := s.now().Sub(s.sentAt)

		s.mu.Lock()
		s.replies++
		s.lastRTT = rtt
		s.lastReply = s.now()
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.RecordReply(rtt)
		}

		// The decoded sequence is reported as received; without MatchReplies
		// it may belong to an earlier request or another process.
		s.reporter.Report(Result{
			Kind: ResultReply,
			Len:  env.Len(),
			Src:  src,
			Seq:  msg.Sequence(),
			TTL:  env.TTL,
			RTT:  rtt,
			Type: msg.Type(),
		})
		return
	}
}

func (s *Session) isReply(msg *icmp.Message, seq uint16) bool {
	return msg.Type() == icmp.EchoResponse &&
		msg.Identifier() == s.cfg.Identifier &&
		msg.Sequence() == seq
}

func (s *Session) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordOutcome(outcome)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
