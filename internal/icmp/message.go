package icmp

import "encoding/binary"

// HeaderLen is the size of the fixed ICMP echo-style header.
const HeaderLen = 8

// Message is an immutable ICMP message.
type Message struct {
	typ        MessageType
	checksum   uint16
	identifier uint16
	sequence   uint16
	payload    []byte
}

// Option sets an optional field on a new Message.
type Option func(*Message)

// WithChecksum records a checksum on the message. Encode ignores it.
func WithChecksum(c uint16) Option {
	return func(m *Message) { m.checksum = c }
}

// WithIdentifier sets the identifier field.
func WithIdentifier(id uint16) Option {
	return func(m *Message) { m.identifier = id }
}

// WithSequence sets the sequence number field.
func WithSequence(seq uint16) Option {
	return func(m *Message) { m.sequence = seq }
}

// WithPayload sets the payload. The slice is copied.
func WithPayload(p []byte) Option {
	return func(m *Message) { m.payload = append([]byte(nil), p...) }
}

// New builds a message of type t. Unset fields are zero and the payload is empty.
func New(t MessageType, opts ...Option) *Message {
	m := &Message{typ: t}
	for _, opt := range opts {
		opt(m)
	}
	if m.payload == nil {
		m.payload = []byte{}
	}
	return m
}

// NewEchoRequest builds an echo request.
func NewEchoRequest(id, seq uint16, payload []byte) *Message {
	return New(EchoRequest, WithIdentifier(id), WithSequence(seq), WithPayload(payload))
}

// Type returns the message type.
func (m *Message) Type() MessageType { return m.typ }

// Checksum returns the checksum given at construction or read by Decode.
func (m *Message) Checksum() uint16 { return m.checksum }

// Identifier returns the identifier field.
func (m *Message) Identifier() uint16 { return m.identifier }

// Sequence returns the sequence number field.
func (m *Message) Sequence() uint16 { return m.sequence }

// Payload returns a copy of the payload.
func (m *Message) Payload() []byte {
	return append([]byte{}, m.payload...)
}

// Len returns the encoded size in bytes.
func (m *Message) Len() int {
	return HeaderLen + len(m.payload)
}

// Encode serializes the message and fills in a freshly computed checksum.
func (m *Message) Encode() []byte {
	buf := make([]byte, m.Len())

	typ, code := m.typ.TypeAndCode()
	buf[0] = typ
	buf[1] = code
	binary.BigEndian.PutUint16(buf[4:6], m.identifier)
	binary.BigEndian.PutUint16(buf[6:8], m.sequence)
	copy(buf[HeaderLen:], m.payload)

	binary.BigEndian.PutUint16(buf[2:4], Checksum(buf))

	return buf
}

// Decode parses an ICMP message. The checksum is read as-is, not verified.
func Decode(buf []byte) (*Message, error) {
	if len(buf) < HeaderLen {
		return nil, ErrBufferTooShort
	}

	t, err := FromTypeAndCode(buf[0], buf[1])
	if err != nil {
		return nil, err
	}

	return &Message{
		typ:        t,
		checksum:   binary.BigEndian.Uint16(buf[2:4]),
		identifier: binary.BigEndian.Uint16(buf[4:6]),
		sequence:   binary.BigEndian.Uint16(buf[6:8]),
		payload:    append([]byte{}, buf[HeaderLen:]...),
	}, nil
}
