package icmp

import "fmt"

// Type is the ICMPv4 type byte.
type Type uint8

// ICMPv4 type numbers understood by the model.
const (
	TypeEchoReply              Type = 0
	TypeDestinationUnreachable Type = 3
	TypeSourceQuench           Type = 4
	TypeRedirect               Type = 5
	TypeEcho                   Type = 8
	TypeTimeExceeded           Type = 11
	TypeParameterProblem       Type = 12
	TypeTimestamp              Type = 13
	TypeTimestampReply         Type = 14
	TypeInformationRequest     Type = 15
	TypeInformationReply       Type = 16
)

// typeNames also serves as the set of known types.
var typeNames = map[Type]string{
	TypeEchoReply:              "EchoResponse",
	TypeDestinationUnreachable: "DestinationUnreachable",
	TypeSourceQuench:           "SourceQuench",
	TypeRedirect:               "Redirect",
	TypeEcho:                   "EchoRequest",
	TypeTimeExceeded:           "TimeExceeded",
	TypeParameterProblem:       "ParameterProblem",
	TypeTimestamp:              "Timestamp",
	TypeTimestampReply:         "TimestampReply",
	TypeInformationRequest:     "InformationRequest",
	TypeInformationReply:       "InformationReply",
}

// HasCode reports whether the protocol assigns meaning to the code byte of t.
func (t Type) HasCode() bool {
	switch t {
	case TypeDestinationUnreachable, TypeRedirect, TypeTimeExceeded:
		return true
	default:
		return false
	}
}

// MessageType is one variant of the closed ICMP message type set.
// Variants with sub-codes carry their code; the others always encode code 0.
// The zero value is EchoResponse.
type MessageType struct {
	typ  Type
	code uint8
}

// Fixed-code variants.
var (
	EchoResponse       = MessageType{typ: TypeEchoReply}
	EchoRequest        = MessageType{typ: TypeEcho}
	SourceQuench       = MessageType{typ: TypeSourceQuench}
	ParameterProblem   = MessageType{typ: TypeParameterProblem}
	Timestamp          = MessageType{typ: TypeTimestamp}
	TimestampReply     = MessageType{typ: TypeTimestampReply}
	InformationRequest = MessageType{typ: TypeInformationRequest}
	InformationReply   = MessageType{typ: TypeInformationReply}
)

// DestinationUnreachable returns the type 3 variant with the given code.
func DestinationUnreachable(code uint8) MessageType {
	return MessageType{typ: TypeDestinationUnreachable, code: code}
}

// Redirect returns the type 5 variant with the given code.
func Redirect(code uint8) MessageType {
	return MessageType{typ: TypeRedirect, code: code}
}

// TimeExceeded returns the type 11 variant with the given code.
func TimeExceeded(code uint8) MessageType {
	return MessageType{typ: TypeTimeExceeded, code: code}
}

// FromTypeAndCode maps wire bytes back to a variant.
// Unknown types, and nonzero codes on fixed-code types, yield ErrInvalidTypeCode.
func FromTypeAndCode(typ, code uint8) (MessageType, error) {
	t := Type(typ)
	if _, ok := typeNames[t]; !ok {
		return MessageType{}, fmt.Errorf("%w: type=%d code=%d", ErrInvalidTypeCode, typ, code)
	}
	if !t.HasCode() && code != 0 {
		return MessageType{}, fmt.Errorf("%w: type=%d code=%d", ErrInvalidTypeCode, typ, code)
	}
	return MessageType{typ: t, code: code}, nil
}

// TypeAndCode returns the wire bytes for the variant.
func (m MessageType) TypeAndCode() (uint8, uint8) {
	return uint8(m.typ), m.Code()
}

// Type returns the type byte.
func (m MessageType) Type() Type {
	return m.typ
}

// Code returns the code byte, always 0 for fixed-code variants.
func (m MessageType) Code() uint8 {
	if !m.typ.HasCode() {
		return 0
	}
	return m.code
}

// String returns the variant name, with the code for sub-coded variants.
func (m MessageType) String() string {
	name, ok := typeNames[m.typ]
	if !ok {
		return fmt.Sprintf("Unknown(%d)", m.typ)
	}
	if m.typ.HasCode() {
		return fmt.Sprintf("%s(%d)", name, m.code)
	}
	return name
}
