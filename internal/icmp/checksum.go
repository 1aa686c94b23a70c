package icmp

import "encoding/binary"

// Checksum computes the RFC 1071 Internet checksum of b.
// An odd trailing byte is treated as the high byte of a final zero-padded word.
func Checksum(b []byte) uint16 {
	return ^fold(sum(b))
}

// VerifyChecksum reports whether b, including its checksum field, sums to 0xffff.
func VerifyChecksum(b []byte) bool {
	return fold(sum(b)) == 0xffff
}

func sum(b []byte) uint32 {
	var s uint32
	i := 0
	for ; i+1 < len(b); i += 2 {
		s += uint32(binary.BigEndian.Uint16(b[i : i+2]))
	}
	if i < len(b) {
		s += uint32(b[i]) << 8
	}
	return s
}

func fold(s uint32) uint16 {
	for s>>16 != 0 {
		s = (s >> 16) + (s & 0xffff)
	}
	return uint16(s)
}
