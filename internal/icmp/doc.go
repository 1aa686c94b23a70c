// Package icmp implements the ICMPv4 message model used by the pinger.
//
// # Wire format
//
// Every message starts with an 8-byte header followed by the payload:
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|     Type      |     Code      |          Checksum             |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|           Identifier          |        Sequence Number        |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|     Data ...
//	+-+-+-+-+-
//
// All multi-byte fields are big-endian. The checksum is the RFC 1071 Internet
// checksum over the whole message with the checksum field zeroed.
//
// # Raw sockets
//
// Socket sends and receives full IPv4 datagrams on an "ip4:icmp" raw socket.
// Opening it requires root or CAP_NET_RAW on Linux:
//
//	setcap cap_net_raw+ep ./muti-ping
package icmp
