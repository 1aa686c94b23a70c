package ping

import (
	"context"
	"fmt"
	"net"

	"github.com/postalsys/muti-ping/internal/icmp"
)

// Transport sends encoded ICMP messages and receives inbound datagrams.
// *icmp.Socket satisfies it.
type Transport interface {
	Send(b []byte, dst net.IP) error
	Receive() (*icmp.Envelope, net.IP, error)
}

// Resolver looks up host addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// ResolveIPv4 returns the IPv4 address for host.
// Literal IPv4 addresses are returned without a lookup; otherwise the first
// IPv4 address in the lookup result wins.
func ResolveIPv4(ctx context.Context, r Resolver, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
		return nil, fmt.Errorf("%w: %s is not an IPv4 address", ErrResolution, host)
	}

	addrs, err := r.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResolution, host, err)
	}

	for _, addr := range addrs {
		if ip4 := addr.IP.To4(); ip4 != nil {
			return ip4, nil
		}
	}

	return nil, fmt.Errorf("%w: %s has no IPv4 address", ErrResolution, host)
}
