//go:build !unix

package icmp

func privileged() bool {
	return true
}
