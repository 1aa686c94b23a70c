//go:build unix

package icmp

import "golang.org/x/sys/unix"

func privileged() bool {
	return unix.Geteuid() == 0
}
