//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package internal

import (
	"bytes"
	"fmt"

	"golang.org/x/sys/unix"
)

func platformVersion() string {
	var uname unix.Utsname
	if unix.Uname(&uname) != nil {
		// Nothing else to try.
		return ""
	}
	s, r := uname.Sysname[:], uname.Release[:]
	return fmt.Sprintf("%s %s", bytes.TrimRight(s, "\x00"), bytes.TrimRight(r, "\x00"))
}
