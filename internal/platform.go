package internal

import (
	"runtime"
	"sync"
)

var platformOnce = sync.OnceValue(func() string {
	v := platformVersion()
	if v == "" {
		return runtime.GOOS + "/" + runtime.GOARCH
	}
	return runtime.GOOS + "/" + runtime.GOARCH + " " + v
})

// Platform describes the host operating system and its version, as reported
// by the command-line tool.
func Platform() string {
	return platformOnce()
}
