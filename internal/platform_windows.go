package internal

import (
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

func platformVersion() string {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, registry.QUERY_VALUE)
	if err != nil {
		return windowsVersion()
	}
	defer k.Close()
	v, _, err := k.GetStringValue("CurrentVersion")
	if err != nil {
		return windowsVersion()
	}
	return "Windows " + v
}

// windowsVersion asks GetVersion when the registry has no answer.
func windowsVersion() string {
	v, err := windows.GetVersion()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("Windows %d.%d", v&0xff, v>>8&0xff)
}
