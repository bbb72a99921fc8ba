package netutil

import (
	"os"
	"path"
)

const sysNetPath = "/sys/class/net"

// IsPhyNic reports whether nic is backed by a hardware device.
func IsPhyNic(nic string) bool {
	_, err := os.Stat(path.Join(sysNetPath, nic, "device"))
	return err == nil
}

// NicExists reports whether a link named nic is present.
func NicExists(nic string) bool {
	_, err := os.Stat(path.Join(sysNetPath, nic))
	return err == nil
}
