package netaddr

import (
	"bytes"
	"fmt"
	"net"
)

// HwAddr is an Ethernet MAC-48 address.
type HwAddr [6]byte

func (HwAddr) Type() string {
	return "HwAddr"
}

func (addr HwAddr) String() string {
	return net.HardwareAddr(addr[:]).String()
}

func (addr *HwAddr) Set(s string) error {
	mac, err := net.ParseMAC(s)
	if err != nil {
		return err
	}
	if len(mac) != len(addr) {
		return fmt.Errorf("invalid hw addr: %s", s)
	}
	*addr = HwAddr(mac)
	return nil
}

func (addr HwAddr) IsZero() bool {
	return addr == HwAddr{}
}

func (addr HwAddr) Compare(other HwAddr) int {
	return bytes.Compare(addr[:], other[:])
}

func (addr HwAddr) MarshalJSON() ([]byte, error) {
	return marshal(addr)
}

func (addr *HwAddr) UnmarshalJSON(data []byte) error {
	return unmarshal(addr, data)
}

func ParseHwAddr(s string) (HwAddr, error) {
	var addr HwAddr
	return addr, addr.Set(s)
}
