package netaddr

import (
	"fmt"
	"net"
	"strings"
)

// IPv4Prefix IPv4Addr longest prefix match
type IPv4Prefix struct {
	Addr      IPv4Addr `json:"addr,omitempty"`
	PrefixLen uint8    `json:"prefix_len,omitempty"`
}

func (p IPv4Prefix) Compare(other IPv4Prefix) int {
	if p.Addr < other.Addr {
		return -1
	}
	if p.Addr > other.Addr {
		return 1
	}
	if p.PrefixLen < other.PrefixLen {
		return -1
	}
	if p.PrefixLen > other.PrefixLen {
		return 1
	}
	return 0
}

func (p IPv4Prefix) mask() IPv4Addr {
	if p.PrefixLen == 0 {
		return 0
	}
	return IPv4Addr(0xffffffff << (32 - p.PrefixLen))
}

func (p IPv4Prefix) ContainsAddrV4(addrV4 IPv4Addr) bool {
	return p.Addr&p.mask() == addrV4&p.mask()
}

func (p IPv4Prefix) Type() string {
	return "IPv4Prefix"
}

// Set keeps the host bits, see NewIPv4HostPrefixFromStr.
func (p *IPv4Prefix) Set(s string) error {
	sp, err := NewIPv4HostPrefixFromStr(s)
	if err != nil {
		return err
	}
	*p = sp
	return nil
}

// String formats the prefix as {address}/{prefix}, e.g. 10.10.10.0/24
func (p IPv4Prefix) String() string {
	return fmt.Sprintf("%s/%d", p.Addr, p.PrefixLen)
}

// IPNet returns the prefix with the address kept as is, not masked.
func (p IPv4Prefix) IPNet() *net.IPNet {
	return &net.IPNet{IP: p.Addr.ToIP().To4(), Mask: net.CIDRMask(int(p.PrefixLen), 32)}
}

func (p IPv4Prefix) MarshalJSON() ([]byte, error) {
	return marshal(p)
}

func (p *IPv4Prefix) UnmarshalJSON(data []byte) error {
	return unmarshal(p, data)
}

// NewIPv4PrefixFromCIDRStr parses an unstrict cidr, the host bits are masked.
func NewIPv4PrefixFromCIDRStr(cidr string) (IPv4Prefix, error) {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return IPv4Prefix{}, err
	}
	ones, bits := ipnet.Mask.Size()
	if ipnet.IP.To4() == nil || bits != 32 {
		return IPv4Prefix{}, fmt.Errorf("invalid ipv4 cidr: %s", cidr)
	}
	return IPv4Prefix{Addr: NewIPv4AddrFromIP(ipnet.IP), PrefixLen: uint8(ones)}, nil
}

func NewIPv4PrefixFromIP(p net.IP) (IPv4Prefix, error) {
	if p.To4() == nil {
		return IPv4Prefix{}, fmt.Errorf("invalid ipv4: %s", p)
	}
	return IPv4Prefix{Addr: NewIPv4AddrFromIP(p), PrefixLen: 32}, nil
}

func NewIPv4PrefixFromIPStr(ipStr string) (IPv4Prefix, error) {
	p := net.ParseIP(ipStr)
	if p == nil {
		return IPv4Prefix{}, fmt.Errorf("invalid p: %s", ipStr)
	}
	return NewIPv4PrefixFromIP(p)
}

// NewIPv4PrefixFromStr support both ip/cidr
func NewIPv4PrefixFromStr(s string) (IPv4Prefix, error) {
	if strings.IndexByte(s, '/') == -1 {
		return NewIPv4PrefixFromIPStr(s)
	}
	return NewIPv4PrefixFromCIDRStr(s)
}

// NewIPv4HostPrefixFromStr parses an interface address as ip(8) takes it,
// e.g. 10.10.10.1/24. The host bits are kept, an ip means /32.
func NewIPv4HostPrefixFromStr(s string) (IPv4Prefix, error) {
	if strings.IndexByte(s, '/') == -1 {
		return NewIPv4PrefixFromIPStr(s)
	}
	ip, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return IPv4Prefix{}, err
	}
	ones, bits := ipnet.Mask.Size()
	if ip.To4() == nil || bits != 32 {
		return IPv4Prefix{}, fmt.Errorf("invalid ipv4 cidr: %s", s)
	}
	return IPv4Prefix{Addr: NewIPv4AddrFromIP(ip), PrefixLen: uint8(ones)}, nil
}
