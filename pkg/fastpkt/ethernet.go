package fastpkt

import (
	"encoding/binary"
	"fmt"

	"github.com/zxhio/tapresp/pkg/netaddr"
	"golang.org/x/sys/unix"
)

// EtherType is the ethernet payload type, only IPv4 and ARP are handled.
type EtherType uint16

const (
	EtherTypeUnknown EtherType = 0
	EtherTypeIPv4    EtherType = unix.ETH_P_IP
	EtherTypeARP     EtherType = unix.ETH_P_ARP
)

func (t EtherType) String() string {
	switch t {
	case EtherTypeIPv4:
		return "IPv4"
	case EtherTypeARP:
		return "ARP"
	default:
		return "Unknown"
	}
}

// <linux/if_ether.h>
//
//	struct ethhdr {
//	    unsigned char h_dest[6];
//	    unsigned char h_source[6];
//	    __be16 h_proto;
//	};

type EthHeader struct {
	HwDest   netaddr.HwAddr
	HwSource netaddr.HwAddr
	HwProto  uint16
}

// Type maps HwProto to a known EtherType, anything else is EtherTypeUnknown.
func (eth *EthHeader) Type() EtherType {
	switch t := EtherType(eth.HwProto); t {
	case EtherTypeIPv4, EtherTypeARP:
		return t
	default:
		return EtherTypeUnknown
	}
}

func (eth *EthHeader) String() string {
	return fmt.Sprintf("%s > %s, ethertype %s (0x%04x)", eth.HwSource, eth.HwDest, eth.Type(), eth.HwProto)
}

// Encode writes the header into the first SizeofEthernet bytes of b.
func (eth *EthHeader) Encode(b []byte) {
	_ = b[SizeofEthernet-1]
	copy(b[0:6], eth.HwDest[:])
	copy(b[6:12], eth.HwSource[:])
	binary.BigEndian.PutUint16(b[12:14], eth.HwProto)
}

// DecodeEthernet returns the header and the payload that follows it.
// The payload aliases data.
func DecodeEthernet(data []byte) (EthHeader, []byte, error) {
	if len(data) < SizeofEthernet {
		return EthHeader{}, nil, ErrPacketTooShort
	}

	var eth EthHeader
	copy(eth.HwDest[:], data[0:6])
	copy(eth.HwSource[:], data[6:12])
	eth.HwProto = binary.BigEndian.Uint16(data[12:14])
	return eth, data[SizeofEthernet:], nil
}

// BuildEthernet returns a new frame of eth followed by payload.
func BuildEthernet(eth EthHeader, payload []byte) []byte {
	pb := NewPacketBuilder(make([]byte, 0, SizeofEthernet+len(payload)))
	pb.PrependPayload(payload)
	pb.PrependEthernet(&eth)
	return pb.Bytes()
}
