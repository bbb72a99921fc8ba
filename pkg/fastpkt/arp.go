package fastpkt

import (
	"encoding/binary"
	"fmt"

	"github.com/zxhio/tapresp/pkg/netaddr"
)

const (
	ARPOperationRequest = 1
	ARPOperationReply   = 2

	ARPHwTypeEthernet = 1 // ARPHRD_ETHER
)

// <linux/if_arp.h>
//
// struct arphdr {
//     __be16 ar_hrd;        /* format of hardware address	*/
//     __be16 ar_pro;        /* format of protocol address	*/
//     unsigned char ar_hln; /* length of hardware address	*/
//     unsigned char ar_pln; /* length of protocol address	*/
//     __be16 ar_op;         /* ARP opcode (command)		*/
// };
//
// followed by the Ethernet/IPv4 addresses:
//     sha[6] sip[4] tha[6] tip[4]

type ARPHeader struct {
	HwAddrType   uint16
	ProtAddrType uint16
	HwAddrLen    uint8
	ProtAddrLen  uint8
	Operation    uint16
	SenderHwAddr netaddr.HwAddr
	SenderIP     netaddr.IPv4Addr
	TargetHwAddr netaddr.HwAddr
	TargetIP     netaddr.IPv4Addr
}

func (arp *ARPHeader) String() string {
	switch arp.Operation {
	case ARPOperationRequest:
		return fmt.Sprintf("Request who-has %s (%s) tell %s (%s)", arp.TargetIP, arp.TargetHwAddr, arp.SenderIP, arp.SenderHwAddr)
	case ARPOperationReply:
		return fmt.Sprintf("Reply %s is-at %s", arp.SenderIP, arp.SenderHwAddr)
	default:
		return fmt.Sprintf("unknown arp operation %d", arp.Operation)
	}
}

// Encode writes the message into the first SizeofARP bytes of b.
func (arp *ARPHeader) Encode(b []byte) {
	_ = b[SizeofARP-1]
	binary.BigEndian.PutUint16(b[0:2], arp.HwAddrType)
	binary.BigEndian.PutUint16(b[2:4], arp.ProtAddrType)
	b[4] = arp.HwAddrLen
	b[5] = arp.ProtAddrLen
	binary.BigEndian.PutUint16(b[6:8], arp.Operation)
	copy(b[8:14], arp.SenderHwAddr[:])
	binary.BigEndian.PutUint32(b[14:18], uint32(arp.SenderIP))
	copy(b[18:24], arp.TargetHwAddr[:])
	binary.BigEndian.PutUint32(b[24:28], uint32(arp.TargetIP))
}

// Reply returns the answer to an ARP request asking for ip.
// The second return value is false when no reply is due: the message
// is not a request or it asks for another address.
func (arp *ARPHeader) Reply(hwAddr netaddr.HwAddr, ip netaddr.IPv4Addr) (ARPHeader, bool) {
	if arp.Operation != ARPOperationRequest || arp.TargetIP != ip {
		return ARPHeader{}, false
	}

	return ARPHeader{
		HwAddrType:   arp.HwAddrType,
		ProtAddrType: arp.ProtAddrType,
		HwAddrLen:    arp.HwAddrLen,
		ProtAddrLen:  arp.ProtAddrLen,
		Operation:    ARPOperationReply,
		SenderHwAddr: hwAddr,
		SenderIP:     arp.TargetIP,
		TargetHwAddr: arp.SenderHwAddr,
		TargetIP:     arp.SenderIP,
	}, true
}

func DecodeARP(data []byte) (ARPHeader, error) {
	if len(data) < SizeofARP {
		return ARPHeader{}, ErrPacketTooShort
	}

	arp := ARPHeader{
		HwAddrType:   binary.BigEndian.Uint16(data[0:2]),
		ProtAddrType: binary.BigEndian.Uint16(data[2:4]),
		HwAddrLen:    data[4],
		ProtAddrLen:  data[5],
		Operation:    binary.BigEndian.Uint16(data[6:8]),
		SenderIP:     netaddr.IPv4Addr(binary.BigEndian.Uint32(data[14:18])),
		TargetIP:     netaddr.IPv4Addr(binary.BigEndian.Uint32(data[24:28])),
	}
	copy(arp.SenderHwAddr[:], data[8:14])
	copy(arp.TargetHwAddr[:], data[18:24])
	return arp, nil
}

// BuildARP returns the 28 bytes wire form of arp.
func BuildARP(arp ARPHeader) []byte {
	b := make([]byte, SizeofARP)
	arp.Encode(b)
	return b
}
