package fastpkt

import (
	"encoding/binary"
	"fmt"
)

type ICMPType uint8

const (
	ICMPTypeEchoReply ICMPType = 0x0
	ICMPTypeEcho      ICMPType = 0x8
	ICMPTypeUnknown   ICMPType = 0xff // reserved, never on the wire
)

func (t ICMPType) String() string {
	switch t {
	case ICMPTypeEchoReply:
		return "EchoReply"
	case ICMPTypeEcho:
		return "Echo"
	default:
		return "Unknown"
	}
}

// <linux/icmp.h>
//
// struct icmphdr {
//     __u8 type;
//     __u8 code;
//     __sum16 checksum;
//     union {
//         struct {
//             __be16 id;
//             __be16 sequence;
//         } echo;
//         __be32 gateway;
//         struct {
//             __be16 mtu;
//             __u8 void;
//         } frag;
//     };
// };

type ICMPHeader struct {
	Type     ICMPType
	Code     uint8
	Checksum uint16

	// Echo
	ID  uint16
	Seq uint16
}

// Kind maps Type to a known ICMPType, anything else is ICMPTypeUnknown.
func (icmp *ICMPHeader) Kind() ICMPType {
	switch icmp.Type {
	case ICMPTypeEchoReply, ICMPTypeEcho:
		return icmp.Type
	default:
		return ICMPTypeUnknown
	}
}

func (icmp *ICMPHeader) String() string {
	return fmt.Sprintf("ICMP %s, code %d, id %d, seq %d", icmp.Type, icmp.Code, icmp.ID, icmp.Seq)
}

// Encode writes all SizeofICMP header bytes into b. The checksum is taken
// verbatim, see PacketBuilder.PrependICMP for the computed form.
func (icmp *ICMPHeader) Encode(b []byte) {
	_ = b[SizeofICMP-1]
	b[0] = uint8(icmp.Type)
	b[1] = icmp.Code
	binary.BigEndian.PutUint16(b[2:4], icmp.Checksum)
	binary.BigEndian.PutUint16(b[4:6], icmp.ID)
	binary.BigEndian.PutUint16(b[6:8], icmp.Seq)
}

// Reply returns the echo reply header for an echo request. Only echo
// requests are answered.
func (icmp *ICMPHeader) Reply() (ICMPHeader, bool) {
	if icmp.Type != ICMPTypeEcho {
		return ICMPHeader{}, false
	}
	return ICMPHeader{Type: ICMPTypeEchoReply, Code: 0, ID: icmp.ID, Seq: icmp.Seq}, true
}

// DecodeICMP returns the header and the message data that follows it.
func DecodeICMP(data []byte) (ICMPHeader, []byte, error) {
	if len(data) < SizeofICMP {
		return ICMPHeader{}, nil, ErrPacketTooShort
	}

	icmp := ICMPHeader{
		Type:     ICMPType(data[0]),
		Code:     data[1],
		Checksum: binary.BigEndian.Uint16(data[2:4]),
		ID:       binary.BigEndian.Uint16(data[4:6]),
		Seq:      binary.BigEndian.Uint16(data[6:8]),
	}
	return icmp, data[SizeofICMP:], nil
}

// BuildICMP returns a new message of icmp followed by data. A zero Checksum
// is computed over the whole message.
func BuildICMP(icmp ICMPHeader, data []byte) []byte {
	pb := NewPacketBuilder(make([]byte, 0, SizeofICMP+len(data)))
	pb.PrependPayload(data)
	pb.PrependICMP(&icmp)
	return pb.Bytes()
}
