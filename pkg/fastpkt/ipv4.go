package fastpkt

import (
	"encoding/binary"
	"fmt"

	"github.com/zxhio/tapresp/pkg/netaddr"
	"golang.org/x/sys/unix"
)

const (
	IPv4Version = 4

	IPProtoICMP = unix.IPPROTO_ICMP

	// DefaultTTL is the ttl of every generated datagram
	DefaultTTL = 64
)

// <linux/ip.h>
//
// struct iphdr {
// #if defined(__LITTLE_ENDIAN_BITFIELD)
//     unsigned int ihl : 4, version : 4;
// #elif defined(__BIG_ENDIAN_BITFIELD)
//     unsigned int version : 4, ihl : 4;
// #endif
//     __u8 tos;        // Type of Service
//     __be16 tot_len;  // Total Length
//     __be16 id;       // Identification
//     __be16 frag_off; // Fragment Offset and Flags
//     __u8 ttl;        // Time to Live
//     __u8 protocol;   // Protocol (TCP, UDP, etc.)
//     __u16 check;     // Header Checksum
//     __be32 saddr;    // Source IP Address
//     __be32 daddr;    // Destination IP Address
// };
//
// The bit fields are unpacked on decode and packed again on encode,
// the struct is never laid over the wire bytes.

type IPv4Header struct {
	Version  uint8  // 4 bits
	IHL      uint8  // 4 bits, header length in 32-bit words
	TOS      uint8  // type of service
	Len      uint16 // total length
	ID       uint16 // identification
	Flags    uint8  // 3 bits
	FragOff  uint16 // 13 bits, fragment offset
	TTL      uint8  // time to live
	Protocol uint8  // protocol
	Checksum uint16 // checksum
	SrcIP    netaddr.IPv4Addr
	DstIP    netaddr.IPv4Addr
}

// HeaderLen is the length Encode writes, IHL clamped to 5..15 words.
func (ip *IPv4Header) HeaderLen() int {
	return int(min(max(ip.IHL, 5), 15)) * 4
}

func (ip *IPv4Header) SetHeaderLen(headerLen int) {
	ip.Version = IPv4Version
	ip.IHL = uint8(headerLen/4) & 0x0f
}

func (ip *IPv4Header) String() string {
	return fmt.Sprintf("%s > %s, proto %d, id %d, ttl %d, length %d", ip.SrcIP, ip.DstIP, ip.Protocol, ip.ID, ip.TTL, ip.Len)
}

// Encode writes the header into the first HeaderLen() bytes of b, option
// bytes are zeroed. A zero Checksum is computed after the other fields are
// serialized, any other value is written verbatim.
func (ip *IPv4Header) Encode(b []byte) {
	hdrLen := ip.HeaderLen()
	_ = b[hdrLen-1]

	b[0] = ip.Version<<4 | uint8(hdrLen/4)
	b[1] = ip.TOS
	binary.BigEndian.PutUint16(b[2:4], ip.Len)
	binary.BigEndian.PutUint16(b[4:6], ip.ID)
	binary.BigEndian.PutUint16(b[6:8], uint16(ip.Flags&0x07)<<13|ip.FragOff&0x1fff)
	b[8] = ip.TTL
	b[9] = ip.Protocol
	binary.BigEndian.PutUint16(b[10:12], ip.Checksum)
	binary.BigEndian.PutUint32(b[12:16], uint32(ip.SrcIP))
	binary.BigEndian.PutUint32(b[16:20], uint32(ip.DstIP))
	clear(b[SizeofIPv4:hdrLen])

	if ip.Checksum == 0 {
		binary.BigEndian.PutUint16(b[10:12], Checksum(b[:hdrLen]))
	}
}

// Reply returns the header of a datagram answering ip from localIP and
// carrying payloadLen bytes. Checksum is left 0 so Encode computes it.
func (ip *IPv4Header) Reply(localIP netaddr.IPv4Addr, payloadLen int) IPv4Header {
	reply := IPv4Header{
		ID:       ip.ID + 1,
		TTL:      DefaultTTL,
		Protocol: ip.Protocol,
		SrcIP:    localIP,
		DstIP:    ip.SrcIP,
	}
	reply.SetHeaderLen(SizeofIPv4)
	reply.Len = uint16(reply.HeaderLen() + payloadLen)
	return reply
}

// DecodeIPv4 validates the header and returns it with the datagram payload.
// The payload ends at the total length, trailing link-layer padding is
// excluded. The payload aliases data.
func DecodeIPv4(data []byte) (IPv4Header, []byte, error) {
	if len(data) < SizeofIPv4 {
		return IPv4Header{}, nil, ErrPacketTooShort
	}

	ip := IPv4Header{
		Version:  data[0] >> 4,
		IHL:      data[0] & 0x0f,
		TOS:      data[1],
		Len:      binary.BigEndian.Uint16(data[2:4]),
		ID:       binary.BigEndian.Uint16(data[4:6]),
		Flags:    data[6] >> 5,
		FragOff:  binary.BigEndian.Uint16(data[6:8]) & 0x1fff,
		TTL:      data[8],
		Protocol: data[9],
		Checksum: binary.BigEndian.Uint16(data[10:12]),
		SrcIP:    netaddr.IPv4Addr(binary.BigEndian.Uint32(data[12:16])),
		DstIP:    netaddr.IPv4Addr(binary.BigEndian.Uint32(data[16:20])),
	}

	if ip.Version != IPv4Version {
		return IPv4Header{}, nil, ErrPacketInvalidVersion
	}
	if ip.IHL < 5 {
		return IPv4Header{}, nil, ErrPacketInvalidHeaderLen
	}
	hdrLen := ip.HeaderLen()
	if len(data) < hdrLen {
		return IPv4Header{}, nil, ErrPacketTooShort
	}
	if Checksum(data[:hdrLen]) != 0 {
		return IPv4Header{}, nil, ErrPacketInvalidChecksum
	}
	if int(ip.Len) < hdrLen {
		return IPv4Header{}, nil, ErrPacketInvalidHeaderLen
	}
	if len(data) < int(ip.Len) {
		return IPv4Header{}, nil, ErrPacketTruncated
	}
	return ip, data[hdrLen:ip.Len], nil
}

// BuildIPv4 returns a new datagram of ip followed by payload.
func BuildIPv4(ip IPv4Header, payload []byte) []byte {
	pb := NewPacketBuilder(make([]byte, 0, ip.HeaderLen()+len(payload)))
	pb.PrependPayload(payload)
	pb.PrependIPv4(&ip)
	return pb.Bytes()
}
