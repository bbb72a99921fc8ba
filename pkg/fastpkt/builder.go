package fastpkt

import "encoding/binary"

// PacketBuilder allocates memory from end to beginning for building network
// packets: the innermost payload is written first, every header is then
// prepended in front of what is already there.
type PacketBuilder struct {
	buf      []byte
	writePos int
}

// NewPacketBuilder creates a new packet builder over the capacity of data
func NewPacketBuilder(data []byte) *PacketBuilder {
	cap := cap(data)
	return &PacketBuilder{buf: data[:cap], writePos: cap}
}

// Reset reinitializes the builder
func (pb *PacketBuilder) Reset() { pb.writePos = cap(pb.buf) }

func (pb *PacketBuilder) Bytes() []byte { return pb.buf[pb.writePos:] }
func (pb *PacketBuilder) Len() int      { return cap(pb.buf) - pb.writePos }

// Available is the room left in front of the bytes already written.
func (pb *PacketBuilder) Available() int { return pb.writePos }

func (pb *PacketBuilder) alloc(n int) []byte {
	pb.writePos -= n
	return pb.buf[pb.writePos:]
}

func (pb *PacketBuilder) PrependPayload(data []byte) {
	copy(pb.alloc(len(data)), data)
}

func (pb *PacketBuilder) PrependEthernet(eth *EthHeader) {
	eth.Encode(pb.alloc(SizeofEthernet))
}

func (pb *PacketBuilder) PrependARP(arp *ARPHeader) {
	arp.Encode(pb.alloc(SizeofARP))
}

// PrependIPv4 writes the header, options space included. Len is not
// derived from the builder, callers set it.
func (pb *PacketBuilder) PrependIPv4(ip *IPv4Header) {
	ip.Encode(pb.alloc(ip.HeaderLen()))
}

// PrependICMP writes the header in front of the message data already in
// the builder. A zero Checksum is computed over header and data.
func (pb *PacketBuilder) PrependICMP(icmp *ICMPHeader) {
	b := pb.alloc(SizeofICMP)
	icmp.Encode(b)
	if icmp.Checksum == 0 {
		binary.BigEndian.PutUint16(b[2:4], Checksum(b))
	}
}
