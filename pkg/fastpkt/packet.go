package fastpkt

import (
	"github.com/pkg/errors"
	"github.com/zxhio/tapresp/pkg/netaddr"
)

const (
	SizeofEthernet = 14 // sizeof(struct ethhdr)
	SizeofARP      = 28 // sizeof(struct arphdr) + Ethernet/IPv4 addresses
	SizeofIPv4     = 20 // sizeof(struct iphdr)
	SizeofICMP     = 8  // sizeof(struct icmphdr)
)

var (
	ErrPacketTooShort            = errors.New("packet too short")
	ErrPacketTruncated           = errors.New("packet shorter than declared length")
	ErrPacketInvalidVersion      = errors.New("invalid ip version")
	ErrPacketInvalidHeaderLen    = errors.New("invalid ip header length")
	ErrPacketInvalidChecksum     = errors.New("invalid checksum")
	ErrPacketInvalidEthernetType = errors.New("invalid ethernet type")
	ErrPacketInvalidProtocol     = errors.New("invalid protocol")
)

// IsUnsupported reports whether err only means the packet carries a
// protocol that is not handled, as opposed to a malformed packet.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrPacketInvalidEthernetType) || errors.Is(err, ErrPacketInvalidProtocol)
}

// Packet is an Ethernet frame decoded layer by layer. Only the headers of
// the layers present are meaningful, see L3Proto and L4Proto.
type Packet struct {
	L3Proto EtherType
	L4Proto uint8

	L2Len uint8
	L3Len uint8
	L4Len uint8

	Eth  EthHeader
	ARP  ARPHeader
	IPv4 IPv4Header
	ICMP ICMPHeader

	// L3
	SrcIP netaddr.IPv4Addr
	DstIP netaddr.IPv4Addr

	// L4 payload, the ICMP message data
	Payload []byte

	RxData []byte // Raw data received from the network (read only)
	TxData []byte // Raw data to be sent to the network
}

var emptyPacket = Packet{}

func (pkt *Packet) Clear() {
	*pkt = emptyPacket
}

func (pkt *Packet) DecodeFromData(data []byte) error {
	eth, payload, err := DecodeEthernet(data)
	if err != nil {
		return err
	}

	pkt.RxData = data
	pkt.Eth = eth
	pkt.L2Len = uint8(SizeofEthernet)

	switch eth.Type() {
	case EtherTypeARP:
		return pkt.DecodePacketARP(payload)
	case EtherTypeIPv4:
		return pkt.DecodePacketIPv4(payload)
	default:
		return ErrPacketInvalidEthernetType
	}
}

func (pkt *Packet) DecodePacketARP(data []byte) error {
	arp, err := DecodeARP(data)
	if err != nil {
		return err
	}

	pkt.ARP = arp
	pkt.L3Proto = EtherTypeARP
	pkt.L3Len = uint8(SizeofARP)
	pkt.SrcIP = arp.SenderIP
	pkt.DstIP = arp.TargetIP
	return nil
}

func (pkt *Packet) DecodePacketIPv4(data []byte) error {
	ip, payload, err := DecodeIPv4(data)
	if err != nil {
		return err
	}

	pkt.IPv4 = ip
	pkt.L3Proto = EtherTypeIPv4
	pkt.L3Len = uint8(ip.HeaderLen())
	pkt.SrcIP = ip.SrcIP
	pkt.DstIP = ip.DstIP

	switch ip.Protocol {
	case IPProtoICMP:
		return pkt.DecodePacketICMP(payload)
	default:
		return ErrPacketInvalidProtocol
	}
}

func (pkt *Packet) DecodePacketICMP(data []byte) error {
	icmp, payload, err := DecodeICMP(data)
	if err != nil {
		return err
	}

	pkt.ICMP = icmp
	pkt.L4Proto = IPProtoICMP
	pkt.L4Len = uint8(SizeofICMP)
	pkt.Payload = payload
	return nil
}

func NewPacket(data []byte) (*Packet, error) {
	pkt := &Packet{}
	return pkt, pkt.DecodeFromData(data)
}
