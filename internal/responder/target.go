package responder

import (
	"github.com/zxhio/tapresp/pkg/fastpkt"
	"github.com/zxhio/tapresp/pkg/netaddr"
)

type TargetType int

const (
	TargetTypeARPReply TargetType = iota + 1
	TargetTypeICMPEchoReply
)

var targetTypeToStr = map[TargetType]string{
	TargetTypeARPReply:      "arp-reply",
	TargetTypeICMPEchoReply: "icmp-echo-reply",
}

func (t TargetType) String() string {
	return targetTypeToStr[t]
}

// Verdict is the verdict of a packet the target has replied to.
func (t TargetType) Verdict() Verdict {
	switch t {
	case TargetTypeARPReply:
		return VerdictReplyARP
	case TargetTypeICMPEchoReply:
		return VerdictReplyICMP
	default:
		return VerdictDropPolicy
	}
}

// Target is a reply policy for the packets of one layer 3 protocol.
// Execute builds the reply into pkt.TxData and reports whether a reply is due.
// pkt.TxData must not overlap pkt.RxData.
type Target interface {
	TargetType() TargetType
	L3Proto() fastpkt.EtherType
	Execute(pkt *fastpkt.Packet) bool
}

// replyEthernet prepends the ethernet header answering pkt from hwAddr.
func replyEthernet(pb *fastpkt.PacketBuilder, pkt *fastpkt.Packet, hwAddr netaddr.HwAddr) {
	pb.PrependEthernet(&fastpkt.EthHeader{
		HwDest:   pkt.Eth.HwSource,
		HwSource: hwAddr,
		HwProto:  pkt.Eth.HwProto,
	})
}
