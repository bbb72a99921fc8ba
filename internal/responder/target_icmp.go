package responder

import (
	"github.com/zxhio/tapresp/pkg/fastpkt"
)

// TargetICMPEchoReply answers ICMP echo requests, the echo data is sent back
// unchanged. The destination address of the request is not checked.
type TargetICMPEchoReply struct {
	Identity
}

func (TargetICMPEchoReply) TargetType() TargetType     { return TargetTypeICMPEchoReply }
func (TargetICMPEchoReply) L3Proto() fastpkt.EtherType { return fastpkt.EtherTypeIPv4 }

func (tgt TargetICMPEchoReply) Execute(pkt *fastpkt.Packet) bool {
	if pkt.L4Proto != fastpkt.IPProtoICMP {
		return false
	}

	reply, ok := pkt.ICMP.Reply()
	if !ok {
		return false
	}

	pb := fastpkt.NewPacketBuilder(pkt.TxData)
	pb.PrependPayload(pkt.Payload)
	pb.PrependICMP(&reply)

	ip := pkt.IPv4.Reply(tgt.IPv4, pb.Len())
	pb.PrependIPv4(&ip)
	replyEthernet(pb, pkt, tgt.HwAddr)
	pkt.TxData = pb.Bytes()
	return true
}
