package responder

import (
	"github.com/zxhio/tapresp/pkg/fastpkt"
)

// TargetARPReply answers ARP requests asking for the identity's address.
type TargetARPReply struct {
	Identity
}

func (TargetARPReply) TargetType() TargetType     { return TargetTypeARPReply }
func (TargetARPReply) L3Proto() fastpkt.EtherType { return fastpkt.EtherTypeARP }

func (tgt TargetARPReply) Execute(pkt *fastpkt.Packet) bool {
	reply, ok := pkt.ARP.Reply(tgt.HwAddr, tgt.IPv4)
	if !ok {
		return false
	}

	pb := fastpkt.NewPacketBuilder(pkt.TxData)
	pb.PrependARP(&reply)
	replyEthernet(pb, pkt, tgt.HwAddr)
	pkt.TxData = pb.Bytes()
	return true
}
