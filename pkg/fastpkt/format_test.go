package fastpkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	arpFrame := BuildEthernet(EthHeader{
		HwDest:   testLocalHwAddr,
		HwSource: testPeerHwAddr,
		HwProto:  uint16(EtherTypeARP),
	}, BuildARP(ARPHeader{
		HwAddrType:   ARPHwTypeEthernet,
		ProtAddrType: uint16(EtherTypeIPv4),
		HwAddrLen:    6,
		ProtAddrLen:  4,
		Operation:    ARPOperationRequest,
		SenderHwAddr: testPeerHwAddr,
		SenderIP:     testPeerIP,
		TargetIP:     testLocalIP,
	}))

	icmp := BuildICMP(ICMPHeader{Type: ICMPTypeEcho, ID: 0x1234, Seq: 1}, []byte{1, 2, 3, 4})
	icmpFrame := BuildEthernet(EthHeader{
		HwDest:   testLocalHwAddr,
		HwSource: testPeerHwAddr,
		HwProto:  uint16(EtherTypeIPv4),
	}, buildTestIPv4(nil, icmp))

	testCases := []struct {
		name string
		data []byte
		opts []FormatOpt
		str  string
	}{
		{
			name: "arp",
			data: arpFrame,
			str:  "ARP Request who-has 10.10.10.5 tell 10.10.10.50, length 28",
		},
		{
			name: "arp_ethernet",
			data: arpFrame,
			opts: []FormatOpt{WithFormatEthernet()},
			str:  "aa:bb:cc:dd:ee:ff > ba:14:16:19:10:1b, ethertype ARP (0x0806), length 42: Request who-has 10.10.10.5 tell 10.10.10.50, length 28",
		},
		{
			name: "icmp",
			data: icmpFrame,
			str:  "IPv4 10.10.10.50 > 10.10.10.5: ICMP echo request, id 4660, seq 1, length 12",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.str, Format(tc.data, tc.opts...))
		})
	}
}
