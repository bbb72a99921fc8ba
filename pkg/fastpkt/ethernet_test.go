package fastpkt

import (
	"fmt"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/zxhio/tapresp/pkg/netaddr"
)

func TestDecodeEthernetTooShort(t *testing.T) {
	for n := 0; n < SizeofEthernet; n++ {
		t.Run(fmt.Sprintf("len_%d", n), func(t *testing.T) {
			_, payload, err := DecodeEthernet(make([]byte, n))
			assert.ErrorIs(t, err, ErrPacketTooShort)
			assert.Nil(t, payload)
		})
	}
}

func TestEthernetRoundTrip(t *testing.T) {
	testCases := []struct {
		eth     EthHeader
		payload []byte
		typ     EtherType
	}{
		{
			eth: EthHeader{
				HwDest:   netaddr.HwAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
				HwSource: netaddr.HwAddr{0xba, 0x14, 0x16, 0x19, 0x10, 0x1b},
				HwProto:  uint16(EtherTypeARP),
			},
			payload: make([]byte, SizeofARP),
			typ:     EtherTypeARP,
		},
		{
			eth: EthHeader{
				HwDest:   netaddr.HwAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
				HwSource: netaddr.HwAddr{0xba, 0x14, 0x16, 0x19, 0x10, 0x1b},
				HwProto:  uint16(EtherTypeIPv4),
			},
			payload: []byte{0x45, 0x00},
			typ:     EtherTypeIPv4,
		},
		{
			eth: EthHeader{
				HwDest:   netaddr.HwAddr{1, 2, 3, 4, 5, 6},
				HwSource: netaddr.HwAddr{6, 5, 4, 3, 2, 1},
				HwProto:  0x86dd,
			},
			payload: []byte{},
			typ:     EtherTypeUnknown,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.eth.String(), func(t *testing.T) {
			data := BuildEthernet(tc.eth, tc.payload)
			assert.Equal(t, SizeofEthernet+len(tc.payload), len(data))

			eth, payload, err := DecodeEthernet(data)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tc.eth, eth)
			assert.Equal(t, tc.payload, payload)
			assert.Equal(t, tc.typ, eth.Type())

			// Based on gopacket
			pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Lazy)
			layer := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
			assert.Equal(t, tc.eth.HwDest[:], []byte(layer.DstMAC))
			assert.Equal(t, tc.eth.HwSource[:], []byte(layer.SrcMAC))
			assert.Equal(t, tc.eth.HwProto, uint16(layer.EthernetType))
		})
	}
}

func TestEtherTypeString(t *testing.T) {
	assert.Equal(t, "IPv4", EtherTypeIPv4.String())
	assert.Equal(t, "ARP", EtherTypeARP.String())
	assert.Equal(t, "Unknown", EtherType(0x86dd).String())
}
