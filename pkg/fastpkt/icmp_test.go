package fastpkt

import (
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
)

func TestICMPChecksum(t *testing.T) {
	testCases := []struct {
		payload []byte
	}{
		{},
		{payload: []byte{0x01, 0x02, 0x03}},
		{payload: []byte{0x01, 0x02, 0x03, 0x04}},
		{payload: []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}},
		{payload: []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a}},
	}

	layerICMPv4 := &layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0), Id: 0x1234, Seq: 1}
	for _, testCase := range testCases {
		buf, err := serialize(layerICMPv4, gopacket.Payload(testCase.payload))
		if err != nil {
			t.Fatalf("serialize: %v", err)
		}

		data := BuildICMP(ICMPHeader{Type: ICMPTypeEcho, ID: 0x1234, Seq: 1}, testCase.payload)
		assert.Equal(t, buf, data)
		assert.Equal(t, uint16(0), Checksum(data))

		pkt := gopacket.NewPacket(buf, layers.LayerTypeICMPv4, gopacket.Default)
		icmp, payload, err := DecodeICMP(buf)
		if !assert.NoError(t, err) {
			continue
		}
		assert.Equal(t, pkt.Layers()[0].(*layers.ICMPv4).Checksum, icmp.Checksum)
		assert.Equal(t, len(testCase.payload), len(payload))
	}
}

func TestBuildICMPFullHeader(t *testing.T) {
	data := BuildICMP(ICMPHeader{Type: ICMPTypeEcho, ID: 0x1234, Seq: 0x0001}, nil)
	assert.Equal(t, []byte{0x08, 0x00, 0xe5, 0xca, 0x12, 0x34, 0x00, 0x01}, data)
}

func TestDecodeICMPTooShort(t *testing.T) {
	_, _, err := DecodeICMP([]byte{8, 0, 0, 0, 0x12, 0x34, 0x00})
	assert.ErrorIs(t, err, ErrPacketTooShort)
}

func TestICMPReply(t *testing.T) {
	testCases := []struct {
		req   ICMPHeader
		reply ICMPHeader
		ok    bool
	}{
		{
			req:   ICMPHeader{Type: ICMPTypeEcho, Code: 0, Checksum: 0xabcd, ID: 0x1234, Seq: 0x0001},
			reply: ICMPHeader{Type: ICMPTypeEchoReply, Code: 0, ID: 0x1234, Seq: 0x0001},
			ok:    true,
		},
		{req: ICMPHeader{Type: ICMPTypeEchoReply, ID: 1, Seq: 1}},
		{req: ICMPHeader{Type: 3, Code: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.req.Type.String(), func(t *testing.T) {
			reply, ok := tc.req.Reply()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.reply, reply)
		})
	}
}

func TestICMPKind(t *testing.T) {
	testCases := []struct {
		typ  ICMPType
		kind ICMPType
	}{
		{ICMPTypeEchoReply, ICMPTypeEchoReply},
		{ICMPTypeEcho, ICMPTypeEcho},
		{ICMPType(3), ICMPTypeUnknown},
		{ICMPType(13), ICMPTypeUnknown},
	}

	for _, tc := range testCases {
		icmp := ICMPHeader{Type: tc.typ}
		assert.Equal(t, tc.kind, icmp.Kind())
		assert.Equal(t, tc.kind.String(), icmp.Kind().String())
	}
}
