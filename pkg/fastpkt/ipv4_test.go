package fastpkt

import (
	"encoding/binary"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
)

func TestIPv4Checksum(t *testing.T) {
	testCases := []struct {
		headerLen int
		options   []layers.IPv4Option
	}{
		{
			headerLen: 20,
		},
		{
			headerLen: 20 + 1 + 3, // option(1) + padding(3)
			options: []layers.IPv4Option{{
				OptionType:   1, // NOP
				OptionLength: 0,
				OptionData:   nil,
			}},
		},
		{
			headerLen: 20 + 1 + 7, // option(1) + padding(7)
			options: []layers.IPv4Option{{
				OptionType:   7,                    // Record Route (RR)
				OptionLength: 7,                    // type(1) + length(1) + pointer(1) + IP(4*1)
				OptionData:   []byte{172, 0, 0, 1}, // IP *1
			}},
		},
	}

	for _, testCase := range testCases {
		layerIPv4 := testLayerIPv4
		layerIPv4.Protocol = layers.IPProtocolICMPv4
		layerIPv4.Options = testCase.options
		buf, err := serialize(&layerIPv4)
		if err != nil {
			t.Fatal(err)
		}

		// Based on gopacket
		pkt := gopacket.NewPacket(buf, layers.LayerTypeIPv4, gopacket.Default)
		ip, payload, err := DecodeIPv4(buf)
		if !assert.NoError(t, err) {
			continue
		}
		assert.Equal(t, pkt.Layers()[0].(*layers.IPv4).Checksum, ip.Checksum)
		assert.Equal(t, testCase.headerLen, ip.HeaderLen())
		assert.Empty(t, payload)
		assert.Equal(t, uint16(0), Checksum(buf[:ip.HeaderLen()]))
	}
}

func TestBuildIPv4(t *testing.T) {
	payload := []byte{0x08, 0x00, 0xf7, 0xff, 0x00, 0x00, 0x00, 0x00}
	ip := IPv4Header{
		TOS:      0x10,
		Len:      uint16(SizeofIPv4 + len(payload)),
		ID:       0x2b1c,
		Flags:    uint8(layers.IPv4DontFragment),
		FragOff:  0x0123,
		TTL:      64,
		Protocol: IPProtoICMP,
		SrcIP:    testPeerIP,
		DstIP:    testLocalIP,
	}
	ip.SetHeaderLen(SizeofIPv4)

	data := BuildIPv4(ip, payload)
	assert.Equal(t, SizeofIPv4+len(payload), len(data))
	assert.Equal(t, uint16(0), Checksum(data[:SizeofIPv4]))

	// Based on gopacket
	layerIPv4 := layers.IPv4{
		Version:    4,
		TOS:        0x10,
		Id:         0x2b1c,
		Flags:      layers.IPv4DontFragment,
		FragOffset: 0x0123,
		TTL:        64,
		Protocol:   layers.IPProtocolICMPv4,
		SrcIP:      testPeerIP.ToIP(),
		DstIP:      testLocalIP.ToIP(),
	}
	buf, err := serialize(&layerIPv4, gopacket.Payload(payload))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, buf, data)

	decoded, inner, err := DecodeIPv4(data)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, payload, inner)
	assert.Equal(t, uint8(IPv4Version), decoded.Version)
	assert.Equal(t, uint8(5), decoded.IHL)
	assert.Equal(t, uint8(layers.IPv4DontFragment), decoded.Flags)
	assert.Equal(t, uint16(0x0123), decoded.FragOff)
	assert.Equal(t, binary.BigEndian.Uint16(data[10:12]), decoded.Checksum)
}

func TestBuildIPv4VerbatimChecksum(t *testing.T) {
	ip := IPv4Header{Len: SizeofIPv4, TTL: 1, Checksum: 0xbeef}
	ip.SetHeaderLen(SizeofIPv4)

	data := BuildIPv4(ip, nil)
	assert.Equal(t, []byte{0xbe, 0xef}, data[10:12])
}

func buildTestIPv4(fn func(ip *IPv4Header), payload []byte) []byte {
	ip := IPv4Header{
		Len:      uint16(SizeofIPv4 + len(payload)),
		TTL:      64,
		Protocol: IPProtoICMP,
		SrcIP:    testPeerIP,
		DstIP:    testLocalIP,
	}
	ip.SetHeaderLen(SizeofIPv4)
	if fn != nil {
		fn(&ip)
	}
	return BuildIPv4(ip, payload)
}

// withRawIHL overwrites the IHL field of data and fixes up the checksum over
// the first 20 bytes.
func withRawIHL(data []byte, ihl uint8) []byte {
	data[0] = data[0]&0xf0 | ihl
	binary.BigEndian.PutUint16(data[10:12], 0)
	binary.BigEndian.PutUint16(data[10:12], Checksum(data[:SizeofIPv4]))
	return data
}

func TestEncodeIPv4HeaderLen(t *testing.T) {
	testCases := []struct {
		ihl       uint8
		headerLen int
	}{
		{0, 20},
		{4, 20},
		{5, 20},
		{6, 24},
		{15, 60},
		{20, 60},
	}

	for _, tc := range testCases {
		ip := IPv4Header{Version: IPv4Version, IHL: tc.ihl, TTL: 64, Protocol: IPProtoICMP}
		assert.Equal(t, tc.headerLen, ip.HeaderLen(), tc.ihl)
		ip.Len = uint16(ip.HeaderLen())

		data := BuildIPv4(ip, nil)
		if !assert.Len(t, data, tc.headerLen, tc.ihl) {
			continue
		}
		assert.Equal(t, tc.headerLen/4, int(data[0]&0x0f), tc.ihl)
		assert.Equal(t, uint16(0), Checksum(data), tc.ihl)

		decoded, _, err := DecodeIPv4(data)
		assert.NoError(t, err, tc.ihl)
		assert.Equal(t, tc.headerLen, decoded.HeaderLen(), tc.ihl)
	}
}

func TestDecodeIPv4Invalid(t *testing.T) {
	payload := make([]byte, 8)

	testCases := []struct {
		name string
		data []byte
		err  error
	}{
		{
			name: "too_short",
			data: buildTestIPv4(nil, payload)[:SizeofIPv4-1],
			err:  ErrPacketTooShort,
		},
		{
			name: "version",
			data: buildTestIPv4(func(ip *IPv4Header) { ip.Version = 6 }, payload),
			err:  ErrPacketInvalidVersion,
		},
		{
			name: "header_len",
			data: withRawIHL(buildTestIPv4(nil, payload), 4),
			err:  ErrPacketInvalidHeaderLen,
		},
		{
			name: "options_truncated",
			data: buildTestIPv4(func(ip *IPv4Header) { ip.IHL = 6 }, nil)[:SizeofIPv4],
			err:  ErrPacketTooShort,
		},
		{
			name: "checksum",
			data: func() []byte {
				data := buildTestIPv4(nil, payload)
				data[8]--
				return data
			}(),
			err: ErrPacketInvalidChecksum,
		},
		{
			name: "total_len_below_header",
			data: buildTestIPv4(func(ip *IPv4Header) { ip.Len = 10 }, payload),
			err:  ErrPacketInvalidHeaderLen,
		},
		{
			name: "truncated",
			data: buildTestIPv4(func(ip *IPv4Header) { ip.Len = 100 }, payload),
			err:  ErrPacketTruncated,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeIPv4(tc.data)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestDecodeIPv4Padding(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	data := append(buildTestIPv4(nil, payload), 0, 0, 0, 0)

	_, inner, err := DecodeIPv4(data)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, payload, inner)
}

func TestIPv4Reply(t *testing.T) {
	req := IPv4Header{
		Version:  4,
		IHL:      6,
		TOS:      0x10,
		Len:      0x54,
		ID:       0xffff,
		Flags:    2,
		TTL:      3,
		Protocol: IPProtoICMP,
		Checksum: 0x1234,
		SrcIP:    testPeerIP,
		DstIP:    testLocalIP,
	}

	reply := req.Reply(testLocalIP, 16)
	assert.Equal(t, IPv4Header{
		Version:  4,
		IHL:      5,
		Len:      SizeofIPv4 + 16,
		ID:       0,
		TTL:      DefaultTTL,
		Protocol: IPProtoICMP,
		SrcIP:    testLocalIP,
		DstIP:    testPeerIP,
	}, reply)
}
