package netaddr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHwAddr(t *testing.T) {
	testCases := []struct {
		s     string
		addr  HwAddr
		valid bool
	}{
		{"ba:14:16:19:10:1b", HwAddr{0xba, 0x14, 0x16, 0x19, 0x10, 0x1b}, true},
		{"ff:ff:ff:ff:ff:ff", HwAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, true},
		{"ba-14-16-19-10-1b", HwAddr{0xba, 0x14, 0x16, 0x19, 0x10, 0x1b}, true},
		{"ba:14:16:19:10", HwAddr{}, false},
		{"00:00:00:00:fe:80:00:00", HwAddr{}, false},
		{"zz:14:16:19:10:1b", HwAddr{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.s, func(t *testing.T) {
			addr, err := ParseHwAddr(tc.s)
			assert.Equal(t, tc.valid, err == nil)
			if !tc.valid {
				return
			}
			assert.Equal(t, tc.addr, addr)

			data, err := json.Marshal(addr)
			if !assert.NoError(t, err) {
				return
			}
			var addr2 HwAddr
			assert.NoError(t, json.Unmarshal(data, &addr2))
			assert.Equal(t, 0, addr.Compare(addr2))
		})
	}

	assert.True(t, HwAddr{}.IsZero())
	assert.False(t, HwAddr{0xba, 0x14, 0x16, 0x19, 0x10, 0x1b}.IsZero())
}
