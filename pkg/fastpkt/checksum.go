package fastpkt

// Checksum computes the Internet checksum (RFC 1071) of b.
//
// Words are summed big-endian and an odd trailing byte is padded with zero.
// A buffer whose checksum field is already filled in sums to 0.
func Checksum(b []byte) uint16 {
	return ^foldChecksum(sumWords(b, 0))
}

func sumWords(b []byte, csum uint32) uint32 {
	n := len(b) &^ 1
	for i := 0; i < n; i += 2 {
		csum += uint32(b[i]) << 8
		csum += uint32(b[i+1])
	}
	if len(b)%2 == 1 {
		csum += uint32(b[n]) << 8
	}
	return csum
}

func foldChecksum(csum uint32) uint16 {
	// Add carry to the sum until it fits in 16 bits
	for csum > 0xffff {
		csum = (csum >> 16) + (csum & 0xffff)
	}
	return uint16(csum)
}
