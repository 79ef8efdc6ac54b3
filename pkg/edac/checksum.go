package edac

import "github.com/dbehnke/dmr-lc/pkg/bits"

// Embedded (voice superframe) full LC: 72 LC bits followed by a 5-bit checksum
const (
	EmbeddedLCBits    = 72
	EmbeddedFrameBits = EmbeddedLCBits + 5
)

// Checksum5 returns the sum of the nine LC octets modulo 31
func Checksum5(b *bits.BitField) byte {
	var sum int
	for i := 0; i < EmbeddedLCBits/8; i++ {
		sum += int(b.Byte(i))
	}
	return byte(sum % 31)
}

// IsValidChecksum5 reports whether a 77-bit embedded LC carries a matching
// checksum. Detection only; nothing is corrected.
func IsValidChecksum5(b *bits.BitField) bool {
	if b.Size() != EmbeddedFrameBits {
		return false
	}
	return uint64(Checksum5(b)) == b.Int(EmbeddedLCBits, EmbeddedFrameBits-1)
}

// SetChecksum5 writes the checksum for the LC bits already in b
func SetChecksum5(b *bits.BitField) {
	b.SetInt(EmbeddedLCBits, EmbeddedFrameBits-1, uint64(Checksum5(b)))
}
