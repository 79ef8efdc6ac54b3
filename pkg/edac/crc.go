package edac

import (
	"fmt"

	"github.com/dbehnke/dmr-lc/pkg/bits"
)

// Short LC: 28 data bits followed by CRC-8 (x^8+x^2+x+1)
const (
	ShortLCDataBits  = 28
	ShortLCFrameBits = ShortLCDataBits + 8

	crc8Poly = 0x07
)

// CRC8 runs the first length bits of b through the CRC-8 register (initial
// value zero, no final XOR). Over the data bits it yields the CRC to send;
// over data+CRC it yields the residual, which is zero for an intact frame.
// The field is processed bit by bit because short LC is not byte aligned.
func CRC8(b *bits.BitField, length int) byte {
	if length < 0 || length > b.Size() {
		panic(fmt.Sprintf("edac: crc length %d outside %d-bit field", length, b.Size()))
	}

	var reg byte
	for i := 0; i < length; i++ {
		msb := reg&0x80 != 0
		reg <<= 1
		if msb != b.Get(i) {
			reg ^= crc8Poly
		}
	}
	return reg
}

// CRC8Residual is CRC8 over the full short LC prefix
func CRC8Residual(b *bits.BitField) byte {
	return CRC8(b, ShortLCFrameBits)
}

// SetCRC8 writes the CRC for the short LC data bits already in b
func SetCRC8(b *bits.BitField) {
	b.SetInt(ShortLCDataBits, ShortLCFrameBits-1, uint64(CRC8(b, ShortLCDataBits)))
}
