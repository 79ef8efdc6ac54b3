package testhelpers

import (
	"github.com/dbehnke/dmr-lc/pkg/bits"
	"github.com/dbehnke/dmr-lc/pkg/edac"
)

// FullLC returns an unsealed 96-bit full LC with FLCO and FID set. Fill in
// payload bits with SetInt, then call SealFull.
func FullLC(flco, fid uint8) *bits.BitField {
	b := bits.New(edac.RS129FrameBits)
	b.SetInt(2, 7, uint64(flco))
	b.SetInt(8, 15, uint64(fid))
	return b
}

// SealFull writes RS(12,9,4) parity under mask
func SealFull(b *bits.BitField, mask byte) *bits.BitField {
	edac.ReedSolomon129{}.EncodeFrame(b, mask)
	return b
}

// EmbeddedLC returns an unsealed 77-bit embedded LC with FLCO and FID set
func EmbeddedLC(flco, fid uint8) *bits.BitField {
	b := bits.New(edac.EmbeddedFrameBits)
	b.SetInt(2, 7, uint64(flco))
	b.SetInt(8, 15, uint64(fid))
	return b
}

// SealEmbedded writes the 5-bit checksum
func SealEmbedded(b *bits.BitField) *bits.BitField {
	edac.SetChecksum5(b)
	return b
}

// ShortLC returns an unsealed 36-bit short LC with the SLCO set
func ShortLC(slco uint8) *bits.BitField {
	b := bits.New(edac.ShortLCFrameBits)
	b.SetInt(0, 3, uint64(slco))
	return b
}

// SealShort writes the CRC-8
func SealShort(b *bits.BitField) *bits.BitField {
	edac.SetCRC8(b)
	return b
}

// SealEncryptionParameters writes the inner CRC-8 over bits 0-63 into bits
// 64-71, then seals the frame with the outer code for its length.
func SealEncryptionParameters(b *bits.BitField, mask byte) *bits.BitField {
	b.SetInt(64, 71, uint64(edac.CRC8(b, 64)))
	switch b.Size() {
	case edac.RS129FrameBits:
		return SealFull(b, mask)
	case edac.EmbeddedFrameBits:
		return SealEmbedded(b)
	}
	return b
}

// FlipBits inverts the given bit positions
func FlipBits(b *bits.BitField, positions ...int) *bits.BitField {
	for _, i := range positions {
		b.Set(i, !b.Get(i))
	}
	return b
}
