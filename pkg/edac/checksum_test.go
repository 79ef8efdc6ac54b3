package edac

import (
	"testing"

	bitfield "github.com/dbehnke/dmr-lc/pkg/bits"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func embeddedFrame(lc []byte) *bitfield.BitField {
	b := bitfield.New(EmbeddedFrameBits)
	for i, v := range lc {
		b.SetInt(i*8, i*8+7, uint64(v))
	}
	SetChecksum5(b)
	return b
}

func TestChecksum5_KnownValue(t *testing.T) {
	// 0x0C+0x1C+0x31+0x20+0x01 = 122, 122 mod 31 = 29
	b := embeddedFrame([]byte{0x00, 0x00, 0x00, 0x00, 0x0C, 0x1C, 0x31, 0x20, 0x01})
	assert.Equal(t, byte(29), Checksum5(b))
	assert.True(t, IsValidChecksum5(b))

	b = embeddedFrame([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	// 9*255 = 2295, 2295 mod 31 = 1
	assert.Equal(t, byte(1), Checksum5(b))
	assert.True(t, IsValidChecksum5(b))
}

func TestChecksum5_SingleDataBitFlipDetected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lc := rapid.SliceOfN(rapid.Byte(), 9, 9).Draw(t, "lc")
		b := embeddedFrame(lc)
		assert.True(t, IsValidChecksum5(b))

		i := rapid.IntRange(0, EmbeddedLCBits-1).Draw(t, "bit")
		b.Set(i, !b.Get(i))
		assert.False(t, IsValidChecksum5(b), "flip of bit %d went undetected", i)
	})
}

func TestChecksum5_WrongLength(t *testing.T) {
	assert.False(t, IsValidChecksum5(bitfield.New(96)))
}

func shortFrame(data uint32) *bitfield.BitField {
	b := bitfield.New(ShortLCFrameBits)
	b.SetInt(0, ShortLCDataBits-1, uint64(data))
	SetCRC8(b)
	return b
}

func TestCRC8_ByteAlignedMatchesTable(t *testing.T) {
	// CRC-8/0x07 of a single 0x01 byte is 0x07
	b, _ := bitfield.FromBytes([]byte{0x01}, 8)
	assert.Equal(t, byte(0x07), CRC8(b, 8))

	b, _ = bitfield.FromBytes([]byte{0x12, 0x34, 0x56}, 24)
	assert.Equal(t, byte(0x7C), CRC8(b, 24))
}

func TestCRC8_ResidualZeroForIntactFrame(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := shortFrame(rapid.Uint32Range(0, 1<<ShortLCDataBits-1).Draw(t, "data"))
		assert.Zero(t, CRC8Residual(b))
	})
}

func TestCRC8_SingleBitFlipDetected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := shortFrame(rapid.Uint32Range(0, 1<<ShortLCDataBits-1).Draw(t, "data"))
		i := rapid.IntRange(0, ShortLCFrameBits-1).Draw(t, "bit")
		b.Set(i, !b.Get(i))
		assert.NotZero(t, CRC8Residual(b), "flip of bit %d went undetected", i)
	})
}

func TestCRC8_LengthOutsideFieldPanics(t *testing.T) {
	assert.Panics(t, func() { CRC8(bitfield.New(20), ShortLCFrameBits) })
}
