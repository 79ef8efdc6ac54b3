package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytes_MSBFirst(t *testing.T) {
	b, err := FromBytes([]byte{0xA5, 0x80}, 9)
	require.NoError(t, err)

	assert.Equal(t, 9, b.Size())
	assert.Equal(t, "101001011", b.String())
	assert.Equal(t, uint64(0xA5), b.Int(0, 7))
}

func TestFromBytes_SizeTooLarge(t *testing.T) {
	_, err := FromBytes([]byte{0x00}, 9)
	assert.Error(t, err)
}

func TestFromHex(t *testing.T) {
	b, err := FromHex("0102", 16)
	require.NoError(t, err)
	assert.Equal(t, "0102", b.Hex())

	_, err = FromHex("zz", 8)
	assert.Error(t, err)
}

func TestFromBinaryString(t *testing.T) {
	b, err := FromBinaryString("1010 0000_1")
	require.NoError(t, err)
	assert.Equal(t, 9, b.Size())
	assert.Equal(t, "A080", b.Hex())

	_, err = FromBinaryString("10x1")
	assert.Error(t, err)
}

func TestSetIntAndInt(t *testing.T) {
	b := New(96)
	b.SetInt(24, 47, 0x123456)
	b.SetInt(2, 7, 0x3F)

	assert.Equal(t, uint64(0x123456), b.Int(24, 47))
	assert.Equal(t, uint64(0x3F), b.Int(2, 7))
	assert.Equal(t, uint64(0), b.Int(0, 1))
	assert.Equal(t, byte(0x12), b.Byte(3))
}

func TestCorrect_CountsFlips(t *testing.T) {
	b := New(8)
	b.Correct(0)
	b.Correct(7)

	assert.True(t, b.Get(0))
	assert.True(t, b.Get(7))
	assert.Equal(t, 2, b.CorrectedBitCount())

	b.Set(1, true)
	assert.Equal(t, 2, b.CorrectedBitCount(), "Set must not count as a correction")
}

func TestByte_PastEndReadsZero(t *testing.T) {
	b, err := FromBinaryString("11111")
	require.NoError(t, err)
	assert.Equal(t, byte(0xF8), b.Byte(0))
	assert.Equal(t, []byte{0xF8}, b.Bytes())
}

func TestClone_Independent(t *testing.T) {
	b := New(4)
	b.Correct(1)
	c := b.Clone()
	c.Set(2, true)

	assert.False(t, b.Get(2))
	assert.Equal(t, 1, c.CorrectedBitCount())
}

func TestInt_InvalidRangePanics(t *testing.T) {
	b := New(8)
	assert.Panics(t, func() { b.Int(5, 2) })
}
