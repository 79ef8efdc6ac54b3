package lc

import (
	"testing"

	"github.com/dbehnke/dmr-lc/pkg/bits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sevenBit(s string) []bool {
	var out []bool
	for _, c := range []byte(s) {
		for i := 6; i >= 0; i-- {
			out = append(out, c&(1<<i) != 0)
		}
	}
	return out
}

func octets(data []byte) []bool {
	var out []bool
	for _, c := range data {
		for i := 7; i >= 0; i-- {
			out = append(out, c&(1<<i) != 0)
		}
	}
	return out
}

// fill writes as much of stream as fits in bits from..71 and returns the rest
func fill(b *bits.BitField, from int, stream []bool) []bool {
	for i := from; i <= 71 && len(stream) > 0; i++ {
		b.Set(i, stream[0])
		stream = stream[1:]
	}
	return stream
}

// aliasMessages splits stream across a header and as many blocks as needed
func aliasMessages(t *testing.T, header Opcode, format AliasFormat, length int, stream []bool) (*TalkerAliasHeader, []*TalkerAliasBlock) {
	t.Helper()
	b := fullFrame(header)
	b.SetInt(16, 17, uint64(format))
	b.SetInt(18, 22, uint64(length))
	start := aliasHeaderData
	if format != AliasFormat7Bit {
		start++
	}
	stream = fill(b, start, stream)
	h, ok := decodeFull(t, b).(*TalkerAliasHeader)
	require.True(t, ok)

	var blocks []*TalkerAliasBlock
	for n := 1; len(stream) > 0; n++ {
		require.LessOrEqual(t, n, 3, "alias does not fit")
		blk := fullFrame(header + Opcode(n))
		stream = fill(blk, aliasBlockData, stream)
		m, ok := decodeFull(t, blk).(*TalkerAliasBlock)
		require.True(t, ok)
		assert.Equal(t, n, m.Block())
		blocks = append(blocks, m)
	}
	return h, blocks
}

func TestTalkerAlias_SevenBit(t *testing.T) {
	h, blocks := aliasMessages(t, FullStandardTalkerAliasHeader, AliasFormat7Bit, 10, sevenBit("W1ABC-TEST"))
	require.Len(t, blocks, 1)

	assert.Equal(t, AliasFormat7Bit, h.Format())
	assert.Equal(t, 10, h.Length())
	assert.Equal(t, "W1ABC-TEST", AssembleTalkerAlias(h, blocks...))
	assert.Equal(t, "W1ABC-T", AssembleTalkerAlias(h), "header alone carries seven characters")
}

func TestTalkerAlias_ISO8(t *testing.T) {
	latin1 := []byte{'M', 0xFC, 'l', 'l', 'e', 'r', ' ', 'D', 'L', '1', 'A', 'B', 'C'}
	h, blocks := aliasMessages(t, FullHyteraTalkerAliasHeader, AliasFormatISO8, len(latin1), octets(latin1))
	require.Len(t, blocks, 1)
	assert.Equal(t, FullHyteraTalkerAliasBlock1, blocks[0].Opcode())
	assert.Equal(t, "Müller DL1ABC", AssembleTalkerAlias(h, blocks...))
}

func TestTalkerAlias_UTF8(t *testing.T) {
	text := "abcdeé wörld ✓"
	h, blocks := aliasMessages(t, FullStandardTalkerAliasHeader, AliasFormatUTF8, 14, octets([]byte(text)))
	require.Len(t, blocks, 2)
	assert.Equal(t, text, AssembleTalkerAlias(h, blocks...))

	// the header ends inside "é"; the partial rune is dropped
	assert.Equal(t, "abcde", AssembleTalkerAlias(h))
}

func TestTalkerAlias_UTF16BE(t *testing.T) {
	data := []byte{0x03, 0xA9, 0x00, 'x', 0x00, '7'}
	h, blocks := aliasMessages(t, FullStandardTalkerAliasHeader, AliasFormatUTF16BE, 3, octets(data))
	assert.Empty(t, blocks)
	assert.Equal(t, "Ωx7", AssembleTalkerAlias(h))
}

func TestTalkerAlias_BlockOrderAndGaps(t *testing.T) {
	text := "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123"
	h, blocks := aliasMessages(t, FullStandardTalkerAliasHeader, AliasFormat7Bit, len(text), sevenBit(text))
	require.Len(t, blocks, 3)

	assert.Equal(t, text, AssembleTalkerAlias(h, blocks[2], blocks[0], blocks[1]))
	assert.Equal(t, text[:7], AssembleTalkerAlias(h, blocks[1], blocks[2]), "missing block 1 truncates")
	assert.Equal(t, text[:15], AssembleTalkerAlias(h, blocks[0], blocks[2]), "missing block 2 truncates")
	assert.Contains(t, h.String(), "ALIAS:ABCDEFG")
}

func TestCapacityMaxTalkerAlias(t *testing.T) {
	stream := octets([]byte("KILOWATT1"))

	b := fullFrame(FullCapacityMaxTalkerAlias)
	b.SetInt(16, 17, uint64(AliasFormatISO8))
	b.SetInt(18, 22, 9)
	stream = fill(b, 24, stream)
	header := decodeFull(t, b).(*CapacityMaxTalkerAlias)

	c := fullFrame(FullCapacityMaxTalkerAliasContinuation)
	fill(c, aliasBlockData, stream)
	cont := decodeFull(t, c).(*CapacityMaxTalkerAliasContinuation)

	assert.Equal(t, 9, header.Length())
	assert.Equal(t, "KILOWA", AssembleCapacityMaxAlias(header))
	assert.Equal(t, "KILOWATT1", AssembleCapacityMaxAlias(header, cont))
	assert.Contains(t, cont.String(), "DATA:545431")
}
