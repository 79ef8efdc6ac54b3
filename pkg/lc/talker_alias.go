package lc

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dbehnke/dmr-lc/pkg/bits"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// AliasFormat is the character coding of a talker alias
type AliasFormat uint8

const (
	AliasFormat7Bit AliasFormat = iota
	AliasFormatISO8
	AliasFormatUTF8
	AliasFormatUTF16BE
)

func (f AliasFormat) String() string {
	switch f {
	case AliasFormat7Bit:
		return "7-BIT"
	case AliasFormatISO8:
		return "ISO-8"
	case AliasFormatUTF8:
		return "UTF-8"
	case AliasFormatUTF16BE:
		return "UTF-16BE"
	default:
		return fmt.Sprintf("FORMAT(%d)", uint8(f))
	}
}

const (
	aliasHeaderData = 23
	aliasBlockData  = 16
	aliasLastBit    = 71
)

// TalkerAliasHeader opens a talker alias and carries its first characters
type TalkerAliasHeader struct {
	fullHeader
}

func (m *TalkerAliasHeader) Format() AliasFormat { return AliasFormat(m.field(16, 17)) }

// Length is the alias length in characters
func (m *TalkerAliasHeader) Length() int { return int(m.field(18, 22)) }

// payload is the header's share of the alias bit stream. The 8 and 16 bit
// codings skip the first data bit so characters stay octet aligned.
func (m *TalkerAliasHeader) payload() []bool {
	start := aliasHeaderData
	if m.Format() != AliasFormat7Bit {
		start++
	}
	return span(m.bits, start, aliasLastBit)
}

func (m *TalkerAliasHeader) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " FORMAT:%s LENGTH:%d ALIAS:%s", m.Format(), m.Length(), AssembleTalkerAlias(m))
	return sb.String()
}

// TalkerAliasBlock continues a talker alias
type TalkerAliasBlock struct {
	fullHeader
}

// Block returns the block number, 1 through 3
func (m *TalkerAliasBlock) Block() int {
	switch m.opcode {
	case FullStandardTalkerAliasBlock2, FullHyteraTalkerAliasBlock2:
		return 2
	case FullStandardTalkerAliasBlock3, FullHyteraTalkerAliasBlock3:
		return 3
	default:
		return 1
	}
}

func (m *TalkerAliasBlock) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " DATA:%X", packBits(span(m.bits, aliasBlockData, aliasLastBit)))
	return sb.String()
}

// AssembleTalkerAlias decodes the alias carried by a header and whatever
// blocks have been received so far. Blocks may be passed in any order; a
// missing block truncates the alias at the gap.
func AssembleTalkerAlias(header *TalkerAliasHeader, blocks ...*TalkerAliasBlock) string {
	sorted := append([]*TalkerAliasBlock(nil), blocks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Block() < sorted[j].Block() })

	stream := header.payload()
	next := 1
	for _, b := range sorted {
		if b.Block() != next {
			break
		}
		stream = append(stream, span(b.bits, aliasBlockData, aliasLastBit)...)
		next++
	}
	return decodeAlias(header.Format(), header.Length(), stream)
}

// CapacityMaxTalkerAlias is the Capacity Max alias header. The alias always
// starts on an octet boundary at bit 24.
type CapacityMaxTalkerAlias struct {
	fullHeader
}

func (m *CapacityMaxTalkerAlias) Format() AliasFormat { return AliasFormat(m.field(16, 17)) }
func (m *CapacityMaxTalkerAlias) Length() int         { return int(m.field(18, 22)) }

func (m *CapacityMaxTalkerAlias) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " FORMAT:%s LENGTH:%d ALIAS:%s", m.Format(), m.Length(), AssembleCapacityMaxAlias(m))
	return sb.String()
}

// CapacityMaxTalkerAliasContinuation carries seven more alias octets
type CapacityMaxTalkerAliasContinuation struct {
	fullHeader
}

func (m *CapacityMaxTalkerAliasContinuation) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " DATA:%X", packBits(span(m.bits, aliasBlockData, aliasLastBit)))
	return sb.String()
}

// AssembleCapacityMaxAlias decodes a Capacity Max alias from its header and
// the continuations that followed it, in arrival order.
func AssembleCapacityMaxAlias(header *CapacityMaxTalkerAlias, continuations ...*CapacityMaxTalkerAliasContinuation) string {
	stream := span(header.bits, 24, aliasLastBit)
	for _, c := range continuations {
		stream = append(stream, span(c.bits, aliasBlockData, aliasLastBit)...)
	}
	return decodeAlias(header.Format(), header.Length(), stream)
}

func decodeAlias(format AliasFormat, length int, stream []bool) string {
	var text string
	switch format {
	case AliasFormat7Bit:
		var sb strings.Builder
		for i := 0; i+7 <= len(stream) && i/7 < length; i += 7 {
			sb.WriteByte(byte(packBits(stream[i : i+7])[0] >> 1))
		}
		text = sb.String()
	case AliasFormatISO8:
		raw := packBits(stream)
		if len(raw) > length {
			raw = raw[:length]
		}
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return ""
		}
		text = string(out)
	case AliasFormatUTF8:
		raw := packBits(stream)
		for len(raw) > 0 && !utf8.Valid(raw) {
			raw = raw[:len(raw)-1]
		}
		text = truncateRunes(string(raw), length)
	case AliasFormatUTF16BE:
		raw := packBits(stream)
		raw = raw[:len(raw)&^1]
		if len(raw) > 2*length {
			raw = raw[:2*length]
		}
		out, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return ""
		}
		text = string(out)
	}
	return strings.TrimRight(text, "\x00 ")
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// span copies bits from..to inclusive, clipped to the field size
func span(b *bits.BitField, from, to int) []bool {
	if to >= b.Size() {
		to = b.Size() - 1
	}
	var out []bool
	for i := from; i <= to; i++ {
		out = append(out, b.Get(i))
	}
	return out
}

// packBits packs MSB first; a trailing partial octet is dropped unless it is
// the only one.
func packBits(stream []bool) []byte {
	n := len(stream) / 8
	if n == 0 && len(stream) > 0 {
		n = 1
	}
	out := make([]byte, n)
	for i := 0; i < n*8 && i < len(stream); i++ {
		if stream[i] {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}
