package bits

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// BitField is a fixed-length, MSB-first sequence of bits taken from a single
// burst. Its length never changes after construction. Bits flipped through
// Correct are counted so callers can report decode confidence.
type BitField struct {
	bits      []bool
	corrected int
}

// New creates an all-zero bit field of the given size
func New(size int) *BitField {
	if size < 0 {
		panic(fmt.Sprintf("bits: negative size %d", size))
	}
	return &BitField{bits: make([]bool, size)}
}

// FromBytes unpacks the first size bits of data (MSB first)
func FromBytes(data []byte, size int) (*BitField, error) {
	if size < 0 || size > len(data)*8 {
		return nil, fmt.Errorf("bit size %d does not fit in %d bytes", size, len(data))
	}

	b := New(size)
	for i := 0; i < size; i++ {
		b.bits[i] = data[i/8]&(0x80>>uint(i%8)) != 0
	}
	return b, nil
}

// FromHex parses a hex string and keeps the first size bits
func FromHex(s string, size int) (*BitField, error) {
	data, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid hex bit field: %w", err)
	}
	return FromBytes(data, size)
}

// FromBinaryString parses a string of '0' and '1' characters. Spaces and
// underscores are ignored so long fields can be grouped for readability.
func FromBinaryString(s string) (*BitField, error) {
	var out []bool
	for i, c := range s {
		switch c {
		case '0':
			out = append(out, false)
		case '1':
			out = append(out, true)
		case ' ', '_':
		default:
			return nil, fmt.Errorf("invalid bit character %q at offset %d", c, i)
		}
	}
	return &BitField{bits: out}, nil
}

// Size returns the fixed number of bits
func (b *BitField) Size() int {
	return len(b.bits)
}

// Get returns the bit at index i
func (b *BitField) Get(i int) bool {
	return b.bits[i]
}

// Set assigns the bit at index i. Use it while building a field; decoders
// repair bits with Correct so that repairs are counted.
func (b *BitField) Set(i int, v bool) {
	b.bits[i] = v
}

// Correct flips the bit at index i and records the correction
func (b *BitField) Correct(i int) {
	b.bits[i] = !b.bits[i]
	b.corrected++
}

// CorrectedBitCount returns how many bits were flipped by error correction
func (b *BitField) CorrectedBitCount() int {
	return b.corrected
}

// Int reads bits [from, to] inclusive as an unsigned big-endian value
func (b *BitField) Int(from, to int) uint64 {
	if to < from || to-from >= 64 {
		panic(fmt.Sprintf("bits: invalid range [%d,%d]", from, to))
	}

	var v uint64
	for i := from; i <= to; i++ {
		v <<= 1
		if b.bits[i] {
			v |= 1
		}
	}
	return v
}

// SetInt writes v into bits [from, to] inclusive, MSB first
func (b *BitField) SetInt(from, to int, v uint64) {
	if to < from || to-from >= 64 {
		panic(fmt.Sprintf("bits: invalid range [%d,%d]", from, to))
	}

	for i := to; i >= from; i-- {
		b.bits[i] = v&1 == 1
		v >>= 1
	}
}

// Byte returns the 8 bits starting at bit offset 8*i. Bits past the end of
// the field read as zero.
func (b *BitField) Byte(i int) byte {
	var v byte
	for j := 0; j < 8; j++ {
		v <<= 1
		idx := i*8 + j
		if idx < len(b.bits) && b.bits[idx] {
			v |= 1
		}
	}
	return v
}

// Bytes packs the field into bytes, zero-padding the final byte
func (b *BitField) Bytes() []byte {
	out := make([]byte, (len(b.bits)+7)/8)
	for i := range out {
		out[i] = b.Byte(i)
	}
	return out
}

// Hex returns the packed field as upper-case hex
func (b *BitField) Hex() string {
	return strings.ToUpper(hex.EncodeToString(b.Bytes()))
}

// String renders the field as a string of 0 and 1 characters
func (b *BitField) String() string {
	var sb strings.Builder
	sb.Grow(len(b.bits))
	for _, v := range b.bits {
		if v {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Clone returns an independent copy, including the correction count
func (b *BitField) Clone() *BitField {
	c := &BitField{bits: make([]bool, len(b.bits)), corrected: b.corrected}
	copy(c.bits, b.bits)
	return c
}
