package dibit

import (
	"fmt"

	"github.com/dbehnke/dmr-lc/pkg/bits"
)

// Dibit is a 2-bit demodulated 4FSK/QPSK symbol
type Dibit uint8

// The four symbols, named by bit pair and constellation amplitude
const (
	D00Plus1  Dibit = 0x0
	D01Plus3  Dibit = 0x1
	D10Minus1 Dibit = 0x2
	D11Minus3 Dibit = 0x3
)

// All lists every dibit in value order
var All = [4]Dibit{D00Plus1, D01Plus3, D10Minus1, D11Minus3}

var symbols = [4]int{+1, +3, -1, -3}

// Symbol returns the constellation amplitude (+3, +1, -1 or -3)
func (d Dibit) Symbol() int {
	return symbols[d.check()]
}

// Bit1 returns the high bit of the pair
func (d Dibit) Bit1() bool {
	return d.check()&0x2 != 0
}

// Bit2 returns the low bit of the pair
func (d Dibit) Bit2() bool {
	return d.check()&0x1 != 0
}

func (d Dibit) String() string {
	switch d {
	case D00Plus1:
		return "D00_PLUS_1"
	case D01Plus3:
		return "D01_PLUS_3"
	case D10Minus1:
		return "D10_MINUS_1"
	case D11Minus3:
		return "D11_MINUS_3"
	default:
		return fmt.Sprintf("DIBIT(%d)", uint8(d))
	}
}

// FromBits builds a dibit from its two bits
func FromBits(b1, b2 bool) Dibit {
	var d Dibit
	if b1 {
		d |= 0x2
	}
	if b2 {
		d |= 0x1
	}
	return d
}

func (d Dibit) check() Dibit {
	if d > D11Minus3 {
		panic(fmt.Sprintf("dibit: invalid value %d", uint8(d)))
	}
	return d
}

// Assemble applies carrier lock correction to each symbol and packs the
// corrected dibits into a bit field of 2*len(symbols) bits.
func Assemble(lock CarrierLock, symbols []Dibit) *bits.BitField {
	b := bits.New(len(symbols) * 2)
	for i, s := range symbols {
		c := lock.Correct(s)
		b.Set(i*2, c.Bit1())
		b.Set(i*2+1, c.Bit2())
	}
	return b
}
