package dibit

import (
	"fmt"
	"strings"
)

// CarrierLock is the lock condition of the demodulator PLL. A PLL that
// settles at +/-90 or 180 degrees rotates every symbol; Correct maps a
// symbol captured under that rotation back to the symbol that was sent.
// Abnormal lock is detected upstream from rotated sync patterns.
type CarrierLock uint8

const (
	Normal CarrierLock = iota
	Plus90
	Minus90
	Inverted
)

// AllLocks lists every lock state
var AllLocks = [4]CarrierLock{Normal, Plus90, Minus90, Inverted}

// correction[lock][received] = transmitted
var correction = [4][4]Dibit{
	Normal:   {D00Plus1, D01Plus3, D10Minus1, D11Minus3},
	Plus90:   {D10Minus1, D00Plus1, D11Minus3, D01Plus3},
	Minus90:  {D01Plus3, D11Minus3, D00Plus1, D10Minus1},
	Inverted: {D11Minus3, D10Minus1, D01Plus3, D00Plus1},
}

// Correct returns the symbol a correctly locked PLL would have produced.
// Plus90 and Minus90 are inverses of each other; Inverted is its own inverse.
func (l CarrierLock) Correct(d Dibit) Dibit {
	if l > Inverted {
		panic(fmt.Sprintf("dibit: invalid carrier lock %d", uint8(l)))
	}
	return correction[l][d.check()]
}

func (l CarrierLock) String() string {
	switch l {
	case Normal:
		return "NORMAL"
	case Plus90:
		return "PLUS_90"
	case Minus90:
		return "MINUS_90"
	case Inverted:
		return "INVERTED"
	default:
		return fmt.Sprintf("LOCK(%d)", uint8(l))
	}
}

// ParseCarrierLock accepts the String form (case-insensitive), "+90", "-90",
// "180" and the empty string, which means Normal.
func ParseCarrierLock(s string) (CarrierLock, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NORMAL", "0":
		return Normal, nil
	case "PLUS_90", "+90", "90":
		return Plus90, nil
	case "MINUS_90", "-90", "270":
		return Minus90, nil
	case "INVERTED", "180":
		return Inverted, nil
	default:
		return Normal, fmt.Errorf("unknown carrier lock %q", s)
	}
}
