package edac

import "github.com/dbehnke/dmr-lc/pkg/bits"

// RS(12,9,4) over GF(2^8) protecting the 72-bit full link control. The three
// parity bytes are XORed at the transmitter with a mask that depends on the
// burst carrying the LC.
const (
	RS129DataBytes   = 9
	RS129ParityBytes = 3
	RS129TotalBytes  = RS129DataBytes + RS129ParityBytes
	RS129FrameBits   = RS129TotalBytes * 8

	TerminatorMask byte = 0x99
	VoiceMask      byte = 0x96
)

// rs129Poly holds g(x) = (x+a)(x+a^2)(x+a^3) low order first
var rs129Poly = [4]byte{64, 56, 14, 1}

// ReedSolomon129 corrects a single symbol error in a 96-bit full LC frame.
// It holds no state; the zero value is ready to use from any goroutine.
type ReedSolomon129 struct{}

// Encode returns the 12-byte codeword for data with unmasked parity
func (ReedSolomon129) Encode(data [RS129DataBytes]byte) [RS129TotalBytes]byte {
	var parity [RS129ParityBytes]byte
	for _, d := range data {
		fb := d ^ parity[2]
		parity[2] = parity[1] ^ gfMul(rs129Poly[2], fb)
		parity[1] = parity[0] ^ gfMul(rs129Poly[1], fb)
		parity[0] = gfMul(rs129Poly[0], fb)
	}

	var cw [RS129TotalBytes]byte
	copy(cw[:], data[:])
	cw[9] = parity[2]
	cw[10] = parity[1]
	cw[11] = parity[0]
	return cw
}

// Syndromes evaluates the codeword at a, a^2 and a^3. Byte 0 is the highest
// order coefficient. All zero means a valid codeword.
func (ReedSolomon129) Syndromes(cw [RS129TotalBytes]byte) [RS129ParityBytes]byte {
	var s [RS129ParityBytes]byte
	for j := range s {
		root := gfPow(j + 1)
		var r byte
		for _, c := range cw {
			r = gfMul(r, root) ^ c
		}
		s[j] = r
	}
	return s
}

// Check reports whether the codeword is valid without correcting it
func (rs ReedSolomon129) Check(cw [RS129TotalBytes]byte) bool {
	return rs.Syndromes(cw) == [RS129ParityBytes]byte{}
}

// Decode corrects at most one symbol error in place. It returns the position
// of the corrected symbol (-1 when none was needed) and whether the codeword
// is valid. Two symbol errors are always detected.
func (rs ReedSolomon129) Decode(cw *[RS129TotalBytes]byte) (int, bool) {
	s := rs.Syndromes(*cw)
	if s == [RS129ParityBytes]byte{} {
		return -1, true
	}

	// A single error e at power p gives S_j = e*a^(j*p), so every syndrome is
	// non-zero and S2^2 = S1*S3.
	if s[0] == 0 || s[1] == 0 || s[2] == 0 {
		return -1, false
	}
	if gfMul(s[1], s[1]) != gfMul(s[0], s[2]) {
		return -1, false
	}

	p := int(gfLog[gfDiv(s[1], s[0])])
	if p >= RS129TotalBytes {
		return -1, false
	}

	pos := RS129TotalBytes - 1 - p
	cw[pos] ^= gfDiv(gfMul(s[0], s[0]), s[1])

	if !rs.Check(*cw) {
		return -1, false
	}
	return pos, true
}

// Correct validates a 96-bit full LC frame after removing mask from its parity.
// A single corrupted symbol is repaired in b, and each flipped bit is counted on
// the field. Uncorrectable frames and frames of any other length are left
// untouched and reported invalid.
func (rs ReedSolomon129) Correct(b *bits.BitField, mask byte) bool {
	if b.Size() != RS129FrameBits {
		return false
	}

	var cw [RS129TotalBytes]byte
	for i := range cw {
		cw[i] = b.Byte(i)
	}
	for i := RS129DataBytes; i < RS129TotalBytes; i++ {
		cw[i] ^= mask
	}

	received := cw
	pos, ok := rs.Decode(&cw)
	if !ok {
		return false
	}
	if pos >= 0 {
		diff := received[pos] ^ cw[pos]
		for bit := 0; bit < 8; bit++ {
			if diff&(0x80>>uint(bit)) != 0 {
				b.Correct(pos*8 + bit)
			}
		}
	}
	return true
}

// EncodeFrame writes the masked RS parity for the 72 LC bits already in b.
// b must be 96 bits long.
func (rs ReedSolomon129) EncodeFrame(b *bits.BitField, mask byte) {
	var data [RS129DataBytes]byte
	for i := range data {
		data[i] = b.Byte(i)
	}
	cw := rs.Encode(data)
	for i := RS129DataBytes; i < RS129TotalBytes; i++ {
		b.SetInt(i*8, i*8+7, uint64(cw[i]^mask))
	}
}
