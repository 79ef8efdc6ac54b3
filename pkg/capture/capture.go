package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dbehnke/dmr-lc/pkg/bits"
	"github.com/dbehnke/dmr-lc/pkg/dibit"
	"github.com/dbehnke/dmr-lc/pkg/edac"
	"gopkg.in/yaml.v3"
)

// Kind identifies which LC field a burst carries
type Kind string

const (
	KindFull       Kind = "full"       // 96-bit voice LC header
	KindTerminator Kind = "terminator" // 96-bit terminator with LC
	KindPIHeader   Kind = "pi"         // 96-bit privacy indicator header
	KindEmbedded   Kind = "embedded"   // 77-bit LC reassembled from a voice superframe
	KindShort      Kind = "short"      // 36-bit short LC from a CACH
)

// Size returns the bit length of the field for k, or 0 if k is unknown
func (k Kind) Size() int {
	switch k {
	case KindFull, KindTerminator, KindPIHeader:
		return edac.RS129FrameBits
	case KindEmbedded:
		return edac.EmbeddedFrameBits
	case KindShort:
		return edac.ShortLCFrameBits
	default:
		return 0
	}
}

// Burst is one captured LC field. Exactly one of Hex, Bits or Dibits holds
// the payload; Lock only applies to Dibits.
type Burst struct {
	Timestamp int64  `yaml:"timestamp"`
	Timeslot  int    `yaml:"timeslot"`
	Kind      Kind   `yaml:"kind"`
	Hex       string `yaml:"hex,omitempty"`
	Bits      string `yaml:"bits,omitempty"`
	Dibits    string `yaml:"dibits,omitempty"`
	Lock      string `yaml:"lock,omitempty"`
}

// Capture is a recorded sequence of bursts
type Capture struct {
	Name   string  `yaml:"name"`
	Source string  `yaml:"source,omitempty"`
	Bursts []Burst `yaml:"bursts"`
}

// ErrNoPayload is returned when a burst has no hex, bits or dibits
var ErrNoPayload = errors.New("burst has no payload")

// Load reads a capture file
func Load(path string) (*Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	defer func() { _ = f.Close() }()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a capture document
func Parse(r io.Reader) (*Capture, error) {
	var c Capture
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("failed to parse capture YAML: %w", err)
	}

	for i := range c.Bursts {
		if err := c.Bursts[i].Validate(); err != nil {
			return nil, fmt.Errorf("burst %d: %w", i, err)
		}
	}
	return &c, nil
}

// Write encodes c as YAML
func Write(w io.Writer, c *Capture) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode capture: %w", err)
	}
	return enc.Close()
}

// Validate checks the burst is well formed without decoding its payload
func (b Burst) Validate() error {
	if b.Kind.Size() == 0 {
		return fmt.Errorf("unknown kind %q", b.Kind)
	}
	if b.Timeslot != 0 && b.Timeslot != 1 {
		return fmt.Errorf("timeslot must be 0 or 1, got %d", b.Timeslot)
	}

	payloads := 0
	for _, p := range []string{b.Hex, b.Bits, b.Dibits} {
		if p != "" {
			payloads++
		}
	}
	switch {
	case payloads == 0:
		return ErrNoPayload
	case payloads > 1:
		return errors.New("only one of hex, bits or dibits may be set")
	}

	if b.Lock != "" && b.Dibits == "" {
		return errors.New("lock only applies to dibits")
	}
	if _, err := dibit.ParseCarrierLock(b.Lock); err != nil {
		return err
	}
	return nil
}

// BitField decodes the payload into a field of the size the kind requires.
// Dibit payloads are corrected for the burst's carrier lock first.
func (b Burst) BitField() (*bits.BitField, error) {
	size := b.Kind.Size()
	if size == 0 {
		return nil, fmt.Errorf("unknown kind %q", b.Kind)
	}

	switch {
	case b.Hex != "":
		return bits.FromHex(b.Hex, size)
	case b.Bits != "":
		f, err := bits.FromBinaryString(b.Bits)
		if err != nil {
			return nil, err
		}
		if f.Size() != size {
			return nil, fmt.Errorf("%s burst needs %d bits, got %d", b.Kind, size, f.Size())
		}
		return f, nil
	case b.Dibits != "":
		return b.assembleDibits(size)
	default:
		return nil, ErrNoPayload
	}
}

func (b Burst) assembleDibits(size int) (*bits.BitField, error) {
	lock, err := dibit.ParseCarrierLock(b.Lock)
	if err != nil {
		return nil, err
	}

	symbols, err := ParseDibits(b.Dibits)
	if err != nil {
		return nil, err
	}
	want := (size + 1) / 2
	if len(symbols) != want {
		return nil, fmt.Errorf("%s burst needs %d dibits, got %d", b.Kind, want, len(symbols))
	}

	assembled := dibit.Assemble(lock, symbols)
	if assembled.Size() == size {
		return assembled, nil
	}

	// odd lengths carry one pad bit in the final dibit
	f := bits.New(size)
	for i := 0; i < size; i++ {
		f.Set(i, assembled.Get(i))
	}
	return f, nil
}

// ParseDibits reads a string of dibit values 0-3. Whitespace, commas and
// underscores are ignored.
func ParseDibits(s string) ([]dibit.Dibit, error) {
	var out []dibit.Dibit
	for i, r := range s {
		switch {
		case r >= '0' && r <= '3':
			out = append(out, dibit.Dibit(r-'0'))
		case r == ' ' || r == ',' || r == '_' || r == '\t' || r == '\n':
		default:
			return nil, fmt.Errorf("invalid dibit %q at offset %d", r, i)
		}
	}
	return out, nil
}

// FormatDibits renders dibits as a compact digit string
func FormatDibits(ds []dibit.Dibit) string {
	var sb strings.Builder
	for _, d := range ds {
		sb.WriteByte('0' + byte(d))
	}
	return sb.String()
}
