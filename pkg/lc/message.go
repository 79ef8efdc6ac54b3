package lc

import (
	"fmt"
	"strings"

	"github.com/dbehnke/dmr-lc/pkg/bits"
)

// Message is a decoded link control message. Validity is fixed when the
// message is built and never changes afterwards.
type Message interface {
	Opcode() Opcode
	Bits() *bits.BitField
	Timestamp() int64
	Timeslot() int
	IsValid() bool
	String() string
}

// FullMessage is a message carried in a 72-bit full LC
type FullMessage interface {
	Message
	FLCO() uint8
	FID() Vendor
	IsProtected() bool
}

// ShortMessage is a message carried in a 36-bit short LC
type ShortMessage interface {
	Message
	SLCO() uint8
}

type header struct {
	bits      *bits.BitField
	opcode    Opcode
	timestamp int64
	timeslot  int
	valid     bool
}

func (h *header) Opcode() Opcode       { return h.opcode }
func (h *header) Bits() *bits.BitField { return h.bits }
func (h *header) Timestamp() int64     { return h.timestamp }
func (h *header) Timeslot() int        { return h.timeslot }
func (h *header) IsValid() bool        { return h.valid }

// field reads an inclusive bit range, yielding zero when the frame is too
// short to hold it so that undersized frames still decode.
func (h *header) field(from, to int) uint64 {
	if to >= h.bits.Size() {
		return 0
	}
	return h.bits.Int(from, to)
}

func (h *header) flag(i int) bool {
	return i < h.bits.Size() && h.bits.Get(i)
}

// prefix renders the parts common to every message
func (h *header) prefix() *strings.Builder {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TS%d ", h.timeslot+1)
	if !h.valid {
		sb.WriteString("[CRC-ERROR] ")
	}
	sb.WriteString(h.opcode.String())
	return &sb
}

type fullHeader struct {
	header
}

func (m *fullHeader) FLCO() uint8       { return uint8(m.field(flcoStart, flcoEnd)) }
func (m *fullHeader) FID() Vendor       { return Vendor(m.field(fidStart, fidEnd)) }
func (m *fullHeader) IsProtected() bool { return m.flag(0) }

type shortHeader struct {
	header
}

func (m *shortHeader) SLCO() uint8 { return uint8(m.field(slcoStart, slcoEnd)) }

// ServiceOptions is the 8-bit service options field of a voice channel user
// message
type ServiceOptions uint8

func (s ServiceOptions) Emergency() bool         { return s&0x80 != 0 }
func (s ServiceOptions) Encrypted() bool         { return s&0x40 != 0 }
func (s ServiceOptions) Broadcast() bool         { return s&0x08 != 0 }
func (s ServiceOptions) OpenVoiceCallMode() bool { return s&0x04 != 0 }
func (s ServiceOptions) Priority() int           { return int(s & 0x03) }

func (s ServiceOptions) String() string {
	var parts []string
	if s.Emergency() {
		parts = append(parts, "EMERGENCY")
	}
	if s.Encrypted() {
		parts = append(parts, "ENCRYPTED")
	}
	if s.Broadcast() {
		parts = append(parts, "BROADCAST")
	}
	if s.OpenVoiceCallMode() {
		parts = append(parts, "OVCM")
	}
	if p := s.Priority(); p > 0 {
		parts = append(parts, fmt.Sprintf("PRIORITY:%d", p))
	}
	return strings.Join(parts, " ")
}

func withOptions(sb *strings.Builder, s ServiceOptions) string {
	if opts := s.String(); opts != "" {
		sb.WriteString(" ")
		sb.WriteString(opts)
	}
	return sb.String()
}
