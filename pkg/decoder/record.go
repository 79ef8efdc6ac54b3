package decoder

import (
	"time"

	"github.com/dbehnke/dmr-lc/pkg/lc"
)

// Record is the flat form of a Result shared by the storage, MQTT and web
// outputs. Addresses are zero when the message carries none.
type Record struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	Timestamp     int64     `json:"timestamp"`
	Timeslot      int       `json:"timeslot"`
	Kind          string    `json:"kind"`
	Opcode        string    `json:"opcode"`
	Vendor        string    `json:"vendor,omitempty"`
	Valid         bool      `json:"valid"`
	CorrectedBits int       `json:"corrected_bits"`
	Source        uint32    `json:"source,omitempty"`
	Destination   uint32    `json:"destination,omitempty"`
	Group         bool      `json:"group"`
	Callsign      string    `json:"callsign,omitempty"`
	Alias         string    `json:"alias,omitempty"`
	Text          string    `json:"text"`
	Bits          string    `json:"bits"`
	DecodedAt     time.Time `json:"decoded_at"`
}

type grouped interface {
	GroupAddress() uint32
}

type targeted interface {
	TargetAddress() uint32
}

// NewRecord flattens r
func NewRecord(r Result) Record {
	msg := r.Message
	rec := Record{
		ID:            r.ID,
		SessionID:     r.SessionID,
		Timestamp:     msg.Timestamp(),
		Timeslot:      msg.Timeslot(),
		Kind:          string(r.Kind),
		Opcode:        msg.Opcode().String(),
		Valid:         msg.IsValid(),
		CorrectedBits: r.CorrectedBits,
		Callsign:      r.Callsign,
		Alias:         r.Alias,
		Text:          msg.String(),
		Bits:          msg.Bits().Hex(),
		DecodedAt:     r.DecodedAt,
	}
	if msg.Opcode().IsFull() {
		rec.Vendor = msg.Opcode().Vendor().String()
	}

	rec.Source, rec.Destination, rec.Group = addresses(msg)
	return rec
}

func addresses(msg lc.Message) (source, destination uint32, group bool) {
	if m, ok := msg.(sourced); ok {
		source = m.SourceAddress()
	}
	switch m := msg.(type) {
	case *lc.TerminatorData:
		return source, m.DestinationAddress(), m.IsGroup()
	case grouped:
		return source, m.GroupAddress(), true
	case targeted:
		return source, m.TargetAddress(), false
	}
	return source, 0, false
}
