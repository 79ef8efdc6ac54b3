package database

import (
	"context"
	"fmt"

	"github.com/dbehnke/dmr-lc/pkg/decoder"
)

// MessageSink stores every decoded result
type MessageSink struct {
	repo *MessageRepository
}

// NewMessageSink creates a sink writing to repo
func NewMessageSink(repo *MessageRepository) *MessageSink {
	return &MessageSink{repo: repo}
}

// Name implements decoder.Sink
func (s *MessageSink) Name() string { return "database" }

// Handle implements decoder.Sink
func (s *MessageSink) Handle(ctx context.Context, r decoder.Result) error {
	m := FromRecord(decoder.NewRecord(r))
	if err := s.repo.Create(ctx, m); err != nil {
		return fmt.Errorf("failed to store message %s: %w", m.UUID, err)
	}
	return nil
}

// FromRecord converts a decoded record to its stored form
func FromRecord(rec decoder.Record) *DecodedMessage {
	return &DecodedMessage{
		UUID:          rec.ID,
		SessionID:     rec.SessionID,
		Timestamp:     rec.Timestamp,
		Timeslot:      rec.Timeslot,
		Kind:          rec.Kind,
		Opcode:        rec.Opcode,
		Vendor:        rec.Vendor,
		Valid:         rec.Valid,
		CorrectedBits: rec.CorrectedBits,
		Source:        rec.Source,
		Destination:   rec.Destination,
		IsGroup:       rec.Group,
		Callsign:      rec.Callsign,
		Alias:         rec.Alias,
		Text:          rec.Text,
		Bits:          rec.Bits,
		DecodedAt:     rec.DecodedAt,
	}
}

// Record converts a stored message back to the record it was made from
func (m *DecodedMessage) Record() decoder.Record {
	return decoder.Record{
		ID:            m.UUID,
		SessionID:     m.SessionID,
		Timestamp:     m.Timestamp,
		Timeslot:      m.Timeslot,
		Kind:          m.Kind,
		Opcode:        m.Opcode,
		Vendor:        m.Vendor,
		Valid:         m.Valid,
		CorrectedBits: m.CorrectedBits,
		Source:        m.Source,
		Destination:   m.Destination,
		Group:         m.IsGroup,
		Callsign:      m.Callsign,
		Alias:         m.Alias,
		Text:          m.Text,
		Bits:          m.Bits,
		DecodedAt:     m.DecodedAt,
	}
}

// Records converts stored messages, keeping their order
func Records(messages []DecodedMessage) []decoder.Record {
	out := make([]decoder.Record, 0, len(messages))
	for i := range messages {
		out = append(out, messages[i].Record())
	}
	return out
}
