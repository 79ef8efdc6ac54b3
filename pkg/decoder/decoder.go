package decoder

import (
	"fmt"

	"github.com/dbehnke/dmr-lc/pkg/capture"
	"github.com/dbehnke/dmr-lc/pkg/lc"
)

// Decoder turns captured bursts into link control messages
type Decoder struct {
	factory *lc.Factory
}

// New creates a decoder backed by factory
func New(factory *lc.Factory) *Decoder {
	return &Decoder{factory: factory}
}

// Decode builds the burst's bit field and hands it to the matching factory
// entry point. An error means the payload could not be turned into bits at
// all; FEC failures are reported through the message's validity instead.
func (d *Decoder) Decode(b capture.Burst) (lc.Message, error) {
	field, err := b.BitField()
	if err != nil {
		return nil, fmt.Errorf("failed to build bit field: %w", err)
	}

	switch b.Kind {
	case capture.KindFull, capture.KindEmbedded:
		return d.factory.CreateFull(field, b.Timestamp, b.Timeslot, false), nil
	case capture.KindTerminator:
		return d.factory.CreateFull(field, b.Timestamp, b.Timeslot, true), nil
	case capture.KindPIHeader:
		return d.factory.CreateEncryptionParameters(field, b.Timestamp, b.Timeslot), nil
	case capture.KindShort:
		return d.factory.CreateShort(field, b.Timestamp, b.Timeslot), nil
	default:
		return nil, fmt.Errorf("unknown burst kind %q", b.Kind)
	}
}
