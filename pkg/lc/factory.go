package lc

import (
	"os"

	"github.com/dbehnke/dmr-lc/pkg/bits"
	"github.com/dbehnke/dmr-lc/pkg/edac"
	"github.com/dbehnke/dmr-lc/pkg/logger"
)

// Factory turns raw full and short LC bit fields into typed messages. It
// holds no per-message state and may be shared between goroutines.
type Factory struct {
	log *logger.Logger
	rs  edac.ReedSolomon129
}

// NewFactory creates a factory that reports malformed input through log
func NewFactory(log *logger.Logger) *Factory {
	return &Factory{log: log.WithComponent("lc")}
}

var defaultFactory = NewFactory(logger.New(logger.Config{Level: "warn", Output: os.Stderr}))

// CreateFull decodes a full LC with the package default factory
func CreateFull(b *bits.BitField, timestamp int64, timeslot int, terminator bool) FullMessage {
	return defaultFactory.CreateFull(b, timestamp, timeslot, terminator)
}

// CreateShort decodes a short LC with the package default factory
func CreateShort(b *bits.BitField, timestamp int64, timeslot int) ShortMessage {
	return defaultFactory.CreateShort(b, timestamp, timeslot)
}

// CreateEncryptionParameters decodes a privacy indicator header with the
// package default factory
func CreateEncryptionParameters(b *bits.BitField, timestamp int64, timeslot int) *EncryptionParameters {
	return defaultFactory.CreateEncryptionParameters(b, timestamp, timeslot)
}

// CreateFull checks and decodes a full LC. A 77-bit embedded LC is verified
// by its 5-bit checksum. A 96-bit LC is run through RS(12,9,4) with the
// terminator or voice header mask, and corrected in place when possible.
// Any other length is logged and yields an invalid message. Decoding never
// fails: unrecognized opcodes produce an UnknownFullMessage. b must not be
// nil.
func (f *Factory) CreateFull(b *bits.BitField, timestamp int64, timeslot int, terminator bool) FullMessage {
	if b == nil {
		panic("lc: nil bit field")
	}

	valid := false
	switch b.Size() {
	case edac.EmbeddedFrameBits:
		valid = edac.IsValidChecksum5(b)
	case edac.RS129FrameBits:
		mask := edac.VoiceMask
		if terminator {
			mask = edac.TerminatorMask
		}
		valid = f.rs.Correct(b, mask)
	default:
		f.log.Warn("Unrecognized full link control length",
			logger.Int("bits", b.Size()),
			logger.Int("timeslot", timeslot))
	}

	opcode := FullOpcodeOf(b)

	// Some radios send the standard group voice LC without the parity mask
	if !valid && b.Size() == edac.RS129FrameBits && opcode == FullStandardGroupVoiceChannelUser {
		valid = f.rs.Correct(b, 0)
		if valid {
			f.log.Debug("Recovered group voice LC with unmasked parity", logger.Int("timeslot", timeslot))
		}
	}

	if opcode == FullEncryptionParameters {
		valid = encryptionParametersValid(b)
	}

	h := fullHeader{header{bits: b, opcode: opcode, timestamp: timestamp, timeslot: timeslot, valid: valid}}
	switch opcode {
	case FullStandardGroupVoiceChannelUser:
		return &GroupVoiceChannelUser{voiceUser{h}}
	case FullStandardUnitToUnitVoiceChannelUser:
		return &UnitToUnitVoiceChannelUser{voiceUser{h}}
	case FullStandardTalkerAliasHeader, FullHyteraTalkerAliasHeader:
		return &TalkerAliasHeader{h}
	case FullStandardTalkerAliasBlock1, FullStandardTalkerAliasBlock2, FullStandardTalkerAliasBlock3,
		FullHyteraTalkerAliasBlock1, FullHyteraTalkerAliasBlock2, FullHyteraTalkerAliasBlock3:
		return &TalkerAliasBlock{h}
	case FullStandardGPSInfo:
		return &GPSInfo{h}
	case FullStandardTerminatorData:
		return &TerminatorData{h}
	case FullMotorolaGroupVoiceChannelUser:
		return &MotorolaGroupVoiceChannelUser{GroupVoiceChannelUser{voiceUser{h}}}
	case FullCapacityPlusWideAreaVoiceChannelUser:
		return &CapacityPlusWideAreaVoiceChannelUser{capacityPlusVoice{h}}
	case FullCapacityMaxGroupVoiceChannelUser:
		return &CapacityMaxGroupVoiceChannelUser{GroupVoiceChannelUser{voiceUser{h}}}
	case FullCapacityMaxTalkerAlias:
		return &CapacityMaxTalkerAlias{h}
	case FullCapacityMaxTalkerAliasContinuation:
		return &CapacityMaxTalkerAliasContinuation{h}
	case FullCapacityPlusEncryptedVoiceChannelUser:
		return &CapacityPlusEncryptedVoiceChannelUser{capacityPlusVoice{h}}
	case FullEncryptionParameters:
		return &EncryptionParameters{h}
	case FullHyteraGroupVoiceChannelUser:
		return &HyteraGroupVoiceChannelUser{GroupVoiceChannelUser{voiceUser{h}}}
	case FullHyteraUnitToUnitVoiceChannelUser:
		return &HyteraUnitToUnitVoiceChannelUser{UnitToUnitVoiceChannelUser{voiceUser{h}}}
	case FullHyteraGPSInfo:
		return &HyteraGPSInfo{GPSInfo{h}}
	case FullHyteraXPTChannelGrant:
		return &HyteraXPTChannelGrant{h}
	case FullHyteraTerminator:
		return &HyteraTerminator{UnitToUnitVoiceChannelUser{voiceUser{h}}}
	default:
		return &UnknownFullMessage{h}
	}
}

// encryptionParametersValid checks the CRC-8 that covers bits 0-63 of the
// encryption parameters message.
func encryptionParametersValid(b *bits.BitField) bool {
	if b.Size() < edac.EmbeddedLCBits {
		return false
	}
	return edac.CRC8(b, edac.EmbeddedLCBits) == 0
}

// CreateEncryptionParameters decodes a privacy indicator header. The burst
// type already says what it carries, so the opcode field is not consulted and
// validity is the inner CRC-8 alone. b must not be nil.
func (f *Factory) CreateEncryptionParameters(b *bits.BitField, timestamp int64, timeslot int) *EncryptionParameters {
	if b == nil {
		panic("lc: nil bit field")
	}

	valid := encryptionParametersValid(b)
	if b.Size() != edac.RS129FrameBits {
		f.log.Warn("Unrecognized privacy indicator length",
			logger.Int("bits", b.Size()),
			logger.Int("timeslot", timeslot))
	}
	return &EncryptionParameters{fullHeader{header{
		bits:      b,
		opcode:    FullEncryptionParameters,
		timestamp: timestamp,
		timeslot:  timeslot,
		valid:     valid,
	}}}
}

// CreateShort decodes a short LC. Validity is the CRC-8 residual over the
// first 36 bits; no correction is attempted. b must not be nil.
func (f *Factory) CreateShort(b *bits.BitField, timestamp int64, timeslot int) ShortMessage {
	if b == nil {
		panic("lc: nil bit field")
	}

	valid := b.Size() >= edac.ShortLCFrameBits && edac.CRC8Residual(b) == 0
	if b.Size() < edac.ShortLCFrameBits {
		f.log.Warn("Short link control too short",
			logger.Int("bits", b.Size()),
			logger.Int("timeslot", timeslot))
	}

	opcode := ShortOpcodeOf(b)
	h := shortHeader{header{bits: b, opcode: opcode, timestamp: timestamp, timeslot: timeslot, valid: valid}}
	switch opcode {
	case ShortStandardNullMessage:
		return &NullMessage{h}
	case ShortStandardActivityUpdate:
		return &ActivityUpdate{h}
	case ShortStandardControlChannelSystemParameters:
		return &ControlChannelSystemParameters{systemParameters{h}}
	case ShortStandardTrafficChannelSystemParameters:
		return &TrafficChannelSystemParameters{systemParameters{h}}
	case ShortHyteraXPTChannel, ShortStandardXPTChannel:
		return &XPTChannel{h}
	case ShortConnectPlusTrafficChannel, ShortConnectPlusControlChannel:
		return &ConnectPlusChannel{h}
	case ShortCapacityPlusRestChannel:
		return &CapacityPlusRestChannel{h}
	default:
		return &UnknownShortMessage{h}
	}
}
