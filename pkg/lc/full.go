package lc

import "fmt"

// voiceUser holds the layout shared by group and unit-to-unit voice channel
// user messages of every dialect: service options, a 24-bit destination and a
// 24-bit source.
type voiceUser struct {
	fullHeader
}

func (m *voiceUser) ServiceOptions() ServiceOptions { return ServiceOptions(m.field(16, 23)) }
func (m *voiceUser) SourceAddress() uint32          { return uint32(m.field(48, 71)) }

// GroupVoiceChannelUser announces a group call in progress
type GroupVoiceChannelUser struct {
	voiceUser
}

func (m *GroupVoiceChannelUser) GroupAddress() uint32 { return uint32(m.field(24, 47)) }

func (m *GroupVoiceChannelUser) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " FM:%d TO:TG%d", m.SourceAddress(), m.GroupAddress())
	return withOptions(sb, m.ServiceOptions())
}

// UnitToUnitVoiceChannelUser announces a private call in progress
type UnitToUnitVoiceChannelUser struct {
	voiceUser
}

func (m *UnitToUnitVoiceChannelUser) TargetAddress() uint32 { return uint32(m.field(24, 47)) }

func (m *UnitToUnitVoiceChannelUser) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " FM:%d TO:%d", m.SourceAddress(), m.TargetAddress())
	return withOptions(sb, m.ServiceOptions())
}

// MotorolaGroupVoiceChannelUser is the Motorola feature set form of the group
// voice channel user message.
type MotorolaGroupVoiceChannelUser struct{ GroupVoiceChannelUser }

// CapacityMaxGroupVoiceChannelUser is sent on Capacity Max traffic channels
type CapacityMaxGroupVoiceChannelUser struct{ GroupVoiceChannelUser }

// HyteraGroupVoiceChannelUser is the Hytera feature set group call message
type HyteraGroupVoiceChannelUser struct{ GroupVoiceChannelUser }

// HyteraUnitToUnitVoiceChannelUser is the Hytera feature set private call
// message
type HyteraUnitToUnitVoiceChannelUser struct{ UnitToUnitVoiceChannelUser }

// HyteraTerminator closes a Hytera call
type HyteraTerminator struct{ UnitToUnitVoiceChannelUser }

// capacityPlusVoice is the 16-bit addressed layout used by Capacity Plus
type capacityPlusVoice struct {
	fullHeader
}

func (m *capacityPlusVoice) ServiceOptions() ServiceOptions { return ServiceOptions(m.field(16, 23)) }
func (m *capacityPlusVoice) GroupAddress() uint32           { return uint32(m.field(40, 55)) }
func (m *capacityPlusVoice) SourceAddress() uint32          { return uint32(m.field(56, 71)) }

// CapacityPlusWideAreaVoiceChannelUser announces a wide area group call and
// the repeater currently holding the rest channel.
type CapacityPlusWideAreaVoiceChannelUser struct {
	capacityPlusVoice
}

func (m *CapacityPlusWideAreaVoiceChannelUser) RestRepeater() int { return int(m.field(24, 31)) }

func (m *CapacityPlusWideAreaVoiceChannelUser) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " FM:%d TO:TG%d REST:%d", m.SourceAddress(), m.GroupAddress(), m.RestRepeater())
	return withOptions(sb, m.ServiceOptions())
}

// CapacityPlusEncryptedVoiceChannelUser announces an encrypted group call
type CapacityPlusEncryptedVoiceChannelUser struct {
	capacityPlusVoice
}

func (m *CapacityPlusEncryptedVoiceChannelUser) KeyID() uint8 { return uint8(m.field(24, 31)) }

func (m *CapacityPlusEncryptedVoiceChannelUser) Algorithm() Algorithm {
	return Algorithm(m.field(32, 39))
}

func (m *CapacityPlusEncryptedVoiceChannelUser) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " FM:%d TO:TG%d ALG:%s KEY:%d", m.SourceAddress(), m.GroupAddress(), m.Algorithm(), m.KeyID())
	return withOptions(sb, m.ServiceOptions())
}

// Algorithm identifies a Motorola encryption algorithm
type Algorithm uint8

const (
	AlgorithmNone   Algorithm = 0x00
	AlgorithmARC4   Algorithm = 0x21
	AlgorithmDESOFB Algorithm = 0x22
	AlgorithmAES128 Algorithm = 0x24
	AlgorithmAES256 Algorithm = 0x25
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "NONE"
	case AlgorithmARC4:
		return "ARC4"
	case AlgorithmDESOFB:
		return "DES-OFB"
	case AlgorithmAES128:
		return "AES-128"
	case AlgorithmAES256:
		return "AES-256"
	default:
		return fmt.Sprintf("0x%02X", uint8(a))
	}
}

// EncryptionParameters carries the algorithm, key and message indicator for
// an encrypted call. It is protected by its own CRC-8 in bits 64-71 and its
// validity comes from that check alone.
type EncryptionParameters struct {
	fullHeader
}

func (m *EncryptionParameters) Algorithm() Algorithm     { return Algorithm(m.field(16, 23)) }
func (m *EncryptionParameters) KeyID() uint8             { return uint8(m.field(24, 31)) }
func (m *EncryptionParameters) MessageIndicator() uint32 { return uint32(m.field(32, 63)) }

func (m *EncryptionParameters) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " ALG:%s KEY:%d MI:%08X", m.Algorithm(), m.KeyID(), m.MessageIndicator())
	return sb.String()
}

// GPSInfo reports a subscriber position
type GPSInfo struct {
	fullHeader
}

// PositionError is the 3-bit position error code; 7 means not known
func (m *GPSInfo) PositionError() int { return int(m.field(20, 22)) }

// Longitude in degrees, from a 25-bit two's complement value
func (m *GPSInfo) Longitude() float64 {
	return float64(signExtend(m.field(23, 47), 25)) * 360.0 / (1 << 25)
}

// Latitude in degrees, from a 24-bit two's complement value
func (m *GPSInfo) Latitude() float64 {
	return float64(signExtend(m.field(48, 71), 24)) * 180.0 / (1 << 24)
}

func (m *GPSInfo) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " LAT:%.5f LON:%.5f ERR:%d", m.Latitude(), m.Longitude(), m.PositionError())
	return sb.String()
}

// HyteraGPSInfo shares the standard GPS layout
type HyteraGPSInfo struct{ GPSInfo }

func signExtend(v uint64, width int) int64 {
	shift := 64 - width
	return int64(v<<shift) >> shift
}

// TerminatorData ends a data call and carries its addressing
type TerminatorData struct {
	fullHeader
}

func (m *TerminatorData) DestinationAddress() uint32 { return uint32(m.field(16, 39)) }
func (m *TerminatorData) SourceAddress() uint32      { return uint32(m.field(40, 63)) }
func (m *TerminatorData) IsGroup() bool              { return m.flag(64) }
func (m *TerminatorData) ResponseRequested() bool    { return m.flag(65) }
func (m *TerminatorData) IsFullMessage() bool        { return m.flag(66) }
func (m *TerminatorData) SendSequence() int          { return int(m.field(69, 71)) }

func (m *TerminatorData) String() string {
	sb := m.prefix()
	to := fmt.Sprintf("%d", m.DestinationAddress())
	if m.IsGroup() {
		to = "TG" + to
	}
	fmt.Fprintf(sb, " FM:%d TO:%s SEQ:%d", m.SourceAddress(), to, m.SendSequence())
	if m.ResponseRequested() {
		sb.WriteString(" RESPONSE REQUESTED")
	}
	return sb.String()
}

// HyteraXPTChannelGrant moves a call onto an XPT traffic repeater
type HyteraXPTChannelGrant struct {
	fullHeader
}

func (m *HyteraXPTChannelGrant) FreeRepeater() int     { return int(m.field(16, 19)) }
func (m *HyteraXPTChannelGrant) Repeater() int         { return int(m.field(20, 23)) }
func (m *HyteraXPTChannelGrant) TargetAddress() uint32 { return uint32(m.field(24, 47)) }
func (m *HyteraXPTChannelGrant) SourceAddress() uint32 { return uint32(m.field(48, 71)) }

func (m *HyteraXPTChannelGrant) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " FM:%d TO:%d REPEATER:%d FREE:%d", m.SourceAddress(), m.TargetAddress(), m.Repeater(), m.FreeRepeater())
	return sb.String()
}

// UnknownFullMessage wraps a full LC whose FLCO/FID pair is not recognized
type UnknownFullMessage struct {
	fullHeader
}

func (m *UnknownFullMessage) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " FLCO:0x%02X FID:%s", m.FLCO(), m.FID())
	if m.bits.Size() > 0 {
		fmt.Fprintf(sb, " MSG:%s", m.bits.Hex())
	}
	return sb.String()
}
