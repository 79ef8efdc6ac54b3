package lc

import (
	"fmt"

	"github.com/dbehnke/dmr-lc/pkg/bits"
)

// Vendor is the feature set ID (FID) carried in bits 8-15 of a full LC
type Vendor uint8

const (
	VendorStandard Vendor = 0x00
	VendorMotorola Vendor = 0x10 // Capacity Plus and Capacity Max
	VendorHytera   Vendor = 0x68
)

func (v Vendor) String() string {
	switch v {
	case VendorStandard:
		return "STANDARD"
	case VendorMotorola:
		return "MOTOROLA"
	case VendorHytera:
		return "HYTERA"
	default:
		return fmt.Sprintf("FID(0x%02X)", uint8(v))
	}
}

// Opcode identifies the link control message kind. Full and short LC have
// separate value spaces; each family ends with its own unknown sentinel.
type Opcode int

const (
	FullStandardGroupVoiceChannelUser Opcode = iota
	FullStandardUnitToUnitVoiceChannelUser
	FullStandardTalkerAliasHeader
	FullStandardTalkerAliasBlock1
	FullStandardTalkerAliasBlock2
	FullStandardTalkerAliasBlock3
	FullStandardGPSInfo
	FullStandardTerminatorData
	FullMotorolaGroupVoiceChannelUser
	FullCapacityPlusWideAreaVoiceChannelUser
	FullCapacityMaxGroupVoiceChannelUser
	FullCapacityMaxTalkerAlias
	FullCapacityMaxTalkerAliasContinuation
	FullCapacityPlusEncryptedVoiceChannelUser
	FullEncryptionParameters
	FullHyteraGroupVoiceChannelUser
	FullHyteraUnitToUnitVoiceChannelUser
	FullHyteraTalkerAliasHeader
	FullHyteraTalkerAliasBlock1
	FullHyteraTalkerAliasBlock2
	FullHyteraTalkerAliasBlock3
	FullHyteraGPSInfo
	FullHyteraXPTChannelGrant
	FullHyteraTerminator
	FullUnknown

	ShortStandardNullMessage
	ShortStandardActivityUpdate
	ShortStandardControlChannelSystemParameters
	ShortStandardTrafficChannelSystemParameters
	ShortHyteraXPTChannel
	ShortStandardXPTChannel
	ShortConnectPlusTrafficChannel
	ShortConnectPlusControlChannel
	ShortCapacityPlusRestChannel
	ShortUnknown
)

type opcodeInfo struct {
	full   bool
	vendor Vendor
	value  uint8 // FLCO for full LC, SLCO for short LC
	label  string
}

var opcodes = map[Opcode]opcodeInfo{
	FullStandardGroupVoiceChannelUser:         {true, VendorStandard, 0x00, "GROUP VOICE CHANNEL USER"},
	FullStandardUnitToUnitVoiceChannelUser:    {true, VendorStandard, 0x03, "UNIT-TO-UNIT VOICE CHANNEL USER"},
	FullStandardTalkerAliasHeader:             {true, VendorStandard, 0x04, "TALKER ALIAS HEADER"},
	FullStandardTalkerAliasBlock1:             {true, VendorStandard, 0x05, "TALKER ALIAS BLOCK 1"},
	FullStandardTalkerAliasBlock2:             {true, VendorStandard, 0x06, "TALKER ALIAS BLOCK 2"},
	FullStandardTalkerAliasBlock3:             {true, VendorStandard, 0x07, "TALKER ALIAS BLOCK 3"},
	FullStandardGPSInfo:                       {true, VendorStandard, 0x08, "GPS INFO"},
	FullStandardTerminatorData:                {true, VendorStandard, 0x30, "TERMINATOR DATA"},
	FullMotorolaGroupVoiceChannelUser:         {true, VendorMotorola, 0x00, "MOTOROLA GROUP VOICE CHANNEL USER"},
	FullCapacityPlusWideAreaVoiceChannelUser:  {true, VendorMotorola, 0x04, "CAPACITY+ WIDE AREA VOICE CHANNEL USER"},
	FullCapacityMaxGroupVoiceChannelUser:      {true, VendorMotorola, 0x10, "CAPACITY MAX GROUP VOICE CHANNEL USER"},
	FullCapacityMaxTalkerAlias:                {true, VendorMotorola, 0x15, "CAPACITY MAX TALKER ALIAS"},
	FullCapacityMaxTalkerAliasContinuation:    {true, VendorMotorola, 0x16, "CAPACITY MAX TALKER ALIAS CONTINUATION"},
	FullCapacityPlusEncryptedVoiceChannelUser: {true, VendorMotorola, 0x20, "CAPACITY+ ENCRYPTED VOICE CHANNEL USER"},
	FullEncryptionParameters:                  {true, VendorMotorola, 0x3F, "ENCRYPTION PARAMETERS"},
	FullHyteraGroupVoiceChannelUser:           {true, VendorHytera, 0x00, "HYTERA GROUP VOICE CHANNEL USER"},
	FullHyteraUnitToUnitVoiceChannelUser:      {true, VendorHytera, 0x03, "HYTERA UNIT-TO-UNIT VOICE CHANNEL USER"},
	FullHyteraTalkerAliasHeader:               {true, VendorHytera, 0x04, "HYTERA TALKER ALIAS HEADER"},
	FullHyteraTalkerAliasBlock1:               {true, VendorHytera, 0x05, "HYTERA TALKER ALIAS BLOCK 1"},
	FullHyteraTalkerAliasBlock2:               {true, VendorHytera, 0x06, "HYTERA TALKER ALIAS BLOCK 2"},
	FullHyteraTalkerAliasBlock3:               {true, VendorHytera, 0x07, "HYTERA TALKER ALIAS BLOCK 3"},
	FullHyteraGPSInfo:                         {true, VendorHytera, 0x08, "HYTERA GPS INFO"},
	FullHyteraXPTChannelGrant:                 {true, VendorHytera, 0x09, "HYTERA XPT CHANNEL GRANT"},
	FullHyteraTerminator:                      {true, VendorHytera, 0x30, "HYTERA TERMINATOR"},
	FullUnknown:                               {true, VendorStandard, 0xFF, "UNKNOWN FULL LC"},

	ShortStandardNullMessage:                    {false, VendorStandard, 0x0, "NULL"},
	ShortStandardActivityUpdate:                 {false, VendorStandard, 0x1, "ACTIVITY UPDATE"},
	ShortStandardControlChannelSystemParameters: {false, VendorStandard, 0x2, "CONTROL CHANNEL SYSTEM PARAMETERS"},
	ShortStandardTrafficChannelSystemParameters: {false, VendorStandard, 0x3, "TRAFFIC CHANNEL SYSTEM PARAMETERS"},
	ShortHyteraXPTChannel:                       {false, VendorHytera, 0x6, "HYTERA XPT CHANNEL"},
	ShortStandardXPTChannel:                     {false, VendorStandard, 0x8, "XPT CHANNEL"},
	ShortConnectPlusTrafficChannel:              {false, VendorMotorola, 0x9, "CONNECT+ TRAFFIC CHANNEL"},
	ShortConnectPlusControlChannel:              {false, VendorMotorola, 0xA, "CONNECT+ CONTROL CHANNEL"},
	ShortCapacityPlusRestChannel:                {false, VendorMotorola, 0xF, "CAPACITY+ REST CHANNEL"},
	ShortUnknown:                                {false, VendorStandard, 0xFF, "UNKNOWN SHORT LC"},
}

type fullKey struct {
	vendor Vendor
	flco   uint8
}

var (
	fullLookup  = map[fullKey]Opcode{}
	shortLookup = map[uint8]Opcode{}
)

func init() {
	for op, info := range opcodes {
		if op == FullUnknown || op == ShortUnknown {
			continue
		}
		if info.full {
			fullLookup[fullKey{info.vendor, info.value}] = op
		} else {
			shortLookup[info.value] = op
		}
	}
}

// Bit positions of the opcode fields
const (
	flcoStart = 2
	flcoEnd   = 7
	fidStart  = 8
	fidEnd    = 15
	slcoStart = 0
	slcoEnd   = 3
)

// FullOpcodeOf reads FLCO and FID from a full LC as received. No validation
// is needed; an unrecognized combination yields FullUnknown.
func FullOpcodeOf(b *bits.BitField) Opcode {
	if b.Size() <= fidEnd {
		return FullUnknown
	}
	key := fullKey{Vendor(b.Int(fidStart, fidEnd)), uint8(b.Int(flcoStart, flcoEnd))}
	if op, ok := fullLookup[key]; ok {
		return op
	}
	return FullUnknown
}

// ShortOpcodeOf reads the SLCO from a short LC. An unassigned value yields
// ShortUnknown.
func ShortOpcodeOf(b *bits.BitField) Opcode {
	if b.Size() <= slcoEnd {
		return ShortUnknown
	}
	if op, ok := shortLookup[uint8(b.Int(slcoStart, slcoEnd))]; ok {
		return op
	}
	return ShortUnknown
}

// IsFull reports whether the opcode belongs to the full LC family
func (o Opcode) IsFull() bool {
	return opcodes[o].full
}

// Vendor returns the dialect that defines the opcode
func (o Opcode) Vendor() Vendor {
	return opcodes[o].vendor
}

// Value returns the FLCO or SLCO field value; unknown opcodes return 0xFF
func (o Opcode) Value() uint8 {
	return opcodes[o].value
}

func (o Opcode) String() string {
	if info, ok := opcodes[o]; ok {
		return info.label
	}
	return fmt.Sprintf("OPCODE(%d)", int(o))
}

// FullOpcodes lists every recognized full LC opcode
func FullOpcodes() []Opcode {
	var out []Opcode
	for op := FullStandardGroupVoiceChannelUser; op < FullUnknown; op++ {
		out = append(out, op)
	}
	return out
}

// ShortOpcodes lists every recognized short LC opcode
func ShortOpcodes() []Opcode {
	var out []Opcode
	for op := ShortStandardNullMessage; op < ShortUnknown; op++ {
		out = append(out, op)
	}
	return out
}
