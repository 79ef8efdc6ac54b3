package lc

import "fmt"

// NullMessage carries no information
type NullMessage struct {
	shortHeader
}

func (m *NullMessage) String() string { return m.prefix().String() }

// Activity is the 4-bit activity ID of an activity update
type Activity uint8

func (a Activity) String() string {
	switch a {
	case 0x0:
		return "IDLE"
	case 0x2:
		return "GROUP CSBK"
	case 0x3:
		return "INDIVIDUAL CSBK"
	case 0x8:
		return "GROUP VOICE"
	case 0x9:
		return "INDIVIDUAL VOICE"
	case 0xA:
		return "INDIVIDUAL DATA"
	case 0xB:
		return "GROUP DATA"
	case 0xC:
		return "EMERGENCY GROUP VOICE"
	case 0xD:
		return "EMERGENCY INDIVIDUAL VOICE"
	default:
		return fmt.Sprintf("ACTIVITY(%d)", uint8(a))
	}
}

// ActivityUpdate reports what each timeslot of the repeater is carrying
type ActivityUpdate struct {
	shortHeader
}

func (m *ActivityUpdate) TS1Activity() Activity   { return Activity(m.field(4, 7)) }
func (m *ActivityUpdate) TS2Activity() Activity   { return Activity(m.field(8, 11)) }
func (m *ActivityUpdate) TS1HashedAddress() uint8 { return uint8(m.field(12, 19)) }
func (m *ActivityUpdate) TS2HashedAddress() uint8 { return uint8(m.field(20, 27)) }

func (m *ActivityUpdate) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " TS1:%s HASH:%d TS2:%s HASH:%d", m.TS1Activity(), m.TS1HashedAddress(), m.TS2Activity(), m.TS2HashedAddress())
	return sb.String()
}

// SystemModel selects how the 12-bit system identity splits into network and
// site fields.
type SystemModel uint8

const (
	ModelTiny SystemModel = iota
	ModelSmall
	ModelLarge
	ModelHuge
)

var modelNames = [...]string{"TINY", "SMALL", "LARGE", "HUGE"}

// siteBits is the number of site bits per model; the rest is network
var siteBits = [...]int{3, 5, 8, 10}

func (s SystemModel) String() string { return modelNames[s&0x3] }

type systemParameters struct {
	shortHeader
}

func (m *systemParameters) Model() SystemModel { return SystemModel(m.field(4, 5)) }

func (m *systemParameters) Network() int {
	return int(m.field(6, 17-siteBits[m.Model()]))
}

func (m *systemParameters) Site() int {
	return int(m.field(18-siteBits[m.Model()], 17))
}

// ControlChannelSystemParameters is broadcast on a control channel
type ControlChannelSystemParameters struct {
	systemParameters
}

func (m *ControlChannelSystemParameters) RegistrationRequired() bool { return m.flag(18) }
func (m *ControlChannelSystemParameters) CommonSlotCounter() int     { return int(m.field(19, 27)) }

func (m *ControlChannelSystemParameters) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " MODEL:%s NET:%d SITE:%d CSC:%d", m.Model(), m.Network(), m.Site(), m.CommonSlotCounter())
	if m.RegistrationRequired() {
		sb.WriteString(" REGISTRATION REQUIRED")
	}
	return sb.String()
}

// TrafficChannelSystemParameters is broadcast on a traffic channel
type TrafficChannelSystemParameters struct {
	systemParameters
}

func (m *TrafficChannelSystemParameters) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " MODEL:%s NET:%d SITE:%d", m.Model(), m.Network(), m.Site())
	return sb.String()
}

// XPTChannel reports repeater status on an XPT system. The standard and
// Hytera SLCOs share this layout.
type XPTChannel struct {
	shortHeader
}

func (m *XPTChannel) FreeRepeater() int            { return int(m.field(4, 7)) }
func (m *XPTChannel) PriorityRepeater() int        { return int(m.field(8, 11)) }
func (m *XPTChannel) PriorityHashedAddress() uint8 { return uint8(m.field(12, 19)) }

func (m *XPTChannel) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " FREE:%d PRIORITY:%d HASH:%d", m.FreeRepeater(), m.PriorityRepeater(), m.PriorityHashedAddress())
	return sb.String()
}

// ConnectPlusChannel identifies a Connect Plus site. The control and traffic
// channel forms share this layout.
type ConnectPlusChannel struct {
	shortHeader
}

func (m *ConnectPlusChannel) NetworkID() int { return int(m.field(4, 15)) }
func (m *ConnectPlusChannel) SiteID() int    { return int(m.field(16, 23)) }

func (m *ConnectPlusChannel) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " NETWORK:%d SITE:%d", m.NetworkID(), m.SiteID())
	return sb.String()
}

// CapacityPlusRestChannel names the repeater currently acting as rest channel
type CapacityPlusRestChannel struct {
	shortHeader
}

func (m *CapacityPlusRestChannel) RestRepeater() int { return int(m.field(8, 11)) }

func (m *CapacityPlusRestChannel) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " REST REPEATER:%d", m.RestRepeater())
	return sb.String()
}

// UnknownShortMessage wraps a short LC with an unassigned SLCO
type UnknownShortMessage struct {
	shortHeader
}

func (m *UnknownShortMessage) String() string {
	sb := m.prefix()
	fmt.Fprintf(sb, " SLCO:%d MSG:%s", m.SLCO(), m.bits.Hex())
	return sb.String()
}
