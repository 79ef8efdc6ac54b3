package database

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// DecodedMessage is one stored link control message
type DecodedMessage struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	UUID          string    `gorm:"uniqueIndex;size:36;not null" json:"uuid"`
	SessionID     string    `gorm:"index;size:36;not null" json:"session_id"`
	Timestamp     int64     `gorm:"not null" json:"timestamp"`
	Timeslot      int       `gorm:"not null" json:"timeslot"`
	Kind          string    `gorm:"size:16;not null" json:"kind"`
	Opcode        string    `gorm:"index;size:64;not null" json:"opcode"`
	Vendor        string    `gorm:"size:16" json:"vendor"`
	Valid         bool      `gorm:"index" json:"valid"`
	CorrectedBits int       `gorm:"default:0" json:"corrected_bits"`
	Source        uint32    `gorm:"index" json:"source"`
	Destination   uint32    `gorm:"index" json:"destination"`
	IsGroup       bool      `json:"group"`
	Callsign      string    `gorm:"size:20" json:"callsign"`
	Alias         string    `gorm:"size:64" json:"alias"`
	Text          string    `gorm:"size:255" json:"text"`
	Bits          string    `gorm:"size:24;not null" json:"bits"`
	DecodedAt     time.Time `gorm:"index;not null" json:"decoded_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for DecodedMessage
func (DecodedMessage) TableName() string {
	return "decoded_messages"
}

// BeforeCreate fills timestamps the caller left unset
func (m *DecodedMessage) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.DecodedAt.IsZero() {
		m.DecodedAt = now
	}
	return nil
}

// DMRUser is a RadioID directory entry
type DMRUser struct {
	RadioID   uint32    `gorm:"primarykey;not null" json:"radio_id"`
	Callsign  string    `gorm:"index;size:20" json:"callsign"`
	FirstName string    `gorm:"size:50" json:"first_name"`
	LastName  string    `gorm:"size:50" json:"last_name"`
	City      string    `gorm:"size:50" json:"city"`
	State     string    `gorm:"size:50" json:"state"`
	Country   string    `gorm:"size:50" json:"country"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for DMRUser
func (DMRUser) TableName() string {
	return "dmr_users"
}

// FullName joins the non-empty name parts
func (u *DMRUser) FullName() string {
	return joinNonEmpty(" ", u.FirstName, u.LastName)
}

// Location joins the non-empty city, state and country
func (u *DMRUser) Location() string {
	return joinNonEmpty(", ", u.City, u.State, u.Country)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
