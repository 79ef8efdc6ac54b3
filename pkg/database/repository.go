package database

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// MessageRepository handles decoded message database operations
type MessageRepository struct {
	db *gorm.DB
}

// OpcodeCount is the number of stored messages of one opcode
type OpcodeCount struct {
	Opcode  string `json:"opcode"`
	Total   int64  `json:"total"`
	Invalid int64  `json:"invalid"`
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create adds a decoded message
func (r *MessageRepository) Create(ctx context.Context, m *DecodedMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// GetRecent retrieves the most recent N messages
func (r *MessageRepository) GetRecent(limit int) ([]DecodedMessage, error) {
	var messages []DecodedMessage
	err := r.db.Order("decoded_at DESC, id DESC").Limit(limit).Find(&messages).Error
	return messages, err
}

// GetRecentPaginated retrieves messages with pagination
func (r *MessageRepository) GetRecentPaginated(page, perPage int) ([]DecodedMessage, int64, error) {
	var messages []DecodedMessage
	var total int64

	if err := r.db.Model(&DecodedMessage{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	err := r.db.Order("decoded_at DESC, id DESC").
		Offset(offset).
		Limit(perPage).
		Find(&messages).Error

	return messages, total, err
}

// GetBySource retrieves messages sent by a radio
func (r *MessageRepository) GetBySource(radioID uint32, limit int) ([]DecodedMessage, error) {
	var messages []DecodedMessage
	err := r.db.Where("source = ?", radioID).
		Order("decoded_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// GetBySession retrieves a decode session's messages in capture order
func (r *MessageRepository) GetBySession(sessionID string) ([]DecodedMessage, error) {
	var messages []DecodedMessage
	err := r.db.Where("session_id = ?", sessionID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// CountByOpcode tallies messages per opcode, most frequent first
func (r *MessageRepository) CountByOpcode() ([]OpcodeCount, error) {
	var counts []OpcodeCount
	err := r.db.Model(&DecodedMessage{}).
		Select("opcode, COUNT(*) AS total, SUM(CASE WHEN valid THEN 0 ELSE 1 END) AS invalid").
		Group("opcode").
		Order("total DESC, opcode ASC").
		Scan(&counts).Error
	return counts, err
}

// DeleteOlderThan deletes messages decoded before the given time
func (r *MessageRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("decoded_at < ?", before).Delete(&DecodedMessage{})
	return result.RowsAffected, result.Error
}
