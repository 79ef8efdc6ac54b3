package database

import (
	"gorm.io/gorm"
)

// DMRUserRepository handles RadioID directory operations
type DMRUserRepository struct {
	db *gorm.DB
}

// NewDMRUserRepository creates a new DMR user repository
func NewDMRUserRepository(db *gorm.DB) *DMRUserRepository {
	return &DMRUserRepository{db: db}
}

// UpsertBatch saves users in batches inside one transaction
func (r *DMRUserRepository) UpsertBatch(users []DMRUser, batchSize int) error {
	if len(users) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = len(users)
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < len(users); i += batchSize {
			end := min(i+batchSize, len(users))
			batch := users[i:end]
			if err := tx.Save(&batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByRadioID retrieves a user by their radio ID
func (r *DMRUserRepository) GetByRadioID(radioID uint32) (*DMRUser, error) {
	var user DMRUser
	err := r.db.Where("radio_id = ?", radioID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Callsign returns the callsign registered for radioID, or "" when the id is
// unknown or the lookup fails.
func (r *DMRUserRepository) Callsign(radioID uint32) string {
	user, err := r.GetByRadioID(radioID)
	if err != nil {
		return ""
	}
	return user.Callsign
}

// Count returns the total number of users in the directory
func (r *DMRUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&DMRUser{}).Count(&count).Error
	return count, err
}
