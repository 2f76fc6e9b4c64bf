package entities

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Email       string    `gorm:"uniqueIndex" json:"email"`
	Password    string    `json:"-"`
	DisplayName string    `json:"display_name"`

	// Profile counters. Coins and TotalBottles are only ever moved by the
	// bottle save bonus, harvest earnings and upgrade cost, all applied as
	// single conditional updates.
	Coins        int `gorm:"default:50" json:"coins"`
	TotalBottles int `gorm:"default:0" json:"total_bottles"`

	// Vineyard state.
	VineyardLevel int       `gorm:"default:1" json:"vineyard_level"`
	LastHarvestAt time.Time `json:"last_harvest_at"`
	TotalHarvests int       `gorm:"default:0" json:"total_harvests"`

	Notifications bool   `gorm:"default:true" json:"notifications"`
	Privacy       string `gorm:"default:friends" json:"privacy"` // public, friends, private

	Bottles []*Bottle `gorm:"foreignKey:UserID"`
	Timestamp
}
