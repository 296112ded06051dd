package models

import (
	"time"

	"gorm.io/gorm"
)

// SupplyReading stores one settled contract read. Pending results are never stored.
type SupplyReading struct {
	gorm.Model
	ReadingID string    `gorm:"uniqueIndex;type:varchar(36)"`
	Chain     string    `gorm:"index:idx_chain_read_at;type:varchar(64)"`
	ChainID   uint64    `gorm:"type:bigint"`
	Contract  string    `gorm:"type:varchar(42)"`
	Function  string    `gorm:"type:varchar(255)"`
	Status    string    `gorm:"type:varchar(16)"`
	Value     string    `gorm:"type:text"`
	Values    []string  `gorm:"type:text;serializer:json"`
	Reason    string    `gorm:"type:text"`
	ReadAt    time.Time `gorm:"index:idx_chain_read_at"`
}
