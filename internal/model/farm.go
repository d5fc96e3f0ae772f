package model

import (
	"time"

	"github.com/google/uuid"
)

// Farm is owned by the farm management service; this service only reads it
// to answer ownership checks.
type Farm struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"size:200"`
	CreatedAt time.Time `json:"created_at"`
}

func (Farm) TableName() string {
	return "farms"
}
