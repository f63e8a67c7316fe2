package types

import (
	"time"

	"github.com/google/uuid"
)

type FlashcardSet struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Topic       string    `gorm:"not null;index;column:topic" json:"topic"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (FlashcardSet) TableName() string {
	return "flashcard_set"
}
