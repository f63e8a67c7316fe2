package types

import (
	"time"

	"github.com/google/uuid"
)

type Flashcard struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FlashcardSetID uuid.UUID `gorm:"type:uuid;not null;index;column:flashcard_set_id" json:"flashcard_set_id"`
	Question       string    `gorm:"not null;column:question" json:"question"`
	Answer         string    `gorm:"not null;column:answer" json:"answer"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (Flashcard) TableName() string {
	return "flashcard"
}
