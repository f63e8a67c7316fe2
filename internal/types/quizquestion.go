package types

import (
	"time"

	"github.com/google/uuid"
)

// QuizQuestion stores the four options in discrete columns. CorrectIndex is
// always in {0,1,2,3}: 0=A, 1=B, 2=C, 3=D.
type QuizQuestion struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID       uuid.UUID `gorm:"type:uuid;not null;index;column:quiz_id" json:"quiz_id"`
	Question     string    `gorm:"not null;column:question" json:"question"`
	OptionA      string    `gorm:"not null;column:option_a" json:"option_a"`
	OptionB      string    `gorm:"not null;column:option_b" json:"option_b"`
	OptionC      string    `gorm:"not null;column:option_c" json:"option_c"`
	OptionD      string    `gorm:"not null;column:option_d" json:"option_d"`
	CorrectIndex int       `gorm:"not null;default:0;column:correct_index" json:"correct_index"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (QuizQuestion) TableName() string {
	return "quiz_question"
}
