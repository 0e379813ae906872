package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// NormalizeDifficulty coerces values outside the enum to MEDIUM. Gemini
// occasionally invents its own difficulty labels.
func NormalizeDifficulty(d string) Difficulty {
	switch Difficulty(d) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(d)
	default:
		return DifficultyMedium
	}
}

type Flashcard struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	LectureID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"lectureId"`
	Lecture    Lecture    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Question   string     `gorm:"type:text;not null" json:"question"`
	Answer     string     `gorm:"type:text;not null" json:"answer"`
	Difficulty Difficulty `gorm:"size:10;default:'MEDIUM'" json:"difficulty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (f *Flashcard) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
