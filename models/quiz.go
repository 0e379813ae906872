package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizQuestion is one element of the Questions JSON column.
type QuizQuestion struct {
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty"`
	Topic      string   `json:"topic"`
}

// QuizResponse is one element of the UserResponses JSON column. The client
// always sends the full accumulated history, never a delta.
type QuizResponse struct {
	Question string `json:"question"`
	Selected string `json:"selected"`
	Correct  bool   `json:"correct"`
	Topic    string `json:"topic"`
}

// Quiz holds the generated questions and the index-aligned correct answers.
// LectureID carries a unique index so at most one quiz ever exists per
// lecture, even under concurrent first-time generation.
type Quiz struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LectureID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"lectureId"`
	Lecture       Lecture        `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Questions     datatypes.JSON `gorm:"not null" json:"questions"`
	Answers       datatypes.JSON `gorm:"not null" json:"answers"`
	UserResponses datatypes.JSON `json:"user_responses"`
	Scores        *float64       `gorm:"type:numeric(5,2)" json:"scores"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
