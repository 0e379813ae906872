package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InputType string

const (
	InputTypePDF   InputType = "pdf"
	InputTypePPTX  InputType = "pptx"
	InputTypeDOCX  InputType = "docx"
	InputTypeAudio InputType = "audio"
)

type Lecture struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"size:64;not null;index" json:"userId"` // id issued by the auth provider
	InputType   InputType `gorm:"size:20;not null" json:"input_type"`
	RawText     string    `gorm:"type:text;not null" json:"raw_text"` // immutable once set
	Title       string    `gorm:"size:255;not null" json:"title"`
	SummaryText string    `gorm:"type:text;not null" json:"summary_text"`

	// Archived copy of the original upload
	FileName string `gorm:"size:255" json:"file_name"`
	FilePath string `gorm:"type:text" json:"file_path"`
	FileSize int64  `json:"file_size"` // bytes

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Flashcards []Flashcard `gorm:"foreignKey:LectureID" json:"flashcards,omitempty"`
	Quiz       *Quiz       `gorm:"foreignKey:LectureID" json:"quiz,omitempty"`
}

func (l *Lecture) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
