package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vansh3175/FlashNotes/models"
	"github.com/vansh3175/FlashNotes/services"
)

type flashcardData struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty"`
}

const flashcardPrompt = `
Generate 10 flashcards in valid JSON array format from the following text.
Each flashcard should have:
- "question": a short, clear question suitable for studying.
- "answer": a concise, accurate answer to the question.
- "difficulty": one of ["EASY", "MEDIUM", "HARD"] based on complexity.

Do NOT include any extra text, markdown, or code fences outside the JSON array.

Text:
%s
`

var errFlashcardsExist = errors.New("flashcards already generated for lecture")

// GET /flashcards?lectureId
// Returns the stored set when one exists; otherwise generates one batch with
// Gemini and persists it all-or-nothing. First generation wins.
func GetOrGenerateFlashcards(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	lectureID := c.Query("lectureId")
	if lectureID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing 'lectureId' in query parameters."})
		return
	}

	var existing []models.Flashcard
	if err := db.Where("lecture_id = ?", lectureID).Find(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch flashcards"})
		return
	}
	if len(existing) > 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "Flashcards fetched from database.",
			"data":    existing,
		})
		return
	}

	var lecture models.Lecture
	if err := db.First(&lecture, "id = ?", lectureID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Lecture not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch lecture"})
		return
	}

	rawText := strings.TrimSpace(lecture.RawText)
	if rawText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Lecture text is empty or missing."})
		return
	}

	text, err := services.GenerateText(fmt.Sprintf(flashcardPrompt, rawText))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "AI did not return any content.", "error": err.Error()})
		return
	}

	var cards []flashcardData
	if err := services.DecodeModelArray(text, &cards); err != nil {
		if errors.Is(err, services.ErrInvalidShape) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "AI response was not a valid JSON array."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to parse AI response into valid JSON.",
			"error":   err.Error(),
		})
		return
	}

	saved := make([]models.Flashcard, 0, len(cards))
	err = db.Transaction(func(tx *gorm.DB) error {
		// re-check inside the transaction: a concurrent request may have
		// generated while we were waiting on Gemini
		var n int64
		if err := tx.Model(&models.Flashcard{}).Where("lecture_id = ?", lecture.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errFlashcardsExist
		}
		for _, fc := range cards {
			card := models.Flashcard{
				LectureID:  lecture.ID,
				Question:   fc.Question,
				Answer:     fc.Answer,
				Difficulty: models.NormalizeDifficulty(fc.Difficulty),
			}
			if err := tx.Create(&card).Error; err != nil {
				return err
			}
			saved = append(saved, card)
		}
		return nil
	})
	if errors.Is(err, errFlashcardsExist) {
		db.Where("lecture_id = ?", lecture.ID).Find(&existing)
		c.JSON(http.StatusOK, gin.H{
			"message": "Flashcards fetched from database.",
			"data":    existing,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save flashcards", "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Flashcards generated using Gemini and saved to database.",
		"data":    saved,
	})
}
