package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vansh3175/FlashNotes/models"
	"github.com/vansh3175/FlashNotes/services"
)

type quizQuestionData struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Difficulty    string   `json:"difficulty"`
	Topic         string   `json:"topic"`
}

const quizPrompt = `
Generate a quiz in valid JSON array format.

Each quiz question MUST include:
- "question"
- "options"
- "correct_answer"
- "difficulty": one of ["EASY", "MEDIUM", "HARD"]
- "topic": A single broad concept/category extracted from the text
           (Example: "DCMotors", "InductionMotor", "Transformers")

Rules:
- Generate exactly 10 questions.
- Output ONLY a JSON array (no markdown, no explanations).
- Every question must have exactly 4 options.

Text:
%s
`

// GET /quiz?lectureId
// Returns the stored quiz when one exists; otherwise generates one with
// Gemini. Questions and answers are stored as parallel JSON sequences,
// index-aligned by construction.
func GetOrGenerateQuiz(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	lectureID := c.Query("lectureId")
	if lectureID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing 'lectureId' in query parameters."})
		return
	}

	var existing models.Quiz
	err := db.First(&existing, "lecture_id = ?", lectureID).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Quiz fetched from DB", "data": existing})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch quiz"})
		return
	}

	var lecture models.Lecture
	if err := db.First(&lecture, "id = ?", lectureID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Lecture not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch lecture"})
		return
	}

	rawText := strings.TrimSpace(lecture.RawText)
	if rawText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Lecture text is empty"})
		return
	}

	text, err := services.GenerateText(fmt.Sprintf(quizPrompt, rawText))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "AI returned empty content", "error": err.Error()})
		return
	}

	var items []quizQuestionData
	if err := services.DecodeModelArray(text, &items); err != nil {
		if errors.Is(err, services.ErrInvalidShape) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "AI output is not a JSON array"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to parse AI JSON", "error": err.Error()})
		return
	}

	questions := make([]models.QuizQuestion, 0, len(items))
	answers := make([]string, 0, len(items))
	for _, q := range items {
		questions = append(questions, models.QuizQuestion{
			Question:   q.Question,
			Options:    q.Options,
			Difficulty: q.Difficulty,
			Topic:      q.Topic,
		})
		answers = append(answers, q.CorrectAnswer)
	}

	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not encode quiz", "error": err.Error()})
		return
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not encode quiz", "error": err.Error()})
		return
	}

	quiz := models.Quiz{
		LectureID:     lecture.ID,
		Questions:     questionsJSON,
		Answers:       answersJSON,
		UserResponses: datatypes.JSON([]byte("[]")),
	}
	if err := db.Create(&quiz).Error; err != nil {
		// LectureID is unique: a concurrent request may have generated first
		if db.First(&existing, "lecture_id = ?", lecture.ID).Error == nil {
			c.JSON(http.StatusOK, gin.H{"message": "Quiz fetched from DB", "data": existing})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save quiz", "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Quiz generated successfully", "data": quiz})
}

type saveProgressRequest struct {
	QuizID    string          `json:"quizId"`
	Responses json.RawMessage `json:"responses"`
	Score     *float64        `json:"score"`
}

// PATCH /quiz/save-progress
// Overwrites the stored response history wholesale (the client always sends
// the full accumulated sequence). Score is only touched when present.
func SaveQuizProgress(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var body saveProgressRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing quizId or responses."})
		return
	}
	if body.QuizID == "" || len(body.Responses) == 0 || string(body.Responses) == "null" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing quizId or responses."})
		return
	}

	var quiz models.Quiz
	if err := db.First(&quiz, "id = ?", body.QuizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Quiz not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save quiz progress", "error": err.Error()})
		return
	}

	quiz.UserResponses = datatypes.JSON(body.Responses)
	if body.Score != nil {
		quiz.Scores = body.Score
	}
	if err := db.Save(&quiz).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save quiz progress", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Progress saved", "data": quiz})
}
