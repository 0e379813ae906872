package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vansh3175/FlashNotes/models"
	"github.com/vansh3175/FlashNotes/services"
	"github.com/vansh3175/FlashNotes/utils"
	"github.com/vansh3175/FlashNotes/ws"
)

type summaryResult struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

const summaryPrompt = `
You are a helpful AI that summarizes academic content.

Return ONLY JSON:
{
  "title": "short descriptive title",
  "summary": "clear concise paragraph"
}

Content:
%s
`

// requestIdentity resolves the caller's identity. A bearer token verified by
// the middleware wins; otherwise the identity the client forwarded from its
// auth session is used (the "user" form field on uploads, query params on
// reads). The auth provider itself lives outside this backend.
func requestIdentity(c *gin.Context) (string, bool) {
	if id := c.GetString("user_id"); id != "" {
		return id, c.GetBool("email_verified")
	}

	if userJSON := c.PostForm("user"); userJSON != "" {
		var u struct {
			ID            string `json:"id"`
			EmailVerified bool   `json:"emailVerified"`
		}
		if err := json.Unmarshal([]byte(userJSON), &u); err != nil {
			return "", false
		}
		return u.ID, u.EmailVerified
	}

	return c.Query("userId"), c.Query("emailVerified") == "true"
}

// POST /summary
// Ingests an uploaded lecture: extract text, summarize with Gemini, persist.
// Nothing is persisted if any step fails.
func CreateLectureSummary(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, verified := requestIdentity(c)
	if userID == "" || !verified {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file provided"})
		return
	}

	inputType, err := services.DetectInputType(fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unsupported file type"})
		return
	}

	lectureID := uuid.New()
	ws.SendStatusUpdate(lectureID.String(), "extracting", 0.25, "")

	rawText, err := services.ExtractText(fileHeader, inputType)
	if err != nil {
		ws.SendStatusUpdate(lectureID.String(), "error", 0, err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Processing error", "error": err.Error()})
		return
	}
	if strings.TrimSpace(rawText) == "" {
		ws.SendStatusUpdate(lectureID.String(), "error", 0, "no text extracted")
		c.JSON(http.StatusBadRequest, gin.H{"message": "No text could be extracted"})
		return
	}

	// Archive the original upload. Extraction already ran from the in-memory
	// copy, so a storage failure only costs the download link.
	filePath := ""
	if publicURL, err := utils.UploadLectureFile(fileHeader, lectureID.String()); err != nil {
		log.Printf("lecture file archive failed: %v", err)
	} else {
		filePath = publicURL
	}

	ws.SendStatusUpdate(lectureID.String(), "summarizing", 0.6, "")

	raw, err := services.GenerateText(fmt.Sprintf(summaryPrompt, rawText))
	if err != nil {
		ws.SendStatusUpdate(lectureID.String(), "error", 0, err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"message": "AI could not generate summary", "error": err.Error()})
		return
	}

	var result summaryResult
	if err := services.DecodeModelObject(raw, &result); err != nil {
		ws.SendStatusUpdate(lectureID.String(), "error", 0, err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"message": "AI could not generate summary", "error": err.Error()})
		return
	}

	lecture := models.Lecture{
		ID:          lectureID,
		UserID:      userID,
		InputType:   inputType,
		RawText:     rawText,
		Title:       result.Title,
		SummaryText: result.Summary,
		FileName:    fileHeader.Filename,
		FilePath:    filePath,
		FileSize:    fileHeader.Size,
	}
	if err := db.Create(&lecture).Error; err != nil {
		ws.SendStatusUpdate(lectureID.String(), "error", 0, err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Processing error", "error": err.Error()})
		return
	}

	ws.SendStatusUpdate(lectureID.String(), "done", 1, "")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Lecture processed successfully",
		"data":    lecture,
	})
}

// GET /summary?userId&emailVerified
func GetLectures(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, verified := requestIdentity(c)
	if userID == "" || !verified {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var lectures []models.Lecture
	if err := db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&lectures).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch lectures"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": lectures})
}

// GET /summary/:id?userId&emailVerified
func GetLectureByID(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, verified := requestIdentity(c)
	if userID == "" || !verified {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "user not verified"})
		return
	}

	var lecture models.Lecture
	err := db.First(&lecture, "id = ? AND user_id = ?", c.Param("id"), userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusCreated, gin.H{"message": "Summary fetched", "data": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Summary fetched", "data": lecture})
}

// DELETE /summary/:id?userId&emailVerified
// Removes a lecture the caller owns along with its derived artifacts.
func DeleteLecture(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, verified := requestIdentity(c)
	if userID == "" || !verified {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var lecture models.Lecture
	err := db.First(&lecture, "id = ? AND user_id = ?", c.Param("id"), userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Lecture not found."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lecture_id = ?", lecture.ID).Delete(&models.Flashcard{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lecture_id = ?", lecture.ID).Delete(&models.Quiz{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lecture).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete lecture", "error": err.Error()})
		return
	}

	if err := utils.DeleteLectureFile(lecture.FilePath); err != nil {
		log.Printf("lecture file delete failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lecture deleted"})
}
