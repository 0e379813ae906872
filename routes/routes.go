package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vansh3175/FlashNotes/controllers"
	"github.com/vansh3175/FlashNotes/middleware"
	"github.com/vansh3175/FlashNotes/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", middleware.DBMiddleware(db), controllers.HealthCheck)

	api := r.Group("/", middleware.DBMiddleware(db), middleware.OptionalAuthMiddleware())
	{
		api.POST("/summary", controllers.CreateLectureSummary)
		api.GET("/summary", controllers.GetLectures)
		api.GET("/summary/:id", controllers.GetLectureByID)
		api.DELETE("/summary/:id", controllers.DeleteLecture)

		api.GET("/flashcards", controllers.GetOrGenerateFlashcards)

		api.GET("/quiz", controllers.GetOrGenerateQuiz)
		api.PATCH("/quiz/save-progress", controllers.SaveQuizProgress)
	}

	r.GET("/ws/lecture/:id", ws.HandleLectureWebSocket)

	return r
}
