package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vansh3175/FlashNotes/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // tighten in production
	},
}

// sendJSON queues data on the client's send channel so every write goes
// through the single writer goroutine. Full channel means a client that
// stopped reading; drop rather than block.
func sendJSON(client *Client, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	select {
	case client.Send <- msg:
	default:
	}
}

// HandleLectureWebSocket streams processing status updates for one lecture.
// Identity comes from a session token when the client has one, otherwise
// from the userId it forwards, matching the REST surface.
func HandleLectureWebSocket(c *gin.Context) {
	lectureID := c.Param("id")

	userID := c.Query("userId")
	if token := c.Query("token"); token != "" {
		claims, err := utils.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}
		userID = claims.UserID
	}
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}

	log.Printf("Lecture WS connected: lectureID=%s userID=%s\n", lectureID, userID)
	client := H.Register(lectureID, conn)

	sendJSON(client, gin.H{"type": "connected", "message": "Connected to lecture " + lectureID})
}
