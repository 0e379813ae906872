package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Clients map[string]map[*websocket.Conn]*Client // keyed by lecture id
	Mutex   sync.RWMutex
}

var H = Hub{
	Clients: make(map[string]map[*websocket.Conn]*Client),
}

// LectureStatusUpdate is the message pushed while an upload moves through
// extraction and summarization.
type LectureStatusUpdate struct {
	LectureID string  `json:"lecture_id"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	Error     string  `json:"error,omitempty"`
}

func (h *Hub) Register(lectureID string, conn *websocket.Conn) *Client {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[lectureID]; !ok {
		h.Clients[lectureID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.Clients[lectureID][conn] = client

	go h.readPump(lectureID, conn)
	go h.writePump(lectureID, conn)

	return client
}

func (h *Hub) Unregister(lectureID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[lectureID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, lectureID)
		}
	}
}

// Broadcast delivers data to every client watching the given lecture.
// Slow clients are skipped rather than blocking the pipeline.
func (h *Hub) Broadcast(lectureID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Clients[lectureID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// GetStats reports connection counts for the health endpoint.
func (h *Hub) GetStats() map[string]int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	total := 0
	for _, clients := range h.Clients {
		total += len(clients)
	}
	return map[string]int{
		"lectures":    len(h.Clients),
		"connections": total,
	}
}

// SendStatusUpdate pushes a processing status for one lecture. Fire and
// forget: a lecture nobody is watching simply has no subscribers.
func SendStatusUpdate(lectureID, status string, progress float64, errorMsg string) {
	update := LectureStatusUpdate{
		LectureID: lectureID,
		Status:    status,
		Progress:  progress,
		Error:     errorMsg,
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(lectureID, data)
}

func (h *Hub) readPump(lectureID string, conn *websocket.Conn) {
	defer h.Unregister(lectureID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writePump(lectureID string, conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.Clients[lectureID][conn]
	h.Mutex.RUnlock()
	if client == nil {
		return
	}

	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
