package handlers

import (
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/abhishekkrthakur/aiaio/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server fronts its own UI; cross-origin clients are expected.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsConn serializes writes: hub broadcasts and handler acks may race on the
// same connection, and gorilla allows only one concurrent writer.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) Send(ev hub.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(ev)
}

// WebSocket registers the client with the hub and pumps inbound control
// frames until the peer goes away. The only inbound command is
// stop_generation, which clears the client's generation flag.
func (h *Handler) WebSocket(c *gin.Context) {
	clientID := c.Param("client_id")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed client=%s err=%v", clientID, err)
		return
	}

	conn := &wsConn{ws: ws}
	h.Hub.Register(clientID, conn)
	log.Printf("ws: client connected client=%s", clientID)

	defer func() {
		h.Hub.Unregister(clientID)
		ws.Close()
		log.Printf("ws: client disconnected client=%s", clientID)
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: read failed client=%s err=%v", clientID, err)
			}
			return
		}
		if strings.TrimSpace(string(data)) == "stop_generation" {
			log.Printf("ws: stop requested client=%s", clientID)
			h.Hub.SetGenerating(clientID, false)
		}
	}
}
