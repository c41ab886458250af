package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/lubritrack/label-engine/internal/composer"
	"github.com/lubritrack/label-engine/internal/printer"
	"github.com/lubritrack/label-engine/pkg/labelformat"
)

// WebSocket message types
const (
	EventPrint     = "print"
	EventJobQueued = "job_queued"
	EventJobUpdate = "job_update"
	EventResponse  = "response"
	EventError     = "error"
)

// WSMessage represents a WebSocket message.
type WSMessage struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	conn   *websocket.Conn
	send   chan WSMessage
	server *Server
	mu     sync.Mutex
}

// handleWebSocket upgrades the connection and starts the client pumps.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &WSClient{
		conn:   conn,
		send:   make(chan WSMessage, 256),
		server: s,
	}

	s.log.Debug().Msg("websocket client connected")

	go client.readPump()
	go client.writePump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		c.mu.Lock()
		err := c.conn.WriteJSON(msg)
		c.mu.Unlock()

		if err != nil {
			return
		}
	}
}

func (c *WSClient) handleMessage(msg *WSMessage) {
	switch msg.Event {
	case EventPrint:
		c.handlePrintEvent(msg.Data)
	default:
		c.sendError(fmt.Sprintf("unknown event: %s", msg.Event))
	}
}

// handlePrintEvent composes a label from the message payload and queues
// it for printing.
func (c *WSClient) handlePrintEvent(data map[string]interface{}) {
	if c.server.queue == nil {
		c.sendError("no printer configured")
		return
	}

	vehicleID, ok := data["vehicle_id"].(string)
	if !ok || vehicleID == "" {
		c.sendError("vehicle_id is required")
		return
	}

	var opts labelformat.StyleOptions
	if style, ok := data["style"]; ok {
		raw, _ := json.Marshal(style)
		if err := json.Unmarshal(raw, &opts); err != nil {
			c.sendError(fmt.Sprintf("invalid style: %v", err))
			return
		}
	}
	shopID, _ := data["shop_id"].(string)
	opts = c.server.styleFor(shopID, opts)

	uri, err := c.server.composer.Compose(context.Background(), vehicleID, opts)
	if err != nil {
		c.sendError(fmt.Sprintf("failed to compose label: %v", err))
		return
	}

	img, err := composer.DecodeDataURI(uri)
	if err != nil {
		c.sendError(fmt.Sprintf("failed to decode label: %v", err))
		return
	}

	jobID := c.server.queue.Enqueue(vehicleID, img)
	c.server.BroadcastJobQueued(jobID, vehicleID)

	c.sendResponse(map[string]interface{}{
		"success": true,
		"job_id":  jobID,
	})
}

func (c *WSClient) sendResponse(data map[string]interface{}) {
	c.send <- WSMessage{
		Event: EventResponse,
		Data:  data,
	}
}

func (c *WSClient) sendError(message string) {
	c.send <- WSMessage{
		Event: EventError,
		Data: map[string]interface{}{
			"error": message,
		},
	}
}

// Client tracking for broadcasts
var (
	clients   = make(map[*WSClient]bool)
	clientsMu sync.RWMutex
)

func addClient(client *WSClient) {
	clientsMu.Lock()
	clients[client] = true
	clientsMu.Unlock()
}

func removeClient(client *WSClient) {
	clientsMu.Lock()
	delete(clients, client)
	clientsMu.Unlock()
}

func (c *WSClient) readPump() {
	defer func() {
		removeClient(c)
		c.conn.Close()
		c.server.log.Debug().Msg("websocket client disconnected")
	}()

	addClient(c)

	for {
		var msg WSMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.log.Warn().Err(err).Msg("websocket read error")
			}
			break
		}

		c.handleMessage(&msg)
	}
}

func broadcast(message WSMessage) {
	clientsMu.RLock()
	defer clientsMu.RUnlock()

	for client := range clients {
		select {
		case client.send <- message:
		default:
			// Client send buffer full, skip
		}
	}
}

// BroadcastJobQueued notifies all clients of a newly queued print job.
func (s *Server) BroadcastJobQueued(jobID, vehicleID string) {
	broadcast(WSMessage{
		Event: EventJobQueued,
		Data: map[string]interface{}{
			"job_id":     jobID,
			"vehicle_id": vehicleID,
		},
	})
}

// BroadcastJobUpdate pushes a job status change to all clients. Wired
// to the queue's OnJobUpdate hook.
func (s *Server) BroadcastJobUpdate(job printer.Job) {
	broadcast(WSMessage{
		Event: EventJobUpdate,
		Data: map[string]interface{}{
			"job_id":     job.ID,
			"vehicle_id": job.VehicleID,
			"status":     job.Status,
			"retries":    job.Retries,
			"error":      job.Error,
		},
	})
}
