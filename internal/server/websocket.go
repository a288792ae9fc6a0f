package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/marildoC/runroom/internal/runner"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // clients connect from arbitrary origins
	},
}

// wsIncoming is a frame from the client.
type wsIncoming struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// wsOutgoing is a frame to the client.
type wsOutgoing struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// wsConn is one client connection. It implements runner.Emitter, so
// the engine's pump goroutine and the request path can both write to
// it; the mutex serializes those writes.
type wsConn struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) Emit(event string, payload any) {
	data, err := json.Marshal(wsOutgoing{Event: event, Data: payload})
	if err != nil {
		log.Printf("websocket marshal error: %v", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("websocket write error: %v", err)
	}
}

// connRegistry maps connection ids to live connections. It implements
// room.Sender; events to connections that are gone are dropped.
type connRegistry struct {
	mu    sync.RWMutex
	conns map[string]*wsConn
}

func newConnRegistry() *connRegistry {
	return &connRegistry{conns: make(map[string]*wsConn)}
}

func (r *connRegistry) add(c *wsConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.id] = c
}

func (r *connRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

func (r *connRegistry) To(connID, event string, payload any) {
	r.mu.RLock()
	c, ok := r.conns[connID]
	r.mu.RUnlock()
	if ok {
		c.Emit(event, payload)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &wsConn{id: uuid.New().String(), conn: conn}
	s.conns.add(c)

	defer func() {
		// The client is gone: its session and room memberships go too.
		s.conns.remove(c.id)
		s.engine.Drop(c.id)
		s.hub.Leave(c.id)
		conn.Close()
	}()

	for {
		var msg wsIncoming
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			log.Printf("websocket read error: %v", err)
			return
		}

		s.dispatch(c, msg)
	}
}

func (s *Server) dispatch(c *wsConn, msg wsIncoming) {
	switch msg.Event {
	case "start_session":
		var req struct {
			Code     string `json:"code"`
			Language string `json:"language"`
		}
		if !decodeData(c, msg.Data, &req) {
			return
		}
		s.engine.Start(c.id, req.Language, req.Code, c)

	case "send_input":
		var req struct {
			Line string `json:"line"`
		}
		if !decodeData(c, msg.Data, &req) {
			return
		}
		s.engine.SendInput(c.id, req.Line, c)

	case "disconnect_session":
		s.engine.Kill(c.id, c)

	case "create_room":
		s.hub.Create(c.id)

	case "join_room":
		var req struct {
			RoomCode  string `json:"roomCode"`
			Name      string `json:"name"`
			StudentID string `json:"studentId"`
		}
		if !decodeData(c, msg.Data, &req) {
			return
		}
		if req.Name == "" {
			req.Name = "Unknown"
		}
		s.hub.Join(c.id, req.RoomCode, req.Name, req.StudentID)

	case "send_task":
		var req struct {
			RoomCode  string `json:"roomCode"`
			TaskText  string `json:"taskText"`
			TimeLimit int    `json:"timeLimit"`
		}
		if !decodeData(c, msg.Data, &req) {
			return
		}
		s.hub.SendTask(c.id, req.RoomCode, req.TaskText, req.TimeLimit)

	case "end_exam":
		var req struct {
			RoomCode string `json:"roomCode"`
		}
		if !decodeData(c, msg.Data, &req) {
			return
		}
		s.hub.EndExam(req.RoomCode)

	case "close_room":
		var req struct {
			RoomCode string `json:"roomCode"`
		}
		if !decodeData(c, msg.Data, &req) {
			return
		}
		s.hub.Close(req.RoomCode)

	case "submit_solution":
		var req struct {
			RoomCode string `json:"roomCode"`
			Name     string `json:"name"`
			Code     string `json:"code"`
			Language string `json:"language"`
			TaskID   any    `json:"taskId"`
		}
		if !decodeData(c, msg.Data, &req) {
			return
		}
		if req.Name == "" {
			req.Name = "Unknown"
		}
		s.hub.Submit(c.id, req.RoomCode, req.Name, req.Code, req.Language, req.TaskID)

	default:
		c.Emit(runner.EventSessionError, runner.ErrorPayload{
			Error: fmt.Sprintf("Unknown event '%s'", msg.Event),
		})
	}
}

func decodeData(c *wsConn, data json.RawMessage, v any) bool {
	if len(data) == 0 {
		return true
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.Emit(runner.EventSessionError, runner.ErrorPayload{
			Error: "invalid message: " + err.Error(),
		})
		return false
	}
	return true
}
