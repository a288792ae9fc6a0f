// Package room implements the exam-room fan-out: a teacher creates a
// room, students join it, tasks go out to everyone and solutions come
// back to everyone. Rooms only consume session lifecycle events; they
// never touch the execution engine.
package room

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
)

// Sender delivers an event to a single connection. Implemented by the
// transport layer's connection registry; sends to connections that are
// gone are silently dropped there.
type Sender interface {
	To(connID, event string, payload any)
}

type errorPayload struct {
	Error string `json:"error"`
}

// Room is one exam room. All fields are guarded by the owning Hub.
type Room struct {
	Code        string
	teacherConn string
	taskText    string
	timeLimit   int
	examEnded   bool
	members     map[string]struct{} // every connection receiving broadcasts
	submitted   map[string]struct{} // connections that already submitted
	students    map[string]string   // studentID -> connID
}

// Hub tracks every open room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	send  Sender
}

// NewHub creates an empty hub that fans out through send.
func NewHub(send Sender) *Hub {
	return &Hub{
		rooms: make(map[string]*Room),
		send:  send,
	}
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newCode() string {
	b := make([]byte, 6)
	rand.Read(b)
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}

// broadcast sends an event to every member of r. Callers hold h.mu.
func (h *Hub) broadcast(r *Room, event string, payload any) {
	for conn := range r.members {
		h.send.To(conn, event, payload)
	}
}

// Create opens a room owned by teacherConn and tells it the code.
func (h *Hub) Create(teacherConn string) string {
	h.mu.Lock()
	code := newCode()
	for {
		if _, taken := h.rooms[code]; !taken {
			break
		}
		code = newCode()
	}
	h.rooms[code] = &Room{
		Code:        code,
		teacherConn: teacherConn,
		members:     map[string]struct{}{teacherConn: {}},
		submitted:   make(map[string]struct{}),
		students:    make(map[string]string),
	}
	h.mu.Unlock()

	h.send.To(teacherConn, "room_created", map[string]string{"roomCode": code})
	return code
}

// Join adds conn to the room and announces the student to everyone.
// An optional studentID is remembered so the teacher can address this
// student's connection later.
func (h *Hub) Join(conn, code, name, studentID string) {
	h.mu.Lock()
	r, ok := h.rooms[code]
	if !ok {
		h.mu.Unlock()
		h.notFound(conn, code)
		return
	}
	r.members[conn] = struct{}{}
	if studentID != "" {
		r.students[studentID] = conn
	}
	h.broadcast(r, "student_joined", map[string]string{"studentName": name})
	h.mu.Unlock()
}

// SendTask publishes a new task to the room and resets the submission
// round: the ended flag clears and previous submitters may submit
// again.
func (h *Hub) SendTask(conn, code, taskText string, timeLimit int) {
	h.mu.Lock()
	r, ok := h.rooms[code]
	if !ok {
		h.mu.Unlock()
		h.notFound(conn, code)
		return
	}
	r.taskText = taskText
	r.timeLimit = timeLimit
	r.examEnded = false
	r.submitted = make(map[string]struct{})
	h.broadcast(r, "new_task", map[string]any{
		"taskText":  taskText,
		"timeLimit": timeLimit,
	})
	h.mu.Unlock()
}

// EndExam closes the submission window. Unknown codes are ignored.
func (h *Hub) EndExam(code string) {
	h.mu.Lock()
	if r, ok := h.rooms[code]; ok {
		r.examEnded = true
		h.broadcast(r, "exam_ended", struct{}{})
	}
	h.mu.Unlock()
}

// Close announces the room's end and deletes it. Unknown codes are
// ignored.
func (h *Hub) Close(code string) {
	h.mu.Lock()
	if r, ok := h.rooms[code]; ok {
		h.broadcast(r, "room_closed", struct{}{})
		delete(h.rooms, code)
	}
	h.mu.Unlock()
}

// Submit records one solution. Submissions after the exam ended are
// rejected to the submitter only; a second submission from the same
// connection is quietly ignored.
func (h *Hub) Submit(conn, code, name, solution, language string, taskID any) {
	h.mu.Lock()
	r, ok := h.rooms[code]
	if !ok {
		h.mu.Unlock()
		h.notFound(conn, code)
		return
	}
	if r.examEnded {
		h.mu.Unlock()
		h.send.To(conn, "session_error", errorPayload{Error: "Exam ended. No more submissions."})
		return
	}
	if _, dup := r.submitted[conn]; dup {
		h.mu.Unlock()
		return
	}
	r.submitted[conn] = struct{}{}

	h.broadcast(r, "solution_submitted", map[string]any{
		"studentName": name,
		"code":        strings.TrimRight(solution, " \t\r\n"),
		"language":    language,
		"taskId":      taskID,
	})
	h.mu.Unlock()
}

// Leave removes a closed connection from every room it was part of.
func (h *Hub) Leave(conn string) {
	h.mu.Lock()
	for _, r := range h.rooms {
		delete(r.members, conn)
		for id, c := range r.students {
			if c == conn {
				delete(r.students, id)
			}
		}
	}
	h.mu.Unlock()
}

// Len returns the number of open rooms.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) notFound(conn, code string) {
	h.send.To(conn, "session_error", errorPayload{
		Error: fmt.Sprintf("Room %s not found", code),
	})
}
