package room

import (
	"sync"
	"testing"
)

type sentEvent struct {
	conn    string
	event   string
	payload any
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (f *fakeSender) To(conn, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEvent{conn, event, payload})
}

func (f *fakeSender) count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.sent {
		if e.event == event {
			n++
		}
	}
	return n
}

func (f *fakeSender) last(event string) (sentEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].event == event {
			return f.sent[i], true
		}
	}
	return sentEvent{}, false
}

func TestCreateAndJoin(t *testing.T) {
	send := &fakeSender{}
	h := NewHub(send)

	code := h.Create("teacher")
	if len(code) != 6 {
		t.Fatalf("room code %q should be 6 characters", code)
	}

	ev, ok := send.last("room_created")
	if !ok || ev.conn != "teacher" {
		t.Fatal("teacher should receive room_created")
	}
	if got := ev.payload.(map[string]string)["roomCode"]; got != code {
		t.Fatalf("room_created carries %q, want %q", got, code)
	}

	h.Join("student1", code, "Ada", "id-1")

	// Both the teacher and the joining student hear about it.
	if n := send.count("student_joined"); n != 2 {
		t.Fatalf("student_joined sent %d times, want 2", n)
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	send := &fakeSender{}
	h := NewHub(send)

	h.Join("student1", "NOPE42", "Ada", "")

	ev, ok := send.last("session_error")
	if !ok || ev.conn != "student1" {
		t.Fatal("joiner should receive session_error")
	}
	if got := ev.payload.(errorPayload).Error; got != "Room NOPE42 not found" {
		t.Fatalf("error = %q", got)
	}
}

func TestSubmitRound(t *testing.T) {
	send := &fakeSender{}
	h := NewHub(send)

	code := h.Create("teacher")
	h.Join("student1", code, "Ada", "")
	h.SendTask("teacher", code, "write fizzbuzz", 600)

	if n := send.count("new_task"); n != 2 {
		t.Fatalf("new_task sent %d times, want 2", n)
	}

	h.Submit("student1", code, "Ada", "print(1)\n\n", "python", 7)
	if n := send.count("solution_submitted"); n != 2 {
		t.Fatalf("solution_submitted sent %d times, want 2", n)
	}
	ev, _ := send.last("solution_submitted")
	if got := ev.payload.(map[string]any)["code"]; got != "print(1)" {
		t.Fatalf("trailing whitespace not trimmed: %q", got)
	}

	// Second submission from the same connection is quietly ignored.
	h.Submit("student1", code, "Ada", "print(2)", "python", 7)
	if n := send.count("solution_submitted"); n != 2 {
		t.Fatalf("duplicate submission broadcast; count = %d", n)
	}

	// A new task opens a new round for everyone.
	h.SendTask("teacher", code, "now reverse a list", 600)
	h.Submit("student1", code, "Ada", "print(3)", "python", 8)
	if n := send.count("solution_submitted"); n != 4 {
		t.Fatalf("resubmission after new task failed; count = %d", n)
	}
}

func TestSubmitAfterExamEnd(t *testing.T) {
	send := &fakeSender{}
	h := NewHub(send)

	code := h.Create("teacher")
	h.Join("student1", code, "Ada", "")
	h.EndExam(code)

	if n := send.count("exam_ended"); n != 2 {
		t.Fatalf("exam_ended sent %d times, want 2", n)
	}

	h.Submit("student1", code, "Ada", "print(1)", "python", nil)

	ev, ok := send.last("session_error")
	if !ok || ev.conn != "student1" {
		t.Fatal("submitter should receive the rejection")
	}
	if got := ev.payload.(errorPayload).Error; got != "Exam ended. No more submissions." {
		t.Fatalf("error = %q", got)
	}
	if n := send.count("solution_submitted"); n != 0 {
		t.Fatal("no solution may be broadcast after the exam ended")
	}
}

func TestCloseRoom(t *testing.T) {
	send := &fakeSender{}
	h := NewHub(send)

	code := h.Create("teacher")
	h.Join("student1", code, "Ada", "")
	h.Close(code)

	if n := send.count("room_closed"); n != 2 {
		t.Fatalf("room_closed sent %d times, want 2", n)
	}
	if h.Len() != 0 {
		t.Fatal("room should be deleted")
	}

	// Closing again is a no-op.
	h.Close(code)
	if n := send.count("room_closed"); n != 2 {
		t.Fatal("second close must not broadcast")
	}
}

func TestLeaveStopsFanOut(t *testing.T) {
	send := &fakeSender{}
	h := NewHub(send)

	code := h.Create("teacher")
	h.Join("student1", code, "Ada", "id-1")
	h.Leave("student1")

	h.SendTask("teacher", code, "task", 0)
	if n := send.count("new_task"); n != 1 {
		t.Fatalf("new_task sent %d times after leave, want 1", n)
	}
}
