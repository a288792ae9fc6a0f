package runner

// Event names delivered to a session's owning connection.
const (
	EventSessionStarted = "session_started"
	EventOutput         = "output"
	EventPlotImage      = "plot_image"
	EventProcessEnded   = "process_ended"
	EventSessionError   = "session_error"
)

// Emitter delivers session-scoped events to the connection that owns
// the session. Implementations must be safe for concurrent use: the
// pump goroutine and request handlers emit independently.
type Emitter interface {
	Emit(event string, payload any)
}

// OutputPayload carries a raw chunk of process output.
type OutputPayload struct {
	Data string `json:"data"`
}

// ErrorPayload carries a user-facing error message.
type ErrorPayload struct {
	Error string `json:"error"`
}

// PlotPayload carries one image artifact produced by the program.
type PlotPayload struct {
	Filename    string `json:"filename"`
	ImageBase64 string `json:"image_base64"`
}

// EmptyPayload is used by events that carry no fields.
type EmptyPayload struct{}
